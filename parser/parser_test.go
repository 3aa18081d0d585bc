package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleAssignment(t *testing.T) {
	p := New()
	tree := p.Parse([]byte("x = 1;\n"))
	require.NotNil(t, tree)
	assert.False(t, tree.RootNode().HasError())
}

func TestSyntaxDiagnosticsOnMalformedInput(t *testing.T) {
	p := New()
	code := []byte("function y = f(x\n  y = x;\nend\n")
	tree := p.Parse(code)
	diags, err := p.SyntaxDiagnostics(code, tree)
	require.NoError(t, err)
	assert.NotEmpty(t, diags)
}

func TestFoldingRangesCoverBlocks(t *testing.T) {
	p := New()
	code := []byte("function y = f(x)\n  y = x;\nend\n")
	tree := p.Parse(code)
	ranges, err := p.FoldingRanges(code, tree)
	require.NoError(t, err)
	assert.NotEmpty(t, ranges)
}

func TestMatchesGroupsByCaptureName(t *testing.T) {
	p := New()
	code := []byte("x = 1;\ny = x + 2;\n")
	tree := p.Parse(code)
	result, err := p.Matches(CaptureQuery, code, tree)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Captures["vardef"])
	assert.NotEmpty(t, result.Ordered)
}
