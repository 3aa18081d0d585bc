package extract

import (
	"testing"

	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// functionDefNode parses src and returns the file plus its single
// top-level function_definition node, for signature.go tests that need
// a node directly rather than a full Extract pass.
func functionDefNode(t *testing.T, src string) (*model.ParsedFile, tree_sitter.Node) {
	t.Helper()
	p := parser.New()
	pf, err := p.Load("/sig.m", []byte(src))
	require.NoError(t, err)
	root := pf.Tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c.GrammarName() == "function_definition" {
			return pf, c
		}
	}
	t.Fatal("no function_definition found in source")
	return nil, tree_sitter.Node{}
}

func TestExtractSignaturePositionalArgs(t *testing.T) {
	pf, node := functionDefNode(t, "function y = f(a, b)\ny = a + b;\nend\n")
	sig, err := ExtractSignature(pf, node)
	require.NoError(t, err)
	assert.Equal(t, "f", sig.Name)
	assert.Equal(t, 2, sig.Argin)
	assert.False(t, sig.Vargin)
	assert.Equal(t, []string{"a", "b"}, sig.ArginNames)
	assert.Equal(t, 1, sig.Argout)
	assert.Equal(t, []string{"y"}, sig.ArgoutNames)
}

// varargin must decrement the positional Argin count and set Vargin,
// symmetric with the existing varargout handling (a bug fixed in an
// earlier review pass).
func TestExtractSignatureVarargin(t *testing.T) {
	pf, node := functionDefNode(t, "function y = f(a, varargin)\ny = a;\nend\n")
	sig, err := ExtractSignature(pf, node)
	require.NoError(t, err)
	assert.True(t, sig.Vargin)
	assert.Equal(t, 1, sig.Argin)
	assert.Equal(t, []string{"a"}, sig.ArginNames)
}

func TestExtractSignatureVarargout(t *testing.T) {
	pf, node := functionDefNode(t, "function [a, varargout] = f(x)\na = x;\nend\n")
	sig, err := ExtractSignature(pf, node)
	require.NoError(t, err)
	assert.True(t, sig.Vargout)
	assert.Equal(t, 1, sig.Argout)
	assert.Equal(t, []string{"a"}, sig.ArgoutNames)
}

func TestExtractSignatureDocumentation(t *testing.T) {
	src := "function y = f(x)\n% doubles x\n% returns the result\ny = x * 2;\nend\n"
	pf, node := functionDefNode(t, src)
	sig, err := ExtractSignature(pf, node)
	require.NoError(t, err)
	assert.Contains(t, sig.Documentation, "doubles x")
	assert.Contains(t, sig.Documentation, "returns the result")
}
