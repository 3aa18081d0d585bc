package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carn181/mlsp/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDiskAppendsTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.m")
	require.NoError(t, os.WriteFile(path, []byte("x = 1;"), 0644))

	p := New()
	pf, err := p.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "x = 1;\n", string(pf.Contents))
	assert.False(t, pf.Open)
	assert.Equal(t, "a", pf.Name)
}

func TestLoadWithOpenContents(t *testing.T) {
	p := New()
	pf, err := p.Load("/virtual/b.m", []byte("y = 2;\n"))
	require.NoError(t, err)
	assert.True(t, pf.Open)
	assert.Equal(t, "y = 2;\n", string(pf.Contents))
}

func TestDecodeStripsUTF8BOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("x = 1;\n")...)
	out, err := decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "x = 1;\n", string(out))
}

func TestApplyEditFullReplace(t *testing.T) {
	p := New()
	pf, err := p.Load("/v/c.m", []byte("x = 1;\n"))
	require.NoError(t, err)

	require.NoError(t, p.ApplyEdit(pf, nil, "y = 2;\n"))
	assert.Equal(t, "y = 2;\n", string(pf.Contents))
	assert.False(t, pf.Tree.RootNode().HasError())
}

func TestApplyEditRangeReplace(t *testing.T) {
	p := New()
	pf, err := p.Load("/v/d.m", []byte("x = 1;\n"))
	require.NoError(t, err)

	// Replace the "1" at row 0, column 4 with "42".
	r := model.Range{
		Start: model.Point{Row: 0, Column: 4},
		End:   model.Point{Row: 0, Column: 5},
	}
	require.NoError(t, p.ApplyEdit(pf, &r, "42"))
	assert.Equal(t, "x = 42;\n", string(pf.Contents))
}

func TestApplyEditInsert(t *testing.T) {
	p := New()
	pf, err := p.Load("/v/e.m", []byte("xy = 1;\n"))
	require.NoError(t, err)

	// start == end: pure insertion, no deletion.
	r := model.Range{
		Start: model.Point{Row: 0, Column: 1},
		End:   model.Point{Row: 0, Column: 1},
	}
	require.NoError(t, p.ApplyEdit(pf, &r, "Y"))
	assert.Equal(t, "xYy = 1;\n", string(pf.Contents))
}
