package util_test

import (
	"testing"

	"github.com/carn181/mlsp/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathURIRoundTrip(t *testing.T) {
	path := "/home/user/proj/foo.m"
	uri := util.Path2URI(path)
	assert.Equal(t, "file:///home/user/proj/foo.m", uri)

	back, err := util.URI2path(uri)
	require.NoError(t, err)
	assert.Equal(t, path, back)
}

func TestFromPathAndFromURIAgree(t *testing.T) {
	h1 := util.FromPath("/a/b.m")
	h2, err := util.FromURI(h1.URI)
	require.NoError(t, err)
	assert.Equal(t, h1.Path, h2.Path)
}

func TestIsValidPathMissingFile(t *testing.T) {
	assert.False(t, util.IsValidPath("/does/not/exist/anywhere.m"))
}
