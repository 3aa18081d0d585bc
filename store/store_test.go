package store

import (
	"testing"

	"github.com/carn181/mlsp/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetParsedFileFreshness(t *testing.T) {
	s := New()
	s.SetParsedFile(&model.ParsedFile{Path: "/a.m", Open: true, Timestamp: 5}, FromHandler)

	// Background worker writes for an open file are dropped.
	s.SetParsedFile(&model.ParsedFile{Path: "/a.m", Open: true, Timestamp: 6, IsScript: true}, FromBackgroundWorker)
	f, ok := s.GetParsedFile("/a.m")
	require.True(t, ok)
	assert.False(t, f.IsScript)

	// A stale timestamp from the handler is also dropped.
	s.SetParsedFile(&model.ParsedFile{Path: "/a.m", Open: true, Timestamp: 4, IsScript: true}, FromHandler)
	f, _ = s.GetParsedFile("/a.m")
	assert.Equal(t, int64(5), f.Timestamp)

	// A fresher handler write goes through.
	s.SetParsedFile(&model.ParsedFile{Path: "/a.m", Open: true, Timestamp: 7, IsScript: true}, FromHandler)
	f, _ = s.GetParsedFile("/a.m")
	assert.True(t, f.IsScript)
	assert.Equal(t, int64(7), f.Timestamp)
}

func TestSetParsedFileBackgroundOnClosedFile(t *testing.T) {
	s := New()
	s.SetParsedFile(&model.ParsedFile{Path: "/a.m", Open: false, Timestamp: 1}, FromHandler)
	s.SetParsedFile(&model.ParsedFile{Path: "/a.m", Open: false, Timestamp: 2, IsScript: true}, FromBackgroundWorker)
	f, _ := s.GetParsedFile("/a.m")
	assert.True(t, f.IsScript)
}

func TestGetScript(t *testing.T) {
	s := New()
	s.SetParsedFile(&model.ParsedFile{Path: "/a.m", Name: "a", IsScript: true}, FromBackgroundWorker)
	s.SetParsedFile(&model.ParsedFile{Path: "/b.m", Name: "b", IsScript: false}, FromBackgroundWorker)

	path, ok := s.GetScript("a")
	require.True(t, ok)
	assert.Equal(t, "/a.m", path)

	_, ok = s.GetScript("b")
	assert.False(t, ok)
}

func TestPackagesPrefix(t *testing.T) {
	s := New()
	s.SetPackages([]string{"pkg", "pkg.sub", "other"})

	all := s.GetPackages("")
	assert.ElementsMatch(t, []string{"pkg", "pkg.sub", "other"}, all)

	pkgOnly := s.GetPackages("pkg")
	assert.ElementsMatch(t, []string{"pkg", "pkg.sub"}, pkgOnly)
}

func TestFunctionQualifiedName(t *testing.T) {
	s := New()
	s.SetFunction(&model.FunctionDefinition{Path: "/+pkg/foo.m", Name: "foo", Package: "pkg"})
	s.SetFunction(&model.FunctionDefinition{Path: "/bar.m", Name: "bar"})

	f, ok := s.Function("pkg.foo")
	require.True(t, ok)
	assert.Equal(t, "foo", f.Name)

	f, ok = s.Function("bar")
	require.True(t, ok)
	assert.Equal(t, "bar", f.Name)
}

func TestDeleteFunctionsByPath(t *testing.T) {
	s := New()
	s.SetFunction(&model.FunctionDefinition{Path: "/a.m", Name: "foo"})
	s.SetFunction(&model.FunctionDefinition{Path: "/a.m", Name: "bar"})
	s.SetFunction(&model.FunctionDefinition{Path: "/b.m", Name: "baz"})

	s.DeleteFunctionsByPath("/a.m")

	assert.Len(t, s.AllFunctions(), 1)
	_, ok := s.Function("baz")
	assert.True(t, ok)
}

func TestNextRequestID(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.NextRequestID())
	assert.Equal(t, 1, s.NextRequestID())
	assert.Equal(t, 2, s.NextRequestID())
}
