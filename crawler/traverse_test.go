package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestTraversePackageRecursion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "top.m"), "x = 1;\n")
	writeFile(t, filepath.Join(root, "+pkg", "foo.m"), "function foo\nend\n")
	writeFile(t, filepath.Join(root, "+pkg", "+sub", "bar.m"), "function bar\nend\n")

	files, packages := Traverse(root, "")
	assert.ElementsMatch(t, []string{"pkg", "pkg.sub"}, packages)

	byName := make(map[string]string)
	for _, f := range files {
		byName[filepath.Base(f.Path)] = f.Package
	}
	assert.Equal(t, "", byName["top.m"])
	assert.Equal(t, "pkg", byName["foo.m"])
	assert.Equal(t, "pkg.sub", byName["bar.m"])
}

// @dir class folders recurse exactly like +dir namespace folders, the
// fix over original_source's traverse_folder which only ever matched
// the '+' prefix.
func TestTraverseClassFolderRecursion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "@Shape", "area.m"), "function a = area(obj)\nend\n")

	files, packages := Traverse(root, "")
	require.Len(t, files, 1)
	assert.Equal(t, "Shape", files[0].Package)
	assert.Contains(t, packages, "Shape")
}

func TestTraverseIgnoresOrdinaryDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "util.m"), "x = 1;\n")

	files, packages := Traverse(root, "")
	assert.Empty(t, files)
	assert.Empty(t, packages)
}
