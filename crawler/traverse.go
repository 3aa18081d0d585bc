// Package crawler implements the Workspace Crawler (spec.md §4.6): a
// fast scan that only extracts public function signatures so
// completion and go-to-definition work immediately after startup, and
// a full scan that runs the complete Symbol Extractor over every file.
// Grounded on original_source/src/extractors/fast.rs's fast_scan,
// traverse_folder, and parse.
package crawler

import (
	"os"
	"path/filepath"
	"strings"
)

// FileEntry is one `.m` file discovered under a scan root, tagged with
// the dotted package name its `+dir`/`@dir` ancestry implies.
type FileEntry struct {
	Path    string
	Package string
}

// Traverse walks root exactly as original_source's traverse_folder
// does: `.m` files in the current directory are collected as-is;
// subdirectories are only descended into when their name matches `+*`
// or `@*`, each contributing one dotted segment to pkgPrefix for
// everything found beneath it. Ordinary subdirectories are left alone,
// matching MATLAB's own rule that only namespace and class folders are
// implicitly part of the path.
//
// spec.md's supplemented feature over the original: `@dir` class
// folders recurse exactly like `+dir` namespace folders (the original
// only ever matched `+`), so functions and methods nested under a
// class folder are discovered during the fast scan instead of only
// during file open.
func Traverse(root, pkgPrefix string) (files []FileEntry, packages []string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil
	}
	for _, e := range entries {
		name := e.Name()
		full := filepath.Join(root, name)

		if !e.IsDir() {
			if strings.HasSuffix(name, ".m") {
				files = append(files, FileEntry{Path: full, Package: pkgPrefix})
			}
			continue
		}

		isPackage := strings.HasPrefix(name, "+")
		isClass := strings.HasPrefix(name, "@")
		if !isPackage && !isClass {
			continue
		}

		segment := name[1:]
		pkg := segment
		if pkgPrefix != "" {
			pkg = pkgPrefix + "." + segment
		}
		packages = append(packages, pkg)

		subFiles, subPackages := Traverse(full, pkg)
		files = append(files, subFiles...)
		packages = append(packages, subPackages...)
	}
	return files, packages
}

// TraverseAll runs Traverse over every root and concatenates the
// results, deduplicating package names.
func TraverseAll(roots []string) (files []FileEntry, packages []string) {
	seen := make(map[string]struct{})
	for _, root := range roots {
		fs, pkgs := Traverse(root, "")
		files = append(files, fs...)
		for _, p := range pkgs {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				packages = append(packages, p)
			}
		}
	}
	return files, packages
}
