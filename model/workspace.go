package model

import (
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Workspace is the per-file (and per-in-file-function-scope) symbol
// accumulator: spec.md §3. A file exposes its top-level Workspace; each
// nested function/lambda has its own nested Workspace, merged into the
// file's at the end of extraction (spec.md §4.2 step 5).
type Workspace struct {
	Functions  map[string]*FunctionDefinition // name -> definition, file/scope-local
	Variables  []*VariableDefinition
	References []*Reference
	Packages   map[string]struct{}
}

func NewWorkspace() *Workspace {
	return &Workspace{
		Functions: make(map[string]*FunctionDefinition),
		Packages:  make(map[string]struct{}),
	}
}

// Merge folds other into w, used when a nested function scope's
// Workspace is merged into its enclosing scope (spec.md §4.2 step 5).
func (w *Workspace) Merge(other *Workspace) {
	for name, def := range other.Functions {
		w.Functions[name] = def
	}
	w.Variables = append(w.Variables, other.Variables...)
	w.References = append(w.References, other.References...)
	for pkg := range other.Packages {
		w.Packages[pkg] = struct{}{}
	}
}

// ParsedFile is the File Model's unit of work (spec.md §3/§4.1).
type ParsedFile struct {
	Path        string
	Name        string // basename without .m
	Contents    []byte // empty when closed and not actively being extracted
	Tree        *tree_sitter.Tree
	Open        bool
	Package     string
	IsScript    bool
	Timestamp   int64 // wall-clock Unix nanoseconds of the last load or edit
	Fingerprint uint64
	Workspace   *Workspace
}

func (f *ParsedFile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", f.Path),
		slog.String("package", f.Package),
		slog.Bool("open", f.Open),
		slog.Bool("is_script", f.IsScript),
		slog.Int64("timestamp", f.Timestamp),
	)
}

// Dump clears Contents when the file is not open, bounding memory for
// scanned-but-unopened files (spec.md §4.1 `dump()`).
func (f *ParsedFile) Dump() {
	if !f.Open {
		f.Contents = nil
	}
}
