package features

import "github.com/carn181/mlsp/model"

// symbolAt identifies what's under pos in pf: a reference's target, or
// a definition itself. Returns ok=false when pos isn't on any known
// symbol.
type symbolAt struct {
	kind   model.ReferenceTargetKind
	fn     *model.FunctionDefinition
	v      *model.VariableDefinition
	inFile string // for variables, the file they're scoped to
}

func resolveSymbolAt(pf *model.ParsedFile, pos model.Point) (symbolAt, bool) {
	if pf.Workspace == nil {
		return symbolAt{}, false
	}
	for _, ref := range pf.Workspace.References {
		if !ref.Loc.Contains(pos) {
			continue
		}
		switch ref.Target.Kind {
		case model.TargetFunction:
			return symbolAt{kind: model.TargetFunction, fn: ref.Target.FuncDef}, true
		case model.TargetVariable:
			return symbolAt{kind: model.TargetVariable, v: ref.Target.VarDef, inFile: pf.Path}, true
		default:
			return symbolAt{}, false
		}
	}
	for _, v := range pf.Workspace.Variables {
		if v.Loc.Contains(pos) {
			return symbolAt{kind: model.TargetVariable, v: v, inFile: pf.Path}, true
		}
	}
	for _, fn := range pf.Workspace.Functions {
		if fn.Loc.Contains(pos) {
			return symbolAt{kind: model.TargetFunction, fn: fn}, true
		}
	}
	return symbolAt{}, false
}

// FindReferences answers spec.md §4.5 "Find References": a variable's
// references are scoped to its own file; a function's span every file
// in the workspace. Grounded on
// original_source/src/features/references.rs's
// find_references_to_{variable,function}.
func FindReferences(files map[string]*model.ParsedFile, path string, pos model.Point, includeDeclaration bool) []Location {
	pf, ok := files[path]
	if !ok {
		return nil
	}
	sym, ok := resolveSymbolAt(pf, pos)
	if !ok {
		return nil
	}

	var locs []Location
	switch sym.kind {
	case model.TargetVariable:
		for _, ref := range pf.Workspace.References {
			if ref.Target.Kind == model.TargetVariable && ref.Target.VarDef == sym.v {
				locs = append(locs, Location{Path: pf.Path, Loc: ref.Loc})
			}
		}
		if includeDeclaration && sym.v != nil {
			locs = append(locs, Location{Path: pf.Path, Loc: sym.v.Loc})
		}

	case model.TargetFunction:
		for p, f := range files {
			if f.Workspace == nil {
				continue
			}
			for _, ref := range f.Workspace.References {
				if ref.Target.Kind == model.TargetFunction && ref.Target.FuncDef == sym.fn {
					locs = append(locs, Location{Path: p, Loc: ref.Loc})
				}
			}
		}
		if includeDeclaration && sym.fn != nil {
			locs = append(locs, Location{Path: sym.fn.Path, Loc: sym.fn.Loc})
		}
	}
	return locs
}

// HighlightKind distinguishes read-only uses from definitions, matching
// lsp_types::DocumentHighlightKind's TEXT/READ/WRITE split loosely: MLSP
// only tracks definition-vs-reference, so a definition is a write and
// every other use is a read.
type HighlightKind int

const (
	HighlightRead HighlightKind = iota
	HighlightWrite
)

// Highlight is one document-highlight result (spec.md §4.5
// "Document Highlight"): always same-file, since highlighting is a
// within-buffer visual aid.
type Highlight struct {
	Loc  model.Range
	Kind HighlightKind
}

// DocumentHighlight finds every occurrence of the symbol at pos within
// pf alone (unlike FindReferences, never crosses files).
func DocumentHighlight(pf *model.ParsedFile, pos model.Point) []Highlight {
	sym, ok := resolveSymbolAt(pf, pos)
	if !ok || pf.Workspace == nil {
		return nil
	}
	var out []Highlight
	switch sym.kind {
	case model.TargetVariable:
		if sym.v != nil {
			out = append(out, Highlight{Loc: sym.v.Loc, Kind: HighlightWrite})
		}
		for _, ref := range pf.Workspace.References {
			if ref.Target.Kind == model.TargetVariable && ref.Target.VarDef == sym.v {
				out = append(out, Highlight{Loc: ref.Loc, Kind: HighlightRead})
			}
		}
	case model.TargetFunction:
		if sym.fn != nil && sym.fn.Path == pf.Path {
			out = append(out, Highlight{Loc: sym.fn.Loc, Kind: HighlightWrite})
		}
		for _, ref := range pf.Workspace.References {
			if ref.Target.Kind == model.TargetFunction && ref.Target.FuncDef == sym.fn {
				out = append(out, Highlight{Loc: ref.Loc, Kind: HighlightRead})
			}
		}
	}
	return out
}
