package features

import "github.com/carn181/mlsp/model"

// Location names a definition's file and range, the return shape for
// go-to-definition (spec.md §4.5).
type Location struct {
	Path string
	Loc  model.Range
}

// DefinitionAt answers spec.md §4.5 "Go to Definition": the reference
// (or definition itself) covering pos resolves to exactly one location,
// or none for unresolved/namespace-only targets.
func DefinitionAt(pf *model.ParsedFile, pos model.Point) (Location, bool) {
	if pf.Workspace == nil {
		return Location{}, false
	}
	for _, ref := range pf.Workspace.References {
		if !ref.Loc.Contains(pos) {
			continue
		}
		switch ref.Target.Kind {
		case model.TargetFunction:
			if ref.Target.FuncDef == nil {
				return Location{}, false
			}
			return Location{Path: ref.Target.FuncDef.Path, Loc: ref.Target.FuncDef.Loc}, true
		case model.TargetVariable:
			if ref.Target.VarDef == nil {
				return Location{}, false
			}
			return Location{Path: pf.Path, Loc: ref.Target.VarDef.Loc}, true
		default:
			return Location{}, false
		}
	}
	// Jumping from a definition's own name (e.g. a function signature)
	// to itself is a no-op but still a valid answer.
	for _, v := range pf.Workspace.Variables {
		if v.Loc.Contains(pos) {
			return Location{Path: pf.Path, Loc: v.Loc}, true
		}
	}
	for _, fn := range pf.Workspace.Functions {
		if fn.Loc.Contains(pos) {
			return Location{Path: pf.Path, Loc: fn.Loc}, true
		}
	}
	return Location{}, false
}
