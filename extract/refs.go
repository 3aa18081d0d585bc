package extract

import (
	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// refToVar resolves name against every variable visible from node:
// first the scopes node is nested in (scopeChain, which Extract builds
// innermost-first by walking parents upward, walked as given),
// falling back to the file's top-level workspace only when node isn't
// inside a named function (a script) or is only nested in lambdas
// (which close over their enclosing scope rather than introducing a
// new one). Grounded on
// original_source/src/extractors/symbols.rs's ref_to_var.
func refToVar(name string, ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, node tree_sitter.Node, pf *model.ParsedFile) []model.Reference {
	var refs []model.Reference

	isAssignment := false
	var leftRange model.Range
	if assign := parentOfKind("assignment", node); !assign.IsNull() {
		if left := assign.ChildByFieldName("left"); !left.IsNull() {
			isAssignment = true
			leftRange = model.RangeFromNode(left)
		}
	}

	search := func(vars []*model.VariableDefinition) {
		for i := len(vars) - 1; i >= 0; i-- {
			v := vars[i]
			if v.Cleared > 0 {
				continue
			}
			if v.Name != name {
				continue
			}
			if isAssignment && leftRange.FullyContains(v.Loc) {
				continue
			}
			ndef := nodeAtPos(pf, v.Loc.Start)
			if !ndef.IsNull() && !isInSoftScope(node, ndef) {
				continue
			}
			refs = append(refs, model.Reference{
				Loc:    model.RangeFromNode(node),
				Name:   name,
				Target: model.VariableTarget(v),
			})
		}
	}

	allLambdas := true
	for _, id := range scopeChain {
		sc, ok := scopes[id]
		if !ok {
			continue
		}
		search(sc.ws.Variables)
		if sc.node.GrammarName() != "lambda" {
			allLambdas = false
		}
	}

	// A private function of a script is fully scoped: it can't see the
	// script's top-level workspace, except lambdas, which close over
	// their defining scope instead of introducing their own.
	if len(scopeChain) == 0 || allLambdas {
		search(ws.Variables)
	}
	return refs
}

// refToFnInWS resolves name against the store-wide function set (the
// rest of the workspace crawl): only functions outside any package
// when pkg is false, functions in any package as well when pkg is
// true. Grounded on
// original_source/src/extractors/symbols.rs's ref_to_fn_in_ws.
func (e *Extractor) refToFnInWS(name string, node tree_sitter.Node, pkg bool) []model.Reference {
	var refs []model.Reference
	if e.Lookup == nil {
		return refs
	}
	for _, fn := range e.Lookup.AllFunctions() {
		if fn.Name == name && (fn.Package == "" || pkg) {
			refs = append(refs, model.Reference{
				Loc:    model.RangeFromNode(node),
				Name:   name,
				Target: model.FunctionTarget(fn),
			})
		}
	}
	return refs
}

// refToFn resolves name to a function: first in-scope nested
// functions, then the file's top-level functions, then the rest of
// the workspace. Grounded on
// original_source/src/extractors/symbols.rs's ref_to_fn.
func (e *Extractor) refToFn(name string, ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, node tree_sitter.Node, pkg bool) []model.Reference {
	var refs []model.Reference
	for _, id := range scopeChain {
		sc, ok := scopes[id]
		if !ok {
			continue
		}
		for _, fn := range sc.ws.Functions {
			if fn.Name == name {
				refs = append(refs, model.Reference{Loc: model.RangeFromNode(node), Name: name, Target: model.FunctionTarget(fn)})
			}
		}
	}
	for _, fn := range ws.Functions {
		if fn.Name == name {
			refs = append(refs, model.Reference{Loc: model.RangeFromNode(node), Name: name, Target: model.FunctionTarget(fn)})
		}
	}
	refs = append(refs, e.refToFnInWS(name, node, pkg)...)
	return refs
}

// defVar records a variable definition, unless: (a) it's a function's
// output/argument name already covered by the function signature
// (which points the definition at the existing parameter instead of
// creating a duplicate), (b) it's the callee of a function_call that
// already resolved to a known variable (that's a reference to an
// anonymous-function handle being invoked, not a new binding), or (c)
// it's inside a soft scope and a visible definition already exists
// (the soft scope gets a reference to the outer definition, not a
// shadow). Grounded on
// original_source/src/extractors/symbols.rs's def_var.
func defVar(name string, ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, node tree_sitter.Node, pf *model.ParsedFile) {
	if parent := parentFunction(node); !parent.IsNull() {
		if out := findChildKind(parent, "function_output"); !out.IsNull() {
			var points []model.Point
			if first := out.NamedChild(0); !first.IsNull() {
				switch first.GrammarName() {
				case "identifier":
					points = append(points, model.FromTSPoint(first.StartPosition()))
				case "multioutput_variable":
					for i := 0; i < int(first.NamedChildCount()); i++ {
						points = append(points, model.FromTSPoint(first.NamedChild(i).StartPosition()))
					}
				}
			}
			if len(scopeChain) > 0 {
				if sc, ok := scopes[scopeChain[0]]; ok {
					for _, v := range sc.ws.Variables {
						for _, p := range points {
							if v.Name == name && v.Loc.Contains(p) {
								ws.References = append(ws.References, &model.Reference{
									Loc: model.RangeFromNode(node), Name: name, Target: model.VariableTarget(v),
								})
								return
							}
						}
					}
				}
			}
		}
	}

	existing := refToVar(name, ws, scopeChain, scopes, node, pf)
	if !parentOfKind("function_call", node).IsNull() && len(existing) > 0 {
		return
	}
	if !softScopeParent(node).IsNull() && len(existing) > 0 {
		ws.References = append(ws.References, &existing[0])
		return
	}

	isGlobal := !parentOfKind("global_operator", node).IsNull()
	isParameter := !parentOfKind("function_output", node).IsNull() ||
		!parentOfKind("function_arguments", node).IsNull() ||
		!parentOfKind("multioutput_variable", node).IsNull()
	def := &model.VariableDefinition{
		Loc:         model.RangeFromNode(node),
		Name:        name,
		IsParameter: isParameter,
		IsGlobal:    isGlobal,
	}
	if len(scopeChain) > 0 {
		if sc, ok := scopes[scopeChain[0]]; ok {
			sc.ws.Variables = append(sc.ws.Variables, def)
			return
		}
	}
	ws.Variables = append(ws.Variables, def)
}

func findChildKind(node tree_sitter.Node, kind string) tree_sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c.GrammarName() == kind {
			return c
		}
	}
	return tree_sitter.Node{}
}
