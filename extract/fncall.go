package extract

import (
	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// fncallCapture resolves a function_call's callee name: first as a
// variable (a function handle stored in a variable), then as a known
// function, falling back to an UnknownFunction reference when the call
// sits on the right-hand side of an assignment (the left-hand side of
// `x(1) = 2` is an indexing assignment, not a call, so it's left
// alone). Grounded on
// original_source/src/extractors/symbols.rs's fncall_capture_impl.
func (e *Extractor) fncallCapture(ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, node tree_sitter.Node, pf *model.ParsedFile) {
	if parent := node.Parent(); !parent.IsNull() && parent.GrammarName() == "field_expression" {
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode.IsNull() || nameNode.GrammarName() != "identifier" {
		return
	}
	loc := model.RangeFromNode(nameNode)
	for _, r := range ws.References {
		if r.Loc == loc {
			return
		}
	}
	fname := textOf(nameNode, pf.Contents)

	if vs := refToVar(fname, ws, scopeChain, scopes, nameNode, pf); len(vs) > 0 {
		ws.References = append(ws.References, &vs[0])
		return
	}
	if fs := e.refToFn(fname, ws, scopeChain, scopes, nameNode, false); len(fs) > 0 {
		ws.References = append(ws.References, &fs[0])
		return
	}

	rightDef := true
	if assign := parentOfKind("assignment", node); !assign.IsNull() {
		if right := assign.ChildByFieldName("right"); !right.IsNull() {
			rightDef = model.RangeFromNode(right).Contains(model.FromTSPoint(node.StartPosition()))
		}
	}
	if rightDef {
		ws.References = append(ws.References, &model.Reference{Loc: loc, Name: fname, Target: model.UnknownFunction()})
	}
}
