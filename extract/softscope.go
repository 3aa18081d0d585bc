package extract

import (
	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// isInSoftScope reports whether nref may see a definition at ndef,
// given MATLAB's soft-scope rule: a variable assigned inside one
// branch of an if/elseif/else, switch/case/otherwise, or try/catch is
// not visible from a sibling branch, only from the statement as a
// whole and anything after it. Grounded on
// original_source/src/extractors/symbols.rs's is_in_soft_scope.
func isInSoftScope(nref, ndef tree_sitter.Node) bool {
	node := nref
	for {
		parent := softScopeParent(node)
		if parent.IsNull() {
			return true
		}
		r := model.RangeFromNode(parent)
		refPoint := model.FromTSPoint(nref.StartPosition())
		defPoint := model.FromTSPoint(ndef.StartPosition())
		if r.Contains(refPoint) && r.Contains(defPoint) {
			for i := 0; i < int(parent.NamedChildCount()); i++ {
				child := parent.NamedChild(i)
				cr := model.RangeFromNode(child)
				if cr.Contains(defPoint) && !cr.Contains(refPoint) {
					return false
				}
			}
		}
		node = parent
	}
}

func nodeAtPos(pf *model.ParsedFile, p model.Point) tree_sitter.Node {
	point := tree_sitter.Point{Row: p.Row, Column: p.Column}
	return pf.Tree.RootNode().NamedDescendantForPointRange(point, point)
}
