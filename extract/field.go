package extract

import (
	"strings"

	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// fieldChainLink is one segment of a field_expression chain: the base
// object, or a `.name` / `.name(...)` field, together with the node its
// text came from (used for the emitted Reference's location).
type fieldChainLink struct {
	name string
	node tree_sitter.Node
}

// fieldCapture resolves a field_expression (`object.field(.field...)`),
// spec.md §4.2.4. Grounded on
// original_source/src/extractors/symbols.rs's field_capture_impl.
func (e *Extractor) fieldCapture(ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, node tree_sitter.Node, pf *model.ParsedFile) {
	isDef := false
	if parent := node.Parent(); !parent.IsNull() {
		switch parent.GrammarName() {
		case "multioutput_variable":
			isDef = true
		case "assignment":
			if left := parent.ChildByFieldName("left"); !left.IsNull() && left.StartByte() == node.StartByte() && left.EndByte() == node.EndByte() {
				isDef = true
			}
		}
	}

	object := node.ChildByFieldName("object")
	if object.IsNull() {
		return
	}

	// object is itself a call: `f().field` — resolve f as a normal
	// function/variable reference, and in definition mode introduce a
	// variable definition for it, per the original's object.kind() ==
	// "function_call" branch. The chain's own fields are not walked.
	if object.GrammarName() == "function_call" {
		nameNode := object.ChildByFieldName("name")
		if nameNode.IsNull() || nameNode.GrammarName() != "identifier" {
			return
		}
		name := textOf(nameNode, pf.Contents)
		vs := refToVar(name, ws, scopeChain, scopes, nameNode, pf)
		fs := e.refToFn(name, ws, scopeChain, scopes, nameNode, false)
		if len(vs) > 0 {
			ws.References = append(ws.References, &vs[0])
		} else if len(fs) > 0 {
			ws.References = append(ws.References, &fs[0])
		}
		if isDef {
			defVar(name, ws, scopeChain, scopes, nameNode, pf)
		}
		return
	}

	baseName := textOf(object, pf.Contents)
	baseRow := node.StartPosition().Row

	var links []fieldChainLink
	links = append(links, fieldChainLink{name: baseName, node: object})
	for i := 0; i < int(node.ChildCount()); i++ {
		// children_by_field_name("field") in the original; go-tree-sitter
		// doesn't expose a multi-field iterator so we filter manually.
		child := node.Child(uint(i))
		if child.IsNull() {
			continue
		}
		if !isFieldChild(node, child) {
			continue
		}
		// "Chains whose subsequent fields are on a different source row
		// than the base are truncated at the row change" (spec.md §4.2.4).
		if child.StartPosition().Row != baseRow {
			break
		}
		switch child.GrammarName() {
		case "identifier":
			links = append(links, fieldChainLink{name: textOf(child, pf.Contents), node: child})
		case "function_call":
			nameNode := child.ChildByFieldName("name")
			if nameNode.IsNull() {
				return
			}
			links = append(links, fieldChainLink{name: textOf(nameNode, pf.Contents), node: nameNode})
		default:
			return
		}
	}

	isPackage := false
	var currentNS string
	haveNS := false
	for i, link := range links {
		path := joinPath(links[:i+1])

		if isDef {
			e.fieldDefLink(ws, scopeChain, scopes, link, path, i, len(links), pf)
			continue
		}

		if i == 0 {
			vref := refToVar(path, ws, scopeChain, scopes, link.node, pf)
			isPackage = len(vref) == 0
		}

		if !isPackage {
			vs := refToVar(path, ws, scopeChain, scopes, link.node, pf)
			if len(vs) > 0 {
				ws.References = append(ws.References, &vs[0])
			} else {
				ws.References = append(ws.References, &model.Reference{
					Loc: model.RangeFromNode(link.node), Name: path, Target: model.UnknownVariable(),
				})
			}
			continue
		}

		// isPackage: only packages, functions, class folders are legal
		// from here on.
		if haveNS {
			pkg := currentNS + "." + link.name
			pkg = strings.TrimPrefix(pkg, ".")
			matches := e.Lookup.Packages(pkg)
			var shortest string
			for _, m := range matches {
				if shortest == "" || len(m) < len(shortest) {
					shortest = m
				}
			}
			parent := link.node.Parent()
			if parent.IsNull() {
				return
			}
			if parent.GrammarName() == "function_call" {
				if def, ok := e.Lookup.Function(path); ok {
					ws.References = append(ws.References, &model.Reference{
						Loc: model.RangeFromNode(link.node), Name: path, Target: model.FunctionTarget(def),
					})
				} else {
					ws.References = append(ws.References, &model.Reference{
						Loc: model.RangeFromNode(link.node), Name: path, Target: model.UnknownFunction(),
					})
					return
				}
				continue
			}
			if shortest != "" {
				ws.References = append(ws.References, &model.Reference{
					Loc: model.RangeFromNode(link.node), Name: path, Target: model.NamespaceTarget(shortest),
				})
				currentNS = shortest
				continue
			}
			ws.References = append(ws.References, &model.Reference{
				Loc: model.RangeFromNode(link.node), Name: path, Target: model.UnknownVariable(),
			})
			return
		}

		matches := e.Lookup.Packages(link.name)
		var shortest string
		for _, m := range matches {
			if shortest == "" || len(m) < len(shortest) {
				shortest = m
			}
		}
		if shortest == "" {
			// Neither a variable nor a known package: leave the chain
			// alone rather than guessing, as the original does.
			return
		}
		ws.References = append(ws.References, &model.Reference{
			Loc: model.RangeFromNode(link.node), Name: path, Target: model.NamespaceTarget(shortest),
		})
		currentNS = shortest
		haveNS = true
	}
}

// fieldDefLink handles one prefix of a field-expression chain that's on
// the LHS of an assignment (or inside a multioutput_variable): spec.md
// §4.2.4's "definition mode". Non-resolving prefixes after the base emit
// an UnknownVariable diagnostic-informative reference (spec.md §9, kept as
// specified); the first and last links additionally introduce/rebind a
// variable definition.
func (e *Extractor) fieldDefLink(ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, link fieldChainLink, path string, i, n int, pf *model.ParsedFile) {
	vref := refToVar(path, ws, scopeChain, scopes, link.node, pf)
	if len(vref) > 0 {
		ws.References = append(ws.References, &vref[0])
	} else if i > 0 {
		ws.References = append(ws.References, &model.Reference{
			Loc: model.RangeFromNode(link.node), Name: path, Target: model.UnknownVariable(),
		})
	}
	if i == 0 || i == n-1 {
		defVar(path, ws, scopeChain, scopes, link.node, pf)
	}
}

func joinPath(links []fieldChainLink) string {
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.name
	}
	return strings.Join(names, ".")
}

// isFieldChild approximates "child is one of node's field-named
// children" (go-tree-sitter has no children_by_field_name iterator):
// every named child except the one whose byte range matches node's
// "object" child counts as a field.
func isFieldChild(node, child tree_sitter.Node) bool {
	object := node.ChildByFieldName("object")
	if !object.IsNull() && child.StartByte() == object.StartByte() && child.EndByte() == object.EndByte() {
		return false
	}
	return child.IsNamed()
}
