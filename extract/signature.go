package extract

import (
	"errors"
	"strings"

	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ExtractSignature builds a FunctionSignature from a function_definition
// node (spec.md §4.3). Grounded on
// original_source/src/extractors/fast.rs's function_signature.
func ExtractSignature(pf *model.ParsedFile, node tree_sitter.Node) (model.FunctionSignature, error) {
	nameNode := node.ChildByFieldName("name")
	if nameNode.IsNull() {
		return model.FunctionSignature{}, errors.New("could not find function name")
	}
	name := textOf(nameNode, pf.Contents)
	nameRange := model.RangeFromNode(nameNode)

	sigRange := model.RangeFromNode(node)
	sigRange.End = nameRange.End

	var argout int
	var vargout bool
	var argoutNames []string
	if output := findChildKind(node, "function_output"); !output.IsNull() {
		first := output.Child(0)
		if !first.IsNull() && first.GrammarName() == "identifier" {
			argout = 1
			argoutNames = append(argoutNames, textOf(first, pf.Contents))
		} else if !first.IsNull() {
			argout = int(first.NamedChildCount())
			for i := 0; i < int(first.NamedChildCount()); i++ {
				c := first.NamedChild(i)
				if c.GrammarName() != "identifier" {
					continue
				}
				argName := textOf(c, pf.Contents)
				if argName == "varargout" {
					vargout = true
				} else {
					argoutNames = append(argoutNames, argName)
				}
			}
			if vargout {
				argout--
			}
		}
	}

	var argin int
	var vargin bool
	var arginNames []string
	var varginNames []string
	if inputs := findChildKind(node, "function_arguments"); !inputs.IsNull() {
		sigRange.End = model.FromTSPoint(inputs.EndPosition())
		argin = int(inputs.NamedChildCount())
		for i := 0; i < int(inputs.NamedChildCount()); i++ {
			argName := textOf(inputs.NamedChild(i), pf.Contents)
			if argName == "varargin" {
				vargin = true
				continue
			}
			arginNames = append(arginNames, argName)
		}
		if vargin {
			argin--
		}

		optionalArgs := make(map[string]struct{})
		for i := 0; i < int(node.NamedChildCount()); i++ {
			argStmt := node.NamedChild(i)
			if argStmt.GrammarName() != "arguments_statement" {
				continue
			}
			if isOutputArguments(argStmt, pf) {
				continue
			}
			for j := 0; j < int(argStmt.NamedChildCount()); j++ {
				prop := argStmt.NamedChild(j)
				nameChild := prop.ChildByFieldName("name")
				if nameChild.IsNull() || nameChild.GrammarName() != "property_name" {
					continue
				}
				if nameChild.NamedChildCount() < 2 {
					continue
				}
				argName := textOf(nameChild.NamedChild(0), pf.Contents)
				optArgName := textOf(nameChild.NamedChild(1), pf.Contents)
				arginNames = removeString(arginNames, argName)
				optionalArgs[argName] = struct{}{}
				varginNames = append(varginNames, optArgName)
			}
		}
		vargin = vargin || len(optionalArgs) > 0
		argin -= len(optionalArgs)
	}

	doc := firstCommentBlock(node, pf)

	return model.FunctionSignature{
		Name:          name,
		NameRange:     nameRange,
		Range:         sigRange,
		Argin:         argin,
		Argout:        argout,
		Vargin:        vargin,
		Vargout:       vargout,
		ArginNames:    arginNames,
		ArgoutNames:   argoutNames,
		VarginNames:   varginNames,
		Documentation: doc,
	}, nil
}

// isOutputArguments reports whether node's "attributes" named child
// lists "Output" among its attribute identifiers (spec.md §4.3:
// "arguments_statement whose attributes do not include Output").
func isOutputArguments(argStmt tree_sitter.Node, pf *model.ParsedFile) bool {
	attrs := findChildKind(argStmt, "attributes")
	if attrs.IsNull() {
		return false
	}
	for i := 0; i < int(attrs.NamedChildCount()); i++ {
		if textOf(attrs.NamedChild(i), pf.Contents) == "Output" {
			return true
		}
	}
	return false
}

// firstCommentBlock takes the text of node's first comment child, trims
// each line's surrounding whitespace and then one leading '%' (space
// after the '%' is kept), and joins the lines with '\n' (spec.md §4.3
// documentation rule).
func firstCommentBlock(node tree_sitter.Node, pf *model.ParsedFile) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c.GrammarName() != "comment" {
			continue
		}
		text := textOf(c, pf.Contents)
		lines := strings.Split(text, "\n")
		for j, l := range lines {
			l = strings.TrimSpace(l)
			lines[j] = strings.TrimPrefix(l, "%")
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
