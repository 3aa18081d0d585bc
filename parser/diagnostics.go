package parser

import (
	"fmt"

	"github.com/carn181/mlsp/model"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// SyntaxDiagnostic is a tree-sitter-derived error, independent of symbol
// resolution (spec.md §4.5 "ERROR nodes from tree-sitter become syntax
// errors at the node's range").
type SyntaxDiagnostic struct {
	Range   model.Range
	Message string
}

// SyntaxDiagnostics runs DiagnosticsQuery over tree and reports one entry
// per ERROR/MISSING node, grounded on the teacher's parser.TSDiagnostics
// and original_source/src/analysis/diagnostics.rs (both key off
// `(ERROR) @error`, the teacher additionally differentiates MISSING).
func (p *TSParser) SyntaxDiagnostics(code []byte, tree *tree_sitter.Tree) ([]SyntaxDiagnostic, error) {
	if !tree.RootNode().HasError() {
		return nil, nil
	}
	result, err := p.Matches(DiagnosticsQuery, code, tree)
	if err != nil {
		return nil, err
	}
	var diags []SyntaxDiagnostic
	for _, nc := range result.Ordered {
		node := nc.Node
		start := node.StartPosition()
		var msg string
		if nc.Name == "missing" {
			msg = fmt.Sprintf("missing %q at %d:%d", node.GrammarName(), start.Row, start.Column)
		} else {
			msg = "there is a syntax error somewhere here"
		}
		diags = append(diags, SyntaxDiagnostic{
			Range:   model.RangeFromNode(node),
			Message: msg,
		})
	}
	return diags, nil
}

// FoldingRanges reports every block node's start/end row (spec.md §4.5
// "Folding").
func (p *TSParser) FoldingRanges(code []byte, tree *tree_sitter.Tree) ([]model.Range, error) {
	result, err := p.Matches(FoldingQuery, code, tree)
	if err != nil {
		return nil, err
	}
	var ranges []model.Range
	for _, node := range result.Captures["block"] {
		ranges = append(ranges, model.RangeFromNode(node))
	}
	return ranges, nil
}
