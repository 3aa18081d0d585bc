package features

import (
	"sort"

	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// SemanticTokenType enumerates the legend this server advertises in
// `initialize`'s SemanticTokensOptions.Legend.TokenTypes. Order matters:
// a token's encoded type is its index here. Grounded on
// original_source/src/features/semantic.rs's token_id table.
type SemanticTokenType int

const (
	TokNumber SemanticTokenType = iota
	TokComment
	TokString
	TokOperator
	TokKeyword
	TokParameter
	TokFunction
	TokNamespace
	TokVariable
	TokProperty
)

// SemanticLegend is the advertised token-type legend, index-matched to
// SemanticTokenType's values.
var SemanticLegend = []string{
	"number", "comment", "string", "operator", "keyword",
	"parameter", "function", "namespace", "variable", "property",
}

type semanticToken struct {
	loc   model.Range
	ttype SemanticTokenType
}

// SemanticTokens runs SemanticQuery over pf and returns the delta-encoded
// LSP token data array: each token contributes 5 uint32s
// (deltaLine, deltaStartChar, length, tokenType, tokenModifiers).
// Grounded on original_source/src/features/semantic.rs's
// semantic_tokens_impl/deltalize_tokens.
func SemanticTokens(p *parser.TSParser, pf *model.ParsedFile) ([]uint32, error) {
	result, err := p.Matches(parser.SemanticQuery, pf.Contents, pf.Tree)
	if err != nil {
		return nil, err
	}

	var tokens []semanticToken
	for _, nc := range result.Ordered {
		switch nc.Name {
		case "number":
			tokens = append(tokens, semanticToken{model.RangeFromNode(nc.Node), TokNumber})
		case "comment":
			tokens = append(tokens, semanticToken{model.RangeFromNode(nc.Node), TokComment})
		case "string":
			tokens = append(tokens, semanticToken{model.RangeFromNode(nc.Node), TokString})
		case "operator":
			tokens = append(tokens, semanticToken{model.RangeFromNode(nc.Node), TokOperator})
		case "keyword":
			tokens = append(tokens, semanticToken{model.RangeFromNode(nc.Node), TokKeyword})
		case "parameter":
			tokens = append(tokens, semanticToken{model.RangeFromNode(nc.Node), TokParameter})
		case "function":
			tokens = append(tokens, semanticToken{model.RangeFromNode(nc.Node), TokFunction})
		case "identifer", "identifier":
			if t, ok := semanticTokenForIdentifier(nc.Node, pf); ok {
				tokens = append(tokens, t)
			}
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].loc.Start.Row != tokens[j].loc.Start.Row {
			return tokens[i].loc.Start.Row < tokens[j].loc.Start.Row
		}
		return tokens[i].loc.Start.Column < tokens[j].loc.Start.Column
	})

	return deltaEncode(tokens), nil
}

// semanticTokenForIdentifier classifies a bare identifier by the
// reference covering it, distinguishing plain variables from dotted
// field accesses (spec.md §4.5).
func semanticTokenForIdentifier(node tree_sitter.Node, pf *model.ParsedFile) (semanticToken, bool) {
	if pf.Workspace == nil {
		return semanticToken{}, false
	}
	loc := model.RangeFromNode(node)
	for _, ref := range pf.Workspace.References {
		if !ref.Loc.Contains(loc.Start) {
			continue
		}
		switch ref.Target.Kind {
		case model.TargetFunction, model.TargetUnknownFunction, model.TargetScript:
			return semanticToken{loc, TokFunction}, true
		case model.TargetNamespace:
			return semanticToken{loc, TokNamespace}, true
		case model.TargetVariable:
			if ref.Dotted() {
				return semanticToken{loc, TokProperty}, true
			}
			if ref.Target.VarDef != nil && ref.Target.VarDef.IsParameter {
				return semanticToken{loc, TokParameter}, true
			}
			return semanticToken{loc, TokVariable}, true
		}
	}
	return semanticToken{}, false
}

func deltaEncode(tokens []semanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevStart uint32
	for _, t := range tokens {
		line := t.loc.Start.Row
		start := t.loc.Start.Column
		length := t.loc.End.Column - t.loc.Start.Column

		deltaLine := line - prevLine
		deltaStart := start
		if deltaLine == 0 {
			deltaStart = start - prevStart
		}
		data = append(data, deltaLine, deltaStart, length, uint32(t.ttype), 0)
		prevLine, prevStart = line, start
	}
	return data
}
