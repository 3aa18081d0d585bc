// Package parser wraps the MATLAB tree-sitter grammar behind the same
// narrow surface the teacher's Faust parser exposes: parse bytes into a
// tree, run a query and get captures grouped by name.
package parser

import (
	"sync"

	tree_sitter_matlab "github.com/tree-sitter-grammars/tree-sitter-matlab/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// TSParser owns one tree-sitter parser instance. tree-sitter parsers are
// not safe for concurrent use, so every call is serialized here; callers
// that need concurrency run extraction on the returned tree afterwards
// (trees themselves are read-only once produced).
type TSParser struct {
	language *tree_sitter.Language
	parser   *tree_sitter.Parser
	mu       sync.Mutex
}

func New() *TSParser {
	p := &TSParser{
		language: tree_sitter.NewLanguage(tree_sitter_matlab.Language()),
	}
	p.parser = tree_sitter.NewParser()
	p.parser.SetLanguage(p.language)
	return p
}

func (p *TSParser) Language() *tree_sitter.Language { return p.language }

// Parse builds a fresh tree from code. Full reparse is acceptable per
// spec.md §4.1 ("the hard work is elsewhere").
func (p *TSParser) Parse(code []byte) *tree_sitter.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	tree := p.parser.Parse(code, nil)
	p.parser.Reset()
	return tree
}

// QueryResult groups a query's captures by capture name.
type QueryResult struct {
	Captures map[string][]tree_sitter.Node
	// Ordered records each capture's position in a single start-byte sorted
	// sequence across all capture names, needed by the extractor (spec.md
	// §4.2 step 1: "Captures are sorted by start byte").
	Ordered []NamedCapture
}

type NamedCapture struct {
	Name string
	Node tree_sitter.Node
}

// Matches runs queryStr against tree and groups the results, sorted by
// start byte across all capture names combined.
func (p *TSParser) Matches(queryStr string, code []byte, tree *tree_sitter.Tree) (*QueryResult, error) {
	query, qerr := tree_sitter.NewQuery(p.language, queryStr)
	if qerr != nil {
		return nil, qerr
	}
	defer query.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, tree.RootNode(), code)

	result := &QueryResult{Captures: make(map[string][]tree_sitter.Node)}
	for m := matches.Next(); m != nil; m = matches.Next() {
		for _, c := range m.Captures {
			name := query.CaptureNames()[c.Index]
			result.Captures[name] = append(result.Captures[name], c.Node)
			result.Ordered = append(result.Ordered, NamedCapture{Name: name, Node: c.Node})
		}
	}
	sortByStartByte(result.Ordered)
	return result, nil
}

func sortByStartByte(ns []NamedCapture) {
	// small N per file in practice; simple insertion sort keeps this
	// dependency-free and stable, which matters since captures sharing a
	// start byte must keep their query-emission order.
	for i := 1; i < len(ns); i++ {
		j := i
		for j > 0 && ns[j-1].Node.StartByte() > ns[j].Node.StartByte() {
			ns[j-1], ns[j] = ns[j], ns[j-1]
			j--
		}
	}
}
