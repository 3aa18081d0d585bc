// Package extract implements the symbol extractor: it walks a parsed
// file's capture list and builds the model.Workspace of function
// definitions, variable definitions, and resolved references that the
// rest of the server (hover, go-to-definition, completion, references)
// reads from. Grounded throughout on
// original_source/src/extractors/symbols.rs, restructured around an
// explicit Lookup interface instead of channel round-trips to a
// dispatcher thread.
package extract

import (
	"github.com/carn181/mlsp/logging"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Lookup is the cross-file query surface the extractor needs from the
// shared store: resolving names defined in other files. Grounded on
// original_source/src/threads/db.rs's db_get_function/db_get_package/
// db_get_script/db_fetch_functions, which round-tripped through
// channels to the dispatcher thread; here it's a plain interface so
// store.Store can satisfy it directly.
type Lookup interface {
	Function(qualifiedName string) (*model.FunctionDefinition, bool)
	AllFunctions() map[string]*model.FunctionDefinition
	// Packages returns every known dotted package name starting with
	// prefix (spec.md §4.4's "Get Package by prefix"; db_get_package's
	// `p.starts_with(&pkg)`). Callers that need the shortest match do
	// their own min-by-length tie-break, mirroring the Rust call sites'
	// min_by(|a,b| a.len().cmp(&b.len())).
	Packages(name string) []string
	Script(name string) (path string, ok bool)
}

type Extractor struct {
	Parser *parser.TSParser
	Lookup Lookup
}

func New(p *parser.TSParser, lookup Lookup) *Extractor {
	return &Extractor{Parser: p, Lookup: lookup}
}

// scope tracks one function/lambda's own node and the Workspace being
// built for it; scopes nest when a function_definition or lambda is
// itself nested inside another.
type scope struct {
	node tree_sitter.Node
	ws   *model.Workspace
}

// Extract builds pf.Workspace from pf.Tree (spec.md §4.2). It does not
// mutate the store; the caller publishes the resulting definitions
// once extraction succeeds.
func (e *Extractor) Extract(pf *model.ParsedFile) error {
	result, err := e.Parser.Matches(parser.CaptureQuery, pf.Contents, pf.Tree)
	if err != nil {
		return err
	}

	scopes := make(map[uint]*scope)
	for _, nc := range result.Ordered {
		if nc.Name == "fndef" {
			scopes[uint(nc.Node.StartByte())] = &scope{node: nc.Node, ws: model.NewWorkspace()}
		}
	}

	ws := model.NewWorkspace()
	e.collectSignatures(pf, scopes, ws)

	var scopeChain []uint
	for _, nc := range result.Ordered {
		if nc.Name == "fndef" {
			continue
		}
		scopeChain = scopeChain[:0]
		for p := parentFunction(nc.Node); !p.IsNull(); p = parentFunction(p) {
			scopeChain = append(scopeChain, uint(p.StartByte()))
		}
		name := textOf(nc.Node, pf.Contents)
		e.dispatchCapture(nc.Name, name, nc.Node, ws, scopeChain, scopes, pf)
	}

	for _, sc := range scopes {
		ws.Merge(sc.ws)
	}
	pf.Workspace = ws
	return nil
}

// collectSignatures extracts every function_definition's signature and
// places the resulting FunctionDefinition either in the workspace that
// owns its parent scope, or at top level (spec.md §4.2 step 2,
// original_source's first loop over `functions`).
func (e *Extractor) collectSignatures(pf *model.ParsedFile, scopes map[uint]*scope, ws *model.Workspace) {
	for _, sc := range scopes {
		if sc.node.GrammarName() != "function_definition" {
			continue
		}
		sig, err := ExtractSignature(pf, sc.node)
		if err != nil {
			logging.Logger.Warn("signature extraction failed", "path", pf.Path, "err", err)
			continue
		}
		def := &model.FunctionDefinition{
			Path:      pf.Path,
			Name:      sig.Name,
			Package:   pf.Package,
			Loc:       sig.NameRange,
			Signature: sig,
		}
		if parent := parentFunction(sc.node); !parent.IsNull() {
			if psc, ok := scopes[uint(parent.StartByte())]; ok {
				psc.ws.Functions[def.Name] = def
				continue
			}
		}
		ws.Functions[def.Name] = def
	}
}

func (e *Extractor) dispatchCapture(kind, name string, node tree_sitter.Node, ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, pf *model.ParsedFile) {
	switch kind {
	case "vardef":
		defVar(name, ws, scopeChain, scopes, node, pf)
	case "command":
		e.commandCapture(name, ws, scopeChain, scopes, node, pf)
	case "fncall":
		e.fncallCapture(ws, scopeChain, scopes, node, pf)
	case "identifier":
		e.identifierCapture(name, ws, scopeChain, scopes, node, pf)
	case "field":
		e.fieldCapture(ws, scopeChain, scopes, node, pf)
	default:
		logging.Logger.Warn("unknown capture kind", "kind", kind)
	}
}

// identifierCapture handles the bare `identifier` capture. Most
// identifiers are filtered out because they're actually part of a
// field_expression, a function_definition name, a multioutput_variable,
// or the `end` keyword inside arguments/ranges. What's left becomes a
// variable reference, or an UnknownVariable placeholder (spec.md §4.4:
// every name gets a reference, even unresolved ones, so hover and
// diagnostics have somewhere to attach).
func (e *Extractor) identifierCapture(name string, ws *model.Workspace, scopeChain []uint, scopes map[uint]*scope, node tree_sitter.Node, pf *model.ParsedFile) {
	parent := node.Parent()
	if !parent.IsNull() {
		switch parent.GrammarName() {
		case "field_expression", "function_definition", "multioutput_variable":
			return
		case "function_call":
			if gp := parent.Parent(); !gp.IsNull() && gp.GrammarName() == "field_expression" {
				return
			}
		}
		if name == "end" && (parent.GrammarName() == "arguments" || parent.GrammarName() == "range") {
			return
		}
	}
	if assign := parentOfKind("assignment", node); !assign.IsNull() {
		if left := assign.ChildByFieldName("left"); !left.IsNull() {
			if model.RangeFromNode(left).Contains(model.FromTSPoint(node.StartPosition())) {
				return
			}
		}
	}
	loc := model.RangeFromNode(node)
	for _, r := range ws.References {
		if r.Loc == loc {
			return
		}
	}

	refs := refToVar(name, ws, scopeChain, scopes, node, pf)
	var picked *model.Reference
	for i := range refs {
		r := refs[i]
		if r.Target.Kind != model.TargetVariable {
			continue
		}
		if assign := parentOfKind("assignment", node); !assign.IsNull() {
			if left := assign.ChildByFieldName("left"); !left.IsNull() {
				if model.RangeFromNode(left).FullyContains(r.Target.VarDef.Loc) {
					continue
				}
			}
		}
		picked = &r
		break
	}
	if picked != nil {
		ws.References = append(ws.References, picked)
		return
	}
	ws.References = append(ws.References, &model.Reference{Loc: loc, Name: name, Target: model.UnknownVariable()})
}

func textOf(n tree_sitter.Node, contents []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(contents)) {
		end = uint(len(contents))
	}
	if start > end {
		return ""
	}
	return string(contents[start:end])
}

func parentFunction(node tree_sitter.Node) tree_sitter.Node {
	n := node
	for {
		p := n.Parent()
		if p.IsNull() {
			return p
		}
		if p.GrammarName() == "function_definition" || p.GrammarName() == "lambda" {
			return p
		}
		n = p
	}
}

func parentOfKind(kind string, node tree_sitter.Node) tree_sitter.Node {
	n := node
	for {
		p := n.Parent()
		if p.IsNull() {
			return p
		}
		if p.GrammarName() == kind {
			return p
		}
		n = p
	}
}

// softScopeParent finds the nearest enclosing multi-block statement
// (if/switch/try/for/while): spec.md §4.2's soft-scope discipline,
// grounded on original_source/src/extractors/symbols.rs's
// soft_scope_parent.
func softScopeParent(node tree_sitter.Node) tree_sitter.Node {
	n := node
	for {
		p := n.Parent()
		if p.IsNull() {
			return p
		}
		switch p.GrammarName() {
		case "if_statement", "switch_statement", "try_statement", "for_statement", "while_statement":
			return p
		}
		n = p
	}
}
