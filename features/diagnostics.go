package features

import (
	"fmt"

	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	"github.com/hbollon/go-edlib"
)

// Severity mirrors lsp_types::DiagnosticSeverity's ERROR/WARNING split:
// syntax errors are errors, unresolved names are warnings (spec.md §4.5
// "Diagnostics").
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
)

// Diagnostic is one file-level diagnostic.
type Diagnostic struct {
	Loc      model.Range
	Message  string
	Severity Severity
}

// suggestionThreshold is the minimum Jaro-Winkler similarity worth
// surfacing as a "did you mean" hint — low enough to catch single
// typos, high enough to not suggest unrelated names.
const suggestionThreshold = 0.82

// Diagnostics answers spec.md §4.5 "Diagnostics": tree-sitter ERROR/
// MISSING nodes become syntax errors; UnknownVariable and
// UnknownFunction references become warnings. As a supplement beyond
// spec.md's literal text, an unresolved reference is checked against
// every variable and function name in the file plus every function
// name in the Store via Jaro-Winkler similarity
// (github.com/hbollon/go-edlib, also used by standardbeagle-lci's
// fuzzy_matcher.go) and, above suggestionThreshold, appends a
// "did you mean" hint to the warning message.
func Diagnostics(p *parser.TSParser, pf *model.ParsedFile, lookup extract.Lookup) ([]Diagnostic, error) {
	var diags []Diagnostic

	syntax, err := p.SyntaxDiagnostics(pf.Contents, pf.Tree)
	if err != nil {
		return nil, err
	}
	for _, d := range syntax {
		diags = append(diags, Diagnostic{Loc: d.Range, Message: d.Message, Severity: SeverityError})
	}

	if pf.Workspace == nil {
		return diags, nil
	}

	candidates := knownNames(pf, lookup)
	for _, ref := range pf.Workspace.References {
		switch ref.Target.Kind {
		case model.TargetUnknownVariable:
			diags = append(diags, Diagnostic{
				Loc:      ref.Loc,
				Message:  unresolvedMessage("variable", ref.Name, candidates),
				Severity: SeverityWarning,
			})
		case model.TargetUnknownFunction:
			diags = append(diags, Diagnostic{
				Loc:      ref.Loc,
				Message:  unresolvedMessage("function", ref.Name, candidates),
				Severity: SeverityWarning,
			})
		}
	}
	return diags, nil
}

func knownNames(pf *model.ParsedFile, lookup extract.Lookup) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(n string) {
		if n == "" {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	for _, v := range pf.Workspace.Variables {
		add(v.Name)
	}
	for _, fn := range pf.Workspace.Functions {
		add(fn.Name)
	}
	if lookup != nil {
		for _, fn := range lookup.AllFunctions() {
			add(fn.Name)
		}
	}
	return names
}

func unresolvedMessage(kind, name string, candidates []string) string {
	msg := fmt.Sprintf("unresolved %s %q", kind, name)
	if best, ok := bestSuggestion(name, candidates); ok {
		msg += fmt.Sprintf(" (did you mean %q?)", best)
	}
	return msg
}

func bestSuggestion(name string, candidates []string) (string, bool) {
	var best string
	var bestScore float64
	for _, c := range candidates {
		if c == name {
			continue
		}
		score, err := edlib.StringsSimilarity(name, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore >= suggestionThreshold {
		return best, true
	}
	return "", false
}
