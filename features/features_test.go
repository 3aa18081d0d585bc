package features

import (
	"testing"

	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	functions map[string]*model.FunctionDefinition
}

func (s stubLookup) Function(name string) (*model.FunctionDefinition, bool) {
	f, ok := s.functions[name]
	return f, ok
}
func (s stubLookup) AllFunctions() map[string]*model.FunctionDefinition { return s.functions }
func (s stubLookup) Packages(string) []string                          { return nil }
func (s stubLookup) Script(string) (string, bool)                      { return "", false }

func extractFile(t *testing.T, path, src string, lookup extract.Lookup) (*parser.TSParser, *model.ParsedFile) {
	t.Helper()
	p := parser.New()
	pf, err := p.Load(path, []byte(src))
	require.NoError(t, err)
	ex := extract.New(p, lookup)
	require.NoError(t, ex.Extract(pf))
	return p, pf
}

func TestHoverAtVariable(t *testing.T) {
	_, pf := extractFile(t, "/v.m", "x = 1;\ny = x + 1;\n", stubLookup{})
	h, ok := HoverAt(pf, model.Point{Row: 1, Column: 4})
	require.True(t, ok)
	assert.Contains(t, h.PlainText, "x = 1;")
}

func TestDefinitionAtVariable(t *testing.T) {
	_, pf := extractFile(t, "/v.m", "x = 1;\ny = x + 1;\n", stubLookup{})
	loc, ok := DefinitionAt(pf, model.Point{Row: 1, Column: 4})
	require.True(t, ok)
	assert.Equal(t, uint32(0), loc.Loc.Start.Row)
}

func TestFindReferencesScopesVariableToFile(t *testing.T) {
	_, pf := extractFile(t, "/v.m", "x = 1;\ny = x + x;\n", stubLookup{})
	files := map[string]*model.ParsedFile{"/v.m": pf}
	locs := FindReferences(files, "/v.m", model.Point{Row: 0, Column: 0}, true)
	assert.Len(t, locs, 3) // declaration + 2 uses
}

func TestCompletionPrefix(t *testing.T) {
	pf := &model.ParsedFile{Contents: []byte("foo.ba")}
	assert.Equal(t, "foo.ba", CompletionPrefix(pf, model.Point{Row: 0, Column: 6}))
}

func TestCompletionAtVariable(t *testing.T) {
	_, pf := extractFile(t, "/v.m", "xval = 1;\nxy = 2;\n", stubLookup{})
	items := CompletionAt(pf, model.Point{Row: 1, Column: 1}, nil, stubLookup{})
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	assert.Contains(t, labels, "xval")
}

// S5: function e.m defines `function y = f(x) ... end`; completion on
// `f` elsewhere returns one item with the `f(${1:x})` snippet and the
// signature's documentation.
func TestCompletionAtFunctionEmitsSnippet(t *testing.T) {
	src := "function y = f(x)\n% doubles x\ny = x * 2;\nend\nz = f(2);\n"
	_, pf := extractFile(t, "/e.m", src, stubLookup{})
	items := CompletionAt(pf, model.Point{Row: 4, Column: 5}, nil, stubLookup{})

	var found *CompletionItem
	for i := range items {
		if items[i].Label == "f" {
			found = &items[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, CompletionFunction, found.Kind)
	assert.Equal(t, "f(${1:x})", found.Snippet)
	assert.Contains(t, found.Doc, "doubles x")
}

func TestDiagnosticsFlagsUnknownVariable(t *testing.T) {
	p, pf := extractFile(t, "/v.m", "y = undefinedvar + 1;\n", stubLookup{})
	diags, err := Diagnostics(p, pf, stubLookup{})
	require.NoError(t, err)
	var found bool
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			found = true
		}
	}
	assert.True(t, found)
}

// S1: a written-to variable highlights as Write at its definition and
// Read at every subsequent use.
func TestDocumentHighlightDistinguishesWriteFromRead(t *testing.T) {
	_, pf := extractFile(t, "/h.m", "x = 1;\ny = x + x;\n", stubLookup{})
	hls := DocumentHighlight(pf, model.Point{Row: 0, Column: 0})

	var writes, reads int
	for _, h := range hls {
		switch h.Kind {
		case HighlightWrite:
			writes++
		case HighlightRead:
			reads++
		}
	}
	assert.Equal(t, 1, writes)
	assert.Equal(t, 2, reads)
}

// S6: applying a DidChange edit that introduces one new unresolved
// name re-diagnoses to exactly one additional warning, without
// disturbing diagnostics already present before the edit.
func TestDiagnosticsAfterDidChangeAddsExactlyOneWarning(t *testing.T) {
	p, pf := extractFile(t, "/d.m", "x = 1;\ny = x + 1;\n", stubLookup{})
	before, err := Diagnostics(p, pf, stubLookup{})
	require.NoError(t, err)
	var warningsBefore int
	for _, d := range before {
		if d.Severity == SeverityWarning {
			warningsBefore++
		}
	}

	require.NoError(t, p.ApplyEdit(pf, nil, "x = 1;\ny = x + 1;\nz = undefinedvar + 1;\n"))
	require.NoError(t, extract.New(p, stubLookup{}).Extract(pf))

	after, err := Diagnostics(p, pf, stubLookup{})
	require.NoError(t, err)
	var warningsAfter int
	for _, d := range after {
		if d.Severity == SeverityWarning {
			warningsAfter++
		}
	}
	assert.Equal(t, warningsBefore+1, warningsAfter)
}

func TestRenameRejectsInvalidIdentifier(t *testing.T) {
	_, pf := extractFile(t, "/v.m", "x = 1;\n", stubLookup{})
	files := map[string]*model.ParsedFile{"/v.m": pf}
	_, err := RenameSymbol(files, "/v.m", model.Point{Row: 0, Column: 0}, "1bad")
	assert.Error(t, err)
}
