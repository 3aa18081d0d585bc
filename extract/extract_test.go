package extract

import (
	"testing"

	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	"github.com/stretchr/testify/require"
)

// stubLookup is a minimal Lookup for tests that need one: only the
// maps/fields a given test populates are consulted.
type stubLookup struct {
	functions map[string]*model.FunctionDefinition
	packages  map[string][]string
	scripts   map[string]string
}

func newStubLookup() *stubLookup {
	return &stubLookup{
		functions: map[string]*model.FunctionDefinition{},
		packages:  map[string][]string{},
		scripts:   map[string]string{},
	}
}

func (s *stubLookup) Function(name string) (*model.FunctionDefinition, bool) {
	f, ok := s.functions[name]
	return f, ok
}
func (s *stubLookup) AllFunctions() map[string]*model.FunctionDefinition { return s.functions }
func (s *stubLookup) Packages(prefix string) []string                   { return s.packages[prefix] }
func (s *stubLookup) Script(name string) (string, bool) {
	p, ok := s.scripts[name]
	return p, ok
}

// extractSrc parses and extracts src as path, returning the resulting
// ParsedFile with its Workspace populated.
func extractSrc(t *testing.T, path, src string, lookup Lookup) *model.ParsedFile {
	t.Helper()
	p := parser.New()
	pf, err := p.Load(path, []byte(src))
	require.NoError(t, err)
	ex := New(p, lookup)
	require.NoError(t, ex.Extract(pf))
	return pf
}

func findRef(ws *model.Workspace, name string) (*model.Reference, bool) {
	for _, r := range ws.References {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
