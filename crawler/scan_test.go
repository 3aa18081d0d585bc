package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carn181/mlsp/extract"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/parser"
	"github.com/otiai10/copy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct{}

func (fakeLookup) Function(string) (*model.FunctionDefinition, bool)  { return nil, false }
func (fakeLookup) AllFunctions() map[string]*model.FunctionDefinition { return nil }
func (fakeLookup) Packages(string) []string                          { return nil }
func (fakeLookup) Script(string) (string, bool)                      { return "", false }

func TestFastScanExtractsPublicSignatureAndDumpsContents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "+pkg", "add.m"), "function c = add(a, b)\n% Adds two numbers.\nc = a + b;\nend\n")

	var events []ProgressEvent
	p := parser.New()
	result := FastScan(p, []string{root}, func(e ProgressEvent) { events = append(events, e) })

	require.Len(t, result.Functions, 1)
	assert.Equal(t, "add", result.Functions[0].Name)
	assert.Equal(t, "pkg", result.Functions[0].Package)
	assert.Contains(t, result.Packages, "pkg")

	require.Len(t, result.Files, 1)
	assert.Nil(t, result.Files[0].Contents)

	require.NotEmpty(t, events)
	assert.Equal(t, ProgressBegin, events[0].Kind)
	assert.Equal(t, ProgressEnd, events[len(events)-1].Kind)
}

func TestFullScanStreamsPerFileResults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "script.m"), "x = 1;\ny = x + 1;\n")

	p := parser.New()
	ex := extract.New(p, fakeLookup{})

	var got []FullScanResult
	FullScan(ex, []string{root}, func(r FullScanResult) { got = append(got, r) }, nil)

	require.Len(t, got, 1)
	assert.True(t, got[0].File.IsScript)
	assert.NotNil(t, got[0].File.Workspace)
}

// FastScan dumps contents and the crawler otherwise never writes back
// to the directory it walks, but scanning a fixture straight out of
// testdata would still risk the fixture picking up stray artifacts
// from a failed test run. Stage a disposable copy instead, the way
// every other scan test seeds its own t.TempDir().
func TestFastScanOverStagedFixtureCopyLeavesOriginalUntouched(t *testing.T) {
	fixture := filepath.Join("testdata", "libfixture")
	staged := t.TempDir()
	require.NoError(t, copy.Copy(fixture, staged))

	before, err := os.ReadFile(filepath.Join(fixture, "+pkg", "add.m"))
	require.NoError(t, err)

	p := parser.New()
	result := FastScan(p, []string{staged}, nil)

	require.Len(t, result.Functions, 1)
	assert.Equal(t, "add", result.Functions[0].Name)
	assert.Equal(t, "pkg", result.Functions[0].Package)

	after, err := os.ReadFile(filepath.Join(fixture, "+pkg", "add.m"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
