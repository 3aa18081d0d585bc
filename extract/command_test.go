package extract

import (
	"testing"

	"github.com/carn181/mlsp/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S3: `clear` invalidates a prior binding, so a reference after it
// resolves to UnknownVariable instead of the cleared definition.
func TestClearInvalidatesSubsequentReference(t *testing.T) {
	pf := extractSrc(t, "/c.m", "x = 1;\nclear x;\ny = x + 1;\n", newStubLookup())

	var xdef *model.VariableDefinition
	for _, v := range pf.Workspace.Variables {
		if v.Name == "x" {
			xdef = v
		}
	}
	require.NotNil(t, xdef)
	assert.NotZero(t, xdef.Cleared)

	ref, ok := findRef(pf.Workspace, "x")
	require.True(t, ok)
	assert.Equal(t, model.TargetUnknownVariable, ref.Target.Kind)
}

// A no-argument `clear`/`clearvars` clears every non-global variable
// exactly once; an earlier review pass found it falling through into a
// second, redundant wildcard-based clear pass.
func TestClearvarsNoArgsClearsAllOnce(t *testing.T) {
	pf := extractSrc(t, "/c.m", "x = 1;\ny = 2;\nclearvars;\nz = x + y;\n", newStubLookup())

	for _, name := range []string{"x", "y"} {
		var def *model.VariableDefinition
		for _, v := range pf.Workspace.Variables {
			if v.Name == name {
				def = v
			}
		}
		require.NotNil(t, def, name)
		assert.NotZero(t, def.Cleared, name)
	}
}

// `clear` with an explicit name only invalidates that name, leaving
// others live.
func TestClearWithNameOnlyClearsThatName(t *testing.T) {
	pf := extractSrc(t, "/c.m", "x = 1;\ny = 2;\nclear x;\nz = y + 1;\n", newStubLookup())

	var xdef, ydef *model.VariableDefinition
	for _, v := range pf.Workspace.Variables {
		switch v.Name {
		case "x":
			xdef = v
		case "y":
			ydef = v
		}
	}
	require.NotNil(t, xdef)
	require.NotNil(t, ydef)
	assert.NotZero(t, xdef.Cleared)
	assert.Zero(t, ydef.Cleared)

	ref, ok := findRef(pf.Workspace, "y")
	require.True(t, ok)
	assert.Equal(t, model.TargetVariable, ref.Target.Kind)
}

func TestSymsDefinesEachIdentifier(t *testing.T) {
	pf := extractSrc(t, "/c.m", "syms a b\nc = a + b;\n", newStubLookup())
	var names []string
	for _, v := range pf.Workspace.Variables {
		names = append(names, v.Name)
	}
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "b")
}

func TestImportResolvesQualifiedFunction(t *testing.T) {
	lookup := newStubLookup()
	lookup.functions["pkg.helper"] = &model.FunctionDefinition{Path: "/pkg/helper.m", Name: "helper", Package: "pkg"}

	pf := extractSrc(t, "/c.m", "import pkg.helper\ny = helper(1);\n", lookup)

	def, ok := pf.Workspace.Functions["helper"]
	require.True(t, ok)
	assert.Equal(t, "pkg", def.Package)
}
