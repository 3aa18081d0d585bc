package extract

import (
	"testing"

	"github.com/carn181/mlsp/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spec.md §4.3: a name is a parameter when its defining node's parent
// is function_output, function_arguments, or multioutput_variable. The
// multioutput_variable arm was missing in an earlier review pass.
func TestIsParameterFlagsFunctionArgument(t *testing.T) {
	pf := extractSrc(t, "/p.m", "function y = f(x)\ny = x + 1;\nend\n", newStubLookup())
	var x *model.VariableDefinition
	for _, v := range pf.Workspace.Variables {
		if v.Name == "x" {
			x = v
		}
	}
	require.NotNil(t, x)
	assert.True(t, x.IsParameter)
}

func TestIsParameterFlagsMultioutputVariable(t *testing.T) {
	pf := extractSrc(t, "/p.m", "[a, b] = size(q);\n", newStubLookup())
	var a, b *model.VariableDefinition
	for _, v := range pf.Workspace.Variables {
		switch v.Name {
		case "a":
			a = v
		case "b":
			b = v
		}
	}
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.True(t, a.IsParameter)
	assert.True(t, b.IsParameter)
}

// refToFn resolves a file-local function before falling back to
// the store-wide lookup (original_source's ref_to_fn first-match-wins
// order, kept as specified: see DESIGN.md's Open Question decisions).
func TestRefToFnPrefersFileLocalFunctionOverStore(t *testing.T) {
	lookup := newStubLookup()
	storeDef := &model.FunctionDefinition{Path: "/elsewhere.m", Name: "helper"}
	lookup.functions["helper"] = storeDef

	src := "function y = helper(x)\ny = x;\nend\nfunction z = caller()\nz = helper(1);\nend\n"
	pf := extractSrc(t, "/p.m", src, lookup)

	ref, ok := findRef(pf.Workspace, "helper")
	require.True(t, ok)
	require.Equal(t, model.TargetFunction, ref.Target.Kind)
	assert.Equal(t, "/p.m", ref.Target.FuncDef.Path)
}

// A reference to a name no function or variable resolves to is an
// UnknownFunction, not silently dropped (spec.md §4.4: every name gets
// a reference so diagnostics have somewhere to attach).
func TestFncallUnknownFunctionReference(t *testing.T) {
	pf := extractSrc(t, "/p.m", "y = undefined_fn(1);\n", newStubLookup())
	ref, ok := findRef(pf.Workspace, "undefined_fn")
	require.True(t, ok)
	assert.Equal(t, model.TargetUnknownFunction, ref.Target.Kind)
}
