package symalg_test

import (
	"context"
	"math"
	"testing"

	"github.com/njchilds90/symalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Variable registry
// ============================================================

func TestVariableNames(t *testing.T) {
	for _, name := range []string{"x", "y_1", "z_10", "f'", "y''"} {
		assert.True(t, symalg.IsValidVariableName(name), name)
	}
	for _, name := range []string{"", "X", "xy", "x_", "x_a", "1x", "'x"} {
		assert.False(t, symalg.IsValidVariableName(name), name)
	}
}

func TestSetVariableValue(t *testing.T) {
	t.Cleanup(func() { symalg.ClearVariable("q") })
	require.NoError(t, symalg.SetVariableValue("q", 2.5))

	v, ok := symalg.VariableValue("q")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	got, err := symalg.MustBuild("2*q+1").Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)
	assert.Contains(t, symalg.RegisteredVariables(), "q")

	symalg.ClearVariable("q")
	_, ok = symalg.VariableValue("q")
	assert.False(t, ok)
}

func TestSetVariableValue_Reserved(t *testing.T) {
	assert.ErrorIs(t, symalg.SetVariableValue("pi", 3), symalg.ErrMalformed)
	assert.ErrorIs(t, symalg.SetVariableValue("Q", 3), symalg.ErrMalformed)
}

func TestPi(t *testing.T) {
	v, err := symalg.MustBuild("2*pi").Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 2*math.Pi, v)
	assert.True(t, symalg.IsConstant(symalg.MustBuild("pi^2")))
}

func TestReplaceDefinedVariables(t *testing.T) {
	t.Cleanup(func() {
		symalg.ClearVariable("p")
		symalg.ClearVariable("w")
	})
	require.NoError(t, symalg.SetPreciseExpression("p", symalg.MustBuild("1/3")))
	require.NoError(t, symalg.SetVariableValue("w", 0.5))

	e := symalg.ReplaceDefinedVariables(symalg.MustBuild("p+w+u"))
	vars := symalg.FreeVars(e)
	assert.NotContains(t, vars, "p")
	assert.NotContains(t, vars, "w")
	assert.Contains(t, vars, "u")

	// The exact substitute keeps the sum precise.
	s, err := symalg.Simplify(context.Background(), symalg.ReplaceDefinedVariables(symalg.MustBuild("3*p")))
	require.NoError(t, err)
	assert.True(t, s.Equals(symalg.Num(1)), "got %s", s)

	assert.ErrorIs(t, symalg.SetPreciseExpression("p", symalg.Var("u")), symalg.ErrMalformed)
}

// ============================================================
// Self-defined functions
// ============================================================

func TestDefineFunction(t *testing.T) {
	t.Cleanup(func() { symalg.UndefineFunction("fsq") })
	require.NoError(t, symalg.DefineFunction("fsq", []string{"u", "v"}, symalg.MustBuild("u^2-v")))
	assert.Contains(t, symalg.DefinedFunctions(), "fsq")

	e := symalg.MustBuild("fsq(x,3)")
	call, ok := e.(*symalg.SelfDefinedFunction)
	require.True(t, ok)
	assert.Equal(t, "fsq", call.Name())
	assert.Equal(t, "fsq(x,3)", call.String())
	assert.Contains(t, symalg.FreeVars(e), "x")

	// Formals are replaced simultaneously.
	swapped, err := symalg.ReplaceSelfDefinedFunctions(symalg.MustBuild("fsq(v,u)"))
	require.NoError(t, err)
	assert.True(t, swapped.Equals(symalg.MustBuild("v^2-u")), "got %s", swapped)

	v, err := symalg.MustBuild("fsq(4,6)").Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	_, err = symalg.Build("fsq(1)", nil)
	assert.ErrorIs(t, err, symalg.ErrMalformed)
}

func TestDefineFunction_Invalid(t *testing.T) {
	assert.ErrorIs(t, symalg.DefineFunction("sin", []string{"x"}, symalg.Var("x")), symalg.ErrMalformed)
	assert.ErrorIs(t, symalg.DefineFunction("sum", []string{"x"}, symalg.Var("x")), symalg.ErrMalformed)
	assert.ErrorIs(t, symalg.DefineFunction("g", []string{"x", "x"}, symalg.Var("x")), symalg.ErrMalformed)
	assert.ErrorIs(t, symalg.DefineFunction("g", []string{"x"}, symalg.MustBuild("x+y")), symalg.ErrMalformed)
	assert.ErrorIs(t, symalg.DefineFunction("g", nil, symalg.Num(1)), symalg.ErrMalformed)
}

func TestUndefineFunction(t *testing.T) {
	require.NoError(t, symalg.DefineFunction("gone", []string{"x"}, symalg.MustBuild("2*x")))
	e := symalg.MustBuild("gone(1)")
	symalg.UndefineFunction("gone")
	assert.NotContains(t, symalg.DefinedFunctions(), "gone")

	v, err := e.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = symalg.Build("gone(1)", nil)
	assert.ErrorIs(t, err, symalg.ErrMalformed)
}

func TestDefineFunction_RedefinitionKeepsBuiltTrees(t *testing.T) {
	t.Cleanup(func() { symalg.UndefineFunction("cube") })
	require.NoError(t, symalg.DefineFunction("cube", []string{"x"}, symalg.MustBuild("x^2")))
	before := symalg.MustBuild("cube(3)")

	require.NoError(t, symalg.DefineFunction("cube", []string{"x"}, symalg.MustBuild("x^3")))
	after := symalg.MustBuild("cube(3)")

	v, err := before.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)
	v, err = after.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 27.0, v)
	assert.False(t, before.Equals(after))

	call, ok := before.(*symalg.SelfDefinedFunction)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, call.Formals())
	assert.True(t, call.Body().Equals(symalg.MustBuild("x^2")))

	inlined, err := symalg.ReplaceSelfDefinedFunctions(before)
	require.NoError(t, err)
	assert.True(t, inlined.Equals(symalg.MustBuild("3^2")), "got %s", inlined)
}

// ============================================================
// Exact and approximate constants
// ============================================================

func TestTurnToApproximate(t *testing.T) {
	e := symalg.TurnToApproximate(symalg.MustBuild("1/3"))
	s, err := symalg.Simplify(context.Background(), e)
	require.NoError(t, err)
	c, ok := s.(*symalg.Constant)
	require.True(t, ok, "got %s", s)
	assert.False(t, c.IsPrecise())
	assert.InDelta(t, 1.0/3.0, c.Value(), 1e-15)
}

func TestTurnToPrecise(t *testing.T) {
	e := symalg.TurnToPrecise(symalg.NewApproximateConstant(0.25))
	c, ok := e.(*symalg.Constant)
	require.True(t, ok)
	assert.True(t, c.IsPrecise())
	assert.Equal(t, "0.25", c.String())
}

func TestEvaluateExcept(t *testing.T) {
	e := symalg.EvaluateExcept(symalg.MustBuild("x*sqrt(4)+sin(0)"), "x")
	assert.True(t, symalg.Contains(e, "x"))
	assert.InDelta(t, 1.4, at(t, e), 1e-12)

	// Operators keep their bound variable.
	o := symalg.MustBuild("sum(k*x,k,1,3)")
	assert.True(t, symalg.EvaluateExcept(o, "x").Equals(o))

	both := symalg.EvaluateExcept(symalg.MustBuild("x*y+sqrt(9)*z+ln(1)"), "x", "y")
	vars := symalg.FreeVars(both)
	assert.Contains(t, vars, "x")
	assert.Contains(t, vars, "y")
	assert.NotContains(t, vars, "z")

	none := symalg.EvaluateExcept(symalg.MustBuild("2*3+1"))
	c, ok := none.(*symalg.Constant)
	require.True(t, ok, "got %s", none)
	assert.Equal(t, 7.0, c.Value())
}
