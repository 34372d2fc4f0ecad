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
// Diff: basic rules
// ============================================================

func TestDiff_Leaves(t *testing.T) {
	d, err := symalg.Diff(symalg.Num(5), "x")
	require.NoError(t, err)
	assert.True(t, d.Equals(symalg.Num(0)))

	d, err = symalg.Diff(symalg.Var("x"), "x")
	require.NoError(t, err)
	assert.True(t, d.Equals(symalg.Num(1)))

	d, err = symalg.Diff(symalg.Var("y"), "x")
	require.NoError(t, err)
	assert.True(t, d.Equals(symalg.Num(0)))
}

func TestDiff_PowerRule(t *testing.T) {
	d, err := symalg.Diff(symalg.MustBuild("x^3"), "x")
	require.NoError(t, err)
	s, err := symalg.Simplify(context.Background(), d)
	require.NoError(t, err)
	want := symalg.Mult(symalg.Num(3), symalg.Pow(symalg.Var("x"), symalg.Num(2)))
	assert.True(t, s.Equals(want), "got %s", s)
	assert.Equal(t, "3*x^2", s.String())
}

func TestDiff_NegativeBase(t *testing.T) {
	_, err := symalg.Diff(symalg.MustBuild("(-1)^x"), "x")
	assert.ErrorIs(t, err, symalg.ErrNotDifferentiable)
}

func TestDiff_IntegerOperators(t *testing.T) {
	_, err := symalg.Diff(symalg.MustBuild("x!"), "x")
	assert.ErrorIs(t, err, symalg.ErrNotDifferentiable)

	_, err = symalg.Diff(symalg.MustBuild("gcd(x,4)"), "x")
	assert.ErrorIs(t, err, symalg.ErrNotDifferentiable)

	// Not depending on x is fine.
	d, err := symalg.Diff(symalg.MustBuild("gcd(y,4)"), "x")
	require.NoError(t, err)
	assert.True(t, d.Equals(symalg.Num(0)))
}

// ============================================================
// Diff: derivatives agree with known closed forms
// ============================================================

func TestDiff_KnownDerivatives(t *testing.T) {
	for formula, derivative := range map[string]string{
		"x^2+3*x":   "2*x+3",
		"x*sin(x)":  "sin(x)+x*cos(x)",
		"sin(x)/x":  "(x*cos(x)-sin(x))/x^2",
		"cos(x)":    "-sin(x)",
		"tan(x)":    "1/cos(x)^2",
		"exp(2*x)":  "2*exp(2*x)",
		"ln(x)":     "1/x",
		"lg(x)":     "1/(ln(10)*x)",
		"sqrt(x)":   "1/(2*sqrt(x))",
		"2^x":       "ln(2)*2^x",
		"x^x":       "x^x*(ln(x)+1)",
		"arctan(x)": "1/(1+x^2)",
		"arcsin(x)": "1/sqrt(1-x^2)",
		"sinh(x)":   "cosh(x)",
		"tanh(x)":   "1/cosh(x)^2",
		"|x|":       "sgn(x)",
		"sec(x)":    "sec(x)*tan(x)",
		"y*x^2":     "2*x*y",
	} {
		d, err := symalg.Diff(symalg.MustBuild(formula), "x")
		require.NoError(t, err, formula)
		assert.InDelta(t, at(t, symalg.MustBuild(derivative)), at(t, d), 1e-9, "d/dx %s = %s", formula, d)
	}
}

func TestDiff_SimplifiedAgreesWithRaw(t *testing.T) {
	for _, formula := range []string{"x^3*sin(x)", "exp(x)/x", "ln(x^2+1)", "(x+1)^4", "sqrt(x^2+y)"} {
		d, err := symalg.Diff(symalg.MustBuild(formula), "x")
		require.NoError(t, err)
		s, err := symalg.Simplify(context.Background(), d)
		require.NoError(t, err)
		assert.InDelta(t, at(t, d), at(t, s), 1e-9, "d/dx %s: %s vs %s", formula, d, s)
	}
}

func TestDiff_Linearity(t *testing.T) {
	f, g := symalg.MustBuild("sin(x)*x"), symalg.MustBuild("exp(x)+x^2")
	df, err := symalg.Diff(f, "x")
	require.NoError(t, err)
	dg, err := symalg.Diff(g, "x")
	require.NoError(t, err)
	dsum, err := symalg.Diff(symalg.Add(symalg.Mult(symalg.Num(3), f), g), "x")
	require.NoError(t, err)
	assert.InDelta(t, 3*at(t, df)+at(t, dg), at(t, dsum), 1e-9)
}

func TestDiff_DefiniteIntegral(t *testing.T) {
	// d/dx int(t^2, t, 0, x) = x^2
	d, err := symalg.Diff(symalg.MustBuild("int(t^2,t,0,x)"), "x")
	require.NoError(t, err)
	assert.InDelta(t, 0.49, at(t, d), 1e-12)
}

func TestDiff_Sum(t *testing.T) {
	d, err := symalg.Diff(symalg.MustBuild("sum(k*x^2,k,1,3)"), "x")
	require.NoError(t, err)
	// 2x * (1+2+3)
	assert.InDelta(t, 12*0.7, at(t, d), 1e-12)

	_, err = symalg.Diff(symalg.MustBuild("sum(k,k,1,x)"), "x")
	assert.ErrorIs(t, err, symalg.ErrNotDifferentiable)
}

func TestDiff_DiffOperator(t *testing.T) {
	e, err := symalg.Simplify(context.Background(), symalg.MustBuild("diff(x^3,x,2)"))
	require.NoError(t, err)
	assert.InDelta(t, 6*0.7, at(t, e), 1e-12, "got %s", e)
}

// ============================================================
// Diff: implicit differentiation
// ============================================================

func TestDiffDifferentialEquation(t *testing.T) {
	d, err := symalg.DiffDifferentialEquation(symalg.Var("y"), "x")
	require.NoError(t, err)
	assert.Equal(t, "y'", d.String())

	d, err = symalg.DiffDifferentialEquation(symalg.MustBuild("x*y"), "x")
	require.NoError(t, err)
	vars := symalg.FreeVars(d)
	assert.Contains(t, vars, "y'")

	d = d.Substitute("y'", symalg.NewApproximateConstant(5))
	// y + x*y' at x=0.7, y=1.3, y'=5
	assert.InDelta(t, 1.3+0.7*5, at(t, d), 1e-12)
}

func TestDiffDifferentialEquation_BoundVariables(t *testing.T) {
	d, err := symalg.DiffDifferentialEquation(symalg.MustBuild("int(x*t,t,0,1)"), "x")
	require.NoError(t, err)
	assert.NotContains(t, symalg.FreeVars(d), "t'")
	assert.InDelta(t, 0.5, at(t, d), 1e-9, "got %s", d)

	d, err = symalg.DiffDifferentialEquation(symalg.MustBuild("sum(k*y,k,1,3)"), "x")
	require.NoError(t, err)
	vars := symalg.FreeVars(d)
	assert.Contains(t, vars, "y'")
	assert.NotContains(t, vars, "k'")
	assert.InDelta(t, 30.0, at(t, d.Substitute("y'", symalg.NewApproximateConstant(5))), 1e-9)
}

func TestDiff_AbsSquared(t *testing.T) {
	for formula, want := range map[string]float64{
		"|x|^2":         2 * 0.7,
		"(|x|^2+y)*x":   3*0.49 + 1.3,
		"ln(x)*abs(x)":  math.Log(0.7) + 1,
		"sgn(x)*abs(x)": 1,
	} {
		d, err := symalg.Diff(symalg.MustBuild(formula), "x")
		require.NoError(t, err)
		s, err := symalg.Simplify(context.Background(), d)
		require.NoError(t, err)
		assert.InDelta(t, want, at(t, s), 1e-9, "%s: %s", formula, s)
	}
}

func TestDiff_ConstantsOnly(t *testing.T) {
	d, err := symalg.Diff(symalg.MustBuild("pi^2+sin(3)"), "x")
	require.NoError(t, err)
	v, err := d.Evaluate()
	require.NoError(t, err)
	assert.Zero(t, v)
}
