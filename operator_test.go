package symalg_test

import (
	"context"
	"testing"

	"github.com/njchilds90/symalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Operators: numeric evaluation
// ============================================================

func TestOperator_Evaluate(t *testing.T) {
	for formula, want := range map[string]float64{
		"gcd(12,18)":     6,
		"gcd(12,18,8)":   2,
		"lcm(4,6)":       12,
		"mod(17,5)":      2,
		"mod(-7,3)":      2,
		"5!":             120,
		"sum(k^2,k,1,4)": 30,
		"prod(k,k,1,5)":  120,
		"int(x^2,x,0,3)": 9,
		"int(1,t,2,5)":   3,
	} {
		v, err := symalg.MustBuild(formula).Evaluate()
		require.NoError(t, err, formula)
		assert.InDelta(t, want, v, 1e-9, formula)
	}
}

func TestOperator_EvaluateErrors(t *testing.T) {
	for _, formula := range []string{"mod(3,0)", "gcd(1.5,3)", "int(x,x)", "sum(k,k,1,2.5)"} {
		_, err := symalg.MustBuild(formula).Evaluate()
		assert.ErrorIs(t, err, symalg.ErrUndefinedValue, formula)
	}
}

func TestNewOperator_Validation(t *testing.T) {
	_, err := symalg.NewOperator(symalg.OpMod, symalg.Num(1))
	assert.ErrorIs(t, err, symalg.ErrMalformed)

	_, err = symalg.NewOperator(symalg.OpSum, symalg.Var("k"), "K", symalg.Num(1), symalg.Num(2))
	assert.ErrorIs(t, err, symalg.ErrMalformed)

	o, err := symalg.NewOperator(symalg.OpSum, symalg.Var("k"), "k", symalg.Num(1), symalg.Num(2))
	require.NoError(t, err)
	assert.Equal(t, "sum(k,k,1,2)", o.String())
}

// ============================================================
// Operators: exact expansion in the simplifier
// ============================================================

func TestOperator_SimplifyExact(t *testing.T) {
	for formula, want := range map[string]int64{
		"gcd(12,18)":     6,
		"lcm(4,6)":       12,
		"mod(17,5)":      2,
		"5!":             120,
		"sum(k^2,k,1,4)": 30,
		"prod(k,k,1,5)":  120,
	} {
		e := simplify(t, formula)
		assert.True(t, e.Equals(symalg.Num(want)), "%s simplified to %s", formula, e)
	}
}

func TestOperator_IndefiniteIntegralStays(t *testing.T) {
	e := simplify(t, "int(x^2,x)")
	o, ok := e.(*symalg.Operator)
	require.True(t, ok, "got %s", e)
	assert.Equal(t, symalg.OpIntegral, o.Type())
	assert.Contains(t, symalg.FreeVars(e), "x")
}

func TestOperator_Taylor(t *testing.T) {
	// 1 + x + x^2/2 + x^3/6
	e := simplify(t, "taylor(exp(x),x,0,3)")
	want := 1 + 0.7 + 0.7*0.7/2 + 0.7*0.7*0.7/6
	assert.InDelta(t, want, at(t, e), 1e-12, "got %s", e)
}

func TestOperator_Laplace(t *testing.T) {
	e := simplify(t, "laplace(x^2*y^2,x,y)")
	// 2y^2 + 2x^2
	assert.InDelta(t, 2*1.3*1.3+2*0.7*0.7, at(t, e), 1e-12, "got %s", e)
}

func TestOperator_BoundVariable(t *testing.T) {
	e := symalg.MustBuild("sum(k*n,k,1,3)")
	assert.NotContains(t, symalg.FreeVars(e), "k")
	assert.Contains(t, symalg.FreeVars(e), "n")

	// Substituting the index is a no-op.
	assert.True(t, e.Substitute("k", symalg.Num(7)).Equals(e))

	// A substitute mentioning the index forces a rename.
	r := e.Substitute("n", symalg.Var("k"))
	v, err := r.Substitute("k", symalg.Num(2)).Evaluate()
	require.NoError(t, err)
	assert.InDelta(t, 12.0, v, 1e-12, "got %s", r)
}

func TestOperator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := symalg.Simplify(ctx, symalg.MustBuild("taylor(exp(x),x,0,5)"))
	assert.ErrorIs(t, err, symalg.ErrAborted)
}
