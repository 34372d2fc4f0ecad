package symalg_test

import (
	"context"
	"testing"

	"github.com/njchilds90/symalg"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simplify(t *testing.T, formula string) symalg.Expression {
	t.Helper()
	e, err := symalg.Simplify(context.Background(), symalg.MustBuild(formula))
	require.NoError(t, err, formula)
	return e
}

// at evaluates e with x, y and z replaced by fixed sample points.
func at(t *testing.T, e symalg.Expression) float64 {
	t.Helper()
	e = e.Substitute("x", symalg.NewApproximateConstant(0.7))
	e = e.Substitute("y", symalg.NewApproximateConstant(1.3))
	e = e.Substitute("z", symalg.NewApproximateConstant(2.1))
	v, err := e.Evaluate()
	require.NoError(t, err, e.String())
	return v
}

// ============================================================
// Simplify: canonical results
// ============================================================

func TestSimplify_LikeTerms(t *testing.T) {
	e := simplify(t, "x+x")
	assert.True(t, e.Equals(symalg.Mult(symalg.Num(2), symalg.Var("x"))), "got %s", e)
	assert.Equal(t, "2*x", e.String())
}

func TestSimplify_PythagoreanIdentity(t *testing.T) {
	e := simplify(t, "sin(x)^2+cos(x)^2")
	assert.True(t, e.Equals(symalg.Num(1)), "got %s", e)
}

func TestSimplify_ConstantFolding(t *testing.T) {
	e := simplify(t, "2-4")
	c, ok := e.(*symalg.Constant)
	require.True(t, ok, "got %s", e)
	assert.True(t, c.IsPrecise())
	assert.Equal(t, -2.0, c.Value())

	assert.True(t, simplify(t, "2+3*4").Equals(symalg.Num(14)))
	assert.True(t, simplify(t, "2^10").Equals(symalg.Num(1024)))
}

func TestSimplify_ExactRationals(t *testing.T) {
	e := simplify(t, "1/2+1/3")
	require.True(t, symalg.IsConstant(e), "got %s", e)
	v, err := e.Evaluate()
	require.NoError(t, err)
	assert.InDelta(t, 5.0/6.0, v, 1e-15)
}

func TestSimplify_Identities(t *testing.T) {
	x := symalg.Var("x")
	for formula, want := range map[string]symalg.Expression{
		"x*1": x,
		"1*x": x,
		"x+0": x,
		"0+x": x,
		"x-0": x,
		"x^1": x,
		"x^0": symalg.Num(1),
		"0*x": symalg.Num(0),
		"x-x": symalg.Num(0),
		"x/x": symalg.Num(1),
		"0/x": symalg.Num(0),
		"1^x": symalg.Num(1),
		"x/1": x,
		"--x": x,
	} {
		e := simplify(t, formula)
		assert.True(t, e.Equals(want), "%s simplified to %s", formula, e)
	}
	assert.True(t, simplify(t, "(x+y)-(y+x)").Equals(symalg.Num(0)))
}

func TestSimplify_PolynomialQuotient(t *testing.T) {
	e := simplify(t, "(x^2-1)/(x-1)")
	assert.True(t, symalg.Equivalent(e, symalg.MustBuild("x+1")), "got %s", e)
}

// ============================================================
// Simplify: value preservation and fixed point
// ============================================================

var sampleFormulas = []string{
	"x+x+x+2",
	"2*x*3",
	"1/3*x+5/6*x",
	"(x+1)*(x-1)",
	"(x+y)^2",
	"x^2*x^3",
	"(x*y)^2/x",
	"x/(y/z)",
	"(x/y)/z",
	"x-(y-z)",
	"3*x-2*x",
	"sqrt(8)*x",
	"exp(x)*exp(y)",
	"exp(x)/exp(y)",
	"ln(x)+ln(y)",
	"ln(x)-ln(y)",
	"sin(x)/cos(x)",
	"2*sin(y)^2+2*cos(y)^2",
	"|x-y|^2",
	"x*y+x*z",
	"-x-y-z",
	"-x^(1/3)-(4/y+x)",
	"-2*x-y",
	"sgn(x)*|x|",
	"ln(x)*|x|",
	"x-y+z",
	"x*z/y",
}

func TestSimplify_PreservesValue(t *testing.T) {
	for _, formula := range sampleFormulas {
		e := symalg.MustBuild(formula)
		s := simplify(t, formula)
		assert.InDelta(t, at(t, e), at(t, s), 1e-9, "%s simplified to %s", formula, s)
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	for _, formula := range sampleFormulas {
		once := simplify(t, formula)
		twice, err := symalg.Simplify(context.Background(), once)
		require.NoError(t, err)
		assert.True(t, twice.Equals(once), "%s: %s then %s", formula, once, twice)
	}
}

func TestSimplify_RoundTripThroughText(t *testing.T) {
	for _, formula := range sampleFormulas {
		for _, e := range []symalg.Expression{symalg.MustBuild(formula), simplify(t, formula)} {
			back, err := symalg.Build(e.String(), nil)
			require.NoError(t, err, "%s printed as %s", formula, e)
			assert.InDelta(t, at(t, e), at(t, back), 1e-9, "%s printed as %s", formula, e)
		}
	}
}

func TestSimplify_NegativeSumIsStable(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	once := simplify(t, "-a-b-c")
	twice, err := symalg.Simplify(context.Background(), once)
	require.NoError(t, err)
	assert.True(t, twice.Equals(once), "%s then %s", once, twice)
	assert.True(t, symalg.Equivalent(once, symalg.MustBuild("-a-(b+c)")), "got %s", once)
	for _, entry := range hook.AllEntries() {
		assert.False(t, entry.Level <= log.WarnLevel, "unexpected log: %s", entry.Message)
	}
}

func TestSimplify_FunctionProductsWithAbs(t *testing.T) {
	for _, formula := range []string{"sgn(x)*abs(x)", "ln(x)*abs(x)", "exp(x)*abs(x)", "arctan(x)*abs(x)"} {
		e := simplify(t, formula)
		assert.False(t, symalg.IsConstant(e), "%s simplified to %s", formula, e)
		assert.InDelta(t, at(t, symalg.MustBuild(formula)), at(t, e), 1e-9, "%s simplified to %s", formula, e)
	}
	assert.True(t, simplify(t, "sin(x)*cosec(x)").Equals(symalg.Num(1)))
}

func TestSimplify_ApproximateTree(t *testing.T) {
	e, err := symalg.Simplify(context.Background(), symalg.MustBuild("0.5*x+x").Substitute("x", symalg.NewApproximateConstant(2)))
	require.NoError(t, err)
	c, ok := e.(*symalg.Constant)
	require.True(t, ok, "got %s", e)
	assert.False(t, c.IsPrecise())
	assert.InDelta(t, 3.0, c.Value(), 1e-12)
}

// ============================================================
// Simplify: configuration
// ============================================================

func TestSimplifyWith_TrivialOnly(t *testing.T) {
	cfg := symalg.DefaultConfig()
	cfg.Passes = symalg.PassTrivial
	e, err := symalg.SimplifyWith(context.Background(), symalg.MustBuild("x+x"), cfg)
	require.NoError(t, err)
	assert.True(t, e.Equals(symalg.MustBuild("x+x")), "got %s", e)

	e, err = symalg.SimplifyWith(context.Background(), symalg.MustBuild("x+(2+3)"), cfg)
	require.NoError(t, err)
	assert.True(t, e.Equals(symalg.Add(symalg.Var("x"), symalg.Num(5))), "got %s", e)
}

func TestSimplifyWith_NoPasses(t *testing.T) {
	cfg := symalg.DefaultConfig()
	cfg.Passes = 0
	in := symalg.MustBuild("x*1+0")
	e, err := symalg.SimplifyWith(context.Background(), in, cfg)
	require.NoError(t, err)
	assert.True(t, e.Equals(in))
}

func TestParsePasses(t *testing.T) {
	p, err := symalg.ParsePasses([]string{"trivial", "collect_products"})
	require.NoError(t, err)
	assert.Equal(t, symalg.PassTrivial|symalg.PassCollectProducts, p)

	p, err = symalg.ParsePasses([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, symalg.AllPasses, p)

	_, err = symalg.ParsePasses([]string{"no_such_pass"})
	assert.ErrorIs(t, err, symalg.ErrMalformed)
}

func TestPass_String(t *testing.T) {
	p := symalg.PassTrivial | symalg.PassOrderSumsAndProducts
	assert.Equal(t, "trivial,order_sums_and_products", p.String())

	names := symalg.PassNames()
	require.Len(t, names, 16)
	assert.Equal(t, "trivial", names[0])
	assert.Equal(t, "order_sums_and_products", names[len(names)-1])

	back, err := symalg.ParsePasses(names)
	require.NoError(t, err)
	assert.Equal(t, symalg.AllPasses, back)
}

// ============================================================
// Simplify: resource limits
// ============================================================

func TestSimplify_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := symalg.Simplify(ctx, symalg.MustBuild("x+x"))
	assert.ErrorIs(t, err, symalg.ErrAborted)
	assert.Equal(t, symalg.KindComputationAborted, symalg.KindOf(err))
}

func TestSimplify_DepthLimit(t *testing.T) {
	var e symalg.Expression = symalg.Var("x")
	for i := 0; i < 50; i++ {
		e = symalg.Sin(e)
	}
	cfg := symalg.DefaultConfig()
	cfg.MaxDepth = 10
	_, err := symalg.SimplifyWith(context.Background(), e, cfg)
	assert.ErrorIs(t, err, symalg.ErrStackExhausted)
}
