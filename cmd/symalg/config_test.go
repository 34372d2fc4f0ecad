package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/njchilds90/symalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig([]byte(`
passes: [trivial, order_sums_and_products]
max_algebraic_exponent: 4
max_rounds: 20
`))
	require.NoError(t, err)
	assert.Equal(t, symalg.PassTrivial|symalg.PassOrderSumsAndProducts, cfg.Passes)
	assert.Equal(t, 4, cfg.MaxAlgebraicExponent)
	assert.Equal(t, 20, cfg.MaxRounds)
	assert.Equal(t, symalg.DefaultMaxPolynomialDegree, cfg.MaxPolynomialDegree)
	assert.Equal(t, symalg.DefaultMaxDepth, cfg.MaxDepth)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := parseConfig([]byte("passes: [nonsense]"))
	assert.ErrorIs(t, err, symalg.ErrMalformed)

	_, err = parseConfig([]byte("passes: {"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, symalg.DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "symalg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_depth: 50\n"), 0o600))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxDepth)
	assert.Equal(t, symalg.AllPasses, cfg.Passes)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// ============================================================
// REPL session
// ============================================================

func TestSession_Statements(t *testing.T) {
	t.Cleanup(func() {
		symalg.ClearVariable("c")
		symalg.UndefineFunction("sq")
	})
	s := &session{cfg: symalg.DefaultConfig()}
	ctx := context.Background()

	out, err := s.execute(ctx, "x+x")
	require.NoError(t, err)
	assert.Equal(t, "2*x", out)

	out, err = s.execute(ctx, "c = 1/2")
	require.NoError(t, err)
	assert.Equal(t, "c = 0.5", out)

	out, err = s.execute(ctx, ":eval 4*c")
	require.NoError(t, err)
	assert.Equal(t, "2", out)

	out, err = s.execute(ctx, "sq(u) = u^2")
	require.NoError(t, err)
	assert.Equal(t, "sq(u) = u^2", out)

	out, err = s.execute(ctx, "sq(3)")
	require.NoError(t, err)
	assert.Equal(t, "9", out)

	out, err = s.execute(ctx, ":diff x x^3")
	require.NoError(t, err)
	assert.Equal(t, "3*x^2", out)

	out, err = s.execute(ctx, ":keep x,y x*y+sqrt(4)*z")
	require.NoError(t, err)
	assert.Contains(t, out, "x*y")
	assert.NotContains(t, out, "sqrt")

	_, err = s.execute(ctx, ":quit")
	assert.Equal(t, errQuit, err)

	_, err = s.execute(ctx, ":bogus")
	assert.Error(t, err)
}

func TestSession_Batch(t *testing.T) {
	s := &session{cfg: symalg.DefaultConfig()}
	var out strings.Builder
	s.batch(strings.NewReader("2-4\n(x\n:q\nx+x\n"), &out)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "-2", lines[0])
	assert.Contains(t, lines[1], "MalformedExpression")
}
