package symalg_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/njchilds90/symalg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Tool dispatch
// ============================================================

func call(tool string, params map[string]interface{}) symalg.ToolResponse {
	return symalg.HandleToolCall(context.Background(), symalg.ToolRequest{Tool: tool, Params: params})
}

func TestTool_Simplify(t *testing.T) {
	resp := call("simplify", map[string]interface{}{"expr": "x+x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
	tree, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "binary", tree["type"])
}

func TestTool_SimplifyPasses(t *testing.T) {
	resp := call("simplify", map[string]interface{}{
		"expr":   "x+x",
		"passes": []interface{}{"trivial"},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x+x", resp.String)

	resp = call("simplify", map[string]interface{}{
		"expr":   "x+x",
		"passes": []interface{}{"bogus"},
	})
	assert.Equal(t, symalg.KindMalformed, resp.Kind)
}

func TestTool_TreeInput(t *testing.T) {
	js, err := symalg.ToJSON(symalg.MustBuild("x+x"))
	require.NoError(t, err)
	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(js), &tree))
	resp := call("simplify", map[string]interface{}{"expr": tree})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
}

func TestTool_Diff(t *testing.T) {
	resp := call("diff", map[string]interface{}{"expr": "x^3", "var": "x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "3*x^2", resp.String)

	resp = call("diff", map[string]interface{}{"expr": "(-1)^x", "var": "x"})
	assert.Equal(t, symalg.KindNotDifferentiable, resp.Kind)
	assert.NotEmpty(t, resp.Error)

	resp = call("diff_ode", map[string]interface{}{"expr": "y", "var": "x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "y'", resp.String)
}

func TestTool_Eval(t *testing.T) {
	resp := call("eval", map[string]interface{}{
		"expr":   "a*b+1",
		"values": map[string]interface{}{"a": 2.0, "b": 3.0},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, 7.0, resp.Result)

	resp = call("eval", map[string]interface{}{
		"expr":   "a",
		"values": map[string]interface{}{"a": "two"},
	})
	assert.Equal(t, symalg.KindMalformed, resp.Kind)
}

func TestTool_EvalKeep(t *testing.T) {
	resp := call("eval", map[string]interface{}{
		"expr": "x*sqrt(4)+y",
		"keep": []interface{}{"x", "y"},
	})
	require.Empty(t, resp.Error)
	tree, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	e, err := symalg.FromJSON(tree)
	require.NoError(t, err)
	assert.Contains(t, symalg.FreeVars(e), "x")
	assert.Contains(t, symalg.FreeVars(e), "y")

	resp = call("eval", map[string]interface{}{"expr": "x", "keep": "x"})
	assert.Equal(t, symalg.KindMalformed, resp.Kind)
}

func TestTool_Equivalent(t *testing.T) {
	resp := call("equivalent", map[string]interface{}{"a": "x*y+1", "b": "1+y*x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, true, resp.Result)
}

func TestTool_FreeVars(t *testing.T) {
	resp := call("free_vars", map[string]interface{}{"expr": "z+a*sin(m)+pi"})
	require.Empty(t, resp.Error)
	assert.Equal(t, []string{"a", "m", "z"}, resp.Result)
}

func TestTool_DefineFunction(t *testing.T) {
	t.Cleanup(func() { symalg.UndefineFunction("hyp") })
	resp := call("define_function", map[string]interface{}{
		"name":   "hyp",
		"params": []interface{}{"a", "b"},
		"body":   "sqrt(a^2+b^2)",
	})
	require.Empty(t, resp.Error)

	resp = call("eval", map[string]interface{}{"expr": "hyp(3,4)"})
	require.Empty(t, resp.Error)
	assert.InDelta(t, 5.0, resp.Result, 1e-12)
}

func TestTool_Errors(t *testing.T) {
	resp := call("nope", nil)
	assert.Equal(t, symalg.KindMalformed, resp.Kind)

	resp = call("simplify", map[string]interface{}{})
	assert.Equal(t, symalg.KindMalformed, resp.Kind)

	resp = call("simplify", map[string]interface{}{"expr": 42.0})
	assert.Equal(t, symalg.KindMalformed, resp.Kind)

	resp = call("parse", map[string]interface{}{"expr": "(x"})
	assert.Equal(t, symalg.KindMalformed, resp.Kind)
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(symalg.ToolSpec()), &spec))
	names := make([]string, 0, len(spec.Tools))
	for _, tool := range spec.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"parse", "simplify", "diff", "diff_ode", "eval", "equivalent",
		"free_vars", "define_function", "set_var", "mcp_spec",
	}, names)
}
