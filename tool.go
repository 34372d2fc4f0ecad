package symalg

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Kind   ErrorKind   `json:"kind,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func toolError(err error) ToolResponse {
	return ToolResponse{Error: err.Error(), Kind: KindOf(err)}
}

// HandleToolCall runs one tool request. Expressions are passed either as
// formula text or in the object form of ToJSON.
func HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expression, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, malformed("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return Build(val, nil)
		case map[string]interface{}:
			return FromJSON(val)
		}
		return nil, malformed("invalid type for param %s", key)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", malformed("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", malformed("param %s must be a string", key)
		}
		return s, nil
	}
	getStrings := func(key string) ([]string, error) {
		raw, ok := req.Params[key].([]interface{})
		if !ok {
			return nil, malformed("param %s must be an array of strings", key)
		}
		out := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, malformed("param %s[%d] must be a string", key, i)
			}
			out[i] = s
		}
		return out, nil
	}
	respond := func(e Expression) ToolResponse {
		return ToolResponse{Result: e.toJSON(), String: e.String()}
	}
	simplified := func(e Expression, err error) ToolResponse {
		if err != nil {
			return toolError(err)
		}
		s, err := Simplify(ctx, e)
		if err != nil {
			return toolError(err)
		}
		return respond(s)
	}

	switch req.Tool {
	case "parse":
		e, err := getExpr("expr")
		if err != nil {
			return toolError(err)
		}
		return respond(e)

	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return toolError(err)
		}
		cfg := DefaultConfig()
		if _, ok := req.Params["passes"]; ok {
			names, err := getStrings("passes")
			if err != nil {
				return toolError(err)
			}
			if cfg.Passes, err = ParsePasses(names); err != nil {
				return toolError(err)
			}
		}
		s, err := SimplifyWith(ctx, e, cfg)
		if err != nil {
			return toolError(err)
		}
		return respond(s)

	case "diff", "diff_ode":
		e, err := getExpr("expr")
		if err != nil {
			return toolError(err)
		}
		v, err := getString("var")
		if err != nil {
			return toolError(err)
		}
		if req.Tool == "diff" {
			return simplified(Diff(e, v))
		}
		return simplified(DiffDifferentialEquation(e, v))

	case "eval":
		e, err := getExpr("expr")
		if err != nil {
			return toolError(err)
		}
		if vals, ok := req.Params["values"].(map[string]interface{}); ok {
			replacements := map[string]Expression{}
			for name, raw := range vals {
				f, ok := raw.(float64)
				if !ok {
					return toolError(malformed("value of %s must be a number", name))
				}
				replacements[name] = NewApproximateConstant(f)
			}
			e = e.replaceVars(replacements)
		}
		if _, ok := req.Params["keep"]; ok {
			keep, err := getStrings("keep")
			if err != nil {
				return toolError(err)
			}
			return respond(EvaluateExcept(e, keep...))
		}
		v, err := e.Evaluate()
		if err != nil {
			return toolError(err)
		}
		return ToolResponse{Result: v, String: fmt.Sprint(v)}

	case "equivalent":
		a, err := getExpr("a")
		if err != nil {
			return toolError(err)
		}
		b, err := getExpr("b")
		if err != nil {
			return toolError(err)
		}
		eq := Equivalent(a, b)
		return ToolResponse{Result: eq, String: fmt.Sprint(eq)}

	case "free_vars":
		e, err := getExpr("expr")
		if err != nil {
			return toolError(err)
		}
		names := make([]string, 0)
		for name := range FreeVars(e) {
			names = append(names, name)
		}
		sort.Strings(names)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "define_function":
		name, err := getString("name")
		if err != nil {
			return toolError(err)
		}
		formals, err := getStrings("params")
		if err != nil {
			return toolError(err)
		}
		body, err := getExpr("body")
		if err != nil {
			return toolError(err)
		}
		if err := DefineFunction(name, formals, body); err != nil {
			return toolError(err)
		}
		return ToolResponse{Result: name, String: name + "(" + strings.Join(formals, ",") + ")=" + body.String()}

	case "set_var":
		name, err := getString("name")
		if err != nil {
			return toolError(err)
		}
		f, ok := req.Params["value"].(float64)
		if !ok {
			return toolError(malformed("param value must be a number"))
		}
		if err := SetVariableValue(name, f); err != nil {
			return toolError(err)
		}
		return ToolResponse{Result: f, String: fmt.Sprintf("%s=%v", name, f)}

	case "mcp_spec":
		return ToolResponse{Result: ToolSpec(), String: "MCP tool specification"}
	}

	return toolError(malformed("unknown tool: %s", req.Tool))
}

// ToolSpec returns the JSON schema of every tool accepted by HandleToolCall.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse", "Parse a formula into an expression tree", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("simplify", "Reduce an expression to canonical form. Optional passes (string[]) selects the rewrite passes", []string{"expr"}, map[string]string{"expr": "string", "passes": "array"}),
		ts("diff", "Simplified derivative d/dvar", []string{"expr", "var"}, map[string]string{"expr": "string", "var": "string"}),
		ts("diff_ode", "Derivative treating every other variable y as a function of var (y becomes y')", []string{"expr", "var"}, map[string]string{"expr": "string", "var": "string"}),
		ts("eval", "Evaluate numerically. Optional values maps variable names to numbers; optional keep (string[]) evaluates only the subtrees free of those variables", []string{"expr"}, map[string]string{"expr": "string", "values": "object", "keep": "array"}),
		ts("equivalent", "Compare two expressions up to reordering of sums and products", []string{"a", "b"}, map[string]string{"a": "string", "b": "string"}),
		ts("free_vars", "Return free variable names", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("define_function", "Register name(params...) = body for later formulas", []string{"name", "params", "body"}, map[string]string{"name": "string", "params": "array", "body": "string"}),
		ts("set_var", "Assign a numeric value to a variable", []string{"name", "value"}, map[string]string{"name": "string", "value": "number"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
