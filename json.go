package symalg

import (
	"encoding/json"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON serializes e as a tree of objects tagged by "type".
func ToJSON(e Expression) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// FromJSON rebuilds an expression from the object form written by ToJSON.
func FromJSON(data map[string]interface{}) (Expression, error) {
	if data == nil {
		return nil, malformed("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, malformed("field 'type' must be a non-empty string")
	}
	subObj := func(field string) (Expression, error) {
		m, ok := data[field].(map[string]interface{})
		if !ok {
			return nil, malformed("%s: %q must be an object", typ, field)
		}
		return FromJSON(m)
	}
	subString := func(field string) (string, error) {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return "", malformed("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "constant":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		precise, _ := data["precise"].(bool)
		r, ok := parseRatLiteral(val)
		if !ok {
			return nil, malformed("constant: invalid value %q", val)
		}
		if precise {
			return NewRationalConstant(r), nil
		}
		f, _ := r.Float64()
		return NewApproximateConstant(f), nil
	case "variable":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if !IsValidVariableName(name) {
			return nil, malformed("variable: invalid name %q", name)
		}
		if name == PiName {
			return Pi(), nil
		}
		return Var(name), nil
	case "binary":
		op, err := subString("op")
		if err != nil {
			return nil, err
		}
		kind := -1
		for t := PLUS; t <= POW; t++ {
			if t.String() == op {
				kind = int(t)
			}
		}
		if kind < 0 {
			return nil, malformed("binary: unknown operation %q", op)
		}
		l, err := subObj("left")
		if err != nil {
			return nil, err
		}
		r, err := subObj("right")
		if err != nil {
			return nil, err
		}
		return &BinaryOperation{left: l, right: r, op: TypeBinary(kind)}, nil
	case "function":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		kind, ok := LookupFunction(name)
		if !ok {
			return nil, malformed("function: unknown name %q", name)
		}
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		return NewFunction(kind, arg), nil
	case "operator":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		kind, ok := LookupOperator(name)
		if name == OpFac.String() {
			kind, ok = OpFac, true
		}
		if !ok {
			return nil, malformed("operator: unknown name %q", name)
		}
		raw, ok := data["params"].([]interface{})
		if !ok {
			return nil, malformed("operator: 'params' must be an array")
		}
		params := make([]interface{}, len(raw))
		for i, p := range raw {
			switch v := p.(type) {
			case map[string]interface{}:
				e, err := FromJSON(v)
				if err != nil {
					return nil, err
				}
				params[i] = e
			case string:
				params[i] = v
			case float64:
				params[i] = int(v)
			default:
				return nil, malformed("operator: invalid parameter %d", i)
			}
		}
		return NewOperator(kind, params...)
	case "self_defined_function":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		raw, ok := data["args"].([]interface{})
		if !ok {
			return nil, malformed("self_defined_function: 'args' must be an array")
		}
		args := make([]Expression, len(raw))
		for i, a := range raw {
			m, ok := a.(map[string]interface{})
			if !ok {
				return nil, malformed("self_defined_function: argument %d must be an object", i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		return CallFunction(name, args...)
	}
	return nil, malformed("unknown expression type %q", typ)
}

// parseRatLiteral reads the literals written by Constant.String, including
// the bracketed "(p/q)" form.
func parseRatLiteral(s string) (*big.Rat, bool) {
	if len(s) > 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = s[1 : len(s)-1]
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return r, true
}
