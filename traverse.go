package symalg

// walk visits e and every subexpression in pre-order.
func walk(e Expression, visit func(Expression)) {
	visit(e)
	for _, c := range children(e) {
		walk(c, visit)
	}
}

// children returns the expression-valued operands of e.
func children(e Expression) []Expression {
	switch v := e.(type) {
	case *BinaryOperation:
		return []Expression{v.left, v.right}
	case *Function:
		return []Expression{v.arg}
	case *Operator:
		var out []Expression
		for _, p := range v.params {
			if c, ok := p.(Expression); ok {
				out = append(out, c)
			}
		}
		return out
	case *SelfDefinedFunction:
		return v.args
	}
	return nil
}

// mapChildren rebuilds e with every operand replaced by f(operand). The node
// itself is returned when no operand changed.
func mapChildren(e Expression, f func(Expression) (Expression, error)) (Expression, error) {
	switch v := e.(type) {
	case *BinaryOperation:
		l, err := f(v.left)
		if err != nil {
			return nil, err
		}
		r, err := f(v.right)
		if err != nil {
			return nil, err
		}
		return v.with(l, r), nil
	case *Function:
		a, err := f(v.arg)
		if err != nil {
			return nil, err
		}
		return v.with(a), nil
	case *Operator:
		params := make([]interface{}, len(v.params))
		changed := false
		for i, p := range v.params {
			c, ok := p.(Expression)
			if !ok {
				params[i] = p
				continue
			}
			r, err := f(c)
			if err != nil {
				return nil, err
			}
			changed = changed || r != c
			params[i] = r
		}
		if !changed {
			return v, nil
		}
		return &Operator{params: params, kind: v.kind}, nil
	case *SelfDefinedFunction:
		args := make([]Expression, len(v.args))
		changed := false
		for i, a := range v.args {
			r, err := f(a)
			if err != nil {
				return nil, err
			}
			changed = changed || r != a
			args[i] = r
		}
		if !changed {
			return v, nil
		}
		return &SelfDefinedFunction{name: v.name, def: v.def, args: args}, nil
	}
	return e, nil
}

// containsNode reports whether any subexpression satisfies pred.
func containsNode(e Expression, pred func(Expression) bool) bool {
	if pred(e) {
		return true
	}
	for _, c := range children(e) {
		if containsNode(c, pred) {
			return true
		}
	}
	return false
}
