package symalg

import "math/big"

// ============================================================
// Exact / approximate duality
// ============================================================

// TurnToApproximate marks every constant of e approximate and flags every
// variable of e approximate in the registry, so later substitutions use its
// floating value.
func TurnToApproximate(e Expression) Expression {
	for name := range FreeVars(e) {
		symbols.setApproximate(name, true)
	}
	return approximateConstants(e)
}

// TurnToPrecise converts approximate constants to the exact value of their
// shortest decimal rendering and clears the approximate flag of every
// variable of e.
func TurnToPrecise(e Expression) Expression {
	for name := range FreeVars(e) {
		symbols.setApproximate(name, false)
	}
	r, _ := mapConstants(e, func(c *Constant) Expression {
		if c.precise {
			return c
		}
		return NewRationalConstant(ratFromFloat(c.value))
	})
	return r
}

func approximateConstants(e Expression) Expression {
	r, _ := mapConstants(e, func(c *Constant) Expression {
		if !c.precise {
			return c
		}
		return NewApproximateConstant(c.value)
	})
	return r
}

func mapConstants(e Expression, f func(*Constant) Expression) (Expression, error) {
	if c, ok := e.(*Constant); ok {
		return f(c), nil
	}
	return mapChildren(e, func(child Expression) (Expression, error) { return mapConstants(child, f) })
}

func containsApproximates(e Expression) bool {
	return containsNode(e, func(n Expression) bool {
		c, ok := n.(*Constant)
		return ok && !c.precise
	})
}

// protectOddRoots rewrites odd roots of negative rationals before the tree is
// made approximate: (-2)^(1/3) = -(2^(1/3)). Once the exponent is a float
// the real root would otherwise be lost.
func protectOddRoots(e Expression) Expression {
	r, _ := mapChildren(e, func(c Expression) (Expression, error) { return protectOddRoots(c), nil })
	b, ok := r.(*BinaryOperation)
	if !ok || b.op != POW {
		return r
	}
	base, ok1 := rationalOf(b.left)
	exp, ok2 := rationalOf(b.right)
	if !ok1 || !ok2 || base.Sign() >= 0 || exp.Denom().Bit(0) == 0 {
		return r
	}
	positive := Pow(NewRationalConstant(new(big.Rat).Neg(base)), b.right)
	if exp.Num().Bit(0) == 0 {
		return positive
	}
	return Mult(Num(-1), positive)
}

// EvaluateExcept replaces every maximal subtree that contains none of the
// variables in keep by its approximate value. Subtrees that cannot be
// evaluated are kept.
func EvaluateExcept(e Expression, keep ...string) Expression {
	bound := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		bound[name] = struct{}{}
	}
	return evaluateExcept(e, bound)
}

func evaluateExcept(e Expression, keep map[string]struct{}) Expression {
	if !containsAny(e, keep) {
		if _, ok := e.(*Constant); ok {
			return e
		}
		if v, err := e.Evaluate(); err == nil {
			return NewApproximateConstant(v)
		}
		return e
	}
	if o, ok := e.(*Operator); ok {
		// Bound variables must not be evaluated away from their operator.
		return o
	}
	r, _ := mapChildren(e, func(c Expression) (Expression, error) { return evaluateExcept(c, keep), nil })
	return r
}

func containsAny(e Expression, names map[string]struct{}) bool {
	for name := range FreeVars(e) {
		if _, ok := names[name]; ok {
			return true
		}
	}
	return false
}
