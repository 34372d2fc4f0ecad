package symalg

import "math/big"

// ============================================================
// Equivalence modulo commutativity and associativity
// ============================================================

// Equivalent reports whether a and b are equal up to reordering and
// regrouping of sums and products. It is reflexive, symmetric and implied by
// Equals.
func Equivalent(a, b Expression) bool {
	if a.Equals(b) {
		return true
	}
	switch x := a.(type) {
	case *BinaryOperation:
		y, ok := b.(*BinaryOperation)
		if !ok {
			return false
		}
		switch {
		case isSum(x) && isSum(y):
			pa, na := signedSummands(x)
			pb, nb := signedSummands(y)
			return sameMultiset(pa, pb) && sameMultiset(na, nb)
		case isProduct(x) && isProduct(y):
			ua, da := factors(x)
			ub, db := factors(y)
			return sameMultiset(ua, ub) && sameMultiset(da, db)
		case x.op == POW && y.op == POW:
			return Equivalent(x.left, y.left) && Equivalent(x.right, y.right)
		}
	case *Function:
		y, ok := b.(*Function)
		return ok && x.kind == y.kind && Equivalent(x.arg, y.arg)
	case *Operator:
		y, ok := b.(*Operator)
		if !ok || x.kind != y.kind || len(x.params) != len(y.params) {
			return false
		}
		for i := range x.params {
			if !paramEquals(x.params[i], y.params[i], Equivalent) {
				return false
			}
		}
		return true
	case *SelfDefinedFunction:
		y, ok := b.(*SelfDefinedFunction)
		if !ok || x.name != y.name || x.def != y.def || len(x.args) != len(y.args) {
			return false
		}
		for i := range x.args {
			if !Equivalent(x.args[i], y.args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// sameMultiset matches a against b element by element under Equivalent.
func sameMultiset(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && Equivalent(x, y) {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

// indexOfEquivalent returns the position of the first element of list
// equivalent to e, or -1.
func indexOfEquivalent(list []Expression, e Expression) int {
	for i, x := range list {
		if Equivalent(x, e) {
			return i
		}
	}
	return -1
}

// ============================================================
// Sum and product decomposition
// ============================================================

// summands flattens nested PLUS and MINUS nodes into the terms that are added
// and the terms that are subtracted.
func summands(e Expression) (pos, neg []Expression) {
	var collect func(e Expression, negative bool)
	collect = func(e Expression, negative bool) {
		if b, ok := e.(*BinaryOperation); ok && (b.op == PLUS || b.op == MINUS) {
			collect(b.left, negative)
			collect(b.right, negative != (b.op == MINUS))
			return
		}
		if negative {
			neg = append(neg, e)
		} else {
			pos = append(pos, e)
		}
	}
	collect(e, false)
	return pos, neg
}

// signedSummands is summands with every term carrying a negative sign moved
// to the other side.
func signedSummands(e Expression) (pos, neg []Expression) {
	p, n := summands(e)
	var movedToPos, movedToNeg []Expression
	for _, t := range p {
		if hasPositiveSign(t) {
			pos = append(pos, t)
		} else {
			movedToNeg = append(movedToNeg, negate(t))
		}
	}
	for _, t := range n {
		if hasPositiveSign(t) {
			neg = append(neg, t)
		} else {
			movedToPos = append(movedToPos, negate(t))
		}
	}
	return append(pos, movedToPos...), append(movedToNeg, neg...)
}

// factors flattens nested TIMES and DIV nodes into numerator and denominator
// factors.
func factors(e Expression) (num, den []Expression) {
	var collect func(e Expression, inverted bool)
	collect = func(e Expression, inverted bool) {
		if b, ok := e.(*BinaryOperation); ok && (b.op == TIMES || b.op == DIV) {
			collect(b.left, inverted)
			collect(b.right, inverted != (b.op == DIV))
			return
		}
		if inverted {
			den = append(den, e)
		} else {
			num = append(num, e)
		}
	}
	collect(e, false)
	return num, den
}

// hasPositiveSign reports whether e is written without an overall negative
// sign: negative constants are negative and products multiply the signs of
// their operands.
func hasPositiveSign(e Expression) bool {
	switch v := e.(type) {
	case *Constant:
		if v.precise {
			return v.exact.Sign() >= 0
		}
		return v.value >= 0
	case *BinaryOperation:
		if v.op == TIMES || v.op == DIV {
			return hasPositiveSign(v.left) == hasPositiveSign(v.right)
		}
	}
	return true
}

// negate returns an expression for -e, pushing the sign into a constant or
// a negative factor where possible.
func negate(e Expression) Expression {
	switch v := e.(type) {
	case *Constant:
		if v.precise {
			return NewRationalConstant(new(big.Rat).Neg(v.exact))
		}
		return NewApproximateConstant(-v.value)
	case *BinaryOperation:
		switch v.op {
		case TIMES:
			if isMinusOne(v.left) {
				return v.right
			}
			if _, ok := v.left.(*Constant); ok {
				return Mult(negate(v.left), v.right)
			}
			if !hasPositiveSign(v.left) {
				return Mult(negate(v.left), v.right)
			}
			if !hasPositiveSign(v.right) {
				return Mult(v.left, negate(v.right))
			}
		case DIV:
			if !hasPositiveSign(v.right) {
				return Div(v.left, negate(v.right))
			}
			if _, ok := v.left.(*Constant); ok || !hasPositiveSign(v.left) {
				return Div(negate(v.left), v.right)
			}
		}
	}
	return Mult(Num(-1), e)
}

// ============================================================
// Canonical builders
// ============================================================

func isNumeric(e Expression) bool {
	_, ok := scalarOf(e)
	return ok
}

// buildSum adds terms right-nested, numeric terms last.
func buildSum(terms []Expression) Expression {
	ordered := make([]Expression, 0, len(terms))
	var numbers []Expression
	for _, t := range terms {
		if isNumeric(t) {
			numbers = append(numbers, t)
		} else {
			ordered = append(ordered, t)
		}
	}
	ordered = append(ordered, numbers...)
	if len(ordered) == 0 {
		return zero()
	}
	result := ordered[len(ordered)-1]
	for i := len(ordered) - 2; i >= 0; i-- {
		result = Add(ordered[i], result)
	}
	return result
}

// buildProduct multiplies factors right-nested, numeric factors first.
func buildProduct(fs []Expression) Expression {
	ordered := make([]Expression, 0, len(fs))
	var rest []Expression
	for _, f := range fs {
		if isNumeric(f) {
			ordered = append(ordered, f)
		} else {
			rest = append(rest, f)
		}
	}
	ordered = append(ordered, rest...)
	if len(ordered) == 0 {
		return one()
	}
	result := ordered[len(ordered)-1]
	for i := len(ordered) - 2; i >= 0; i-- {
		result = Mult(ordered[i], result)
	}
	return result
}

// buildDifference writes sum(pos) - sum(neg). Without positive terms the
// first subtracted term is negated and leads.
func buildDifference(pos, neg []Expression) Expression {
	switch {
	case len(neg) == 0:
		return buildSum(pos)
	case len(pos) > 0:
		return Sub(buildSum(pos), buildSum(neg))
	case len(neg) == 1:
		return negate(neg[0])
	}
	return Sub(negate(neg[0]), buildSum(neg[1:]))
}

// buildQuotient writes product(num) / product(den).
func buildQuotient(num, den []Expression) Expression {
	if len(den) == 0 {
		return buildProduct(num)
	}
	return Div(buildProduct(num), buildProduct(den))
}
