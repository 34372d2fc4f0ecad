package symalg

import (
	"math/big"
)

// ============================================================
// Algebraic expressions: roots of rationals
// ============================================================

// maxRootFactor bounds the trial division used to pull perfect powers out
// of roots.
const maxRootFactor = 10000

func (s *simplifier) simplifyAlgebraicExpressions(e Expression) (Expression, error) {
	e, err := s.rewrite(e, s.simplifyRoot)
	if err != nil {
		return nil, err
	}
	e, err = s.rewriteChains(e, chainRules{product: combineRoots})
	if err != nil {
		return nil, err
	}
	return s.rewrite(e, s.expandRadicalPower)
}

// rootOf matches n^(p/q) with q > 1 and a rational n.
func rootOf(e Expression) (n, exp *big.Rat, ok bool) {
	b, isPow := e.(*BinaryOperation)
	if !isPow || b.op != POW {
		return nil, nil, false
	}
	n, ok1 := rationalOf(b.left)
	exp, ok2 := rationalOf(b.right)
	if !ok1 || !ok2 || exp.IsInt() {
		return nil, nil, false
	}
	return n, exp, true
}

// simplifyRoot pulls integer parts out of roots of rationals:
// 12^(1/2) = 2*3^(1/2), 2^(3/2) = 2*2^(1/2), (1/2)^(1/2) = 1/2^(1/2) and
// (-2)^(1/3) = -2^(1/3).
func (s *simplifier) simplifyRoot(e Expression) (Expression, error) {
	n, exp, ok := rootOf(e)
	if !ok || !exp.Num().IsInt64() || !exp.Denom().IsInt64() {
		return e, nil
	}
	p, q := exp.Num().Int64(), exp.Denom().Int64()
	if n.Sign() < 0 {
		if q%2 == 0 {
			return e, nil
		}
		positive := Pow(NewRationalConstant(new(big.Rat).Neg(n)), rationalExpr(exp))
		if p%2 == 0 {
			return positive, nil
		}
		return Mult(Num(-1), positive), nil
	}
	if n.Sign() == 0 || p < 0 {
		return e, nil
	}
	if !n.IsInt() {
		return Div(
			Pow(NewRationalConstant(new(big.Rat).SetInt(n.Num())), rationalExpr(exp)),
			Pow(NewRationalConstant(new(big.Rat).SetInt(n.Denom())), rationalExpr(exp)),
		), nil
	}
	base := n.Num()
	if p > q {
		whole, rem := p/q, p%q
		return Mult(
			Pow(NewRationalConstant(new(big.Rat).SetInt(base)), Num(whole)),
			Pow(NewRationalConstant(new(big.Rat).SetInt(base)), rationalExpr(big.NewRat(rem, q))),
		), nil
	}
	if int64(base.BitLen())*p > maxExactBits {
		return e, nil
	}
	radicand := new(big.Int).Exp(base, big.NewInt(p), nil)
	outside, inside := extractPower(radicand, q)
	if outside.Cmp(big.NewInt(1)) == 0 {
		return e, nil
	}
	if inside.Cmp(big.NewInt(1)) == 0 {
		return NewRationalConstant(new(big.Rat).SetInt(outside)), nil
	}
	return Mult(
		NewRationalConstant(new(big.Rat).SetInt(outside)),
		Pow(NewRationalConstant(new(big.Rat).SetInt(inside)), rationalExpr(big.NewRat(1, q))),
	), nil
}

// extractPower writes m = outside^q * inside with outside as large as trial
// division up to maxRootFactor finds.
func extractPower(m *big.Int, q int64) (outside, inside *big.Int) {
	outside, inside = big.NewInt(1), new(big.Int).Set(m)
	rem := new(big.Int)
	for k := int64(2); k <= maxRootFactor; k++ {
		kq := new(big.Int).Exp(big.NewInt(k), big.NewInt(q), nil)
		if kq.Cmp(inside) > 0 {
			break
		}
		for {
			quo := new(big.Int)
			quo.QuoRem(inside, kq, rem)
			if rem.Sign() != 0 {
				break
			}
			inside = quo
			outside.Mul(outside, big.NewInt(k))
		}
	}
	return outside, inside
}

// combineRoots merges roots of positive integers with the same exponent,
// 2^(1/2)*3^(1/2) = 6^(1/2), and rationalizes denominators:
// a/n^(1/q) = a*n^(1-1/q)/n and a/(b+c*n^(1/2)) = a*(b-c*n^(1/2))/(b^2-c^2*n).
func combineRoots(_ Expression, num, den []Expression) (Expression, error) {
	num = append([]Expression(nil), num...)
	den = append([]Expression(nil), den...)
	changed := false
	if merged, ok := mergeIntegerRoots(num); ok {
		num, changed = merged, true
	}
	for j := 0; j < len(den); j++ {
		if n, exp, ok := rootOf(den[j]); ok && n.IsInt() && n.Sign() > 0 && exp.Sign() > 0 && exp.Cmp(big.NewRat(1, 1)) < 0 {
			num = append(num, Pow(NewRationalConstant(n), rationalExpr(new(big.Rat).Sub(big.NewRat(1, 1), exp))))
			den[j] = NewRationalConstant(n)
			changed = true
			continue
		}
		if conj, square, ok := conjugate(den[j]); ok {
			num = append(num, conj)
			den[j] = square
			changed = true
		}
	}
	if !changed {
		return nil, nil
	}
	return buildQuotient(num, den), nil
}

func mergeIntegerRoots(items []Expression) ([]Expression, bool) {
	type group struct {
		exp   *big.Rat
		bases *big.Int
		count int
	}
	var groups []*group
	var rest []Expression
	for _, f := range items {
		n, exp, ok := rootOf(f)
		if !ok || !n.IsInt() || n.Sign() <= 0 {
			rest = append(rest, f)
			continue
		}
		found := false
		for _, g := range groups {
			if g.exp.Cmp(exp) == 0 {
				g.bases.Mul(g.bases, n.Num())
				g.count++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, &group{exp: exp, bases: new(big.Int).Set(n.Num()), count: 1})
		}
	}
	merged := false
	for _, g := range groups {
		merged = merged || g.count > 1
	}
	if !merged {
		return items, false
	}
	for _, g := range groups {
		rest = append(rest, Pow(NewRationalConstant(new(big.Rat).SetInt(g.bases)), rationalExpr(g.exp)))
	}
	return rest, true
}

// squareRootTerm matches c or c*n^(1/2) with rational c and n.
func squareRootTerm(t Expression) bool {
	_, rest, ok := splitCoefficient(t)
	if !ok {
		return false
	}
	if rest == nil {
		return true
	}
	n, exp, ok := rootOf(rest)
	return ok && n.Sign() > 0 && exp.Cmp(big.NewRat(1, 2)) == 0
}

// conjugate returns the conjugate of a two-term sum involving a square root
// together with the rational product of the sum and its conjugate.
func conjugate(d Expression) (conj, square Expression, ok bool) {
	if !isSum(d) {
		return nil, nil, false
	}
	pos, neg := summands(d)
	terms := append(append([]Expression(nil), pos...), neg...)
	if len(terms) != 2 || !containsNode(d, isRoot) {
		return nil, nil, false
	}
	for _, t := range terms {
		if !squareRootTerm(t) {
			return nil, nil, false
		}
	}
	a, b := terms[0], terms[1]
	if len(pos) == 0 {
		a = negate(a)
	}
	subtracted := len(neg) > 0
	if subtracted {
		conj = Add(a, b)
	} else {
		conj = Sub(a, b)
	}
	return conj, Sub(Pow(a, Num(2)), Pow(b, Num(2))), true
}

func isRoot(e Expression) bool {
	_, _, ok := rootOf(e)
	return ok
}

// expandRadicalPower multiplies out small integer powers of constant sums
// containing roots: (1+2^(1/2))^2 = 1+2*2^(1/2)+2.
func (s *simplifier) expandRadicalPower(e Expression) (Expression, error) {
	b, ok := e.(*BinaryOperation)
	if !ok || b.op != POW || !isSum(b.left) || !IsConstant(b.left) || !containsNode(b.left, isRoot) {
		return e, nil
	}
	n, ok := smallIntegerOf(b.right)
	if !ok || n < 2 || n > s.cfg.MaxAlgebraicExponent {
		return e, nil
	}
	result := b.left
	for i := 1; i < n; i++ {
		if err := checkContext(s.ctx); err != nil {
			return nil, err
		}
		result = multiplySums(result, b.left)
	}
	return result, nil
}

// multiplySums distributes (p1-n1)*(p2-n2) into p1*p2+n1*n2-p1*n2-n1*p2.
func multiplySums(x, y Expression) Expression {
	px, nx := summands(x)
	py, ny := summands(y)
	var pos, neg []Expression
	cross := func(as, bs []Expression, into *[]Expression) {
		for _, a := range as {
			for _, b := range bs {
				*into = append(*into, Mult(a, b))
			}
		}
	}
	cross(px, py, &pos)
	cross(nx, ny, &pos)
	cross(px, ny, &neg)
	cross(nx, py, &neg)
	return buildDifference(pos, neg)
}
