package symalg

import "math/big"

// ============================================================
// Ordering passes: canonical shape of sums and products
// ============================================================
//
// A sum is written sum(pos) - sum(neg) with every term of positive sign and
// numeric terms folded into one trailing constant. A product is written
// product(num) / product(den) with all numeric factors folded into a single
// coefficient p/q, p leading the numerator and q the denominator.

func (s *simplifier) orderDifferenceAndDivision(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			return canonicalSum(pos, neg), nil
		},
		product: func(_ Expression, num, den []Expression) (Expression, error) {
			return canonicalProduct(num, den), nil
		},
	})
}

func (s *simplifier) orderSumsAndProducts(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			return buildDifference(pos, neg), nil
		},
		product: func(_ Expression, num, den []Expression) (Expression, error) {
			return canonicalProduct(num, den), nil
		},
	})
}

// redistributeSigns moves terms with a negative sign to the other bucket.
// Terms moved out of pos lead neg, so a sum without positive terms keeps its
// leading term: buildDifference negates neg[0] back to the front.
func redistributeSigns(pos, neg []Expression) ([]Expression, []Expression) {
	var p, n, toPos, toNeg []Expression
	for _, t := range pos {
		if hasPositiveSign(t) {
			p = append(p, t)
		} else {
			toNeg = append(toNeg, negate(t))
		}
	}
	for _, t := range neg {
		if hasPositiveSign(t) {
			n = append(n, t)
		} else {
			toPos = append(toPos, negate(t))
		}
	}
	return append(p, toPos...), append(toNeg, n...)
}

func canonicalSum(pos, neg []Expression) Expression {
	pos, neg = redistributeSigns(pos, neg)
	total, numbers := scalar{exact: new(big.Rat)}, 0
	var p, n []Expression
	for _, t := range pos {
		if c, ok := scalarOf(t); ok {
			total = total.add(c)
			numbers++
			continue
		}
		p = append(p, t)
	}
	for _, t := range neg {
		if c, ok := scalarOf(t); ok {
			total = total.add(c.neg())
			numbers++
			continue
		}
		n = append(n, t)
	}
	switch {
	case total.sign() > 0:
		p = append(p, total.expr())
	case total.sign() < 0:
		n = append(n, total.neg().expr())
	case numbers > 0 && len(p)+len(n) == 0:
		return total.expr()
	}
	return buildDifference(p, n)
}

// splitFactors separates numeric factors, folded into one coefficient, from
// the others. ok is false on a numeric zero in the denominator.
func splitFactors(num, den []Expression) (c scalar, restNum, restDen []Expression, ok bool) {
	c = scalarOne()
	for _, f := range num {
		if v, isNum := scalarOf(f); isNum {
			c = c.mul(v)
			continue
		}
		restNum = append(restNum, f)
	}
	for _, f := range den {
		if v, isNum := scalarOf(f); isNum {
			q, nonZero := c.quo(v)
			if !nonZero {
				return scalar{}, nil, nil, false
			}
			c = q
			continue
		}
		restDen = append(restDen, f)
	}
	return c, restNum, restDen, true
}

// withFactors writes c * product(num) / product(den) canonically.
func withFactors(c scalar, num, den []Expression) Expression {
	if c.isZero() {
		return c.expr()
	}
	var n, d []Expression
	if c.isExact() {
		if c.exact.Num().Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
			n = append(n, NewRationalConstant(new(big.Rat).SetInt(c.exact.Num())))
		}
		if !c.exact.IsInt() {
			d = append(d, NewRationalConstant(new(big.Rat).SetInt(c.exact.Denom())))
		}
	} else if !c.isOne() || len(num) == 0 {
		n = append(n, c.expr())
	}
	return buildQuotient(append(n, num...), append(d, den...))
}

func canonicalProduct(num, den []Expression) Expression {
	c, restNum, restDen, ok := splitFactors(num, den)
	if !ok {
		return nil
	}
	return withFactors(c, restNum, restDen)
}

// splitCoefficient writes a term as c * rest. rest is nil for numeric terms.
func splitCoefficient(t Expression) (scalar, Expression, bool) {
	num, den := factors(t)
	c, restNum, restDen, ok := splitFactors(num, den)
	if !ok {
		return scalar{}, nil, false
	}
	if len(restNum) == 0 && len(restDen) == 0 {
		return c, nil, true
	}
	return c, buildQuotient(restNum, restDen), true
}

// withCoefficient is the inverse of splitCoefficient.
func withCoefficient(c scalar, rest Expression) Expression {
	if rest == nil {
		return c.expr()
	}
	num, den := factors(rest)
	return withFactors(c, num, den)
}
