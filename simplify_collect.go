package symalg

import "math/big"

// ============================================================
// Powers, like terms and common factors
// ============================================================

// powerParts splits f into base and exponent, reading a plain factor as f^1.
func powerParts(f Expression) (Expression, Expression) {
	if b, ok := f.(*BinaryOperation); ok && b.op == POW {
		return b.left, b.right
	}
	return f, one()
}

func (s *simplifier) simplifyPowers(e Expression) (Expression, error) {
	return s.rewrite(e, func(n Expression) (Expression, error) {
		b, ok := n.(*BinaryOperation)
		if !ok || b.op != POW {
			return n, nil
		}
		if _, isInt := integerOf(b.right); !isInt {
			return n, nil
		}
		// (a*b/c)^n = a^n*b^n/c^n
		if isProduct(b.left) {
			num, den := factors(b.left)
			for i, f := range num {
				num[i] = Pow(f, b.right)
			}
			for i, f := range den {
				den[i] = Pow(f, b.right)
			}
			return buildQuotient(num, den), nil
		}
		// |u|^(2k) = u^(2k)
		if inner, ok := isFunction(b.left, FuncAbs); ok {
			if k, _ := integerOf(b.right); k.Bit(0) == 0 {
				return Pow(inner.arg, b.right), nil
			}
		}
		return n, nil
	})
}

// collectProducts merges factors with equivalent bases into one power.
func (s *simplifier) collectProducts(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		product: func(_ Expression, num, den []Expression) (Expression, error) {
			num2, c1 := mergeBases(num)
			den2, c2 := mergeBases(den)
			if !c1 && !c2 {
				return nil, nil
			}
			return buildQuotient(num2, den2), nil
		},
	})
}

func mergeBases(items []Expression) ([]Expression, bool) {
	type group struct {
		base Expression
		exps []Expression
		orig Expression
	}
	var groups []*group
	changed := false
	for _, f := range items {
		if isNumeric(f) {
			groups = append(groups, &group{orig: f})
			continue
		}
		base, exp := powerParts(f)
		merged := false
		for _, g := range groups {
			if g.base != nil && Equivalent(g.base, base) {
				g.exps = append(g.exps, exp)
				merged, changed = true, true
				break
			}
		}
		if !merged {
			groups = append(groups, &group{base: base, exps: []Expression{exp}, orig: f})
		}
	}
	if !changed {
		return items, false
	}
	out := make([]Expression, 0, len(groups))
	for _, g := range groups {
		if len(g.exps) <= 1 {
			out = append(out, g.orig)
			continue
		}
		out = append(out, Pow(g.base, buildSum(g.exps)))
	}
	return out, true
}

// expandRationalFactors distributes a numeric coefficient over a single sum:
// c*(a+b) = c*a+c*b and (a+b)/c = a/c+b/c.
func (s *simplifier) expandRationalFactors(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		product: func(_ Expression, num, den []Expression) (Expression, error) {
			c, restNum, restDen, ok := splitFactors(num, den)
			if !ok || len(restDen) != 0 || len(restNum) != 1 || !isSum(restNum[0]) || c.isOne() {
				return nil, nil
			}
			pos, neg := summands(restNum[0])
			for i, t := range pos {
				pos[i] = scaleTerm(c, t)
			}
			for i, t := range neg {
				neg[i] = scaleTerm(c, t)
			}
			return canonicalSum(pos, neg), nil
		},
	})
}

func scaleTerm(c scalar, t Expression) Expression {
	tc, rest, ok := splitCoefficient(t)
	if !ok {
		return Mult(c.expr(), t)
	}
	return withCoefficient(c.mul(tc), rest)
}

// ============================================================
// Like terms
// ============================================================

type likeTerm struct {
	c      scalar
	rest   Expression
	orig   Expression
	merged bool
}

func toLikeTerms(terms []Expression) []*likeTerm {
	out := make([]*likeTerm, len(terms))
	for i, t := range terms {
		c, rest, ok := splitCoefficient(t)
		if !ok {
			rest, c = t, scalarOne()
		}
		out[i] = &likeTerm{c: c, rest: rest, orig: t}
	}
	return out
}

func (l *likeTerm) expr() Expression {
	if !l.merged {
		return l.orig
	}
	return withCoefficient(l.c, l.rest)
}

// mergeLikeTerms adds the coefficients of terms whose non-numeric parts are
// equivalent.
func mergeLikeTerms(terms []*likeTerm) ([]*likeTerm, bool) {
	var out []*likeTerm
	changed := false
	for _, t := range terms {
		if t.rest != nil {
			if j := indexOfLike(out, t.rest); j >= 0 {
				out[j].c = out[j].c.add(t.c)
				out[j].merged, changed = true, true
				continue
			}
		}
		out = append(out, t)
	}
	return out, changed
}

func indexOfLike(terms []*likeTerm, rest Expression) int {
	for i, t := range terms {
		if t.rest != nil && Equivalent(t.rest, rest) {
			return i
		}
	}
	return -1
}

func likeExprs(terms []*likeTerm) []Expression {
	out := make([]Expression, 0, len(terms))
	for _, t := range terms {
		if t.merged && t.c.isZero() {
			continue
		}
		out = append(out, t.expr())
	}
	return out
}

func (s *simplifier) factorizeRationalsInSums(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			pos, neg = redistributeSigns(pos, neg)
			p, c1 := mergeLikeTerms(toLikeTerms(pos))
			n, c2 := mergeLikeTerms(toLikeTerms(neg))
			if !c1 && !c2 {
				return nil, nil
			}
			return canonicalSum(likeExprs(p), likeExprs(n)), nil
		},
	})
}

// factorizeRationalsInDifferences cancels like terms across the added and
// subtracted parts: 3*x - x = 2*x.
func (s *simplifier) factorizeRationalsInDifferences(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			pos, neg = redistributeSigns(pos, neg)
			if len(pos) == 0 || len(neg) == 0 {
				return nil, nil
			}
			p, n := toLikeTerms(pos), toLikeTerms(neg)
			changed := false
			var rest []*likeTerm
			for _, t := range n {
				if t.rest == nil {
					rest = append(rest, t)
					continue
				}
				j := indexOfLike(p, t.rest)
				if j < 0 {
					rest = append(rest, t)
					continue
				}
				p[j].c = p[j].c.add(t.c.neg())
				p[j].merged, changed = true, true
			}
			if !changed {
				return nil, nil
			}
			var newPos, newNeg []Expression
			for _, t := range p {
				switch {
				case t.merged && t.c.isZero():
				case t.c.sign() < 0:
					newNeg = append(newNeg, withCoefficient(t.c.neg(), t.rest))
				default:
					newPos = append(newPos, t.expr())
				}
			}
			return canonicalSum(newPos, append(newNeg, likeExprs(rest)...)), nil
		},
	})
}

// ============================================================
// Common non-numeric factors
// ============================================================

func (s *simplifier) factorizeInSums(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			pos, neg = redistributeSigns(pos, neg)
			p, c1 := factorOutPairs(pos, nil, false)
			n, c2 := factorOutPairs(neg, nil, false)
			if !c1 && !c2 {
				return nil, nil
			}
			return buildDifference(p, n), nil
		},
	})
}

func (s *simplifier) factorizeInDifferences(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			pos, neg = redistributeSigns(pos, neg)
			p, changed := factorOutPairs(pos, &neg, true)
			if !changed {
				return nil, nil
			}
			return buildDifference(p, neg), nil
		},
	})
}

// factorOutPairs merges pairs of terms sharing non-numeric factors:
// a*x + b*x = x*(a+b). With subtract set, the second term of each pair is
// taken from *others and the remainders are subtracted.
func factorOutPairs(terms []Expression, others *[]Expression, subtract bool) ([]Expression, bool) {
	out := append([]Expression(nil), terms...)
	changed := false
	for i := 0; i < len(out); i++ {
		candidates := out[i+1:]
		if subtract {
			candidates = *others
		}
		for j, other := range candidates {
			merged, ok := commonFactor(out[i], other, subtract)
			if !ok {
				continue
			}
			out[i] = merged
			if subtract {
				*others = append(append([]Expression(nil), (*others)[:j]...), (*others)[j+1:]...)
			} else {
				out = append(out[:i+1+j], out[i+2+j:]...)
			}
			changed = true
			break
		}
	}
	return out, changed
}

func commonFactor(a, b Expression, subtract bool) (Expression, bool) {
	numA, denA := factors(a)
	numB, denB := factors(b)
	if !sameMultiset(denA, denB) {
		return nil, false
	}
	restB := append([]Expression(nil), numB...)
	var common, restA []Expression
	for _, f := range numA {
		if !isNumeric(f) {
			if j := indexOfEquivalent(restB, f); j >= 0 {
				common = append(common, f)
				restB = append(restB[:j], restB[j+1:]...)
				continue
			}
		}
		restA = append(restA, f)
	}
	if len(common) == 0 {
		return nil, false
	}
	ra, rb := buildProduct(restA), buildProduct(restB)
	if IsConstant(ra) || IsConstant(rb) {
		return nil, false
	}
	var inner Expression = Add(ra, rb)
	if subtract {
		inner = Sub(ra, rb)
	}
	return buildQuotient(append(common, inner), denA), true
}

// ============================================================
// Quotients
// ============================================================

// reduceQuotients cancels equal bases between numerator and denominator
// when both exponents are rational.
func (s *simplifier) reduceQuotients(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		product: func(_ Expression, num, den []Expression) (Expression, error) {
			if len(den) == 0 {
				return nil, nil
			}
			num = append([]Expression(nil), num...)
			den = append([]Expression(nil), den...)
			changed := false
			for i := 0; i < len(num); i++ {
				if isNumeric(num[i]) {
					continue
				}
				baseN, expN := powerParts(num[i])
				rn, ok := rationalOf(expN)
				if !ok {
					continue
				}
				for j := 0; j < len(den); j++ {
					if isNumeric(den[j]) {
						continue
					}
					baseD, expD := powerParts(den[j])
					rd, ok := rationalOf(expD)
					if !ok || !Equivalent(baseN, baseD) {
						continue
					}
					d := new(big.Rat).Sub(rn, rd)
					changed = true
					switch d.Sign() {
					case 0:
						num[i] = one()
						den = append(den[:j], den[j+1:]...)
					case 1:
						num[i] = Pow(baseN, rationalExpr(d))
						den = append(den[:j], den[j+1:]...)
					default:
						num[i] = one()
						den[j] = Pow(baseD, rationalExpr(d.Neg(d)))
					}
					break
				}
			}
			if !changed {
				return nil, nil
			}
			return canonicalProduct(num, den), nil
		},
	})
}

// reduceLeadingCoefficients divides numerator and denominator of a quotient
// involving sums by the gcd of their integer coefficients.
func (s *simplifier) reduceLeadingCoefficients(e Expression) (Expression, error) {
	return s.rewrite(e, func(n Expression) (Expression, error) {
		b, ok := n.(*BinaryOperation)
		if !ok || b.op != DIV || (!isSum(b.left) && !isSum(b.right)) {
			return n, nil
		}
		cn, cd := integerContent(b.left), integerContent(b.right)
		if cn == nil || cd == nil {
			return n, nil
		}
		g := new(big.Int).GCD(nil, nil, cn, cd)
		if g.Cmp(big.NewInt(1)) <= 0 {
			return n, nil
		}
		return Div(divideContent(b.left, g), divideContent(b.right, g)), nil
	})
}

// integerContent is the gcd of the integer coefficients of the terms of e,
// or nil when a coefficient is not an integer.
func integerContent(e Expression) *big.Int {
	if isSum(e) {
		pos, neg := summands(e)
		var g *big.Int
		for _, t := range append(pos, neg...) {
			c := integerContent(t)
			if c == nil {
				return nil
			}
			if g == nil {
				g = c
			} else {
				g = new(big.Int).GCD(nil, nil, g, c)
			}
		}
		return g
	}
	c, _, ok := splitCoefficient(e)
	if !ok || !c.isExact() || !c.exact.IsInt() || c.exact.Sign() == 0 {
		return nil
	}
	return new(big.Int).Abs(c.exact.Num())
}

func divideContent(e Expression, g *big.Int) Expression {
	inv := exactScalar(new(big.Rat).SetFrac(big.NewInt(1), g))
	if isSum(e) {
		pos, neg := summands(e)
		for i, t := range pos {
			pos[i] = scaleTerm(inv, t)
		}
		for i, t := range neg {
			neg[i] = scaleTerm(inv, t)
		}
		return rebuildDifference(pos, neg)
	}
	return scaleTerm(inv, e)
}
