package symalg

import (
	"math/big"
)

// ============================================================
// Univariate polynomials with exact coefficients
// ============================================================

// polynomial holds coefficients by degree. The zero polynomial is empty and
// the leading coefficient of any other is non-zero.
type polynomial []*big.Rat

func constantPolynomial(r *big.Rat) polynomial {
	return polynomial{new(big.Rat).Set(r)}.trim()
}

func monomial(c *big.Rat, k int) polynomial {
	p := make(polynomial, k+1)
	for i := range p {
		p[i] = new(big.Rat)
	}
	p[k].Set(c)
	return p.trim()
}

func (p polynomial) trim() polynomial {
	n := len(p)
	for n > 0 && p[n-1].Sign() == 0 {
		n--
	}
	return p[:n]
}

func (p polynomial) degree() int { return len(p) - 1 }

func (p polynomial) coefficient(k int) *big.Rat {
	if k < len(p) {
		return p[k]
	}
	return new(big.Rat)
}

func (p polynomial) add(q polynomial) polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(polynomial, n)
	for i := range out {
		out[i] = new(big.Rat).Add(p.coefficient(i), q.coefficient(i))
	}
	return out.trim()
}

func (p polynomial) scale(c *big.Rat) polynomial {
	out := make(polynomial, len(p))
	for i, a := range p {
		out[i] = new(big.Rat).Mul(a, c)
	}
	return out.trim()
}

func (p polynomial) neg() polynomial { return p.scale(big.NewRat(-1, 1)) }

func (p polynomial) sub(q polynomial) polynomial { return p.add(q.neg()) }

func (p polynomial) mul(q polynomial) polynomial {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}
	out := make(polynomial, len(p)+len(q)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	t := new(big.Rat)
	for i, a := range p {
		for j, b := range q {
			out[i+j].Add(out[i+j], t.Mul(a, b))
		}
	}
	return out.trim()
}

func (p polynomial) pow(n, maxDegree int) (polynomial, bool) {
	if p.degree()*n > maxDegree {
		return nil, false
	}
	out := constantPolynomial(big.NewRat(1, 1))
	for i := 0; i < n; i++ {
		out = out.mul(p)
	}
	return out, true
}

// divMod divides p by a non-zero q.
func (p polynomial) divMod(q polynomial) (quo, rem polynomial) {
	rem = append(polynomial(nil), p...)
	if q.degree() > p.degree() {
		return nil, rem
	}
	quo = make(polynomial, p.degree()-q.degree()+1)
	for i := range quo {
		quo[i] = new(big.Rat)
	}
	lead := q[len(q)-1]
	for rem.degree() >= q.degree() {
		k := rem.degree() - q.degree()
		c := new(big.Rat).Quo(rem[len(rem)-1], lead)
		quo[k] = c
		rem = rem.sub(q.mul(monomial(c, k)))
	}
	return quo.trim(), rem
}

func (p polynomial) monic() polynomial {
	if len(p) == 0 {
		return p
	}
	return p.scale(new(big.Rat).Inv(p[len(p)-1]))
}

// polynomialGCD returns the monic greatest common divisor of a and b.
func polynomialGCD(a, b polynomial) polynomial {
	for len(b) > 0 {
		_, r := a.divMod(b)
		a, b = b, r
	}
	return a.monic()
}

// toPolynomial reads e as a polynomial in x with exact coefficients.
func toPolynomial(e Expression, x string, maxDegree int) (polynomial, bool) {
	if r, ok := rationalOf(e); ok {
		return constantPolynomial(r), true
	}
	switch v := e.(type) {
	case *Variable:
		if v.name == x {
			return monomial(big.NewRat(1, 1), 1), true
		}
	case *BinaryOperation:
		l, ok := toPolynomial(v.left, x, maxDegree)
		if !ok {
			return nil, false
		}
		if v.op == POW {
			n, ok := smallIntegerOf(v.right)
			if !ok || n < 0 {
				return nil, false
			}
			return l.pow(n, maxDegree)
		}
		r, ok := toPolynomial(v.right, x, maxDegree)
		if !ok {
			return nil, false
		}
		switch v.op {
		case PLUS:
			return l.add(r), true
		case MINUS:
			return l.sub(r), true
		case TIMES:
			if l.degree()+r.degree() > maxDegree {
				return nil, false
			}
			return l.mul(r), true
		case DIV:
			if r.degree() != 0 {
				return nil, false
			}
			return l.scale(new(big.Rat).Inv(r[0])), true
		}
	}
	return nil, false
}

// toExpression writes p in descending powers of x.
func (p polynomial) toExpression(x string) Expression {
	var pos, neg []Expression
	for k := p.degree(); k >= 0; k-- {
		c := p[k]
		if c.Sign() == 0 {
			continue
		}
		var rest Expression
		switch k {
		case 0:
		case 1:
			rest = Var(x)
		default:
			rest = Pow(Var(x), Num(int64(k)))
		}
		if c.Sign() > 0 {
			pos = append(pos, withCoefficient(exactScalar(c), rest))
		} else {
			neg = append(neg, withCoefficient(exactScalar(new(big.Rat).Neg(c)), rest))
		}
	}
	return buildDifference(pos, neg)
}

// monomialDegree returns k when t is c*x^k with a rational c.
func monomialDegree(t Expression, x string) (int, bool) {
	c, rest, ok := splitCoefficient(t)
	if !ok || !c.isExact() {
		return 0, false
	}
	if rest == nil {
		return 0, true
	}
	if v, ok := rest.(*Variable); ok && v.name == x {
		return 1, true
	}
	if b, ok := rest.(*BinaryOperation); ok && b.op == POW {
		if v, ok := b.left.(*Variable); ok && v.name == x {
			if k, ok := smallIntegerOf(b.right); ok && k >= 2 {
				return k, true
			}
		}
	}
	return 0, false
}

// isExpanded reports whether a sum is already written as monomials of
// distinct degree in descending order.
func isExpanded(pos, neg []Expression, x string) bool {
	seen := map[int]bool{}
	for _, bucket := range [][]Expression{pos, neg} {
		last := -1
		for i, t := range bucket {
			k, ok := monomialDegree(t, x)
			if !ok || seen[k] || (i > 0 && k >= last) {
				return false
			}
			seen[k] = true
			last = k
		}
	}
	return true
}

func singleVariable(e Expression) (string, bool) {
	vars := FreeVars(e)
	if len(vars) != 1 {
		return "", false
	}
	for name := range vars {
		return name, true
	}
	return "", false
}

// simplifyPolynomials expands univariate polynomial sums into descending
// monomials and cancels the polynomial gcd of univariate quotients.
func (s *simplifier) simplifyPolynomials(e Expression) (Expression, error) {
	maxDegree := s.cfg.MaxPolynomialDegree
	return s.rewriteChains(e, chainRules{
		sum: func(node Expression, _, _ []Expression) (Expression, error) {
			x, ok := singleVariable(node)
			if !ok || s.approximate {
				return nil, nil
			}
			pos, neg := signedSummands(node)
			if isExpanded(pos, neg, x) {
				return nil, nil
			}
			p, ok := toPolynomial(node, x, maxDegree)
			if !ok {
				return nil, nil
			}
			return p.toExpression(x), nil
		},
		product: func(node Expression, num, den []Expression) (Expression, error) {
			if len(den) == 0 || s.approximate {
				return nil, nil
			}
			x, ok := singleVariable(node)
			if !ok {
				return nil, nil
			}
			pn, ok1 := toPolynomial(buildProduct(num), x, maxDegree)
			pd, ok2 := toPolynomial(buildProduct(den), x, maxDegree)
			if !ok1 || !ok2 || pd.degree() < 1 || pn.degree() < 1 {
				return nil, nil
			}
			g := polynomialGCD(pn, pd)
			if g.degree() < 1 {
				return nil, nil
			}
			qn, _ := pn.divMod(g)
			qd, _ := pd.divMod(g)
			return Div(qn.toExpression(x), qd.toExpression(x)), nil
		},
	})
}
