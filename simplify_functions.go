package symalg

// ============================================================
// Functional relations and logarithms
// ============================================================

type signedTerm struct {
	c        scalar
	rest     Expression
	negative bool
}

func toSignedTerms(pos, neg []Expression) ([]signedTerm, bool) {
	out := make([]signedTerm, 0, len(pos)+len(neg))
	for i, t := range append(append([]Expression(nil), pos...), neg...) {
		c, rest, ok := splitCoefficient(t)
		if !ok {
			return nil, false
		}
		out = append(out, signedTerm{c: c, rest: rest, negative: i >= len(pos)})
	}
	return out, true
}

// squared matches f(u)^2 for a function of the given kind.
func squared(e Expression, kind TypeFunction) (Expression, bool) {
	b, ok := e.(*BinaryOperation)
	if !ok || b.op != POW {
		return nil, false
	}
	if n, ok := integerOf(b.right); !ok || n.Int64() != 2 {
		return nil, false
	}
	f, ok := isFunction(b.left, kind)
	if !ok {
		return nil, false
	}
	return f.arg, true
}

func sameCoefficient(a, b scalar) bool { return a.add(b.neg()).isZero() }

// relate applies one identity to the pair a, b and returns the term that
// replaces both.
func relate(a, b signedTerm) (signedTerm, bool) {
	if !sameCoefficient(a.c, b.c) {
		return signedTerm{}, false
	}
	same := a.negative == b.negative
	out := signedTerm{c: a.c, negative: a.negative}
	if a.rest == nil {
		if b.rest == nil {
			return signedTerm{}, false
		}
		// c - c*sin(u)^2 = c*cos(u)^2 and c - c*cos(u)^2 = c*sin(u)^2
		if !same {
			if u, ok := squared(b.rest, FuncSin); ok {
				out.rest = Pow(Cos(u), Num(2))
				return out, true
			}
			if u, ok := squared(b.rest, FuncCos); ok {
				out.rest = Pow(Sin(u), Num(2))
				return out, true
			}
		}
		// c + c*sinh(u)^2 = c*cosh(u)^2
		if u, ok := squared(b.rest, FuncSinh); ok && same {
			out.rest = Pow(NewFunction(FuncCosh, u), Num(2))
			return out, true
		}
		return signedTerm{}, false
	}
	// c*sin(u)^2 + c*cos(u)^2 = c
	if u, ok := squared(a.rest, FuncSin); ok && same {
		if v, ok := squared(b.rest, FuncCos); ok && Equivalent(u, v) {
			return out, true
		}
	}
	if u, ok := squared(a.rest, FuncCosh); ok && !same {
		// c*cosh(u)^2 - c*sinh(u)^2 = c
		if v, ok := squared(b.rest, FuncSinh); ok && Equivalent(u, v) {
			return out, true
		}
		// c*cosh(u)^2 - c = c*sinh(u)^2
		if b.rest == nil {
			out.rest = Pow(NewFunction(FuncSinh, u), Num(2))
			return out, true
		}
	}
	return signedTerm{}, false
}

var reciprocalFunctions = map[TypeFunction]TypeFunction{
	FuncSin:  FuncCosec,
	FuncCos:  FuncSec,
	FuncTan:  FuncCot,
	FuncSinh: FuncCosech,
	FuncCosh: FuncSech,
	FuncTanh: FuncCoth,
}

var quotientFunctions = map[[2]TypeFunction]TypeFunction{
	{FuncSin, FuncCos}:   FuncTan,
	{FuncCos, FuncSin}:   FuncCot,
	{FuncSinh, FuncCosh}: FuncTanh,
	{FuncCosh, FuncSinh}: FuncCoth,
}

func (s *simplifier) simplifyFunctionalRelations(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			pos, neg = redistributeSigns(pos, neg)
			terms, ok := toSignedTerms(pos, neg)
			if !ok {
				return nil, nil
			}
			for i := range terms {
				for j := range terms {
					if i == j {
						continue
					}
					r, ok := relate(terms[i], terms[j])
					if !ok {
						continue
					}
					var p, n []Expression
					for k, t := range terms {
						if k == i || k == j {
							continue
						}
						if t.negative {
							n = append(n, withCoefficient(t.c, t.rest))
						} else {
							p = append(p, withCoefficient(t.c, t.rest))
						}
					}
					if r.negative {
						n = append(n, withCoefficient(r.c, r.rest))
					} else {
						p = append(p, withCoefficient(r.c, r.rest))
					}
					return canonicalSum(p, n), nil
				}
			}
			return nil, nil
		},
		product: func(_ Expression, num, den []Expression) (Expression, error) {
			num = append([]Expression(nil), num...)
			den = append([]Expression(nil), den...)
			if relateFactors(&num, &den) {
				return buildQuotient(num, den), nil
			}
			return nil, nil
		},
	})
}

// relateFactors applies one identity between factors: sin/cos = tan,
// tan*cot = 1, exp(a)*exp(b) = exp(a+b), exp(a)/exp(b) = exp(a-b).
func relateFactors(num, den *[]Expression) bool {
	remove := func(list *[]Expression, i int) {
		*list = append((*list)[:i], (*list)[i+1:]...)
	}
	for i, f := range *num {
		fn, ok := f.(*Function)
		if !ok {
			continue
		}
		for j, g := range *den {
			gn, ok := g.(*Function)
			if !ok || !Equivalent(fn.arg, gn.arg) {
				continue
			}
			if kind, ok := quotientFunctions[[2]TypeFunction{fn.kind, gn.kind}]; ok {
				(*num)[i] = NewFunction(kind, fn.arg)
				remove(den, j)
				return true
			}
		}
		for j, g := range *num {
			gn, ok := g.(*Function)
			if j == i || !ok {
				continue
			}
			if fn.kind == FuncExp && gn.kind == FuncExp && j > i {
				(*num)[i] = Exp(Add(fn.arg, gn.arg))
				remove(num, j)
				return true
			}
			if r, ok := reciprocalFunctions[fn.kind]; ok && r == gn.kind && Equivalent(fn.arg, gn.arg) {
				(*num)[i] = one()
				remove(num, j)
				return true
			}
		}
		if fn.kind == FuncExp {
			for j, g := range *den {
				if gn, ok := isFunction(g, FuncExp); ok {
					(*num)[i] = Exp(Sub(fn.arg, gn.arg))
					remove(den, j)
					return true
				}
			}
		}
	}
	return false
}

// collectLogarithms merges ln(a)+ln(b)-ln(c) into ln(a*b/c), and likewise
// for lg.
func (s *simplifier) collectLogarithms(e Expression) (Expression, error) {
	return s.rewriteChains(e, chainRules{
		sum: func(_ Expression, pos, neg []Expression) (Expression, error) {
			pos, neg = redistributeSigns(pos, neg)
			changed := false
			for _, kind := range []TypeFunction{FuncLn, FuncLg} {
				var argsNum, argsDen, restPos, restNeg []Expression
				for _, t := range pos {
					if f, ok := isFunction(t, kind); ok {
						argsNum = append(argsNum, f.arg)
					} else {
						restPos = append(restPos, t)
					}
				}
				for _, t := range neg {
					if f, ok := isFunction(t, kind); ok {
						argsDen = append(argsDen, f.arg)
					} else {
						restNeg = append(restNeg, t)
					}
				}
				if len(argsNum)+len(argsDen) < 2 {
					continue
				}
				pos = append(restPos, NewFunction(kind, buildQuotient(argsNum, argsDen)))
				neg = restNeg
				changed = true
			}
			if !changed {
				return nil, nil
			}
			return canonicalSum(pos, neg), nil
		},
	})
}
