package symalg

import (
	"math"
	"math/big"
)

// ============================================================
// Trivial rewrites: constant folding and identities
// ============================================================

const (
	// maxExactPower bounds integer powers folded exactly.
	maxExactPower = 1000
	// maxExactBits bounds the size of an exactly folded power.
	maxExactBits = 4096
)

func (s *simplifier) trivial(e Expression) (Expression, error) {
	return s.rewrite(e, s.trivialNode)
}

func (s *simplifier) trivialNode(e Expression) (Expression, error) {
	switch v := e.(type) {
	case *BinaryOperation:
		return s.trivialBinary(v), nil
	case *Function:
		return s.trivialFunction(v), nil
	case *Operator:
		expanded, ok, err := v.expand(s.ctx, s.approximate)
		if err != nil {
			if KindOf(err) == KindNotDifferentiable || KindOf(err) == KindUndefinedValue {
				return v, nil
			}
			return nil, err
		}
		if ok {
			return expanded, nil
		}
	}
	return e, nil
}

func isPreciseZero(e Expression) bool {
	c, ok := e.(*Constant)
	return ok && c.exact.Sign() == 0
}

func (s *simplifier) trivialBinary(b *BinaryOperation) Expression {
	l, r := b.left, b.right
	if folded, ok := foldScalars(b); ok {
		return folded
	}
	switch b.op {
	case PLUS:
		if isPreciseZero(l) {
			return r
		}
		if isPreciseZero(r) {
			return l
		}
	case MINUS:
		if isPreciseZero(r) {
			return l
		}
		if isPreciseZero(l) {
			return negate(r)
		}
		if Equivalent(l, r) {
			return zero()
		}
	case TIMES:
		if isPreciseZero(l) || isPreciseZero(r) {
			return zero()
		}
		if isOne(l) {
			return r
		}
		if isOne(r) {
			return l
		}
		// c1*(c2*x) = (c1*c2)*x
		if c1, ok := scalarOf(l); ok {
			if inner, ok := r.(*BinaryOperation); ok && inner.op == TIMES {
				if c2, ok := scalarOf(inner.left); ok {
					return Mult(c1.mul(c2).expr(), inner.right)
				}
			}
		}
	case DIV:
		if isPreciseZero(r) {
			return b
		}
		if isPreciseZero(l) {
			return zero()
		}
		if isOne(r) {
			return l
		}
		if Equivalent(l, r) {
			return one()
		}
		if !hasPositiveSign(r) {
			return Div(negate(l), negate(r))
		}
		// (a/b)/c = a/(b*c) and a/(b/c) = (a*c)/b
		if inner, ok := l.(*BinaryOperation); ok && inner.op == DIV {
			return Div(inner.left, Mult(inner.right, r))
		}
		if inner, ok := r.(*BinaryOperation); ok && inner.op == DIV {
			return Div(Mult(l, inner.right), inner.left)
		}
	case POW:
		return s.trivialPower(b)
	}
	return b
}

// foldScalars evaluates an operation between two numeric leaves. Exact
// operands fold exactly; approximate ones fold to a finite float or not at
// all.
func foldScalars(b *BinaryOperation) (Expression, bool) {
	x, ok1 := scalarOf(b.left)
	y, ok2 := scalarOf(b.right)
	if !ok1 || !ok2 || b.op == POW {
		return nil, false
	}
	// A rational written p/q is already folded.
	_, leftConst := b.left.(*Constant)
	_, rightConst := b.right.(*Constant)
	if b.op == DIV && x.isExact() && y.isExact() && leftConst && rightConst {
		r, ok := rationalOf(b)
		if !ok {
			return nil, false
		}
		canon := rationalExpr(r)
		if canon.Equals(b) {
			return nil, false
		}
		return canon, true
	}
	var out scalar
	switch b.op {
	case PLUS:
		out = x.add(y)
	case MINUS:
		out = x.add(y.neg())
	case TIMES:
		out = x.mul(y)
	case DIV:
		q, ok := x.quo(y)
		if !ok {
			return nil, false
		}
		out = q
	}
	if !out.isExact() && (math.IsNaN(out.value) || math.IsInf(out.value, 0)) {
		return nil, false
	}
	return out.expr(), true
}

func (s *simplifier) trivialPower(b *BinaryOperation) Expression {
	base, exp := b.left, b.right
	switch {
	case isPreciseZero(exp):
		return one()
	case isOne(exp):
		return base
	case isOne(base):
		return one()
	}
	if isPreciseZero(base) {
		if c, ok := scalarOf(exp); ok && c.sign() > 0 {
			return zero()
		}
		return b
	}
	if r, ok := rationalOf(base); ok {
		if q, ok := rationalOf(exp); ok {
			if folded, ok := exactPower(r, q); ok {
				return folded
			}
		}
	}
	if x, ok := scalarOf(base); ok {
		if y, ok := scalarOf(exp); ok && (!x.isExact() || !y.isExact()) {
			v := powValue(x.value, y.value, exp)
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return NewApproximateConstant(v)
			}
			return b
		}
	}
	// (a^b)^n = a^(b*n) for integer n
	if inner, ok := base.(*BinaryOperation); ok && inner.op == POW {
		if _, ok := integerOf(exp); ok {
			return Pow(inner.left, Mult(inner.right, exp))
		}
	}
	// a^(-c) = 1/a^c
	if isNumeric(exp) && !hasPositiveSign(exp) {
		return Div(one(), Pow(base, negate(exp)))
	}
	return b
}

// exactPower folds r^q when the result is rational: integer powers of
// bounded size and roots that come out exactly.
func exactPower(r, q *big.Rat) (Expression, bool) {
	if !q.Num().IsInt64() || !q.Denom().IsInt64() {
		return nil, false
	}
	p, d := q.Num().Int64(), q.Denom().Int64()
	if p > maxExactPower || p < -maxExactPower || d > maxExactPower {
		return nil, false
	}
	if int64(r.Num().BitLen()+r.Denom().BitLen())*abs64(p) > maxExactBits {
		return nil, false
	}
	if p < 0 && r.Sign() == 0 {
		return nil, false
	}
	if d == 1 {
		v, ok := ratPow(r, int(p))
		if !ok {
			return nil, false
		}
		return rationalExpr(v), true
	}
	negative := r.Sign() < 0
	if negative && d%2 == 0 {
		return nil, false
	}
	abs := new(big.Rat).Abs(r)
	num, ok1 := intRoot(abs.Num(), int(d))
	den, ok2 := intRoot(abs.Denom(), int(d))
	if !ok1 || !ok2 {
		return nil, false
	}
	root := new(big.Rat).SetFrac(num, den)
	if negative {
		root.Neg(root)
	}
	v, ok := ratPow(root, int(p))
	if !ok {
		return nil, false
	}
	return rationalExpr(v), true
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// ============================================================
// Special values of functions
// ============================================================

func (s *simplifier) trivialFunction(f *Function) Expression {
	u := f.arg
	if c, ok := u.(*Constant); ok && !c.precise {
		if v, err := f.Evaluate(); err == nil {
			return NewApproximateConstant(v)
		}
		return f
	}
	switch f.kind {
	case FuncAbs:
		if inner, ok := isFunction(u, FuncAbs); ok {
			return inner
		}
		if !hasPositiveSign(u) {
			return Abs(negate(u))
		}
		if sign, ok := constantSign(u); ok {
			if sign >= 0 {
				return u
			}
			return negate(u)
		}
	case FuncSgn:
		if sign, ok := constantSign(u); ok {
			return Num(int64(sign))
		}
	case FuncExp:
		if isPreciseZero(u) {
			return one()
		}
		if inner, ok := isFunction(u, FuncLn); ok {
			return inner.arg
		}
	case FuncLn:
		if isOne(u) {
			return zero()
		}
		if inner, ok := isFunction(u, FuncExp); ok {
			return inner.arg
		}
	case FuncLg:
		if isOne(u) {
			return zero()
		}
		if n, ok := integerOf(u); ok && n.Sign() > 0 {
			if k, ok := powerOfTen(n); ok {
				return Num(int64(k))
			}
		}
	case FuncSin, FuncTan, FuncSinh, FuncTanh, FuncArcsin, FuncArctan, FuncArsinh, FuncArtanh:
		if isPreciseZero(u) {
			return zero()
		}
		if (f.kind == FuncSin || f.kind == FuncTan) && isPi(u) {
			return zero()
		}
	case FuncCos, FuncCosh, FuncSec, FuncSech:
		if isPreciseZero(u) {
			return one()
		}
		if f.kind == FuncCos && isPi(u) {
			return Num(-1)
		}
	case FuncArccos, FuncArcosh:
		if isOne(u) {
			return zero()
		}
	}
	return f
}

func isPi(e Expression) bool {
	v, ok := e.(*Variable)
	return ok && v.name == PiName
}

// constantSign determines the sign of a variable-free expression by
// evaluating it. An expression that cannot be evaluated has no known sign.
func constantSign(e Expression) (int, bool) {
	if r, ok := rationalOf(e); ok {
		return r.Sign(), true
	}
	if !IsConstant(e) {
		return 0, false
	}
	v, err := e.Evaluate()
	if err != nil || v == 0 {
		return 0, false
	}
	if v > 0 {
		return 1, true
	}
	return -1, true
}

func powerOfTen(n *big.Int) (int, bool) {
	ten := big.NewInt(10)
	m := new(big.Int).Set(n)
	k := 0
	rem := new(big.Int)
	for m.Cmp(big.NewInt(1)) > 0 {
		m.QuoRem(m, ten, rem)
		if rem.Sign() != 0 {
			return 0, false
		}
		k++
	}
	return k, true
}
