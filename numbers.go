package symalg

import (
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// Exact rational helpers
// ============================================================

// ratFromFloat converts f through its shortest decimal rendering so that 0.1
// becomes 1/10 rather than the nearest binary fraction.
func ratFromFloat(f float64) *big.Rat {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return new(big.Rat)
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return new(big.Rat).SetFloat64(f)
	}
	return r
}

// terminatingDigits returns the number of fractional digits of r when its
// decimal expansion terminates.
func terminatingDigits(r *big.Rat) (int, bool) {
	d := new(big.Int).Set(r.Denom())
	two, five := big.NewInt(2), big.NewInt(5)
	m := new(big.Int)
	twos, fives := 0, 0
	for m.Mod(d, two).Sign() == 0 {
		d.Quo(d, two)
		twos++
	}
	for m.Mod(d, five).Sign() == 0 {
		d.Quo(d, five)
		fives++
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return 0, false
	}
	if twos > fives {
		return twos, true
	}
	return fives, true
}

func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if digits, ok := terminatingDigits(r); ok {
		return r.FloatString(digits)
	}
	return "(" + r.Num().String() + "/" + r.Denom().String() + ")"
}

// rationalOf returns the exact value of a precise constant or of a quotient
// of two precise constants.
func rationalOf(e Expression) (*big.Rat, bool) {
	switch v := e.(type) {
	case *Constant:
		if v.precise {
			return v.Exact(), true
		}
	case *BinaryOperation:
		if v.op != DIV {
			return nil, false
		}
		n, ok1 := v.left.(*Constant)
		d, ok2 := v.right.(*Constant)
		if ok1 && ok2 && n.precise && d.precise && d.exact.Sign() != 0 {
			return new(big.Rat).Quo(n.exact, d.exact), true
		}
	}
	return nil, false
}

// rationalExpr writes r in canonical form: an integer constant, or a quotient
// of integer constants with positive denominator.
func rationalExpr(r *big.Rat) Expression {
	if r.IsInt() {
		return NewRationalConstant(r)
	}
	return Div(NewRationalConstant(new(big.Rat).SetInt(r.Num())), NewRationalConstant(new(big.Rat).SetInt(r.Denom())))
}

// integerOf returns the value of a precise integer constant.
func integerOf(e Expression) (*big.Int, bool) {
	r, ok := rationalOf(e)
	if !ok || !r.IsInt() {
		return nil, false
	}
	return new(big.Int).Set(r.Num()), true
}

// smallIntegerOf is integerOf restricted to values that fit an int.
func smallIntegerOf(e Expression) (int, bool) {
	n, ok := integerOf(e)
	if !ok || !n.IsInt64() {
		return 0, false
	}
	v := n.Int64()
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

// intRoot returns the exact q-th root of a non-negative n.
func intRoot(n *big.Int, q int) (*big.Int, bool) {
	if n.Sign() < 0 || q < 1 {
		return nil, false
	}
	if q == 1 || n.Sign() == 0 {
		return new(big.Int).Set(n), true
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		cand := big.NewInt(c)
		if new(big.Int).Exp(cand, big.NewInt(int64(q)), nil).Cmp(n) == 0 {
			return cand, true
		}
	}
	return nil, false
}

// ratPow raises r to a (possibly negative) integer power.
func ratPow(r *big.Rat, n int) (*big.Rat, bool) {
	if n < 0 {
		if r.Sign() == 0 {
			return nil, false
		}
		r = new(big.Rat).Inv(r)
		n = -n
	}
	num := new(big.Int).Exp(r.Num(), big.NewInt(int64(n)), nil)
	den := new(big.Int).Exp(r.Denom(), big.NewInt(int64(n)), nil)
	return new(big.Rat).SetFrac(num, den), true
}

// ============================================================
// scalar: coefficient that is exact until it meets an approximation
// ============================================================

type scalar struct {
	exact *big.Rat
	value float64
}

func exactScalar(r *big.Rat) scalar {
	f, _ := r.Float64()
	return scalar{exact: r, value: f}
}

func approxScalar(f float64) scalar { return scalar{value: f} }

func scalarOne() scalar { return exactScalar(big.NewRat(1, 1)) }

// scalarOf reads a numeric leaf: a precise rational or an approximate
// constant (or a quotient involving one).
func scalarOf(e Expression) (scalar, bool) {
	if r, ok := rationalOf(e); ok {
		return exactScalar(r), true
	}
	switch v := e.(type) {
	case *Constant:
		return approxScalar(v.value), true
	case *BinaryOperation:
		if v.op != DIV {
			return scalar{}, false
		}
		n, ok1 := v.left.(*Constant)
		d, ok2 := v.right.(*Constant)
		if ok1 && ok2 && d.value != 0 {
			return approxScalar(n.value / d.value), true
		}
	}
	return scalar{}, false
}

func (s scalar) isExact() bool { return s.exact != nil }

func (s scalar) add(o scalar) scalar {
	if s.isExact() && o.isExact() {
		return exactScalar(new(big.Rat).Add(s.exact, o.exact))
	}
	return approxScalar(s.value + o.value)
}

func (s scalar) mul(o scalar) scalar {
	if s.isExact() && o.isExact() {
		return exactScalar(new(big.Rat).Mul(s.exact, o.exact))
	}
	return approxScalar(s.value * o.value)
}

func (s scalar) quo(o scalar) (scalar, bool) {
	if o.isZero() {
		return scalar{}, false
	}
	if s.isExact() && o.isExact() {
		return exactScalar(new(big.Rat).Quo(s.exact, o.exact)), true
	}
	return approxScalar(s.value / o.value), true
}

func (s scalar) neg() scalar {
	if s.isExact() {
		return exactScalar(new(big.Rat).Neg(s.exact))
	}
	return approxScalar(-s.value)
}

func (s scalar) sign() int {
	if s.isExact() {
		return s.exact.Sign()
	}
	switch {
	case s.value > 0:
		return 1
	case s.value < 0:
		return -1
	}
	return 0
}

func (s scalar) isZero() bool { return s.sign() == 0 }

func (s scalar) isOne() bool {
	if s.isExact() {
		return s.exact.Cmp(big.NewRat(1, 1)) == 0
	}
	return s.value == 1
}

func (s scalar) abs() scalar {
	if s.sign() < 0 {
		return s.neg()
	}
	return s
}

func (s scalar) expr() Expression {
	if s.isExact() {
		return rationalExpr(s.exact)
	}
	return NewApproximateConstant(s.value)
}
