package symalg

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Operator: n-ary operators with heterogeneous parameters
// ============================================================

// TypeOperator names an operator. Its parameter list shape depends on the
// kind:
//
//	diff(f, x) | diff(f, x, n) | diff(f, x, y, ...)
//	div(f_1, ..., f_n, x_1, ..., x_n)
//	fac(n)            written n!
//	gcd(a, b, ...), lcm(a, b, ...), mod(a, m)
//	int(f, x) | int(f, x, a, b)
//	laplace(f, x, y, ...)
//	sum(f, k, a, b), prod(f, k, a, b)
//	taylor(f, x, x_0, n)
type TypeOperator int

const (
	OpDiff TypeOperator = iota
	OpDivergence
	OpFac
	OpGcd
	OpIntegral
	OpLaplace
	OpLcm
	OpMod
	OpProd
	OpSum
	OpTaylor
)

var operatorNames = map[TypeOperator]string{
	OpDiff:       "diff",
	OpDivergence: "div",
	OpFac:        "fac",
	OpGcd:        "gcd",
	OpIntegral:   "int",
	OpLaplace:    "laplace",
	OpLcm:        "lcm",
	OpMod:        "mod",
	OpProd:       "prod",
	OpSum:        "sum",
	OpTaylor:     "taylor",
}

func (t TypeOperator) String() string { return operatorNames[t] }

// LookupOperator resolves an operator name. fac is only reachable through
// the postfix !.
func LookupOperator(name string) (TypeOperator, bool) {
	for k, n := range operatorNames {
		if n == name && k != OpFac {
			return k, true
		}
	}
	return 0, false
}

const (
	// maxOperatorExpansion bounds the number of explicit terms produced when
	// a sum or product with integer bounds is written out.
	maxOperatorExpansion = 50
	maxFactorial         = 1000
	maxNumericIterations = 1000000
)

type Operator struct {
	params []interface{}
	kind   TypeOperator
}

// NewOperator validates the parameter shape of kind. Parameters are
// Expressions, variable names (string) or orders (int).
func NewOperator(kind TypeOperator, params ...interface{}) (*Operator, error) {
	o := &Operator{params: params, kind: kind}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Operator) Type() TypeOperator     { return o.kind }
func (o *Operator) Params() []interface{} { return append([]interface{}(nil), o.params...) }

func (o *Operator) expr(i int) Expression { return o.params[i].(Expression) }
func (o *Operator) name(i int) string     { return o.params[i].(string) }

func (o *Operator) validate() error {
	n := len(o.params)
	wantExpr := func(idx ...int) error {
		for _, i := range idx {
			if _, ok := o.params[i].(Expression); !ok {
				return malformed("%s: argument %d must be an expression", o.kind, i+1)
			}
		}
		return nil
	}
	wantName := func(idx ...int) error {
		for _, i := range idx {
			s, ok := o.params[i].(string)
			if !ok || s == PiName || !IsValidVariableName(s) {
				return malformed("%s: argument %d must be a variable name", o.kind, i+1)
			}
		}
		return nil
	}
	span := func(from, to int) []int {
		idx := make([]int, 0, to-from)
		for i := from; i < to; i++ {
			idx = append(idx, i)
		}
		return idx
	}
	switch o.kind {
	case OpDiff:
		if n < 2 {
			return malformed("diff expects at least 2 arguments")
		}
		if err := wantExpr(0); err != nil {
			return err
		}
		if n == 3 {
			if k, ok := o.params[2].(int); ok {
				if k < 0 {
					return malformed("diff: order must be non-negative")
				}
				return wantName(1)
			}
		}
		return wantName(span(1, n)...)
	case OpDivergence:
		if n < 2 || n%2 != 0 {
			return malformed("div expects n functions followed by n variables")
		}
		if err := wantExpr(span(0, n/2)...); err != nil {
			return err
		}
		return wantName(span(n/2, n)...)
	case OpFac:
		if n != 1 {
			return malformed("fac expects 1 argument")
		}
		return wantExpr(0)
	case OpGcd, OpLcm:
		if n < 2 {
			return malformed("%s expects at least 2 arguments", o.kind)
		}
		return wantExpr(span(0, n)...)
	case OpMod:
		if n != 2 {
			return malformed("mod expects 2 arguments")
		}
		return wantExpr(0, 1)
	case OpIntegral:
		if n != 2 && n != 4 {
			return malformed("int expects 2 or 4 arguments")
		}
		if err := wantName(1); err != nil {
			return err
		}
		if n == 4 {
			return wantExpr(0, 2, 3)
		}
		return wantExpr(0)
	case OpLaplace:
		if n < 2 {
			return malformed("laplace expects at least 2 arguments")
		}
		if err := wantExpr(0); err != nil {
			return err
		}
		return wantName(span(1, n)...)
	case OpProd, OpSum:
		if n != 4 {
			return malformed("%s expects 4 arguments", o.kind)
		}
		if err := wantName(1); err != nil {
			return err
		}
		return wantExpr(0, 2, 3)
	case OpTaylor:
		if n != 4 {
			return malformed("taylor expects 4 arguments")
		}
		if err := wantExpr(0, 2); err != nil {
			return err
		}
		if err := wantName(1); err != nil {
			return err
		}
		if k, ok := o.params[3].(int); !ok || k < 0 {
			return malformed("taylor: order must be a non-negative integer")
		}
		return nil
	}
	return malformed("unknown operator")
}

// boundVariable returns the index variable of sum, prod and int.
func (o *Operator) boundVariable() (string, bool) {
	switch o.kind {
	case OpSum, OpProd, OpIntegral:
		return o.name(1), true
	}
	return "", false
}

func (o *Operator) isDefiniteIntegral() bool { return o.kind == OpIntegral && len(o.params) == 4 }

// differentiationVars returns the names an operator differentiates by.
func (o *Operator) differentiationVars() []string {
	var names []string
	switch o.kind {
	case OpDiff, OpLaplace, OpDivergence, OpTaylor:
		for _, p := range o.params {
			if s, ok := p.(string); ok {
				names = append(names, s)
			}
		}
	}
	return names
}

func (o *Operator) String() string {
	if o.kind == OpFac {
		arg := o.expr(0)
		s := arg.String()
		if precedenceOf(arg) < atomPrecedence || isNegativeLiteral(arg) {
			s = "(" + s + ")"
		}
		return s + "!"
	}
	parts := make([]string, len(o.params))
	for i, p := range o.params {
		switch v := p.(type) {
		case Expression:
			parts[i] = v.String()
		case string:
			parts[i] = v
		case int:
			parts[i] = strconv.Itoa(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return o.kind.String() + "(" + strings.Join(parts, ",") + ")"
}

func (o *Operator) Equals(other Expression) bool {
	p, ok := other.(*Operator)
	if !ok || o.kind != p.kind || len(o.params) != len(p.params) {
		return false
	}
	for i := range o.params {
		if !paramEquals(o.params[i], p.params[i], func(a, b Expression) bool { return a.Equals(b) }) {
			return false
		}
	}
	return true
}

func paramEquals(a, b interface{}, eq func(a, b Expression) bool) bool {
	switch x := a.(type) {
	case Expression:
		y, ok := b.(Expression)
		return ok && eq(x, y)
	case string:
		y, ok := b.(string)
		return ok && x == y
	case int:
		y, ok := b.(int)
		return ok && x == y
	}
	return false
}

func (o *Operator) ContainedVars(vars map[string]struct{}) {
	local := map[string]struct{}{}
	for _, p := range o.params {
		if e, ok := p.(Expression); ok {
			e.ContainedVars(local)
		}
	}
	switch o.kind {
	case OpSum, OpProd:
		delete(local, o.name(1))
	case OpIntegral:
		if o.isDefiniteIntegral() {
			delete(local, o.name(1))
		} else {
			local[o.name(1)] = struct{}{}
		}
	case OpTaylor:
		local[o.name(1)] = struct{}{}
	}
	for name := range local {
		vars[name] = struct{}{}
	}
}

func (o *Operator) Substitute(name string, value Expression) Expression {
	return o.replaceVars(map[string]Expression{name: value})
}

func (o *Operator) replaceVars(values map[string]Expression) Expression {
	for _, name := range o.differentiationVars() {
		if _, hit := values[name]; hit {
			if expanded, ok, err := o.expand(context.Background(), false); ok && err == nil {
				return expanded.replaceVars(values)
			}
			break
		}
	}
	filtered := values
	target := o
	if bound, ok := o.boundVariable(); ok && (o.kind != OpIntegral || o.isDefiniteIntegral()) {
		filtered = make(map[string]Expression, len(values))
		captured := false
		for name, v := range values {
			if name == bound {
				continue
			}
			filtered[name] = v
			captured = captured || Contains(v, bound)
		}
		if captured {
			avoid := make([]Expression, 0, len(filtered))
			for _, v := range filtered {
				avoid = append(avoid, v)
			}
			target = o.renameBound(freshBoundName(o, avoid...))
		}
	} else if bound, ok := o.boundVariable(); ok {
		// Indefinite integral: the variable stays the integration variable.
		filtered = make(map[string]Expression, len(values))
		for name, v := range values {
			if name != bound {
				filtered[name] = v
			}
		}
	}
	params := make([]interface{}, len(target.params))
	changed := target != o
	for i, p := range target.params {
		if e, ok := p.(Expression); ok {
			r := e.replaceVars(filtered)
			changed = changed || r != e
			params[i] = r
			continue
		}
		params[i] = p
	}
	if !changed {
		return o
	}
	return &Operator{params: params, kind: o.kind}
}

// renameBound returns a copy of a sum, prod or definite integral whose index
// variable is called fresh.
func (o *Operator) renameBound(fresh string) *Operator {
	bound := o.name(1)
	params := append([]interface{}(nil), o.params...)
	params[0] = o.expr(0).Substitute(bound, Var(fresh))
	params[1] = fresh
	return &Operator{params: params, kind: o.kind}
}

// freshBoundName probes k, k_0, k_1, ... for a name used nowhere in o or in
// avoid.
func freshBoundName(o *Operator, avoid ...Expression) string {
	used := map[string]struct{}{}
	for _, p := range o.params {
		switch v := p.(type) {
		case Expression:
			collectAllNames(v, used)
		case string:
			used[v] = struct{}{}
		}
	}
	for _, e := range avoid {
		collectAllNames(e, used)
	}
	return freshName(used)
}

func freshName(used map[string]struct{}) string {
	if _, taken := used["k"]; !taken {
		return "k"
	}
	for i := 0; ; i++ {
		name := "k_" + strconv.Itoa(i)
		if _, taken := used[name]; !taken {
			return name
		}
	}
}

// collectAllNames gathers free and bound variable names.
func collectAllNames(e Expression, names map[string]struct{}) {
	e.ContainedVars(names)
	walk(e, func(n Expression) {
		if o, ok := n.(*Operator); ok {
			for _, p := range o.params {
				if s, ok := p.(string); ok {
					names[s] = struct{}{}
				}
			}
		}
	})
}

func (o *Operator) exprType() string { return "operator" }
func (o *Operator) toJSON() map[string]interface{} {
	params := make([]interface{}, len(o.params))
	for i, p := range o.params {
		if e, ok := p.(Expression); ok {
			params[i] = e.toJSON()
		} else {
			params[i] = p
		}
	}
	return map[string]interface{}{"type": "operator", "name": o.kind.String(), "params": params}
}

// ============================================================
// Evaluation
// ============================================================

func (o *Operator) Evaluate() (float64, error) {
	switch o.kind {
	case OpFac:
		n, err := o.expr(0).Evaluate()
		if err != nil {
			return 0, err
		}
		return finite(math.Gamma(n+1), o)
	case OpGcd, OpLcm, OpMod:
		args := make([]*big.Int, 0, len(o.params))
		for i := range o.params {
			v, err := o.expr(i).Evaluate()
			if err != nil {
				return 0, err
			}
			if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
				return 0, undefinedValue("%s expects integer arguments", o.kind)
			}
			args = append(args, big.NewInt(int64(v)))
		}
		r, ok := integerOperation(o.kind, args)
		if !ok {
			return 0, undefinedValue("%s is undefined", o)
		}
		f, _ := new(big.Float).SetInt(r).Float64()
		return finite(f, o)
	case OpSum, OpProd:
		return o.evaluateSeries()
	case OpIntegral:
		if !o.isDefiniteIntegral() {
			return 0, undefinedValue("indefinite integral %s has no value", o)
		}
		a, err := o.expr(2).Evaluate()
		if err != nil {
			return 0, err
		}
		b, err := o.expr(3).Evaluate()
		if err != nil {
			return 0, err
		}
		return simpson(o.integrand(), a, b, simpsonIntervals)
	}
	expanded, ok, err := o.expand(context.Background(), false)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, undefinedValue("%s cannot be evaluated", o)
	}
	return expanded.Evaluate()
}

func finite(v float64, e Expression) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, undefinedValue("%s is undefined", e)
	}
	return v, nil
}

// integrand evaluates the body of a sum, prod or int at a value of its index.
func (o *Operator) integrand() func(float64) (float64, error) {
	body, bound := o.expr(0), o.name(1)
	return func(t float64) (float64, error) {
		return body.Substitute(bound, NewApproximateConstant(t)).Evaluate()
	}
}

func (o *Operator) evaluateSeries() (float64, error) {
	lo, err := o.expr(2).Evaluate()
	if err != nil {
		return 0, err
	}
	hi, err := o.expr(3).Evaluate()
	if err != nil {
		return 0, err
	}
	if lo != math.Trunc(lo) || hi != math.Trunc(hi) {
		return 0, undefinedValue("%s needs integer bounds", o)
	}
	if hi-lo > maxNumericIterations {
		return 0, undefinedValue("%s has too many terms", o)
	}
	f := o.integrand()
	acc := 0.0
	if o.kind == OpProd {
		acc = 1
	}
	for k := lo; k <= hi; k++ {
		v, err := f(k)
		if err != nil {
			return 0, err
		}
		if o.kind == OpProd {
			acc *= v
		} else {
			acc += v
		}
	}
	return finite(acc, o)
}

func integerOperation(kind TypeOperator, args []*big.Int) (*big.Int, bool) {
	switch kind {
	case OpGcd:
		acc := new(big.Int).Abs(args[0])
		for _, a := range args[1:] {
			acc.GCD(nil, nil, acc, new(big.Int).Abs(a))
		}
		return acc, true
	case OpLcm:
		acc := new(big.Int).Abs(args[0])
		for _, a := range args[1:] {
			b := new(big.Int).Abs(a)
			if acc.Sign() == 0 || b.Sign() == 0 {
				return new(big.Int), true
			}
			g := new(big.Int).GCD(nil, nil, acc, b)
			acc.Mul(acc, new(big.Int).Quo(b, g))
		}
		return acc, true
	case OpMod:
		m := new(big.Int).Abs(args[1])
		if m.Sign() == 0 {
			return nil, false
		}
		return new(big.Int).Mod(args[0], m), true
	}
	return nil, false
}

// ============================================================
// Expansion into ordinary expressions
// ============================================================

// expand resolves the operator into an ordinary expression when its
// arguments allow it. ok is false when the operator must stay unevaluated.
func (o *Operator) expand(ctx context.Context, approximate bool) (Expression, bool, error) {
	switch o.kind {
	case OpDiff:
		f := o.expr(0)
		steps := o.differentiationVars()
		if len(o.params) == 3 {
			if k, isOrder := o.params[2].(int); isOrder {
				steps = make([]string, k)
				for i := range steps {
					steps[i] = o.name(1)
				}
			}
		}
		for _, v := range steps {
			d, err := Diff(f, v)
			if err != nil {
				return nil, false, err
			}
			if f, err = Simplify(ctx, d); err != nil {
				return nil, false, err
			}
		}
		return f, true, nil
	case OpDivergence:
		n := len(o.params) / 2
		terms := make([]Expression, 0, n)
		for i := 0; i < n; i++ {
			d, err := Diff(o.expr(i), o.name(n+i))
			if err != nil {
				return nil, false, err
			}
			terms = append(terms, d)
		}
		return buildSum(terms), true, nil
	case OpLaplace:
		terms := make([]Expression, 0, len(o.params)-1)
		for _, v := range o.differentiationVars() {
			d, err := Diff(o.expr(0), v)
			if err != nil {
				return nil, false, err
			}
			if d, err = Diff(d, v); err != nil {
				return nil, false, err
			}
			terms = append(terms, d)
		}
		return buildSum(terms), true, nil
	case OpTaylor:
		r, err := o.taylorPolynomial(ctx)
		return r, err == nil, err
	case OpFac:
		if n, ok := integerOf(o.expr(0)); ok && n.Sign() >= 0 && n.Cmp(big.NewInt(maxFactorial)) <= 0 {
			return NewRationalConstant(new(big.Rat).SetInt(new(big.Int).MulRange(1, n.Int64()))), true, nil
		}
		if c, ok := o.expr(0).(*Constant); ok && (approximate || !c.precise) {
			v, err := o.Evaluate()
			if err != nil {
				return nil, false, nil
			}
			return NewApproximateConstant(v), true, nil
		}
	case OpGcd, OpLcm, OpMod:
		args := make([]*big.Int, len(o.params))
		for i := range o.params {
			n, ok := integerOf(o.expr(i))
			if !ok {
				return nil, false, nil
			}
			args[i] = n
		}
		if r, ok := integerOperation(o.kind, args); ok {
			return NewRationalConstant(new(big.Rat).SetInt(r)), true, nil
		}
	case OpSum, OpProd:
		if r := o.expandSeries(); r != nil {
			return r, true, nil
		}
	case OpIntegral:
		if o.isDefiniteIntegral() && approximate && IsConstant(o) {
			v, err := o.Evaluate()
			if err != nil {
				return nil, false, nil
			}
			return NewApproximateConstant(v), true, nil
		}
	}
	return nil, false, nil
}

// expandSeries writes out a sum or product with small integer bounds, or
// resolves one whose body does not depend on the index.
func (o *Operator) expandSeries() Expression {
	body, bound, lo, hi := o.expr(0), o.name(1), o.expr(2), o.expr(3)
	a, okA := integerOf(lo)
	b, okB := integerOf(hi)
	if okA && okB {
		if b.Cmp(a) < 0 {
			if o.kind == OpSum {
				return zero()
			}
			return one()
		}
		count := new(big.Int).Sub(b, a)
		if count.Cmp(big.NewInt(maxOperatorExpansion)) < 0 {
			items := make([]Expression, 0, count.Int64()+1)
			for k := new(big.Int).Set(a); k.Cmp(b) <= 0; k.Add(k, big.NewInt(1)) {
				items = append(items, body.Substitute(bound, NewRationalConstant(new(big.Rat).SetInt(k))))
			}
			if o.kind == OpSum {
				return buildSum(items)
			}
			return buildProduct(items)
		}
	}
	if !Contains(body, bound) {
		count := Add(Sub(hi, lo), one())
		if o.kind == OpSum {
			return Mult(count, body)
		}
		return Pow(body, count)
	}
	return nil
}

// taylorPolynomial computes sum_{k=0}^{n} f^(k)(x_0)/k! * (x-x_0)^k.
func (o *Operator) taylorPolynomial(ctx context.Context) (Expression, error) {
	f, x, x0, order := o.expr(0), o.name(1), o.expr(2), o.params[3].(int)
	terms := make([]Expression, 0, order+1)
	derivative := f
	factorial := big.NewInt(1)
	for k := 0; k <= order; k++ {
		if k > 0 {
			factorial.Mul(factorial, big.NewInt(int64(k)))
			d, err := Diff(derivative, x)
			if err != nil {
				return nil, err
			}
			if derivative, err = Simplify(ctx, d); err != nil {
				return nil, err
			}
		}
		coefficient := Div(derivative.Substitute(x, x0), NewRationalConstant(new(big.Rat).SetInt(factorial)))
		terms = append(terms, Mult(coefficient, Pow(Sub(Var(x), x0), Num(int64(k)))))
	}
	return buildSum(terms), nil
}
