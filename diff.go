package symalg

import (
	"context"
)

// ============================================================
// Differentiation
// ============================================================

// Diff returns the derivative of e with respect to the variable name. The
// result is not simplified.
func Diff(e Expression, name string) (Expression, error) {
	return differentiator{variable: name}.diff(e, 0)
}

// DiffDifferentialEquation differentiates e with respect to name treating
// every other variable y as a function of name, so y becomes y'.
func DiffDifferentialEquation(e Expression, name string) (Expression, error) {
	return differentiator{variable: name, implicit: true}.diff(e, 0)
}

type differentiator struct {
	variable string
	implicit bool
	// bound holds the bound variables of the enclosing sum, prod and int
	// operators. They are never functions of the variable.
	bound map[string]struct{}
}

// within returns d for the body of an operator binding name.
func (d differentiator) within(name string) differentiator {
	bound := make(map[string]struct{}, len(d.bound)+1)
	for n := range d.bound {
		bound[n] = struct{}{}
	}
	bound[name] = struct{}{}
	d.bound = bound
	return d
}

// dependsOn reports whether e varies with the differentiation variable.
func (d differentiator) dependsOn(e Expression) bool {
	if !d.implicit {
		return Contains(e, d.variable)
	}
	for name := range FreeVars(e) {
		if _, ok := d.bound[name]; !ok {
			return true
		}
	}
	return false
}

func (d differentiator) diff(e Expression, depth int) (Expression, error) {
	if depth > DefaultMaxDepth {
		return nil, &Error{Kind: KindStackExhausted, Msg: "expression too deep to differentiate"}
	}
	if c, ok := e.(*Constant); ok && !c.precise {
		return NewApproximateConstant(0), nil
	}
	if !d.dependsOn(e) {
		return zero(), nil
	}
	switch x := e.(type) {
	case *Variable:
		if x.name == d.variable {
			return one(), nil
		}
		return Var(x.name + "'"), nil
	case *BinaryOperation:
		return d.binary(x, depth+1)
	case *Function:
		return d.function(x, depth+1)
	case *Operator:
		return d.operator(x, depth+1)
	case *SelfDefinedFunction:
		body, err := x.expand()
		if err != nil {
			return nil, err
		}
		return d.diff(body, depth+1)
	}
	return zero(), nil
}

func (d differentiator) binary(b *BinaryOperation, depth int) (Expression, error) {
	f, g := b.left, b.right
	df, err := d.diff(f, depth)
	if err != nil {
		return nil, err
	}
	dg, err := d.diff(g, depth)
	if err != nil {
		return nil, err
	}
	switch b.op {
	case PLUS:
		return Add(df, dg), nil
	case MINUS:
		return Sub(df, dg), nil
	case TIMES:
		return Add(Mult(df, g), Mult(f, dg)), nil
	case DIV:
		return Div(Sub(Mult(df, g), Mult(f, dg)), Pow(g, Num(2))), nil
	}
	switch {
	case !d.dependsOn(g):
		return Mult(g, Mult(Pow(f, Sub(g, one())), df)), nil
	case !d.dependsOn(f):
		if IsConstant(f) {
			v, err := f.Evaluate()
			if err != nil || v <= 0 {
				return nil, notDifferentiable("%s: base %s is not positive", b, f)
			}
		}
		return Mult(Ln(f), Mult(b, dg)), nil
	}
	return Mult(b, Add(Div(Mult(g, df), f), Mult(Ln(f), dg))), nil
}

func (d differentiator) function(fn *Function, depth int) (Expression, error) {
	u := fn.arg
	du, err := d.diff(u, depth)
	if err != nil {
		return nil, err
	}
	neg := func(e Expression) Expression { return Mult(Num(-1), e) }
	sq := func(e Expression) Expression { return Pow(e, Num(2)) }
	switch fn.kind {
	case FuncAbs:
		return Mult(NewFunction(FuncSgn, u), du), nil
	case FuncSgn:
		return zero(), nil
	case FuncExp:
		return Mult(fn, du), nil
	case FuncLn:
		return Div(du, u), nil
	case FuncLg:
		return Div(du, Mult(Ln(Num(10)), u)), nil
	case FuncSin:
		return Mult(Cos(u), du), nil
	case FuncCos:
		return neg(Mult(Sin(u), du)), nil
	case FuncTan:
		return Div(du, sq(Cos(u))), nil
	case FuncCot:
		return neg(Div(du, sq(Sin(u)))), nil
	case FuncSec:
		return Mult(fn, Mult(Tan(u), du)), nil
	case FuncCosec:
		return neg(Mult(fn, Mult(NewFunction(FuncCot, u), du))), nil
	case FuncSinh:
		return Mult(NewFunction(FuncCosh, u), du), nil
	case FuncCosh:
		return Mult(NewFunction(FuncSinh, u), du), nil
	case FuncTanh:
		return Div(du, sq(NewFunction(FuncCosh, u))), nil
	case FuncCoth:
		return neg(Div(du, sq(NewFunction(FuncSinh, u)))), nil
	case FuncSech:
		return neg(Mult(fn, Mult(NewFunction(FuncTanh, u), du))), nil
	case FuncCosech:
		return neg(Mult(fn, Mult(NewFunction(FuncCoth, u), du))), nil
	case FuncArcsin:
		return Div(du, Sqrt(Sub(one(), sq(u)))), nil
	case FuncArccos:
		return neg(Div(du, Sqrt(Sub(one(), sq(u))))), nil
	case FuncArctan:
		return Div(du, Add(one(), sq(u))), nil
	case FuncArccot:
		return neg(Div(du, Add(one(), sq(u)))), nil
	case FuncArsinh:
		return Div(du, Sqrt(Add(sq(u), one()))), nil
	case FuncArcosh:
		return Div(du, Sqrt(Sub(sq(u), one()))), nil
	case FuncArtanh:
		return Div(du, Sub(one(), sq(u))), nil
	}
	return nil, notDifferentiable("no derivative rule for %s", fn.kind)
}

func (d differentiator) operator(o *Operator, depth int) (Expression, error) {
	switch o.kind {
	case OpIntegral:
		return d.integral(o, depth)
	case OpSum, OpProd:
		body, bound, lo, hi := o.expr(0), o.name(1), o.expr(2), o.expr(3)
		if bound == d.variable {
			return zero(), nil
		}
		if d.dependsOn(lo) || d.dependsOn(hi) {
			return nil, notDifferentiable("%s: bounds depend on %s", o, d.variable)
		}
		dbody, err := d.within(bound).diff(body, depth)
		if err != nil {
			return nil, err
		}
		if o.kind == OpSum {
			return &Operator{params: []interface{}{dbody, bound, lo, hi}, kind: OpSum}, nil
		}
		// d/dx prod f_k = sum_j f_j' * prod f_k / f_j
		fresh := freshBoundName(o, Var(d.variable))
		j := Var(fresh)
		term := Div(Mult(dbody.Substitute(bound, j), o), body.Substitute(bound, j))
		return &Operator{params: []interface{}{term, fresh, lo, hi}, kind: OpSum}, nil
	case OpFac, OpGcd, OpLcm, OpMod:
		return nil, notDifferentiable("%s depends on %s", o, d.variable)
	}
	expanded, ok, err := o.expand(context.Background(), false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notDifferentiable("%s cannot be differentiated", o)
	}
	return d.diff(expanded, depth)
}

// integral differentiates under the integral sign and adds the boundary
// terms of the Leibniz rule for definite integrals.
func (d differentiator) integral(o *Operator, depth int) (Expression, error) {
	body, bound := o.expr(0), o.name(1)
	if !o.isDefiniteIntegral() {
		if bound == d.variable {
			return body, nil
		}
		dbody, err := d.within(bound).diff(body, depth)
		if err != nil {
			return nil, err
		}
		return &Operator{params: []interface{}{dbody, bound}, kind: OpIntegral}, nil
	}
	lo, hi := o.expr(2), o.expr(3)
	dlo, err := d.diff(lo, depth)
	if err != nil {
		return nil, err
	}
	dhi, err := d.diff(hi, depth)
	if err != nil {
		return nil, err
	}
	boundary := Sub(Mult(body.Substitute(bound, hi), dhi), Mult(body.Substitute(bound, lo), dlo))
	inner := d.within(bound)
	if bound == d.variable || !inner.dependsOn(body) {
		return boundary, nil
	}
	dbody, err := inner.diff(body, depth)
	if err != nil {
		return nil, err
	}
	return Add(&Operator{params: []interface{}{dbody, bound, lo, hi}, kind: OpIntegral}, boundary), nil
}
