package symalg

import (
	"math"
)

// ============================================================
// Function: unary named functions
// ============================================================

// TypeFunction names a unary function.
type TypeFunction int

const (
	FuncAbs TypeFunction = iota
	FuncSgn
	FuncExp
	FuncLn
	FuncLg
	FuncSin
	FuncCos
	FuncTan
	FuncCot
	FuncSec
	FuncCosec
	FuncSinh
	FuncCosh
	FuncTanh
	FuncCoth
	FuncSech
	FuncCosech
	FuncArcsin
	FuncArccos
	FuncArctan
	FuncArccot
	FuncArsinh
	FuncArcosh
	FuncArtanh
)

var functionNames = map[TypeFunction]string{
	FuncAbs:    "abs",
	FuncSgn:    "sgn",
	FuncExp:    "exp",
	FuncLn:     "ln",
	FuncLg:     "lg",
	FuncSin:    "sin",
	FuncCos:    "cos",
	FuncTan:    "tan",
	FuncCot:    "cot",
	FuncSec:    "sec",
	FuncCosec:  "cosec",
	FuncSinh:   "sinh",
	FuncCosh:   "cosh",
	FuncTanh:   "tanh",
	FuncCoth:   "coth",
	FuncSech:   "sech",
	FuncCosech: "cosech",
	FuncArcsin: "arcsin",
	FuncArccos: "arccos",
	FuncArctan: "arctan",
	FuncArccot: "arccot",
	FuncArsinh: "arsinh",
	FuncArcosh: "arcosh",
	FuncArtanh: "artanh",
}

var functionsByName = func() map[string]TypeFunction {
	m := make(map[string]TypeFunction, len(functionNames))
	for k, name := range functionNames {
		m[name] = k
	}
	return m
}()

func (t TypeFunction) String() string { return functionNames[t] }

// LookupFunction resolves a function name.
func LookupFunction(name string) (TypeFunction, bool) {
	t, ok := functionsByName[name]
	return t, ok
}

type Function struct {
	arg  Expression
	kind TypeFunction
}

// NewFunction applies kind to arg.
func NewFunction(kind TypeFunction, arg Expression) *Function {
	return &Function{arg: arg, kind: kind}
}

func Abs(arg Expression) *Function { return NewFunction(FuncAbs, arg) }
func Exp(arg Expression) *Function { return NewFunction(FuncExp, arg) }
func Ln(arg Expression) *Function  { return NewFunction(FuncLn, arg) }
func Sin(arg Expression) *Function { return NewFunction(FuncSin, arg) }
func Cos(arg Expression) *Function { return NewFunction(FuncCos, arg) }
func Tan(arg Expression) *Function { return NewFunction(FuncTan, arg) }

func (f *Function) Arg() Expression    { return f.arg }
func (f *Function) Type() TypeFunction { return f.kind }
func (f *Function) String() string     { return f.kind.String() + "(" + f.arg.String() + ")" }

func isFunction(e Expression, kind TypeFunction) (*Function, bool) {
	f, ok := e.(*Function)
	if !ok || f.kind != kind {
		return nil, false
	}
	return f, true
}

func (f *Function) Evaluate() (float64, error) {
	x, err := f.arg.Evaluate()
	if err != nil {
		return 0, err
	}
	v := applyFunction(f.kind, x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, undefinedValue("%s is undefined", f)
	}
	return v, nil
}

func applyFunction(kind TypeFunction, x float64) float64 {
	switch kind {
	case FuncAbs:
		return math.Abs(x)
	case FuncSgn:
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return 0
	case FuncExp:
		return math.Exp(x)
	case FuncLn:
		return math.Log(x)
	case FuncLg:
		return math.Log10(x)
	case FuncSin:
		return math.Sin(x)
	case FuncCos:
		return math.Cos(x)
	case FuncTan:
		return math.Tan(x)
	case FuncCot:
		return 1 / math.Tan(x)
	case FuncSec:
		return 1 / math.Cos(x)
	case FuncCosec:
		return 1 / math.Sin(x)
	case FuncSinh:
		return math.Sinh(x)
	case FuncCosh:
		return math.Cosh(x)
	case FuncTanh:
		return math.Tanh(x)
	case FuncCoth:
		return 1 / math.Tanh(x)
	case FuncSech:
		return 1 / math.Cosh(x)
	case FuncCosech:
		return 1 / math.Sinh(x)
	case FuncArcsin:
		return math.Asin(x)
	case FuncArccos:
		return math.Acos(x)
	case FuncArctan:
		return math.Atan(x)
	case FuncArccot:
		return math.Pi/2 - math.Atan(x)
	case FuncArsinh:
		return math.Asinh(x)
	case FuncArcosh:
		return math.Acosh(x)
	case FuncArtanh:
		return math.Atanh(x)
	}
	return math.NaN()
}

func (f *Function) Equals(other Expression) bool {
	o, ok := other.(*Function)
	return ok && f.kind == o.kind && f.arg.Equals(o.arg)
}

func (f *Function) ContainedVars(vars map[string]struct{}) { f.arg.ContainedVars(vars) }

func (f *Function) Substitute(name string, value Expression) Expression {
	return f.replaceVars(map[string]Expression{name: value})
}

func (f *Function) replaceVars(values map[string]Expression) Expression {
	return f.with(f.arg.replaceVars(values))
}

func (f *Function) with(arg Expression) Expression {
	if arg == f.arg {
		return f
	}
	return &Function{arg: arg, kind: f.kind}
}

func (f *Function) exprType() string { return "function" }
func (f *Function) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "function", "name": f.kind.String(), "arg": f.arg.toJSON()}
}
