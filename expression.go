// Package symalg is a symbolic algebra engine: it parses textual formulas into
// an immutable expression tree, reduces trees to a canonical form through an
// iterated term-rewriting pipeline and computes symbolic derivatives.
//
// Design goals:
//   - Immutable trees; every transform returns a new tree sharing unchanged subtrees
//   - Exact rational arithmetic (math/big.Rat) with an explicit floating fallback
//   - Deterministic simplification to a structural fixed point
//   - Cooperative cancellation through context.Context
package symalg

import (
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// Core Interface
// ============================================================

// Expression is a node of an expression tree. The set of implementations is
// closed: *Constant, *Variable, *BinaryOperation, *Function, *Operator and
// *SelfDefinedFunction.
type Expression interface {
	String() string
	// Evaluate computes the floating value of the tree, failing with
	// ErrUndefinedValue as soon as an intermediate result is NaN or infinite.
	Evaluate() (float64, error)
	// Equals is exact structural equality.
	Equals(other Expression) bool
	// ContainedVars adds the names of all free variables to vars.
	ContainedVars(vars map[string]struct{})
	// Substitute replaces every free occurrence of name by value.
	Substitute(name string, value Expression) Expression

	replaceVars(values map[string]Expression) Expression
	exprType() string
	toJSON() map[string]interface{}
}

// Contains reports whether name occurs free in e.
func Contains(e Expression, name string) bool {
	vars := map[string]struct{}{}
	e.ContainedVars(vars)
	_, ok := vars[name]
	return ok
}

// IsConstant reports whether e contains no free variables.
func IsConstant(e Expression) bool {
	vars := map[string]struct{}{}
	e.ContainedVars(vars)
	return len(vars) == 0
}

// FreeVars returns the free variable names of e.
func FreeVars(e Expression) map[string]struct{} {
	vars := map[string]struct{}{}
	e.ContainedVars(vars)
	return vars
}

// ============================================================
// Constant: exact or approximate number
// ============================================================

// Constant is a numeric literal. A precise constant carries its exact value;
// an approximate one is only meaningful through its floating value.
type Constant struct {
	value   float64
	exact   *big.Rat
	precise bool
}

// Num returns the precise integer constant n.
func Num(n int64) *Constant {
	return &Constant{value: float64(n), exact: new(big.Rat).SetInt64(n), precise: true}
}

// NewRationalConstant returns a precise constant with value r.
func NewRationalConstant(r *big.Rat) *Constant {
	f, _ := r.Float64()
	return &Constant{value: f, exact: new(big.Rat).Set(r), precise: true}
}

// NewApproximateConstant returns an approximate constant.
func NewApproximateConstant(f float64) *Constant {
	return &Constant{value: f, exact: ratFromFloat(f), precise: false}
}

// ParseConstant reads a decimal literal such as "12" or "0.25" as a precise
// constant.
func ParseConstant(s string) (*Constant, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, malformed("invalid number %q", s)
	}
	return NewRationalConstant(r), nil
}

func (c *Constant) Value() float64  { return c.value }
func (c *Constant) IsPrecise() bool { return c.precise }

// Exact returns a copy of the exact value. For approximate constants this is
// the shortest decimal rendering of the floating value.
func (c *Constant) Exact() *big.Rat { return new(big.Rat).Set(c.exact) }

func (c *Constant) Evaluate() (float64, error) {
	if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
		return 0, undefinedValue("constant %v is not finite", c.value)
	}
	return c.value, nil
}

func (c *Constant) Equals(other Expression) bool {
	o, ok := other.(*Constant)
	if !ok || c.precise != o.precise {
		return false
	}
	if c.precise {
		return c.exact.Cmp(o.exact) == 0
	}
	return c.value == o.value
}

func (c *Constant) ContainedVars(map[string]struct{})                  {}
func (c *Constant) Substitute(string, Expression) Expression          { return c }
func (c *Constant) replaceVars(map[string]Expression) Expression      { return c }
func (c *Constant) exprType() string                                  { return "constant" }
func (c *Constant) sign() int                                         { return c.exact.Sign() }
func (c *Constant) isValue(n int64) bool                              { return c.exact.Cmp(big.NewRat(n, 1)) == 0 }
func (c *Constant) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "constant", "value": c.String(), "precise": c.precise}
}

func (c *Constant) String() string {
	if !c.precise {
		return strconv.FormatFloat(c.value, 'f', -1, 64)
	}
	return formatRat(c.exact)
}

// ============================================================
// Variable: named unknown backed by the global registry
// ============================================================

// Variable is a named unknown. Its value, exact substitute and precision live
// in the process-wide registry so every tree referencing the same name sees
// the same entry.
type Variable struct{ name string }

// Var returns the variable name, registering it when first seen.
func Var(name string) *Variable {
	symbols.intern(name)
	return &Variable{name: name}
}

// Pi returns the reserved irrational constant.
func Pi() *Variable { return &Variable{name: PiName} }

func (v *Variable) Name() string   { return v.name }
func (v *Variable) String() string { return v.name }

func (v *Variable) Evaluate() (float64, error) {
	if v.name == PiName {
		return math.Pi, nil
	}
	val, _ := symbols.value(v.name)
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, undefinedValue("variable %s has no finite value", v.name)
	}
	return val, nil
}

func (v *Variable) Equals(other Expression) bool {
	o, ok := other.(*Variable)
	return ok && v.name == o.name
}

func (v *Variable) ContainedVars(vars map[string]struct{}) {
	if v.name != PiName {
		vars[v.name] = struct{}{}
	}
}

func (v *Variable) Substitute(name string, value Expression) Expression {
	if v.name == name {
		return value
	}
	return v
}

func (v *Variable) replaceVars(values map[string]Expression) Expression {
	if r, ok := values[v.name]; ok {
		return r
	}
	return v
}

func (v *Variable) exprType() string { return "variable" }
func (v *Variable) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "variable", "name": v.name}
}

// ============================================================
// Combinators
// ============================================================

func Add(a, b Expression) *BinaryOperation  { return &BinaryOperation{left: a, right: b, op: PLUS} }
func Sub(a, b Expression) *BinaryOperation  { return &BinaryOperation{left: a, right: b, op: MINUS} }
func Mult(a, b Expression) *BinaryOperation { return &BinaryOperation{left: a, right: b, op: TIMES} }
func Div(a, b Expression) *BinaryOperation  { return &BinaryOperation{left: a, right: b, op: DIV} }
func Pow(a, b Expression) *BinaryOperation  { return &BinaryOperation{left: a, right: b, op: POW} }

// Sqrt is sugar for a^(1/2).
func Sqrt(a Expression) *BinaryOperation { return Pow(a, Div(Num(1), Num(2))) }

func zero() *Constant { return Num(0) }
func one() *Constant  { return Num(1) }

func isZero(e Expression) bool {
	c, ok := e.(*Constant)
	return ok && c.exact.Sign() == 0 && (c.precise || c.value == 0)
}

func isOne(e Expression) bool {
	c, ok := e.(*Constant)
	if !ok {
		return false
	}
	if c.precise {
		return c.isValue(1)
	}
	return c.value == 1
}

func isMinusOne(e Expression) bool {
	c, ok := e.(*Constant)
	if !ok {
		return false
	}
	if c.precise {
		return c.isValue(-1)
	}
	return c.value == -1
}
