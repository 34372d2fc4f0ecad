package symalg

import (
	"math"
)

// ============================================================
// BinaryOperation: the five elementary operations
// ============================================================

// TypeBinary names an elementary operation. Quotients and roots are not
// separate node kinds: a/b is DIV and a^(1/2) is POW.
type TypeBinary int

const (
	PLUS TypeBinary = iota
	MINUS
	TIMES
	DIV
	POW
)

// atomPrecedence is the binding strength of anything that is not a binary
// operation.
const atomPrecedence = 5

func (t TypeBinary) String() string {
	switch t {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case TIMES:
		return "*"
	case DIV:
		return "/"
	case POW:
		return "^"
	}
	return "?"
}

// precedence follows the parser's split order, loosest first.
func (t TypeBinary) precedence() int { return int(t) }

type BinaryOperation struct {
	left, right Expression
	op          TypeBinary
}

func (b *BinaryOperation) Left() Expression  { return b.left }
func (b *BinaryOperation) Right() Expression { return b.right }
func (b *BinaryOperation) Type() TypeBinary  { return b.op }

func isBinary(e Expression, op TypeBinary) bool {
	b, ok := e.(*BinaryOperation)
	return ok && b.op == op
}

func isSum(e Expression) bool     { return isBinary(e, PLUS) || isBinary(e, MINUS) }
func isProduct(e Expression) bool { return isBinary(e, TIMES) || isBinary(e, DIV) }

func (b *BinaryOperation) Evaluate() (float64, error) {
	l, err := b.left.Evaluate()
	if err != nil {
		return 0, err
	}
	r, err := b.right.Evaluate()
	if err != nil {
		return 0, err
	}
	var v float64
	switch b.op {
	case PLUS:
		v = l + r
	case MINUS:
		v = l - r
	case TIMES:
		v = l * r
	case DIV:
		if r == 0 {
			return 0, undefinedValue("division by zero in %s", b)
		}
		v = l / r
	case POW:
		v = powValue(l, r, b.right)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, undefinedValue("%s is undefined", b)
	}
	return v, nil
}

// powValue computes base^exp, taking real odd roots of negative bases when
// the exponent is exactly known to have an odd denominator.
func powValue(base, exp float64, exponent Expression) float64 {
	if base < 0 {
		if r, ok := rationalOf(exponent); ok && r.Denom().Bit(0) == 1 {
			v := math.Pow(-base, exp)
			if r.Num().Bit(0) == 1 {
				return -v
			}
			return v
		}
	}
	return math.Pow(base, exp)
}

func (b *BinaryOperation) Equals(other Expression) bool {
	o, ok := other.(*BinaryOperation)
	return ok && b.op == o.op && b.left.Equals(o.left) && b.right.Equals(o.right)
}

func (b *BinaryOperation) ContainedVars(vars map[string]struct{}) {
	b.left.ContainedVars(vars)
	b.right.ContainedVars(vars)
}

func (b *BinaryOperation) Substitute(name string, value Expression) Expression {
	return b.replaceVars(map[string]Expression{name: value})
}

func (b *BinaryOperation) replaceVars(values map[string]Expression) Expression {
	return b.with(b.left.replaceVars(values), b.right.replaceVars(values))
}

// with rebuilds b around new operands, returning b itself when nothing
// changed so unchanged subtrees stay shared.
func (b *BinaryOperation) with(left, right Expression) Expression {
	if left == b.left && right == b.right {
		return b
	}
	return &BinaryOperation{left: left, right: right, op: b.op}
}

func (b *BinaryOperation) exprType() string { return "binary" }
func (b *BinaryOperation) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type":  "binary",
		"op":    b.op.String(),
		"left":  b.left.toJSON(),
		"right": b.right.toJSON(),
	}
}

// ============================================================
// Writer
// ============================================================

func (b *BinaryOperation) String() string {
	if b.op == TIMES && isMinusOne(b.left) {
		inner := b.right.String()
		if precedenceOf(b.right) < TIMES.precedence() || isNegativeLiteral(b.right) {
			inner = "(" + inner + ")"
		}
		return "-" + inner
	}
	left, right := b.left.String(), b.right.String()
	if needsParens(b.left, b, false) {
		left = "(" + left + ")"
	}
	if needsParens(b.right, b, true) {
		right = "(" + right + ")"
	}
	return left + b.op.String() + right
}

func precedenceOf(e Expression) int {
	if b, ok := e.(*BinaryOperation); ok {
		return b.op.precedence()
	}
	return atomPrecedence
}

// isNegativeLiteral reports nodes written with a leading minus sign.
func isNegativeLiteral(e Expression) bool {
	switch v := e.(type) {
	case *Constant:
		return v.value < 0 || (v.precise && v.exact.Sign() < 0)
	case *BinaryOperation:
		return v.op == TIMES && isMinusOne(v.left)
	}
	return false
}

func needsParens(child Expression, parent *BinaryOperation, right bool) bool {
	if isNegativeLiteral(child) {
		return right || parent.op.precedence() >= TIMES.precedence()
	}
	cp, pp := precedenceOf(child), parent.op.precedence()
	if cp < pp {
		// (x+z)-y and (x*z)/y read the same without brackets.
		return right || !(cp == PLUS.precedence() && parent.op == MINUS ||
			cp == TIMES.precedence() && parent.op == DIV)
	}
	if cp == pp && cp < atomPrecedence {
		if right {
			return parent.op == MINUS || parent.op == DIV
		}
		return parent.op == POW
	}
	return false
}
