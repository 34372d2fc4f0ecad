package symalg

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// ============================================================
// Parser: infix text to expression tree
// ============================================================
//
// The parser works on the whitespace-free input by splitting at the loosest
// operator found at bracket depth zero, scanning from the right:
//
//	+  -  *  /  ^      loosest to tightest
//
// + * ^ split at their leftmost occurrence, - and / at their rightmost so
// that a-b-c reads (a-b)-c. A sign at the start of an operand or after
// another operator, an opening bracket or a comma is unary. What remains after
// splitting is an atom: a bracketed formula, a number, a variable, |x|, a
// function or operator call, a postfix factorial or a call of a registered
// function.

var numberPattern = regexp.MustCompile(`^([0-9]+(\.[0-9]+)?|\.[0-9]+)$`)

const binaryOperators = "+-*/^"

// Build parses formula. Every free variable of the result is added to vars
// when vars is not nil.
func Build(formula string, vars map[string]struct{}) (Expression, error) {
	text := strings.Join(strings.Fields(formula), "")
	if text == "" {
		return nil, malformed("empty formula")
	}
	if err := checkBrackets(text); err != nil {
		return nil, err
	}
	e, err := build(text)
	if err != nil {
		return nil, err
	}
	if vars != nil {
		e.ContainedVars(vars)
	}
	return e, nil
}

// MustBuild is Build for formulas known to be valid. It panics otherwise.
func MustBuild(formula string) Expression {
	e, err := Build(formula, nil)
	if err != nil {
		panic(err)
	}
	return e
}

func checkBrackets(s string) error {
	depth, bars := 0, 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return malformed("unbalanced ')' at position %d", i)
			}
		case '|':
			bars++
		}
	}
	if depth != 0 {
		return malformed("unbalanced brackets: %d unclosed '('", depth)
	}
	if bars%2 != 0 {
		return malformed("unbalanced absolute value bars")
	}
	return nil
}

// closesOperand reports whether c can end an operand, which makes a following
// bar a closing one and a following sign binary.
func closesOperand(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == ')' || c == '!' || c == '\'' || c == '.'
}

// barRunCloses classifies the run of bars s[start:end]. A run closes an
// absolute value when the character before it ends an operand.
func barRunCloses(s string, start int) bool {
	return start > 0 && closesOperand(s[start-1])
}

// endsOperand reports whether the operand to the left of position i is
// complete, so the operator at i is binary.
func endsOperand(s string, i int) bool {
	if i == 0 {
		return false
	}
	c := s[i-1]
	if c != '|' {
		return closesOperand(c)
	}
	start := i - 1
	for start > 0 && s[start-1] == '|' {
		start--
	}
	return barRunCloses(s, start)
}

// splitPoint returns the position of the operator to split s at, or -1.
func splitPoint(s string) int {
	best, bestPrec := -1, atomPrecedence
	depth, bars := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		switch {
		case c == ')':
			depth++
			continue
		case c == '(':
			depth--
			continue
		case c == '|':
			start := i
			for start > 0 && s[start-1] == '|' {
				start--
			}
			if barRunCloses(s, start) {
				bars += i - start + 1
			} else {
				bars -= i - start + 1
			}
			i = start
			continue
		}
		if depth != 0 || bars != 0 {
			continue
		}
		prec := strings.IndexByte(binaryOperators, c)
		if prec < 0 || !endsOperand(s, i) {
			continue
		}
		switch TypeBinary(prec) {
		case MINUS, DIV:
			if prec < bestPrec {
				best, bestPrec = i, prec
			}
		default:
			if prec <= bestPrec {
				best, bestPrec = i, prec
			}
		}
	}
	return best
}

func build(s string) (Expression, error) {
	if s == "" {
		return nil, malformed("missing operand")
	}
	at := splitPoint(s)
	if s[0] == '-' && (at < 0 || TypeBinary(strings.IndexByte(binaryOperators, s[at])) > MINUS) {
		operand, err := build(s[1:])
		if err != nil {
			return nil, err
		}
		if c, ok := operand.(*Constant); ok {
			if c.precise {
				return NewRationalConstant(new(big.Rat).Neg(c.exact)), nil
			}
			return NewApproximateConstant(-c.value), nil
		}
		return Mult(Num(-1), operand), nil
	}
	if s[0] == '+' && (at < 0 || TypeBinary(strings.IndexByte(binaryOperators, s[at])) > MINUS) {
		return build(s[1:])
	}
	if at >= 0 {
		left, err := build(s[:at])
		if err != nil {
			return nil, err
		}
		right, err := build(s[at+1:])
		if err != nil {
			return nil, err
		}
		return &BinaryOperation{left: left, right: right, op: TypeBinary(strings.IndexByte(binaryOperators, s[at]))}, nil
	}
	return buildAtom(s)
}

// matchingParen returns the index of the bracket closing the one at open.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func buildAtom(s string) (Expression, error) {
	last := len(s) - 1
	if s[0] == '(' && matchingParen(s, 0) == last {
		return build(s[1:last])
	}
	if numberPattern.MatchString(s) {
		if s[0] == '.' {
			s = "0" + s
		}
		return ParseConstant(s)
	}
	if s == PiName {
		return Pi(), nil
	}
	if IsValidVariableName(s) {
		return Var(s), nil
	}
	if len(s) >= 2 && s[0] == '|' && s[last] == '|' && absSpansWhole(s) {
		inner, err := build(s[1:last])
		if err != nil {
			return nil, err
		}
		return Abs(inner), nil
	}
	if open := strings.IndexByte(s, '('); open > 0 && s[last] == ')' && matchingParen(s, open) == last {
		name, args := s[:open], splitArgs(s[open+1:last])
		if kind, ok := LookupFunction(name); ok {
			arg, err := singleArg(name, args)
			if err != nil {
				return nil, err
			}
			return NewFunction(kind, arg), nil
		}
		if name == "sqrt" {
			arg, err := singleArg(name, args)
			if err != nil {
				return nil, err
			}
			return Sqrt(arg), nil
		}
		if kind, ok := LookupOperator(name); ok {
			return buildOperator(kind, args)
		}
		if _, ok := lookupDefinition(name); ok {
			exprs := make([]Expression, len(args))
			for i, a := range args {
				e, err := build(a)
				if err != nil {
					return nil, err
				}
				exprs[i] = e
			}
			return CallFunction(name, exprs...)
		}
		return nil, malformed("unknown function or operator %q", name)
	}
	if s[last] == '!' {
		arg, err := build(s[:last])
		if err != nil {
			return nil, err
		}
		return NewOperator(OpFac, arg)
	}
	return nil, malformed("unrecognized formula %q", s)
}

// absSpansWhole reports whether the opening bar at 0 is closed by the bar at
// the end rather than earlier, as in |a|*|b|.
func absSpansWhole(s string) bool {
	bars := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '|' {
			continue
		}
		end := i
		for end+1 < len(s) && s[end+1] == '|' {
			end++
		}
		closes := barRunCloses(s, i)
		for j := i; j <= end; j++ {
			if closes {
				bars--
			} else {
				bars++
			}
			if bars <= 0 && j < len(s)-1 {
				return false
			}
		}
		i = end
	}
	return bars == 0
}

// splitArgs splits an argument list at commas outside brackets and bars.
func splitArgs(s string) []string {
	var args []string
	depth, bars, start := 0, 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '|':
			end := i
			for end+1 < len(s) && s[end+1] == '|' {
				end++
			}
			if barRunCloses(s, i) {
				bars -= end - i + 1
			} else {
				bars += end - i + 1
			}
			i = end
		case c == ',' && depth == 0 && bars == 0:
			args = append(args, s[start:i])
			start = i + 1
		}
	}
	return append(args, s[start:])
}

func singleArg(name string, args []string) (Expression, error) {
	if len(args) != 1 {
		return nil, malformed("%s expects 1 argument, got %d", name, len(args))
	}
	return build(args[0])
}

func buildOperator(kind TypeOperator, args []string) (*Operator, error) {
	params := make([]interface{}, len(args))
	isName := func(i int) bool {
		switch kind {
		case OpDiff, OpLaplace:
			return i > 0
		case OpDivergence:
			return i >= len(args)/2
		case OpIntegral, OpSum, OpProd, OpTaylor:
			return i == 1
		}
		return false
	}
	for i, a := range args {
		switch {
		case kind == OpTaylor && i == 3, kind == OpDiff && len(args) == 3 && i == 2 && !IsValidVariableName(a):
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, malformed("%s: order must be a non-negative integer, got %q", kind, a)
			}
			params[i] = n
		case isName(i):
			if a == PiName || !IsValidVariableName(a) {
				return nil, malformed("%s: %q is not a variable name", kind, a)
			}
			Var(a)
			params[i] = a
		default:
			e, err := build(a)
			if err != nil {
				return nil, err
			}
			params[i] = e
		}
	}
	return NewOperator(kind, params...)
}
