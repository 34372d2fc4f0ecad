package symalg

import (
	"regexp"
	"sort"
	"strings"
)

// ============================================================
// SelfDefinedFunction: user-registered named function
// ============================================================

var functionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

type functionDefinition struct {
	formals []string
	body    Expression
}

// SelfDefinedFunction is a call of a function registered with
// DefineFunction. The node keeps the definition current when it was built,
// so redefining or removing the name leaves existing trees unchanged.
type SelfDefinedFunction struct {
	name string
	def  *functionDefinition
	args []Expression
}

// DefineFunction registers name(formals...) = body. The body may only use the
// formal parameters as free variables. Redefining a name replaces the
// previous definition.
func DefineFunction(name string, formals []string, body Expression) error {
	if !functionNamePattern.MatchString(name) || name == PiName || name == "sqrt" {
		return malformed("invalid function name %q", name)
	}
	if _, builtin := LookupFunction(name); builtin {
		return malformed("%s is a built-in function", name)
	}
	if _, builtin := LookupOperator(name); builtin || name == OpFac.String() {
		return malformed("%s is a built-in operator", name)
	}
	if len(formals) == 0 {
		return malformed("function %s needs at least one parameter", name)
	}
	seen := map[string]struct{}{}
	for _, f := range formals {
		if f == PiName || !IsValidVariableName(f) {
			return malformed("invalid parameter name %q", f)
		}
		if _, dup := seen[f]; dup {
			return malformed("duplicate parameter %q", f)
		}
		seen[f] = struct{}{}
	}
	for v := range FreeVars(body) {
		if _, ok := seen[v]; !ok {
			return malformed("body of %s uses %s which is not a parameter", name, v)
		}
	}
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	symbols.functions[name] = &functionDefinition{formals: append([]string(nil), formals...), body: body}
	return nil
}

// UndefineFunction removes a registered function. Later calls of the name do
// not build; existing trees keep their definition.
func UndefineFunction(name string) {
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	delete(symbols.functions, name)
}

// DefinedFunctions lists the registered function names in sorted order.
func DefinedFunctions() []string {
	symbols.mu.RLock()
	defer symbols.mu.RUnlock()
	names := make([]string, 0, len(symbols.functions))
	for name := range symbols.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupDefinition(name string) (*functionDefinition, bool) {
	symbols.mu.RLock()
	defer symbols.mu.RUnlock()
	def, ok := symbols.functions[name]
	return def, ok
}

// CallFunction builds a call of a registered function.
func CallFunction(name string, args ...Expression) (*SelfDefinedFunction, error) {
	def, ok := lookupDefinition(name)
	if !ok {
		return nil, malformed("unknown function %q", name)
	}
	if len(args) != len(def.formals) {
		return nil, malformed("%s expects %d arguments, got %d", name, len(def.formals), len(args))
	}
	return &SelfDefinedFunction{name: name, def: def, args: append([]Expression(nil), args...)}, nil
}

func (s *SelfDefinedFunction) Name() string       { return s.name }
func (s *SelfDefinedFunction) Args() []Expression { return append([]Expression(nil), s.args...) }

// Formals returns the parameter names of the captured definition.
func (s *SelfDefinedFunction) Formals() []string { return append([]string(nil), s.def.formals...) }

// Body returns the body of the captured definition.
func (s *SelfDefinedFunction) Body() Expression { return s.def.body }

func (s *SelfDefinedFunction) String() string {
	parts := make([]string, len(s.args))
	for i, a := range s.args {
		parts[i] = a.String()
	}
	return s.name + "(" + strings.Join(parts, ",") + ")"
}

// expand substitutes the actual arguments into the captured body.
func (s *SelfDefinedFunction) expand() (Expression, error) {
	def := s.def
	if def == nil {
		return nil, undefinedValue("function %s is not defined", s.name)
	}
	if len(def.formals) != len(s.args) {
		return nil, malformed("%s expects %d arguments, got %d", s.name, len(def.formals), len(s.args))
	}
	values := make(map[string]Expression, len(s.args))
	for i, f := range def.formals {
		values[f] = s.args[i]
	}
	return def.body.replaceVars(values), nil
}

func (s *SelfDefinedFunction) Evaluate() (float64, error) {
	e, err := s.expand()
	if err != nil {
		return 0, err
	}
	return e.Evaluate()
}

func (s *SelfDefinedFunction) Equals(other Expression) bool {
	o, ok := other.(*SelfDefinedFunction)
	if !ok || s.name != o.name || s.def != o.def || len(s.args) != len(o.args) {
		return false
	}
	for i := range s.args {
		if !s.args[i].Equals(o.args[i]) {
			return false
		}
	}
	return true
}

func (s *SelfDefinedFunction) ContainedVars(vars map[string]struct{}) {
	for _, a := range s.args {
		a.ContainedVars(vars)
	}
}

func (s *SelfDefinedFunction) Substitute(name string, value Expression) Expression {
	return s.replaceVars(map[string]Expression{name: value})
}

func (s *SelfDefinedFunction) replaceVars(values map[string]Expression) Expression {
	r, _ := mapChildren(s, func(c Expression) (Expression, error) { return c.replaceVars(values), nil })
	return r
}

func (s *SelfDefinedFunction) exprType() string { return "self_defined_function" }
func (s *SelfDefinedFunction) toJSON() map[string]interface{} {
	args := make([]interface{}, len(s.args))
	for i, a := range s.args {
		args[i] = a.toJSON()
	}
	return map[string]interface{}{"type": "self_defined_function", "name": s.name, "args": args}
}

// maxInlineDepth bounds nested inlining so a definition that refers to
// itself fails instead of recursing forever.
const maxInlineDepth = 64

// ReplaceSelfDefinedFunctions inlines every call of a registered function,
// innermost calls first.
func ReplaceSelfDefinedFunctions(e Expression) (Expression, error) {
	return inlineCalls(e, 0)
}

func inlineCalls(e Expression, depth int) (Expression, error) {
	if depth > maxInlineDepth {
		return nil, &Error{Kind: KindStackExhausted, Msg: "self-defined functions nest too deeply"}
	}
	r, err := mapChildren(e, func(c Expression) (Expression, error) { return inlineCalls(c, depth) })
	if err != nil {
		return nil, err
	}
	if call, ok := r.(*SelfDefinedFunction); ok {
		body, err := call.expand()
		if err != nil {
			return nil, err
		}
		return inlineCalls(body, depth+1)
	}
	return r, nil
}
