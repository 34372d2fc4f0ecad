package symalg

import (
	"regexp"
	"sort"
	"sync"
)

// PiName is the reserved name of the irrational constant pi.
const PiName = "pi"

var variableNamePattern = regexp.MustCompile(`^[a-z](_[0-9]+)?'*$`)

// IsValidVariableName reports whether name can denote a variable: a single
// lowercase letter, optionally followed by _digits and derivative marks.
func IsValidVariableName(name string) bool {
	return name == PiName || variableNamePattern.MatchString(name)
}

// ============================================================
// Process-wide symbol table
// ============================================================
//
// Variable entries and self-defined functions live for the lifetime of the
// process. Re-parsing a formula that reuses a name reuses the same entry, so a
// value assigned later is seen by every tree already built. The table is
// guarded by a mutex for memory safety only: reassigning a value while another
// goroutine evaluates a tree that reads it is still a race in meaning, and
// callers that share the engine across goroutines must serialize such use.

type variableEntry struct {
	value       float64
	hasValue    bool
	preciseExpr Expression
	approximate bool
}

type registry struct {
	mu        sync.RWMutex
	vars      map[string]*variableEntry
	functions map[string]*functionDefinition
}

var symbols = newRegistry()

func newRegistry() *registry {
	return &registry{
		vars:      map[string]*variableEntry{},
		functions: map[string]*functionDefinition{},
	}
}

func (r *registry) intern(name string) *variableEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.vars[name]
	if !ok {
		entry = &variableEntry{}
		r.vars[name] = entry
	}
	return entry
}

func (r *registry) value(name string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.vars[name]; ok {
		return entry.value, entry.hasValue
	}
	return 0, false
}

func (r *registry) isApproximate(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.vars[name]
	return ok && entry.approximate
}

func (r *registry) setApproximate(name string, approximate bool) {
	entry := r.intern(name)
	r.mu.Lock()
	entry.approximate = approximate
	r.mu.Unlock()
}

func (r *registry) preciseExpression(name string) (Expression, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.vars[name]; ok && entry.preciseExpr != nil {
		return entry.preciseExpr, true
	}
	return nil, false
}

// SetVariableValue assigns a floating value to name. The reserved name pi
// cannot be reassigned.
func SetVariableValue(name string, value float64) error {
	if name == PiName {
		return malformed("%s is a reserved constant", PiName)
	}
	if !IsValidVariableName(name) {
		return malformed("invalid variable name %q", name)
	}
	entry := symbols.intern(name)
	symbols.mu.Lock()
	entry.value = value
	entry.hasValue = true
	symbols.mu.Unlock()
	return nil
}

// SetPreciseExpression assigns an exact substitute to name. The substitute
// must not contain free variables.
func SetPreciseExpression(name string, e Expression) error {
	if name == PiName {
		return malformed("%s is a reserved constant", PiName)
	}
	if !IsValidVariableName(name) {
		return malformed("invalid variable name %q", name)
	}
	if !IsConstant(e) {
		return malformed("substitute for %s must be constant, got %s", name, e)
	}
	v, err := e.Evaluate()
	if err != nil {
		return err
	}
	entry := symbols.intern(name)
	symbols.mu.Lock()
	entry.preciseExpr = e
	entry.value = v
	entry.hasValue = true
	symbols.mu.Unlock()
	return nil
}

// VariableValue returns the value assigned to name and whether one was set.
func VariableValue(name string) (float64, bool) {
	return symbols.value(name)
}

// PreciseExpression returns the exact substitute assigned to name.
func PreciseExpression(name string) (Expression, bool) {
	return symbols.preciseExpression(name)
}

// ClearVariable drops the value, substitute and precision of name while
// keeping the name registered.
func ClearVariable(name string) {
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	if _, ok := symbols.vars[name]; ok {
		symbols.vars[name] = &variableEntry{}
	}
}

// RegisteredVariables lists every interned variable name in sorted order.
func RegisteredVariables() []string {
	symbols.mu.RLock()
	defer symbols.mu.RUnlock()
	names := make([]string, 0, len(symbols.vars))
	for name := range symbols.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReplaceDefinedVariables substitutes every variable that has an assignment:
// the exact substitute for precise entries, the floating value otherwise.
func ReplaceDefinedVariables(e Expression) Expression {
	values := map[string]Expression{}
	for name := range FreeVars(e) {
		if pe, ok := symbols.preciseExpression(name); ok && !symbols.isApproximate(name) {
			values[name] = pe
			continue
		}
		if v, ok := symbols.value(name); ok {
			values[name] = NewApproximateConstant(v)
		}
	}
	if len(values) == 0 {
		return e
	}
	return e.replaceVars(values)
}
