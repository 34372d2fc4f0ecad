package symalg

import (
	"context"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ============================================================
// Simplifier: pipeline of rewrite passes iterated to a fixed point
// ============================================================

// Pass names one rewrite pass of the simplification pipeline.
type Pass uint32

const (
	PassTrivial Pass = 1 << iota
	PassOrderDifferenceAndDivision
	PassSimplifyPowers
	PassCollectProducts
	PassExpandRationalFactors
	PassFactorizeRationalsInSums
	PassFactorizeRationalsInDifferences
	PassFactorizeInSums
	PassFactorizeInDifferences
	PassReduceQuotients
	PassReduceLeadingCoefficients
	PassSimplifyAlgebraicExpressions
	PassSimplifyPolynomials
	PassSimplifyFunctionalRelations
	PassCollectLogarithms
	PassOrderSumsAndProducts

	AllPasses Pass = 1<<iota - 1
)

var passNames = map[Pass]string{
	PassTrivial:                         "trivial",
	PassOrderDifferenceAndDivision:      "order_difference_and_division",
	PassSimplifyPowers:                  "simplify_powers",
	PassCollectProducts:                 "collect_products",
	PassExpandRationalFactors:           "expand_rational_factors",
	PassFactorizeRationalsInSums:        "factorize_rationals_in_sums",
	PassFactorizeRationalsInDifferences: "factorize_rationals_in_differences",
	PassFactorizeInSums:                 "factorize_in_sums",
	PassFactorizeInDifferences:          "factorize_in_differences",
	PassReduceQuotients:                 "reduce_quotients",
	PassReduceLeadingCoefficients:       "reduce_leading_coefficients",
	PassSimplifyAlgebraicExpressions:    "simplify_algebraic_expressions",
	PassSimplifyPolynomials:             "simplify_polynomials",
	PassSimplifyFunctionalRelations:     "simplify_functional_relations",
	PassCollectLogarithms:               "collect_logarithms",
	PassOrderSumsAndProducts:            "order_sums_and_products",
}

// String lists the names of the passes in p, comma separated.
func (p Pass) String() string {
	var names []string
	for bit := Pass(1); bit <= PassOrderSumsAndProducts; bit <<= 1 {
		if p&bit != 0 {
			names = append(names, passNames[bit])
		}
	}
	return strings.Join(names, ",")
}

// ParsePasses resolves pass names as printed by Pass.String. The name "all"
// selects every pass.
func ParsePasses(names []string) (Pass, error) {
	var p Pass
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "all" {
			p |= AllPasses
			continue
		}
		found := false
		for bit, n := range passNames {
			if n == name {
				p |= bit
				found = true
				break
			}
		}
		if !found {
			return 0, malformed("unknown simplification pass %q", name)
		}
	}
	return p, nil
}

// PassNames returns every pass name in pipeline order.
func PassNames() []string {
	names := make([]string, 0, len(passNames))
	for _, n := range passNames {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return passBit(names[i]) < passBit(names[j]) })
	return names
}

func passBit(name string) Pass {
	for bit, n := range passNames {
		if n == name {
			return bit
		}
	}
	return 0
}

const (
	DefaultMaxAlgebraicExponent = 6
	DefaultMaxPolynomialDegree  = 30
	DefaultMaxDepth             = 5000
	DefaultMaxRounds            = 100
)

// Config selects the passes to run and bounds the work done by them.
type Config struct {
	Passes Pass
	// MaxAlgebraicExponent bounds the binomial expansion of powers of sums
	// containing roots.
	MaxAlgebraicExponent int
	// MaxPolynomialDegree bounds polynomial expansion.
	MaxPolynomialDegree int
	// MaxDepth is the deepest tree the simplifier descends into before
	// failing with ErrStackExhausted.
	MaxDepth int
	// MaxRounds caps the number of rounds before giving up on a fixed point.
	MaxRounds int
}

func DefaultConfig() Config {
	return Config{
		Passes:               AllPasses,
		MaxAlgebraicExponent: DefaultMaxAlgebraicExponent,
		MaxPolynomialDegree:  DefaultMaxPolynomialDegree,
		MaxDepth:             DefaultMaxDepth,
		MaxRounds:            DefaultMaxRounds,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxAlgebraicExponent <= 0 {
		c.MaxAlgebraicExponent = d.MaxAlgebraicExponent
	}
	if c.MaxPolynomialDegree <= 0 {
		c.MaxPolynomialDegree = d.MaxPolynomialDegree
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MaxRounds <= 0 {
		c.MaxRounds = d.MaxRounds
	}
	return c
}

// Simplify reduces e to canonical form with every pass enabled.
func Simplify(ctx context.Context, e Expression) (Expression, error) {
	return SimplifyWith(ctx, e, DefaultConfig())
}

// SimplifyWith reduces e running only the passes selected by cfg. It fails
// with ErrAborted once ctx is done and with ErrStackExhausted on trees deeper
// than cfg.MaxDepth.
func SimplifyWith(ctx context.Context, e Expression, cfg Config) (Expression, error) {
	s := &simplifier{ctx: ctx, cfg: cfg.withDefaults()}
	return s.run(e)
}

type simplifier struct {
	ctx         context.Context
	cfg         Config
	approximate bool
}

type pass struct {
	bit   Pass
	apply func(*simplifier, Expression) (Expression, error)
}

// pipeline is the order in which one round applies the passes.
func pipeline() []pass {
	return []pass{
		{PassTrivial, (*simplifier).trivial},
		{PassOrderDifferenceAndDivision, (*simplifier).orderDifferenceAndDivision},
		{PassSimplifyPowers, (*simplifier).simplifyPowers},
		{PassCollectProducts, (*simplifier).collectProducts},
		{PassExpandRationalFactors, (*simplifier).expandRationalFactors},
		{PassFactorizeRationalsInSums, (*simplifier).factorizeRationalsInSums},
		{PassFactorizeRationalsInDifferences, (*simplifier).factorizeRationalsInDifferences},
		{PassFactorizeInSums, (*simplifier).factorizeInSums},
		{PassFactorizeInDifferences, (*simplifier).factorizeInDifferences},
		{PassReduceQuotients, (*simplifier).reduceQuotients},
		{PassReduceLeadingCoefficients, (*simplifier).reduceLeadingCoefficients},
		{PassSimplifyAlgebraicExpressions, (*simplifier).simplifyAlgebraicExpressions},
		{PassSimplifyPolynomials, (*simplifier).simplifyPolynomials},
		{PassSimplifyFunctionalRelations, (*simplifier).simplifyFunctionalRelations},
		{PassCollectLogarithms, (*simplifier).collectLogarithms},
		{PassOrderSumsAndProducts, (*simplifier).orderSumsAndProducts},
	}
}

func polish() []pass {
	return []pass{
		{PassTrivial, (*simplifier).trivial},
		{PassOrderSumsAndProducts, (*simplifier).orderSumsAndProducts},
		{PassOrderDifferenceAndDivision, (*simplifier).orderDifferenceAndDivision},
	}
}

func functionPass(bit Pass) bool {
	return bit == PassSimplifyFunctionalRelations || bit == PassCollectLogarithms
}

func (s *simplifier) run(e Expression) (Expression, error) {
	if err := checkContext(s.ctx); err != nil {
		return nil, err
	}
	if containsApproximates(e) {
		s.approximate = true
		e = approximateConstants(protectOddRoots(e))
	}
	for cycle := 0; cycle < s.cfg.MaxRounds; cycle++ {
		start := e
		var err error
		if e, err = s.iterate(e, pipeline(), "round"); err != nil {
			return nil, err
		}
		if e, err = s.iterate(e, polish(), "polish"); err != nil {
			return nil, err
		}
		if e.Equals(start) {
			return e, nil
		}
	}
	log.Warnf("simplification of %s did not reach a fixed point after %d cycles", e, s.cfg.MaxRounds)
	return e, nil
}

// iterate applies the passes of stage in order until a whole sweep leaves
// the tree unchanged.
func (s *simplifier) iterate(e Expression, stage []pass, label string) (Expression, error) {
	for round := 0; round < s.cfg.MaxRounds; round++ {
		next := e
		withFunctions := containsNode(e, func(n Expression) bool { _, ok := n.(*Function); return ok })
		for _, p := range stage {
			if s.cfg.Passes&p.bit == 0 || (functionPass(p.bit) && !withFunctions) {
				continue
			}
			var err error
			if next, err = p.apply(s, next); err != nil {
				return nil, err
			}
		}
		if log.IsLevelEnabled(log.DebugLevel) {
			log.Debugf("simplify %s %d: %s", label, round, next)
		}
		if next.Equals(e) {
			return e, nil
		}
		e = next
	}
	log.Warnf("simplification %s of %s stopped after %d rounds", label, e, s.cfg.MaxRounds)
	return e, nil
}

// ============================================================
// Traversal helpers shared by the passes
// ============================================================

func (s *simplifier) enter(depth int) error {
	if err := checkContext(s.ctx); err != nil {
		return err
	}
	if depth > s.cfg.MaxDepth {
		return &Error{Kind: KindStackExhausted, Msg: "expression nested too deeply"}
	}
	return nil
}

// rewrite applies rule to every node bottom-up.
func (s *simplifier) rewrite(e Expression, rule func(Expression) (Expression, error)) (Expression, error) {
	var visit func(e Expression, depth int) (Expression, error)
	visit = func(e Expression, depth int) (Expression, error) {
		if err := s.enter(depth); err != nil {
			return nil, err
		}
		r, err := mapChildren(e, func(c Expression) (Expression, error) { return visit(c, depth+1) })
		if err != nil {
			return nil, err
		}
		return rule(r)
	}
	return visit(e, 0)
}

// chainRules rewrite a whole sum (flattened into added and subtracted
// terms) or a whole product (flattened into numerator and denominator
// factors). A nil rule or a nil result keeps the chain as it is.
type chainRules struct {
	sum     func(node Expression, pos, neg []Expression) (Expression, error)
	product func(node Expression, num, den []Expression) (Expression, error)
	other   func(node Expression) (Expression, error)
}

// rewriteChains walks e top-down to the roots of sum and product chains,
// rewrites their operands first and then hands the chain to rules.
func (s *simplifier) rewriteChains(e Expression, rules chainRules) (Expression, error) {
	var visit func(e Expression, depth int) (Expression, error)
	visitAll := func(items []Expression, depth int) ([]Expression, bool, error) {
		out := make([]Expression, len(items))
		changed := false
		for i, it := range items {
			r, err := visit(it, depth+1)
			if err != nil {
				return nil, false, err
			}
			changed = changed || r != it
			out[i] = r
		}
		return out, changed, nil
	}
	visit = func(e Expression, depth int) (Expression, error) {
		if err := s.enter(depth); err != nil {
			return nil, err
		}
		switch {
		case isSum(e) && rules.sum != nil:
			pos, neg := summands(e)
			pos2, c1, err := visitAll(pos, depth)
			if err != nil {
				return nil, err
			}
			neg2, c2, err := visitAll(neg, depth)
			if err != nil {
				return nil, err
			}
			node := e
			if c1 || c2 {
				node = rebuildDifference(pos2, neg2)
			}
			r, err := rules.sum(node, pos2, neg2)
			if err != nil || r != nil {
				return r, err
			}
			return node, nil
		case isProduct(e) && rules.product != nil:
			num, den := factors(e)
			num2, c1, err := visitAll(num, depth)
			if err != nil {
				return nil, err
			}
			den2, c2, err := visitAll(den, depth)
			if err != nil {
				return nil, err
			}
			node := e
			if c1 || c2 {
				node = rebuildQuotient(num2, den2)
			}
			r, err := rules.product(node, num2, den2)
			if err != nil || r != nil {
				return r, err
			}
			return node, nil
		}
		r, err := mapChildren(e, func(c Expression) (Expression, error) { return visit(c, depth+1) })
		if err != nil {
			return nil, err
		}
		if rules.other != nil {
			if o, err := rules.other(r); err != nil || o != nil {
				return o, err
			}
		}
		return r, nil
	}
	return visit(e, 0)
}

// rebuildDifference keeps operand order, unlike buildDifference.
func rebuildDifference(pos, neg []Expression) Expression {
	var sum Expression
	for _, t := range pos {
		if sum == nil {
			sum = t
		} else {
			sum = Add(sum, t)
		}
	}
	for _, t := range neg {
		if sum == nil {
			sum = negate(t)
		} else {
			sum = Sub(sum, t)
		}
	}
	if sum == nil {
		return zero()
	}
	return sum
}

// rebuildQuotient keeps operand order, unlike buildQuotient.
func rebuildQuotient(num, den []Expression) Expression {
	var p Expression = one()
	for i, f := range num {
		if i == 0 {
			p = f
		} else {
			p = Mult(p, f)
		}
	}
	for _, f := range den {
		p = Div(p, f)
	}
	return p
}
