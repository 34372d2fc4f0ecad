package symalg_test

import (
	"testing"

	"github.com/njchilds90/symalg"
	"github.com/stretchr/testify/assert"
)

// ============================================================
// Equals vs Equivalent
// ============================================================

func TestEquals_Structural(t *testing.T) {
	assert.True(t, symalg.MustBuild("x+y").Equals(symalg.MustBuild("x+y")))
	assert.False(t, symalg.MustBuild("x+y").Equals(symalg.MustBuild("y+x")))
	assert.False(t, symalg.Num(2).Equals(symalg.NewApproximateConstant(2)))
	assert.True(t, symalg.NewApproximateConstant(2).Equals(symalg.NewApproximateConstant(2)))
}

func TestEquivalent(t *testing.T) {
	for _, pair := range [][2]string{
		{"x+y", "y+x"},
		{"x*y", "y*x"},
		{"a+b+c", "c+(a+b)"},
		{"a-b-c", "a-(b+c)"},
		{"x*y/z", "y/z*x"},
		{"sin(x+y)", "sin(y+x)"},
		{"(x+y)^(a*b)", "(y+x)^(b*a)"},
		{"gcd(x+1,4)", "gcd(1+x,4)"},
		{"a-b+c-d", "a+c-b-d"},
	} {
		a, b := symalg.MustBuild(pair[0]), symalg.MustBuild(pair[1])
		assert.True(t, symalg.Equivalent(a, b), "%s ~ %s", pair[0], pair[1])
		assert.True(t, symalg.Equivalent(b, a), "%s ~ %s", pair[1], pair[0])
	}
}

func TestEquivalent_Distinct(t *testing.T) {
	for _, pair := range [][2]string{
		{"x-y", "y-x"},
		{"x/y", "y/x"},
		{"x^y", "y^x"},
		{"x+y", "x*y"},
		{"sin(x)", "cos(x)"},
		{"x+x", "2*x"},
	} {
		a, b := symalg.MustBuild(pair[0]), symalg.MustBuild(pair[1])
		assert.False(t, symalg.Equivalent(a, b), "%s !~ %s", pair[0], pair[1])
	}
}

func TestEquivalent_Reflexive(t *testing.T) {
	for _, f := range []string{"x", "2", "sin(x)*y", "sum(k,k,1,n)", "|x|"} {
		e := symalg.MustBuild(f)
		assert.True(t, symalg.Equivalent(e, e), f)
	}
}

func TestEquivalent_Transitive(t *testing.T) {
	for _, group := range [][]string{
		{"x+y+z", "z+(y+x)", "(y+z)+x"},
		{"a-b+c-d", "a+c-b-d", "c-d-b+a"},
		{"x*y/z", "y*x/z", "x/z*y"},
	} {
		for _, a := range group {
			for _, b := range group {
				assert.True(t, symalg.Equivalent(symalg.MustBuild(a), symalg.MustBuild(b)), "%s ~ %s", a, b)
			}
		}
	}
}

func TestEquivalent_Symmetric(t *testing.T) {
	formulas := []string{"x-y", "y-x", "x+y", "-x-y", "x*y", "x/y", "sin(x)", "|x|"}
	for _, a := range formulas {
		for _, b := range formulas {
			ea, eb := symalg.MustBuild(a), symalg.MustBuild(b)
			assert.Equal(t, symalg.Equivalent(ea, eb), symalg.Equivalent(eb, ea), "%s vs %s", a, b)
		}
	}
}
