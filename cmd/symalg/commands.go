package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/njchilds90/symalg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [flags] formula",
	Short: "reduce a formula to canonical form.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := setup(cmd)
		ctx, cancel := computation(cmd)
		defer cancel()
		//
		e, err := symalg.Build(args[0], nil)
		if err != nil {
			fail(err)
		}
		e, err = symalg.SimplifyWith(ctx, e, cfg)
		if err != nil {
			fail(err)
		}
		emit(cmd, e)
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff [flags] formula var",
	Short: "differentiate a formula.",
	Long: `Differentiate a formula with respect to var and simplify the result. With --ode
	every other variable y is a function of var and differentiates to y'.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := setup(cmd)
		ctx, cancel := computation(cmd)
		defer cancel()
		//
		e, err := symalg.Build(args[0], nil)
		if err != nil {
			fail(err)
		}
		var d symalg.Expression
		if getFlag(cmd, "ode") {
			d, err = symalg.DiffDifferentialEquation(e, args[1])
		} else {
			d, err = symalg.Diff(e, args[1])
		}
		if err != nil {
			fail(err)
		}
		log.Debugf("raw derivative: %s", d)
		if d, err = symalg.SimplifyWith(ctx, d, cfg); err != nil {
			fail(err)
		}
		emit(cmd, d)
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval [flags] formula",
	Short: "evaluate a formula numerically.",
	Long: `Evaluate a formula after substituting the assignments given with --set. Values
	are formulas themselves, so --set x=1/3 assigns the exact rational.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setup(cmd)
		assignments, err := cmd.Flags().GetStringArray("set")
		if err != nil {
			fail(err)
		}
		for _, a := range assignments {
			name, value, ok := strings.Cut(a, "=")
			if !ok {
				fail(fmt.Errorf("assignment %q is not of the form name=value", a))
			}
			if err := assign(strings.TrimSpace(name), value); err != nil {
				fail(err)
			}
		}
		e, err := symalg.Build(args[0], nil)
		if err != nil {
			fail(err)
		}
		v, err := symalg.ReplaceDefinedVariables(e).Evaluate()
		if err != nil {
			fail(err)
		}
		fmt.Println(v)
	},
}

var varsCmd = &cobra.Command{
	Use:   "vars formula",
	Short: "list the free variables of a formula.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setup(cmd)
		e, err := symalg.Build(args[0], nil)
		if err != nil {
			fail(err)
		}
		for _, name := range sortedVars(e) {
			fmt.Println(name)
		}
	},
}

func init() {
	diffCmd.Flags().Bool("ode", false, "treat other variables as functions of var")
	evalCmd.Flags().StringArray("set", nil, "assign a variable, e.g. --set x=2")
	for _, c := range []*cobra.Command{simplifyCmd, diffCmd} {
		c.Flags().Bool("json", false, "print the expression tree as json")
	}
}

// emit prints e either as formula text or, with --json, as its tree.
func emit(cmd *cobra.Command, e symalg.Expression) {
	if !getFlag(cmd, "json") {
		fmt.Println(e)
		return
	}
	js, err := symalg.ToJSON(e)
	if err != nil {
		fail(err)
	}
	fmt.Println(js)
}

// assign parses value and stores it for name, exactly when value is a
// precise constant.
func assign(name, value string) error {
	e, err := symalg.Build(value, nil)
	if err != nil {
		return err
	}
	if !symalg.IsConstant(e) {
		return fmt.Errorf("value of %s must be constant, got %s", name, e)
	}
	if c, ok := e.(*symalg.Constant); ok && !c.IsPrecise() {
		return symalg.SetVariableValue(name, c.Value())
	}
	return symalg.SetPreciseExpression(name, e)
}

func sortedVars(e symalg.Expression) []string {
	names := make([]string, 0)
	for name := range symalg.FreeVars(e) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
