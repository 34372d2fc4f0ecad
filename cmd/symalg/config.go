package main

import (
	"fmt"
	"os"

	"github.com/njchilds90/symalg"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk form of symalg.Config. Zero fields keep their
// defaults.
//
//	passes: [trivial, order_sums_and_products]
//	max_algebraic_exponent: 4
//	max_rounds: 50
type fileConfig struct {
	Passes               []string `yaml:"passes"`
	MaxAlgebraicExponent int      `yaml:"max_algebraic_exponent"`
	MaxPolynomialDegree  int      `yaml:"max_polynomial_degree"`
	MaxDepth             int      `yaml:"max_depth"`
	MaxRounds            int      `yaml:"max_rounds"`
}

// loadConfig reads the simplifier configuration from path, or returns the
// default configuration when path is empty.
func loadConfig(path string) (symalg.Config, error) {
	cfg := symalg.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (symalg.Config, error) {
	cfg := symalg.DefaultConfig()
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if len(fc.Passes) > 0 {
		passes, err := symalg.ParsePasses(fc.Passes)
		if err != nil {
			return cfg, err
		}
		cfg.Passes = passes
	}
	if fc.MaxAlgebraicExponent > 0 {
		cfg.MaxAlgebraicExponent = fc.MaxAlgebraicExponent
	}
	if fc.MaxPolynomialDegree > 0 {
		cfg.MaxPolynomialDegree = fc.MaxPolynomialDegree
	}
	if fc.MaxDepth > 0 {
		cfg.MaxDepth = fc.MaxDepth
	}
	if fc.MaxRounds > 0 {
		cfg.MaxRounds = fc.MaxRounds
	}
	log.Debugf("loaded config: %+v", fc)
	return cfg, nil
}
