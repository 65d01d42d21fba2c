package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/stackcalc"
)

// Config is the contents of a configuration file. Flags given on the command
// line override it.
type Config struct {
	// Arith is the element type: float64 or big.
	Arith string `yaml:"arith"`
	// Prec is the precision of big calculations in bits.
	Prec uint `yaml:"prec"`
	// MaxDepth is the maximum subroutine nesting depth.
	MaxDepth int `yaml:"max_depth"`
	// Scope is the subroutine scope policy: chain, filter, or copy.
	Scope string `yaml:"scope"`
	// Fill is the value filling arrays grown by indexed assignment.
	Fill float64 `yaml:"fill"`
	// Trace enables operator tracing to stderr.
	Trace bool `yaml:"trace"`
	// Given maps variable names to expressions giving their values.
	Given map[string]string `yaml:"given"`
	// Prelude holds statements evaluated before any input.
	Prelude []string `yaml:"prelude"`
}

func defaultConfig() Config {
	return Config{Arith: "float64", Prec: 64, MaxDepth: 256, Scope: "chain"}
}

// loadConfig reads a configuration file over the defaults. An empty path
// gives the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.Arith {
	case "float64", "big":
	default:
		return errors.Errorf("arith must be float64 or big, not %q", cfg.Arith)
	}
	if cfg.MaxDepth <= 0 {
		return errors.Errorf("max_depth (%d) must be positive", cfg.MaxDepth)
	}
	if _, err := stackcalc.ParseScope(cfg.Scope); err != nil {
		return err
	}
	return nil
}

// options converts the configuration to environment options.
func (cfg Config) options() []stackcalc.Option {
	scope, _ := stackcalc.ParseScope(cfg.Scope)
	return []stackcalc.Option{
		stackcalc.MaxDepth(cfg.MaxDepth),
		stackcalc.Scope(scope),
		stackcalc.Fill(cfg.Fill),
	}
}
