// Package cliconfig loads SolvePolicy defaults and runtime options for
// cmd/isrplan from a YAML file plus environment variables, following a
// .env-then-flags startup convention.
package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ksali98/isr-planner-sub001/isrcore"
)

// Config is the resolved CLI configuration: a default SolvePolicy plus a few
// runtime knobs the core module itself has no opinion about.
type Config struct {
	Policy isrcore.SolvePolicy

	// CacheDir is where the REPL keeps its readline history.
	CacheDir string

	// ThreatMargin is the escape margin read from config or the environment,
	// defaulting to isrcore.ThreatMargin. It is not passed on to package segment:
	// Machine.Cut always escapes with isrcore.ThreatMargin.
	ThreatMargin float64
}

// yamlDoc is the on-disk YAML shape: plain strings/primitives rather than the
// typed enums isrcore.SolvePolicy itself uses, so a hand-written config file
// stays readable without importing isrcore's constants.
type yamlDoc struct {
	CacheDir     string `yaml:"cache_dir"`
	ThreatMargin float64 `yaml:"threat_margin"`
	Policy       struct {
		Strategy          string `yaml:"strategy"`
		InsertMissed      bool   `yaml:"insert_missed"`
		TrajectorySwap    bool   `yaml:"trajectory_swap"`
		TwoOptUncross     bool   `yaml:"two_opt_uncross"`
		PerVehicleTimeout string `yaml:"per_vehicle_timeout"`
		MaxCandidates     int    `yaml:"max_candidates"`
		AllowCapOverride  bool   `yaml:"allow_cap_override"`
	} `yaml:"policy"`
}

// Default returns the library defaults used when no file/env overrides exist.
func Default() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		CacheDir:     homeDir + "/.cache/isrplan",
		ThreatMargin: isrcore.ThreatMargin,
		Policy: isrcore.SolvePolicy{
			Strategy: isrcore.StrategyEfficient,
			PostOpt: isrcore.PostOptFlags{
				InsertMissed:   true,
				TrajectorySwap: true,
				TwoOptUncross:  true,
			},
			PerVehicleTimeout: 30 * time.Second,
			MaxCandidates:     isrcore.DefaultMaxCandidates,
		},
	}
}

// Load reads .env (if present, silently ignored if absent) then a YAML config
// file at path (if path is non-empty and the file exists), then applies
// ISRPLAN_* environment overrides, starting from Default().
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var doc yamlDoc
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return Config{}, fmt.Errorf("cliconfig: parse %s: %w", path, err)
			}
			applyYAML(&cfg, doc)
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("cliconfig: read %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyYAML(cfg *Config, doc yamlDoc) {
	if doc.CacheDir != "" {
		cfg.CacheDir = doc.CacheDir
	}
	if doc.ThreatMargin != 0 {
		cfg.ThreatMargin = doc.ThreatMargin
	}
	if strategy, ok := parseStrategy(doc.Policy.Strategy); ok {
		cfg.Policy.Strategy = strategy
	}
	cfg.Policy.PostOpt.InsertMissed = cfg.Policy.PostOpt.InsertMissed || doc.Policy.InsertMissed
	cfg.Policy.PostOpt.TrajectorySwap = cfg.Policy.PostOpt.TrajectorySwap || doc.Policy.TrajectorySwap
	cfg.Policy.PostOpt.TwoOptUncross = cfg.Policy.PostOpt.TwoOptUncross || doc.Policy.TwoOptUncross
	if doc.Policy.PerVehicleTimeout != "" {
		if d, err := time.ParseDuration(doc.Policy.PerVehicleTimeout); err == nil {
			cfg.Policy.PerVehicleTimeout = d
		}
	}
	if doc.Policy.MaxCandidates > 0 {
		cfg.Policy.MaxCandidates = doc.Policy.MaxCandidates
	}
	cfg.Policy.AllowCapOverride = cfg.Policy.AllowCapOverride || doc.Policy.AllowCapOverride
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("ISRPLAN_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("ISRPLAN_THREAT_MARGIN"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("cliconfig: ISRPLAN_THREAT_MARGIN: %w", err)
		}
		cfg.ThreatMargin = f
	}
	if v := os.Getenv("ISRPLAN_MAX_CANDIDATES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("cliconfig: ISRPLAN_MAX_CANDIDATES: %w", err)
		}
		cfg.Policy.MaxCandidates = n
	}
	if v := os.Getenv("ISRPLAN_STRATEGY"); v != "" {
		strategy, ok := parseStrategy(v)
		if !ok {
			return fmt.Errorf("cliconfig: ISRPLAN_STRATEGY: unknown strategy %q", v)
		}
		cfg.Policy.Strategy = strategy
	}
	return nil
}

func parseStrategy(s string) (isrcore.AllocationStrategy, bool) {
	switch s {
	case "efficient":
		return isrcore.StrategyEfficient, true
	case "greedy":
		return isrcore.StrategyGreedy, true
	case "balanced":
		return isrcore.StrategyBalanced, true
	case "geographic":
		return isrcore.StrategyGeographic, true
	case "exclusive":
		return isrcore.StrategyExclusive, true
	default:
		return 0, false
	}
}
