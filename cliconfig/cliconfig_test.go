package cliconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksali98/isr-planner-sub001/isrcore"
	"github.com/ksali98/isr-planner-sub001/cliconfig"
)

func TestDefaultResolvesUsableSolvePolicy(t *testing.T) {
	cfg := cliconfig.Default()
	assert.Equal(t, isrcore.DefaultMaxCandidates, cfg.Policy.MaxCandidates)
	assert.Equal(t, isrcore.StrategyEfficient, cfg.Policy.Strategy)
	assert.True(t, cfg.Policy.PostOpt.InsertMissed)
}

func TestLoadAppliesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
cache_dir: /tmp/isrplan-test
threat_margin: 1.25
policy:
  strategy: greedy
  max_candidates: 9
  per_vehicle_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0644))

	cfg, err := cliconfig.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/isrplan-test", cfg.CacheDir)
	assert.InDelta(t, 1.25, cfg.ThreatMargin, 1e-9)
	assert.Equal(t, isrcore.StrategyGreedy, cfg.Policy.Strategy)
	assert.Equal(t, 9, cfg.Policy.MaxCandidates)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("ISRPLAN_MAX_CANDIDATES", "20")
	t.Setenv("ISRPLAN_STRATEGY", "balanced")

	cfg, err := cliconfig.Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Policy.MaxCandidates)
	assert.Equal(t, isrcore.StrategyBalanced, cfg.Policy.Strategy)
}

func TestLoadRejectsUnknownEnvStrategy(t *testing.T) {
	t.Setenv("ISRPLAN_STRATEGY", "not-a-strategy")
	_, err := cliconfig.Load("")
	assert.Error(t, err)
}

func TestLoadToleratesMissingFile(t *testing.T) {
	_, err := cliconfig.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
}
