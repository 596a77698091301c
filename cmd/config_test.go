package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/headgrade/headgrade/internal/scanner"
)

func newTestFlagSet(t *testing.T) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("timeout", defaultTimeoutSeconds, "")
	flags.Int("concurrency", defaultConcurrency, "")
	flags.Int("rate-limit", defaultRateLimit, "")
	return flags
}

func TestApplyConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("scan.timeout_secs", 25)
	viper.Set("scan.concurrency", 8)

	flags := newTestFlagSet(t)
	if err := flags.Set("timeout", "3"); err != nil {
		t.Fatal(err)
	}

	cfg := newScanRuntimeConfig()
	cfg.TimeoutSecs = 3
	cfg.applyConfigOverrides(flags)

	if cfg.TimeoutSecs != 3 {
		t.Errorf("explicit flag must win over config, got timeout %d", cfg.TimeoutSecs)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("config value not applied, got concurrency %d", cfg.Concurrency)
	}
	if cfg.RateLimit != defaultRateLimit {
		t.Errorf("unset key must keep default, got rate limit %d", cfg.RateLimit)
	}
}

func TestLoadScoreOptionsDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	opts, err := loadScoreOptions()
	if err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if opts.CategoryWeights[scanner.CategoryEssential] != 60 {
		t.Errorf("unexpected essential weight %v", opts.CategoryWeights[scanner.CategoryEssential])
	}
}

func TestLoadScoreOptionsOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("score.category_weights.essential", 50)
	viper.Set("score.category_weights.advanced", 35)
	viper.Set("score.disclosure_cap", 5)

	opts, err := loadScoreOptions()
	if err != nil {
		t.Fatalf("override still sums to 100, want no error: %v", err)
	}
	if opts.CategoryWeights[scanner.CategoryEssential] != 50 || opts.CategoryWeights[scanner.CategoryAdvanced] != 35 {
		t.Errorf("weights not applied: %v", opts.CategoryWeights)
	}
	if opts.DisclosureCap != 5 {
		t.Errorf("disclosure cap not applied: %v", opts.DisclosureCap)
	}
}

func TestLoadScoreOptionsRejectsBadWeights(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("score.category_weights.essential", 90)

	if _, err := loadScoreOptions(); err == nil {
		t.Error("weights summing to 130 must be rejected at load time")
	}
}
