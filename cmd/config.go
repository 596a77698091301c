package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/headgrade/headgrade/internal/scanner"
)

const (
	defaultTimeoutSeconds = 10
	defaultConcurrency    = 4
	defaultRateLimit      = 5
)

// ScanRuntimeConfig consolidates flag- and config-driven settings for the
// scan and serve commands.
type ScanRuntimeConfig struct {
	TimeoutSecs int
	Concurrency int
	RateLimit   int
	Insecure    bool
}

func newScanRuntimeConfig() ScanRuntimeConfig {
	return ScanRuntimeConfig{
		TimeoutSecs: defaultTimeoutSeconds,
		Concurrency: defaultConcurrency,
		RateLimit:   defaultRateLimit,
	}
}

// applyConfigOverrides merges config-file values into the runtime config.
// Flags set explicitly by the operator win over the config file.
func (c *ScanRuntimeConfig) applyConfigOverrides(flags *pflag.FlagSet) {
	if viper.IsSet("scan.timeout_secs") && !flags.Changed("timeout") {
		c.TimeoutSecs = viper.GetInt("scan.timeout_secs")
	}
	if viper.IsSet("scan.concurrency") && !flags.Changed("concurrency") {
		c.Concurrency = viper.GetInt("scan.concurrency")
	}
	if viper.IsSet("scan.rate_limit") && !flags.Changed("rate-limit") {
		c.RateLimit = viper.GetInt("scan.rate_limit")
	}
}

// loadScoreOptions builds scanner options from the documented defaults plus
// any config-file overrides, and validates them. Invalid scoring config is
// a startup error so evaluation itself never fails.
func loadScoreOptions() (scanner.Options, error) {
	opts := scanner.DefaultOptions()

	if viper.IsSet("score.category_weights") {
		weights := viper.GetStringMap("score.category_weights")
		for name := range weights {
			key := fmt.Sprintf("score.category_weights.%s", name)
			opts.CategoryWeights[scanner.Category(name)] = viper.GetFloat64(key)
		}
	}
	if viper.IsSet("score.disclosure_cap") {
		opts.DisclosureCap = viper.GetFloat64("score.disclosure_cap")
	}
	if viper.IsSet("score.cookie_cap") {
		opts.CookieCap = viper.GetFloat64("score.cookie_cap")
	}
	if viper.IsSet("score.grade_thresholds") {
		var thresholds []scanner.GradeThreshold
		if err := viper.UnmarshalKey("score.grade_thresholds", &thresholds); err != nil {
			return opts, fmt.Errorf("invalid score.grade_thresholds: %w", err)
		}
		opts.GradeThresholds = thresholds
	}

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	return opts, nil
}
