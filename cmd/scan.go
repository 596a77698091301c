package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/headgrade/headgrade/internal/fetcher"
	"github.com/headgrade/headgrade/internal/scanner"
	"github.com/headgrade/headgrade/internal/storage"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url> [url...]",
	Short: "Fetch response headers from targets and grade their security posture",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runtimeCfg := newScanRuntimeConfig()
		runtimeCfg.TimeoutSecs, _ = cmd.Flags().GetInt("timeout")
		runtimeCfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		runtimeCfg.RateLimit, _ = cmd.Flags().GetInt("rate-limit")
		runtimeCfg.Insecure, _ = cmd.Flags().GetBool("insecure")
		runtimeCfg.applyConfigOverrides(cmd.Flags())

		output, _ := cmd.Flags().GetString("output")
		noSave, _ := cmd.Flags().GetBool("no-save")

		scoreOpts, err := loadScoreOptions()
		if err != nil {
			return err
		}

		runner := &fetcher.Runner{
			Concurrency: runtimeCfg.Concurrency,
			RateLimit:   runtimeCfg.RateLimit,
			Timeout:     time.Duration(runtimeCfg.TimeoutSecs) * time.Second,
			Fetcher:     &fetcher.Fetcher{Timeout: time.Duration(runtimeCfg.TimeoutSecs) * time.Second, Insecure: runtimeCfg.Insecure},
			Options:     scoreOpts,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		startedAt := time.Now().UTC()
		logger.Infow("scan starting", "targets", len(args), "concurrency", runtimeCfg.Concurrency)
		results := runner.Run(ctx, args)

		if !noSave {
			store, err := storage.NewStore(resultsDir)
			if err != nil {
				return err
			}
			run := &storage.Run{
				StartedAt:   startedAt,
				CompletedAt: time.Now().UTC(),
				Results:     results,
			}
			if err := store.Save(run); err != nil {
				return err
			}
			defer fmt.Printf("%s %s\n", colorInfo("Results:"), store.Path())
		}

		switch output {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		case "console":
			printScanSummary(results)
			return nil
		default:
			return fmt.Errorf("invalid output format: %s (must be console or json)", output)
		}
	},
}

// printScanSummary renders a per-target console overview with the findings
// that need attention first.
func printScanSummary(results []scanner.ScanResult) {
	for _, result := range results {
		fmt.Println()
		if result.Error != "" {
			fmt.Printf("%s %s — %s (grade %s)\n", colorError("✗"), result.Target, result.Error, formatGrade(result.Grade))
			continue
		}

		fmt.Printf("%s %s — score %d/100, grade %s\n",
			colorSuccess("✓"), result.Target, result.Score, formatGrade(result.Grade))

		for _, cat := range scanner.ScoredCategories {
			score := result.Breakdown.Categories[cat]
			fmt.Printf("  %-10s %5.1f/%5.1f pts (contributes %.1f)\n",
				cat, score.Earned, score.Total, score.Contribution)
		}
		if result.Breakdown.DisclosurePenalty > 0 {
			fmt.Printf("  %s -%.1f disclosure penalty\n", colorWarn("!"), result.Breakdown.DisclosurePenalty)
		}
		if result.Breakdown.CookiePenalty > 0 {
			fmt.Printf("  %s -%.1f cookie penalty\n", colorWarn("!"), result.Breakdown.CookiePenalty)
		}

		for _, finding := range result.Findings {
			if finding.Status == scanner.StatusPresent {
				continue
			}
			issue := finding.Issue
			if issue == "" {
				issue = string(finding.Status)
			}
			fmt.Printf("  [%s] %s: %s\n", formatSeverity(finding.Severity), finding.Header, issue)
		}
	}
}

func init() {
	scanCmd.Flags().Int("timeout", defaultTimeoutSeconds, "per-target fetch timeout in seconds")
	scanCmd.Flags().Int("concurrency", defaultConcurrency, "maximum concurrent fetches")
	scanCmd.Flags().Int("rate-limit", defaultRateLimit, "global requests per second")
	scanCmd.Flags().Bool("insecure", false, "skip TLS certificate verification (lab targets only)")
	scanCmd.Flags().String("output", "console", "output format: console or json")
	scanCmd.Flags().Bool("no-save", false, "do not persist results.json")
}
