package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headgrade/headgrade/internal/api"
	"github.com/headgrade/headgrade/internal/fetcher"
	"github.com/headgrade/headgrade/internal/scanner"
)

// scanAPIService adapts the fetcher + engine to the REST ScanService.
type scanAPIService struct {
	defaults ScanRuntimeConfig
	options  scanner.Options
}

func (s *scanAPIService) Scan(ctx context.Context, req api.ScanRequest) (scanner.ScanResult, error) {
	timeout := s.defaults.TimeoutSecs
	if req.Options.TimeoutSecs > 0 {
		timeout = req.Options.TimeoutSecs
	}

	f := &fetcher.Fetcher{
		Timeout:  time.Duration(timeout) * time.Second,
		Insecure: req.Options.Insecure,
	}

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	resp, err := f.Fetch(fetchCtx, req.URL)
	if err != nil {
		// Unreachable targets are a scan outcome, not a transport error.
		return scanner.ErrorResult(req.URL, err), nil
	}
	return scanner.Evaluate(resp.URL, resp.StatusCode, scanner.NewHeaders(resp.Headers), s.options), nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run headgrade as a REST API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		authToken, _ := cmd.Flags().GetString("auth-token")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("rate-burst")

		runtimeCfg := newScanRuntimeConfig()
		runtimeCfg.applyConfigOverrides(cmd.Flags())

		scoreOpts, err := loadScoreOptions()
		if err != nil {
			return err
		}

		apiLogger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = apiLogger.Sync() }()

		server := api.NewServer(api.Config{
			Scans:       &scanAPIService{defaults: runtimeCfg, options: scoreOpts},
			AuthToken:   authToken,
			Logger:      apiLogger,
			CORSOrigins: corsOrigins,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
		})

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("%s API server listening on %s\n", colorInfo("→"), addr)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("could not stop server: %w", closeErr)
				}
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			fmt.Printf("%s Server stopped\n", colorSuccess("✓"))
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("auth-token", "", "require X-Auth-Token on scan requests")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (empty = allow all)")
	serveCmd.Flags().Int("rate-limit", 0, "requests per second per client IP (0 = disabled)")
	serveCmd.Flags().Int("rate-burst", 5, "burst size for the per-IP rate limiter")
}
