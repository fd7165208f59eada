package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/riskibarqy/kleague-reconciler/internal/app"
	"github.com/riskibarqy/kleague-reconciler/internal/config"
	"github.com/riskibarqy/kleague-reconciler/internal/observability"
	"github.com/riskibarqy/kleague-reconciler/internal/platform/logging"
	"github.com/spf13/cobra"
)

const (
	credentialsAnnotation = "credentials"
	metricsJob            = "kleague_reconcile"
)

// runtime is the per-invocation state shared by every subcommand.
type runtime struct {
	out       io.Writer
	cfg       config.Config
	logger    *logging.Logger
	container *app.Container
	shutdowns []func(context.Context) error
	startedAt time.Time
}

func requiredCredentials(cmd *cobra.Command) []string {
	raw := strings.TrimSpace(cmd.Annotations[credentialsAnnotation])
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// setup loads configuration and checks credentials before anything touches
// the network or the store.
func (rt *runtime) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Require(requiredCredentials(cmd)...); err != nil {
		return err
	}
	rt.cfg = cfg
	rt.startedAt = time.Now()

	rt.logger = logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.SetDefault(rt.logger)

	shutdownTracing, err := observability.InitUptrace(cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	rt.shutdowns = append(rt.shutdowns, shutdownTracing)

	stopProfiling, err := observability.InitPyroscope(cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	rt.shutdowns = append(rt.shutdowns, func(context.Context) error { return stopProfiling() })

	container, err := app.Build(cmd.Context(), cfg, rt.logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	rt.container = container
	return nil
}

// teardown pushes metrics and flushes telemetry. It runs even when the
// command was interrupted or setup stopped halfway, so it gets its own
// deadline and skips whatever was never started.
func (rt *runtime) teardown(cmd *cobra.Command) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 10*time.Second)
	defer cancel()

	if rt.container != nil {
		rt.container.Metrics.SetLastRunDuration(time.Since(rt.startedAt))
		if err := rt.container.Metrics.Push(ctx, rt.cfg.MetricsPushgatewayURL, metricsJob); err != nil {
			rt.logger.WarnContext(ctx, "push metrics failed", "error", err)
		}
		if err := rt.container.Close(); err != nil {
			rt.logger.WarnContext(ctx, "close store failed", "error", err)
		}
	}
	for i := len(rt.shutdowns) - 1; i >= 0; i-- {
		if err := rt.shutdowns[i](ctx); err != nil {
			rt.logger.WarnContext(ctx, "telemetry shutdown failed", "error", err)
		}
	}
	rt.shutdowns = nil
	if rt.logger != nil {
		_ = rt.logger.Sync()
	}
}

func (rt *runtime) leagues() []string {
	return rt.cfg.ReconcileLeagueIDs
}

func (rt *runtime) season() string {
	return rt.cfg.ReconcileSeason
}
