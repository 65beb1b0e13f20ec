package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// CycleSummary reports one ingest, price and compute pass.
type CycleSummary struct {
	Ingested int
	Priced   int
	Failed   int
	Compute  *interfaces.RunSummary
}

// RunCycle ingests every scheduled symbol from the configured provider,
// refreshes prices when an EODHD client is available, then computes all
// metrics for the symbols that ingested. Per-symbol failures are logged and
// counted. Overlapping cycles are serialized.
func (a *App) RunCycle(ctx context.Context) (*CycleSummary, error) {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()

	symbols := a.Config.Schedule.Symbols
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured under schedule.symbols")
	}
	provider := strings.ToUpper(a.Config.Schedule.Provider)
	if provider == "" {
		provider = models.ProviderSEC
	}

	start := time.Now()
	summary := &CycleSummary{}
	ready := make([]string, 0, len(symbols))

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		var err error
		switch provider {
		case models.ProviderEODHD:
			_, err = a.IngestService.IngestEODHD(ctx, symbol)
		default:
			_, err = a.IngestService.IngestSEC(ctx, symbol, "")
		}
		if err != nil {
			summary.Failed++
			a.Logger.Warn().Str("symbol", symbol).Str("provider", provider).Err(err).Msg("Scheduled ingest failed")
			continue
		}
		summary.Ingested++
		ready = append(ready, strings.ToUpper(symbol))

		if a.EODHDClient == nil {
			continue
		}
		if _, err := a.MarketDataService.Refresh(ctx, symbol); err != nil {
			a.Logger.Warn().Str("symbol", symbol).Err(err).Msg("Scheduled price refresh failed")
			continue
		}
		summary.Priced++
	}

	if len(ready) > 0 {
		run, err := a.ComputeService.Run(ctx, interfaces.ComputeRequest{Symbols: ready})
		summary.Compute = run
		if err != nil {
			return summary, err
		}
	}

	a.Logger.Info().
		Str("provider", provider).
		Int("ingested", summary.Ingested).
		Int("priced", summary.Priced).
		Int("failed", summary.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled cycle: complete")
	return summary, nil
}

// StartScheduler registers RunCycle on schedule.cron and starts the cron
// runner. Cycles run with ctx and stop when it is cancelled.
func (a *App) StartScheduler(ctx context.Context) error {
	spec := strings.TrimSpace(a.Config.Schedule.Cron)
	if spec == "" {
		return fmt.Errorf("schedule.cron not configured")
	}
	if a.scheduler != nil {
		return fmt.Errorf("scheduler already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := a.RunCycle(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("Scheduled cycle failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	c.Start()
	a.scheduler = c
	a.Logger.Info().
		Str("cron", spec).
		Int("symbols", len(a.Config.Schedule.Symbols)).
		Msg("Scheduler started")
	return nil
}

// StopScheduler stops the cron runner and waits for a running cycle.
func (a *App) StopScheduler() {
	if a.scheduler == nil {
		return
	}
	<-a.scheduler.Stop().Done()
	a.scheduler = nil
	a.Logger.Info().Msg("Scheduler stopped")
}
