package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Checker evaluates the alert thresholds on a fixed cadence.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	interval  time.Duration
	log       *zap.Logger
}

func NewChecker(collector *Collector, alerter *Alerter, cfg AlertConfig) *Checker {
	return &Checker{
		collector: collector,
		alerter:   alerter,
		interval:  cfg.Interval(),
		log:       zap.L().Named("monitoring"),
	}
}

// Run checks once immediately, then on every tick until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	c.log.Info("alert checker started", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.check(ctx)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("alert checker stopped")
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *Checker) check(ctx context.Context) {
	snap, err := c.collector.Collect(ctx)
	if err != nil {
		c.log.Error("metrics collection failed", zap.Error(err))
		return
	}

	alerts := c.alerter.Evaluate(snap)
	if len(alerts) == 0 {
		c.log.Debug("no alerts triggered")
		return
	}

	sent := c.alerter.SendAlerts(ctx, alerts)
	c.log.Info("alert check complete",
		zap.Int("triggered", len(alerts)),
		zap.Int("sent", sent))
}
