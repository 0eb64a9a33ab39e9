package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertArchiveBacklog AlertType = "archive_backlog"
	AlertPromotedRatio  AlertType = "promoted_ratio"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AlertConfig holds the thresholds and the destination webhook.
type AlertConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
	// BacklogThreshold triggers an alert when that many archived results sit
	// unpromoted. Zero disables the check.
	BacklogThreshold int `yaml:"backlog_threshold" mapstructure:"backlog_threshold"`
	// MinPromotedRatio triggers an alert when the promoted ratio drops below
	// it and enough results are archived to make the ratio meaningful.
	MinPromotedRatio  float64 `yaml:"min_promoted_ratio" mapstructure:"min_promoted_ratio"`
	CheckIntervalSecs int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// Interval returns the check cadence, defaulting to five minutes.
func (c AlertConfig) Interval() time.Duration {
	if c.CheckIntervalSecs > 0 {
		return time.Duration(c.CheckIntervalSecs) * time.Second
	}
	return 5 * time.Minute
}

// Alerter evaluates a MetricsSnapshot against configured thresholds and sends
// alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    AlertConfig
	client *http.Client
}

func NewAlerter(cfg AlertConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *MetricsSnapshot) []Alert {
	var alerts []Alert
	now := time.Now().UTC()

	if a.cfg.BacklogThreshold > 0 && snap.ArchiveBacklog > a.cfg.BacklogThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertArchiveBacklog,
			Severity: "medium",
			Message: fmt.Sprintf(
				"Archive backlog %d exceeds threshold %d (%d archived / %d promoted)",
				snap.ArchiveBacklog, a.cfg.BacklogThreshold,
				snap.ArchivedResults, snap.PromotedResults,
			),
			Details: map[string]any{
				"backlog":   snap.ArchiveBacklog,
				"threshold": a.cfg.BacklogThreshold,
			},
			Timestamp: now,
		})
	}

	if a.cfg.MinPromotedRatio > 0 && snap.ArchivedResults >= 20 &&
		snap.PromotedRatio < a.cfg.MinPromotedRatio {
		alerts = append(alerts, Alert{
			Type:     AlertPromotedRatio,
			Severity: "low",
			Message: fmt.Sprintf(
				"Promoted ratio %.1f%% below threshold %.1f%%",
				snap.PromotedRatio*100, a.cfg.MinPromotedRatio*100,
			),
			Details: map[string]any{
				"ratio":     snap.PromotedRatio,
				"threshold": a.cfg.MinPromotedRatio,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts posts each alert to the configured webhook and returns the
// number delivered. Delivery failures are logged and skipped.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" {
		zap.L().Warn("monitoring: alert webhook not configured, dropping alerts",
			zap.Int("count", len(alerts)))
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.send(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func (a *Alerter) send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "monitoring: create alert request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: send alert")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("monitoring: alert webhook status %d", resp.StatusCode)
	}
	return nil
}
