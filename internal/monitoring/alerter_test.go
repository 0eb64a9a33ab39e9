package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateNoAlerts(t *testing.T) {
	a := NewAlerter(AlertConfig{BacklogThreshold: 100, MinPromotedRatio: 0.1})
	snap := &MetricsSnapshot{
		ArchivedResults: 50, PromotedResults: 40,
		ArchiveBacklog: 10, PromotedRatio: 0.8,
		CollectedAt: time.Now().UTC(),
	}
	assert.Empty(t, a.Evaluate(snap))
}

func TestEvaluateBacklogAlert(t *testing.T) {
	a := NewAlerter(AlertConfig{BacklogThreshold: 100})
	snap := &MetricsSnapshot{
		ArchivedResults: 300, PromotedResults: 50, ArchiveBacklog: 250,
	}

	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertArchiveBacklog, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "250")
}

func TestEvaluateRatioAlertNeedsEnoughResults(t *testing.T) {
	a := NewAlerter(AlertConfig{MinPromotedRatio: 0.5})

	// Too few archived results for a meaningful ratio.
	few := &MetricsSnapshot{ArchivedResults: 5, PromotedRatio: 0.0}
	assert.Empty(t, a.Evaluate(few))

	many := &MetricsSnapshot{ArchivedResults: 40, PromotedResults: 4, PromotedRatio: 0.1}
	alerts := a.Evaluate(many)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertPromotedRatio, alerts[0].Type)
}

func TestEvaluateZeroThresholdsDisableChecks(t *testing.T) {
	a := NewAlerter(AlertConfig{})
	snap := &MetricsSnapshot{ArchivedResults: 1000, ArchiveBacklog: 1000}
	assert.Empty(t, a.Evaluate(snap))
}

func TestSendAlerts(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var alert Alert
		require.NoError(t, json.NewDecoder(r.Body).Decode(&alert))
		assert.Equal(t, AlertArchiveBacklog, alert.Type)
		received.Add(1)
	}))
	defer server.Close()

	a := NewAlerter(AlertConfig{WebhookURL: server.URL, BacklogThreshold: 1})
	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertArchiveBacklog, Severity: "medium", Message: "backlog"},
	})
	assert.Equal(t, 1, sent)
	assert.Equal(t, int32(1), received.Load())
}

func TestSendAlertsNoWebhookConfigured(t *testing.T) {
	a := NewAlerter(AlertConfig{})
	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertArchiveBacklog}})
	assert.Zero(t, sent)
}

func TestSendAlertsSkipsFailedDeliveries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := NewAlerter(AlertConfig{WebhookURL: server.URL})
	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertArchiveBacklog}, {Type: AlertPromotedRatio},
	})
	assert.Equal(t, 1, sent)
}

func TestIntervalDefaultsToFiveMinutes(t *testing.T) {
	assert.Equal(t, 5*time.Minute, AlertConfig{}.Interval())
	assert.Equal(t, 30*time.Second, AlertConfig{CheckIntervalSecs: 30}.Interval())
}
