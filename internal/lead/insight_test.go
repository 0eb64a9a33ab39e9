package lead

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightValidate(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name    string
		insight Insight
		wantErr bool
	}{
		{"content_audit_ok", Insight{Kind: InsightContentAudit, ContentAudit: &ContentAudit{Content: "x", GeneratedAt: now}}, false},
		{"facebook_ads_ok", Insight{Kind: InsightFacebookAds, FacebookAds: &FacebookAds{Running: true, DetectedAt: now}}, false},
		{"similar_ok", Insight{Kind: InsightSimilarCompanies, SimilarCompanies: &SimilarCompanies{Names: []string{"a"}, GeneratedAt: now}}, false},
		{"raw_ok", NewRawInsight("<html>audit</html>"), false},
		{"missing_payload", Insight{Kind: InsightContentAudit}, true},
		{"unknown_kind", Insight{Kind: "novel"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.insight.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInsightSetRoundTrip(t *testing.T) {
	set := InsightSet{}
	set.Put(NewRawInsight("raw body"))
	set.Put(Insight{Kind: InsightFacebookAds, FacebookAds: &FacebookAds{Running: true, AdDetails: json.RawMessage(`{"count":3}`), DetectedAt: time.Now().UTC()}})

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var back InsightSet
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 2)
	require.NotNil(t, back[InsightFacebookAds].FacebookAds)
	assert.True(t, back[InsightFacebookAds].FacebookAds.Running)
	assert.JSONEq(t, `{"count":3}`, string(back[InsightFacebookAds].FacebookAds.AdDetails))
	require.NotNil(t, back[InsightRaw].Raw)
	assert.Equal(t, "raw body", back[InsightRaw].Raw.Content)
}

func TestInsightSetPutReplacesKind(t *testing.T) {
	set := InsightSet{}
	set.Put(NewRawInsight("first"))
	set.Put(NewRawInsight("second"))
	require.Len(t, set, 1)
	assert.Equal(t, "second", set[InsightRaw].Raw.Content)
}
