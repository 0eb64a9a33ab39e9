package lead

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// InsightKind names a known insight variant.
type InsightKind string

// Known insight kinds. Anything else round-trips as InsightRaw.
const (
	InsightContentAudit     InsightKind = "contentAudit"
	InsightFacebookAds      InsightKind = "runningFacebookAds"
	InsightSimilarCompanies InsightKind = "similarCompanies"
	InsightRaw              InsightKind = "raw"
)

// Insight is a tagged union over the known insight payloads. Exactly one of
// the variant pointers is set, matching Kind.
type Insight struct {
	Kind             InsightKind       `json:"kind"`
	ContentAudit     *ContentAudit     `json:"contentAudit,omitempty"`
	FacebookAds      *FacebookAds      `json:"runningFacebookAds,omitempty"`
	SimilarCompanies *SimilarCompanies `json:"similarCompanies,omitempty"`
	Raw              *RawInsight       `json:"raw,omitempty"`
}

// ContentAudit summarizes a website content audit.
type ContentAudit struct {
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"timestamp"`
}

// FacebookAds records whether a company is running ads and any detail the
// detector returned.
type FacebookAds struct {
	Running    bool            `json:"running"`
	AdDetails  json.RawMessage `json:"adDetails,omitempty"`
	DetectedAt time.Time       `json:"timestamp"`
}

// SimilarCompanies lists lookalike companies by name.
type SimilarCompanies struct {
	Names       []string  `json:"names"`
	GeneratedAt time.Time `json:"timestamp"`
}

// RawInsight is the envelope for a non-JSON or unrecognized webhook response.
type RawInsight struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRawInsight wraps raw webhook text in the standard envelope.
func NewRawInsight(content string) Insight {
	return Insight{
		Kind: InsightRaw,
		Raw:  &RawInsight{Content: content, Timestamp: time.Now().UTC()},
	}
}

// Validate checks that exactly the variant named by Kind is populated.
func (i Insight) Validate() error {
	var want bool
	switch i.Kind {
	case InsightContentAudit:
		want = i.ContentAudit != nil
	case InsightFacebookAds:
		want = i.FacebookAds != nil
	case InsightSimilarCompanies:
		want = i.SimilarCompanies != nil
	case InsightRaw:
		want = i.Raw != nil
	default:
		return eris.Errorf("lead: unknown insight kind %q", i.Kind)
	}
	if !want {
		return eris.Errorf("lead: insight kind %q has no payload", i.Kind)
	}
	return nil
}

// InsightSet maps insight kind to the latest insight of that kind. It is the
// JSON shape persisted on the company row.
type InsightSet map[InsightKind]Insight

// Put replaces the entry for the insight's kind. A nil receiver map is
// allocated by the store before calling.
func (s InsightSet) Put(i Insight) {
	s[i.Kind] = i
}
