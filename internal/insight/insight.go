// Package insight generates company insights through the configured webhooks
// and persists them on the company record.
package insight

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
)

// Hooks is the subset of the webhook client the service needs.
type Hooks interface {
	ContentAudit(ctx context.Context, website string) ([]byte, error)
	FacebookAds(ctx context.Context, companyName string) ([]byte, error)
	SimilarCompanies(ctx context.Context, domain string) ([]byte, error)
}

var _ Hooks = (*hook.Client)(nil)

// Service runs one insight webhook and stores the outcome.
type Service struct {
	store store.Store
	hooks Hooks
	log   *zap.Logger
}

func NewService(st store.Store, hooks Hooks) *Service {
	return &Service{store: st, hooks: hooks, log: zap.L().Named("insight")}
}

// Generate runs the webhook for the given kind against a company and saves
// the result into the company's insight set, replacing any previous insight
// of that kind.
func (s *Service) Generate(ctx context.Context, companyID string, kind lead.InsightKind) (*lead.Insight, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, eris.Errorf("insight: company not found: %s", companyID)
	}

	var body []byte
	switch kind {
	case lead.InsightContentAudit:
		if company.Website == "" {
			return nil, eris.Errorf("insight: company %s has no website for content audit", companyID)
		}
		body, err = s.hooks.ContentAudit(ctx, company.Website)
	case lead.InsightFacebookAds:
		body, err = s.hooks.FacebookAds(ctx, company.Name)
	case lead.InsightSimilarCompanies:
		if company.Website == "" {
			return nil, eris.Errorf("insight: company %s has no website for lookalikes", companyID)
		}
		body, err = s.hooks.SimilarCompanies(ctx, company.Website)
	default:
		return nil, eris.Errorf("insight: unsupported kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	ins := decode(kind, body)
	if err := s.store.PutCompanyInsight(ctx, companyID, ins); err != nil {
		return nil, err
	}
	s.log.Info("insight generated",
		zap.String("company_id", companyID),
		zap.String("kind", string(ins.Kind)))
	return &ins, nil
}

// decode turns a webhook response into the typed variant for its kind. A body
// that is not valid JSON for the expected shape falls back to the raw
// variant so the response is never lost.
func decode(kind lead.InsightKind, body []byte) lead.Insight {
	switch kind {
	case lead.InsightContentAudit:
		var v lead.ContentAudit
		if json.Unmarshal(body, &v) == nil && v.Content != "" {
			v.GeneratedAt = time.Now().UTC()
			return lead.Insight{Kind: kind, ContentAudit: &v}
		}
	case lead.InsightFacebookAds:
		var v lead.FacebookAds
		if json.Unmarshal(body, &v) == nil && hasKey(body, "running") {
			v.DetectedAt = time.Now().UTC()
			return lead.Insight{Kind: kind, FacebookAds: &v}
		}
	case lead.InsightSimilarCompanies:
		var v lead.SimilarCompanies
		if json.Unmarshal(body, &v) == nil && len(v.Names) > 0 {
			v.GeneratedAt = time.Now().UTC()
			return lead.Insight{Kind: kind, SimilarCompanies: &v}
		}
	}
	return lead.NewRawInsight(string(body))
}

func hasKey(body []byte, key string) bool {
	var m map[string]json.RawMessage
	if json.Unmarshal(body, &m) != nil {
		return false
	}
	_, ok := m[key]
	return ok
}
