// Package hook posts to the operator-configured webhooks that back
// enrichment, insights, CRM export and outbound email. Each webhook is a
// plain HTTPS endpoint; the dashboard never talks to those vendors directly.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Config names the webhook endpoints. Any endpoint may be left empty; calling
// an unconfigured hook fails before any network traffic.
type Config struct {
	EnrichURL           string `yaml:"enrich_url" mapstructure:"enrich_url"`
	ContentAuditURL     string `yaml:"content_audit_url" mapstructure:"content_audit_url"`
	FacebookAdsURL      string `yaml:"facebook_ads_url" mapstructure:"facebook_ads_url"`
	SimilarCompaniesURL string `yaml:"similar_companies_url" mapstructure:"similar_companies_url"`
	CRMExportURL        string `yaml:"crm_export_url" mapstructure:"crm_export_url"`
	EmailURL            string `yaml:"email_url" mapstructure:"email_url"`
}

// Option configures the webhook client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout overrides the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client posts JSON payloads to the configured webhooks.
type Client struct {
	cfg     Config
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a webhook client. Every call gets a 30 second deadline by
// default; a hook that exceeds it is abandoned mid-flight.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		timeout: 30 * time.Second,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnrichRequest identifies the person the enrichment webhook should look up.
// ContactID carries the provider's external id for the person.
type EnrichRequest struct {
	ContactID   string `json:"contactId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CompanyName string `json:"companyName"`
}

// Enrich asks the enrichment webhook for the full provider record of one
// person. The response body is returned verbatim.
func (c *Client) Enrich(ctx context.Context, req EnrichRequest) (json.RawMessage, error) {
	body, err := c.post(ctx, "enrich", c.cfg.EnrichURL, req)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// ContentAudit runs the content-audit webhook against a company website.
func (c *Client) ContentAudit(ctx context.Context, website string) ([]byte, error) {
	return c.post(ctx, "content audit", c.cfg.ContentAuditURL, map[string]string{"website": website})
}

// FacebookAds asks the ads webhook whether a company is running Facebook ads.
func (c *Client) FacebookAds(ctx context.Context, companyName string) ([]byte, error) {
	return c.post(ctx, "facebook ads", c.cfg.FacebookAdsURL, map[string]string{"company": companyName})
}

// SimilarCompanies asks the lookalike webhook for companies similar to the
// given domain.
func (c *Client) SimilarCompanies(ctx context.Context, domain string) ([]byte, error) {
	return c.post(ctx, "similar companies", c.cfg.SimilarCompaniesURL, map[string]string{"domain": domain})
}

// ExportCRM pushes a record to the CRM export webhook.
func (c *Client) ExportCRM(ctx context.Context, payload any) error {
	_, err := c.post(ctx, "crm export", c.cfg.CRMExportURL, payload)
	return err
}

// EmailMessage is the payload for the outbound email webhook.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendEmail hands a rendered message to the email webhook for delivery.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	_, err := c.post(ctx, "email", c.cfg.EmailURL, msg)
	return err
}

func (c *Client) post(ctx context.Context, name, url string, payload any) ([]byte, error) {
	if url == "" {
		return nil, eris.Errorf("hook: %s webhook URL not configured", name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "hook: marshal %s payload", name)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "hook: create %s request", name)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "hook: %s request failed", name)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "hook: read %s response", name)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("hook: %s status %d: %s", name, resp.StatusCode, string(body))
	}
	return body, nil
}
