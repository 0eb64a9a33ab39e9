// Package peopledata provides a client for the people-data provider's search
// and enrichment API. Results are returned verbatim so callers can archive the
// provider payloads without re-encoding them.
package peopledata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the provider search operations.
type Client interface {
	// SearchPeople runs a people search and returns one page of results.
	SearchPeople(ctx context.Context, q Query) (*SearchResponse, error)
	// SearchCompanies runs a company search and returns one page of results.
	SearchCompanies(ctx context.Context, q Query) (*SearchResponse, error)
}

// Query holds the supported search filters. Zero-value fields are omitted
// from the request.
type Query struct {
	Titles         []string
	Locations      []string
	Seniorities    []string
	EmailStatuses  []string
	EmployeeRanges []string
	Keywords       string
	Page           int
	PerPage        int
}

// Values encodes the query as the provider's bracketed form parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, t := range q.Titles {
		v.Add("person_titles[]", t)
	}
	for _, l := range q.Locations {
		v.Add("person_locations[]", l)
	}
	for _, s := range q.Seniorities {
		v.Add("person_seniorities[]", s)
	}
	for _, e := range q.EmailStatuses {
		v.Add("contact_email_status[]", e)
	}
	for _, r := range q.EmployeeRanges {
		v.Add("organization_num_employees_ranges[]", r)
	}
	if q.Keywords != "" {
		v.Set("q_keywords", q.Keywords)
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

// Pagination describes the provider's paging metadata.
type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalEntries int `json:"total_entries"`
	TotalPages   int `json:"total_pages"`
}

// SearchResponse is one page of search results. People and Organizations are
// kept as raw JSON so the archive stores exactly what the provider sent.
type SearchResponse struct {
	People        []json.RawMessage `json:"people"`
	Organizations []json.RawMessage `json:"organizations"`
	Pagination    Pagination        `json:"pagination"`
}

// Results returns whichever result set the search populated.
func (r *SearchResponse) Results() []json.RawMessage {
	if len(r.People) > 0 {
		return r.People
	}
	return r.Organizations
}

// Option configures the provider client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a provider client. Requests are rate limited to stay
// under the provider's per-minute quota.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.peopledatahub.io",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchPeople(ctx context.Context, q Query) (*SearchResponse, error) {
	return c.search(ctx, "/v1/mixed_people/search", q)
}

func (c *httpClient) SearchCompanies(ctx context.Context, q Query) (*SearchResponse, error) {
	return c.search(ctx, "/v1/mixed_companies/search", q)
}

// search runs one page of a search. A failed request surfaces immediately;
// the caller decides whether to re-run the search.
func (c *httpClient) search(ctx context.Context, path string, q Query) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "peopledata: rate limit wait")
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Values().Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "peopledata: create request")
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "peopledata: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "peopledata: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("peopledata: status %d: %s", resp.StatusCode, string(body))
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "peopledata: unmarshal response")
	}
	return &result, nil
}
