package peopledata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestQueryValues(t *testing.T) {
	q := Query{
		Titles:         []string{"owner", "ceo"},
		Locations:      []string{"Denver, CO"},
		Seniorities:    []string{"owner"},
		EmailStatuses:  []string{"verified"},
		EmployeeRanges: []string{"1,10", "11,50"},
		Keywords:       "roofing",
		Page:           3,
		PerPage:        50,
	}
	v := q.Values()

	assert.Equal(t, []string{"owner", "ceo"}, v["person_titles[]"])
	assert.Equal(t, []string{"Denver, CO"}, v["person_locations[]"])
	assert.Equal(t, []string{"1,10", "11,50"}, v["organization_num_employees_ranges[]"])
	assert.Equal(t, "roofing", v.Get("q_keywords"))
	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "50", v.Get("per_page"))
}

func TestQueryValuesDefaults(t *testing.T) {
	v := Query{}.Values()
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "25", v.Get("per_page"))
	assert.NotContains(t, v, "q_keywords")
	assert.NotContains(t, v, "person_titles[]")
}

func TestSearchPeople(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/mixed_people/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, []string{"owner"}, r.URL.Query()["person_titles[]"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"people": [
				{"id":"p1","first_name":"Dana"},
				{"id":"p2","first_name":"Sam"}
			],
			"pagination": {"page":1,"per_page":25,"total_entries":2,"total_pages":1}
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	resp, err := client.SearchPeople(context.Background(), Query{Titles: []string{"owner"}})
	require.NoError(t, err)
	require.Len(t, resp.People, 2)
	assert.JSONEq(t, `{"id":"p1","first_name":"Dana"}`, string(resp.People[0]))
	assert.Equal(t, 1, resp.Pagination.TotalPages)
	assert.Len(t, resp.Results(), 2)
}

func TestSearchCompanies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/mixed_companies/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organizations": [{"id":"o1","name":"Acme Roofing Co"}],
			"pagination": {"page":1,"per_page":25,"total_entries":1,"total_pages":1}
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	resp, err := client.SearchCompanies(context.Background(), Query{Keywords: "roofing"})
	require.NoError(t, err)
	require.Len(t, resp.Organizations, 1)
	assert.Len(t, resp.Results(), 1)
}

func TestSearchErrorStatusNoRetry(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL),
		WithRateLimit(rate.Inf, 1))
	_, err := client.SearchPeople(context.Background(), Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, 1, requests)
}

func TestSearchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.SearchPeople(context.Background(), Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestSearchContextCancelled(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("http://127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SearchPeople(ctx, Query{})
	require.Error(t, err)
}
