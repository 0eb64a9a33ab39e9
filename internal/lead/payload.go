package lead

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ProviderPayload is the loosely-typed enrichment response from the
// people-data provider. Every field is optional; absent fields decode to
// zero values or nil and are null-coalesced downstream.
type ProviderPayload struct {
	Person ProviderPerson `json:"person"`
}

// ProviderPerson is the person sub-object of an enrichment payload.
type ProviderPerson struct {
	ID                string            `json:"id,omitempty"`
	FirstName         *string           `json:"first_name,omitempty"`
	LastName          *string           `json:"last_name,omitempty"`
	Email             *string           `json:"email,omitempty"`
	Title             *string           `json:"title,omitempty"`
	LinkedInURL       *string           `json:"linkedin_url,omitempty"`
	TwitterURL        *string           `json:"twitter_url,omitempty"`
	FacebookURL       *string           `json:"facebook_url,omitempty"`
	Headline          *string           `json:"headline,omitempty"`
	City              *string           `json:"city,omitempty"`
	Country           *string           `json:"country,omitempty"`
	Seniority         *string           `json:"seniority,omitempty"`
	EmailStatus       *string           `json:"email_status,omitempty"`
	PhoneNumbers      []ProviderPhone   `json:"phone_numbers,omitempty"`
	EmploymentHistory []json.RawMessage `json:"employment_history,omitempty"`

	Organization ProviderOrganization `json:"organization"`
}

// ProviderPhone is one phone entry on a provider person.
type ProviderPhone struct {
	RawNumber string `json:"raw_number,omitempty"`
	Type      string `json:"type,omitempty"`
}

// ProviderOrganization is the nested organization sub-object.
type ProviderOrganization struct {
	ID                    string   `json:"id,omitempty"`
	Name                  *string  `json:"name,omitempty"`
	WebsiteURL            *string  `json:"website_url,omitempty"`
	Industry              *string  `json:"industry,omitempty"`
	EstimatedNumEmployees *int     `json:"estimated_num_employees,omitempty"`
	SizeRange             *string  `json:"size_range,omitempty"`
	Phone                 *string  `json:"phone,omitempty"`
	StreetAddress         *string  `json:"street_address,omitempty"`
	City                  *string  `json:"city,omitempty"`
	State                 *string  `json:"state,omitempty"`
	PostalCode            *string  `json:"postal_code,omitempty"`
	Country               *string  `json:"country,omitempty"`
	ShortDescription      *string  `json:"short_description,omitempty"`
	LinkedInURL           *string  `json:"linkedin_url,omitempty"`
	FacebookURL           *string  `json:"facebook_url,omitempty"`
	TwitterURL            *string  `json:"twitter_url,omitempty"`
	Keywords              []string `json:"keywords,omitempty"`
	FoundedYear           *int     `json:"founded_year,omitempty"`
	LogoURL               *string  `json:"logo_url,omitempty"`
	AnnualRevenue         *int64   `json:"annual_revenue,omitempty"`
	AnnualRevenuePrinted  *string  `json:"annual_revenue_printed,omitempty"`
	TechnologyNames       []string `json:"technology_names,omitempty"`
}

// ParseEnrichment decodes a raw provider payload. The enrichment webhook
// returns a `{"person": {...}}` envelope or a one-element array wrapping it;
// archived search rows are bare person objects with no envelope. All three
// shapes are accepted. An empty array yields an error, not a nil payload.
func ParseEnrichment(raw []byte) (*ProviderPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, eris.New("lead: empty enrichment response")
	}

	if trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, eris.Wrap(err, "lead: unmarshal enrichment array")
		}
		if len(arr) == 0 {
			return nil, eris.New("lead: enrichment array is empty")
		}
		return parseEnrichmentObject(arr[0])
	}
	return parseEnrichmentObject(trimmed)
}

func parseEnrichmentObject(raw []byte) (*ProviderPayload, error) {
	var probe struct {
		Person json.RawMessage `json:"person"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, eris.Wrap(err, "lead: unmarshal enrichment")
	}

	var p ProviderPayload
	if len(probe.Person) > 0 && !bytes.Equal(bytes.TrimSpace(probe.Person), []byte("null")) {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, eris.Wrap(err, "lead: unmarshal enrichment envelope")
		}
		return &p, nil
	}
	if err := json.Unmarshal(raw, &p.Person); err != nil {
		return nil, eris.Wrap(err, "lead: unmarshal enrichment person")
	}
	return &p, nil
}
