package store

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// patchColumns flattens a CompanyPatch into parallel column/value slices,
// skipping absent fields. Slice-valued fields are serialized to JSON text so
// the same shape works for both backends.
func patchColumns(p *lead.CompanyPatch) ([]string, []any, error) {
	var cols []string
	var vals []any

	add := func(col string, v any) {
		cols = append(cols, col)
		vals = append(vals, v)
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Website != nil {
		add("website", *p.Website)
	}
	if p.Industry != nil {
		add("industry", *p.Industry)
	}
	if p.SizeRange != nil {
		add("size_range", *p.SizeRange)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Street != nil {
		add("street", *p.Street)
	}
	if p.City != nil {
		add("city", *p.City)
	}
	if p.State != nil {
		add("state", *p.State)
	}
	if p.ZipCode != nil {
		add("zip_code", *p.ZipCode)
	}
	if p.Country != nil {
		add("country", *p.Country)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.LinkedInURL != nil {
		add("linkedin_url", *p.LinkedInURL)
	}
	if p.FacebookURL != nil {
		add("facebook_url", *p.FacebookURL)
	}
	if p.TwitterURL != nil {
		add("twitter_url", *p.TwitterURL)
	}
	if p.Keywords != nil {
		j, err := json.Marshal(p.Keywords)
		if err != nil {
			return nil, nil, eris.Wrap(err, "store: marshal keywords")
		}
		add("keywords", string(j))
	}
	if p.FoundedYear != nil {
		add("founded_year", *p.FoundedYear)
	}
	if p.LogoURL != nil {
		add("logo_url", *p.LogoURL)
	}
	if p.AnnualRevenue != nil {
		add("annual_revenue", *p.AnnualRevenue)
	}
	if p.PrintedRevenue != nil {
		add("printed_revenue", *p.PrintedRevenue)
	}
	if p.Technologies != nil {
		j, err := json.Marshal(p.Technologies)
		if err != nil {
			return nil, nil, eris.Wrap(err, "store: marshal technologies")
		}
		add("technologies", string(j))
	}
	if p.ProviderID != nil {
		add("provider_id", *p.ProviderID)
	}

	return cols, vals, nil
}

// marshalJSON serializes v to a JSON string, mapping nil slices/maps to the
// given empty literal so columns stay NOT NULL.
func marshalJSON(v any, empty string) (string, error) {
	if v == nil {
		return empty, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", eris.Wrap(err, "store: marshal json column")
	}
	s := string(data)
	if s == "null" {
		return empty, nil
	}
	return s, nil
}
