package lead

import (
	"encoding/json"
	"time"
)

// ContactInsert is a full contact row derived from one enrichment event.
// Absent provider fields stay nil and are written as NULL; the row is always
// inserted in full, never partially updated.
type ContactInsert struct {
	FirstName         *string
	LastName          *string
	Email             *string
	Phone             *string
	Title             *string
	LinkedInURL       *string
	TwitterURL        *string
	FacebookURL       *string
	Headline          *string
	City              *string
	Country           *string
	Seniority         *string
	EmailStatus       *string
	EmploymentHistory []json.RawMessage
	ProviderID        string
	LastEnrichedAt    time.Time
}

// CompanyPatch holds company field updates from one enrichment event. A nil
// field is absent from the patch: existing company data is never overwritten
// with provider absence.
type CompanyPatch struct {
	Name           *string
	Website        *string
	Industry       *string
	SizeRange      *string
	Phone          *string
	Street         *string
	City           *string
	State          *string
	ZipCode        *string
	Country        *string
	Description    *string
	LinkedInURL    *string
	FacebookURL    *string
	TwitterURL     *string
	Keywords       []string
	FoundedYear    *int
	LogoURL        *string
	AnnualRevenue  *int64
	PrintedRevenue *string
	Technologies   []string
	ProviderID     *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p *CompanyPatch) IsEmpty() bool {
	return p == nil || (p.Name == nil && p.Website == nil && p.Industry == nil &&
		p.SizeRange == nil && p.Phone == nil && p.Street == nil && p.City == nil &&
		p.State == nil && p.ZipCode == nil && p.Country == nil && p.Description == nil &&
		p.LinkedInURL == nil && p.FacebookURL == nil && p.TwitterURL == nil &&
		p.Keywords == nil && p.FoundedYear == nil && p.LogoURL == nil &&
		p.AnnualRevenue == nil && p.PrintedRevenue == nil && p.Technologies == nil &&
		p.ProviderID == nil)
}

// MergeEnrichment transforms a provider payload into the contact row to
// insert and the sparse company patch to apply. existingName is the company's
// current name, or empty when the company has none yet.
//
// The name merge policy is the one real decision here:
//  1. a specific provider name is always adopted;
//  2. a generic provider name never replaces a specific existing name;
//  3. when both are generic, or there is no existing name, the provider name
//     is adopted anyway since there is nothing better to keep.
func MergeEnrichment(p *ProviderPayload, existingName string) (*ContactInsert, *CompanyPatch) {
	if p == nil {
		return nil, nil
	}

	person := p.Person
	org := person.Organization

	contact := &ContactInsert{
		FirstName:         person.FirstName,
		LastName:          person.LastName,
		Email:             person.Email,
		Phone:             firstPhone(person.PhoneNumbers),
		Title:             person.Title,
		LinkedInURL:       person.LinkedInURL,
		TwitterURL:        person.TwitterURL,
		FacebookURL:       person.FacebookURL,
		Headline:          person.Headline,
		City:              person.City,
		Country:           person.Country,
		Seniority:         person.Seniority,
		EmailStatus:       person.EmailStatus,
		EmploymentHistory: person.EmploymentHistory,
		ProviderID:        person.ID,
		LastEnrichedAt:    time.Now().UTC(),
	}

	patch := &CompanyPatch{
		Website:        org.WebsiteURL,
		Industry:       org.Industry,
		SizeRange:      sizeRange(org),
		Phone:          org.Phone,
		Street:         org.StreetAddress,
		City:           org.City,
		State:          org.State,
		ZipCode:        org.PostalCode,
		Country:        org.Country,
		Description:    org.ShortDescription,
		LinkedInURL:    org.LinkedInURL,
		FacebookURL:    org.FacebookURL,
		TwitterURL:     org.TwitterURL,
		Keywords:       org.Keywords,
		FoundedYear:    org.FoundedYear,
		LogoURL:        org.LogoURL,
		AnnualRevenue:  org.AnnualRevenue,
		PrintedRevenue: org.AnnualRevenuePrinted,
		Technologies:   org.TechnologyNames,
	}
	if org.ID != "" {
		id := org.ID
		patch.ProviderID = &id
	}

	if org.Name != nil && *org.Name != "" {
		providerGeneric := IsGenericName(*org.Name)
		existingGeneric := IsGenericName(existingName)
		// Keep a specific existing name over a generic provider one.
		if !providerGeneric || existingGeneric || existingName == "" {
			patch.Name = org.Name
		}
	}

	return contact, patch
}

// sizeRange prefers the provider's printed range over a raw employee count.
func sizeRange(org ProviderOrganization) *string {
	if org.SizeRange != nil && *org.SizeRange != "" {
		return org.SizeRange
	}
	if org.EstimatedNumEmployees != nil {
		s := employeeBucket(*org.EstimatedNumEmployees)
		return &s
	}
	return nil
}

// employeeBucket maps a raw headcount to the provider's standard buckets.
func employeeBucket(n int) string {
	switch {
	case n <= 10:
		return "1-10"
	case n <= 50:
		return "11-50"
	case n <= 200:
		return "51-200"
	case n <= 500:
		return "201-500"
	case n <= 1000:
		return "501-1000"
	case n <= 5000:
		return "1001-5000"
	default:
		return "5001+"
	}
}

func firstPhone(nums []ProviderPhone) *string {
	for _, n := range nums {
		if n.RawNumber != "" {
			raw := n.RawNumber
			return &raw
		}
	}
	return nil
}
