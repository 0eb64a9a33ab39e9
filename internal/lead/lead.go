// Package lead defines the core entities for lead ingestion: companies,
// contacts, lists, and archived search results, plus the enrichment merge
// rules that turn raw provider payloads into entity writes.
package lead

import (
	"encoding/json"
	"time"
)

// Company is the golden record for a prospect company.
type Company struct {
	ID      string `json:"id" db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`

	Name        string `json:"name" db:"name"`
	Website     string `json:"website,omitempty" db:"website"`
	Industry    string `json:"industry,omitempty" db:"industry"`
	SizeRange   string `json:"size_range,omitempty" db:"size_range"`
	Description string `json:"description,omitempty" db:"description"`
	Phone       string `json:"phone,omitempty" db:"phone"`

	// Primary address (denormalized)
	Street  string `json:"street,omitempty" db:"street"`
	City    string `json:"city,omitempty" db:"city"`
	State   string `json:"state,omitempty" db:"state"`
	ZipCode string `json:"zip_code,omitempty" db:"zip_code"`
	Country string `json:"country,omitempty" db:"country"`

	// Social profiles
	LinkedInURL string `json:"linkedin_url,omitempty" db:"linkedin_url"`
	FacebookURL string `json:"facebook_url,omitempty" db:"facebook_url"`
	TwitterURL  string `json:"twitter_url,omitempty" db:"twitter_url"`

	// Keywords are ordered; Tags are an unordered set.
	Keywords []string `json:"keywords,omitempty" db:"keywords"`
	Tags     []string `json:"tags,omitempty" db:"tags"`

	ProviderID     string `json:"provider_id,omitempty" db:"provider_id"`
	FoundedYear    int    `json:"founded_year,omitempty" db:"founded_year"`
	LogoURL        string `json:"logo_url,omitempty" db:"logo_url"`
	AnnualRevenue  *int64 `json:"annual_revenue,omitempty" db:"annual_revenue"`
	PrintedRevenue string `json:"printed_revenue,omitempty" db:"printed_revenue"`

	Technologies []string `json:"technologies,omitempty" db:"technologies"`

	// Insights is written only by insight-generation collaborators.
	Insights InsightSet `json:"insights,omitempty" db:"insights"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Contact is a person associated with a company. CompanyID is empty until the
// contact is assigned to a company.
type Contact struct {
	ID        string `json:"id" db:"id"`
	OwnerID   string `json:"owner_id" db:"owner_id"`
	CompanyID string `json:"company_id,omitempty" db:"company_id"`

	FirstName string `json:"first_name,omitempty" db:"first_name"`
	LastName  string `json:"last_name,omitempty" db:"last_name"`
	Email     string `json:"email,omitempty" db:"email"`
	Phone     string `json:"phone,omitempty" db:"phone"`
	Title     string `json:"title,omitempty" db:"title"`
	Notes     string `json:"notes,omitempty" db:"notes"`

	LinkedInURL string `json:"linkedin_url,omitempty" db:"linkedin_url"`
	TwitterURL  string `json:"twitter_url,omitempty" db:"twitter_url"`
	FacebookURL string `json:"facebook_url,omitempty" db:"facebook_url"`

	Headline  string `json:"headline,omitempty" db:"headline"`
	City      string `json:"city,omitempty" db:"city"`
	Country   string `json:"country,omitempty" db:"country"`
	Seniority string `json:"seniority,omitempty" db:"seniority"`

	// EmploymentHistory holds opaque provider records in the order received.
	EmploymentHistory []json.RawMessage `json:"employment_history,omitempty" db:"employment_history"`

	ProviderID     string     `json:"provider_id,omitempty" db:"provider_id"`
	EmailStatus    string     `json:"email_status,omitempty" db:"email_status"`
	LastEnrichedAt *time.Time `json:"last_enriched_at,omitempty" db:"last_enriched_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// List is a user-defined named grouping of companies. Name uniqueness per
// owner is not enforced.
type List struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Membership joins one company to one list. The move operation keeps a
// company in at most one list; the ad-hoc add operation does not.
type Membership struct {
	CompanyID string    `json:"company_id" db:"company_id"`
	ListID    string    `json:"list_id" db:"list_id"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// Search types.
const (
	SearchPeople    = "people"
	SearchCompanies = "companies"
)

// SearchRecord captures one executed provider search: its raw parameter bag
// and, after execution, the number of results returned.
type SearchRecord struct {
	ID          string          `json:"id" db:"id"`
	OwnerID     string          `json:"owner_id" db:"owner_id"`
	SearchType  string          `json:"search_type" db:"search_type"`
	Params      json.RawMessage `json:"params" db:"params"`
	ResultCount int             `json:"result_count" db:"result_count"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// ArchivedResult is one search result row stored verbatim. Rows are
// append-only; promotion only flips AddedToList.
type ArchivedResult struct {
	ID          string          `json:"id" db:"id"`
	SearchID    string          `json:"search_id" db:"search_id"`
	Token       string          `json:"token" db:"token"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	AddedToList bool            `json:"added_to_list" db:"added_to_list"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Template is a stored outreach email template in text/template syntax.
type Template struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// User is a dashboard account with a simple admin flag.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name,omitempty" db:"name"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
