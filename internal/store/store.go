// Package store persists leads, lists, searches, templates, settings, and
// users behind a single interface with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// Counts is a point-in-time row count snapshot used by monitoring.
type Counts struct {
	Companies       int `json:"companies"`
	Contacts        int `json:"contacts"`
	Lists           int `json:"lists"`
	Searches        int `json:"searches"`
	ArchivedResults int `json:"archived_results"`
	PromotedResults int `json:"promoted_results"`
}

// Store defines the persistence interface for the lead dashboard.
//
// Getters return (nil, nil) when the row does not exist. MoveCompanyToList
// runs its delete-then-insert pair inside one transaction; if the insert
// fails the transaction rolls back and the company keeps its old memberships.
type Store interface {
	// Companies
	CreateCompany(ctx context.Context, c *lead.Company) error
	GetCompany(ctx context.Context, id string) (*lead.Company, error)
	FindCompanyByProviderID(ctx context.Context, providerID string) (*lead.Company, error)
	ListCompanies(ctx context.Context, ownerID string, limit, offset int) ([]lead.Company, error)
	PatchCompany(ctx context.Context, id string, patch *lead.CompanyPatch) error
	SetCompanyTags(ctx context.Context, id string, tags []string) error
	PutCompanyInsight(ctx context.Context, id string, ins lead.Insight) error

	// Contacts
	CreateContact(ctx context.Context, c *lead.Contact) error
	UpsertContactByProviderID(ctx context.Context, c *lead.Contact) error
	GetContact(ctx context.Context, id string) (*lead.Contact, error)
	ListContactsByCompany(ctx context.Context, companyID string) ([]lead.Contact, error)

	// Lists and memberships
	CreateList(ctx context.Context, l *lead.List) error
	GetList(ctx context.Context, id string) (*lead.List, error)
	ListLists(ctx context.Context, ownerID string) ([]lead.List, error)
	MoveCompanyToList(ctx context.Context, companyID, listID string) error
	AddCompanyToList(ctx context.Context, companyID, listID string) (already bool, err error)
	ListMemberships(ctx context.Context, companyID string) ([]lead.Membership, error)
	ListCompaniesInList(ctx context.Context, listID string) ([]lead.Company, error)

	// Search archival
	CreateSearch(ctx context.Context, s *lead.SearchRecord) error
	UpdateSearchResultCount(ctx context.Context, searchID string, n int) error
	ArchiveResults(ctx context.Context, rows []lead.ArchivedResult) error
	GetArchivedResults(ctx context.Context, searchID string) ([]lead.ArchivedResult, error)
	MarkResultAdded(ctx context.Context, token string) error

	// Outreach templates
	UpsertTemplate(ctx context.Context, t *lead.Template) error
	GetTemplateByName(ctx context.Context, ownerID, name string) (*lead.Template, error)
	ListTemplates(ctx context.Context, ownerID string) ([]lead.Template, error)

	// Settings (webhook URL overrides, read once at startup)
	GetSettings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Users
	CreateUser(ctx context.Context, u *lead.User) error
	GetUserByEmail(ctx context.Context, email string) (*lead.User, error)
	ListUsers(ctx context.Context) ([]lead.User, error)
	SetUserAdmin(ctx context.Context, id string, admin bool) error
	DeleteUser(ctx context.Context, id string) error

	// Monitoring
	Counts(ctx context.Context) (Counts, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
