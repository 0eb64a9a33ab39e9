package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/lead"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id              TEXT PRIMARY KEY,
	owner_id        TEXT NOT NULL,
	name            TEXT,
	website         TEXT,
	industry        TEXT,
	size_range      TEXT,
	description     TEXT,
	phone           TEXT,
	street          TEXT,
	city            TEXT,
	state           TEXT,
	zip_code        TEXT,
	country         TEXT,
	linkedin_url    TEXT,
	facebook_url    TEXT,
	twitter_url     TEXT,
	keywords        TEXT NOT NULL DEFAULT '[]',
	tags            TEXT NOT NULL DEFAULT '[]',
	provider_id     TEXT,
	founded_year    INTEGER,
	logo_url        TEXT,
	annual_revenue  INTEGER,
	printed_revenue TEXT,
	technologies    TEXT NOT NULL DEFAULT '[]',
	insights        TEXT NOT NULL DEFAULT '{}',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS contacts (
	id                 TEXT PRIMARY KEY,
	owner_id           TEXT NOT NULL,
	company_id         TEXT REFERENCES companies(id),
	first_name         TEXT,
	last_name          TEXT,
	email              TEXT,
	phone              TEXT,
	title              TEXT,
	notes              TEXT,
	linkedin_url       TEXT,
	twitter_url        TEXT,
	facebook_url       TEXT,
	headline           TEXT,
	city               TEXT,
	country            TEXT,
	seniority          TEXT,
	employment_history TEXT NOT NULL DEFAULT '[]',
	provider_id        TEXT,
	email_status       TEXT,
	last_enriched_at   DATETIME,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS lists (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS list_companies_new (
	company_id TEXT NOT NULL REFERENCES companies(id),
	list_id    TEXT NOT NULL REFERENCES lists(id),
	added_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (company_id, list_id)
);

CREATE TABLE IF NOT EXISTS search_history (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	search_type  TEXT NOT NULL,
	params       TEXT NOT NULL DEFAULT '{}',
	result_count INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS search_results_archive (
	id            TEXT PRIMARY KEY,
	search_id     TEXT NOT NULL REFERENCES search_history(id),
	token         TEXT NOT NULL UNIQUE,
	payload       TEXT NOT NULL,
	added_to_list INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (owner_id, name)
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT,
	is_admin   INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_companies_owner ON companies(owner_id);
CREATE INDEX IF NOT EXISTS idx_companies_provider ON companies(provider_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_provider ON contacts(provider_id);
CREATE INDEX IF NOT EXISTS idx_memberships_list ON list_companies_new(list_id);
CREATE INDEX IF NOT EXISTS idx_archive_search ON search_results_archive(search_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- companies ---

const companyColumns = `id, owner_id, name, website, industry, size_range, description, phone,
	street, city, state, zip_code, country, linkedin_url, facebook_url, twitter_url,
	keywords, tags, provider_id, founded_year, logo_url, annual_revenue, printed_revenue,
	technologies, insights, created_at, updated_at`

func (s *SQLiteStore) CreateCompany(ctx context.Context, c *lead.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	keywords, err := marshalJSON(c.Keywords, "[]")
	if err != nil {
		return err
	}
	tags, err := marshalJSON(c.Tags, "[]")
	if err != nil {
		return err
	}
	techs, err := marshalJSON(c.Technologies, "[]")
	if err != nil {
		return err
	}
	insights, err := marshalJSON(c.Insights, "{}")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, nullIfEmpty(c.Name), nullIfEmpty(c.Website), nullIfEmpty(c.Industry),
		nullIfEmpty(c.SizeRange), nullIfEmpty(c.Description), nullIfEmpty(c.Phone),
		nullIfEmpty(c.Street), nullIfEmpty(c.City), nullIfEmpty(c.State), nullIfEmpty(c.ZipCode),
		nullIfEmpty(c.Country), nullIfEmpty(c.LinkedInURL), nullIfEmpty(c.FacebookURL),
		nullIfEmpty(c.TwitterURL), keywords, tags, nullIfEmpty(c.ProviderID),
		nilIfZero(c.FoundedYear), nullIfEmpty(c.LogoURL), c.AnnualRevenue,
		nullIfEmpty(c.PrintedRevenue), techs, insights, now, now,
	)
	return eris.Wrap(err, "sqlite: insert company")
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id string) (*lead.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	c, err := scanCompany(row)
	if isNoRows(err) {
		return nil, nil
	}
	return c, err
}

func (s *SQLiteStore) FindCompanyByProviderID(ctx context.Context, providerID string) (*lead.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE provider_id = ? LIMIT 1`, providerID)
	c, err := scanCompany(row)
	if isNoRows(err) {
		return nil, nil
	}
	return c, err
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, ownerID string, limit, offset int) ([]lead.Company, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE owner_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`, ownerID, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []lead.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) PatchCompany(ctx context.Context, id string, patch *lead.CompanyPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	cols, vals, err := patchColumns(patch)
	if err != nil {
		return err
	}

	var sets []string
	for _, col := range cols {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "updated_at = ?")
	vals = append(vals, time.Now().UTC(), id)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE companies SET %s WHERE id = ?`, strings.Join(sets, ", ")), vals...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: patch company %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) SetCompanyTags(ctx context.Context, id string, tags []string) error {
	j, err := marshalJSON(tags, "[]")
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET tags = ?, updated_at = ? WHERE id = ?`,
		j, time.Now().UTC(), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set tags %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) PutCompanyInsight(ctx context.Context, id string, ins lead.Insight) error {
	if err := ins.Validate(); err != nil {
		return err
	}
	c, err := s.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return eris.Errorf("company not found: %s", id)
	}
	if c.Insights == nil {
		c.Insights = lead.InsightSet{}
	}
	c.Insights.Put(ins)

	j, err := marshalJSON(c.Insights, "{}")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE companies SET insights = ?, updated_at = ? WHERE id = ?`,
		j, time.Now().UTC(), id)
	return eris.Wrapf(err, "sqlite: put insight %s", id)
}

// --- contacts ---

const contactColumns = `id, owner_id, company_id, first_name, last_name, email, phone, title,
	notes, linkedin_url, twitter_url, facebook_url, headline, city, country, seniority,
	employment_history, provider_id, email_status, last_enriched_at, created_at, updated_at`

func (s *SQLiteStore) CreateContact(ctx context.Context, c *lead.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	history, err := marshalJSON(c.EmploymentHistory, "[]")
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, nullIfEmpty(c.CompanyID), nullIfEmpty(c.FirstName),
		nullIfEmpty(c.LastName), nullIfEmpty(c.Email), nullIfEmpty(c.Phone),
		nullIfEmpty(c.Title), nullIfEmpty(c.Notes), nullIfEmpty(c.LinkedInURL),
		nullIfEmpty(c.TwitterURL), nullIfEmpty(c.FacebookURL), nullIfEmpty(c.Headline),
		nullIfEmpty(c.City), nullIfEmpty(c.Country), nullIfEmpty(c.Seniority),
		history, nullIfEmpty(c.ProviderID), nullIfEmpty(c.EmailStatus),
		c.LastEnrichedAt, now, now,
	)
	return eris.Wrap(err, "sqlite: insert contact")
}

func (s *SQLiteStore) UpsertContactByProviderID(ctx context.Context, c *lead.Contact) error {
	if c.ProviderID == "" {
		return s.CreateContact(ctx, c)
	}
	var existingID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM contacts WHERE provider_id = ? LIMIT 1`, c.ProviderID).Scan(&existingID)
	if isNoRows(err) {
		return s.CreateContact(ctx, c)
	}
	if err != nil {
		return eris.Wrap(err, "sqlite: find contact by provider id")
	}

	history, err := marshalJSON(c.EmploymentHistory, "[]")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE contacts SET company_id = ?, first_name = ?, last_name = ?, email = ?,
			phone = ?, title = ?, linkedin_url = ?, twitter_url = ?, facebook_url = ?,
			headline = ?, city = ?, country = ?, seniority = ?, employment_history = ?,
			email_status = ?, last_enriched_at = ?, updated_at = ?
		WHERE id = ?`,
		nullIfEmpty(c.CompanyID), nullIfEmpty(c.FirstName), nullIfEmpty(c.LastName),
		nullIfEmpty(c.Email), nullIfEmpty(c.Phone), nullIfEmpty(c.Title),
		nullIfEmpty(c.LinkedInURL), nullIfEmpty(c.TwitterURL), nullIfEmpty(c.FacebookURL),
		nullIfEmpty(c.Headline), nullIfEmpty(c.City), nullIfEmpty(c.Country),
		nullIfEmpty(c.Seniority), history, nullIfEmpty(c.EmailStatus),
		c.LastEnrichedAt, now, existingID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: upsert contact")
	}
	c.ID = existingID
	return nil
}

func (s *SQLiteStore) GetContact(ctx context.Context, id string) (*lead.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if isNoRows(err) {
		return nil, nil
	}
	return c, err
}

func (s *SQLiteStore) ListContactsByCompany(ctx context.Context, companyID string) ([]lead.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE company_id = ? ORDER BY created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []lead.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list contacts iterate")
}

// --- lists and memberships ---

func (s *SQLiteStore) CreateList(ctx context.Context, l *lead.List) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lists (id, owner_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.OwnerID, l.Name, nullIfEmpty(l.Description), l.CreatedAt)
	return eris.Wrap(err, "sqlite: insert list")
}

func (s *SQLiteStore) GetList(ctx context.Context, id string) (*lead.List, error) {
	var l lead.List
	var desc sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, description, created_at FROM lists WHERE id = ?`, id).
		Scan(&l.ID, &l.OwnerID, &l.Name, &desc, &l.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get list %s", id)
	}
	l.Description = desc.String
	return &l, nil
}

func (s *SQLiteStore) ListLists(ctx context.Context, ownerID string) ([]lead.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, description, created_at FROM lists
		 WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list lists")
	}
	defer rows.Close()

	var lists []lead.List
	for rows.Next() {
		var l lead.List
		var desc sql.NullString
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &desc, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan list")
		}
		l.Description = desc.String
		lists = append(lists, l)
	}
	return lists, eris.Wrap(rows.Err(), "sqlite: list lists iterate")
}

// MoveCompanyToList removes every membership the company has, then inserts
// one for the target list, all in a single transaction. Deleting all rows
// rather than the expected one clears any stray multi-membership.
func (s *SQLiteStore) MoveCompanyToList(ctx context.Context, companyID, listID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin move")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM list_companies_new WHERE company_id = ?`, companyID); err != nil {
		return eris.Wrap(err, "sqlite: clear memberships")
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO list_companies_new (company_id, list_id, added_at) VALUES (?, ?, ?)`,
		companyID, listID, time.Now().UTC()); err != nil {
		return eris.Wrap(err, "sqlite: insert membership")
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit move")
}

func (s *SQLiteStore) AddCompanyToList(ctx context.Context, companyID, listID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM list_companies_new WHERE company_id = ? AND list_id = ?`,
		companyID, listID).Scan(&one)
	if err == nil {
		return true, nil
	}
	if err != nil && !isNoRows(err) {
		return false, eris.Wrap(err, "sqlite: check membership")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO list_companies_new (company_id, list_id, added_at) VALUES (?, ?, ?)`,
		companyID, listID, time.Now().UTC())
	return false, eris.Wrap(err, "sqlite: add membership")
}

func (s *SQLiteStore) ListMemberships(ctx context.Context, companyID string) ([]lead.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company_id, list_id, added_at FROM list_companies_new WHERE company_id = ?`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list memberships")
	}
	defer rows.Close()

	var ms []lead.Membership
	for rows.Next() {
		var m lead.Membership
		if err := rows.Scan(&m.CompanyID, &m.ListID, &m.AddedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan membership")
		}
		ms = append(ms, m)
	}
	return ms, eris.Wrap(rows.Err(), "sqlite: list memberships iterate")
}

func (s *SQLiteStore) ListCompaniesInList(ctx context.Context, listID string) ([]lead.Company, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixedCompanyColumns("c")+`
		FROM companies c
		JOIN list_companies_new m ON m.company_id = c.id
		WHERE m.list_id = ?
		ORDER BY m.added_at DESC`, listID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: companies in list")
	}
	defer rows.Close()

	var companies []lead.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: companies in list iterate")
}

// --- search archival ---

func (s *SQLiteStore) CreateSearch(ctx context.Context, sr *lead.SearchRecord) error {
	if sr.ID == "" {
		sr.ID = uuid.New().String()
	}
	sr.CreatedAt = time.Now().UTC()
	params := sr.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (id, owner_id, search_type, params, result_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sr.ID, sr.OwnerID, sr.SearchType, string(params), sr.ResultCount, sr.CreatedAt)
	return eris.Wrap(err, "sqlite: insert search")
}

func (s *SQLiteStore) UpdateSearchResultCount(ctx context.Context, searchID string, n int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE search_history SET result_count = ? WHERE id = ?`, n, searchID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update result count %s", searchID)
	}
	return checkRowsAffected(res, "search", searchID)
}

func (s *SQLiteStore) ArchiveResults(ctx context.Context, rows []lead.ArchivedResult) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin archive")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO search_results_archive (id, search_id, token, payload, added_to_list, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare archive insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range rows {
		r := &rows[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, r.ID, r.SearchID, r.Token, string(r.Payload), now); err != nil {
			return eris.Wrapf(err, "sqlite: archive result %s", r.Token)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit archive")
}

func (s *SQLiteStore) GetArchivedResults(ctx context.Context, searchID string) ([]lead.ArchivedResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, search_id, token, payload, added_to_list, created_at
		 FROM search_results_archive WHERE search_id = ?`, searchID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get archived results")
	}
	defer rows.Close()

	var out []lead.ArchivedResult
	for rows.Next() {
		var r lead.ArchivedResult
		var payload string
		if err := rows.Scan(&r.ID, &r.SearchID, &r.Token, &payload, &r.AddedToList, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan archived result")
		}
		r.Payload = json.RawMessage(payload)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: archived results iterate")
}

func (s *SQLiteStore) MarkResultAdded(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE search_results_archive SET added_to_list = 1 WHERE token = ?`, token)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark result added %s", token)
	}
	return checkRowsAffected(res, "archived result", token)
}

// --- templates ---

func (s *SQLiteStore) UpsertTemplate(ctx context.Context, t *lead.Template) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, owner_id, name, subject, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, name) DO UPDATE SET
			subject = excluded.subject, body = excluded.body, updated_at = excluded.updated_at`,
		t.ID, t.OwnerID, t.Name, t.Subject, t.Body, now, now)
	return eris.Wrap(err, "sqlite: upsert template")
}

func (s *SQLiteStore) GetTemplateByName(ctx context.Context, ownerID, name string) (*lead.Template, error) {
	var t lead.Template
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, subject, body, created_at, updated_at
		 FROM templates WHERE owner_id = ? AND name = ?`, ownerID, name).
		Scan(&t.ID, &t.OwnerID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get template %s", name)
	}
	return &t, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context, ownerID string) ([]lead.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, subject, body, created_at, updated_at
		 FROM templates WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list templates")
	}
	defer rows.Close()

	var ts []lead.Template
	for rows.Next() {
		var t lead.Template
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan template")
		}
		ts = append(ts, t)
	}
	return ts, eris.Wrap(rows.Err(), "sqlite: list templates iterate")
}

// --- settings ---

func (s *SQLiteStore) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get settings")
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan setting")
		}
		settings[k] = v
	}
	return settings, eris.Wrap(rows.Err(), "sqlite: settings iterate")
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	return eris.Wrapf(err, "sqlite: set setting %s", key)
}

// --- users ---

func (s *SQLiteStore) CreateUser(ctx context.Context, u *lead.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, nullIfEmpty(u.Name), u.IsAdmin, u.CreatedAt)
	return eris.Wrap(err, "sqlite: insert user")
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*lead.User, error) {
	var u lead.User
	var name sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &name, &u.IsAdmin, &u.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get user %s", email)
	}
	u.Name = name.String
	return &u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]lead.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users ORDER BY email`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list users")
	}
	defer rows.Close()

	var users []lead.User
	for rows.Next() {
		var u lead.User
		var name sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &name, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan user")
		}
		u.Name = name.String
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "sqlite: list users iterate")
}

func (s *SQLiteStore) SetUserAdmin(ctx context.Context, id string, admin bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, admin, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set admin %s", id)
	}
	return checkRowsAffected(res, "user", id)
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete user %s", id)
	}
	return checkRowsAffected(res, "user", id)
}

// --- monitoring ---

func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM contacts),
			(SELECT COUNT(*) FROM lists),
			(SELECT COUNT(*) FROM search_history),
			(SELECT COUNT(*) FROM search_results_archive),
			(SELECT COUNT(*) FROM search_results_archive WHERE added_to_list = 1)`).
		Scan(&c.Companies, &c.Contacts, &c.Lists, &c.Searches, &c.ArchivedResults, &c.PromotedResults)
	return c, eris.Wrap(err, "sqlite: counts")
}

// --- helpers ---

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nilIfZero(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func prefixedCompanyColumns(alias string) string {
	cols := strings.Split(companyColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCompany(row scannable) (*lead.Company, error) {
	var c lead.Company
	var name, website, industry, sizeRange, description, phone sql.NullString
	var street, city, state, zipCode, country sql.NullString
	var linkedin, facebook, twitter, providerID, logoURL, printedRevenue sql.NullString
	var keywords, tags, technologies, insights string
	var foundedYear sql.NullInt64
	var annualRevenue sql.NullInt64

	err := row.Scan(&c.ID, &c.OwnerID, &name, &website, &industry, &sizeRange, &description,
		&phone, &street, &city, &state, &zipCode, &country, &linkedin, &facebook, &twitter,
		&keywords, &tags, &providerID, &foundedYear, &logoURL, &annualRevenue,
		&printedRevenue, &technologies, &insights, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan company")
	}

	c.Name = name.String
	c.Website = website.String
	c.Industry = industry.String
	c.SizeRange = sizeRange.String
	c.Description = description.String
	c.Phone = phone.String
	c.Street = street.String
	c.City = city.String
	c.State = state.String
	c.ZipCode = zipCode.String
	c.Country = country.String
	c.LinkedInURL = linkedin.String
	c.FacebookURL = facebook.String
	c.TwitterURL = twitter.String
	c.ProviderID = providerID.String
	c.LogoURL = logoURL.String
	c.PrintedRevenue = printedRevenue.String
	if foundedYear.Valid {
		c.FoundedYear = int(foundedYear.Int64)
	}
	if annualRevenue.Valid {
		v := annualRevenue.Int64
		c.AnnualRevenue = &v
	}

	if err := json.Unmarshal([]byte(keywords), &c.Keywords); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal keywords")
	}
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal tags")
	}
	if err := json.Unmarshal([]byte(technologies), &c.Technologies); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal technologies")
	}
	if err := json.Unmarshal([]byte(insights), &c.Insights); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal insights")
	}
	return &c, nil
}

func scanContact(row scannable) (*lead.Contact, error) {
	var c lead.Contact
	var companyID, firstName, lastName, email, phone, title, notes sql.NullString
	var linkedin, twitter, facebook, headline, city, country, seniority sql.NullString
	var providerID, emailStatus sql.NullString
	var history string
	var lastEnriched sql.NullTime

	err := row.Scan(&c.ID, &c.OwnerID, &companyID, &firstName, &lastName, &email, &phone,
		&title, &notes, &linkedin, &twitter, &facebook, &headline, &city, &country,
		&seniority, &history, &providerID, &emailStatus, &lastEnriched,
		&c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan contact")
	}

	c.CompanyID = companyID.String
	c.FirstName = firstName.String
	c.LastName = lastName.String
	c.Email = email.String
	c.Phone = phone.String
	c.Title = title.String
	c.Notes = notes.String
	c.LinkedInURL = linkedin.String
	c.TwitterURL = twitter.String
	c.FacebookURL = facebook.String
	c.Headline = headline.String
	c.City = city.String
	c.Country = country.String
	c.Seniority = seniority.String
	c.ProviderID = providerID.String
	c.EmailStatus = emailStatus.String
	if lastEnriched.Valid {
		t := lastEnriched.Time
		c.LastEnrichedAt = &t
	}
	if err := json.Unmarshal([]byte(history), &c.EmploymentHistory); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal employment history")
	}
	return &c, nil
}
