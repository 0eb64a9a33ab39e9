package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/lead"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; tests pass a pgxmock pool here.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
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
	keywords        JSONB NOT NULL DEFAULT '[]',
	tags            JSONB NOT NULL DEFAULT '[]',
	provider_id     TEXT,
	founded_year    INTEGER,
	logo_url        TEXT,
	annual_revenue  BIGINT,
	printed_revenue TEXT,
	technologies    JSONB NOT NULL DEFAULT '[]',
	insights        JSONB NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
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
	employment_history JSONB NOT NULL DEFAULT '[]',
	provider_id        TEXT,
	email_status       TEXT,
	last_enriched_at   TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lists (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS list_companies_new (
	company_id TEXT NOT NULL REFERENCES companies(id),
	list_id    TEXT NOT NULL REFERENCES lists(id),
	added_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (company_id, list_id)
);

CREATE TABLE IF NOT EXISTS search_history (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	search_type  TEXT NOT NULL,
	params       JSONB NOT NULL DEFAULT '{}',
	result_count INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_results_archive (
	id            TEXT PRIMARY KEY,
	search_id     TEXT NOT NULL REFERENCES search_history(id),
	token         TEXT NOT NULL UNIQUE,
	payload       JSONB NOT NULL,
	added_to_list BOOLEAN NOT NULL DEFAULT false,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	subject    TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
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
	is_admin   BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_owner ON companies(owner_id);
CREATE INDEX IF NOT EXISTS idx_companies_provider ON companies(provider_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_provider ON contacts(provider_id);
CREATE INDEX IF NOT EXISTS idx_memberships_list ON list_companies_new(list_id);
CREATE INDEX IF NOT EXISTS idx_archive_search ON search_results_archive(search_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- companies ---

func (s *PostgresStore) CreateCompany(ctx context.Context, c *lead.Company) error {
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

	_, err = s.pool.Exec(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
		c.ID, c.OwnerID, nullIfEmpty(c.Name), nullIfEmpty(c.Website), nullIfEmpty(c.Industry),
		nullIfEmpty(c.SizeRange), nullIfEmpty(c.Description), nullIfEmpty(c.Phone),
		nullIfEmpty(c.Street), nullIfEmpty(c.City), nullIfEmpty(c.State), nullIfEmpty(c.ZipCode),
		nullIfEmpty(c.Country), nullIfEmpty(c.LinkedInURL), nullIfEmpty(c.FacebookURL),
		nullIfEmpty(c.TwitterURL), keywords, tags, nullIfEmpty(c.ProviderID),
		nilIfZero(c.FoundedYear), nullIfEmpty(c.LogoURL), c.AnnualRevenue,
		nullIfEmpty(c.PrintedRevenue), techs, insights, now, now,
	)
	return eris.Wrap(err, "postgres: insert company")
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*lead.Company, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if isNoRows(err) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) FindCompanyByProviderID(ctx context.Context, providerID string) (*lead.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE provider_id = $1 LIMIT 1`, providerID)
	c, err := scanCompany(row)
	if isNoRows(err) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) ListCompanies(ctx context.Context, ownerID string, limit, offset int) ([]lead.Company, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE owner_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (s *PostgresStore) PatchCompany(ctx context.Context, id string, patch *lead.CompanyPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	cols, vals, err := patchColumns(patch)
	if err != nil {
		return err
	}

	var sets []string
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	sets = append(sets, "updated_at = now()")

	args := append([]any{id}, vals...)
	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE companies SET %s WHERE id = $1`, strings.Join(sets, ", ")), args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: patch company %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SetCompanyTags(ctx context.Context, id string, tags []string) error {
	j, err := marshalJSON(tags, "[]")
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET tags = $2, updated_at = now() WHERE id = $1`, id, j)
	if err != nil {
		return eris.Wrapf(err, "postgres: set tags %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) PutCompanyInsight(ctx context.Context, id string, ins lead.Insight) error {
	if err := ins.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(ins)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal insight")
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE companies
		SET insights = jsonb_set(insights, ARRAY[$2::text], $3::jsonb), updated_at = now()
		WHERE id = $1`, id, string(ins.Kind), string(payload))
	if err != nil {
		return eris.Wrapf(err, "postgres: put insight %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

// --- contacts ---

func (s *PostgresStore) CreateContact(ctx context.Context, c *lead.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	history, err := marshalJSON(c.EmploymentHistory, "[]")
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22)`,
		c.ID, c.OwnerID, nullIfEmpty(c.CompanyID), nullIfEmpty(c.FirstName),
		nullIfEmpty(c.LastName), nullIfEmpty(c.Email), nullIfEmpty(c.Phone),
		nullIfEmpty(c.Title), nullIfEmpty(c.Notes), nullIfEmpty(c.LinkedInURL),
		nullIfEmpty(c.TwitterURL), nullIfEmpty(c.FacebookURL), nullIfEmpty(c.Headline),
		nullIfEmpty(c.City), nullIfEmpty(c.Country), nullIfEmpty(c.Seniority),
		history, nullIfEmpty(c.ProviderID), nullIfEmpty(c.EmailStatus),
		c.LastEnrichedAt, now, now,
	)
	return eris.Wrap(err, "postgres: insert contact")
}

func (s *PostgresStore) UpsertContactByProviderID(ctx context.Context, c *lead.Contact) error {
	if c.ProviderID == "" {
		return s.CreateContact(ctx, c)
	}
	var existingID string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM contacts WHERE provider_id = $1 LIMIT 1`, c.ProviderID).Scan(&existingID)
	if isNoRows(err) {
		return s.CreateContact(ctx, c)
	}
	if err != nil {
		return eris.Wrap(err, "postgres: find contact by provider id")
	}

	history, err := marshalJSON(c.EmploymentHistory, "[]")
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE contacts SET company_id = $2, first_name = $3, last_name = $4, email = $5,
			phone = $6, title = $7, linkedin_url = $8, twitter_url = $9, facebook_url = $10,
			headline = $11, city = $12, country = $13, seniority = $14,
			employment_history = $15, email_status = $16, last_enriched_at = $17,
			updated_at = now()
		WHERE id = $1`,
		existingID, nullIfEmpty(c.CompanyID), nullIfEmpty(c.FirstName), nullIfEmpty(c.LastName),
		nullIfEmpty(c.Email), nullIfEmpty(c.Phone), nullIfEmpty(c.Title),
		nullIfEmpty(c.LinkedInURL), nullIfEmpty(c.TwitterURL), nullIfEmpty(c.FacebookURL),
		nullIfEmpty(c.Headline), nullIfEmpty(c.City), nullIfEmpty(c.Country),
		nullIfEmpty(c.Seniority), history, nullIfEmpty(c.EmailStatus), c.LastEnrichedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: upsert contact")
	}
	c.ID = existingID
	return nil
}

func (s *PostgresStore) GetContact(ctx context.Context, id string) (*lead.Contact, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	c, err := scanContact(row)
	if isNoRows(err) {
		return nil, nil
	}
	return c, err
}

func (s *PostgresStore) ListContactsByCompany(ctx context.Context, companyID string) ([]lead.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE company_id = $1 ORDER BY created_at`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
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
	return contacts, eris.Wrap(rows.Err(), "postgres: list contacts iterate")
}

// --- lists and memberships ---

func (s *PostgresStore) CreateList(ctx context.Context, l *lead.List) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	l.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO lists (id, owner_id, name, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.OwnerID, l.Name, nullIfEmpty(l.Description), l.CreatedAt)
	return eris.Wrap(err, "postgres: insert list")
}

func (s *PostgresStore) GetList(ctx context.Context, id string) (*lead.List, error) {
	var l lead.List
	var desc *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, description, created_at FROM lists WHERE id = $1`, id).
		Scan(&l.ID, &l.OwnerID, &l.Name, &desc, &l.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get list %s", id)
	}
	if desc != nil {
		l.Description = *desc
	}
	return &l, nil
}

func (s *PostgresStore) ListLists(ctx context.Context, ownerID string) ([]lead.List, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, description, created_at FROM lists
		 WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list lists")
	}
	defer rows.Close()

	var lists []lead.List
	for rows.Next() {
		var l lead.List
		var desc *string
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &desc, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan list")
		}
		if desc != nil {
			l.Description = *desc
		}
		lists = append(lists, l)
	}
	return lists, eris.Wrap(rows.Err(), "postgres: list lists iterate")
}

// MoveCompanyToList removes every membership the company has and inserts one
// for the target list inside a single transaction.
func (s *PostgresStore) MoveCompanyToList(ctx context.Context, companyID, listID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin move")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`DELETE FROM list_companies_new WHERE company_id = $1`, companyID); err != nil {
		return eris.Wrap(err, "postgres: clear memberships")
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO list_companies_new (company_id, list_id, added_at) VALUES ($1, $2, now())`,
		companyID, listID); err != nil {
		return eris.Wrap(err, "postgres: insert membership")
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit move")
}

func (s *PostgresStore) AddCompanyToList(ctx context.Context, companyID, listID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM list_companies_new WHERE company_id = $1 AND list_id = $2`,
		companyID, listID).Scan(&one)
	if err == nil {
		return true, nil
	}
	if err != nil && !isNoRows(err) {
		return false, eris.Wrap(err, "postgres: check membership")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO list_companies_new (company_id, list_id, added_at) VALUES ($1, $2, now())`,
		companyID, listID)
	return false, eris.Wrap(err, "postgres: add membership")
}

func (s *PostgresStore) ListMemberships(ctx context.Context, companyID string) ([]lead.Membership, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company_id, list_id, added_at FROM list_companies_new WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list memberships")
	}
	defer rows.Close()

	var ms []lead.Membership
	for rows.Next() {
		var m lead.Membership
		if err := rows.Scan(&m.CompanyID, &m.ListID, &m.AddedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan membership")
		}
		ms = append(ms, m)
	}
	return ms, eris.Wrap(rows.Err(), "postgres: list memberships iterate")
}

func (s *PostgresStore) ListCompaniesInList(ctx context.Context, listID string) ([]lead.Company, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+prefixedCompanyColumns("c")+`
		FROM companies c
		JOIN list_companies_new m ON m.company_id = c.id
		WHERE m.list_id = $1
		ORDER BY m.added_at DESC`, listID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: companies in list")
	}
	defer rows.Close()
	return collectCompanies(rows)
}

// --- search archival ---

func (s *PostgresStore) CreateSearch(ctx context.Context, sr *lead.SearchRecord) error {
	if sr.ID == "" {
		sr.ID = uuid.New().String()
	}
	sr.CreatedAt = time.Now().UTC()
	params := sr.Params
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_history (id, owner_id, search_type, params, result_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sr.ID, sr.OwnerID, sr.SearchType, string(params), sr.ResultCount, sr.CreatedAt)
	return eris.Wrap(err, "postgres: insert search")
}

func (s *PostgresStore) UpdateSearchResultCount(ctx context.Context, searchID string, n int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE search_history SET result_count = $2 WHERE id = $1`, searchID, n)
	if err != nil {
		return eris.Wrapf(err, "postgres: update result count %s", searchID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("search not found: %s", searchID)
	}
	return nil
}

// ArchiveResults lands the whole page with COPY.
func (s *PostgresStore) ArchiveResults(ctx context.Context, rows []lead.ArchivedResult) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	copyRows := make([][]any, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		copyRows = append(copyRows, []any{r.ID, r.SearchID, r.Token, string(r.Payload), false, now})
	}
	_, err := db.CopyFrom(ctx, s.pool, "search_results_archive",
		[]string{"id", "search_id", "token", "payload", "added_to_list", "created_at"}, copyRows)
	return err
}

func (s *PostgresStore) GetArchivedResults(ctx context.Context, searchID string) ([]lead.ArchivedResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, search_id, token, payload, added_to_list, created_at
		 FROM search_results_archive WHERE search_id = $1`, searchID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get archived results")
	}
	defer rows.Close()

	var out []lead.ArchivedResult
	for rows.Next() {
		var r lead.ArchivedResult
		var payload string
		if err := rows.Scan(&r.ID, &r.SearchID, &r.Token, &payload, &r.AddedToList, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan archived result")
		}
		r.Payload = json.RawMessage(payload)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: archived results iterate")
}

func (s *PostgresStore) MarkResultAdded(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE search_results_archive SET added_to_list = true WHERE token = $1`, token)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark result added %s", token)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("archived result not found: %s", token)
	}
	return nil
}

// --- templates ---

func (s *PostgresStore) UpsertTemplate(ctx context.Context, t *lead.Template) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO templates (id, owner_id, name, subject, body)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, name) DO UPDATE SET
			subject = EXCLUDED.subject, body = EXCLUDED.body, updated_at = now()`,
		t.ID, t.OwnerID, t.Name, t.Subject, t.Body)
	return eris.Wrap(err, "postgres: upsert template")
}

func (s *PostgresStore) GetTemplateByName(ctx context.Context, ownerID, name string) (*lead.Template, error) {
	var t lead.Template
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, subject, body, created_at, updated_at
		 FROM templates WHERE owner_id = $1 AND name = $2`, ownerID, name).
		Scan(&t.ID, &t.OwnerID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get template %s", name)
	}
	return &t, nil
}

func (s *PostgresStore) ListTemplates(ctx context.Context, ownerID string) ([]lead.Template, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, subject, body, created_at, updated_at
		 FROM templates WHERE owner_id = $1 ORDER BY name`, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list templates")
	}
	defer rows.Close()

	var ts []lead.Template
	for rows.Next() {
		var t lead.Template
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan template")
		}
		ts = append(ts, t)
	}
	return ts, eris.Wrap(rows.Err(), "postgres: list templates iterate")
}

// --- settings ---

func (s *PostgresStore) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get settings")
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, eris.Wrap(err, "postgres: scan setting")
		}
		settings[k] = v
	}
	return settings, eris.Wrap(rows.Err(), "postgres: settings iterate")
}

func (s *PostgresStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return eris.Wrapf(err, "postgres: set setting %s", key)
}

// --- users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *lead.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, is_admin, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, nullIfEmpty(u.Name), u.IsAdmin, u.CreatedAt)
	return eris.Wrap(err, "postgres: insert user")
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*lead.User, error) {
	var u lead.User
	var name *string
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &name, &u.IsAdmin, &u.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get user %s", email)
	}
	if name != nil {
		u.Name = *name
	}
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]lead.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, name, is_admin, created_at FROM users ORDER BY email`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list users")
	}
	defer rows.Close()

	var users []lead.User
	for rows.Next() {
		var u lead.User
		var name *string
		if err := rows.Scan(&u.ID, &u.Email, &name, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan user")
		}
		if name != nil {
			u.Name = *name
		}
		users = append(users, u)
	}
	return users, eris.Wrap(rows.Err(), "postgres: list users iterate")
}

func (s *PostgresStore) SetUserAdmin(ctx context.Context, id string, admin bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET is_admin = $2 WHERE id = $1`, id, admin)
	if err != nil {
		return eris.Wrapf(err, "postgres: set admin %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("user not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete user %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("user not found: %s", id)
	}
	return nil
}

// --- monitoring ---

func (s *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM contacts),
			(SELECT COUNT(*) FROM lists),
			(SELECT COUNT(*) FROM search_history),
			(SELECT COUNT(*) FROM search_results_archive),
			(SELECT COUNT(*) FROM search_results_archive WHERE added_to_list)`).
		Scan(&c.Companies, &c.Contacts, &c.Lists, &c.Searches, &c.ArchivedResults, &c.PromotedResults)
	return c, eris.Wrap(err, "postgres: counts")
}

// isNoRows matches the sentinel from either driver.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func collectCompanies(rows pgx.Rows) ([]lead.Company, error) {
	var companies []lead.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: collect companies")
}
