package promote

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/archive"
	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/lists"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
)

type fakeEnricher struct {
	payload json.RawMessage
	err     error
	calls   int
	lastReq hook.EnrichRequest
}

func (f *fakeEnricher) Enrich(ctx context.Context, req hook.EnrichRequest) (json.RawMessage, error) {
	f.calls++
	f.lastReq = req
	return f.payload, f.err
}

type fixture struct {
	store    store.Store
	archiver *archive.Archiver
	lists    *lists.Reconciler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return fixture{store: st, archiver: archive.NewArchiver(st), lists: lists.NewReconciler(st)}
}

const personPayload = `{
	"id": "p-1",
	"first_name": "Dana",
	"last_name": "Reyes",
	"email": "dana@acme.example.com",
	"title": "Owner",
	"organization": {
		"id": "org-1",
		"name": "Acme Mountain Contracting",
		"website_url": "https://acme.example.com",
		"industry": "construction"
	}
}`

func archiveOne(t *testing.T, f fixture, payload string) (searchID, token string) {
	t.Helper()
	rec, err := f.archiver.Archive(context.Background(), "owner-1", lead.SearchPeople,
		nil, []json.RawMessage{json.RawMessage(payload)})
	require.NoError(t, err)
	rows := f.archiver.Results(context.Background(), rec.ID)
	require.Len(t, rows, 1)
	return rec.ID, rows[0].Token
}

func TestPromoteCreatesCompanyAndContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	searchID, token := archiveOne(t, f, personPayload)

	list := &lead.List{OwnerID: "owner-1", Name: "prospects"}
	require.NoError(t, f.store.CreateList(ctx, list))

	p := New(f.store, f.archiver, f.lists, nil, Options{})
	res, err := p.Promote(ctx, "owner-1", searchID, token, list.ID)
	require.NoError(t, err)

	company, err := f.store.GetCompany(ctx, res.CompanyID)
	require.NoError(t, err)
	require.NotNil(t, company)
	assert.Equal(t, "Acme Mountain Contracting", company.Name)
	assert.Equal(t, "https://acme.example.com", company.Website)
	assert.Equal(t, "org-1", company.ProviderID)

	contact, err := f.store.GetContact(ctx, res.ContactID)
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, "Dana", contact.FirstName)
	assert.Equal(t, res.CompanyID, contact.CompanyID)
	require.NotNil(t, contact.LastEnrichedAt)

	ms, err := f.store.ListMemberships(ctx, res.CompanyID)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, list.ID, ms[0].ListID)

	rows := f.archiver.Results(ctx, searchID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].AddedToList)
}

func TestPromoteReusesCompanyByProviderID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing := &lead.Company{OwnerID: "owner-1", Name: "Acme Mountain Contracting",
		ProviderID: "org-1"}
	require.NoError(t, f.store.CreateCompany(ctx, existing))

	searchID, token := archiveOne(t, f, personPayload)
	p := New(f.store, f.archiver, f.lists, nil, Options{})
	res, err := p.Promote(ctx, "owner-1", searchID, token, "")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.CompanyID)
}

func TestPromoteGenericNameKeepsExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing := &lead.Company{OwnerID: "owner-1", Name: "Acme Mountain Contracting",
		ProviderID: "org-1"}
	require.NoError(t, f.store.CreateCompany(ctx, existing))

	generic := `{
		"id": "p-2",
		"first_name": "Sam",
		"organization": {"id": "org-1", "name": "Roofing Co"}
	}`
	searchID, token := archiveOne(t, f, generic)

	p := New(f.store, f.archiver, f.lists, nil, Options{})
	_, err := p.Promote(ctx, "owner-1", searchID, token, "")
	require.NoError(t, err)

	got, err := f.store.GetCompany(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Mountain Contracting", got.Name)
}

func TestPromoteUnknownToken(t *testing.T) {
	f := newFixture(t)
	searchID, _ := archiveOne(t, f, personPayload)

	p := New(f.store, f.archiver, f.lists, nil, Options{})
	_, err := p.Promote(context.Background(), "owner-1", searchID, searchID+":nope", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPromoteRefreshFallsBackOnWebhookError(t *testing.T) {
	f := newFixture(t)
	searchID, token := archiveOne(t, f, personPayload)

	enricher := &fakeEnricher{err: errors.New("webhook down")}
	p := New(f.store, f.archiver, f.lists, enricher, Options{Refresh: true})
	res, err := p.Promote(context.Background(), "owner-1", searchID, token, "")
	require.NoError(t, err)
	assert.Equal(t, 1, enricher.calls)

	contact, err := f.store.GetContact(context.Background(), res.ContactID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", contact.FirstName)
}

func TestPromoteRefreshUsesWebhookPayload(t *testing.T) {
	f := newFixture(t)
	searchID, token := archiveOne(t, f, personPayload)

	fresh := `{
		"id": "p-1",
		"first_name": "Dana",
		"email": "dana.new@acme.example.com",
		"organization": {"id": "org-1", "name": "Acme Mountain Contracting"}
	}`
	enricher := &fakeEnricher{payload: json.RawMessage(fresh)}
	p := New(f.store, f.archiver, f.lists, enricher, Options{Refresh: true})
	res, err := p.Promote(context.Background(), "owner-1", searchID, token, "")
	require.NoError(t, err)
	assert.Equal(t, hook.EnrichRequest{
		ContactID: "p-1", FirstName: "Dana", LastName: "Reyes",
		CompanyName: "Acme Mountain Contracting",
	}, enricher.lastReq)

	contact, err := f.store.GetContact(context.Background(), res.ContactID)
	require.NoError(t, err)
	assert.Equal(t, "dana.new@acme.example.com", contact.Email)
}

func TestPromoteUpsertContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	searchID, token := archiveOne(t, f, personPayload)

	p := New(f.store, f.archiver, f.lists, nil, Options{UpsertContacts: true})
	first, err := p.Promote(ctx, "owner-1", searchID, token, "")
	require.NoError(t, err)
	second, err := p.Promote(ctx, "owner-1", searchID, token, "")
	require.NoError(t, err)
	assert.Equal(t, first.ContactID, second.ContactID)

	contacts, err := f.store.ListContactsByCompany(ctx, first.CompanyID)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestPromoteBatchIsolatesFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	searchID, token := archiveOne(t, f, personPayload)

	p := New(f.store, f.archiver, f.lists, nil, Options{})
	results := p.PromoteBatch(ctx, "owner-1", searchID,
		[]string{token, searchID + ":bogus"}, "", BatchOptions{})

	require.Len(t, results, 2)
	assert.Empty(t, results[0].Err)
	assert.NotEmpty(t, results[0].ContactID)
	assert.NotEmpty(t, results[1].Err)
}
