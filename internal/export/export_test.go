package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/store"
)

func newFixture(t *testing.T) (*Exporter, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return NewExporter(st), st
}

func seed(t *testing.T, st store.Store) (*lead.Company, *lead.List) {
	t.Helper()
	ctx := context.Background()
	c := &lead.Company{OwnerID: "owner-1", Name: "Acme Mountain Contracting",
		Website: "https://acme.example.com", Industry: "construction",
		City: "Denver", State: "CO", FoundedYear: 1987, Tags: []string{"hot", "roofing"}}
	require.NoError(t, st.CreateCompany(ctx, c))

	contact := &lead.Contact{OwnerID: "owner-1", CompanyID: c.ID,
		FirstName: "Dana", LastName: "Reyes", Email: "dana@acme.example.com", Title: "Owner"}
	require.NoError(t, st.CreateContact(ctx, contact))

	l := &lead.List{OwnerID: "owner-1", Name: "prospects"}
	require.NoError(t, st.CreateList(ctx, l))
	_, err := st.AddCompanyToList(ctx, c.ID, l.ID)
	require.NoError(t, err)
	return c, l
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	require.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	e, st := newFixture(t)
	seed(t, st)

	var buf bytes.Buffer
	n, err := e.Export(context.Background(), "owner-1", Options{Format: FormatCSV}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, companyHeader, records[0])
	assert.Equal(t, "Acme Mountain Contracting", records[1][0])
	assert.Equal(t, "1987", records[1][8])
	assert.Equal(t, "hot;roofing", records[1][10])
}

func TestExportCSVWithContacts(t *testing.T) {
	e, st := newFixture(t)
	seed(t, st)

	var buf bytes.Buffer
	_, err := e.Export(context.Background(), "owner-1",
		Options{Format: FormatCSV, IncludeContacts: true}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "first_name,last_name,email")
	assert.Contains(t, out, "Dana,Reyes,dana@acme.example.com,Owner")
}

func TestExportXLSX(t *testing.T) {
	e, st := newFixture(t)
	seed(t, st)

	var buf bytes.Buffer
	n, err := e.Export(context.Background(), "owner-1",
		Options{Format: FormatXLSX, IncludeContacts: true}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Equal(t, "Companies", f.Sheets[0].Name)
	assert.Equal(t, "Contacts", f.Sheets[1].Name)
	require.GreaterOrEqual(t, len(f.Sheets[0].Rows), 2)
	assert.Equal(t, "Acme Mountain Contracting", f.Sheets[0].Rows[1].Cells[0].String())
}

func TestExportListScoped(t *testing.T) {
	e, st := newFixture(t)
	_, l := seed(t, st)

	outside := &lead.Company{OwnerID: "owner-1", Name: "Not On The List"}
	require.NoError(t, st.CreateCompany(context.Background(), outside))

	var buf bytes.Buffer
	n, err := e.Export(context.Background(), "owner-1",
		Options{Format: FormatCSV, ListID: l.ID}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, buf.String(), "Not On The List")
}

func TestExportEmptyStore(t *testing.T) {
	e, _ := newFixture(t)

	var buf bytes.Buffer
	n, err := e.Export(context.Background(), "owner-1", Options{Format: FormatCSV}, &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

type fakeCRMSink struct {
	payloads []any
	err      error
}

func (f *fakeCRMSink) ExportCRM(ctx context.Context, payload any) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

func TestExportCRM(t *testing.T) {
	e, st := newFixture(t)
	c, _ := seed(t, st)

	sink := &fakeCRMSink{}
	require.NoError(t, e.ExportCRM(context.Background(), sink, c.ID))

	require.Len(t, sink.payloads, 1)
	rec, ok := sink.payloads[0].(CRMRecord)
	require.True(t, ok)
	assert.Equal(t, c.ID, rec.Company.ID)
	assert.Equal(t, "Acme Mountain Contracting", rec.Company.Name)
	require.Len(t, rec.Contacts, 1)
	assert.Equal(t, "dana@acme.example.com", rec.Contacts[0].Email)
}

func TestExportCRMUnknownCompany(t *testing.T) {
	e, _ := newFixture(t)

	sink := &fakeCRMSink{}
	err := e.ExportCRM(context.Background(), sink, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Empty(t, sink.payloads)
}

func TestExportCRMSinkErrorSurfaces(t *testing.T) {
	e, st := newFixture(t)
	c, _ := seed(t, st)

	sink := &fakeCRMSink{err: errors.New("crm down")}
	err := e.ExportCRM(context.Background(), sink, c.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crm down")
}
