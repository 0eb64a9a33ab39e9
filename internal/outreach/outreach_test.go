package outreach

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
)

type fakeSender struct {
	sent []hook.EmailMessage
	err  error
}

func (f *fakeSender) SendEmail(ctx context.Context, msg hook.EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newService(t *testing.T, sender Sender) (*Service, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return NewService(st, sender), st
}

func seed(t *testing.T, st store.Store) *lead.Contact {
	t.Helper()
	ctx := context.Background()
	company := &lead.Company{OwnerID: "owner-1", Name: "acme mountain contracting",
		Website: "https://acme.example.com", City: "Denver", State: "CO"}
	require.NoError(t, st.CreateCompany(ctx, company))

	contact := &lead.Contact{OwnerID: "owner-1", CompanyID: company.ID,
		FirstName: "dana", LastName: "Reyes", Email: "dana@acme.example.com", Title: "Owner"}
	require.NoError(t, st.CreateContact(ctx, contact))

	require.NoError(t, st.UpsertTemplate(ctx, &lead.Template{
		OwnerID: "owner-1",
		Name:    "intro",
		Subject: "Quick question for {{title .CompanyName}}",
		Body:    "Hi {{title .FirstName}},\n\nI noticed {{.CompanyName}} is based in {{.City}}.",
	}))
	return contact
}

func TestRender(t *testing.T) {
	s, st := newService(t, &fakeSender{})
	contact := seed(t, st)

	msg, err := s.Render(context.Background(), "owner-1", "intro", contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana@acme.example.com", msg.To)
	assert.Equal(t, "Quick question for Acme Mountain Contracting", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Dana,")
	assert.Contains(t, msg.Body, "based in Denver")
}

func TestRenderTemplateNotFound(t *testing.T) {
	s, st := newService(t, &fakeSender{})
	contact := seed(t, st)

	_, err := s.Render(context.Background(), "owner-1", "nope", contact.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
}

func TestRenderContactWithoutEmail(t *testing.T) {
	s, st := newService(t, &fakeSender{})
	seed(t, st)

	noEmail := &lead.Contact{OwnerID: "owner-1", FirstName: "Sam"}
	require.NoError(t, st.CreateContact(context.Background(), noEmail))

	_, err := s.Render(context.Background(), "owner-1", "intro", noEmail.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no email address")
}

func TestSendDispatchesThroughSender(t *testing.T) {
	sender := &fakeSender{}
	s, st := newService(t, sender)
	contact := seed(t, st)

	_, err := s.Send(context.Background(), "owner-1", "intro", contact.ID)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "dana@acme.example.com", sender.sent[0].To)
}

func TestSendSenderErrorSurfaces(t *testing.T) {
	sender := &fakeSender{err: errors.New("webhook down")}
	s, st := newService(t, sender)
	contact := seed(t, st)

	_, err := s.Send(context.Background(), "owner-1", "intro", contact.ID)
	require.Error(t, err)
}

func TestImportSeeds(t *testing.T) {
	s, st := newService(t, &fakeSender{})

	n, err := s.ImportSeeds(context.Background(), "owner-1", []SeedTemplate{
		{Name: "intro", Subject: "Hello {{.FirstName}}", Body: "Hi"},
		{Name: "followup", Subject: "Re: hello", Body: "Bumping this"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := st.ListTemplates(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportSeedsRejectsBadTemplate(t *testing.T) {
	s, st := newService(t, &fakeSender{})

	_, err := s.ImportSeeds(context.Background(), "owner-1", []SeedTemplate{
		{Name: "bad", Subject: "{{.Unclosed", Body: "x"},
	})
	require.Error(t, err)

	all, err := st.ListTemplates(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportSeedsRequiresName(t *testing.T) {
	s, _ := newService(t, &fakeSender{})
	_, err := s.ImportSeeds(context.Background(), "owner-1", []SeedTemplate{{Subject: "x"}})
	require.Error(t, err)
}
