// Package outreach renders stored email templates against a contact and its
// company and hands the result to the email webhook.
package outreach

import (
	"bytes"
	"context"
	"text/template"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
)

// Sender delivers a rendered message. *hook.Client satisfies it.
type Sender interface {
	SendEmail(ctx context.Context, msg hook.EmailMessage) error
}

var _ Sender = (*hook.Client)(nil)

// Fields is the data a template renders against. Missing values render as
// empty strings; templates should guard their own salutations.
type Fields struct {
	FirstName   string
	LastName    string
	Email       string
	Title       string
	CompanyName string
	Website     string
	City        string
	State       string
}

// Email is a rendered, unsent message.
type Email struct {
	To      string
	Subject string
	Body    string
}

type Service struct {
	store  store.Store
	sender Sender
	log    *zap.Logger
}

func NewService(st store.Store, sender Sender) *Service {
	return &Service{store: st, sender: sender, log: zap.L().Named("outreach")}
}

var funcs = template.FuncMap{
	"title": cases.Title(language.English).String,
	"upper": cases.Upper(language.English).String,
	"lower": cases.Lower(language.English).String,
}

// Render produces the message for one contact from a named template without
// sending it. The contact must have an email address.
func (s *Service) Render(ctx context.Context, ownerID, templateName, contactID string) (*Email, error) {
	tpl, err := s.store.GetTemplateByName(ctx, ownerID, templateName)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, eris.Errorf("outreach: template not found: %s", templateName)
	}

	contact, err := s.store.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, eris.Errorf("outreach: contact not found: %s", contactID)
	}
	if contact.Email == "" {
		return nil, eris.Errorf("outreach: contact %s has no email address", contactID)
	}

	fields := Fields{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		Email:     contact.Email,
		Title:     contact.Title,
	}
	if contact.CompanyID != "" {
		company, err := s.store.GetCompany(ctx, contact.CompanyID)
		if err != nil {
			return nil, err
		}
		if company != nil {
			fields.CompanyName = company.Name
			fields.Website = company.Website
			fields.City = company.City
			fields.State = company.State
		}
	}

	subject, err := render(tpl.Name+":subject", tpl.Subject, fields)
	if err != nil {
		return nil, err
	}
	body, err := render(tpl.Name+":body", tpl.Body, fields)
	if err != nil {
		return nil, err
	}
	return &Email{To: contact.Email, Subject: subject, Body: body}, nil
}

// Send renders and dispatches in one step.
func (s *Service) Send(ctx context.Context, ownerID, templateName, contactID string) (*Email, error) {
	msg, err := s.Render(ctx, ownerID, templateName, contactID)
	if err != nil {
		return nil, err
	}
	if err := s.sender.SendEmail(ctx, hook.EmailMessage{
		To: msg.To, Subject: msg.Subject, Body: msg.Body,
	}); err != nil {
		return nil, err
	}
	s.log.Info("outreach email dispatched",
		zap.String("template", templateName),
		zap.String("contact_id", contactID))
	return msg, nil
}

func render(name, text string, fields Fields) (string, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", eris.Wrapf(err, "outreach: parse template %s", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, fields); err != nil {
		return "", eris.Wrapf(err, "outreach: render template %s", name)
	}
	return buf.String(), nil
}

// SeedTemplate is one entry in a YAML template seed file.
type SeedTemplate struct {
	Name    string `yaml:"name"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// ImportSeeds upserts a batch of templates, validating that each one parses
// before it is stored.
func (s *Service) ImportSeeds(ctx context.Context, ownerID string, seeds []SeedTemplate) (int, error) {
	for _, seed := range seeds {
		if seed.Name == "" {
			return 0, eris.New("outreach: seed template missing name")
		}
		if _, err := render(seed.Name+":subject", seed.Subject, Fields{}); err != nil {
			return 0, err
		}
		if _, err := render(seed.Name+":body", seed.Body, Fields{}); err != nil {
			return 0, err
		}
	}
	for _, seed := range seeds {
		if err := s.store.UpsertTemplate(ctx, &lead.Template{
			OwnerID: ownerID, Name: seed.Name, Subject: seed.Subject, Body: seed.Body,
		}); err != nil {
			return 0, err
		}
	}
	return len(seeds), nil
}
