// Package promote turns archived search results into dashboard contacts and
// companies. Promotion is the only path from the archive into the CRM tables.
package promote

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospect-cli/internal/archive"
	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/lists"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/hook"
)

// Enricher fetches the full provider record for a person.
type Enricher interface {
	Enrich(ctx context.Context, req hook.EnrichRequest) (json.RawMessage, error)
}

var _ Enricher = (*hook.Client)(nil)

// Options tunes promotion behavior.
type Options struct {
	// UpsertContacts replaces insert-always with upsert-by-provider-id, so
	// re-promoting the same person updates their row instead of duplicating it.
	UpsertContacts bool
	// Refresh fetches a fresh record from the enrichment webhook instead of
	// using the archived search payload. Falls back to the archive when the
	// webhook fails.
	Refresh bool
}

// Promoter coordinates the store, the list reconciler and the enrichment
// webhook for one promotion.
type Promoter struct {
	store    store.Store
	archive  *archive.Archiver
	lists    *lists.Reconciler
	enricher Enricher
	opts     Options
	log      *zap.Logger
}

func New(st store.Store, arc *archive.Archiver, rec *lists.Reconciler, enricher Enricher, opts Options) *Promoter {
	return &Promoter{
		store:    st,
		archive:  arc,
		lists:    rec,
		enricher: enricher,
		opts:     opts,
		log:      zap.L().Named("promote"),
	}
}

// Result reports what one promotion produced.
type Result struct {
	Token     string `json:"token"`
	CompanyID string `json:"company_id"`
	ContactID string `json:"contact_id"`
	Err       string `json:"error,omitempty"`
}

// Promote lands one archived result as a contact plus company and moves the
// company onto the target list. Company patch failures and list failures are
// logged but do not undo the contact: the contact row is the promotion's
// anchor and partial enrichment beats none.
func (p *Promoter) Promote(ctx context.Context, ownerID, searchID, token, listID string) (*Result, error) {
	row, err := p.archive.Find(ctx, searchID, token)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, eris.Errorf("promote: archived result not found: %s", token)
	}

	payload := []byte(row.Payload)
	parsed, err := lead.ParseEnrichment(payload)
	if err != nil {
		return nil, err
	}

	if p.opts.Refresh && p.enricher != nil && parsed.Person.ID != "" {
		fresh, err := p.enricher.Enrich(ctx, enrichRequest(parsed))
		if err != nil {
			p.log.Warn("enrichment webhook failed, using archived payload",
				zap.String("token", token), zap.Error(err))
		} else if refreshed, perr := lead.ParseEnrichment(fresh); perr == nil {
			parsed = refreshed
		} else {
			p.log.Warn("enrichment webhook returned unparseable payload",
				zap.String("token", token), zap.Error(perr))
		}
	}

	company, err := p.resolveCompany(ctx, ownerID, parsed)
	if err != nil {
		return nil, err
	}

	insert, patch := lead.MergeEnrichment(parsed, company.Name)
	contact := contactFromInsert(ownerID, company.ID, insert)
	if p.opts.UpsertContacts {
		err = p.store.UpsertContactByProviderID(ctx, contact)
	} else {
		err = p.store.CreateContact(ctx, contact)
	}
	if err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		if err := p.store.PatchCompany(ctx, company.ID, patch); err != nil {
			p.log.Error("company patch failed after contact insert",
				zap.String("company_id", company.ID), zap.Error(err))
		}
	}

	if err := p.store.MarkResultAdded(ctx, token); err != nil {
		p.log.Warn("mark result added failed", zap.String("token", token), zap.Error(err))
	}

	if listID != "" {
		if err := p.lists.Move(ctx, company.ID, listID); err != nil {
			p.log.Error("list move failed after promotion",
				zap.String("company_id", company.ID), zap.String("list_id", listID), zap.Error(err))
		}
	}

	p.log.Info("result promoted",
		zap.String("token", token),
		zap.String("company_id", company.ID),
		zap.String("contact_id", contact.ID))
	return &Result{Token: token, CompanyID: company.ID, ContactID: contact.ID}, nil
}

// BatchOptions tunes a batch promotion.
type BatchOptions struct {
	Concurrency int
}

// PromoteBatch promotes several tokens from one search. Each token succeeds
// or fails on its own; a bad token never aborts its siblings.
func (p *Promoter) PromoteBatch(ctx context.Context, ownerID, searchID string, tokens []string, listID string, opts BatchOptions) []Result {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]Result, len(tokens))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, token := range tokens {
		g.Go(func() error {
			res, err := p.Promote(gctx, ownerID, searchID, token, listID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.log.Warn("promotion failed", zap.String("token", token), zap.Error(err))
				results[i] = Result{Token: token, Err: err.Error()}
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// resolveCompany finds the company the person belongs to, creating a shell
// row when the provider organization is new to us. Enrichment fills the shell
// in via the patch right after.
func (p *Promoter) resolveCompany(ctx context.Context, ownerID string, parsed *lead.ProviderPayload) (*lead.Company, error) {
	org := parsed.Person.Organization
	if org.ID != "" {
		existing, err := p.store.FindCompanyByProviderID(ctx, org.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	company := &lead.Company{OwnerID: ownerID, ProviderID: org.ID}
	if org.Name != nil {
		company.Name = *org.Name
	}
	if err := p.store.CreateCompany(ctx, company); err != nil {
		return nil, err
	}
	// The merge still sees no existing name: the shell's name came from the
	// provider and must not block the generic-name policy.
	company.Name = ""
	return company, nil
}

func contactFromInsert(ownerID, companyID string, in *lead.ContactInsert) *lead.Contact {
	c := &lead.Contact{
		OwnerID:           ownerID,
		CompanyID:         companyID,
		FirstName:         deref(in.FirstName),
		LastName:          deref(in.LastName),
		Email:             deref(in.Email),
		Phone:             deref(in.Phone),
		Title:             deref(in.Title),
		LinkedInURL:       deref(in.LinkedInURL),
		TwitterURL:        deref(in.TwitterURL),
		FacebookURL:       deref(in.FacebookURL),
		Headline:          deref(in.Headline),
		City:              deref(in.City),
		Country:           deref(in.Country),
		Seniority:         deref(in.Seniority),
		EmailStatus:       deref(in.EmailStatus),
		EmploymentHistory: in.EmploymentHistory,
		ProviderID:        in.ProviderID,
	}
	enriched := in.LastEnrichedAt
	c.LastEnrichedAt = &enriched
	return c
}

// enrichRequest builds the webhook lookup from the archived person.
func enrichRequest(parsed *lead.ProviderPayload) hook.EnrichRequest {
	return hook.EnrichRequest{
		ContactID:   parsed.Person.ID,
		FirstName:   deref(parsed.Person.FirstName),
		LastName:    deref(parsed.Person.LastName),
		CompanyName: deref(parsed.Person.Organization.Name),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
