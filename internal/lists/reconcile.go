// Package lists enforces the one-list-per-company rule on top of the store.
package lists

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/store"
)

// Reconciler moves and adds companies between lists. Moving is the default
// action in the dashboard; a company lives on exactly one list at a time.
type Reconciler struct {
	store store.Store
	log   *zap.Logger
}

func NewReconciler(st store.Store) *Reconciler {
	return &Reconciler{store: st, log: zap.L().Named("lists")}
}

// Move places the company on the target list and removes it from every other
// list it is on, including stray leftover memberships.
func (r *Reconciler) Move(ctx context.Context, companyID, listID string) error {
	if err := r.validate(ctx, companyID, listID); err != nil {
		return err
	}
	if err := r.store.MoveCompanyToList(ctx, companyID, listID); err != nil {
		return err
	}
	r.log.Info("company moved to list",
		zap.String("company_id", companyID), zap.String("list_id", listID))
	return nil
}

// Add places the company on the list without touching its other memberships.
// Adding a company that is already on the list is a no-op.
func (r *Reconciler) Add(ctx context.Context, companyID, listID string) error {
	if err := r.validate(ctx, companyID, listID); err != nil {
		return err
	}
	already, err := r.store.AddCompanyToList(ctx, companyID, listID)
	if err != nil {
		return err
	}
	if already {
		r.log.Debug("company already on list",
			zap.String("company_id", companyID), zap.String("list_id", listID))
		return nil
	}
	r.log.Info("company added to list",
		zap.String("company_id", companyID), zap.String("list_id", listID))
	return nil
}

func (r *Reconciler) validate(ctx context.Context, companyID, listID string) error {
	company, err := r.store.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if company == nil {
		return eris.Errorf("lists: company not found: %s", companyID)
	}
	list, err := r.store.GetList(ctx, listID)
	if err != nil {
		return err
	}
	if list == nil {
		return eris.Errorf("lists: list not found: %s", listID)
	}
	return nil
}
