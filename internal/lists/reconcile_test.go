package lists

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/store"
)

func newFixture(t *testing.T) (*Reconciler, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return NewReconciler(st), st
}

func seed(t *testing.T, st store.Store) (*lead.Company, *lead.List, *lead.List) {
	t.Helper()
	ctx := context.Background()
	c := &lead.Company{OwnerID: "owner-1", Name: "Acme Roofing Co"}
	require.NoError(t, st.CreateCompany(ctx, c))
	a := &lead.List{OwnerID: "owner-1", Name: "prospects"}
	require.NoError(t, st.CreateList(ctx, a))
	b := &lead.List{OwnerID: "owner-1", Name: "customers"}
	require.NoError(t, st.CreateList(ctx, b))
	return c, a, b
}

func TestMoveReplacesMembership(t *testing.T) {
	r, st := newFixture(t)
	ctx := context.Background()
	c, a, b := seed(t, st)

	require.NoError(t, r.Move(ctx, c.ID, a.ID))
	require.NoError(t, r.Move(ctx, c.ID, b.ID))

	ms, err := st.ListMemberships(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, b.ID, ms[0].ListID)
}

func TestMoveUnknownCompany(t *testing.T) {
	r, st := newFixture(t)
	_, a, _ := seed(t, st)

	err := r.Move(context.Background(), "missing", a.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company not found")
}

func TestMoveUnknownList(t *testing.T) {
	r, st := newFixture(t)
	c, _, _ := seed(t, st)

	err := r.Move(context.Background(), c.ID, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list not found")
}

func TestAddIsIdempotent(t *testing.T) {
	r, st := newFixture(t)
	ctx := context.Background()
	c, a, _ := seed(t, st)

	require.NoError(t, r.Add(ctx, c.ID, a.ID))
	require.NoError(t, r.Add(ctx, c.ID, a.ID))

	ms, err := st.ListMemberships(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, ms, 1)
}

func TestAddKeepsOtherMemberships(t *testing.T) {
	r, st := newFixture(t)
	ctx := context.Background()
	c, a, b := seed(t, st)

	require.NoError(t, r.Add(ctx, c.ID, a.ID))
	require.NoError(t, r.Add(ctx, c.ID, b.ID))

	ms, err := st.ListMemberships(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, ms, 2)
}
