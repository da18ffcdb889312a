package session

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
)

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	return NewStore(openDB(t, path), logging.NewNop()), path
}

func authenticated(id string) Patch {
	return Patch{TenantID: String(id), Verified: Bool(true), NeedsVerification: Bool(false)}
}

func TestStore_SetPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	_, err := s.Set(ctx, authenticated("ig-1"))
	require.NoError(t, err)

	// a fresh process on the same file
	restarted := NewStore(openDB(t, path), nil)
	require.NoError(t, restarted.Restore(ctx))

	id, ok := restarted.TrustedTenantID()
	require.True(t, ok)
	assert.Equal(t, "ig-1", id)
	assert.Equal(t, models.StatusAuthenticated, restarted.Current().Status())
}

func TestStore_PendingFieldsDroppedOnceVerified(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)

	sess, err := s.Set(ctx, Patch{
		NeedsVerification: Bool(true),
		PendingTenantID:   String("tmp-1"),
		RegistrationEmail: String("igreja@x.org"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingVerification, sess.Status())
	_, trusted := sess.TrustedTenantID()
	assert.False(t, trusted, "a pending reference is never trusted")

	sess, err = s.Set(ctx, authenticated("ig-1"))
	require.NoError(t, err)
	assert.Empty(t, sess.PendingTenantID)
	assert.Empty(t, sess.RegistrationEmail)

	restarted := NewStore(openDB(t, path), nil)
	require.NoError(t, restarted.Restore(ctx))
	assert.Equal(t, models.Session{TenantID: "ig-1", Verified: true}, restarted.Current())
}

func TestStore_SubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	var got []Change
	unsubscribe := s.Subscribe(func(c Change) { got = append(got, c) })

	_, err := s.Set(ctx, authenticated("ig-1"))
	require.NoError(t, err)
	_, err = s.Set(ctx, authenticated("ig-1")) // no-op
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.True(t, got[0].TenantChanged())
	assert.Equal(t, "ig-1", got[0].Current.TenantID)

	unsubscribe()
	_, err = s.Set(ctx, authenticated("ig-2"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, path := newStore(t)
	_, err := s.Set(ctx, authenticated("ig-1"))
	require.NoError(t, err)

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.Clear(ctx))
	_, ok := s.TrustedTenantID()
	assert.False(t, ok)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].TenantChanged())

	restarted := NewStore(openDB(t, path), nil)
	require.NoError(t, restarted.Restore(ctx))
	assert.Equal(t, models.Session{}, restarted.Current())
}

func TestStore_ResyncPicksUpOtherProcess(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")
	tabA := NewStore(openDB(t, path), nil)
	tabB := NewStore(openDB(t, path), nil)

	_, err := tabA.Set(ctx, authenticated("ig-a"))
	require.NoError(t, err)
	require.NoError(t, tabB.Restore(ctx))

	var seen []Change
	tabA.Subscribe(func(c Change) { seen = append(seen, c) })

	_, err = tabB.Set(ctx, authenticated("ig-b"))
	require.NoError(t, err)

	id, _ := tabA.TrustedTenantID()
	assert.Equal(t, "ig-a", id, "no resync yet")

	changed, err := tabA.Resync(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	id, _ = tabA.TrustedTenantID()
	assert.Equal(t, "ig-b", id)
	require.Len(t, seen, 1)
	assert.Equal(t, "ig-a", seen[0].Previous.TenantID)

	changed, err = tabA.Resync(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestStore_SetFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_, err := s.Set(ctx, authenticated("ig-1"))
	require.NoError(t, err)

	require.NoError(t, s.db.Close())

	_, err = s.Set(ctx, authenticated("ig-2"))
	require.Error(t, err)
	id, _ := s.TrustedTenantID()
	assert.Equal(t, "ig-1", id)
}

func TestStore_ClearAlwaysDropsMemory(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_, err := s.Set(ctx, authenticated("ig-1"))
	require.NoError(t, err)

	require.NoError(t, s.db.Close())

	require.Error(t, s.Clear(ctx))
	_, ok := s.TrustedTenantID()
	assert.False(t, ok)
}

func TestStore_SubscriberMayWrite(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	s.Subscribe(func(c Change) {
		if c.Current.TenantID == "ig-bad" {
			_ = s.Clear(ctx)
		}
	})

	_, err := s.Set(ctx, authenticated("ig-bad"))
	require.NoError(t, err)
	assert.Equal(t, models.Session{}, s.Current())
}

func TestChange_TenantChanged(t *testing.T) {
	a := models.Session{TenantID: "ig-1", Verified: true}
	pending := models.Session{NeedsVerification: true, RegistrationEmail: "x@y"}

	assert.False(t, Change{Previous: a, Current: a}.TenantChanged())
	assert.True(t, Change{Previous: a, Current: models.Session{}}.TenantChanged())
	assert.False(t, Change{Previous: models.Session{}, Current: pending}.TenantChanged())
}
