// Package session holds the client's single shared session: which tenant is
// trusted and where the identity lifecycle stands. State is mirrored to the
// local SQLite database so it survives restarts and can be picked up by
// other client processes sharing the same file.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/membrocelestial/internal/dbx"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
)

const (
	keyTenantID          = "session.tenant_id"
	keyVerified          = "session.verified"
	keyNeedsVerification = "session.needs_verification"
	keyPendingTenantID   = "session.pending_tenant_id"
	keyRegistrationEmail = "session.registration_email"
)

var allKeys = []string{keyTenantID, keyVerified, keyNeedsVerification, keyPendingTenantID, keyRegistrationEmail}

// Change is delivered to subscribers after every effective update.
type Change struct {
	Previous models.Session
	Current  models.Session
}

// TenantChanged reports whether the trusted tenant differs between the two
// snapshots, including a move to or from no tenant at all.
func (c Change) TenantChanged() bool {
	prev, _ := c.Previous.TrustedTenantID()
	cur, _ := c.Current.TrustedTenantID()
	return prev != cur
}

// Reader is the read-only view handed to components that must not write
// the session.
type Reader interface {
	Current() models.Session
	TrustedTenantID() (string, bool)
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Patch updates the fields that are non-nil.
type Patch struct {
	TenantID          *string
	Verified          *bool
	NeedsVerification *bool
	PendingTenantID   *string
	RegistrationEmail *string
}

func String(v string) *string { return &v }
func Bool(v bool) *bool       { return &v }

type subscriber struct {
	id int
	fn func(Change)
}

type Store struct {
	db  *sql.DB
	log logging.Logger

	// writeMu serializes writers so the persisted order matches the
	// in-memory order. mu guards the fields below and is never held
	// during I/O or callbacks.
	writeMu sync.Mutex
	mu      sync.Mutex
	cur     models.Session
	subs    []subscriber
	nextID  int
}

var _ Reader = (*Store)(nil)

func NewStore(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNop()
	}
	return &Store{db: db, log: log.With("component", "session")}
}

func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

func (s *Store) TrustedTenantID() (string, bool) {
	return s.Current().TrustedTenantID()
}

// Subscribe registers fn for every change. Callbacks run synchronously on
// the writer's goroutine after all store locks are released, so they may
// read or even write the store.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Restore loads the persisted session into memory. Called once at start-up.
func (s *Store) Restore(ctx context.Context) error {
	_, err := s.Resync(ctx)
	return err
}

// Resync replaces the in-memory session with the persisted one, which
// another process may have rewritten. It reports whether anything changed.
func (s *Store) Resync(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	persisted, err := s.load(ctx)
	if err != nil {
		s.writeMu.Unlock()
		return false, err
	}
	prev := s.swap(persisted)
	s.writeMu.Unlock()

	if prev == persisted {
		return false, nil
	}
	s.log.Info(ctx, "session resynced", "status", persisted.Status())
	s.notify(Change{Previous: prev, Current: persisted})
	return true, nil
}

// Set applies p, persists the result, then notifies subscribers. Pending
// registration fields are dropped whenever the session no longer needs
// verification. Nothing changes in memory if persistence fails.
func (s *Store) Set(ctx context.Context, p Patch) (models.Session, error) {
	s.writeMu.Lock()
	prev := s.Current()
	next := apply(prev, p)
	if err := s.persist(ctx, next); err != nil {
		s.writeMu.Unlock()
		return prev, err
	}
	s.swap(next)
	s.writeMu.Unlock()

	if prev != next {
		s.notify(Change{Previous: prev, Current: next})
	}
	return next, nil
}

// Clear drops the session. Memory is always cleared; a persistence failure
// is reported but does not keep the old tenant trusted in this process.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, allKeys...)
	})
	prev := s.swap(models.Session{})
	s.writeMu.Unlock()

	if prev != (models.Session{}) {
		s.notify(Change{Previous: prev})
	}
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// swap installs next and returns the previous session.
func (s *Store) swap(next models.Session) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur
	s.cur = next
	return prev
}

func apply(cur models.Session, p Patch) models.Session {
	if p.TenantID != nil {
		cur.TenantID = *p.TenantID
	}
	if p.Verified != nil {
		cur.Verified = *p.Verified
	}
	if p.NeedsVerification != nil {
		cur.NeedsVerification = *p.NeedsVerification
	}
	if p.PendingTenantID != nil {
		cur.PendingTenantID = *p.PendingTenantID
	}
	if p.RegistrationEmail != nil {
		cur.RegistrationEmail = *p.RegistrationEmail
	}
	if !cur.NeedsVerification {
		cur.PendingTenantID = ""
		cur.RegistrationEmail = ""
	}
	return cur
}

func (s *Store) persist(ctx context.Context, sess models.Session) error {
	values := map[string]string{
		keyTenantID:          sess.TenantID,
		keyVerified:          flag(sess.Verified),
		keyNeedsVerification: flag(sess.NeedsVerification),
		keyPendingTenantID:   sess.PendingTenantID,
		keyRegistrationEmail: sess.RegistrationEmail,
	}

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		var drop []string
		for _, k := range allKeys {
			if values[k] == "" {
				drop = append(drop, k)
				continue
			}
			if err := repo.Set(ctx, k, []byte(values[k])); err != nil {
				return err
			}
		}
		return repo.Delete(ctx, drop...)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) (models.Session, error) {
	kv, err := metadata.NewSQLiteRepository(s.db).List(ctx, allKeys...)
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	sess := models.Session{
		TenantID:          string(kv[keyTenantID]),
		Verified:          string(kv[keyVerified]) == "1",
		NeedsVerification: string(kv[keyNeedsVerification]) == "1",
		PendingTenantID:   string(kv[keyPendingTenantID]),
		RegistrationEmail: string(kv[keyRegistrationEmail]),
	}
	return apply(sess, Patch{}), nil
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(c)
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return ""
}
