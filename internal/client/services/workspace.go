package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/membrocelestial/internal/client/session"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
)

// SessionSource is the session view the workspace needs: reads plus the
// resync that picks up writes from other processes.
type SessionSource interface {
	session.Reader
	Resync(ctx context.Context) (bool, error)
}

type cache interface {
	Load(ctx context.Context) error
	Invalidate()
}

// Workspace keeps the tenant-scoped caches consistent with the session.
// Whenever the trusted tenant changes, from this process or another one,
// every cache is invalidated before anything else can read it.
type Workspace struct {
	session   SessionSource
	Directory *MemberDirectory
	Ledger    *Ledger
	Notices   *NoticeBoard
	log       logging.Logger

	unsubscribe func()
}

func NewWorkspace(s SessionSource, dir *MemberDirectory, ledger *Ledger, notices *NoticeBoard, log logging.Logger) *Workspace {
	if log == nil {
		log = logging.NewNop()
	}
	w := &Workspace{
		session:   s,
		Directory: dir,
		Ledger:    ledger,
		Notices:   notices,
		log:       log.With("component", "workspace"),
	}
	w.unsubscribe = s.Subscribe(func(c session.Change) {
		if c.TenantChanged() {
			w.Invalidate()
		}
	})
	return w
}

func (w *Workspace) caches() []cache {
	var out []cache
	if w.Directory != nil {
		out = append(out, w.Directory)
	}
	if w.Ledger != nil {
		out = append(out, w.Ledger)
	}
	if w.Notices != nil {
		out = append(out, w.Notices)
	}
	return out
}

func (w *Workspace) Invalidate() {
	for _, c := range w.caches() {
		c.Invalidate()
	}
}

// Reload loads every cache in dependency order: the ledger validates
// against the directory, so the directory goes first.
func (w *Workspace) Reload(ctx context.Context) error {
	if _, ok := w.session.TrustedTenantID(); !ok {
		w.Invalidate()
		return unauthenticated()
	}
	var errs []error
	for _, c := range w.caches() {
		if err := c.Load(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Refocus re-reads the persisted session. When the trusted tenant moved,
// caches were already invalidated by the subscription and are reloaded
// here for the new tenant. It reports whether the tenant changed.
func (w *Workspace) Refocus(ctx context.Context) (bool, error) {
	before, _ := w.session.TrustedTenantID()
	if _, err := w.session.Resync(ctx); err != nil {
		return false, err
	}
	after, ok := w.session.TrustedTenantID()
	if after == before {
		return false, nil
	}
	w.log.Info(ctx, "trusted tenant changed on resync", "tenant", after)
	if !ok {
		return true, nil
	}
	return true, w.Reload(ctx)
}

// Watch calls Refocus every interval until ctx is done. onChange, if set,
// receives the outcome of each refocus that moved the tenant.
func (w *Workspace) Watch(ctx context.Context, interval time.Duration, onChange func(error)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			changed, err := w.Refocus(ctx)
			if err != nil && !changed {
				w.log.Warn(ctx, "session resync failed", "error", err)
				continue
			}
			if changed && onChange != nil {
				onChange(err)
			}
		}
	}
}

// Close stops following session changes.
func (w *Workspace) Close() {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
}
