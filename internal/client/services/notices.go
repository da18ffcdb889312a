package services

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/session"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
)

// NoticeBoard caches the trusted tenant's notices.
type NoticeBoard struct {
	client  client.Client
	session session.Reader
	log     logging.Logger

	mu      sync.Mutex
	gen     uint64
	tenant  string
	notices []models.Notice
}

func NewNoticeBoard(c client.Client, s session.Reader, log logging.Logger) *NoticeBoard {
	if log == nil {
		log = logging.NewNop()
	}
	return &NoticeBoard{client: c, session: s, log: log.With("component", "notices")}
}

func (b *NoticeBoard) Load(ctx context.Context) error {
	tenant, ok := b.session.TrustedTenantID()
	if !ok {
		b.Invalidate()
		return unauthenticated()
	}

	b.mu.Lock()
	b.gen++
	gen := b.gen
	if b.tenant != tenant {
		b.tenant, b.notices = tenant, nil
	}
	b.mu.Unlock()

	list, err := b.client.ListNotices(client.WithTenant(ctx, tenant))

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen || b.tenant != tenant || cancelled(ctx) {
		return staleLoad("notice", gen)
	}
	if err != nil {
		return err
	}
	b.notices = list
	return nil
}

func (b *NoticeBoard) Notices() []models.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.notices)
}

// Save creates n when it has no id and updates it otherwise, then reloads.
func (b *NoticeBoard) Save(ctx context.Context, n models.Notice) (models.Notice, error) {
	n.Title, n.Message = strings.TrimSpace(n.Title), strings.TrimSpace(n.Message)
	if errs := models.ValidateNotice(n); len(errs) > 0 {
		return models.Notice{}, client.NewValidationError(errs)
	}
	tenant, ok := b.session.TrustedTenantID()
	if !ok {
		return models.Notice{}, unauthenticated()
	}
	saved, err := b.client.SaveNotice(client.WithTenant(ctx, tenant), n)
	if err != nil {
		return models.Notice{}, err
	}
	b.log.Info(ctx, "notice saved", "id", saved.ID)
	return saved, b.Load(ctx)
}

func (b *NoticeBoard) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrUnknownEntry
	}
	tenant, ok := b.session.TrustedTenantID()
	if !ok {
		return unauthenticated()
	}
	if err := b.client.DeleteNotice(client.WithTenant(ctx, tenant), id); err != nil {
		return err
	}
	return b.Load(ctx)
}

func (b *NoticeBoard) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.tenant, b.notices = "", nil
}
