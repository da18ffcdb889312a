package services

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/session"
	"github.com/dmitrijs2005/membrocelestial/internal/common"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
)

// DefaultSuggestLimit caps autocomplete answers.
const DefaultSuggestLimit = 5

// MemberDirectory caches the trusted tenant's member list and answers name
// lookups from it. Local edits mirror successful remote writes; a failed
// remote write leaves the cache as is and the caller should Load again.
type MemberDirectory struct {
	client  client.Client
	session session.Reader
	log     logging.Logger

	mu      sync.Mutex
	gen     uint64
	tenant  string
	members []models.Member
	loaded  bool
}

func NewMemberDirectory(c client.Client, s session.Reader, log logging.Logger) *MemberDirectory {
	if log == nil {
		log = logging.NewNop()
	}
	return &MemberDirectory{client: c, session: s, log: log.With("component", "directory")}
}

// Load replaces the cached list with the remote one. A load issued for a
// different tenant than the cached one clears the cache before the call.
// Results superseded by a newer Load or Invalidate are dropped with an
// ErrStale-kind error.
func (d *MemberDirectory) Load(ctx context.Context) error {
	tenant, ok := d.session.TrustedTenantID()
	if !ok {
		d.Invalidate()
		return unauthenticated()
	}

	d.mu.Lock()
	d.gen++
	gen := d.gen
	if d.tenant != tenant {
		d.tenant, d.members, d.loaded = tenant, nil, false
	}
	d.mu.Unlock()

	list, err := d.client.ListMembers(client.WithTenant(ctx, tenant))

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.tenant != tenant || cancelled(ctx) {
		return staleLoad("member", gen)
	}
	if err != nil {
		return err
	}
	d.members, d.loaded = list, true
	d.log.Debug(ctx, "members loaded", "count", len(list))
	return nil
}

// Loaded reports whether the cache holds a complete list.
func (d *MemberDirectory) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

func (d *MemberDirectory) Members() []models.Member {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.members)
}

// Suggest returns up to limit names containing partial, ignoring case, in
// list order. limit <= 0 means DefaultSuggestLimit.
func (d *MemberDirectory) Suggest(partial string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	partial = strings.TrimSpace(partial)

	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, m := range d.members {
		if len(out) == limit {
			break
		}
		if common.ContainsFoldName(m.Name, partial) {
			out = append(out, m.Name)
		}
	}
	return out
}

// Exists reports whether a member is named exactly name, ignoring case and
// surrounding blanks.
func (d *MemberDirectory) Exists(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.members {
		if common.EqualFoldName(m.Name, name) {
			return true
		}
	}
	return false
}

// Find returns the member with id.
func (d *MemberDirectory) Find(id string) (models.Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}

// Upsert replaces the member with the same id or appends it.
func (d *MemberDirectory) Upsert(m models.Member) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.upsertLocked(m)
}

func (d *MemberDirectory) upsertLocked(m models.Member) {
	for i := range d.members {
		if d.members[i].ID == m.ID && m.ID != "" {
			d.members[i] = m
			return
		}
	}
	d.members = append(d.members, m)
}

func (d *MemberDirectory) Remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeLocked(id)
}

func (d *MemberDirectory) removeLocked(id string) {
	d.members = slices.DeleteFunc(d.members, func(m models.Member) bool { return m.ID == id })
}

// Invalidate forgets the cached list and outdates in-flight loads.
func (d *MemberDirectory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.tenant, d.members, d.loaded = "", nil, false
}

// Create validates m against the member form schema, stores it remotely and
// mirrors the result locally.
func (d *MemberDirectory) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m = m.Normalize()
	if errs := models.ValidateMember(m); len(errs) > 0 {
		return models.Member{}, client.NewValidationError(errs)
	}
	tenant, ok := d.session.TrustedTenantID()
	if !ok {
		return models.Member{}, unauthenticated()
	}
	m.ID, m.Church = "", tenant

	created, err := d.client.CreateMember(client.WithTenant(ctx, tenant), m)
	if err != nil {
		return models.Member{}, err
	}
	d.mirror(tenant, func() { d.upsertLocked(created) })
	return created, nil
}

func (d *MemberDirectory) Update(ctx context.Context, m models.Member) (models.Member, error) {
	if m.ID == "" {
		return models.Member{}, ErrUnknownEntry
	}
	m = m.Normalize()
	if errs := models.ValidateMember(m); len(errs) > 0 {
		return models.Member{}, client.NewValidationError(errs)
	}
	tenant, ok := d.session.TrustedTenantID()
	if !ok {
		return models.Member{}, unauthenticated()
	}
	m.Church = tenant

	updated, err := d.client.UpdateMember(client.WithTenant(ctx, tenant), m)
	if err != nil {
		return models.Member{}, err
	}
	d.mirror(tenant, func() { d.upsertLocked(updated) })
	return updated, nil
}

func (d *MemberDirectory) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrUnknownEntry
	}
	tenant, ok := d.session.TrustedTenantID()
	if !ok {
		return unauthenticated()
	}
	if err := d.client.DeleteMember(client.WithTenant(ctx, tenant), id); err != nil {
		return err
	}
	d.mirror(tenant, func() { d.removeLocked(id) })
	return nil
}

// Letter fetches the member's letter document as opaque bytes.
func (d *MemberDirectory) Letter(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrUnknownEntry
	}
	tenant, ok := d.session.TrustedTenantID()
	if !ok {
		return nil, unauthenticated()
	}
	return d.client.MemberLetter(client.WithTenant(ctx, tenant), id)
}

// mirror applies fn only while the cache still belongs to tenant.
func (d *MemberDirectory) mirror(tenant string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tenant == tenant {
		fn()
	}
}
