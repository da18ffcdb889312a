package services

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/session"
	"github.com/dmitrijs2005/membrocelestial/internal/common"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
)

// SelectableYears is how many years, counting back from the current one,
// the year selector offers.
const SelectableYears = 5

// Field messages shown next to the tithe form.
const (
	msgMemberRequired = "Nome do dizimista é obrigatório"
	msgMemberUnknown  = "Membro não encontrado. Cadastre-o primeiro."
	msgAmountInvalid  = "Valor deve ser maior que zero"
	msgRoleRequired   = "Cargo é obrigatório"
	msgRoleInvalid    = "Cargo inválido"
)

// MemberChecker answers whether a name belongs to the directory.
type MemberChecker interface {
	Exists(name string) bool
}

// TitheInput is the raw tithe form. Amount is user text such as "50,00".
type TitheInput struct {
	Member      string
	Amount      string
	Role        string
	Description string
}

// LedgerFilter selects loaded entries. Zero fields match everything.
type LedgerFilter struct {
	Role models.Role
	// Name matches a case-insensitive substring of the member name.
	Name string
	// Month is 1-12; entries must fall in that month of the selected year.
	Month int
}

type LedgerOption func(*Ledger)

// WithClock replaces time.Now, which stamps new entries and picks the
// default year.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the zone used to decide which month an entry falls in.
func WithLocation(loc *time.Location) LedgerOption {
	return func(l *Ledger) { l.loc = loc }
}

// Ledger holds the trusted tenant's tithes and the server-computed monthly
// and annual summaries of the selected year. Summaries are never merged
// locally: every write is followed by a full reload.
type Ledger struct {
	client    client.Client
	session   session.Reader
	directory MemberChecker
	log       logging.Logger
	now       func() time.Time
	loc       *time.Location

	mu            sync.Mutex
	gen           uint64
	tenant        string
	year          int
	entries       []models.Tithe
	monthly       []models.MonthlySummary
	annual        models.AnnualSummary
	loaded        bool
	pendingDelete string
}

func NewLedger(c client.Client, s session.Reader, dir MemberChecker, log logging.Logger, opts ...LedgerOption) *Ledger {
	if log == nil {
		log = logging.NewNop()
	}
	l := &Ledger{
		client:    c,
		session:   s,
		directory: dir,
		log:       log.With("component", "ledger"),
		now:       time.Now,
		loc:       time.Local,
	}
	for _, o := range opts {
		o(l)
	}
	l.year = l.now().In(l.loc).Year()
	return l
}

// Year is the selected year.
func (l *Ledger) Year() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.year
}

// Years lists the selectable years, most recent first.
func (l *Ledger) Years() []int {
	cur := l.now().In(l.loc).Year()
	out := make([]int, 0, SelectableYears)
	for i := 0; i < SelectableYears; i++ {
		out = append(out, cur-i)
	}
	return out
}

// SelectYear loads year and makes it the selected one. If the load fails
// the previous year and its data stay selected.
func (l *Ledger) SelectYear(ctx context.Context, year int) error {
	return l.load(ctx, year)
}

// Load fetches entries and both summaries of the selected year in parallel
// and installs them together. On failure the previous data stays.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	year := l.year
	l.mu.Unlock()
	return l.load(ctx, year)
}

func (l *Ledger) load(ctx context.Context, year int) error {
	tenant, ok := l.session.TrustedTenantID()
	if !ok {
		l.Invalidate()
		return unauthenticated()
	}

	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.tenant != tenant {
		l.resetLocked()
		l.tenant = tenant
	}
	l.mu.Unlock()

	var (
		entries []models.Tithe
		monthly []models.MonthlySummary
		annual  models.AnnualSummary
	)
	g, gctx := errgroup.WithContext(client.WithTenant(ctx, tenant))
	g.Go(func() (err error) {
		entries, err = l.client.ListTithes(gctx)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = l.client.MonthlySummary(gctx, year)
		return err
	})
	g.Go(func() (err error) {
		annual, err = l.client.AnnualSummary(gctx, year)
		return err
	})
	err := g.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen || l.tenant != tenant || cancelled(ctx) {
		return staleLoad("ledger", gen)
	}
	if err != nil {
		return err
	}
	slices.SortFunc(monthly, func(a, b models.MonthlySummary) int { return a.Month - b.Month })
	l.year = year
	l.entries, l.monthly, l.annual, l.loaded = entries, monthly, annual, true
	l.log.Debug(ctx, "ledger loaded", "year", year, "entries", len(entries))
	return nil
}

func (l *Ledger) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

func (l *Ledger) Entries() []models.Tithe {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

func (l *Ledger) Monthly() []models.MonthlySummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.monthly)
}

func (l *Ledger) Annual() models.AnnualSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.annual
}

// MonthlyNet returns inflow minus outflow for month, if the server
// reported it.
func (l *Ledger) MonthlyNet(month int) (models.Money, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.monthly {
		if s.Month == month {
			return s.Net(), true
		}
	}
	return models.Money{}, false
}

// Validate checks in without touching the network. The returned map is
// keyed by wire field name and empty when the input is acceptable.
func (l *Ledger) Validate(in TitheInput) map[string]string {
	errs := map[string]string{}

	member := strings.TrimSpace(in.Member)
	switch {
	case member == "":
		errs["membro"] = msgMemberRequired
	case l.directory == nil || !l.directory.Exists(member):
		errs["membro"] = msgMemberUnknown
	}

	if amount, err := models.ParseMoney(in.Amount); err != nil || amount.Sign() <= 0 {
		errs["valor"] = msgAmountInvalid
	}

	role := models.Role(strings.TrimSpace(in.Role))
	switch {
	case role == "":
		errs["cargo"] = msgRoleRequired
	case !role.Valid():
		errs["cargo"] = msgRoleInvalid
	}
	return errs
}

// Create validates in, records it remotely and reloads entries and
// summaries. If only the reload fails, the created entry is returned along
// with the reload error.
func (l *Ledger) Create(ctx context.Context, in TitheInput) (models.Tithe, error) {
	if errs := l.Validate(in); len(errs) > 0 {
		return models.Tithe{}, client.NewValidationError(errs)
	}
	tenant, ok := l.session.TrustedTenantID()
	if !ok {
		return models.Tithe{}, unauthenticated()
	}

	amount, _ := models.ParseMoney(in.Amount)
	entry := models.Tithe{
		Member:      strings.TrimSpace(in.Member),
		Amount:      amount,
		Role:        models.Role(strings.TrimSpace(in.Role)),
		Description: strings.TrimSpace(in.Description),
		Date:        l.now().UTC(),
	}

	created, err := l.client.CreateTithe(client.WithTenant(ctx, tenant), entry)
	if err != nil {
		return models.Tithe{}, err
	}
	l.log.Info(ctx, "tithe recorded", "member", created.Member, "amount", created.Amount.String())
	return created, l.Load(ctx)
}

// RequestDelete stages id for deletion. Nothing is sent until ConfirmDelete.
func (l *Ledger) RequestDelete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == "" || !slices.ContainsFunc(l.entries, func(t models.Tithe) bool { return t.ID == id }) {
		return ErrUnknownEntry
	}
	l.pendingDelete = id
	return nil
}

// PendingDelete returns the staged id.
func (l *Ledger) PendingDelete() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingDelete, l.pendingDelete != ""
}

func (l *Ledger) CancelDelete() {
	l.mu.Lock()
	l.pendingDelete = ""
	l.mu.Unlock()
}

// ConfirmDelete deletes the staged entry and reloads. The stage is consumed
// whatever the outcome.
func (l *Ledger) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	id := l.pendingDelete
	l.pendingDelete = ""
	l.mu.Unlock()
	if id == "" {
		return ErrNothingStaged
	}

	tenant, ok := l.session.TrustedTenantID()
	if !ok {
		return unauthenticated()
	}
	if err := l.client.DeleteTithe(client.WithTenant(ctx, tenant), id); err != nil {
		return err
	}
	l.log.Info(ctx, "tithe deleted", "id", id)
	return l.Load(ctx)
}

// Filter is pure: it reads the loaded entries and preserves their order.
func (l *Ledger) Filter(f LedgerFilter) []models.Tithe {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := strings.TrimSpace(f.Name)
	out := make([]models.Tithe, 0, len(l.entries))
	for _, t := range l.entries {
		if f.Role != "" && t.Role != f.Role {
			continue
		}
		if !common.ContainsFoldName(t.Member, name) {
			continue
		}
		if f.Month != 0 {
			d := t.Date.In(l.loc)
			if d.Year() != l.year || int(d.Month()) != f.Month {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Invalidate drops all ledger data, the staged deletion included, and
// outdates in-flight loads.
func (l *Ledger) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.resetLocked()
	l.tenant = ""
}

func (l *Ledger) resetLocked() {
	l.entries, l.monthly, l.annual, l.loaded = nil, nil, models.AnnualSummary{}, false
	l.pendingDelete = ""
}
