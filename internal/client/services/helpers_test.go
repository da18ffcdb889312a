package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/session"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
	"github.com/dmitrijs2005/membrocelestial/internal/testutil/fakeapi"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// tab is one client process: its own memory, a session file possibly
// shared with other tabs.
type tab struct {
	store   *session.Store
	api     *client.HTTPClient
	auth    AuthService
	dir     *MemberDirectory
	ledger  *Ledger
	notices *NoticeBoard
	ws      *Workspace
}

func newTab(t *testing.T, srv *fakeapi.Server, dbPath string) *tab {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := session.NewStore(db, logging.NewNop())
	require.NoError(t, store.Restore(ctx))

	api, err := client.NewHTTPClient(srv.URL, store)
	require.NoError(t, err)

	dir := NewMemberDirectory(api, store, nil)
	ledger := NewLedger(api, store, dir, nil,
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC))
	notices := NewNoticeBoard(api, store, nil)
	ws := NewWorkspace(store, dir, ledger, notices, nil)
	t.Cleanup(ws.Close)

	return &tab{
		store:   store,
		api:     api,
		auth:    NewAuthService(api, store, nil),
		dir:     dir,
		ledger:  ledger,
		notices: notices,
		ws:      ws,
	}
}

func sessionPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "session.db")
}

// loggedIn returns a tab already trusting a verified church with the given
// name; the church password is "segredo1".
func loggedIn(t *testing.T, srv *fakeapi.Server, name string) (*tab, string) {
	t.Helper()
	id := srv.AddChurch(name, name+"@igreja.org", "segredo1", true)
	tb := newTab(t, srv, sessionPath(t))
	_, err := tb.auth.Login(context.Background(), name, []byte("segredo1"))
	require.NoError(t, err)
	return tb, id
}

func member(name string) models.Member {
	return models.Member{Name: name, BirthDate: "1980-01-01", NationalID: "000.000.000-00", BaptismAt: "2000-01-01"}
}

func tithe(name, amount string, role models.Role, date time.Time) models.Tithe {
	return models.Tithe{Member: name, Amount: models.MustMoney(amount), Role: role, Date: date}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}
