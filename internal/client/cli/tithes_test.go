package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/membrocelestial/internal/client/config"
)

func TestTithes_LoadIgnoresNoticeFailures(t *testing.T) {
	ctx := context.Background()
	srv, _ := church(t)
	cfg := config.Defaults()
	cfg.ServerBaseURL = srv.URL
	cfg.DatabasePath = filepath.Join(t.TempDir(), "session.db")
	cfg.LogLevel = "error"

	first, err := NewApp(ctx, &cfg, strings.NewReader("Betel\nsegredo1\n"), io.Discard, io.Discard)
	require.NoError(t, err)
	require.NoError(t, first.Login(ctx))
	require.NoError(t, first.Close())

	srv.Fail("/avisos", http.StatusBadGateway, "")
	noticeCalls := srv.Count(http.MethodGet, "/avisos")

	var out bytes.Buffer
	a, err := NewApp(ctx, &cfg, strings.NewReader(""), &out, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Tithes(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "Ana Souza")
	assert.Contains(t, out.String(), "Bruno Lima")
	assert.True(t, a.ws.Directory.Loaded())
	assert.True(t, a.ws.Ledger.Loaded())
	assert.Equal(t, noticeCalls, srv.Count(http.MethodGet, "/avisos"))
}
