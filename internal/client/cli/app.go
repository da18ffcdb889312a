package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/config"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/services"
	"github.com/dmitrijs2005/membrocelestial/internal/client/session"
	"github.com/dmitrijs2005/membrocelestial/internal/common"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
	"github.com/dmitrijs2005/membrocelestial/internal/metrics"
)

// lockedWriter serializes writes from the REPL and the resync watcher.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// App is one running client: a "tab" over the shared session database.
type App struct {
	cfg      *config.Config
	reader   *bufio.Reader
	out      io.Writer
	log      logging.Logger
	db       *sql.DB
	registry *prometheus.Registry

	// interactive is set when stdin is a terminal; passwords are then read
	// without echo, otherwise as plain lines.
	interactive bool

	auth services.AuthService
	ws   *services.Workspace
}

// NewApp opens the session database, restores the persisted session and
// wires the services. Diagnostics go to errOut, user output to out.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	tabID := uuid.NewString()
	base, err := logging.New(cfg.LogLevel, cfg.LogFormat, errOut)
	if err != nil {
		return nil, err
	}
	log := base.With("tab", tabID[:8])

	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	store := session.NewStore(db, log)
	if err := store.Restore(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	registry := prometheus.NewRegistry()
	api, err := client.NewHTTPClient(cfg.ServerBaseURL, store,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithMetrics(metrics.NewGatewayMetrics(registry)),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	dir := services.NewMemberDirectory(api, store, log)
	ledger := services.NewLedger(api, store, dir, log)
	notices := services.NewNoticeBoard(api, store, log)

	a := &App{
		cfg:      cfg,
		reader:   bufio.NewReader(in),
		out:      &lockedWriter{w: out},
		log:      log,
		db:       db,
		registry: registry,
		auth:     services.NewAuthService(api, store, log),
		ws:       services.NewWorkspace(store, dir, ledger, notices, log),
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		a.interactive = true
	}
	return a, nil
}

func (a *App) Close() error {
	a.ws.Close()
	if zl, ok := a.log.(interface{ Sync() error }); ok {
		_ = zl.Sync()
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.auth.Session().Status() == models.StatusAuthenticated
}

func (a *App) status() string {
	return renderSession(a.auth.Session())
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) text(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}

func (a *App) password(prompt string) ([]byte, error) {
	if a.interactive {
		return GetPassword(a.out, prompt)
	}
	fmt.Fprint(a.out, prompt+": ")
	line, err := readLine(a.reader)
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}

func (a *App) confirm(prompt string) (bool, error) {
	return Confirm(a.reader, prompt, a.out)
}

// report prints the user-facing form of err. Superseded results print
// nothing.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	a.log.Debug(context.Background(), "command failed", "error", err)

	var ve *client.ValidationError
	switch {
	case errors.As(err, &ve):
		a.println("Corrija os campos:")
		renderFieldErrors(a.out, ve.Fields)
		return
	case errors.Is(err, services.ErrAlreadyAuthenticated):
		a.println("Você já está conectado. Use 'logout' primeiro.")
		return
	case errors.Is(err, services.ErrNotPending):
		a.println("Nenhum cadastro aguardando confirmação.")
		return
	case errors.Is(err, services.ErrNothingStaged):
		a.println("Nenhuma exclusão pendente.")
		return
	case errors.Is(err, services.ErrUnknownEntry):
		a.println("Registro não encontrado.")
		return
	case errors.Is(err, io.EOF):
		return
	}
	if msg := client.UserMessage(err); msg != "" {
		a.println(msg)
	}
}

// reloadAfterLogin loads every tenant cache once the session is trusted.
func (a *App) reloadAfterLogin(ctx context.Context) {
	if !a.isLoggedIn() {
		return
	}
	if err := a.ws.Reload(ctx); err != nil {
		a.report(err)
	}
}

// wipe is deferred by prompts that read secrets.
func wipe(b []byte) { common.WipeByteArray(b) }
