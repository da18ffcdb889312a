package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Confirm(ctx context.Context) error
	Reset(ctx context.Context) error
	Logout(ctx context.Context) error
	Refocus(ctx context.Context) error
	Members(ctx context.Context, args []string) error
	Tithes(ctx context.Context, args []string) error
	Summary(ctx context.Context, args []string) error
	Notices(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	report(err error)
}

const (
	helpAnonymous = "Comandos: register, login, confirm, reset, refocus, help, exit"
	helpLoggedIn  = `Comandos:
  members [list|show <id>|add|edit <id>|delete <id>|letter <id>|find <nome>]
  tithes [list|add|delete <id>|filter cargo=<c> nome=<n> mes=<m>|year [<ano>]]
  summary [<ano>]
  notices [list|add|edit <id>|delete <id>]
  refocus, stats, logout, help, exit`
)

// runREPL reads one command per line from reader until EOF or "exit".
// Handler errors are reported and the loop goes on. ctx cancellation ends
// the loop before the next prompt.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "celestial (%s)> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				a.report(err)
			}
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "confirm":
			cmdErr = a.Confirm(ctx)
		case "reset":
			cmdErr = a.Reset(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "refocus":
			cmdErr = a.Refocus(ctx)
		case "members", "m":
			cmdErr = a.Members(ctx, args)
		case "tithes", "t":
			cmdErr = a.Tithes(ctx, args)
		case "summary":
			cmdErr = a.Summary(ctx, args)
		case "notices":
			cmdErr = a.Notices(ctx, args)
		case "stats":
			cmdErr = a.Stats(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Até logo!")
			return
		default:
			fmt.Fprintln(w, "Comando desconhecido:", cmd)
		}
		a.report(cmdErr)
	}
}

// Run starts the resync watcher and the REPL; it returns when the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Celestial: gestão da igreja (digite 'help' para ver os comandos)")
	if a.isLoggedIn() {
		a.reloadAfterLogin(ctx)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.ws.Watch(ctx, a.cfg.ResyncInterval, func(err error) {
			a.println("\nA sessão foi alterada em outro terminal; dados recarregados.")
			a.report(err)
		})
	}()

	runREPL(ctx, a, a.status, a.reader, a.out)
	cancel()
	<-done
	return nil
}
