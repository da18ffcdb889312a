package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failOn   string

	calls    []string
	args     [][]string
	reported []error
}

func (f *fakeExec) call(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	if name == f.failOn {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Register(context.Context) error { return f.call("register", nil) }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.call("login", nil)
}

func (f *fakeExec) Confirm(context.Context) error { return f.call("confirm", nil) }
func (f *fakeExec) Reset(context.Context) error   { return f.call("reset", nil) }

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.call("logout", nil)
}

func (f *fakeExec) Refocus(context.Context) error { return f.call("refocus", nil) }

func (f *fakeExec) Members(_ context.Context, args []string) error {
	return f.call("members", args)
}

func (f *fakeExec) Tithes(_ context.Context, args []string) error {
	return f.call("tithes", args)
}

func (f *fakeExec) Summary(_ context.Context, args []string) error {
	return f.call("summary", args)
}

func (f *fakeExec) Notices(_ context.Context, args []string) error {
	return f.call("notices", args)
}

func (f *fakeExec) Stats(context.Context) error { return f.call("stats", nil) }

func (f *fakeExec) report(err error) {
	if err != nil {
		f.reported = append(f.reported, err)
	}
}

func runScript(t *testing.T, f *fakeExec, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	status := func() string {
		if f.loggedIn {
			return "conectado"
		}
		return "desconectado"
	}
	runREPL(context.Background(), f, status, rdr(strings.Join(lines, "\n")+"\n"), &out)
	return out.String()
}

func TestRunREPL_Dispatch(t *testing.T) {
	f := &fakeExec{}
	out := runScript(t, f,
		"register", "confirm", "login", "",
		"m list", "tithes filter cargo=pastor mes=3", "summary 2023",
		"notices", "stats", "refocus", "reset", "logout", "exit",
		"login",
	)

	assert.Equal(t, []string{
		"register", "confirm", "login", "members", "tithes", "summary",
		"notices", "stats", "refocus", "reset", "logout",
	}, f.calls)
	assert.Equal(t, []string{"list"}, f.args[3])
	assert.Equal(t, []string{"filter", "cargo=pastor", "mes=3"}, f.args[4])
	assert.Equal(t, []string{"2023"}, f.args[5])
	assert.Contains(t, out, "celestial (desconectado)> ")
	assert.Contains(t, out, "celestial (conectado)> ")
	assert.Contains(t, out, "Até logo!")
}

func TestRunREPL_Help(t *testing.T) {
	out := runScript(t, &fakeExec{}, "help")
	assert.Contains(t, out, helpAnonymous)
	assert.NotContains(t, out, "tithes")

	out = runScript(t, &fakeExec{loggedIn: true}, "help")
	assert.Contains(t, out, helpLoggedIn)
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	f := &fakeExec{}
	out := runScript(t, f, "dance")
	assert.Contains(t, out, "Comando desconhecido: dance")
	assert.Empty(t, f.calls)
	assert.Empty(t, f.reported)
}

func TestRunREPL_ErrorsAreReportedAndLoopContinues(t *testing.T) {
	f := &fakeExec{loggedIn: true, failOn: "tithes"}
	runScript(t, f, "tithes add", "summary")

	assert.Equal(t, []string{"tithes", "summary"}, f.calls)
	if assert.Len(t, f.reported, 1) {
		assert.EqualError(t, f.reported[0], "tithes failed")
	}
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), f, func() string { return "" }, rdr("stats"), &out)

	assert.Equal(t, []string{"stats"}, f.calls)
	assert.Empty(t, f.reported)
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeExec{}
	var out bytes.Buffer
	runREPL(ctx, f, func() string { return "" }, rdr("stats\n"), &out)

	assert.Empty(t, f.calls)
	assert.Empty(t, out.String())
}
