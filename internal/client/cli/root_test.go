package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/testutil/fakeapi"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// church seeds a verified church with members and 2024 tithes and returns
// the flags pointing a command at it.
func church(t *testing.T) (*fakeapi.Server, []string) {
	t.Helper()
	srv := fakeapi.New(t)
	id := srv.AddChurch("Betel", "betel@igreja.org", "segredo1", true)
	srv.SeedMember(id, models.Member{Name: "Ana Souza", BirthDate: "1980-01-01", NationalID: "000.000.000-00", BaptismAt: "2000-01-01"})
	srv.SeedMember(id, models.Member{Name: "Bruno Lima", BirthDate: "1975-05-05", NationalID: "111.111.111-11", BaptismAt: "1999-01-01"})
	date := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 12, 0, 0, 0, time.UTC) }
	srv.SeedTithe(id, models.Tithe{Member: "Ana Souza", Amount: models.MustMoney("300"), Role: models.RolePastor, Date: date(time.March, 3)})
	srv.SeedTithe(id, models.Tithe{Member: "Bruno Lima", Amount: models.MustMoney("200"), Role: models.RoleDeacon, Date: date(time.March, 17)})
	srv.SeedTithe(id, models.Tithe{Member: "Ana Souza", Amount: models.MustMoney("50"), Role: models.RolePastor, Date: date(time.April, 7)})
	srv.SeedOutflow(id, 2024, 3, models.MustMoney("120"))

	flags := []string{
		"--server", srv.URL,
		"--db", filepath.Join(t.TempDir(), "session.db"),
		"--resync", "1h",
		"--log-level", "error",
	}
	return srv, flags
}

func TestRootCommand_Tree(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"summary", "members", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	for _, flag := range []string{"config", "server", "db", "timeout", "resync", "letters-dir", "log-level", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Build version: ")
}

func TestSummaryCommand_RequiresSession(t *testing.T) {
	_, flags := church(t)
	_, err := execute(t, "", append([]string{"summary"}, flags...)...)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
	assert.Equal(t, "Sessão não autenticada. Faça login novamente.", err.Error())
}

func TestInvalidConfigIsRejected(t *testing.T) {
	_, err := execute(t, "", "summary", "--server", "", "--db", filepath.Join(t.TempDir(), "s.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}

func TestInteractiveSessionThenOneShotCommands(t *testing.T) {
	srv, flags := church(t)

	script := strings.Join([]string{
		"login", "Betel", "segredo1",
		"summary 2024",
		"members find ana",
		"stats",
		"exit",
	}, "\n") + "\n"
	out, err := execute(t, script, flags...)
	require.NoError(t, err)

	assert.Contains(t, out, "Login realizado.")
	assert.Contains(t, out, "celestial (conectado)> ")
	assert.Contains(t, out, "Resumo de 2024")
	assert.Contains(t, out, "R$ 380,00")
	assert.Contains(t, out, "Total anual: R$ 550,00")
	assert.Contains(t, out, "Ana Souza")
	assert.Contains(t, out, "Método")
	assert.Contains(t, out, "Até logo!")
	assert.Equal(t, 1, srv.Count("POST", "/login"))

	// The session file is shared: a new process starts already logged in.
	out, err = execute(t, "", append([]string{"summary", "--year", "2024"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Março")
	assert.Contains(t, out, "R$ 380,00")

	out, err = execute(t, "", append([]string{"members", "--find", "lima"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "Bruno Lima\n", out)
}
