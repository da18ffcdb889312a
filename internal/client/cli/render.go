package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/metrics"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return fmt.Sprintf("Mês %d", m)
	}
	return monthNames[m-1]
}

// brl formats an amount the way the church staff read it: "R$ 1234,50".
func brl(m models.Money) string {
	return "R$ " + strings.Replace(m.String(), ".", ",", 1)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderMembers(w io.Writer, members []models.Member) {
	if len(members) == 0 {
		fmt.Fprintln(w, "Nenhum membro cadastrado.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNome\tNascimento\tCPF\tCongregação")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.BirthDate, m.NationalID, m.Congregation)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d membro(s)\n", len(members))
}

func renderMember(w io.Writer, m models.Member) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", m.ID)
	for _, f := range models.MemberFields {
		v := f.Get(&m)
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f.Label, v)
	}
	tw.Flush()
}

func renderTithes(w io.Writer, entries []models.Tithe) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Nenhum dízimo encontrado.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tData\tMembro\tCargo\tValor\tDescrição")
	for _, t := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date.Format("02/01/2006"), t.Member, t.Role, brl(t.Amount), t.Description)
	}
	tw.Flush()
}

func renderSummary(w io.Writer, year int, monthly []models.MonthlySummary, annual models.AnnualSummary) {
	fmt.Fprintf(w, "Resumo de %d\n", year)
	if len(monthly) == 0 {
		fmt.Fprintln(w, "Sem movimentação no ano.")
	} else {
		tw := newTable(w)
		fmt.Fprintln(tw, "Mês\tEntrada\tSaída\tSaldo")
		for _, s := range monthly {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", monthName(s.Month), brl(s.Inflow), brl(s.Outflow), brl(s.Net()))
		}
		tw.Flush()
	}
	fmt.Fprintf(w, "Total anual: %s\n", brl(annual.Total))
}

func renderNotices(w io.Writer, notices []models.Notice) {
	if len(notices) == 0 {
		fmt.Fprintln(w, "Nenhum aviso.")
		return
	}
	for i, n := range notices {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "[%s] %s\n", n.ID, n.Title)
		for _, line := range strings.Split(n.Message, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func renderStats(w io.Writer, stats []metrics.RouteStat) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "Nenhuma requisição registrada.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "Método\tRota\tResultado\tTotal")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\n", s.Method, s.Route, s.Outcome, s.Count)
	}
	tw.Flush()
}

// renderFieldErrors lists field messages under their form labels, in form
// order; keys without a known label come last, sorted.
func renderFieldErrors(w io.Writer, fields map[string]string) {
	seen := map[string]bool{}
	for _, f := range models.MemberFields {
		if msg, ok := fields[f.Name]; ok {
			fmt.Fprintf(w, "  - %s\n", msg)
			seen[f.Name] = true
		}
	}
	rest := make([]string, 0, len(fields))
	for k := range fields {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		fmt.Fprintf(w, "  - %s\n", fields[k])
	}
}

func renderSession(s models.Session) string {
	switch s.Status() {
	case models.StatusAuthenticated:
		return "conectado"
	case models.StatusPendingVerification:
		return "aguardando confirmação"
	default:
		return "desconectado"
	}
}
