package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/services"
)

// Tithes handles "tithes [list|add|delete|filter|year] ...".
func (a *App) Tithes(ctx context.Context, args []string) error {
	sub, rest := "list", args
	if len(args) > 0 {
		sub, rest = args[0], args[1:]
	}
	ledger := a.ws.Ledger

	if !ledger.Loaded() {
		if err := a.loadLedger(ctx); err != nil {
			return err
		}
	}

	switch sub {
	case "list":
		renderTithes(a.out, ledger.Entries())
		return nil
	case "add":
		return a.addTithe(ctx)
	case "delete":
		if len(rest) == 0 {
			a.println("Uso: tithes delete <id>")
			return nil
		}
		return a.deleteTithe(ctx, rest[0])
	case "filter":
		f, problem := parseFilter(rest)
		if problem != "" {
			a.println(problem)
			return nil
		}
		a.renderFiltered(f)
		return nil
	case "year":
		if len(rest) == 0 {
			a.printf("Ano selecionado: %d. Disponíveis: %s\n", ledger.Year(), joinInts(ledger.Years()))
			return nil
		}
		year, err := strconv.Atoi(rest[0])
		if err != nil || !slices.Contains(ledger.Years(), year) {
			a.printf("Ano inválido. Disponíveis: %s\n", joinInts(ledger.Years()))
			return nil
		}
		if err := ledger.SelectYear(ctx, year); err != nil {
			return err
		}
		a.printf("Ano selecionado: %d\n", year)
		return nil
	default:
		a.println("Subcomando desconhecido:", sub)
		return nil
	}
}

func (a *App) addTithe(ctx context.Context) error {
	var in services.TitheInput
	var err error

	if in.Member, err = a.text("Nome do dizimista"); err != nil {
		return err
	}
	if in.Member != "" && !a.ws.Directory.Exists(in.Member) {
		if s := a.ws.Directory.Suggest(in.Member, 0); len(s) > 0 {
			a.printf("Sugestões: %s\n", strings.Join(s, ", "))
			if in.Member, err = a.text("Nome do dizimista"); err != nil {
				return err
			}
		}
	}
	if in.Amount, err = a.text("Valor (ex.: 50,00)"); err != nil {
		return err
	}
	roles := make([]string, 0, len(models.Roles()))
	for _, r := range models.Roles() {
		roles = append(roles, string(r))
	}
	if in.Role, err = Choose(a.reader, "Cargo", roles, a.out); err != nil {
		return err
	}
	if in.Description, err = a.text("Descrição (opcional)"); err != nil {
		return err
	}

	created, err := a.ws.Ledger.Create(ctx, in)
	if created.ID != "" {
		a.printf("Dízimo registrado: %s de %s\n", brl(created.Amount), created.Member)
	}
	return err
}

func (a *App) deleteTithe(ctx context.Context, id string) error {
	ledger := a.ws.Ledger
	if err := ledger.RequestDelete(id); err != nil {
		return err
	}
	i := slices.IndexFunc(ledger.Entries(), func(t models.Tithe) bool { return t.ID == id })
	if i >= 0 {
		renderTithes(a.out, ledger.Entries()[i:i+1])
	}

	ok, err := a.confirm("Excluir este dízimo?")
	if err != nil || !ok {
		ledger.CancelDelete()
		if err == nil {
			a.println("Exclusão cancelada.")
		}
		return err
	}
	if err := ledger.ConfirmDelete(ctx); err != nil {
		return err
	}
	a.println("Dízimo excluído.")
	return nil
}

// parseFilter reads "cargo=<role> nome=<texto> mes=<1-12>" arguments. A
// non-empty problem is the message to show instead of filtering.
func parseFilter(args []string) (f services.LedgerFilter, problem string) {
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return f, fmt.Sprintf("Filtro inválido: %q (use cargo=, nome= ou mes=)", arg)
		}
		switch key {
		case "cargo":
			f.Role = models.Role(strings.ReplaceAll(value, "_", " "))
			if !f.Role.Valid() {
				return f, "Cargo inválido: " + value
			}
		case "nome":
			f.Name = value
		case "mes":
			m, err := strconv.Atoi(value)
			if err != nil || m < 1 || m > 12 {
				return f, "Mês inválido: " + value
			}
			f.Month = m
		default:
			return f, "Filtro desconhecido: " + key
		}
	}
	return f, ""
}

func (a *App) renderFiltered(f services.LedgerFilter) {
	ledger := a.ws.Ledger
	var scope []string
	if f.Role != "" {
		scope = append(scope, f.Role.Plural())
	}
	if f.Name != "" {
		scope = append(scope, fmt.Sprintf("nome contendo %q", f.Name))
	}
	if f.Month != 0 {
		scope = append(scope, fmt.Sprintf("%s de %d", monthName(f.Month), ledger.Year()))
	}
	if len(scope) > 0 {
		a.printf("Filtro: %s\n", strings.Join(scope, ", "))
	}

	renderTithes(a.out, ledger.Filter(f))
	if f.Month != 0 {
		if net, ok := ledger.MonthlyNet(f.Month); ok {
			a.printf("Saldo do mês: %s\n", brl(net))
		}
	}
}

// loadLedger loads the directory first: new entries are checked against it.
func (a *App) loadLedger(ctx context.Context) error {
	if !a.ws.Directory.Loaded() {
		if err := a.ws.Directory.Load(ctx); err != nil {
			return err
		}
	}
	return a.ws.Ledger.Load(ctx)
}

// Summary prints the monthly and annual figures of the selected year, or of
// year when given.
func (a *App) Summary(ctx context.Context, args []string) error {
	ledger := a.ws.Ledger
	if len(args) > 0 {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			a.println("Ano inválido.")
			return nil
		}
		if err := ledger.SelectYear(ctx, year); err != nil {
			return err
		}
	} else if !ledger.Loaded() {
		if err := ledger.Load(ctx); err != nil {
			return err
		}
	}
	renderSummary(a.out, ledger.Year(), ledger.Monthly(), ledger.Annual())
	return nil
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ", ")
}
