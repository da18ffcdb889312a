package cli

import (
	"context"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/metrics"
)

// Notices handles "notices [list|add|edit|delete] ...".
func (a *App) Notices(ctx context.Context, args []string) error {
	sub, rest := "list", args
	if len(args) > 0 {
		sub, rest = args[0], args[1:]
	}
	board := a.ws.Notices
	if err := board.Load(ctx); err != nil {
		return err
	}

	switch sub {
	case "list":
		renderNotices(a.out, board.Notices())
		return nil
	case "add":
		return a.saveNotice(ctx, models.Notice{})
	case "edit", "delete":
		if len(rest) == 0 {
			a.printf("Uso: notices %s <id>\n", sub)
			return nil
		}
		var found *models.Notice
		for _, n := range board.Notices() {
			if n.ID == rest[0] {
				found = &n
				break
			}
		}
		if found == nil {
			a.println("Aviso não encontrado.")
			return nil
		}
		if sub == "edit" {
			return a.saveNotice(ctx, *found)
		}
		ok, err := a.confirm("Excluir o aviso \"" + found.Title + "\"?")
		if err != nil || !ok {
			return err
		}
		if err := board.Delete(ctx, found.ID); err != nil {
			return err
		}
		a.println("Aviso excluído.")
		return nil
	default:
		a.println("Subcomando desconhecido:", sub)
		return nil
	}
}

func (a *App) saveNotice(ctx context.Context, n models.Notice) error {
	prompt := "Título"
	if n.Title != "" {
		prompt += " [" + n.Title + "]"
	}
	title, err := a.text(prompt)
	if err != nil {
		return err
	}
	if title != "" {
		n.Title = title
	}
	msg, err := GetMultiline(a.reader, "Mensagem", a.out)
	if err != nil {
		return err
	}
	if msg != "" || n.ID == "" {
		n.Message = msg
	}

	if _, err := a.ws.Notices.Save(ctx, n); err != nil {
		return err
	}
	a.println("Aviso salvo.")
	return nil
}

// Stats prints request counters recorded by the gateway in this process.
func (a *App) Stats(context.Context) error {
	stats, err := metrics.Summarize(a.registry)
	if err != nil {
		return err
	}
	renderStats(a.out, stats)
	return nil
}
