package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/filex"
)

// Members handles "members [list|show|add|edit|delete|letter|find] ...".
func (a *App) Members(ctx context.Context, args []string) error {
	sub, rest := "list", args
	if len(args) > 0 {
		sub, rest = args[0], args[1:]
	}
	dir := a.ws.Directory

	if sub != "add" && !dir.Loaded() {
		if err := dir.Load(ctx); err != nil {
			return err
		}
	}

	switch sub {
	case "list":
		renderMembers(a.out, dir.Members())
		return nil
	case "find":
		suggestions := dir.Suggest(strings.Join(rest, " "), 0)
		if len(suggestions) == 0 {
			a.println("Nenhum membro encontrado.")
			return nil
		}
		for _, s := range suggestions {
			a.println(s)
		}
		return nil
	case "add":
		return a.addMember(ctx)
	}

	if len(rest) == 0 {
		a.printf("Uso: members %s <id>\n", sub)
		return nil
	}
	m, ok := dir.Find(rest[0])
	if !ok {
		a.println("Membro não encontrado.")
		return nil
	}

	switch sub {
	case "show":
		renderMember(a.out, m)
		return nil
	case "edit":
		return a.editMember(ctx, m)
	case "delete":
		ok, err := a.confirm(fmt.Sprintf("Excluir %s?", m.Name))
		if err != nil || !ok {
			return err
		}
		if err := dir.Delete(ctx, m.ID); err != nil {
			return err
		}
		a.println("Membro excluído.")
		return nil
	case "letter":
		data, err := dir.Letter(ctx, m.ID)
		if err != nil {
			return err
		}
		path, err := filex.WriteFile(a.cfg.LettersDir, "Carta_"+m.ID+".pdf", data)
		if err != nil {
			return fmt.Errorf("save letter: %w", err)
		}
		a.printf("Carta salva em %s\n", path)
		return nil
	default:
		a.println("Subcomando desconhecido:", sub)
		return nil
	}
}

// fillMember walks the form schema. With keep set, an empty answer keeps
// the current value.
func (a *App) fillMember(m *models.Member, keep bool) error {
	for _, f := range models.MemberFields {
		prompt := f.Label
		if f.Required {
			prompt += " *"
		}
		if f.Kind == models.KindDate {
			prompt += " (AAAA-MM-DD)"
		}
		if cur := f.Get(m); keep && cur != "" {
			prompt += " [" + cur + "]"
		}

		var (
			v   string
			err error
		)
		if f.Kind == models.KindEnum {
			v, err = Choose(a.reader, prompt, f.Options, a.out)
		} else {
			v, err = a.text(prompt)
		}
		if err != nil {
			return err
		}
		if v == "" && keep {
			continue
		}
		f.Set(m, v)
	}
	return nil
}

func (a *App) addMember(ctx context.Context) error {
	var m models.Member
	if err := a.fillMember(&m, false); err != nil {
		return err
	}
	created, err := a.ws.Directory.Create(ctx, m)
	if err != nil {
		return err
	}
	a.printf("Membro cadastrado: %s (%s)\n", created.Name, created.ID)
	return nil
}

func (a *App) editMember(ctx context.Context, m models.Member) error {
	if err := a.fillMember(&m, true); err != nil {
		return err
	}
	if _, err := a.ws.Directory.Update(ctx, m); err != nil {
		return err
	}
	a.println("Membro atualizado.")
	return nil
}
