package cli

import (
	"context"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
)

// Register prompts for the church name, email and password and submits a
// new registration. The session is left awaiting the emailed code.
func (a *App) Register(ctx context.Context) error {
	name, err := a.text("Nome da igreja")
	if err != nil {
		return err
	}
	email, err := a.text("Email")
	if err != nil {
		return err
	}
	password, err := a.password("Senha")
	if err != nil {
		return err
	}
	defer wipe(password)

	if _, err := a.auth.Register(ctx, name, email, password); err != nil {
		return err
	}
	a.println("Cadastro enviado. Digite 'confirm' com o código recebido por email.")
	return nil
}

// Login accepts the church name or email.
func (a *App) Login(ctx context.Context) error {
	identifier, err := a.text("Nome ou email da igreja")
	if err != nil {
		return err
	}
	password, err := a.password("Senha")
	if err != nil {
		return err
	}
	defer wipe(password)

	sess, err := a.auth.Login(ctx, identifier, password)
	if err != nil {
		return err
	}
	if sess.Status() == models.StatusPendingVerification {
		a.printf("Confirme o email %s: digite 'confirm' com o código recebido.\n", sess.RegistrationEmail)
		return nil
	}
	a.println("Login realizado.")
	a.reloadAfterLogin(ctx)
	return nil
}

func (a *App) Confirm(ctx context.Context) error {
	code, err := a.text("Código de verificação")
	if err != nil {
		return err
	}
	if _, err := a.auth.ConfirmCode(ctx, code); err != nil {
		return err
	}
	a.println("Email confirmado. Bem-vindo!")
	a.reloadAfterLogin(ctx)
	return nil
}

// Reset runs both steps of password recovery.
func (a *App) Reset(ctx context.Context) error {
	email, err := a.text("Email cadastrado")
	if err != nil {
		return err
	}
	msg, err := a.auth.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}
	if msg != "" {
		a.println(msg)
	}

	code, err := a.text("Código recebido")
	if err != nil {
		return err
	}
	password, err := a.password("Nova senha")
	if err != nil {
		return err
	}
	defer wipe(password)

	msg, err = a.auth.ResetPassword(ctx, code, password)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "Senha redefinida."
	}
	a.println(msg)
	return nil
}

// Logout also drops a registration still awaiting its code.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Sessão encerrada.")
	return nil
}

// Refocus re-reads the shared session, as when returning to the window.
func (a *App) Refocus(ctx context.Context) error {
	changed, err := a.ws.Refocus(ctx)
	if !changed {
		if err == nil {
			a.println("Sessão sincronizada.")
		}
		return err
	}
	a.println("A sessão foi alterada em outro terminal; dados recarregados.")
	return err
}
