// Package services contains the application services of the church client:
// the identity state machine, the member directory, the tithe ledger, the
// notice board and the workspace that keeps them tenant-consistent.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
	"github.com/dmitrijs2005/membrocelestial/internal/client/session"
	"github.com/dmitrijs2005/membrocelestial/internal/logging"
)

const minPasswordLen = 6

// AuthService drives the identity lifecycle:
//
//	Anonymous -> PendingVerification -> Authenticated
//
// with Authenticated -> Anonymous on logout and PendingVerification ->
// Anonymous when verification is abandoned or fails terminally.
//
// Contract:
//   - Register: only from Anonymous or PendingVerification; leaves the
//     session pending, never trusted.
//   - Login: "first time" answers lead to PendingVerification, otherwise the
//     returned tenant id becomes trusted.
//   - ConfirmCode: only from PendingVerification; on failure the state is
//     unchanged and the remote message is returned verbatim.
//   - Logout: always succeeds.
//
// It is the only writer of the trusted tenant besides session resync.
type AuthService interface {
	Register(ctx context.Context, name, email string, password []byte) (models.Session, error)
	Login(ctx context.Context, identifier string, password []byte) (models.Session, error)
	ConfirmCode(ctx context.Context, code string) (models.Session, error)
	AbandonVerification(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, code string, newPassword []byte) (string, error)
	Logout(ctx context.Context) error
	Session() models.Session
}

// SessionWriter is the part of session.Store the auth service needs.
type SessionWriter interface {
	session.Reader
	Set(ctx context.Context, p session.Patch) (models.Session, error)
	Clear(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session SessionWriter
	log     logging.Logger

	mu         sync.Mutex
	resetEmail string
}

// NewAuthService constructs an AuthService bound to the given API client and
// session store.
func NewAuthService(c client.Client, s SessionWriter, log logging.Logger) AuthService {
	if log == nil {
		log = logging.NewNop()
	}
	return &authService{client: c, session: s, log: log.With("component", "auth")}
}

func (a *authService) Session() models.Session {
	return a.session.Current()
}

// Register submits a new church. Any earlier pending registration is
// replaced.
func (a *authService) Register(ctx context.Context, name, email string, password []byte) (models.Session, error) {
	cur := a.session.Current()
	if cur.Status() == models.StatusAuthenticated {
		return cur, ErrAlreadyAuthenticated
	}

	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	fields := map[string]string{}
	if name == "" {
		fields["nome"] = "Nome da igreja é obrigatório"
	}
	if !strings.Contains(email, "@") {
		fields["email"] = "Email inválido"
	}
	if len(password) < minPasswordLen {
		fields["senha"] = "A senha deve ter pelo menos 6 caracteres"
	}
	if len(fields) > 0 {
		return cur, client.NewValidationError(fields)
	}

	resp, err := a.client.Register(ctx, models.RegisterRequest{Name: name, Email: email, Password: string(password)})
	if err != nil {
		return cur, err
	}

	sess, err := a.session.Set(ctx, session.Patch{
		TenantID:          session.String(""),
		Verified:          session.Bool(false),
		NeedsVerification: session.Bool(true),
		PendingTenantID:   session.String(resp.TenantID),
		RegistrationEmail: session.String(email),
	})
	if err != nil {
		return cur, err
	}
	a.log.Info(ctx, "registration pending verification", "email", email)
	return sess, nil
}

// Login accepts a church name or email as identifier.
func (a *authService) Login(ctx context.Context, identifier string, password []byte) (models.Session, error) {
	cur := a.session.Current()

	identifier = strings.TrimSpace(identifier)
	fields := map[string]string{}
	if identifier == "" {
		fields["nome"] = "Informe o nome ou email da igreja"
	}
	if len(password) == 0 {
		fields["senha"] = "Senha é obrigatória"
	}
	if len(fields) > 0 {
		return cur, client.NewValidationError(fields)
	}

	resp, err := a.client.Login(ctx, models.LoginRequest{Identifier: identifier, Password: string(password)})
	if err != nil {
		return cur, err
	}

	if resp.FirstTime {
		email := resp.Email
		if strings.Contains(identifier, "@") {
			email = identifier
		}
		if email == "" {
			email = cur.RegistrationEmail
		}
		sess, err := a.session.Set(ctx, session.Patch{
			TenantID:          session.String(""),
			Verified:          session.Bool(false),
			NeedsVerification: session.Bool(true),
			PendingTenantID:   session.String(resp.TenantID),
			RegistrationEmail: session.String(email),
		})
		if err != nil {
			return cur, err
		}
		a.log.Info(ctx, "first login, verification required")
		return sess, nil
	}

	if resp.TenantID == "" {
		return cur, client.Rejected("Sua igreja ainda não foi confirmada.")
	}

	sess, err := a.session.Set(ctx, trusted(resp.TenantID))
	if err != nil {
		return cur, err
	}
	a.log.Info(ctx, "logged in", "tenant", resp.TenantID)
	return sess, nil
}

// ConfirmCode submits the emailed code for the pending registration.
func (a *authService) ConfirmCode(ctx context.Context, code string) (models.Session, error) {
	cur := a.session.Current()
	if cur.Status() != models.StatusPendingVerification {
		return cur, ErrNotPending
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return cur, client.NewValidationError(map[string]string{"codigo": "Código é obrigatório"})
	}
	if cur.RegistrationEmail == "" {
		return cur, client.NewValidationError(map[string]string{"email": "Email do cadastro não encontrado. Faça o cadastro novamente."})
	}

	resp, err := a.client.Confirm(ctx, models.ConfirmRequest{Email: cur.RegistrationEmail, Code: code})
	if err != nil {
		var e *client.Error
		if errors.As(err, &e) && e.Status == http.StatusNotFound {
			// the registration no longer exists remotely
			a.log.Warn(ctx, "pending registration unknown to server, clearing", "email", cur.RegistrationEmail)
			if cerr := a.session.Clear(ctx); cerr != nil {
				a.log.Error(ctx, "failed to clear session", "error", cerr)
			}
			return a.session.Current(), err
		}
		return cur, err
	}

	id := resp.TenantID
	if id == "" {
		id = cur.PendingTenantID
	}
	if id == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Confirmação sem identificador da igreja."
		}
		return cur, client.Rejected(msg)
	}

	sess, err := a.session.Set(ctx, trusted(id))
	if err != nil {
		return cur, err
	}
	a.log.Info(ctx, "email confirmed", "tenant", id)
	return sess, nil
}

// AbandonVerification drops a pending registration.
func (a *authService) AbandonVerification(ctx context.Context) error {
	if a.session.Current().Status() != models.StatusPendingVerification {
		return ErrNotPending
	}
	return a.session.Clear(ctx)
}

func (a *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return "", client.NewValidationError(map[string]string{"email": "Email inválido"})
	}

	msg, err := a.client.RequestPasswordReset(ctx, email)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.resetEmail = email
	a.mu.Unlock()
	return msg, nil
}

// ResetPassword completes the reset started by RequestPasswordReset. The
// trusted session is not touched.
func (a *authService) ResetPassword(ctx context.Context, code string, newPassword []byte) (string, error) {
	a.mu.Lock()
	email := a.resetEmail
	a.mu.Unlock()

	code = strings.TrimSpace(code)
	fields := map[string]string{}
	if email == "" {
		fields["email"] = "Solicite o código de redefinição primeiro"
	}
	if code == "" {
		fields["codigo"] = "Código é obrigatório"
	}
	if len(newPassword) < minPasswordLen {
		fields["novaSenha"] = "A senha deve ter pelo menos 6 caracteres"
	}
	if len(fields) > 0 {
		return "", client.NewValidationError(fields)
	}

	msg, err := a.client.ResetPassword(ctx, models.ResetPasswordRequest{Email: email, Code: code, NewPassword: string(newPassword)})
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.resetEmail = ""
	a.mu.Unlock()
	return msg, nil
}

// Logout clears the session. A persistence failure is logged, never
// returned: the in-memory session is gone either way.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.session.Clear(ctx); err != nil {
		a.log.Error(ctx, "failed to clear persisted session", "error", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

func trusted(id string) session.Patch {
	return session.Patch{
		TenantID:          session.String(id),
		Verified:          session.Bool(true),
		NeedsVerification: session.Bool(false),
	}
}
