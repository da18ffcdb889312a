package client

import (
	"context"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
)

// Client is the typed contract with the backend. Identity operations are
// public; everything else is scoped to the trusted tenant.
type Client interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
	Confirm(ctx context.Context, req models.ConfirmRequest) (models.ConfirmResponse, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (string, error)

	ListMembers(ctx context.Context) ([]models.Member, error)
	CreateMember(ctx context.Context, m models.Member) (models.Member, error)
	UpdateMember(ctx context.Context, m models.Member) (models.Member, error)
	DeleteMember(ctx context.Context, id string) error
	MemberLetter(ctx context.Context, id string) ([]byte, error)

	ListTithes(ctx context.Context) ([]models.Tithe, error)
	CreateTithe(ctx context.Context, t models.Tithe) (models.Tithe, error)
	DeleteTithe(ctx context.Context, id string) error
	MonthlySummary(ctx context.Context, year int) ([]models.MonthlySummary, error)
	AnnualSummary(ctx context.Context, year int) (models.AnnualSummary, error)

	ListNotices(ctx context.Context) ([]models.Notice, error)
	SaveNotice(ctx context.Context, n models.Notice) (models.Notice, error)
	DeleteNotice(ctx context.Context, id string) error
}

var _ Client = (*HTTPClient)(nil)
