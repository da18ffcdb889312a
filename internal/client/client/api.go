package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/membrocelestial/internal/client/models"
)

const (
	pathMembers = "/api/users"
	pathTithes  = "/api/dizimos"
	pathNotices = "/avisos"
)

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error) {
	var resp models.RegisterResponse
	err := c.Call(ctx, http.MethodPost, "/cadastrar", req, &resp)
	return resp, err
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.Call(ctx, http.MethodPost, "/login", req, &resp)
	return resp, err
}

func (c *HTTPClient) Confirm(ctx context.Context, req models.ConfirmRequest) (models.ConfirmResponse, error) {
	var resp models.ConfirmResponse
	err := c.Call(ctx, http.MethodPost, "/confirmar", req, &resp)
	return resp, err
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp models.MessageResponse
	err := c.Call(ctx, http.MethodPost, "/solicitar-reset", models.ResetRequest{Email: email}, &resp)
	return resp.Message, err
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (string, error) {
	var resp models.MessageResponse
	err := c.Call(ctx, http.MethodPost, "/redefinir-senha", req, &resp)
	return resp.Message, err
}

func (c *HTTPClient) ListMembers(ctx context.Context) ([]models.Member, error) {
	var out []models.Member
	if err := c.Call(ctx, http.MethodGet, pathMembers, nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = out[i].Normalize()
	}
	return out, nil
}

// CreateMember returns the stored member; when the backend answers without
// a body the input is returned unchanged.
func (c *HTTPClient) CreateMember(ctx context.Context, m models.Member) (models.Member, error) {
	out := m
	if err := c.Call(ctx, http.MethodPost, pathMembers, m, &out); err != nil {
		return models.Member{}, err
	}
	return out.Normalize(), nil
}

func (c *HTTPClient) UpdateMember(ctx context.Context, m models.Member) (models.Member, error) {
	out := m
	if err := c.Call(ctx, http.MethodPut, itemPath(pathMembers, m.ID), m, &out); err != nil {
		return models.Member{}, err
	}
	if out.ID == "" {
		out.ID = m.ID
	}
	return out.Normalize(), nil
}

func (c *HTTPClient) DeleteMember(ctx context.Context, id string) error {
	return c.Call(ctx, http.MethodDelete, itemPath(pathMembers, id), nil, nil)
}

func (c *HTTPClient) MemberLetter(ctx context.Context, id string) ([]byte, error) {
	return c.CallBlob(ctx, http.MethodGet, itemPath(pathMembers, id)+"/carta")
}

func (c *HTTPClient) ListTithes(ctx context.Context) ([]models.Tithe, error) {
	var out []models.Tithe
	if err := c.Call(ctx, http.MethodGet, pathTithes, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateTithe(ctx context.Context, t models.Tithe) (models.Tithe, error) {
	out := t
	if err := c.Call(ctx, http.MethodPost, pathTithes, t, &out); err != nil {
		return models.Tithe{}, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteTithe(ctx context.Context, id string) error {
	return c.Call(ctx, http.MethodDelete, itemPath(pathTithes, id), nil, nil)
}

func (c *HTTPClient) MonthlySummary(ctx context.Context, year int) ([]models.MonthlySummary, error) {
	var out []models.MonthlySummary
	if err := c.Call(ctx, http.MethodGet, fmt.Sprintf("%s/resumo/mensal/%d", pathTithes, year), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AnnualSummary(ctx context.Context, year int) (models.AnnualSummary, error) {
	var out models.AnnualSummary
	err := c.Call(ctx, http.MethodGet, fmt.Sprintf("%s/resumo/anual/%d", pathTithes, year), nil, &out)
	return out, err
}

func (c *HTTPClient) ListNotices(ctx context.Context) ([]models.Notice, error) {
	var out []models.Notice
	if err := c.Call(ctx, http.MethodGet, pathNotices, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveNotice creates n when it has no id and updates it otherwise.
func (c *HTTPClient) SaveNotice(ctx context.Context, n models.Notice) (models.Notice, error) {
	out := n
	method, path := http.MethodPost, pathNotices
	if n.ID != "" {
		method, path = http.MethodPut, itemPath(pathNotices, n.ID)
	}
	if err := c.Call(ctx, method, path, n, &out); err != nil {
		return models.Notice{}, err
	}
	if out.ID == "" {
		out.ID = n.ID
	}
	return out, nil
}

func (c *HTTPClient) DeleteNotice(ctx context.Context, id string) error {
	return c.Call(ctx, http.MethodDelete, itemPath(pathNotices, id), nil, nil)
}

func itemPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
