package models

// Wire payloads of the public identity endpoints.

type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// RegisterResponse may carry a provisional tenant reference.
type RegisterResponse struct {
	TenantID string `json:"idIgreja,omitempty"`
	Message  string `json:"message,omitempty"`
}

// LoginRequest sends the identifier under "nome"; the remote resolves a
// tenant name or an email.
type LoginRequest struct {
	Identifier string `json:"nome"`
	Password   string `json:"senha"`
}

type LoginResponse struct {
	TenantID  string `json:"idIgreja"`
	FirstTime bool   `json:"primeiraVez"`
	Email     string `json:"email,omitempty"`
	Message   string `json:"message,omitempty"`
}

type ConfirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"codigo"`
}

type ConfirmResponse struct {
	TenantID string `json:"idIgreja"`
	Message  string `json:"message,omitempty"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"codigo"`
	NewPassword string `json:"novaSenha"`
}

// MessageResponse is the generic {"message": "..."} acknowledgement.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
}
