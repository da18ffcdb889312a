package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_Status(t *testing.T) {
	tests := []struct {
		name    string
		s       Session
		want    SessionStatus
		trusted string
	}{
		{"zero", Session{}, StatusAnonymous, ""},
		{"pending", Session{NeedsVerification: true, PendingTenantID: "tmp", RegistrationEmail: "a@b.c"}, StatusPendingVerification, ""},
		{"authenticated", Session{TenantID: "ig-1", Verified: true}, StatusAuthenticated, "ig-1"},
		{"unverified id is not trusted", Session{TenantID: "ig-1"}, StatusAnonymous, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.Status())
			id, ok := tt.s.TrustedTenantID()
			assert.Equal(t, tt.trusted, id)
			assert.Equal(t, tt.trusted != "", ok)
		})
	}
}

func TestValidateNotice(t *testing.T) {
	assert.Len(t, ValidateNotice(Notice{}), 2)
	assert.Empty(t, ValidateNotice(Notice{Title: "Culto", Message: "Domingo 19h"}))
}
