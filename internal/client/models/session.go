package models

// SessionStatus is the position of a session in the identity lifecycle.
type SessionStatus string

const (
	StatusAnonymous           SessionStatus = "anonymous"
	StatusPendingVerification SessionStatus = "pending_verification"
	StatusAuthenticated       SessionStatus = "authenticated"
)

// Session is the client-held record of which tenant is trusted.
//
// TenantID is only ever set once the remote has vouched for it (verified
// login or confirmed code). A tenant reference issued during registration
// lives in PendingTenantID and is never used for protected calls.
type Session struct {
	TenantID          string
	Verified          bool
	NeedsVerification bool
	PendingTenantID   string
	RegistrationEmail string
}

func (s Session) Status() SessionStatus {
	switch {
	case s.TenantID != "" && s.Verified:
		return StatusAuthenticated
	case s.NeedsVerification:
		return StatusPendingVerification
	default:
		return StatusAnonymous
	}
}

// TrustedTenantID returns the tenant id allowed on protected calls.
func (s Session) TrustedTenantID() (string, bool) {
	if s.Status() != StatusAuthenticated {
		return "", false
	}
	return s.TenantID, true
}
