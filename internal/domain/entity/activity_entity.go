package entity

import "time"

// Activity actions recorded by the auth service.
const (
	ActionSignup            = "signup"
	ActionSigninSuccess     = "signin_success"
	ActionSigninFailure     = "signin_failure"
	ActionResetRequested    = "reset_requested"
	ActionResetUnknownEmail = "reset_unknown_email"
	ActionResetCompleted    = "reset_completed"
	ActionEmailVerified     = "email_verified"
	ActionVerifyRequested   = "verify_requested"
	ActionPasswordChanged   = "password_changed"
)

// Activity is an auth audit event.
type Activity struct {
	UserID     string
	Email      string
	Action     string
	IP         string
	UserAgent  string
	Metadata   map[string]any
	OccurredAt time.Time
}
