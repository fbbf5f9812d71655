package apperror

// Sentinel failures of the auth flows.
var (
	ErrInvalidEmail       = New(KindValidation, "invalid_email", "Invalid email address")
	ErrWeakPassword       = New(KindValidation, "weak_password", "Password must be at least 8 characters long")
	ErrPasswordTooLong    = New(KindValidation, "password_too_long", "Password must be at most 72 bytes long")
	ErrPasswordMismatch   = New(KindValidation, "password_mismatch", "Passwords do not match")
	ErrInvalidTokenFormat = New(KindValidation, "invalid_token_format", "Invalid token format")

	ErrDuplicateEmail = New(KindConflict, "duplicate_email", "User with this email already exists")

	ErrUserNotFound     = New(KindNotFound, "user_not_found", "User not found")
	ErrTokenNotFound    = New(KindNotFound, "token_not_found", "Invalid password reset token")
	ErrProfileNotFound  = New(KindNotFound, "profile_not_found", "Service provider profile not found")
	ErrAccountNotFound  = New(KindNotFound, "account_not_found", "User account not found")
	ErrTokenExpired     = New(KindExpired, "token_expired", "Password reset token has expired")
	ErrInvalidOrExpired = New(KindValidation, "invalid_or_expired_token", "Invalid or expired token")

	ErrInvalidCredentials = New(KindAuthentication, "invalid_credentials", "Invalid password")
	ErrAccountInactive    = New(KindAuthentication, "account_inactive", "Account is inactive")
	ErrUnauthenticated    = New(KindAuthentication, "unauthenticated", "Invalid authentication credentials")
	ErrInvalidCode        = New(KindValidation, "invalid_verification_code", "Invalid verification code")

	ErrNotAdmin    = New(KindAuthorization, "not_admin", "Access denied: Not an admin")
	ErrNotProvider = New(KindAuthorization, "not_provider", "Access denied: Not a service provider")
)
