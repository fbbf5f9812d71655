package application

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/oksasatya/egarage-auth/internal/domain/apperror"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
)

// ResetRequestedMessage is returned for every reset request so callers cannot
// tell whether the address exists.
const ResetRequestedMessage = "If an account with that email exists, a password reset link has been sent"

// minTokenLength rejects values that cannot be issued tokens before any lookup.
const minTokenLength = 20

type ResetRequestResult struct {
	Message   string
	Token     string // empty when the email is unknown
	ExpiresAt time.Time
}

type ResetTokenStatus struct {
	Valid  bool
	UserID string
	Email  string
}

type ResetPasswordResult struct {
	Success bool
	Email   string
}

// RequestPasswordReset issues a reset token for a known address and emails
// the link. Unknown addresses get the same answer and no token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (res *ResetRequestResult, err error) {
	defer func() { countOutcome("request_reset", err) }()

	email = entity.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, apperror.ErrInvalidEmail
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.record(ctx, entity.ActionResetUnknownEmail, nil, email, nil)
		return &ResetRequestResult{Message: ResetRequestedMessage}, nil
	}
	if err != nil {
		return nil, s.internal(ctx, "request_reset.lookup", err)
	}

	t, err := s.newToken(ctx, u, entity.PurposePasswordReset, s.cfg.ResetTokenTTL)
	if err != nil {
		return nil, s.internal(ctx, "request_reset.create", err)
	}

	s.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Universal,
		Data: mailtpl.NewForgotPasswordData(s.cfg, u.DisplayName(), u.Email,
			linkWithToken(s.cfg.ResetPasswordURL, t.Token), mailtpl.WithExpiresAt(t.ExpiresAt)),
	})
	s.record(ctx, entity.ActionResetRequested, u, u.Email, nil)
	return &ResetRequestResult{Message: ResetRequestedMessage, Token: t.Token, ExpiresAt: t.ExpiresAt}, nil
}

// VerifyResetToken reports whether token can still be used. It never
// mutates the store.
func (s *Service) VerifyResetToken(ctx context.Context, token string) (*ResetTokenStatus, error) {
	if len(token) < minTokenLength {
		return nil, apperror.ErrInvalidTokenFormat
	}
	t, err := s.tokens.Find(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.ErrTokenNotFound
	}
	if err != nil {
		return nil, s.internal(ctx, "verify_reset.find", err)
	}
	if t.Purpose != entity.PurposePasswordReset {
		return nil, apperror.ErrTokenNotFound
	}
	if t.ExpiredAt(s.now()) {
		return nil, apperror.ErrTokenExpired
	}
	return &ResetTokenStatus{Valid: true, UserID: t.UserID, Email: t.Email}, nil
}

// ResetPassword consumes a reset token and sets the new password in one
// transaction. A store failure rolls back and leaves the token usable.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword, confirm string) (res *ResetPasswordResult, err error) {
	defer func() { countOutcome("reset_password", err) }()

	if newPassword != confirm {
		return nil, apperror.ErrPasswordMismatch
	}
	if err := checkNewPassword(newPassword); err != nil {
		return nil, err
	}
	if len(token) < minTokenLength {
		return nil, apperror.ErrInvalidTokenFormat
	}

	var (
		user    *entity.User
		outcome error
	)
	txErr := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, outcome = nil, nil
		u, err := s.consumeForUser(ctx, token, entity.PurposePasswordReset)
		if err != nil {
			if apperror.IsDomain(err) {
				// commit: the token stays consumed
				outcome = err
				return nil
			}
			return err
		}
		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := s.users.UpdatePassword(ctx, u.ID, hash, s.now()); err != nil {
			return err
		}
		user = u
		return nil
	})
	if txErr != nil {
		return nil, s.internal(ctx, "reset_password", txErr)
	}
	if outcome != nil {
		return nil, outcome
	}

	s.enqueue(ctx, mailer.EmailJob{
		To:       user.Email,
		Template: mailtpl.Universal,
		Data:     mailtpl.NewPasswordChangedData(s.cfg, user.DisplayName(), user.Email, mailtpl.WithTime(s.now())),
	})
	s.record(ctx, entity.ActionResetCompleted, user, user.Email, nil)
	s.log(ctx).WithField("user_id", user.ID).Info("password reset completed")
	return &ResetPasswordResult{Success: true, Email: user.Email}, nil
}

// consumeForUser atomically consumes a valid token of the given purpose and
// loads its user. Must run inside a transaction. Returns
// ErrInvalidOrExpired when no valid token exists (an expired one is purged)
// and ErrUserNotFound when the owner is gone.
func (s *Service) consumeForUser(ctx context.Context, token string, purpose entity.TokenPurpose) (*entity.User, error) {
	t, err := s.tokens.ConsumeValid(ctx, token, purpose, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		if err := s.purgeExpired(ctx, token, purpose); err != nil {
			return nil, err
		}
		return nil, apperror.ErrInvalidOrExpired
	}
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, t.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// purgeExpired deletes token when it exists with purpose but has expired.
func (s *Service) purgeExpired(ctx context.Context, token string, purpose entity.TokenPurpose) error {
	t, err := s.tokens.Find(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if t.Purpose == purpose && t.ExpiredAt(s.now()) {
		return s.tokens.Consume(ctx, token)
	}
	return nil
}

func (s *Service) newToken(ctx context.Context, u *entity.User, purpose entity.TokenPurpose, ttl time.Duration) (*entity.ResetToken, error) {
	value, err := helpers.GenerateToken(helpers.ResetTokenLength)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &entity.ResetToken{
		Token:     value,
		UserID:    u.ID,
		Email:     u.Email,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// linkWithToken appends token as a query parameter to base.
func linkWithToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// SweepExpiredTokens deletes every expired reset and verification token.
func (s *Service) SweepExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, s.internal(ctx, "sweep", err)
	}
	return n, nil
}
