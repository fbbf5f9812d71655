package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/oksasatya/egarage-auth/internal/domain/apperror"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
)

type VerificationRequest struct {
	AlreadyVerified bool
	Token           string
	ExpiresAt       time.Time
}

// VerifyEmail consumes an email verification token and marks its owner
// verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (err error) {
	defer func() { countOutcome("verify_email", err) }()
	if len(token) < minTokenLength {
		return apperror.ErrInvalidOrExpired
	}

	var (
		user    *entity.User
		outcome error
	)
	txErr := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, outcome = nil, nil
		u, err := s.consumeForUser(ctx, token, entity.PurposeEmailVerification)
		if err != nil {
			if apperror.IsDomain(err) {
				outcome = err
				return nil
			}
			return err
		}
		if err := s.users.SetVerified(ctx, u.ID, s.now()); err != nil {
			return err
		}
		user = u
		return nil
	})
	if txErr != nil {
		return s.internal(ctx, "verify_email", txErr)
	}
	if outcome != nil {
		return outcome
	}
	s.record(ctx, entity.ActionEmailVerified, user, user.Email, map[string]any{"method": "link"})
	return nil
}

// RequestEmailVerification issues a verification link for the user. Already
// verified users get no token.
func (s *Service) RequestEmailVerification(ctx context.Context, userID string) (*VerificationRequest, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.ErrAccountNotFound
	}
	if err != nil {
		return nil, s.internal(ctx, "verify_init.lookup", err)
	}
	if u.IsVerified {
		return &VerificationRequest{AlreadyVerified: true}, nil
	}

	t, err := s.newToken(ctx, u, entity.PurposeEmailVerification, s.cfg.VerifyTokenTTL)
	if err != nil {
		return nil, s.internal(ctx, "verify_init.create", err)
	}
	s.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Universal,
		Data: mailtpl.NewVerifyEmailData(s.cfg, u.DisplayName(), u.Email,
			linkWithToken(s.cfg.VerifyEmailURL, t.Token), mailtpl.WithExpiresAt(t.ExpiresAt)),
	})
	s.record(ctx, entity.ActionVerifyRequested, u, u.Email, nil)
	return &VerificationRequest{Token: t.Token, ExpiresAt: t.ExpiresAt}, nil
}

// ConfirmVerificationCode checks the 6-digit code sent at signup.
func (s *Service) ConfirmVerificationCode(ctx context.Context, userID, code string) error {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ErrAccountNotFound
	}
	if err != nil {
		return s.internal(ctx, "verify_code.lookup", err)
	}
	if u.IsVerified {
		return nil
	}
	if u.VerificationCode == "" || subtle.ConstantTimeCompare([]byte(u.VerificationCode), []byte(code)) != 1 {
		return apperror.ErrInvalidCode
	}
	if err := s.users.SetVerified(ctx, u.ID, s.now()); err != nil {
		return s.internal(ctx, "verify_code.update", err)
	}
	s.record(ctx, entity.ActionEmailVerified, u, u.Email, map[string]any{"method": "code"})
	return nil
}
