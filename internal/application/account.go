package application

import (
	"context"
	"errors"

	"github.com/oksasatya/egarage-auth/internal/domain/apperror"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
)

// Me loads the authenticated user with its role.
func (s *Service) Me(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, apperror.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.ErrAccountNotFound
	}
	if err != nil {
		return nil, s.internal(ctx, "me.lookup", err)
	}
	if err := s.attachRole(ctx, u); err != nil {
		return nil, s.internal(ctx, "me.role", err)
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) (err error) {
	defer func() { countOutcome("change_password", err) }()

	if newPassword != confirm {
		return apperror.ErrPasswordMismatch
	}
	if err := checkNewPassword(newPassword); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ErrAccountNotFound
	}
	if err != nil {
		return s.internal(ctx, "change_password.lookup", err)
	}
	if !s.hasher.Verify(current, u.PasswordHash) {
		return apperror.WithMessage(apperror.ErrInvalidCredentials, "Current password is incorrect")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.internal(ctx, "change_password.hash", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash, s.now()); err != nil {
		return s.internal(ctx, "change_password.update", err)
	}

	s.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Universal,
		Data:     mailtpl.NewPasswordChangedData(s.cfg, u.DisplayName(), u.Email, mailtpl.WithTime(s.now())),
	})
	s.record(ctx, entity.ActionPasswordChanged, u, u.Email, nil)
	return nil
}
