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

// Signin authenticates any active account.
func (s *Service) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.signin(ctx, "signin", email, password, nil)
}

// AdminSignin authenticates accounts holding the admin role.
func (s *Service) AdminSignin(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.signin(ctx, "admin_signin", email, password, func(_ context.Context, u *entity.User, _ *AuthResult) error {
		if !u.Role.Is(entity.RoleAdmin) {
			return apperror.ErrNotAdmin
		}
		return nil
	})
}

// ProviderSignin authenticates service providers that have a profile.
func (s *Service) ProviderSignin(ctx context.Context, email, password string) (*AuthResult, error) {
	return s.signin(ctx, "provider_signin", email, password, func(ctx context.Context, u *entity.User, res *AuthResult) error {
		if !u.Role.Is(entity.RoleServiceProvider) {
			return apperror.ErrNotProvider
		}
		p, err := s.providers.GetByUserID(ctx, u.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		res.Provider = p
		return nil
	})
}

type signinCheck func(ctx context.Context, u *entity.User, res *AuthResult) error

func (s *Service) signin(ctx context.Context, flow, email, password string, check signinCheck) (res *AuthResult, err error) {
	defer func() { countOutcome(flow, err) }()
	email = entity.NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.record(ctx, entity.ActionSigninFailure, nil, email, map[string]any{"flow": flow, "reason": "unknown_email"})
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, s.internal(ctx, flow+".lookup", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		s.record(ctx, entity.ActionSigninFailure, u, email, map[string]any{"flow": flow, "reason": "invalid_password"})
		return nil, apperror.ErrInvalidCredentials
	}
	if !u.IsActive {
		s.record(ctx, entity.ActionSigninFailure, u, email, map[string]any{"flow": flow, "reason": "inactive"})
		return nil, apperror.ErrAccountInactive
	}
	if err := s.attachRole(ctx, u); err != nil {
		return nil, s.internal(ctx, flow+".role", err)
	}

	res = &AuthResult{User: u}
	if check != nil {
		if err := check(ctx, u, res); err != nil {
			if !apperror.IsDomain(err) {
				return nil, s.internal(ctx, flow+".check", err)
			}
			s.record(ctx, entity.ActionSigninFailure, u, email, map[string]any{"flow": flow, "reason": apperror.CodeOf(err)})
			return nil, err
		}
	}

	issued, err := s.issue(u)
	if err != nil {
		return nil, s.internal(ctx, flow+".issue", err)
	}
	res.Token, res.TokenType, res.ExpiresAt = issued.Token, issued.TokenType, issued.ExpiresAt

	m := metaFrom(ctx)
	s.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Universal,
		Data: mailtpl.NewLoginNotificationData(s.cfg, u.DisplayName(), u.Email,
			mailtpl.WithIP(m.IP), mailtpl.WithUserAgent(m.UserAgent), mailtpl.WithTime(s.now())),
	})
	s.record(ctx, entity.ActionSigninSuccess, u, email, map[string]any{"flow": flow, "role": u.RoleName()})
	return res, nil
}
