package application

import (
	"context"
	"errors"
	"strings"

	"github.com/oksasatya/egarage-auth/internal/domain/apperror"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	mailtpl "github.com/oksasatya/egarage-auth/pkg/mailer/templates"
	"github.com/oksasatya/egarage-auth/pkg/validation"
)

const minPasswordLength = 8

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

func validEmail(email string) bool {
	return validation.Var(email, "required,email") == nil
}

// checkNewPassword enforces the length bounds. bcrypt refuses input over 72
// bytes, so longer passwords are a validation failure, not a hashing one.
func checkNewPassword(pw string) error {
	if len(pw) < minPasswordLength {
		return apperror.ErrWeakPassword
	}
	if len(pw) > helpers.MaxPasswordBytes {
		return apperror.ErrPasswordTooLong
	}
	return nil
}

// Signup registers a user with the default role and returns a bearer token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (res *AuthResult, err error) {
	defer func() { countOutcome("signup", err) }()

	email := entity.NormalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, apperror.ErrInvalidEmail
	}
	if err := checkNewPassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.internal(ctx, "signup.lookup", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, "signup.hash", err)
	}
	role, err := s.roles.Ensure(ctx, entity.RoleUser, "Customer account")
	if err != nil {
		return nil, s.internal(ctx, "signup.role", err)
	}
	code, err := helpers.GenerateNumericCode(helpers.VerifyCodeDigits)
	if err != nil {
		return nil, s.internal(ctx, "signup.code", err)
	}

	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	u := &entity.User{
		Email:            email,
		FirstName:        first,
		LastName:         last,
		Name:             strings.TrimSpace(first + " " + last),
		Phone:            strings.TrimSpace(in.Phone),
		PasswordHash:     hash,
		RoleID:           role.ID,
		IsActive:         true,
		IsVerified:       false,
		VerificationCode: code,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, s.internal(ctx, "signup.create", err)
	}
	u.Role = role

	res, err = s.issue(u)
	if err != nil {
		return nil, s.internal(ctx, "signup.issue", err)
	}

	s.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Universal,
		Data:     mailtpl.NewVerifyCodeData(s.cfg, u.DisplayName(), u.Email, code),
	})
	s.record(ctx, entity.ActionSignup, u, u.Email, nil)
	s.log(ctx).WithField("user_id", u.ID).Info("user signed up")
	return res, nil
}
