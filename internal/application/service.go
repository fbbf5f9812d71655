// Package application holds the auth use cases: signup, the signin
// variants, the password reset lifecycle and email verification.
package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/domain/apperror"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
)

// Mailer hands an email job to the delivery pipeline.
type Mailer interface {
	Enqueue(ctx context.Context, job mailer.EmailJob) error
}

// ActivitySink records auth activity.
type ActivitySink interface {
	Insert(ctx context.Context, a entity.Activity) error
}

// ActivityReader lists recorded activity for a user.
type ActivityReader interface {
	Recent(ctx context.Context, userID string, size int) ([]entity.Activity, error)
}

// RequestMeta describes the caller of a flow, for audit and emails.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

// Deps are the collaborators of Service. Mail, Activity and History are
// optional.
type Deps struct {
	Users      repository.UserRepository
	Tokens     repository.ResetTokenRepository
	Roles      repository.RoleRepository
	Providers  repository.ProviderRepository
	Transactor repository.Transactor
	Hasher     *helpers.PasswordHasher
	JWT        *helpers.JWTManager
	Mail       Mailer
	Activity   ActivitySink
	History    ActivityReader
	Config     *config.Config
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

type Service struct {
	users     repository.UserRepository
	tokens    repository.ResetTokenRepository
	roles     repository.RoleRepository
	providers repository.ProviderRepository
	tx        repository.Transactor
	hasher    *helpers.PasswordHasher
	jwt       *helpers.JWTManager
	mail      Mailer
	activity  ActivitySink
	history   ActivityReader
	cfg       *config.Config
	logger    logrus.FieldLogger
	now       func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		users:     d.Users,
		tokens:    d.Tokens,
		roles:     d.Roles,
		providers: d.Providers,
		tx:        d.Transactor,
		hasher:    d.Hasher,
		jwt:       d.JWT,
		mail:      d.Mail,
		activity:  d.Activity,
		history:   d.History,
		cfg:       d.Config,
		logger:    d.Logger,
		now:       d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = helpers.NewNopLogger()
	}
	if s.hasher == nil {
		s.hasher = helpers.NewPasswordHasher(s.cfg.BcryptCost)
	}
	return s
}

// AuthResult is returned by signup and the signin variants.
type AuthResult struct {
	User      *entity.User
	Provider  *entity.ServiceProvider
	Token     string
	TokenType string
	ExpiresAt time.Time
}

// internal logs an unexpected failure with full detail and returns the
// generic internal error.
func (s *Service) internal(ctx context.Context, op string, err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	s.log(ctx).WithError(err).WithField("op", op).Error("auth operation failed")
	stats.Add("internal_errors", 1)
	return apperror.Internal(err)
}

type metaKey struct{}

// WithMeta attaches request metadata to ctx for logging.
func WithMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func metaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(metaKey{}).(RequestMeta)
	return m
}

func (s *Service) log(ctx context.Context) logrus.FieldLogger {
	if id := metaFrom(ctx).RequestID; id != "" {
		return s.logger.WithField("request_id", id)
	}
	return s.logger
}

// attachRole loads the user's role. A dangling role reference leaves Role nil.
func (s *Service) attachRole(ctx context.Context, u *entity.User) error {
	if u.RoleID == "" {
		return nil
	}
	role, err := s.roles.GetByID(ctx, u.RoleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	u.Role = role
	return nil
}

func (s *Service) issue(u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.jwt.IssueForUser(u.ID, u.Email, u.RoleName())
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: tok, TokenType: "Bearer", ExpiresAt: exp}, nil
}

// enqueue hands job to the mailer. Failures never fail the calling flow.
func (s *Service) enqueue(ctx context.Context, job mailer.EmailJob) {
	if s.mail == nil {
		return
	}
	if err := s.mail.Enqueue(ctx, job); err != nil {
		stats.Add("email_enqueue_failures", 1)
		s.log(ctx).WithError(err).WithField("to", job.To).Warn("enqueue email failed")
	}
}

// record stores an activity row. Failures are only logged.
func (s *Service) record(ctx context.Context, action string, u *entity.User, email string, meta map[string]any) {
	if s.activity == nil {
		return
	}
	m := metaFrom(ctx)
	a := entity.Activity{
		Email:      email,
		Action:     action,
		IP:         m.IP,
		UserAgent:  m.UserAgent,
		Metadata:   meta,
		OccurredAt: s.now().UTC(),
	}
	if u != nil {
		a.UserID = u.ID
		a.Email = u.Email
	}
	if err := s.activity.Insert(ctx, a); err != nil {
		s.log(ctx).WithError(err).WithField("action", action).Warn("record activity failed")
	}
}
