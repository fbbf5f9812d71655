// Package memory is an in-process implementation of the repository
// interfaces used by tests and local tooling. A Store is safe for
// concurrent use; transactions are emulated with an undo log.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/domain/repository"
)

type Store struct {
	mu        sync.Mutex
	users     map[string]entity.User
	roles     map[string]entity.Role
	providers map[string]entity.ServiceProvider // by user id
	tokens    map[string]entity.ResetToken
	audit     []entity.Activity
	failures  map[string]error
}

func NewStore() *Store {
	return &Store{
		users:     map[string]entity.User{},
		roles:     map[string]entity.Role{},
		providers: map[string]entity.ServiceProvider{},
		tokens:    map[string]entity.ResetToken{},
		failures:  map[string]error{},
	}
}

// Fail makes every later call of op (e.g. "users.UpdatePassword") return err.
// A nil err clears it.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error { return s.failures[op] }

// Users, Tokens, Roles, Providers and Audit expose the store through the
// repository interfaces.
func (s *Store) Users() repository.UserRepository         { return (*userRepo)(s) }
func (s *Store) Tokens() repository.ResetTokenRepository  { return (*tokenRepo)(s) }
func (s *Store) Roles() repository.RoleRepository         { return (*roleRepo)(s) }
func (s *Store) Providers() repository.ProviderRepository { return (*providerRepo)(s) }
func (s *Store) Audit() repository.AuditRepository        { return (*auditRepo)(s) }
func (s *Store) Transactor() repository.Transactor        { return (*transactor)(s) }

// TokenCount returns the number of stored tokens.
func (s *Store) TokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// Activities returns a copy of the recorded audit rows.
func (s *Store) Activities() []entity.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Activity(nil), s.audit...)
}

type undoKey struct{}

type undoLog struct {
	mu    sync.Mutex
	steps []func()
}

// recordUndo registers fn to run, under the store lock, if the surrounding
// transaction rolls back. Callers must hold s.mu.
func recordUndo(ctx context.Context, fn func()) {
	if l, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		l.mu.Lock()
		l.steps = append(l.steps, fn)
		l.mu.Unlock()
	}
}

type transactor Store

func (t *transactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}
	l := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, l)); err != nil {
		s := (*Store)(t)
		s.mu.Lock()
		for i := len(l.steps) - 1; i >= 0; i-- {
			l.steps[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

type userRepo Store

func (r *userRepo) Create(ctx context.Context, u *entity.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.Create"); err != nil {
		return err
	}
	email := entity.NormalizeEmail(u.Email)
	for _, existing := range s.users {
		if existing.Email == email {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	stored.Role = nil
	s.users[u.ID] = stored
	id := u.ID
	recordUndo(ctx, func() { delete(s.users, id) })
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("users.GetByEmail"); err != nil {
		return nil, err
	}
	email = entity.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return r.mutate(ctx, "users.UpdatePassword", id, func(u *entity.User) {
		u.PasswordHash = hash
		u.UpdatedAt = at
	})
}

func (r *userRepo) SetVerified(ctx context.Context, id string, at time.Time) error {
	return r.mutate(ctx, "users.SetVerified", id, func(u *entity.User) {
		u.IsVerified = true
		u.VerificationCode = ""
		u.UpdatedAt = at
	})
}

func (r *userRepo) mutate(ctx context.Context, op, id string, fn func(*entity.User)) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(op); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	before := u
	fn(&u)
	s.users[id] = u
	recordUndo(ctx, func() { s.users[id] = before })
	return nil
}

type tokenRepo Store

func (r *tokenRepo) Create(ctx context.Context, t *entity.ResetToken) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("tokens.Create"); err != nil {
		return err
	}
	if _, exists := s.tokens[t.Token]; exists {
		return repository.ErrDuplicate
	}
	s.tokens[t.Token] = *t
	key := t.Token
	recordUndo(ctx, func() { delete(s.tokens, key) })
	return nil
}

func (r *tokenRepo) Find(_ context.Context, token string) (*entity.ResetToken, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("tokens.Find"); err != nil {
		return nil, err
	}
	t, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *tokenRepo) Consume(ctx context.Context, token string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("tokens.Consume"); err != nil {
		return err
	}
	if t, ok := s.tokens[token]; ok {
		delete(s.tokens, token)
		recordUndo(ctx, func() { s.tokens[token] = t })
	}
	return nil
}

func (r *tokenRepo) ConsumeValid(ctx context.Context, token string, purpose entity.TokenPurpose, now time.Time) (*entity.ResetToken, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("tokens.ConsumeValid"); err != nil {
		return nil, err
	}
	t, ok := s.tokens[token]
	if !ok || t.Purpose != purpose || t.ExpiredAt(now) {
		return nil, repository.ErrNotFound
	}
	delete(s.tokens, token)
	recordUndo(ctx, func() { s.tokens[token] = t })
	return &t, nil
}

func (r *tokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("tokens.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for k, t := range s.tokens {
		if t.ExpiredAt(now) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}

type roleRepo Store

func (r *roleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("roles.GetByID"); err != nil {
		return nil, err
	}
	role, ok := s.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &role, nil
}

func (r *roleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("roles.GetByName"); err != nil {
		return nil, err
	}
	for _, role := range s.roles {
		if strings.EqualFold(role.Name, name) {
			return &role, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *roleRepo) Ensure(ctx context.Context, name, description string) (*entity.Role, error) {
	if role, err := r.GetByName(ctx, name); err == nil {
		return role, nil
	}
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	role := entity.Role{ID: uuid.NewString(), Name: name, Description: description, CreatedAt: now, UpdatedAt: now}
	s.roles[role.ID] = role
	return &role, nil
}

type providerRepo Store

func (r *providerRepo) GetByUserID(_ context.Context, userID string) (*entity.ServiceProvider, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("providers.GetByUserID"); err != nil {
		return nil, err
	}
	p, ok := s.providers[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *providerRepo) Upsert(_ context.Context, p *entity.ServiceProvider) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.providers[p.UserID]; ok {
		p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		p.ID, p.CreatedAt = uuid.NewString(), now
	}
	p.UpdatedAt = now
	s.providers[p.UserID] = *p
	return nil
}

type auditRepo Store

func (r *auditRepo) Insert(_ context.Context, a entity.Activity) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure("audit.Insert"); err != nil {
		return err
	}
	s.audit = append(s.audit, a)
	return nil
}
