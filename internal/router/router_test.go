package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/egarage-auth/config"
	"github.com/oksasatya/egarage-auth/internal/application"
	"github.com/oksasatya/egarage-auth/internal/domain/entity"
	"github.com/oksasatya/egarage-auth/internal/infrastructure/memory"
	"github.com/oksasatya/egarage-auth/internal/interface/middleware"
	"github.com/oksasatya/egarage-auth/pkg/helpers"
	"github.com/oksasatya/egarage-auth/pkg/mailer"
	"github.com/oksasatya/egarage-auth/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type recordingMailer struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (m *recordingMailer) Enqueue(_ context.Context, job mailer.EmailJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

type server struct {
	engine *gin.Engine
	store  *memory.Store
	mail   *recordingMailer
	cfg    *config.Config
}

func newServer(t *testing.T, expose bool) *server {
	t.Helper()
	cfg := &config.Config{
		AppName:          "egarage-auth",
		CompanyName:      "E-Garage",
		CookieDomain:     "localhost",
		AccessTTL:        30 * time.Minute,
		ResetTokenTTL:    24 * time.Hour,
		VerifyTokenTTL:   24 * time.Hour,
		BcryptCost:       bcrypt.MinCost,
		ExposeResetToken: expose,
		ResetPasswordURL: "http://app.test/reset-password",
		VerifyEmailURL:   "http://app.test/verify-email",
		SigninRateLimit:  100,
		ResetRateLimit:   100,
	}
	store := memory.NewStore()
	mail := &recordingMailer{}
	jwt := helpers.NewJWTManager("test-secret", cfg.AccessTTL)
	logger := helpers.NewNopLogger()
	svc := application.NewService(application.Deps{
		Users:      store.Users(),
		Tokens:     store.Tokens(),
		Roles:      store.Roles(),
		Providers:  store.Providers(),
		Transactor: store.Transactor(),
		JWT:        jwt,
		Mail:       mail,
		Activity:   store.Audit(),
		Config:     cfg,
		Logger:     logger,
	})

	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	Mount(reg, Deps{Service: svc, Config: cfg, Logger: logger, JWT: jwt, Mail: mail})
	reg.RegisterAll()
	return &server{engine: engine, store: store, mail: mail, cfg: cfg}
}

type envelope struct {
	Code      int             `json:"code"`
	Status    bool            `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

func (s *server) do(t *testing.T, method, path string, body any, bearer string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

type authData struct {
	User struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		IsVerified bool   `json:"is_verified"`
		Role       *struct {
			Name string `json:"name"`
		} `json:"role"`
	} `json:"user"`
	Provider *struct {
		BusinessName string `json:"business_name"`
	} `json:"provider"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (s *server) signup(t *testing.T, email string) authData {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": email, "password": "password1", "first_name": "Ann", "last_name": "Lee",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authData](t, env.Data)
}

func (s *server) seedAccount(t *testing.T, email, role string) *entity.User {
	t.Helper()
	ctx := context.Background()
	r, err := s.store.Roles().Ensure(ctx, role, "")
	require.NoError(t, err)
	hash, err := helpers.NewPasswordHasher(bcrypt.MinCost).Hash("password1")
	require.NoError(t, err)
	u := &entity.User{Email: email, Name: "Seeded", PasswordHash: hash, RoleID: r.ID, IsActive: true}
	require.NoError(t, s.store.Users().Create(ctx, u))
	return u
}

func TestSignupAndSignin(t *testing.T) {
	s := newServer(t, false)

	w, env := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "ann@example.com", "password": "password1", "first_name": "Ann",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Status)
	assert.NotEmpty(t, env.RequestID)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "verification_code")
	assert.Contains(t, w.Header().Get("Set-Cookie"), helpers.AccessCookieName+"=")
	got := decode[authData](t, env.Data)
	assert.Equal(t, "Bearer", got.TokenType)
	require.NotNil(t, got.User.Role)
	assert.Equal(t, entity.RoleUser, got.User.Role.Name)

	w, env = s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "ANN@example.com", "password": "password1", "first_name": "Ann",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Status)
	assert.Equal(t, "duplicate_email", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ann@example.com", "password": "password1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	in := decode[authData](t, env.Data)
	assert.Equal(t, got.User.ID, in.User.ID)

	w, env = s.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ann@example.com", "password": "password2"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "nobody@example.com", "password": "password1"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user_not_found", env.Error.Code)
}

func TestBindingErrors(t *testing.T) {
	s := newServer(t, false)

	w, env := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"email": "nope", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "password")
	assert.Contains(t, env.Error.Details, "first_name")

	w, env = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{"token": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Details, "new_password")
}

func TestRoleScopedSignin(t *testing.T) {
	s := newServer(t, false)
	s.seedAccount(t, "admin@example.com", entity.RoleAdmin)
	shop := s.seedAccount(t, "shop@example.com", entity.RoleServiceProvider)
	require.NoError(t, s.store.Providers().Upsert(context.Background(), &entity.ServiceProvider{UserID: shop.ID, BusinessName: "Bengkel Jaya"}))
	s.signup(t, "ann@example.com")

	creds := func(email string) map[string]string { return map[string]string{"email": email, "password": "password1"} }

	w, _ := s.do(t, http.MethodPost, "/api/auth/admin/signin", creds("admin@example.com"), "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, env := s.do(t, http.MethodPost, "/api/auth/admin/signin", creds("ann@example.com"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_admin", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/provider/signin", creds("shop@example.com"), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[authData](t, env.Data)
	require.NotNil(t, got.Provider)
	assert.Equal(t, "Bengkel Jaya", got.Provider.BusinessName)

	w, env = s.do(t, http.MethodPost, "/api/auth/provider/signin", creds("admin@example.com"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_provider", env.Error.Code)
}

type resetData struct {
	Token string `json:"token"`
}

func TestPasswordResetOverHTTP(t *testing.T) {
	s := newServer(t, true)
	s.signup(t, "ann@example.com")

	w, env := s.do(t, http.MethodPost, "/api/auth/request-password-reset", map[string]string{"email": "ann@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, application.ResetRequestedMessage, env.Message)
	token := decode[resetData](t, env.Data).Token
	require.Len(t, token, helpers.ResetTokenLength)

	w, env = s.do(t, http.MethodPost, "/api/auth/verify-reset-token", map[string]string{"token": token}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"valid":true`)

	w, env = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": token, "new_password": "newpassword", "confirm_password": "different",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password_mismatch", env.Error.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": token, "new_password": "newpassword", "confirm_password": "newpassword",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": token, "new_password": "newpassword", "confirm_password": "newpassword",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_or_expired_token", env.Error.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "ann@example.com", "password": "newpassword"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/verify-reset-token", map[string]string{"token": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_token_format", env.Error.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/verify-reset-token", map[string]string{"token": strings.Repeat("A", 300)}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Equal(t, "invalid token format", env.Error.Details["token"])
}

func TestSignup_OverlongPasswordIsValidationError(t *testing.T) {
	s := newServer(t, true)

	w, env := s.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email": "ann@example.com", "password": strings.Repeat("a", 80), "first_name": "Ann", "last_name": "Lee",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Equal(t, "must be 8 to 72 characters long", env.Error.Details["password"])
}

func TestRequestPasswordReset_NoEnumeration(t *testing.T) {
	s := newServer(t, false)
	s.signup(t, "ann@example.com")

	_, known := s.do(t, http.MethodPost, "/api/auth/request-password-reset", map[string]string{"email": "ann@example.com"}, "")
	_, unknown := s.do(t, http.MethodPost, "/api/auth/request-password-reset", map[string]string{"email": "ghost@example.com"}, "")

	assert.Equal(t, known.Message, unknown.Message)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, string(known.Data), string(unknown.Data), "token hidden when exposure is off")
	assert.Equal(t, 1, s.store.TokenCount())
}

func TestAccountEndpoints(t *testing.T) {
	s := newServer(t, false)
	user := s.signup(t, "ann@example.com")

	w, _ := s.do(t, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodGet, "/api/auth/me", nil, user.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"email":"ann@example.com"`)

	w, env = s.do(t, http.MethodPost, "/api/auth/verify/code", map[string]string{"code": "12ab56"}, user.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", env.Error.Code)

	stored, err := s.store.Users().GetByID(context.Background(), user.User.ID)
	require.NoError(t, err)
	w, _ = s.do(t, http.MethodPost, "/api/auth/verify/code", map[string]string{"code": stored.VerificationCode}, user.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/auth/verify/init", nil, user.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"already_verified":true`)

	w, env = s.do(t, http.MethodPost, "/api/auth/password/change", map[string]string{
		"current_password": "wrong-one", "new_password": "newpassword", "confirm_password": "newpassword",
	}, user.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Current password is incorrect", env.Message)

	w, _ = s.do(t, http.MethodPost, "/api/auth/password/change", map[string]string{
		"current_password": "password1", "new_password": "newpassword", "confirm_password": "newpassword",
	}, user.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/auth/activity", nil, user.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)
}

func TestVerifyEmailLink(t *testing.T) {
	s := newServer(t, false)
	user := s.signup(t, "ann@example.com")

	w, _ := s.do(t, http.MethodPost, "/api/auth/verify/init", nil, user.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, s.store.TokenCount())

	var token string
	for _, j := range s.mail.jobs {
		if j.Data["Type"] == "verify_email" {
			link, _ := j.Data["VerifyURL"].(string)
			token = link[len("http://app.test/verify-email?token="):]
		}
	}
	require.NotEmpty(t, token)

	w, _ = s.do(t, http.MethodPost, "/api/auth/verify-email", map[string]string{"token": token}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, env := s.do(t, http.MethodPost, "/api/auth/verify-email", map[string]string{"token": token}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_or_expired_token", env.Error.Code)
}

func TestAdminTestEmail(t *testing.T) {
	s := newServer(t, false)
	s.seedAccount(t, "admin@example.com", entity.RoleAdmin)
	user := s.signup(t, "ann@example.com")

	_, env := s.do(t, http.MethodPost, "/api/auth/admin/signin", map[string]string{"email": "admin@example.com", "password": "password1"}, "")
	admin := decode[authData](t, env.Data)
	before := s.mail.count()

	w, _ := s.do(t, http.MethodPost, "/api/admin/email/test", map[string]string{"to": "ops@example.com"}, user.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/admin/email/test", map[string]string{"to": "ops@example.com"}, admin.Token)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, before+1, s.mail.count())
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newServer(t, false)
	w, env := s.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

type pingModule struct{ name string }

func (m pingModule) Name() string { return m.name }

func (m pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, m.name) })
}

func TestRegistry_MountsOnce(t *testing.T) {
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Add(pingModule{name: "one"})
	reg.Add(pingModule{name: "two"})
	reg.Add(pingModule{name: "one"})
	reg.Add(nil)
	assert.Equal(t, []string{"one", "two"}, reg.Names())

	reg.RegisterAll()
	assert.NotPanics(t, reg.RegisterAll)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/two", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "two", w.Body.String())
}
