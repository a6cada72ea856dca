package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-service/internal/api/http/handlers"
	"github.com/spec-kit/contact-service/internal/auth"
	"github.com/spec-kit/contact-service/internal/config"
	"github.com/spec-kit/contact-service/internal/domain"
	"github.com/spec-kit/contact-service/internal/mailer"
	"github.com/spec-kit/contact-service/internal/observability"
	"github.com/spec-kit/contact-service/internal/persistence"
	"github.com/spec-kit/contact-service/internal/repository"
	"github.com/spec-kit/contact-service/internal/service"
	"github.com/spec-kit/contact-service/internal/validation"
)

type fakeSubmissionRepo struct {
	items []domain.Submission
}

var _ repository.SubmissionRepository = (*fakeSubmissionRepo)(nil)

func (f *fakeSubmissionRepo) Create(_ context.Context, s *domain.Submission) error {
	s.ID = fmt.Sprintf("sub-%d", len(f.items)+1)
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	f.items = append(f.items, *s)
	return nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*domain.Submission, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSubmissionRepo) List(_ context.Context, _, _ int) ([]domain.Submission, error) {
	out := make([]domain.Submission, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, f.items[i])
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListUnprocessed(_ context.Context, _, _ int) ([]domain.Submission, error) {
	var out []domain.Submission
	for i := len(f.items) - 1; i >= 0; i-- {
		if !f.items[i].IsProcessed {
			out = append(out, f.items[i])
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) MarkProcessed(_ context.Context, id string, processedAt time.Time) (*domain.Submission, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].IsProcessed = true
			f.items[i].ProcessedAt = &processedAt
			f.items[i].UpdatedAt = time.Now()
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAdminRepo struct {
	admins map[string]*domain.Admin
}

var _ repository.AdminRepository = (*fakeAdminRepo)(nil)

func (f *fakeAdminRepo) Create(_ context.Context, admin *domain.Admin) error {
	admin.ID = fmt.Sprintf("admin-%d", len(f.admins)+1)
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	f.admins[admin.ID] = admin
	return nil
}

func (f *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	if admin, ok := f.admins[id]; ok {
		return admin, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, admin := range f.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type stubLimiter struct {
	remaining int
}

func (s *stubLimiter) Allow(_ context.Context, _ string) (bool, error) {
	if s.remaining <= 0 {
		return false, nil
	}
	s.remaining--
	return true, nil
}

type stubNotifier struct {
	result mailer.Result
}

func (s *stubNotifier) NotifySubmission(_ context.Context, _ *domain.Submission) mailer.Result {
	return s.result
}

type passVerifier struct{}

func (passVerifier) Verify(_ context.Context, _, _ string) bool { return true }

type testApp struct {
	app        *fiber.App
	repo       *fakeSubmissionRepo
	notifier   *stubNotifier
	limiter    *stubLimiter
	adminToken string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}

	repo := &fakeSubmissionRepo{}
	adminRepo := &fakeAdminRepo{admins: map[string]*domain.Admin{}}
	limiter := &stubLimiter{remaining: 3}
	notifier := &stubNotifier{result: mailer.ResultSent}

	authService := service.NewAuthService(cfg, adminRepo)
	admin, err := authService.CreateAdmin(context.Background(), "Admin", "admin@example.com", "adminpass123")
	require.NoError(t, err)

	token, _, err := authService.TokenManager().GenerateToken(admin.ID)
	require.NoError(t, err)

	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		SubmissionRepo: repo,
		Limiter:        limiter,
		Validator:      validation.New(validation.Options{}),
		Notifier:       notifier,
		Captcha:        passVerifier{},
		Logger:         zap.NewNop(),
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Submissions:    handlers.NewSubmissionsHandler(submissionService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), adminRepo),
	})

	return &testApp{app: app, repo: repo, notifier: notifier, limiter: limiter, adminToken: token}
}

func jsonRequest(method, target string, payload any) *http.Request {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func validPayload() map[string]string {
	return map[string]string{
		"name":    "API Test User",
		"email":   "apitest@example.com",
		"message": "This is an API test message with sufficient length.",
	}
}

func TestCreateSubmissionPublicAccess(t *testing.T) {
	ta := newTestApp(t)

	resp, err := ta.app.Test(jsonRequest("POST", "/contacts", validPayload()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Contact form submitted successfully", body["message"])
	assert.Equal(t, true, body["notificationSent"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "apitest@example.com", data["email"])
	assert.NotEmpty(t, data["id"])
	assert.NotContains(t, data, "ip_address", "public view omits audit fields")

	require.Len(t, ta.repo.items, 1)
}

func TestCreateSubmissionForwardedForWins(t *testing.T) {
	ta := newTestApp(t)

	req := jsonRequest("POST", "/contacts", validPayload())
	req.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.1")
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, ta.repo.items, 1)
	assert.Equal(t, "203.0.113.1", ta.repo.items[0].IPAddress)
}

func TestCreateSubmissionUserAgentTruncated(t *testing.T) {
	ta := newTestApp(t)

	req := jsonRequest("POST", "/contacts", validPayload())
	req.Header.Set("User-Agent", strings.Repeat("A", 600))
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Len(t, ta.repo.items, 1)
	assert.Len(t, ta.repo.items[0].UserAgent, 500)
}

func TestCreateSubmissionValidationErrors(t *testing.T) {
	ta := newTestApp(t)

	resp, err := ta.app.Test(jsonRequest("POST", "/contacts", map[string]string{
		"name":    "A",
		"email":   "invalid-email",
		"message": "Short",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "message")
	assert.Empty(t, ta.repo.items)
}

func TestCreateSubmissionRateLimit(t *testing.T) {
	ta := newTestApp(t)

	for i := 0; i < 3; i++ {
		resp, err := ta.app.Test(jsonRequest("POST", "/contacts", validPayload()))
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := ta.app.Test(jsonRequest("POST", "/contacts", validPayload()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Len(t, ta.repo.items, 3, "rejected submission leaves no record")
}

func TestCreateSubmissionNotificationFailure(t *testing.T) {
	ta := newTestApp(t)
	ta.notifier.result = mailer.ResultFailed

	resp, err := ta.app.Test(jsonRequest("POST", "/contacts", validPayload()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["notificationSent"])
	assert.Len(t, ta.repo.items, 1)
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	ta := newTestApp(t)

	targets := []struct {
		method string
		path   string
	}{
		{"GET", "/contacts"},
		{"GET", "/contacts/unprocessed"},
		{"GET", "/contacts/sub-1"},
		{"POST", "/contacts/sub-1/mark_processed"},
	}
	for _, target := range targets {
		resp, err := ta.app.Test(jsonRequest(target.method, target.path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", target.method, target.path)
	}
}

func TestAdminListIncludesAuditFields(t *testing.T) {
	ta := newTestApp(t)

	req := jsonRequest("POST", "/contacts", validPayload())
	req.Header.Set("X-Forwarded-For", "203.0.113.1")
	req.Header.Set("User-Agent", "Test Agent")
	_, err := ta.app.Test(req)
	require.NoError(t, err)

	listReq := jsonRequest("GET", "/contacts", nil)
	listReq.Header.Set("Authorization", "Bearer "+ta.adminToken)
	resp, err := ta.app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	items, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	item := items[0].(map[string]any)
	assert.Equal(t, "203.0.113.1", item["ip_address"])
	assert.Equal(t, "Test Agent", item["user_agent"])
}

func TestAdminGetNotFound(t *testing.T) {
	ta := newTestApp(t)

	req := jsonRequest("GET", "/contacts/missing", nil)
	req.Header.Set("Authorization", "Bearer "+ta.adminToken)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminMarkProcessed(t *testing.T) {
	ta := newTestApp(t)

	_, err := ta.app.Test(jsonRequest("POST", "/contacts", validPayload()))
	require.NoError(t, err)
	id := ta.repo.items[0].ID

	req := jsonRequest("POST", "/contacts/"+id+"/mark_processed", nil)
	req.Header.Set("Authorization", "Bearer "+ta.adminToken)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["processedAt"])
	assert.True(t, ta.repo.items[0].IsProcessed)
}

func TestAdminUnprocessedFilter(t *testing.T) {
	ta := newTestApp(t)

	for i := 0; i < 2; i++ {
		_, err := ta.app.Test(jsonRequest("POST", "/contacts", validPayload()))
		require.NoError(t, err)
	}

	markReq := jsonRequest("POST", "/contacts/"+ta.repo.items[0].ID+"/mark_processed", nil)
	markReq.Header.Set("Authorization", "Bearer "+ta.adminToken)
	_, err := ta.app.Test(markReq)
	require.NoError(t, err)

	req := jsonRequest("GET", "/contacts/unprocessed", nil)
	req.Header.Set("Authorization", "Bearer "+ta.adminToken)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	items, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestAdminLogin(t *testing.T) {
	ta := newTestApp(t)

	resp, err := ta.app.Test(jsonRequest("POST", "/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "adminpass123",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	authData := data["auth"].(map[string]any)
	assert.NotEmpty(t, authData["token"])
}

func TestAdminLoginWrongPassword(t *testing.T) {
	ta := newTestApp(t)

	resp, err := ta.app.Test(jsonRequest("POST", "/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInvalidBearerTokenForbidden(t *testing.T) {
	ta := newTestApp(t)

	req := jsonRequest("GET", "/contacts", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
