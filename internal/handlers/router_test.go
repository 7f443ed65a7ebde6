package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/config"
	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/repositories/postgres"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/storage"
	"github.com/referral-portal/referral-service/internal/testutil"
	"github.com/referral-portal/referral-service/internal/utils"
	"github.com/referral-portal/referral-service/internal/validator"
)

const testPassword = "secret1"

type testServer struct {
	router *gin.Engine
	repo   repositories.Repository
	mailer *testutil.CaptureMailer
	hasher *security.Hasher
	tokens *security.JWTProvider
}

func newTestServer(t *testing.T, handlerConfig HandlerConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)
	redisClient, _ := testutil.NewTestRedis(t)

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:          testutil.NewTestDB(t),
		RedisClient: redisClient,
		JobCacheTTL: time.Minute,
	})
	store, err := storage.NewFileStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	ts := &testServer{
		repo:   repo,
		mailer: testutil.NewCaptureMailer(),
		hasher: security.NewHasher(bcrypt.MinCost),
		tokens: security.NewJWTProvider("test-secret", time.Hour),
	}
	limiter := cache.NewRedisLimiter(redisClient)

	sm := services.NewServiceManager(services.Dependencies{
		Repo:      repo,
		Logger:    slogger,
		Validator: validator.New(),
		Publisher: events.NewMockEventPublisher(slogger),
		Mailer:    ts.mailer,
		Store:     store,
		Tokens:    ts.tokens,
		Hasher:    ts.hasher,
		Limiter:   limiter,
	}, services.ServiceManagerConfig{
		OTP:            config.OTPConfig{TTL: 10 * time.Minute},
		ChatRateWindow: time.Minute,
	})
	if err := sm.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize services: %v", err)
	}

	ts.router = gin.New()
	SetupMiddleware(ts.router, logger, nil)
	NewHandlerManager(sm, ts.tokens, limiter, logger, handlerConfig).SetupRoutes(ts.router)
	return ts
}

// seed stores a verified user and returns a bearer token for it.
func (ts *testServer) seed(t *testing.T, name, email string, role models.UserRole) (string, string) {
	t.Helper()

	hash, err := ts.hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role, IsVerified: true}
	if err := ts.repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, _, err := ts.tokens.Generate(user.ID, string(role))
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return user.ID, token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(t *testing.T, path, token string, fields map[string]string, filename string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("resume", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write([]byte("%PDF-1.4 resume"))
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type jobBody struct {
	Success bool        `json:"success"`
	Job     *models.Job `json:"job"`
}

type jobsBody struct {
	Success bool          `json:"success"`
	Jobs    []*models.Job `json:"jobs"`
}

type referralBody struct {
	Success  bool             `json:"success"`
	Referral *models.Referral `json:"referral"`
}

type referralsBody struct {
	Count     int                `json:"count"`
	Referrals []*models.Referral `json:"referrals"`
}

func deadline() string {
	return time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
}

func TestRouter_RegisterVerifyLogin(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	email := "ana@example.com"

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": "Ana@Example.com", "password": testPassword, "role": "employee",
	})
	expectStatus(t, rec, http.StatusCreated)
	if !strings.Contains(rec.Body.String(), "User registered as employee") {
		t.Fatalf("unexpected register body %s", rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": email, "password": testPassword,
	})
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode[ErrorResponse](t, rec).Message; msg != "Email already in use" {
		t.Fatalf("unexpected duplicate message %q", msg)
	}

	login := map[string]string{"email": email, "password": testPassword}
	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", login)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = ts.do(t, http.MethodPost, "/api/otp/send", "", map[string]string{"email": email})
	expectStatus(t, rec, http.StatusOK)
	code := ts.mailer.LastCode(email)
	if code == "" {
		t.Fatal("expected an OTP to be mailed")
	}

	rec = ts.do(t, http.MethodPost, "/api/otp/verify", "", map[string]string{"email": email, "otp": "000000x"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, http.MethodPost, "/api/otp/verify", "", map[string]string{"email": email, "otp": code})
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodPost, "/api/otp/verify", "", map[string]string{"email": email, "otp": code})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, http.MethodPost, "/api/auth/login", "", login)
	expectStatus(t, rec, http.StatusOK)
	session := decode[models.LoginResponse](t, rec)
	if session.Token == "" || session.User == nil || session.User.Role != models.RoleEmployee {
		t.Fatalf("unexpected login response %+v", session)
	}

	rec = ts.do(t, http.MethodGet, "/api/auth/me", session.Token, nil)
	expectStatus(t, rec, http.StatusOK)
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("profile leaks password: %s", rec.Body.String())
	}
	me := decode[struct {
		User *models.User `json:"user"`
	}](t, rec)
	if me.User == nil || me.User.Email != email || !me.User.IsVerified {
		t.Fatalf("unexpected profile %+v", me.User)
	}
}

func TestRouter_RegisterWithResumeUpload(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})

	rec := ts.upload(t, "/api/auth/register", "", map[string]string{
		"name": "Ben", "email": "ben@example.com", "password": testPassword, "role": "admin",
	}, "cv.pdf")
	expectStatus(t, rec, http.StatusCreated)

	user, err := ts.repo.User().GetByEmail(context.Background(), "ben@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if user.Role != models.RoleFresher {
		t.Fatalf("self-assigned admin must fall back to fresher, got %s", user.Role)
	}
	if user.ResumePath == nil {
		t.Fatal("expected stored resume path")
	}

	rec = ts.upload(t, "/api/auth/register", "", map[string]string{
		"name": "Cy", "email": "cy@example.com", "password": testPassword,
	}, "cv.exe")
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestRouter_JobHiddenUntilApproved(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	_, employee := ts.seed(t, "Emp", "emp@example.com", models.RoleEmployee)
	_, admin := ts.seed(t, "Root", "root@example.com", models.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/api/jobs", employee, map[string]interface{}{
		"title": "Backend Engineer", "company": "Acme", "description": "Go services",
		"deadline": deadline(), "skills": []string{"go", "sql"},
	})
	expectStatus(t, rec, http.StatusCreated)
	job := decode[jobBody](t, rec).Job
	if job == nil || job.IsApproved {
		t.Fatalf("new job must be unapproved: %+v", job)
	}

	rec = ts.do(t, http.MethodGet, "/api/jobs", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if jobs := decode[jobsBody](t, rec).Jobs; len(jobs) != 0 {
		t.Fatalf("unapproved job listed: %+v", jobs)
	}

	rec = ts.do(t, http.MethodGet, "/api/referrals/jobs/unapproved", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	if jobs := decode[jobsBody](t, rec).Jobs; len(jobs) != 1 {
		t.Fatalf("expected one job in moderation queue, got %d", len(jobs))
	}

	rec = ts.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/approve", employee, nil)
	expectStatus(t, rec, http.StatusForbidden)

	rec = ts.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/approve", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	if approved := decode[jobBody](t, rec).Job; approved == nil || !approved.IsApproved {
		t.Fatalf("expected approved job, got %+v", approved)
	}

	rec = ts.do(t, http.MethodGet, "/api/jobs", "", nil)
	expectStatus(t, rec, http.StatusOK)
	jobs := decode[jobsBody](t, rec).Jobs
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Fatalf("expected approved job on the board, got %+v", jobs)
	}

	rec = ts.do(t, http.MethodGet, "/api/jobs/"+job.ID, "", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[jobBody](t, rec).Job; got.Creator == nil || got.Creator.Email != "emp@example.com" {
		t.Fatalf("expected creator summary, got %+v", got.Creator)
	}

	rec = ts.do(t, http.MethodGet, "/api/jobs/not-a-uuid", "", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = ts.do(t, http.MethodGet, "/api/jobs/mine", employee, nil)
	expectStatus(t, rec, http.StatusOK)
	if mine := decode[jobsBody](t, rec).Jobs; len(mine) != 1 {
		t.Fatalf("expected one own job, got %d", len(mine))
	}
}

func TestRouter_ApplyAndAccept(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	_, employee := ts.seed(t, "Emp", "emp@example.com", models.RoleEmployee)
	_, admin := ts.seed(t, "Root", "root@example.com", models.RoleAdmin)
	_, fresher := ts.seed(t, "Fay", "fay@example.com", models.RoleFresher)

	rec := ts.do(t, http.MethodPost, "/api/jobs", employee, map[string]interface{}{
		"title": "Data Engineer", "company": "Acme", "description": "Pipelines", "deadline": deadline(),
	})
	expectStatus(t, rec, http.StatusCreated)
	job := decode[jobBody](t, rec).Job

	fields := map[string]string{"jobId": job.ID, "fullName": "Fay Doe", "whyBetter": "I ship"}

	// Not approved yet
	rec = ts.upload(t, "/api/referrals/apply", fresher, fields, "cv.pdf")
	expectStatus(t, rec, http.StatusNotFound)

	expectStatus(t, ts.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/approve", admin, nil), http.StatusOK)

	rec = ts.upload(t, "/api/referrals/apply", fresher, fields, "")
	expectStatus(t, rec, http.StatusBadRequest)
	if msg := decode[ErrorResponse](t, rec).Message; msg != "Resume file is required" {
		t.Fatalf("unexpected message %q", msg)
	}

	rec = ts.upload(t, "/api/referrals/apply", fresher, fields, "cv.pdf")
	expectStatus(t, rec, http.StatusCreated)
	referral := decode[referralBody](t, rec).Referral
	if referral.Status != models.ReferralPending {
		t.Fatalf("expected pending referral, got %s", referral.Status)
	}

	rec = ts.do(t, http.MethodGet, "/api/referrals/me", fresher, nil)
	expectStatus(t, rec, http.StatusOK)
	mine := decode[referralsBody](t, rec)
	if mine.Count != 1 || mine.Referrals[0].Status != models.ReferralPending {
		t.Fatalf("unexpected own referrals %+v", mine)
	}

	rec = ts.do(t, http.MethodPatch, "/api/referrals/"+referral.ID+"/status", fresher, map[string]string{"status": "accepted"})
	expectStatus(t, rec, http.StatusForbidden)

	rec = ts.do(t, http.MethodPatch, "/api/referrals/"+referral.ID+"/status", employee, map[string]string{"status": "maybe"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = ts.do(t, http.MethodPatch, "/api/referrals/"+referral.ID+"/status", employee, map[string]string{"status": "accepted"})
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/referrals/"+referral.ID, fresher, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[referralBody](t, rec).Referral; got.Status != models.ReferralAccepted {
		t.Fatalf("expected accepted after refetch, got %s", got.Status)
	}

	rec = ts.do(t, http.MethodPatch, "/api/referrals/"+referral.ID+"/status", employee, map[string]string{"status": "rejected"})
	expectStatus(t, rec, http.StatusConflict)

	rec = ts.do(t, http.MethodGet, "/api/referrals/employee/jobs", employee, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[referralsBody](t, rec); got.Count != 1 {
		t.Fatalf("expected one referral on employee jobs, got %d", got.Count)
	}

	rec = ts.do(t, http.MethodGet, "/api/referrals/applications", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[referralsBody](t, rec); got.Count != 1 {
		t.Fatalf("expected one application for admin, got %d", got.Count)
	}
}

func TestRouter_CreateReferral(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	_, employee := ts.seed(t, "Emp", "emp@example.com", models.RoleEmployee)
	_, fresher := ts.seed(t, "Fay", "fay@example.com", models.RoleFresher)

	rec := ts.do(t, http.MethodPost, "/api/jobs", employee, map[string]interface{}{
		"title": "SRE", "company": "Acme", "description": "Pager", "deadline": deadline(),
	})
	expectStatus(t, rec, http.StatusCreated)
	job := decode[jobBody](t, rec).Job

	fields := map[string]string{"jobId": job.ID, "candidateName": "Gil", "candidateEmail": "gil@example.com"}
	expectStatus(t, ts.upload(t, "/api/referrals", fresher, fields, "cv.pdf"), http.StatusForbidden)

	rec = ts.upload(t, "/api/referrals", employee, fields, "cv.pdf")
	expectStatus(t, rec, http.StatusCreated)
	if got := decode[referralBody](t, rec).Referral; got.ReferredBy == nil || got.Status != models.ReferralPending {
		t.Fatalf("unexpected referral %+v", got)
	}
}

func TestRouter_RoleMatrix(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	_, fresher := ts.seed(t, "Fay", "fay@example.com", models.RoleFresher)
	_, employee := ts.seed(t, "Emp", "emp@example.com", models.RoleEmployee)
	_, admin := ts.seed(t, "Root", "root@example.com", models.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"me without token", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{"me with garbage token", http.MethodGet, "/api/auth/me", "garbage", http.StatusUnauthorized},
		{"fresher creates job", http.MethodPost, "/api/jobs", fresher, http.StatusForbidden},
		{"fresher lists own jobs", http.MethodGet, "/api/jobs/mine", fresher, http.StatusForbidden},
		{"employee reads admin logs", http.MethodGet, "/api/admin/logs", employee, http.StatusForbidden},
		{"fresher reads admin logs", http.MethodGet, "/api/admin/logs", fresher, http.StatusForbidden},
		{"employee reads moderation queue", http.MethodGet, "/api/referrals/jobs/unapproved", employee, http.StatusForbidden},
		{"fresher lists applications", http.MethodGet, "/api/referrals/applications", fresher, http.StatusForbidden},
		{"admin applies", http.MethodPost, "/api/referrals/apply", admin, http.StatusForbidden},
		{"employee reads chat logs", http.MethodGet, "/api/chat/logs/all", employee, http.StatusForbidden},
		{"admin reads chat logs", http.MethodGet, "/api/chat/logs/all", admin, http.StatusOK},
		{"admin reads logs", http.MethodGet, "/api/admin/logs", admin, http.StatusOK},
		{"public job board", http.MethodGet, "/api/jobs", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.token, nil)
			expectStatus(t, rec, tt.want)
		})
	}
}

func TestRouter_Chat(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	fayID, fresher := ts.seed(t, "Fay", "fay@example.com", models.RoleFresher)
	empID, employee := ts.seed(t, "Emp", "emp@example.com", models.RoleEmployee)

	rec := ts.do(t, http.MethodPost, "/api/chat/send", fresher, map[string]string{"receiverId": empID, "message": "hi"})
	expectStatus(t, rec, http.StatusCreated)
	rec = ts.do(t, http.MethodPost, "/api/chat/send", employee, map[string]string{"receiverId": fayID, "message": "hello"})
	expectStatus(t, rec, http.StatusCreated)

	rec = ts.do(t, http.MethodPost, "/api/chat/send", fresher, map[string]string{"receiverId": "nobody", "message": "hi"})
	expectStatus(t, rec, http.StatusNotFound)

	rec = ts.do(t, http.MethodGet, "/api/chat/"+empID, fresher, nil)
	expectStatus(t, rec, http.StatusOK)
	history := decode[struct {
		Count    int               `json:"count"`
		Messages []*models.Message `json:"messages"`
	}](t, rec)
	if history.Count != 2 || len(history.Messages) != 2 {
		t.Fatalf("unexpected conversation %+v", history)
	}

	rec = ts.do(t, http.MethodGet, "/api/chat", employee, nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestRouter_AdminExport(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	_, admin := ts.seed(t, "Root", "root@example.com", models.RoleAdmin)

	rec := ts.do(t, http.MethodGet, "/api/admin/logs/export", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected a zip container")
	}
}

func TestRouter_LoginRateLimit(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{AuthRateLimit: 2, AuthRateWindow: time.Minute})
	body := map[string]string{"email": "nobody@example.com", "password": "wrong-pass"}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/auth/login", "", body), http.StatusUnauthorized)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/auth/login", "", body), http.StatusUnauthorized)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/auth/login", "", body), http.StatusTooManyRequests)
}

func TestRouter_HealthAndRequestID(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusOK)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("request id not echoed, got %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("security headers missing, got %q", got)
	}
}

func TestAuthMiddleware_RejectsUnknownRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := security.NewJWTProvider("test-secret", time.Hour)
	am := NewAuthMiddleware(tokens)

	router := gin.New()
	router.GET("/x", am.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	token, _, err := tokens.Generate("user-1", "superuser")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusUnauthorized)
}

func keysOf(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func expectKeys(t *testing.T, name string, v interface{}, want ...string) {
	t.Helper()
	obj, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("%s: expected object, got %T", name, v)
	}
	slices.Sort(want)
	if got := keysOf(obj); !slices.Equal(got, want) {
		t.Fatalf("%s: got keys %v, want %v", name, got, want)
	}
}

func TestRouter_EmbeddedRelationsUseSummaries(t *testing.T) {
	ts := newTestServer(t, HandlerConfig{})
	employeeID, employee := ts.seed(t, "Emp", "emp@example.com", models.RoleEmployee)
	_, admin := ts.seed(t, "Root", "root@example.com", models.RoleAdmin)
	_, fresher := ts.seed(t, "Fay", "fay@example.com", models.RoleFresher)

	rec := ts.do(t, http.MethodPost, "/api/jobs", employee, map[string]interface{}{
		"title": "Data Engineer", "company": "Acme", "description": "Pipelines", "deadline": deadline(), "skills": []string{"go"},
	})
	expectStatus(t, rec, http.StatusCreated)
	job := decode[jobBody](t, rec).Job
	expectStatus(t, ts.do(t, http.MethodPatch, "/api/jobs/"+job.ID+"/approve", admin, nil), http.StatusOK)

	rec = ts.upload(t, "/api/referrals/apply", fresher, map[string]string{"jobId": job.ID, "fullName": "Fay Doe", "whyBetter": "I ship"}, "cv.pdf")
	expectStatus(t, rec, http.StatusCreated)

	userKeys := []string{"id", "name", "email", "role"}

	rec = ts.do(t, http.MethodGet, "/api/referrals/me", fresher, nil)
	expectStatus(t, rec, http.StatusOK)
	mine := decode[struct {
		Referrals []map[string]interface{} `json:"referrals"`
	}](t, rec).Referrals
	if len(mine) != 1 {
		t.Fatalf("expected one referral, got %d", len(mine))
	}
	expectKeys(t, "job", mine[0]["job"], "id", "title", "company", "location", "deadline")
	expectKeys(t, "candidate", mine[0]["candidate"], userKeys...)
	if _, ok := mine[0]["resumePath"]; ok {
		t.Fatal("stored resume path exposed to clients")
	}
	if mine[0]["resumeFileName"] != "cv.pdf" {
		t.Fatalf("unexpected resume file name %v", mine[0]["resumeFileName"])
	}

	rec = ts.do(t, http.MethodGet, "/api/jobs/"+job.ID, "", nil)
	expectStatus(t, rec, http.StatusOK)
	detail := decode[struct {
		Job map[string]interface{} `json:"job"`
	}](t, rec).Job
	expectKeys(t, "creator", detail["creator"], userKeys...)
	if detail["description"] != "Pipelines" {
		t.Fatalf("job body lost its own fields: %v", detail)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/chat/send", fresher, map[string]string{
		"receiverId": employeeID, "message": "hello",
	}), http.StatusCreated)
	rec = ts.do(t, http.MethodGet, "/api/chat/"+employeeID, fresher, nil)
	expectStatus(t, rec, http.StatusOK)
	messages := decode[struct {
		Messages []map[string]interface{} `json:"messages"`
	}](t, rec).Messages
	if len(messages) != 1 {
		t.Fatalf("expected one message, got %d", len(messages))
	}
	expectKeys(t, "sender", messages[0]["sender"], userKeys...)
	expectKeys(t, "receiver", messages[0]["receiver"], userKeys...)
}
