package services

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/referral-portal/referral-service/internal/cache"
	"github.com/referral-portal/referral-service/internal/config"
	"github.com/referral-portal/referral-service/internal/events"
	"github.com/referral-portal/referral-service/internal/models"
	"github.com/referral-portal/referral-service/internal/repositories"
	"github.com/referral-portal/referral-service/internal/repositories/postgres"
	"github.com/referral-portal/referral-service/internal/security"
	"github.com/referral-portal/referral-service/internal/storage"
	"github.com/referral-portal/referral-service/internal/testutil"
	"github.com/referral-portal/referral-service/internal/validator"
)

const testPassword = "secret1"

type testEnv struct {
	sm        ServiceManager
	repo      repositories.Repository
	mailer    *testutil.CaptureMailer
	publisher *events.MockEventPublisher
	store     *storage.FileStore
	hasher    *security.Hasher
	redis     *miniredis.Miniredis
}

type envOption func(*ServiceManagerConfig)

func withOTPConfig(otp config.OTPConfig) envOption {
	return func(c *ServiceManagerConfig) { c.OTP = otp }
}

func withChatLimit(limit int, window time.Duration) envOption {
	return func(c *ServiceManagerConfig) {
		c.ChatRateLimit = limit
		c.ChatRateWindow = window
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewTestDB(t)
	redisClient, mr := testutil.NewTestRedis(t)

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		JobCacheTTL: time.Minute,
	})

	store, err := storage.NewFileStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	env := &testEnv{
		repo:      repo,
		mailer:    testutil.NewCaptureMailer(),
		publisher: events.NewMockEventPublisher(logger),
		store:     store,
		hasher:    security.NewHasher(bcrypt.MinCost),
		redis:     mr,
	}

	cfg := ServiceManagerConfig{
		OTP:            config.OTPConfig{TTL: 10 * time.Minute},
		ChatRateLimit:  0,
		ChatRateWindow: time.Minute,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	env.sm = NewServiceManager(Dependencies{
		Repo:      repo,
		Logger:    logger,
		Validator: validator.New(),
		Publisher: env.publisher,
		Mailer:    env.mailer,
		Store:     store,
		Tokens:    security.NewJWTProvider("test-secret", time.Hour),
		Hasher:    env.hasher,
		Limiter:   cache.NewRedisLimiter(redisClient),
	}, cfg)

	if err := env.sm.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize services: %v", err)
	}
	return env
}

// seedUser stores a user directly and returns it as an actor.
func (e *testEnv) seedUser(t *testing.T, name, email string, role models.UserRole, verified bool) Actor {
	t.Helper()

	hash, err := e.hasher.Hash(testPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role, IsVerified: verified}
	if err := e.repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return Actor{ID: user.ID, Role: role}
}

// approvedJob posts a job as owner and approves it as admin.
func (e *testEnv) approvedJob(t *testing.T, owner, admin Actor, title string) *models.Job {
	t.Helper()

	ctx := context.Background()
	job, err := e.sm.Job().Create(ctx, owner, &CreateJobRequest{
		Title:       title,
		Company:     "Acme",
		Description: "Build things",
		Deadline:    time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if _, err := e.sm.Job().Approve(ctx, admin, job.ID); err != nil {
		t.Fatalf("approve job: %v", err)
	}
	return job
}

func resumeFile(t *testing.T) *multipart.FileHeader {
	t.Helper()
	return testutil.NewMultipartFile(t, "resume", "cv.pdf", []byte("%PDF-1.4 resume"))
}
