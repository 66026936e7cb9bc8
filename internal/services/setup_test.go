package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/notify"
	"github.com/SAP-F-2025/lms-service/internal/payment"
	"github.com/SAP-F-2025/lms-service/internal/repositories/cached"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/storage"
	"github.com/SAP-F-2025/lms-service/internal/testutil"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testContactDestination = "info@mindschool.com"

// fakeGateway approves every charge unless decline is set. Charge ids are
// numbered ch_test_1, ch_test_2, ...
type fakeGateway struct {
	mu       sync.Mutex
	decline  bool
	delay    time.Duration
	requests []payment.ChargeRequest
}

func (g *fakeGateway) Charge(_ context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	n, decline, delay := len(g.requests), g.decline, g.delay
	g.mu.Unlock()

	time.Sleep(delay)
	if decline {
		return nil, payment.ErrChargeDeclined
	}
	return &payment.Charge{ID: fmt.Sprintf("ch_test_%d", n), Status: "succeeded", Amount: payment.ToCents(req.Amount), Currency: "mxn"}, nil
}

func (g *fakeGateway) charges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	fx        *testutil.Fixtures
	repo      *cached.Repository
	cache     *cache.MemoryCache
	publisher *events.MockEventPublisher
	mailer    *notify.RecordingMailer
	gateway   *fakeGateway
	collector *metrics.Collector
	tokens    *auth.JWTManager
	filesDir  string
	services  ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bcryptCost = bcrypt.MinCost

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewDB(t)
	memCache := cache.NewMemoryCache()
	repo := cached.NewRepository(postgres.NewRepository(db), memCache, utils.NewSlogLogger(logger))
	filesDir := t.TempDir()
	files, err := storage.NewLocalStorage(filesDir, "/storage")
	require.NoError(t, err)

	env := &testEnv{
		ctx:       context.Background(),
		db:        db,
		fx:        testutil.NewFixtures(t, db),
		repo:      repo,
		cache:     memCache,
		publisher: events.NewMockEventPublisher(logger),
		mailer:    notify.NewRecordingMailer(),
		gateway:   &fakeGateway{},
		collector: metrics.NewCollector(),
		tokens:    auth.NewJWTManager("test-secret", time.Hour, memCache),
		filesDir:  filesDir,
	}
	env.services = NewServiceManager(Dependencies{
		Repo:               repo,
		CourseCache:        repo.CourseCache(),
		Cache:              memCache,
		Tokens:             env.tokens,
		Publisher:          env.publisher,
		Mailer:             env.mailer,
		Gateway:            env.gateway,
		Files:              files,
		Collector:          env.collector,
		Validator:          validator.New(),
		Logger:             logger,
		ContactDestination: testContactDestination,
		Currency:           "MXN",
		MaxUploadBytes:     1 << 20,
		MaxMediaBytes:      4 << 20,
	})
	return env
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
