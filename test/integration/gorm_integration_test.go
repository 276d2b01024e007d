package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"jobportal-be/internal/entity"
	"jobportal-be/internal/repository/specification"
	"jobportal-be/internal/repository/unitofwork"
	"jobportal-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ApplicationRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Application Repository", func(t *testing.T) {
		count, err := uow.ApplicationRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("JobApplication count: %d", count)
	})

	t.Run("Check Transactional Submission Write", func(t *testing.T) {
		ctx := context.Background()
		txUow := uowFactory.NewUnitOfWork(ctx)
		err := txUow.Begin(ctx)
		assert.NoError(t, err)
		// Rollback at the end keeps the database clean regardless of
		// how far the subtest got.
		defer func() { _ = txUow.Rollback() }()

		userId := uuid.New()
		user := &entity.User{
			Id:       userId,
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Role:     entity.UserRoleUser,
			Status:   entity.UserStatusActive,
		}
		err = txUow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		app := &entity.JobApplication{
			Id:         "1756400000000001",
			UserId:     userId,
			FullName:   user.FullName,
			Email:      user.Email,
			Phone:      "081234567890",
			Position:   entity.PositionBackend,
			Experience: 3,
			Expertise:  "Go, PostgreSQL",
		}
		rawPayload := []byte(`{"fullName":"Integration Test User","position":"backend"}`)
		err = txUow.ApplicationRepository().Create(ctx, app, rawPayload)
		assert.NoError(t, err)

		err = txUow.ApplicationRepository().UpdateFeedKey(ctx, app.Id, "feed-key-test")
		assert.NoError(t, err)

		found, err := txUow.ApplicationRepository().FindOne(ctx, specification.BySubmissionId{Id: app.Id})
		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, "feed-key-test", found.FeedKey)

		err = txUow.ApplicationRepository().Delete(ctx, app.Id)
		assert.NoError(t, err)

		found, err = txUow.ApplicationRepository().FindOne(ctx, specification.BySubmissionId{Id: app.Id})
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}
