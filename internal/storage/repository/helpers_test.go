package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/sponsor-match/internal/migrations"
	"github.com/magabrotheeeer/sponsor-match/internal/models"
)

func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db, migrationsPath))
	require.NoError(t, db.Close())

	storage, err := New(ctx, dsn, 10)
	require.NoError(t, err)

	cleanup := func() {
		storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory создаёт тестовые данные напрямую через хранилище.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateUser(t *testing.T, email string) string {
	t.Helper()
	uid, err := f.storage.CreateUser(context.Background(), email, "hash")
	require.NoError(t, err)
	return uid
}

func (f *TestDataFactory) CreatePost(t *testing.T, role models.Role, platform models.Platform, followers int64, price float64, interests ...string) *models.Post {
	t.Helper()
	email := uuid.NewString() + "@example.com"
	uid := f.CreateUser(t, email)
	p, err := f.storage.InsertPost(context.Background(), models.Post{
		UserID:      uid,
		OwnerEmail:  email,
		Role:        role,
		Platform:    platform,
		Followers:   followers,
		PricePoint:  price,
		Description: "about",
		ContactInfo: email,
		Interests:   interests,
	})
	require.NoError(t, err)
	return p
}
