package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// DatabaseURL returns DATABASE_URL when set. Otherwise it starts a disposable
// PostgreSQL container shared by every test in the process; the testcontainers
// reaper removes it when the process exits. Tests are skipped when neither is
// available.
func DatabaseURL(t testing.TB) string {
	t.Helper()
	if value := os.Getenv("DATABASE_URL"); value != "" {
		return value
	}

	containerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		containerURL, containerErr = startPostgres(ctx)
	})
	if containerErr != nil {
		t.Skipf("DATABASE_URL not set and postgres container unavailable: %v", containerErr)
	}
	return containerURL
}

func startPostgres(ctx context.Context) (string, error) {
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("flashdeck_test"),
		postgres.WithUsername("flashdeck"),
		postgres.WithPassword("flashdeck"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		if ctr != nil {
			_ = testcontainers.TerminateContainer(ctr)
		}
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(ctr)
		return "", fmt.Errorf("postgres connection string: %w", err)
	}
	return dsn, nil
}

const advisoryLockID int64 = 717171

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table by replaying the embedded down migrations in
// reverse, then recreates them from the up migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	if err != nil {
		return fmt.Errorf("list down migrations: %w", err)
	}
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list up migrations: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))
	sort.Strings(ups)

	for _, name := range downs {
		if err := execMigrationFile(ctx, pool, name); err != nil {
			return err
		}
	}
	// golang-migrate bookkeeping would otherwise disagree with the fresh schema
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS schema_migrations"); err != nil {
		return fmt.Errorf("drop schema_migrations: %w", err)
	}
	for _, name := range ups {
		if err := execMigrationFile(ctx, pool, name); err != nil {
			return err
		}
	}

	return nil
}

func execMigrationFile(ctx context.Context, pool *pgxpool.Pool, name string) error {
	sql, err := fs.ReadFile(migrations.FS, name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	now := time.Now().UTC()
	id := ulid.Make().String()
	return &model.User{
		ID:        id,
		Email:     fmt.Sprintf("user-%s@flashdeck.test", id),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestDeck creates an empty deck owned by userID.
func NewTestDeck(t testing.TB, userID, name string) *model.Deck {
	t.Helper()
	now := time.Now().UTC()
	return &model.Deck{
		ID:        ulid.Make().String(),
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestCard creates a medium-difficulty card in deckID.
func NewTestCard(t testing.TB, deckID, front, back string) *model.FlashCard {
	t.Helper()
	now := time.Now().UTC()
	return &model.FlashCard{
		ID:         ulid.Make().String(),
		Front:      front,
		Back:       back,
		Difficulty: model.DefaultDifficulty,
		DeckID:     deckID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
