package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/infra/postgres"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
)

func setupDocuments(t *testing.T) *DocumentRepository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{MaxConns: 2})
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM user_documents WHERE user_id = $1`, int64(-42)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	return NewDocumentRepository(pool)
}

func TestDocumentRepositoryMerge(t *testing.T) {
	repo := setupDocuments(t)
	ctx := context.Background()
	const userID = int64(-42)

	if _, err := repo.Get(ctx, userID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Merge(ctx, userID, []byte(`{"unlockedWords":["chat","chien"]}`)); err != nil {
		t.Fatalf("merge 1: %v", err)
	}
	if err := repo.Merge(ctx, userID, []byte(`{"progress":{"chat":{"level":2,"lastSeen":"","reviewCount":2}},"updatedAt":"2024-01-01T00:00:00.000Z"}`)); err != nil {
		t.Fatalf("merge 2: %v", err)
	}

	raw, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{"unlockedWords", "progress", "updatedAt"} {
		if _, ok := doc[field]; !ok {
			t.Errorf("expected field %q in merged document", field)
		}
	}
}
