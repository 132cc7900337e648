package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
)

// KVStore is a per-user string key-value store backed by SQLite.
type KVStore struct {
	db *sqlx.DB
}

func NewKVStore(db *sqlx.DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the value stored under key for the user.
// Returns storage.ErrNotFound if the key was never set.
func (s *KVStore) Get(ctx context.Context, userID int64, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		`SELECT value FROM kv_entries WHERE user_id = ? AND key = ?`,
		userID, key,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key for the user, replacing any previous value.
func (s *KVStore) Set(ctx context.Context, userID int64, key, value string) error {
	query := `
		INSERT INTO kv_entries (user_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, key)
		DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, userID, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Users returns the ids of users that have at least one stored value.
func (s *KVStore) Users(ctx context.Context) ([]int64, error) {
	var users []int64
	err := s.db.SelectContext(ctx, &users,
		`SELECT DISTINCT user_id FROM kv_entries ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
