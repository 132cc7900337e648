package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/infra/postgres"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
)

// DocumentRepository stores one JSON document per user in the user_documents table.
type DocumentRepository struct {
	db postgres.DBTX
}

func NewDocumentRepository(db postgres.DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Get returns the raw JSON document of the user.
// Returns storage.ErrNotFound if the user has no document yet.
func (r *DocumentRepository) Get(ctx context.Context, userID int64) ([]byte, error) {
	query := `SELECT doc FROM user_documents WHERE user_id = $1`

	var doc []byte
	err := r.db.QueryRow(ctx, query, userID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// Merge merges the top-level fields of patch into the user's document,
// creating the document if needed. Fields absent from patch are preserved.
func (r *DocumentRepository) Merge(ctx context.Context, userID int64, patch []byte) error {
	query := `
		INSERT INTO user_documents (user_id, doc, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET
			doc = user_documents.doc || excluded.doc,
			updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query, userID, string(patch))
	if err != nil {
		return fmt.Errorf("merge document: %w", err)
	}

	return nil
}
