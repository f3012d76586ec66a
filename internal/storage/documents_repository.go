package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/apptintake/libs/db"
)

// ErrNotConfigured is returned for every operation when the service runs
// without a database. The HTTP surface stays up in that mode; only inserts
// fail.
var ErrNotConfigured = errors.New("database not configured")

// DocumentsRepository stores one JSONB table per document kind inside a
// single schema, mirroring a document-store collection layout.
type DocumentsRepository struct {
	pool   *db.Pool
	schema string
}

func NewDocumentsRepository(pool *db.Pool, schema string) *DocumentsRepository {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = "public"
	}
	return &DocumentsRepository{pool: pool, schema: schema}
}

func (r *DocumentsRepository) table(kind string) string {
	return pgx.Identifier{r.schema, kind}.Sanitize()
}

// EnsureKind creates the backing table for a document kind if missing.
// Meant to run once at startup per kind the service writes.
func (r *DocumentsRepository) EnsureKind(ctx context.Context, kind string) error {
	if r.pool == nil {
		return ErrNotConfigured
	}
	if r.schema != "public" {
		if _, err := r.pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+pgx.Identifier{r.schema}.Sanitize()); err != nil {
			return err
		}
	}
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+r.table(kind)+` (
			id uuid PRIMARY KEY,
			payload jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	return err
}

// InsertDocument marshals doc and inserts it under a fresh uuid, returning
// the identifier.
func (r *DocumentsRepository) InsertDocument(ctx context.Context, kind string, doc any) (string, error) {
	if r.pool == nil {
		return "", ErrNotConfigured
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO `+r.table(kind)+` (id, payload)
		VALUES ($1, $2)
		RETURNING id
	`, uuid.NewString(), payload).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListKinds returns up to limit document table names in the repository
// schema. Used by the diagnostics probe as a lightweight connectivity check.
func (r *DocumentsRepository) ListKinds(ctx context.Context, limit int) ([]string, error) {
	if r.pool == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT tablename FROM pg_tables
		WHERE schemaname = $1
		ORDER BY tablename
		LIMIT $2
	`, r.schema, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kinds := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		kinds = append(kinds, name)
	}
	return kinds, rows.Err()
}
