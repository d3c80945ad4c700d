package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ecommerce-api/internal/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PostgresDocumentStore keeps every collection in one JSONB table.
type PostgresDocumentStore struct {
	db   *sql.DB
	name string
}

func NewPostgresDocumentStore(db *sql.DB, name string) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db, name: name}
}

// ConnectPostgres opens dsn and resolves the database name. As with Mongo, a
// server that is down at start-up does not fail the call.
func ConnectPostgres(ctx context.Context, dsn, fallbackName string) (*PostgresDocumentStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: open")
	}

	name := fallbackName
	var current string
	if err := db.QueryRowContext(ctx, `SELECT current_database()`).Scan(&current); err == nil {
		name = current
	}
	return NewPostgresDocumentStore(db, name), nil
}

func (s *PostgresDocumentStore) CreateDocument(ctx context.Context, collection string, record any) (string, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return "", errors.Wrap(err, "postgres: encode document")
	}
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", errors.Wrap(err, "postgres: encode document")
	}

	now := time.Now().UTC()
	body["created_at"] = now
	body["updated_at"] = now

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "postgres: encode document")
	}

	id := uuid.New()
	query := `INSERT INTO documents (id, collection, body, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, id, collection, string(encoded), now); err != nil {
		return "", errors.Wrapf(err, "postgres: insert into %s", collection)
	}
	return id.String(), nil
}

func (s *PostgresDocumentStore) GetDocuments(ctx context.Context, collection string, filter map[string]any, limit int64) ([]model.Document, error) {
	if filter == nil {
		filter = map[string]any{}
	}
	containment, err := json.Marshal(filter)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: encode filter")
	}

	// LIMIT NULL means no limit.
	capped := sql.NullInt64{Int64: limit, Valid: limit > 0}

	query := `SELECT id, body FROM documents WHERE collection = $1 AND body @> $2::jsonb ORDER BY created_at LIMIT $3`
	rows, err := s.db.QueryContext(ctx, query, collection, string(containment), capped)
	if err != nil {
		return nil, errors.Wrapf(err, "postgres: query %s", collection)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var (
			id   uuid.UUID
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, errors.Wrapf(err, "postgres: scan %s", collection)
		}
		doc := model.Document{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, errors.Wrapf(err, "postgres: decode %s", collection)
		}
		doc[model.NativeIDKey] = id
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresDocumentStore) Name() string {
	return s.name
}

func (s *PostgresDocumentStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, errors.Wrap(err, "postgres: list collections")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgresDocumentStore) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.PingContext(ctx), "postgres: ping")
}

func (s *PostgresDocumentStore) Close(_ context.Context) error {
	return s.db.Close()
}
