package repo

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"sort"

	"github.com/pkg/errors"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// EnsureSchema creates the documents table backing the store.
func (s *PostgresDocumentStore) EnsureSchema(ctx context.Context) error {
	return ensureSchema(ctx, s.db)
}

// ensureSchema runs the embedded scripts in name order; they must be idempotent.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	files, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := schemaFS.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return errors.Wrapf(err, "postgres: apply %s", file)
		}
	}
	return nil
}
