package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
	"github.com/Veraticus/the-spice-must-sync/internal/storage"
)

const sqliteSchemaVersion = 1

var sqliteMigrations = []storage.Migration{
	{
		Version:     1,
		Description: "Document store schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS documents (
					path TEXT PRIMARY KEY,
					collection TEXT NOT NULL,
					data TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SQLite is a DocumentStore persisted in a single SQLite file. Several
// processes pointing at the same file behave like clients of one remote store.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) the document database at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := storage.ApplyMigrations(ctx, db, sqliteMigrations, sqliteSchemaVersion); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate document store: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get implements service.DocumentStore.
func (s *SQLite) Get(ctx context.Context, path string) (service.Document, error) {
	_, id, err := checkDocumentPath(path)
	if err != nil {
		return nil, err
	}

	doc, err := s.get(ctx, s.db, path)
	if err != nil {
		return nil, common.NewRemoteError("get", path, err)
	}
	return withID(doc, id), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLite) get(ctx context.Context, q queryer, path string) (service.Document, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc service.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("corrupt document: %w", err)
	}
	return doc, nil
}

// Set implements service.DocumentStore. A merge is a read-modify-write inside
// one SQLite transaction.
func (s *SQLite) Set(ctx context.Context, path string, doc service.Document, opts ...service.SetOption) error {
	collection, _, err := checkDocumentPath(path)
	if err != nil {
		return err
	}
	o := service.ApplySetOptions(opts...)

	if err := s.set(ctx, path, collection, doc, o.Merge); err != nil {
		return common.NewRemoteError("set", path, err)
	}
	return nil
}

func (s *SQLite) set(ctx context.Context, path, collection string, doc service.Document, merge bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if merge {
		existing, err := s.get(ctx, tx, path)
		if err != nil {
			return err
		}
		doc = mergeDocument(existing, doc)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (path, collection, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		path, collection, string(data), time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return tx.Commit()
}

// Delete implements service.DocumentStore.
func (s *SQLite) Delete(ctx context.Context, path string) error {
	if _, _, err := checkDocumentPath(path); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return common.NewRemoteError("delete", path, err)
	}
	return nil
}

// List implements service.DocumentStore.
func (s *SQLite) List(ctx context.Context, collectionPath string) ([]service.Document, error) {
	if err := checkCollectionPath(collectionPath); err != nil {
		return nil, err
	}

	docs, err := s.list(ctx, collectionPath)
	if err != nil {
		return nil, common.NewRemoteError("list", collectionPath, err)
	}
	return docs, nil
}

func (s *SQLite) list(ctx context.Context, collectionPath string) ([]service.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, data FROM documents WHERE collection = ? ORDER BY path`, collectionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []service.Document{}
	for rows.Next() {
		var path, data string
		if err := rows.Scan(&path, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc service.Document
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, fmt.Errorf("corrupt document %s: %w", path, err)
		}
		_, id, _ := checkDocumentPath(path)
		docs = append(docs, withID(doc, id))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}
