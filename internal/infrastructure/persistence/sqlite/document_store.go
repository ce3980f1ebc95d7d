package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
)

var fieldName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// DocumentStore keeps JSON documents in the documents table, one row per (collection, id)
type DocumentStore struct {
	db     *DB
	logger *zap.Logger
}

// NewDocumentStore creates a document store on top of db
func NewDocumentStore(db *DB, logger *zap.Logger) *DocumentStore {
	return &DocumentStore{
		db:     db,
		logger: logger,
	}
}

// Get decodes the document into out
func (s *DocumentStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	var body string
	err := s.db.executor(ctx).QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return port.ErrDocumentNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get document",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

// List returns raw documents matching every equality condition of the filter
func (s *DocumentStore) List(ctx context.Context, collection string, filter port.Filter) ([]json.RawMessage, error) {
	query, args, err := buildListQuery(collection, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to list documents", zap.String("collection", collection), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, json.RawMessage(body))
	}
	return docs, rows.Err()
}

func buildListQuery(collection string, filter port.Filter) (string, []interface{}, error) {
	var b strings.Builder
	args := []interface{}{collection}
	b.WriteString(`SELECT body FROM documents WHERE collection = ?`)

	fields := make([]string, 0, len(filter.Equals))
	for field := range filter.Equals {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		if !fieldName.MatchString(field) {
			return "", nil, fmt.Errorf("invalid filter field %q", field)
		}
		b.WriteString(` AND json_extract(body, ?) = ?`)
		args = append(args, "$."+field, filter.Equals[field])
	}

	if filter.OrderBy != "" {
		field, desc := strings.CutPrefix(filter.OrderBy, "-")
		if !fieldName.MatchString(field) {
			return "", nil, fmt.Errorf("invalid order field %q", field)
		}
		b.WriteString(` ORDER BY json_extract(body, ?)`)
		args = append(args, "$."+field)
		if desc {
			b.WriteString(` DESC`)
		}
		b.WriteString(`, id`)
	} else {
		b.WriteString(` ORDER BY created_at, id`)
	}

	if filter.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	return b.String(), args, nil
}

// Create inserts a new document. A taken id or unique index yields port.ErrDocumentExists.
func (s *DocumentStore) Create(ctx context.Context, collection, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	now := time.Now().UTC()
	_, err = s.db.executor(ctx).ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, string(body), now, now,
	)
	if isConstraintViolation(err) {
		return fmt.Errorf("%s/%s: %w", collection, id, port.ErrDocumentExists)
	}
	if err != nil {
		s.logger.Error("Failed to create document",
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// Update applies partial as a JSON merge patch
func (s *DocumentStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	patch, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to encode patch for %s/%s: %w", collection, id, err)
	}

	return s.exec(ctx, "update", collection, id,
		`UPDATE documents SET body = json_patch(body, ?), updated_at = ? WHERE collection = ? AND id = ?`,
		string(patch), time.Now().UTC(), collection, id,
	)
}

// Replace overwrites the whole document
func (s *DocumentStore) Replace(ctx context.Context, collection, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	return s.exec(ctx, "replace", collection, id,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(body), time.Now().UTC(), collection, id,
	)
}

// Delete removes a document
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	return s.exec(ctx, "delete", collection, id,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
}

// exec runs a single-row write and maps zero affected rows to port.ErrDocumentNotFound
func (s *DocumentStore) exec(ctx context.Context, op, collection, id, query string, args ...interface{}) error {
	result, err := s.db.executor(ctx).ExecContext(ctx, query, args...)
	if isConstraintViolation(err) {
		return fmt.Errorf("%s/%s: %w", collection, id, port.ErrDocumentExists)
	}
	if err != nil {
		s.logger.Error("Document write failed",
			zap.String("op", op),
			zap.String("collection", collection),
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to %s document: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return port.ErrDocumentNotFound
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

var _ port.DocumentStore = (*DocumentStore)(nil)
