package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// timeLayout is the storage format for timestamps. RFC 3339 with
// nanoseconds sorts lexicographically, so the timestamp index is usable.
const timeLayout = time.RFC3339Nano

// SQLiteDocumentRepository implements the DocumentRepository interface
type SQLiteDocumentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &SQLiteDocumentRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *SQLiteDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, folder_id, name, content, kind, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID,
		doc.FolderID,
		doc.Name,
		doc.Content,
		doc.Kind,
		doc.CreatedAt.Format(timeLayout),
		doc.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID retrieves a document by ID
func (r *SQLiteDocumentRepository) GetByID(ctx context.Context, id string, includeTrashed bool) (*models.Document, error) {
	query := `
		SELECT id, folder_id, name, content, kind, created_at, updated_at, deleted_at
		FROM documents
		WHERE id = ?`
	if !includeTrashed {
		query += " AND deleted_at IS NULL"
	}

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update updates an existing document's metadata and content
func (r *SQLiteDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET folder_id = ?, name = ?, content = ?, kind = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		doc.FolderID,
		doc.Name,
		doc.Content,
		doc.Kind,
		doc.UpdatedAt.Format(timeLayout),
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireRow(res, doc.ID)
}

// SetContent replaces a document's content only
func (r *SQLiteDocumentRepository) SetContent(ctx context.Context, id, content string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET content = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		content,
		time.Now().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	return requireRow(res, id)
}

// SoftDelete moves a document to the trash
func (r *SQLiteDocumentRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("trash document: %w", err)
	}
	return requireRow(res, id)
}

// Restore brings a trashed document back
func (r *SQLiteDocumentRepository) Restore(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET deleted_at = NULL
		WHERE id = ? AND deleted_at IS NOT NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	return requireRow(res, id)
}

// Delete permanently removes a document
func (r *SQLiteDocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRow(res, id)
}

// ListByFolder lists live documents in a folder (nil = root)
func (r *SQLiteDocumentRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.Document, error) {
	var rows *sql.Rows
	var err error
	if folderID == nil {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, folder_id, name, content, kind, created_at, updated_at, deleted_at
			FROM documents
			WHERE folder_id IS NULL AND deleted_at IS NULL
			ORDER BY name`)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, folder_id, name, content, kind, created_at, updated_at, deleted_at
			FROM documents
			WHERE folder_id = ? AND deleted_at IS NULL
			ORDER BY name`, *folderID)
	}
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// ListTrashed lists soft-deleted documents
func (r *SQLiteDocumentRepository) ListTrashed(ctx context.Context) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, folder_id, name, content, kind, created_at, updated_at, deleted_at
		FROM documents
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(
		&doc.ID,
		&doc.FolderID,
		&doc.Name,
		&doc.Content,
		&doc.Kind,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if doc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t, err := parseTime(deletedAt.String)
		if err != nil {
			return nil, err
		}
		doc.DeletedAt = &t
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// requireRow maps a zero-row update to ErrNotFound.
func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
