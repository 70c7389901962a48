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

// SQLiteFolderRepository implements the FolderRepository interface
type SQLiteFolderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &SQLiteFolderRepository{
		db:     config.DB,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *SQLiteFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO folders (id, parent_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		folder.ID,
		folder.ParentID,
		folder.Name,
		folder.CreatedAt.Format(timeLayout),
		folder.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *SQLiteFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	folder, err := scanFolder(r.db.QueryRowContext(ctx, `
		SELECT id, parent_id, name, created_at, updated_at, deleted_at
		FROM folders
		WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return folder, nil
}

// Update updates a folder's name or parent
func (r *SQLiteFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE folders
		SET parent_id = ?, name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		folder.ParentID,
		folder.Name,
		folder.UpdatedAt.Format(timeLayout),
		folder.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	return requireFolderRow(res, folder.ID)
}

// SoftDelete moves a folder to the trash
func (r *SQLiteFolderRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE folders
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("trash folder: %w", err)
	}
	return requireFolderRow(res, id)
}

// Delete permanently removes a folder
func (r *SQLiteFolderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return requireFolderRow(res, id)
}

// ListByParent lists live folders under a parent (nil = root)
func (r *SQLiteFolderRepository) ListByParent(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var rows *sql.Rows
	var err error
	if parentID == nil {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, parent_id, name, created_at, updated_at, deleted_at
			FROM folders
			WHERE parent_id IS NULL AND deleted_at IS NULL
			ORDER BY name`)
	} else {
		rows, err = r.db.QueryContext(ctx, `
			SELECT id, parent_id, name, created_at, updated_at, deleted_at
			FROM folders
			WHERE parent_id = ? AND deleted_at IS NULL
			ORDER BY name`, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	return folders, rows.Err()
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var folder models.Folder
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.Name,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if folder.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if folder.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t, err := parseTime(deletedAt.String)
		if err != nil {
			return nil, err
		}
		folder.DeletedAt = &t
	}
	return &folder, nil
}

func requireFolderRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
