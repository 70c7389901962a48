package models

import (
	"time"
)

// Document is a file in the workspace. Content is always a single string;
// tabular views are a projection of that string, never a second copy.
type Document struct {
	ID        string     `json:"id" db:"id"`
	FolderID  *string    `json:"folder_id,omitempty" db:"folder_id"`
	Name      string     `json:"name" db:"name"`
	Content   string     `json:"content" db:"content"`
	Kind      string     `json:"kind" db:"kind"` // "text" or "table"
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Document kinds
const (
	DocumentKindText  = "text"
	DocumentKindTable = "table"
)

// IsTrashed reports whether the document has been soft-deleted.
func (d *Document) IsTrashed() bool {
	return d.DeletedAt != nil
}
