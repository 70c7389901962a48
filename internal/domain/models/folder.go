package models

import (
	"time"
)

// Folder is a node in the workspace tree. ParentID is nil at the root.
type Folder struct {
	ID        string     `json:"id" db:"id"`
	ParentID  *string    `json:"parent_id,omitempty" db:"parent_id"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// TreeNode is a folder with its resolved children, used for tree responses.
type TreeNode struct {
	Folder    *Folder    `json:"folder,omitempty"` // nil for the synthetic root
	Folders   []TreeNode `json:"folders"`
	Documents []Document `json:"documents"`
}
