package model

import "time"

// Folder groups notes.  The name is unique per owner.
type Folder struct {
    ID        string    `json:"id"`        // folders.id
    Name      string    `json:"name"`      // folders.name
    UserID    string    `json:"userId"`    // folders.user_id
    CreatedAt time.Time `json:"createdAt"` // folders.created_at
    UpdatedAt time.Time `json:"updatedAt"` // folders.updated_at
}

// FolderFields carries the writable attributes of a folder.  A nil pointer
// means "not provided" on update.
type FolderFields struct {
    Name *string
}
