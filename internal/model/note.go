package model

import "time"

// Note is the primary content entity.  FolderID is nil when the note is not
// filed; Tags holds tag ids in the order they were attached.
type Note struct {
    ID        string    `json:"id"`        // notes.id
    Title     string    `json:"title"`     // notes.title
    Content   string    `json:"content"`   // notes.content
    FolderID  *string   `json:"folderId"`  // notes.folder_id (nullable)
    Tags      []string  `json:"tags"`      // note_tags.tag_id
    UserID    string    `json:"userId"`    // notes.user_id
    CreatedAt time.Time `json:"createdAt"` // notes.created_at
    UpdatedAt time.Time `json:"updatedAt"` // notes.updated_at
}

// NoteFields carries the writable attributes of a note.  On update only
// non-nil fields are applied.  ClearFolder distinguishes an explicit null
// folderId (unfile the note) from an absent one.
type NoteFields struct {
    Title       *string
    Content     *string
    FolderID    *string
    ClearFolder bool
    Tags        *[]string
}
