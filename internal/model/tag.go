package model

import "time"

// Tag is a label attached to notes.  The name is unique per owner.
type Tag struct {
    ID        string    `json:"id"`        // tags.id
    Name      string    `json:"name"`      // tags.name
    UserID    string    `json:"userId"`    // tags.user_id
    CreatedAt time.Time `json:"createdAt"` // tags.created_at
    UpdatedAt time.Time `json:"updatedAt"` // tags.updated_at
}

// TagFields carries the writable attributes of a tag.
type TagFields struct {
    Name *string
}
