// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Actions carried by ActivityEvent.
const (
    ActionRegistered     = "registered"
    ActionProfileUpdated = "profile_updated"
    ActionCreated        = "created"
    ActionUpdated        = "updated"
    ActionDeleted        = "deleted"
)

// ActivityEvent is published after every successful mutation.  It contains
// enough information for downstream consumers to log or audit the change
// without querying the primary database.  Affected is the number of notes
// whose folder or tag reference was cleared by a delete.
type ActivityEvent struct {
    Action     string `json:"action"`
    Resource   string `json:"resource"` // user | folder | tag | note
    ResourceID string `json:"resource_id"`
    UserID     string `json:"user_id"`
    Username   string `json:"username,omitempty"`
    Affected   int64  `json:"affected,omitempty"`
    OccurredAt string `json:"occurred_at"` // RFC3339, UTC
}

// NewActivityEvent stamps an event with the current UTC time.
func NewActivityEvent(action, resource, resourceID, userID, username string) ActivityEvent {
    return ActivityEvent{
        Action:     action,
        Resource:   resource,
        ResourceID: resourceID,
        UserID:     userID,
        Username:   username,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
