package model

import "time"

// User is an account able to log in and own resources.  PasswordHash is
// never serialized; handlers return the struct directly.
//
// Fields:
//  ID           – UUID primary key.
//  Fullname     – optional display name.
//  Username     – globally unique login name.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           string    `json:"id"`        // users.id
    Fullname     string    `json:"fullname"`  // users.fullname
    Username     string    `json:"username"`  // users.username
    PasswordHash string    `json:"-"`         // users.password_hash
    CreatedAt    time.Time `json:"createdAt"` // users.created_at
    UpdatedAt    time.Time `json:"updatedAt"` // users.updated_at
}
