package models

import "time"

// UserDB represents a row of the users table.
type UserDB struct {
	UserID       int64     `db:"id"`            // Store-assigned primary key
	Username     string    `db:"username"`      // Display name
	Email        string    `db:"email"`         // Unique login email
	Phone        *string   `db:"phone"`         // Optional, NULL when absent
	PasswordHash string    `db:"password_hash"` // bcrypt hash
	CreatedAt    time.Time `db:"created_at"`    // Set by the store on insert
}

// NewUser holds the values written by a registration.
type NewUser struct {
	Username     string
	Email        string
	Phone        *string
	PasswordHash string
}

// UserView is the admin projection of a user. It never carries the password hash.
// swagger:model UserView
type UserView struct {
	// example: 1
	ID int64 `json:"id"`
	// example: alice
	Username string `json:"username"`
	// example: a@x.com
	Email string `json:"email"`
	// example: +15550100
	Phone *string `json:"phone"`
	// example: 2025-01-01T10:00:00Z
	CreatedAt time.Time `json:"created_at"`
}

// View projects the row for public listing.
func (u UserDB) View() UserView {
	return UserView{
		ID:        u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the part of the user returned to the client after login.
// swagger:model PublicUser
type PublicUser struct {
	// example: alice
	Username string `json:"username"`
	// example: a@x.com
	Email string `json:"email"`
}

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	RegisteredAt int64  `json:"registered_at"`
}
