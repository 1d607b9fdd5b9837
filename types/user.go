package types

import "time"

// Roles a user account can hold. Role is fixed at creation and never changes.
const (
	// RoleOps marks the privileged uploader accounts.
	RoleOps = "ops"

	// RoleClient marks self-registered accounts that list and download files.
	RoleClient = "client"
)

// User represents an account in the system. Email is the unique identity.
type User struct {
	// Email is the unique login identity of the user.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Role is either "ops" or "client" and is immutable after creation.
	Role string `json:"role" db:"role"`

	// Verified reports whether the user completed email verification.
	// Ops accounts are seeded verified; client accounts start unverified.
	Verified bool `json:"verified" db:"verified"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
