package model

import "time"

// Role names stored in users.role.  New accounts start as RoleGuest and are
// promoted to RoleMember the first time one of their quotes is converted
// into a reservation.
const (
	RoleGuest  = "guest"
	RoleMember = "member"
	RoleUser   = "user"
)

// User represents a row of the `users` table.  Profile fields (phone,
// passport number, birth date) are optional at signup and filled in later by
// the profile form or during reservation conversion, so they are nullable.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Name         – display name shown on quotes and reservations.
//  Role         – guest, member or user (see the Role constants).
//  Phone        – contact phone number (nullable).
//  PassportNo   – passport number used for cruise check-in (nullable).
//  BirthDate    – date of birth (nullable).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	Name         string     // users.name
	Role         string     // users.role
	Phone        *string    // users.phone (nullable)
	PassportNo   *string    // users.passport_no (nullable)
	BirthDate    *time.Time // users.birth_date (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is persisted.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
