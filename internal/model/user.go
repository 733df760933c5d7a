package model

import "time"

// User represents an application user record as stored in the
// `users` table. Handlers define their own response types with JSON
// tags; this struct is used by the repository and service layers.
//
// Fields:
//  ID                  – primary key identifier of the user.
//  Email               – unique, lower-cased email address.
//  PasswordHash        – bcrypt hashed password.
//  FullName            – display name shown to admins on participant lists.
//  PhoneNumber         – optional contact number.
//  Identity            – student number or national id, never both.
//  IsAdmin             – grants access to the admin routes.
//  IsActive            – inactive accounts cannot log in.
//  FailedLoginAttempts – consecutive failed logins since the last success.
//  LockedUntil         – login is refused until this instant (nullable).
//  CreatedAt           – timestamp of creation.
//  UpdatedAt           – timestamp of last update.
type User struct {
	ID                  uint64     // users.id
	Email               string     // users.email
	PasswordHash        string     // users.password_hash
	FullName            string     // users.full_name
	PhoneNumber         *string    // users.phone_number (nullable)
	Identity            Identity   // users.identity_kind + users.identity_value
	IsAdmin             bool       // users.is_admin
	IsActive            bool       // users.is_active
	FailedLoginAttempts int        // users.failed_login_attempts
	LockedUntil         *time.Time // users.locked_until (nullable)
	CreatedAt           time.Time  // users.created_at
	UpdatedAt           time.Time  // users.updated_at
}

// Role returns the token role for the user.
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// IsLocked reports whether login is currently refused for the account.
func (u User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is never stored, only its SHA-256 hex digest.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
