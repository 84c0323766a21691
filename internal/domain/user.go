package domain

import "time"

// Role of a platform user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account
type User struct {
	ID           int64
	Email        string
	PasswordHash *string // nil для пользователей, входящих только по magic link
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword returns true if the user can log in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Profile holds personal data of a user
type Profile struct {
	UserID    int64
	FullName  string
	Phone     *string
	AvatarURL *string
	UpdatedAt time.Time
}

// MagicLink is a single-use passwordless login token
type MagicLink struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// IsUsable returns true if the link is unused and not expired
func (l *MagicLink) IsUsable(now time.Time) bool {
	return l.UsedAt == nil && now.Before(l.ExpiresAt)
}
