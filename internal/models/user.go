package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Role         UserRole
	AvatarURL    *string
	AvatarKey    *string
	ResetToken   *string
	ResetExpires *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeviceInfo is descriptive metadata captured at login; it never
// participates in authorization decisions.
type DeviceInfo struct {
	UserAgent string
	IPAddress string
	Browser   string
	OS        string
}

// Session binds a user to one issued bearer token. A deactivated session
// outlives logout so the login history stays auditable.
type Session struct {
	ID        string
	UserID    string
	Token     string
	Device    DeviceInfo
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
