// File: /models/profile.go
package models

import "time"

// User is the credential record. The profile is created alongside it at sign-up
// and shares its ID. It never leaves the storage layer; the API exposes
// AuthUser instead, so the hash may carry a real storage tag.
type User struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:191"`
	Email        string    `json:"email" bson:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string    `json:"password_hash" bson:"password_hash" gorm:"not null;size:255"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Profile holds the user-facing identity. Its ID equals the User ID.
type Profile struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:191"`
	FullName     string    `json:"full_name" bson:"full_name" gorm:"size:255"`
	Email        string    `json:"email" bson:"email" gorm:"not null;size:255"`
	Role         string    `json:"role" bson:"role" gorm:"default:'user';size:20"`
	DepartmentID *string   `json:"department_id" bson:"department_id" gorm:"size:191"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// ProfileSummary is the profile sub-object embedded in reservation views.
type ProfileSummary struct {
	FullName string `json:"full_name" bson:"full_name"`
	Email    string `json:"email" bson:"email"`
}

// AuthUser is the resolved identity exposed to callers once a session exists:
// the authenticated user merged with its profile and department name.
type AuthUser struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name"`
	Role           string  `json:"role"`
	DepartmentID   *string `json:"department_id"`
	DepartmentName *string `json:"department_name"`
}

// IsAdmin reports whether the resolved user carries the admin role.
func (u *AuthUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SessionUser is the minimal identity stored in a session envelope.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the persisted session envelope. Expires is epoch milliseconds.
type Session struct {
	User    SessionUser `json:"user"`
	Expires int64       `json:"expires"`
}
