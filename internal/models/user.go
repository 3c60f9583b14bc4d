package models

import "time"

// Role is the local authorization role of a user.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// User mirrors an identity from the hosted auth provider. Rows are created on
// first sight and keyed by ExternalID.
type User struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"uniqueIndex;not null" json:"-"` // provider subject
	Name       string `gorm:"not null;default:''" json:"name"`
	Email      string `gorm:"not null;default:''" json:"email"`
	Role       Role   `gorm:"not null;default:member" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
