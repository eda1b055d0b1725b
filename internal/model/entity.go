package model

import "time"

// User is an account. UID is the opaque scoping key for all of a user's entries.
type User struct {
	UID           string    `gorm:"primaryKey;size:64" json:"uid"`
	Email         string    `gorm:"uniqueIndex;size:255" json:"email"`
	Password      string    `json:"-"`
	Name          string    `json:"name"`
	Role          string    `gorm:"size:32;default:member" json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RoleCaregiver may read other users' entries through the uid override.
const RoleCaregiver = "caregiver"

func (User) TableName() string { return "users" }
