// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the iforum application. Email is the login
// identity; Username is optional display text.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `json:"username"`
	Email       string    `gorm:"unique;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	IsStaff     bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Profile *AuthorProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	// Posts reference the user with RESTRICT: a user cannot be deleted while
	// posts still point at them.
	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// AuthorProfile is a one-to-one extension of User holding a biography. A user
// can exist without one.
type AuthorProfile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio       string    `gorm:"type:text" json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
