package models

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Nama         string    `gorm:"not null;size:200" json:"nama"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Photo        *string   `gorm:"size:500" json:"photo"`
	Role         Role      `gorm:"not null;size:20;default:USER" json:"role"`

	Collaborations []ProjectCollaborator `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) CanReviewProposals() bool {
	return u.IsAdmin()
}

// UserSummary is the public identity embedded in other responses.
type UserSummary struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Nama  string `json:"nama"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Nama: u.Nama}
}
