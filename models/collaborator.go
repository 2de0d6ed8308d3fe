package models

import (
	"encoding/json"
	"time"
)

type CollaboratorStatus string

const (
	CollaboratorPending   CollaboratorStatus = "PENDING"
	CollaboratorCompleted CollaboratorStatus = "COMPLETED"
)

// ProjectCollaborator is the membership row linking a user to a project.
// At most one row exists per (user, project); the creator's row has IsOwner set.
type ProjectCollaborator struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	UserID    uint               `gorm:"not null;uniqueIndex:idx_collaborator_user_project" json:"user_id"`
	ProjectID uint               `gorm:"not null;uniqueIndex:idx_collaborator_user_project;index" json:"project_id"`
	IsOwner   bool               `gorm:"not null;default:false" json:"is_owner"`
	Status    CollaboratorStatus `gorm:"not null;size:20" json:"status"`

	User    *User    `gorm:"foreignKey:UserID" json:"User,omitempty"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"-"`
}

func (ProjectCollaborator) TableName() string {
	return "project_collaborators"
}

// MarshalJSON exposes only the public identity of the linked user.
func (c ProjectCollaborator) MarshalJSON() ([]byte, error) {
	type row ProjectCollaborator
	out := struct {
		row
		User *UserSummary `json:"User,omitempty"`
	}{row: row(c)}
	if c.User != nil {
		summary := c.User.Summary()
		out.User = &summary
	}
	return json.Marshal(out)
}
