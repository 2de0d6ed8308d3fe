package models

import (
	"time"
)

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	NamaProject string    `gorm:"not null;size:200" json:"nama_project"`
	Deskripsi   string    `gorm:"type:text;not null" json:"deskripsi"`
	Object      string    `gorm:"type:text;not null" json:"object"`
	IsFinish    bool      `gorm:"default:false" json:"is_finish"`
	InviteCode  string    `gorm:"uniqueIndex;not null;size:64" json:"invite_code"`

	Collaborators []ProjectCollaborator `gorm:"foreignKey:ProjectID" json:"project_collaborator,omitempty"`
	Tasks         []Task                `gorm:"foreignKey:ProjectID" json:"task,omitempty"`
	Proposal      *Proposal             `gorm:"foreignKey:ProjectID" json:"proposal,omitempty"`
}

// ProjectPatch carries the optional fields of a project update. Nil means unchanged.
type ProjectPatch struct {
	NamaProject *string
	Deskripsi   *string
	Object      *string
	IsFinish    *bool
}

func (p ProjectPatch) Empty() bool {
	return p.NamaProject == nil && p.Deskripsi == nil && p.Object == nil && p.IsFinish == nil
}

// Columns returns the column/value map for a gorm Updates call.
func (p ProjectPatch) Columns() map[string]interface{} {
	updates := make(map[string]interface{})
	if p.NamaProject != nil {
		updates["nama_project"] = *p.NamaProject
	}
	if p.Deskripsi != nil {
		updates["deskripsi"] = *p.Deskripsi
	}
	if p.Object != nil {
		updates["object"] = *p.Object
	}
	if p.IsFinish != nil {
		updates["is_finish"] = *p.IsFinish
	}
	return updates
}
