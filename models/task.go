package models

import (
	"time"
)

type Task struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Deskripsi       string    `gorm:"type:text;not null" json:"deskripsi"`
	Deadline        time.Time `gorm:"not null" json:"deadline"`
	PenanggungJawab string    `gorm:"not null;size:200" json:"penanggung_jawab"`
	IsFinish        bool      `gorm:"default:false" json:"is_finish"`
	ProjectID       uint      `gorm:"not null;index" json:"project_id"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"-"`
}

type TaskPatch struct {
	Deskripsi       *string
	Deadline        *time.Time
	PenanggungJawab *string
	IsFinish        *bool
}

func (p TaskPatch) Empty() bool {
	return p.Deskripsi == nil && p.Deadline == nil && p.PenanggungJawab == nil && p.IsFinish == nil
}

func (p TaskPatch) Columns() map[string]interface{} {
	updates := make(map[string]interface{})
	if p.Deskripsi != nil {
		updates["deskripsi"] = *p.Deskripsi
	}
	if p.Deadline != nil {
		updates["deadline"] = *p.Deadline
	}
	if p.PenanggungJawab != nil {
		updates["penanggung_jawab"] = *p.PenanggungJawab
	}
	if p.IsFinish != nil {
		updates["is_finish"] = *p.IsFinish
	}
	return updates
}
