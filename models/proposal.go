package models

import (
	"time"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "PENDING"
	ProposalApproved ProposalStatus = "APPROVED"
	ProposalRejected ProposalStatus = "REJECTED"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalPending, ProposalApproved, ProposalRejected:
		return true
	}
	return false
}

type Proposal struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Judul     string         `gorm:"not null;size:255" json:"judul"`
	Deskripsi string         `gorm:"type:text" json:"deskripsi"`
	FileURL   string         `gorm:"not null;size:500" json:"file_url"`
	Status    ProposalStatus `gorm:"not null;size:20;index" json:"status"`
	ProjectID uint           `gorm:"not null;uniqueIndex" json:"project_id"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"-"`
}
