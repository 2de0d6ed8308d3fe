package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"projecthub/database"
	"projecthub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NewProposal struct {
	ProjectID uint
	Judul     string
	Deskripsi string
	FileURL   string
}

type Proposals struct {
	db     *gorm.DB
	access *Access
	log    *zap.Logger
}

func NewProposals(db *gorm.DB, access *Access, log *zap.Logger) *Proposals {
	return &Proposals{db: db, access: access, log: log}
}

// Create stores the single proposal a project may have, with status PENDING.
func (s *Proposals) Create(ctx context.Context, requesterID uint, in NewProposal) (*models.Proposal, error) {
	if err := s.access.RequireMember(ctx, requesterID, in.ProjectID, ErrForbidden); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return nil, validationErr("proposal file is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Proposal{}).Where("project_id = ?", in.ProjectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check proposal: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateProposal
	}

	proposal := models.Proposal{
		Judul:     strings.TrimSpace(in.Judul),
		Deskripsi: in.Deskripsi,
		FileURL:   in.FileURL,
		Status:    models.ProposalPending,
		ProjectID: in.ProjectID,
	}
	if err := s.db.WithContext(ctx).Create(&proposal).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrDuplicateProposal
		}
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	s.log.Info("proposal created", zap.Uint("proposal_id", proposal.ID), zap.Uint("project_id", proposal.ProjectID))
	return &proposal, nil
}

// SetStatus changes the proposal status. Any of the three statuses may be set from
// any current status.
func (s *Proposals) SetStatus(ctx context.Context, requester *models.User, projectID uint, status models.ProposalStatus) (*models.Proposal, error) {
	if !requester.CanReviewProposals() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, validationErr("status must be one of PENDING, APPROVED, REJECTED")
	}

	proposal, err := s.byProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(proposal).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update proposal status: %w", err)
	}
	proposal.Status = status

	s.log.Info("proposal status updated",
		zap.Uint("proposal_id", proposal.ID), zap.String("status", string(status)), zap.Uint("admin_id", requester.ID))
	return proposal, nil
}

func (s *Proposals) GetForProject(ctx context.Context, requesterID, projectID uint) (*models.Proposal, error) {
	if err := s.access.RequireMember(ctx, requesterID, projectID, ErrForbidden); err != nil {
		return nil, err
	}
	return s.byProject(ctx, projectID)
}

// ListForUser returns the proposals of every project the user collaborates on.
// An empty result is reported as ErrNotFound.
func (s *Proposals) ListForUser(ctx context.Context, userID uint) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := s.db.WithContext(ctx).
		Joins("JOIN project_collaborators pc ON pc.project_id = proposals.project_id").
		Where("pc.user_id = ?", userID).
		Order("proposals.id").
		Find(&proposals).Error
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	if len(proposals) == 0 {
		return nil, notFound("proposals")
	}
	return proposals, nil
}

// Count returns the number of proposals with the given status, or of all proposals
// when status is empty.
func (s *Proposals) Count(ctx context.Context, requester *models.User, status models.ProposalStatus) (int64, error) {
	if !requester.CanReviewProposals() {
		return 0, ErrForbidden
	}

	query := s.db.WithContext(ctx).Model(&models.Proposal{})
	if status != "" {
		if !status.Valid() {
			return 0, validationErr("status must be one of PENDING, APPROVED, REJECTED")
		}
		query = query.Where("status = ?", status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count proposals: %w", err)
	}
	return count, nil
}

func (s *Proposals) byProject(ctx context.Context, projectID uint) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("proposal")
		}
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return &proposal, nil
}
