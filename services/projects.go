package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"projecthub/database"
	"projecthub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InviteNotifier is told about users who were added to a project by someone else.
type InviteNotifier interface {
	NotifyInvited(ctx context.Context, invitee models.User, project models.Project) error
}

type NewProject struct {
	NamaProject   string
	Deskripsi     string
	Object        string
	Collaborators []string
}

// AddCollaboratorsResult reports which emails became collaborators and which did not
// resolve to a user. Emails of existing collaborators appear in neither list.
type AddCollaboratorsResult struct {
	Added  []string `json:"added"`
	Failed []string `json:"failed"`
}

type Projects struct {
	db       *gorm.DB
	access   *Access
	notifier InviteNotifier
	log      *zap.Logger
}

func NewProjects(db *gorm.DB, access *Access, notifier InviteNotifier, log *zap.Logger) *Projects {
	return &Projects{db: db, access: access, notifier: notifier, log: log}
}

// Create stores the project, its owner row and a PENDING row for every email that
// resolves to a registered user, all in one transaction.
func (s *Projects) Create(ctx context.Context, ownerID uint, in NewProject) (*models.Project, error) {
	project := models.Project{
		NamaProject: strings.TrimSpace(in.NamaProject),
		Deskripsi:   in.Deskripsi,
		Object:      in.Object,
		IsFinish:    false,
		InviteCode:  uuid.NewString(),
	}

	var invited []models.User
	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		owner := models.ProjectCollaborator{
			UserID:    ownerID,
			ProjectID: project.ID,
			IsOwner:   true,
			Status:    models.CollaboratorCompleted,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return fmt.Errorf("create owner row: %w", err)
		}

		for _, email := range uniqueEmails(in.Collaborators) {
			user, err := findUserByEmail(tx, email)
			if err != nil {
				return err
			}
			if user == nil {
				s.log.Info("collaborator email not registered, skipping",
					zap.Uint("project_id", project.ID), zap.String("email", email))
				continue
			}
			if user.ID == ownerID {
				continue
			}

			row := models.ProjectCollaborator{
				UserID:    user.ID,
				ProjectID: project.ID,
				IsOwner:   false,
				Status:    models.CollaboratorPending,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create collaborator row: %w", err)
			}
			invited = append(invited, *user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("project created",
		zap.Uint("project_id", project.ID), zap.Uint("owner_id", ownerID), zap.Int("invited", len(invited)))
	s.notifyInvited(ctx, invited, project)
	return &project, nil
}

// JoinByInviteCode adds the user as a PENDING collaborator of the matching project.
func (s *Projects) JoinByInviteCode(ctx context.Context, userID uint, inviteCode string) (*models.Project, error) {
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, validationErr("invite_code is required")
	}

	var project models.Project
	if err := s.db.WithContext(ctx).Where("invite_code = ?", inviteCode).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("find project by invite code: %w", err)
	}

	role, err := s.access.RoleFor(ctx, userID, project.ID)
	if err != nil {
		return nil, err
	}
	if role.IsMember() {
		return nil, ErrAlreadyCollaborator
	}

	row := models.ProjectCollaborator{
		UserID:    userID,
		ProjectID: project.ID,
		IsOwner:   false,
		Status:    models.CollaboratorPending,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrAlreadyCollaborator
		}
		return nil, fmt.Errorf("join project: %w", err)
	}

	s.log.Info("user joined project by invite code", zap.Uint("project_id", project.ID), zap.Uint("user_id", userID))
	return &project, nil
}

// AddCollaborators lets the owner add registered users directly as COMPLETED
// collaborators. The inserts of one call commit or roll back together.
func (s *Projects) AddCollaborators(ctx context.Context, requesterID, projectID uint, emails []string) (*AddCollaboratorsResult, error) {
	if len(emails) == 0 {
		return nil, validationErr("collaborators must contain at least one email")
	}
	if err := s.access.RequireOwner(ctx, requesterID, projectID); err != nil {
		return nil, err
	}

	result := &AddCollaboratorsResult{Added: []string{}, Failed: []string{}}
	var project models.Project
	var invited []models.User

	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&project, projectID).Error; err != nil {
			return fmt.Errorf("load project: %w", err)
		}

		for _, email := range uniqueEmails(emails) {
			user, err := findUserByEmail(tx, email)
			if err != nil {
				return err
			}
			if user == nil {
				s.log.Warn("collaborator email not registered", zap.Uint("project_id", projectID), zap.String("email", email))
				result.Failed = append(result.Failed, email)
				continue
			}

			role, err := roleFor(ctx, tx, user.ID, projectID)
			if err != nil {
				return err
			}
			if role.IsMember() {
				s.log.Debug("user is already a collaborator", zap.Uint("project_id", projectID), zap.String("email", email))
				continue
			}

			row := models.ProjectCollaborator{
				UserID:    user.ID,
				ProjectID: projectID,
				IsOwner:   false,
				Status:    models.CollaboratorCompleted,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create collaborator row: %w", err)
			}
			result.Added = append(result.Added, email)
			invited = append(invited, *user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyInvited(ctx, invited, project)
	return result, nil
}

// List returns every project the user has a membership row on, newest first.
func (s *Projects) List(ctx context.Context, userID uint) ([]models.Project, error) {
	projects := []models.Project{}
	err := s.db.WithContext(ctx).
		Joins("JOIN project_collaborators pc ON pc.project_id = projects.id").
		Where("pc.user_id = ?", userID).
		Order("projects.created_at DESC").
		Order("projects.id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Details returns the project with collaborators (and their users), tasks and proposal.
func (s *Projects) Details(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	if err := s.ensureExists(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.access.RequireMember(ctx, userID, projectID, ErrNotACollaborator); err != nil {
		return nil, err
	}

	var project models.Project
	err := s.db.WithContext(ctx).
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Collaborators.User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "email", "nama") }).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Proposal").
		First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("project")
		}
		return nil, fmt.Errorf("load project details: %w", err)
	}
	return &project, nil
}

func (s *Projects) Update(ctx context.Context, requesterID, projectID uint, patch models.ProjectPatch) (*models.Project, error) {
	if patch.Empty() {
		return nil, validationErr("at least one field is required")
	}
	if err := s.access.RequireOwner(ctx, requesterID, projectID); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("project")
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&project).Updates(patch.Columns()).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if err := s.db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		return nil, fmt.Errorf("reload project: %w", err)
	}
	return &project, nil
}

// Delete removes the project together with its tasks, proposal and collaborator rows.
func (s *Projects) Delete(ctx context.Context, requesterID, projectID uint) error {
	if err := s.access.RequireOwner(ctx, requesterID, projectID); err != nil {
		return err
	}

	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Proposal{}).Error; err != nil {
			return fmt.Errorf("delete proposal: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectCollaborator{}).Error; err != nil {
			return fmt.Errorf("delete collaborators: %w", err)
		}
		if err := tx.Delete(&models.Project{}, projectID).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("project deleted", zap.Uint("project_id", projectID), zap.Uint("owner_id", requesterID))
	return nil
}

func (s *Projects) ensureExists(ctx context.Context, projectID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	if count == 0 {
		return notFound("project")
	}
	return nil
}

func (s *Projects) notifyInvited(ctx context.Context, users []models.User, project models.Project) {
	if s.notifier == nil {
		return
	}
	for _, user := range users {
		if err := s.notifier.NotifyInvited(ctx, user, project); err != nil {
			s.log.Warn("invite notification failed",
				zap.Uint("project_id", project.ID), zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
}

// findUserByEmail returns nil without error when no user has the email.
func findUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func uniqueEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, raw := range emails {
		email := NormalizeEmail(raw)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	return out
}
