package services

import (
	"context"
	"errors"
	"fmt"

	"projecthub/models"

	"gorm.io/gorm"
)

// ProjectRole is a user's standing on one project.
type ProjectRole int

const (
	RoleNone ProjectRole = iota
	RoleMember
	RoleOwner
)

func (r ProjectRole) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleMember:
		return "member"
	default:
		return "none"
	}
}

// IsMember is true for owners too.
func (r ProjectRole) IsMember() bool {
	return r >= RoleMember
}

// Access answers membership questions for every project-scoped operation.
type Access struct {
	db *gorm.DB
}

func NewAccess(db *gorm.DB) *Access {
	return &Access{db: db}
}

// RoleFor looks up the membership row of userID on projectID.
func (a *Access) RoleFor(ctx context.Context, userID, projectID uint) (ProjectRole, error) {
	return roleFor(ctx, a.db, userID, projectID)
}

// RequireMember returns denied unless the user holds any membership row.
func (a *Access) RequireMember(ctx context.Context, userID, projectID uint, denied error) error {
	role, err := a.RoleFor(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if !role.IsMember() {
		return denied
	}
	return nil
}

// RequireOwner returns ErrNotOwner unless the user holds the owner row.
func (a *Access) RequireOwner(ctx context.Context, userID, projectID uint) error {
	role, err := a.RoleFor(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if role != RoleOwner {
		return ErrNotOwner
	}
	return nil
}

// roleFor runs against db, which may be a transaction.
func roleFor(ctx context.Context, db *gorm.DB, userID, projectID uint) (ProjectRole, error) {
	var row models.ProjectCollaborator
	err := db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoleNone, nil
		}
		return RoleNone, fmt.Errorf("lookup membership: %w", err)
	}
	if row.IsOwner {
		return RoleOwner, nil
	}
	return RoleMember, nil
}
