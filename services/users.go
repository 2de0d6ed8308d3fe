package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"projecthub/database"
	"projecthub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// UserPatch carries the optional fields of a self-service profile edit.
type UserPatch struct {
	Nama     *string
	Email    *string
	Password *string
	Photo    *string
}

func (p UserPatch) Empty() bool {
	return p.Nama == nil && p.Email == nil && p.Password == nil && p.Photo == nil
}

type Users struct {
	db    *gorm.DB
	creds *Credentials
	log   *zap.Logger
}

func NewUsers(db *gorm.DB, creds *Credentials, log *zap.Logger) *Users {
	return &Users{db: db, creds: creds, log: log}
}

func (s *Users) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *Users) Update(ctx context.Context, userID uint, patch UserPatch) (*models.User, error) {
	if patch.Empty() {
		return nil, validationErr("no valid fields to update")
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if patch.Nama != nil {
		nama := strings.TrimSpace(*patch.Nama)
		if nama == "" {
			return nil, validationErr("nama must not be empty")
		}
		updates["nama"] = nama
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, validationErr("email must not be empty")
		}
		if email != user.Email {
			var count int64
			err := s.db.WithContext(ctx).Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&count).Error
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if count > 0 {
				return nil, ErrDuplicateEmail
			}
		}
		updates["email"] = email
	}

	if patch.Password != nil {
		if utf8.RuneCountInString(*patch.Password) < minPasswordLength {
			return nil, validationErr("password must be at least %d characters", minPasswordLength)
		}
		hashed, err := s.creds.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hashed
	}

	if patch.Photo != nil {
		updates["photo"] = *patch.Photo
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info("user profile updated", zap.Uint("user_id", user.ID))
	return s.Get(ctx, user.ID)
}
