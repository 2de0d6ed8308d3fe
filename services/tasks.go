package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"projecthub/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NewTask struct {
	ProjectID       uint
	Deskripsi       string
	Deadline        time.Time
	PenanggungJawab string
}

type Tasks struct {
	db     *gorm.DB
	access *Access
	log    *zap.Logger
}

func NewTasks(db *gorm.DB, access *Access, log *zap.Logger) *Tasks {
	return &Tasks{db: db, access: access, log: log}
}

func (s *Tasks) Create(ctx context.Context, requesterID uint, in NewTask) (*models.Task, error) {
	if err := s.access.RequireMember(ctx, requesterID, in.ProjectID, ErrNotAMember); err != nil {
		return nil, err
	}

	task := models.Task{
		Deskripsi:       in.Deskripsi,
		Deadline:        in.Deadline,
		PenanggungJawab: strings.TrimSpace(in.PenanggungJawab),
		IsFinish:        false,
		ProjectID:       in.ProjectID,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.Info("task created", zap.Uint("task_id", task.ID), zap.Uint("project_id", task.ProjectID))
	return &task, nil
}

func (s *Tasks) Update(ctx context.Context, requesterID, taskID uint, patch models.TaskPatch) (*models.Task, error) {
	if patch.Empty() {
		return nil, validationErr("at least one field is required")
	}

	task, err := s.authorized(ctx, requesterID, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(task).Updates(patch.Columns()).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if err := s.db.WithContext(ctx).First(task, taskID).Error; err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return task, nil
}

func (s *Tasks) Delete(ctx context.Context, requesterID, taskID uint) error {
	task, err := s.authorized(ctx, requesterID, taskID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(task).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.log.Info("task deleted", zap.Uint("task_id", taskID), zap.Uint("project_id", task.ProjectID))
	return nil
}

// List returns all tasks of the project regardless of assignee.
func (s *Tasks) List(ctx context.Context, requesterID, projectID uint) ([]models.Task, error) {
	if err := s.access.RequireMember(ctx, requesterID, projectID, ErrNotAMember); err != nil {
		return nil, err
	}

	tasks := []models.Task{}
	if err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Tasks) Get(ctx context.Context, requesterID, taskID uint) (*models.Task, error) {
	return s.authorized(ctx, requesterID, taskID)
}

// authorized loads the task and checks the requester belongs to its project.
func (s *Tasks) authorized(ctx context.Context, requesterID, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("task")
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if err := s.access.RequireMember(ctx, requesterID, task.ProjectID, ErrNotAMember); err != nil {
		return nil, err
	}
	return &task, nil
}
