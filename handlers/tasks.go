package handlers

import (
	"net/http"
	"strings"

	"projecthub/middleware"
	"projecthub/models"
	"projecthub/services"

	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks *services.Tasks
	log   *zap.Logger
}

func NewTaskHandler(tasks *services.Tasks, log *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, services.NewTask{
		ProjectID:       uint(req.ProjectID),
		Deskripsi:       req.Deskripsi,
		Deadline:        deadline,
		PenanggungJawab: req.PenanggungJawab,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, "Task created successfully", task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	patch := models.TaskPatch{
		Deskripsi:       req.Deskripsi,
		IsFinish:        req.IsFinish,
		PenanggungJawab: trimmed(req.PenanggungJawab),
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		patch.Deadline = &deadline
	}

	task, err := h.tasks.Update(r.Context(), user.ID, taskID, patch)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Task updated successfully", task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), user.ID, taskID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	taskID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Task retrieved successfully", task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projectID, err := pathID(r, "project_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, projectID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Tasks retrieved successfully", tasks)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
