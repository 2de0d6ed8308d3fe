package handlers

import (
	"net/http"

	"projecthub/middleware"
	"projecthub/models"
	"projecthub/services"

	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects *services.Projects
	log      *zap.Logger
}

func NewProjectHandler(projects *services.Projects, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, log: log}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	project, err := h.projects.Create(r.Context(), user.ID, services.NewProject{
		NamaProject:   req.NamaProject,
		Deskripsi:     req.Deskripsi,
		Object:        req.Object,
		Collaborators: req.Collaborators,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, "Project created successfully", project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	projects, err := h.projects.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Projects retrieved successfully", projects)
}

func (h *ProjectHandler) Details(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	project, err := h.projects.Details(r.Context(), user.ID, projectID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Project details retrieved successfully", project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	project, err := h.projects.Update(r.Context(), user.ID, projectID, models.ProjectPatch{
		NamaProject: req.NamaProject,
		Deskripsi:   req.Deskripsi,
		Object:      req.Object,
		IsFinish:    req.IsFinish,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Project updated successfully", project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.projects.Delete(r.Context(), user.ID, projectID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Project deleted successfully", nil)
}

func (h *ProjectHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req joinProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	project, err := h.projects.JoinByInviteCode(r.Context(), user.ID, req.InviteCode)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Joined project successfully", project)
}

func (h *ProjectHandler) AddCollaborators(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req addCollaboratorsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	result, err := h.projects.AddCollaborators(r.Context(), user.ID, uint(req.ProjectID), req.Collaborators)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Collaborators processed", result)
}
