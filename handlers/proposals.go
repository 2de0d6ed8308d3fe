package handlers

import (
	"net/http"
	"strings"

	"projecthub/middleware"
	"projecthub/models"
	"projecthub/services"

	"go.uber.org/zap"
)

type ProposalHandler struct {
	proposals *services.Proposals
	access    *services.Access
	upload    *uploader
	log       *zap.Logger
}

func NewProposalHandler(proposals *services.Proposals, access *services.Access, upload *uploader, log *zap.Logger) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, access: access, upload: upload, log: log}
}

type proposalCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Create takes a multipart form with judul, deskripsi and a PDF in the file_url field.
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projectID, err := pathID(r, "project_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if !isMultipart(r) {
		writeError(w, r, h.log, &services.ValidationError{Message: "Proposal file is required"})
		return
	}
	if err := h.upload.parseMultipart(w, r); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	file, header, err := formFile(r, "file_url")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if file == nil {
		writeError(w, r, h.log, &services.ValidationError{Message: "Proposal file is required"})
		return
	}

	// Outsiders must not be able to store files.
	if err := h.access.RequireMember(r.Context(), user.ID, projectID, services.ErrForbidden); err != nil {
		file.Close()
		writeError(w, r, h.log, err)
		return
	}

	stored, err := h.upload.save(r.Context(), file, header, pdfTypes, "PDF")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	proposal, err := h.proposals.Create(r.Context(), user.ID, services.NewProposal{
		ProjectID: projectID,
		Judul:     r.FormValue("judul"),
		Deskripsi: r.FormValue("deskripsi"),
		FileURL:   stored.URL,
	})
	if err != nil {
		h.upload.discard(r.Context(), stored, h.log)
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, "Proposal created successfully", proposal)
}

func (h *ProposalHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projectID, err := pathID(r, "project_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	var req proposalStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	status := models.ProposalStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	proposal, err := h.proposals.SetStatus(r.Context(), user, projectID, status)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Proposal status updated successfully", proposal)
}

func (h *ProposalHandler) GetForProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	projectID, err := pathID(r, "project_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	proposal, err := h.proposals.GetForProject(r.Context(), user.ID, projectID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Proposal retrieved successfully", proposal)
}

func (h *ProposalHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	proposals, err := h.proposals.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Proposals retrieved successfully", proposals)
}

func (h *ProposalHandler) Count(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))

	count, err := h.proposals.Count(r.Context(), user, models.ProposalStatus(status))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if status == "" {
		status = "ALL"
	}

	writeJSON(w, http.StatusOK, "Proposal count retrieved successfully", proposalCount{Status: status, Count: count})
}
