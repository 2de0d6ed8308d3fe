package handlers

import (
	"net/http"

	"projecthub/middleware"
	"projecthub/models"
	"projecthub/services"

	"go.uber.org/zap"
)

type AuthHandler struct {
	creds  *services.Credentials
	users  *services.Users
	upload *uploader
	log    *zap.Logger
}

func NewAuthHandler(creds *services.Credentials, users *services.Users, upload *uploader, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		creds:  creds,
		users:  users,
		upload: upload,
		log:    log,
	}
}

type loginResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, err := h.creds.Register(r.Context(), req.Email, req.Nama, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, "User registered successfully", user.Summary())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, token, err := h.creds.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "Login successful", loginResponse{Token: token, User: user.Summary()})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, "User retrieved successfully", user)
}

// UpdateMe accepts either a JSON body or a multipart form with an optional photo.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req updateMeRequest
	var patch services.UserPatch
	var photo *storedFile

	if isMultipart(r) {
		if err := h.upload.parseMultipart(w, r); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		req.Nama = formValue(r, "nama")
		req.Email = formValue(r, "email")
		req.Password = formValue(r, "password")
		if err := validateStruct(&req); err != nil {
			writeError(w, r, h.log, err)
			return
		}

		file, header, err := formFile(r, "photo")
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		if file != nil {
			stored, err := h.upload.save(r.Context(), file, header, imageTypes, "image")
			if err != nil {
				writeError(w, r, h.log, err)
				return
			}
			photo = &stored
			patch.Photo = &stored.URL
		}
	} else if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	patch.Nama = req.Nama
	patch.Email = req.Email
	patch.Password = req.Password

	updated, err := h.users.Update(r.Context(), user.ID, patch)
	if err != nil {
		if photo != nil {
			h.upload.discard(r.Context(), *photo, h.log)
		}
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, "User updated successfully", updated)
}

// formValue returns nil when the form has no such field.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}
