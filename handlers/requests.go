package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"projecthub/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Nama     string `json:"nama" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateMeRequest struct {
	Nama     *string `json:"nama" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
}

type createProjectRequest struct {
	NamaProject   string   `json:"nama_project" validate:"required,min=3"`
	Deskripsi     string   `json:"deskripsi" validate:"required,min=10"`
	Object        string   `json:"object" validate:"required"`
	Collaborators []string `json:"collaborators" validate:"omitempty,dive,email"`
}

type updateProjectRequest struct {
	NamaProject *string `json:"nama_project" validate:"omitempty,min=3"`
	Deskripsi   *string `json:"deskripsi" validate:"omitempty,min=10"`
	Object      *string `json:"object"`
	IsFinish    *bool   `json:"is_finish"`
}

type joinProjectRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

type addCollaboratorsRequest struct {
	ProjectID     flexID   `json:"project_id" validate:"required"`
	Collaborators []string `json:"collaborators" validate:"required,min=1,dive,email"`
}

type createTaskRequest struct {
	Deskripsi       string `json:"deskripsi" validate:"required,min=10"`
	Deadline        string `json:"deadline" validate:"required"`
	PenanggungJawab string `json:"penanggung_jawab" validate:"required"`
	ProjectID       flexID `json:"project_id" validate:"required"`
}

type updateTaskRequest struct {
	Deskripsi       *string `json:"deskripsi" validate:"omitempty,min=10"`
	Deadline        *string `json:"deadline"`
	IsFinish        *bool   `json:"is_finish"`
	PenanggungJawab *string `json:"penanggung_jawab" validate:"omitempty,min=1"`
}

type proposalStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// flexID accepts a positive integer id sent either as a JSON number or a string.
type flexID uint

func (id *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = flexID(v)
	return nil
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &services.ValidationError{Message: "request body is required"}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &services.ValidationError{Message: fmt.Sprintf("%s has the wrong type", typeErr.Field)}
		}
		return &services.ValidationError{Message: "invalid request body: " + err.Error()}
	}
	return validateStruct(dst)
}

func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &services.ValidationError{Message: err.Error()}
	}
	return &services.ValidationError{Message: fieldMessage(fieldErrs[0])}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, &services.ValidationError{Message: fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return uint(v), nil
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &services.ValidationError{Message: "deadline must be a date (YYYY-MM-DD) or RFC3339 timestamp"}
}
