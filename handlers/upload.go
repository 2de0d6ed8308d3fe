package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"projecthub/services"
	"projecthub/storage"

	"go.uber.org/zap"
)

var (
	imageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	pdfTypes = map[string]string{
		"application/pdf": ".pdf",
	}
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

type uploader struct {
	store    storage.Store
	maxBytes int64
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// parseMultipart caps the body at the upload limit and parses the form.
func (u *uploader) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return u.tooLarge()
		}
		return &services.ValidationError{Message: "invalid multipart form: " + err.Error()}
	}
	return nil
}

// formFile returns the uploaded file of field, or nil when the field is absent.
func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, &services.ValidationError{Message: "invalid " + field + " upload"}
	}
	return file, header, nil
}

type storedFile struct {
	Name string
	URL  string
}

// save stores file when its sniffed content type is one of allowed.
func (u *uploader) save(ctx context.Context, file multipart.File, header *multipart.FileHeader, allowed map[string]string, kind string) (storedFile, error) {
	defer file.Close()

	if header.Size > u.maxBytes {
		return storedFile{}, u.tooLarge()
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return storedFile{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := allowed[contentType]
	if !ok {
		return storedFile{}, &services.ValidationError{Message: "only " + kind + " files are allowed"}
	}

	name := storage.FileName(ext)
	body := io.MultiReader(bytes.NewReader(head), file)
	url, err := u.store.Save(ctx, name, body, header.Size, contentType)
	if err != nil {
		return storedFile{}, fmt.Errorf("store upload: %w", err)
	}
	return storedFile{Name: name, URL: url}, nil
}

// discard removes a stored file whose request failed after the upload.
func (u *uploader) discard(ctx context.Context, f storedFile, log *zap.Logger) {
	if err := u.store.Delete(ctx, f.Name); err != nil {
		log.Warn("failed to remove orphaned upload", zap.String("file", f.Name), zap.Error(err))
	}
}

func (u *uploader) tooLarge() error {
	return &services.ValidationError{Message: fmt.Sprintf("file exceeds the %dMB limit", u.maxBytes>>20)}
}
