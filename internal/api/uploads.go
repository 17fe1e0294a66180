package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/service"
)

// Upload limits. Enforced here, before the service sees the request, so
// the core can treat them as preconditions.
const (
	maxUploadFiles = domain.MaxAttachments
	maxFileSize    = 10 << 20 // 10MB per file

	// maxRequestSize bounds the whole body: three files plus form
	// overhead.
	maxRequestSize = maxUploadFiles*maxFileSize + 1<<20

	// multipartMemory is how much of the body stays in memory before
	// spilling to temp files.
	multipartMemory = 32 << 20

	uploadsField = "files"
)

// allowedMimeTypes is the upload allow-list: images and PDFs only.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"application/pdf": {},
}

// Upload decoding errors, mapped to fixed 400 messages in errors.go.
var (
	ErrTooManyUploadFiles = errors.New("request carries more than 3 files")
	ErrFileTypeNotAllowed = errors.New("upload file type not allowed")
	ErrFileTooLarge       = errors.New("upload file exceeds the size limit")
)

// tareaForm is the decoded mutation request body. Nil pointers mean the
// field was absent, which the update workflow treats as "keep the
// previous value".
type tareaForm struct {
	Title       *string
	Description *string
	Done        *bool
	DueAt       *time.Time
	FileNames   []string
	Uploads     []service.Upload
}

// decodeTareaForm decodes a create/update request. Multipart bodies may
// carry file uploads; JSON bodies may only change fields and declare
// the attachment keep-set.
func decodeTareaForm(r *http.Request) (*tareaForm, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return decodeMultipartForm(r)
	}
	return decodeJSONForm(r)
}

func decodeMultipartForm(r *http.Request) (*tareaForm, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}

	form := &tareaForm{}
	form.Title = formValue(r, "title")
	form.Description = formValue(r, "description")

	if raw := formValue(r, "todo"); raw != nil {
		done, err := strconv.ParseBool(*raw)
		if err != nil {
			return nil, err
		}
		form.Done = &done
	}

	if raw := formValue(r, "todoDate"); raw != nil {
		due, err := parseDueDate(*raw)
		if err != nil {
			return nil, err
		}
		form.DueAt = &due
	}

	form.FileNames = r.MultipartForm.Value["fileNames"]

	files := r.MultipartForm.File[uploadsField]
	if len(files) > maxUploadFiles {
		return nil, ErrTooManyUploadFiles
	}

	for _, header := range files {
		if header.Size > maxFileSize {
			return nil, ErrFileTooLarge
		}

		contentType := header.Header.Get("Content-Type")
		if _, ok := allowedMimeTypes[contentType]; !ok {
			return nil, ErrFileTypeNotAllowed
		}

		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return nil, err
		}

		form.Uploads = append(form.Uploads, service.Upload{
			Name:        header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	return form, nil
}

// jsonTareaRequest mirrors the original wire field names.
type jsonTareaRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Done        *bool    `json:"todo"`
	DueAt       *string  `json:"todoDate"`
	FileNames   []string `json:"fileNames"`
}

func decodeJSONForm(r *http.Request) (*tareaForm, error) {
	var req jsonTareaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}

	form := &tareaForm{
		Title:       req.Title,
		Description: req.Description,
		Done:        req.Done,
		FileNames:   req.FileNames,
	}

	if req.DueAt != nil {
		due, err := parseDueDate(*req.DueAt)
		if err != nil {
			return nil, err
		}
		form.DueAt = &due
	}

	return form, nil
}

// parseDueDate accepts RFC3339 timestamps or bare dates.
func parseDueDate(raw string) (time.Time, error) {
	if due, err := time.Parse(time.RFC3339, raw); err == nil {
		return due, nil
	}
	return time.Parse("2006-01-02", raw)
}

// formValue returns a pointer to the form field value, or nil when the
// field is absent. Distinguishing absent from empty keeps the partial
// update semantics.
func formValue(r *http.Request, field string) *string {
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
