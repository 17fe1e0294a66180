package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxAttachments is the maximum number of files a tarea may reference.
const MaxAttachments = 3

// ExpiryWindow is how long a tarea lives before the store's TTL reaper
// removes it. Set once at creation, never read back by the application.
const ExpiryWindow = 30 * 24 * time.Hour

// Common validation errors for Tarea
var (
	ErrEmptyTareaID        = errors.New("tarea ID cannot be empty")
	ErrTooManyAttachments  = errors.New("tarea cannot reference more than 3 files")
	ErrDuplicateAttachment = errors.New("tarea references the same file more than once")
	ErrEmptyAttachmentName = errors.New("attachment name cannot be empty")
)

// Tarea represents a task record owning zero to three file attachments.
// The attachment bytes live in the object store; FileNames holds the
// object keys in upload order.
type Tarea struct {
	ID          string     `json:"tarea_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Done        bool       `json:"todo"`
	DueAt       *time.Time `json:"todoDate,omitempty"`
	FileNames   []string   `json:"fileNames"`
	ExpiresAt   int64      `json:"ttl"`
}

// NewTarea creates a new Tarea with a freshly minted ID, Done set to
// false, and the TTL expiry stamped at now + ExpiryWindow.
// Returns an error if validation fails.
func NewTarea(title, description string, dueAt *time.Time, fileNames []string) (*Tarea, error) {
	t := &Tarea{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Done:        false,
		DueAt:       dueAt,
		FileNames:   fileNames,
		ExpiresAt:   time.Now().UTC().Add(ExpiryWindow).Unix(),
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Validate checks the Tarea's invariants. It must pass before every
// persist, so an over-limit or duplicated attachment set never reaches
// the store.
func (t *Tarea) Validate() error {
	if t.ID == "" {
		return ErrEmptyTareaID
	}

	if err := ValidateFileNames(t.FileNames); err != nil {
		return err
	}

	return nil
}

// ValidateFileNames checks an attachment name set against the
// cardinality and uniqueness invariants.
func ValidateFileNames(names []string) error {
	if len(names) > MaxAttachments {
		return ErrTooManyAttachments
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return ErrEmptyAttachmentName
		}
		if _, dup := seen[name]; dup {
			return ErrDuplicateAttachment
		}
		seen[name] = struct{}{}
	}

	return nil
}

// HasFile reports whether name is a member of the tarea's attachment set.
func (t *Tarea) HasFile(name string) bool {
	for _, f := range t.FileNames {
		if f == name {
			return true
		}
	}
	return false
}
