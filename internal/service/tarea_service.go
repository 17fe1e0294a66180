package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/events"
	"github.com/phrazzld/tarea-api/internal/redact"
	"github.com/phrazzld/tarea-api/internal/store"
)

// Upload is a decoded file from a multipart request. The API layer has
// already enforced the size and MIME-type limits; the service treats
// the content as opaque bytes.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// CreateInput carries everything needed to create a tarea.
type CreateInput struct {
	Title       string
	Description string
	DueAt       *time.Time
	Uploads     []Upload
}

// UpdateInput carries a partial update. Nil field pointers mean "keep
// the previous value". KeepFiles is the client-declared set of existing
// attachments to retain; anything existing but not listed is deleted.
type UpdateInput struct {
	Title       *string
	Description *string
	Done        *bool
	DueAt       *time.Time
	KeepFiles   []string
	Uploads     []Upload
}

// TareaService provides the tarea lifecycle operations.
type TareaService interface {
	// List returns every tarea. Unbounded; fine at small scale only.
	List(ctx context.Context) ([]*domain.Tarea, error)

	// ListPage returns one page of tareas plus a continuation cursor.
	ListPage(ctx context.Context, cursor string, limit int32) ([]*domain.Tarea, string, error)

	// Create mints an ID, uploads the attachments tagged with it, and
	// persists the new record.
	Create(ctx context.Context, in CreateInput) (*domain.Tarea, error)

	// Get retrieves one tarea by ID.
	Get(ctx context.Context, id string) (*domain.Tarea, error)

	// ListFiles returns the tarea's attachment names.
	ListFiles(ctx context.Context, id string) ([]string, error)

	// Update reconciles the attachment set and overwrites the changed
	// fields, preserving any field absent from the input.
	Update(ctx context.Context, id string, in UpdateInput) (*domain.Tarea, error)

	// DownloadURL issues a time-limited access URL for one attachment
	// and bumps its advisory download counter.
	DownloadURL(ctx context.Context, id, filename string) (string, error)

	// Delete removes the tarea record and its attachment objects.
	// Idempotent: deleting an absent ID succeeds.
	Delete(ctx context.Context, id string) error
}

// tareaService implements TareaService.
type tareaService struct {
	tareas   store.TareaStore
	objects  store.ObjectStore
	notifier events.Notifier
	logger   *slog.Logger
}

// NewTareaService creates a TareaService over the given gateways.
func NewTareaService(
	tareas store.TareaStore,
	objects store.ObjectStore,
	notifier events.Notifier,
	logger *slog.Logger,
) TareaService {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TareaService")
	}

	return &tareaService{
		tareas:   tareas,
		objects:  objects,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "tarea_service")),
	}
}

// List returns every tarea in the table.
func (s *tareaService) List(ctx context.Context) ([]*domain.Tarea, error) {
	tareas, err := s.tareas.ScanAll(ctx)
	if err != nil {
		return nil, NewTareaServiceError("list", "failed to scan tareas", err)
	}
	return tareas, nil
}

// ListPage returns one page of tareas plus a continuation cursor.
func (s *tareaService) ListPage(ctx context.Context, cursor string, limit int32) ([]*domain.Tarea, string, error) {
	tareas, next, err := s.tareas.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", NewTareaServiceError("list", "failed to list tareas", err)
	}
	return tareas, next, nil
}

// Create mints the ID first so every uploaded object can be tagged with
// its owner before the record exists. If persisting the record fails
// the uploaded objects are orphaned; there is no cross-store rollback.
func (s *tareaService) Create(ctx context.Context, in CreateInput) (*domain.Tarea, error) {
	names := uploadNames(in.Uploads)

	// Validation precedes every side effect.
	if err := domain.ValidateFileNames(names); err != nil {
		return nil, err
	}

	tarea, err := domain.NewTarea(in.Title, in.Description, in.DueAt, names)
	if err != nil {
		return nil, err
	}

	if err := s.uploadAll(ctx, tarea.ID, in.Uploads); err != nil {
		return nil, NewTareaServiceError("create", "failed to upload attachment", err)
	}

	if err := s.tareas.Put(ctx, tarea); err != nil {
		return nil, NewTareaServiceError("create", "failed to persist tarea", err)
	}

	s.notify(ctx, events.TareaCreated(tarea.ID))

	s.logger.Debug("created tarea",
		slog.String("tarea_id", tarea.ID),
		slog.Int("attachments", len(names)))

	return tarea, nil
}

// Get retrieves one tarea by ID.
func (s *tareaService) Get(ctx context.Context, id string) (*domain.Tarea, error) {
	tarea, err := s.tareas.GetByID(ctx, id)
	if err != nil {
		return nil, NewTareaServiceError("get", "failed to read tarea", err)
	}
	return tarea, nil
}

// ListFiles returns the tarea's attachment names.
func (s *tareaService) ListFiles(ctx context.Context, id string) ([]string, error) {
	tarea, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if tarea.FileNames == nil {
		return []string{}, nil
	}
	return tarea.FileNames, nil
}

// Update runs in a fixed order: reconcile (rejecting over-limit sets
// before any mutation), upload new objects, delete removed objects,
// persist, notify. The delete phase is a barrier: if any removal fails
// the record is not persisted, so the stored record never references
// fewer objects than the reconciler decided on. The converse window
// remains: some objects may already be gone while the old record still
// lists them.
func (s *tareaService) Update(ctx context.Context, id string, in UpdateInput) (*domain.Tarea, error) {
	existing, err := s.tareas.GetByID(ctx, id)
	if err != nil {
		return nil, NewTareaServiceError("update", "failed to read tarea", err)
	}

	delta, err := reconcileAttachments(existing.FileNames, in.KeepFiles, uploadNames(in.Uploads))
	if err != nil {
		return nil, err
	}

	if err := s.uploadAll(ctx, id, in.Uploads); err != nil {
		return nil, NewTareaServiceError("update", "failed to upload attachment", err)
	}

	if err := deleteObjects(ctx, s.objects, delta.toDelete); err != nil {
		return nil, NewTareaServiceError("update", "failed to delete removed attachments", err)
	}

	updated := *existing
	updated.FileNames = delta.final
	if in.Title != nil {
		updated.Title = *in.Title
	}
	if in.Description != nil {
		updated.Description = *in.Description
	}
	if in.Done != nil {
		updated.Done = *in.Done
	}
	if in.DueAt != nil {
		updated.DueAt = in.DueAt
	}

	if err := s.tareas.Put(ctx, &updated); err != nil {
		return nil, NewTareaServiceError("update", "failed to persist tarea", err)
	}

	s.notify(ctx, events.TareaUpdated(id))

	s.logger.Debug("updated tarea",
		slog.String("tarea_id", id),
		slog.Int("deleted_attachments", len(delta.toDelete)),
		slog.Int("attachments", len(delta.final)))

	return &updated, nil
}

// DownloadURL is a four-step sequential chain; any failure
// short-circuits the rest. The counter increment happens after the URL
// is issued, so a vanished object is caught even mid-flight.
func (s *tareaService) DownloadURL(ctx context.Context, id, filename string) (string, error) {
	tarea, err := s.tareas.GetByID(ctx, id)
	if err != nil {
		return "", NewTareaServiceError("download", "failed to read tarea", err)
	}

	if !tarea.HasFile(filename) {
		return "", store.ErrFileNotFound
	}

	url, err := s.objects.PresignGet(ctx, filename, store.PresignTTL)
	if err != nil {
		return "", NewTareaServiceError("download", "failed to issue access URL", err)
	}

	count, err := s.objects.IncrementDownloadCount(ctx, filename)
	if err != nil {
		return "", NewTareaServiceError("download", "failed to increment download count", err)
	}

	s.logger.Debug("issued download URL",
		slog.String("tarea_id", id),
		slog.String("filename", filename),
		slog.String("downloads", strconv.Itoa(count)))

	return url, nil
}

// Delete cascades to the attachment objects before removing the record,
// so the bucket never holds objects no record references. Deleting an
// absent ID succeeds without a notification.
func (s *tareaService) Delete(ctx context.Context, id string) error {
	tarea, err := s.tareas.GetByID(ctx, id)
	if errors.Is(err, store.ErrTareaNotFound) {
		return nil
	}
	if err != nil {
		return NewTareaServiceError("delete", "failed to read tarea", err)
	}

	if err := deleteObjects(ctx, s.objects, tarea.FileNames); err != nil {
		return NewTareaServiceError("delete", "failed to delete attachments", err)
	}

	if err := s.tareas.Delete(ctx, id); err != nil {
		return NewTareaServiceError("delete", "failed to delete tarea", err)
	}

	s.notify(ctx, events.TareaDeleted(id))

	return nil
}

// uploadAll pushes each decoded file to the object store, tagged with
// the owning tarea and a zeroed download counter.
func (s *tareaService) uploadAll(ctx context.Context, tareaID string, uploads []Upload) error {
	for _, u := range uploads {
		meta := map[string]string{
			store.MetaTareaID:       tareaID,
			store.MetaDownloadCount: "0",
			store.MetaOriginalName:  u.Name,
		}
		if err := s.objects.Put(ctx, u.Name, bytes.NewReader(u.Data), u.ContentType, meta); err != nil {
			return err
		}
	}
	return nil
}

// notify publishes best-effort: a failed publish is logged and
// swallowed. The mutation beneath it already committed, so the client
// response must not depend on the topic being reachable.
func (s *tareaService) notify(ctx context.Context, message string) {
	if err := s.notifier.Publish(ctx, message); err != nil {
		s.logger.Error("failed to publish mutation event",
			slog.String("error", redact.Error(err)))
	}
}

func uploadNames(uploads []Upload) []string {
	names := make([]string, 0, len(uploads))
	for _, u := range uploads {
		names = append(names, u.Name)
	}
	return names
}
