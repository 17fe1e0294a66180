package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tarea-api/internal/api/shared"
	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/service"
)

// defaultPageLimit is used when a paged listing omits ?limit.
const defaultPageLimit = 25

// CreateTareaResponse confirms a creation with the minted ID.
type CreateTareaResponse struct {
	Message string `json:"message"`
	TareaID string `json:"tarea_id"`
}

// TareaPageResponse is one page of a cursor-paginated listing.
type TareaPageResponse struct {
	Items      []*domain.Tarea `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// DownloadResponse carries the presigned URL alongside the redirect,
// for clients that do not follow Location automatically.
type DownloadResponse struct {
	URL string `json:"url"`
}

// TareaHandler handles tarea-related HTTP requests.
type TareaHandler struct {
	service service.TareaService
	logger  *slog.Logger
}

// NewTareaHandler creates a new TareaHandler.
func NewTareaHandler(svc service.TareaService, logger *slog.Logger) *TareaHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TareaHandler")
	}

	return &TareaHandler{
		service: svc,
		logger:  logger.With(slog.String("component", "tarea_handler")),
	}
}

// ListTareas handles GET /tareas. Without query parameters it returns
// the full collection as a plain array; with ?cursor or ?limit it
// returns one page plus a continuation cursor.
func (h *TareaHandler) ListTareas(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cursor := query.Get("cursor")
	rawLimit := query.Get("limit")

	if cursor == "" && rawLimit == "" {
		tareas, err := h.service.List(r.Context())
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
		if tareas == nil {
			tareas = []*domain.Tarea{}
		}
		shared.RespondWithJSON(w, r, http.StatusOK, tareas)
		return
	}

	limit := int32(defaultPageLimit)
	if rawLimit != "" {
		parsed, err := strconv.ParseInt(rawLimit, 10, 32)
		if err != nil || parsed <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
			return
		}
		limit = int32(parsed)
	}

	tareas, next, err := h.service.ListPage(r.Context(), cursor, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if tareas == nil {
		tareas = []*domain.Tarea{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TareaPageResponse{
		Items:      tareas,
		NextCursor: next,
	})
}

// CreateTarea handles POST /tareas requests.
func (h *TareaHandler) CreateTarea(w http.ResponseWriter, r *http.Request) {
	form, err := decodeTareaForm(r)
	if err != nil {
		h.respondDecodeError(w, r, err)
		return
	}

	tarea, err := h.service.Create(r.Context(), service.CreateInput{
		Title:       stringOrEmpty(form.Title),
		Description: stringOrEmpty(form.Description),
		DueAt:       form.DueAt,
		Uploads:     form.Uploads,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateTareaResponse{
		Message: fmt.Sprintf("Tarea creada con el ID %s", tarea.ID),
		TareaID: tarea.ID,
	})
}

// GetTarea handles GET /tareas/{id} requests.
func (h *TareaHandler) GetTarea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tarea, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tarea)
}

// UpdateTarea handles PUT /tareas/{id} requests. Fields absent from the
// body keep their stored values; the attachment keep-set is always
// taken from the body, so omitting fileNames drops every existing
// attachment.
func (h *TareaHandler) UpdateTarea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, err := decodeTareaForm(r)
	if err != nil {
		h.respondDecodeError(w, r, err)
		return
	}

	tarea, err := h.service.Update(r.Context(), id, service.UpdateInput{
		Title:       form.Title,
		Description: form.Description,
		Done:        form.Done,
		DueAt:       form.DueAt,
		KeepFiles:   form.FileNames,
		Uploads:     form.Uploads,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tarea)
}

// DeleteTarea handles DELETE /tareas/{id} requests. Deleting an absent
// ID still returns 204.
func (h *TareaHandler) DeleteTarea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListArchivos handles GET /tareas/{id}/archivos requests.
func (h *TareaHandler) ListArchivos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	files, err := h.service.ListFiles(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, files)
}

// DownloadArchivo handles GET /tareas/{id}/archivos/{filename} requests
// with a temporary redirect to a time-limited URL.
func (h *TareaHandler) DownloadArchivo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	filename := chi.URLParam(r, "filename")

	url, err := h.service.DownloadURL(r.Context(), id, filename)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// respondDecodeError maps body-decoding failures. Upload-limit
// violations have fixed messages; anything else is a malformed body.
func (h *TareaHandler) respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		// Malformed body rather than an internal failure.
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgInvalidRequest)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
