package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/service"
	"github.com/phrazzld/tarea-api/internal/store"
)

// mockTareaService implements service.TareaService with overridable
// behavior per test.
type mockTareaService struct {
	listFn     func(ctx context.Context) ([]*domain.Tarea, error)
	listPageFn func(ctx context.Context, cursor string, limit int32) ([]*domain.Tarea, string, error)
	createFn   func(ctx context.Context, in service.CreateInput) (*domain.Tarea, error)
	getFn      func(ctx context.Context, id string) (*domain.Tarea, error)
	listFileFn func(ctx context.Context, id string) ([]string, error)
	updateFn   func(ctx context.Context, id string, in service.UpdateInput) (*domain.Tarea, error)
	downloadFn func(ctx context.Context, id, filename string) (string, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockTareaService) List(ctx context.Context) ([]*domain.Tarea, error) {
	return m.listFn(ctx)
}

func (m *mockTareaService) ListPage(
	ctx context.Context,
	cursor string,
	limit int32,
) ([]*domain.Tarea, string, error) {
	return m.listPageFn(ctx, cursor, limit)
}

func (m *mockTareaService) Create(ctx context.Context, in service.CreateInput) (*domain.Tarea, error) {
	return m.createFn(ctx, in)
}

func (m *mockTareaService) Get(ctx context.Context, id string) (*domain.Tarea, error) {
	return m.getFn(ctx, id)
}

func (m *mockTareaService) ListFiles(ctx context.Context, id string) ([]string, error) {
	return m.listFileFn(ctx, id)
}

func (m *mockTareaService) Update(
	ctx context.Context,
	id string,
	in service.UpdateInput,
) (*domain.Tarea, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockTareaService) DownloadURL(ctx context.Context, id, filename string) (string, error) {
	return m.downloadFn(ctx, id, filename)
}

func (m *mockTareaService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// newTestRouter mounts the handler on the production route shape.
func newTestRouter(svc service.TareaService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewTareaHandler(svc, logger)

	r := chi.NewRouter()
	r.Route("/tareas", func(r chi.Router) {
		r.Get("/", handler.ListTareas)
		r.Post("/", handler.CreateTarea)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetTarea)
			r.Put("/", handler.UpdateTarea)
			r.Delete("/", handler.DeleteTarea)
			r.Get("/archivos", handler.ListArchivos)
			r.Get("/archivos/{filename}", handler.DownloadArchivo)
		})
	})
	return r
}

// multipartBody builds a multipart request body with the given form
// fields and files. Each file is a (name, contentType, payload) triple.
func multipartBody(t *testing.T, fields map[string]string, files [][3]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for field, value := range fields {
		require.NoError(t, writer.WriteField(field, value))
	}

	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			`form-data; name="files"; filename="`+f[0]+`"`)
		header.Set("Content-Type", f[1])
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(f[2]))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestListTareasPlainArray(t *testing.T) {
	svc := &mockTareaService{
		listFn: func(ctx context.Context) ([]*domain.Tarea, error) {
			return []*domain.Tarea{
				{ID: "id-1", Title: "primera"},
				{ID: "id-2", Title: "segunda"},
			}, nil
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var tareas []domain.Tarea
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tareas))
	require.Len(t, tareas, 2)
	assert.Equal(t, "id-1", tareas[0].ID)
}

func TestListTareasEmptyIsArrayNotNull(t *testing.T) {
	svc := &mockTareaService{
		listFn: func(ctx context.Context) ([]*domain.Tarea, error) {
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestListTareasPaged(t *testing.T) {
	var gotCursor string
	var gotLimit int32
	svc := &mockTareaService{
		listPageFn: func(ctx context.Context, cursor string, limit int32) ([]*domain.Tarea, string, error) {
			gotCursor = cursor
			gotLimit = limit
			return []*domain.Tarea{{ID: "id-3"}}, "next-token", nil
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas?cursor=abc&limit=10", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc", gotCursor)
	assert.Equal(t, int32(10), gotLimit)

	var page TareaPageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "next-token", page.NextCursor)
}

func TestListTareasBadLimit(t *testing.T) {
	router := newTestRouter(&mockTareaService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateTareaMultipart(t *testing.T) {
	var gotInput service.CreateInput
	svc := &mockTareaService{
		createFn: func(ctx context.Context, in service.CreateInput) (*domain.Tarea, error) {
			gotInput = in
			return &domain.Tarea{ID: "id-9", Title: in.Title}, nil
		},
	}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t,
		map[string]string{"title": "comprar pan", "description": "antes del viernes"},
		[][3]string{
			{"lista.pdf", "application/pdf", "pdf-bytes"},
			{"foto.png", "image/png", "png-bytes"},
		})

	req := httptest.NewRequest(http.MethodPost, "/tareas", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp CreateTareaResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "id-9", resp.TareaID)
	assert.Equal(t, "Tarea creada con el ID id-9", resp.Message)

	assert.Equal(t, "comprar pan", gotInput.Title)
	require.Len(t, gotInput.Uploads, 2)
	assert.Equal(t, "lista.pdf", gotInput.Uploads[0].Name)
	assert.Equal(t, "application/pdf", gotInput.Uploads[0].ContentType)
	assert.Equal(t, []byte("pdf-bytes"), gotInput.Uploads[0].Data)
}

func TestCreateTareaRejectsDisallowedType(t *testing.T) {
	svc := &mockTareaService{
		createFn: func(ctx context.Context, in service.CreateInput) (*domain.Tarea, error) {
			t.Fatal("service must not be reached for a denied file type")
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, nil,
		[][3]string{{"run.sh", "application/x-sh", "#!/bin/sh"}})

	req := httptest.NewRequest(http.MethodPost, "/tareas", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgFileTypeDenied, decodeErrorBody(t, rr))
}

func TestCreateTareaRejectsTooManyFiles(t *testing.T) {
	router := newTestRouter(&mockTareaService{})

	body, contentType := multipartBody(t, nil, [][3]string{
		{"a.png", "image/png", "a"},
		{"b.png", "image/png", "b"},
		{"c.png", "image/png", "c"},
		{"d.png", "image/png", "d"},
	})

	req := httptest.NewRequest(http.MethodPost, "/tareas", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgTooManyFiles, decodeErrorBody(t, rr))
}

func TestCreateTareaCardinalityFromService(t *testing.T) {
	svc := &mockTareaService{
		createFn: func(ctx context.Context, in service.CreateInput) (*domain.Tarea, error) {
			return nil, domain.ErrTooManyAttachments
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/tareas",
		strings.NewReader(`{"title":"t"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgTooManyFiles, decodeErrorBody(t, rr))
}

func TestGetTareaNotFound(t *testing.T) {
	svc := &mockTareaService{
		getFn: func(ctx context.Context, id string) (*domain.Tarea, error) {
			return nil, store.ErrTareaNotFound
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas/missing", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, MsgTareaNotFound, decodeErrorBody(t, rr))
}

func TestGetTareaInternalErrorIsOpaque(t *testing.T) {
	svc := &mockTareaService{
		getFn: func(ctx context.Context, id string) (*domain.Tarea, error) {
			return nil, errors.New("dynamodb: connection refused at 10.0.0.5")
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas/id-1", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, MsgGenericFailure, decodeErrorBody(t, rr))
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}

func TestUpdateTareaJSONBody(t *testing.T) {
	var gotID string
	var gotInput service.UpdateInput
	svc := &mockTareaService{
		updateFn: func(ctx context.Context, id string, in service.UpdateInput) (*domain.Tarea, error) {
			gotID = id
			gotInput = in
			return &domain.Tarea{ID: id, Title: *in.Title, Done: *in.Done}, nil
		},
	}
	router := newTestRouter(svc)

	payload := `{"title":"nuevo","todo":true,"fileNames":["a.png"]}`
	req := httptest.NewRequest(http.MethodPut, "/tareas/id-7", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "id-7", gotID)
	require.NotNil(t, gotInput.Title)
	assert.Equal(t, "nuevo", *gotInput.Title)
	require.NotNil(t, gotInput.Done)
	assert.True(t, *gotInput.Done)
	assert.Nil(t, gotInput.Description, "absent field stays nil")
	assert.Equal(t, []string{"a.png"}, gotInput.KeepFiles)
}

func TestUpdateTareaMalformedBody(t *testing.T) {
	router := newTestRouter(&mockTareaService{})

	req := httptest.NewRequest(http.MethodPut, "/tareas/id-7", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgInvalidRequest, decodeErrorBody(t, rr))
}

func TestDeleteTareaNoContent(t *testing.T) {
	var gotID string
	svc := &mockTareaService{
		deleteFn: func(ctx context.Context, id string) error {
			gotID = id
			return nil
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/tareas/id-4", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "id-4", gotID)
	assert.Empty(t, rr.Body.String())
}

func TestListArchivos(t *testing.T) {
	svc := &mockTareaService{
		listFileFn: func(ctx context.Context, id string) ([]string, error) {
			return []string{"a.png", "b.pdf"}, nil
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas/id-1/archivos", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var files []string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &files))
	assert.Equal(t, []string{"a.png", "b.pdf"}, files)
}

func TestDownloadArchivoRedirects(t *testing.T) {
	svc := &mockTareaService{
		downloadFn: func(ctx context.Context, id, filename string) (string, error) {
			return "https://bucket.example.com/foto.png?X-Amz-Signature=abc", nil
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr,
		httptest.NewRequest(http.MethodGet, "/tareas/id-1/archivos/foto.png", nil))

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t,
		"https://bucket.example.com/foto.png?X-Amz-Signature=abc",
		rr.Header().Get("Location"))
}

func TestDownloadArchivoNotAttached(t *testing.T) {
	svc := &mockTareaService{
		downloadFn: func(ctx context.Context, id, filename string) (string, error) {
			return "", store.ErrFileNotFound
		},
	}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr,
		httptest.NewRequest(http.MethodGet, "/tareas/id-1/archivos/ajena.png", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, MsgFileNotFound, decodeErrorBody(t, rr))
}
