package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tarea-api/internal/config"
	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/service"
	"github.com/phrazzld/tarea-api/internal/store"
)

// stubTareaService is a fixed-response TareaService for router tests.
type stubTareaService struct {
	tarea *domain.Tarea
}

func (s *stubTareaService) List(ctx context.Context) ([]*domain.Tarea, error) {
	return []*domain.Tarea{s.tarea}, nil
}

func (s *stubTareaService) ListPage(
	ctx context.Context,
	cursor string,
	limit int32,
) ([]*domain.Tarea, string, error) {
	return []*domain.Tarea{s.tarea}, "", nil
}

func (s *stubTareaService) Create(ctx context.Context, in service.CreateInput) (*domain.Tarea, error) {
	return s.tarea, nil
}

func (s *stubTareaService) Get(ctx context.Context, id string) (*domain.Tarea, error) {
	if id != s.tarea.ID {
		return nil, store.ErrTareaNotFound
	}
	return s.tarea, nil
}

func (s *stubTareaService) ListFiles(ctx context.Context, id string) ([]string, error) {
	return s.tarea.FileNames, nil
}

func (s *stubTareaService) Update(
	ctx context.Context,
	id string,
	in service.UpdateInput,
) (*domain.Tarea, error) {
	return s.tarea, nil
}

func (s *stubTareaService) DownloadURL(ctx context.Context, id, filename string) (string, error) {
	return "https://example.com/" + filename, nil
}

func (s *stubTareaService) Delete(ctx context.Context, id string) error {
	return nil
}

func newTestApp() *application {
	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 4000, LogLevel: "info"},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tareaService: &stubTareaService{
			tarea: &domain.Tarea{ID: "id-1", Title: "prueba", FileNames: []string{"a.png"}},
		},
	}
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestApp().setupRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestRouterTareaRoutes(t *testing.T) {
	router := newTestApp().setupRouter()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/tareas", http.StatusOK},
		{http.MethodGet, "/tareas/id-1", http.StatusOK},
		{http.MethodGet, "/tareas/id-1/archivos", http.StatusOK},
		{http.MethodGet, "/tareas/id-1/archivos/a.png", http.StatusFound},
		{http.MethodDelete, "/tareas/id-1", http.StatusNoContent},
		{http.MethodGet, "/tareas/otra", http.StatusNotFound},
		{http.MethodGet, "/desconocido", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func TestRouterListBodyShape(t *testing.T) {
	router := newTestApp().setupRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tareas", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var tareas []domain.Tarea
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tareas))
	require.Len(t, tareas, 1)
	assert.Equal(t, "id-1", tareas[0].ID)
}
