package handlers_test

import (
	"bytes"
	"client-registry/app"
	"client-registry/config"
	"client-registry/config/setup"
	"client-registry/middleware"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp creates a temporary test database and returns the wired Fiber app
func setupTestApp(t *testing.T, pageSize int) (*fiber.App, *app.App, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "client-registry-test-*")
	require.NoError(t, err, "Failed to create temp directory")

	cfg := &config.Config{
		Env:            "test",
		LogLevel:       "error",
		DatabaseDriver: "sqlite3",
		DatabaseURL:    filepath.Join(tmpDir, "test.db"),
		PageSize:       pageSize,
		SessionTTL:     time.Hour,
		SessionSweep:   "@every 1h",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := setup.InitDatabase(context.Background(), cfg, logger)
	require.NoError(t, err, "Failed to initialize test database")

	reg := prometheus.NewRegistry()
	application, err := setup.InitApp(db, cfg, reg, logger)
	require.NoError(t, err, "Failed to initialize app")

	fiberApp := setup.NewFiberApp(cfg, logger)
	setup.RegisterRoutes(fiberApp, application, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	cleanup := func() {
		setup.Shutdown(context.Background(), application, logger)
		os.RemoveAll(tmpDir)
	}

	return fiberApp, application, cleanup
}

type client struct {
	ID     *int64 `json:"id_client"`
	Active bool   `json:"client_active"`
	Name   string `json:"client_name"`
}

type searchBody struct {
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	Clients    []client `json:"clients"`
}

type responseBody struct {
	Message string      `json:"message"`
	Error   string      `json:"error"`
	Warning string      `json:"warning"`
	Client  *client     `json:"client"`
	Search  *searchBody `json:"search"`
}

// do sends a request within the given session and decodes the JSON response.
func do(t *testing.T, fiberApp *fiber.App, sessionID, method, target string, body any) (int, responseBody, string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}

	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out responseBody
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out, resp.Header.Get(middleware.SessionHeader)
}

func names(s *searchBody) []string {
	out := []string{}
	for _, c := range s.Clients {
		out = append(out, c.Name)
	}
	return out
}

func TestHealth(t *testing.T) {
	fiberApp, _, cleanup := setupTestApp(t, 10)
	defer cleanup()

	status, _, _ := do(t, fiberApp, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSessionHeaderIsIssuedAndReused(t *testing.T) {
	fiberApp, application, cleanup := setupTestApp(t, 10)
	defer cleanup()

	status, _, sessionID := do(t, fiberApp, "", http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, sessionID)

	_, _, again := do(t, fiberApp, sessionID, http.MethodGet, "/api/clients", nil)
	assert.Equal(t, sessionID, again)
	assert.Equal(t, 1, application.SessionStore.Len())
}

func TestCreateClient(t *testing.T) {
	fiberApp, _, cleanup := setupTestApp(t, 10)
	defer cleanup()

	tests := []struct {
		name           string
		body           any
		expectedStatus int
		wantError      string
	}{
		{
			name:           "Valid client",
			body:           map[string]any{"client_name": "Famsa"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Blank name",
			body:           map[string]any{"client_name": "  "},
			expectedStatus: http.StatusBadRequest,
			wantError:      "client_name must not be blank",
		},
		{
			name:           "Inactive on creation",
			body:           map[string]any{"client_name": "Acme", "client_active": false},
			expectedStatus: http.StatusBadRequest,
			wantError:      "client_active must be true",
		},
		{
			name:           "Duplicate name",
			body:           map[string]any{"client_name": "Famsa"},
			expectedStatus: http.StatusConflict,
			wantError:      "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out, _ := do(t, fiberApp, "", http.MethodPost, "/api/clients", tt.body)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.wantError != "" {
				assert.Contains(t, out.Error, tt.wantError)
			}
		})
	}
}

func TestSearchClients(t *testing.T) {
	fiberApp, _, cleanup := setupTestApp(t, 2)
	defer cleanup()

	for _, name := range []string{"D", "B", "E", "A", "C"} {
		status, _, _ := do(t, fiberApp, "", http.MethodPost, "/api/clients", map[string]any{"client_name": name})
		require.Equal(t, http.StatusCreated, status)
	}

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		wantNames      []string
		wantTotal      int
	}{
		{name: "First page", target: "/api/clients", expectedStatus: http.StatusOK, wantNames: []string{"A", "B"}, wantTotal: 3},
		{name: "Last page", target: "/api/clients?page=3", expectedStatus: http.StatusOK, wantNames: []string{"E"}, wantTotal: 3},
		{name: "Past the end", target: "/api/clients?page=4", expectedStatus: http.StatusOK, wantNames: []string{}, wantTotal: 3},
		{name: "Far past the end", target: "/api/clients?page=9223372036854775807", expectedStatus: http.StatusOK, wantNames: []string{}, wantTotal: 3},
		{name: "Name filter", target: "/api/clients?name=C", expectedStatus: http.StatusOK, wantNames: []string{"C"}, wantTotal: 1},
		{name: "Page zero", target: "/api/clients?page=0", expectedStatus: http.StatusBadRequest},
		{name: "Bad active flag", target: "/api/clients?active=maybe", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out, _ := do(t, fiberApp, "", http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			require.NotNil(t, out.Search)
			assert.Equal(t, tt.wantNames, names(out.Search))
			assert.Equal(t, tt.wantTotal, out.Search.TotalPages)
		})
	}
}

func TestMutationsRefreshTheSessionSearch(t *testing.T) {
	fiberApp, _, cleanup := setupTestApp(t, 10)
	defer cleanup()

	_, _, sessionID := do(t, fiberApp, "", http.MethodPost, "/api/clients", map[string]any{"client_name": "Famsa"})
	require.NotEmpty(t, sessionID)

	status, out, _ := do(t, fiberApp, sessionID, http.MethodGet, "/api/clients?active=true", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, out.Search.Clients, 1)
	id := *out.Search.Clients[0].ID
	target := "/api/clients/" + strconv.FormatInt(id, 10)

	t.Run("Update", func(t *testing.T) {
		status, out, _ := do(t, fiberApp, sessionID, http.MethodPut, target, map[string]any{"client_name": "Famsa MX"})
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, out.Search)
		assert.Equal(t, []string{"Famsa MX"}, names(out.Search))
		assert.Empty(t, out.Warning)
	})

	t.Run("Drop", func(t *testing.T) {
		status, out, _ := do(t, fiberApp, sessionID, http.MethodPost, target+"/drop", nil)
		require.Equal(t, http.StatusOK, status)
		require.NotNil(t, out.Client)
		assert.False(t, out.Client.Active)
		assert.Empty(t, names(out.Search), "dropped client no longer matches active=true")
	})

	t.Run("Last search reflects the store", func(t *testing.T) {
		status, out, _ := do(t, fiberApp, sessionID, http.MethodGet, "/api/clients/last", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, names(out.Search))
	})

	t.Run("Other sessions have no cached search", func(t *testing.T) {
		status, _, _ := do(t, fiberApp, "", http.MethodGet, "/api/clients/last", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Rename onto a taken name", func(t *testing.T) {
		status, _, _ := do(t, fiberApp, sessionID, http.MethodPost, "/api/clients", map[string]any{"client_name": "Globex"})
		require.Equal(t, http.StatusCreated, status)

		status, out, _ := do(t, fiberApp, sessionID, http.MethodPut, target, map[string]any{"client_name": "Globex"})
		assert.Equal(t, http.StatusConflict, status)
		assert.Contains(t, out.Error, "already exists")
	})

	t.Run("Delete twice", func(t *testing.T) {
		status, _, _ := do(t, fiberApp, sessionID, http.MethodDelete, target, nil)
		assert.Equal(t, http.StatusOK, status)
		status, _, _ = do(t, fiberApp, sessionID, http.MethodDelete, target, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _, _ = do(t, fiberApp, sessionID, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("Update unknown client", func(t *testing.T) {
		status, _, _ := do(t, fiberApp, sessionID, http.MethodPut, target, map[string]any{"client_name": "Ghost"})
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestSelectedClient(t *testing.T) {
	fiberApp, _, cleanup := setupTestApp(t, 10)
	defer cleanup()

	_, _, sessionID := do(t, fiberApp, "", http.MethodPost, "/api/clients", map[string]any{"client_name": "Famsa"})

	status, _, _ := do(t, fiberApp, sessionID, http.MethodGet, "/api/clients/selected", nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, out, _ := do(t, fiberApp, sessionID, http.MethodGet, "/api/clients?name=Famsa", nil)
	require.Len(t, out.Search.Clients, 1)
	id := *out.Search.Clients[0].ID

	status, out, _ = do(t, fiberApp, sessionID, http.MethodPut, "/api/clients/selected", map[string]any{"id_client": id})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Famsa", out.Client.Name)

	status, out, _ = do(t, fiberApp, sessionID, http.MethodGet, "/api/clients/selected", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, *out.Client.ID)

	status, _, _ = do(t, fiberApp, sessionID, http.MethodPut, "/api/clients/selected", map[string]any{"id_client": id + 100})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetricsEndpoint(t *testing.T) {
	fiberApp, _, cleanup := setupTestApp(t, 10)
	defer cleanup()

	do(t, fiberApp, "", http.MethodGet, "/api/clients", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := fiberApp.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `client_registry_operations_total{operation="search_by",status="success"} 1`)
}
