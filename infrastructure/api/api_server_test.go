package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/firmint/firmint/infrastructure/api"
)

func TestAPIServer_ReadEndpointsOpen_WriteEndpointsProtected(t *testing.T) {
	client := newMCPTestClient(t)
	apiKeys := []string{"test-secret-key"}
	apiServer := api.NewAPIServer(client, apiKeys, nil)
	router := apiServer.Router()

	apiServer.MountRoutes()

	docsRouter := apiServer.DocsRouter("/docs/openapi.yaml")
	router.Mount("/docs", docsRouter.Routes())

	handler := router

	createBody := `{"data":{"type":"batches","attributes":{"names":["OpenAI"]}}}`

	t.Run("GET /docs returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("GET /api/v1/batches returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("GET /api/v1/sample.csv returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sample.csv", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("POST /api/v1/batches without key returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", strings.NewReader(createBody))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusUnauthorized, w.Body.String())
		}
	})

	t.Run("POST /api/v1/batches with invalid key returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", strings.NewReader(createBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-KEY", "wrong-key")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusUnauthorized, w.Body.String())
		}
	})

	t.Run("POST /api/v1/batches with valid key returns 202", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", strings.NewReader(createBody))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-KEY", "test-secret-key")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusAccepted, w.Body.String())
		}
	})

	t.Run("DELETE /api/v1/batches/999 without key returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/batches/999", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusUnauthorized, w.Body.String())
		}
	})
}

func TestAPIServer_NoKeysConfigured_WritesOpen(t *testing.T) {
	client := newMCPTestClient(t)
	apiServer := api.NewAPIServer(client, nil, nil)
	handler := apiServer.Handler()

	createBody := `{"data":{"type":"batches","attributes":{"names":["OpenAI"]}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want %d; body: %s", w.Code, http.StatusAccepted, w.Body.String())
	}
}
