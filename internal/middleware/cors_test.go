package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sanalemba991/digiallink-sa/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newRouter(origins []string) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.CORS(origins))
	router.Post("/contact", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"All fields are required"}`, http.StatusBadRequest)
	})
	router.Get("/contact", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return router
}

func TestCORS_WildcardOnEveryResponse(t *testing.T) {
	router := newRouter(nil)

	for _, tc := range []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/contact", http.StatusOK},
		{http.MethodPost, "/contact", http.StatusBadRequest},
		{http.MethodGet, "/missing", http.StatusNotFound},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, tc.code, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT, DELETE, PATCH, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	}
}

func TestCORS_Preflight(t *testing.T) {
	router := newRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/contact", nil)
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_ConfiguredOrigins(t *testing.T) {
	router := newRouter([]string{"https://digiallink.example"})

	req := httptest.NewRequest(http.MethodGet, "/contact", nil)
	req.Header.Set("Origin", "https://digiallink.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://digiallink.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/contact", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
