package health_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sanalemba991/digiallink-sa/internal/health"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		pingErr  error
		wantCode int
		wantBody string
	}{
		{"health", "/health", errors.New("ignored"), http.StatusOK, `{"status":"ok"}`},
		{"ready", "/ready", nil, http.StatusOK, `{"status":"ready"}`},
		{"not ready", "/ready", errors.New("database connection failed"), http.StatusServiceUnavailable, `{"status":"unavailable","error":"database unreachable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			health.NewHandler(pinger{err: tt.pingErr}, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
