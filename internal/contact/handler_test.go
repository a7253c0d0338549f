package contact_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/contact"
	"github.com/Sanalemba991/digiallink-sa/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(repo *fakeRepo, clock *fakeClock) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := contact.NewService(repo, nil, metrics.NewMock(), logger, contact.WithClock(clock.Now))
	handler := contact.NewHandler(svc, logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestContactHandler(t *testing.T) {
	submitted := map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"phone":   "+971 50 000 0000",
		"subject": "Pricing",
		"message": "Please send a quote.",
	}

	t.Run("Submit_Success", func(t *testing.T) {
		router := setupRouter(&fakeRepo{}, &fakeClock{now: time.Now()})

		w := doJSON(t, router, http.MethodPost, "/contact", submitted)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeMap(t, w)
		assert.NotEmpty(t, resp["contactId"])
		assert.Equal(t, "Message sent successfully! We will get back to you within 24 hours.", resp["message"])
	})

	t.Run("Submit_MissingFields", func(t *testing.T) {
		router := setupRouter(&fakeRepo{}, &fakeClock{now: time.Now()})

		w := doJSON(t, router, http.MethodPost, "/contact", map[string]string{"name": "Jane"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "All fields are required", decodeMap(t, w)["error"])
	})

	t.Run("Submit_InvalidEmail", func(t *testing.T) {
		router := setupRouter(&fakeRepo{}, &fakeClock{now: time.Now()})

		payload := map[string]string{}
		for k, v := range submitted {
			payload[k] = v
		}
		payload["email"] = "jane.example.com"

		w := doJSON(t, router, http.MethodPost, "/contact", payload)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please enter a valid email address", decodeMap(t, w)["error"])
	})

	t.Run("Submit_Duplicate", func(t *testing.T) {
		router := setupRouter(&fakeRepo{}, &fakeClock{now: time.Now()})

		w := doJSON(t, router, http.MethodPost, "/contact", submitted)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, http.MethodPost, "/contact", submitted)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "You have already sent a similar message recently. Please wait before sending another.", decodeMap(t, w)["error"])
	})

	t.Run("Submit_InvalidJSON", func(t *testing.T) {
		router := setupRouter(&fakeRepo{}, &fakeClock{now: time.Now()})

		req := httptest.NewRequest(http.MethodPost, "/contact", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Submit_StorageFailure", func(t *testing.T) {
		router := setupRouter(&fakeRepo{err: errors.New("database connection failed")}, &fakeClock{now: time.Now()})

		w := doJSON(t, router, http.MethodPost, "/contact", submitted)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to send message. Please try again.", decodeMap(t, w)["error"])
	})

	t.Run("List_NewestFirst", func(t *testing.T) {
		clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC)}
		router := setupRouter(&fakeRepo{}, clock)

		w := doJSON(t, router, http.MethodPost, "/contact", submitted)
		require.Equal(t, http.StatusCreated, w.Code)

		clock.Advance(time.Minute)
		second := map[string]string{}
		for k, v := range submitted {
			second[k] = v
		}
		second["subject"] = "Support"
		w = doJSON(t, router, http.MethodPost, "/contact", second)
		require.Equal(t, http.StatusCreated, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/contact", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var list []contact.Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
		require.Len(t, list, 2)
		assert.Equal(t, "Support", list[0].Subject)
		assert.Equal(t, "2024-05-01T10:01:00.123Z", list[0].SubmittedDate)
		assert.Equal(t, "2024-05-01T10:00:00.123Z", list[1].SubmittedDate)
		assert.Equal(t, contact.StatusNew, list[1].Status)
	})

	t.Run("List_Empty", func(t *testing.T) {
		router := setupRouter(&fakeRepo{}, &fakeClock{now: time.Now()})

		req := httptest.NewRequest(http.MethodGet, "/contact", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		router := setupRouter(&fakeRepo{}, &fakeClock{now: time.Now()})

		w := doJSON(t, router, http.MethodPost, "/contact", submitted)
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeMap(t, w)["contactId"].(string)

		w = doJSON(t, router, http.MethodPatch, "/contact", map[string]string{"id": id, "status": "resolved"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeMap(t, w)
		assert.Equal(t, "Message status updated successfully", resp["message"])
		assert.Equal(t, map[string]interface{}{"id": id, "status": "resolved"}, resp["contact"])

		w = doJSON(t, router, http.MethodPatch, "/contact", map[string]string{"id": id, "status": "archived"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid status value", decodeMap(t, w)["error"])

		w = doJSON(t, router, http.MethodPatch, "/contact", map[string]string{"status": "read"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Message ID and status are required", decodeMap(t, w)["error"])

		w = doJSON(t, router, http.MethodPatch, "/contact", map[string]string{"id": "9b2f4b8e-3f0c-4f7e-9f53-0d5c2c1b0a11", "status": "read"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Message not found", decodeMap(t, w)["error"])
	})
}
