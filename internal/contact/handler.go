package contact

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sanalemba991/digiallink-sa/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/contact", h.Submit)
	router.Get("/contact", h.List)
	router.Patch("/contact", h.UpdateStatus)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.logger.InfoContext(r.Context(), "new contact message received", "email", req.Email, "subject", req.Subject)

	contact, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to send message. Please try again.")
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"message":   "Message sent successfully! We will get back to you within 24 hours.",
		"contactId": contact.ID,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to fetch contact messages")
		return
	}

	response := make([]Response, 0, len(contacts))
	for _, c := range contacts {
		response = append(response, Response{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			Phone:         c.Phone,
			Subject:       c.Subject,
			Message:       c.Message,
			Status:        c.Status,
			SubmittedDate: httputil.FormatTime(c.SubmittedDate),
			CreatedAt:     httputil.FormatTime(c.CreatedAt),
		})
	}

	httputil.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	contact, err := h.service.UpdateStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		h.handleServiceError(w, r, err, "Failed to update message status")
		return
	}

	h.logger.InfoContext(r.Context(), "contact status updated", "id", contact.ID, "status", contact.Status)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Message status updated successfully",
		"contact": map[string]string{
			"id":     contact.ID,
			"status": string(contact.Status),
		},
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, ErrMissingFields):
		httputil.RespondWithError(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, ErrInvalidEmail):
		httputil.RespondWithError(w, http.StatusBadRequest, "Please enter a valid email address")
	case errors.Is(err, ErrDuplicateSubmission):
		h.logger.InfoContext(r.Context(), "duplicate contact message rejected")
		httputil.RespondWithError(w, http.StatusBadRequest, "You have already sent a similar message recently. Please wait before sending another.")
	case errors.Is(err, ErrMissingIDOrStatus):
		httputil.RespondWithError(w, http.StatusBadRequest, "Message ID and status are required")
	case errors.Is(err, ErrInvalidStatus):
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid status value")
	case errors.Is(err, ErrNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "Message not found")
	default:
		h.logger.ErrorContext(r.Context(), "contact request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
