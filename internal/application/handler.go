package application

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/httputil"

	"github.com/go-chi/chi/v5"
)

const defaultMaxUploadBytes = 8 << 20

type Handler struct {
	service        *Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewHandler(service *Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/job-applications", h.Submit)
	router.Get("/job-applications", h.List)
	router.Patch("/job-applications", h.UpdateStatus)
	router.Get("/resumes/{filename}", h.DownloadResume)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondWithError(w, http.StatusBadRequest, "Request body too large")
			return
		}
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := SubmitRequest{
		FullName:    r.FormValue("fullName"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		CoverLetter: r.FormValue("coverLetter"),
		JobTitle:    r.FormValue("jobTitle"),
		JobSlug:     r.FormValue("jobSlug"),
	}

	upload, err := readResume(r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read resume file", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Failed to process resume file")
		return
	}

	h.logger.InfoContext(r.Context(), "job application received",
		"email", req.Email,
		"job_slug", req.JobSlug,
		"has_resume", upload != nil && upload.Size > 0,
	)

	app, err := h.service.Submit(r.Context(), req, upload)
	if err != nil {
		h.handleSubmitError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, map[string]string{
		"message":       "Application submitted successfully! We will contact you soon.",
		"applicationId": app.ID,
	})
}

func readResume(r *http.Request) (*ResumeUpload, error) {
	file, header, err := r.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &ResumeUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to fetch applications", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch applications")
		return
	}

	response := make([]Response, 0, len(apps))
	for _, a := range apps {
		response = append(response, Response{
			ID:             a.ID,
			FullName:       a.FullName,
			Email:          a.Email,
			Phone:          a.Phone,
			CoverLetter:    a.CoverLetter,
			JobTitle:       a.JobTitle,
			JobSlug:        a.JobSlug,
			ResumeFilename: a.ResumeFilename,
			ResumePath:     a.ResumePath,
			Status:         a.Status,
			AppliedDate:    httputil.FormatTime(a.AppliedDate),
			CreatedAt:      httputil.FormatTime(a.CreatedAt),
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

	app, err := h.service.UpdateStatus(r.Context(), req.ID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingIDOrStatus):
			httputil.RespondWithError(w, http.StatusBadRequest, "Application ID and status are required")
		case errors.Is(err, ErrInvalidStatus):
			httputil.RespondWithError(w, http.StatusBadRequest, "Invalid status value")
		case errors.Is(err, ErrNotFound):
			httputil.RespondWithError(w, http.StatusNotFound, "Application not found")
		default:
			h.logger.ErrorContext(r.Context(), "failed to update application", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to update application")
		}
		return
	}

	h.logger.InfoContext(r.Context(), "application status updated", "id", app.ID, "status", app.Status)

	httputil.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Application status updated successfully",
		"application": map[string]string{
			"id":     app.ID,
			"status": string(app.Status),
		},
	})
}

// DownloadResume serves the stored file as an attachment. Errors are plain
// text since browsers open this URL directly.
func (h *Handler) DownloadResume(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	res, err := h.service.RetrieveResume(r.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, ErrResumeNotFound):
			http.Error(w, "Resume not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidResumeFormat):
			http.Error(w, "Invalid resume format", http.StatusBadRequest)
		default:
			h.logger.ErrorContext(r.Context(), "error serving resume", "filename", filename, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (h *Handler) handleSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		httputil.RespondWithError(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, ErrInvalidEmail):
		httputil.RespondWithError(w, http.StatusBadRequest, "Please enter a valid email address")
	case errors.Is(err, ErrDuplicateApplication):
		h.logger.InfoContext(r.Context(), "duplicate application rejected")
		httputil.RespondWithError(w, http.StatusBadRequest, "You have already applied for this position")
	case errors.Is(err, ErrInvalidResumeType):
		httputil.RespondWithError(w, http.StatusBadRequest, "Only PDF files are allowed. Please convert your resume to PDF format.")
	case errors.Is(err, ErrResumeTooLarge):
		httputil.RespondWithError(w, http.StatusBadRequest, "File size must be less than 2MB")
	default:
		h.logger.ErrorContext(r.Context(), "failed to process application", "error", err)
		httputil.RespondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error":     "Failed to process application",
			"details":   err.Error(),
			"timestamp": httputil.FormatTime(time.Now()),
		})
	}
}
