package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/V4T54L/lead-intake/internal/adapter/api/response"
	"github.com/V4T54L/lead-intake/internal/adapter/resume"
	"github.com/V4T54L/lead-intake/internal/domain"
	"github.com/V4T54L/lead-intake/internal/pkg/auth"
)

// LeadService is the subset of the lead collection the HTTP layer drives.
type LeadService interface {
	Create(ctx context.Context, in domain.LeadInput) (domain.Lead, error)
	GetByID(ctx context.Context, id string) (domain.Lead, error)
	ListFiltered(ctx context.Context, params domain.ListParams) (domain.LeadPage, error)
	UpdateStatus(ctx context.Context, id string, status domain.LeadStatus) (domain.Lead, error)
}

// CreateLeadRequest is the submitted intake form.
type CreateLeadRequest struct {
	FirstName            string   `json:"firstName" validate:"required"`
	LastName             string   `json:"lastName" validate:"required"`
	Email                string   `json:"email" validate:"required,email"`
	LinkedinURL          string   `json:"linkedin" validate:"required,url"`
	CountryOfCitizenship string   `json:"countryOfCitizenship" validate:"required"`
	InterestedVisas      []string `json:"interestedVisas" validate:"min=1,dive,visa"`
	OpenInput            string   `json:"openInput"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// LeadHandler serves the /api/leads endpoints.
type LeadHandler struct {
	service        LeadService
	resumes        domain.ResumeStorage
	validate       *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewLeadHandler creates a new LeadHandler. resumes may be nil, in which case
// uploaded files are rejected.
func NewLeadHandler(service LeadService, resumes domain.ResumeStorage, logger *slog.Logger, maxUploadBytes int64) *LeadHandler {
	return &LeadHandler{
		service:        service,
		resumes:        resumes,
		validate:       newValidator(),
		logger:         logger.With("component", "lead_handler"),
		maxUploadBytes: maxUploadBytes,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("visa", func(fl validator.FieldLevel) bool {
		return domain.IsKnownVisa(fl.Field().String())
	})
	return v
}

// Create handles POST /api/leads.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		req       CreateLeadRequest
		resumeURL string
	)
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			h.badBody(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()
		req = requestFromForm(r)
		if fields := h.validateRequest(req); fields != nil {
			writeValidationError(w, fields)
			return
		}
		url, status, msg := h.storeResume(r, req)
		if status != 0 {
			response.Error(w, status, msg)
			return
		}
		resumeURL = url
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.badBody(w, err)
			return
		}
		if fields := h.validateRequest(req); fields != nil {
			writeValidationError(w, fields)
			return
		}
	default:
		response.Error(w, http.StatusUnsupportedMediaType, "Unsupported Content-Type")
		return
	}

	lead, err := h.service.Create(r.Context(), domain.LeadInput{
		FirstName:            strings.TrimSpace(req.FirstName),
		LastName:             strings.TrimSpace(req.LastName),
		Email:                strings.TrimSpace(req.Email),
		LinkedinURL:          strings.TrimSpace(req.LinkedinURL),
		CountryOfCitizenship: req.CountryOfCitizenship,
		InterestedVisas:      req.InterestedVisas,
		ResumeURL:            resumeURL,
		OpenInput:            req.OpenInput,
	})
	if err != nil {
		if resumeURL != "" {
			h.discardResume(r.Context(), resumeURL)
		}
		h.writeError(w, err)
		return
	}
	response.OK(w, http.StatusCreated, lead)
}

// discardResume removes an upload whose lead was never stored.
func (h *LeadHandler) discardResume(ctx context.Context, url string) {
	if err := h.resumes.Delete(context.WithoutCancel(ctx), url); err != nil {
		h.logger.Error("failed to remove orphaned resume", "resume_url", url, "error", err)
		return
	}
	h.logger.Info("removed orphaned resume", "resume_url", url)
}

// List handles GET /api/leads.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), domain.DefaultPage)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid page")
		return
	}
	limit, err := intParam(q.Get("limit"), domain.DefaultLimit)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	result, err := h.service.ListFiltered(r.Context(), domain.ListParams{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Envelope{
		Success: true,
		Data:    result.Items,
		Pagination: &response.Pagination{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Get handles GET /api/leads/{id}.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, http.StatusOK, lead)
}

// UpdateStatus handles PATCH /api/leads/{id}/status.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.badBody(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	lead, err := h.service.UpdateStatus(r.Context(), id, domain.LeadStatus(req.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	updatedBy := ""
	if claims, ok := auth.FromContext(r.Context()); ok {
		updatedBy = claims.UserID
	}
	h.logger.Info("lead status updated", "lead_id", id, "status", lead.Status, "updated_by", updatedBy)
	response.OK(w, http.StatusOK, lead)
}

func (h *LeadHandler) storeResume(r *http.Request, req CreateLeadRequest) (string, int, string) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return "", 0, ""
	}
	if err != nil {
		return "", http.StatusBadRequest, "Invalid resume upload"
	}
	defer file.Close()

	if !resume.IsAllowed(header.Filename) {
		return "", http.StatusBadRequest, "Resume must be a PDF, DOC or DOCX file"
	}
	if h.resumes == nil {
		return "", http.StatusBadRequest, "Resume uploads are disabled"
	}

	prefix := strings.ToLower(req.FirstName + "-" + req.LastName)
	url, err := h.resumes.Store(r.Context(), prefix, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to store resume", "error", err)
		return "", http.StatusInternalServerError, "Failed to store resume"
	}
	return url, 0, ""
}

func (h *LeadHandler) validateRequest(req CreateLeadRequest) []response.FieldError {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []response.FieldError{{Field: "", Message: err.Error()}}
	}
	fields := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, response.FieldError{Field: fieldName(fe), Message: fieldMessage(fe)})
	}
	return fields
}

// fieldName strips the struct prefix and any slice index from the namespace.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "select at least one visa"
	case "visa":
		return "unknown visa category"
	default:
		return "is invalid"
	}
}

func writeValidationError(w http.ResponseWriter, fields []response.FieldError) {
	response.JSON(w, http.StatusBadRequest, response.Envelope{
		Success: false,
		Error:   "Validation failed",
		Details: fields,
	})
}

func (h *LeadHandler) badBody(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		response.Error(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}
	h.logger.Warn("failed to decode request body", "error", err)
	response.Error(w, http.StatusBadRequest, "Invalid request body")
}

func (h *LeadHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Lead not found")
	case errors.Is(err, domain.ErrInvalidStatus):
		response.Error(w, http.StatusBadRequest, "Invalid status")
	case errors.Is(err, domain.ErrInvalidFilterArgs):
		response.Error(w, http.StatusBadRequest, "Invalid pagination parameters")
	default:
		h.logger.Error("lead request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func requestFromForm(r *http.Request) CreateLeadRequest {
	form := r.MultipartForm.Value
	first := func(key string) string {
		if vs := form[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	visas := make([]string, 0, len(form["interestedVisas"]))
	for _, v := range form["interestedVisas"] {
		if v = strings.TrimSpace(v); v != "" {
			visas = append(visas, v)
		}
	}
	return CreateLeadRequest{
		FirstName:            first("firstName"),
		LastName:             first("lastName"),
		Email:                first("email"),
		LinkedinURL:          first("linkedin"),
		CountryOfCitizenship: first("countryOfCitizenship"),
		InterestedVisas:      visas,
		OpenInput:            first("openInput"),
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
