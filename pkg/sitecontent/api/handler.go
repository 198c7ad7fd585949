package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for pages and events
type Handler struct {
	service  sitecontent.Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler creates a new handler. A nil logger means slog.Default().
func NewHandler(service sitecontent.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  service,
		logger:   logger,
		validate: validator.New(),
	}
}

// Routes returns the routes for pages and events. writeMiddleware guards
// every route that creates, changes or validates content.
func (h *Handler) Routes(writeMiddleware ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/pages/{id}", h.GetPage)
	r.Get("/pages/{id}/context", h.GetPageContext)
	r.Get("/pages/{id}/anchors", h.GetAnchors)
	r.Get("/events/{id}/reservation", h.GetReservation)

	r.Group(func(r chi.Router) {
		r.Use(writeMiddleware...)
		r.Post("/pages", h.CreatePage)
		r.Post("/pages/validate", h.ValidateBody)
		r.Put("/pages/{id}/body", h.UpdatePageBody)
		r.Post("/events", h.CreateEvent)
	})

	return r
}

// CreatePageRequest is the request body for creating a page
type CreatePageRequest struct {
	ParentID    *string         `json:"parentId" validate:"omitempty,uuid"`
	Kind        string          `json:"kind" validate:"required"`
	Title       string          `json:"title" validate:"required,max=255"`
	Slug        string          `json:"slug" validate:"omitempty,max=255"`
	Live        bool            `json:"live"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Author      string          `json:"author" validate:"max=255"`
	Location    string          `json:"location" validate:"max=255"`
	ImageID     *string         `json:"imageId" validate:"omitempty,uuid"`
	Body        json.RawMessage `json:"body"`
}

// UpdatePageBodyRequest is the request body for replacing a page body
type UpdatePageBodyRequest struct {
	Body json.RawMessage `json:"body" validate:"required"`
}

// ValidateBodyRequest is the request body for validating a page body
type ValidateBodyRequest struct {
	Kind string          `json:"kind" validate:"required"`
	Body json.RawMessage `json:"body"`
}

// ValidateBodyResponse is the response body of a validation
type ValidateBodyResponse struct {
	Valid  bool           `json:"valid"`
	Errors *ErrorResponse `json:"errors,omitempty"`
}

// CreateEventRequest is the request body for creating an event
type CreateEventRequest struct {
	ParentID         string    `json:"parentId" validate:"required,uuid"`
	StartTime        time.Time `json:"startTime" validate:"required"`
	EventType        string    `json:"eventType" validate:"required"`
	Title            string    `json:"title" validate:"required,max=255"`
	Location         string    `json:"location" validate:"max=255"`
	Speaker          string    `json:"speaker" validate:"max=255"`
	Abstract         string    `json:"abstract"`
	ImageID          *string   `json:"imageId" validate:"omitempty,uuid"`
	Cancelled        bool      `json:"cancelled"`
	BookedOut        bool      `json:"bookedOut"`
	NeedsReservation *bool     `json:"needsReservation"`
	Live             bool      `json:"live"`
}

// CreatePage creates a new page
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if !h.decode(w, r, &req) {
		return
	}

	page, err := h.service.CreatePage(r.Context(), sitecontent.CreatePageRequest{
		ParentID:    parseOptionalID(req.ParentID),
		Kind:        sitecontent.PageKind(req.Kind),
		Title:       req.Title,
		Slug:        req.Slug,
		Live:        req.Live,
		Date:        req.Date,
		Description: req.Description,
		Author:      req.Author,
		Location:    req.Location,
		ImageID:     parseOptionalID(req.ImageID),
		Body:        req.Body,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, page)
}

// GetPage retrieves a page by ID
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	page, err := h.service.GetPage(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// UpdatePageBody replaces the body of a page
func (h *Handler) UpdatePageBody(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpdatePageBodyRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, err := h.service.UpdatePageBody(r.Context(), sitecontent.UpdatePageBodyRequest{ID: id, Body: req.Body}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateBody validates a page body without saving it
func (h *Handler) ValidateBody(w http.ResponseWriter, r *http.Request) {
	var req ValidateBodyRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.ValidateBody(sitecontent.PageKind(req.Kind), req.Body)
	switch {
	case err == nil:
		render.JSON(w, r, ValidateBodyResponse{Valid: true})
	case errors.Is(err, sitecontent.ErrUnknownPageKind):
		h.writeError(w, r, err)
	case errors.Is(err, sitecontent.ErrInvalidDocument):
		render.JSON(w, r, ValidateBodyResponse{Valid: false, Errors: errorResponse(err)})
	default:
		h.writeError(w, r, err)
	}
}

// GetPageContext retrieves the render context of a page
func (h *Handler) GetPageContext(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	pc, err := h.service.GetPageContext(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, pc)
}

// GetAnchors retrieves the in-page anchors of a page
func (h *Handler) GetAnchors(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	anchors, err := h.service.GetAnchors(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, anchors)
}

// CreateEvent creates a new event
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	event, err := h.service.CreateEvent(r.Context(), sitecontent.CreateEventRequest{
		ParentID:         uuid.MustParse(req.ParentID),
		StartTime:        req.StartTime,
		Type:             events.Type(req.EventType),
		Title:            req.Title,
		Location:         req.Location,
		Speaker:          req.Speaker,
		Abstract:         req.Abstract,
		ImageID:          parseOptionalID(req.ImageID),
		Cancelled:        req.Cancelled,
		BookedOut:        req.BookedOut,
		NeedsReservation: req.NeedsReservation,
		Live:             req.Live,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, event)
}

// GetReservation retrieves an event with its reservation data
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// decode reads and validates the JSON request body into dst.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, r, http.StatusBadRequest, &ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, r, http.StatusBadRequest, &ErrorResponse{Error: formatValidationError(err)})
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, &ErrorResponse{Error: "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalID parses an id already checked by the validator.
func parseOptionalID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id := uuid.MustParse(*s)
	return &id
}
