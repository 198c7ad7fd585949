package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/beobgrp/sitecontent/pkg/sitecontent"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every error response. Shape and Fields are
// set when a page body was rejected.
type ErrorResponse struct {
	Error  string                       `json:"error"`
	Shape  []ShapeErrorResponse         `json:"shape,omitempty"`
	Fields map[string]map[string]string `json:"fields,omitempty"`
}

// ShapeErrorResponse describes a block of the wrong type or shape
type ShapeErrorResponse struct {
	Path   string `json:"path"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func errorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{Error: err.Error()}

	var derr *blocks.DocumentError
	if !errors.As(err, &derr) {
		return resp
	}
	resp.Error = blocks.ErrInvalidDocument.Error()
	for _, s := range derr.Shape {
		resp.Shape = append(resp.Shape, ShapeErrorResponse{Path: s.Path, Type: s.Tag, Reason: s.Reason})
	}
	if len(derr.Fields) > 0 {
		resp.Fields = make(map[string]map[string]string, len(derr.Fields))
		for path, fields := range derr.Fields {
			resp.Fields[path] = fields
		}
	}
	return resp
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, sitecontent.ErrPageNotFound), errors.Is(err, sitecontent.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, sitecontent.ErrInvalidDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sitecontent.ErrUnknownPageKind),
		errors.Is(err, sitecontent.ErrInvalidPage),
		errors.Is(err, sitecontent.ErrInvalidParent),
		errors.Is(err, sitecontent.ErrInvalidEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, r, status, &ErrorResponse{Error: http.StatusText(status)})
		return
	}
	writeJSON(w, r, status, errorResponse(err))
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field()[:1]) + e.Field()[1:]

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a UUID", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
