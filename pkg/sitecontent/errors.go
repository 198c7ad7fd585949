package sitecontent

import (
	"errors"
	"fmt"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/google/uuid"
)

// Error types
var (
	// ErrPageNotFound indicates a page was not found
	ErrPageNotFound = errors.New("page not found")

	// ErrEventNotFound indicates an event was not found
	ErrEventNotFound = errors.New("event not found")

	// ErrUnknownPageKind indicates a page kind outside the known set
	ErrUnknownPageKind = errors.New("unknown page kind")

	// ErrInvalidDocument indicates a page body was rejected
	ErrInvalidDocument = blocks.ErrInvalidDocument

	// ErrInvalidPage indicates page attributes other than the body are invalid
	ErrInvalidPage = errors.New("invalid page")

	// ErrInvalidParent indicates the parent page cannot hold the child
	ErrInvalidParent = errors.New("invalid parent page")

	// ErrInvalidEvent indicates event attributes are invalid
	ErrInvalidEvent = errors.New("invalid event")
)

// PageError represents an error related to page operations
type PageError struct {
	PageID uuid.UUID
	Op     string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page operation %s failed for page %s: %v", e.Op, e.PageID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// EventError represents an error related to event operations
type EventError struct {
	EventID uuid.UUID
	Op      string
	Err     error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event operation %s failed for event %s: %v", e.Op, e.EventID, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
