package sitecontent

import (
	"context"
	"encoding/json"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
)

// Service defines the main interface of the site content engine
type Service interface {
	// Page operations
	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	UpdatePageBody(ctx context.Context, req UpdatePageBodyRequest) (*Page, error)

	// ValidateBody checks body against the schema of kind without saving.
	// It returns nil or an error wrapping ErrInvalidDocument, usually a
	// *blocks.DocumentError.
	ValidateBody(kind PageKind, body json.RawMessage) error

	// Read paths
	GetPageContext(ctx context.Context, id uuid.UUID) (*PageContext, error)
	GetAnchors(ctx context.Context, id uuid.UUID) ([]blocks.Anchor, error)

	// Event operations
	CreateEvent(ctx context.Context, req CreateEventRequest) (*events.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*EventView, error)
}
