package sitecontent

import (
	"encoding/json"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
)

// Request DTOs

// CreatePageRequest contains parameters for creating a page. Slug defaults
// to the slug of Title. Body is only accepted for kinds with a body.
type CreatePageRequest struct {
	ParentID    *uuid.UUID
	Kind        PageKind
	Title       string
	Slug        string
	Live        bool
	Date        time.Time
	Description string
	Author      string
	Location    string
	ImageID     *uuid.UUID
	Body        json.RawMessage
}

// UpdatePageBodyRequest replaces the body of a page.
type UpdatePageBodyRequest struct {
	ID   uuid.UUID
	Body json.RawMessage
}

// CreateEventRequest contains parameters for creating an event below an
// event index page. Location defaults to events.DefaultLocation and
// NeedsReservation to true.
type CreateEventRequest struct {
	ParentID         uuid.UUID
	StartTime        time.Time
	Type             events.Type
	Title            string
	Location         string
	Speaker          string
	Abstract         string
	ImageID          *uuid.UUID
	Cancelled        bool
	BookedOut        bool
	NeedsReservation *bool
	Live             bool
}
