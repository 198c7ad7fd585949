package sitecontent

import (
	"context"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
)

// PageRepository defines the interface for page persistence
type PageRepository interface {
	CreatePage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	UpdatePage(ctx context.Context, page *Page) error

	// ListChildren returns the children of a page matching q
	ListChildren(ctx context.Context, q ChildQuery) ([]*Page, error)
}

// EventStore defines the interface the engine needs from event storage
type EventStore interface {
	CreateEvent(ctx context.Context, event *events.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)

	// QueryEvents returns the events matching q ordered by start time
	// ascending. Events with equal start times keep the store's insertion
	// order.
	QueryEvents(ctx context.Context, q EventQuery) ([]*events.Event, error)
}

// Repository is a store holding both pages and events
type Repository interface {
	PageRepository
	EventStore
}

// MediaResolver turns image references into URLs
type MediaResolver interface {
	// ImageURLs resolves all ids in one call. Unknown ids are left out of
	// the result.
	ImageURLs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// EventQuery selects events for augmentation.
type EventQuery struct {
	// Scope restricts the result to children of this page; nil means the
	// whole site
	Scope *uuid.UUID

	LiveOnly bool

	// Types restricts the result to these event types; empty means every type
	Types []events.Type

	// StartFrom is the inclusive lower bound of the start time
	StartFrom time.Time

	// Limit caps the result; zero means unbounded
	Limit int
}

// ChildOrder selects the order of ListChildren results.
type ChildOrder string

const (
	// OrderInserted keeps the store's insertion order
	OrderInserted ChildOrder = ""
	// OrderDateDesc orders by Page.Date, newest first
	OrderDateDesc ChildOrder = "date_desc"
)

// ChildQuery selects children of a page.
type ChildQuery struct {
	ParentID uuid.UUID
	// Kind restricts the result to one page kind; empty means any kind
	Kind     PageKind
	LiveOnly bool
	OrderBy  ChildOrder
}
