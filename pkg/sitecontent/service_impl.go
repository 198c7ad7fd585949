package sitecontent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/slug"
	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository         Repository
	eventStore         EventStore
	media              MediaResolver
	schemas            *Schemas
	logger             *slog.Logger
	metrics            *Metrics
	breaker            *BreakerSettings
	now                func() time.Time
	location           *time.Location
	reservationAddress string
	upcomingLimit      int
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the page and event repository
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEventStore reads and writes events through store instead of the
// repository
func WithEventStore(store EventStore) Option {
	return func(s *service) {
		s.eventStore = store
	}
}

// WithEventBreaker wraps the event store in a circuit breaker
func WithEventBreaker(settings BreakerSettings) Option {
	return func(s *service) {
		s.breaker = &settings
	}
}

// WithMediaResolver sets the resolver for image URLs. Without one, page
// contexts carry no image URLs.
func WithMediaResolver(media MediaResolver) Option {
	return func(s *service) {
		s.media = media
	}
}

// WithSchemas sets the block schemas; the default is NewSchemas()
func WithSchemas(schemas *Schemas) Option {
	return func(s *service) {
		s.schemas = schemas
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics
func WithMetrics(m *Metrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

// WithClock sets the source of the current time
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithLocation sets the site time zone used for event dates and titles
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		s.location = loc
	}
}

// WithReservationAddress sets the recipient of reservation requests
func WithReservationAddress(address string) Option {
	return func(s *service) {
		s.reservationAddress = address
	}
}

// WithUpcomingLimit sets the length of the upcoming events summary
func WithUpcomingLimit(n int) Option {
	return func(s *service) {
		s.upcomingLimit = n
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		logger:             slog.Default(),
		now:                time.Now,
		location:           time.UTC,
		reservationAddress: events.DefaultReservationAddress,
		upcomingLimit:      DefaultUpcomingLimit,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.upcomingLimit < 0 {
		return nil, fmt.Errorf("upcoming events limit must not be negative, got %d", s.upcomingLimit)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.eventStore == nil {
		s.eventStore = s.repository
	}
	if s.breaker != nil {
		s.eventStore = NewBreakerEventStore(s.eventStore, *s.breaker, s.logger)
	}
	if s.schemas == nil {
		schemas, err := NewSchemas()
		if err != nil {
			return nil, err
		}
		s.schemas = schemas
	}

	return s, nil
}

// Page operations

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPageKind, req.Kind)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidPage)
	}

	if req.ParentID != nil {
		parent, err := s.repository.GetPage(ctx, *req.ParentID)
		if err != nil {
			return nil, &PageError{PageID: *req.ParentID, Op: "create", Err: err}
		}
		if !parent.Kind.AllowsChild(req.Kind) {
			return nil, fmt.Errorf("%w: a %s page cannot hold a %s page", ErrInvalidParent, parent.Kind, req.Kind)
		}
	}

	var body json.RawMessage
	if req.Kind.HasBody() {
		encoded, err := s.acceptBody(req.Kind, req.Body)
		if err != nil {
			s.logger.Info("page body rejected", "kind", req.Kind, "error", err)
			return nil, err
		}
		body = encoded
	} else if !emptyBody(req.Body) {
		return nil, fmt.Errorf("%w: %s pages have no body", ErrInvalidDocument, req.Kind)
	}

	pageSlug := req.Slug
	if pageSlug == "" {
		pageSlug = slug.Slugify(req.Title)
	}

	now := s.now().UTC()
	page := &Page{
		ID:          uuid.New(),
		ParentID:    req.ParentID,
		Kind:        req.Kind,
		Title:       req.Title,
		Slug:        pageSlug,
		Live:        req.Live,
		Date:        req.Date,
		Description: req.Description,
		Author:      req.Author,
		Location:    req.Location,
		ImageID:     req.ImageID,
		Body:        body,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repository.CreatePage(ctx, page); err != nil {
		return nil, &PageError{PageID: page.ID, Op: "create", Err: err}
	}
	return page, nil
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repository.GetPage(ctx, id)
}

func (s *service) UpdatePageBody(ctx context.Context, req UpdatePageBodyRequest) (*Page, error) {
	page, err := s.repository.GetPage(ctx, req.ID)
	if err != nil {
		return nil, &PageError{PageID: req.ID, Op: "update_body", Err: err}
	}

	encoded, err := s.acceptBody(page.Kind, req.Body)
	if err != nil {
		s.logger.Info("page body rejected", "page_id", page.ID, "kind", page.Kind, "error", err)
		return nil, &PageError{PageID: page.ID, Op: "update_body", Err: err}
	}

	page.Body = encoded
	page.UpdatedAt = s.now().UTC()
	if err := s.repository.UpdatePage(ctx, page); err != nil {
		return nil, &PageError{PageID: page.ID, Op: "update_body", Err: err}
	}
	return page, nil
}

func (s *service) ValidateBody(kind PageKind, body json.RawMessage) error {
	_, _, err := s.checkBody(kind, body)
	return err
}

// acceptBody checks body for saving and returns its canonical encoding.
// Rejections are counted by reason.
func (s *service) acceptBody(kind PageKind, body json.RawMessage) (json.RawMessage, error) {
	doc, reason, err := s.checkBody(kind, body)
	if err != nil {
		if reason != "" {
			s.metrics.documentRejected(reason)
		}
		return nil, err
	}
	return blocks.EncodeDocument(doc)
}

// checkBody decodes and validates body against the schema of kind. reason
// is set when the document itself was at fault.
func (s *service) checkBody(kind PageKind, body json.RawMessage) (blocks.Document, string, error) {
	schema, err := s.schemas.For(kind)
	if err != nil {
		return nil, "", err
	}

	doc, err := schema.DecodeDocument(body)
	if err != nil {
		var shape blocks.ShapeErrors
		if errors.As(err, &shape) {
			return nil, ReasonShape, &blocks.DocumentError{Shape: shape}
		}
		return nil, ReasonSyntax, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, ReasonFields, err
	}
	return doc, "", nil
}

func emptyBody(body json.RawMessage) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]"))
}

// Read paths

func (s *service) GetPageContext(ctx context.Context, id uuid.UUID) (*PageContext, error) {
	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		return nil, &PageError{PageID: id, Op: "context", Err: err}
	}

	now := s.now()
	pc := &PageContext{Page: page, UpcomingEvents: []EventView{}}
	var images imageSet

	upcoming, err := UpcomingEvents(ctx, s.eventStore, now, nil, s.upcomingLimit)
	if err != nil {
		s.degrade(pc, RuleUpcomingEvents, err)
	} else {
		pc.UpcomingEvents = s.views(upcoming, now)
	}

	switch page.Kind {
	case KindHome, KindEventIndex:
		s.augmentBody(ctx, pc, now, &images)

	case KindGalleryIndex:
		galleries, err := s.repository.ListChildren(ctx, ChildQuery{ParentID: page.ID, Kind: KindGallery, LiveOnly: true})
		if err != nil {
			s.degrade(pc, RuleGalleries, err)
			galleries = []*Page{}
		}
		pc.Galleries = galleries
		for _, g := range galleries {
			images.add(g.ImageID)
		}

	case KindGallery:
		images.add(page.ImageID)
		photos, err := s.repository.ListChildren(ctx, ChildQuery{ParentID: page.ID, Kind: KindPhoto, LiveOnly: true, OrderBy: OrderDateDesc})
		if err != nil {
			s.degrade(pc, RulePhotos, err)
			photos = []*Page{}
		}
		pc.Photos = photos
		for _, p := range photos {
			images.add(p.ImageID)
		}

	case KindPhoto:
		images.add(page.ImageID)
		if page.ParentID != nil {
			siblings, err := s.repository.ListChildren(ctx, ChildQuery{ParentID: *page.ParentID, Kind: KindPhoto, LiveOnly: true, OrderBy: OrderDateDesc})
			if err != nil {
				s.degrade(pc, RuleSiblings, err)
			} else if prev, next, ok := SiblingNavigation(siblings, func(p *Page) bool { return p.ID == page.ID }); ok {
				pc.Previous = prev
				pc.Next = next
			}
		}
	}

	s.resolveImages(ctx, pc, images.ids)
	return pc, nil
}

func (s *service) augmentBody(ctx context.Context, pc *PageContext, now time.Time, images *imageSet) {
	page := pc.Page
	pc.Body = blocks.Document{}
	pc.Anchors = []blocks.Anchor{}

	doc, err := s.decodeStored(page)
	if err != nil {
		s.degrade(pc, RuleBody, err)
		return
	}
	pc.Body = doc
	pc.Anchors = blocks.ExtractAnchors(doc)
	images.addDocument(doc)

	resolved, err := ResolveEventLists(ctx, s.eventStore, page.ID, now, doc)
	if err != nil {
		s.degrade(pc, RuleEventLists, err)
		for _, l := range findEventLists(doc) {
			pc.EventLists = append(pc.EventLists, EventListing{
				Path:       l.path,
				BlockID:    l.id,
				EventTypes: nonNil(l.types),
				Events:     []EventView{},
			})
		}
		return
	}
	for _, r := range resolved {
		pc.EventLists = append(pc.EventLists, EventListing{
			Path:       r.Path,
			BlockID:    r.BlockID,
			EventTypes: nonNil(r.EventTypes),
			Events:     s.views(r.Events, now),
		})
	}
}

// decodeStored decodes the saved body of page.
func (s *service) decodeStored(page *Page) (blocks.Document, error) {
	schema, err := s.schemas.For(page.Kind)
	if err != nil {
		return nil, err
	}
	return schema.DecodeDocument(page.Body)
}

func (s *service) resolveImages(ctx context.Context, pc *PageContext, ids []uuid.UUID) {
	if s.media == nil || len(ids) == 0 {
		return
	}
	urls, err := s.media.ImageURLs(ctx, ids)
	if err != nil {
		s.degrade(pc, RuleImages, err)
		return
	}
	pc.ImageURLs = urls
}

func (s *service) degrade(pc *PageContext, rule string, err error) {
	pc.Degraded = append(pc.Degraded, rule)
	s.metrics.augmentationDegraded(rule)
	s.logger.Warn("augmentation degraded", "rule", rule, "page_id", pc.Page.ID, "error", err)
}

func (s *service) GetAnchors(ctx context.Context, id uuid.UUID) ([]blocks.Anchor, error) {
	page, err := s.repository.GetPage(ctx, id)
	if err != nil {
		return nil, &PageError{PageID: id, Op: "anchors", Err: err}
	}
	if !page.Kind.HasBody() {
		return []blocks.Anchor{}, nil
	}

	doc, err := s.decodeStored(page)
	if err != nil {
		s.logger.Warn("stored body cannot be decoded", "page_id", page.ID, "error", err)
		return []blocks.Anchor{}, nil
	}
	return blocks.ExtractAnchors(doc), nil
}

// Event operations

func (s *service) CreateEvent(ctx context.Context, req CreateEventRequest) (*events.Event, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, req.Type)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}

	parent, err := s.repository.GetPage(ctx, req.ParentID)
	if err != nil {
		return nil, &PageError{PageID: req.ParentID, Op: "create_event", Err: err}
	}
	if parent.Kind != KindEventIndex {
		return nil, fmt.Errorf("%w: events belong below an event index page, not a %s page", ErrInvalidParent, parent.Kind)
	}

	needsReservation := true
	if req.NeedsReservation != nil {
		needsReservation = *req.NeedsReservation
	}
	location := req.Location
	if location == "" {
		location = events.DefaultLocation
	}

	e := &events.Event{
		ID:               uuid.New(),
		ParentID:         req.ParentID,
		StartTime:        req.StartTime,
		Type:             req.Type,
		Title:            req.Title,
		Location:         location,
		Speaker:          req.Speaker,
		Abstract:         req.Abstract,
		ImageID:          req.ImageID,
		Cancelled:        req.Cancelled,
		BookedOut:        req.BookedOut,
		NeedsReservation: needsReservation,
		Live:             req.Live,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.eventStore.CreateEvent(ctx, e); err != nil {
		return nil, &EventError{EventID: e.ID, Op: "create", Err: err}
	}
	return e, nil
}

func (s *service) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	e, err := s.eventStore.GetEvent(ctx, id)
	if err != nil {
		return nil, &EventError{EventID: id, Op: "get", Err: err}
	}
	return e, nil
}

func (s *service) GetReservation(ctx context.Context, id uuid.UUID) (*EventView, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	v := s.view(e, s.now())
	return &v, nil
}

func (s *service) views(list []*events.Event, now time.Time) []EventView {
	out := make([]EventView, len(list))
	for i, e := range list {
		out[i] = s.view(e, now)
	}
	return out
}

func (s *service) view(e *events.Event, now time.Time) EventView {
	status := events.StatusOf(*e)
	return EventView{
		Event: *e,
		Reservation: Reservation{
			PageTitle:            events.PageTitle(*e, s.location),
			Slug:                 events.Slug(*e, s.location),
			WebID:                events.WebID(*e, s.location),
			Status:               status,
			StatusLabel:          status.Label(),
			WarningClass:         events.WarningClass(*e),
			FirstReservationDate: events.FirstReservationDate(*e, s.location),
			Reservable:           events.IsReservable(*e, now, s.location),
			MailtoLink:           events.ReservationMailto(*e, s.reservationAddress, s.location),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
