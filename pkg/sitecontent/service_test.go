package sitecontent_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/blocks"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/repo/memory"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type failingEventStore struct{}

var errStoreDown = errors.New("event store down")

func (failingEventStore) CreateEvent(ctx context.Context, event *events.Event) error {
	return errStoreDown
}

func (failingEventStore) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	return nil, errStoreDown
}

func (failingEventStore) QueryEvents(ctx context.Context, q sitecontent.EventQuery) ([]*events.Event, error) {
	return nil, errStoreDown
}

type fakeMedia struct {
	calls int
	ids   []uuid.UUID
	err   error
}

func (m *fakeMedia) ImageURLs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	m.calls++
	m.ids = append(m.ids, ids...)
	if m.err != nil {
		return nil, m.err
	}
	urls := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		urls[id] = "https://media.example/" + id.String()
	}
	return urls, nil
}

func newService(t *testing.T, opts ...sitecontent.Option) sitecontent.Service {
	t.Helper()
	opts = append([]sitecontent.Option{
		sitecontent.WithRepository(memory.New()),
		sitecontent.WithClock(clock),
	}, opts...)
	svc, err := sitecontent.New(opts...)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	_, err := sitecontent.New()
	assert.EqualError(t, err, "repository is required")

	_, err = sitecontent.New(sitecontent.WithRepository(memory.New()), sitecontent.WithUpcomingLimit(-1))
	assert.Error(t, err)
}

func TestCreatePage(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics, err := sitecontent.NewMetrics(reg)
	require.NoError(t, err)
	svc := newService(t, sitecontent.WithMetrics(metrics))

	home, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{
		Kind:  sitecontent.KindHome,
		Title: "Unser Verein",
		Body:  json.RawMessage(`[{"type": "h1", "value": "Willkommen"}, {"type": "columns", "value": {"content": []}}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "unser-verein", home.Slug)
	assert.JSONEq(t, `[
		{"type": "h1", "value": "Willkommen"},
		{"type": "columns", "value": {"columns": 2, "content": []}}
	]`, string(home.Body))

	stored, err := svc.GetPage(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, home.Body, stored.Body)

	t.Run("rejections", func(t *testing.T) {
		gallery, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGalleryIndex, Title: "Galerie", ParentID: &home.ID})
		require.NoError(t, err)
		missing := uuid.New()

		tests := []struct {
			name string
			req  sitecontent.CreatePageRequest
			want error
		}{
			{"unknown kind", sitecontent.CreatePageRequest{Kind: "blog", Title: "x"}, sitecontent.ErrUnknownPageKind},
			{"blank title", sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "  "}, sitecontent.ErrInvalidPage},
			{"parent missing", sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "x", ParentID: &missing}, sitecontent.ErrPageNotFound},
			{"photo below gallery index", sitecontent.CreatePageRequest{Kind: sitecontent.KindPhoto, Title: "x", ParentID: &gallery.ID}, sitecontent.ErrInvalidParent},
			{"body on a gallery", sitecontent.CreatePageRequest{Kind: sitecontent.KindGallery, Title: "x", ParentID: &gallery.ID, Body: json.RawMessage(`[{"type": "h1", "value": "x"}]`)}, sitecontent.ErrInvalidDocument},
			{"malformed body", sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "x", Body: json.RawMessage(`[{`)}, sitecontent.ErrInvalidDocument},
			{"event list outside the program", sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "x", Body: json.RawMessage(`[{"type": "event_list", "value": {}}]`)}, sitecontent.ErrInvalidDocument},
			{"link without target", sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "x", Body: json.RawMessage(`[{"type": "link", "value": {"linkType": "internal", "text": "x"}}]`)}, sitecontent.ErrInvalidDocument},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				page, err := svc.CreatePage(ctx, tt.req)
				assert.Nil(t, page)
				assert.ErrorIs(t, err, tt.want)
			})
		}

		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DocumentsRejected.WithLabelValues(sitecontent.ReasonSyntax)))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DocumentsRejected.WithLabelValues(sitecontent.ReasonShape)))
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DocumentsRejected.WithLabelValues(sitecontent.ReasonFields)))
	})

	t.Run("event index holds programs and galleries", func(t *testing.T) {
		program, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindEventIndex, Title: "Programm", ParentID: &home.ID})
		require.NoError(t, err)

		archive, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindEventIndex, Title: "Archiv", ParentID: &program.ID})
		require.NoError(t, err)
		assert.Equal(t, program.ID, *archive.ParentID)

		_, err = svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGallery, Title: "Sternwarte", ParentID: &program.ID})
		require.NoError(t, err)

		_, err = svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "x", ParentID: &program.ID})
		assert.ErrorIs(t, err, sitecontent.ErrInvalidParent)
	})

	t.Run("gallery without body gets slug", func(t *testing.T) {
		idx, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGalleryIndex, Title: "Fotos", Slug: "bilder", ParentID: &home.ID, Body: json.RawMessage(`[]`)})
		require.NoError(t, err)
		assert.Equal(t, "bilder", idx.Slug)
		assert.Empty(t, idx.Body)
	})
}

func TestValidateBody(t *testing.T) {
	svc := newService(t)

	err := svc.ValidateBody(sitecontent.KindEventIndex, json.RawMessage(`[
		{"type": "h2", "value": "Termine"},
		{"type": "event_list", "value": {"event_types": ["Vortrag"]}}
	]`))
	assert.NoError(t, err)

	err = svc.ValidateBody(sitecontent.KindHome, json.RawMessage(`[
		{"type": "video", "value": "x"},
		{"type": "link", "value": {"linkType": "external", "text": "x"}}
	]`))
	var derr *blocks.DocumentError
	require.ErrorAs(t, err, &derr)
	require.Len(t, derr.Shape, 1)
	assert.Equal(t, "/0", derr.Shape[0].Path)

	err = svc.ValidateBody(sitecontent.KindHome, json.RawMessage(`[{"type": "link", "value": {"linkType": "external", "text": "x"}}]`))
	require.ErrorAs(t, err, &derr)
	assert.Contains(t, derr.Fields, "/0")

	assert.ErrorIs(t, svc.ValidateBody(sitecontent.KindPhoto, json.RawMessage(`[]`)), sitecontent.ErrInvalidDocument)
	assert.ErrorIs(t, svc.ValidateBody("blog", json.RawMessage(`[]`)), sitecontent.ErrUnknownPageKind)
}

func TestUpdatePageBody(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	home, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "Start"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(home.Body))

	updated, err := svc.UpdatePageBody(ctx, sitecontent.UpdatePageBodyRequest{ID: home.ID, Body: json.RawMessage(`[{"type": "h3", "value": "Neu"}]`)})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type": "h3", "value": "Neu"}]`, string(updated.Body))

	_, err = svc.UpdatePageBody(ctx, sitecontent.UpdatePageBodyRequest{ID: home.ID, Body: json.RawMessage(`[{"type": "h3", "value": 42}]`)})
	var perr *sitecontent.PageError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "update_body", perr.Op)
	assert.ErrorIs(t, err, sitecontent.ErrInvalidDocument)

	_, err = svc.UpdatePageBody(ctx, sitecontent.UpdatePageBodyRequest{ID: uuid.New(), Body: json.RawMessage(`[]`)})
	assert.ErrorIs(t, err, sitecontent.ErrPageNotFound)
}

// programFixture creates a home page with an event index below it.
func programFixture(t *testing.T, svc sitecontent.Service, body string) (home, program *sitecontent.Page) {
	t.Helper()
	ctx := context.Background()
	home, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "Start", Live: true})
	require.NoError(t, err)
	program, err = svc.CreatePage(ctx, sitecontent.CreatePageRequest{
		Kind: sitecontent.KindEventIndex, Title: "Programm", ParentID: &home.ID, Live: true, Body: json.RawMessage(body),
	})
	require.NoError(t, err)
	return home, program
}

func addEvent(t *testing.T, svc sitecontent.Service, parent uuid.UUID, title string, typ events.Type, start time.Time, live bool) *events.Event {
	t.Helper()
	e, err := svc.CreateEvent(context.Background(), sitecontent.CreateEventRequest{
		ParentID: parent, Title: title, Type: typ, StartTime: start, Live: live,
	})
	require.NoError(t, err)
	return e
}

func eventTitles(list []sitecontent.EventView) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.Title
	}
	return out
}

func TestGetPageContext_EventIndex(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	home, program := programFixture(t, svc, `[
		{"type": "h2", "value": "Vorträge"},
		{"type": "event_list", "value": {"event_types": ["Vortrag"]}},
		{"type": "h2", "value": "Alles"},
		{"type": "event_list", "value": {}}
	]`)

	addEvent(t, svc, program.ID, "t+3", events.TypeTalk, testNow.Add(3*time.Hour), true)
	addEvent(t, svc, program.ID, "t+1", events.TypeExcursion, testNow.Add(time.Hour), true)
	addEvent(t, svc, program.ID, "t+2", events.TypeTalk, testNow.Add(2*time.Hour), true)
	addEvent(t, svc, program.ID, "draft", events.TypeTalk, testNow.Add(time.Hour), false)
	addEvent(t, svc, program.ID, "past", events.TypeTalk, testNow.Add(-time.Hour), true)

	pc, err := svc.GetPageContext(ctx, program.ID)
	require.NoError(t, err)
	assert.Empty(t, pc.Degraded)

	assert.Equal(t, []string{"t+1", "t+2"}, eventTitles(pc.UpcomingEvents))

	require.Len(t, pc.EventLists, 2)
	assert.Equal(t, "/1", pc.EventLists[0].Path)
	assert.Equal(t, []string{"Vortrag"}, pc.EventLists[0].EventTypes)
	assert.Equal(t, []string{"t+2", "t+3"}, eventTitles(pc.EventLists[0].Events))
	assert.Equal(t, "/3", pc.EventLists[1].Path)
	assert.Equal(t, []string{}, pc.EventLists[1].EventTypes)
	assert.Equal(t, []string{"t+1", "t+2", "t+3"}, eventTitles(pc.EventLists[1].Events))

	require.Len(t, pc.Anchors, 2)
	assert.Equal(t, "Vorträge", pc.Anchors[0].Label)
	assert.Equal(t, "Alles", pc.Anchors[1].Label)
	assert.Len(t, pc.Body, 4)

	// the summary spans the whole site, event lists only the page
	homeCtx, err := svc.GetPageContext(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t+1", "t+2"}, eventTitles(homeCtx.UpcomingEvents))
	assert.Empty(t, homeCtx.EventLists)

	// reservation data rides along with every listed event
	first := pc.UpcomingEvents[0]
	assert.True(t, strings.HasPrefix(first.MailtoLink, "mailto:"+events.DefaultReservationAddress+"?subject="))
	assert.Equal(t, events.StatusNone, first.Status)
}

func TestGetPageContext_Degraded(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	reg := prometheus.NewRegistry()
	metrics, err := sitecontent.NewMetrics(reg)
	require.NoError(t, err)

	svc, err := sitecontent.New(
		sitecontent.WithRepository(repo),
		sitecontent.WithEventStore(failingEventStore{}),
		sitecontent.WithClock(clock),
		sitecontent.WithMetrics(metrics),
	)
	require.NoError(t, err)

	_, program := programFixture(t, svc, `[{"type": "event_list", "value": {"event_types": ["Ausflug"]}}]`)

	pc, err := svc.GetPageContext(ctx, program.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{sitecontent.RuleUpcomingEvents, sitecontent.RuleEventLists}, pc.Degraded)
	assert.Empty(t, pc.UpcomingEvents)
	require.Len(t, pc.EventLists, 1)
	assert.Equal(t, []string{"Ausflug"}, pc.EventLists[0].EventTypes)
	assert.Empty(t, pc.EventLists[0].Events)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AugmentationDegraded.WithLabelValues(sitecontent.RuleUpcomingEvents)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AugmentationDegraded.WithLabelValues(sitecontent.RuleEventLists)))

	t.Run("undecodable stored body", func(t *testing.T) {
		page := &sitecontent.Page{ID: uuid.New(), Kind: sitecontent.KindHome, Title: "kaputt", Body: json.RawMessage(`{"not": "a list"}`)}
		require.NoError(t, repo.CreatePage(ctx, page))

		pc, err := svc.GetPageContext(ctx, page.ID)
		require.NoError(t, err)
		assert.Contains(t, pc.Degraded, sitecontent.RuleBody)
		assert.Empty(t, pc.Body)
		assert.Empty(t, pc.Anchors)

		anchors, err := svc.GetAnchors(ctx, page.ID)
		require.NoError(t, err)
		assert.Empty(t, anchors)
	})

	t.Run("missing page", func(t *testing.T) {
		_, err := svc.GetPageContext(ctx, uuid.New())
		assert.ErrorIs(t, err, sitecontent.ErrPageNotFound)
	})
}

func TestGetPageContext_Gallery(t *testing.T) {
	ctx := context.Background()
	media := &fakeMedia{}
	svc := newService(t, sitecontent.WithMediaResolver(media))

	home, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindHome, Title: "Start", Live: true})
	require.NoError(t, err)
	index, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGalleryIndex, Title: "Galerie", ParentID: &home.ID, Live: true})
	require.NoError(t, err)
	cover := uuid.New()
	gallery, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGallery, Title: "Sonnenfinsternis", ParentID: &index.ID, Live: true, ImageID: &cover})
	require.NoError(t, err)
	_, err = svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGallery, Title: "Entwurf", ParentID: &index.ID})
	require.NoError(t, err)

	day := func(d int) time.Time { return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC) }
	photo := func(title string, date time.Time) *sitecontent.Page {
		img := uuid.New()
		p, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindPhoto, Title: title, ParentID: &gallery.ID, Live: true, Date: date, ImageID: &img})
		require.NoError(t, err)
		return p
	}
	p1 := photo("erstes", day(1))
	p3 := photo("drittes", day(3))
	p2 := photo("zweites", day(2))

	t.Run("gallery index lists live galleries", func(t *testing.T) {
		pc, err := svc.GetPageContext(ctx, index.ID)
		require.NoError(t, err)
		require.Len(t, pc.Galleries, 1)
		assert.Equal(t, gallery.ID, pc.Galleries[0].ID)
		assert.Equal(t, "https://media.example/"+cover.String(), pc.ImageURLs[cover])
	})

	t.Run("gallery lists photos newest first", func(t *testing.T) {
		media.calls = 0
		pc, err := svc.GetPageContext(ctx, gallery.ID)
		require.NoError(t, err)
		require.Len(t, pc.Photos, 3)
		assert.Equal(t, []uuid.UUID{p3.ID, p2.ID, p1.ID}, []uuid.UUID{pc.Photos[0].ID, pc.Photos[1].ID, pc.Photos[2].ID})
		assert.Equal(t, 1, media.calls)
		assert.Len(t, pc.ImageURLs, 4)
	})

	t.Run("photo navigation wraps around", func(t *testing.T) {
		tests := []struct {
			current    *sitecontent.Page
			prev, next *sitecontent.Page
		}{
			{p3, p1, p2},
			{p2, p3, p1},
			{p1, p2, p3},
		}
		for _, tt := range tests {
			pc, err := svc.GetPageContext(ctx, tt.current.ID)
			require.NoError(t, err)
			require.NotNil(t, pc.Previous)
			require.NotNil(t, pc.Next)
			assert.Equal(t, tt.prev.ID, pc.Previous.ID, tt.current.Title)
			assert.Equal(t, tt.next.ID, pc.Next.ID, tt.current.Title)
		}
	})

	t.Run("media failure degrades", func(t *testing.T) {
		failing := newService(t, sitecontent.WithMediaResolver(&fakeMedia{err: errors.New("s3 down")}))
		img := uuid.New()
		g, err := failing.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGallery, Title: "solo", ImageID: &img})
		require.NoError(t, err)

		pc, err := failing.GetPageContext(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{sitecontent.RuleImages}, pc.Degraded)
		assert.Empty(t, pc.ImageURLs)
	})
}

func TestGetPageContext_SinglePhoto(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	gallery, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindGallery, Title: "Mond", Live: true})
	require.NoError(t, err)
	only, err := svc.CreatePage(ctx, sitecontent.CreatePageRequest{Kind: sitecontent.KindPhoto, Title: "Vollmond", ParentID: &gallery.ID, Live: true})
	require.NoError(t, err)

	pc, err := svc.GetPageContext(ctx, only.ID)
	require.NoError(t, err)
	assert.Nil(t, pc.Previous)
	assert.Nil(t, pc.Next)
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	home, program := programFixture(t, svc, `[]`)

	e := addEvent(t, svc, program.ID, "Die Jupitermonde", events.TypeTalk, testNow.Add(48*time.Hour), true)
	assert.Equal(t, events.DefaultLocation, e.Location)
	assert.True(t, e.NeedsReservation)
	assert.Equal(t, testNow, e.CreatedAt)

	got, err := svc.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	no := false
	tests := []struct {
		name string
		req  sitecontent.CreateEventRequest
		want error
	}{
		{"unknown type", sitecontent.CreateEventRequest{ParentID: program.ID, Title: "x", Type: "Konzert", StartTime: testNow}, sitecontent.ErrInvalidEvent},
		{"no start", sitecontent.CreateEventRequest{ParentID: program.ID, Title: "x", Type: events.TypeTalk}, sitecontent.ErrInvalidEvent},
		{"no title", sitecontent.CreateEventRequest{ParentID: program.ID, Type: events.TypeTalk, StartTime: testNow}, sitecontent.ErrInvalidEvent},
		{"below home", sitecontent.CreateEventRequest{ParentID: home.ID, Title: "x", Type: events.TypeTalk, StartTime: testNow, NeedsReservation: &no}, sitecontent.ErrInvalidParent},
		{"missing parent", sitecontent.CreateEventRequest{ParentID: uuid.New(), Title: "x", Type: events.TypeTalk, StartTime: testNow}, sitecontent.ErrPageNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = svc.GetEvent(ctx, uuid.New())
	var eerr *sitecontent.EventError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "get", eerr.Op)
	assert.ErrorIs(t, err, sitecontent.ErrEventNotFound)
}

func TestGetReservation(t *testing.T) {
	ctx := context.Background()
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	svc := newService(t, sitecontent.WithLocation(berlin), sitecontent.WithReservationAddress("anmeldung@example.org"))
	_, program := programFixture(t, svc, `[]`)

	start := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC) // 19:30 in Berlin
	e, err := svc.CreateEvent(ctx, sitecontent.CreateEventRequest{
		ParentID: program.ID, Title: "Die Jupitermonde", Type: events.TypeTalk, StartTime: start, Speaker: "Dr. Io", BookedOut: true, Live: true,
	})
	require.NoError(t, err)

	v, err := svc.GetReservation(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14 19:30 - Die Jupitermonde", v.PageTitle)
	assert.Equal(t, "2025-03-14-19-30-die-jupitermonde", v.Slug)
	assert.Len(t, v.WebID, 8)
	assert.Equal(t, events.StatusBookedOut, v.Status)
	assert.Equal(t, "ausgebucht", v.StatusLabel)
	assert.Equal(t, "2025-02-14", v.FirstReservationDate.Format("2006-01-02"))
	assert.Equal(t, "not-available", v.WarningClass)
	assert.False(t, v.Reservable)
	assert.True(t, strings.HasPrefix(v.MailtoLink, "mailto:anmeldung@example.org?subject="))

	_, err = svc.GetReservation(ctx, uuid.New())
	assert.ErrorIs(t, err, sitecontent.ErrEventNotFound)
}
