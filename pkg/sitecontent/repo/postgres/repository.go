package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/beobgrp/sitecontent/pkg/sitecontent"
	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables of the repository if they do not exist.
//
//go:embed schema.sql
var Schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements sitecontent.Repository using PostgreSQL.
// Both tables carry a serial seq column; it breaks ties in ordered queries
// so equal dates and start times keep insertion order.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate applies Schema.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "event") {
				return fmt.Errorf("event already exists")
			}
			return fmt.Errorf("page already exists")
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced parent page does not exist", sitecontent.ErrPageNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Page operations

const pageColumns = `id, parent_id, kind, title, slug, live, date, description,
	author, location, image_id, body, created_at, updated_at`

func scanPage(row pgx.Row) (*sitecontent.Page, error) {
	var (
		p    sitecontent.Page
		kind string
		body []byte
	)
	err := row.Scan(
		&p.ID, &p.ParentID, &kind, &p.Title, &p.Slug, &p.Live, &p.Date, &p.Description,
		&p.Author, &p.Location, &p.ImageID, &body, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Kind = sitecontent.PageKind(kind)
	p.Body = body
	return &p, nil
}

// nullableBody stores an absent body as SQL NULL.
func nullableBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	return string(body)
}

func (r *Repository) CreatePage(ctx context.Context, page *sitecontent.Page) error {
	query := `
		INSERT INTO site_page (` + pageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		page.ID, page.ParentID, string(page.Kind), page.Title, page.Slug, page.Live, page.Date,
		page.Description, page.Author, page.Location, page.ImageID, nullableBody(page.Body),
		page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create page", err)
	}
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*sitecontent.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM site_page WHERE id = $1`

	page, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sitecontent.ErrPageNotFound
		}
		return nil, r.handlePostgresError("get page", err)
	}
	return page, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *sitecontent.Page) error {
	query := `
		UPDATE site_page SET
			parent_id = $2, kind = $3, title = $4, slug = $5, live = $6, date = $7,
			description = $8, author = $9, location = $10, image_id = $11, body = $12,
			updated_at = $13
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		page.ID, page.ParentID, string(page.Kind), page.Title, page.Slug, page.Live, page.Date,
		page.Description, page.Author, page.Location, page.ImageID, nullableBody(page.Body),
		page.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update page", err)
	}
	if tag.RowsAffected() == 0 {
		return sitecontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) ListChildren(ctx context.Context, q sitecontent.ChildQuery) ([]*sitecontent.Page, error) {
	query, args := buildChildQuery(q)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	defer rows.Close()

	result := []*sitecontent.Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		result = append(result, page)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list children", err)
	}
	return result, nil
}

// buildChildQuery builds the child page query for q
func buildChildQuery(q sitecontent.ChildQuery) (string, []interface{}) {
	query := `SELECT ` + pageColumns + ` FROM site_page WHERE parent_id = $1`
	args := []interface{}{q.ParentID}
	argIndex := 2

	if q.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argIndex)
		args = append(args, string(q.Kind))
		argIndex++
	}
	if q.LiveOnly {
		query += " AND live"
	}

	switch q.OrderBy {
	case sitecontent.OrderDateDesc:
		query += " ORDER BY date DESC, seq ASC"
	default:
		query += " ORDER BY seq ASC"
	}
	return query, args
}

// Event operations

const eventColumns = `id, parent_id, start_time, event_type, title, location, speaker,
	abstract, image_id, cancelled, booked_out, needs_reservation, live, created_at`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		e   events.Event
		typ string
	)
	err := row.Scan(
		&e.ID, &e.ParentID, &e.StartTime, &typ, &e.Title, &e.Location, &e.Speaker,
		&e.Abstract, &e.ImageID, &e.Cancelled, &e.BookedOut, &e.NeedsReservation, &e.Live, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Type = events.Type(typ)
	return &e, nil
}

func (r *Repository) CreateEvent(ctx context.Context, event *events.Event) error {
	query := `
		INSERT INTO site_event (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		event.ID, event.ParentID, event.StartTime, string(event.Type), event.Title, event.Location,
		event.Speaker, event.Abstract, event.ImageID, event.Cancelled, event.BookedOut,
		event.NeedsReservation, event.Live, event.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create event", err)
	}
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM site_event WHERE id = $1`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sitecontent.ErrEventNotFound
		}
		return nil, r.handlePostgresError("get event", err)
	}
	return event, nil
}

func (r *Repository) QueryEvents(ctx context.Context, q sitecontent.EventQuery) ([]*events.Event, error) {
	query, args := buildEventQuery(q)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("query events", err)
	}
	defer rows.Close()

	result := []*events.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("query events", err)
	}
	return result, nil
}

// buildEventQuery builds the event query for q. Equal start times are
// ordered by seq, the insertion order.
func buildEventQuery(q sitecontent.EventQuery) (string, []interface{}) {
	query := `SELECT ` + eventColumns + ` FROM site_event WHERE start_time >= $1`
	args := []interface{}{q.StartFrom}
	argIndex := 2

	if q.Scope != nil {
		query += fmt.Sprintf(" AND parent_id = $%d", argIndex)
		args = append(args, *q.Scope)
		argIndex++
	}
	if q.LiveOnly {
		query += " AND live"
	}
	if len(q.Types) > 0 {
		types := make([]string, len(q.Types))
		for i, t := range q.Types {
			types[i] = string(t)
		}
		query += fmt.Sprintf(" AND event_type = ANY($%d)", argIndex)
		args = append(args, types)
		argIndex++
	}

	query += " ORDER BY start_time ASC, seq ASC"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
	}
	return query, args
}
