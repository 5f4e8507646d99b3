package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/campuslife/campushub/internal/data/pgxutil"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrEventNotFound is returned when an event is not found.
	ErrEventNotFound = errors.New("event not found")
)

// EventRepo provides database operations for campus events.
type EventRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEventRepo creates a new EventRepo with real time provider.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewEventRepoWithTimeProvider creates a new EventRepo with a custom time provider.
func NewEventRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EventRepo {
	return &EventRepo{DB: db, timeProvider: tp}
}

// Create inserts a new event in pending status.
func (r *EventRepo) Create(ctx context.Context, organizerID int64, req *model.CreateEventRequest) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("create event request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	now := r.timeProvider.Now().UTC()
	var out model.Event
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO events (
				title, description, location, starts_at, ends_at, capacity, status, organizer_id, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, 'pending', $7, $8, $8
			) RETURNING `+eventColumns,
			req.Title,
			req.Description,
			req.Location,
			req.StartsAt.UTC(),
			req.EndsAt.UTC(),
			req.Capacity,
			organizerID,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Event])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves an event by ID.
func (r *EventRepo) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	var event model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		event, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Event])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by ID: %w", err)
	}
	return &event, nil
}

// List retrieves events with optional filters and pagination.
func (r *EventRepo) List(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		args = append(args, "%"+strings.TrimSpace(*opts.Q)+"%")
		where = append(where, "title ILIKE $"+strconv.Itoa(len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if opts.OrganizerID != nil {
		args = append(args, *opts.OrganizerID)
		where = append(where, "organizer_id = $"+strconv.Itoa(len(args)))
	}
	if opts.UpcomingOnly {
		args = append(args, r.timeProvider.Now().UTC())
		where = append(where, "starts_at > $"+strconv.Itoa(len(args)))
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY starts_at ASC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Event
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Event])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	res := make([]*model.Event, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update applies a partial update and returns the fresh row.
func (r *EventRepo) Update(ctx context.Context, id int64, req model.UpdateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	setClause, args := r.buildUpdateClause(req)
	args = append(args, id)
	query := "UPDATE events SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + eventColumns

	var out model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Event])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// buildUpdateClause builds the SQL SET clause and args for an event update.
func (r *EventRepo) buildUpdateClause(req model.UpdateEventRequest) (string, []any) {
	setParts := make([]string, 0, 7)
	args := make([]any, 0, 7)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, *req.Title)
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", nextIdx()))
		args = append(args, *req.Description)
	}
	if req.Location != nil {
		setParts = append(setParts, fmt.Sprintf("location = $%d", nextIdx()))
		args = append(args, *req.Location)
	}
	if req.StartsAt != nil {
		setParts = append(setParts, fmt.Sprintf("starts_at = $%d", nextIdx()))
		args = append(args, req.StartsAt.UTC())
	}
	if req.EndsAt != nil {
		setParts = append(setParts, fmt.Sprintf("ends_at = $%d", nextIdx()))
		args = append(args, req.EndsAt.UTC())
	}
	if req.Capacity != nil {
		setParts = append(setParts, fmt.Sprintf("capacity = $%d", nextIdx()))
		args = append(args, *req.Capacity)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// SetStatus moves an event through the approval workflow.
func (r *EventRepo) SetStatus(ctx context.Context, id int64, status model.EventStatus) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx,
			`UPDATE events SET status = $1, updated_at = $2 WHERE id = $3`,
			status, r.timeProvider.Now().UTC(), id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// eventColumns is the standard column list for event queries.
const eventColumns = `id, title, description, location, starts_at, ends_at, capacity, status,
		organizer_id, created_at, updated_at`
