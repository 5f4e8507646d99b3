package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuslife/campushub/internal/data/pgxutil"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrRegistrationNotFound is returned when a registration is not found.
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrEventFull is returned when an event has no remaining capacity.
	ErrEventFull = errors.New("event is at capacity")
)

// RegistrationRepo provides database operations for event tickets.
type RegistrationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRegistrationRepo creates a new RegistrationRepo with real time provider.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo {
	return &RegistrationRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewRegistrationRepoWithTimeProvider creates a new RegistrationRepo with a custom time provider.
func NewRegistrationRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *RegistrationRepo {
	return &RegistrationRepo{DB: db, timeProvider: tp}
}

// Create inserts a confirmed ticket inside one transaction: the capacity
// count and the insert see the same snapshot, and the unique
// (event_id, user_id) constraint settles any remaining race. A previously
// cancelled ticket is revived rather than duplicated.
func (r *RegistrationRepo) Create(ctx context.Context, eventID, userID int64, ticketCode string) (*model.Registration, error) {
	now := r.timeProvider.Now().UTC()

	var out model.Registration
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		var capacity, confirmed int
		if err := tx.QueryRow(ctx, `
			SELECT e.capacity,
			       (SELECT COUNT(*) FROM registrations
			        WHERE event_id = e.id AND status = 'confirmed')
			FROM events e WHERE e.id = $1
			FOR UPDATE OF e`, eventID,
		).Scan(&capacity, &confirmed); err != nil {
			return err
		}
		if confirmed >= capacity {
			return ErrEventFull
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO registrations (event_id, user_id, ticket_code, status, created_at, updated_at)
			VALUES ($1, $2, $3, 'confirmed', $4, $4)
			ON CONFLICT (event_id, user_id) DO UPDATE
				SET status = 'confirmed', ticket_code = EXCLUDED.ticket_code, updated_at = EXCLUDED.updated_at
				WHERE registrations.status = 'cancelled'
			RETURNING `+registrationColumns,
			eventID, userID, ticketCode, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Registration])
		return err
	}})
	if err != nil {
		if errors.Is(err, ErrEventFull) {
			return nil, ErrEventFull
		}
		// A conflicting confirmed row makes the upsert return no rows.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Conflict("You are already registered for this event.")
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetForUserAndEvent retrieves a user's ticket for an event.
func (r *RegistrationRepo) GetForUserAndEvent(ctx context.Context, eventID, userID int64) (*model.Registration, error) {
	var reg model.Registration
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 AND user_id = $2`,
			eventID, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		reg, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Registration])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

// Cancel marks a user's confirmed ticket as cancelled. Cancelling an
// already-cancelled or missing ticket returns ErrRegistrationNotFound.
func (r *RegistrationRepo) Cancel(ctx context.Context, eventID, userID int64) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `
			UPDATE registrations SET status = 'cancelled', updated_at = $1
			WHERE event_id = $2 AND user_id = $3 AND status = 'confirmed'`,
			r.timeProvider.Now().UTC(), eventID, userID)
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
		return ErrRegistrationNotFound
	}
	return nil
}

// ListForUser retrieves a user's tickets joined with their events.
func (r *RegistrationRepo) ListForUser(ctx context.Context, userID int64) ([]*model.RegistrationWithEvent, error) {
	var rowsOut []model.RegistrationWithEvent
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT r.id, r.event_id, r.user_id, r.ticket_code, r.status, r.created_at, r.updated_at,
			       e.title AS event_title, e.location AS event_location, e.starts_at AS event_starts_at
			FROM registrations r
			JOIN events e ON e.id = r.event_id
			WHERE r.user_id = $1
			ORDER BY e.starts_at ASC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.RegistrationWithEvent])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list registrations for user: %w", err)
	}

	res := make([]*model.RegistrationWithEvent, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// ListForEvent retrieves all tickets for one event.
func (r *RegistrationRepo) ListForEvent(ctx context.Context, eventID int64) ([]*model.Registration, error) {
	var rowsOut []model.Registration
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY created_at ASC`,
			eventID)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Registration])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list registrations for event: %w", err)
	}

	res := make([]*model.Registration, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// CountConfirmed returns the number of live tickets for an event.
func (r *RegistrationRepo) CountConfirmed(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = 'confirmed'`,
			eventID).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}

// registrationColumns is the standard column list for registration queries.
const registrationColumns = `id, event_id, user_id, ticket_code, status, created_at, updated_at`
