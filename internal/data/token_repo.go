package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/campuslife/campushub/internal/data/pgxutil"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrTokenNotUsable is returned when a token is unknown, already used, or expired.
	// Callers surface one generic message for all three so the cases are indistinguishable.
	ErrTokenNotUsable = errors.New("token not usable")
)

// TokenRepo provides database operations for mailed single-use auth tokens.
// Only token hashes are stored; expiry is evaluated lazily at consume time
// and nothing sweeps expired rows in the background.
type TokenRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTokenRepo creates a new TokenRepo with real time provider.
func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewTokenRepoWithTimeProvider creates a new TokenRepo with a custom time provider.
func NewTokenRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *TokenRepo {
	return &TokenRepo{DB: db, timeProvider: tp}
}

// Issue stores a new token hash for the user and purpose. Any earlier
// unused token of the same purpose is retired in the same transaction, so
// at most one token per purpose is live per user.
func (r *TokenRepo) Issue(ctx context.Context, userID int64, purpose model.TokenPurpose, tokenHash string) (*model.AuthToken, error) {
	if !purpose.Valid() {
		return nil, fmt.Errorf("invalid token purpose %q", purpose)
	}

	now := r.timeProvider.Now().UTC()
	expiresAt := now.Add(purpose.TTL())

	var out model.AuthToken
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE auth_tokens SET used_at = $1
			WHERE user_id = $2 AND purpose = $3 AND used_at IS NULL`,
			now, userID, purpose,
		); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			INSERT INTO auth_tokens (user_id, token_hash, purpose, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, user_id, token_hash, purpose, expires_at, used_at, created_at`,
			userID, tokenHash, purpose, expiresAt, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AuthToken])
		return err
	}})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Consume atomically marks a live token as used and returns it. Unknown,
// already-used, and expired tokens all come back as ErrTokenNotUsable;
// the UPDATE's WHERE clause is the single-use guarantee, so two racing
// consumers can never both succeed.
func (r *TokenRepo) Consume(ctx context.Context, tokenHash string, purpose model.TokenPurpose) (*model.AuthToken, error) {
	now := r.timeProvider.Now().UTC()

	var out model.AuthToken
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE auth_tokens SET used_at = $1
			WHERE token_hash = $2 AND purpose = $3 AND used_at IS NULL AND expires_at > $1
			RETURNING id, user_id, token_hash, purpose, expires_at, used_at, created_at`,
			now, tokenHash, purpose,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AuthToken])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotUsable
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// PurgeExpired deletes tokens whose expiry is older than the cutoff.
// Optional housekeeping for an admin task; correctness never depends on it.
func (r *TokenRepo) PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := r.timeProvider.Now().UTC().Add(-olderThan)
	var deleted int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at < $1`, cutoff)
		if err != nil {
			return err
		}
		deleted = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge tokens: %w", err)
	}
	return deleted, nil
}
