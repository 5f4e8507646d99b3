package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/campuslife/campushub/internal/data/pgxutil"
	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepo provides database operations for user accounts.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

// Create inserts a new user. Duplicate username/email surfaces as a
// Conflict AppError via the unique constraints; callers must not rely on
// a prior existence check for correctness.
func (r *UserRepo) Create(ctx context.Context, p *model.CreateUserParams) (*model.User, error) {
	if p == nil {
		return nil, errors.New("create user params are required")
	}

	now := r.timeProvider.Now().UTC()
	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (
				username, email, password_hash, first_name, last_name, department, phone, role, status, email_verified, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, 'active', FALSE, $9, $9
			) RETURNING `+userColumns,
			p.Username,
			p.Email,
			p.PasswordHash,
			p.FirstName,
			p.LastName,
			p.Department,
			p.Phone,
			p.Role,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getByQuery(ctx, userGetByIDQuery, "failed to get user by ID", id)
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByUsernameQuery, "failed to get user by username", username)
}

// GetByEmail retrieves a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByEmailQuery, "failed to get user by email", email)
}

// GetByIdentifier retrieves a user whose username OR email matches exactly.
// Login accepts either in one field.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return r.getByQuery(ctx, userGetByIdentifierQuery, "failed to get user by identifier", identifier)
}

// ExistsByUsernameOrEmail reports whether any row already holds the given
// username or email. This is an early exit for friendlier registration
// errors; the unique constraints remain the authoritative guard.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
			username, email,
		).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// EmailTakenByOther reports whether a different user already holds email.
func (r *UserRepo) EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
			email, excludeID,
		).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check email ownership: %w", err)
	}
	return exists, nil
}

// UpdateProfile applies a partial update over the profile allow-list and
// returns the fresh row. An empty params set returns the current row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, p model.UpdateProfileParams) (*model.User, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}

	setClause, args := r.buildProfileClause(p)
	args = append(args, id)
	query := "UPDATE users SET " + setClause + " WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + userColumns

	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var e error
		out, e = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return e
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// buildProfileClause builds the SQL SET clause and args for a profile update.
func (r *UserRepo) buildProfileClause(p model.UpdateProfileParams) (string, []any) {
	setParts := make([]string, 0, 6)
	args := make([]any, 0, 6)
	nextIdx := func() int { return len(args) + 1 }

	if p.FirstName != nil {
		setParts = append(setParts, fmt.Sprintf("first_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*p.FirstName))
	}
	if p.LastName != nil {
		setParts = append(setParts, fmt.Sprintf("last_name = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*p.LastName))
	}
	if p.Email != nil {
		setParts = append(setParts, fmt.Sprintf("email = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*p.Email))
	}
	if p.Department != nil {
		setParts = append(setParts, fmt.Sprintf("department = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*p.Department))
	}
	if p.Phone != nil {
		setParts = append(setParts, fmt.Sprintf("phone = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*p.Phone))
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	return strings.Join(setParts, ", "), args
}

// UpdatePasswordHash stores a new password hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.execOnUser(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, r.timeProvider.Now().UTC(), id)
}

// SetRole reassigns a user's role.
func (r *UserRepo) SetRole(ctx context.Context, id int64, role domainauth.Role) error {
	return r.execOnUser(ctx,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
		role, r.timeProvider.Now().UTC(), id)
}

// SetStatus suspends or reactivates an account.
func (r *UserRepo) SetStatus(ctx context.Context, id int64, status model.UserStatus) error {
	return r.execOnUser(ctx,
		`UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`,
		status, r.timeProvider.Now().UTC(), id)
}

// MarkEmailVerified flips the email_verified flag.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id int64) error {
	return r.execOnUser(ctx,
		`UPDATE users SET email_verified = TRUE, updated_at = $1 WHERE id = $2`,
		r.timeProvider.Now().UTC(), id)
}

// TouchLastSeen bumps last_seen_at, typically after a successful login.
func (r *UserRepo) TouchLastSeen(ctx context.Context, id int64) error {
	return r.execOnUser(ctx,
		`UPDATE users SET last_seen_at = $1 WHERE id = $2`,
		r.timeProvider.Now().UTC(), id)
}

// Search retrieves users matching the admin search filters.
func (r *UserRepo) Search(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		args = append(args, "%"+strings.TrimSpace(*opts.Q)+"%")
		idx := strconv.Itoa(len(args))
		where = append(where,
			"(username ILIKE $"+idx+" OR email ILIKE $"+idx+
				" OR first_name ILIKE $"+idx+" OR last_name ILIKE $"+idx+")")
	}
	if opts.Role != nil {
		args = append(args, *opts.Role)
		where = append(where, "role = $"+strconv.Itoa(len(args)))
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	res := make([]*model.User, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// --- helpers ---

// userColumns is the standard column list for user queries.
const userColumns = `id, username, email, password_hash, first_name, last_name, department, phone,
		role, status, email_verified, last_seen_at, created_at, updated_at`

const (
	userGetByIDQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	userGetByUsernameQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`

	userGetByEmailQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`

	userGetByIdentifierQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = $1`
)

// getByQuery is a helper function to execute a query and return a single user.
func (r *UserRepo) getByQuery(
	ctx context.Context,
	q string,
	errMsg string,
	args ...any,
) (*model.User, error) {
	var user model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		user, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &user, nil
}

// execOnUser runs an UPDATE targeting one user and maps zero rows to ErrUserNotFound.
func (r *UserRepo) execOnUser(ctx context.Context, query string, args ...any) error {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, query, args...)
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
		return ErrUserNotFound
	}
	return nil
}
