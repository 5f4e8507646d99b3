// Package core defines the contracts between the service layer and the data
// layer (ports in hexagonal architecture). Services depend on these
// interfaces, never on the concrete repositories in internal/data.
package core

import (
	"context"
	"time"

	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
)

// UserRepository defines the interface for user account data operations.
type UserRepository interface {
	Create(ctx context.Context, p *model.CreateUserParams) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByIdentifier resolves a login identifier that may be either a
	// username or an email address.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, p model.UpdateProfileParams) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetRole(ctx context.Context, id int64, role domainauth.Role) error
	SetStatus(ctx context.Context, id int64, status model.UserStatus) error
	MarkEmailVerified(ctx context.Context, id int64) error
	TouchLastSeen(ctx context.Context, id int64) error
	Search(ctx context.Context, opts model.UsersListOptions) ([]*model.User, error)
}

// TokenRepository defines the interface for single-use auth token operations.
type TokenRepository interface {
	// Issue stores a new token hash for the user, retiring any earlier
	// unused token of the same purpose.
	Issue(ctx context.Context, userID int64, purpose model.TokenPurpose, tokenHash string) (*model.AuthToken, error)
	// Consume atomically marks a live token as used and returns it.
	// Expired, already-used, and unknown tokens all fail the same way.
	Consume(ctx context.Context, tokenHash string, purpose model.TokenPurpose) (*model.AuthToken, error)
	PurgeExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

// EventRepository defines the interface for event data operations.
type EventRepository interface {
	Create(ctx context.Context, organizerID int64, req *model.CreateEventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	List(ctx context.Context, opts model.EventsListOptions) ([]*model.Event, error)
	Update(ctx context.Context, id int64, req model.UpdateEventRequest) (*model.Event, error)
	SetStatus(ctx context.Context, id int64, status model.EventStatus) error
}

// RegistrationRepository defines the interface for event registration operations.
type RegistrationRepository interface {
	// Create reserves a seat for the user if capacity allows, reviving a
	// previously cancelled registration instead of inserting a duplicate.
	Create(ctx context.Context, eventID, userID int64, ticketCode string) (*model.Registration, error)
	GetForUserAndEvent(ctx context.Context, eventID, userID int64) (*model.Registration, error)
	Cancel(ctx context.Context, eventID, userID int64) error
	ListForUser(ctx context.Context, userID int64) ([]*model.RegistrationWithEvent, error)
	ListForEvent(ctx context.Context, eventID int64) ([]*model.Registration, error)
	CountConfirmed(ctx context.Context, eventID int64) (int, error)
}
