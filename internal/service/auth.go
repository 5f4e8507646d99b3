package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuslife/campushub/internal/core"
	"github.com/campuslife/campushub/internal/data"
	domainauth "github.com/campuslife/campushub/internal/domain/auth"
	"github.com/campuslife/campushub/internal/domain/model"
	apperrors "github.com/campuslife/campushub/internal/errors"
	"github.com/campuslife/campushub/internal/ports"
)

const (
	// DefaultIdleTimeout is how long a session may sit untouched before it
	// is discarded at next use.
	DefaultIdleTimeout = time.Hour
	// DefaultRotateEvery is how often a live session identifier is re-keyed.
	DefaultRotateEvery = 30 * time.Minute

	minPasswordLen = 6

	// loginFailedMessage is returned verbatim for unknown identifiers and
	// for wrong passwords. The two cases must be indistinguishable.
	loginFailedMessage = "Invalid username/email or password."

	sessionExpiredMessage = "Your session has expired. Please log in again."
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// phonePattern is deliberately loose: digits with common separators.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-\.]{5,19}$`)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    core.UserRepository  // Required: user account repository
	Tokens   core.TokenRepository // Required: single-use token repository
	Sessions ports.SessionStore   // Required: session persistence
	Hasher   ports.PasswordHasher // Required: password hashing
	Notifier *Notifier            // Optional: transactional email
	Logger   *slog.Logger         // Optional: structured logger

	TimeProvider data.TimeProvider // Optional: defaults to real time
	IdleTimeout  time.Duration     // Optional: defaults to DefaultIdleTimeout
	RotateEvery  time.Duration     // Optional: defaults to DefaultRotateEvery
}

// AuthService is the single authority for turning credentials into sessions:
// registration, login/logout, the lazy session timeout, password reset and
// change, email verification, profile updates, and the admin-side user
// management operations.
type AuthService struct {
	users    core.UserRepository
	tokens   core.TokenRepository
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	notifier *Notifier
	logger   *slog.Logger

	timeProvider data.TimeProvider
	idleTimeout  time.Duration
	rotateEvery  time.Duration
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("TokenRepository is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Hasher == nil {
		return nil, errors.New("PasswordHasher is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.TimeProvider
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	rotate := opts.RotateEvery
	if rotate <= 0 {
		rotate = DefaultRotateEvery
	}

	return &AuthService{
		users:        opts.Users,
		tokens:       opts.Tokens,
		sessions:     opts.Sessions,
		hasher:       opts.Hasher,
		notifier:     opts.Notifier,
		logger:       logger.With("component", "auth_service"),
		timeProvider: tp,
		idleTimeout:  idle,
		rotateEvery:  rotate,
	}, nil
}

// MustNewAuthService constructs a new AuthService and panics on error.
// Use this when you want fail-fast behavior during application startup.
func MustNewAuthService(opts AuthServiceOptions) *AuthService {
	svc, err := NewAuthService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// IdleTimeout reports the configured session inactivity window.
func (s *AuthService) IdleTimeout() time.Duration { return s.idleTimeout }

// RegisterInput carries the raw self-registration form fields.
type RegisterInput struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
}

// Register validates the input, creates the account, issues an email
// verification token, and queues the verification email. The email is a side
// effect only: a failed send never rolls back the new account.
//
// Duplicate username or email reports a deliberately vague conflict so the
// endpoint cannot be used to probe which accounts exist. The database unique
// constraints are the authoritative guard; the existence pre-check is just an
// early exit for the common case.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.normalize()

	if fields := in.validate(); len(fields) > 0 {
		return nil, apperrors.ValidationFields("Please correct the highlighted fields.", fields)
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if taken {
		return nil, registrationConflict()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.CreateUserParams{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Department:   in.Department,
		Phone:        in.Phone,
		Role:         domainauth.Role(in.Role),
	})
	if err != nil {
		// A concurrent registration may win the race between the existence
		// check and the insert. Collapse the unique violation into the same
		// vague conflict.
		if apperrors.IsConflict(err) {
			return nil, registrationConflict()
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)

	if raw, issueErr := s.issueToken(ctx, user.ID, model.TokenPurposeVerify); issueErr != nil {
		s.logger.Error("issue verification token", "user_id", user.ID, "error", issueErr)
	} else if s.notifier != nil {
		s.notifier.VerificationEmail(user.Email, user.FirstName, raw)
	}

	return user, nil
}

func registrationConflict() *apperrors.AppError {
	return apperrors.Conflict("An account with that username or email already exists.")
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Department = strings.TrimSpace(in.Department)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.TrimSpace(strings.ToLower(in.Role))
	if in.Role == "" {
		in.Role = string(domainauth.RoleUser)
	}
}

// validate returns a field name to message map; empty means valid.
func (in RegisterInput) validate() map[string]string {
	fields := make(map[string]string)

	switch {
	case in.Username == "":
		fields["username"] = "Username is required."
	case !usernamePattern.MatchString(in.Username):
		fields["username"] = "Username must be 3-30 characters: letters, digits, and underscores only."
	}

	switch {
	case in.Email == "":
		fields["email"] = "Email is required."
	case !validEmail(in.Email):
		fields["email"] = "Enter a valid email address."
	}

	switch {
	case in.Password == "":
		fields["password"] = "Password is required."
	case len(in.Password) < minPasswordLen:
		fields["password"] = fmt.Sprintf("Password must be at least %d characters.", minPasswordLen)
	}

	if in.FirstName == "" {
		fields["first_name"] = "First name is required."
	}
	if in.LastName == "" {
		fields["last_name"] = "Last name is required."
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		fields["phone"] = "Enter a valid phone number."
	}
	if !domainauth.SelfRegisterRole(domainauth.Role(in.Role)) {
		fields["role"] = "Role must be user or organizer."
	}

	return fields
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	// Reject the "Name <addr>" form; we want a bare address.
	return err == nil && addr.Address == s
}

// LoginResult carries the new session and where the browser should land.
type LoginResult struct {
	Session      domainauth.Session
	RedirectPath string
}

// Login verifies credentials and establishes a new session. The identifier
// may be a username or an email address. Unknown identifiers and wrong
// passwords produce byte-identical errors, and the unknown-identifier path
// burns a dummy hash comparison so the two cannot be told apart by timing.
//
// rememberMe is recorded on the session but currently changes nothing; the
// persistent-cookie mechanism is an extension hook.
func (s *AuthService) Login(ctx context.Context, identifier, password string, rememberMe bool) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.Unauthorized(loginFailedMessage)
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if apperrors.IsNotFound(err) || errors.Is(err, data.ErrUserNotFound) {
			s.hasher.DummyVerify(password)
			return nil, apperrors.Unauthorized(loginFailedMessage)
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperrors.Unauthorized(loginFailedMessage)
	}

	if user.Status != model.UserStatusActive {
		return nil, apperrors.Forbidden("Your account is suspended. Contact an administrator.")
	}

	now := s.timeProvider.Now()
	sess := domainauth.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		Role:       user.Role,
		RememberMe: rememberMe,
		CreatedAt:  now,
		RotatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessions.Save(ctx, sess, s.idleTimeout); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := s.users.TouchLastSeen(ctx, user.ID); err != nil {
		// Cosmetic timestamp; the login already succeeded.
		s.logger.Warn("touch last seen", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username, "role", user.Role)

	return &LoginResult{
		Session:      sess,
		RedirectPath: dashboardPath(user.Role),
	}, nil
}

// dashboardPath maps a role to its post-login landing page. A stored
// pre-login redirect target, when present, takes precedence in the handler.
func dashboardPath(role domainauth.Role) string {
	switch role {
	case domainauth.RoleAdmin:
		return "/admin"
	case domainauth.RoleOrganizer:
		return "/organizer"
	default:
		return "/dashboard"
	}
}

// Logout destroys the session. Calling it without an active session is a
// harmless no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session identifier into a live session. It is the
// lazy timeout gate run on every authenticated request:
//
//   - a session idle past the inactivity window is discarded on the spot;
//   - a session whose user vanished or was suspended is discarded;
//   - otherwise the activity clock is bumped (the store TTL slides with it)
//     and the identifier is re-keyed once it is older than the rotation
//     window.
//
// The returned session may carry a different ID than the one passed in;
// callers must re-issue the cookie when it does. Role and profile fields are
// refreshed from the user row, so admin-side changes take effect on the
// user's next request.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, apperrors.Unauthorized(sessionExpiredMessage)
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		// Missing and unreadable sessions both end at the login page.
		s.logger.Debug("session lookup failed", "error", err)
		return nil, apperrors.Unauthorized(sessionExpiredMessage)
	}

	now := s.timeProvider.Now()
	if sess.IdleSince(now) > s.idleTimeout {
		s.destroySession(ctx, sess.ID)
		return nil, apperrors.Unauthorized(sessionExpiredMessage)
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) || errors.Is(err, data.ErrUserNotFound) {
			s.destroySession(ctx, sess.ID)
			return nil, apperrors.Unauthorized(sessionExpiredMessage)
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user.Status != model.UserStatusActive {
		s.destroySession(ctx, sess.ID)
		return nil, apperrors.Forbidden("Your account is suspended. Contact an administrator.")
	}

	sess.Username = user.Username
	sess.FirstName = user.FirstName
	sess.LastName = user.LastName
	sess.Email = user.Email
	sess.Role = user.Role
	sess.LastSeenAt = now

	if now.Sub(sess.RotatedAt) >= s.rotateEvery {
		oldID := sess.ID
		sess.ID = uuid.NewString()
		sess.RotatedAt = now
		s.destroySession(ctx, oldID)
	}

	if err := s.sessions.Save(ctx, sess, s.idleTimeout); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &sess, nil
}

// destroySession is best-effort: a session that cannot be deleted right now
// will still age out of the store on its own TTL.
func (s *AuthService) destroySession(ctx context.Context, id string) {
	if err := s.sessions.Delete(ctx, id); err != nil {
		s.logger.Warn("delete session", "error", err)
	}
}

// UpdateProfile applies a partial profile update for the given user. Only
// allow-listed fields can change; email changes are pre-checked for
// uniqueness against other accounts (the unique constraint remains the final
// word). When sessionID is non-empty the stored session snapshot is refreshed
// so the same request cycle already sees the new data.
func (s *AuthService) UpdateProfile(
	ctx context.Context,
	userID int64,
	sessionID string,
	p model.UpdateProfileParams,
) (*model.User, error) {
	if p.Empty() {
		return nil, apperrors.Validation("No profile changes were submitted.")
	}

	fields := make(map[string]string)
	if p.Email != nil {
		*p.Email = strings.TrimSpace(*p.Email)
		if !validEmail(*p.Email) {
			fields["email"] = "Enter a valid email address."
		}
	}
	if p.Phone != nil {
		*p.Phone = strings.TrimSpace(*p.Phone)
		if *p.Phone != "" && !phonePattern.MatchString(*p.Phone) {
			fields["phone"] = "Enter a valid phone number."
		}
	}
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) == "" {
		fields["first_name"] = "First name cannot be blank."
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) == "" {
		fields["last_name"] = "Last name cannot be blank."
	}
	if len(fields) > 0 {
		return nil, apperrors.ValidationFields("Please correct the highlighted fields.", fields)
	}

	if p.Email != nil {
		taken, err := s.users.EmailTakenByOther(ctx, *p.Email, userID)
		if err != nil {
			return nil, fmt.Errorf("check email uniqueness: %w", err)
		}
		if taken {
			return nil, apperrors.ValidationField("email", "That email address is already in use.")
		}
	}

	user, err := s.users.UpdateProfile(ctx, userID, p)
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.ValidationField("email", "That email address is already in use.")
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if sessionID != "" {
		if err := s.refreshSessionSnapshot(ctx, sessionID, user); err != nil {
			s.logger.Warn("refresh session after profile update", "user_id", userID, "error", err)
		}
	}

	return user, nil
}

// refreshSessionSnapshot copies the fresh user row into the stored session.
func (s *AuthService) refreshSessionSnapshot(ctx context.Context, sessionID string, user *model.User) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Username = user.Username
	sess.FirstName = user.FirstName
	sess.LastName = user.LastName
	sess.Email = user.Email
	sess.Role = user.Role
	return s.sessions.Save(ctx, sess, s.idleTimeout)
}
