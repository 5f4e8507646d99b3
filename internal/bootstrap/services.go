package bootstrap

import (
	"database/sql"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/campuslife/campushub/config"
	"github.com/campuslife/campushub/internal/adapters/mail"
	"github.com/campuslife/campushub/internal/adapters/password"
	"github.com/campuslife/campushub/internal/adapters/redis"
	"github.com/campuslife/campushub/internal/data"
	"github.com/campuslife/campushub/internal/ports"
	"github.com/campuslife/campushub/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Notifier      *service.Notifier
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Users         *data.UserRepo
	Tokens        *data.TokenRepo
	Events        *data.EventRepo
	Registrations *data.RegistrationRepo
}

func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Users:         data.NewUserRepo(db),
		Tokens:        data.NewTokenRepo(db),
		Events:        data.NewEventRepo(db),
		Registrations: data.NewRegistrationRepo(db),
	}
}

// buildNotifier wires outbound email. When no SMTP host is configured the
// notifier logs each delivery instead of sending it, which keeps local
// development free of mail infrastructure.
func buildNotifier(cfg *config.AppConfig, logger *slog.Logger) *service.Notifier {
	var mailer ports.Mailer
	if cfg.Mail.Enabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
		})
	} else {
		logger.Warn("SMTP host is not configured; transactional email will be logged, not sent")
		mailer = mail.NewLogMailer(logger)
	}

	return service.NewNotifier(service.NotifierOptions{
		Mailer:  mailer,
		Logger:  logger,
		BaseURL: cfg.HTTP.BaseURL,
	})
}

// NewServices initializes all application services.
func NewServices(deps *ServiceDeps) ServiceContainer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repos := buildRepositories(deps.DB)
	notifier := buildNotifier(deps.Config, logger)

	auth := service.MustNewAuthService(service.AuthServiceOptions{
		Users:       repos.Users,
		Tokens:      repos.Tokens,
		Sessions:    redis.NewSessionStore(deps.RedisClient),
		Hasher:      password.NewBcryptHasher(),
		Notifier:    notifier,
		Logger:      logger,
		IdleTimeout: deps.Config.Session.IdleTimeout,
		RotateEvery: deps.Config.Session.RotateEvery,
	})

	events := service.MustNewEventService(service.EventServiceOptions{
		Events:   repos.Events,
		Users:    repos.Users,
		Notifier: notifier,
		Logger:   logger,
	})

	registrations := service.MustNewRegistrationService(service.RegistrationServiceOptions{
		Registrations: repos.Registrations,
		Events:        repos.Events,
		Users:         repos.Users,
		Notifier:      notifier,
		Logger:        logger,
	})

	return ServiceContainer{
		Auth:          auth,
		Events:        events,
		Registrations: registrations,
		Notifier:      notifier,
	}
}
