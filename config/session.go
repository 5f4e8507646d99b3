package config

import "time"

// SessionConfig contains session lifetime configuration.
type SessionConfig struct {
	// IdleTimeout is the inactivity window after which a session is
	// discarded at next use.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"1h"`

	// RotateEvery is how often a live session identifier is re-keyed.
	RotateEvery time.Duration `env:"ROTATE_EVERY" envDefault:"30m"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = time.Hour
	}
	if s.RotateEvery <= 0 {
		s.RotateEvery = 30 * time.Minute
	}
	// Rotating less often than the idle window would mean no live session
	// ever rotates.
	if s.RotateEvery > s.IdleTimeout {
		s.RotateEvery = s.IdleTimeout
	}
}
