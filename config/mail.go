package config

// MailConfig contains outbound SMTP configuration. When Host is empty the
// application runs without email; token links then appear only in logs.
type MailConfig struct {
	Host     string `env:"HOST"      envDefault:""`
	Port     int    `env:"PORT"      envDefault:"587"`
	Username string `env:"USERNAME"  envDefault:""`
	Password string `env:"PASSWORD"  envDefault:""`
	From     string `env:"FROM"      envDefault:"no-reply@campushub.local"`
	FromName string `env:"FROM_NAME" envDefault:"CampusHub"`
}

// Enabled reports whether outbound mail is configured.
func (m MailConfig) Enabled() bool { return m.Host != "" }
