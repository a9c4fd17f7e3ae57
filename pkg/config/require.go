package config

import "fmt"

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	if c.DBDriver != "sqlite" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for driver %q", c.DBDriver)
	}
	if len(c.JWTAccessSecret) == 0 {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTRefreshSecret) == 0 {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	switch c.MailBackend {
	case "log":
	case "smtp":
		if c.SMTPAddr == "" {
			return fmt.Errorf("SMTP_ADDR is required for MAIL_BACKEND=smtp")
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for MAIL_BACKEND=kafka")
		}
	default:
		return fmt.Errorf("unknown MAIL_BACKEND %q", c.MailBackend)
	}
	return nil
}
