package app

import (
	"strings"

	"github.com/pulsefeed/backend/internal/cache"
	"github.com/pulsefeed/backend/internal/database"
	"github.com/pulsefeed/backend/internal/notifications"
	"github.com/pulsefeed/backend/pkg/mail"
)

// RedisClientConfig converts the cache configuration into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// StoreConfig converts the database settings into the database package representation.
func (d DatabaseConfig) StoreConfig() database.Config {
	cfg := database.Config{
		Driver: strings.TrimSpace(d.Driver),
		Path:   strings.TrimSpace(d.Path),
		DSN:    strings.TrimSpace(d.DSN),
	}

	switch strings.ToLower(cfg.Driver) {
	case "postgres", "postgresql":
		cfg.Host = d.Postgres.Host
		cfg.Port = d.Postgres.Port
		cfg.Name = d.Postgres.Database
		cfg.User = d.Postgres.Username
		cfg.Password = d.Postgres.Password
	case "mysql", "mariadb":
		cfg.Host = d.MySQL.Host
		cfg.Port = d.MySQL.Port
		cfg.Name = d.MySQL.Database
		cfg.User = d.MySQL.Username
		cfg.Password = d.MySQL.Password
	}
	return cfg
}

// EngineSettings converts the notification configuration into engine settings.
func (n NotificationConfig) EngineSettings() notifications.Settings {
	return notifications.Settings{
		PageCacheTTL:     n.PageCacheTTL,
		UnreadCountTTL:   n.UnreadCountTTL,
		LatestListSize:   n.LatestListSize,
		RetentionDays:    n.RetentionDays,
		CleanupBatchSize: n.CleanupBatchSize,
	}
}

// SMTPSettings converts the email configuration into mailer settings.
func (e EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  e.SMTP.Enabled,
		Host:     strings.TrimSpace(e.SMTP.Host),
		Port:     e.SMTP.Port,
		Username: e.SMTP.Username,
		Password: e.SMTP.Password,
		From:     strings.TrimSpace(e.SMTP.From),
		UseTLS:   e.SMTP.UseTLS,
		Timeout:  e.SMTP.Timeout,
	}
}
