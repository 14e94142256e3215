package impl

import (
	"io"
	"log/slog"
	"time"

	"warden/config"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:            12,
			MaxFailedAttempts:     5,
			LockoutDuration:       30 * time.Minute,
			SessionTTL:            24 * time.Hour,
			RememberMeTTL:         720 * time.Hour,
			RevealRegisteredEmail: true,
		},
		RateLimit: &config.RateLimitConfig{
			Login:    config.OperationLimit{Limit: 10, Window: 15 * time.Minute},
			Register: config.OperationLimit{Limit: 5, Window: time.Hour},
		},
	}
}
