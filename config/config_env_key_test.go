package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode":      "disable",
			"maxOpenConns": 10,
		},
		"auth": map[string]any{
			"lockoutDuration":       "30m",
			"revealRegisteredEmail": false,
		},
		"rateLimit": map[string]any{
			"login": map[string]any{
				"window": "15m",
			},
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MAXOPENCONNS", want: "postgres.maxOpenConns"},
		{envKey: "AUTH_LOCKOUTDURATION", want: "auth.lockoutDuration"},
		{envKey: "AUTH_REVEALREGISTEREDEMAIL", want: "auth.revealRegisteredEmail"},
		{envKey: "RATELIMIT_LOGIN_WINDOW", want: "rateLimit.login.window"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults_FillsMissingSections(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Auth.MaxFailedAttempts != defaultMaxFailedAttempts {
		t.Fatalf("maxFailedAttempts = %d, want %d", cfg.Auth.MaxFailedAttempts, defaultMaxFailedAttempts)
	}
	if cfg.Auth.LockoutDuration != defaultLockoutDuration {
		t.Fatalf("lockoutDuration = %s, want %s", cfg.Auth.LockoutDuration, defaultLockoutDuration)
	}
	if cfg.Auth.SessionTTL != defaultSessionTTL || cfg.Auth.RememberMeTTL != defaultRememberMeTTL {
		t.Fatalf("session TTLs = %s/%s", cfg.Auth.SessionTTL, cfg.Auth.RememberMeTTL)
	}
	if cfg.RateLimit.Login.Limit != defaultLoginLimit || cfg.RateLimit.Register.Limit != defaultRegisterLimit {
		t.Fatalf("rate limits = %d/%d", cfg.RateLimit.Login.Limit, cfg.RateLimit.Register.Limit)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{Auth: &AuthConfig{MaxFailedAttempts: 3, RevealRegisteredEmail: true}}
	applyDefaults(cfg)

	if cfg.Auth.MaxFailedAttempts != 3 {
		t.Fatalf("maxFailedAttempts = %d, want 3", cfg.Auth.MaxFailedAttempts)
	}
	if !cfg.Auth.RevealRegisteredEmail {
		t.Fatal("revealRegisteredEmail was reset")
	}
}
