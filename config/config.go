// Package config loads the typed application configuration from YAML
// files with environment-variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`

	PasswordPolicy *PasswordPolicyConfig `json:"passwordPolicy" yaml:"passwordPolicy"`
}

// Log controls the slog handler construction.
type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PostgresConfig describes the database connection and pool.
type PostgresConfig struct {
	Host            string        `json:"host" yaml:"host"`
	Port            int           `json:"port" yaml:"port"`
	UserName        string        `json:"username" yaml:"username"`
	Password        string        `json:"password" yaml:"password"`
	Database        string        `json:"database" yaml:"database"`
	SSLMode         string        `json:"sslMode" yaml:"sslMode"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
}

// AuthConfig defines authentication-related configuration.
type AuthConfig struct {
	BcryptCost        int `json:"bcryptCost" yaml:"bcryptCost"`
	MaxActiveSessions int `json:"maxActiveSessions" yaml:"maxActiveSessions"`

	// Lockout: after MaxFailedAttempts consecutive failures the account is
	// suspended for LockoutDuration, independent of rate limiting.
	MaxFailedAttempts int           `json:"maxFailedAttempts" yaml:"maxFailedAttempts"`
	LockoutDuration   time.Duration `json:"lockoutDuration" yaml:"lockoutDuration"`

	// Session validity windows.
	SessionTTL         time.Duration `json:"sessionTtl" yaml:"sessionTtl"`
	RememberMeTTL      time.Duration `json:"rememberMeTtl" yaml:"rememberMeTtl"`
	CleanupInterval    time.Duration `json:"cleanupInterval" yaml:"cleanupInterval"`
	SessionCookieName  string        `json:"sessionCookieName" yaml:"sessionCookieName"`
	SecureCookies      bool          `json:"secureCookies" yaml:"secureCookies"`

	// RevealRegisteredEmail controls whether registration discloses that an
	// email is already taken. Kept off outside development to avoid user
	// enumeration.
	RevealRegisteredEmail bool `json:"revealRegisteredEmail" yaml:"revealRegisteredEmail"`
}

// RateLimitConfig defines the per-operation admission windows.
type RateLimitConfig struct {
	Login    OperationLimit `json:"login" yaml:"login"`
	Register OperationLimit `json:"register" yaml:"register"`
}

// OperationLimit is one fixed admission window.
type OperationLimit struct {
	Limit  int           `json:"limit" yaml:"limit"`
	Window time.Duration `json:"window" yaml:"window"`
}

// PasswordPolicyConfig tunes the password policy validator.
type PasswordPolicyConfig struct {
	// Denylist overrides the built-in list of common weak passwords,
	// matched case-insensitively as substrings.
	Denylist []string `json:"denylist" yaml:"denylist"`
}

// Defaults applied when a section is absent from the YAML file.
const (
	defaultBcryptCost        = 12
	defaultMaxFailedAttempts = 5
	defaultLockoutDuration   = 30 * time.Minute
	defaultSessionTTL        = 24 * time.Hour
	defaultRememberMeTTL     = 30 * 24 * time.Hour
	defaultCleanupInterval   = time.Hour
	defaultCookieName        = "warden_session"
	defaultLoginLimit        = 10
	defaultLoginWindow       = 15 * time.Minute
	defaultRegisterLimit     = 5
	defaultRegisterWindow    = time.Hour
)

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads and normalizes the application configuration.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	auth := cfg.Auth
	if auth.BcryptCost == 0 {
		auth.BcryptCost = defaultBcryptCost
	}
	if auth.MaxFailedAttempts == 0 {
		auth.MaxFailedAttempts = defaultMaxFailedAttempts
	}
	if auth.LockoutDuration == 0 {
		auth.LockoutDuration = defaultLockoutDuration
	}
	if auth.SessionTTL == 0 {
		auth.SessionTTL = defaultSessionTTL
	}
	if auth.RememberMeTTL == 0 {
		auth.RememberMeTTL = defaultRememberMeTTL
	}
	if auth.CleanupInterval == 0 {
		auth.CleanupInterval = defaultCleanupInterval
	}
	if auth.SessionCookieName == "" {
		auth.SessionCookieName = defaultCookieName
	}

	if cfg.RateLimit == nil {
		cfg.RateLimit = &RateLimitConfig{}
	}
	if cfg.RateLimit.Login.Limit == 0 {
		cfg.RateLimit.Login = OperationLimit{Limit: defaultLoginLimit, Window: defaultLoginWindow}
	}
	if cfg.RateLimit.Register.Limit == 0 {
		cfg.RateLimit.Register = OperationLimit{Limit: defaultRegisterLimit, Window: defaultRegisterWindow}
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
