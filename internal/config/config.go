package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

// BearerMode selects how bearer tokens are verified.
type BearerMode string

const (
	BearerModeHMAC BearerMode = "hmac"
	BearerModeJWKS BearerMode = "jwks"
)

// Config holds the configuration for the skillswap server and its dependencies.
type Config struct {
	// Listen is the address the skillswap server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the public base URL of the skillswap server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to sign session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// Auth holds the authentication configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Cache holds the profile cache configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
	// Provisioning controls just-in-time user creation.
	Provisioning *ProvisioningConfig `yaml:"provisioning" mapstructure:"provisioning"`
	// Audit controls audit log retention.
	Audit *AuditConfig `yaml:"audit" mapstructure:"audit"`
}

// AuthConfig holds the authentication configuration.
type AuthConfig struct {
	// Bearer configures verification of bearer tokens.
	Bearer *BearerConfig `yaml:"bearer" mapstructure:"bearer"`
	// OIDC holds the OpenID Connect configuration.
	OIDC *OIDCConfig `yaml:"oidc" mapstructure:"oidc"`
	// Local enables username/password login against local accounts.
	Local *LocalAuthConfig `yaml:"local" mapstructure:"local"`
}

// BearerConfig configures verification of bearer tokens.
type BearerConfig struct {
	// Enabled indicates whether bearer tokens are accepted.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Mode is either "hmac" (shared secret) or "jwks" (remote key set).
	Mode BearerMode `yaml:"mode" mapstructure:"mode"`
	// Secret is the shared HS256 secret used in hmac mode.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// JWKSURL is the key set location used in jwks mode.
	JWKSURL string `yaml:"jwks_url" mapstructure:"jwks_url"`
	// Issuer is the expected "iss" claim. Empty disables the check.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// Audience is the expected "aud" claim. Empty disables the check.
	Audience string `yaml:"audience" mapstructure:"audience"`
}

// OIDCConfig holds the OpenID Connect configuration.
type OIDCConfig struct {
	// Enabled indicates whether OIDC authentication is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Name is the display name for the OIDC provider.
	Name string `yaml:"name" mapstructure:"name"`
	// Issuer is the OIDC issuer URL.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// ClientID is the OIDC client ID.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// ClientSecret is the OIDC client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// RedirectURL is the redirect URL for the oidc flow.
	RedirectURL string `yaml:"redirect_url" mapstructure:"redirect_url"`
	// AdminGroup is the group that has admin privileges.
	AdminGroup string `yaml:"admin_group" mapstructure:"admin_group"`
	// UsePKCE enables PKCE for the OAuth 2.0 flow.
	UsePKCE bool `yaml:"use_pkce" mapstructure:"use_pkce"`
}

// LocalAuthConfig holds the local account login configuration.
type LocalAuthConfig struct {
	// Enabled indicates whether local account login is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Driver is either "sqlite" or "postgres".
	Driver DatabaseDriver `yaml:"driver" mapstructure:"driver"`
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the postgres connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// CacheConfig holds the configuration for the cache engine.
type CacheConfig struct {
	// Type is the type of cache engine to use (e.g., "memory", "redis").
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the URL for the Redis cache if using Redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TTL is the lifetime of cached public profiles in seconds.
	TTL int `yaml:"ttl" mapstructure:"ttl"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether provisioned users get a Gravatar avatar.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// ProvisioningConfig bounds the username search and the retry of concurrent
// first requests.
type ProvisioningConfig struct {
	// MaxUsernameAttempts is the number of candidate usernames tried per attempt.
	MaxUsernameAttempts int `yaml:"max_username_attempts" mapstructure:"max_username_attempts"`
	// MaxRetries is how often provisioning restarts after a duplicate key on insert.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// AuditConfig holds the audit log retention configuration.
type AuditConfig struct {
	// RetentionDays is how long audit entries are kept. Zero keeps them forever.
	RetentionDays int `yaml:"retention_days" mapstructure:"retention_days"`
	// CleanupSchedule is the cron schedule of the retention job.
	CleanupSchedule string `yaml:"cleanup_schedule" mapstructure:"cleanup_schedule"`
}

var (
	validDefaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	validRatings       = []string{"g", "pg", "r", "x"}
)

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	// bind nested env vars whose parent struct has no defaults
	bindNestedEnv(v)

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("SKILLSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.skillswap")
		v.AddConfigPath("/etc/skillswap")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:8080")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("session_max_age", 172800) // 48 hours
	v.SetDefault("session_key", "")

	// Auth defaults
	v.SetDefault("auth.bearer.enabled", true)
	v.SetDefault("auth.bearer.mode", BearerModeHMAC)
	v.SetDefault("auth.bearer.secret", "")
	v.SetDefault("auth.bearer.jwks_url", "")
	v.SetDefault("auth.bearer.issuer", "")
	v.SetDefault("auth.bearer.audience", "authenticated")
	v.SetDefault("auth.oidc.enabled", false)
	v.SetDefault("auth.oidc.name", "OIDC")
	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.client_id", "")
	v.SetDefault("auth.oidc.client_secret", "")
	v.SetDefault("auth.oidc.redirect_url", "")
	v.SetDefault("auth.oidc.admin_group", "")
	v.SetDefault("auth.oidc.use_pkce", false)
	v.SetDefault("auth.local.enabled", true)

	// Database defaults
	v.SetDefault("database.driver", DatabaseDriverSQLite)
	v.SetDefault("database.path", "./data/skillswap.db")
	v.SetDefault("database.dsn", "")

	// Cache defaults
	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 300)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)

	// Provisioning defaults
	v.SetDefault("provisioning.max_username_attempts", 20)
	v.SetDefault("provisioning.max_retries", 3)

	// Audit defaults
	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.cleanup_schedule", "0 3 * * *")
}

// bindNestedEnv binds env vars for keys without a default value, viper's
// AutomaticEnv only picks up keys it already knows.
func bindNestedEnv(v *viper.Viper) {
	v.MustBindEnv("database.dsn", "SKILLSWAP_DATABASE_DSN")
	v.MustBindEnv("auth.bearer.secret", "SKILLSWAP_AUTH_BEARER_SECRET")
	v.MustBindEnv("auth.oidc.client_secret", "SKILLSWAP_AUTH_OIDC_CLIENT_SECRET")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing skillswap config")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}

	authEnabled := false
	if b := c.Auth.Bearer; b != nil && b.Enabled {
		authEnabled = true
		switch b.Mode {
		case BearerModeHMAC:
			if b.Secret == "" {
				return fmt.Errorf("bearer secret is required in hmac mode")
			}
		case BearerModeJWKS:
			if b.JWKSURL == "" {
				return fmt.Errorf("bearer JWKS URL is required in jwks mode")
			}
		default:
			return fmt.Errorf("unknown bearer mode %q", b.Mode)
		}
	}

	if o := c.Auth.OIDC; o != nil && o.Enabled {
		authEnabled = true
		if o.Issuer == "" {
			return fmt.Errorf("OIDC issuer is required when OIDC is enabled")
		}
		if o.ClientID == "" {
			return fmt.Errorf("OIDC client ID is required when OIDC is enabled")
		}
		if o.ClientSecret == "" {
			return fmt.Errorf("OIDC client secret is required when OIDC is enabled")
		}
		if o.RedirectURL == "" {
			return fmt.Errorf("OIDC redirect URL is required when OIDC is enabled")
		}
		if o.AdminGroup == "" {
			return fmt.Errorf("OIDC admin group is required when OIDC is enabled")
		}
	}

	if c.Auth.Local != nil && c.Auth.Local.Enabled {
		authEnabled = true
	}

	if !authEnabled {
		return fmt.Errorf("at least one authentication method must be enabled")
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	switch c.Database.Driver {
	case DatabaseDriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case DatabaseDriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Cache != nil {
		if c.Cache.Type == "" {
			return fmt.Errorf("cache type is required when cache is enabled")
		}
		if c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when Redis cache is enabled") //nolint:staticcheck
		}
	} else {
		c.Cache = &CacheConfig{
			Type: CacheTypeMemory,
		}
	}

	if g := c.Gravatar; g != nil && g.Enabled {
		if g.DefaultImage != "" && !lo.Contains(validDefaultImages, g.DefaultImage) {
			return fmt.Errorf("invalid gravatar default image %q", g.DefaultImage)
		}
		if g.Rating != "" && !lo.Contains(validRatings, g.Rating) {
			return fmt.Errorf("invalid gravatar rating %q", g.Rating)
		}
		if g.Size != 0 && (g.Size < 1 || g.Size > 2048) {
			return fmt.Errorf("gravatar size must be between 1 and 2048")
		}
	}

	if c.Provisioning == nil {
		c.Provisioning = &ProvisioningConfig{}
	}
	if c.Provisioning.MaxUsernameAttempts <= 0 {
		return fmt.Errorf("provisioning max_username_attempts must be greater than 0")
	}
	if c.Provisioning.MaxRetries <= 0 {
		return fmt.Errorf("provisioning max_retries must be greater than 0")
	}

	if c.Audit != nil && c.Audit.RetentionDays > 0 {
		if len(strings.Fields(c.Audit.CleanupSchedule)) != 5 {
			return fmt.Errorf("audit cleanup schedule must be a valid cron expression with 5 fields (minute hour day month weekday)")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = urlSanitize(c.Listen)

	if c.ServerURL != "" {
		c.ServerURL = urlSanitize(c.ServerURL)
	}

	if c.Auth != nil {
		if c.Auth.OIDC != nil {
			c.Auth.OIDC.Issuer = urlSanitize(c.Auth.OIDC.Issuer)
		}
		if c.Auth.Bearer != nil {
			c.Auth.Bearer.Mode = BearerMode(strings.ToLower(strings.TrimSpace(string(c.Auth.Bearer.Mode))))
		}
	}

	if c.Database != nil {
		c.Database.Driver = DatabaseDriver(strings.ToLower(strings.TrimSpace(string(c.Database.Driver))))
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// ProvisioningLimits returns the provisioning bounds with proper defaults.
func (c *Config) ProvisioningLimits() (attempts, retries int) {
	attempts, retries = 20, 3
	if c == nil || c.Provisioning == nil {
		return attempts, retries
	}
	if c.Provisioning.MaxUsernameAttempts > 0 {
		attempts = c.Provisioning.MaxUsernameAttempts
	}
	if c.Provisioning.MaxRetries > 0 {
		retries = c.Provisioning.MaxRetries
	}
	return attempts, retries
}
