package dashboard

import (
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-errors"
)

// Default values for everything except the signing key, which has no
// default on purpose: a missing secret is a startup error, never a
// compiled-in literal.
const (
	DefaultSigningMethod   = "HS256"
	DefaultContextKey      = "access_token"
	DefaultTokenExpiration = 20
	DefaultTokenLookup     = "header:Authorization,cookie:access_token"
	DefaultAuthScheme      = "Bearer"
	DefaultIssuer          = "go-dashboard"
)

// AppConfig is the concrete Config implementation used by the scaffold.
// Values are read once at startup and immutable afterwards.
type AppConfig struct {
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	TokenExpiration int // minutes
	TokenLookup     string
	AuthScheme      string
	Issuer          string
	Audience        []string

	// scaffold wiring, not part of the auth Config surface
	DSN      string
	HTTPAddr string
	Debug    bool
}

var _ Config = (*AppConfig)(nil)

func (c *AppConfig) GetSigningKey() string    { return c.SigningKey }
func (c *AppConfig) GetSigningMethod() string { return c.SigningMethod }
func (c *AppConfig) GetContextKey() string    { return c.ContextKey }
func (c *AppConfig) GetTokenExpiration() int  { return c.TokenExpiration }
func (c *AppConfig) GetTokenLookup() string   { return c.TokenLookup }
func (c *AppConfig) GetAuthScheme() string    { return c.AuthScheme }
func (c *AppConfig) GetIssuer() string        { return c.Issuer }
func (c *AppConfig) GetAudience() []string    { return c.Audience }

// LoadConfigFromEnv builds an AppConfig from DASHBOARD_* environment
// variables. DASHBOARD_SIGNING_KEY is required.
func LoadConfigFromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		SigningKey:      os.Getenv("DASHBOARD_SIGNING_KEY"),
		SigningMethod:   envOrDefault("DASHBOARD_SIGNING_METHOD", DefaultSigningMethod),
		ContextKey:      envOrDefault("DASHBOARD_CONTEXT_KEY", DefaultContextKey),
		TokenExpiration: DefaultTokenExpiration,
		TokenLookup:     envOrDefault("DASHBOARD_TOKEN_LOOKUP", DefaultTokenLookup),
		AuthScheme:      envOrDefault("DASHBOARD_AUTH_SCHEME", DefaultAuthScheme),
		Issuer:          envOrDefault("DASHBOARD_ISSUER", DefaultIssuer),
		DSN:             envOrDefault("DASHBOARD_DSN", "file:dashboard.db?cache=shared"),
		HTTPAddr:        envOrDefault("DASHBOARD_HTTP_ADDR", ":8572"),
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("DASHBOARD_SIGNING_KEY is required", errors.CategoryValidation).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	if raw := os.Getenv("DASHBOARD_TOKEN_EXPIRATION"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return nil, errors.New("DASHBOARD_TOKEN_EXPIRATION must be a positive integer of minutes", errors.CategoryValidation).
				WithTextCode("BAD_TOKEN_EXPIRATION").
				WithMetadata(map[string]any{"value": raw})
		}
		cfg.TokenExpiration = minutes
	}

	if raw := os.Getenv("DASHBOARD_AUDIENCE"); raw != "" {
		for _, aud := range strings.Split(raw, ",") {
			if aud = strings.TrimSpace(aud); aud != "" {
				cfg.Audience = append(cfg.Audience, aud)
			}
		}
	}

	if raw := os.Getenv("DASHBOARD_DEBUG"); raw != "" {
		cfg.Debug, _ = strconv.ParseBool(raw)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
