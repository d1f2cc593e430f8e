package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-dashboard/middleware/jwtware"
	"github.com/goliatone/go-errors"
)

// RouteAuthenticator wires the Authenticator into the fiber request cycle:
// it issues session cookies on login, clears them on logout, and builds the
// middleware that guards protected routes.
type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	validator      jwtware.TokenValidator
	cookieDuration time.Duration
	Logger         Logger
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 20 * time.Minute
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Minute
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	if ts, ok := auther.(interface{ TokenService() TokenService }); ok {
		a.validator = tokenValidatorAdapter{service: ts.TokenService()}
	} else {
		return nil, errors.New("authenticator does not expose a token service", errors.CategoryInternal)
	}

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(l Logger) *RouteAuthenticator {
	if l != nil {
		a.Logger = l
	}
	return a
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// ContextKey is the name under which both the session cookie and the
// request-local claims travel.
func (a RouteAuthenticator) ContextKey() string {
	return a.cfg.GetContextKey()
}

// ProtectedRoute builds the token-guard middleware. Pass zero or more
// jwtware options to layer RBAC checks on top.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(*fiber.Ctx, error) error, opts ...func(*jwtware.Config)) fiber.Handler {
	cfg := jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(a.cfg.GetSigningKey()),
			JWTAlg: a.cfg.GetSigningMethod(),
		},
		AuthScheme:     a.cfg.GetAuthScheme(),
		ContextKey:     a.cfg.GetContextKey(),
		TokenLookup:    a.cfg.GetTokenLookup(),
		TokenValidator: a.validator,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return jwtware.New(cfg)
}

// WithMinimumRole requires the session role to be at or above minRole.
func WithMinimumRole(minRole string) func(*jwtware.Config) {
	return func(cfg *jwtware.Config) {
		cfg.MinimumRole = minRole
	}
}

// WithRequiredRole requires the session role to be exactly role.
func WithRequiredRole(role string) func(*jwtware.Config) {
	return func(cfg *jwtware.Config) {
		cfg.RequiredRole = role
	}
}

// Login authenticates the payload and, on success, sets the session cookie
// and returns the signed token.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(c.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return token, nil
}

// Logout clears the session cookie. Previously issued tokens stay valid
// until their expiry elapses.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cfg.GetContextKey())
}

func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(*fiber.Ctx, error) error {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return c.Next()
		}

		return c.Status(richErr.Code).JSON(fiber.Map{
			"message": richErr.Message,
		})
	}
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		MaxAge:   int(duration.Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// tokenValidatorAdapter lets the middleware validate tokens through the
// TokenService without importing the root package.
type tokenValidatorAdapter struct {
	service TokenService
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
