package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/flashdeck/flashdeck/internal/auth"
	"github.com/flashdeck/flashdeck/internal/metrics"
	"github.com/flashdeck/flashdeck/internal/model"
	"github.com/flashdeck/flashdeck/internal/repository"
)

// DefaultSessionCookie is the cookie the identity provider sets.
const DefaultSessionCookie = "flashdeck.session-token"

// SessionParser verifies a raw session token.
type SessionParser interface {
	Parse(raw string) (*auth.SessionClaims, error)
}

// UserLookup finds stored users by email.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// IdentityCache caches resolved users. A miss is (nil, nil).
type IdentityCache interface {
	GetUser(ctx context.Context, email string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
}

// IdentityConfig holds configuration for the identity middleware.
type IdentityConfig struct {
	Logger     *slog.Logger
	Sessions   SessionParser
	Users      UserLookup
	Cache      IdentityCache // optional
	CookieName string
	Metrics    metrics.Recorder
}

// Identity resolves the session credential to a stored user and injects
// auth.Identity into the request context. Missing or invalid credentials
// get 401; a valid credential without a stored user gets 404.
func Identity(cfg IdentityConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookie
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	logger := cfg.Logger.With("component", "middleware.identity")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			raw := extractSessionToken(r, cfg.CookieName)
			if raw == "" {
				logger.Warn("authentication failed",
					slog.String("reason", "missing_session"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", requestID),
				)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := cfg.Sessions.Parse(raw)
			if err != nil {
				logger.Warn("authentication failed",
					slog.String("reason", sessionFailureReason(err)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", requestID),
				)
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			user, err := resolveUser(ctx, cfg, logger, claims.Email)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					logger.Warn("session user not provisioned",
						slog.String("request_id", requestID),
					)
					writeJSONError(w, http.StatusNotFound, "User not found")
					return
				}
				logger.Error("identity lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", requestID),
				)
				writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			identity := &auth.Identity{UserID: user.ID, Email: user.Email}
			recordIdentity(ctx, identity)
			ctx = auth.ContextWithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveUser reads through the cache. Cache failures degrade to a miss.
func resolveUser(ctx context.Context, cfg IdentityConfig, logger *slog.Logger, email string) (*model.User, error) {
	if cfg.Cache != nil {
		cached, err := cfg.Cache.GetUser(ctx, email)
		if err != nil {
			logger.Warn("identity cache read failed", slog.String("error", err.Error()))
		}
		if cached != nil {
			cfg.Metrics.IncIdentityCacheHit()
			return cached, nil
		}
		cfg.Metrics.IncIdentityCacheMiss()
	}

	user, err := cfg.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if cfg.Cache != nil {
		if err := cfg.Cache.SetUser(ctx, user); err != nil {
			logger.Warn("identity cache write failed", slog.String("error", err.Error()))
		}
	}
	return user, nil
}

// extractSessionToken prefers the Authorization header over the cookie.
func extractSessionToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func sessionFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredSession):
		return "expired_session"
	case errors.Is(err, auth.ErrMissingSession):
		return "missing_session"
	default:
		return "invalid_session"
	}
}
