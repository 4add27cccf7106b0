package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/services"
	"github.com/username/gstfolio/src/utils"
	"golang.org/x/time/rate"
)

const (
	AccountIDHeader = "X-Account-ID"
	ClientIDHeader  = "X-Client-ID"

	maxIdentityLength = 128
)

type contextKey string

const sessionKeyContextKey contextKey = "sessionKey"

// GetSessionKeyFromContext returns the identity IdentityMiddleware attached.
func GetSessionKeyFromContext(ctx context.Context) (services.SessionKey, bool) {
	key, ok := ctx.Value(sessionKeyContextKey).(services.SessionKey)
	return key, ok
}

// IdentityMiddleware resolves the working session from the identity headers.
// The account is created on first sight; a client id must belong to it.
func IdentityMiddleware(settings *services.SettingsService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContext(r.Context())
			accountID := strings.TrimSpace(r.Header.Get(AccountIDHeader))
			clientID := strings.TrimSpace(r.Header.Get(ClientIDHeader))
			if accountID == "" {
				log.Debug("IdentityMiddleware: account header missing", "path", r.URL.Path)
				utils.SendJSONError(w, AccountIDHeader+" header required", http.StatusUnauthorized)
				return
			}
			if len(accountID) > maxIdentityLength || len(clientID) > maxIdentityLength {
				utils.SendJSONError(w, "identity header too long", http.StatusBadRequest)
				return
			}

			if _, err := settings.EnsureAccount(r.Context(), accountID); err != nil {
				log.Error("IdentityMiddleware: failed to load account", "accountID", accountID, "error", err)
				utils.SendJSONError(w, "failed to load account", http.StatusInternalServerError)
				return
			}
			if clientID != "" {
				if _, err := settings.ResolveClient(r.Context(), accountID, clientID); err != nil {
					writeServiceError(w, r, err, "resolve client")
					return
				}
			}

			key := services.SessionKey{AccountID: accountID, ClientID: clientID}
			ctx := context.WithValue(r.Context(), sessionKeyContextKey, key)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("session", key.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware rejects requests beyond the limiter's budget.
func RateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.FromContext(r.Context()).Warn("Rate limit exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"remoteAddr", r.RemoteAddr)
				utils.SendJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger attaches a logger carrying the request id to the context and
// logs every request once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := logger.L.With("requestID", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

		l.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
