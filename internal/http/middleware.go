package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/lumiforge/cutroom-backend/internal/audit"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/jwt"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/rbac"
)

// Context keys for storing values in request context
type contextKey string

const (
	UserClaimsKey contextKey = "user_claims"
	RequestIDKey  contextKey = "request_id"
)

// middlewareError writes a JSON error from middleware where no Server is at hand
func middlewareError(w http.ResponseWriter, status int, message string, kind app_errors.Kind) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
		"code":    status,
	}
	if kind != "" {
		body["kind"] = string(kind)
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// AuthMiddleware creates a middleware for JWT authentication.
// Only access tokens are accepted. Websocket handshakes may pass the token as access_token query parameter
func AuthMiddleware(tokens jwt.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenString string
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" && isWebsocketHandshake(r) {
				tokenString = r.URL.Query().Get("access_token")
			}
			if tokenString == "" {
				var err error
				tokenString, err = jwt.ExtractTokenFromHeader(authHeader)
				if err != nil {
					middlewareError(w, http.StatusUnauthorized, err.Error(), app_errors.KindUnauthorized)
					return
				}
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				middlewareError(w, http.StatusUnauthorized, err.Error(), app_errors.KindUnauthorized)
				return
			}
			if claims.TokenType != jwt.TokenTypeAccess {
				middlewareError(w, http.StatusUnauthorized, app_errors.ErrInvalidToken.Error(), app_errors.KindUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("user_id", claims.UserID, "role", string(claims.Role)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isWebsocketHandshake(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// RequirePermission rejects callers whose role lacks the permission.
// Ownership checks stay in the services
func RequirePermission(manager *rbac.RBAC, permission rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserClaims(r)
			if !ok {
				middlewareError(w, http.StatusForbidden, app_errors.ErrUserRoleNotFoundInContext.Error(), app_errors.KindForbidden)
				return
			}
			if err := manager.Require(claims.Role, permission); err != nil {
				middlewareError(w, http.StatusForbidden, err.Error(), app_errors.KindForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuditMetaMiddleware passes client IP and user agent to audit records
func AuditMetaMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithRequestMeta(r.Context(), clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs requests and responses with structured logging
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestID, _ := r.Context().Value(RequestIDKey).(string)

		l := slog.With("request_id", requestID, "method", r.Method, "path", r.URL.Path)
		ctx := logger.WithContext(r.Context(), l)

		l.Debug("Request started", "remote_addr", r.RemoteAddr, "user_agent", r.UserAgent())

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		duration := time.Since(start)
		l.Info("Request completed",
			"status_code", wrapped.statusCode,
			"duration_ms", duration.Milliseconds(),
			"response_size_bytes", wrapped.size,
		)
	})
}

// CORSMiddleware returns the go-chi CORS handler for the configured origins
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// ContentTypeMiddleware ensures JSON content type for requests with a body
func ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" || r.Method == "PUT" || r.Method == "PATCH" {
			contentType := r.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				middlewareError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", "")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter is a wrapper around http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// Hijack нужен websocket апгрейду
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// GetUserClaims extracts user claims from request context
func GetUserClaims(r *http.Request) (*jwt.Claims, bool) {
	claims, ok := r.Context().Value(UserClaimsKey).(*jwt.Claims)
	return claims, ok
}

// GetRequestID extracts request ID from request context
func GetRequestID(r *http.Request) (string, bool) {
	requestID, ok := r.Context().Value(RequestIDKey).(string)
	return requestID, ok
}
