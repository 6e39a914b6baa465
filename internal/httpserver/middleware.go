package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"revista/backend/internal/access"
	"revista/backend/internal/apperr"
	"revista/backend/internal/domain/auth"
	"revista/backend/internal/infrastructure/ratelimit"
	"revista/backend/internal/logging"
)

const requestIDHeader = "X-Request-ID"

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *responseRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// withRequestLogging tags each request with an id, stores a request-scoped
// entry in the context and logs the outcome.
func withRequestLogging(logger *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		recorder := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r.WithContext(logging.WithEntry(r.Context(), entry)))

		status := recorder.statusCode()
		fields := entry.WithFields(logrus.Fields{
			"status":      status,
			"bytes":       recorder.size,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			fields.Error("request completed")
		case status >= http.StatusBadRequest:
			fields.Warn("request completed")
		default:
			fields.Info("request completed")
		}
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(r.Context()).WithField("panic", rec).Error("handler panicked")
				s.writeAppError(w, r, apperr.ErrInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func withCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// withRateLimit charges the request against limiter before anything else on
// the route runs. A nil limiter disables the check.
func (s *Server) withRateLimit(limiter *ratelimit.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := limiter.Allow(r.Context(), clientIP(r, s.trustProxy))
		if err != nil {
			logging.FromContext(r.Context()).WithError(err).Warn("rate limiter unavailable, allowing request")
		}

		now := s.now()
		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(int(decision.RetryAfter(now).Seconds())))

		if !decision.Allowed {
			h.Set("Retry-After", strconv.Itoa(int(decision.RetryAfter(now).Seconds())))
			if s.metrics != nil {
				s.metrics.rateLimited.WithLabelValues(limiter.Name()).Inc()
			}
			s.writeAppError(w, r, apperr.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

// authenticate resolves the bearer token into claims. Missing or invalid
// credentials stop the request with 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.VerifyToken(bearerToken(r.Header.Get("Authorization")))
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		entry := logging.FromContext(r.Context()).WithField("user_id", claims.UserID)
		ctx := context.WithValue(logging.WithEntry(r.Context(), entry), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRoles admits callers whose role is in allowed. It expects
// authenticate to have run.
func (s *Server) requireRoles(allowed []auth.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := access.Authorize(claimsFrom(r), allowed...); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey{}).(*auth.Claims)
	return claims
}

// clientIP returns the socket address of the caller. X-Forwarded-For is
// client-controlled, so its first hop is used only when trustProxy is set.
func clientIP(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
