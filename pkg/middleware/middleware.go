package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/auth"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/httpx"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/metrics"
)

// Config holds configuration for middlewares
type Config struct {
	EnableTracing   bool
	EnableTimeout   bool
	TimeoutDuration time.Duration
	Auth            *auth.Validator
	AuthRequired    bool
}

// Register installs the middleware chain on router, outermost first.
func Register(router *mux.Router, cfg Config) {
	logger.Logger.Info().
		Bool("tracing", cfg.EnableTracing).
		Bool("timeout", cfg.EnableTimeout).
		Dur("timeout_duration", cfg.TimeoutDuration).
		Bool("auth", cfg.Auth.Enabled()).
		Bool("auth_required", cfg.AuthRequired).
		Msg("Registering middlewares")

	router.Use(Recovery)
	if cfg.EnableTimeout && cfg.TimeoutDuration > 0 {
		router.Use(Timeout(cfg.TimeoutDuration))
	}
	if cfg.EnableTracing {
		router.Use(Tracing("atelier-http-request"))
	}
	router.Use(RequestID)
	router.Use(Logging)
	router.Use(Metrics)
	router.Use(SecurityHeaders)
	router.Use(Authenticate(cfg.Auth, cfg.AuthRequired))
}

// Recovery recovers from panics and returns 500 error
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(r.Context()).
					Interface("panic", err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("Panic recovered")
				httpx.Fail(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Timeout sets a timeout for HTTP requests
func Timeout(timeout time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "Request timeout")
	}
}

// Tracing wraps handlers with an otelhttp server span.
func Tracing(operation string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation)
	}
}

// RequestID propagates X-Request-ID, generating one when absent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := logger.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Logging logs every request once it completes.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		event := logger.Info(r.Context())
		if sw.status >= http.StatusBadRequest {
			event = logger.Error(r.Context())
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", duration).
			Msg("HTTP request completed")
	})
}

// Metrics records request counts and latency per route template.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
	})
}

// Authenticate resolves the acting user from a bearer token. Without a
// configured validator requests pass through anonymously.
func Authenticate(v *auth.Validator, required bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Enabled() || isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				if required {
					httpx.Fail(w, http.StatusUnauthorized, "Authorization header required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				httpx.Fail(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := v.ValidateToken(parts[1])
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := auth.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(path string) bool {
	return path == "/health" || path == "/metrics" || strings.HasPrefix(path, "/swagger/")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
