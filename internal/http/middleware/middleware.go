package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/pixel-canvas/internal/access"
	"github.com/rogerio-castellano/pixel-canvas/internal/auth"
)

type contextKey string

const viewerKey = contextKey("viewer")

var (
	sessions *auth.SessionManager
	logger   = log.Default()
)

func SetSessionManager(s *auth.SessionManager) {
	sessions = s
}

func SetLogger(l *log.Logger) {
	logger = l
}

// Session resolves the session cookie into an access.Viewer stored on the
// request context. Invalid or missing sessions yield the anonymous viewer.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := access.Anonymous
		if sessions != nil {
			v, err := sessions.Viewer(r)
			if err != nil {
				logger.Error("session lookup failed", "err", err, "request_id", chimw.GetReqID(r.Context()))
			}
			viewer = v
		}
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
	})
}

func WithViewer(ctx context.Context, v access.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// GetViewer returns the viewer stored by Session, or the anonymous viewer.
func GetViewer(r *http.Request) access.Viewer {
	if v, ok := r.Context().Value(viewerKey).(access.Viewer); ok {
		return v
	}
	return access.Anonymous
}

// RequireLogin redirects anonymous visitors to the login page, remembering
// where they were going.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetViewer(r).Authenticated() {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIAuth answers anonymous API calls with 401 and a JSON error.
func RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetViewer(r).Authenticated() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		}
		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	})
}
