// internal/server/mux.go
// Package server implements the HTTP handlers and routing for the gallery
// service: the password gate, the catalog listing, playback URL resolution
// and inline renames, plus health and metrics endpoints.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/familyvhs/familyvhs-gallery-go/internal/catalog"
	errordefs "github.com/familyvhs/familyvhs-gallery-go/internal/errors"
	"github.com/familyvhs/familyvhs-gallery-go/internal/event"
	"github.com/familyvhs/familyvhs-gallery-go/internal/metadata"
	"github.com/familyvhs/familyvhs-gallery-go/internal/metrics"
	"github.com/familyvhs/familyvhs-gallery-go/internal/model"
	"github.com/familyvhs/familyvhs-gallery-go/internal/session"
	"github.com/familyvhs/familyvhs-gallery-go/internal/store"
)

// ContextKey is used for context values to avoid collisions
type ContextKey string

// ContextKeyCorrelationID stores the per-request correlation ID.
const ContextKeyCorrelationID ContextKey = "correlationId"

// Mux handles HTTP requests for the gallery service.
type Mux struct {
	mux     *http.ServeMux
	auth    *session.Authenticator
	catalog *catalog.Builder
	meta    *metadata.Store
	objects store.ObjectStore
	pub     event.Publisher
	metrics *metrics.Metrics
}

// NewMux creates the HTTP mux with all gallery endpoints.
func NewMux(auth *session.Authenticator, builder *catalog.Builder, meta *metadata.Store, objects store.ObjectStore, pub event.Publisher) *http.ServeMux {
	m := &Mux{
		mux:     http.NewServeMux(),
		auth:    auth,
		catalog: builder,
		meta:    meta,
		objects: objects,
		pub:     pub,
		metrics: metrics.NewMetrics(),
	}

	m.mux.HandleFunc("/healthz", m.handleHealthz)
	m.mux.HandleFunc("/readyz", m.handleReadyz)
	m.mux.Handle("/metrics", promhttp.Handler())

	// /auth dispatches on method inside the handler (POST login, DELETE logout).
	m.mux.HandleFunc("/auth", m.withMiddleware(m.handleAuth))
	m.mux.HandleFunc("/videos", m.method("GET", m.withMiddleware(m.gate(m.handleListVideos))))
	m.mux.HandleFunc("/videos/rename", m.method("POST", m.withMiddleware(m.gate(m.handleRename))))
	m.mux.HandleFunc("/videos/", m.method("GET", m.withMiddleware(m.gate(m.handlePlaybackURL))))

	return m.mux
}

// method ensures the HTTP method matches the expected method
func (m *Mux) method(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_BAD_REQUEST, "method not allowed", correlationID(r.Context())))
			return
		}
		h(w, r)
	}
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// withMiddleware attaches a correlation ID to the request, then records
// a structured completion log and request metrics.
func (m *Mux) withMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		cid := r.Header.Get("X-Correlation-Id")
		if cid == "" {
			cid = uuid.New().String()
		}
		r = r.WithContext(context.WithValue(r.Context(), ContextKeyCorrelationID, cid))
		w.Header().Set("X-Correlation-Id", cid)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		duration := time.Since(start)
		status := fmt.Sprintf("%d", rec.status)
		m.metrics.HTTPRequestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		m.metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration.Seconds())

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", duration),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("correlation_id", cid),
		}
		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.LogAttrs(r.Context(), level, "request completed", attrs...)
	}
}

// gate requires a valid session cookie. All failures look the same to the
// client; a client receiving 401 re-prompts for the password.
func (m *Mux) gate(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.auth.CheckRequest(r); err != nil {
			m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_AUTHN, "unauthorized", correlationID(r.Context())))
			return
		}
		h(w, r)
	}
}

// correlationID extracts the request correlation ID from a context.
func correlationID(ctx context.Context) string {
	if cid, ok := ctx.Value(ContextKeyCorrelationID).(string); ok {
		return cid
	}
	return ""
}

// writeJSON writes a successful JSON response.
func (m *Mux) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeErrorDef writes an error response.
func (m *Mux) writeErrorDef(w http.ResponseWriter, err *errordefs.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	response := map[string]interface{}{
		"success": false,
		"error": map[string]interface{}{
			"code":          err.Code,
			"message":       err.Message,
			"correlationId": err.CorrelationID,
		},
	}
	_ = json.NewEncoder(w).Encode(response)
}

// handleHealthz handles liveness health check requests
func (m *Mux) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz handles readiness health check requests by probing the
// object store; an empty bucket is still ready.
func (m *Mux) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := m.objects.Exists(ctx, model.VideoPrefix); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleAuth handles POST /auth (login) and DELETE /auth (logout).
func (m *Mux) handleAuth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		m.handleLogin(w, r)
	case http.MethodDelete:
		m.handleLogout(w, r)
	default:
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_BAD_REQUEST, "method not allowed", correlationID(r.Context())))
	}
}

// handleLogin validates the submitted password and issues a session cookie.
func (m *Mux) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("gallery").Start(r.Context(), "handleLogin")
	defer span.End()
	defer r.Body.Close()

	cid := correlationID(ctx)

	var req model.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "invalid JSON")
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_VALIDATION, "invalid JSON", cid))
		return
	}
	if req.Password == "" {
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_VALIDATION, "password is required", cid))
		return
	}

	if err := m.auth.Verify(req.Password); err != nil {
		// A missing server-side secret and a wrong password must be
		// indistinguishable here.
		m.metrics.AuthAttemptsTotal.WithLabelValues("denied").Inc()
		span.SetStatus(codes.Error, "authentication failed")
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_AUTHN, "invalid password", cid))
		return
	}

	token, err := m.auth.Issue()
	if err != nil {
		slog.Error("failed to issue session token", "error", err, "correlation_id", cid)
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_INTERNAL, "failed to create session", cid))
		return
	}
	http.SetCookie(w, m.auth.NewCookie(token))
	m.metrics.AuthAttemptsTotal.WithLabelValues("granted").Inc()

	if err := m.pub.PublishSessionOpened(ctx, cid); err != nil {
		slog.Warn("failed to publish session opened event", "error", err)
	}

	m.writeJSON(w, http.StatusOK, model.AuthResponse{Success: true})
}

// handleLogout clears the session cookie. Always succeeds; a token copied
// elsewhere remains accepted until it expires.
func (m *Mux) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, m.auth.ClearCookie())
	m.writeJSON(w, http.StatusOK, model.AuthResponse{Success: true})
}

// handleListVideos handles GET /videos.
func (m *Mux) handleListVideos(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("gallery").Start(r.Context(), "handleListVideos")
	defer span.End()

	records, err := m.catalog.Build(ctx)
	if err != nil {
		cid := correlationID(ctx)
		slog.Error("catalog build failed", "error", err, "correlation_id", cid)
		span.SetStatus(codes.Error, "catalog build failed")
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_UPSTREAM, "failed to fetch videos", cid))
		return
	}
	span.SetAttributes(attribute.Int("videos", len(records)))

	if records == nil {
		records = []model.VideoRecord{}
	}
	m.writeJSON(w, http.StatusOK, model.VideosResponse{Videos: records})
}

// handlePlaybackURL handles GET /videos/{base64 key}. The key is base64
// encoded in the path to tolerate slashes inside storage keys.
func (m *Mux) handlePlaybackURL(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("gallery").Start(r.Context(), "handlePlaybackURL")
	defer span.End()

	cid := correlationID(ctx)

	encoded := strings.TrimPrefix(r.URL.Path, "/videos/")
	key, err := decodeKey(encoded)
	if err != nil || key == "" {
		span.SetStatus(codes.Error, "bad video key")
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_VALIDATION, "invalid video key", cid))
		return
	}
	span.SetAttributes(attribute.String("key", key))

	url, err := m.objects.PresignGet(ctx, key, catalog.SignedURLTTL)
	if err != nil {
		slog.Error("failed to sign playback URL", "key", key, "error", err, "correlation_id", cid)
		span.SetStatus(codes.Error, "presign failed")
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_UPSTREAM, "failed to generate video URL", cid))
		return
	}
	m.writeJSON(w, http.StatusOK, model.PlaybackResponse{URL: url})
}

// handleRename handles POST /videos/rename.
func (m *Mux) handleRename(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("gallery").Start(r.Context(), "handleRename")
	defer span.End()
	defer r.Body.Close()

	cid := correlationID(ctx)

	var req model.RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		span.SetStatus(codes.Error, "invalid JSON")
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_VALIDATION, "invalid JSON", cid))
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if req.VideoKey == "" || displayName == "" {
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_VALIDATION, "videoKey and displayName are required", cid))
		return
	}
	span.SetAttributes(attribute.String("key", req.VideoKey))

	// No check that the key names an existing video: renaming an unknown
	// key silently creates a metadata entry with no visible effect.
	if err := m.meta.SetDisplayName(ctx, req.VideoKey, displayName); err != nil {
		slog.Error("rename failed", "key", req.VideoKey, "error", err, "correlation_id", cid)
		span.SetStatus(codes.Error, "metadata write failed")
		m.writeErrorDef(w, errordefs.New(errordefs.GALLERY_UPSTREAM, "failed to rename video", cid))
		return
	}

	if err := m.pub.PublishVideoRenamed(ctx, req.VideoKey, displayName); err != nil {
		slog.Warn("failed to publish video renamed event", "error", err)
	}

	m.writeJSON(w, http.StatusOK, model.AuthResponse{Success: true})
}

// decodeKey decodes a base64 path segment, accepting standard and
// URL-safe alphabets with or without padding.
func decodeKey(encoded string) (string, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(encoded); err == nil {
			return string(b), nil
		}
	}
	return "", fmt.Errorf("not a base64-encoded key: %q", encoded)
}
