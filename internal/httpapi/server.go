// Package httpapi exposes the assistant over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/internal/observability"
)

const maxBodyBytes = 64 << 10

type Commander interface {
	ProcessCommand(ctx context.Context, text string) string
}

type Server struct {
	assistant Commander
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func New(a Commander, metrics *observability.Metrics, logger *zap.Logger) *Server {
	return &Server{assistant: a, metrics: metrics, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	r.Post("/ask", s.handleAsk)

	return r
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Response string `json:"response"`
	Type     string `json:"type"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	message, err := readMessage(r)
	if err != nil && !errors.Is(err, errEmptyBody) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
		return
	}
	if strings.TrimSpace(message) == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Empty message"})
		return
	}

	reply := s.assistant.ProcessCommand(r.Context(), message)
	respondJSON(w, http.StatusOK, askResponse{Response: reply, Type: "text"})
}

var errEmptyBody = errors.New("empty body")

// readMessage accepts a JSON body or a form field named "message".
func readMessage(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "eof") {
				return "", errEmptyBody
			}
			return "", err
		}
		return req.Message, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostFormValue("message"), nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(assistant.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("HTTP request",
			zap.String("request_id", assistant.RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
