package inspect

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/reactive"
)

// maxBodySize limits PUT /signals/{key} bodies.
const maxBodySize = 1 << 20

// Config configures an inspector Server.
type Config struct {
	// Logger receives request and hub logs.
	// Default: slog.Default()
	Logger *slog.Logger

	// Gatherer backs GET /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer

	// CheckOrigin validates websocket origins.
	// Default: accept every origin.
	CheckOrigin func(*http.Request) bool

	// ReadOnly rejects PUT requests with 405.
	ReadOnly bool
}

// Server is the HTTP inspector for one scope tree.
type Server struct {
	root   *reactive.Owner
	hub    *Hub
	router chi.Router
	logger *slog.Logger
	cfg    Config
}

// SignalView is the JSON form of a persistable signal.
type SignalView struct {
	Key   string `json:"key"`
	ID    uint64 `json:"id"`
	Value any    `json:"value"`
}

type errorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Subject string `json:"subject,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// New creates an inspector over root.
func New(root *reactive.Owner, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		root:   root,
		hub:    NewHub(cfg.Logger, cfg.CheckOrigin),
		logger: cfg.Logger,
		cfg:    cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(detachReactive)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/stats", s.handleStats)
	r.Route("/signals", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/{key}", s.handleGet)
		r.Put("/{key}", s.handlePut)
	})
	r.Get("/events", s.hub.HandleWebSocket)
	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the inspector's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub. Attach it as the scope observer to
// stream writes.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close disconnects all websocket clients.
func (s *Server) Close() {
	s.hub.Close()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("inspect: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// detachReactive drops the reactive state a handler goroutine picked up
// while reading or writing signals.
func detachReactive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer reactive.Detach()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.root.Stats())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	all := s.root.Persistables()
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	views := make([]SignalView, 0, len(keys))
	for _, k := range keys {
		views = append(views, view(k, all[k]))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	p, ok := s.root.Persistables()[key]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("I300").WithSubject(key))
		return
	}
	writeJSON(w, http.StatusOK, view(key, p))
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, errors.New("I301").
			WithSubject(chi.URLParam(r, "key")).
			WithDetail("the inspector is read-only"))
		return
	}

	key := chi.URLParam(r, "key")
	p, ok := s.root.Persistables()[key]
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("I300").WithSubject(key))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("I301").WithSubject(key).Wrap(err))
		return
	}
	ptr := p.NewValue()
	if err := json.Unmarshal(body, ptr); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("I301").WithSubject(key).Wrap(err))
		return
	}
	if err := p.SetAny(reflect.ValueOf(ptr).Elem().Interface()); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("I301").WithSubject(key).Wrap(err))
		return
	}

	s.logger.Info("inspect: signal set", "key", key)
	writeJSON(w, http.StatusOK, view(key, p))
}

func view(key string, p reactive.Persistable) SignalView {
	v := SignalView{Key: key, Value: p.GetAny()}
	if withID, ok := p.(interface{ ID() uint64 }); ok {
		v.ID = withID.ID()
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.Error) {
	ev := errorView{
		Code:    err.Code,
		Message: err.Message,
		Subject: err.Subject,
		Detail:  err.Detail,
	}
	if err.Wrapped != nil {
		ev.Cause = err.Wrapped.Error()
	}
	writeJSON(w, status, ev)
}
