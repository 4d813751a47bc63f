// Package server is a development backend for the sensor API. It serves the
// REST endpoints the dashboard polls from an in-memory store, and can fill
// that store from MQTT or from a built-in simulator.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/greenhouse-iot/sensordash/internal/api"
	"github.com/greenhouse-iot/sensordash/internal/logger"
)

// SessionCookie is set on a successful login.
const SessionCookie = "sensordash_session"

const shutdownTimeout = 5 * time.Second

// envelope is the wire wrapper shared by every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

// Server routes the sensor API onto a Store.
type Server struct {
	store     *Store
	password  string
	log       logger.Logger
	accessLog io.Writer
	origins   []string
	router    *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithPassword sets the dashboard password accepted by /api/login.
func WithPassword(p string) Option {
	return func(s *Server) { s.password = p }
}

// WithLogger sets the logger for server events.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithAccessLog writes an Apache-style access line per request to w.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) { s.accessLog = w }
}

// WithAllowedOrigins sets the CORS origins. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates a Server over store.
func New(store *Store, opts ...Option) *Server {
	s := &Server{
		store:     store,
		log:       logger.Noop(),
		accessLog: io.Discard,
		origins:   []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/login", s.login).Methods(http.MethodPost)
	a.HandleFunc("/sensors", s.listSensors).Methods(http.MethodGet)
	a.HandleFunc("/sensors", s.createSensor).Methods(http.MethodPost)
	a.HandleFunc("/sensors/history", s.sensorHistory).Methods(http.MethodGet)
	a.HandleFunc("/sensors/{id:[0-9]+}", s.getSensor).Methods(http.MethodGet)
	a.HandleFunc("/sensors/{id:[0-9]+}", s.updateSensor).Methods(http.MethodPut)
	a.HandleFunc("/sensors/{id:[0-9]+}", s.deleteSensor).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Error: "method not allowed"})
	})
	return r
}

// Handler returns the router wrapped with CORS, panic recovery, and access
// logging.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Accept", "X-Request-ID"}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(printlnLogger{s.log}))
	return handlers.LoggingHandler(s.accessLog, recovery(cors(s.router)))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("sensor API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]any{
		"status":   "ok",
		"sensors":  len(s.store.List()),
		"readings": s.store.Len(),
	}})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid JSON body"})
		return
	}
	if s.password == "" {
		s.log.Warn("rejected login from %s: no password configured", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Invalid password"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.password)) != 1 {
		s.log.Warn("rejected login from %s", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Invalid password"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    uuid.NewString(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Login successful"})
}

func (s *Server) listSensors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: s.store.List()})
}

func (s *Server) getSensor(w http.ResponseWriter, r *http.Request) {
	id, ok := sensorID(w, r)
	if !ok {
		return
	}
	raw, err := s.store.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: raw})
}

func (s *Server) createSensor(w http.ResponseWriter, r *http.Request) {
	var in api.SensorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid JSON body"})
		return
	}
	raw, err := s.store.Create(in)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("added sensor %d (%s)", raw.ID, raw.Name)
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Sensor added", ID: raw.ID})
}

func (s *Server) updateSensor(w http.ResponseWriter, r *http.Request) {
	id, ok := sensorID(w, r)
	if !ok {
		return
	}
	var in api.SensorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid JSON body"})
		return
	}
	if _, err := s.store.Update(id, in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Sensor updated"})
}

func (s *Server) deleteSensor(w http.ResponseWriter, r *http.Request) {
	id, ok := sensorID(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("deleted sensor %d", id)
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Sensor deleted"})
}

func (s *Server) sensorHistory(w http.ResponseWriter, r *http.Request) {
	limit := api.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, envelope{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	snap, ok := s.store.History(limit)
	if !ok {
		writeJSON(w, http.StatusNotFound, envelope{Error: "no history data"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: snap})
}

func sensorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid sensor id"})
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Error: "Sensor not found"})
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, envelope{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// printlnLogger adapts a Logger to the handlers.RecoveryHandlerLogger interface.
type printlnLogger struct {
	log logger.Logger
}

func (p printlnLogger) Println(args ...interface{}) {
	p.log.Error("%s", fmt.Sprint(args...))
}
