// Package web provides a read-only HTTP API over a GnuCash book.
//
// The server loads the book once, runs the checks and answers queries from
// the in-memory graph. When the GnuCash file or its descriptor changes on
// disk the book is rebuilt, swapped in and connected clients are told
// through server-sent events.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/gnucash/loader"
	"github.com/robinvdvleuten/gnucash/telemetry"
)

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	WatchEnabled bool

	logger *zap.Logger

	mu       sync.RWMutex
	result   *loader.Result
	loadedAt time.Time

	// inputFile is the file path passed to New(), either a GnuCash file or
	// a descriptor.
	inputFile string

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests, reloads and watcher events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by /api/status.
func WithVersion(version, commitSHA string) Option {
	return func(s *Server) {
		s.Version = version
		s.CommitSHA = commitSHA
	}
}

func New(port int, bookFile string, opts ...Option) *Server {
	s := &Server{
		Port:         port,
		Host:         "127.0.0.1",
		WatchEnabled: true,
		inputFile:    bookFile,
		logger:       zap.NewNop(),
		sseClients:   make(map[chan string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("web.start %s:%d", s.Host, s.Port))

	if s.inputFile == "" {
		timer.End()
		return fmt.Errorf("book file is required")
	}

	loadTimer := timer.Child(fmt.Sprintf("web.load_book %s", filepath.Base(s.inputFile)))
	if err := s.reloadBook(ctx); err != nil {
		loadTimer.End()
		timer.End()
		return fmt.Errorf("failed to load book: %w", err)
	}
	loadTimer.End()

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			timer.End()
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	setupTimer := timer.Child("web.setup_router")
	mux := s.setupRouter()
	setupTimer.End()
	timer.End()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           s.logRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.handleGetStatus)
	mux.HandleFunc("GET /api/accounts", s.handleGetAccounts)
	mux.HandleFunc("GET /api/balances", s.handleGetBalances)
	mux.HandleFunc("GET /api/days", s.handleGetDays)
	mux.HandleFunc("GET /api/checks", s.handleGetChecks)
	mux.HandleFunc("GET /api/debitors", s.handleGetDebitors)
	mux.HandleFunc("GET /api/statement", s.handleGetStatement)
	mux.HandleFunc("GET /api/resolve", s.handleGetResolve)
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// reloadBook loads or reloads the book from disk and runs the checks.
// Caller must NOT hold the mutex - this method acquires it internally.
func (s *Server) reloadBook(ctx context.Context) error {
	ldr := loader.New(loader.WithChecks(), loader.WithLogger(s.logger))

	result, err := ldr.Load(ctx, s.inputFile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.result = result
	s.loadedAt = time.Now()
	s.mu.Unlock()

	return nil
}

// current returns the loaded book. Books are immutable once built, so the
// result can be used after the lock is released.
func (s *Server) current() *loader.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// startWatcher watches the files the loaded book depends on. It reloads
// the book and broadcasts SSE events when they change.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	for _, file := range s.current().Files {
		if err := watcher.Add(file); err != nil {
			s.logger.Warn("failed to watch file", zap.String("file", file), zap.Error(err))
		}
	}

	go s.runWatcher(ctx, watcher)

	return nil
}

// runWatcher processes file system events with debouncing. The watcher is
// closed only after a reload in progress has finished with it.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	// GnuCash saves through a temporary file and a rename.
	debounce := newDebouncer(250 * time.Millisecond)
	defer func() {
		debounce.stop()
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			debounce.trigger(func() {
				s.handleFileChange(ctx, watcher)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// handleFileChange reloads the book and updates the watch list.
func (s *Server) handleFileChange(ctx context.Context, watcher *fsnotify.Watcher) {
	if ctx.Err() != nil {
		return
	}

	old := make(map[string]bool)
	for _, f := range s.current().Files {
		old[f] = true
	}

	if err := s.reloadBook(ctx); err != nil {
		s.logger.Error("failed to reload book", zap.Error(err))
		s.broadcast("error")
		return
	}

	current := make(map[string]bool)
	for _, f := range s.current().Files {
		current[f] = true
	}

	for file := range old {
		if !current[file] {
			_ = watcher.Remove(file)
		}
	}

	// Re-add everything, a rename drops the watch on the old inode.
	for file := range current {
		if err := watcher.Add(file); err != nil {
			s.logger.Warn("failed to watch file", zap.String("file", file), zap.Error(err))
		}
	}

	s.logger.Info("book reloaded", zap.String("file", s.inputFile))
	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}
