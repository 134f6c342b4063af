package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ArchitYad/Non-block-io-vs-block-io/summary"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Server renders the dashboard. Artifacts are read again on every request so
// a rerun of the benchmarks shows up on reload.
type Server struct {
	dir         string
	loader      *summary.Loader
	defaultView summary.View
	logger      *zap.Logger
	router      chi.Router
}

func NewServer(dir string, loader *summary.Loader, defaultView summary.View, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		loader = summary.NewLoader(nil, logger)
	}
	s := &Server{
		dir:         dir,
		loader:      loader,
		defaultView: defaultView,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/correlation", s.handleCorrelation)
	})
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// load reads the artifacts. Partial failures are logged and the rows that
// could be read are still served.
func (s *Server) load() *summary.Table {
	t, err := s.loader.Load(s.dir)
	if err != nil {
		s.logger.Warn("some artifacts could not be read", zap.Error(err))
	}
	return t
}

func (s *Server) view(r *http.Request) (summary.View, error) {
	q := r.URL.Query().Get("view")
	if q == "" {
		return s.defaultView, nil
	}
	return summary.ParseView(q)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, err := s.view(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	t := s.load()
	layout := summary.Plan(t, s.loader.Cases, v)
	h := header{
		Title:   Title,
		Dir:     s.dir,
		Options: viewOptions(v),
		Empty:   t.Len() == 0,
		Missing: layout.Missing(s.loader.Cases),
	}
	if len(h.Missing) > 0 && !h.Empty {
		s.logger.Info("cases missing from view", zap.Stringer("view", v), zap.Strings("cases", h.Missing))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderPage(w, NewPage(t, layout), h); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	t := s.load()
	if r.URL.Query().Get("view") != "" {
		v, err := s.view(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var labels []string
		for _, sec := range summary.Plan(t, s.loader.Cases, v).Sections {
			labels = append(labels, sec.Table.Labels()...)
		}
		t = t.Select(labels...)
	}
	s.writeJSON(w, t)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.load().Correlation())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", ln.Addr().String()), zap.String("dir", s.dir))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	s.logger.Info("dashboard stopped")
	return nil
}
