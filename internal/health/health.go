// Package health serves liveness and catalog counters over HTTP.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/vaultbot/core/buildinfo"
	"github.com/m3rciful/vaultbot/core/logger"
	"github.com/m3rciful/vaultbot/internal/catalog"
)

// Pinger checks database connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Counters reports catalog totals.
type Counters interface {
	Counters(ctx context.Context) (catalog.Stats, error)
}

// StatsResponse is the JSON body of GET /stats.
type StatsResponse struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Trashed    int            `json:"trashed"`
	ByCategory map[string]int `json:"by_category"`
}

// NewRouter builds the chi router with /healthz and /stats.
func NewRouter(db Pinger, counters Counters) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": buildinfo.String(),
		})
	})

	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		st, err := counters.Counters(req.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp := StatsResponse{
			Total:      st.Total,
			Active:     st.Active,
			Trashed:    st.Trashed,
			ByCategory: make(map[string]int, len(catalog.Categories)),
		}
		for _, c := range catalog.Categories {
			resp.ByCategory[string(c)] = st.ByCategory[c]
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.HTTP.Warn("encode failed",
			slog.String("event", "http.encode"),
			slog.String("err", err.Error()),
		)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.HTTP.Debug("request",
			slog.String("event", "http.request"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("http_status", ww.Status()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	})
}

// Server runs the health router until stopped.
type Server struct {
	srv *http.Server
}

// NewServer returns a server bound to addr.
func NewServer(addr string, h http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Start listens on the configured address and serves in the background.
// It returns once the listener is open so bind errors surface at startup.
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, err
	}
	logger.HTTP.Info("health server listening",
		slog.String("event", "http.listen"),
		slog.String("addr", ln.Addr().String()),
	)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.HTTP.Error("health server stopped",
				slog.String("event", "http.serve"),
				slog.String("err", err.Error()),
			)
		}
	}()
	return ln.Addr(), nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
