package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/vidhan-archive/kramank/internal/export"
	"github.com/vidhan-archive/kramank/internal/store"
)

// Store is the read surface the API serves from.
type Store interface {
	StatusCounts(ctx context.Context) (map[string]int, error)
	GetKramank(ctx context.Context, id uuid.UUID) (store.Kramank, error)
	ListDebates(ctx context.Context, kramankID uuid.UUID) ([]store.Debate, error)
	ListMembers(ctx context.Context, kramankID uuid.UUID) ([]store.Member, error)
	ListResolutions(ctx context.Context, kramankID uuid.UUID) ([]store.Resolution, error)
}

// Pipeline triggers reprocessing of a registered kramank. An empty dir
// means the pipeline rederives the OCR location from its data dir.
type Pipeline interface {
	Reprocess(ctx context.Context, id uuid.UUID, dir string) error
}

type Server struct {
	router   *chi.Mux
	port     int
	store    Store
	pipeline Pipeline
	logger   *slog.Logger
}

func NewServer(port int, apiToken string, db Store, pipeline Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		store:    db,
		pipeline: pipeline,
		logger:   logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/kramank/status", s.status)

	router.Route("/api/v1/kramanks", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/{id}/process", s.process)
		r.Get("/{id}/export.xlsx", s.exportXLSX)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware rejects requests without the configured token. An
// empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" {
				got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
				if got != token {
					http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.StatusCounts(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"status query failed: %v"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"service":  "kramank",
		"kramanks": counts,
	})
}

// processRequest optionally overrides where the kramank's OCR pages live.
type processRequest struct {
	Dir string `json:"dir"`
}

// process handles POST /api/v1/kramanks/{id}/process. The pipeline run is
// minutes long, so it runs detached and the request returns immediately.
func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid kramank id"}`, http.StatusBadRequest)
		return
	}

	var req processRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf(`{"error":"invalid JSON: %v"}`, err), http.StatusBadRequest)
			return
		}
	}

	if _, err := s.store.GetKramank(r.Context(), id); err != nil {
		http.Error(w, `{"error":"kramank not found"}`, http.StatusNotFound)
		return
	}

	go func() {
		if err := s.pipeline.Reprocess(context.Background(), id, req.Dir); err != nil {
			s.logger.Error("reprocess failed", "id", id, "error", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"id":     id.String(),
		"status": "processing",
	})
}

func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid kramank id"}`, http.StatusBadRequest)
		return
	}

	k, err := s.store.GetKramank(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"kramank not found"}`, http.StatusNotFound)
		return
	}

	debates, err := s.store.ListDebates(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"list debates: %v"}`, err), http.StatusInternalServerError)
		return
	}
	members, err := s.store.ListMembers(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"list members: %v"}`, err), http.StatusInternalServerError)
		return
	}
	resolutions, err := s.store.ListResolutions(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"list resolutions: %v"}`, err), http.StatusInternalServerError)
		return
	}

	f, err := export.Workbook(debates, members, resolutions)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error":"build workbook: %v"}`, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, k.Name))
	if err := f.Write(w); err != nil {
		s.logger.Error("failed to stream workbook", "id", id, "error", err)
	}
}
