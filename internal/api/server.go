package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sif-medellin/sifgpt/internal/conversation"
	"github.com/sif-medellin/sifgpt/internal/historico"
	"github.com/sif-medellin/sifgpt/internal/intake"
)

const serviceVersion = "1.0.0"

// TurnProcessor handles one conversation turn. Implemented by
// intake.Router.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, in intake.TurnInput) intake.TurnResult
}

// Transcriber converts an uploaded audio file to text. Implemented by
// the OpenAI client.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type Server struct {
	router      *chi.Mux
	port        int
	processor   TurnProcessor
	engine      *historico.Engine
	transcriber Transcriber
	sessions    conversation.Store
	logger      *slog.Logger
}

func NewServer(
	port int,
	processor TurnProcessor,
	engine *historico.Engine,
	transcriber Transcriber,
	sessions conversation.Store,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:      router,
		port:        port,
		processor:   processor,
		engine:      engine,
		transcriber: transcriber,
		sessions:    sessions,
		logger:      logger,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/pqrs", func(r chi.Router) {
			r.Get("/status", s.status)
			r.Post("/process-text", s.processText)
			r.Post("/process-audio", s.processAudio)
			r.Post("/transcribe-audio", s.transcribeAudio)
		})
		r.Route("/historico", func(r chi.Router) {
			r.Post("/consulta", s.consulta)
			r.Post("/avanzada", s.consultaAvanzada)
			r.Post("/sugerencias", s.sugerencias)
			r.Post("/exportar", s.exportar)
			r.Get("/filtros", s.filtros)
			r.Get("/estadisticas", s.estadisticas)
			r.Get("/dashboard", s.dashboard)
		})
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "sifgpt",
		"version": serviceVersion,
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.Count(r.Context())
	if err != nil {
		s.logger.Warn("failed to count sessions", "error", err)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service":             "sifgpt",
		"status":              "ok",
		"sesiones_activas":    sessions,
		"registros_historico": s.engine.Count(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
