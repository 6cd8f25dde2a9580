// Package server exposes the question-answering service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/kb-assist/internal/qalog"
	"github.com/ziadkadry99/kb-assist/internal/rag"
)

// TimestampLayout is the format of the timestamp returned by /ask.
const TimestampLayout = "2006-01-02 15:04:05"

// Answerer produces an answer for a question.
type Answerer interface {
	Ask(ctx context.Context, question string) (*rag.Answer, error)
}

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server is the question-answering HTTP service.
type Server struct {
	cfg        Config
	answerer   Answerer
	qaLog      *qalog.Store
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
	now        func() time.Time
}

// New creates a server. qaLog may be nil, in which case answers are only
// written to the logger.
func New(cfg Config, answerer Answerer, qaLog *qalog.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		answerer: answerer,
		qaLog:    qaLog,
		logger:   logger,
		now:      time.Now,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/", s.handleRoot)
	r.Get("/health", handleHealth)
	r.Get("/healthz", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))
		r.Post("/ask", s.handleAsk)
		if s.qaLog != nil {
			qalog.RegisterRoutes(r, s.qaLog)
		}
	})

	// The widget registers its own routes via widget.RegisterRoutes.

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Company Knowledge Base Assistant API",
		"status":    "active",
		"endpoints": []string{"/ask", "/health", "/ui"},
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Question must not be empty"})
		return
	}

	ans, err := s.answerer.Ask(r.Context(), question)
	if err != nil {
		s.logger.Error("answering question failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Error processing question: %v", err),
		})
		return
	}

	s.record(r.Context(), question, ans)

	writeJSON(w, http.StatusOK, askResponse{
		Question:  req.Question,
		Answer:    ans.Text,
		Timestamp: s.now().Format(TimestampLayout),
	})
}

func (s *Server) record(ctx context.Context, question string, ans *rag.Answer) {
	entry := qalog.Entry{Question: question, Answer: ans.Text}
	if c := ans.Completion; c != nil {
		entry.Model = c.Model
		entry.InputTokens = c.InputTokens
		entry.OutputTokens = c.OutputTokens
		entry.CostUSD = c.Cost()
	}

	if s.qaLog == nil {
		s.logger.Info(fmt.Sprintf("Q: %s | A: %s", entry.Question, entry.Answer))
		return
	}
	if _, err := s.qaLog.Log(ctx, entry); err != nil {
		s.logger.Warn("recording answer failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("kbassist server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
