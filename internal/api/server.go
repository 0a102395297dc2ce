// Package api exposes the notice decision engine over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/northcross/aviso/internal/engine"
	"github.com/northcross/aviso/internal/model"
	"github.com/northcross/aviso/internal/rules"
)

// Options configures the HTTP boundary.
type Options struct {
	AllowedOrigins []string
	// DefaultOrigin is used when a query omits origin. Empty makes it required.
	DefaultOrigin string
	// RejectUnavailable answers 503 when the jurisdiction's table is empty
	// instead of falling back to the chapter rules.
	RejectUnavailable bool
	RateLimit         float64 // requests/second per client; 0 disables
	RateBurst         int
}

// Server serves consulta requests against an Engine.
type Server struct {
	engine *engine.Engine
	opts   Options
}

// New returns a Server.
func New(e *engine.Engine, opts Options) *Server {
	return &Server{engine: e, opts: opts}
}

// Handler builds the router with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(newRateLimiter(s.opts.RateLimit, s.opts.RateBurst).middleware)
		}
		r.Get("/consulta", s.handleConsultaQuery)
		r.Post("/consulta", s.handleConsultaJSON)
		r.Get("/status", s.handleStatus)
		r.Get("/industrias", s.handleIndustries)
		r.Get("/reglas", s.handleRules)
	})
	return r
}

// consultaRequest is the JSON body accepted by POST /consulta.
type consultaRequest struct {
	Origin    string `json:"origin"`
	Industria string `json:"industria"`
	Industry  string `json:"industry"`
	Code      string `json:"code"`
	Fraccion  string `json:"fraccion"`
}

type consultaResponse struct {
	model.Decision
	Mensaje   string `json:"mensaje"`
	RequestID string `json:"request_id,omitempty"`
}

type unavailableResponse struct {
	Mensaje        string `json:"mensaje"`
	RequiresNotice *bool  `json:"requiere_aviso_automatico"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"origins": s.opts.AllowedOrigins,
	})
}

func (s *Server) handleConsultaQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.consulta(w, r, consultaRequest{
		Origin:    q.Get("origin"),
		Industria: firstNonEmpty(q.Get("industria"), q.Get("industry")),
		Code:      firstNonEmpty(q.Get("code"), q.Get("fraccion")),
	})
}

func (s *Server) handleConsultaJSON(w http.ResponseWriter, r *http.Request) {
	var req consultaRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Industria = firstNonEmpty(req.Industria, req.Industry)
	req.Code = firstNonEmpty(req.Code, req.Fraccion)
	s.consulta(w, r, req)
}

func (s *Server) consulta(w http.ResponseWriter, r *http.Request, req consultaRequest) {
	origin := strings.TrimSpace(req.Origin)
	if origin == "" {
		origin = s.opts.DefaultOrigin
	}
	o, err := model.ParseOrigin(origin)
	if err != nil {
		writeError(w, http.StatusBadRequest, "origin must be mx or us")
		return
	}
	if strings.TrimSpace(req.Industria) == "" {
		writeError(w, http.StatusBadRequest, "industria is required")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if s.opts.RejectUnavailable && !s.engine.Available(o) {
		zap.L().Warn("consulta rejected: reference dataset unavailable",
			zap.String("origin", string(o)),
			zap.Error(engine.ErrDatasetUnavailable),
		)
		writeJSON(w, http.StatusServiceUnavailable, unavailableResponse{
			Mensaje: "Base " + o.Schedule() + " no disponible",
		})
		return
	}

	d, err := s.engine.Resolve(string(o), req.Industria, req.Code)
	if err != nil {
		if errors.Is(err, model.ErrInvalidOrigin) {
			writeError(w, http.StatusBadRequest, "origin must be mx or us")
			return
		}
		zap.L().Error("consulta failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, consultaResponse{
		Decision:  d,
		Mensaje:   message(d),
		RequestID: RequestIDFrom(r.Context()),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tables": s.engine.Store().Stats(),
	})
}

func (s *Server) handleIndustries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"industrias": s.engine.Industries(),
	})
}

func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"reglas": rules.Rules(),
	})
}

func message(d model.Decision) string {
	switch {
	case d.RequiresNotice == nil:
		return "Fracción no encontrada"
	case *d.RequiresNotice:
		return "Requiere aviso automático"
	default:
		return "No requiere aviso automático"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
