package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"operator-button-service/internal/app"
	"operator-button-service/internal/models"
	"operator-button-service/internal/observability/logging"
	"operator-button-service/internal/service/buttons"
	"operator-button-service/internal/service/ingress"
	"operator-button-service/internal/service/operator"
)

// Operators is the part of the operator registry the router needs.
type Operators interface {
	Push(ctx context.Context, operatorId, source string, s buttons.Snapshot) error
	Statuses() []models.OperatorStatus
}

type buttonResponse struct {
	Operator string `json:"operator"`
	Button1  bool   `json:"btn1"`
	Button2  bool   `json:"btn2"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application, operators Operators, hub *Hub) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if !application.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	defaultOperator := "0"
	if application.Cfg != nil && application.Cfg.Operators.DefaultId != "" {
		defaultOperator = application.Cfg.Operators.DefaultId
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/btn", buttonHandler(operators, defaultOperator))
		r.Get("/operators", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, operators.Statuses())
		})
		if hub != nil {
			r.Get("/events", hub.ServeHTTP)
		}
	})

	return r
}

// buttonHandler injects a synthetic snapshot: POST /api/btn?mode=both&operator=2
func buttonHandler(operators Operators, defaultOperator string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		s, err := ingress.ParseMode(q.Get("mode"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		operatorId := q.Get("operator")
		if operatorId == "" {
			operatorId = q.Get("op")
		}
		if operatorId == "" {
			operatorId = defaultOperator
		}

		if err := operators.Push(r.Context(), operatorId, ingress.SourceHTTP, s); err != nil {
			status := http.StatusServiceUnavailable
			switch {
			case errors.Is(err, operator.ErrTooManyOperators):
				status = http.StatusTooManyRequests
			case errors.Is(err, context.Canceled):
				status = http.StatusRequestTimeout
			}
			lg := logging.WithSource(operatorId, ingress.SourceHTTP)
			lg.Error().Err(err).Msg("Failed to push snapshot")
			writeJSON(w, status, errorResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, buttonResponse{
			Operator: operatorId,
			Button1:  s.Button1,
			Button2:  s.Button2,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
