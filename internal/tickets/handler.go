package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nmoralesc/ticket-classifier/internal/ai"
)

const readyTimeout = 3 * time.Second

type Handler struct {
	svc    Service
	repo   Repo
	ai     ai.Classifier
	env    string
	logger *zap.Logger
}

func NewHandler(svc Service, repo Repo, classifier ai.Classifier, env string, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		repo:   repo,
		ai:     classifier,
		env:    env,
		logger: logger,
	}
}

type processResponse struct {
	TicketID  string `json:"ticket_id"`
	Category  string `json:"category"`
	Sentiment string `json:"sentiment"`
	Processed bool   `json:"processed"`
}

// ProcessTicket — POST /process-ticket. Input is validated before any store
// access: a malformed ticket_id or blank description never reaches Supabase.
func (h *Handler) ProcessTicket(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TicketID    string `json:"ticket_id"`
		Description string `json:"description"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, err := uuid.Parse(payload.TicketID); err != nil {
		writeError(w, http.StatusBadRequest, "ticket_id invalido")
		return
	}
	if strings.TrimSpace(payload.Description) == "" {
		writeError(w, http.StatusBadRequest, "description vacio")
		return
	}

	result, err := h.svc.ProcessTicket(r.Context(), payload.TicketID, payload.Description)
	if err != nil {
		h.writeProcessError(w, payload.TicketID, err)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		TicketID:  result.TicketID,
		Category:  result.Category,
		Sentiment: result.Sentiment,
		Processed: result.Processed,
	})
}

func (h *Handler) writeProcessError(w http.ResponseWriter, ticketID string, err error) {
	var llmErr *ai.LLMError
	var storeErr *StoreError

	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "ticket no encontrado")

	case errors.Is(err, ErrInconsistent):
		writeError(w, http.StatusInternalServerError, "ticket procesado sin clasificacion")

	case errors.As(err, &llmErr):
		writeError(w, http.StatusBadGateway, "LLM error: "+llmErr.Detail())

	case errors.As(err, &storeErr):
		h.logger.Error("supabase failure",
			zap.String("ticket_id", ticketID),
			zap.String("op", storeErr.Op),
			zap.Error(storeErr.Err),
		)
		if storeErr.Op == "update" {
			writeError(w, http.StatusInternalServerError, "fallo actualizacion supabase")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")

	default:
		h.logger.Error("unhandled error",
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Health — GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Ready — GET /ready. Probes Supabase.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		h.logger.Error("readiness probe failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "supabase unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DebugGemini — GET /debug/gemini. Liveness probe against the LLM provider,
// nothing persisted. Hidden in production.
func (h *Handler) DebugGemini(w http.ResponseWriter, r *http.Request) {
	if h.env == "production" {
		http.NotFound(w, r)
		return
	}

	if err := h.ai.Ping(r.Context()); err != nil {
		var llmErr *ai.LLMError
		detail := err.Error()
		if errors.As(err, &llmErr) {
			detail = llmErr.Detail()
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": detail})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
