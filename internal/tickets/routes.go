package tickets

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Post("/process-ticket", h.ProcessTicket)
	r.Get("/debug/gemini", h.DebugGemini)
}
