package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/portfolio-tracker/internal/advisor"
	"github.com/dvloznov/portfolio-tracker/internal/api/middleware"
	"github.com/dvloznov/portfolio-tracker/internal/ledger"
)

// AdvisorHandler exposes the advisory gateway and the conversation reset.
type AdvisorHandler struct {
	gateway *advisor.Gateway
	log     zerolog.Logger
}

func NewAdvisorHandler(gateway *advisor.Gateway, log zerolog.Logger) *AdvisorHandler {
	return &AdvisorHandler{gateway: gateway, log: log}
}

// Ask handles POST /api/advisor/ask. Advisory failures come back as a
// small set of human-readable messages; provider status codes stay inside.
func (h *AdvisorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Question is required")
		return
	}

	answer, err := h.gateway.Ask(r.Context(), req.Question)
	if err != nil {
		h.writeAdvisorError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// Reset handles POST /api/advisor/reset, the explicit "forget prior
// context" operation.
func (h *AdvisorHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.gateway.ResetConversation()
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "conversation cleared"})
}

func (h *AdvisorHandler) writeAdvisorError(w http.ResponseWriter, err error) {
	h.log.Warn().Err(err).Msg("Advisory request failed")
	switch {
	case errors.Is(err, advisor.ErrAdvisoryTimeout):
		middleware.WriteError(w, http.StatusGatewayTimeout, advisor.FailureMessage(err))
	case errors.Is(err, advisor.ErrProviderRejected), errors.Is(err, advisor.ErrNoReachableModel):
		middleware.WriteError(w, http.StatusBadGateway, advisor.FailureMessage(err))
	case errors.Is(err, ledger.ErrStoreUnavailable):
		middleware.WriteError(w, http.StatusServiceUnavailable, "Store unavailable")
	default:
		middleware.WriteError(w, http.StatusInternalServerError, advisor.FailureMessage(err))
	}
}
