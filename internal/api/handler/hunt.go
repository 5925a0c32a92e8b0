package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/treasurehunt-go/internal/api/middleware"
	"github.com/mcoot/treasurehunt-go/internal/api/request"
	"github.com/mcoot/treasurehunt-go/internal/api/response"
	"github.com/mcoot/treasurehunt-go/internal/services/hunt"
)

// HuntHandler handles the player-facing hunt endpoints
type HuntHandler struct {
	controller *hunt.Controller
	logger     *slog.Logger
}

// NewHuntHandler creates a new hunt handler
func NewHuntHandler(controller *hunt.Controller, logger *slog.Logger) *HuntHandler {
	return &HuntHandler{
		controller: controller,
		logger:     logger,
	}
}

// Clue handles GET /api/v1/hunt/clue
func (h *HuntHandler) Clue(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	result, err := h.controller.CurrentClue(r.Context(), account.ID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClueResponseFromResult(result))
}

// Scan handles POST /api/v1/hunt/scan
func (h *HuntHandler) Scan(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())

	var req request.ScanRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	result, err := h.controller.SubmitCode(r.Context(), account.ID, req.Code)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScanResponseFromResult(result))
}
