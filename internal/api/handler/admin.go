package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/treasurehunt-go/internal/api/request"
	"github.com/mcoot/treasurehunt-go/internal/api/response"
	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/services/account"
	"github.com/mcoot/treasurehunt-go/internal/services/clue"
)

// AdminHandler handles player administration endpoints
type AdminHandler struct {
	accountService *account.Service
	clues          *clue.Table
	logger         *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accountService *account.Service, clues *clue.Table, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		accountService: accountService,
		clues:          clues,
		logger:         logger,
	}
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	players, err := h.accountService.ListPlayers(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountsFromModel(players))
}

// CreateUser handles POST /api/v1/admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	player, err := h.accountService.CreatePlayer(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AccountFromModel(player))
}

// UpdateUser handles PUT and PATCH /api/v1/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateUserRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	player, err := h.accountService.UpdatePlayer(r.Context(), accountID(r), account.UpdatePlayerInput{
		Active:   req.Active,
		Password: req.Password,
	})
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(player))
}

// ToggleUser handles PATCH /api/v1/admin/users/{id}/toggle
func (h *AdminHandler) ToggleUser(w http.ResponseWriter, r *http.Request) {
	player, err := h.accountService.TogglePlayer(r.Context(), accountID(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(player))
}

// ResetUser handles POST /api/v1/admin/users/{id}/reset
func (h *AdminHandler) ResetUser(w http.ResponseWriter, r *http.Request) {
	player, err := h.accountService.ResetPlayer(r.Context(), accountID(r))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AccountFromModel(player))
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.accountService.DeletePlayer(r.Context(), accountID(r)); err != nil {
		writeError(h.logger, w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Message{Message: "User deleted successfully"})
}

// ListClues handles GET /api/v1/admin/clues
func (h *AdminHandler) ListClues(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.AdminCluesFromModel(h.clues.All()))
}

func accountID(r *http.Request) model.AccountID {
	return model.AccountID(mux.Vars(r)["id"])
}
