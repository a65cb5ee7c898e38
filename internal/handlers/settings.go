package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/middleware"
	"github.com/tasuku-app/tasuku/internal/models"
	"github.com/tasuku-app/tasuku/internal/validation"
)

// SettingsHandler handles per-user dashboard settings
type SettingsHandler struct {
	settingsRepo database.SettingsRepositoryInterface
	logger       *zap.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsRepo database.SettingsRepositoryInterface, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settingsRepo: settingsRepo, logger: logger}
}

// RegisterRoutes registers settings routes on the given router.
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSettings).Methods("GET")
	r.HandleFunc("", h.PutSettings).Methods("PUT")
}

// PutSettingsRequest represents a settings update request
type PutSettingsRequest struct {
	ColumnLabel1 string `json:"column_label1" validate:"required,min=1,max=50"`
	ColumnLabel2 string `json:"column_label2" validate:"required,min=1,max=50"`
}

// GetSettings returns the user's settings, defaults when never saved.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r)
	if userID == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	settings, err := h.settingsRepo.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("settings_fetch_failed", zap.String("user_id", userID), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// PutSettings saves the user's column labels.
func (h *SettingsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r)
	if userID == "" {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req PutSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	req.ColumnLabel1 = validation.SanitizeText(req.ColumnLabel1)
	req.ColumnLabel2 = validation.SanitizeText(req.ColumnLabel2)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Both column labels are required, at most 50 characters each")
		return
	}

	settings := &models.UserSettings{
		UserID:       userID,
		ColumnLabel1: req.ColumnLabel1,
		ColumnLabel2: req.ColumnLabel2,
	}
	if err := h.settingsRepo.Upsert(r.Context(), settings); err != nil {
		h.logger.Error("settings_save_failed", zap.String("user_id", userID), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save settings")
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
