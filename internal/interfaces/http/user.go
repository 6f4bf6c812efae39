package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"dailyspend/internal/domain/account"
	"dailyspend/internal/domain/user"
	"dailyspend/internal/shared/middleware"
)

// UserHandler serves setup endpoints: notification settings and the account
// selection.
type UserHandler struct {
	users      user.Repository
	selections account.SelectionRepository
}

func NewUserHandler(users user.Repository, selections account.SelectionRepository) *UserHandler {
	return &UserHandler{users: users, selections: selections}
}

type updateSettingsRequest struct {
	Timezone   *string `json:"timezone"`
	NotifyTime *string `json:"notifyTime"`
	GoalLabel  *string `json:"goalLabel"`
}

// HandleSettings returns (GET) or patches (PATCH) the caller's settings.
func (h *UserHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		u, err := h.users.GetByID(r.Context(), userID)
		if err != nil {
			log.Printf("Error loading user %d: %v", userID, err)
			http.Error(w, "Failed to load user", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, u)

	case http.MethodPatch:
		var req updateSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Timezone != nil {
			if _, err := time.LoadLocation(*req.Timezone); err != nil {
				http.Error(w, "Invalid timezone", http.StatusBadRequest)
				return
			}
		}
		if req.NotifyTime != nil {
			if _, err := time.Parse("15:04", *req.NotifyTime); err != nil {
				http.Error(w, "Invalid notify time, expected HH:MM", http.StatusBadRequest)
				return
			}
		}

		u, err := h.users.UpdateSettings(r.Context(), userID, user.UpdateSettingsParams{
			Timezone:   req.Timezone,
			NotifyTime: req.NotifyTime,
			GoalLabel:  req.GoalLabel,
		})
		if err != nil {
			log.Printf("Error updating settings for user %d: %v", userID, err)
			http.Error(w, "Failed to update settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, u)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type selectionRequest struct {
	SpendAccountID    string  `json:"spendAccountId"`
	CoverageAccountID *string `json:"coverageAccountId"`
}

// HandleSelection returns (GET) or replaces (PUT) the caller's tracked
// accounts.
func (h *UserHandler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sel, err := h.selections.GetByUserID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, account.ErrNoAccountSelected) {
				http.Error(w, "No account selected", http.StatusNotFound)
				return
			}
			log.Printf("Error loading selection for user %d: %v", userID, err)
			http.Error(w, "Failed to load selection", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sel)

	case http.MethodPut:
		var req selectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.SpendAccountID == "" {
			http.Error(w, "Spend account ID is required", http.StatusBadRequest)
			return
		}

		sel := &account.Selection{
			UserID:            userID,
			SpendAccountID:    req.SpendAccountID,
			CoverageAccountID: req.CoverageAccountID,
		}
		if err := h.selections.Upsert(r.Context(), sel); err != nil {
			log.Printf("Error upserting selection for user %d: %v", userID, err)
			http.Error(w, "Failed to save selection", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, sel)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
