package http

import (
	"encoding/json"
	"log"
	"net/http"

	"dailyspend/internal/domain/notification"
	"dailyspend/internal/shared/middleware"
)

// DeviceHandler registers push endpoints.
type DeviceHandler struct {
	devices notification.Repository
}

func NewDeviceHandler(devices notification.Repository) *DeviceHandler {
	return &DeviceHandler{devices: devices}
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// HandleRegister upserts a device token for the caller. A token previously
// registered to another user moves to this one.
func (h *DeviceHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	device := &notification.Device{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := h.devices.Upsert(r.Context(), device); err != nil {
		log.Printf("Error registering device for user %d: %v", userID, err)
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, device)
}
