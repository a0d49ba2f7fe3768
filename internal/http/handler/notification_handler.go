package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"mobile-auth-service/internal/domain"
	"mobile-auth-service/internal/http/response"
	"mobile-auth-service/internal/observability"
)

// NotificationHandler fakes an SMS gateway for local development. It logs the
// message instead of delivering it.
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

type sendNotificationRequest struct {
	Mobile  string `json:"mobile"`
	Message string `json:"message"`
}

func (h *NotificationHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req sendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, domain.ErrCodeInternal, "Invalid request body", nil)
		return
	}

	slog.InfoContext(r.Context(), "mock sms notification",
		"mobile", observability.MaskMobile(req.Mobile),
		"message", req.Message,
	)
	observability.RecordSMSNotification(r.Context(), "manual", "mocked")
	response.JSON(w, r, http.StatusOK, map[string]any{"success": true})
}
