package service

import (
	"context"
	"log/slog"
	"time"

	"mobile-auth-service/internal/domain"
)

type CodeNotification struct {
	Mobile    string
	Code      string
	Purpose   domain.CodePurpose
	ExpiresAt time.Time
}

// SMSCodeNotifier delivers an issued code to the user. Delivery is an
// external collaborator concern; the core only hands the code over.
type SMSCodeNotifier interface {
	SendCode(ctx context.Context, notification CodeNotification) error
}

// DevSMSNotifier logs the code instead of sending an SMS.
type DevSMSNotifier struct {
	logger *slog.Logger
}

func NewDevSMSNotifier(logger *slog.Logger) *DevSMSNotifier {
	return &DevSMSNotifier{logger: logger}
}

func (n *DevSMSNotifier) SendCode(ctx context.Context, notification CodeNotification) error {
	n.logger.InfoContext(ctx, "verification code issued",
		"mobile", notification.Mobile,
		"purpose", string(notification.Purpose),
		"code", notification.Code,
		"expires_at", notification.ExpiresAt,
	)
	return nil
}
