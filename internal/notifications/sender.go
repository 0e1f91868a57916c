package notifications

import (
	"context"
	"fmt"

	"github.com/skillbazaar/marketplace-backend/pkg/logger"
)

// Sender delivers a notification through an external channel (push,
// email). Delivery is best-effort: callers log failures and move on.
type Sender interface {
	Send(ctx context.Context, userID int64, title, message string) error
}

// LogSender is the default Sender. It records the delivery attempt in
// the application log and always succeeds, keeping the order lifecycle
// independent of any real push provider.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds the logging sender.
func NewLogSender(logg *logger.Logger) (*LogSender, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LogSender{logg: logg}, nil
}

// Send logs the notification instead of delivering it.
func (s *LogSender) Send(ctx context.Context, userID int64, title, message string) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notify_user_id": userID,
		"title":          title,
	})
	s.logg.Info(ctx, "notification dispatched")
	return nil
}
