// Package notify carries the best-effort side channel used when points of
// interest are deleted. Delivery failure never affects the request that
// triggered it.
package notify

import (
	"context"
	"log/slog"

	"github.com/Orange-Moose/CityInfoAPI/app/observability/metrics"
	"github.com/Orange-Moose/CityInfoAPI/config"
)

var _ Notifier = (*LocalMailNotifier)(nil)

type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// LocalMailNotifier writes notifications to the application log. It stands in
// for a real mail transport outside production.
type LocalMailNotifier struct {
	logger   *slog.Logger
	mailFrom string
	mailTo   string
}

func NewLocalMailNotifier(cfg config.NotifierConfig, logger *slog.Logger) *LocalMailNotifier {
	return &LocalMailNotifier{
		logger:   logger,
		mailFrom: cfg.MailFrom,
		mailTo:   cfg.MailTo,
	}
}

func (n *LocalMailNotifier) Notify(ctx context.Context, subject, message string) error {
	metrics.Get().NotificationsSentTotal.Add(ctx, 1)
	n.logger.InfoContext(ctx, "Notification sent",
		slog.String("from", n.mailFrom),
		slog.String("to", n.mailTo),
		slog.String("subject", subject),
		slog.String("message", message),
	)
	return nil
}
