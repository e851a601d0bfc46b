// Package notify tells users about approvals after the fact. Notification is
// fire-and-forget: a failed or slow notifier must never block or fail an
// authorization.
package notify

import (
	"context"
	"log/slog"

	appmodels "fastpass/internal/appregistry/models"
	profilemodels "fastpass/internal/profile/models"
)

//go:generate mockgen -source=notify.go -destination=mocks/mocks.go -package=mocks Notifier

// Notifier delivers an approval notice. disclosedFields holds the shared
// attribute labels only; credentials and sign-in markers are never included.
type Notifier interface {
	NotifyApproval(ctx context.Context, profile *profilemodels.UserProfile, app *appmodels.ClientApp, disclosedFields []string)
}

// LogNotifier records the notification instead of delivering it. It is the
// default sink; mail delivery plugs in behind the same interface.
type LogNotifier struct {
	logger *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyApproval(ctx context.Context, profile *profilemodels.UserProfile, app *appmodels.ClientApp, disclosedFields []string) {
	n.logger.InfoContext(ctx, "approval notification",
		"user_id", profile.UID,
		"app_id", app.ID,
		"app_name", app.Name,
		"field_count", len(disclosedFields),
	)
}
