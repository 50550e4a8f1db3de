package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/wolfman30/cuddles-booking/cmd/mainconfig"
	"github.com/wolfman30/cuddles-booking/internal/booking"
	appconfig "github.com/wolfman30/cuddles-booking/internal/config"
	"github.com/wolfman30/cuddles-booking/internal/notify"
	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// BuildEmailSender selects the email transport from EMAIL_PROVIDER
// ("sendgrid", "ses", "stub" or "auto"). "auto" picks SendGrid when an API
// key is set and falls back to the logging stub.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, string, error) {
	if cfg == nil {
		return nil, "", fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	provider := cfg.EmailProvider
	if provider == "" || provider == "auto" {
		provider = "stub"
		if strings.TrimSpace(cfg.SendGridAPIKey) != "" {
			provider = "sendgrid"
		}
	}

	switch provider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil, "", fmt.Errorf("bootstrap: sendgrid selected but SENDGRID_API_KEY is empty")
		}
		return sender, provider, nil
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		sender := notify.NewSESSender(mainconfig.NewSESClient(awsCfg, cfg), notify.SESConfig{
			FromEmail:        cfg.SendGridFromEmail,
			FromName:         cfg.SendGridFromName,
			ConfigurationSet: cfg.SESConfigurationSet,
		}, logger)
		return sender, provider, nil
	case "stub":
		logger.Warn("no email provider configured; notifications are only logged")
		return notify.NewStubEmailSender(logger), provider, nil
	default:
		return nil, "", fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}

// BuildBookingNotifier fans a booking out to email and, when
// BOOKING_NOTIFY_URL is set, to the webhook.
func BuildBookingNotifier(cfg *appconfig.Config, svc *notify.Service, logger *logging.Logger) booking.Notifier {
	notifiers := notify.Fanout{svc}
	if hook := notify.NewWebhookNotifier(cfg.BookingNotifyURL, &http.Client{Timeout: cfg.NotifyTimeout}, logger); hook != nil {
		notifiers = append(notifiers, hook)
	}
	if len(notifiers) == 1 {
		return svc
	}
	return notifiers
}

// BuildNotifyService wires the email-backed notification service.
func BuildNotifyService(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, m *metrics.EstimateMetrics) (*notify.Service, string, error) {
	sender, name, err := BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, "", err
	}
	return notify.NewService(sender, cfg.NotifyRecipients, logger, m), name, nil
}
