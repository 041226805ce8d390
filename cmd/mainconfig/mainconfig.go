package mainconfig

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/venue-booking-agent/internal/airtable"
	"github.com/wolfman30/venue-booking-agent/internal/bookingtime"
	appconfig "github.com/wolfman30/venue-booking-agent/internal/config"
	"github.com/wolfman30/venue-booking-agent/internal/conversation"
	"github.com/wolfman30/venue-booking-agent/internal/notify"
	"github.com/wolfman30/venue-booking-agent/internal/observability/metrics"
	"github.com/wolfman30/venue-booking-agent/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

// NewSESClient builds an SES v2 client, honoring AWS_ENDPOINT_OVERRIDE for LocalStack.
func NewSESClient(awsCfg aws.Config, endpointOverride string) *sesv2.Client {
	return sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if endpoint := strings.TrimSpace(endpointOverride); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// NewEmailSender picks the mail transport named by EMAIL_PROVIDER. It returns
// nil when email is not configured, which disables the brochure email.
func NewEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if !cfg.EmailConfigured() {
		logger.Info("brochure email disabled: no mail transport or brochure url configured")
		return nil
	}

	provider := cfg.EmailProvider
	if provider == "" || provider == "auto" {
		provider = "sendgrid"
		if cfg.SMTPHost != "" {
			provider = "smtp"
		}
	}

	switch provider {
	case "smtp":
		logger.Info("using smtp email transport", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUser,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.EmailFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger)
	case "sendgrid":
		logger.Info("using sendgrid email transport")
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromEmail,
			FromName:  cfg.EmailFromName,
		}, logger)
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config, brochure email disabled", "error", err)
			return nil
		}
		logger.Info("using ses email transport", "region", cfg.AWSRegion)
		return notify.NewSESSender(NewSESClient(awsCfg, cfg.AWSEndpointOverride), notify.SESConfig{
			FromEmail:        cfg.EmailFromEmail,
			FromName:         cfg.EmailFromName,
			ConfigurationSet: cfg.SESConfigurationSet,
		}, logger)
	case "log":
		logger.Warn("EMAIL_PROVIDER=log: brochure emails are logged, not delivered")
		return notify.NewLogEmailSender(logger)
	default:
		logger.Warn("unknown EMAIL_PROVIDER, brochure email disabled", "provider", provider)
		return nil
	}
}

// NewRedisClient connects to the finalize guard store, or returns nil when
// REDIS_ADDR is unset.
func NewRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		logger.Info("finalize guard disabled: REDIS_ADDR not set")
		return nil
	}
	opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis ping failed, finalize guard will retry per request", "error", err, "addr", cfg.RedisAddr)
	}
	return client
}

// Services is the dependency graph shared by the HTTP server and the Lambda.
type Services struct {
	Dispatcher *conversation.Dispatcher
	Registry   *prometheus.Registry
	closers    []func() error
}

// BuildServices constructs every long-lived client once and wires the dispatcher.
func BuildServices(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Services, error) {
	svc := &Services{Registry: prometheus.NewRegistry()}
	svc.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(svc.Registry)

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	loc := timezoneLocation(cfg.LocalTimezone, logger)

	records := airtable.NewClient(airtable.Config{
		BaseURL:       cfg.AirtableBaseURL,
		BaseID:        cfg.AirtableBaseID,
		VenuesTable:   cfg.AirtableVenuesTable,
		BookingsTable: cfg.AirtableBookingsTable,
		Token:         cfg.AirtableToken,
		CapacityField: airtable.ParseCapacityField(cfg.VenueCapacityField),
		Location:      loc,
		HTTPClient:    httpClient,
	}, logger)

	var replies *conversation.ReplyGenerator
	if cfg.GeminiAPIKey != "" {
		gen, err := conversation.NewGeminiTextGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, gen.Close)
		replies = conversation.NewReplyGenerator(gen, webhookMetrics, logger)
	} else {
		logger.Warn("GEMINI_API_KEY not set, replies use fixed wording")
	}

	var notifier conversation.BookingNotifier
	if sender := NewEmailSender(ctx, cfg, logger); sender != nil && !isNilSender(sender) {
		notifier = notify.NewBrochureNotifier(sender, notify.BrochureConfig{
			DocumentURL: cfg.BrochureURL,
			HTTPClient:  httpClient,
		}, logger)
	}

	var guard conversation.FinalizeGuard
	if client := NewRedisClient(ctx, cfg, logger); client != nil {
		svc.closers = append(svc.closers, client.Close)
		guard = conversation.NewRedisFinalizeGuard(client, cfg.FinalizeGuardTTL)
	}

	svc.Dispatcher = conversation.NewDispatcher(conversation.Dependencies{
		Venues:   records,
		Bookings: records,
		Notifier: notifier,
		Replies:  replies,
		Guard:    guard,
		Metrics:  webhookMetrics,
		Logger:   logger,
	}, conversation.Options{
		Location:           loc,
		TablePricePerGuest: cfg.TablePricePerGuest,
		Currency:           cfg.PriceCurrency,
	})
	return svc, nil
}

// timezoneLocation resolves LOCAL_TIMEZONE. Unset means UTC; only a name
// that fails to load is worth a warning.
func timezoneLocation(name string, logger *logging.Logger) *time.Location {
	name = strings.TrimSpace(name)
	loc := bookingtime.Location(name)
	if name != "" && loc.String() != name {
		logger.Warn("unknown LOCAL_TIMEZONE, using UTC", "timezone", name)
	}
	return loc
}

// Close releases the Gemini and Redis clients.
func (s *Services) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// isNilSender catches typed nil pointers returned by the notify constructors.
func isNilSender(sender notify.EmailSender) bool {
	switch s := sender.(type) {
	case *notify.SMTPSender:
		return s == nil
	case *notify.SendGridSender:
		return s == nil
	case *notify.SESSender:
		return s == nil
	}
	return false
}
