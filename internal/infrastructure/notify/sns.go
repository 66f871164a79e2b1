// Package notify implements the notification sink: best-effort, asynchronous
// delivery of human-readable event messages. Delivery failures are logged and
// swallowed; they never reach the caller.
package notify

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"

	"github.com/fixitnow/fixitnow/internal/api/metrics"
)

const publishTimeout = 10 * time.Second

// Config captures the settings for the SNS notification transport.
type Config struct {
	Region   string
	TopicARN string
}

// SNSNotifier publishes notifications to an SNS topic. Publishing happens on
// a detached goroutine so the caller never blocks beyond dispatch.
type SNSNotifier struct {
	client   *sns.Client
	topicARN string
	logger   zerolog.Logger
}

// NewSNSNotifier builds an SNS client from the default AWS credential chain.
func NewSNSNotifier(ctx context.Context, cfg Config, logger zerolog.Logger) (*SNSNotifier, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return &SNSNotifier{
		client:   sns.NewFromConfig(awsCfg),
		topicARN: cfg.TopicARN,
		logger:   logger,
	}, nil
}

// Notify publishes the message, at most one attempt, and returns immediately.
func (n *SNSNotifier) Notify(_ context.Context, subject, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		_, err := n.client.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(n.topicARN),
			Subject:  aws.String(subject),
			Message:  aws.String(message),
		})
		if err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			n.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish notification")
			return
		}
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		n.logger.Info().Str("subject", subject).Msg("notification published")
	}()
}
