package notify

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNS subjects are limited to 100 characters.
const maxSubjectLen = 100

type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes reports to an SNS topic. Email subscribers of the
// topic receive the subject and body; the recipient is attached as a
// message attribute for subscription filter policies.
type SNSNotifier struct {
	client   publisher
	logger   *slog.Logger
	topicARN string
}

// NewSNSNotifier creates a notifier using the default AWS credential chain.
func NewSNSNotifier(ctx context.Context, logger *slog.Logger, topicARN string) (*SNSNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &SNSNotifier{client: sns.NewFromConfig(cfg), logger: logger, topicARN: topicARN}, nil
}

// SendEmail implements importer.Notifier.
func (n *SNSNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	subject = truncate(subject, maxSubjectLen)
	input := &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	}
	if to != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"recipient": {DataType: aws.String("String"), StringValue: aws.String(to)},
		}
	}

	out, err := n.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to sns: %w", err)
	}
	n.logger.Info("Published notification to SNS", "topic", n.topicARN, "subject", subject, "messageID", aws.ToString(out.MessageId))
	return nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// LogNotifier writes reports to the log instead of delivering them.
type LogNotifier struct {
	Logger *slog.Logger
}

// SendEmail implements importer.Notifier.
func (n LogNotifier) SendEmail(_ context.Context, to, subject, body string) error {
	n.Logger.Info("Notification", "to", to, "subject", subject, "body", body)
	return nil
}
