package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakePublisher struct {
	input *sns.PublishInput
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSNSNotifierPublishes(t *testing.T) {
	p := &fakePublisher{}
	n := &SNSNotifier{client: p, logger: discard(), topicARN: "arn:aws:sns:us-east-1:123:imports"}

	if err := n.SendEmail(context.Background(), "me@example.test", "Calendar import succeeded", "body"); err != nil {
		t.Fatalf("SendEmail() error = %v", err)
	}
	if aws.ToString(p.input.TopicArn) != "arn:aws:sns:us-east-1:123:imports" || aws.ToString(p.input.Message) != "body" {
		t.Fatalf("unexpected input: %+v", p.input)
	}
	if got := aws.ToString(p.input.MessageAttributes["recipient"].StringValue); got != "me@example.test" {
		t.Fatalf("unexpected recipient attribute %q", got)
	}
}

func TestSNSNotifierTruncatesSubject(t *testing.T) {
	p := &fakePublisher{}
	n := &SNSNotifier{client: p, logger: discard(), topicARN: "arn"}

	if err := n.SendEmail(context.Background(), "", strings.Repeat("x", 150), "body"); err != nil {
		t.Fatalf("SendEmail() error = %v", err)
	}
	if len(aws.ToString(p.input.Subject)) != maxSubjectLen {
		t.Fatalf("subject not truncated")
	}
	if p.input.MessageAttributes != nil {
		t.Fatalf("no attributes expected without recipient")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	subject := strings.Repeat("é", 60)
	got := truncate(subject, maxSubjectLen)
	if len(got) > maxSubjectLen || !utf8.ValidString(got) {
		t.Fatalf("truncate() = %q (%d bytes)", got, len(got))
	}
	if got != strings.Repeat("é", 50) {
		t.Fatalf("expected 50 whole runes, got %q", got)
	}
	if truncate("short", maxSubjectLen) != "short" {
		t.Fatalf("short subjects must be unchanged")
	}
}

func TestSNSNotifierError(t *testing.T) {
	boom := errors.New("throttled")
	n := &SNSNotifier{client: &fakePublisher{err: boom}, logger: discard(), topicARN: "arn"}
	if err := n.SendEmail(context.Background(), "", "s", "b"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
}
