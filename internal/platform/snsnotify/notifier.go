// Package snsnotify implements the mutation event notifier over an SNS
// topic.
package snsnotify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/phrazzld/tarea-api/internal/store"
)

// api is the subset of the SNS client the notifier uses.
type api interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier implements events.Notifier by publishing to one topic.
type Notifier struct {
	client   api
	topicARN string
}

// NewNotifier creates a Notifier for the given topic.
func NewNotifier(client api, topicARN string) *Notifier {
	return &Notifier{client: client, topicARN: topicARN}
}

// Publish sends the message to the configured topic. The caller decides
// what a publish failure means; this layer only reports it.
func (n *Notifier) Publish(ctx context.Context, message string) error {
	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(message),
	})
	if err != nil {
		return store.NewStoreError("notification", "publish", "failed to publish event", err)
	}

	return nil
}
