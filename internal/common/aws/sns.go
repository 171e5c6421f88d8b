// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/models"
)

// SNSAPI is the part of the SNS client the publisher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// NewSNSClient loads the default credential chain for region.
func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(cfg), nil
}

// SNSPublisher sends conversation completion events to a topic.
type SNSPublisher struct {
	api      SNSAPI
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(api SNSAPI, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{api: api, topicARN: topicARN, logger: log}
}

// PublishCompletion publishes event as JSON with the event type as a
// message attribute for subscription filters.
func (p *SNSPublisher) PublishCompletion(ctx context.Context, event models.CompletionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.NewEventPublishFailedError(event.EventType, err)
	}

	out, err := p.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.EventType),
			},
		},
	})
	if err != nil {
		return errors.NewEventPublishFailedError(event.EventType, err)
	}

	p.logger.Info("completion event published", map[string]interface{}{
		"eventId":   event.EventID,
		"sessionId": event.SessionID,
		"messageId": aws.ToString(out.MessageId),
	})
	return nil
}
