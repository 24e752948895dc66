package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-auth-gateway/internal/config"
	"github.com/go-auth-gateway/internal/domain"
)

// Publisher delivers auth lifecycle events to an SNS topic. The event type
// rides along as a message attribute so consumers can filter subscriptions
// without parsing the body.
type Publisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher creates the SNS-backed event publisher. When
// cfg.AWSEndpointURL is set (LocalStack), it overrides the endpoint so all
// traffic goes to the local instance.
func NewPublisher(cfg *config.Config) (*Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return &Publisher{
		client:   sns.NewFromConfig(awsCfg, clientOpts...),
		topicARN: cfg.SNSTopicARN,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, e *domain.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(e.EventType),
			},
		},
	})
	return err
}
