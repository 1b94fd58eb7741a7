// Package sns implements the relay boundary over Amazon SNS mobile push.
package sns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"

	"github.com/lanternhq/go-push-relay/pkg/relay"
)

// messageStructureJSON tells SNS to interpret the publish body as a
// multi-platform envelope rather than a plain string.
const messageStructureJSON = "json"

// SNSAPI defines the subset of the SNS client methods we use.
// This allows mocking for unit tests.
type SNSAPI interface {
	CreatePlatformEndpoint(ctx context.Context, params *awssns.CreatePlatformEndpointInput, optFns ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type Client struct {
	api    SNSAPI
	logger *slog.Logger
}

var _ relay.Relay = (*Client)(nil)

// Config holds the transport settings for the SNS relay.
type Config struct {
	Region string
	// Endpoint overrides the SNS endpoint URL, for localstack-style testing.
	// Empty means the SDK's regional default.
	Endpoint string
}

// New builds a relay backed by the real SNS service. Credential resolution
// follows the SDK's default chain; it fails fast here if no config source
// can be loaded.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := awssns.NewFromConfig(awsCfg, func(o *awssns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(api, logger), nil
}

// NewWithAPI accepts any SNSAPI implementation. The concrete *sns.Client
// satisfies it; tests inject a mock.
func NewWithAPI(api SNSAPI, logger *slog.Logger) *Client {
	return &Client{
		api:    api,
		logger: logger.With("component", "SNSRelay"),
	}
}

func (c *Client) CreatePlatformEndpoint(ctx context.Context, platformApplicationARN, token string) (string, error) {
	out, err := c.api.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(platformApplicationARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return "", classify("CreatePlatformEndpoint", err)
	}
	if out.EndpointArn == nil || *out.EndpointArn == "" {
		return "", &relay.Error{
			Kind: relay.KindOther,
			Op:   "CreatePlatformEndpoint",
			Err:  errors.New("relay returned no endpoint arn"),
		}
	}

	c.logger.Debug("Platform endpoint created", "endpoint_arn", *out.EndpointArn)
	return *out.EndpointArn, nil
}

func (c *Client) Publish(ctx context.Context, endpointARN, message string) (string, error) {
	out, err := c.api.Publish(ctx, &awssns.PublishInput{
		TargetArn:        aws.String(endpointARN),
		Message:          aws.String(message),
		MessageStructure: aws.String(messageStructureJSON),
	})
	if err != nil {
		return "", classify("Publish", err)
	}

	messageID := aws.ToString(out.MessageId)
	c.logger.Debug("Published", "endpoint_arn", endpointARN, "message_id", messageID)
	return messageID, nil
}

// classify maps SDK errors onto the relay taxonomy. Modeled service
// exceptions are matched first; anything else the service faulted on is
// Transient, the rest Other. The original error stays in the chain.
func classify(op string, err error) *relay.Error {
	kind := relay.KindOther

	var (
		disabled  *snstypes.EndpointDisabledException
		notFound  *snstypes.NotFoundException
		throttled *snstypes.ThrottledException
		internal  *snstypes.InternalErrorException
	)
	switch {
	case errors.As(err, &disabled):
		kind = relay.KindEndpointDisabled
	case errors.As(err, &notFound):
		kind = relay.KindNotFound
	case errors.As(err, &throttled):
		kind = relay.KindThrottled
	case errors.As(err, &internal):
		kind = relay.KindTransient
	default:
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultServer {
			kind = relay.KindTransient
		}
	}

	return &relay.Error{Kind: kind, Op: op, Err: err}
}
