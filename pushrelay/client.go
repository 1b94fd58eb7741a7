// Package pushrelay ties the payload model to the relay boundary: build the
// envelope, make one relay call, return the result.
package pushrelay

import (
	"context"
	"log/slog"

	"github.com/lanternhq/go-push-relay/pkg/push"
	"github.com/lanternhq/go-push-relay/pkg/relay"
)

// Client is the dispatch facade. It is stateless and safe for concurrent
// use: every method makes exactly one relay call, with no retry, caching or
// batching. Retry policy belongs to the transport behind the relay.
type Client struct {
	relay  relay.Relay
	logger *slog.Logger
}

func NewClient(r relay.Relay, logger *slog.Logger) *Client {
	return &Client{
		relay:  r,
		logger: logger.With("component", "PushClient"),
	}
}

// RegisterDevice registers a device token against a platform application and
// returns the relay-assigned endpoint ARN. The ARN is opaque; it never
// expires locally, and its disabling is only observable through later
// SendPush errors.
func (c *Client) RegisterDevice(ctx context.Context, token, platformApplicationARN string) (string, error) {
	if token == "" {
		return "", &push.ValidationError{Field: "token", Reason: "must not be empty"}
	}
	if platformApplicationARN == "" {
		return "", &push.ValidationError{Field: "platform_application_arn", Reason: "must not be empty"}
	}

	endpointARN, err := c.relay.CreatePlatformEndpoint(ctx, platformApplicationARN, token)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Device registered", "endpoint_arn", endpointARN)
	return endpointARN, nil
}

// SendPush encodes the intent into the structured-message envelope and
// publishes it to the endpoint. Validation and encoding happen first; a
// failing intent never reaches the relay. Relay errors pass through with
// their classification intact.
func (c *Client) SendPush(ctx context.Context, n push.Notification, endpointARN string) (string, error) {
	if endpointARN == "" {
		return "", &push.ValidationError{Field: "endpoint_arn", Reason: "must not be empty"}
	}

	envelope, err := push.BuildEnvelope(n)
	if err != nil {
		return "", err
	}

	messageID, err := c.relay.Publish(ctx, endpointARN, envelope)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Push sent", "endpoint_arn", endpointARN, "message_id", messageID)
	return messageID, nil
}
