package ports

import (
	"context"

	"github.com/bft-labs/herald/internal/domain"
)

// MessageSender transmits one template message to the messaging provider.
type MessageSender interface {
	// Send posts msg on behalf of the sender identity in metadata.
	// Any HTTP response, successful or not, is returned as a Response with a
	// nil error. An error is returned only when no response was received.
	Send(ctx context.Context, metadata SendMetadata, msg *domain.Message) (Response, error)
}

// SendMetadata identifies and authenticates the sender.
type SendMetadata struct {
	// PhoneNumberID is the provider-assigned sender identity
	PhoneNumberID string

	// AccessToken is the bearer token for the provider API
	AccessToken string
}

// Response is the raw provider answer.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the status is 2xx.
func (r Response) OK() bool {
	return r.Status/100 == 2
}
