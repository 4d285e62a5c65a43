package notify

import (
	"context"
	"fmt"
)

// Channel selects the delivery medium for a message
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Sender is the narrow contract the billing engine depends on: deliver one
// message to one contact and return the provider's delivery attempt id.
// A single attempt per call; retries and failover live with the provider.
type Sender interface {
	Send(ctx context.Context, channel Channel, recipient, message string) (string, error)
}

// Provider delivers on exactly one channel
type Provider interface {
	Send(ctx context.Context, recipient, message string) (string, error)
	Name() string
}

// Service routes messages to the provider registered for each channel
type Service struct {
	sms      Provider
	whatsapp Provider
}

func NewService(sms, whatsapp Provider) *Service {
	return &Service{sms: sms, whatsapp: whatsapp}
}

func (s *Service) Send(ctx context.Context, channel Channel, recipient, message string) (string, error) {
	var p Provider
	switch channel {
	case ChannelWhatsApp:
		p = s.whatsapp
	default:
		p = s.sms
	}
	if p == nil {
		return "", fmt.Errorf("no provider configured for channel %q", channel)
	}
	return p.Send(ctx, recipient, message)
}
