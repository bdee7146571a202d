package service

import (
	"context"

	"github.com/blaisecz/smart-wake/internal/protocol"
)

// DeviceLink is the controller's end of the link to the device.
// *protocol.Client implements it.
type DeviceLink interface {
	Send(ctx context.Context, p protocol.Payload) error
	UpdateContext(ctx context.Context, p protocol.Payload) error
	ReceivedContext(ctx context.Context) (protocol.Envelope, error)
	Decode(data []byte) (protocol.Envelope, error)
	Messages() <-chan []byte
	Status() protocol.Status
}
