package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to record events
type EventBus interface {
	// Publish publishes an event to all subscribers. It returns
	// ErrNoSubscribers when nobody was listening on the channel.
	Publish(ctx context.Context, channel string, event *entities.RecordEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.RecordEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelRecords carries every committed ward record write
const EventChannelRecords = "ward:records"

// ErrNoSubscribers reports a published event that reached no subscriber
var ErrNoSubscribers = errors.New("no subscribers received the event")
