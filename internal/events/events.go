package events

import (
	"context"
	"fmt"
	"time"

	"github.com/userapi/apiserver/config"
)

// UserRegistered is emitted after a successful registration.
type UserRegistered struct {
	UserID       int       `json:"userId"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Publisher delivers account events to a broker. Delivery is best
// effort: the auth flow never fails a request because the broker is
// unreachable.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, event UserRegistered) error
	Close() error
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishUserRegistered(context.Context, UserRegistered) error { return nil }

func (Noop) Close() error { return nil }

// New constructs the publisher selected by config.
func New(ctx context.Context, cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Backend {
	case "", "none":
		return Noop{}, nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg)
	case "pubsub":
		return NewPubSubPublisher(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
