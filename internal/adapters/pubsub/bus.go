// Package pubsub fans quote broadcasts out to every connected solver session.
// Delivery is at most once and nothing is retained for late subscribers.
package pubsub

import (
	"context"
	"errors"
)

const QuotesTopic = "quotes"

var ErrClosed = errors.New("pubsub: bus closed")

// Subscription delivers messages published after it was created until Close.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

type Bus interface {
	Publish(ctx context.Context, topic string, msg []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Close() error
}
