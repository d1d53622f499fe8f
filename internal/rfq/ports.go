// Package rfq runs the request-for-quote auction: admitting quotes, collecting
// signed solver offers and settling an accepted offer on chain.
package rfq

import (
	"context"
	"time"

	"github.com/hxuan190/rfq-engine/internal/adapters/pubsub"
	"github.com/hxuan190/rfq-engine/internal/domain"
)

// QuoteStore is the shared state between the gateway, the intake sessions and
// settlement.
type QuoteStore interface {
	PutQuote(ctx context.Context, q *domain.Quote, ttl time.Duration) error
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)
	PutOffer(ctx context.Context, o *domain.QuoteOffer, ttl time.Duration) error
	GetOffer(ctx context.Context, id string) (*domain.QuoteOffer, error)
	GetOffers(ctx context.Context, ids []string) ([]*domain.QuoteOffer, error)
	AppendOfferRef(ctx context.Context, quoteID, offerID string, ttl time.Duration) error
	ListOfferRefs(ctx context.Context, quoteID string) ([]string, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, msg []byte) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (pubsub.Subscription, error)
}

// IntentExecutor submits the settlement transaction for a matched pair of
// encoded signed intents and returns the transaction digest.
type IntentExecutor interface {
	ExecuteIntents(ctx context.Context, userIntent, solverIntent []byte) ([]byte, error)
}
