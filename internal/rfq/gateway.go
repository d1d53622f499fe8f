package rfq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/rfq-engine/internal/adapters/pubsub"
	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/metrics"
)

const (
	DefaultCollectionWindow = 3000 * time.Millisecond
	DefaultQuoteTTL         = 300 * time.Second

	MaxMinDeadlineMs = 5 * 60 * 1000
)

// QuoteRequest is a user's request for quotes. Exactly one of ExactAmountIn
// and ExactAmountOut is set, matching Type.
type QuoteRequest struct {
	Type           domain.SwapMode `json:"type"`
	AssetIn        domain.Asset    `json:"assetIn"`
	AssetOut       domain.Asset    `json:"assetOut"`
	ExactAmountIn  *string         `json:"exactAmountIn,omitempty"`
	ExactAmountOut *string         `json:"exactAmountOut,omitempty"`
	MinDeadlineMs  *int64          `json:"minDeadlineMs"`
}

type QuoteResult struct {
	Quote *domain.Quote
	// Offers holds every resolved offer in arrival order.
	Offers []*domain.QuoteOffer
	// Best is nil when no offer was collected.
	Best *domain.QuoteOffer
}

type GatewayConfig struct {
	CollectionWindow time.Duration
	QuoteTTL         time.Duration
	Assets           domain.AssetSet
}

// Gateway admits quotes, waits out the collection window and aggregates what
// solvers offered.
type Gateway struct {
	store QuoteStore
	bus   Publisher
	conf  GatewayConfig

	now   func() time.Time
	sleep func(time.Duration)
	newID func() string
}

func NewGateway(store QuoteStore, bus Publisher, conf GatewayConfig) *Gateway {
	if conf.CollectionWindow <= 0 {
		conf.CollectionWindow = DefaultCollectionWindow
	}
	if conf.QuoteTTL <= 0 {
		conf.QuoteTTL = DefaultQuoteTTL
	}
	return &Gateway{
		store: store,
		bus:   bus,
		conf:  conf,
		now:   time.Now,
		sleep: time.Sleep,
		newID: uuid.NewString,
	}
}

func (g *Gateway) validate(req *QuoteRequest) (*uint256.Int, uint32, *ValidationError) {
	var raw *string
	switch req.Type {
	case domain.ExactAmountIn:
		raw = req.ExactAmountIn
	case domain.ExactAmountOut:
		raw = req.ExactAmountOut
	default:
		return nil, 0, invalidRequest("type must be exactAmountIn or exactAmountOut")
	}

	if !g.conf.Assets.Contains(req.AssetIn) {
		return nil, 0, invalidRequest("unsupported assetIn")
	}
	if !g.conf.Assets.Contains(req.AssetOut) {
		return nil, 0, invalidRequest("unsupported assetOut")
	}
	if req.AssetIn == req.AssetOut {
		return nil, 0, invalidRequest("assetIn and assetOut must differ")
	}

	if raw == nil {
		return nil, 0, invalidRequest(fmt.Sprintf("%s is required", req.Type))
	}
	amount, err := codec.ParseAmount(*raw)
	if err != nil || amount.IsZero() {
		return nil, 0, invalidRequest(fmt.Sprintf("%s must be an unsigned integer of at least 1", req.Type))
	}

	if req.MinDeadlineMs == nil {
		return nil, 0, invalidRequest("minDeadlineMs is required")
	}
	if *req.MinDeadlineMs < 1 || *req.MinDeadlineMs > MaxMinDeadlineMs {
		return nil, 0, invalidRequest(fmt.Sprintf("minDeadlineMs must be between 1 and %d", MaxMinDeadlineMs))
	}
	return amount, uint32(*req.MinDeadlineMs), nil
}

// SubmitQuote validates and stores the quote, broadcasts it to solvers, waits
// the full collection window and returns the offers recorded against it.
// A *ValidationError means the request was rejected before any side effect.
func (g *Gateway) SubmitQuote(ctx context.Context, req *QuoteRequest) (*QuoteResult, error) {
	amount, minDeadlineMs, verr := g.validate(req)
	if verr != nil {
		metrics.QuotesRejected.WithLabelValues(verr.Code).Inc()
		return nil, verr
	}

	start := g.now()
	q := &domain.Quote{
		ID:            g.newID(),
		Mode:          req.Type,
		AssetIn:       req.AssetIn,
		AssetOut:      req.AssetOut,
		ExactAmount:   amount,
		MinDeadlineMs: minDeadlineMs,
		CreatedAt:     start.UnixMilli(),
	}

	msg, err := codec.EncodeQuote(q)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := g.store.PutQuote(ctx, q, g.conf.QuoteTTL); err != nil {
		return nil, fmt.Errorf("failed to store quote: %w", err)
	}
	if err := g.bus.Publish(ctx, pubsub.QuotesTopic, msg); err != nil {
		return nil, fmt.Errorf("failed to publish quote: %w", err)
	}
	metrics.QuotesSubmitted.WithLabelValues(string(q.Mode)).Inc()
	log.Debug().Str("quoteId", q.ID).Str("mode", string(q.Mode)).Msg("[Gateway] quote published")

	g.sleep(g.conf.CollectionWindow)

	// collection is independent of the caller from here on
	ctx = context.WithoutCancel(ctx)
	result := &QuoteResult{Quote: q, Offers: []*domain.QuoteOffer{}}
	refs, err := g.store.ListOfferRefs(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	if len(refs) > 0 {
		// refs are most recent first
		ids := make([]string, len(refs))
		for i, id := range refs {
			ids[len(refs)-1-i] = id
		}
		offers, err := g.store.GetOffers(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve offers: %w", err)
		}
		for _, o := range offers {
			if o.QuoteID == q.ID && o.Mode == q.Mode {
				result.Offers = append(result.Offers, o)
			}
		}
		result.Best = SelectBest(q.Mode, result.Offers)
	}

	metrics.OffersPerQuote.Observe(float64(len(result.Offers)))
	metrics.CollectionDuration.Observe(g.now().Sub(start).Seconds())
	log.Debug().Str("quoteId", q.ID).Int("offers", len(result.Offers)).Msg("[Gateway] collection closed")
	return result, nil
}

// SelectBest picks the highest amountOut for exactAmountIn quotes and the
// lowest amountIn for exactAmountOut quotes. offers must be in arrival order;
// on a tie the earliest offer wins.
func SelectBest(mode domain.SwapMode, offers []*domain.QuoteOffer) *domain.QuoteOffer {
	var best *domain.QuoteOffer
	for _, o := range offers {
		if o.Amount == nil {
			continue
		}
		if best == nil {
			best = o
			continue
		}
		switch mode {
		case domain.ExactAmountIn:
			if o.Amount.Gt(best.Amount) {
				best = o
			}
		case domain.ExactAmountOut:
			if o.Amount.Lt(best.Amount) {
				best = o
			}
		}
	}
	return best
}
