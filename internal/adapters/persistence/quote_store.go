package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
)

var ErrInvalidTTL = errors.New("persistence: ttl must be positive")

func quoteKey(id string) string      { return "quote:" + id }
func offerRefsKey(id string) string  { return "quote:" + id + ":offers" }
func quoteOfferKey(id string) string { return "quote-offer:" + id }

// QuoteStore maps quotes, offers and per-quote offer references onto a Backend.
type QuoteStore struct {
	backend Backend
}

func NewQuoteStore(backend Backend) *QuoteStore {
	return &QuoteStore{backend: backend}
}

func (s *QuoteStore) PutQuote(ctx context.Context, q *domain.Quote, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	data, err := codec.EncodeQuote(q)
	if err != nil {
		return fmt.Errorf("failed to encode quote %s: %w", q.ID, err)
	}
	return s.backend.Set(ctx, quoteKey(q.ID), data, ttl)
}

func (s *QuoteStore) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	data, err := s.backend.Get(ctx, quoteKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	q, err := codec.DecodeQuote(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode quote %s: %w", id, err)
	}
	return q, nil
}

func (s *QuoteStore) PutOffer(ctx context.Context, o *domain.QuoteOffer, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	data, err := codec.EncodeOffer(o)
	if err != nil {
		return fmt.Errorf("failed to encode offer %s: %w", o.ID, err)
	}
	return s.backend.Set(ctx, quoteOfferKey(o.ID), data, ttl)
}

func (s *QuoteStore) GetOffer(ctx context.Context, id string) (*domain.QuoteOffer, error) {
	data, err := s.backend.Get(ctx, quoteOfferKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, domain.ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	o, err := codec.DecodeOffer(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode offer %s: %w", id, err)
	}
	return o, nil
}

// GetOffers resolves ids in order. Ids that are absent or fail to decode are
// skipped.
func (s *QuoteStore) GetOffers(ctx context.Context, ids []string) ([]*domain.QuoteOffer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = quoteOfferKey(id)
	}
	values, err := s.backend.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	offers := make([]*domain.QuoteOffer, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		o, err := codec.DecodeOffer(v)
		if err != nil {
			continue
		}
		offers = append(offers, o)
	}
	return offers, nil
}

// AppendOfferRef records offerID against the quote. The reference list expires
// after ttl, which callers set to the quote's remaining lifetime.
func (s *QuoteStore) AppendOfferRef(ctx context.Context, quoteID, offerID string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	return s.backend.PushFront(ctx, offerRefsKey(quoteID), []byte(offerID), ttl)
}

// ListOfferRefs returns the offer ids recorded for a quote, most recent first.
func (s *QuoteStore) ListOfferRefs(ctx context.Context, quoteID string) ([]string, error) {
	values, err := s.backend.Range(ctx, offerRefsKey(quoteID))
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(values))
	for i, v := range values {
		ids[i] = string(v)
	}
	return ids, nil
}

func (s *QuoteStore) Close() error {
	return s.backend.Close()
}
