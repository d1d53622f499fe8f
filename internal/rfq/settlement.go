package rfq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/metrics"
	"github.com/hxuan190/rfq-engine/internal/signature"
)

type AcceptResult struct {
	// Digest is the raw 32-byte settlement transaction digest.
	Digest []byte
}

// Settlement matches a user's signed acceptance with a stored solver offer and
// submits the pair for execution exactly once.
type Settlement struct {
	store    QuoteStore
	executor IntentExecutor
}

func NewSettlement(store QuoteStore, executor IntentExecutor) *Settlement {
	return &Settlement{store: store, executor: executor}
}

// AcceptOffer returns ErrOfferNotFound, ErrInvalidQuote, ErrIntentRejected,
// ErrUnsupportedAlgorithm or ErrSettlementFailed for the expected failures.
func (s *Settlement) AcceptOffer(ctx context.Context, offerID string, user domain.SignedMessage) (res *AcceptResult, err error) {
	defer func() {
		metrics.Settlements.WithLabelValues(settlementStatus(err)).Inc()
	}()

	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	q, err := s.store.GetQuote(ctx, offer.QuoteID)
	if errors.Is(err, domain.ErrQuoteNotFound) {
		return nil, ErrInvalidQuote
	}
	if err != nil {
		return nil, err
	}

	payload, err := codec.DecodeIntentPayload(user.Message)
	if err != nil || !payload.MatchesAsUser(q) {
		return nil, ErrIntentRejected
	}
	alg, err := signature.ParseAlgorithm(payload.Algorithm)
	if err != nil {
		return nil, err
	}
	ok, err := signature.Verify(alg, user.PublicKey, user.Message, user.Signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIntentRejected
	}

	if err := verifySolverIntent(q, offer); err != nil {
		log.Warn().Err(err).Str("offerId", offer.ID).Msg("[Settlement] stored solver intent no longer verifies")
		return nil, ErrIntentRejected
	}

	userIntent, err := codec.EncodeSignedIntent(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user intent: %w", err)
	}
	solverIntent, err := codec.EncodeSignedIntent(offer.SignedMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solver intent: %w", err)
	}

	start := time.Now()
	digest, err := s.executor.ExecuteIntents(ctx, userIntent, solverIntent)
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error().Err(err).Str("offerId", offer.ID).Str("quoteId", q.ID).Msg("[Settlement] execute_intents failed")
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	log.Info().Str("offerId", offer.ID).Str("quoteId", q.ID).Msg("[Settlement] intents executed")
	return &AcceptResult{Digest: digest}, nil
}

// verifySolverIntent re-derives the offer's validity from its stored bytes.
func verifySolverIntent(q *domain.Quote, offer *domain.QuoteOffer) error {
	payload, err := codec.DecodeIntentPayload(offer.SignedMessage.Message)
	if err != nil {
		return err
	}
	if !payload.MatchesAsSolver(q) {
		return errors.New("solver payload does not match quote")
	}
	alg, err := signature.ParseAlgorithm(payload.Algorithm)
	if err != nil {
		return err
	}
	ok, err := signature.Verify(alg, offer.SignedMessage.PublicKey, offer.SignedMessage.Message, offer.SignedMessage.Signature)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("solver signature does not verify")
	}
	return nil
}

func settlementStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrOfferNotFound):
		return "offer_not_found"
	case errors.Is(err, ErrInvalidQuote):
		return "invalid_quote"
	case errors.Is(err, ErrIntentRejected):
		return "intent_rejected"
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return "unsupported_algorithm"
	case errors.Is(err, ErrSettlementFailed):
		return "failed"
	default:
		return "error"
	}
}
