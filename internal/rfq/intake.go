package rfq

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hxuan190/rfq-engine/internal/adapters/pubsub"
	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/metrics"
	"github.com/hxuan190/rfq-engine/internal/signature"
)

// DropReason labels why an offer was not recorded.
type DropReason string

const (
	DropNone               DropReason = ""
	DropMalformed          DropReason = "malformed"
	DropQuoteNotFound      DropReason = "quote_not_found"
	DropModeMismatch       DropReason = "mode_mismatch"
	DropUndecodablePayload DropReason = "undecodable_payload"
	DropPairMismatch       DropReason = "pair_mismatch"
	DropAmountMismatch     DropReason = "amount_mismatch"
	DropCounterMismatch    DropReason = "counter_amount_mismatch"
	DropUnsupportedAlg     DropReason = "unsupported_algorithm"
	DropBadSignature       DropReason = "invalid_signature"
	DropExpired            DropReason = "expired"
	DropDeadlineTooSoon    DropReason = "deadline_too_soon"
	DropDeadlineMismatch   DropReason = "deadline_mismatch"
	DropStoreError         DropReason = "store_error"
)

// SolverConn is one solver's bidirectional message stream. ReadMessage
// returns io.EOF when the solver closed the stream.
type SolverConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Intake validates offers sent by solvers and records the good ones. It never
// answers the solver about an offer.
type Intake struct {
	store    QuoteStore
	bus      Subscriber
	quoteTTL time.Duration

	now   func() time.Time
	newID func() string
}

func NewIntake(store QuoteStore, bus Subscriber, quoteTTL time.Duration) *Intake {
	if quoteTTL <= 0 {
		quoteTTL = DefaultQuoteTTL
	}
	return &Intake{
		store:    store,
		bus:      bus,
		quoteTTL: quoteTTL,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SubmitOffer processes one raw offer frame. There is no result: an offer is
// either recorded or silently dropped.
func (in *Intake) SubmitOffer(ctx context.Context, raw []byte) {
	in.submit(ctx, raw)
}

func (in *Intake) submit(ctx context.Context, raw []byte) DropReason {
	reason, offer := in.process(ctx, raw)
	if reason != DropNone {
		metrics.OffersDropped.WithLabelValues(string(reason)).Inc()
		log.Debug().Str("reason", string(reason)).Msg("[Intake] offer dropped")
		return reason
	}
	metrics.OffersAccepted.WithLabelValues(string(offer.Mode)).Inc()
	log.Debug().Str("offerId", offer.ID).Str("quoteId", offer.QuoteID).Msg("[Intake] offer recorded")
	return DropNone
}

func (in *Intake) process(ctx context.Context, raw []byte) (DropReason, *domain.QuoteOffer) {
	msg, err := codec.ParseOfferMessage(raw)
	if err != nil {
		return DropMalformed, nil
	}

	q, err := in.store.GetQuote(ctx, msg.QuoteID)
	if err != nil {
		if !errors.Is(err, domain.ErrQuoteNotFound) {
			log.Warn().Err(err).Str("quoteId", msg.QuoteID).Msg("[Intake] quote lookup failed")
		}
		return DropQuoteNotFound, nil
	}
	if msg.Type != q.Mode {
		return DropModeMismatch, nil
	}

	offer, err := msg.Offer(in.newID())
	if err != nil {
		return DropMalformed, nil
	}

	payload, err := codec.DecodeIntentPayload(offer.SignedMessage.Message)
	if err != nil {
		return DropUndecodablePayload, nil
	}
	if payload.AssetOut != string(q.AssetIn) || payload.AssetIn != string(q.AssetOut) {
		return DropPairMismatch, nil
	}
	if !payload.MatchesAsSolver(q) {
		return DropAmountMismatch, nil
	}
	if counter := payload.SolverCounterAmount(q.Mode); counter == nil || !counter.Eq(offer.Amount) {
		return DropCounterMismatch, nil
	}
	// the stated deadline drives TTL and filtering, so it must be the signed one
	if offer.Deadline < 0 || uint64(offer.Deadline) != payload.Deadline {
		return DropDeadlineMismatch, nil
	}

	alg, err := signature.ParseAlgorithm(payload.Algorithm)
	if err != nil {
		return DropUnsupportedAlg, nil
	}
	ok, err := signature.Verify(alg, offer.SignedMessage.PublicKey, offer.SignedMessage.Message, offer.SignedMessage.Signature)
	if err != nil || !ok {
		return DropBadSignature, nil
	}

	now := in.now()
	ttl := time.UnixMilli(offer.Deadline).Sub(now)
	if ttl <= 0 {
		return DropExpired, nil
	}
	if offer.Deadline < q.MinOfferDeadline() {
		return DropDeadlineTooSoon, nil
	}

	if err := in.store.PutOffer(ctx, offer, ttl); err != nil {
		log.Error().Err(err).Str("quoteId", q.ID).Msg("[Intake] failed to store offer")
		return DropStoreError, nil
	}
	refTTL := time.UnixMilli(q.CreatedAt).Add(in.quoteTTL).Sub(now)
	if refTTL <= 0 {
		refTTL = ttl
	}
	if err := in.store.AppendOfferRef(ctx, q.ID, offer.ID, refTTL); err != nil {
		log.Error().Err(err).Str("quoteId", q.ID).Msg("[Intake] failed to record offer ref")
		return DropStoreError, nil
	}
	return DropNone, offer
}

// Serve runs a solver session until the solver disconnects, a write fails or
// ctx is done. Broadcast quotes are written to conn by a single goroutine
// while offers are read and processed strictly in order.
func (in *Intake) Serve(ctx context.Context, conn SolverConn) error {
	sub, err := in.bus.Subscribe(ctx, pubsub.QuotesTopic)
	if err != nil {
		return err
	}
	defer sub.Close()

	metrics.ConnectedSolvers.Inc()
	defer metrics.ConnectedSolvers.Dec()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return in.forward(gctx, sub, conn)
	})
	g.Go(func() error {
		return in.read(gctx, conn)
	})
	g.Go(func() error {
		// unblocks the reader once the session is over
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (in *Intake) forward(ctx context.Context, sub pubsub.Subscription, conn SolverConn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-sub.Messages():
			if !ok {
				return io.EOF
			}
			q, err := codec.DecodeQuote(raw)
			if err != nil {
				log.Warn().Err(err).Msg("[Intake] ignoring undecodable broadcast")
				continue
			}
			out, err := codec.EncodeQuote(q)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(out); err != nil {
				return err
			}
			metrics.BroadcastsForwarded.Inc()
		}
	}
}

func (in *Intake) read(ctx context.Context, conn SolverConn) error {
	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		in.SubmitOffer(ctx, raw)
	}
}
