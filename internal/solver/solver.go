package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
)

var ErrUnpriceable = errors.New("solver: quote cannot be priced")

// Solver answers every quote at a fixed rate with an offer valid for ttl.
type Solver struct {
	key  solana.PrivateKey
	rate Rate
	ttl  time.Duration
	now  func() time.Time
}

func New(key solana.PrivateKey, rate Rate, ttl time.Duration) *Solver {
	return &Solver{key: key, rate: rate, ttl: ttl, now: time.Now}
}

func (s *Solver) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Offer builds a signed offer for q.
func (s *Solver) Offer(q *domain.Quote) (*domain.QuoteOffer, error) {
	counter, ok := s.rate.Apply(q.ExactAmount)
	if !ok {
		return nil, ErrUnpriceable
	}
	now := s.now()
	deadline := now.Add(s.ttl)

	signed, err := SignIntent(s.key, SolverPayload(q, counter, TimeNonce(now), deadline))
	if err != nil {
		return nil, err
	}
	return &domain.QuoteOffer{
		QuoteID:       q.ID,
		Mode:          q.Mode,
		Amount:        counter,
		SignedMessage: signed,
		Deadline:      deadline.UnixMilli(),
	}, nil
}

// OfferFrame is the wire frame answering the broadcast raw.
func (s *Solver) OfferFrame(raw []byte) ([]byte, *domain.QuoteOffer, error) {
	q, err := codec.DecodeQuote(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid quote broadcast: %w", err)
	}
	offer, err := s.Offer(q)
	if err != nil {
		return nil, nil, err
	}
	frame, err := sonic.Marshal(codec.NewOfferMessage(offer))
	if err != nil {
		return nil, nil, err
	}
	return frame, offer, nil
}

// Run connects to the engine's solver endpoint and answers quotes until ctx
// is done or the connection drops. onOffer, when set, sees every offer sent.
func (s *Solver) Run(ctx context.Context, url string, onOffer func(*domain.QuoteOffer)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	log.Info().Str("url", url).Str("solver", s.PublicKey().String()).Msg("[Solver] connected")
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		frame, offer, err := s.OfferFrame(raw)
		if err != nil {
			log.Warn().Err(err).Msg("[Solver] skipping quote")
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return err
		}
		log.Debug().Str("quoteId", offer.QuoteID).Str("amount", offer.Amount.Dec()).Msg("[Solver] offer sent")
		if onOffer != nil {
			onOffer(offer)
		}
	}
}
