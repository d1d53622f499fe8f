package rfq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/solver"
)

// userAcceptance signs the user's side of q at the given counter amount.
func userAcceptance(t *testing.T, q *domain.Quote, counter uint64, mutate func(*domain.IntentPayload)) domain.SignedMessage {
	t.Helper()
	p := solver.UserPayload(q, uint256.NewInt(counter), []byte("user-nonce"), time.Now().Add(time.Minute))
	if mutate != nil {
		mutate(p)
	}
	signed, err := solver.SignIntent(newKey(t), p)
	require.NoError(t, err)
	return signed
}

func TestAcceptBestOffer(t *testing.T) {
	h := newHarness(t)
	for i := range h.executor.digest {
		h.executor.digest[i] = byte(i)
	}
	ids := []string{"o-1", "o-2"}
	h.intake.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	h.during(func(q *domain.Quote) {
		h.intake.SubmitOffer(context.Background(), validFrame(t, newKey(t), q, 500))
		h.intake.SubmitOffer(context.Background(), validFrame(t, newKey(t), q, 600))
	})

	res, err := h.gateway.SubmitQuote(context.Background(), exactInRequest("1000"))
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	require.Equal(t, "o-2", res.Best.ID)

	user := userAcceptance(t, res.Quote, 600, nil)
	accepted, err := h.settlement.AcceptOffer(context.Background(), res.Best.ID, user)
	require.NoError(t, err)
	assert.Equal(t, h.executor.digest, accepted.Digest)

	require.Equal(t, 1, h.executor.Calls())
	wantUser, err := codec.EncodeSignedIntent(user)
	require.NoError(t, err)
	wantSolver, err := codec.EncodeSignedIntent(res.Best.SignedMessage)
	require.NoError(t, err)
	assert.Equal(t, wantUser, h.executor.calls[0][0])
	assert.Equal(t, wantSolver, h.executor.calls[0][1])
}

func TestAcceptBestOfferExactAmountOut(t *testing.T) {
	h := newHarness(t)
	ids := []string{"o-1", "o-2"}
	h.intake.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	h.during(func(q *domain.Quote) {
		h.intake.SubmitOffer(context.Background(), validFrame(t, newKey(t), q, 1200))
		h.intake.SubmitOffer(context.Background(), validFrame(t, newKey(t), q, 1100))
	})

	res, err := h.gateway.SubmitQuote(context.Background(), &QuoteRequest{
		Type:           domain.ExactAmountOut,
		AssetIn:        "X",
		AssetOut:       "Y",
		ExactAmountOut: amountPtr("1000"),
		MinDeadlineMs:  msPtr(60000),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Best)
	require.Equal(t, "o-2", res.Best.ID, "lowest amountIn wins")

	_, err = h.settlement.AcceptOffer(context.Background(), res.Best.ID, userAcceptance(t, res.Quote, 1100, func(p *domain.IntentPayload) {
		p.AmountOut = uint256.NewInt(999)
	}))
	require.ErrorIs(t, err, ErrIntentRejected)
	require.Equal(t, 0, h.executor.Calls())

	user := userAcceptance(t, res.Quote, 1100, nil)
	_, err = h.settlement.AcceptOffer(context.Background(), res.Best.ID, user)
	require.NoError(t, err)

	require.Equal(t, 1, h.executor.Calls())
	wantUser, err := codec.EncodeSignedIntent(user)
	require.NoError(t, err)
	wantSolver, err := codec.EncodeSignedIntent(res.Best.SignedMessage)
	require.NoError(t, err)
	assert.Equal(t, wantUser, h.executor.calls[0][0])
	assert.Equal(t, wantSolver, h.executor.calls[0][1])
}

func TestAcceptOfferFailures(t *testing.T) {
	executeErr := errors.New("insufficient gas")

	for _, tc := range []struct {
		name     string
		offerID  string
		user     func(t *testing.T, q *domain.Quote) domain.SignedMessage
		execErr  error
		dropQ    bool
		wantErr  error
		executed int
	}{
		{
			name:    "unknown offer",
			offerID: "o-missing",
			user:    func(t *testing.T, q *domain.Quote) domain.SignedMessage { return userAcceptance(t, q, 500, nil) },
			wantErr: ErrOfferNotFound,
		},
		{
			name:    "quote expired",
			offerID: "o-1",
			dropQ:   true,
			user:    func(t *testing.T, q *domain.Quote) domain.SignedMessage { return userAcceptance(t, q, 500, nil) },
			wantErr: ErrInvalidQuote,
		},
		{
			name:    "exact amount differs",
			offerID: "o-1",
			user: func(t *testing.T, q *domain.Quote) domain.SignedMessage {
				return userAcceptance(t, q, 500, func(p *domain.IntentPayload) { p.AmountIn = uint256.NewInt(999) })
			},
			wantErr: ErrIntentRejected,
		},
		{
			name:    "pair differs",
			offerID: "o-1",
			user: func(t *testing.T, q *domain.Quote) domain.SignedMessage {
				return userAcceptance(t, q, 500, func(p *domain.IntentPayload) { p.AssetOut = "Z" })
			},
			wantErr: ErrIntentRejected,
		},
		{
			name:    "undecodable payload",
			offerID: "o-1",
			user: func(t *testing.T, q *domain.Quote) domain.SignedMessage {
				m := userAcceptance(t, q, 500, nil)
				m.Message = append(m.Message, 0xff)
				return m
			},
			wantErr: ErrIntentRejected,
		},
		{
			name:    "bad signature",
			offerID: "o-1",
			user: func(t *testing.T, q *domain.Quote) domain.SignedMessage {
				m := userAcceptance(t, q, 500, nil)
				m.Signature[10] ^= 0x80
				return m
			},
			wantErr: ErrIntentRejected,
		},
		{
			name:    "unsupported algorithm",
			offerID: "o-1",
			user: func(t *testing.T, q *domain.Quote) domain.SignedMessage {
				return userAcceptance(t, q, 500, func(p *domain.IntentPayload) { p.Algorithm = 0 })
			},
			wantErr: ErrUnsupportedAlgorithm,
		},
		{
			name:     "execution fails",
			offerID:  "o-1",
			user:     func(t *testing.T, q *domain.Quote) domain.SignedMessage { return userAcceptance(t, q, 500, nil) },
			execErr:  executeErr,
			wantErr:  ErrSettlementFailed,
			executed: 1,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.executor.err = tc.execErr
			q := storedQuote(t, h)
			h.intake.newID = func() string { return "o-1" }
			require.Equal(t, DropNone, h.intake.submit(context.Background(), validFrame(t, newKey(t), q, 500)))

			store := QuoteStore(h.store)
			if tc.dropQ {
				store = missingQuoteStore{h.store}
			}
			s := NewSettlement(store, h.executor)

			res, err := s.AcceptOffer(context.Background(), tc.offerID, tc.user(t, q))
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.executed, h.executor.Calls())
			if tc.execErr != nil {
				assert.ErrorContains(t, err, tc.execErr.Error())
			}
		})
	}
}

func TestAcceptRejectsTamperedSolverOffer(t *testing.T) {
	h := newHarness(t)
	q := storedQuote(t, h)
	key := newKey(t)
	signed, err := solver.SignIntent(key, solver.SolverPayload(q, uint256.NewInt(500), []byte{1}, time.Now().Add(time.Minute)))
	require.NoError(t, err)
	signed.Signature[0] ^= 0x01
	require.NoError(t, h.store.PutOffer(context.Background(), &domain.QuoteOffer{
		ID:            "o-tampered",
		QuoteID:       q.ID,
		Mode:          q.Mode,
		Amount:        uint256.NewInt(500),
		SignedMessage: signed,
		Deadline:      time.Now().Add(time.Minute).UnixMilli(),
	}, time.Minute))

	_, err = h.settlement.AcceptOffer(context.Background(), "o-tampered", userAcceptance(t, q, 500, nil))
	assert.ErrorIs(t, err, ErrIntentRejected)
	assert.Zero(t, h.executor.Calls())
}

type missingQuoteStore struct {
	QuoteStore
}

func (missingQuoteStore) GetQuote(context.Context, string) (*domain.Quote, error) {
	return nil, domain.ErrQuoteNotFound
}

func TestSettlementStatus(t *testing.T) {
	assert.Equal(t, "success", settlementStatus(nil))
	assert.Equal(t, "offer_not_found", settlementStatus(ErrOfferNotFound))
	assert.Equal(t, "failed", settlementStatus(errors.Join(ErrSettlementFailed, errors.New("rpc"))))
	assert.Equal(t, "error", settlementStatus(errors.New("other")))
}
