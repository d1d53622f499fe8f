package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/rfq-engine/internal/domain"
)

func newTestStore() (*QuoteStore, *fakeClock) {
	clock := &fakeClock{now: time.UnixMilli(1700000000000)}
	return NewQuoteStore(NewMemoryBackend(WithClock(clock.Now))), clock
}

func testQuote() *domain.Quote {
	return &domain.Quote{
		ID:            "q1",
		Mode:          domain.ExactAmountIn,
		AssetIn:       "eip155:1:usdc",
		AssetOut:      "sui:mainnet:sui",
		ExactAmount:   uint256.NewInt(1000),
		MinDeadlineMs: 60000,
		CreatedAt:     1700000000000,
	}
}

func testOffer(id string, amount uint64) *domain.QuoteOffer {
	return &domain.QuoteOffer{
		ID:      id,
		QuoteID: "q1",
		Mode:    domain.ExactAmountIn,
		Amount:  uint256.NewInt(amount),
		SignedMessage: domain.SignedMessage{
			PublicKey: []byte{1},
			Message:   []byte{2},
			Signature: []byte{3},
		},
		Deadline: 1700000090000,
	}
}

func TestQuoteStoreQuotes(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	q := testQuote()

	require.NoError(t, store.PutQuote(ctx, q, 300*time.Second))
	got, err := store.GetQuote(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	_, err = store.GetQuote(ctx, "other")
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)

	clock.Advance(301 * time.Second)
	_, err = store.GetQuote(ctx, q.ID)
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
}

func TestQuoteStoreOffers(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.PutOffer(ctx, testOffer("o1", 10), 10*time.Second))
	require.NoError(t, store.PutOffer(ctx, testOffer("o2", 20), 60*time.Second))

	got, err := store.GetOffer(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, testOffer("o1", 10), got)

	_, err = store.GetOffer(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrOfferNotFound)

	clock.Advance(30 * time.Second)
	offers, err := store.GetOffers(ctx, []string{"o2", "o1", "nope"})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "o2", offers[0].ID)
}

func TestQuoteStoreOfferRefs(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AppendOfferRef(ctx, "q1", "o1", time.Minute))
	require.NoError(t, store.AppendOfferRef(ctx, "q1", "o2", time.Minute))
	require.NoError(t, store.AppendOfferRef(ctx, "q2", "o3", time.Minute))

	refs, err := store.ListOfferRefs(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, []string{"o2", "o1"}, refs)

	clock.Advance(2 * time.Minute)
	refs, err = store.ListOfferRefs(ctx, "q1")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestQuoteStoreRejectsNonPositiveTTL(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.PutQuote(ctx, testQuote(), 0), ErrInvalidTTL)
	assert.ErrorIs(t, store.PutOffer(ctx, testOffer("o1", 1), -time.Second), ErrInvalidTTL)
	assert.ErrorIs(t, store.AppendOfferRef(ctx, "q1", "o1", 0), ErrInvalidTTL)
}
