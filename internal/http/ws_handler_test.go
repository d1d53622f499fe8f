package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/rfq-engine/internal/adapters/persistence"
	"github.com/hxuan190/rfq-engine/internal/adapters/pubsub"
	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/rfq"
	"github.com/hxuan190/rfq-engine/internal/solver"
)

func TestSolverSessionOverWebsocket(t *testing.T) {
	store := persistence.NewQuoteStore(persistence.NewMemoryBackend())
	bus := pubsub.NewMemoryBus(pubsub.DefaultSubscriberBuffer)
	defer bus.Close()
	intake := rfq.NewIntake(store, bus, time.Minute)

	sessions, stop := context.WithCancel(context.Background())
	defer stop()
	srv := httptest.NewServer(NewRouter(NewWSHandler(sessions, intake)))
	defer srv.Close()

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	rate, err := solver.ParseRate("0.997")
	require.NoError(t, err)
	s := solver.New(key, rate, 30*time.Second)

	offers := make(chan *domain.QuoteOffer, 1)
	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- s.Run(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", func(o *domain.QuoteOffer) { offers <- o })
	}()
	require.Eventually(t, func() bool {
		return bus.Subscribers(pubsub.QuotesTopic) == 1
	}, 2*time.Second, 10*time.Millisecond)

	q := testQuote(domain.ExactAmountIn)
	q.MinDeadlineMs = 1000
	q.CreatedAt = time.Now().UnixMilli()
	require.NoError(t, store.PutQuote(context.Background(), q, time.Minute))
	msg, err := codec.EncodeQuote(q)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), pubsub.QuotesTopic, msg))

	select {
	case o := <-offers:
		assert.Equal(t, q.ID, o.QuoteID)
		assert.Equal(t, uint64(997), o.Amount.Uint64())
	case <-time.After(2 * time.Second):
		t.Fatal("solver sent no offer")
	}

	require.Eventually(t, func() bool {
		refs, err := store.ListOfferRefs(context.Background(), q.ID)
		return err == nil && len(refs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	refs, err := store.ListOfferRefs(context.Background(), q.ID)
	require.NoError(t, err)
	stored, err := store.GetOffer(context.Background(), refs[0])
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey().Bytes(), stored.Solver())

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("solver did not stop")
	}
	require.Eventually(t, func() bool {
		return bus.Subscribers(pubsub.QuotesTopic) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
