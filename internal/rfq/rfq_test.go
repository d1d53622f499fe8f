package rfq

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/rfq-engine/internal/adapters/persistence"
	"github.com/hxuan190/rfq-engine/internal/adapters/pubsub"
	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/solver"
)

type fakeExecutor struct {
	mu     sync.Mutex
	calls  [][2][]byte
	digest []byte
	err    error
}

func (f *fakeExecutor) ExecuteIntents(_ context.Context, userIntent, solverIntent []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2][]byte{userIntent, solverIntent})
	if f.err != nil {
		return nil, f.err
	}
	return f.digest, nil
}

func (f *fakeExecutor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type harness struct {
	t          *testing.T
	store      *persistence.QuoteStore
	bus        *pubsub.MemoryBus
	gateway    *Gateway
	intake     *Intake
	settlement *Settlement
	executor   *fakeExecutor
	broadcasts pubsub.Subscription
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := persistence.NewQuoteStore(persistence.NewMemoryBackend())
	bus := pubsub.NewMemoryBus(16)
	exec := &fakeExecutor{digest: make([]byte, 32)}

	h := &harness{
		t:        t,
		store:    store,
		bus:      bus,
		executor: exec,
		gateway: NewGateway(store, bus, GatewayConfig{
			CollectionWindow: 3 * time.Second,
			QuoteTTL:         300 * time.Second,
			Assets:           domain.NewAssetSet("X", "Y", "Z"),
		}),
		intake:     NewIntake(store, bus, 300*time.Second),
		settlement: NewSettlement(store, exec),
	}
	sub, err := bus.Subscribe(context.Background(), pubsub.QuotesTopic)
	require.NoError(t, err)
	h.broadcasts = sub
	h.gateway.sleep = func(time.Duration) {}
	t.Cleanup(func() { _ = bus.Close() })
	return h
}

// during runs fn with the broadcast quote while the gateway waits.
func (h *harness) during(fn func(q *domain.Quote)) {
	h.gateway.sleep = func(d time.Duration) {
		require.Equal(h.t, 3*time.Second, d)
		select {
		case raw := <-h.broadcasts.Messages():
			q, err := codec.DecodeQuote(raw)
			require.NoError(h.t, err)
			fn(q)
		case <-time.After(time.Second):
			h.t.Fatal("no broadcast received")
		}
	}
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func amountPtr(s string) *string { return &s }
func msPtr(v int64) *int64       { return &v }

func exactInRequest(amount string) *QuoteRequest {
	return &QuoteRequest{
		Type:          domain.ExactAmountIn,
		AssetIn:       "X",
		AssetOut:      "Y",
		ExactAmountIn: amountPtr(amount),
		MinDeadlineMs: msPtr(60000),
	}
}

// offerFrame signs payload with key and wraps it in a solver frame stating
// amount as the offer's counter amount.
func offerFrame(t *testing.T, key solana.PrivateKey, q *domain.Quote, payload *domain.IntentPayload, amount *uint256.Int, deadline time.Time) []byte {
	t.Helper()
	signed, err := solver.SignIntent(key, payload)
	require.NoError(t, err)
	frame, err := sonic.Marshal(codec.NewOfferMessage(&domain.QuoteOffer{
		QuoteID:       q.ID,
		Mode:          q.Mode,
		Amount:        amount,
		SignedMessage: signed,
		Deadline:      deadline.UnixMilli(),
	}))
	require.NoError(t, err)
	return frame
}

// validFrame is an honest solver answer offering counter.
func validFrame(t *testing.T, key solana.PrivateKey, q *domain.Quote, counter uint64) []byte {
	t.Helper()
	amount := uint256.NewInt(counter)
	deadline := time.Now().Add(60 * time.Second)
	return offerFrame(t, key, q, solver.SolverPayload(q, amount, []byte{1}, deadline), amount, deadline)
}
