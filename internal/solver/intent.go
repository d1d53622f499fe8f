// Package solver is a reference solver: it prices broadcast quotes at a fixed
// rate and answers with signed offers.
package solver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/signature"
)

// SolverPayload states the solver's side of q: it gives the user's output
// asset and receives the user's input asset. counter is the amount on the side
// the quote leaves open.
func SolverPayload(q *domain.Quote, counter *uint256.Int, nonce []byte, deadline time.Time) *domain.IntentPayload {
	p := &domain.IntentPayload{
		Algorithm: uint8(signature.AlgorithmEd25519),
		Nonce:     nonce,
		AssetIn:   string(q.AssetOut),
		AssetOut:  string(q.AssetIn),
		Deadline:  uint64(deadline.UnixMilli()),
	}
	if q.Mode == domain.ExactAmountIn {
		p.AmountIn, p.AmountOut = counter, q.ExactAmount
	} else {
		p.AmountIn, p.AmountOut = q.ExactAmount, counter
	}
	return p
}

// UserPayload states the user's side of q, accepting the counter amount.
func UserPayload(q *domain.Quote, counter *uint256.Int, nonce []byte, deadline time.Time) *domain.IntentPayload {
	p := &domain.IntentPayload{
		Algorithm: uint8(signature.AlgorithmEd25519),
		Nonce:     nonce,
		AssetIn:   string(q.AssetIn),
		AssetOut:  string(q.AssetOut),
		Deadline:  uint64(deadline.UnixMilli()),
	}
	if q.Mode == domain.ExactAmountIn {
		p.AmountIn, p.AmountOut = q.ExactAmount, counter
	} else {
		p.AmountIn, p.AmountOut = counter, q.ExactAmount
	}
	return p
}

// SignIntent encodes p and signs the encoding with key.
func SignIntent(key solana.PrivateKey, p *domain.IntentPayload) (domain.SignedMessage, error) {
	msg, err := codec.EncodeIntentPayload(p)
	if err != nil {
		return domain.SignedMessage{}, err
	}
	sig, err := key.Sign(msg)
	if err != nil {
		return domain.SignedMessage{}, err
	}
	pk := key.PublicKey()
	return domain.SignedMessage{
		PublicKey: pk[:],
		Message:   msg,
		Signature: sig[:],
	}, nil
}

// TimeNonce derives a nonce from t.
func TimeNonce(t time.Time) []byte {
	return []byte(strconv.FormatInt(t.UnixNano(), 10))
}

// Rate is a non-negative decimal multiplier, e.g. "0.997".
type Rate struct {
	num *uint256.Int
	den *uint256.Int
}

func ParseRate(s string) (Rate, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	if whole == "" && frac == "" {
		return Rate{}, fmt.Errorf("invalid rate %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	num, err := codec.ParseAmount(whole + frac)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	den := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for range frac {
		den.Mul(den, ten)
	}
	if num.IsZero() {
		return Rate{}, fmt.Errorf("invalid rate %q: must be positive", s)
	}
	return Rate{num: num, den: den}, nil
}

// Apply returns floor(amount * rate), at least 1. It reports false when the
// product overflows 256 bits.
func (r Rate) Apply(amount *uint256.Int) (*uint256.Int, bool) {
	product, overflow := new(uint256.Int).MulOverflow(amount, r.num)
	if overflow {
		return nil, false
	}
	out := product.Div(product, r.den)
	if out.IsZero() {
		out.SetOne()
	}
	return out, true
}

func (r Rate) String() string {
	return r.num.Dec() + "/" + r.den.Dec()
}
