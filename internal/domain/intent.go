package domain

import "github.com/holiman/uint256"

// IntentPayload is the content a user or solver signs. Its canonical binary
// encoding is the exact message covered by the signature.
type IntentPayload struct {
	Algorithm uint8
	Nonce     []byte
	AssetIn   string
	AmountIn  *uint256.Int
	AssetOut  string
	AmountOut *uint256.Int
	Deadline  uint64
}

// MatchesAsUser reports whether the payload states the quote's own trade:
// the user gives assetIn and receives assetOut.
func (p *IntentPayload) MatchesAsUser(q *Quote) bool {
	if p.AssetIn != string(q.AssetIn) || p.AssetOut != string(q.AssetOut) {
		return false
	}
	switch q.Mode {
	case ExactAmountIn:
		return p.AmountIn != nil && p.AmountIn.Eq(q.ExactAmount)
	case ExactAmountOut:
		return p.AmountOut != nil && p.AmountOut.Eq(q.ExactAmount)
	default:
		return false
	}
}

// MatchesAsSolver reports whether the payload states the counter side of the
// quote. A solver gives what the user receives, so the pair is inverted and
// the quote's exact amount sits on the opposite field.
func (p *IntentPayload) MatchesAsSolver(q *Quote) bool {
	if p.AssetOut != string(q.AssetIn) || p.AssetIn != string(q.AssetOut) {
		return false
	}
	switch q.Mode {
	case ExactAmountIn:
		return p.AmountOut != nil && p.AmountOut.Eq(q.ExactAmount)
	case ExactAmountOut:
		return p.AmountIn != nil && p.AmountIn.Eq(q.ExactAmount)
	default:
		return false
	}
}

// SolverCounterAmount is the amount a solver commits to on the side the user
// did not fix.
func (p *IntentPayload) SolverCounterAmount(mode SwapMode) *uint256.Int {
	if mode == ExactAmountIn {
		return p.AmountIn
	}
	return p.AmountOut
}
