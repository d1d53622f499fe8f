package domain

import (
	"github.com/holiman/uint256"
)

// SwapMode selects which side of a quote carries the fixed amount.
type SwapMode string

const (
	ExactAmountIn  SwapMode = "exactAmountIn"
	ExactAmountOut SwapMode = "exactAmountOut"
)

func (m SwapMode) Valid() bool {
	return m == ExactAmountIn || m == ExactAmountOut
}

// Asset identifies a token on a network, e.g. "eip155:1:usdc".
type Asset string

type Quote struct {
	ID       string
	Mode     SwapMode
	AssetIn  Asset
	AssetOut Asset

	// ExactAmount is the input amount for ExactAmountIn quotes and the output
	// amount for ExactAmountOut quotes.
	ExactAmount *uint256.Int

	MinDeadlineMs uint32
	CreatedAt     int64 // unix ms
}

// MinOfferDeadline is the earliest deadline an offer may carry and still be
// considered against this quote.
func (q *Quote) MinOfferDeadline() int64 {
	return q.CreatedAt + int64(q.MinDeadlineMs)
}

type QuoteOffer struct {
	ID      string
	QuoteID string
	Mode    SwapMode

	// Amount is the side the solver prices: amountOut for ExactAmountIn quotes,
	// amountIn for ExactAmountOut quotes.
	Amount *uint256.Int

	SignedMessage SignedMessage
	Deadline      int64 // unix ms
}

// Solver is the identity of the offering solver.
func (o *QuoteOffer) Solver() []byte {
	return o.SignedMessage.PublicKey
}

type SignedMessage struct {
	PublicKey []byte
	Message   []byte
	Signature []byte
}
