package rfq

import (
	"errors"

	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/signature"
)

const CodeInvalidRequest = "invalid_request"

var (
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrIntentRejected covers every acceptance check that must not reveal
	// which part failed: undecodable payload, quote mismatch, bad signature.
	ErrIntentRejected   = errors.New("intent rejected")
	ErrSettlementFailed = errors.New("settlement failed")

	// Error aliases
	ErrOfferNotFound        = domain.ErrOfferNotFound
	ErrUnsupportedAlgorithm = signature.ErrUnsupportedAlgorithm
)

// ValidationError is returned by SubmitQuote for a request that cannot be
// admitted. Nothing has been stored or published when it is returned.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

func invalidRequest(msg string) *ValidationError {
	return &ValidationError{Code: CodeInvalidRequest, Message: msg}
}
