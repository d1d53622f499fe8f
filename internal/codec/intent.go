package codec

import (
	"fmt"

	"github.com/hxuan190/rfq-engine/internal/domain"
)

// EncodeIntentPayload returns the BCS encoding of an IntentPayload:
// algorithm u8, nonce vector<u8>, asset_in string, amount_in u256,
// asset_out string, amount_out u256, deadline u64.
func EncodeIntentPayload(p *domain.IntentPayload) ([]byte, error) {
	w := newBCSWriter()
	if err := writeIntentPayload(w, p); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func writeIntentPayload(w *bcsWriter, p *domain.IntentPayload) error {
	if err := w.u8(p.Algorithm); err != nil {
		return fmt.Errorf("algorithm: %w", err)
	}
	if err := w.bytes(p.Nonce); err != nil {
		return fmt.Errorf("nonce: %w", err)
	}
	if err := w.str(p.AssetIn); err != nil {
		return fmt.Errorf("asset_in: %w", err)
	}
	if err := w.u256(p.AmountIn); err != nil {
		return fmt.Errorf("amount_in: %w", err)
	}
	if err := w.str(p.AssetOut); err != nil {
		return fmt.Errorf("asset_out: %w", err)
	}
	if err := w.u256(p.AmountOut); err != nil {
		return fmt.Errorf("amount_out: %w", err)
	}
	if err := w.u64(p.Deadline); err != nil {
		return fmt.Errorf("deadline: %w", err)
	}
	return nil
}

// DecodeIntentPayload parses a BCS encoded IntentPayload. The whole input must
// be consumed.
func DecodeIntentPayload(data []byte) (*domain.IntentPayload, error) {
	r := newBCSReader(data)
	p, err := readIntentPayload(r)
	if err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return p, nil
}

func readIntentPayload(r *bcsReader) (*domain.IntentPayload, error) {
	var (
		p   domain.IntentPayload
		err error
	)
	if p.Algorithm, err = r.u8(); err != nil {
		return nil, fmt.Errorf("algorithm: %w", err)
	}
	if p.Nonce, err = r.bytes(); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	if p.AssetIn, err = r.str(); err != nil {
		return nil, fmt.Errorf("asset_in: %w", err)
	}
	if p.AmountIn, err = r.u256(); err != nil {
		return nil, fmt.Errorf("amount_in: %w", err)
	}
	if p.AssetOut, err = r.str(); err != nil {
		return nil, fmt.Errorf("asset_out: %w", err)
	}
	if p.AmountOut, err = r.u256(); err != nil {
		return nil, fmt.Errorf("amount_out: %w", err)
	}
	if p.Deadline, err = r.u64(); err != nil {
		return nil, fmt.Errorf("deadline: %w", err)
	}
	return &p, nil
}

// EncodeSignedIntent re-encodes a signed message into the settlement argument:
// payload IntentPayload, signature vector<u8>, public_key vector<u8>.
// The embedded message must itself be a valid IntentPayload, and it is copied
// through byte for byte.
func EncodeSignedIntent(m domain.SignedMessage) ([]byte, error) {
	if _, err := DecodeIntentPayload(m.Message); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}

	w := newBCSWriter()
	if err := w.raw(m.Message); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	if err := w.bytes(m.Signature); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}
	if err := w.bytes(m.PublicKey); err != nil {
		return nil, fmt.Errorf("public_key: %w", err)
	}
	return w.Bytes(), nil
}

// DecodeSignedIntent is the inverse of EncodeSignedIntent.
func DecodeSignedIntent(data []byte) (*domain.IntentPayload, domain.SignedMessage, error) {
	r := newBCSReader(data)
	p, err := readIntentPayload(r)
	if err != nil {
		return nil, domain.SignedMessage{}, fmt.Errorf("payload: %w", err)
	}
	payloadLen := len(data) - r.dec.Remaining()

	sig, err := r.bytes()
	if err != nil {
		return nil, domain.SignedMessage{}, fmt.Errorf("signature: %w", err)
	}
	pk, err := r.bytes()
	if err != nil {
		return nil, domain.SignedMessage{}, fmt.Errorf("public_key: %w", err)
	}
	if err := r.done(); err != nil {
		return nil, domain.SignedMessage{}, err
	}

	msg := make([]byte, payloadLen)
	copy(msg, data[:payloadLen])
	return p, domain.SignedMessage{PublicKey: pk, Message: msg, Signature: sig}, nil
}
