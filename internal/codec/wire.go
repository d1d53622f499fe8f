package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/holiman/uint256"

	"github.com/hxuan190/rfq-engine/internal/domain"
)

var (
	ErrUnknownMode   = errors.New("codec: unknown swap mode")
	ErrMissingAmount = errors.New("codec: amount missing for swap mode")
	ErrMissingField  = errors.New("codec: required field missing")
)

// ByteArray is a byte sequence carried on the JSON wire as an array of
// integers in [0, 255].
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	out := make([]byte, 0, len(b)*4+2)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

func (b *ByteArray) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = nil
		return nil
	}
	var values []int
	if err := sonic.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("codec: byte array: %w", err)
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return fmt.Errorf("codec: byte array: value %d at index %d out of range", v, i)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// Amount is an unsigned 256-bit integer carried as a decimal string. Bare
// JSON numbers are accepted on input.
type Amount uint256.Int

func NewAmount(v *uint256.Int) *Amount {
	if v == nil {
		return nil
	}
	a := Amount(*v)
	return &a
}

func (a *Amount) Int() *uint256.Int {
	if a == nil {
		return nil
	}
	v := uint256.Int(*a)
	return &v
}

func (a Amount) MarshalJSON() ([]byte, error) {
	v := uint256.Int(a)
	return strconv.AppendQuote(nil, v.Dec()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("codec: amount: %w", err)
		}
		s = unquoted
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = Amount(*v)
	return nil
}

// ParseAmount parses a base-10 unsigned integer that fits in 256 bits.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("codec: amount: empty")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("codec: amount %q: not a decimal unsigned integer", s)
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("codec: amount %q: %w", s, err)
	}
	return v, nil
}

type SignedMessageJSON struct {
	PublicKey ByteArray `json:"publicKey"`
	Message   ByteArray `json:"message"`
	Signature ByteArray `json:"signature"`
}

func NewSignedMessageJSON(m domain.SignedMessage) SignedMessageJSON {
	return SignedMessageJSON{
		PublicKey: ByteArray(m.PublicKey),
		Message:   ByteArray(m.Message),
		Signature: ByteArray(m.Signature),
	}
}

func (m SignedMessageJSON) SignedMessage() domain.SignedMessage {
	return domain.SignedMessage{
		PublicKey: []byte(m.PublicKey),
		Message:   []byte(m.Message),
		Signature: []byte(m.Signature),
	}
}

// QuoteMessage is the JSON form of a quote. It is both the stored value and
// the frame broadcast to solvers.
type QuoteMessage struct {
	Type           domain.SwapMode `json:"type"`
	ID             string          `json:"id"`
	AssetIn        domain.Asset    `json:"assetIn"`
	AssetOut       domain.Asset    `json:"assetOut"`
	ExactAmountIn  *Amount         `json:"exactAmountIn,omitempty"`
	ExactAmountOut *Amount         `json:"exactAmountOut,omitempty"`
	MinDeadlineMs  uint32          `json:"minDeadlineMs"`
	CreatedAt      int64           `json:"createdAt"`
}

func NewQuoteMessage(q *domain.Quote) QuoteMessage {
	m := QuoteMessage{
		Type:          q.Mode,
		ID:            q.ID,
		AssetIn:       q.AssetIn,
		AssetOut:      q.AssetOut,
		MinDeadlineMs: q.MinDeadlineMs,
		CreatedAt:     q.CreatedAt,
	}
	if q.Mode == domain.ExactAmountIn {
		m.ExactAmountIn = NewAmount(q.ExactAmount)
	} else {
		m.ExactAmountOut = NewAmount(q.ExactAmount)
	}
	return m
}

func (m *QuoteMessage) Quote() (*domain.Quote, error) {
	q := &domain.Quote{
		ID:            m.ID,
		Mode:          m.Type,
		AssetIn:       m.AssetIn,
		AssetOut:      m.AssetOut,
		MinDeadlineMs: m.MinDeadlineMs,
		CreatedAt:     m.CreatedAt,
	}
	switch m.Type {
	case domain.ExactAmountIn:
		q.ExactAmount = m.ExactAmountIn.Int()
	case domain.ExactAmountOut:
		q.ExactAmount = m.ExactAmountOut.Int()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m.Type)
	}
	if q.ExactAmount == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingAmount, m.Type)
	}
	if q.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}
	return q, nil
}

func EncodeQuote(q *domain.Quote) ([]byte, error) {
	return sonic.Marshal(NewQuoteMessage(q))
}

func DecodeQuote(data []byte) (*domain.Quote, error) {
	var m QuoteMessage
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("codec: quote: %w", err)
	}
	return m.Quote()
}

// OfferMessage is the frame a solver sends to submit an offer.
type OfferMessage struct {
	Type          domain.SwapMode   `json:"type"`
	QuoteID       string            `json:"quoteId"`
	AmountOut     *Amount           `json:"amountOut,omitempty"`
	AmountIn      *Amount           `json:"amountIn,omitempty"`
	Deadline      int64             `json:"deadline"`
	SignedMessage SignedMessageJSON `json:"signedMessage"`
}

// ParseOfferMessage decodes and shape-checks a solver frame.
func ParseOfferMessage(data []byte) (*OfferMessage, error) {
	var m OfferMessage
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("codec: offer: %w", err)
	}
	if _, err := m.amount(); err != nil {
		return nil, err
	}
	if m.QuoteID == "" {
		return nil, fmt.Errorf("%w: quoteId", ErrMissingField)
	}
	return &m, nil
}

func (m *OfferMessage) amount() (*uint256.Int, error) {
	var a *Amount
	switch m.Type {
	case domain.ExactAmountIn:
		a = m.AmountOut
	case domain.ExactAmountOut:
		a = m.AmountIn
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m.Type)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingAmount, m.Type)
	}
	return a.Int(), nil
}

// Offer converts the frame into a domain offer with the given id.
func (m *OfferMessage) Offer(id string) (*domain.QuoteOffer, error) {
	amount, err := m.amount()
	if err != nil {
		return nil, err
	}
	return &domain.QuoteOffer{
		ID:            id,
		QuoteID:       m.QuoteID,
		Mode:          m.Type,
		Amount:        amount,
		SignedMessage: m.SignedMessage.SignedMessage(),
		Deadline:      m.Deadline,
	}, nil
}

func NewOfferMessage(o *domain.QuoteOffer) OfferMessage {
	m := OfferMessage{
		Type:          o.Mode,
		QuoteID:       o.QuoteID,
		Deadline:      o.Deadline,
		SignedMessage: NewSignedMessageJSON(o.SignedMessage),
	}
	if o.Mode == domain.ExactAmountIn {
		m.AmountOut = NewAmount(o.Amount)
	} else {
		m.AmountIn = NewAmount(o.Amount)
	}
	return m
}

type storedOffer struct {
	ID string `json:"id"`
	OfferMessage
}

func EncodeOffer(o *domain.QuoteOffer) ([]byte, error) {
	return sonic.Marshal(storedOffer{ID: o.ID, OfferMessage: NewOfferMessage(o)})
}

func DecodeOffer(data []byte) (*domain.QuoteOffer, error) {
	var s storedOffer
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("codec: offer: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}
	return s.Offer(s.ID)
}
