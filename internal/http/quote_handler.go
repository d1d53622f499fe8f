package http

import (
	"context"
	"encoding/base64"
	"errors"
	gohttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/rfq-engine/internal/codec"
	"github.com/hxuan190/rfq-engine/internal/common"
	"github.com/hxuan190/rfq-engine/internal/domain"
	"github.com/hxuan190/rfq-engine/internal/http/httputil"
	"github.com/hxuan190/rfq-engine/internal/http/middlewares"
	"github.com/hxuan190/rfq-engine/internal/rfq"
)

type QuoteSubmitter interface {
	SubmitQuote(ctx context.Context, req *rfq.QuoteRequest) (*rfq.QuoteResult, error)
}

type OfferAcceptor interface {
	AcceptOffer(ctx context.Context, offerID string, user domain.SignedMessage) (*rfq.AcceptResult, error)
}

type QuoteHandler struct {
	gateway     QuoteSubmitter
	settlement  OfferAcceptor
	rateLimiter *middlewares.RateLimiter
}

func NewQuoteHandler(gateway QuoteSubmitter, settlement OfferAcceptor, rateLimiter *middlewares.RateLimiter) *QuoteHandler {
	return &QuoteHandler{gateway: gateway, settlement: settlement, rateLimiter: rateLimiter}
}

func (h *QuoteHandler) SetRoutes(group *gin.RouterGroup) {
	if h.rateLimiter != nil {
		group.POST("", h.rateLimiter.RateLimitMiddleware(), h.getQuote)
	} else {
		group.POST("", h.getQuote)
	}
	group.POST("/offers/:offerId/accept", h.acceptOffer)
}

func (h *QuoteHandler) Root() string {
	return "/quotes"
}

// OfferResponse is one solver offer collected for a quote. Exactly one of
// AmountOut and AmountIn is set, matching the quote type.
type OfferResponse struct {
	// Offer id, passed to the accept endpoint
	ID string `json:"id" example:"0d9e4c6a-1f7b-4c1e-9a53-2b8f6f0e7d41"`

	// Unix milliseconds after which the solver no longer honours the offer
	Deadline int64 `json:"deadline" example:"1760000060000"`

	// Offered output for exactAmountIn quotes, decimal string
	AmountOut *codec.Amount `json:"amountOut,omitempty" swaggertype:"string" example:"997000"`

	// Required input for exactAmountOut quotes, decimal string
	AmountIn *codec.Amount `json:"amountIn,omitempty" swaggertype:"string"`

	// Solver public key as a byte array
	Solver codec.ByteArray `json:"solver" swaggertype:"array,integer"`
}

// QuoteResponse is the quote as admitted plus every offer received during the
// collection window, in arrival order.
type QuoteResponse struct {
	codec.QuoteMessage
	Offers []OfferResponse `json:"offers"`

	// Best offer id: highest amountOut for exactAmountIn, lowest amountIn
	// for exactAmountOut. Omitted when there are no offers.
	BestOfferID string `json:"bestOfferId,omitempty"`
}

type AcceptOfferResponse struct {
	// Base64 of the 32-byte settlement transaction digest
	Digest string `json:"digest" example:"q83vEjRWeJq83vEjRWeJq83vEjRWeJq83vEjRWeJq80="`
}

func newQuoteResponse(res *rfq.QuoteResult) QuoteResponse {
	out := QuoteResponse{
		QuoteMessage: codec.NewQuoteMessage(res.Quote),
		Offers:       make([]OfferResponse, 0, len(res.Offers)),
	}
	for _, o := range res.Offers {
		item := OfferResponse{
			ID:       o.ID,
			Deadline: o.Deadline,
			Solver:   codec.ByteArray(o.Solver()),
		}
		if o.Mode == domain.ExactAmountIn {
			item.AmountOut = codec.NewAmount(o.Amount)
		} else {
			item.AmountIn = codec.NewAmount(o.Amount)
		}
		out.Offers = append(out.Offers, item)
	}
	if res.Best != nil {
		out.BestOfferID = res.Best.ID
	}
	return out
}

// @Summary Request quotes
// @Description Admits a quote, broadcasts it to every connected solver and waits the collection window (3 s by default) before answering with the offers received.
// @Description
// @Description Exactly one of `exactAmountIn` and `exactAmountOut` must be set, matching `type`. Amounts are decimal strings of unsigned 256-bit integers.
// @Description `minDeadlineMs` (1 to 300000) is the minimum lifetime an offer must have from the quote's creation.
// @Tags quote
// @Accept json
// @Produce json
// @Param request body rfq.QuoteRequest true "Quote request"
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} httputil.ErrorResponse "bad_request or invalid_request"
// @Failure 429 {object} httputil.ErrorResponse "too_many_requests"
// @Router /quotes [post]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	var req rfq.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid json body")
		return
	}

	res, err := h.gateway.SubmitQuote(c.Request.Context(), &req)
	if err != nil {
		var verr *rfq.ValidationError
		if errors.As(err, &verr) {
			httputil.Error(c, common.NewHttpError(gohttp.StatusBadRequest, verr.Code, verr.Message))
			return
		}
		log.Error().Err(err).Msg("[QuoteHandler] quote submission failed")
		httputil.InternalError(c)
		return
	}

	httputil.Success(c, newQuoteResponse(res))
}

// @Summary Accept an offer
// @Description Submits the user's signed intent matching the quote together with the chosen solver's signed intent for on-chain settlement. Settlement is attempted exactly once.
// @Tags quote
// @Accept json
// @Produce json
// @Param offerId path string true "Offer id from the quote response"
// @Param request body codec.SignedMessageJSON true "User signed intent"
// @Success 200 {object} AcceptOfferResponse
// @Failure 400 {object} httputil.ErrorResponse "invalid_quote, invalid_intent, unsupported_algorithm or suintents_execute_intents_failed"
// @Failure 404 {object} httputil.ErrorResponse "quote_offer_not_found"
// @Failure 500 {object} httputil.ErrorResponse "internal_server_error"
// @Router /quotes/offers/{offerId}/accept [post]
func (h *QuoteHandler) acceptOffer(c *gin.Context) {
	var body codec.SignedMessageJSON
	if err := c.ShouldBindJSON(&body); err != nil {
		httputil.InvalidRequest(c, "publicKey, message and signature must be byte arrays")
		return
	}
	if len(body.PublicKey) == 0 || len(body.Message) == 0 || len(body.Signature) == 0 {
		httputil.InvalidRequest(c, "publicKey, message and signature are required")
		return
	}

	res, err := h.settlement.AcceptOffer(c.Request.Context(), c.Param("offerId"), body.SignedMessage())
	if err != nil {
		httputil.Error(c, acceptError(err))
		return
	}

	httputil.Success(c, AcceptOfferResponse{Digest: base64.StdEncoding.EncodeToString(res.Digest)})
}

func acceptError(err error) *common.HttpError {
	switch {
	case errors.Is(err, rfq.ErrOfferNotFound):
		return common.HTTPErrorQuoteOfferNotFound()
	case errors.Is(err, rfq.ErrInvalidQuote):
		return common.HTTPErrorInvalidQuote()
	case errors.Is(err, rfq.ErrUnsupportedAlgorithm):
		return common.HTTPErrorUnsupportedAlgorithm()
	case errors.Is(err, rfq.ErrIntentRejected):
		return common.HTTPErrorInvalidIntent()
	case errors.Is(err, rfq.ErrSettlementFailed):
		return common.HTTPErrorExecuteIntentsFailed()
	default:
		log.Error().Err(err).Msg("[QuoteHandler] offer acceptance failed")
		return common.HTTPErrorInternalError("")
	}
}
