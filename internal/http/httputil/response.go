package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/rfq-engine/internal/common"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"minDeadlineMs is required"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error aborts the request with err's status and body.
func Error(c *gin.Context, err *common.HttpError) {
	c.AbortWithStatusJSON(err.StatusCode, ErrorResponse{
		Code:    err.Code,
		Message: err.Message,
	})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, common.HTTPErrorBadRequest(msg))
}

func InvalidRequest(c *gin.Context, msg string) {
	Error(c, common.HTTPErrorInvalidRequest(msg))
}

func InternalError(c *gin.Context) {
	Error(c, common.HTTPErrorInternalError(""))
}
