package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/configproxy/core/internal/client"
	"github.com/configproxy/core/internal/resolver"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// HeaderComponentServerError tells the caller whether the failure came from
// the component server (true) or from this proxy (false).
const HeaderComponentServerError = "X-Component-Server-Error"

const (
	CodeInvalidPayload         = "INVALID_PAYLOAD"
	CodePayloadTooLarge        = "PAYLOAD_TOO_LARGE"
	CodeUpstreamError          = "UPSTREAM_ERROR"
	CodeUpstreamInvalidPayload = "UPSTREAM_INVALID_PAYLOAD"
	CodeUpstreamUnavailable    = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamTimeout        = "UPSTREAM_TIMEOUT"
)

type ErrorPayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	if re, ok := resolver.AsResolutionError(err); ok {
		c.Header(HeaderComponentServerError, "false")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorPayload{
			Code:        re.Kind.String(),
			Description: re.Message,
		})
		return
	}

	c.Header(HeaderComponentServerError, "true")

	var (
		upstream *client.UpstreamError
		invalid  *client.InvalidPayloadError
	)
	switch {
	case errors.As(err, &upstream):
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorPayload{Code: CodeUpstreamError, Description: upstream.Error()})
	case errors.As(err, &invalid):
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorPayload{Code: CodeUpstreamInvalidPayload, Description: invalid.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, ErrorPayload{Code: CodeUpstreamTimeout, Description: err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorPayload{Code: CodeUpstreamUnavailable, Description: err.Error()})
	}
}

func writeBadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Header(HeaderComponentServerError, "false")

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorPayload{
			Code:        CodePayloadTooLarge,
			Description: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorPayload{Code: CodeInvalidPayload, Description: err.Error()})
}
