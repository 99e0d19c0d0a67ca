package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/customeros/mailadmin/dto"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
)

const (
	CodeUnavailable = "TRANSPORT_UNAVAILABLE"
	CodeTimeout     = "TIMEOUT"
	CodeAuth        = "AUTH"
	CodeNotFound    = "NOT_FOUND"
	CodeBadRequest  = "BAD_REQUEST"
	CodeInternal    = "INTERNAL"
)

// HTTPStatus maps an error of the mail taxonomy onto a response status and
// a machine readable code. Anything outside the taxonomy is a 500.
func HTTPStatus(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, mailerrors.ErrTransportUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable
	case errors.Is(err, mailerrors.ErrTimeout):
		return http.StatusGatewayTimeout, CodeTimeout
	case errors.Is(err, mailerrors.ErrAuth), errors.Is(err, mailerrors.ErrMissingAuth):
		return http.StatusUnauthorized, CodeAuth
	case errors.Is(err, mailerrors.ErrNotFound), errors.Is(err, mailerrors.ErrNoContent):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, mailerrors.ErrInvalidIndex),
		errors.Is(err, mailerrors.ErrInvalidFolder),
		errors.Is(err, mailerrors.ErrInvalidRequest):
		return http.StatusBadRequest, CodeBadRequest
	default:
		var multi *MultiErrors
		if errors.As(err, &multi) {
			return http.StatusBadRequest, CodeBadRequest
		}
		return http.StatusInternalServerError, CodeInternal
	}
}

// Respond writes the error body with the status the error maps to and aborts
// the handler chain.
func Respond(c *gin.Context, err error) {
	status, code := HTTPStatus(err)
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Code:    code,
	})
}
