package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aura-survey/backend/internal/apperr"
	"github.com/aura-survey/backend/pkg/response"
)

// Status maps an apperr kind to its HTTP status code.
func Status(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err using its apperr kind. Persistence errors are attached to the
// gin context, where the request logger records the cause; the client only sees the message.
func WriteError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindPersistence {
		_ = c.Error(err)
	}
	c.JSON(Status(kind), response.ErrorBody{Error: apperr.Message(err)})
}
