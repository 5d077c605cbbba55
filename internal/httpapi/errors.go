package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pizzadelivery/internal/cart"
	"pizzadelivery/internal/identity"
	"pizzadelivery/internal/order"
	"pizzadelivery/internal/store"
)

// statusFromErr maps domain errors onto the normalized HTTP taxonomy:
// client mistakes 400, auth failures 401, missing things 404, duplicate
// signups 409, collaborator failures 502, everything else 500.
func statusFromErr(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrInvalidInput),
		errors.Is(err, cart.ErrInvalidInput),
		errors.Is(err, order.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"

	case errors.Is(err, cart.ErrUnknownItem),
		errors.Is(err, order.ErrFakeProduct):
		return http.StatusBadRequest, "FAKE_PRODUCT"

	case errors.Is(err, identity.ErrTokenExpired):
		return http.StatusBadRequest, "TOKEN_EXPIRED"

	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized, "UNAUTHORIZED"

	case errors.Is(err, identity.ErrEmailTaken):
		return http.StatusConflict, "EMAIL_TAKEN"

	case errors.Is(err, identity.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrUnknownCart),
		errors.Is(err, order.ErrUnknownUser),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"

	case errors.Is(err, order.ErrPaymentFailed),
		errors.Is(err, order.ErrNotificationFailed):
		return http.StatusBadGateway, "UPSTREAM_FAILURE"

	case errors.Is(err, identity.ErrCascadeIncomplete):
		// The user record is gone; the response names what survived.
		return http.StatusInternalServerError, "CASCADE_INCOMPLETE"

	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := statusFromErr(err)

	msg := err.Error()
	if code == "INTERNAL" {
		// Store and I/O detail stays in the logs, not on the wire.
		s.log.Error("request failed", slog.String("path", c.FullPath()), slog.Any("err", err))
		msg = "internal error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}
