package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"pizzadelivery/internal/cart"
	"pizzadelivery/internal/identity"
	"pizzadelivery/internal/order"
)

func TestStatusFromErr(t *testing.T) {
	t.Run("invalid input -> 400", func(t *testing.T) {
		gotStatus, gotCode := statusFromErr(identity.ErrInvalidInput)
		if gotStatus != http.StatusBadRequest || gotCode != "INVALID_INPUT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("fake product -> 400", func(t *testing.T) {
		gotStatus, gotCode := statusFromErr(order.ErrFakeProduct)
		if gotStatus != http.StatusBadRequest || gotCode != "FAKE_PRODUCT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("invalid token -> 401", func(t *testing.T) {
		gotStatus, gotCode := statusFromErr(identity.ErrInvalidToken)
		if gotStatus != http.StatusUnauthorized || gotCode != "UNAUTHORIZED" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("email taken -> 409", func(t *testing.T) {
		gotStatus, gotCode := statusFromErr(identity.ErrEmailTaken)
		if gotStatus != http.StatusConflict || gotCode != "EMAIL_TAKEN" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("unknown cart -> 404", func(t *testing.T) {
		gotStatus, gotCode := statusFromErr(order.ErrUnknownCart)
		if gotStatus != http.StatusNotFound || gotCode != "NOT_FOUND" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("payment failure -> 502", func(t *testing.T) {
		gotStatus, gotCode := statusFromErr(order.ErrPaymentFailed)
		if gotStatus != http.StatusBadGateway || gotCode != "UPSTREAM_FAILURE" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("wrapped errors still match", func(t *testing.T) {
		err := fmt.Errorf("create cart: %w", cart.ErrUnknownItem)
		gotStatus, gotCode := statusFromErr(err)
		if gotStatus != http.StatusBadRequest || gotCode != "FAKE_PRODUCT" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})

	t.Run("unmapped error -> 500", func(t *testing.T) {
		gotStatus, gotCode := statusFromErr(errors.New("boom"))
		if gotStatus != http.StatusInternalServerError || gotCode != "INTERNAL" {
			t.Fatalf("got (%d,%s)", gotStatus, gotCode)
		}
	})
}
