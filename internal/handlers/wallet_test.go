package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"carepay/internal/repositories"
	"carepay/internal/services/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLedger overrides only the settlement entry point.
type stubLedger struct {
	ledger.Service
	settleErr error
}

func (s *stubLedger) SettleBooking(context.Context, uint) error { return s.settleErr }

func TestSettleBookingStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"settled", nil, fiber.StatusOK},
		{"unknown booking", repositories.ErrBookingNotFound, fiber.StatusNotFound},
		{"already settled", ledger.ErrAlreadySettled, fiber.StatusConflict},
		{"not eligible", ledger.ErrBookingNotSettleable, fiber.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := NewWalletHandler(&stubLedger{settleErr: tt.err})
			app.Post("/admin/bookings/:id/settle", h.SettleBooking)

			req := httptest.NewRequest(http.MethodPost, "/admin/bookings/10/settle", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
