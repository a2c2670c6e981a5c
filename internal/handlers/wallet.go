package handlers

import (
	"carepay/internal/repositories"
	"carepay/internal/services/ledger"
	"carepay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledgerService ledger.Service
}

func NewWalletHandler(ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
	}
}

// GetWallet returns the caller's wallet, creating an empty one on first
// access.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallet, err := h.ledgerService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "Failed to get wallet")
	}

	return utils.Success(c, fiber.Map{
		"wallet": wallet,
	})
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.ParsePagination(c)
	txType := c.Query("type")

	txs, total, err := h.ledgerService.ListTransactions(c.Context(), claims.UserID, txType, p.Limit, p.Offset)
	if err != nil {
		return utils.InternalError(c, "Failed to list transactions")
	}

	return utils.Success(c, utils.Paged(txs, total, p))
}

// GetPlatformOverview returns the aggregated fee and earning totals across
// all wallets. Admin only.
func (h *WalletHandler) GetPlatformOverview(c *fiber.Ctx) error {
	totals, err := h.ledgerService.AggregatePlatformFees(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to aggregate totals")
	}

	return utils.Success(c, fiber.Map{
		"total_platform_fees":     totals.TotalPlatformFees,
		"total_earnings":          totals.TotalEarnings,
		"total_caregiver_balance": totals.TotalAvailable,
		"total_pending":           totals.TotalPending,
		"wallet_count":            totals.WalletCount,
	})
}

// SettleBooking forces settlement of one booking. Admin only.
func (h *WalletHandler) SettleBooking(c *fiber.Ctx) error {
	bookingID, err := c.ParamsInt("id")
	if err != nil || bookingID <= 0 {
		return utils.BadRequest(c, "Invalid booking id")
	}

	err = h.ledgerService.SettleBooking(c.Context(), uint(bookingID))
	switch err {
	case nil:
		return utils.Success(c, fiber.Map{"message": "Booking settled"})
	case repositories.ErrBookingNotFound:
		return utils.NotFound(c, "Booking not found")
	case ledger.ErrAlreadySettled:
		return utils.Conflict(c, "Booking already settled")
	case ledger.ErrBookingNotSettleable:
		return utils.UnprocessableEntity(c, "Booking is not eligible for settlement")
	default:
		return utils.InternalError(c, "Failed to settle booking")
	}
}

// SettleDueBookings runs the settlement sweep over all due bookings. Admin
// only.
func (h *WalletHandler) SettleDueBookings(c *fiber.Ctx) error {
	settled, err := h.ledgerService.SettleDueBookings(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to run settlement")
	}
	return utils.Success(c, fiber.Map{"settled": settled})
}
