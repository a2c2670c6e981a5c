package handlers

import (
	"carepay/internal/models"
	"carepay/internal/services/bankaccount"
	"carepay/internal/services/withdrawal"
	"carepay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WithdrawalHandler struct {
	withdrawalService withdrawal.Service
	accountService    bankaccount.Service
}

func NewWithdrawalHandler(withdrawalService withdrawal.Service, accountService bankaccount.Service) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
		accountService:    accountService,
	}
}

func (h *WithdrawalHandler) GetBalance(c *fiber.Ctx) error {
	report, err := h.withdrawalService.AvailableBalance(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to compute balance")
	}
	return utils.Success(c, report)
}

func (h *WithdrawalHandler) GetBankAccount(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	account, err := h.accountService.Get(claims.UserID)
	if err == bankaccount.ErrNotFound {
		return utils.NotFound(c, "No bank account registered")
	}
	if err != nil {
		return utils.InternalError(c, "Failed to get bank account")
	}
	return utils.Success(c, fiber.Map{"bank_account": account})
}

func (h *WithdrawalHandler) UpsertBankAccount(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		BankName      string `json:"bank_name"`
		BankCode      string `json:"bank_code"`
		AccountNumber string `json:"account_number"`
		AccountName   string `json:"account_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	account, err := h.accountService.Upsert(claims.UserID, models.BankDetails{
		BankName:      input.BankName,
		BankCode:      input.BankCode,
		AccountNumber: input.AccountNumber,
		AccountName:   input.AccountName,
	})
	if err == bankaccount.ErrIncompleteDetails {
		return utils.BadRequest(c, err.Error())
	}
	if err != nil {
		return utils.InternalError(c, "Failed to save bank account")
	}
	return utils.Success(c, fiber.Map{"bank_account": account})
}

func (h *WithdrawalHandler) Initiate(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount int64  `json:"amount"`
		Note   string `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	w, err := h.withdrawalService.Initiate(c.Context(), claims.UserID, input.Amount, input.Note)
	switch err {
	case nil:
	case withdrawal.ErrBelowMinimum:
		return utils.BadRequest(c, err.Error())
	case withdrawal.ErrNoBankAccount:
		return utils.UnprocessableEntity(c, "Register a bank account before withdrawing")
	case withdrawal.ErrInsufficientBalance:
		return utils.UnprocessableEntity(c, "Insufficient available balance")
	default:
		return utils.InternalError(c, "Failed to initiate withdrawal")
	}

	return utils.Created(c, fiber.Map{"withdrawal": w})
}

func (h *WithdrawalHandler) CheckStatus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	orderCode := c.Params("orderCode")
	if orderCode == "" {
		return utils.BadRequest(c, "Missing order code")
	}

	w, err := h.withdrawalService.CheckStatus(c.Context(), claims.UserID, orderCode)
	if err == withdrawal.ErrNotFound {
		return utils.NotFound(c, "Withdrawal not found")
	}
	if err != nil {
		return utils.InternalError(c, "Failed to check withdrawal status")
	}
	return utils.Success(c, fiber.Map{"withdrawal": w})
}

func (h *WithdrawalHandler) History(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.ParsePagination(c)
	status := models.WithdrawalStatus(c.Query("status"))

	ws, total, err := h.withdrawalService.History(c.Context(), claims.UserID, status, p.Limit, p.Offset)
	if err != nil {
		return utils.InternalError(c, "Failed to list withdrawals")
	}
	return utils.Success(c, utils.Paged(ws, total, p))
}
