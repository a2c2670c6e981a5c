// Package withdrawal runs the admin withdrawal pipeline: fee-pool accounting,
// payout initiation through the gateway and status reconciliation.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"carepay/internal/models"
	"carepay/internal/repositories"
	"carepay/internal/services/gateway"
	"carepay/internal/services/ledger"
	"carepay/internal/services/notification"
)

var (
	ErrBelowMinimum        = fmt.Errorf("withdrawal amount must be at least %d", models.MinWithdrawalAmount)
	ErrNoBankAccount       = errors.New("no bank account registered")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrNotFound            = errors.New("withdrawal not found")
)

// BalanceReport is the admin's view of the platform fee pool and the money
// still sitting in caregiver wallets.
type BalanceReport struct {
	TotalPlatformFees     int64 `json:"total_platform_fees"`
	TotalWithdrawn        int64 `json:"total_withdrawn"`
	Reserved              int64 `json:"reserved"`
	Available             int64 `json:"available"`
	TotalCaregiverBalance int64 `json:"total_caregiver_balance"`
	TotalPending          int64 `json:"total_pending"`
}

// Gateway is the payment provider surface the service needs.
type Gateway interface {
	CreatePayout(ctx context.Context, req gateway.PayoutRequest) (*gateway.PaymentResult, error)
	CheckStatus(ctx context.Context, orderCode string) (*gateway.StatusResult, error)
}

// Service is the admin withdrawal API.
type Service interface {
	AvailableBalance(ctx context.Context) (*BalanceReport, error)
	Initiate(ctx context.Context, adminID uint, amount int64, note string) (*models.AdminWithdrawal, error)
	CheckStatus(ctx context.Context, adminID uint, orderCode string) (*models.AdminWithdrawal, error)
	// ReconcileOrder applies a gateway-reported final status; used by the
	// webhook handler.
	ReconcileOrder(ctx context.Context, orderCode string, gatewayStatus string, raw models.JSON) (*models.AdminWithdrawal, error)
	History(ctx context.Context, adminID uint, status models.WithdrawalStatus, limit, offset int) ([]models.AdminWithdrawal, int64, error)
}

type service struct {
	repo      repositories.WithdrawalRepository
	accounts  repositories.BankAccountRepository
	ledger    ledger.Service
	gateway   Gateway
	publisher notification.Publisher
}

// NewService creates a new withdrawal service.
func NewService(
	repo repositories.WithdrawalRepository,
	accounts repositories.BankAccountRepository,
	ledgerSvc ledger.Service,
	gw Gateway,
	publisher notification.Publisher,
) Service {
	if repo == nil {
		panic("withdrawal repository is required")
	}
	if accounts == nil {
		panic("bank account repository is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if gw == nil {
		panic("gateway is required")
	}
	if publisher == nil {
		publisher = notification.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		accounts:  accounts,
		ledger:    ledgerSvc,
		gateway:   gw,
		publisher: publisher,
	}
}

func (s *service) AvailableBalance(ctx context.Context) (*BalanceReport, error) {
	totals, err := s.ledger.AggregatePlatformFees(ctx)
	if err != nil {
		return nil, err
	}
	reserved, err := s.repo.SumReserved(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.SumCompleted(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceReport{
		TotalPlatformFees:     totals.TotalPlatformFees,
		TotalWithdrawn:        completed,
		Reserved:              reserved - completed,
		Available:             totals.TotalPlatformFees - reserved,
		TotalCaregiverBalance: totals.TotalAvailable,
		TotalPending:          totals.TotalPending,
	}, nil
}

// Initiate reserves the amount against the fee pool and sends the payout to
// the gateway. The reservation happens before the gateway call so that a
// concurrent withdrawal can never spend the same funds; a gateway failure
// releases it by marking the record failed.
func (s *service) Initiate(ctx context.Context, adminID uint, amount int64, note string) (*models.AdminWithdrawal, error) {
	if amount < models.MinWithdrawalAmount {
		return nil, ErrBelowMinimum
	}

	account, err := s.accounts.GetByAdminID(adminID)
	if err == repositories.ErrBankAccountNotFound {
		return nil, ErrNoBankAccount
	}
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrNoBankAccount
	}

	w := &models.AdminWithdrawal{
		AdminID: adminID,
		Amount:  amount,
		Bank:    account.Details(),
		Note:    note,
	}
	if err := s.repo.CreateReserved(ctx, w); err != nil {
		if err == repositories.ErrInsufficientFeePool {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	result, err := s.gateway.CreatePayout(ctx, gateway.PayoutRequest{
		Kind:        gateway.PayoutKindAdmin,
		Amount:      amount,
		Description: fmt.Sprintf("Admin withdrawal #%d", w.ID),
		Bank:        w.Bank,
	})
	if err != nil {
		s.markFailed(ctx, w, err.Error(), nil)
		return nil, err
	}

	w.GatewayOrderCode = result.OrderCode
	w.GatewayResponse = result.Raw
	if !result.Success {
		s.markFailed(ctx, w, result.Error, result.Raw)
		return w, nil
	}

	w.GatewayTransactionID = result.TransactionID

	// An accepted payout is done unless the gateway explicitly reports it
	// still in flight; those are finished by CheckStatus or the webhook.
	if result.Status == gateway.OrderStatusPending || result.Status == gateway.OrderStatusProcessing {
		if err := s.repo.Update(w); err != nil {
			return nil, err
		}
		return w, nil
	}

	now := time.Now()
	w.Status = models.WithdrawalCompleted
	w.CompletedAt = &now
	if err := s.repo.Update(w); err != nil {
		return nil, err
	}
	s.publish(ctx, notification.RouteWithdrawalCompleted, w)
	return w, nil
}

func (s *service) CheckStatus(ctx context.Context, adminID uint, orderCode string) (*models.AdminWithdrawal, error) {
	w, err := s.repo.GetByOrderCode(adminID, orderCode)
	if err == repositories.ErrWithdrawalNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return w, nil
	}

	result, err := s.gateway.CheckStatus(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		// Gateway unreachable; leave the record processing.
		return w, nil
	}
	return s.applyGatewayStatus(ctx, w, result.Status, result.Raw)
}

func (s *service) ReconcileOrder(ctx context.Context, orderCode string, gatewayStatus string, raw models.JSON) (*models.AdminWithdrawal, error) {
	w, err := s.repo.GetByOrderCodeAny(orderCode)
	if err == repositories.ErrWithdrawalNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return w, nil
	}
	return s.applyGatewayStatus(ctx, w, gatewayStatus, raw)
}

func (s *service) History(ctx context.Context, adminID uint, status models.WithdrawalStatus, limit, offset int) ([]models.AdminWithdrawal, int64, error) {
	return s.repo.List(ctx, adminID, status, limit, offset)
}

func (s *service) applyGatewayStatus(ctx context.Context, w *models.AdminWithdrawal, gatewayStatus string, raw models.JSON) (*models.AdminWithdrawal, error) {
	switch gatewayStatus {
	case gateway.OrderStatusPaid:
		if !w.Status.CanTransitionTo(models.WithdrawalCompleted) {
			return w, nil
		}
		now := time.Now()
		w.Status = models.WithdrawalCompleted
		w.CompletedAt = &now
		if raw != nil {
			w.GatewayResponse = raw
		}
		if err := s.repo.Update(w); err != nil {
			return nil, err
		}
		s.publish(ctx, notification.RouteWithdrawalCompleted, w)
	case gateway.OrderStatusCancelled:
		if !w.Status.CanTransitionTo(models.WithdrawalFailed) {
			return w, nil
		}
		s.markFailed(ctx, w, "cancelled or expired", raw)
	}
	return w, nil
}

func (s *service) markFailed(ctx context.Context, w *models.AdminWithdrawal, reason string, raw models.JSON) {
	w.Status = models.WithdrawalFailed
	w.FailureReason = reason
	if raw != nil {
		w.GatewayResponse = raw
	}
	if err := s.repo.Update(w); err != nil {
		log.Printf("failed to mark withdrawal %d failed: %v", w.ID, err)
		return
	}
	s.publish(ctx, notification.RouteWithdrawalFailed, w)
}

func (s *service) publish(ctx context.Context, route string, w *models.AdminWithdrawal) {
	event := notification.NewEvent(route, map[string]interface{}{
		"withdrawal_id": w.ID,
		"admin_id":      w.AdminID,
		"amount":        w.Amount,
		"order_code":    w.GatewayOrderCode,
		"status":        string(w.Status),
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event: %v", route, err)
	}
}
