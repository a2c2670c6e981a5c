// Package ledger maintains the per-caregiver wallet ledger: settlement of
// completed bookings, the append-only transaction log and the running
// balance totals everything else reads from.
package ledger

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"carepay/internal/models"
	"carepay/internal/repositories"
	"carepay/internal/services/notification"
)

// Cache is the wallet read-cache surface the service needs. A nil cache
// disables caching.
type Cache interface {
	GetWallet(ctx context.Context, caregiverID uint) (*models.Wallet, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, caregiverID uint) error
}

// Service is the wallet ledger API.
type Service interface {
	GetWallet(ctx context.Context, caregiverID uint) (*models.Wallet, error)
	RecordTransaction(ctx context.Context, caregiverID uint, tx *models.WalletTransaction) error
	RecordRefund(ctx context.Context, caregiverID uint, bookingID uint, amount int64, description string) error
	AddPending(ctx context.Context, caregiverID uint, amount int64) error
	SettleBooking(ctx context.Context, bookingID uint) error
	SettleDueBookings(ctx context.Context) (int, error)
	ListTransactions(ctx context.Context, caregiverID uint, txType string, limit, offset int) ([]models.WalletTransaction, int64, error)
	AggregatePlatformFees(ctx context.Context) (*repositories.WalletTotals, error)
}

type service struct {
	repo      repositories.WalletRepository
	bookings  repositories.BookingRepository
	cache     Cache
	publisher notification.Publisher
}

// NewService creates a new ledger service.
func NewService(repo repositories.WalletRepository, bookings repositories.BookingRepository, cache Cache, publisher notification.Publisher) Service {
	if repo == nil {
		panic("wallet repository is required")
	}
	if bookings == nil {
		panic("booking repository is required")
	}
	if publisher == nil {
		publisher = notification.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		bookings:  bookings,
		cache:     cache,
		publisher: publisher,
	}
}

// PlatformFee returns the platform's cut of a booking total, rounded to the
// nearest unit.
func PlatformFee(total int64) int64 {
	return int64(math.Round(float64(total) * PlatformFeePercent / 100.0))
}

// applyTransaction mutates the wallet totals for one ledger entry and
// enforces the sign conventions: earnings and deposits are positive,
// platform fees, refunds and withdrawals negative. Balances never go
// negative.
func applyTransaction(wallet *models.Wallet, tx *models.WalletTransaction) error {
	switch tx.Type {
	case models.TransactionTypeEarning:
		if tx.Amount <= 0 {
			return ErrInvalidAmount
		}
		wallet.AvailableBalance += tx.Amount
		wallet.TotalEarnings += tx.Amount
	case models.TransactionTypeDeposit:
		if tx.Amount <= 0 {
			return ErrInvalidAmount
		}
		wallet.AvailableBalance += tx.Amount
	case models.TransactionTypePlatformFee:
		if tx.Amount >= 0 {
			return ErrInvalidAmount
		}
		wallet.TotalPlatformFees += -tx.Amount
	case models.TransactionTypeRefund:
		if tx.Amount >= 0 {
			return ErrInvalidAmount
		}
		if wallet.TotalPlatformFees+tx.Amount < 0 {
			return ErrFeePoolExhausted
		}
		wallet.TotalPlatformFees += tx.Amount
	case models.TransactionTypeWithdrawal:
		if tx.Amount >= 0 {
			return ErrInvalidAmount
		}
		if wallet.AvailableBalance+tx.Amount < 0 {
			return ErrInsufficientBalance
		}
		wallet.AvailableBalance += tx.Amount
	default:
		return ErrUnknownTransaction
	}
	wallet.LastUpdated = time.Now()
	return nil
}

func (s *service) GetWallet(ctx context.Context, caregiverID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, err := s.cache.GetWallet(ctx, caregiverID); err == nil && wallet != nil {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetByCaregiverID(caregiverID)
	if err == repositories.ErrWalletNotFound {
		wallet = &models.Wallet{CaregiverID: caregiverID, LastUpdated: time.Now()}
		if err := s.repo.Create(wallet); err != nil {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheWallet(ctx, wallet); err != nil {
			log.Printf("failed to cache wallet %d: %v", caregiverID, err)
		}
	}
	return wallet, nil
}

func (s *service) RecordTransaction(ctx context.Context, caregiverID uint, tx *models.WalletTransaction) error {
	if tx.Amount == 0 {
		return ErrInvalidAmount
	}

	err := s.repo.ExecuteInTransaction(func(txRepo repositories.WalletRepository) error {
		wallet, err := lockOrCreateWallet(txRepo, caregiverID)
		if err != nil {
			return err
		}

		if err := applyTransaction(wallet, tx); err != nil {
			return err
		}

		now := time.Now()
		tx.WalletID = wallet.ID
		tx.Status = models.TransactionStatusCompleted
		tx.ProcessedAt = &now
		if err := txRepo.CreateTransaction(tx); err != nil {
			return err
		}
		return txRepo.Update(wallet)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, caregiverID)
	return nil
}

func (s *service) RecordRefund(ctx context.Context, caregiverID uint, bookingID uint, amount int64, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.RecordTransaction(ctx, caregiverID, &models.WalletTransaction{
		BookingID:   &bookingID,
		Type:        models.TransactionTypeRefund,
		Amount:      -amount,
		Description: description,
	})
}

func (s *service) AddPending(ctx context.Context, caregiverID uint, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	err := s.repo.ExecuteInTransaction(func(txRepo repositories.WalletRepository) error {
		wallet, err := lockOrCreateWallet(txRepo, caregiverID)
		if err != nil {
			return err
		}
		wallet.PendingAmount += amount
		wallet.LastUpdated = time.Now()
		return txRepo.Update(wallet)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, caregiverID)
	return nil
}

func (s *service) SettleBooking(ctx context.Context, bookingID uint) error {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking.TransferredToCaregiver {
		return ErrAlreadySettled
	}
	if booking.Status != models.BookingStatusCompleted || booking.PaymentStatus != models.PaymentStatusPaid {
		return ErrBookingNotSettleable
	}

	fee := PlatformFee(booking.TotalPrice)
	net := booking.TotalPrice - fee

	err = s.repo.ExecuteInTransaction(func(txRepo repositories.WalletRepository) error {
		settled, err := txRepo.HasBookingEarning(bookingID)
		if err != nil {
			return err
		}
		if settled {
			return ErrAlreadySettled
		}

		wallet, err := lockOrCreateWallet(txRepo, booking.CaregiverID)
		if err != nil {
			return err
		}

		now := time.Now()
		earning := &models.WalletTransaction{
			WalletID:    wallet.ID,
			BookingID:   &booking.ID,
			Type:        models.TransactionTypeEarning,
			Amount:      net,
			Description: fmt.Sprintf("Earnings for booking #%d", booking.ID),
			Status:      models.TransactionStatusCompleted,
			ProcessedAt: &now,
		}
		if err := applyTransaction(wallet, earning); err != nil {
			return err
		}
		if err := txRepo.CreateTransaction(earning); err != nil {
			return err
		}

		feeTx := &models.WalletTransaction{
			WalletID:    wallet.ID,
			BookingID:   &booking.ID,
			Type:        models.TransactionTypePlatformFee,
			Amount:      -fee,
			Description: fmt.Sprintf("Platform fee (%d%%) for booking #%d", PlatformFeePercent, booking.ID),
			Status:      models.TransactionStatusCompleted,
			ProcessedAt: &now,
		}
		if err := applyTransaction(wallet, feeTx); err != nil {
			return err
		}
		if err := txRepo.CreateTransaction(feeTx); err != nil {
			return err
		}

		if wallet.PendingAmount >= booking.TotalPrice {
			wallet.PendingAmount -= booking.TotalPrice
		} else {
			wallet.PendingAmount = 0
		}
		return txRepo.Update(wallet)
	})
	if err != nil {
		return err
	}

	now := time.Now()
	booking.TransferredToCaregiver = true
	booking.TransferredAt = &now
	if err := s.bookings.Update(booking); err != nil {
		return err
	}

	s.invalidate(ctx, booking.CaregiverID)

	event := notification.NewEvent(notification.RouteBookingSettled, map[string]interface{}{
		"booking_id":   booking.ID,
		"caregiver_id": booking.CaregiverID,
		"net_amount":   net,
		"platform_fee": fee,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event: %v", notification.RouteBookingSettled, err)
	}
	return nil
}

func (s *service) SettleDueBookings(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-SettlementDelay)
	bookings, err := s.bookings.ListSettleable(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, booking := range bookings {
		if err := s.SettleBooking(ctx, booking.ID); err != nil {
			if err == ErrAlreadySettled {
				continue
			}
			log.Printf("failed to settle booking %d: %v", booking.ID, err)
			continue
		}
		settled++
	}
	return settled, nil
}

func (s *service) ListTransactions(ctx context.Context, caregiverID uint, txType string, limit, offset int) ([]models.WalletTransaction, int64, error) {
	wallet, err := s.repo.GetByCaregiverID(caregiverID)
	if err == repositories.ErrWalletNotFound {
		return []models.WalletTransaction{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListTransactions(ctx, wallet.ID, txType, limit, offset)
}

func (s *service) AggregatePlatformFees(ctx context.Context) (*repositories.WalletTotals, error) {
	return s.repo.Totals(ctx)
}

func (s *service) invalidate(ctx context.Context, caregiverID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWallet(ctx, caregiverID); err != nil {
		log.Printf("failed to invalidate wallet cache %d: %v", caregiverID, err)
	}
}

func lockOrCreateWallet(repo repositories.WalletRepository, caregiverID uint) (*models.Wallet, error) {
	wallet, err := repo.GetByCaregiverIDForUpdate(caregiverID)
	if err == repositories.ErrWalletNotFound {
		wallet = &models.Wallet{CaregiverID: caregiverID, LastUpdated: time.Now()}
		if err := repo.Create(wallet); err != nil {
			return nil, err
		}
		return repo.GetByCaregiverIDForUpdate(caregiverID)
	}
	if err != nil {
		return nil, err
	}
	return wallet, nil
}
