package repositories

import (
	"context"
	"fmt"
	"time"

	"carepay/internal/models"

	"gorm.io/gorm"
)

// BookingRepository reads and updates bookings for settlement purposes.
type BookingRepository interface {
	GetByID(id uint) (*models.Booking, error)
	Update(booking *models.Booking) error
	// ListSettleable returns completed, paid, untransferred bookings whose
	// payment cleared before the cutoff.
	ListSettleable(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetByID(id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.First(&booking, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Update(booking *models.Booking) error {
	if err := r.db.Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) ListSettleable(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND transferred_to_caregiver = ? AND paid_at <= ?",
			models.BookingStatusCompleted, models.PaymentStatusPaid, false, cutoff).
		Order("paid_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list settleable bookings: %w", err)
	}
	return bookings, nil
}
