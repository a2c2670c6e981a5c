package models

import "time"

// Booking statuses relevant to settlement. The booking module itself lives
// outside this service; we only read the facts settlement needs.
const (
	BookingStatusCompleted = "completed"

	PaymentStatusPaid = "paid"
)

type Booking struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	CaregiverID   uint       `gorm:"not null;index" json:"caregiver_id"`
	CareseekerID  uint       `gorm:"not null;index" json:"careseeker_id"`
	BookingDate   time.Time  `json:"booking_date"`
	DurationHours int        `json:"duration_hours"`
	TotalPrice    int64      `gorm:"not null" json:"total_price"`
	Status        string     `gorm:"not null;default:'pending'" json:"status"`
	PaymentStatus string     `gorm:"not null;default:'unpaid'" json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`

	// Settlement bookkeeping: set once the caregiver has been credited.
	TransferredToCaregiver bool       `gorm:"not null;default:false" json:"transferred_to_caregiver"`
	TransferredAt          *time.Time `json:"transferred_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OtherParticipant returns the counterparty of userID on this booking, or 0
// if userID is not a participant.
func (b *Booking) OtherParticipant(userID uint) uint {
	switch userID {
	case b.CaregiverID:
		return b.CareseekerID
	case b.CareseekerID:
		return b.CaregiverID
	default:
		return 0
	}
}
