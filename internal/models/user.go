package models

import "time"

// Application roles
const (
	RoleAdmin      = "admin"
	RoleCaregiver  = "caregiver"
	RoleCareseeker = "careseeker"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Phone     string    `json:"phone"`
	Role      string    `gorm:"not null;default:'careseeker'" json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsParticipantOf reports whether the user is one of the two booking parties.
func (u *User) IsParticipantOf(b *Booking) bool {
	return b != nil && (b.CaregiverID == u.ID || b.CareseekerID == u.ID)
}
