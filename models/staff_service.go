package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffService marks a staff member as qualified to perform a service.
// Only (staff, service) pairs present here are eligible for slot generation.
type StaffService struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StaffID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_staff_service,unique" json:"staff_id"`
	Staff     BusinessStaff `gorm:"foreignKey:StaffID" json:"-"`
	ServiceID uuid.UUID     `gorm:"type:uuid;not null;index:idx_staff_service,unique" json:"service_id"`
	Service   Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func (ss *StaffService) BeforeCreate(tx *gorm.DB) error {
	if ss.ID == uuid.Nil {
		ss.ID = uuid.New()
	}
	return nil
}
