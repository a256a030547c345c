package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
	SlotStatusBlocked   SlotStatus = "blocked"
)

// UUIDList stores a list of UUIDs as a JSON array in a TEXT column.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *UUIDList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("cannot scan %T into UUIDList", value)
}

// Contains reports whether id is already in the list.
func (l UUIDList) Contains(id uuid.UUID) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Slot is a single bookable time interval for one staff member performing
// one service. Its length always equals the service's duration; changing
// time, staff or service means delete-and-recreate, never an in-place edit.
type Slot struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"business_id"`
	StaffID            uuid.UUID     `gorm:"type:uuid;not null;index" json:"staff_id"`
	Staff              BusinessStaff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	ServiceID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"service_id"`
	Service            Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	ShiftID            *uuid.UUID    `gorm:"type:uuid;index" json:"shift_id,omitempty"` // generating roster entry, display only
	StartTime          time.Time     `gorm:"not null;index" json:"start_time"`
	EndTime            time.Time     `gorm:"not null" json:"end_time"`
	Status             SlotStatus    `gorm:"default:available;index" json:"status"`
	GeneratedFor       time.Time     `gorm:"type:date;index" json:"generated_for"`
	ConflictingSlotIDs UUIDList      `gorm:"type:text" json:"conflicting_slot_ids"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Overlaps reports whether two half-open time intervals intersect.
func (s *Slot) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && start.Before(s.EndTime)
}

// AllowedSlotTransitions defines the valid slot status state machine.
// Available slots can be claimed or blocked; booked slots can be cancelled
// back to available or blocked by the operator; blocked slots can be
// released back to available.
var AllowedSlotTransitions = map[SlotStatus][]SlotStatus{
	SlotStatusAvailable: {SlotStatusBooked, SlotStatusBlocked},
	SlotStatusBooked:    {SlotStatusAvailable, SlotStatusBlocked},
	SlotStatusBlocked:   {SlotStatusAvailable},
}

// IsValidSlotTransition checks if a slot status transition is allowed.
func IsValidSlotTransition(from, to SlotStatus) bool {
	allowed, exists := AllowedSlotTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
