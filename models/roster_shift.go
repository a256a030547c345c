package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RosterStatus string

const (
	RosterStatusScheduled RosterStatus = "scheduled"
	RosterStatusWorking   RosterStatus = "working"
	RosterStatusCompleted RosterStatus = "completed"
	RosterStatusLeave     RosterStatus = "leave"
	RosterStatusSick      RosterStatus = "sick"
	RosterStatusAbsent    RosterStatus = "absent"
)

// NonWorkingRosterStatuses are roster states that produce no bookable slots.
var NonWorkingRosterStatuses = []RosterStatus{
	RosterStatusLeave,
	RosterStatusSick,
	RosterStatusAbsent,
}

// IsNonWorking reports whether a roster status means the staff member is off
// for the day and must not be offered for booking.
func (s RosterStatus) IsNonWorking() bool {
	for _, ns := range NonWorkingRosterStatuses {
		if s == ns {
			return true
		}
	}
	return false
}

// RosterShift assigns one shift template to one staff member for one
// calendar date. At most one roster entry exists per (staff, date).
type RosterShift struct {
	ID         uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID     `gorm:"type:uuid;not null;index" json:"business_id"`
	StaffID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_roster_staff_date,unique" json:"staff_id"`
	Staff      BusinessStaff `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	TemplateID uuid.UUID     `gorm:"type:uuid;not null;index" json:"template_id"`
	Template   ShiftTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Date       time.Time     `gorm:"type:date;not null;index:idx_roster_staff_date,unique" json:"date"`
	Status     RosterStatus  `gorm:"default:scheduled" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (r *RosterShift) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AllowedRosterTransitions defines the valid roster status state machine.
// Scheduled shifts can move into an absence state and back, so owners can
// correct mistakes; completed is terminal.
var AllowedRosterTransitions = map[RosterStatus][]RosterStatus{
	RosterStatusScheduled: {RosterStatusWorking, RosterStatusLeave, RosterStatusSick, RosterStatusAbsent},
	RosterStatusWorking:   {RosterStatusCompleted, RosterStatusAbsent},
	RosterStatusCompleted: {},
	RosterStatusLeave:     {RosterStatusScheduled},
	RosterStatusSick:      {RosterStatusScheduled},
	RosterStatusAbsent:    {RosterStatusScheduled},
}

// IsValidRosterTransition checks if a roster status transition is allowed.
func IsValidRosterTransition(from, to RosterStatus) bool {
	allowed, exists := AllowedRosterTransitions[from]
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
