package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftType string

const (
	ShiftTypeRegular  ShiftType = "regular"
	ShiftTypeOvertime ShiftType = "overtime"
	ShiftTypeHoliday  ShiftType = "holiday"
	ShiftTypeLeave    ShiftType = "leave"
)

type BreakType string

const (
	BreakTypeLunch  BreakType = "lunch"
	BreakTypeCoffee BreakType = "coffee"
	BreakTypeRest   BreakType = "rest"
)

// IntList stores a list of ints as a JSON array in a TEXT column,
// so the same model works on both postgres and sqlite.
type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *IntList) Scan(value interface{}) error {
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
	return fmt.Errorf("cannot scan %T into IntList", value)
}

// ShiftTemplate is a reusable definition of a working window plus breaks.
// Times are "HH:MM" in the business's local day; no timezone conversion
// happens at this layer.
type ShiftTemplate struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID uuid.UUID      `gorm:"type:uuid;not null;index" json:"business_id"`
	Business   Business       `gorm:"foreignKey:BusinessID" json:"-"`
	Name       string         `gorm:"not null" json:"name"`
	StartTime  string         `gorm:"not null;default:'09:00'" json:"start_time"`
	EndTime    string         `gorm:"not null;default:'17:00'" json:"end_time"`
	DaysOfWeek IntList        `gorm:"type:text" json:"days_of_week"` // 0=Sunday, 6=Saturday
	Color      string         `gorm:"default:'#4f86f7'" json:"color"`
	Type       ShiftType      `gorm:"default:regular" json:"type"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	Breaks     []ShiftBreak   `gorm:"foreignKey:TemplateID" json:"breaks"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *ShiftTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ShiftBreak is a pause inside a shift template's working window.
// DurationMinutes is always derived from the start/end times on write.
type ShiftBreak struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TemplateID      uuid.UUID `gorm:"type:uuid;not null;index" json:"template_id"`
	StartTime       string    `gorm:"not null" json:"start_time"`
	EndTime         string    `gorm:"not null" json:"end_time"`
	Type            BreakType `gorm:"default:rest" json:"type"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (b *ShiftBreak) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ClockMinutes parses an "HH:MM" clock string into minutes since midnight.
func ClockMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// Validate checks the template's internal invariants: a well-formed working
// window, every break strictly inside it, and no two breaks overlapping.
// It also recomputes each break's DurationMinutes from its times.
func (t *ShiftTemplate) Validate() error {
	start, err := ClockMinutes(t.StartTime)
	if err != nil {
		return err
	}
	end, err := ClockMinutes(t.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return fmt.Errorf("shift end time (%s) must be after start time (%s)", t.EndTime, t.StartTime)
	}

	for _, d := range t.DaysOfWeek {
		if d < 0 || d > 6 {
			return fmt.Errorf("day of week %d out of range 0-6", d)
		}
	}

	type span struct{ start, end int }
	spans := make([]span, 0, len(t.Breaks))
	for i := range t.Breaks {
		br := &t.Breaks[i]
		bs, err := ClockMinutes(br.StartTime)
		if err != nil {
			return fmt.Errorf("break %d: %w", i+1, err)
		}
		be, err := ClockMinutes(br.EndTime)
		if err != nil {
			return fmt.Errorf("break %d: %w", i+1, err)
		}
		if be <= bs {
			return fmt.Errorf("break %s-%s: end must be after start", br.StartTime, br.EndTime)
		}
		if bs < start || be > end {
			return fmt.Errorf("break %s-%s must lie within the shift window %s-%s",
				br.StartTime, br.EndTime, t.StartTime, t.EndTime)
		}
		for _, prev := range spans {
			if bs < prev.end && prev.start < be {
				return fmt.Errorf("break %s-%s overlaps another break", br.StartTime, br.EndTime)
			}
		}
		spans = append(spans, span{bs, be})
		br.DurationMinutes = be - bs
	}
	return nil
}
