package scheduling

import (
	"context"
	"errors"
	"time"

	"bizdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence surface the generator depends on. Handlers pass
// the gorm-backed implementation; unit tests pass an in-memory fake.
type Store interface {
	BusinessByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	StaffByID(ctx context.Context, id uuid.UUID) (*models.BusinessStaff, error)
	RostersInRange(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID, from, to time.Time) ([]models.RosterShift, error)
	RosterForStaffDate(ctx context.Context, staffID uuid.UUID, date time.Time) (*models.RosterShift, error)
	TemplateByID(ctx context.Context, id uuid.UUID) (*models.ShiftTemplate, error)
	ServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ServicesForStaff(ctx context.Context, staffID uuid.UUID) ([]models.Service, error)
	IsStaffQualified(ctx context.Context, staffID, serviceID uuid.UUID) (bool, error)
	StaffSlotsBetween(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]models.Slot, error)
	InsertSlots(ctx context.Context, slots []models.Slot) error
	AddConflict(ctx context.Context, slotID, conflictID uuid.UUID) error
}

// GormStore implements Store on top of a gorm database handle.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) BusinessByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (s *GormStore) StaffByID(ctx context.Context, id uuid.UUID) (*models.BusinessStaff, error) {
	var staff models.BusinessStaff
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}

func (s *GormStore) RostersInRange(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID, from, to time.Time) ([]models.RosterShift, error) {
	query := s.DB.WithContext(ctx).
		Where("business_id = ? AND date >= ? AND date <= ?", businessID, from, to)
	if staffID != nil {
		query = query.Where("staff_id = ?", *staffID)
	}

	var rosters []models.RosterShift
	if err := query.Order("date, staff_id").Find(&rosters).Error; err != nil {
		return nil, err
	}
	return rosters, nil
}

func (s *GormStore) RosterForStaffDate(ctx context.Context, staffID uuid.UUID, date time.Time) (*models.RosterShift, error) {
	var roster models.RosterShift
	err := s.DB.WithContext(ctx).
		Where("staff_id = ? AND date = ?", staffID, date).
		First(&roster).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &roster, nil
}

func (s *GormStore) TemplateByID(ctx context.Context, id uuid.UUID) (*models.ShiftTemplate, error) {
	var template models.ShiftTemplate
	err := s.DB.WithContext(ctx).Preload("Breaks").Where("id = ?", id).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

func (s *GormStore) ServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &service, nil
}

func (s *GormStore) ServicesForStaff(ctx context.Context, staffID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	err := s.DB.WithContext(ctx).
		Joins("JOIN staff_services ON staff_services.service_id = services.id").
		Where("staff_services.staff_id = ? AND services.is_active = ?", staffID, true).
		Order("services.name").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (s *GormStore) IsStaffQualified(ctx context.Context, staffID, serviceID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.StaffService{}).
		Where("staff_id = ? AND service_id = ?", staffID, serviceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) StaffSlotsBetween(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]models.Slot, error) {
	var slots []models.Slot
	err := s.DB.WithContext(ctx).
		Where("staff_id = ? AND start_time < ? AND end_time > ?", staffID, to, from).
		Order("start_time").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *GormStore) InsertSlots(ctx context.Context, slots []models.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Create(&slots).Error
}

// AddConflict records conflictID on the persisted slot's conflict list.
// Read-modify-write is fine here: generation is a single batch caller.
func (s *GormStore) AddConflict(ctx context.Context, slotID, conflictID uuid.UUID) error {
	var slot models.Slot
	if err := s.DB.WithContext(ctx).Where("id = ?", slotID).First(&slot).Error; err != nil {
		return err
	}
	if slot.ConflictingSlotIDs.Contains(conflictID) {
		return nil
	}
	slot.ConflictingSlotIDs = append(slot.ConflictingSlotIDs, conflictID)
	return s.DB.WithContext(ctx).Model(&slot).Update("conflicting_slot_ids", slot.ConflictingSlotIDs).Error
}
