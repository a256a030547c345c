package scheduling

import (
	"context"
	"fmt"
	"time"

	"bizdesk-backend/models"

	"github.com/google/uuid"
)

// Generator derives bookable slots from rosters, shift templates and the
// service catalog. It holds no state of its own; all persistence goes
// through the injected Store.
type Generator struct {
	store Store
}

func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// GenerateRequest asks for slot generation over an inclusive date range.
// A nil StaffID means every staff member with a roster entry in range.
type GenerateRequest struct {
	BusinessID uuid.UUID
	StaffID    *uuid.UUID
	From       time.Time
	To         time.Time
}

// GenerateResult carries the created slots plus batch diagnostics.
// Warnings collect per-pair problems (inactive template, malformed break)
// that skip one staff/date without aborting the rest of the batch.
type GenerateResult struct {
	Slots           []models.Slot `json:"slots"`
	Created         int           `json:"created"`
	SkippedExisting int           `json:"skipped_existing"`
	Conflicts       int           `json:"conflicts"`
	Warnings        []string      `json:"warnings"`
}

// Generate produces slots for every (staff, date, service) combination in
// range. Each date is processed independently; re-running over an already
// generated range skips exact (staff, service, start time) matches, so the
// operation is idempotent and safe to retry.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.To.Before(req.From) {
		return nil, ErrInvalidRange
	}

	if _, err := g.store.BusinessByID(ctx, req.BusinessID); err != nil {
		return nil, fmt.Errorf("business %s: %w", req.BusinessID, err)
	}
	if req.StaffID != nil {
		staff, err := g.store.StaffByID(ctx, *req.StaffID)
		if err != nil {
			return nil, fmt.Errorf("staff %s: %w", *req.StaffID, err)
		}
		if staff.BusinessID != req.BusinessID {
			return nil, fmt.Errorf("staff %s: %w", *req.StaffID, ErrNotFound)
		}
	}

	rosters, err := g.store.RostersInRange(ctx, req.BusinessID, req.StaffID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{Warnings: []string{}}
	for _, roster := range rosters {
		if roster.Status.IsNonWorking() {
			continue
		}
		if err := g.generateForRoster(ctx, roster, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// generateForRoster handles a single (staff, date) pair. Data problems on
// this pair are recorded as warnings; only storage failures abort.
func (g *Generator) generateForRoster(ctx context.Context, roster models.RosterShift, result *GenerateResult) error {
	day := roster.Date.Format("2006-01-02")

	template, err := g.store.TemplateByID(ctx, roster.TemplateID)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"staff %s on %s: shift template %s could not be resolved", roster.StaffID, day, roster.TemplateID))
		return nil
	}
	if !template.IsActive {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"staff %s on %s: shift template %q is inactive, skipped", roster.StaffID, day, template.Name))
		return nil
	}

	shift, breaks, err := resolveTemplateWindows(roster.Date, template)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"staff %s on %s: %v", roster.StaffID, day, err))
		return nil
	}

	windows, warnings := SubtractBreaks(shift, breaks)
	for _, w := range warnings {
		result.Warnings = append(result.Warnings, fmt.Sprintf("staff %s on %s: %s", roster.StaffID, day, w))
	}

	services, err := g.store.ServicesForStaff(ctx, roster.StaffID)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return nil
	}

	dayStart := time.Date(roster.Date.Year(), roster.Date.Month(), roster.Date.Day(), 0, 0, 0, 0, roster.Date.Location())
	existing, err := g.store.StaffSlotsBetween(ctx, roster.StaffID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return err
	}

	shiftID := roster.ID
	var batch []*models.Slot
	var backRefs [][2]uuid.UUID
	for _, service := range services {
		duration := service.Duration()
		if duration <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"service %q has a non-positive duration, skipped", service.Name))
			continue
		}
		for _, window := range windows {
			for _, tile := range TileWindow(window, duration) {
				if hasExactSlot(existing, service.ID, tile.Start) {
					result.SkippedExisting++
					continue
				}

				candidate := &models.Slot{
					ID:           uuid.New(),
					BusinessID:   roster.BusinessID,
					StaffID:      roster.StaffID,
					ServiceID:    service.ID,
					ShiftID:      &shiftID,
					StartTime:    tile.Start,
					EndTime:      tile.End,
					Status:       models.SlotStatusAvailable,
					GeneratedFor: dayStart,
				}

				// An overlap with another slot of the same staff member is
				// surfaced on both sides and left for the operator to
				// resolve; the candidate is never dropped.
				for i := range existing {
					if existing[i].Overlaps(tile.Start, tile.End) {
						candidate.ConflictingSlotIDs = append(candidate.ConflictingSlotIDs, existing[i].ID)
						backRefs = append(backRefs, [2]uuid.UUID{existing[i].ID, candidate.ID})
					}
				}
				for _, other := range batch {
					if other.Overlaps(tile.Start, tile.End) {
						candidate.ConflictingSlotIDs = append(candidate.ConflictingSlotIDs, other.ID)
						other.ConflictingSlotIDs = append(other.ConflictingSlotIDs, candidate.ID)
					}
				}
				if len(candidate.ConflictingSlotIDs) > 0 {
					result.Conflicts++
				}
				batch = append(batch, candidate)
			}
		}
	}

	if len(batch) == 0 {
		return nil
	}
	slots := make([]models.Slot, len(batch))
	for i, s := range batch {
		slots[i] = *s
	}
	if err := g.store.InsertSlots(ctx, slots); err != nil {
		return err
	}
	// Back-flag persisted slots only once the batch exists, so a failed
	// insert never leaves conflict ids pointing at slots that were never
	// created.
	for _, ref := range backRefs {
		if err := g.store.AddConflict(ctx, ref[0], ref[1]); err != nil {
			return err
		}
	}
	result.Slots = append(result.Slots, slots...)
	result.Created += len(slots)
	return nil
}

// ManualRequest creates a single slot by hand. The end time is always
// derived from the service's duration, never caller-supplied.
type ManualRequest struct {
	BusinessID uuid.UUID
	StaffID    uuid.UUID
	ServiceID  uuid.UUID
	StartTime  time.Time
}

// CreateManual validates a hand-placed slot against the same rules as
// generation: the staff member must be qualified and rostered, the slot must
// sit inside the shift window and outside every break. Overlaps with other
// slots are flagged, not rejected.
func (g *Generator) CreateManual(ctx context.Context, req ManualRequest) (*models.Slot, error) {
	staff, err := g.store.StaffByID(ctx, req.StaffID)
	if err != nil {
		return nil, fmt.Errorf("staff %s: %w", req.StaffID, err)
	}
	if staff.BusinessID != req.BusinessID {
		return nil, fmt.Errorf("staff %s: %w", req.StaffID, ErrNotFound)
	}

	service, err := g.store.ServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", req.ServiceID, err)
	}
	if service.BusinessID != req.BusinessID {
		return nil, fmt.Errorf("service %s: %w", req.ServiceID, ErrNotFound)
	}

	qualified, err := g.store.IsStaffQualified(ctx, req.StaffID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !qualified {
		return nil, &ValidationError{Reason: "staff member is not qualified to perform this service"}
	}

	start := req.StartTime
	end := start.Add(service.Duration())
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	roster, err := g.store.RosterForStaffDate(ctx, req.StaffID, dayStart)
	if err != nil {
		return nil, err
	}
	if roster == nil {
		return nil, &ValidationError{Reason: "staff member has no roster entry for that date"}
	}
	if roster.Status.IsNonWorking() {
		return nil, &ValidationError{Reason: fmt.Sprintf("staff member is rostered as %s on that date", roster.Status)}
	}

	template, err := g.store.TemplateByID(ctx, roster.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("shift template %s: %w", roster.TemplateID, err)
	}
	if !template.IsActive {
		return nil, &ValidationError{Reason: "the rostered shift template is inactive"}
	}

	shift, breaks, err := resolveTemplateWindows(dayStart, template)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	slotWindow := Window{Start: start, End: end}
	if !shift.Contains(slotWindow) {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"slot %s-%s falls outside the shift window %s-%s",
			start.Format("15:04"), end.Format("15:04"), template.StartTime, template.EndTime)}
	}
	for _, br := range breaks {
		if slotWindow.Overlaps(br) {
			return nil, &ValidationError{Reason: fmt.Sprintf(
				"slot %s-%s overlaps a break %s-%s",
				start.Format("15:04"), end.Format("15:04"),
				br.Start.Format("15:04"), br.End.Format("15:04"))}
		}
	}

	shiftID := roster.ID
	slot := &models.Slot{
		ID:           uuid.New(),
		BusinessID:   req.BusinessID,
		StaffID:      req.StaffID,
		ServiceID:    req.ServiceID,
		ShiftID:      &shiftID,
		StartTime:    start,
		EndTime:      end,
		Status:       models.SlotStatusAvailable,
		GeneratedFor: dayStart,
	}

	existing, err := g.store.StaffSlotsBetween(ctx, req.StaffID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	var overlapping []uuid.UUID
	for i := range existing {
		if existing[i].Overlaps(start, end) {
			slot.ConflictingSlotIDs = append(slot.ConflictingSlotIDs, existing[i].ID)
			overlapping = append(overlapping, existing[i].ID)
		}
	}

	if err := g.store.InsertSlots(ctx, []models.Slot{*slot}); err != nil {
		return nil, err
	}
	for _, id := range overlapping {
		if err := g.store.AddConflict(ctx, id, slot.ID); err != nil {
			return nil, err
		}
	}
	return slot, nil
}

// resolveTemplateWindows turns a template's clock strings into concrete
// windows on the roster date.
func resolveTemplateWindows(date time.Time, template *models.ShiftTemplate) (Window, []Window, error) {
	start, err := ClockOnDate(date, template.StartTime)
	if err != nil {
		return Window{}, nil, fmt.Errorf("template start time: %w", err)
	}
	end, err := ClockOnDate(date, template.EndTime)
	if err != nil {
		return Window{}, nil, fmt.Errorf("template end time: %w", err)
	}
	if !end.After(start) {
		return Window{}, nil, fmt.Errorf("template window %s-%s is empty", template.StartTime, template.EndTime)
	}

	breaks := make([]Window, 0, len(template.Breaks))
	for _, br := range template.Breaks {
		bs, err := ClockOnDate(date, br.StartTime)
		if err != nil {
			return Window{}, nil, fmt.Errorf("break start time: %w", err)
		}
		be, err := ClockOnDate(date, br.EndTime)
		if err != nil {
			return Window{}, nil, fmt.Errorf("break end time: %w", err)
		}
		breaks = append(breaks, Window{Start: bs, End: be})
	}
	return Window{Start: start, End: end}, breaks, nil
}

func hasExactSlot(slots []models.Slot, serviceID uuid.UUID, start time.Time) bool {
	for i := range slots {
		if slots[i].ServiceID == serviceID && slots[i].StartTime.Equal(start) {
			return true
		}
	}
	return false
}
