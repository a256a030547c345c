package scheduling

import (
	"fmt"
	"time"

	"bizdesk-backend/models"
)

// Window is a half-open [Start, End) time interval within a single day.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns the window's length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two half-open intervals intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Contains reports whether o lies entirely inside w.
func (w Window) Contains(o Window) bool {
	return !o.Start.Before(w.Start) && !o.End.After(w.End)
}

// ClockOnDate resolves an "HH:MM" clock string onto a calendar date,
// in the date's location.
func ClockOnDate(date time.Time, clock string) (time.Time, error) {
	minutes, err := models.ClockMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location()), nil
}

// SubtractBreaks removes each break interval from the shift window, producing
// the contiguous available sub-windows left over. Breaks at the very start or
// end trim an endpoint. A break straddling the shift boundary violates the
// template's containment invariant; it is reported as a warning and clamped
// so generation can continue with the remaining windows.
func SubtractBreaks(shift Window, breaks []Window) ([]Window, []string) {
	windows := []Window{shift}
	var warnings []string

	for _, br := range breaks {
		if !br.Overlaps(shift) {
			continue
		}
		if !shift.Contains(br) {
			warnings = append(warnings, fmt.Sprintf(
				"break %s-%s extends outside shift window %s-%s",
				br.Start.Format("15:04"), br.End.Format("15:04"),
				shift.Start.Format("15:04"), shift.End.Format("15:04")))
		}

		var next []Window
		for _, w := range windows {
			if !w.Overlaps(br) {
				next = append(next, w)
				continue
			}
			if br.Start.After(w.Start) {
				next = append(next, Window{Start: w.Start, End: br.Start})
			}
			if br.End.Before(w.End) {
				next = append(next, Window{Start: br.End, End: w.End})
			}
		}
		windows = next
	}

	return windows, warnings
}

// TileWindow fills a window with back-to-back sub-windows of exactly d,
// starting at the window's start. Leftover time shorter than d is unused;
// no partial tiles are ever produced.
func TileWindow(w Window, d time.Duration) []Window {
	if d <= 0 {
		return nil
	}
	var tiles []Window
	for cursor := w.Start; !cursor.Add(d).After(w.End); cursor = cursor.Add(d) {
		tiles = append(tiles, Window{Start: cursor, End: cursor.Add(d)})
	}
	return tiles
}
