package scheduling

import (
	"testing"
	"time"
)

func mustClock(t *testing.T, date time.Time, clock string) time.Time {
	t.Helper()
	ts, err := ClockOnDate(date, clock)
	if err != nil {
		t.Fatalf("ClockOnDate(%s): %v", clock, err)
	}
	return ts
}

func day() time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
}

func window(t *testing.T, start, end string) Window {
	t.Helper()
	return Window{Start: mustClock(t, day(), start), End: mustClock(t, day(), end)}
}

func TestClockOnDate(t *testing.T) {
	ts := mustClock(t, day(), "09:30")
	if ts.Hour() != 9 || ts.Minute() != 30 {
		t.Errorf("expected 09:30, got %s", ts.Format("15:04"))
	}
	if ts.Year() != 2025 || ts.Month() != time.June || ts.Day() != 2 {
		t.Errorf("expected the date preserved, got %s", ts.Format("2006-01-02"))
	}

	if _, err := ClockOnDate(day(), "25:00"); err == nil {
		t.Error("expected error for hour out of range")
	}
	if _, err := ClockOnDate(day(), "0900"); err == nil {
		t.Error("expected error for missing colon")
	}
}

func TestSubtractBreaksSplitsWindow(t *testing.T) {
	shift := window(t, "09:00", "13:00")
	breaks := []Window{window(t, "11:00", "11:15")}

	windows, warnings := SubtractBreaks(shift, breaks)
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if !windows[0].Start.Equal(shift.Start) || !windows[0].End.Equal(breaks[0].Start) {
		t.Errorf("first window wrong: %s-%s", windows[0].Start.Format("15:04"), windows[0].End.Format("15:04"))
	}
	if !windows[1].Start.Equal(breaks[0].End) || !windows[1].End.Equal(shift.End) {
		t.Errorf("second window wrong: %s-%s", windows[1].Start.Format("15:04"), windows[1].End.Format("15:04"))
	}
}

func TestSubtractBreaksAtWindowEdges(t *testing.T) {
	shift := window(t, "09:00", "17:00")
	breaks := []Window{
		window(t, "09:00", "09:30"), // trims the start
		window(t, "16:30", "17:00"), // trims the end
	}

	windows, _ := SubtractBreaks(shift, breaks)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Start.Format("15:04") != "09:30" || windows[0].End.Format("15:04") != "16:30" {
		t.Errorf("expected 09:30-16:30, got %s-%s",
			windows[0].Start.Format("15:04"), windows[0].End.Format("15:04"))
	}
}

func TestSubtractBreaksMultiple(t *testing.T) {
	shift := window(t, "09:00", "17:00")
	breaks := []Window{
		window(t, "11:00", "11:15"),
		window(t, "13:00", "14:00"),
	}

	windows, _ := SubtractBreaks(shift, breaks)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	want := [][2]string{{"09:00", "11:00"}, {"11:15", "13:00"}, {"14:00", "17:00"}}
	for i, w := range windows {
		if w.Start.Format("15:04") != want[i][0] || w.End.Format("15:04") != want[i][1] {
			t.Errorf("window %d: expected %s-%s, got %s-%s", i, want[i][0], want[i][1],
				w.Start.Format("15:04"), w.End.Format("15:04"))
		}
	}
}

func TestSubtractBreaksStraddlingWarnsAndClamps(t *testing.T) {
	shift := window(t, "09:00", "13:00")
	breaks := []Window{window(t, "12:30", "13:30")}

	windows, warnings := SubtractBreaks(shift, breaks)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for a straddling break, got %v", warnings)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].End.Format("15:04") != "12:30" {
		t.Errorf("expected window clamped at 12:30, got %s", windows[0].End.Format("15:04"))
	}
}

func TestSubtractBreaksOutsideWindowIgnored(t *testing.T) {
	shift := window(t, "09:00", "13:00")
	breaks := []Window{window(t, "14:00", "15:00")}

	windows, warnings := SubtractBreaks(shift, breaks)
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if len(windows) != 1 || !windows[0].Start.Equal(shift.Start) || !windows[0].End.Equal(shift.End) {
		t.Errorf("expected the shift untouched, got %v", windows)
	}
}

func TestTileWindowNoPartialTiles(t *testing.T) {
	// 09:00-11:00 tiles 4 thirty-minute slots exactly
	tiles := TileWindow(window(t, "09:00", "11:00"), 30*time.Minute)
	if len(tiles) != 4 {
		t.Fatalf("expected 4 tiles, got %d", len(tiles))
	}

	// 11:15-13:00 leaves a 15-minute remainder unused
	tiles = TileWindow(window(t, "11:15", "13:00"), 30*time.Minute)
	if len(tiles) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(tiles))
	}
	last := tiles[len(tiles)-1]
	if last.End.Format("15:04") != "12:45" {
		t.Errorf("expected last tile ending 12:45, got %s", last.End.Format("15:04"))
	}

	for i, tile := range tiles {
		if tile.Duration() != 30*time.Minute {
			t.Errorf("tile %d: expected exact 30m duration, got %v", i, tile.Duration())
		}
	}
}

func TestTileWindowTooSmall(t *testing.T) {
	if tiles := TileWindow(window(t, "09:00", "09:20"), 30*time.Minute); len(tiles) != 0 {
		t.Errorf("expected no tiles in a window shorter than the duration, got %d", len(tiles))
	}
	if tiles := TileWindow(window(t, "09:00", "10:00"), 0); tiles != nil {
		t.Errorf("expected nil for non-positive duration, got %v", tiles)
	}
}

func TestWindowOverlapsHalfOpen(t *testing.T) {
	a := window(t, "09:00", "09:30")
	b := window(t, "09:30", "10:00")
	if a.Overlaps(b) {
		t.Error("back-to-back windows must not overlap")
	}
	c := window(t, "09:15", "09:45")
	if !a.Overlaps(c) || !c.Overlaps(b) {
		t.Error("expected overlapping windows to be detected")
	}
}
