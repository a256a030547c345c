package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bizdesk-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedTemplateFixture(db *gorm.DB) (models.Business, string) {
	admin, _ := seedTestUser(db, "admin-tpl-"+uuid.New().String()[:8]+"@test.com", "admin", nil)
	business := seedBusiness(db, "Template Salon", admin.ID)
	_, token := seedBusinessOwnerWithToken(db, business)
	return business, token
}

func TestCreateTemplateWithBreaks(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	_, token := seedTemplateFixture(db)

	body := map[string]interface{}{
		"name":         "Morning",
		"start_time":   "09:00",
		"end_time":     "13:00",
		"days_of_week": []int{1, 2, 3, 4, 5},
		"breaks": []map[string]interface{}{
			{"start_time": "11:00", "end_time": "11:15", "type": "lunch"},
		},
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/business/shift-templates", body, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	breaks := resp["breaks"].([]interface{})
	if len(breaks) != 1 {
		t.Fatalf("expected 1 break, got %d", len(breaks))
	}
	// Duration is always derived from the times, never caller-supplied
	br := breaks[0].(map[string]interface{})
	if br["duration_minutes"].(float64) != 15 {
		t.Errorf("expected derived duration 15, got %v", br["duration_minutes"])
	}
}

func TestCreateTemplateDerivesDurationIgnoringCallerValue(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	_, token := seedTemplateFixture(db)

	body := map[string]interface{}{
		"name":       "Morning",
		"start_time": "09:00",
		"end_time":   "17:00",
		"breaks": []map[string]interface{}{
			{"start_time": "12:00", "end_time": "13:00", "duration_minutes": 999},
		},
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/business/shift-templates", body, token))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var stored models.ShiftBreak
	db.Where("start_time = ?", "12:00").First(&stored)
	if stored.DurationMinutes != 60 {
		t.Errorf("expected duration recomputed to 60, got %d", stored.DurationMinutes)
	}
}

func TestCreateTemplateRejectsInvertedWindow(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	_, token := seedTemplateFixture(db)

	body := map[string]interface{}{
		"name":       "Backwards",
		"start_time": "17:00",
		"end_time":   "09:00",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/business/shift-templates", body, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateTemplateRejectsBreakOutsideWindow(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	_, token := seedTemplateFixture(db)

	body := map[string]interface{}{
		"name":       "Morning",
		"start_time": "09:00",
		"end_time":   "13:00",
		"breaks": []map[string]interface{}{
			{"start_time": "12:45", "end_time": "13:30"},
		},
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/business/shift-templates", body, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateTemplateRejectsOverlappingBreaks(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	_, token := seedTemplateFixture(db)

	body := map[string]interface{}{
		"name":       "Morning",
		"start_time": "09:00",
		"end_time":   "17:00",
		"breaks": []map[string]interface{}{
			{"start_time": "12:00", "end_time": "13:00"},
			{"start_time": "12:30", "end_time": "12:45"},
		},
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/business/shift-templates", body, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateTemplateRejectsBadDayOfWeek(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	_, token := seedTemplateFixture(db)

	body := map[string]interface{}{
		"name":         "Morning",
		"start_time":   "09:00",
		"end_time":     "17:00",
		"days_of_week": []int{1, 7},
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("POST", "/api/business/shift-templates", body, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateTemplateShrinkingWindowRevalidatesBreaks(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	business, token := seedTemplateFixture(db)

	template := seedTemplate(db, business.ID, "09:00", "17:00", models.ShiftBreak{
		StartTime: "12:00", EndTime: "13:00",
	})

	// Shrinking the window to 09:00-12:30 would orphan the lunch break
	body := map[string]interface{}{"end_time": "12:30"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/business/shift-templates/"+template.ID.String(), body, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateTemplateReplacesBreaks(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	business, token := seedTemplateFixture(db)

	template := seedTemplate(db, business.ID, "09:00", "17:00", models.ShiftBreak{
		StartTime: "12:00", EndTime: "13:00",
	})

	body := map[string]interface{}{
		"breaks": []map[string]interface{}{
			{"start_time": "10:30", "end_time": "10:45", "type": "coffee"},
			{"start_time": "13:00", "end_time": "13:30", "type": "lunch"},
		},
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/business/shift-templates/"+template.ID.String(), body, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var breaks []models.ShiftBreak
	db.Where("template_id = ?", template.ID).Order("start_time").Find(&breaks)
	if len(breaks) != 2 {
		t.Fatalf("expected the break set replaced with 2, got %d", len(breaks))
	}
	if breaks[0].StartTime != "10:30" || breaks[0].DurationMinutes != 15 {
		t.Errorf("unexpected first break: %+v", breaks[0])
	}
}

func TestDeleteTemplateBlockedWhileRostered(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	business, token := seedTemplateFixture(db)

	template := seedTemplate(db, business.ID, "09:00", "17:00")
	staff := seedStaffMember(db, business.ID)
	seedRoster(db, business.ID, staff.ID, template.ID, testDate())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/business/shift-templates/"+template.ID.String(), nil, token))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteTemplateRemovesBreaks(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	business, token := seedTemplateFixture(db)

	template := seedTemplate(db, business.ID, "09:00", "17:00", models.ShiftBreak{
		StartTime: "12:00", EndTime: "13:00",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("DELETE", "/api/business/shift-templates/"+template.ID.String(), nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.ShiftBreak{}).Where("template_id = ?", template.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected breaks removed with the template, got %d", count)
	}
}

func TestGetMyTemplatesActiveFilter(t *testing.T) {
	db := freshDB()
	router := setupTemplateRouter(db)
	business, token := seedTemplateFixture(db)

	seedTemplate(db, business.ID, "09:00", "13:00")
	inactive := seedTemplate(db, business.ID, "13:00", "17:00")
	db.Model(&inactive).Update("is_active", false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/business/shift-templates", nil, token))
	if got := len(parseResponseArray(w)); got != 2 {
		t.Errorf("expected 2 templates unfiltered, got %d", got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/business/shift-templates?active=true", nil, token))
	if got := len(parseResponseArray(w)); got != 1 {
		t.Errorf("expected 1 active template, got %d", got)
	}
}
