package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bizdesk-backend/models"
)

func TestRegisterSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"email":    "newuser@test.com",
		"password": "password123",
		"name":     "New User",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected a token in the response")
	}
	if resp["refresh_token"] == nil || resp["refresh_token"] == "" {
		t.Error("expected a refresh token in the response")
	}
	user := resp["user"].(map[string]interface{})
	if user["role"] != "customer" {
		t.Errorf("expected new users to be customers, got %v", user["role"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "taken@test.com", "customer", nil)

	body := map[string]interface{}{
		"email":    "taken@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterShortPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"email":    "shortpw@test.com",
		"password": "short",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "login@test.com", "customer", nil)

	body := map[string]interface{}{
		"email":    "login@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil {
		t.Error("expected a token in the response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "wrongpw@test.com", "customer", nil)

	body := map[string]interface{}{
		"email":    "wrongpw@test.com",
		"password": "not-the-password",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginBlockedUser(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, _ := seedTestUser(db, "blocked@test.com", "customer", nil)
	db.Model(&user).Update("is_blocked", true)

	body := map[string]interface{}{
		"email":    "blocked@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginIncludesBusinessSummary(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	admin, _ := seedTestUser(db, "admin-auth@test.com", "admin", nil)
	business := seedBusiness(db, "Login Salon", admin.ID)
	owner, _ := seedBusinessOwnerWithToken(db, business)

	body := map[string]interface{}{
		"email":    owner.Email,
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	biz, ok := resp["business"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a business summary, got %v", resp["business"])
	}
	if biz["name"] != "Login Salon" {
		t.Errorf("expected business name, got %v", biz["name"])
	}
}

func TestRefreshToken(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "refresh@test.com", "customer", nil)

	loginBody := map[string]interface{}{
		"email":    "refresh@test.com",
		"password": "password123",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", loginBody))
	refreshToken := parseResponse(w)["refresh_token"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]interface{}{
		"refresh_token": refreshToken,
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["token"] == nil {
		t.Error("expected a fresh access token")
	}
}

func TestRefreshTokenRejectsUnknown(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]interface{}{
		"refresh_token": "not-a-real-token",
	}))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetProfile(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, token := seedTestUser(db, "profile@test.com", "customer", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["email"] != user.Email {
		t.Errorf("expected email %s, got %v", user.Email, resp["email"])
	}
}

func TestGetProfileRequiresAuth(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/auth/profile", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateProfile(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, token := seedTestUser(db, "update-profile@test.com", "customer", nil)

	body := map[string]interface{}{"name": "Renamed", "phone": "07700900000"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("PUT", "/api/auth/profile", body, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.User
	db.First(&updated, user.ID)
	if updated.Name != "Renamed" || updated.Phone != "07700900000" {
		t.Errorf("expected profile updated, got name=%q phone=%q", updated.Name, updated.Phone)
	}
}
