package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-auth/internal/validation"
)

func TestRespondJSON_SetsStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Created", http.StatusCreated},
		{"BadRequest", http.StatusBadRequest},
		{"NotFound", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondJSON(recorder, tc.statusCode, map[string]string{"status": "ok"})

			assertStatusCode(t, recorder, tc.statusCode)
			assertContentType(t, recorder, "application/json")
		})
	}
}

func TestRespondJSON_NilData(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusNoContent, nil)

	if recorder.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got '%s'", recorder.Body.String())
	}
}

func TestRespondError_DetailShape(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondError(recorder, http.StatusBadRequest, "User already exists")

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertDetail(t, recorder, "User already exists")
}

func TestRespondViolations(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondViolations(recorder, []validation.Violation{
		{Path: "imageData", Message: "File type must be JPEG, PNG, or WebP"},
		{Path: "confirmPassword", Message: "Passwords don't match"},
		{Message: msgNoCredentials},
	})

	assertStatusCode(t, recorder, http.StatusUnprocessableEntity)

	var body struct {
		Detail []fieldError `json:"detail"`
	}
	parseJSONResponse(t, recorder, &body)

	if len(body.Detail) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(body.Detail))
	}

	wantLocs := [][]any{
		{"body", "image_data"},
		{"body", "confirm_password"},
		{"body"},
	}
	for i, want := range wantLocs {
		got, _ := json.Marshal(body.Detail[i].Loc)
		exp, _ := json.Marshal(want)
		if string(got) != string(exp) {
			t.Errorf("entry %d: expected loc %s, got %s", i, exp, got)
		}
		if body.Detail[i].Type != "value_error" {
			t.Errorf("entry %d: expected type value_error, got %q", i, body.Detail[i].Type)
		}
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"email", "email"},
		{"imageData", "image_data"},
		{"confirmPassword", "confirm_password"},
		{"refreshToken", "refresh_token"},
	}

	for _, tc := range tests {
		if got := snakeCase(tc.input); got != tc.expected {
			t.Errorf("snakeCase(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("a@b.c\r\nforged entry"); got != "a@b.cforged entry" {
		t.Errorf("unexpected sanitized value %q", got)
	}
}

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", result["status"])
	}
}
