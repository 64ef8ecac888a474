package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kozaktomas/face-auth/internal/capture"
	"github.com/kozaktomas/face-auth/internal/config"
	"github.com/kozaktomas/face-auth/internal/web/middleware"
)

const testPassword = "Sup3r$ecret"

// testConfig creates a minimal config for testing. Zero limits fall back to
// the built-in defaults.
func testConfig() *config.Config {
	return &config.Config{
		Mock: config.MockConfig{
			JWTSecret:  "test-secret",
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
		},
	}
}

// newTestAuthHandler creates a handler with a fast bcrypt cost.
func newTestAuthHandler(t *testing.T) (*AuthHandler, *middleware.TokenManager) {
	t.Helper()
	cfg := testConfig()
	users := NewUserStore()
	users.bcryptCost = bcrypt.MinCost
	tokens := middleware.NewTokenManager(cfg.Mock.GetJWTSecret(), cfg.Mock.AccessTTL, cfg.Mock.RefreshTTL)
	return NewAuthHandler(cfg, users, tokens), tokens
}

// testPNG encodes a solid w×h PNG.
func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// jsonRequest builds a JSON POST. A non-nil image is sent as a data URL.
func jsonRequest(t *testing.T, path string, fields map[string]any, img []byte) *http.Request {
	t.Helper()
	if img != nil {
		fields["imageData"] = capture.EncodeDataURL(&capture.File{MIMEType: "image/png", Data: img})
	}
	body, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a multipart POST with the image under fileField.
func multipartRequest(t *testing.T, path string, fields map[string]string, fileField string, img []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if img != nil {
		part, err := mw.CreateFormFile(fileField, "face.png")
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		part.Write(img)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertDetail checks a {"detail": "..."} error body
func assertDetail(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["detail"] != expected {
		t.Errorf("expected detail '%s', got '%s'", expected, result["detail"])
	}
}

// violationMessages returns the msg of every 422 entry keyed by its last loc element.
func violationMessages(t *testing.T, recorder *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	var body struct {
		Detail []fieldError `json:"detail"`
	}
	parseJSONResponse(t, recorder, &body)

	out := make(map[string][]string)
	for _, d := range body.Detail {
		key, _ := d.Loc[len(d.Loc)-1].(string)
		out[key] = append(out[key], d.Msg)
	}
	return out
}
