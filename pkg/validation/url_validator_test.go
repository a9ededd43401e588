package validation

import (
	"errors"
	"testing"

	apperrors "github.com/anime-shed/qr-decoder-go/internal/errors"
)

func expectValidationMessage(t *testing.T, raw string, err error, message string) {
	t.Helper()

	if err == nil {
		t.Errorf("Expected '%s' to fail validation", raw)
		return
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Errorf("Expected AppError, got: %T", err)
		return
	}
	if appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("Expected validation error for '%s', got type %s", raw, appErr.Type)
	}
	if message != "" && appErr.Message != message {
		t.Errorf("Expected '%s' error for '%s', got: %s", message, raw, appErr.Message)
	}
}

func TestNewURLValidator(t *testing.T) {
	validator := NewURLValidator()
	if validator == nil {
		t.Fatal("Expected non-nil URL validator")
	}

	expectedSchemes := []string{"http", "https"}
	if len(validator.allowedSchemes) != len(expectedSchemes) {
		t.Fatalf("Expected %d schemes, got %d", len(expectedSchemes), len(validator.allowedSchemes))
	}
	for i, scheme := range expectedSchemes {
		if validator.allowedSchemes[i] != scheme {
			t.Errorf("Expected scheme %s, got %s", scheme, validator.allowedSchemes[i])
		}
	}
}

func TestParseImageURL_ValidURLs(t *testing.T) {
	validator := NewURLValidator()

	validURLs := map[string]string{
		"https://example.com/qr_hello.jpg":                 "example.com",
		"http://example.com/image.png?size=large":          "example.com",
		"  https://sub.example.com/path/to/image.gif  ":    "sub.example.com",
		"http://192.168.1.1:8080/image.jpg":                "192.168.1.1",
		"HTTPS://acct.blob.core.windows.net/qr/hello.png": "acct.blob.core.windows.net",
	}

	for raw, host := range validURLs {
		ref, err := validator.ParseImageURL(raw)
		if err != nil {
			t.Errorf("Expected valid URL %s to pass validation, got error: %v", raw, err)
			continue
		}
		if ref.Hostname() != host {
			t.Errorf("Expected host %s for %s, got %s", host, raw, ref.Hostname())
		}
	}
}

func TestParseImageURL_EmptyURL(t *testing.T) {
	validator := NewURLValidator()

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := validator.ParseImageURL(raw)
		expectValidationMessage(t, raw, err, "URL cannot be empty")
	}
}

func TestParseImageURL_InvalidFormat(t *testing.T) {
	validator := NewURLValidator()

	_, err := validator.ParseImageURL("://missing-scheme")
	expectValidationMessage(t, "://missing-scheme", err, "Invalid URL format")

	_, err = validator.ParseImageURL("not-a-url")
	expectValidationMessage(t, "not-a-url", err, "URL scheme not allowed")

	_, err = validator.ParseImageURL("/relative/qr.png")
	expectValidationMessage(t, "/relative/qr.png", err, "URL scheme not allowed")
}

func TestParseImageURL_NoHost(t *testing.T) {
	validator := NewURLValidator()

	for _, raw := range []string{"http://", "https://", "http:///path"} {
		_, err := validator.ParseImageURL(raw)
		expectValidationMessage(t, raw, err, "URL must have a valid host")
	}
}

func TestParseImageURL_InvalidScheme(t *testing.T) {
	validator := NewURLValidator()

	invalidSchemeURLs := []string{
		"ftp://example.com/image.jpg",
		"file://local/path/image.jpg",
		"data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8/5+hHgAHggJ/PchI7wAAAABJRU5ErkJggg==",
	}

	for _, raw := range invalidSchemeURLs {
		_, err := validator.ParseImageURL(raw)
		expectValidationMessage(t, raw, err, "URL scheme not allowed")
	}
}

func TestParseImageURL_RestrictedHosts(t *testing.T) {
	validator := NewURLValidatorWithOptions([]string{"http", "https"}, []string{"example.com", "trusted.com"})

	for _, raw := range []string{"http://example.com/image.jpg", "https://Trusted.com:8443/image.png"} {
		if err := validator.ValidateImageURL(raw); err != nil {
			t.Errorf("Expected allowed host URL '%s' to pass validation, got error: %v", raw, err)
		}
	}

	for _, raw := range []string{"http://malicious.com/image.jpg", "https://example.com.evil.net/image.png"} {
		err := validator.ValidateImageURL(raw)
		expectValidationMessage(t, raw, err, "URL host not allowed")
	}
}

func TestIsHostAllowed(t *testing.T) {
	validator := NewURLValidator()
	if !validator.isHostAllowed("example.com") {
		t.Error("Expected any host to be allowed when no restrictions")
	}

	restricted := NewURLValidatorWithOptions([]string{"https"}, []string{"example.com"})
	if !restricted.isHostAllowed("EXAMPLE.com") {
		t.Error("Expected host match to ignore case")
	}
	if restricted.isHostAllowed("malicious.com") {
		t.Error("Expected malicious.com to be disallowed")
	}
}
