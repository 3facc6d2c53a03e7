package domain

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrIdentityNotFound,
			expected: "Identity not found",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("db connection failed")
	newErr := ErrInternal.WithError(underlying)

	if newErr.Code != ErrInternal.Code {
		t.Errorf("Code = %v, want %v", newErr.Code, ErrInternal.Code)
	}

	if newErr.StatusCode != ErrInternal.StatusCode {
		t.Errorf("StatusCode = %v, want %v", newErr.StatusCode, ErrInternal.StatusCode)
	}

	if !errors.Is(newErr, underlying) {
		t.Errorf("errors.Is should return true for wrapped error")
	}
}

func TestErrorsAs(t *testing.T) {
	err := ErrSightingNotFound.WithError(errors.New("not in db"))

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Errorf("errors.As should match AppError")
	}

	if appErr.Code != "SIGHTING_NOT_FOUND" {
		t.Errorf("Code = %v, want SIGHTING_NOT_FOUND", appErr.Code)
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err        *AppError
		code       string
		statusCode int
	}{
		{ErrInternal, "INTERNAL_ERROR", 500},
		{ErrBadRequest, "BAD_REQUEST", 400},
		{ErrValidationFailed, "VALIDATION_FAILED", 422},
		{ErrIdentityNotFound, "IDENTITY_NOT_FOUND", 404},
		{ErrDuplicateIdentifier, "DUPLICATE_IDENTIFIER", 409},
		{ErrSightingNotFound, "SIGHTING_NOT_FOUND", 404},
		{ErrEventNotFound, "EVENT_NOT_FOUND", 404},
		{ErrInvalidImage, "INVALID_IMAGE", 422},
		{ErrNoFaceDetected, "NO_FACE_DETECTED", 422},
		{ErrMultipleFaces, "MULTIPLE_FACES", 422},
		{ErrEmbeddingService, "EMBEDDING_SERVICE_UNAVAILABLE", 503},
		{ErrInvalidThreshold, "INVALID_THRESHOLD", 422},
		{ErrCameraNotFound, "CAMERA_NOT_FOUND", 404},
		{ErrCameraExists, "CAMERA_ALREADY_EXISTS", 409},
		{ErrCameraUnreachable, "CAMERA_UNREACHABLE", 502},
		{ErrCameraDisconnected, "CAMERA_DISCONNECTED", 409},
		{ErrFrameUnavailable, "FRAME_UNAVAILABLE", 502},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %v, want %v", tt.err.StatusCode, tt.statusCode)
			}
		})
	}
}
