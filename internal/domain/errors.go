package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrIdentityNotFound = &AppError{
		Code:       "IDENTITY_NOT_FOUND",
		Message:    "Identity not found",
		StatusCode: 404,
	}

	ErrDuplicateIdentifier = &AppError{
		Code:       "DUPLICATE_IDENTIFIER",
		Message:    "Identifier already belongs to an enrolled identity",
		StatusCode: 409,
	}

	ErrEventNotFound = &AppError{
		Code:       "EVENT_NOT_FOUND",
		Message:    "Attendance event not found or already closed",
		StatusCode: 404,
	}

	ErrSightingNotFound = &AppError{
		Code:       "SIGHTING_NOT_FOUND",
		Message:    "Unknown sighting not found",
		StatusCode: 404,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrMultipleFaces = &AppError{
		Code:       "MULTIPLE_FACES",
		Message:    "Multiple faces detected, please provide image with single face",
		StatusCode: 422,
	}

	ErrEmbeddingService = &AppError{
		Code:       "EMBEDDING_SERVICE_UNAVAILABLE",
		Message:    "Embedding service is unavailable",
		StatusCode: 503,
	}

	ErrInvalidThreshold = &AppError{
		Code:       "INVALID_THRESHOLD",
		Message:    "Threshold must be between 0 and 1",
		StatusCode: 422,
	}

	ErrCameraNotFound = &AppError{
		Code:       "CAMERA_NOT_FOUND",
		Message:    "Camera not found",
		StatusCode: 404,
	}

	ErrCameraExists = &AppError{
		Code:       "CAMERA_ALREADY_EXISTS",
		Message:    "Camera already registered with this id",
		StatusCode: 409,
	}

	ErrCameraUnreachable = &AppError{
		Code:       "CAMERA_UNREACHABLE",
		Message:    "Camera source did not answer the reachability probe",
		StatusCode: 502,
	}

	ErrCameraDisconnected = &AppError{
		Code:       "CAMERA_DISCONNECTED",
		Message:    "Camera session is disconnected, re-add the camera",
		StatusCode: 409,
	}

	ErrFrameUnavailable = &AppError{
		Code:       "FRAME_UNAVAILABLE",
		Message:    "Failed to fetch a frame from the camera",
		StatusCode: 502,
	}
)
