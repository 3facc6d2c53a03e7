package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// PersonData represents an enrolled person
type PersonData struct {
	ID         string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name       string `json:"name" example:"Maria Silva"`
	Identifier string `json:"identifier" example:"mat-1042"`
	CreatedAt  string `json:"created_at" example:"2026-03-10T08:00:00Z"`
}

// PeopleListData represents the people listing
type PeopleListData struct {
	People []PersonData `json:"people"`
	Total  int          `json:"total" example:"12"`
}

// FaceMatchData represents one classified face in a processed frame
type FaceMatchData struct {
	Known bool    `json:"known" example:"true"`
	Score float64 `json:"score" example:"0.72"`
}

// ProcessFrameData represents the process-frame result
type ProcessFrameData struct {
	Faces []FaceMatchData `json:"faces"`
	Total int             `json:"total" example:"1"`
}

// AttendanceEventData represents one attendance event
type AttendanceEventData struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	IdentityID  string `json:"identity_id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Name        string `json:"name" example:"Maria Silva"`
	Identifier  string `json:"identifier" example:"mat-1042"`
	ArrivalTime string `json:"arrival_time" example:"2026-03-10T08:00:00Z"`
	Auto        bool   `json:"auto" example:"true"`
}

// AttendanceListData represents the attendance listing
type AttendanceListData struct {
	Events []AttendanceEventData `json:"events"`
	Total  int                   `json:"total" example:"3"`
}

// SightingData represents one unknown sighting
type SightingData struct {
	ID         string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DetectedAt string `json:"detected_at" example:"2026-03-10T08:00:00Z"`
}

// SightingListData represents the sighting listing
type SightingListData struct {
	Sightings []SightingData `json:"sightings"`
	Total     int            `json:"total" example:"2"`
}

// CameraStatusData represents one camera session
type CameraStatusData struct {
	State             string `json:"state" example:"active"`
	Mode              string `json:"mode" example:"display"`
	ConsecutiveErrors int    `json:"consecutive_errors" example:"0"`
}

// CameraListData represents the camera listing
type CameraListData struct {
	Cameras []CameraStatusData `json:"cameras"`
	Total   int                `json:"total" example:"1"`
}

// DiscoverData represents the local device enumeration
type DiscoverData struct {
	Devices []int `json:"devices" example:"[0,2]"`
}

// SettingsData represents the runtime settings
type SettingsData struct {
	SimilarityThreshold float64 `json:"similarity_threshold" example:"0.6"`
	DedupWindowSeconds  int     `json:"dedup_window_seconds" example:"1800"`
	DisplayIntervalMs   int     `json:"display_interval_ms" example:"500"`
	FrameSkip           int     `json:"frame_skip" example:"5"`
	MaxFrameWidth       int     `json:"max_frame_width" example:"1920"`
	JPEGQuality         int     `json:"jpeg_quality" example:"90"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Presença API",
		Version:     "v1.0.0",
		Description: "Attendance tracking by face recognition: enrollment, camera sessions, deduplicated attendance events and unknown sighting management",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/people - Enroll a person
		endpoint.New(
			endpoint.POST,
			"/people",
			endpoint.WithTags("People"),
			endpoint.WithSummary("Enroll a person"),
			endpoint.WithDescription("Enrolls a person from a photo containing exactly one face. The identifier must be unique among non-deleted people."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PersonData{}, "201", "Person enrolled successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "name, identifier and image are required"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "Multiple faces detected"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DUPLICATE_IDENTIFIER", Message: "Identifier already in use"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "EMBEDDING_SERVICE_UNAVAILABLE", Message: "Embedding service unavailable"}, "503", "Service Unavailable"),
			}),
		),

		// GET /v1/people - List people
		endpoint.New(
			endpoint.GET,
			"/people",
			endpoint.WithTags("People"),
			endpoint.WithSummary("List enrolled people"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PeopleListData{}, "200", "Listing"),
			}),
		),

		// DELETE /v1/people/{id} - Soft delete
		endpoint.New(
			endpoint.DELETE,
			"/people/{id}",
			endpoint.WithTags("People"),
			endpoint.WithSummary("Delete a person"),
			endpoint.WithDescription("Soft delete: the person leaves the gallery and the identifier becomes reusable."),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Resource UUID or camera id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "IDENTITY_NOT_FOUND", Message: "Person not found"}, "404", "Not Found"),
			}),
		),

		// POST /v1/process-frame - Run the recognition pipeline
		endpoint.New(
			endpoint.POST,
			"/process-frame",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Process a single frame"),
			endpoint.WithDescription("Runs detection, matching, attendance dedup and unknown sighting persistence over one image."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ProcessFrameData{}, "200", "Frame processed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Image could not be decoded"}, "422", "Unprocessable Entity"),
			}),
		),

		// GET /v1/attendance - List attendance events
		endpoint.New(
			endpoint.GET,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List attendance events"),
			endpoint.WithParams(
				parameter.StrParam("day", parameter.Query, parameter.WithDescription("Day filter, YYYY-MM-DD (default: today)")),
				parameter.StrParam("from", parameter.Query, parameter.WithDescription("Range start, RFC 3339")),
				parameter.StrParam("to", parameter.Query, parameter.WithDescription("Range end, RFC 3339")),
			),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceListData{}, "200", "Listing"),
			}),
		),

		// POST /v1/attendance - Manual entry
		endpoint.New(
			endpoint.POST,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Record a manual attendance entry"),
			endpoint.WithDescription("Creates an event with auto=false, bypassing the deduplication window."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceEventData{}, "201", "Event created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "IDENTITY_NOT_FOUND", Message: "Person not found"}, "404", "Not Found"),
			}),
		),

		// GET /v1/unknown-faces - List sightings
		endpoint.New(
			endpoint.GET,
			"/unknown-faces",
			endpoint.WithTags("Unknown"),
			endpoint.WithSummary("List unknown sightings"),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Page size (1-100, default 20)")),
				parameter.IntParam("offset", parameter.Query, parameter.WithDescription("Page offset")),
			),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SightingListData{}, "200", "Listing"),
			}),
		),

		// POST /v1/unknown-faces/{id}/migrate - Promote a sighting
		endpoint.New(
			endpoint.POST,
			"/unknown-faces/{id}/migrate",
			endpoint.WithTags("Unknown"),
			endpoint.WithSummary("Migrate a sighting into an identity"),
			endpoint.WithDescription("Promotes the sighting to a new identity (name + identifier) or attaches it to an existing one (identity_id). Single use: the sighting is removed on success."),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Resource UUID or camera id")),
			),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PersonData{}, "201", "Sighting migrated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SIGHTING_NOT_FOUND", Message: "Sighting not found or already migrated"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "IDENTITY_NOT_FOUND", Message: "Target identity not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "DUPLICATE_IDENTIFIER", Message: "Identifier already in use"}, "409", "Conflict"),
			}),
		),

		// DELETE /v1/unknown-faces/{id} - Discard a sighting
		endpoint.New(
			endpoint.DELETE,
			"/unknown-faces/{id}",
			endpoint.WithTags("Unknown"),
			endpoint.WithSummary("Discard a sighting"),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Resource UUID or camera id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Discarded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SIGHTING_NOT_FOUND", Message: "Sighting not found"}, "404", "Not Found"),
			}),
		),

		// GET /v1/cameras/discover - Local device enumeration
		endpoint.New(
			endpoint.GET,
			"/cameras/discover",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("Discover local capture devices"),
			endpoint.WithDescription("Enumerates /dev/video* devices. Never fails: a machine without devices returns an empty list."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DiscoverData{}, "200", "Device indexes"),
			}),
		),

		// POST /v1/cameras - Register a camera
		endpoint.New(
			endpoint.POST,
			"/cameras",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("Register a camera"),
			endpoint.WithDescription("Probes the source before registering; an unreachable camera is never added."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraStatusData{}, "201", "Camera registered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CAMERA_ALREADY_EXISTS", Message: "Camera id already registered"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "CAMERA_UNREACHABLE", Message: "Probe failed"}, "502", "Bad Gateway"),
			}),
		),

		// GET /v1/cameras - List camera sessions
		endpoint.New(
			endpoint.GET,
			"/cameras",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("List camera sessions"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraListData{}, "200", "Listing"),
			}),
		),

		// DELETE /v1/cameras/{id} - Remove a camera
		endpoint.New(
			endpoint.DELETE,
			"/cameras/{id}",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("Remove a camera"),
			endpoint.WithDescription("Idempotent: removing an unknown camera also returns 204."),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Resource UUID or camera id")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Removed"),
			}),
		),

		// GET /v1/cameras/{id}/frame - Latest frame
		endpoint.New(
			endpoint.GET,
			"/cameras/{id}/frame",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("Latest frame"),
			endpoint.WithDescription("Returns the newest frame re-encoded to the display size, with no-store cache headers. A disconnected camera fails without touching the network."),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Resource UUID or camera id")),
			),
			endpoint.WithProduce([]mime.MIME{mime.MIME("image/jpeg")}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CAMERA_NOT_FOUND", Message: "Camera not registered"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "CAMERA_DISCONNECTED", Message: "Camera is disconnected"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "FRAME_UNAVAILABLE", Message: "No frame captured yet"}, "502", "Bad Gateway"),
			}),
		),

		// POST /v1/cameras/{id}/mode - Switch session mode
		endpoint.New(
			endpoint.POST,
			"/cameras/{id}/mode",
			endpoint.WithTags("Cameras"),
			endpoint.WithSummary("Switch the session mode"),
			endpoint.WithDescription("display, recognition or stopped. The running timer is stopped before the new one starts."),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Resource UUID or camera id")),
			),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CameraStatusData{}, "200", "Mode changed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CAMERA_NOT_FOUND", Message: "Camera not registered"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "CAMERA_DISCONNECTED", Message: "Camera is disconnected"}, "409", "Conflict"),
			}),
		),

		// GET /v1/settings - Runtime settings
		endpoint.New(
			endpoint.GET,
			"/settings",
			endpoint.WithTags("Settings"),
			endpoint.WithSummary("Current runtime settings"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SettingsData{}, "200", "Settings"),
			}),
		),

		// PUT /v1/settings - Update runtime settings
		endpoint.New(
			endpoint.PUT,
			"/settings",
			endpoint.WithTags("Settings"),
			endpoint.WithSummary("Update runtime settings"),
			endpoint.WithDescription("Partial update. Changes apply to future ticks and calls only; frames already processed are never reclassified."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SettingsData{}, "200", "Settings updated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_THRESHOLD", Message: "Threshold must be between 0 and 1"}, "422", "Unprocessable Entity"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
