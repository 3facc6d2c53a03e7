package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// MockPeopleService is a mock implementation of PeopleService
type MockPeopleService struct {
	mock.Mock
}

func (m *MockPeopleService) Enroll(ctx context.Context, name, identifier string, image []byte) (*domain.Identity, error) {
	args := m.Called(ctx, name, identifier, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockPeopleService) List(ctx context.Context) ([]domain.Identity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Identity), args.Error(1)
}

func (m *MockPeopleService) Get(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockPeopleService) GetImage(ctx context.Context, id uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPeopleService) Rename(ctx context.Context, id uuid.UUID, name string) (*domain.Identity, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockPeopleService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUnknownRegistry is a mock implementation of UnknownRegistry
type MockUnknownRegistry struct {
	mock.Mock
}

func (m *MockUnknownRegistry) List(ctx context.Context, limit, offset int) ([]domain.UnknownSighting, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.UnknownSighting), args.Int(1), args.Error(2)
}

func (m *MockUnknownRegistry) Get(ctx context.Context, id uuid.UUID) (*domain.UnknownSighting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnknownSighting), args.Error(1)
}

func (m *MockUnknownRegistry) Discard(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUnknownRegistry) Migrate(ctx context.Context, sightingID uuid.UUID, target domain.MigrationTarget) (*domain.Identity, error) {
	args := m.Called(ctx, sightingID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
}

// createMultipartRequest builds a multipart body with optional fields and image
func createMultipartRequest(t *testing.T, fields map[string]string, imageContent []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}

	if imageContent != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="test.jpg"`)
		h.Set("Content-Type", "image/jpeg")

		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(imageContent)
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestPeopleHandler_Enroll(t *testing.T) {
	identity := &domain.Identity{
		ID:         uuid.New(),
		Name:       "Maria Silva",
		Identifier: "mat-1042",
		CreatedAt:  time.Now().UTC(),
	}

	tests := []struct {
		name       string
		fields     map[string]string
		image      []byte
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "successful enrollment",
			fields:     map[string]string{"name": "Maria Silva", "identifier": "mat-1042"},
			image:      []byte("jpeg-bytes"),
			wantStatus: fiber.StatusCreated,
		},
		{
			name:       "missing name",
			fields:     map[string]string{"identifier": "mat-1042"},
			image:      []byte("jpeg-bytes"),
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "missing image",
			fields:     map[string]string{"name": "Maria Silva", "identifier": "mat-1042"},
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "duplicate identifier",
			fields:     map[string]string{"name": "Maria Silva", "identifier": "mat-1042"},
			image:      []byte("jpeg-bytes"),
			serviceErr: domain.ErrDuplicateIdentifier,
			wantStatus: fiber.StatusConflict,
			wantCode:   "DUPLICATE_IDENTIFIER",
		},
		{
			name:       "no face in photo",
			fields:     map[string]string{"name": "Maria Silva", "identifier": "mat-1042"},
			image:      []byte("jpeg-bytes"),
			serviceErr: domain.ErrNoFaceDetected,
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   "NO_FACE_DETECTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockPeopleService)
			if tt.serviceErr != nil {
				service.On("Enroll", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.serviceErr)
			} else {
				service.On("Enroll", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(identity, nil)
			}

			app := newTestApp()
			app.Post("/v1/people", NewPeopleHandler(service, testLogger()).Enroll)

			body, contentType := createMultipartRequest(t, tt.fields, tt.image)
			req := httptest.NewRequest("POST", "/v1/people", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCode != "" {
				var errResp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				raw, _ := io.ReadAll(resp.Body)
				require.NoError(t, json.Unmarshal(raw, &errResp))
				assert.Equal(t, tt.wantCode, errResp.Error.Code)
			}
		})
	}
}

func TestPeopleHandler_Delete(t *testing.T) {
	identityID := uuid.New()

	service := new(MockPeopleService)
	service.On("Delete", mock.Anything, identityID).Return(nil)

	app := newTestApp()
	app.Delete("/v1/people/:id", NewPeopleHandler(service, testLogger()).Delete)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/v1/people/"+identityID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// id inválido nem chega ao serviço
	resp, err = app.Test(httptest.NewRequest("DELETE", "/v1/people/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	service.AssertNumberOfCalls(t, "Delete", 1)
}

func TestUnknownHandler_Migrate(t *testing.T) {
	sightingID := uuid.New()
	identity := &domain.Identity{ID: uuid.New(), Name: "Visitante", Identifier: "v-1"}

	tests := []struct {
		name       string
		body       string
		mockErr    error
		wantStatus int
	}{
		{
			name:       "migrate to new identity",
			body:       `{"name":"Visitante","identifier":"v-1"}`,
			wantStatus: fiber.StatusCreated,
		},
		{
			name:       "migrate to existing identity",
			body:       `{"identity_id":"` + identity.ID.String() + `"}`,
			wantStatus: fiber.StatusCreated,
		},
		{
			name:       "neither target given",
			body:       `{}`,
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{
			name:       "already migrated",
			body:       `{"name":"Visitante","identifier":"v-1"}`,
			mockErr:    domain.ErrSightingNotFound,
			wantStatus: fiber.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := new(MockUnknownRegistry)
			if tt.mockErr != nil {
				registry.On("Migrate", mock.Anything, sightingID, mock.Anything).Return(nil, tt.mockErr)
			} else {
				registry.On("Migrate", mock.Anything, sightingID, mock.Anything).Return(identity, nil)
			}

			app := newTestApp()
			app.Post("/v1/unknown-faces/:id/migrate", NewUnknownHandler(registry, testLogger()).Migrate)

			req := httptest.NewRequest("POST", "/v1/unknown-faces/"+sightingID.String()+"/migrate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestSettingsHandler_Update(t *testing.T) {
	settings := config.NewSettings(&config.Config{
		SimilarityThreshold: 0.6,
		DedupWindow:         30 * time.Minute,
		DisplayInterval:     500 * time.Millisecond,
		MaxFrameWidth:       1920,
		JPEGQuality:         90,
	})

	app := newTestApp()
	h := NewSettingsHandler(settings, testLogger())
	app.Get("/v1/settings", h.Get)
	app.Put("/v1/settings", h.Update)

	// atualização parcial mantém os demais campos
	req := httptest.NewRequest("PUT", "/v1/settings", strings.NewReader(`{"similarity_threshold":0.8}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got SettingsResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.InDelta(t, 0.8, got.SimilarityThreshold, 0.0001)
	assert.Equal(t, 1800, got.DedupWindowSeconds)

	// limiar fora do intervalo é rejeitado sem alterar nada
	req = httptest.NewRequest("PUT", "/v1/settings", strings.NewReader(`{"similarity_threshold":1.5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.InDelta(t, 0.8, settings.Snapshot().SimilarityThreshold, 0.0001)
}

type stubProcessor struct {
	matches []domain.FaceMatch
}

func (s *stubProcessor) Process(ctx context.Context, cameraID string, frame []byte) []domain.FaceMatch {
	return s.matches
}

func TestProcessHandler_ProcessFrame(t *testing.T) {
	processor := &stubProcessor{matches: []domain.FaceMatch{
		{Known: true, Score: 0.72, Identity: &domain.Identity{Name: "Maria Silva"}},
	}}

	app := newTestApp()
	app.Post("/v1/process-frame", NewProcessHandler(processor, testLogger()).ProcessFrame)

	body, contentType := createMultipartRequest(t, nil, []byte("jpeg-bytes"))
	req := httptest.NewRequest("POST", "/v1/process-frame", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Faces []domain.FaceMatch `json:"faces"`
		Total int                `json:"total"`
	}
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, 1, result.Total)
	assert.True(t, result.Faces[0].Known)
}
