package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// TestDecode_Formats verifies JPEG and PNG decoding
func TestDecode_Formats(t *testing.T) {
	img, err := Decode(testJPEG(t, 20, 10))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	img, err = Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

// TestDecode_Invalid rejects garbage input
func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	require.Error(t, err)

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.ErrInvalidImage.Code, appErr.Code)
}

// TestCrop tests region cropping with boundary clamping
func TestCrop(t *testing.T) {
	img, err := Decode(testJPEG(t, 100, 80))
	require.NoError(t, err)

	tests := []struct {
		name       string
		box        domain.BoundingBox
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "interior region",
			box:        domain.BoundingBox{X: 10, Y: 10, Width: 40, Height: 30},
			wantWidth:  40,
			wantHeight: 30,
		},
		{
			name:       "overflowing region is clamped",
			box:        domain.BoundingBox{X: 80, Y: 60, Width: 50, Height: 50},
			wantWidth:  20,
			wantHeight: 20,
		},
		{
			name:       "empty region returns original",
			box:        domain.BoundingBox{X: 10, Y: 10, Width: 0, Height: 0},
			wantWidth:  100,
			wantHeight: 80,
		},
		{
			name:       "fully outside returns original",
			box:        domain.BoundingBox{X: 200, Y: 200, Width: 10, Height: 10},
			wantWidth:  100,
			wantHeight: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cropped := Crop(img, tt.box)
			assert.Equal(t, tt.wantWidth, cropped.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, cropped.Bounds().Dy())
		})
	}
}

// TestScaleToWidth tests downscaling with aspect ratio preserved
func TestScaleToWidth(t *testing.T) {
	img, err := Decode(testJPEG(t, 200, 100))
	require.NoError(t, err)

	scaled := ScaleToWidth(img, 50)
	assert.Equal(t, 50, scaled.Bounds().Dx())
	assert.Equal(t, 25, scaled.Bounds().Dy())

	// Already within limit: unchanged
	same := ScaleToWidth(img, 400)
	assert.Equal(t, 200, same.Bounds().Dx())

	// Zero limit disables scaling
	same = ScaleToWidth(img, 0)
	assert.Equal(t, 200, same.Bounds().Dx())
}

// TestReencode tests the full decode/scale/encode path
func TestReencode(t *testing.T) {
	out, err := Reencode(testJPEG(t, 300, 150), 100, 90)
	require.NoError(t, err)

	img, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

// TestCropEncode tests cropping directly from encoded bytes
func TestCropEncode(t *testing.T) {
	out, err := CropEncode(testJPEG(t, 100, 100), domain.BoundingBox{X: 20, Y: 20, Width: 30, Height: 40}, 90)
	require.NoError(t, err)

	img, err := Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

// TestEncodeJPEG_QualityClamp verifies out-of-range quality falls back to default
func TestEncodeJPEG_QualityClamp(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	out, err := EncodeJPEG(img, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = EncodeJPEG(img, 150)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
