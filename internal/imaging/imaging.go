// Package imaging contém utilitários de decodificação, recorte e
// redimensionamento de frames JPEG/PNG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registro do decoder PNG

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// Decode decodifica uma imagem JPEG ou PNG
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return img, nil
}

// EncodeJPEG codifica a imagem como JPEG com a qualidade informada
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Crop recorta a região indicada da imagem, limitada às bordas.
// Retorna a imagem original se a região for vazia ou inválida.
func Crop(img image.Image, box domain.BoundingBox) image.Image {
	bounds := img.Bounds()

	x0 := clamp(box.X, bounds.Min.X, bounds.Max.X)
	y0 := clamp(box.Y, bounds.Min.Y, bounds.Max.Y)
	x1 := clamp(box.X+box.Width, bounds.Min.X, bounds.Max.X)
	y1 := clamp(box.Y+box.Height, bounds.Min.Y, bounds.Max.Y)

	if x1 <= x0 || y1 <= y0 {
		return img
	}

	rect := image.Rect(x0, y0, x1, y1)
	cropped := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			cropped.Set(x-rect.Min.X, y-rect.Min.Y, img.At(x, y))
		}
	}
	return cropped
}

// ScaleToWidth reduz a imagem para a largura máxima mantendo a proporção.
// Imagens já dentro do limite são retornadas sem alteração.
func ScaleToWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	if maxWidth <= 0 || width <= maxWidth {
		return img
	}

	height := bounds.Dy()
	newHeight := height * maxWidth / width
	if newHeight < 1 {
		newHeight = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	for y := 0; y < newHeight; y++ {
		srcY := bounds.Min.Y + y*height/newHeight
		for x := 0; x < maxWidth; x++ {
			srcX := bounds.Min.X + x*width/maxWidth
			scaled.Set(x, y, img.At(srcX, srcY))
		}
	}
	return scaled
}

// Reencode decodifica, limita a largura e recodifica o frame como JPEG.
// Usado para normalizar frames antes de exibição e persistência.
func Reencode(data []byte, maxWidth, quality int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(ScaleToWidth(img, maxWidth), quality)
}

// CropEncode recorta a região do frame e a codifica como JPEG
func CropEncode(data []byte, box domain.BoundingBox, quality int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(Crop(img, box), quality)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
