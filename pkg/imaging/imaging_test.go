package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayFill(w, h int, fn func(x, y int) uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetGray(x, y, color.Gray{Y: fn(x, y)})
		}
	}
	return g
}

func TestGrayscaleKeepsBounds(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 4, 3))
	rgba.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	g := Grayscale(rgba)

	assert.Equal(t, rgba.Bounds(), g.Bounds())
	assert.Equal(t, uint8(255), g.GrayAt(1, 1).Y)
	assert.Equal(t, uint8(0), g.GrayAt(0, 0).Y)
}

func TestCropClipsToBounds(t *testing.T) {
	src := grayFill(10, 10, func(x, y int) uint8 { return uint8(x*10 + y) })

	tests := []struct {
		name string
		rect image.Rectangle
		want image.Rectangle
	}{
		{"inside", image.Rect(2, 3, 6, 8), image.Rect(0, 0, 4, 5)},
		{"overhang", image.Rect(7, 7, 20, 20), image.Rect(0, 0, 3, 3)},
		{"outside", image.Rect(30, 30, 40, 40), image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Crop(src, tt.rect).Bounds())
		})
	}

	c := Crop(src, image.Rect(2, 3, 6, 8))
	assert.Equal(t, src.GrayAt(2, 3), c.GrayAt(0, 0))
}

func TestEqualizeHistStretchesRange(t *testing.T) {
	src := grayFill(4, 4, func(x, y int) uint8 { return uint8(100 + x) })

	eq := EqualizeHist(src)

	assert.Equal(t, uint8(0), eq.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), eq.GrayAt(3, 0).Y)
	assert.True(t, eq.GrayAt(1, 0).Y < eq.GrayAt(2, 0).Y)
}

func TestEqualizeHistFlatImageUnchanged(t *testing.T) {
	src := grayFill(3, 3, func(int, int) uint8 { return 42 })

	eq := EqualizeHist(src)

	assert.Equal(t, uint8(42), eq.GrayAt(1, 1).Y)
}

func TestNormalizeRange(t *testing.T) {
	src := grayFill(2, 1, func(x, _ int) uint8 { return uint8(x * 255) })

	out := Normalize(src)

	require.Len(t, out, 2)
	assert.InDelta(t, 0.0, out[0], 1e-6)
	assert.InDelta(t, 1.0, out[1], 1e-6)
}

func TestPreprocessFaceShape(t *testing.T) {
	frame := grayFill(200, 150, func(x, y int) uint8 { return uint8((x + y) % 256) })

	tensor := PreprocessFace(frame, image.Rect(40, 30, 140, 130))

	require.Len(t, tensor, FaceSize*FaceSize)
	for _, v := range tensor {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}

	assert.Nil(t, PreprocessFace(frame, image.Rect(500, 500, 600, 600)))
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, -1, Argmax(nil))
	assert.Equal(t, 3, Argmax([]float32{0.1, 0.2, 0.05, 0.6, 0.05}))
	assert.Equal(t, 0, Argmax([]float32{0.5, 0.5}))
}

func TestAnnotateDrawsBoxOnCopy(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 100))

	out := Annotate(frame, []Label{{Rect: image.Rect(20, 30, 60, 80), Text: "happy"}})

	assert.Equal(t, annotationColor, out.RGBAAt(20, 50))
	assert.Equal(t, annotationColor, out.RGBAAt(40, 30))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(40, 50))
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(20, 50))
}
