// Package imaging holds the frame preprocessing used before emotion
// classification and the annotation drawn on streamed frames.
package imaging

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FaceSize is the square input edge the emotion model expects.
const FaceSize = 48

var annotationColor = color.RGBA{G: 255, A: 255}

// Grayscale converts img to an 8-bit luma image with its origin at (0,0)
// kept in the source coordinate space.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// Crop returns the part of src inside rect, clipped to the source bounds.
// The result is empty when rect does not overlap src.
func Crop(src *image.Gray, rect image.Rectangle) *image.Gray {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return image.NewGray(image.Rectangle{})
	}
	dst := image.NewGray(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst
}

func Resize(src *image.Gray, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// EqualizeHist spreads the intensity histogram of src across 0..255 using
// the cumulative distribution, mapping the lowest populated level to 0.
func EqualizeHist(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	total := bounds.Dx() * bounds.Dy()
	dst := image.NewGray(bounds)
	if total == 0 {
		return dst
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[src.GrayAt(x, y).Y]++
		}
	}

	first := 0
	for first < 255 && hist[first] == 0 {
		first++
	}
	if hist[first] == total {
		draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
		return dst
	}

	var lut [256]uint8
	scale := 255.0 / float64(total-hist[first])
	cdf := 0
	for level := first + 1; level < 256; level++ {
		cdf += hist[level]
		v := int(float64(cdf)*scale + 0.5)
		if v > 255 {
			v = 255
		}
		lut[level] = uint8(v)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.SetGray(x, y, color.Gray{Y: lut[src.GrayAt(x, y).Y]})
		}
	}
	return dst
}

// Normalize flattens src row-major into values in [0, 1].
func Normalize(src *image.Gray) []float32 {
	bounds := src.Bounds()
	out := make([]float32, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out = append(out, float32(src.GrayAt(x, y).Y)/255.0)
		}
	}
	return out
}

// PreprocessFace crops rect out of a grayscale frame and turns it into the
// FaceSize x FaceSize tensor consumed by the classifier.
func PreprocessFace(gray *image.Gray, rect image.Rectangle) []float32 {
	face := Crop(gray, rect)
	if face.Bounds().Empty() {
		return nil
	}
	return Normalize(EqualizeHist(Resize(face, FaceSize, FaceSize)))
}

// Argmax returns the index of the largest score, or -1 for no scores.
func Argmax(scores []float32) int {
	best := -1
	for i, s := range scores {
		if best == -1 || s > scores[best] {
			best = i
		}
	}
	return best
}

type Label struct {
	Rect image.Rectangle
	Text string
}

// Annotate draws a box and caption for every label onto a copy of frame.
func Annotate(frame image.Image, labels []Label) *image.RGBA {
	bounds := frame.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, frame, bounds.Min, draw.Src)

	for _, l := range labels {
		drawRect(canvas, l.Rect, 2)
		drawText(canvas, l.Rect.Min.X, l.Rect.Min.Y-10, l.Text)
	}
	return canvas
}

func drawRect(dst *image.RGBA, r image.Rectangle, thickness int) {
	src := image.NewUniform(annotationColor)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

func drawText(dst *image.RGBA, x, y int, text string) {
	face := basicfont.Face7x13
	if y < face.Ascent {
		y = face.Ascent
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(annotationColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
