package renderer

import (
	"image"

	"github.com/achilleasa/lumen/types"
)

// The estimator accumulates a running mean of the samples received for each
// pixel. Pixels without samples borrow the estimate of the grid-aligned pixel
// covering them so a blocky preview is available right after a reset.
type Estimator struct {
	width, height uint32
	gridSize      uint32

	sums   []types.Colour
	counts []uint32
}

// Create a new estimator for a frame with the given dimensions.
func NewEstimator(width, height, gridSize uint32) *Estimator {
	if gridSize == 0 {
		gridSize = 1
	}
	return &Estimator{
		width:    width,
		height:   height,
		gridSize: gridSize,
		sums:     make([]types.Colour, width*height),
		counts:   make([]uint32, width*height),
	}
}

// Add a sample to a pixel. Samples outside the frame are ignored.
func (e *Estimator) Update(x, y uint32, c types.Colour) {
	if x >= e.width || y >= e.height {
		return
	}
	index := y*e.width + x
	e.sums[index] = e.sums[index].Add(c)
	e.counts[index]++
}

// Discard all accumulated samples.
func (e *Estimator) Reset() {
	for index := range e.sums {
		e.sums[index] = types.Black
		e.counts[index] = 0
	}
}

// Get the number of samples accumulated for a pixel.
func (e *Estimator) Count(x, y uint32) uint32 {
	if x >= e.width || y >= e.height {
		return 0
	}
	return e.counts[y*e.width+x]
}

// Get the min and max per-pixel sample counts.
func (e *Estimator) CountRange() (lo, hi uint32) {
	if len(e.counts) == 0 {
		return 0, 0
	}
	lo = e.counts[0]
	for _, count := range e.counts {
		if count < lo {
			lo = count
		}
		if count > hi {
			hi = count
		}
	}
	return lo, hi
}

func (e *Estimator) mean(index uint32) (types.Colour, bool) {
	if e.counts[index] == 0 {
		return types.Black, false
	}
	return e.sums[index].Div(float32(e.counts[index])), true
}

// Get the current estimate for the entire frame.
func (e *Estimator) Render() *Image {
	img := &Image{
		Width:  e.width,
		Height: e.height,
		Pixels: make([]types.Colour, len(e.sums)),
	}

	for y := uint32(0); y < e.height; y++ {
		gridY := y - y%e.gridSize
		for x := uint32(0); x < e.width; x++ {
			index := y*e.width + x
			if c, ok := e.mean(index); ok {
				img.Pixels[index] = c
				continue
			}

			// Fall back to the grid pixel; black if that has no samples either
			gridX := x - x%e.gridSize
			img.Pixels[index], _ = e.mean(gridY*e.width + gridX)
		}
	}

	return img
}

// A frame of linear radiance values.
type Image struct {
	Width, Height uint32
	Pixels        []types.Colour
}

// Get the value of a pixel.
func (img *Image) At(x, y uint32) types.Colour {
	return img.Pixels[y*img.Width+x]
}

// Tonemap the image into an 8-bit RGBA image.
func (img *Image) RGBA(exposure float32) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, int(img.Width), int(img.Height)))
	for y := uint32(0); y < img.Height; y++ {
		for x := uint32(0); x < img.Width; x++ {
			out.SetRGBA(int(x), int(y), img.Pixels[y*img.Width+x].RGBA(exposure))
		}
	}
	return out
}
