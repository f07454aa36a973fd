package detect

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/cardbinder/cardbinder/internal/geometry"
)

// Standard trading card aspect ratio (2.5in x 3.5in).
const cardAspect = 2.5 / 3.5

// HeuristicDetector finds card-shaped regions without a model: it projects
// edge activity onto the image axes, segments the projections into foreground
// bands, and scores each band intersection by aspect ratio and edge density.
// Works best on bulk photos of cards laid out on a contrasting background.
type HeuristicDetector struct {
	// MinConfidence drops candidates scoring below it. Zero means the
	// default of 0.2.
	MinConfidence float64
}

// NewHeuristicDetector returns a detector with default thresholds.
func NewHeuristicDetector() *HeuristicDetector {
	return &HeuristicDetector{MinConfidence: 0.2}
}

// DetectCards implements Detector.
func (d *HeuristicDetector) DetectCards(ctx context.Context, imagePath string) ([]Detection, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.detect(img), nil
}

// detect runs the projection analysis on a decoded image.
func (d *HeuristicDetector) detect(img image.Image) []Detection {
	lum, scale := luminanceGrid(img, 512)
	h := len(lum)
	if h < 8 {
		return nil
	}
	w := len(lum[0])
	if w < 8 {
		return nil
	}

	grad := gradientMagnitude(lum)

	rowAct := make([]float64, h)
	colAct := make([]float64, w)
	var total float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := grad[y][x]
			rowAct[y] += g
			colAct[x] += g
			total += g
		}
	}
	for y := range rowAct {
		rowAct[y] /= float64(w)
	}
	for x := range colAct {
		colAct[x] /= float64(h)
	}
	mean := total / float64(w*h)
	if mean == 0 {
		return nil
	}

	rowBands := activeBands(rowAct, mean*0.5, h/20)
	colBands := activeBands(colAct, mean*0.5, w/20)

	minConf := d.MinConfidence
	if minConf == 0 {
		minConf = 0.2
	}

	var out []Detection
	for _, rb := range rowBands {
		for _, cb := range colBands {
			box := geometry.Rect{
				X:      float64(cb.start),
				Y:      float64(rb.start),
				Width:  float64(cb.end - cb.start),
				Height: float64(rb.end - rb.start),
			}
			conf := scoreCandidate(grad, box, mean)
			if conf < minConf {
				continue
			}
			out = append(out, Detection{
				Bounds:     box.Scale(scale),
				Confidence: conf,
			})
		}
	}
	return out
}

// luminanceGrid decodes the image into a downsampled grayscale grid whose
// longest side is at most maxDim, returning the grid and the factor that maps
// grid coordinates back to source pixels.
func luminanceGrid(img image.Image, maxDim int) ([][]float64, float64) {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	longest := srcW
	if srcH > longest {
		longest = srcH
	}
	step := 1
	if longest > maxDim {
		step = (longest + maxDim - 1) / maxDim
	}
	w := srcW / step
	h := srcH / step
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	lum := make([][]float64, h)
	for y := 0; y < h; y++ {
		lum[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x*step, b.Min.Y+y*step).RGBA()
			// Rec. 601 luma on 16-bit channel values.
			lum[y][x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 65535
		}
	}
	return lum, float64(step)
}

// gradientMagnitude computes a forward-difference edge map.
func gradientMagnitude(lum [][]float64) [][]float64 {
	h := len(lum)
	w := len(lum[0])
	grad := make([][]float64, h)
	for y := 0; y < h; y++ {
		grad[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			var gx, gy float64
			if x+1 < w {
				gx = lum[y][x+1] - lum[y][x]
			}
			if y+1 < h {
				gy = lum[y+1][x] - lum[y][x]
			}
			grad[y][x] = math.Abs(gx) + math.Abs(gy)
		}
	}
	return grad
}

type band struct {
	start, end int // half-open
}

// activeBands segments a projection profile into contiguous runs above the
// threshold, merging runs separated by small gaps and dropping runs shorter
// than minLen.
func activeBands(profile []float64, threshold float64, minLen int) []band {
	const mergeGap = 2
	if minLen < 4 {
		minLen = 4
	}

	var bands []band
	start := -1
	for i, v := range profile {
		if v >= threshold {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			bands = append(bands, band{start, i})
			start = -1
		}
	}
	if start >= 0 {
		bands = append(bands, band{start, len(profile)})
	}

	merged := bands[:0]
	for _, b := range bands {
		if n := len(merged); n > 0 && b.start-merged[n-1].end <= mergeGap {
			merged[n-1].end = b.end
			continue
		}
		merged = append(merged, b)
	}

	out := merged[:0]
	for _, b := range merged {
		if b.end-b.start >= minLen {
			out = append(out, b)
		}
	}
	return out
}

// scoreCandidate combines aspect-ratio fit and interior edge density into a
// confidence in [0, 1]. Both portrait and landscape card orientations are
// accepted.
func scoreCandidate(grad [][]float64, box geometry.Rect, globalMean float64) float64 {
	if box.Width < 4 || box.Height < 4 {
		return 0
	}

	aspect := box.Width / box.Height
	fitPortrait := aspectFit(aspect, cardAspect)
	fitLandscape := aspectFit(aspect, 1/cardAspect)
	aspectScore := math.Max(fitPortrait, fitLandscape)

	var sum float64
	var n int
	y0, y1 := int(box.Y), int(box.Y+box.Height)
	x0, x1 := int(box.X), int(box.X+box.Width)
	for y := y0; y < y1 && y < len(grad); y++ {
		for x := x0; x < x1 && x < len(grad[y]); x++ {
			sum += grad[y][x]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	fillScore := clamp01(sum / float64(n) / (2 * globalMean))

	return clamp01(0.1 + 0.55*aspectScore + 0.35*fillScore)
}

func aspectFit(actual, target float64) float64 {
	if target == 0 {
		return 0
	}
	return clamp01(1 - math.Abs(actual-target)/target)
}
