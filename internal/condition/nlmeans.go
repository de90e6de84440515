package condition

import (
	"image"
	"math"
)

// integral is a summed-area table with a zero guard row and column.
type integral struct {
	w, h int
	sum  []int64
}

func newIntegral(w, h int, at func(x, y int) int64) *integral {
	t := &integral{w: w, h: h, sum: make([]int64, (w+1)*(h+1))}
	t.fill(at)
	return t
}

func (t *integral) fill(at func(x, y int) int64) {
	stride := t.w + 1
	for y := 0; y < t.h; y++ {
		var row int64
		for x := 0; x < t.w; x++ {
			row += at(x, y)
			t.sum[(y+1)*stride+x+1] = t.sum[y*stride+x+1] + row
		}
	}
}

// box returns the sum and pixel count of the inclusive rectangle clipped to the image.
func (t *integral) box(x0, y0, x1, y1 int) (int64, int64) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, t.w-1), min(y1, t.h-1)
	stride := t.w + 1
	s := t.sum[(y1+1)*stride+x1+1] - t.sum[y0*stride+x1+1] - t.sum[(y1+1)*stride+x0] + t.sum[y0*stride+x0]
	return s, int64((x1 - x0 + 1) * (y1 - y0 + 1))
}

// NLMeans denoises src with non-local means: every pixel becomes the weighted mean
// of the pixels in its search window, weighted by exp(-d/h²) where d is the mean
// squared difference between the two template patches. Patch distances for one
// offset are read from a summed-area table of squared differences, so the cost is
// independent of the template size. Coordinates outside the page are clamped.
func NLMeans(src *image.Gray, h float64, templateWindow, searchWindow int) *image.Gray {
	if src.Rect.Min != (image.Point{}) {
		src = ToGray(src)
	}
	w, ht := src.Rect.Dx(), src.Rect.Dy()
	n := w * ht
	tr, sr := templateWindow/2, searchWindow/2
	px := func(x, y int) int64 {
		return int64(src.Pix[y*src.Stride+x])
	}

	weights := weightTable(h)
	acc := make([]float64, n)
	wsum := make([]float64, n)
	sat := &integral{w: w, h: ht, sum: make([]int64, (w+1)*(ht+1))}

	for dy := -sr; dy <= sr; dy++ {
		for dx := -sr; dx <= sr; dx++ {
			sat.fill(func(x, y int) int64 {
				d := px(x, y) - px(clamp(x+dx, w), clamp(y+dy, ht))
				return d * d
			})
			for y := 0; y < ht; y++ {
				qy := clamp(y+dy, ht)
				for x := 0; x < w; x++ {
					sum, area := sat.box(x-tr, y-tr, x+tr, y+tr)
					idx := int(sum / area)
					if idx >= len(weights) {
						continue
					}
					wt := weights[idx]
					i := y*w + x
					acc[i] += wt * float64(px(clamp(x+dx, w), qy))
					wsum[i] += wt
				}
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, ht))
	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			out.Pix[y*out.Stride+x] = clampByte(acc[i] / wsum[i])
		}
	}
	return out
}

// weightTable holds exp(-d/h²) for integer mean distances until the weight is negligible.
func weightTable(h float64) []float64 {
	h2 := h * h
	limit := int(math.Ceil(h2 * 16)) // exp(-16) ~ 1e-7
	table := make([]float64, min(limit, 255*255)+1)
	for d := range table {
		table[d] = math.Exp(-float64(d) / h2)
	}
	return table
}

func clamp(v, n int) int {
	switch {
	case v < 0:
		return 0
	case v >= n:
		return n - 1
	}
	return v
}
