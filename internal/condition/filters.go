package condition

import (
	"image"

	"github.com/disintegration/imaging"
)

// sharpenKernel is a light unsharp mask, applied at 20% over the denoised page.
var sharpenKernel = [9]float64{
	-1, -1, -1,
	-1, 9, -1,
	-1, -1, -1,
}

const sharpenWeight = 0.2

// ToGray converts img to 8-bit luminance, compositing transparent pixels onto white.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	n := imaging.Grayscale(img)
	b := n.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			v, a := uint32(row[x*4]), uint32(row[x*4+3])
			if a < 0xff {
				v = (v*a + 0xff*(0xff-a)) / 0xff
			}
			dst[x] = uint8(v)
		}
	}
	return out
}

// sharpen blends the 3x3 sharpened page over src, 80/20.
func sharpen(src *image.Gray) *image.Gray {
	sharp := imaging.Convolve3x3(src, sharpenKernel, nil)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := float64(src.Pix[y*src.Stride+x])
			s := float64(sharp.Pix[y*sharp.Stride+x*4])
			out.Pix[y*out.Stride+x] = clampByte((1-sharpenWeight)*d + sharpenWeight*s)
		}
	}
	return out
}

// adaptiveThreshold sets a pixel white when it is brighter than the mean of its
// block x block neighbourhood minus c, black otherwise.
func adaptiveThreshold(src *image.Gray, block, c int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := block / 2
	sat := newIntegral(w, h, func(x, y int) int64 { return int64(src.Pix[y*src.Stride+x]) })

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum, area := sat.box(x-r, y-r, x+r, y+r)
			v := int64(src.Pix[y*src.Stride+x])
			if v*area > sum-int64(c)*area {
				out.Pix[y*out.Stride+x] = 0xff
			}
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
