package image

import (
	"fmt"
	"image"
	"math"

	"github.com/jmylchreest/monotint/internal/colour"
)

const (
	// maxSamples bounds the number of pixels inspected per image.
	maxSamples = 2000
	// hueBins is the number of buckets the hue circle is split into.
	hueBins = 36
	// minChroma is the saturation below which a pixel counts as grey.
	minChroma = 0.12
	// minAlpha is the opacity below which a pixel is ignored.
	minAlpha = 0x8000
)

// DominantColour returns the colour of the most prominent hue in img.
// Pixels are grid sampled and binned by hue, weighted by saturation, and the
// winning bin is averaged. Images with no chromatic pixels yield their mean grey.
func DominantColour(img image.Image) (colour.RGB, error) {
	if img == nil {
		return colour.RGB{}, fmt.Errorf("image cannot be nil")
	}

	pixels := samplePixels(img)
	if len(pixels) == 0 {
		return colour.RGB{}, fmt.Errorf("no opaque pixels found in image")
	}

	var (
		weights [hueBins]float64
		sums    [hueBins]colour.RGB
		counts  [hueBins]int
		grey    colour.RGB
	)
	for _, p := range pixels {
		hsl := colour.RGBToHSL(p)
		grey.R += p.R
		grey.G += p.G
		grey.B += p.B
		if hsl.S < minChroma || hsl.L < 0.05 || hsl.L > 0.95 {
			continue
		}
		bin := int(hsl.H*hueBins) % hueBins
		weights[bin] += hsl.S
		sums[bin].R += p.R
		sums[bin].G += p.G
		sums[bin].B += p.B
		counts[bin]++
	}

	best := -1
	for i, w := range weights {
		if w > 0 && (best < 0 || w > weights[best]) {
			best = i
		}
	}
	if best < 0 {
		n := float64(len(pixels))
		return colour.RGB{R: grey.R / n, G: grey.G / n, B: grey.B / n}, nil
	}

	n := float64(counts[best])
	return colour.RGB{R: sums[best].R / n, G: sums[best].G / n, B: sums[best].B / n}.Clamp(), nil
}

// samplePixels returns up to maxSamples opaque pixels taken on an even grid.
func samplePixels(img image.Image) []colour.RGB {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total <= 0 {
		return nil
	}

	step := max(int(math.Sqrt(float64(total)/float64(maxSamples))), 1)

	pixels := make([]colour.RGB, 0, min(total, maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			c := img.At(x, y)
			if _, _, _, a := c.RGBA(); a < minAlpha {
				continue
			}
			pixels = append(pixels, colour.FromColor(c))
			if len(pixels) >= maxSamples {
				return pixels
			}
		}
	}
	return pixels
}
