package blend

// lum, sat, clipColor, setLum, and setSat implement the W3C compositing
// and blending non-separable blend math, used here for the hue,
// saturation, color, and luminosity blend modes. Grounded on the same
// formulas the reference image library uses for its non-separable
// Porter-Duff-adjacent blends.

func lum(c RGB) float64 {
	return 0.3*c.R + 0.59*c.G + 0.11*c.B
}

func clipColor(c RGB) RGB {
	l := lum(c)
	n := min3(c.R, c.G, c.B)
	x := max3(c.R, c.G, c.B)

	if n < 0 {
		c.R = l + (c.R-l)*l/(l-n)
		c.G = l + (c.G-l)*l/(l-n)
		c.B = l + (c.B-l)*l/(l-n)
	}
	if x > 1 {
		c.R = l + (c.R-l)*(1-l)/(x-l)
		c.G = l + (c.G-l)*(1-l)/(x-l)
		c.B = l + (c.B-l)*(1-l)/(x-l)
	}
	return c
}

func setLum(c RGB, l float64) RGB {
	d := l - lum(c)
	c.R += d
	c.G += d
	c.B += d
	return clipColor(c)
}

func sat(c RGB) float64 {
	return max3(c.R, c.G, c.B) - min3(c.R, c.G, c.B)
}

// setSat assigns c a new saturation value while preserving its relative
// channel ordering, per the W3C algorithm (sort channels, rescale the
// middle one between the min and max).
func setSat(c RGB, s float64) RGB {
	vals := []*float64{&c.R, &c.G, &c.B}
	sortRGB(vals)
	minP, midP, maxP := vals[0], vals[1], vals[2]

	if *maxP > *minP {
		*midP = (*midP - *minP) * s / (*maxP - *minP)
		*maxP = s
	} else {
		*midP = 0
		*maxP = 0
	}
	*minP = 0
	return c
}

func sortRGB(vals []*float64) {
	if *vals[0] > *vals[1] {
		vals[0], vals[1] = vals[1], vals[0]
	}
	if *vals[1] > *vals[2] {
		vals[1], vals[2] = vals[2], vals[1]
	}
	if *vals[0] > *vals[1] {
		vals[0], vals[1] = vals[1], vals[0]
	}
}

func min3(a, b, c float64) float64 {
	return min(a, min(b, c))
}

func max3(a, b, c float64) float64 {
	return max(a, max(b, c))
}
