package kernel

import "github.com/gogpu/mixer"

// includesLine reports whether output scanline y should be written for
// the given field mode, matching the reference kernel's stipple pattern
// selection for interlaced output. Line numbers are 0-based; even lines
// are the upper field, odd lines the lower field.
func includesLine(field mixer.FieldMode, y int) bool {
	if field == mixer.FieldProgressive {
		return true
	}
	if y%2 == 0 {
		return field.Contains(mixer.FieldUpper)
	}
	return field.Contains(mixer.FieldLower)
}
