package mixer

// FieldMode is a bitmask describing which interlaced field(s) a VideoFormat
// carries. Progressive formats set both bits.
type FieldMode uint8

const (
	FieldUpper FieldMode = 1 << iota
	FieldLower
	FieldProgressive = FieldUpper | FieldLower
)

// Contains reports whether m includes all bits of other.
func (m FieldMode) Contains(other FieldMode) bool {
	return m&other == other
}

// VideoFormat describes the geometry and timing of a channel's output.
type VideoFormat struct {
	Name        string
	Width       int
	Height      int
	FieldCount  int // 1 = progressive, 2 = interlaced
	Field       FieldMode
	FrameRateNum int
	FrameRateDen int
}

// IsInterlaced reports whether the format renders two fields per frame.
func (f VideoFormat) IsInterlaced() bool {
	return f.FieldCount == 2
}

// IsHD applies the shader's own heuristic for selecting the BT.601 vs
// BT.709 YCbCr matrix: any plane taller than 700 lines is HD.
func IsHD(planeHeight int) bool {
	return planeHeight > 700
}
