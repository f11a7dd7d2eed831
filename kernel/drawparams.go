package kernel

import (
	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/gpu"
)

// DrawParams is the single draw call's full argument set, matching the
// reference kernel's DrawParams: everything the shader needs to composite
// one item's planes onto a background buffer.
type DrawParams struct {
	PixelDesc mixer.PixelFormat
	Planes    []*gpu.DeviceBuffer // up to 4, per PixelDesc.PlaneCount()
	Transform mixer.FrameTransform
	Blend     mixer.BlendMode
	Keyer     mixer.Keyer

	Background *gpu.DeviceBuffer
	LocalKey   *gpu.DeviceBuffer // stride-1, optional
	LayerKey   *gpu.DeviceBuffer // stride-1, optional
}

// isHD applies the shader's heuristic: the first plane's height decides
// the YCbCr matrix.
func (p DrawParams) isHD() bool {
	if len(p.Planes) == 0 {
		return false
	}
	return mixer.IsHD(p.Planes[0].Height)
}

// HasLevels reports whether the transform's levels are away from their
// defaults, mirroring the reference shader's bool levels uniform: when
// false, the levels branch is skipped entirely rather than applying a
// no-op remap.
func (p DrawParams) HasLevels() bool {
	return !p.Transform.Levels.IsDefault()
}

// HasColorAdjust reports whether brightness/saturation/contrast are away
// from identity, mirroring the reference shader's bool csb uniform.
func (p DrawParams) HasColorAdjust() bool {
	return p.Transform.Brightness != 1 || p.Transform.Saturation != 1 || p.Transform.Contrast != 1
}
