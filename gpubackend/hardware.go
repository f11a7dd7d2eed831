// Package gpubackend is the optional attachment point between the
// software gpu.Device executor and a real GPU. It is imported only by
// code that constructs a channel with hardware acceleration enabled; the
// software executor in package gpu never depends on it.
package gpubackend

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/kernel"
)

// Hardware bundles the real device handle and the shader/type bridges
// needed to drive it, mirroring the reference pipeline's OpenGL context
// but behind the wgpu/naga stack instead.
type Hardware struct {
	// Provider is the windowing/surface integration's device handle. It
	// is stored only; nothing in the module presents frames through it.
	Provider gpucontext.DeviceProvider

	// Format is the hardware surface's native texture format. It is
	// stored only; the image kernel's draw_buffer is always allocated in
	// the software BGRA layout.
	Format gputypes.TextureFormat

	// SPIRV holds the image kernel's fragment shader, translated by naga
	// from kernel.ShaderSource()'s portable WGSL into SPIR-V, ready for
	// CreateShaderModule. Populated by CompileShader, not at construction,
	// since compilation can fail and Hardware must stay usable for
	// format inspection in tests with no real adapter.
	SPIRV []uint32

	device *wgpu.Device
}

// ErrNilProvider is returned by NewHardware when provider is nil,
// mirroring the teacher's ggcanvas.New nil-provider guard.
var ErrNilProvider = fmt.Errorf("gpubackend: nil DeviceProvider")

// NewHardware builds a Hardware holding provider and format. It does not
// compile the shader yet; call CompileShader (or gpu.Device.AttachHardware,
// which calls it for you).
func NewHardware(provider gpucontext.DeviceProvider, format gputypes.TextureFormat) (*Hardware, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	return &Hardware{Provider: provider, Format: format}, nil
}

// Attach stores a live wgpu device for later retrieval through Device.
// Nothing in the module creates shader modules or submits work on it.
func (h *Hardware) Attach(device *wgpu.Device) {
	h.device = device
}

// Device returns the attached wgpu device, or nil if none was attached.
func (h *Hardware) Device() *wgpu.Device {
	return h.device
}

// CompileShader translates kernel.ShaderSource()'s WGSL into SPIR-V via
// naga and stores it in h.SPIRV, grounded on the teacher's
// internal/native.CompileShaderToSPIRV helper (naga.Compile plus the
// little-endian byte-to-uint32 packing SPIR-V requires). Returns
// mixer.ErrShaderCompileFailed, wrapped with naga's own message, on
// failure.
func (h *Hardware) CompileShader() error {
	spirvBytes, err := naga.Compile(kernel.ShaderSource())
	if err != nil {
		return fmt.Errorf("gpubackend: %w: %w", mixer.ErrShaderCompileFailed, err)
	}

	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	h.SPIRV = spirv
	return nil
}
