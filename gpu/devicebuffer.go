package gpu

import "sync/atomic"

// DeviceBuffer is a GPU-resident image plane of fixed (width, height,
// stride). Its shape never changes for the buffer's lifetime, which is
// what makes looking it up by shape in the device's pool safe.
type DeviceBuffer struct {
	Width, Height, Stride int
	Data                  []byte

	device *Device
	refs   int32
}

// key returns the pool bucket this buffer belongs to.
func (b *DeviceBuffer) key() DeviceKey {
	return NewDeviceKey(b.Stride, b.Width, b.Height)
}

// Retain increments the buffer's reference count and returns it, for
// callers that need to hold it past the scope that created it.
func (b *DeviceBuffer) Retain() *DeviceBuffer {
	atomic.AddInt32(&b.refs, 1)
	return b
}

// Release decrements the reference count; at zero the buffer re-enters
// its device's pool instead of being freed.
func (b *DeviceBuffer) Release() {
	if atomic.AddInt32(&b.refs, -1) <= 0 {
		b.device.recycleDeviceBuffer(b)
	}
}

// Bind is a placeholder for binding this buffer to a sampler unit on
// hardware; in the software executor it is a no-op recorded only for
// symmetry with the draw call sequence in kernel.Draw.
func (b *DeviceBuffer) Bind(unit int) {}

// CopyFrom copies a host buffer's bytes into this device buffer, matching
// the reference's texture sub-image update. Must run on the GPU thread.
func (b *DeviceBuffer) CopyFrom(h *HostBuffer) {
	n := copy(b.Data, h.Data)
	_ = n
}

// CopyTo copies this device buffer's bytes into a host buffer, matching
// the reference's readback. Must run on the GPU thread.
func (b *DeviceBuffer) CopyTo(h *HostBuffer) {
	copy(h.Data, b.Data)
}
