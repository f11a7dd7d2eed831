package gpu

import "sync/atomic"

// HostBuffer is pinned host-side memory used for uploads (write-only) or
// readbacks (read-only). It has a map/unmap lifecycle and a completion
// fence that callers poll instead of blocking the GPU thread.
type HostBuffer struct {
	Size  int
	Usage HostUsage
	Data  []byte

	device *Device
	refs   int32
	fence  Fence
	mapped bool
}

func (h *HostBuffer) key() HostKey {
	return HostKey{Usage: h.Usage, Size: h.Size}
}

// Retain increments the reference count.
func (h *HostBuffer) Retain() *HostBuffer {
	atomic.AddInt32(&h.refs, 1)
	return h
}

// Release decrements the reference count; at zero, the buffer is mapped
// (write-only) or unmapped (read-only) and pushed back to its pool, never
// destroyed. This happens synchronously on the goroutine that calls
// Release; it is not scheduled onto the GPU executor.
func (h *HostBuffer) Release() {
	if atomic.AddInt32(&h.refs, -1) <= 0 {
		h.device.recycleHostBuffer(h)
	}
}

// Map transitions Unmapped -> Mapped. For write-only buffers this also
// discards previous contents (orphaning), matching upload semantics.
// Must be called on the GPU thread.
func (h *HostBuffer) Map() []byte {
	if h.Usage == HostUsageWriteOnly {
		clear(h.Data)
	}
	h.mapped = true
	return h.Data
}

// Unmap transitions Mapped -> Unmapped.
func (h *HostBuffer) Unmap() {
	h.mapped = false
}

// ArmFence marks the buffer's completion fence as pending, to be resolved
// once the in-flight GPU operation finishes.
func (h *HostBuffer) ArmFence() {
	h.fence.Reset()
}

// Ready reports whether the buffer's fence has resolved, without blocking.
func (h *HostBuffer) Ready() bool {
	return h.fence.Ready()
}
