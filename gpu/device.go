package gpu

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/mixer"
)

// FormatForStride returns the channel layout name for a plane of the
// given byte stride, matching the reference device's FORMAT table.
func FormatForStride(stride int) string {
	switch stride {
	case 1:
		return "R"
	case 2:
		return "RG"
	case 3:
		return "BGR"
	case 4:
		return "BGRA"
	default:
		return "-"
	}
}

// drawState caches the last-set value of each OpenGL-style binding so the
// caching wrapper methods can no-op redundant calls. Only ever touched
// from inside an executor job.
type drawState struct {
	attached  *DeviceBuffer
	program   string
	blendFunc string
	viewportW int
	viewportH int
	scissorX  int
	scissorY  int
	scissorW  int
	scissorH  int
	stipple   string
}

// HardwareBackend is the subset of gpubackend.Hardware that Device needs
// to drive a real GPU instead of the software draw path. Device depends
// on this interface rather than importing package gpubackend directly,
// since gpubackend imports kernel, which imports gpu — importing
// gpubackend back from gpu would cycle.
type HardwareBackend interface {
	// CompileShader prepares the hardware backend's shader module ahead
	// of the first draw; Device calls it once, at attach time.
	CompileShader() error
}

// Device is the single-threaded GPU command context: one executor
// goroutine, a device buffer pool, and a host buffer pool.
// CreateDeviceBuffer, CreateHostBuffer, GC and AttachHardware schedule
// their work onto Executor unless ctx shows the caller already runs
// there; the caching wrappers (Attach, Use, Viewport, ...) and the
// helpers documented as "must run on the GPU thread" do not schedule
// themselves and assume the caller is already on it.
type Device struct {
	Executor *Executor
	logger   *slog.Logger

	devicePool *Pool[DeviceKey, *DeviceBuffer]
	hostPool   *Pool[HostKey, *HostBuffer]

	state    drawState
	hardware HardwareBackend
}

// NewDevice starts the executor and returns a ready Device.
func NewDevice(logger *slog.Logger) *Device {
	if logger == nil {
		logger = mixer.Logger()
	}
	return &Device{
		Executor:   NewExecutor(),
		logger:     logger,
		devicePool: NewPool[DeviceKey, *DeviceBuffer](),
		hostPool:   NewPool[HostKey, *HostBuffer](),
	}
}

// Close stops the device's executor goroutine.
func (d *Device) Close() {
	d.Executor.Close()
}

// AttachHardware binds a compiled hardware backend to the device,
// compiling its shader module up front so draw-time errors surface at
// setup instead of on the first frame. The software draw path in
// package kernel is unaffected and remains the only path that uploads,
// draws and reads back; Hardware reports which backend, if any, has
// been attached.
func (d *Device) AttachHardware(ctx context.Context, h HardwareBackend) error {
	if err := h.CompileShader(); err != nil {
		return err
	}
	if d.Executor.OnGoroutine(ctx) {
		d.hardware = h
		return nil
	}
	return d.Executor.Invoke(ctx, PriorityHigh, func(context.Context) {
		d.hardware = h
	})
}

// Hardware returns the attached hardware backend, or nil if the device
// is running the software draw path only.
func (d *Device) Hardware() HardwareBackend {
	return d.hardware
}

// CreateDeviceBuffer returns a pooled or freshly allocated device buffer
// of the given shape. On pool miss it allocates at high priority; if
// allocation fails, it runs GC and retries once before failing. If ctx
// is already marked as running on d.Executor's own goroutine (e.g. a
// nested call from inside renderPass or CopyAsync's job), it allocates
// inline instead of recursing through Invoke, which would otherwise
// deadlock the single-goroutine executor against its own in-flight job.
func (d *Device) CreateDeviceBuffer(ctx context.Context, width, height, stride int) (*DeviceBuffer, error) {
	if stride < 1 || stride > 4 {
		panic(fmt.Sprintf("gpu: invalid stride %d", stride))
	}
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("gpu: invalid device buffer size %dx%d", width, height))
	}

	key := NewDeviceKey(stride, width, height)
	if b, ok := d.devicePool.Get(key); ok {
		b.refs = 1
		return b, nil
	}

	if d.Executor.OnGoroutine(ctx) {
		return d.allocateDeviceBufferLocked(width, height, stride)
	}

	var out *DeviceBuffer
	var allocErr error
	err := d.Executor.Invoke(ctx, PriorityHigh, func(context.Context) {
		out, allocErr = d.allocateDeviceBufferLocked(width, height, stride)
	})
	if err != nil {
		return nil, err
	}
	return out, allocErr
}

// allocateDeviceBufferLocked allocates a fresh device buffer, retrying
// once after a pool GC on failure. Must run on the GPU thread.
func (d *Device) allocateDeviceBufferLocked(width, height, stride int) (*DeviceBuffer, error) {
	alloc := func() (*DeviceBuffer, error) {
		return &DeviceBuffer{
			Width: width, Height: height, Stride: stride,
			Data:   make([]byte, width*height*stride),
			device: d, refs: 1,
		}, nil
	}
	b, err := alloc()
	if err != nil {
		d.gcLocked()
		b, err = alloc()
	}
	if err != nil {
		return nil, fmt.Errorf("device buffer %dx%d stride %d: %w", width, height, stride, mixer.ErrResourceExhausted)
	}
	return b, nil
}

// CreateHostBuffer returns a pooled or freshly allocated host buffer of
// the given size and usage. Allocates inline when ctx is already marked
// current for d.Executor, for the same reason as CreateDeviceBuffer.
func (d *Device) CreateHostBuffer(ctx context.Context, size int, usage HostUsage) (*HostBuffer, error) {
	if size <= 0 {
		panic(fmt.Sprintf("gpu: invalid host buffer size %d", size))
	}

	key := HostKey{Usage: usage, Size: size}
	if b, ok := d.hostPool.Get(key); ok {
		b.refs = 1
		return b, nil
	}

	if d.Executor.OnGoroutine(ctx) {
		return d.allocateHostBufferLocked(size, usage), nil
	}

	var out *HostBuffer
	err := d.Executor.Invoke(ctx, PriorityHigh, func(context.Context) {
		out = d.allocateHostBufferLocked(size, usage)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// allocateHostBufferLocked allocates a fresh host buffer. Must run on
// the GPU thread.
func (d *Device) allocateHostBufferLocked(size int, usage HostUsage) *HostBuffer {
	return &HostBuffer{
		Size: size, Usage: usage,
		Data:   make([]byte, size),
		device: d, refs: 1,
	}
}

// CopyAsync enqueues a host-to-device upload on the GPU thread and
// returns a future over the resulting device buffer, matching the
// reference's copy_async.
func (d *Device) CopyAsync(ctx context.Context, host *HostBuffer, width, height, stride int) *Future[*DeviceBuffer] {
	return Submit(d.Executor, ctx, PriorityNormal, func(ctx context.Context) (*DeviceBuffer, error) {
		buf, err := d.CreateDeviceBuffer(ctx, width, height, stride)
		if err != nil {
			return nil, err
		}
		buf.CopyFrom(host)
		return buf, nil
	})
}

// GC clears both buffer pools on the GPU thread. Idempotent, always
// succeeds.
func (d *Device) GC(ctx context.Context) error {
	if d.Executor.OnGoroutine(ctx) {
		d.gcLocked()
		return nil
	}
	return d.Executor.Invoke(ctx, PriorityHigh, func(context.Context) { d.gcLocked() })
}

func (d *Device) gcLocked() {
	d.devicePool.Clear()
	d.hostPool.Clear()
	d.logger.Warn("gpu: pool exhausted, ran gc")
}

func (d *Device) recycleDeviceBuffer(b *DeviceBuffer) {
	d.devicePool.Put(b.key(), b)
}

func (d *Device) recycleHostBuffer(h *HostBuffer) {
	if h.Usage == HostUsageWriteOnly {
		h.Map()
	} else {
		h.Unmap()
	}
	d.hostPool.Put(h.key(), h)
}

// Attach binds buf as the active render target, no-op if already attached.
func (d *Device) Attach(buf *DeviceBuffer) {
	if d.state.attached == buf {
		return
	}
	d.state.attached = buf
}

// ClearTarget clears the currently attached buffer to zero.
func (d *Device) ClearTarget() {
	if d.state.attached == nil {
		return
	}
	clear(d.state.attached.Data)
}

// Use activates a named shader program, no-op if already active.
func (d *Device) Use(program string) {
	if d.state.program == program {
		return
	}
	d.state.program = program
}

// BlendFunc sets the active blend function, no-op if unchanged.
func (d *Device) BlendFunc(name string) {
	if d.state.blendFunc == name {
		return
	}
	d.state.blendFunc = name
}

// Viewport sets the active viewport, no-op if unchanged.
func (d *Device) Viewport(w, h int) {
	if d.state.viewportW == w && d.state.viewportH == h {
		return
	}
	d.state.viewportW, d.state.viewportH = w, h
}

// Scissor sets the active scissor rectangle, no-op if unchanged.
func (d *Device) Scissor(x, y, w, h int) {
	if d.state.scissorX == x && d.state.scissorY == y && d.state.scissorW == w && d.state.scissorH == h {
		return
	}
	d.state.scissorX, d.state.scissorY, d.state.scissorW, d.state.scissorH = x, y, w, h
}

// StipplePattern sets the active interlace stipple pattern ("upper",
// "lower", or "solid"), no-op if unchanged.
func (d *Device) StipplePattern(name string) {
	if d.state.stipple == name {
		return
	}
	d.state.stipple = name
}

// Yield is a cooperative scheduling hint for code running on the GPU
// thread itself: CreateDeviceBuffer/CreateHostBuffer/GC already detect
// that case via Executor.OnGoroutine and run inline within the same
// job rather than recursing through Invoke, so there is nothing to
// yield to in the software executor. Kept for symmetry with the
// reference device's caching-wrapper surface and as the attachment
// point for a future hardware executor that does need it.
func (d *Device) Yield() {}
