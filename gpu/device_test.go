package gpu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/mixer"
)

func TestCreateDeviceBufferRecyclesReleasedBuffer(t *testing.T) {
	d := NewDevice(nil)
	defer d.Close()
	ctx := context.Background()

	buf, err := d.CreateDeviceBuffer(ctx, 64, 32, 4)
	if err != nil {
		t.Fatalf("CreateDeviceBuffer() error = %v", err)
	}
	buf.Release()

	again, err := d.CreateDeviceBuffer(ctx, 64, 32, 4)
	if err != nil {
		t.Fatalf("CreateDeviceBuffer() second call error = %v", err)
	}
	if again != buf {
		t.Fatal("CreateDeviceBuffer did not recycle the released buffer of matching shape")
	}
}

func TestCreateDeviceBufferInvalidStridePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("CreateDeviceBuffer with stride 0 did not panic")
		}
	}()
	d := NewDevice(nil)
	defer d.Close()
	_, _ = d.CreateDeviceBuffer(context.Background(), 64, 32, 0)
}

func TestCreateHostBufferRecyclesReleasedBuffer(t *testing.T) {
	d := NewDevice(nil)
	defer d.Close()
	ctx := context.Background()

	hb, err := d.CreateHostBuffer(ctx, 1024, HostUsageReadOnly)
	if err != nil {
		t.Fatalf("CreateHostBuffer() error = %v", err)
	}
	hb.Release()

	again, err := d.CreateHostBuffer(ctx, 1024, HostUsageReadOnly)
	if err != nil {
		t.Fatalf("CreateHostBuffer() second call error = %v", err)
	}
	if again != hb {
		t.Fatal("CreateHostBuffer did not recycle the released buffer of matching shape")
	}
}

func TestGCClearsBothPools(t *testing.T) {
	d := NewDevice(nil)
	defer d.Close()
	ctx := context.Background()

	buf, _ := d.CreateDeviceBuffer(ctx, 8, 8, 4)
	buf.Release()
	hb, _ := d.CreateHostBuffer(ctx, 256, HostUsageReadOnly)
	hb.Release()

	if err := d.GC(ctx); err != nil {
		t.Fatalf("GC() error = %v", err)
	}

	if _, ok := d.devicePool.Get(NewDeviceKey(4, 8, 8)); ok {
		t.Fatal("GC did not clear the device pool")
	}
	if _, ok := d.hostPool.Get(HostKey{Usage: HostUsageReadOnly, Size: 256}); ok {
		t.Fatal("GC did not clear the host pool")
	}
}

func TestInvokeAfterCloseReturnsErrDeviceClosed(t *testing.T) {
	e := NewExecutor()
	e.Close()

	err := e.Invoke(context.Background(), PriorityNormal, func(context.Context) {})
	if !errors.Is(err, mixer.ErrDeviceClosed) {
		t.Fatalf("Invoke() after Close error = %v, want %v", err, mixer.ErrDeviceClosed)
	}
}

// stubHardware is a minimal HardwareBackend for exercising AttachHardware
// without pulling in package gpubackend (which would cycle back through
// kernel into gpu).
type stubHardware struct {
	compiled bool
	err      error
}

func (s *stubHardware) CompileShader() error {
	s.compiled = true
	return s.err
}

func TestAttachHardwareCompilesAndStores(t *testing.T) {
	d := NewDevice(nil)
	defer d.Close()

	h := &stubHardware{}
	if err := d.AttachHardware(context.Background(), h); err != nil {
		t.Fatalf("AttachHardware() error = %v", err)
	}
	if !h.compiled {
		t.Fatal("AttachHardware did not call CompileShader")
	}
	if d.Hardware() != h {
		t.Fatal("AttachHardware did not store the backend")
	}
}

func TestAttachHardwarePropagatesCompileError(t *testing.T) {
	d := NewDevice(nil)
	defer d.Close()

	wantErr := errors.New("compile failed")
	h := &stubHardware{err: wantErr}
	if err := d.AttachHardware(context.Background(), h); !errors.Is(err, wantErr) {
		t.Fatalf("AttachHardware() error = %v, want %v", err, wantErr)
	}
	if d.Hardware() != nil {
		t.Fatal("AttachHardware stored a backend whose CompileShader failed")
	}
}

func TestCopyAsyncRoundTripsBytes(t *testing.T) {
	d := NewDevice(nil)
	defer d.Close()
	ctx := context.Background()

	host, err := d.CreateHostBuffer(ctx, 64*32*4, HostUsageWriteOnly)
	if err != nil {
		t.Fatalf("CreateHostBuffer() error = %v", err)
	}
	for i := range host.Data {
		host.Data[i] = byte(i)
	}

	future := d.CopyAsync(ctx, host, 64, 32, 4)
	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	dev, err := future.Get(ctxTimeout)
	if err != nil {
		t.Fatalf("Future.Get() error = %v", err)
	}
	for i, b := range dev.Data {
		if b != host.Data[i] {
			t.Fatalf("Data[%d] = %d, want %d", i, b, host.Data[i])
		}
	}
}
