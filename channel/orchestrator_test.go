package channel

import (
	"context"
	"testing"
	"time"

	"github.com/gogpu/mixer"
	"github.com/gogpu/mixer/gpu"
	"github.com/gogpu/mixer/tween"
)

func newTestDevice(t *testing.T) *gpu.Device {
	t.Helper()
	d := gpu.NewDevice(nil)
	t.Cleanup(d.Close)
	return d
}

type fakeProducer struct {
	desc      mixer.PixelFormat
	planes    []mixer.HostPlane
	audio     []int32
	tag       mixer.SourceTag
	transform mixer.FrameTransform
}

func (p *fakeProducer) PixelFormatDesc() mixer.PixelFormat     { return p.desc }
func (p *fakeProducer) HostBufferPlanes() []mixer.HostPlane    { return p.planes }
func (p *fakeProducer) AudioSamples() []int32                  { return p.audio }
func (p *fakeProducer) SourceTag() mixer.SourceTag             { return p.tag }
func (p *fakeProducer) FrameTransform() mixer.FrameTransform   { return p.transform }

func solidBGRAProducer(tag mixer.SourceTag, w, h int, volume float64, samples int) *fakeProducer {
	plane := make([]byte, w*h*4)
	for i := range plane {
		plane[i] = 0x40
	}
	audio := make([]int32, samples)
	for i := range audio {
		audio[i] = 5000
	}
	transform := mixer.IdentityTransform
	transform.Volume = volume
	return &fakeProducer{
		desc: mixer.PixelFormatBGRA,
		planes: []mixer.HostPlane{{
			Desc: mixer.PlaneDesc{Width: w, Height: h, Stride: 4},
			Data: plane,
		}},
		audio:     audio,
		tag:       tag,
		transform: transform,
	}
}

func TestTickProgressiveEmptyProducesZeroFrame(t *testing.T) {
	device := newTestDevice(t)
	const w, h, samples = 64, 32, 1920
	format := mixer.VideoFormat{Width: w, Height: h, FieldCount: 1, Field: mixer.FieldProgressive}
	o := New(device, format, samples, 2)
	t.Cleanup(o.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := o.Tick(ctx, nil); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	select {
	case frame := <-o.Output():
		if len(frame.Audio) != samples {
			t.Fatalf("len(Audio) = %d, want %d", len(frame.Audio), samples)
		}
		for i, b := range frame.Image.Data {
			if b != 0 {
				t.Fatalf("Image.Data[%d] = %d, want 0", i, b)
			}
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for finished frame")
	}
}

func TestTickProgressiveSingleProducerPassesThroughImageAndAudio(t *testing.T) {
	device := newTestDevice(t)
	const w, h, samples = 16, 16, 8
	format := mixer.VideoFormat{Width: w, Height: h, FieldCount: 1, Field: mixer.FieldProgressive}
	o := New(device, format, samples, 2)
	t.Cleanup(o.Stop)

	producer := solidBGRAProducer(1, w, h, 1.0, samples)
	layers := []LayerInput{{ID: 1, Blend: mixer.BlendNormal, Producers: []mixer.Producer{producer}}}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := o.Tick(ctx, layers); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	frame := <-o.Output()
	for i, b := range frame.Image.Data {
		if b != 0x40 {
			t.Fatalf("Image.Data[%d] = %#x, want 0x40", i, b)
		}
	}
	for i, s := range frame.Audio {
		if s != 5000 {
			t.Fatalf("Audio[%d] = %d, want 5000", i, s)
		}
	}
}

func TestTickInterlacedRendersBothFieldsAndMixesAudioOnce(t *testing.T) {
	device := newTestDevice(t)
	const w, h, samples = 16, 16, 8
	format := mixer.VideoFormat{
		Width: w, Height: h, FieldCount: 2,
		Field: mixer.FieldUpper | mixer.FieldLower,
	}
	o := New(device, format, samples, 2)
	t.Cleanup(o.Stop)

	producer := solidBGRAProducer(1, w, h, 1.0, samples)
	layers := []LayerInput{{ID: 1, Blend: mixer.BlendNormal, Producers: []mixer.Producer{producer}}}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := o.Tick(ctx, layers); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}

	frame := <-o.Output()
	// Even lines come from the upper-field pass and odd lines from the
	// lower-field pass; a line missed by either pass would stay zero.
	for i, b := range frame.Image.Data {
		if b == 0 {
			t.Fatalf("Image.Data[%d] = 0, want non-zero (both fields rendered)", i)
		}
	}
	for i, s := range frame.Audio {
		if s <= 0 {
			t.Fatalf("Audio[%d] = %d, want positive (mixed exactly once)", i, s)
		}
		// A single producer at full volume mixing its own full-scale
		// samples once should not exceed its own sample magnitude.
		if s > 5000 {
			t.Fatalf("Audio[%d] = %d, want <= 5000 (mixed only once, not twice)", i, s)
		}
	}
}

func TestSetTransformIsVisibleToNextTick(t *testing.T) {
	device := newTestDevice(t)
	const w, h, samples = 8, 8, 4
	format := mixer.VideoFormat{Width: w, Height: h, FieldCount: 1, Field: mixer.FieldProgressive}
	o := New(device, format, samples, 2)
	t.Cleanup(o.Stop)

	producer := solidBGRAProducer(1, w, h, 1.0, samples)
	layers := []LayerInput{{ID: 1, Blend: mixer.BlendNormal, Producers: []mixer.Producer{producer}}}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	invisible := mixer.IdentityTransform
	invisible.Opacity = 0
	if err := o.SetTransform(ctx, tween.ChannelImage, 1, invisible, 0, "linear"); err != nil {
		t.Fatalf("SetTransform() error = %v", err)
	}

	if err := o.Tick(ctx, layers); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	frame := <-o.Output()
	for i, b := range frame.Image.Data {
		if b != 0 {
			t.Fatalf("Image.Data[%d] = %d, want 0 (opacity zeroed by SetTransform)", i, b)
		}
	}
}

func TestEnableHardwareRejectsNilProvider(t *testing.T) {
	device := newTestDevice(t)
	o := New(device, mixer.VideoFormat{Width: 2, Height: 2}, 4, 0)

	if err := o.EnableHardware(context.Background(), nil, 0); err == nil {
		t.Fatal("EnableHardware(nil provider) returned nil error")
	}
	if device.Hardware() != nil {
		t.Fatal("EnableHardware attached a backend despite a nil provider")
	}
}

func TestDiagnosticsRecordedAfterTick(t *testing.T) {
	device := newTestDevice(t)
	const w, h, samples = 8, 8, 4
	format := mixer.VideoFormat{Width: w, Height: h, FieldCount: 1, Field: mixer.FieldProgressive}
	o := New(device, format, samples, 2)
	t.Cleanup(o.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := o.Tick(ctx, nil); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	<-o.Output()

	d := o.Diagnostics()
	if d.RenderTime < 0 {
		t.Fatalf("RenderTime = %v, want >= 0", d.RenderTime)
	}
}
