package tween

import (
	"testing"

	"github.com/gogpu/mixer"
)

func TestEngineSetTweensFromIdentity(t *testing.T) {
	e := NewEngine()
	target := mixer.IdentityTransform
	target.Opacity = 0

	e.Set(ChannelImage, 1, target, 4, "linear")
	out := e.FetchAndTick(ChannelImage, []LayerID{1}, 2)
	if got := out[1].Opacity; got != 0.5 {
		t.Fatalf("Opacity after 2/4 ticks = %v, want 0.5", got)
	}
}

func TestEngineApplyUsesCurrentValueAsSource(t *testing.T) {
	e := NewEngine()
	double := func(f mixer.FrameTransform) mixer.FrameTransform {
		f.Gain *= 2
		return f
	}
	e.Apply(ChannelImage, 1, double, 0, "linear")
	out := e.FetchAndTick(ChannelImage, []LayerID{1}, 1)
	if got := out[1].Gain; got != 2 {
		t.Fatalf("Gain after Apply(double) on identity (Gain=1) = %v, want 2", got)
	}
}

func TestEngineResetTweensTowardIdentity(t *testing.T) {
	e := NewEngine()
	away := mixer.IdentityTransform
	away.Opacity = 0
	e.Set(ChannelImage, 1, away, 0, "linear")
	e.FetchAndTick(ChannelImage, []LayerID{1}, 1)

	e.Reset(ChannelImage, 1, 0, "linear")
	out := e.FetchAndTick(ChannelImage, []LayerID{1}, 1)
	if got := out[1].Opacity; got != 1 {
		t.Fatalf("Opacity after Reset = %v, want identity 1", got)
	}
}

func TestEngineFetchAndTickGCsAbsentLayers(t *testing.T) {
	e := NewEngine()
	target := mixer.IdentityTransform
	target.Opacity = 0
	e.Set(ChannelImage, 1, target, 10, "linear")
	e.Set(ChannelImage, 2, target, 10, "linear")

	e.FetchAndTick(ChannelImage, []LayerID{1, 2}, 5)
	// layer 2 drops out of the live set; its partially-elapsed tween must
	// not resurrect if the id reappears later.
	e.FetchAndTick(ChannelImage, []LayerID{1}, 5)

	out := e.FetchAndTick(ChannelImage, []LayerID{1, 2}, 0)
	if got := out[2].Opacity; got != 1 {
		t.Fatalf("layer 2 Opacity after GC+reappear = %v, want fresh identity 1", got)
	}
	if got := out[1].Opacity; got != 0 {
		t.Fatalf("layer 1 Opacity after 10/10 ticks = %v, want 0", got)
	}
}

func TestEngineClearResetsRootsAndTables(t *testing.T) {
	e := NewEngine()
	target := mixer.IdentityTransform
	target.Opacity = 0
	e.Set(ChannelImage, 1, target, 10, "linear")

	e.Clear()
	out := e.FetchAndTick(ChannelImage, []LayerID{1}, 0)
	if got := out[1].Opacity; got != 1 {
		t.Fatalf("Opacity after Clear = %v, want identity 1", got)
	}
}

func TestEngineComposesRootWithPerLayer(t *testing.T) {
	e := NewEngine()
	rootTarget := mixer.IdentityTransform
	rootTarget.Gain = 2
	e.rootImage = NewTweened(mixer.IdentityTransform, rootTarget, 0, "linear")

	layerTarget := mixer.IdentityTransform
	layerTarget.Gain = 3
	e.Set(ChannelImage, 1, layerTarget, 0, "linear")

	out := e.FetchAndTick(ChannelImage, []LayerID{1}, 1)
	if got := out[1].Gain; got != 6 {
		t.Fatalf("composed Gain = %v, want root(2) * layer(3) = 6", got)
	}
}

func TestEngineChannelsAreIndependent(t *testing.T) {
	e := NewEngine()
	imageTarget := mixer.IdentityTransform
	imageTarget.Opacity = 0
	e.Set(ChannelImage, 1, imageTarget, 0, "linear")

	out := e.FetchAndTick(ChannelAudio, []LayerID{1}, 1)
	if got := out[1].Opacity; got != 1 {
		t.Fatalf("audio channel Opacity = %v, want untouched identity 1", got)
	}
}
