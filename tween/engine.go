package tween

import "github.com/gogpu/mixer"

// LayerID identifies a layer's tweened transform entry.
type LayerID int

// Engine holds the per-layer tweened transforms for both the image and
// audio paths, plus two root tweens applied after the per-layer ones.
// All methods are meant to run on a channel's single executor, serialized
// with rendering; Engine itself does no internal locking.
type Engine struct {
	image     map[LayerID]Tweened[mixer.FrameTransform]
	audio     map[LayerID]Tweened[mixer.FrameTransform]
	rootImage Tweened[mixer.FrameTransform]
	rootAudio Tweened[mixer.FrameTransform]
}

// NewEngine creates an engine with empty per-layer tables and identity
// root tweens.
func NewEngine() *Engine {
	return &Engine{
		image:     make(map[LayerID]Tweened[mixer.FrameTransform]),
		audio:     make(map[LayerID]Tweened[mixer.FrameTransform]),
		rootImage: Identity(mixer.IdentityTransform),
		rootAudio: Identity(mixer.IdentityTransform),
	}
}

// Channel distinguishes the image and audio tween tables a layer
// operation targets.
type Channel int

const (
	ChannelImage Channel = iota
	ChannelAudio
)

func (e *Engine) table(ch Channel) map[LayerID]Tweened[mixer.FrameTransform] {
	if ch == ChannelAudio {
		return e.audio
	}
	return e.image
}

// Set replaces a layer's tweened entry with one that animates from its
// currently fetched value to target.
func (e *Engine) Set(ch Channel, layer LayerID, target mixer.FrameTransform, durationTicks int, easingName string) {
	table := e.table(ch)
	current := mixer.IdentityTransform
	if t, ok := table[layer]; ok {
		current = t.Fetch()
	}
	table[layer] = NewTweened(current, target, durationTicks, easingName)
}

// Apply is like Set but computes the destination from the layer's
// current value via fn.
func (e *Engine) Apply(ch Channel, layer LayerID, fn func(mixer.FrameTransform) mixer.FrameTransform, durationTicks int, easingName string) {
	table := e.table(ch)
	current := mixer.IdentityTransform
	if t, ok := table[layer]; ok {
		current = t.Fetch()
	}
	table[layer] = NewTweened(current, fn(current), durationTicks, easingName)
}

// Reset tweens a layer back toward the identity transform.
func (e *Engine) Reset(ch Channel, layer LayerID, durationTicks int, easingName string) {
	e.Set(ch, layer, mixer.IdentityTransform, durationTicks, easingName)
}

// Clear empties both per-layer tables and resets the root tweens to
// identity.
func (e *Engine) Clear() {
	e.image = make(map[LayerID]Tweened[mixer.FrameTransform])
	e.audio = make(map[LayerID]Tweened[mixer.FrameTransform])
	e.rootImage = Identity(mixer.IdentityTransform)
	e.rootAudio = Identity(mixer.IdentityTransform)
}

// FetchAndTick advances every live layer entry and both roots by ticks,
// returning the composed cumulative transform (root * per-layer) for
// every layer present in liveLayers. Entries for layers absent from
// liveLayers are dropped (garbage-collected), matching the reference
// engine's tick-boundary cleanup of absent-layer state.
func (e *Engine) FetchAndTick(ch Channel, liveLayers []LayerID, ticks int) map[LayerID]mixer.FrameTransform {
	table := e.table(ch)
	next := make(map[LayerID]Tweened[mixer.FrameTransform], len(liveLayers))
	out := make(map[LayerID]mixer.FrameTransform, len(liveLayers))

	var root *Tweened[mixer.FrameTransform]
	if ch == ChannelAudio {
		root = &e.rootAudio
	} else {
		root = &e.rootImage
	}
	rootVal, advancedRoot := root.FetchAndTick(ticks)
	*root = advancedRoot

	for _, layer := range liveLayers {
		t, ok := table[layer]
		if !ok {
			t = Identity(mixer.IdentityTransform)
		}
		val, advanced := t.FetchAndTick(ticks)
		next[layer] = advanced
		out[layer] = rootVal.Compose(val)
	}

	e.replaceTable(ch, next)
	return out
}

func (e *Engine) replaceTable(ch Channel, next map[LayerID]Tweened[mixer.FrameTransform]) {
	if ch == ChannelAudio {
		e.audio = next
	} else {
		e.image = next
	}
}
