// Package audiomixer implements the audio mixer (C7): a visitor parallel
// to the image mixer that mixes int32 PCM samples with a per-source
// volume ramp, tagged by source identity so the ramp is continuous
// across ticks.
//
// Grounded on the reference audio_mixer::implementation (begin, visit,
// mix) in the original playout engine's audio mixer source.
package audiomixer

import (
	"github.com/gogpu/mixer"
)

type audioItem struct {
	tag       mixer.SourceTag
	transform mixer.FrameTransform
	samples   []int32
}

// Mixer accumulates one tick's (or one field's) audio items and mixes
// them into a fixed-length output buffer, remembering each source's
// volume across ticks for ramp continuity.
//
// Ramp continuity and the visit-time silence skip are tracked
// separately: observed remembers every tag's transform the moment it is
// visited, regardless of volume, so a source that starts at volume 0 (and
// is therefore excluded from this tick's mix, per the visit skip below)
// still has a known starting point for next tick's ramp. prev holds the
// previous tick's observed map and is what Mix reads from.
type Mixer struct {
	samplesPerFrame int
	prev            map[mixer.SourceTag]mixer.FrameTransform
	observed        map[mixer.SourceTag]mixer.FrameTransform
	stack           []mixer.FrameTransform
	items           []audioItem
}

// New creates an audio mixer that produces samplesPerFrame samples per
// Mix call.
func New(samplesPerFrame int) *Mixer {
	return &Mixer{
		samplesPerFrame: samplesPerFrame,
		prev:            make(map[mixer.SourceTag]mixer.FrameTransform),
		observed:        make(map[mixer.SourceTag]mixer.FrameTransform),
		stack:           []mixer.FrameTransform{mixer.IdentityTransform},
	}
}

// Begin pushes stack.top() composed with f's transform.
func (m *Mixer) Begin(f *mixer.DataFrame) {
	top := m.stack[len(m.stack)-1]
	m.stack = append(m.stack, top.Compose(f.Transform))
}

// Visit records an audio item, unless its composed field is empty (the
// item is invisible this tick, same precondition the image mixer checks)
// or this is the non-last pass of an interlaced tick's two field calls.
// Audio has no concept of fields; orchestrator decorates the same
// producer's frame once per field exactly like the image path does, and
// a source's audio content does not differ between the two decorated
// copies, so only the closing (lower-field) pass is allowed to mix it —
// matching the reference mixer's own "we only care about the last
// field" comment. A tag's transform is remembered in observed as soon as
// it passes the empty-field check, even on the discarded upper pass or
// when volume is too low to enter this tick's mix, so ramp continuity
// survives a tick where a source is present but silent.
func (m *Mixer) Visit(f *mixer.DataFrame) {
	top := m.stack[len(m.stack)-1]
	if top.Field == 0 {
		return
	}
	m.observed[f.Tag] = top
	if top.Field == mixer.FieldUpper {
		return
	}
	if top.Volume < 0.002 || len(f.Audio) == 0 {
		return
	}
	m.items = append(m.items, audioItem{tag: f.Tag, transform: top, samples: f.Audio})
}

// End pops the transform stack.
func (m *Mixer) End() {
	if len(m.stack) > 1 {
		m.stack = m.stack[:len(m.stack)-1]
	}
}

