package audiomixer

import "github.com/gogpu/mixer"

// base is the fixed-point scale used for the volume ramp, matching the
// reference mixer's BASE = 1<<31.
const base = int64(1) << 31

// Mix produces samplesPerFrame mixed int32 samples, ramping each source's
// volume linearly from its previous tick's observed value to its current
// one, then resets for the next tick: prev becomes this tick's full
// observed set (a source absent this tick forgets its ramp history) and
// the item accumulator is cleared.
func (m *Mixer) Mix() []int32 {
	out := make([]int32, m.samplesPerFrame)

	for _, item := range m.items {
		prev, ok := m.prev[item.tag]
		if !ok {
			prev = item.transform
		}
		next := item.transform

		if prev.Volume < 0.001 && next.Volume < 0.001 {
			continue
		}

		n := len(item.samples)
		if n == 0 {
			continue
		}
		if n != len(out) {
			mixer.Logger().Warn("audiomixer: dropping item",
				"error", mixer.ErrBufferSizeMismatch, "got", n, "want", len(out))
			continue
		}

		prevFixed := int64(prev.Volume * float64(base))
		nextFixed := int64(next.Volume * float64(base))
		delta := nextFixed - prevFixed

		for i := 0; i < n; i++ {
			vol := prevFixed + delta*int64(i)/int64(n)
			out[i] += int32((int64(item.samples[i]) * vol) / base)
		}
	}

	m.prev = m.observed
	m.observed = make(map[mixer.SourceTag]mixer.FrameTransform, len(m.prev))
	m.items = m.items[:0]
	return out
}
