package kernel

// DrawKey renders an item into a stride-1 key buffer: the computed alpha
// channel (after levels/csb/opacity, before any blend or keyer
// combination) becomes the mask value. Matches the reference protocol's
// "draw with background=local_key_buffer, no keys" case.
func DrawKey(p DrawParams) {
	dst := p.Background
	outW, outH := dst.Width, dst.Height

	x0 := int(p.Transform.FillTranslationX * float64(outW))
	y0 := int(p.Transform.FillTranslationY * float64(outH))
	w := int(p.Transform.FillScaleX * float64(outW))
	h := int(p.Transform.FillScaleY * float64(outH))
	if w <= 0 || h <= 0 {
		return
	}

	isHD := p.isHD()
	levelsOn := p.HasLevels()
	csbOn := p.HasColorAdjust()

	for ty := max(y0, 0); ty < min(y0+h, outH); ty++ {
		if !includesLine(p.Transform.Field, ty) {
			continue
		}
		for tx := max(x0, 0); tx < min(x0+w, outW); tx++ {
			u := float64(tx-x0) / float64(w)
			v := float64(ty-y0) / float64(h)

			color := sampleSource(p, u, v, isHD)
			if levelsOn {
				color = applyLevels(color, p.Transform.Levels)
			}
			if csbOn {
				color = applyCSB(color, p.Transform.Brightness, p.Transform.Saturation, p.Transform.Contrast)
			}
			color.a *= p.Transform.Opacity

			idx := ty*dst.Width + tx
			dst.Data[idx] = toByte(color.a)
		}
	}
}
