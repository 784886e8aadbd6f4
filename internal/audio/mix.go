package audio

import "math"

// Click burst shape.
const (
	ClickFreq     = 1760.0 // Hz
	ClickDuration = 0.03   // seconds
	clickAttack   = 0.002  // seconds
)

// Smoothstep returns a smooth S-curve interpolation: 3t^2 - 2t^3.
// Input t is clamped to [0, 1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Click renders one mono click at SampleRate: a sine burst with a smoothstep
// attack and a linear decay, peak amplitude 1.
func Click() []float64 {
	n := int(ClickDuration * SampleRate)
	attack := clickAttack * SampleRate
	out := make([]float64, n)
	for i := range out {
		env := Smoothstep(float64(i)/attack) * (1 - float64(i)/float64(n))
		out[i] = env * math.Sin(2*math.Pi*ClickFreq*float64(i)/SampleRate)
	}
	return out
}

// MixClicks returns a copy of interleaved stereo samples with a click added
// on both channels at every onset (seconds). Onsets outside the track are
// ignored. gain scales the click relative to full scale.
func MixClicks(samples []int16, onsets []float64, gain float64) []int16 {
	out := make([]int16, len(samples))
	copy(out, samples)
	if gain <= 0 {
		return out
	}

	click := Click()
	frames := len(out) / Channels
	for _, t := range onsets {
		start := int(t * SampleRate)
		if t < 0 || start >= frames {
			continue
		}
		for j, c := range click {
			f := start + j
			if f >= frames {
				break
			}
			v := int16(c * gain * math.MaxInt16)
			for ch := range Channels {
				idx := f*Channels + ch
				out[idx] = clip(int32(out[idx]) + int32(v))
			}
		}
	}
	return out
}

func clip(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
