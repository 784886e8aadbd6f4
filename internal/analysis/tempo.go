package analysis

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Tempo detection constants.
const (
	EnergyWindow  = 1024 // samples per energy window
	historyLen    = 43   // windows in the trailing average
	onsetRatio    = 1.3  // energy must exceed the trailing average by this factor
	onsetFloor    = 0.05 // and this absolute RMS
	onsetDebounce = 10   // an onset must be more than this many windows after the last
	minOnsets     = 10

	MinBPM      = 60
	MaxBPM      = 200
	FallbackBPM = 120
)

// EnergyHistory is the RMS of consecutive fixed-size windows.
type EnergyHistory []float32

// NewEnergyHistory splits samples into windows of size n. A trailing partial
// window is averaged over its own length.
func NewEnergyHistory(samples []float32, n int) EnergyHistory {
	h := make(EnergyHistory, 0, (len(samples)+n-1)/n)
	for i := 0; i < len(samples); i += n {
		chunk := samples[i:min(i+n, len(samples))]
		h = append(h, float32(math.Sqrt(float64(vek32.Dot(chunk, chunk))/float64(len(chunk)))))
	}
	return h
}

// DetectOnsets returns the indexes of windows whose energy jumps above the
// trailing average.
func DetectOnsets(h EnergyHistory) []int {
	var onsets []int
	for i := historyLen; i < len(h); i++ {
		avg := vek32.Mean(h[i-historyLen : i])
		e := h[i]
		if e <= avg*onsetRatio || e <= onsetFloor {
			continue
		}
		if len(onsets) == 0 || i-onsets[len(onsets)-1] > onsetDebounce {
			onsets = append(onsets, i)
		}
	}
	return onsets
}

// FoldBPM doubles or halves bpm until it lies in [MinBPM, MaxBPM].
// Non-positive and non-finite values return FallbackBPM.
func FoldBPM(bpm float64) float64 {
	if !(bpm > 0) || math.IsInf(bpm, 0) {
		return FallbackBPM
	}
	for bpm < MinBPM {
		bpm *= 2
	}
	for bpm > MaxBPM {
		bpm /= 2
	}
	return bpm
}

// TempoFromOnsets converts the gaps between onsets to BPM estimates and
// returns the most common rounded value. Ties go to the slower tempo.
func TempoFromOnsets(onsets []int, sampleRate int) int {
	if len(onsets) < minOnsets || sampleRate <= 0 {
		return FallbackBPM
	}
	windowSec := float64(EnergyWindow) / float64(sampleRate)
	counts := make(map[int]int)
	for i := 1; i < len(onsets); i++ {
		gap := float64(onsets[i]-onsets[i-1]) * windowSec
		counts[int(math.RoundToEven(FoldBPM(60/gap)))]++
	}

	best, bestN := FallbackBPM, 0
	for bpm, n := range counts {
		if n > bestN || (n == bestN && bpm < best) {
			best, bestN = bpm, n
		}
	}
	return best
}
