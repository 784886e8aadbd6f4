// Package analysis extracts tempo and loudness from decoded audio.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/satindergrewal/simaigen/internal/audio"
	"github.com/viterin/vek/vek32"
)

// ErrNotLoaded is returned when no track has been loaded.
var ErrNotLoaded = errors.New("no track loaded")

// DefaultWindow is the loudness window used by Volume.
const DefaultWindow = 0.1

// Decoder turns a file into PCM. *audio.Decoder satisfies it.
type Decoder interface {
	Decode(path string) (audio.PCM, error)
}

// Waveform is a mono track. It is never modified after Load.
type Waveform struct {
	Samples    []float32
	SampleRate int
	Duration   float64 // seconds
}

// Downmix averages all channels of pcm into one.
func Downmix(pcm audio.PCM) *Waveform {
	frames := pcm.Frames()
	mono := make([]float32, frames)
	ch := make([]float32, frames)
	for c := range pcm.Channels {
		for i := range ch {
			ch[i] = pcm.Samples[i*pcm.Channels+c]
		}
		vek32.Add_Inplace(mono, ch)
	}
	if pcm.Channels > 1 {
		vek32.MulNumber_Inplace(mono, 1/float32(pcm.Channels))
	}

	dur := pcm.Duration
	if dur <= 0 && pcm.SampleRate > 0 {
		dur = float64(frames) / float64(pcm.SampleRate)
	}
	return &Waveform{Samples: mono, SampleRate: pcm.SampleRate, Duration: dur}
}

// Analyzer holds one loaded track. After Load it is read-only and safe for
// concurrent use.
type Analyzer struct {
	dec  Decoder
	wave *Waveform
}

// New returns an Analyzer that loads files through dec.
func New(dec Decoder) *Analyzer {
	return &Analyzer{dec: dec}
}

// Load decodes path and replaces the current track.
func (a *Analyzer) Load(path string) error {
	pcm, err := a.dec.Decode(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return a.LoadPCM(pcm)
}

// LoadPCM replaces the current track with already decoded samples.
func (a *Analyzer) LoadPCM(pcm audio.PCM) error {
	if pcm.Channels <= 0 || pcm.SampleRate <= 0 {
		return fmt.Errorf("invalid pcm: %d channels at %d Hz", pcm.Channels, pcm.SampleRate)
	}
	a.wave = Downmix(pcm)
	return nil
}

// Loaded reports whether a track is loaded.
func (a *Analyzer) Loaded() bool { return a.wave != nil }

// Duration returns the track length in seconds, or 0.
func (a *Analyzer) Duration() float64 {
	if a.wave == nil {
		return 0
	}
	return a.wave.Duration
}

// SampleRate returns the track sample rate, or 0.
func (a *Analyzer) SampleRate() int {
	if a.wave == nil {
		return 0
	}
	return a.wave.SampleRate
}

// DetectTempo estimates the track tempo. See TempoFromOnsets.
func (a *Analyzer) DetectTempo() int {
	if a.wave == nil || len(a.wave.Samples) == 0 {
		return FallbackBPM
	}
	h := NewEnergyHistory(a.wave.Samples, EnergyWindow)
	return TempoFromOnsets(DetectOnsets(h), a.wave.SampleRate)
}

// VolumeAt returns loudness over window seconds from t, scaled so that an
// RMS of 1/3 or more reads as 1. Outside the track it returns 0.
func (a *Analyzer) VolumeAt(t, window float64) float64 {
	w := a.wave
	if w == nil || t < 0 || t >= w.Duration {
		return 0
	}
	start := int(t * float64(w.SampleRate))
	if start < 0 || start >= len(w.Samples) {
		return 0
	}
	n := min(int(window*float64(w.SampleRate)), len(w.Samples)-start)
	if n <= 0 {
		return 0
	}
	chunk := w.Samples[start : start+n]
	rms := math.Sqrt(float64(vek32.Dot(chunk, chunk)) / float64(n))
	return min(1, rms*3)
}

// Volume is VolumeAt with DefaultWindow.
func (a *Analyzer) Volume(t float64) float64 {
	return a.VolumeAt(t, DefaultWindow)
}

// Summary describes the loaded track.
func (a *Analyzer) Summary() string {
	if a.wave == nil {
		return "No data"
	}
	return fmt.Sprintf("Sampling rate: %d Hz\nTotal duration: %.2f Seconds\nTotal sample size: %d",
		a.wave.SampleRate, a.wave.Duration, len(a.wave.Samples))
}

// Report is the machine-readable form of Summary plus tempo detection.
type Report struct {
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	Duration   float64 `json:"duration" yaml:"duration"`
	Samples    int     `json:"samples" yaml:"samples"`
	Onsets     int     `json:"onsets" yaml:"onsets"`
	BPM        int     `json:"bpm" yaml:"bpm"`
}

// Report analyzes the loaded track.
func (a *Analyzer) Report() (Report, error) {
	if a.wave == nil {
		return Report{}, ErrNotLoaded
	}
	r := Report{
		SampleRate: a.wave.SampleRate,
		Duration:   a.wave.Duration,
		Samples:    len(a.wave.Samples),
		BPM:        FallbackBPM,
	}
	if len(a.wave.Samples) > 0 {
		onsets := DetectOnsets(NewEnergyHistory(a.wave.Samples, EnergyWindow))
		r.Onsets = len(onsets)
		r.BPM = TempoFromOnsets(onsets, a.wave.SampleRate)
	}
	return r, nil
}
