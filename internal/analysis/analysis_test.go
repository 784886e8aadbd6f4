package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/satindergrewal/simaigen/internal/audio"
)

type fakeDecoder struct {
	pcm audio.PCM
	err error
}

func (f fakeDecoder) Decode(path string) (audio.PCM, error) { return f.pcm, f.err }

// pulses returns a mono track that is silent except for one full window at
// amplitude 0.5 every gap windows, starting at window first.
func pulses(rate, first, gap, count int) audio.PCM {
	total := (first + gap*count + 50) * EnergyWindow
	s := make([]float32, total)
	for k := range count {
		start := (first + k*gap) * EnergyWindow
		for j := range EnergyWindow {
			s[start+j] = 0.5
		}
	}
	return audio.PCM{Samples: s, Channels: 1, SampleRate: rate}
}

func load(t *testing.T, pcm audio.PCM) *Analyzer {
	t.Helper()
	a := New(fakeDecoder{pcm: pcm})
	if err := a.Load("track.wav"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return a
}

// --- Loading ---

func TestLoadError(t *testing.T) {
	boom := errors.New("boom")
	a := New(fakeDecoder{err: boom})
	err := a.Load("missing.mp3")
	if !errors.Is(err, boom) {
		t.Errorf("Load error = %v, want wrapped boom", err)
	}
	if a.Loaded() {
		t.Error("Loaded() = true after failed load")
	}
}

func TestLoadPCMRejectsEmptyFormat(t *testing.T) {
	a := New(nil)
	if err := a.LoadPCM(audio.PCM{Samples: []float32{1}, SampleRate: 44100}); err == nil {
		t.Error("LoadPCM without channels: want error")
	}
}

func TestDownmix(t *testing.T) {
	pcm := audio.PCM{
		Samples:    []float32{1, 0, 0.5, 0.5, -1, 1, 0.25},
		Channels:   2,
		SampleRate: 4,
	}
	w := Downmix(pcm)
	want := []float32{0.5, 0.5, 0}
	if len(w.Samples) != len(want) {
		t.Fatalf("len = %d, want %d", len(w.Samples), len(want))
	}
	for i := range want {
		if w.Samples[i] != want[i] {
			t.Errorf("sample[%d] = %v, want %v", i, w.Samples[i], want[i])
		}
	}
	if w.Duration != 0.75 {
		t.Errorf("Duration = %v, want 0.75", w.Duration)
	}
}

func TestDurationFromContainer(t *testing.T) {
	a := load(t, audio.PCM{Samples: make([]float32, 100), Channels: 1, SampleRate: 100, Duration: 1.02})
	if a.Duration() != 1.02 {
		t.Errorf("Duration() = %v, want 1.02", a.Duration())
	}
}

// --- Loudness ---

func TestVolumeUnloaded(t *testing.T) {
	a := New(nil)
	if v := a.VolumeAt(1, 0.1); v != 0 {
		t.Errorf("VolumeAt on empty analyzer = %v, want 0", v)
	}
}

func TestVolumeBounds(t *testing.T) {
	rate := 8000
	s := make([]float32, rate*2)
	for i := range s {
		s[i] = float32(math.Sin(float64(i) * 0.05))
	}
	a := load(t, audio.PCM{Samples: s, Channels: 1, SampleRate: rate})

	for _, tm := range []float64{-0.001, -5, 2, 2.5, 100} {
		if v := a.VolumeAt(tm, 0.1); v != 0 {
			t.Errorf("VolumeAt(%v) = %v, want exactly 0", tm, v)
		}
	}
	for tm := 0.0; tm < 2; tm += 0.037 {
		for _, w := range []float64{0, 0.01, 0.05, 0.1, 3} {
			if v := a.VolumeAt(tm, w); v < 0 || v > 1 {
				t.Errorf("VolumeAt(%v, %v) = %v, outside [0, 1]", tm, w, v)
			}
		}
	}
	if v := a.Volume(0.5); v != 1 {
		t.Errorf("full-scale sine Volume = %v, want 1 (clipped)", v)
	}
}

func TestVolumeScale(t *testing.T) {
	s := make([]float32, 1000)
	for i := range s {
		s[i] = 0.1
	}
	a := load(t, audio.PCM{Samples: s, Channels: 1, SampleRate: 1000})
	if v := a.Volume(0.2); math.Abs(v-0.3) > 1e-6 {
		t.Errorf("Volume of constant 0.1 = %v, want 0.3", v)
	}
	// Window past the end is clamped to the remaining samples.
	if v := a.VolumeAt(0.95, 1); math.Abs(v-0.3) > 1e-6 {
		t.Errorf("VolumeAt near end = %v, want 0.3", v)
	}
}

func TestSummary(t *testing.T) {
	if got := New(nil).Summary(); got != "No data" {
		t.Errorf("Summary() = %q, want No data", got)
	}
	a := load(t, audio.PCM{Samples: make([]float32, 400), Channels: 2, SampleRate: 100})
	want := "Sampling rate: 100 Hz\nTotal duration: 2.00 Seconds\nTotal sample size: 200"
	if got := a.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

// --- Tempo ---

func TestFoldBPMRange(t *testing.T) {
	for _, bpm := range []float64{1e-9, 0.5, 7, 59.999, 60, 120, 200, 200.001, 401, 9999, 1e12} {
		got := FoldBPM(bpm)
		if got < MinBPM || got > MaxBPM {
			t.Errorf("FoldBPM(%v) = %v, outside [%d, %d]", bpm, got, MinBPM, MaxBPM)
		}
	}
	if got := FoldBPM(50); got != 100 {
		t.Errorf("FoldBPM(50) = %v, want 100", got)
	}
	if got := FoldBPM(480); got != 120 {
		t.Errorf("FoldBPM(480) = %v, want 120", got)
	}
	for _, bad := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		if got := FoldBPM(bad); got != FallbackBPM {
			t.Errorf("FoldBPM(%v) = %v, want %d", bad, got, FallbackBPM)
		}
	}
}

func TestEnergyHistoryPartialWindow(t *testing.T) {
	s := make([]float32, EnergyWindow+2)
	s[EnergyWindow] = 1
	s[EnergyWindow+1] = 1
	h := NewEnergyHistory(s, EnergyWindow)
	if len(h) != 2 {
		t.Fatalf("len = %d, want 2", len(h))
	}
	if h[0] != 0 || h[1] != 1 {
		t.Errorf("history = %v, want [0 1]", h)
	}
}

func TestDetectTempoPulseTrain(t *testing.T) {
	// 40960 Hz makes one window exactly 25ms; 24 windows = 0.6s = 100 BPM.
	a := load(t, pulses(40960, 50, 24, 16))
	if got := a.DetectTempo(); got != 100 {
		t.Errorf("DetectTempo() = %d, want 100", got)
	}
}

func TestDetectTempoFoldsSlowPulses(t *testing.T) {
	// 48 windows = 1.2s = 50 BPM, folded to 100.
	a := load(t, pulses(40960, 50, 48, 12))
	if got := a.DetectTempo(); got != 100 {
		t.Errorf("DetectTempo() = %d, want 100", got)
	}
}

func TestDetectTempoFewOnsets(t *testing.T) {
	a := load(t, pulses(40960, 50, 24, 9))
	if n := len(DetectOnsets(NewEnergyHistory(a.wave.Samples, EnergyWindow))); n != 9 {
		t.Fatalf("onsets = %d, want 9", n)
	}
	if got := a.DetectTempo(); got != FallbackBPM {
		t.Errorf("DetectTempo() with 9 onsets = %d, want %d", got, FallbackBPM)
	}
}

func TestDetectTempoUnloaded(t *testing.T) {
	if got := New(nil).DetectTempo(); got != FallbackBPM {
		t.Errorf("DetectTempo() unloaded = %d, want %d", got, FallbackBPM)
	}
}

func TestOnsetDebounce(t *testing.T) {
	h := make(EnergyHistory, 100)
	h[50], h[55], h[61] = 1, 1, 1
	got := DetectOnsets(h)
	want := []int{50, 61}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("DetectOnsets = %v, want %v", got, want)
	}

	// Exactly onsetDebounce windows apart is still too close.
	h = make(EnergyHistory, 100)
	h[50], h[50+onsetDebounce] = 1, 1
	if got := DetectOnsets(h); len(got) != 1 || got[0] != 50 {
		t.Errorf("DetectOnsets at a gap of %d = %v, want [50]", onsetDebounce, got)
	}
}

func TestTempoTiePrefersSlower(t *testing.T) {
	// At 40960 Hz: 24 windows = 100 BPM, 30 windows = 80 BPM.
	onsets := []int{0}
	for k := range 10 {
		gap := 24
		if k%2 == 1 {
			gap = 30
		}
		onsets = append(onsets, onsets[len(onsets)-1]+gap)
	}
	if got := TempoFromOnsets(onsets, 40960); got != 80 {
		t.Errorf("TempoFromOnsets tie = %d, want 80", got)
	}
}

// --- Report ---

func TestReport(t *testing.T) {
	if _, err := New(nil).Report(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Report() unloaded error = %v, want ErrNotLoaded", err)
	}
	a := load(t, pulses(40960, 50, 24, 16))
	r, err := a.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.BPM != 100 || r.Onsets != 16 || r.SampleRate != 40960 {
		t.Errorf("Report = %+v", r)
	}
}
