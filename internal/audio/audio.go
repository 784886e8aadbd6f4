package audio

import "time"

// Audition stream format. Analysis decodes at the file's native rate; only the
// audition path is pinned to this format.
const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// PCM is decoded audio handed from the decoder to the analyzer.
type PCM struct {
	Samples    []float32 // interleaved, Channels values per frame
	Channels   int
	SampleRate int
	Duration   float64 // seconds; container duration when known
}

// Frames returns the number of sample frames (samples per channel).
func (p PCM) Frames() int {
	if p.Channels <= 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// TrackInfo identifies an audition queued on the pipeline.
type TrackInfo struct {
	ID    string // chart set id
	Level string // difficulty name
	Title string
	Notes int // number of onsets marked with a click
}
