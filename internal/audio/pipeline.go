package audio

import (
	"context"
	"log"
	"sync"
	"time"
)

// Audition is a request to play a track with a click on every chart onset.
// When Samples is set the track is already rendered and Path is ignored.
type Audition struct {
	Info    TrackInfo
	Path    string
	Onsets  []float64 // seconds
	Gain    float64
	Samples []int16
}

// Pipeline renders auditions and outputs PCM frames at real-time rate.
type Pipeline struct {
	dec       *Decoder
	requestCh chan *Audition
	frameCh   chan []int16
	skipCh    chan struct{}

	mu            sync.RWMutex
	current       TrackInfo
	trackPosition time.Duration
	trackDuration time.Duration
}

// NewPipeline creates an audition pipeline that decodes with dec.
func NewPipeline(dec *Decoder) *Pipeline {
	return &Pipeline{
		dec:       dec,
		requestCh: make(chan *Audition, 8),
		frameCh:   make(chan []int16, 100),
		skipCh:    make(chan struct{}, 1),
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (p *Pipeline) Frames() <-chan []int16 {
	return p.frameCh
}

// Enqueue adds an audition to the queue. It reports false when the queue is
// full instead of blocking the caller.
func (p *Pipeline) Enqueue(a *Audition) bool {
	select {
	case p.requestCh <- a:
		return true
	default:
		return false
	}
}

// QueueSize returns the number of auditions waiting in the queue.
func (p *Pipeline) QueueSize() int {
	return len(p.requestCh)
}

// Skip interrupts the current audition.
func (p *Pipeline) Skip() {
	select {
	case p.skipCh <- struct{}{}:
	default:
	}
}

// Status returns current playback info.
func (p *Pipeline) Status() (track TrackInfo, position, duration time.Duration) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.trackPosition, p.trackDuration
}

// Render decodes the audition's track if needed and mixes in the clicks.
func (p *Pipeline) Render(a *Audition) ([]int16, error) {
	samples := a.Samples
	if samples == nil {
		var err error
		samples, err = p.dec.DecodeStereo(a.Path)
		if err != nil {
			return nil, err
		}
	}
	return MixClicks(samples, a.Onsets, a.Gain), nil
}

type renderedAudition struct {
	info    TrackInfo
	samples []int16
}

// Run starts the pipeline. Blocks until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.frameCh)

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	// Background renderer so decoding never stalls the frame clock
	renderedCh := make(chan *renderedAudition, 2)
	go func() {
		defer close(renderedCh)
		for {
			select {
			case <-ctx.Done():
				return
			case a := <-p.requestCh:
				samples, err := p.Render(a)
				if err != nil {
					log.Printf("Audition render failed %s: %v", a.Info.ID, err)
					continue
				}
				select {
				case renderedCh <- &renderedAudition{info: a.Info, samples: samples}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ra, ok := <-renderedCh:
			if !ok {
				return
			}
			p.play(ctx, ticker, ra)
		}
	}
}

func (p *Pipeline) play(ctx context.Context, ticker *time.Ticker, ra *renderedAudition) {
	samples := ra.samples
	totalFrames := len(samples) / FrameSamples

	p.setTrack(ra.info, totalFrames)
	log.Printf("Now auditioning: %s %s (notes: %d, frames: %d)", ra.info.Title, ra.info.Level, ra.info.Notes, totalFrames)

	for i := range totalFrames {
		if !p.sendFrame(ctx, ticker, samples[i*FrameSamples:(i+1)*FrameSamples]) {
			return
		}
		p.updatePosition(i + 1)
	}
}

// sendFrame waits for the ticker then sends a frame. Returns false on skip or cancel.
func (p *Pipeline) sendFrame(ctx context.Context, ticker *time.Ticker, frame []int16) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.skipCh:
		log.Println("Audition skipped")
		return false
	case <-ticker.C:
	}

	select {
	case p.frameCh <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) setTrack(info TrackInfo, totalFrames int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = info
	p.trackPosition = 0
	p.trackDuration = time.Duration(totalFrames) * FrameDuration
}

func (p *Pipeline) updatePosition(frames int) {
	p.mu.Lock()
	p.trackPosition = time.Duration(frames) * FrameDuration
	p.mu.Unlock()
}
