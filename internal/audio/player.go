package audio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Play writes interleaved stereo samples to the default output device and
// blocks until playback finishes or ctx is cancelled.
func Play(ctx context.Context, samples []int16) error {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := otoCtx.NewPlayer(bytes.NewReader(SamplesToBytes(samples)))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
