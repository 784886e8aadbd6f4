package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/hraban/opus.v2"
)

// libopusfile always decodes at 48kHz regardless of the input rate.
const opusRate = 48000

// decodeOpus reads an Ogg Opus file without going through ffmpeg.
func decodeOpus(path string, channels int) (PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return PCM{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := opus.NewStream(f)
	if err != nil {
		return PCM{}, fmt.Errorf("opus stream %s: %w", path, err)
	}
	defer s.Close()

	// 120ms is the longest Opus packet.
	buf := make([]float32, opusRate/1000*120*channels)
	var samples []float32
	for {
		n, err := s.ReadFloat32(buf)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PCM{}, fmt.Errorf("opus decode %s: %w", path, err)
		}
		samples = append(samples, buf[:n*channels]...)
	}

	return PCM{
		Samples:    samples,
		Channels:   channels,
		SampleRate: opusRate,
	}, nil
}
