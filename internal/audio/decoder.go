package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Decoder shells out to ffprobe/ffmpeg. Ogg Opus files are decoded in process.
type Decoder struct {
	FFmpegBin  string
	FFprobeBin string
}

// NewDecoder returns a decoder using the given binaries, falling back to the
// names on PATH when empty.
func NewDecoder(ffmpegBin, ffprobeBin string) *Decoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &Decoder{FFmpegBin: ffmpegBin, FFprobeBin: ffprobeBin}
}

// Decode returns the whole file as interleaved float32 samples at the
// file's native rate and channel count.
func (d *Decoder) Decode(path string) (PCM, error) {
	info, err := d.Probe(path)
	if err != nil {
		return PCM{}, err
	}
	if info.Channels <= 0 || info.SampleRate <= 0 {
		return PCM{}, fmt.Errorf("decode %s: unsupported stream (%d Hz, %d channels)", path, info.SampleRate, info.Channels)
	}

	var pcm PCM
	if strings.EqualFold(filepath.Ext(path), ".opus") {
		pcm, err = decodeOpus(path, info.Channels)
	} else {
		pcm, err = d.decodeFloat(path, info)
	}
	if err != nil {
		return PCM{}, err
	}
	if info.Duration > 0 {
		pcm.Duration = info.Duration
	} else if pcm.SampleRate > 0 {
		pcm.Duration = float64(pcm.Frames()) / float64(pcm.SampleRate)
	}
	return pcm, nil
}

func (d *Decoder) decodeFloat(path string, info ProbeInfo) (PCM, error) {
	cmd := exec.Command(d.FFmpegBin,
		"-i", path,
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(info.SampleRate),
		"-ac", strconv.Itoa(info.Channels),
		"-loglevel", "error",
		"pipe:1",
	)

	out, err := cmd.Output()
	if err != nil {
		return PCM{}, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}

	return PCM{
		Samples:    BytesToFloats(out),
		Channels:   info.Channels,
		SampleRate: info.SampleRate,
	}, nil
}

// DecodeStereo decodes a file to interleaved stereo int16 at 48kHz, the
// audition stream format.
func (d *Decoder) DecodeStereo(path string) ([]int16, error) {
	cmd := exec.Command(d.FFmpegBin,
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "error",
		"pipe:1",
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}

	// Ensure even byte count for int16 alignment
	if len(out)%2 != 0 {
		out = out[:len(out)-1]
	}

	samples := make([]int16, len(out)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(out[i*2 : i*2+2]))
	}
	return samples, nil
}

// BytesToFloats reads little-endian float32 samples, dropping a trailing
// partial sample.
func BytesToFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
