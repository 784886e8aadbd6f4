package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeInfo is the subset of ffprobe output the decoder needs.
type ProbeInfo struct {
	FormatName string
	Duration   float64
	SampleRate int
	Channels   int
}

// Probe runs ffprobe on path and returns its first audio stream.
func (d *Decoder) Probe(path string) (ProbeInfo, error) {
	cmd := exec.Command(d.FFprobeBin,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	out, err := cmd.Output()
	if err != nil {
		return ProbeInfo{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (ProbeInfo, error) {
	var ff struct {
		Format struct {
			FormatName string `json:"format_name"`
			Duration   string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType  string `json:"codec_type"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &ff); err != nil {
		return ProbeInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	p := ProbeInfo{
		FormatName: ff.Format.FormatName,
		Duration:   parseFloat(ff.Format.Duration),
	}
	for _, s := range ff.Streams {
		if s.CodecType != "audio" {
			continue
		}
		p.SampleRate, _ = strconv.Atoi(strings.TrimSpace(s.SampleRate))
		p.Channels = s.Channels
		if p.Duration <= 0 {
			p.Duration = parseFloat(s.Duration)
		}
		return p, nil
	}
	return p, fmt.Errorf("no audio stream in %s container", p.FormatName)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
