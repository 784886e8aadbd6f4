package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satindergrewal/simaigen/internal/chart"
	"github.com/satindergrewal/simaigen/internal/maidata"
)

// parseLevels reads a comma-separated difficulty list. "all" and "" select
// every difficulty.
func parseLevels(s string) ([]chart.Level, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return chart.Levels(), nil
	}
	var out []chart.Level
	for _, f := range strings.Split(s, ",") {
		l, err := chart.ParseLevel(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// parseLevelBPMs reads LEVEL=BPM pairs.
func parseLevelBPMs(s string) ([chart.NumLevels]int, error) {
	var out [chart.NumLevels]int
	if s == "" {
		return out, nil
	}
	for _, f := range strings.Split(s, ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(f), "=")
		if !ok {
			return out, fmt.Errorf("level bpm %q: want LEVEL=BPM", f)
		}
		l, err := chart.ParseLevel(name)
		if err != nil {
			return out, err
		}
		bpm, err := strconv.Atoi(val)
		if err != nil || bpm <= 0 {
			return out, fmt.Errorf("level bpm %q: invalid bpm", f)
		}
		out[l] = bpm
	}
	return out, nil
}

func midiName(title string, l chart.Level) string {
	return fmt.Sprintf("%s_lv%d.mid", maidata.SanitizeTitle(title), int(l)+1)
}
