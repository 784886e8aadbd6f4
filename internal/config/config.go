package config

import (
	"os"
	"strconv"
	"strings"
)

// DefaultBPMRatios scales the detected tempo per difficulty, EASY first.
var DefaultBPMRatios = []float64{0.5, 0.6, 0.8, 1, 1, 1}

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// External tools
	FFmpegBin  string
	FFprobeBin string

	// Output
	OutputDir string
	Designer  string // written to &des_N=
	Lang      string // message language; LANG-style values are accepted

	// Generation
	BPMRatios []float64 // one per difficulty
	ClickGain float64   // audition click level, 0..1
	Seed      uint64    // 0 picks a random seed per build
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port: envInt("CHARTGEN_PORT", 8080),

		FFmpegBin:  envStr("CHARTGEN_FFMPEG", "ffmpeg"),
		FFprobeBin: envStr("CHARTGEN_FFPROBE", "ffprobe"),

		OutputDir: envStr("CHARTGEN_OUTPUT_DIR", "charts"),
		Designer:  envStr("CHARTGEN_DESIGNER", "AutoGen"),
		Lang:      envStr("CHARTGEN_LANG", envStr("LANG", "en")),

		BPMRatios: envFloats("CHARTGEN_BPM_RATIOS", DefaultBPMRatios, len(DefaultBPMRatios)),
		ClickGain: envFloat("CHARTGEN_CLICK_GAIN", 0.5),
		Seed:      envUint("CHARTGEN_SEED", 0),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envUint rejects negative values instead of wrapping them.
func envUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envFloats parses a comma-separated list. Anything other than exactly n
// valid numbers falls back.
func envFloats(key string, fallback []float64, n int) []float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	if len(parts) != n {
		return fallback
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fallback
		}
		out[i] = f
	}
	return out
}
