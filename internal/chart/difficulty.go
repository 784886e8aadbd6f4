package chart

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is a difficulty tier, EASY through Re:MASTER.
type Level int

const (
	Easy Level = iota
	Basic
	Advanced
	Expert
	Master
	ReMaster
)

// NumLevels is the number of difficulty tiers.
const NumLevels = 6

var levelNames = [NumLevels]string{"EASY", "BASIC", "ADVANCED", "EXPERT", "MASTER", "Re:MASTER"}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the six tiers.
func (l Level) Valid() bool { return l >= Easy && l <= ReMaster }

// Levels returns all tiers in order.
func Levels() []Level {
	return []Level{Easy, Basic, Advanced, Expert, Master, ReMaster}
}

// ParseLevel accepts a tier name (case-insensitive, "remaster" allowed) or
// its index 0-5.
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if l := Level(n); l.Valid() {
			return l, nil
		}
		return 0, fmt.Errorf("level index %d out of range", n)
	}
	key := strings.ReplaceAll(strings.ToLower(s), ":", "")
	for i, name := range levelNames {
		if strings.ReplaceAll(strings.ToLower(name), ":", "") == key {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Quota selects how many touch sessions a tier gets.
type Quota int

const (
	NoSessions   Quota = iota
	HalfSessions       // max(1, q/2)
	FullSessions       // q = max(1, seconds/30)
)

// Params is the fixed generation table for one tier.
type Params struct {
	Division  int
	Threshold float64 // loudness gate
	Spawn     float64 // base spawn chance, before style and jitter

	Slide     float64
	Touch     float64
	Hold      float64
	TouchHold float64
	Dual      float64

	ForceAdjacent bool
	ComplexSlides bool
	OuterTouch    bool
	SlowSlides    bool
	AllowEx       bool
	AllowDual     bool
	Resting       bool // Resting pattern reachable

	MinGap    int // slots before a lane may be reused
	SwitchGap int // slots under which a reused lane is swapped for its opposite
	Sessions  Quota
}

var params = [NumLevels]Params{
	Easy: {
		Division: 8, Threshold: 0.18, Spawn: 0.20,
		Slide: 0.01, Hold: 0.50,
		ForceAdjacent: true, SlowSlides: true,
		MinGap: 2, SwitchGap: 4, Sessions: NoSessions,
	},
	Basic: {
		Division: 8, Threshold: 0.18, Spawn: 0.35,
		Slide: 0.05, Hold: 0.30, Dual: 0.08,
		ForceAdjacent: true, SlowSlides: true, AllowEx: true, AllowDual: true,
		MinGap: 2, SwitchGap: 4, Sessions: HalfSessions,
	},
	Advanced: {
		Division: 8, Threshold: 0.16, Spawn: 0.50,
		Slide: 0.12, Touch: 0.05, Hold: 0.25, TouchHold: 0.02, Dual: 0.15,
		ForceAdjacent: true, AllowEx: true, AllowDual: true, Resting: true,
		MinGap: 2, SwitchGap: 4, Sessions: FullSessions,
	},
	Expert: {
		Division: 16, Threshold: 0.14, Spawn: 0.38,
		Slide: 0.15, Touch: 0.02, Hold: 0.18, TouchHold: 0.05, Dual: 0.15,
		ForceAdjacent: true, AllowEx: true, AllowDual: true, Resting: true,
		MinGap: 2, SwitchGap: 4, Sessions: FullSessions,
	},
	Master: {
		Division: 16, Threshold: 0.12, Spawn: 0.50,
		Slide: 0.20, Touch: 0.05, Hold: 0.12, TouchHold: 0.05, Dual: 0.30,
		ForceAdjacent: true, ComplexSlides: true, OuterTouch: true, AllowEx: true, AllowDual: true,
		MinGap: 2, SwitchGap: 4, Sessions: FullSessions,
	},
	ReMaster: {
		Division: 16, Threshold: 0.08, Spawn: 0.60,
		Slide: 0.25, Touch: 0.08, Hold: 0.05, TouchHold: 0.05, Dual: 0.40,
		ComplexSlides: true, OuterTouch: true, AllowEx: true, AllowDual: true,
		MinGap: 1, SwitchGap: 2, Sessions: FullSessions,
	},
}

// ParamsFor returns the table row for l. Out-of-range levels are clamped.
func ParamsFor(l Level) Params {
	return params[l.clamp()]
}

func (l Level) clamp() Level {
	return max(Easy, min(ReMaster, l))
}

// SessionQuota returns the maximum and minimum number of touch sessions for a
// chart of the given length.
func (p Params) SessionQuota(seconds float64) (maxQ, minQ int) {
	q := max(1, int(seconds/30))
	minQ = min(max(1, int(seconds/45)), q)
	switch p.Sessions {
	case NoSessions:
		return 0, minQ
	case HalfSessions:
		return max(1, q/2), minQ
	}
	return q, minQ
}

// ScaleBPM applies a per-tier tempo ratio, never going below 10.
func ScaleBPM(bpm int, ratio float64) int {
	return max(10, int(float64(bpm)*ratio))
}
