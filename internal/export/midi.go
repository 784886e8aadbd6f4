// Package export writes a parsed chart as a Standard MIDI File so it can be
// previewed in any sequencer.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/satindergrewal/simaigen/internal/chart"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TicksPerQuarter is the file resolution.
const TicksPerQuarter = 960

// Key bases. Lane n plays LaneKey+n-1, touch zones likewise.
const (
	LaneKey   = 60 // lanes 1..8 -> 60..67
	ZoneBKey  = 72 // B1..B8 -> 72..79
	ZoneEKey  = 84 // E1..E8 -> 84..91
	CentreKey = 96 // C
)

// Velocities by accent.
const (
	velocityNormal = 96
	velocityEx     = 110
	velocityBreak  = 127
)

// Key returns the MIDI key a note is written on.
func Key(n chart.Note) (uint8, bool) {
	switch n.Zone {
	case 'C':
		return CentreKey, true
	case 'B':
		return zoneKey(ZoneBKey, n.Lane)
	case 'E':
		return zoneKey(ZoneEKey, n.Lane)
	}
	return zoneKey(LaneKey, n.Lane)
}

func zoneKey(base, n int) (uint8, bool) {
	if n < 1 || n > 8 {
		return 0, false
	}
	return uint8(base + n - 1), true
}

func velocity(n chart.Note) uint8 {
	switch n.Accent {
	case 'b':
		return velocityBreak
	case 'x':
		return velocityEx
	}
	return velocityNormal
}

type event struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// Events flattens t into note-on/off pairs on absolute ticks. Taps and
// touches last half a slot; holds, slides and touch holds last their
// written length.
func events(t *chart.Transcript) []event {
	slotTicks := uint32(TicksPerQuarter * 4 / t.Division)
	short := max(slotTicks/2, 1)
	barTicks := float64(TicksPerQuarter * 4)

	var evs []event
	for i, notes := range t.Slots {
		start := uint32(i) * slotTicks
		for _, n := range notes {
			key, ok := Key(n)
			if !ok {
				continue
			}
			length := short
			if n.Len > 0 {
				length = max(uint32(n.Length()*barTicks), 1)
			}
			evs = append(evs,
				event{tick: start, on: true, key: key, vel: velocity(n)},
				event{tick: start + length, key: key})
		}
	}
	// Offs sort before ons on the same tick so a repeated key retriggers.
	sort.SliceStable(evs, func(a, b int) bool {
		if evs[a].tick != evs[b].tick {
			return evs[a].tick < evs[b].tick
		}
		return !evs[a].on && evs[b].on
	})
	return evs
}

// WriteMIDI writes t as a single-track SMF with the chart tempo.
func WriteMIDI(w io.Writer, t *chart.Transcript, name string) error {
	if t.Division <= 0 || t.BPM <= 0 {
		return fmt.Errorf("write midi: %w", chart.ErrMalformed)
	}

	var tr smf.Track
	if name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(name))
	}
	tr.Add(0, smf.MetaTempo(float64(t.BPM)))

	var last uint32
	for _, ev := range events(t) {
		delta := ev.tick - last
		last = ev.tick
		if ev.on {
			tr.Add(delta, midi.NoteOn(0, ev.key, ev.vel))
		} else {
			tr.Add(delta, midi.NoteOff(0, ev.key))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// WriteChartMIDI parses text and writes it with WriteMIDI.
func WriteChartMIDI(w io.Writer, text, name string) error {
	t, err := chart.Parse(text)
	if err != nil {
		return err
	}
	return WriteMIDI(w, t, name)
}
