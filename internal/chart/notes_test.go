package chart

import (
	"strings"
	"testing"
)

// scripted returns generator state for a 60 s track at 120 BPM whose draws
// all come from the returned Sequence.
func scripted(level Level, oracle Loudness, draws ...float64) (*state, *Sequence) {
	s := newState(NewSequence(), oracle, 120, 60, level)
	seq := NewSequence(draws...)
	s.src = seq
	return s, seq
}

// --- Accents ---

func TestNoteAccent(t *testing.T) {
	tests := []struct {
		level   Level
		vol     float64
		draw    float64
		want    string
		wantBrk bool
	}{
		{Master, 0.9, 0.1, "b", true},
		{Master, 0.5, 0.1, "x", false},
		{Master, 0.5, 0.5, "", false},
		{Basic, 0.9, 0.1, "b", true},
		{Basic, 0.82, 0.1, "x", false},
		{Easy, 0.9, 0.5, "", false},
		{Easy, 0.9, 0.04, "b", true},
		{Easy, 0.5, 0.01, "", false},
	}
	for _, tt := range tests {
		s, _ := scripted(tt.level, constLoudness(0), tt.draw)
		got, brk := s.noteAccent(tt.vol)
		if got != tt.want || brk != tt.wantBrk {
			t.Errorf("%v noteAccent(%.2f) with draw %.2f = %q, %v, want %q, %v",
				tt.level, tt.vol, tt.draw, got, brk, tt.want, tt.wantBrk)
		}
	}
}

func TestBreakSkipsExDraw(t *testing.T) {
	s, seq := scripted(Master, constLoudness(0), 0.1)
	s.noteAccent(0.9)
	if seq.Draws() != 0 {
		t.Errorf("break on MASTER drew %d values, want 0", seq.Draws())
	}
	s, seq = scripted(Easy, constLoudness(0), 0.5)
	s.noteAccent(0.3)
	if seq.Draws() != 1 {
		t.Errorf("EASY accent drew %d values, want 1", seq.Draws())
	}
}

func TestLoudChartAccents(t *testing.T) {
	count := func(level Level) (notes, breaks, ex int) {
		for seed := range uint64(8) {
			c := NewGenerator(NewSource(seed)).Generate(constLoudness(0.95), 120, 60, level)
			for _, slot := range mustParse(t, c.Text).Slots {
				for _, n := range slot {
					if n.Kind != Tap && n.Kind != Slide {
						continue
					}
					notes++
					switch n.Accent {
					case 'b':
						breaks++
					case 'x':
						ex++
					}
				}
			}
		}
		return notes, breaks, ex
	}

	notes, breaks, ex := count(Easy)
	if notes == 0 {
		t.Fatal("no EASY taps or slides")
	}
	if ex != 0 {
		t.Errorf("EASY has %d EX notes, want 0", ex)
	}
	if r := float64(breaks) / float64(notes); r > 0.15 {
		t.Errorf("EASY break ratio = %.2f (%d/%d), want about 0.05", r, breaks, notes)
	}

	// Every loud note is a break, so none can also be EX.
	notes, breaks, ex = count(Master)
	if ex != 0 {
		t.Errorf("MASTER at full volume has %d EX notes, want 0", ex)
	}
	if breaks == 0 || breaks < notes*9/10 {
		t.Errorf("MASTER breaks = %d of %d notes", breaks, notes)
	}
}

// --- Touch sessions ---

func TestSessionChance(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *state)
		slot  int
		want  float64
	}{
		{"early", func(s *state) {}, 10, 1},
		{"before 60%", func(s *state) {}, 59, 1},
		{"late catch-up", func(s *state) {}, 61, 0.8},
		{"minimum met", func(s *state) { s.sessions = 2 }, 80, 1},
		{"quota used", func(s *state) { s.sessions = 3 }, 10, 0},
		{"cooling down", func(s *state) { s.sessionCD = 1 }, 10, 0},
		{"cooling down late", func(s *state) { s.sessionCD = 1 }, 90, 0},
	}
	for _, tt := range tests {
		s := &state{total: 100, maxSessions: 3, minSessions: 2}
		tt.setup(s)
		if got := s.sessionChance(tt.slot); got != tt.want {
			t.Errorf("%s: sessionChance(%d) = %v, want %v", tt.name, tt.slot, got, tt.want)
		}
	}
}

func TestStartSession(t *testing.T) {
	s, _ := scripted(Master, constLoudness(0), 0.5)
	if got := s.startSession(3); got != "B5" {
		t.Errorf("startSession = %q, want B5", got)
	}
	if s.sessions != 1 || s.sessionLeft != 32 || s.sessionCD != 120 {
		t.Errorf("sessions, left, cooldown = %d, %d, %d, want 1, 32, 120", s.sessions, s.sessionLeft, s.sessionCD)
	}
	if s.sessionMode != 2 || s.sessionStep != -1 || s.toggleType != 1 || s.sessionGap != 4 {
		t.Errorf("mode, step, toggle, gap = %d, %d, %d, %d, want 2, -1, 1, 4",
			s.sessionMode, s.sessionStep, s.toggleType, s.sessionGap)
	}
	if c := s.sessionChance(10); c != 0 {
		t.Errorf("sessionChance right after a start = %v, want 0", c)
	}
	for _, want := range []string{"B4/B8", "B3/B7"} {
		if got := s.patternTouch(); got != want {
			t.Errorf("patternTouch = %q, want %q", got, want)
		}
	}

	// Lower tiers only get the stepping and jumping bursts, at a slower pace.
	s, _ = scripted(Basic, constLoudness(0), 0.99)
	s.startSession(3)
	if s.sessionMode != 1 || s.sessionGap != 8 {
		t.Errorf("BASIC mode, gap = %d, %d, want 1, 8", s.sessionMode, s.sessionGap)
	}
}

func TestPatternTouch(t *testing.T) {
	tests := []struct {
		name  string
		state state
		want  []string
	}{
		{"step up wraps", state{sessionMode: 0, sessionStep: 1, lastTouch: 7}, []string{"B8", "B1", "B2"}},
		{"step down wraps", state{sessionMode: 0, sessionStep: -1, lastTouch: 2}, []string{"B1", "B8", "B7"}},
		{"jump", state{sessionMode: 1, lastTouch: 6}, []string{"B2", "B6", "B2"}},
		{"mirrored pair", state{sessionMode: 2, sessionStep: 1, lastTouch: 4}, []string{"B5/B1", "B6/B2"}},
		{"toggle odd", state{sessionMode: 3, toggleType: 0}, []string{"B1/B5", "B3/B7", "B1/B5"}},
		{"toggle even", state{sessionMode: 3, toggleType: 1}, []string{"B2/B6", "B4/B8", "B2/B6"}},
	}
	for _, tt := range tests {
		s := tt.state
		for k, want := range tt.want {
			if got := s.patternTouch(); got != want {
				t.Errorf("%s: touch %d = %q, want %q", tt.name, k, got, want)
			}
		}
	}
}

func TestSingleTouch(t *testing.T) {
	tests := []struct {
		name       string
		level      Level
		centerLock int
		lastTouch  int
		lastLane   int
		draw       float64
		want       string
	}{
		{"inner zone only", Advanced, 0, 1, 3, 0.9, "B8"},
		{"outer zone", Master, 0, 1, 3, 0.9, "E8"},
		{"outer zone under centre hold", Advanced, 5, 1, 3, 0.9, "E8"},
		{"centre", Advanced, 0, 1, 3, 0.1, "C"},
		{"no repeated centre", Advanced, 0, centerTouch, 3, 0.1, "B1"},
		{"no centre while locked", Advanced, 5, 1, 1, 0.1, "B2"},
		{"skips last lane", Advanced, 0, 1, 8, 0.9, "B1"},
	}
	for _, tt := range tests {
		s := &state{
			src:        NewSequence(tt.draw),
			p:          ParamsFor(tt.level),
			centerLock: tt.centerLock,
			lastTouch:  tt.lastTouch,
		}
		if got := s.singleTouch(tt.lastLane); got != tt.want {
			t.Errorf("%s: singleTouch = %q, want %q", tt.name, got, tt.want)
		}
	}

	for d := range 100 {
		s := &state{src: NewSequence(float64(d) / 100), p: ParamsFor(Expert), lastTouch: 1}
		if got := s.singleTouch(3); strings.HasPrefix(got, "E") {
			t.Errorf("EXPERT draw %.2f: singleTouch = %q, want no outer zone", float64(d)/100, got)
		}
	}
}

func TestSessionQuotaHeld(t *testing.T) {
	started := 0
	for _, level := range Levels() {
		for seed := range uint64(8) {
			s := newState(NewSource(seed), waveLoudness{150}, 150, 150, level)
			s.run()
			if s.sessions > s.maxSessions {
				t.Errorf("%v seed %d: %d sessions, quota %d", level, seed, s.sessions, s.maxSessions)
			}
			if level == Easy && s.sessions != 0 {
				t.Errorf("EASY seed %d: %d sessions, want 0", seed, s.sessions)
			}
			started += s.sessions
		}
	}
	if started == 0 {
		t.Error("no touch sessions in any chart")
	}
}

// --- Touch-holds ---

func TestTouchHoldAllowed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *state)
		slot  int
		vol   float64
		want  bool
	}{
		{"quiet", func(s *state) {}, 10, 0.05, true},
		{"loud", func(s *state) {}, 10, 0.5, false},
		{"loud outro", func(s *state) {}, 440, 0.5, true},
		{"short silence", func(s *state) { s.silence = 15 }, 10, 0.05, false},
		{"centre locked", func(s *state) { s.centerLock = 1 }, 10, 0.05, false},
		{"cooling down", func(s *state) { s.touchHoldCD = 1 }, 10, 0.05, false},
		{"draw too high", func(s *state) { s.src = NewSequence(0.2) }, 10, 0.05, false},
	}
	for _, tt := range tests {
		s, _ := scripted(Master, constLoudness(0), 0.1)
		s.silence = 16
		tt.setup(s)
		if got := s.touchHoldAllowed(tt.slot, tt.vol); got != tt.want {
			t.Errorf("%s: touchHoldAllowed = %v, want %v", tt.name, got, tt.want)
		}
	}

	for _, level := range []Level{Easy, Basic} {
		s, _ := scripted(level, constLoudness(0), 0.1)
		s.silence = 32
		if s.touchHoldAllowed(10, 0.05) {
			t.Errorf("%v allows touch-holds", level)
		}
	}
}

func TestPlaceTouchHold(t *testing.T) {
	s, _ := scripted(Master, constLoudness(0))
	if got := s.placeTouchHold(); got != "Ch[16:16]" {
		t.Errorf("placeTouchHold = %q, want Ch[16:16]", got)
	}
	if s.skip != 15 || s.centerLock != 16 || s.touchHoldCD != 144 {
		t.Errorf("skip, lock, cooldown = %d, %d, %d, want 15, 16, 144", s.skip, s.centerLock, s.touchHoldCD)
	}
	s.silence = 16
	if s.touchHoldAllowed(10, 0.05) {
		t.Error("touch-hold allowed while the centre is locked")
	}

	s, _ = scripted(Master, constLoudness(0), 0.99)
	if got := s.placeTouchHold(); got != "Ch[16:32]" {
		t.Errorf("longest placeTouchHold = %q, want Ch[16:32]", got)
	}
}

func TestQuietTrackTouchHolds(t *testing.T) {
	// Quiet audio only produces forced notes, each after more than a bar of
	// silence at this tempo, so touch-holds become reachable.
	found := 0
	for seed := range uint64(8) {
		c := NewGenerator(NewSource(seed)).Generate(constLoudness(0.05), 200, 60, Master)
		tr := mustParse(t, c.Text)
		last, lastLen := -1, 0
		for i, slot := range tr.Slots {
			for _, n := range slot {
				if n.Kind != TouchHold {
					continue
				}
				found++
				for k := 1; k < n.Len && i+k < len(tr.Slots); k++ {
					if len(tr.Slots[i+k]) != 0 {
						t.Errorf("seed %d: slot %d has notes under the touch-hold from slot %d", seed, i+k, i)
					}
				}
				if last >= 0 && i-last < lastLen+8*tr.Division {
					t.Errorf("seed %d: touch-hold at slot %d only %d slots after slot %d", seed, i, i-last, last)
				}
				last, lastLen = i, n.Len
			}
		}
	}
	if found == 0 {
		t.Error("no touch-holds in quiet charts")
	}
}

// --- Duals ---

func TestAddDual(t *testing.T) {
	tests := []struct {
		name string
		draw float64
		busy []int
		main string
		acc  string
		want string
	}{
		{"across", 0, nil, "2", "", "2/6"},
		{"neighbour skipped", 0.9, nil, "2", "", "2/4"},
		{"main lane skipped", 0, []int{6}, "2", "", "2/7"},
		{"no room", 0, []int{4, 5, 6, 7, 8}, "2", "", "2"},
		{"accent carried", 0, nil, "2b", "b", "2b/6b"},
	}
	for _, tt := range tests {
		s, _ := scripted(Master, constLoudness(0), tt.draw)
		s.lastLane = 2
		for _, lane := range tt.busy {
			s.busyUntil[lane] = 100
		}
		if got := s.addDual(10, tt.main, 2, tt.acc); got != tt.want {
			t.Errorf("%s: addDual = %q, want %q", tt.name, got, tt.want)
		}
	}

	s, _ := scripted(Master, constLoudness(0))
	s.lastLane = 2
	s.addDual(10, "2", 2, "")
	if s.lastUsed[6] != 10 {
		t.Errorf("dual lane lastUsed = %d, want 10", s.lastUsed[6])
	}
}

func TestGeneratedDualsAvoidNeighbours(t *testing.T) {
	duals := 0
	for _, level := range []Level{Master, ReMaster} {
		for seed := range uint64(8) {
			c := NewGenerator(NewSource(seed)).Generate(waveLoudness{90}, 170, 90, level)
			for i, slot := range mustParse(t, c.Text).Slots {
				var ring []Note
				for _, n := range slot {
					if n.Kind == Tap || n.Kind == Hold || n.Kind == Slide {
						ring = append(ring, n)
					}
				}
				if len(ring) > 2 {
					t.Errorf("%v seed %d: slot %d has %d ring notes", level, seed, i, len(ring))
				}
				if len(ring) < 2 {
					continue
				}
				duals++
				if d := abs(ring[0].Lane - ring[1].Lane); d == 0 || d == 1 || d == 7 {
					t.Errorf("%v seed %d: slot %d pairs lanes %d and %d", level, seed, i, ring[0].Lane, ring[1].Lane)
				}
			}
		}
	}
	if duals == 0 {
		t.Error("no duals generated")
	}
}

// --- Slides and holds ---

func TestPlaceSlide(t *testing.T) {
	s, _ := scripted(Advanced, constLoudness(0.5))
	got, pos := s.placeSlide(10, 1, false, "x")
	if got != "1-4[4:1]" || pos != 1 {
		t.Errorf("placeSlide = %q, %d, want 1-4[4:1], 1", got, pos)
	}
	for _, lane := range []int{1, 2, 3, 4} {
		if s.busyUntil[lane] != 18 {
			t.Errorf("lane %d busy until %d, want 18", lane, s.busyUntil[lane])
		}
	}
	if s.slideBusy != 18 || s.slideCD != 16 || s.lastSlideEnd != 4 {
		t.Errorf("slideBusy, slideCD, lastSlideEnd = %d, %d, %d, want 18, 16, 4", s.slideBusy, s.slideCD, s.lastSlideEnd)
	}

	s, _ = scripted(Advanced, constLoudness(0.5))
	if got, _ := s.placeSlide(10, 1, true, "b"); got != "1b-4[4:1]" {
		t.Errorf("break placeSlide = %q, want 1b-4[4:1]", got)
	}
}

func TestBlockedSlideFallsBackToTap(t *testing.T) {
	tests := []struct {
		brk       bool
		acc, want string
	}{
		{false, "x", "1x"},
		{true, "b", "1b"},
		{false, "", "1"},
	}
	for _, tt := range tests {
		s, _ := scripted(Advanced, constLoudness(0.5))
		s.use(3, 9) // lane 3 lies on the 1-4 path and was just tapped
		got, pos := s.placeSlide(10, 1, tt.brk, tt.acc)
		if got != tt.want || pos != 1 {
			t.Errorf("blocked placeSlide = %q, %d, want %s, 1", got, pos, tt.want)
		}
		if s.slideBusy != -1 || s.slideCD != 0 || s.busy(2, 10) {
			t.Errorf("blocked slide still claimed the ring: slideBusy %d, slideCD %d", s.slideBusy, s.slideCD)
		}
		if s.lastUsed[1] != 10 {
			t.Errorf("fallback tap lastUsed = %d, want 10", s.lastUsed[1])
		}
	}
}

func TestPlaceHold(t *testing.T) {
	s, _ := scripted(Advanced, constLoudness(0.5))
	got, pos := s.placeHold(10, 10*s.slotSec, 3, "x")
	if got != "3h[8:4]" || pos != 3 {
		t.Errorf("placeHold = %q, %d, want 3h[8:4], 3", got, pos)
	}
	if s.skip != 3 || s.busyUntil[3] != 16 {
		t.Errorf("skip, busyUntil = %d, %d, want 3, 16", s.skip, s.busyUntil[3])
	}

	// The look-ahead stops at the end of the track.
	s, _ = scripted(Advanced, constLoudness(0.5))
	end := s.total - 2
	if got, _ := s.placeHold(end, float64(end)*s.slotSec, 3, ""); got != "3h[8:1]" {
		t.Errorf("placeHold at the end = %q, want 3h[8:1]", got)
	}
}

func TestZeroLengthHoldBecomesTap(t *testing.T) {
	s, _ := scripted(Advanced, constLoudness(0))
	got, pos := s.placeHold(10, 10*s.slotSec, 3, "x")
	if got != "3x" || pos != 3 {
		t.Errorf("placeHold on silence = %q, %d, want 3x, 3", got, pos)
	}
	if s.skip != 0 || s.busyUntil[3] != -1 {
		t.Errorf("tap fallback set skip %d, busyUntil %d", s.skip, s.busyUntil[3])
	}

	for _, level := range Levels() {
		c := NewGenerator(NewSource(5)).Generate(waveLoudness{90}, 150, 90, level)
		for i, slot := range mustParse(t, c.Text).Slots {
			for _, n := range slot {
				if n.Kind == Hold && n.Len <= 0 {
					t.Errorf("%v: slot %d hold has length %d", level, i, n.Len)
				}
			}
		}
	}
}
