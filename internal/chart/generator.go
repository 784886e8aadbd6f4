package chart

import (
	"fmt"
	"strings"
)

// Loudness is the generator's view of the music: normalized loudness in
// [0, 1] over window seconds starting at t. Implementations must be safe for
// concurrent reads.
type Loudness interface {
	VolumeAt(t, window float64) float64
}

// Loudness windows used while generating.
const (
	spawnWindow = 0.05
	holdWindow  = 0.1
)

// FallbackBPM is used when the caller passes a non-positive tempo.
const FallbackBPM = 120

// Chart is one generated difficulty.
type Chart struct {
	Level    Level
	BPM      int
	Division int
	Slots    int
	Text     string
}

func (c Chart) String() string { return c.Text }

// Generator produces charts from a loudness oracle. Each call to Generate
// starts from fresh state; a Generator must not be used by two goroutines at
// once because it owns its Source.
type Generator struct {
	src Source
}

// NewGenerator returns a Generator drawing from src.
func NewGenerator(src Source) *Generator {
	return &Generator{src: src}
}

// Generate writes a chart for a track of the given length. It never fails:
// every branch that cannot be satisfied falls back to a simpler note or an
// empty slot.
func (g *Generator) Generate(oracle Loudness, bpm int, seconds float64, level Level) Chart {
	s := newState(g.src, oracle, bpm, seconds, level)
	s.run()
	return Chart{
		Level:    s.level,
		BPM:      s.bpm,
		Division: s.div,
		Slots:    s.total,
		Text:     s.out.String(),
	}
}

var styleMultiplier = [3]float64{0.85, 1, 1.15}

// state is everything one Generate call mutates.
type state struct {
	src    Source
	oracle Loudness
	p      Params
	level  Level

	bpm     int
	div     int
	total   int
	slotSec float64
	style   int
	spawn   float64

	pattern     pattern
	patternLeft int
	patternDir  int

	lanes
	lastLane     int
	lastSlideEnd int
	slideBusy    int // slot until which a slide occupies the ring
	skip         int // slots still covered by a hold or touch-hold
	silence      int // consecutive empty slots
	lastNote     float64

	centerLock  int
	touchHoldCD int
	slideCD     int

	sessionLeft int
	sessionGap  int
	sessionMode int
	sessionStep int
	sessionCD   int
	sessions    int
	maxSessions int
	minSessions int
	toggleType  int
	toggleOn    bool
	lastTouch   int

	out strings.Builder
}

func newState(src Source, oracle Loudness, bpm int, seconds float64, level Level) *state {
	if bpm <= 0 {
		bpm = FallbackBPM
	}
	level = level.clamp()
	p := ParamsFor(level)
	s := &state{
		src:          src,
		oracle:       oracle,
		p:            p,
		level:        level,
		bpm:          bpm,
		div:          p.Division,
		lanes:        newLanes(),
		lastLane:     1,
		lastSlideEnd: -1,
		slideBusy:    -1,
		lastTouch:    1,
		patternDir:   1,
	}

	s.style = src.Int(0, 3)
	jitter := src.Float()*0.1 - 0.05
	s.spawn = max(0.1, min(0.9, p.Spawn*styleMultiplier[s.style]+jitter))
	s.maxSessions, s.minSessions = p.SessionQuota(seconds)

	s.slotSec = 60 / float64(bpm) * 4 / float64(s.div)
	if seconds > 0 {
		s.total = int(seconds / s.slotSec)
	}
	return s
}

func (s *state) run() {
	fmt.Fprintf(&s.out, "(%d){%d}", s.bpm, s.div)
	for i := range s.total {
		s.updatePattern()
		s.tick()
		if s.skip > 0 {
			s.skip--
			s.silence = 0
			s.emit(i, "")
			continue
		}
		s.slot(i)
	}
	s.out.WriteString("E")
}

func (s *state) tick() {
	for _, c := range []*int{&s.centerLock, &s.touchHoldCD, &s.slideCD, &s.sessionLeft, &s.sessionCD} {
		if *c > 0 {
			*c--
		}
	}
}

func (s *state) emit(i int, tok string) {
	s.out.WriteString(tok)
	s.out.WriteByte(',')
	if (i+1)%s.div == 0 {
		s.out.WriteByte('\n')
	}
}

func (s *state) rest(i int) {
	s.silence++
	s.emit(i, "")
}

func (s *state) slot(i int) {
	resting := s.pattern == patternResting && s.src.Float() < 0.6
	t := float64(i) * s.slotSec
	vol := s.oracle.VolumeAt(t, spawnWindow)

	force := false
	if t-s.lastNote > 1.5 && vol > 0.02 {
		force = true
		resting = false
	}

	chance := s.spawn
	if vol < s.p.Threshold*1.5 {
		if s.style == 0 {
			chance *= 0.6
		} else {
			chance *= 0.8
		}
	}
	audible := vol > s.p.Threshold && s.src.Float() < vol*chance+0.1
	if (resting && !force) || !(force || audible) {
		s.rest(i)
		return
	}

	accent, brk := s.noteAccent(vol)
	tapAccent := accent
	if force {
		tapAccent = ""
	}

	pos, ok := s.free(s.nextLane(s.lastLane), i, s.p.MinGap)
	if !ok {
		// Every lane is held by a slide or hold.
		s.rest(i)
		return
	}
	s.lastNote = t
	if i-s.lastUsed[pos] < s.p.SwitchGap {
		pos, _ = s.free(opposite(pos), i, s.p.MinGap)
	}

	roll := s.src.Float()
	var main string
	touchHold := false

	switch {
	case s.sessionLeft > 0:
		if s.sessionGap > 0 {
			s.sessionGap--
			s.rest(i)
			return
		}
		main = s.patternTouch()
		s.sessionGap = s.sessionInterval()

	case s.touchHoldAllowed(i, vol):
		main = s.placeTouchHold()
		touchHold = true

	case s.p.Slide > 0 && roll < s.p.Slide && s.slideCD == 0:
		main, pos = s.placeSlide(i, pos, brk, accent)

	case s.p.Touch > 0 && roll < s.p.Slide+s.p.Touch && i >= s.slideBusy:
		if s.anyBusy(i) {
			pos, _ = s.free(pos, i, s.p.MinGap)
			main = s.tap(i, pos, accent)
			break
		}
		if take := s.sessionChance(i); take > 0 && s.src.Float() < take {
			main = s.startSession(s.lastLane)
			break
		}
		pos, _ = s.free(pos, i, s.p.MinGap)
		main = s.tap(i, pos, tapAccent)

	case s.p.Hold > 0 && roll < s.p.Slide+s.p.Touch+s.p.Hold:
		main, pos = s.placeHold(i, t, pos, accent)

	default:
		pos, _ = s.free(pos, i, s.p.MinGap)
		main = s.tap(i, pos, tapAccent)
	}
	s.silence = 0

	if !force && s.p.AllowDual && !touchHold && s.src.Float() < s.p.Dual && s.sessionLeft == 0 {
		main = s.addDual(i, main, pos, accent)
	}
	s.emit(i, main)
}

// noteAccent marks a note loud enough as a break, keeping only 5% of breaks
// on EASY. Notes that are not breaks may become EX instead.
func (s *state) noteAccent(vol float64) (accent string, brk bool) {
	brk = vol > 0.82
	if s.level == Easy && s.src.Float() > 0.05 {
		brk = false
	}
	switch {
	case brk:
		return "b", true
	case s.p.AllowEx && s.src.Float() < 0.2:
		return "x", false
	}
	return "", false
}

// sessionChance is the probability of opening a touch session at slot i, or
// 0 when the quota or cooldown forbids one. Charts still short of their
// minimum after 60% of the song take 80% of their chances.
func (s *state) sessionChance(i int) float64 {
	if s.sessions >= s.maxSessions || s.sessionCD > 0 {
		return 0
	}
	if s.sessions < s.minSessions && float64(i) > float64(s.total)*0.6 {
		return 0.8
	}
	return 1
}

func (s *state) touchHoldAllowed(i int, vol float64) bool {
	outro := float64(i) > float64(s.total)*0.9
	quiet := vol < s.p.Threshold*0.6
	return (outro || quiet) && s.silence >= s.div &&
		s.p.TouchHold > 0 && s.src.Float() < 0.2 &&
		s.centerLock == 0 && s.touchHoldCD == 0
}

// placeTouchHold emits a centre hold of one to two bars. The centre stays
// locked while it sounds and no other touch-hold follows for eight bars after.
func (s *state) placeTouchHold() string {
	n := s.div / 4 * s.src.Int(4, 9)
	s.skip = n - 1
	s.centerLock = n
	s.touchHoldCD = n + s.div*8
	return fmt.Sprintf("Ch[%d:%d]", s.div, n)
}

func (s *state) tap(i, pos int, accent string) string {
	s.lastLane = pos
	s.use(pos, i)
	return fmt.Sprintf("%d%s", pos, accent)
}

func (s *state) placeSlide(i, pos int, brk bool, accent string) (string, int) {
	if i-s.lastUsed[pos] < s.p.SwitchGap {
		pos, _ = s.free(opposite(pos), i, s.p.SwitchGap)
	}
	if pos == s.lastSlideEnd {
		pos = pos%8 + 1
	}
	pos, _ = s.free(pos, i, s.p.SwitchGap)

	slideAccent := ""
	if brk {
		slideAccent = "b"
	}
	sl := s.newSlide(pos, slideAccent)
	path := slidePath(sl.shape, sl.start, sl.end)
	if s.blocked(path, i) {
		return s.tap(i, pos, accent), pos
	}

	dur := s.div
	if s.p.SlowSlides {
		dur *= 2
	}
	s.occupy(path, i+dur)
	s.slideBusy = i + dur
	s.lastLane = pos
	s.lastSlideEnd = sl.end
	s.use(pos, i)
	if s.level <= Expert {
		s.slideCD = s.div * 2
	} else {
		s.slideCD = s.div
	}
	return sl.String(), pos
}

func (s *state) placeHold(i int, t float64, pos int, accent string) (string, int) {
	if i-s.lastUsed[pos] < s.p.SwitchGap {
		pos, _ = s.free(opposite(pos), i, s.p.SwitchGap)
	}
	look := 4
	if s.div == 16 {
		look = 8
	}
	n := 0
	for k := 1; k <= look && i+k < s.total; k++ {
		if s.oracle.VolumeAt(t+float64(k)*s.slotSec, holdWindow) < s.p.Threshold*0.8 {
			break
		}
		n++
	}
	if n == 0 {
		return s.tap(i, pos, accent), pos
	}
	s.busyUntil[pos] = i + n + 2
	s.skip = n - 1
	s.lastLane = pos
	s.use(pos, i)
	return fmt.Sprintf("%dh[%d:%d]", pos, s.div, n), pos
}

// addDual appends a simultaneous tap that is neither the main lane nor next
// to it. The main note is returned unchanged if no such lane is free. It is
// only called for ring notes; touches never get a dual.
func (s *state) addDual(i int, main string, pos int, accent string) string {
	off := 1
	if s.src.Int(0, 2) == 0 {
		off = 4
	}
	d := ringWrap(s.lastLane + off)
	for range 3 {
		try, ok := s.free(d, i, s.p.MinGap)
		if diff := abs(try - pos); ok && diff != 0 && diff != 1 && diff != 7 {
			s.use(try, i)
			return fmt.Sprintf("%s/%d%s", main, try, accent)
		}
		d = d%8 + 1
	}
	return main
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
