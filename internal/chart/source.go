package chart

import "math/rand/v2"

// Source supplies every random draw the generator makes. Substituting a
// scripted Source makes generation reproducible.
type Source interface {
	// Float returns a value in [0, 1).
	Float() float64
	// Int returns a value in [lo, hi). It returns lo when hi <= lo.
	Int(lo, hi int) int
}

type pcgSource struct {
	r *rand.Rand
}

// NewSource returns a PCG-backed source.
func NewSource(seed uint64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *pcgSource) Float() float64 { return s.r.Float64() }

func (s *pcgSource) Int(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.IntN(hi-lo)
}

// Mulberry is a Mulberry32 generator. Its output depends only on 32-bit
// integer arithmetic, so a seed replays identically on any platform or
// port of the generator.
type Mulberry struct {
	state uint32
}

// NewMulberry returns a Mulberry32 source seeded with seed.
func NewMulberry(seed uint32) *Mulberry {
	return &Mulberry{state: seed}
}

func (m *Mulberry) Float() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

func (m *Mulberry) Int(lo, hi int) int {
	return scale(m.Float(), lo, hi)
}

// Sequence replays a fixed list of floats, cycling when exhausted. An empty
// Sequence always draws 0. Used to script generator decisions in tests.
type Sequence struct {
	vals []float64
	pos  int
}

// NewSequence returns a Sequence over vals.
func NewSequence(vals ...float64) *Sequence {
	return &Sequence{vals: vals}
}

func (s *Sequence) Float() float64 {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v
}

func (s *Sequence) Int(lo, hi int) int {
	return scale(s.Float(), lo, hi)
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int { return s.pos }

func scale(f float64, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n := lo + int(f*float64(hi-lo))
	if n >= hi {
		n = hi - 1
	}
	if n < lo {
		n = lo
	}
	return n
}

// LevelSeed derives an independent seed for one difficulty from a base seed.
func LevelSeed(base uint64, level Level) uint64 {
	s := base ^ (uint64(level)+1)*0x9e3779b97f4a7c15
	s = (s ^ (s >> 30)) * 0xbf58476d1ce4e5b9
	s = (s ^ (s >> 27)) * 0x94d049bb133111eb
	return s ^ (s >> 31)
}
