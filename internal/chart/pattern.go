package chart

type pattern int

const (
	patternRandom pattern = iota
	patternStream
	patternTrill
	patternZigzag
	patternResting
)

func (p pattern) String() string {
	switch p {
	case patternStream:
		return "stream"
	case patternTrill:
		return "trill"
	case patternZigzag:
		return "zigzag"
	case patternResting:
		return "resting"
	}
	return "random"
}

// updatePattern redraws the movement pattern every four bars.
func (s *state) updatePattern() {
	if s.patternLeft <= 0 {
		s.patternLeft = s.div * 4
		r := s.src.Float()
		if s.p.Resting && r < 0.1 {
			s.pattern = patternResting
			return
		}
		switch {
		case r < 0.4:
			s.pattern = patternStream
		case r < 0.7:
			s.pattern = patternTrill
		case r < 0.85:
			s.pattern = patternZigzag
		default:
			s.pattern = patternRandom
		}
		s.patternDir = s.sign()
	}
	s.patternLeft--
}

// nextLane proposes the lane after cur according to the current pattern.
func (s *state) nextLane(cur int) int {
	if s.p.ForceAdjacent {
		move := s.sign()
		if s.src.Float() < 0.3 {
			move = 0
		}
		return ringWrap(cur + move)
	}
	switch s.pattern {
	case patternStream:
		return ringWrap(cur + s.patternDir)
	case patternTrill:
		return ringWrap(cur + 4)
	case patternZigzag:
		return ringWrap(cur + 2*s.patternDir)
	}
	step := s.src.Int(1, 4)
	return ringWrap(cur + s.sign()*step)
}

// sign draws +1 or -1.
func (s *state) sign() int {
	if s.src.Int(0, 2) == 0 {
		return 1
	}
	return -1
}
