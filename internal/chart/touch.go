package chart

import "fmt"

// centerTouch marks the centre zone in lastTouch.
const centerTouch = 9

// sessionInterval is the slot gap between touches inside a session.
func (s *state) sessionInterval() int {
	if s.level >= Expert {
		return 4
	}
	return 8
}

// startSession opens a touch burst and returns its first touch.
func (s *state) startSession(lastLane int) string {
	tok := s.singleTouch(lastLane)
	s.sessionLeft = s.div * s.src.Int(1, 3)
	s.sessions++
	s.sessionCD = s.total / (s.maxSessions + 2)
	if s.level >= Expert {
		s.sessionMode = s.src.Int(0, 4)
	} else {
		s.sessionMode = s.src.Int(0, 2)
	}
	s.sessionStep = s.sign()
	s.toggleType = s.src.Int(0, 2)
	s.toggleOn = false
	s.sessionGap = s.sessionInterval()
	return tok
}

// singleTouch picks a centre or zone touch, avoiding a repeated centre and
// the lane just tapped.
func (s *state) singleTouch(lastLane int) string {
	outer := s.p.OuterTouch || s.centerLock > 0
	roll := s.src.Float()
	for range 3 {
		if s.centerLock == 0 && roll < 0.3 {
			if s.lastTouch == centerTouch {
				roll = 1
				continue
			}
			s.lastTouch = centerTouch
			return "C"
		}
		n := s.src.Int(1, 9)
		if n == lastLane {
			n = n%8 + 1
		}
		region := "B"
		if s.src.Float() >= 0.7 && outer {
			region = "E"
		}
		s.lastTouch = n
		return fmt.Sprintf("%s%d", region, n)
	}
	return fmt.Sprintf("B%d", lastLane%8+1)
}

// patternTouch returns the next touch of the running session.
func (s *state) patternTouch() string {
	switch s.sessionMode {
	case 0:
		s.lastTouch = stepTouch(s.lastTouch + s.sessionStep)
		return fmt.Sprintf("B%d", s.lastTouch)
	case 1:
		n := s.lastTouch + 4
		if n > 8 {
			n -= 8
		}
		s.lastTouch = n
		return fmt.Sprintf("B%d", n)
	case 2:
		s.lastTouch = stepTouch(s.lastTouch + s.sessionStep)
		mirror := s.lastTouch + 4
		if mirror > 8 {
			mirror -= 8
		}
		return fmt.Sprintf("B%d/B%d", s.lastTouch, mirror)
	}
	s.toggleOn = !s.toggleOn
	a, b := 3, 7
	switch {
	case s.toggleType == 0 && s.toggleOn:
		a, b = 1, 5
	case s.toggleType != 0 && s.toggleOn:
		a, b = 2, 6
	case s.toggleType != 0:
		a, b = 4, 8
	}
	return fmt.Sprintf("B%d/B%d", a, b)
}

// stepTouch wraps a single step past either end of 1..8.
func stepTouch(n int) int {
	if n > 8 {
		return 1
	}
	if n < 1 {
		return 8
	}
	return n
}
