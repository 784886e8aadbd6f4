package chart

import "fmt"

// Slide shapes as written in the transcript.
const (
	ShapeStraight = '-'
	ShapeArc      = '^'
	ShapeCurve    = '>'
	ShapeVee      = 'v'
	ShapeLoopP    = 'p'
	ShapeLoopQ    = 'q'
)

type slide struct {
	start, end int
	shape      byte
	accent     string
	beats      int // duration in quarter notes
}

func (sl slide) String() string {
	return fmt.Sprintf("%d%s%c%d[4:%d]", sl.start, sl.accent, sl.shape, sl.end, sl.beats)
}

// newSlide draws a slide from start. Tiers without complex slides always get
// a straight slide; the others still do so 70% of the time.
func (s *state) newSlide(start int, accent string) slide {
	sl := slide{start: start, shape: ShapeStraight, accent: accent, beats: 1}
	if s.p.SlowSlides {
		sl.beats = 2
	}
	if !s.p.ComplexSlides || s.src.Float() < 0.7 {
		sl.end = ringWrap(start + s.src.Int(3, 6))
		return sl
	}
	switch s.src.Int(0, 5) {
	case 0:
		sl.shape = ShapeArc
		sl.end = ringWrap(start + s.src.Int(2, 4))
	case 1:
		sl.shape = ShapeCurve
		sl.end = ringWrap(start + 3)
	case 2:
		sl.shape = ShapeVee
		sl.end = ringWrap(start + 3)
	case 3:
		sl.shape = ShapeLoopP
		sl.end = ringWrap(start + 5)
	default:
		sl.shape = ShapeLoopQ
		sl.end = ringWrap(start + 5)
	}
	return sl
}

// slidePath lists every lane a slide passes over, endpoints included. Loop
// and vee shapes claim the whole ring; the others take the shorter arc.
func slidePath(shape byte, start, end int) []int {
	path := []int{start, end}
	switch shape {
	case ShapeLoopP, ShapeLoopQ, ShapeVee:
		for k := 1; k <= 8; k++ {
			path = append(path, k)
		}
		return path
	}
	cw := (end - start + 8) % 8
	ccw := (start - end + 8) % 8
	if cw <= ccw {
		for k := 1; k < cw; k++ {
			path = append(path, ringWrap(start+k))
		}
	} else {
		for k := 1; k < ccw; k++ {
			path = append(path, ringWrap(start-k))
		}
	}
	return path
}
