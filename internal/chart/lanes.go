package chart

// Lanes are numbered 1..8 around the ring; index 0 of the tables is unused.

// ringWrap maps any integer onto 1..8.
func ringWrap(n int) int {
	return ((n-1)%8+8)%8 + 1
}

// opposite returns the lane across the ring.
func opposite(lane int) int {
	return (lane+3)%8 + 1
}

// lanes tracks occupancy for the ring buttons.
type lanes struct {
	busyUntil [9]int // lane is occupied while slot < busyUntil
	lastUsed  [9]int
}

func newLanes() lanes {
	var l lanes
	for k := range l.busyUntil {
		l.busyUntil[k] = -1
		l.lastUsed[k] = -999
	}
	return l
}

func (l *lanes) busy(lane, slot int) bool {
	return l.busyUntil[lane] > slot
}

func (l *lanes) anyBusy(slot int) bool {
	for k := 1; k <= 8; k++ {
		if l.busy(k, slot) {
			return true
		}
	}
	return false
}

func (l *lanes) use(lane, slot int) {
	l.lastUsed[lane] = slot
}

// free picks a lane near start: start itself, then its opposite, then the
// rest clockwise. A lane qualifies when it is not busy and has rested for
// minGap slots. If none qualifies, the same order is searched again ignoring
// the rest gap. ok is false only when every lane is busy.
func (l *lanes) free(start, slot, minGap int) (lane int, ok bool) {
	order := [8]int{start, opposite(start)}
	n := 2
	for off := 1; off < 8; off++ {
		if c := ringWrap(start + off); c != order[1] {
			order[n] = c
			n++
		}
	}
	for _, c := range order {
		if !l.busy(c, slot) && slot-l.lastUsed[c] >= minGap {
			return c, true
		}
	}
	for _, c := range order {
		if !l.busy(c, slot) {
			return c, true
		}
	}
	return start, false
}

// blocked reports whether any lane of path is busy or was used in the last
// two slots.
func (l *lanes) blocked(path []int, slot int) bool {
	for _, k := range path {
		if l.busy(k, slot) || slot-l.lastUsed[k] < 2 {
			return true
		}
	}
	return false
}

func (l *lanes) occupy(path []int, until int) {
	for _, k := range path {
		l.busyUntil[k] = until
	}
}
