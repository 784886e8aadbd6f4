package chart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned by Parse for text that does not follow the chart
// grammar.
var ErrMalformed = errors.New("malformed chart")

// Kind is the type of a parsed note.
type Kind int

const (
	Tap Kind = iota
	Hold
	Slide
	Touch
	TouchHold
)

func (k Kind) String() string {
	switch k {
	case Hold:
		return "hold"
	case Slide:
		return "slide"
	case Touch:
		return "touch"
	case TouchHold:
		return "touch-hold"
	}
	return "tap"
}

// Note is one element of a slot's note group.
type Note struct {
	Kind   Kind
	Lane   int  // ring lane, or zone number for B/E touches; 0 for the centre
	Zone   byte // 'B', 'E' or 'C' for touches
	Accent byte // 'b', 'x' or 0
	Shape  byte // slide shape
	End    int  // slide destination lane
	Div    int  // length denominator: slots per bar, or 4 for slides
	Len    int  // length numerator
}

// Lanes returns the ring lanes the note occupies. Touches use none.
func (n Note) Lanes() []int {
	switch n.Kind {
	case Tap, Hold:
		return []int{n.Lane}
	case Slide:
		return slidePath(n.Shape, n.Lane, n.End)
	}
	return nil
}

// Length returns the note's duration as a fraction of a bar.
func (n Note) Length() float64 {
	if n.Div == 0 {
		return 0
	}
	return float64(n.Len) / float64(n.Div)
}

// Transcript is a parsed chart.
type Transcript struct {
	BPM      int
	Division int
	Slots    [][]Note // one entry per slot, empty for a rest
}

// SlotSeconds returns the duration of one slot.
func (t *Transcript) SlotSeconds() float64 {
	return 60 / float64(t.BPM) * 4 / float64(t.Division)
}

// BarSeconds returns the duration of one bar.
func (t *Transcript) BarSeconds() float64 {
	return 240 / float64(t.BPM)
}

// Onsets returns the start time of every non-empty slot.
func (t *Transcript) Onsets() []float64 {
	var out []float64
	step := t.SlotSeconds()
	for i, notes := range t.Slots {
		if len(notes) > 0 {
			out = append(out, float64(i)*step)
		}
	}
	return out
}

// Parse reads chart text: a (bpm){division} header, comma-terminated slots
// and a final E. Line breaks are ignored.
func Parse(text string) (*Transcript, error) {
	body := strings.ReplaceAll(strings.TrimSpace(text), "\n", "")
	bpm, div, rest, err := parseHeader(body)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(rest, "E") {
		return nil, fmt.Errorf("%w: missing terminator", ErrMalformed)
	}
	rest = strings.TrimSuffix(rest, "E")

	t := &Transcript{BPM: bpm, Division: div}
	if rest == "" {
		return t, nil
	}
	if !strings.HasSuffix(rest, ",") {
		return nil, fmt.Errorf("%w: unterminated slot %q", ErrMalformed, rest)
	}
	parts := strings.Split(strings.TrimSuffix(rest, ","), ",")
	t.Slots = make([][]Note, len(parts))
	for i, tok := range parts {
		if tok == "" {
			continue
		}
		for _, nt := range strings.Split(tok, "/") {
			n, err := parseNote(nt)
			if err != nil {
				return nil, fmt.Errorf("slot %d: %w", i, err)
			}
			t.Slots[i] = append(t.Slots[i], n)
		}
	}
	return t, nil
}

func parseHeader(s string) (bpm, div int, rest string, err error) {
	if !strings.HasPrefix(s, "(") {
		return 0, 0, "", fmt.Errorf("%w: missing tempo header", ErrMalformed)
	}
	closeB := strings.IndexByte(s, ')')
	if closeB < 0 {
		return 0, 0, "", fmt.Errorf("%w: unclosed tempo header", ErrMalformed)
	}
	bpm, err = strconv.Atoi(s[1:closeB])
	if err != nil || bpm <= 0 {
		return 0, 0, "", fmt.Errorf("%w: bad tempo %q", ErrMalformed, s[1:closeB])
	}
	s = s[closeB+1:]
	if !strings.HasPrefix(s, "{") {
		return 0, 0, "", fmt.Errorf("%w: missing division header", ErrMalformed)
	}
	closeD := strings.IndexByte(s, '}')
	if closeD < 0 {
		return 0, 0, "", fmt.Errorf("%w: unclosed division header", ErrMalformed)
	}
	div, err = strconv.Atoi(s[1:closeD])
	if err != nil || div <= 0 {
		return 0, 0, "", fmt.Errorf("%w: bad division %q", ErrMalformed, s[1:closeD])
	}
	return bpm, div, s[closeD+1:], nil
}

func parseNote(tok string) (Note, error) {
	bad := func() (Note, error) {
		return Note{}, fmt.Errorf("%w: note %q", ErrMalformed, tok)
	}
	if tok == "" {
		return bad()
	}

	switch tok[0] {
	case 'C':
		if tok == "C" {
			return Note{Kind: Touch, Zone: 'C'}, nil
		}
		if !strings.HasPrefix(tok, "Ch") {
			return bad()
		}
		d, l, rest, ok := parseLength(tok[2:])
		if !ok || rest != "" {
			return bad()
		}
		return Note{Kind: TouchHold, Zone: 'C', Div: d, Len: l}, nil
	case 'B', 'E':
		if len(tok) != 2 || !isLane(tok[1]) {
			return bad()
		}
		return Note{Kind: Touch, Zone: tok[0], Lane: int(tok[1] - '0')}, nil
	}

	if !isLane(tok[0]) {
		return bad()
	}
	n := Note{Kind: Tap, Lane: int(tok[0] - '0')}
	rest := tok[1:]
	if rest != "" && (rest[0] == 'b' || rest[0] == 'x') {
		n.Accent = rest[0]
		rest = rest[1:]
	}
	if rest == "" {
		return n, nil
	}

	if rest[0] == 'h' {
		d, l, tail, ok := parseLength(rest[1:])
		if !ok || tail != "" {
			return bad()
		}
		n.Kind, n.Div, n.Len = Hold, d, l
		return n, nil
	}

	if !strings.ContainsRune("-^>vpq", rune(rest[0])) || len(rest) < 2 || !isLane(rest[1]) {
		return bad()
	}
	n.Kind, n.Shape, n.End = Slide, rest[0], int(rest[1]-'0')
	d, l, tail, ok := parseLength(rest[2:])
	if !ok || tail != "" {
		return bad()
	}
	n.Div, n.Len = d, l
	return n, nil
}

// parseLength reads a leading [div:len].
func parseLength(s string) (div, n int, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return 0, 0, s, false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return 0, 0, s, false
	}
	a, b, found := strings.Cut(s[1:end], ":")
	if !found {
		return 0, 0, s, false
	}
	div, err1 := strconv.Atoi(a)
	n, err2 := strconv.Atoi(b)
	if err1 != nil || err2 != nil || div <= 0 || n <= 0 {
		return 0, 0, s, false
	}
	return div, n, s[end+1:], true
}

func isLane(c byte) bool { return c >= '1' && c <= '8' }
