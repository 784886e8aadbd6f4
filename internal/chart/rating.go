package chart

import "strings"

// Every character that marks a slide in a note, including shapes this
// generator does not emit.
const slideMarks = "-^v<>pqszwV"

// Combo counts scored events in chart text. Slides count twice: once for the
// star and once for the slide itself.
func Combo(text string) int {
	combo := 0
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' }) {
		tok = strings.TrimSpace(stripHeader(tok))
		if tok == "" || tok == "E" {
			continue
		}
		for _, n := range strings.Split(tok, "/") {
			switch {
			case n == "":
			case strings.ContainsAny(n, slideMarks):
				combo += 2
			default:
				combo++
			}
		}
	}
	return combo
}

// stripHeader removes a leading (bpm){div} from the first token.
func stripHeader(tok string) string {
	if strings.HasPrefix(tok, "(") {
		if i := strings.IndexByte(tok, ')'); i >= 0 {
			tok = tok[i+1:]
		}
	}
	if strings.HasPrefix(tok, "{") {
		if i := strings.IndexByte(tok, '}'); i >= 0 {
			tok = tok[i+1:]
		}
	}
	return tok
}

type band struct {
	upTo  int // inclusive upper bound of effective combo
	label string
}

// ratingBands maps effective combo to a displayed level, per tier. The last
// band of each tier is open-ended.
var ratingBands = [NumLevels][]band{
	Easy:     {{100, "1"}, {124, "2"}, {150, "3"}, {200, "4"}, {-1, "5"}},
	Basic:    {{124, "2"}, {150, "3"}, {199, "4"}, {250, "5"}, {299, "6"}, {350, "7"}, {-1, "7+"}},
	Advanced: {{274, "7"}, {350, "8"}, {424, "9"}, {500, "10"}, {600, "10+"}, {-1, "11"}},
	Expert:   {{300, "8"}, {399, "9"}, {500, "10"}, {599, "11"}, {700, "12"}, {799, "12+"}, {900, "13"}, {-1, "13+"}},
	Master:   {{400, "11+"}, {499, "12"}, {600, "12+"}, {699, "13"}, {800, "13+"}, {899, "14"}, {-1, "14+"}},
	ReMaster: {{500, "13"}, {599, "13+"}, {700, "14"}, {849, "14+"}, {-1, "15"}},
}

// EffectiveCombo weights combo by density, song length and tempo.
func EffectiveCombo(combo int, seconds float64, bpm int) int {
	bpmFactor := max(0.85, min(1.15, 1+(float64(bpm)-140)/300))
	density := float64(combo) * 120 / max(45, seconds)
	stamina := 1.0
	if seconds > 120 {
		stamina = 1 + (seconds-120)/1500
	}
	return int((density*0.6 + float64(combo)*0.4) * bpmFactor * stamina)
}

// Rating estimates the displayed level of a chart. Unknown tiers rate "0".
func Rating(level Level, combo int, seconds float64, bpm int) string {
	if !level.Valid() {
		return "0"
	}
	eff := EffectiveCombo(combo, seconds, bpm)
	bands := ratingBands[level]
	for _, b := range bands[:len(bands)-1] {
		if eff <= b.upTo {
			return b.label
		}
	}
	return bands[len(bands)-1].label
}
