package studio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/satindergrewal/simaigen/internal/analysis"
	"github.com/satindergrewal/simaigen/internal/audio"
	"github.com/satindergrewal/simaigen/internal/chart"
	"github.com/satindergrewal/simaigen/internal/export"
	"github.com/satindergrewal/simaigen/internal/maidata"
	"gopkg.in/yaml.v3"
)

// Result is one generated difficulty.
type Result struct {
	Level  chart.Level
	BPM    int
	Chart  chart.Chart
	Combo  int
	Rating string
}

// Set is the outcome of one Build.
type Set struct {
	ID       string
	Path     string
	Image    string
	Title    string
	Artist   string
	Designer string

	BPM      int  // whole-song tempo
	Detected bool // BPM came from tempo detection
	Seconds  float64
	Seed     uint64
	Analysis analysis.Report
	Summary  string
	Created  time.Time

	Charts [chart.NumLevels]*Result // nil for levels not generated
}

// Result returns the chart generated for level.
func (s *Set) Result(level chart.Level) (*Result, error) {
	if !level.Valid() || s.Charts[level] == nil {
		return nil, fmt.Errorf("%w: no %v chart in %s", ErrNotFound, level, s.ID)
	}
	return s.Charts[level], nil
}

// Song returns the maidata fields of the set.
func (s *Set) Song() maidata.Song {
	song := maidata.Song{
		Title:    s.Title,
		Artist:   s.Artist,
		Designer: s.Designer,
		BPM:      s.BPM,
	}
	for i, res := range s.Charts {
		if res != nil {
			song.Levels[i] = maidata.Entry{Enabled: true, Rating: res.Rating, Chart: res.Chart.Text}
		}
	}
	return song
}

// Maidata renders maidata.txt.
func (s *Set) Maidata() (string, error) {
	return maidata.Render(s.Song())
}

// Save writes the song folder under root and returns its path.
func (s *Set) Save(root string) (string, error) {
	return maidata.WriteFolder(root, s.Song(), s.Path, s.Image)
}

// WriteMIDI writes the chart for level as a MIDI file.
func (s *Set) WriteMIDI(w io.Writer, level chart.Level) error {
	res, err := s.Result(level)
	if err != nil {
		return err
	}
	return export.WriteChartMIDI(w, res.Chart.Text, fmt.Sprintf("%s %v", s.Title, level))
}

// Audition returns a request to play the track with a click on every note
// onset of the chart for level.
func (s *Set) Audition(level chart.Level, gain float64) (*audio.Audition, error) {
	res, err := s.Result(level)
	if err != nil {
		return nil, err
	}
	t, err := chart.Parse(res.Chart.Text)
	if err != nil {
		return nil, fmt.Errorf("audition %v: %w", level, err)
	}
	onsets := t.Onsets()
	return &audio.Audition{
		Info: audio.TrackInfo{
			ID:    s.ID,
			Level: level.String(),
			Title: s.Title,
			Notes: len(onsets),
		},
		Path:   s.Path,
		Onsets: onsets,
		Gain:   gain,
	}, nil
}

// LevelReport summarizes one generated difficulty.
type LevelReport struct {
	Level  string `json:"level" yaml:"level"`
	BPM    int    `json:"bpm" yaml:"bpm"`
	Slots  int    `json:"slots" yaml:"slots"`
	Combo  int    `json:"combo" yaml:"combo"`
	Rating string `json:"rating" yaml:"rating"`
}

// Report is the machine-readable summary of a set.
type Report struct {
	ID       string          `json:"id" yaml:"id"`
	Title    string          `json:"title" yaml:"title"`
	Artist   string          `json:"artist,omitempty" yaml:"artist,omitempty"`
	BPM      int             `json:"bpm" yaml:"bpm"`
	Detected bool            `json:"detected" yaml:"detected"`
	Seconds  float64         `json:"seconds" yaml:"seconds"`
	Seed     uint64          `json:"seed" yaml:"seed"`
	Analysis analysis.Report `json:"analysis" yaml:"analysis"`
	Levels   []LevelReport   `json:"levels" yaml:"levels"`
}

// Report builds the summary of s.
func (s *Set) Report() Report {
	r := Report{
		ID:       s.ID,
		Title:    s.Title,
		Artist:   s.Artist,
		BPM:      s.BPM,
		Detected: s.Detected,
		Seconds:  s.Seconds,
		Seed:     s.Seed,
		Analysis: s.Analysis,
	}
	for _, res := range s.Charts {
		if res == nil {
			continue
		}
		r.Levels = append(r.Levels, LevelReport{
			Level:  res.Level.String(),
			BPM:    res.BPM,
			Slots:  res.Chart.Slots,
			Combo:  res.Combo,
			Rating: res.Rating,
		})
	}
	return r
}

// Report formats accepted by WriteReport.
const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// WriteReport writes the set summary as txt, json or yaml.
func (s *Set) WriteReport(w io.Writer, format string) error {
	r := s.Report()
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "", "text":
		return s.writeText(w, r)
	}
	return fmt.Errorf("unknown report format %q", format)
}

func (s *Set) writeText(w io.Writer, r Report) error {
	var b strings.Builder
	b.WriteString(s.Summary)
	b.WriteString("\n")
	src := "manual"
	if r.Detected {
		src = "detected"
	}
	fmt.Fprintf(&b, "BPM: %d (%s, %d onsets)\n", r.BPM, src, r.Analysis.Onsets)
	fmt.Fprintf(&b, "Seed: %d\n", r.Seed)
	for _, l := range r.Levels {
		fmt.Fprintf(&b, "%-10s bpm %3d  level %-4s combo %d\n", l.Level, l.BPM, l.Rating, l.Combo)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
