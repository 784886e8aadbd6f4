// Package studio turns one audio file into a full chart set: it analyzes the
// track once, generates every requested difficulty concurrently and keeps
// the results for saving, export and audition.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/satindergrewal/simaigen/internal/analysis"
	"github.com/satindergrewal/simaigen/internal/chart"
	"github.com/satindergrewal/simaigen/internal/config"
	"github.com/satindergrewal/simaigen/internal/i18n"
)

// ErrNotFound is returned for unknown chart sets and levels that were not
// generated.
var ErrNotFound = errors.New("chart set not found")

// DefaultSeconds is assumed when the decoder reports no duration.
const DefaultSeconds = 120

// Request describes one build.
type Request struct {
	Path     string `json:"path"`
	Title    string `json:"title"` // defaults to the file name without extension
	Artist   string `json:"artist"`
	Designer string `json:"designer"`
	Image    string `json:"image"`

	BPM       int                  `json:"bpm"`        // 0 detects the tempo
	LevelBPMs [chart.NumLevels]int `json:"level_bpms"` // 0 links the level to BPM through the ratios
	Levels    []chart.Level        `json:"levels"`     // empty means all
	Seed      uint64               `json:"seed"`       // 0 picks one at random
}

// Studio builds chart sets.
type Studio struct {
	dec      analysis.Decoder
	ratios   []float64
	designer string
	msg      *i18n.Printer
}

// New returns a Studio decoding with dec and using the BPM ratios, default
// designer and message language from cfg.
func New(dec analysis.Decoder, cfg config.Config) *Studio {
	ratios := cfg.BPMRatios
	if len(ratios) != chart.NumLevels {
		ratios = config.DefaultBPMRatios
	}
	return &Studio{
		dec:      dec,
		ratios:   ratios,
		designer: cfg.Designer,
		msg:      i18n.NewPrinter(cfg.Lang),
	}
}

// Printer returns the message printer progress is logged with.
func (s *Studio) Printer() *i18n.Printer { return s.msg }

func (s *Studio) logf(key string, args ...any) {
	log.Print(s.msg.Sprintf(key, args...))
}

// Build analyzes req.Path and generates the requested levels. Only decode
// failures and cancellation are errors; generation itself cannot fail.
func (s *Studio) Build(ctx context.Context, req Request) (*Set, error) {
	s.logf(i18n.LogStart)
	a := analysis.New(s.dec)
	if err := a.Load(req.Path); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", req.Path, err)
	}
	s.logf(i18n.LogLoaded, req.Path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report, err := a.Report()
	if err != nil {
		return nil, err
	}

	set := &Set{
		ID:       uuid.NewString(),
		Path:     req.Path,
		Image:    req.Image,
		Title:    req.Title,
		Artist:   req.Artist,
		Designer: req.Designer,
		Seconds:  a.Duration(),
		Seed:     req.Seed,
		Analysis: report,
		Summary:  a.Summary(),
		Created:  time.Now(),
	}
	if set.Title == "" {
		set.Title = strings.TrimSuffix(filepath.Base(req.Path), filepath.Ext(req.Path))
	}
	if set.Designer == "" {
		set.Designer = s.designer
	}
	if set.Seconds <= 0 {
		set.Seconds = DefaultSeconds
	}
	if set.Seed == 0 {
		set.Seed = rand.Uint64() | 1
	}

	if req.BPM > 0 {
		set.BPM = req.BPM
		s.logf(i18n.LogManualBpm, set.BPM)
	} else {
		set.BPM = report.BPM
		set.Detected = true
		s.logf(i18n.LogDetectBpm, set.BPM)
	}

	levels := req.Levels
	if len(levels) == 0 {
		levels = chart.Levels()
	}

	var wg sync.WaitGroup
	for _, l := range levels {
		if !l.Valid() || set.Charts[l] != nil {
			continue
		}
		bpm := req.LevelBPMs[l]
		if bpm <= 0 {
			bpm = chart.ScaleBPM(set.BPM, s.ratios[l])
		}
		res := &Result{Level: l, BPM: bpm}
		set.Charts[l] = res
		s.logf(i18n.LogGenerating, l, bpm)

		wg.Add(1)
		go func() {
			defer wg.Done()
			g := chart.NewGenerator(chart.NewSource(chart.LevelSeed(set.Seed, l)))
			res.Chart = g.Generate(a, bpm, set.Seconds, l)
			res.Combo = chart.Combo(res.Chart.Text)
			res.Rating = chart.Rating(l, res.Combo, set.Seconds, bpm)
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, res := range set.Charts {
		if res != nil {
			s.logf(i18n.LogResult, res.Level, res.Rating, res.Combo)
		}
	}
	s.logf(i18n.LogDone)
	return set, nil
}

// Store keeps built chart sets in memory, keyed by id.
type Store struct {
	mu   sync.RWMutex
	sets map[string]*Set
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{sets: make(map[string]*Set)}
}

// Put stores set, assigning an id when it has none, and returns the id.
func (st *Store) Put(set *Set) string {
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	st.mu.Lock()
	st.sets[set.ID] = set
	st.mu.Unlock()
	return set.ID
}

// Get returns the set stored under id.
func (st *Store) Get(id string) (*Set, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	st.mu.RLock()
	set, ok := st.sets[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return set, nil
}

// Len returns the number of stored sets.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sets)
}
