package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/satindergrewal/simaigen/internal/audio"
	"github.com/satindergrewal/simaigen/internal/chart"
	"github.com/satindergrewal/simaigen/internal/config"
	"github.com/satindergrewal/simaigen/internal/maidata"
	"github.com/satindergrewal/simaigen/internal/stream"
	"github.com/satindergrewal/simaigen/internal/studio"
	"github.com/satindergrewal/simaigen/internal/version"
)

type server struct {
	cfg         config.Config
	studio      *studio.Studio
	store       *studio.Store
	pipeline    *audio.Pipeline
	broadcaster *stream.Broadcaster
	webrtc      *stream.WebRTCHandler
	stream      http.Handler
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()

	// Audio streams
	r.Handle("/stream", s.stream).Methods("GET")
	r.Handle("/offer", s.webrtc).Methods("POST", "OPTIONS")

	// API endpoints
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/charts", s.createCharts).Methods("POST")
	api.HandleFunc("/charts/{id}", s.getCharts).Methods("GET")
	api.HandleFunc("/charts/{id}/maidata", s.getMaidata).Methods("GET")
	api.HandleFunc("/charts/{id}/{level}/midi", s.getMIDI).Methods("GET")
	api.HandleFunc("/charts/{id}/{level}/audition", s.audition).Methods("POST")
	api.HandleFunc("/skip", s.skip).Methods("POST")
	api.HandleFunc("/status", s.status).Methods("GET")
	return r
}

// chartsRequest is the POST /api/charts body. Levels are given by name.
type chartsRequest struct {
	Path      string         `json:"path"`
	Title     string         `json:"title"`
	Artist    string         `json:"artist"`
	Designer  string         `json:"designer"`
	Image     string         `json:"image"`
	BPM       int            `json:"bpm"`
	Levels    []string       `json:"levels"`
	LevelBPMs map[string]int `json:"level_bpms"`
	Seed      uint64         `json:"seed"`
	Save      bool           `json:"save"`
}

func (cr chartsRequest) studioRequest() (studio.Request, error) {
	req := studio.Request{
		Path:     cr.Path,
		Title:    cr.Title,
		Artist:   cr.Artist,
		Designer: cr.Designer,
		Image:    cr.Image,
		BPM:      cr.BPM,
		Seed:     cr.Seed,
	}
	if req.Path == "" {
		return req, errors.New("path is required")
	}
	for _, name := range cr.Levels {
		l, err := chart.ParseLevel(name)
		if err != nil {
			return req, err
		}
		req.Levels = append(req.Levels, l)
	}
	for name, bpm := range cr.LevelBPMs {
		l, err := chart.ParseLevel(name)
		if err != nil {
			return req, err
		}
		if bpm < 0 {
			return req, fmt.Errorf("level bpm for %v must not be negative", l)
		}
		req.LevelBPMs[l] = bpm
	}
	return req, nil
}

func (s *server) createCharts(w http.ResponseWriter, r *http.Request) {
	var cr chartsRequest
	if err := json.NewDecoder(r.Body).Decode(&cr); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req, err := cr.studioRequest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	set, err := s.studio.Build(r.Context(), req)
	if err != nil {
		log.Printf("Build %s: %v", req.Path, err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.store.Put(set)

	resp := map[string]any{"report": set.Report()}
	if cr.Save {
		dir, err := set.Save(s.cfg.OutputDir)
		if err != nil {
			log.Printf("Save %s: %v", set.ID, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp["folder"] = dir
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *server) lookup(w http.ResponseWriter, r *http.Request) (*studio.Set, bool) {
	set, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return set, true
}

func (s *server) lookupLevel(w http.ResponseWriter, r *http.Request) (*studio.Set, chart.Level, bool) {
	set, ok := s.lookup(w, r)
	if !ok {
		return nil, 0, false
	}
	l, err := chart.ParseLevel(mux.Vars(r)["level"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, 0, false
	}
	if _, err := set.Result(l); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, 0, false
	}
	return set, l, true
}

func (s *server) getCharts(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "", studio.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		format = studio.FormatJSON
	case studio.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	case studio.FormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		http.Error(w, "format must be json, yaml or txt", http.StatusBadRequest)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := set.WriteReport(w, format); err != nil {
		log.Printf("Report %s: %v", set.ID, err)
	}
}

func (s *server) getMaidata(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}
	content, err := set.Maidata()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+maidata.MaidataFile+`"`)
	w.Write([]byte(content))
}

func (s *server) getMIDI(w http.ResponseWriter, r *http.Request) {
	set, l, ok := s.lookupLevel(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_lv%d.mid"`, maidata.SanitizeTitle(set.Title), int(l)+1))
	if err := set.WriteMIDI(w, l); err != nil {
		log.Printf("MIDI %s %v: %v", set.ID, l, err)
	}
}

func (s *server) audition(w http.ResponseWriter, r *http.Request) {
	set, l, ok := s.lookupLevel(w, r)
	if !ok {
		return
	}
	gain := s.cfg.ClickGain
	if g := r.URL.Query().Get("gain"); g != "" {
		v, err := strconv.ParseFloat(g, 64)
		if err != nil || v < 0 || v > 1 {
			http.Error(w, "gain must be 0-1", http.StatusBadRequest)
			return
		}
		gain = v
	}
	a, err := set.Audition(l, gain)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !s.pipeline.Enqueue(a) {
		http.Error(w, "audition queue full", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"ok":         true,
		"level":      l.String(),
		"notes":      len(a.Onsets),
		"queue_size": s.pipeline.QueueSize(),
	})
}

func (s *server) skip(w http.ResponseWriter, r *http.Request) {
	s.pipeline.Skip()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *server) status(w http.ResponseWriter, r *http.Request) {
	track, pos, dur := s.pipeline.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":          version.String(),
		"chart_sets":       s.store.Len(),
		"queue_size":       s.pipeline.QueueSize(),
		"set_id":           track.ID,
		"level":            track.Level,
		"title":            track.Title,
		"notes":            track.Notes,
		"position":         pos.Seconds(),
		"duration":         dur.Seconds(),
		"frames_sent":      s.broadcaster.FramesSent(),
		"http_listeners":   s.broadcaster.ListenerCount(),
		"webrtc_listeners": s.webrtc.PeerCount(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
