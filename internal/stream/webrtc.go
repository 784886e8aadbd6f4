package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/satindergrewal/simaigen/internal/audio"
	"gopkg.in/hraban/opus.v2"
)

// DefaultOpusBitrate is the WebRTC audition bitrate in bits per second.
const DefaultOpusBitrate = 128000

// WebRTCHandler negotiates SDP and streams the audition as Opus.
type WebRTCHandler struct {
	broadcaster *Broadcaster
	bitrate     int

	mu    sync.Mutex
	peers map[*webrtc.PeerConnection]struct{}
}

// NewWebRTCHandler creates a WebRTC stream handler.
func NewWebRTCHandler(b *Broadcaster) *WebRTCHandler {
	return &WebRTCHandler{
		broadcaster: b,
		bitrate:     DefaultOpusBitrate,
		peers:       make(map[*webrtc.PeerConnection]struct{}),
	}
}

// PeerCount returns the number of active WebRTC peers.
func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	pc, track, status, err := h.negotiate(offer)
	if err != nil {
		log.Printf("WebRTC: %v", err)
		http.Error(w, err.Error(), status)
		return
	}

	h.mu.Lock()
	h.peers[pc] = struct{}{}
	h.mu.Unlock()
	log.Printf("WebRTC peer connected (total: %d)", h.PeerCount())

	closed := make(chan struct{})
	var once sync.Once
	go h.streamToPeer(track, closed)

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		switch s {
		case webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateClosed,
			webrtc.PeerConnectionStateDisconnected:
			once.Do(func() {
				close(closed)
				h.mu.Lock()
				delete(h.peers, pc)
				h.mu.Unlock()
				pc.Close()
				log.Printf("WebRTC peer disconnected (remaining: %d)", h.PeerCount())
			})
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(pc.LocalDescription())
}

// negotiate answers offer with a connection carrying one Opus track. On
// failure it returns the HTTP status to report.
func (h *WebRTCHandler) negotiate(offer webrtc.SessionDescription) (*webrtc.PeerConnection, *webrtc.TrackLocalStaticSample, int, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, nil, http.StatusInternalServerError, errCreate("peer connection", err)
	}

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		"chart-audition",
	)
	if err != nil {
		pc.Close()
		return nil, nil, http.StatusInternalServerError, errCreate("audio track", err)
	}
	if _, err := pc.AddTrack(track); err != nil {
		pc.Close()
		return nil, nil, http.StatusInternalServerError, errCreate("track sender", err)
	}
	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		return nil, nil, http.StatusBadRequest, errCreate("remote description", err)
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return nil, nil, http.StatusInternalServerError, errCreate("answer", err)
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return nil, nil, http.StatusInternalServerError, errCreate("local description", err)
	}

	// Wait for ICE gathering so the answer carries every candidate
	<-webrtc.GatheringCompletePromise(pc)
	return pc, track, http.StatusOK, nil
}

func (h *WebRTCHandler) streamToPeer(track *webrtc.TrackLocalStaticSample, closed <-chan struct{}) {
	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	enc, err := opus.NewEncoder(audio.SampleRate, audio.Channels, opus.AppAudio)
	if err != nil {
		log.Printf("WebRTC: opus encoder error: %v", err)
		return
	}
	if err := enc.SetBitrate(h.bitrate); err != nil {
		log.Printf("WebRTC: opus bitrate %d: %v", h.bitrate, err)
	}

	opusBuf := make([]byte, 4000)
	for {
		select {
		case <-closed:
			return
		case <-listener.Done():
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			n, err := enc.Encode(frame, opusBuf)
			if err != nil {
				log.Printf("WebRTC: opus encode error: %v", err)
				continue
			}
			if err := track.WriteSample(media.Sample{
				Data:     opusBuf[:n],
				Duration: audio.FrameDuration,
			}); err != nil {
				return
			}
		}
	}
}

func errCreate(what string, err error) error {
	return fmt.Errorf("create %s failed: %w", what, err)
}
