package stream

import (
	"context"
	"io"
	"log"
	"net/http"
	"os/exec"
	"strconv"

	"github.com/satindergrewal/simaigen/internal/audio"
)

// HTTPHandler serves the audition as a chunked MP3 stream.
// Each connection spawns an FFmpeg process to encode PCM -> MP3 in real-time.
type HTTPHandler struct {
	broadcaster *Broadcaster
	ffmpegBin   string
	bitrate     string
}

// NewHTTPHandler creates an HTTP stream handler that encodes with ffmpegBin.
func NewHTTPHandler(b *Broadcaster, ffmpegBin string) *HTTPHandler {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &HTTPHandler{broadcaster: b, ffmpegBin: ffmpegBin, bitrate: "192k"}
}

// encodeArgs returns the ffmpeg arguments for PCM stdin -> MP3 stdout.
func (h *HTTPHandler) encodeArgs() []string {
	return []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(audio.SampleRate),
		"-ac", strconv.Itoa(audio.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", h.bitrate,
		"-f", "mp3",
		"-fflags", "nobuffer",
		"-flush_packets", "1",
		"-loglevel", "error",
		"pipe:1",
	}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmd := exec.CommandContext(ctx, h.ffmpegBin, h.encodeArgs()...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Printf("HTTP stream: stdin pipe error: %v", err)
		http.Error(w, "encoder unavailable", http.StatusInternalServerError)
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Printf("HTTP stream: stdout pipe error: %v", err)
		http.Error(w, "encoder unavailable", http.StatusInternalServerError)
		return
	}
	if err := cmd.Start(); err != nil {
		log.Printf("HTTP stream: ffmpeg start error: %v", err)
		http.Error(w, "encoder unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("ICY-Name", "chart audition")

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	log.Printf("HTTP listener connected (total: %d)", h.broadcaster.ListenerCount())
	defer func() {
		log.Printf("HTTP listener disconnected (dropped %d frames)", listener.Dropped())
	}()

	go feedPCM(ctx, listener, stdin)

	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				break
			}
			flusher.Flush()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("HTTP stream: ffmpeg read error: %v", err)
			}
			break
		}
	}

	cmd.Wait()
}

// feedPCM writes listener frames to w until the listener or ctx ends.
func feedPCM(ctx context.Context, l *Listener, w io.WriteCloser) {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.Done():
			return
		case frame, ok := <-l.C:
			if !ok {
				return
			}
			if _, err := w.Write(audio.SamplesToBytes(frame)); err != nil {
				return
			}
		}
	}
}
