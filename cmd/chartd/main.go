package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/satindergrewal/simaigen/internal/audio"
	"github.com/satindergrewal/simaigen/internal/config"
	"github.com/satindergrewal/simaigen/internal/stream"
	"github.com/satindergrewal/simaigen/internal/studio"
	"github.com/satindergrewal/simaigen/internal/version"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("chartd %s starting up...", version.String())

	dec := audio.NewDecoder(cfg.FFmpegBin, cfg.FFprobeBin)

	// Audition pipeline
	pipeline := audio.NewPipeline(dec)
	go pipeline.Run(ctx)

	// Broadcaster: fan-out PCM frames to all listeners
	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, pipeline.Frames())

	srv := &server{
		cfg:         cfg,
		studio:      studio.New(dec, cfg),
		store:       studio.NewStore(),
		pipeline:    pipeline,
		broadcaster: broadcaster,
		webrtc:      stream.NewWebRTCHandler(broadcaster),
		stream:      stream.NewHTTPHandler(broadcaster, cfg.FFmpegBin),
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{Addr: addr, Handler: srv.routes()}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		httpServer.Close()
	}()

	log.Printf("chartd listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}
