// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/mocap_streamer/internal/config"
	"github.com/relabs-tech/mocap_streamer/internal/stream"
)

// RunStreamer loads the configured source and streams it to every configured
// transport until the sequence ends, or until interrupted when LOOP is set.
func RunStreamer() error {
	log.Println("starting mocap streamer")

	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("config not initialized")
	}

	frames, err := LoadFrames(cfg)
	if err != nil {
		return err
	}

	transport, shutdown, err := buildTransports(cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &stream.Streamer{
		Transport: transport,
		Interval:  cfg.FrameInterval(),
		Joints:    cfg.PlaybackJoints,
		Rig:       cfg.Rig(),
		Loop:      cfg.Loop,
	}
	sum, err := s.Run(ctx, frames)
	if errors.Is(err, context.Canceled) {
		log.Printf("streamer: interrupted after %d frames (%d passes)", sum.Frames, sum.Passes)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", sum.RunID, err)
	}
	log.Printf("streamer: sent %d frames, %d records", sum.Frames, sum.Records)
	return nil
}

// buildTransports opens every transport listed in TRANSPORTS. The returned
// shutdown closes them and stops the websocket server if one was started.
func buildTransports(cfg *config.Config) (stream.Transport, func(), error) {
	var (
		multi stream.Multi
		srv   *http.Server
	)
	shutdown := func() {
		if err := multi.Close(); err != nil {
			log.Printf("streamer: close transports: %v", err)
		}
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}
	}

	for _, name := range cfg.Transports {
		switch name {
		case config.TransportUDP:
			t, err := stream.NewUDPTransport(cfg.UDPTargetHost, cfg.UDPTargetPort)
			if err != nil {
				shutdown()
				return nil, nil, err
			}
			log.Printf("streamer: sending UDP frames to %s", t.Address())
			multi = append(multi, t)

		case config.TransportMQTT:
			t, err := stream.NewMQTTTransport(cfg.MQTTBroker, cfg.MQTTClientIDStreamer, cfg.TopicFrames)
			if err != nil {
				shutdown()
				return nil, nil, err
			}
			log.Printf("streamer: publishing frames to %s on %s", cfg.MQTTBroker, t.Topic())
			multi = append(multi, t)

		case config.TransportWebSocket:
			hub := stream.NewWebSocketHub()
			mux := http.NewServeMux()
			mux.Handle("/ws", hub)
			mux.Handle("/", http.FileServer(http.Dir("web")))

			srv = &http.Server{Addr: fmt.Sprintf(":%d", cfg.WebServerPort), Handler: mux}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("streamer: websocket server error: %v", err)
				}
			}()
			log.Printf("streamer: websocket clients on ws://localhost%s/ws", srv.Addr)
			multi = append(multi, hub)

		default:
			shutdown()
			return nil, nil, fmt.Errorf("unknown transport %q", name)
		}
	}

	if len(multi) == 1 {
		return multi[0], shutdown, nil
	}
	return multi, shutdown, nil
}
