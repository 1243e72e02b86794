// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/relabs-tech/mocap_streamer/internal/motion"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
	"github.com/relabs-tech/mocap_streamer/internal/stream"
)

// consoleTransport prints each frame instead of sending it.
type consoleTransport struct {
	w io.Writer
}

func (c consoleTransport) Send(_ context.Context, records []stream.Record) error {
	_, err := io.WriteString(c.w, formatFrame(records))
	return err
}

func (c consoleTransport) Close() error { return nil }

// RunMockConsole streams synthetic motion to stdout at 10 frames per second
// until interrupted. It needs no config, broker or capture files.
func RunMockConsole() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := &stream.Streamer{
		Transport: consoleTransport{w: os.Stdout},
		Interval:  100 * time.Millisecond,
		Joints:    skeleton.Playback,
		Loop:      true,
	}
	_, err := s.Run(ctx, motion.MockFrames(600, skeleton.Playback))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
