// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package stream paces calibrated frames out to network consumers, one
// message per frame.
package stream

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/mocap_streamer/internal/calibration"
	"github.com/relabs-tech/mocap_streamer/internal/motion"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
	"github.com/relabs-tech/mocap_streamer/internal/timeutil"
)

// Logf is the package logger. Tests replace it to silence output.
var Logf func(format string, v ...interface{}) = log.Printf

// DefaultInterval is the playback pacing, roughly 60 frames per second.
const DefaultInterval = 16 * time.Millisecond

// Summary describes a finished or interrupted run.
type Summary struct {
	RunID   string
	Frames  int // frames sent, across all passes
	Records int
	Passes  int // completed passes over the sequence
	Missing int // requested joints absent from sent frames
}

// Streamer sends a frame sequence through a Transport at a fixed pace.
// Zero fields take their defaults: RealClock, DefaultInterval and
// skeleton.Playback. A Rig without a position scale gets the default scale
// and, if unset, the default vertical offset.
type Streamer struct {
	Transport Transport
	Clock     timeutil.Clock
	Interval  time.Duration
	Joints    []skeleton.Joint
	Rig       calibration.Rig
	Loop      bool
}

// Run calibrates against frames[0] and sends every frame, one per tick. With
// Loop set it replays the sequence until ctx is cancelled, recalibrating at
// the start of each pass. A failed send ends the run; there is no retry.
func (s *Streamer) Run(ctx context.Context, frames []motion.Frame) (Summary, error) {
	sum := Summary{RunID: uuid.NewString()}
	if len(frames) == 0 {
		return sum, motion.ErrEmptyResult
	}
	if s.Transport == nil {
		return sum, fmt.Errorf("stream: no transport")
	}

	clock := s.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	joints := s.Joints
	if len(joints) == 0 {
		joints = skeleton.Playback
	}
	rig := s.Rig
	if rig.PositionScale == 0 {
		def := calibration.DefaultRig()
		rig.PositionScale = def.PositionScale
		if rig.VerticalOffset == 0 {
			rig.VerticalOffset = def.VerticalOffset
		}
	}

	Logf("stream: run %s: %d frames, %d joints, interval %s, loop=%v",
		sum.RunID, len(frames), len(joints), interval, s.Loop)

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := calibration.NewState(frames[0], rig)
		if err != nil {
			return sum, fmt.Errorf("calibrate: %w", err)
		}

		for i, f := range frames {
			select {
			case <-ctx.Done():
				Logf("stream: run %s stopped after %d frames", sum.RunID, sum.Frames)
				return sum, ctx.Err()
			case <-ticker.C():
			}

			records := BuildRecords(i, state.Apply(f), joints, interval)
			if err := s.Transport.Send(ctx, records); err != nil {
				return sum, fmt.Errorf("send frame %d: %w", i, err)
			}
			sum.Frames++
			sum.Records += len(records)
			sum.Missing += len(joints) - len(records)
		}
		sum.Passes++

		if !s.Loop {
			break
		}
	}

	if sum.Missing > 0 {
		Logf("stream: run %s: %d joint samples missing from sent frames", sum.RunID, sum.Missing)
	}
	Logf("stream: run %s done: %d frames, %d records", sum.RunID, sum.Frames, sum.Records)
	return sum, nil
}
