// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion holds the normalised per-frame joint data shared by every
// input format, plus the readers and writers for the table formats.
package motion

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

// Logf is the package diagnostic logger. Tests may replace it.
var Logf func(format string, v ...interface{}) = log.Printf

// ErrEmptyResult is returned when an input yields no frames at all.
var ErrEmptyResult = errors.New("no frames parsed")

// FormatError reports a structural problem in an input file. Parsing stops at
// the first one; no partial frame list is returned.
type FormatError struct {
	Source string // input kind, e.g. "pose table", "sensor log", "csv"
	Line   int    // 1-based line (or record) number, 0 when unknown
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Source, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Msg)
}

// JointSample is one joint's data in one frame. Orientation is always set and
// is expected to be unit norm; it is not re-normalised here. Position and
// Acceleration are nil when the source does not carry them.
type JointSample struct {
	Orientation  orientation.Quat
	Position     *orientation.Vec3
	Acceleration *orientation.Vec3
}

// Frame maps joints to their sample. A joint without a key had no data in
// this frame.
type Frame map[skeleton.Joint]JointSample

// Get returns the sample for j and whether the joint is present.
func (f Frame) Get(j skeleton.Joint) (JointSample, bool) {
	s, ok := f[j]
	return s, ok
}

// Joints returns the present joints in skeleton order.
func (f Frame) Joints() []skeleton.Joint {
	out := make([]skeleton.Joint, 0, len(f))
	for j := range f {
		out = append(out, j)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func vec(v orientation.Vec3) *orientation.Vec3 {
	return &v
}
