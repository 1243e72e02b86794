// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package calibration expresses every frame of a motion sequence relative to
// the pose captured in its first frame.
package calibration

import (
	"fmt"

	"github.com/relabs-tech/mocap_streamer/internal/motion"
	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

// State is the per-run calibration reference: the inverse of each joint's
// remapped frame-0 orientation and the remapped frame-0 root position.
// It is built once by NewState and never modified.
type State struct {
	rig     Rig
	refs    map[skeleton.Joint]orientation.Quat
	rootRef orientation.Vec3
	hasRoot bool
}

// CalibratedSample is one joint's output for one frame.
type CalibratedSample struct {
	Rotation     orientation.Quat
	Position     orientation.Vec3
	Acceleration orientation.Vec3
}

// Pose maps joints to their calibrated sample. Joints without data in the
// input frame, or without a frame-0 reference, are absent.
type Pose map[skeleton.Joint]CalibratedSample

// NewState captures the calibration reference from the first frame of a
// run. Orientations must be non-zero; a zero quaternion in the reference
// frame is an error naming the joint.
func NewState(reference motion.Frame, rig Rig) (*State, error) {
	if err := rig.Validate(); err != nil {
		return nil, err
	}

	s := &State{
		rig:  rig,
		refs: make(map[skeleton.Joint]orientation.Quat, len(reference)),
	}
	for _, j := range reference.Joints() {
		sample := reference[j]
		inv, err := orientation.Inverse(Remap(sample.Orientation))
		if err != nil {
			return nil, fmt.Errorf("calibration reference for %s: %w", j, err)
		}
		s.refs[j] = inv
	}

	if root, ok := reference[skeleton.Root]; ok && root.Position != nil {
		s.rootRef = rig.RemapPosition(*root.Position)
		s.hasRoot = true
	}
	return s, nil
}

// Rig returns the rig constants the state was built with.
func (s *State) Rig() Rig {
	return s.rig
}

// Joints returns the joints that have a reference, in skeleton order.
func (s *State) Joints() []skeleton.Joint {
	out := make([]skeleton.Joint, 0, len(s.refs))
	for _, j := range skeleton.All {
		if _, ok := s.refs[j]; ok {
			out = append(out, j)
		}
	}
	return out
}

// Reference returns the stored inverse reference orientation of j.
func (s *State) Reference(j skeleton.Joint) (orientation.Quat, bool) {
	q, ok := s.refs[j]
	return q, ok
}

// RootReference returns the remapped frame-0 root position, if the
// reference frame carried one.
func (s *State) RootReference() (orientation.Vec3, bool) {
	return s.rootRef, s.hasRoot
}

// Apply calibrates one frame. Applying it to the reference frame yields the
// identity rotation for every joint.
func (s *State) Apply(f motion.Frame) Pose {
	out := make(Pose, len(f))
	for j, sample := range f {
		ref, ok := s.refs[j]
		if !ok {
			continue
		}

		cs := CalibratedSample{
			Rotation: orientation.Multiply(Remap(sample.Orientation), ref),
		}
		if s.rig.pinned(j) {
			cs.Rotation = orientation.Identity
		}
		if pos, ok := s.position(j, sample); ok {
			cs.Position = pos
		}
		if sample.Acceleration != nil {
			cs.Acceleration = *sample.Acceleration
		}
		out[j] = cs
	}
	return out
}

func (s *State) position(j skeleton.Joint, sample motion.JointSample) (orientation.Vec3, bool) {
	if sample.Position == nil || !s.hasRoot {
		return orientation.Vec3{}, false
	}
	if j != skeleton.Root && !s.rig.JointPositions {
		return orientation.Vec3{}, false
	}
	p := s.rig.RemapPosition(*sample.Position).Sub(s.rootRef)
	p.Y += s.rig.VerticalOffset
	return p, true
}
