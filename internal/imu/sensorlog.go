// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package imu reads frame-delimited inertial sensor logs into motion frames.
package imu

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/relabs-tech/mocap_streamer/internal/motion"
	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

const logSource = "sensor log"

var (
	frameMarkerRe = regexp.MustCompile(`^\d+$`)
	headerRe      = regexp.MustCompile(`^\d+\s+\d+$`)
)

// ParseSensorRow parses one data line: a sensor name followed by exactly 13
// numbers. The quaternion is read as w x y z.
func ParseSensorRow(line string) (SensorRow, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return SensorRow{}, fmt.Errorf("empty data row")
	}
	if len(parts)-1 != rowValues {
		return SensorRow{}, fmt.Errorf("sensor %q has %d values, want %d", parts[0], len(parts)-1, rowValues)
	}

	var v [rowValues]float64
	for i, tok := range parts[1:] {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return SensorRow{}, fmt.Errorf("sensor %q value %d: invalid number %q", parts[0], i+1, tok)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return SensorRow{}, fmt.Errorf("sensor %q value %d: non-finite number %q", parts[0], i+1, tok)
		}
		v[i] = f
	}

	return SensorRow{
		Name:        parts[0],
		Orientation: orientation.FromWXYZ(v[0], v[1], v[2], v[3]),
		Accel:       orientation.Vec3{X: v[4], Y: v[5], Z: v[6]},
		Gyro:        orientation.Vec3{X: v[7], Y: v[8], Z: v[9]},
		Mag:         orientation.Vec3{X: v[10], Y: v[11], Z: v[12]},
	}, nil
}

// logParser accumulates data rows between frame markers.
type logParser struct {
	frames  []motion.Frame
	pending []SensorRow
}

// flush turns the pending rows into a frame. Rows whose sensor has no joint
// are dropped here. An empty accumulator emits nothing.
func (p *logParser) flush() {
	if len(p.pending) == 0 {
		return
	}
	f := make(motion.Frame, len(p.pending))
	for _, row := range p.pending {
		j, ok := skeleton.FromSensor(row.Name)
		if !ok {
			continue
		}
		acc := row.Accel
		f[j] = motion.JointSample{
			Orientation:  row.Orientation,
			Acceleration: &acc,
		}
	}
	p.frames = append(p.frames, f)
	p.pending = p.pending[:0]
}

// ParseSensorLog reads a sensor log: an optional "<frames> <sensors>" header,
// then blocks of data rows each closed by a line holding only the frame
// number. Any malformed data row aborts the parse.
func ParseSensorLog(r io.Reader) ([]motion.Frame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	p := &logParser{}
	lineNum := 0
	first := true

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if first {
			first = false
			if headerRe.MatchString(line) {
				continue
			}
		}

		if frameMarkerRe.MatchString(line) {
			p.flush()
			continue
		}

		row, err := ParseSensorRow(line)
		if err != nil {
			return nil, &motion.FormatError{Source: logSource, Line: lineNum, Msg: err.Error()}
		}
		p.pending = append(p.pending, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading sensor log: %w", err)
	}

	p.flush()
	if len(p.frames) == 0 {
		return nil, motion.ErrEmptyResult
	}
	return p.frames, nil
}

// LoadSensorLog parses the sensor log at path.
func LoadSensorLog(path string) ([]motion.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sensor log: %w", err)
	}
	defer file.Close()

	frames, err := ParseSensorLog(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frames, nil
}
