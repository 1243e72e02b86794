package motion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

const csvSource = "csv"

// Column suffixes and missing-joint sentinels of the intermediate CSV.
const (
	QuatSuffix  = "_quat"
	AccelSuffix = "_accel"

	MissingQuat  = "NaN NaN NaN NaN"
	MissingAccel = "NaN NaN NaN"
)

// CSVHeader returns the intermediate CSV header: a quaternion and an
// acceleration column per joint, in skeleton order.
func CSVHeader() []string {
	header := make([]string, 0, 2*len(skeleton.All))
	for _, j := range skeleton.All {
		header = append(header, j.String()+QuatSuffix, j.String()+AccelSuffix)
	}
	return header
}

// EncodeCSV writes frames in the intermediate CSV layout. Quaternions are
// written x y z w. Positions are not part of this layout and are dropped.
func EncodeCSV(w io.Writer, frames []Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, 0, 2*len(skeleton.All))
	for i, f := range frames {
		row = row[:0]
		for _, j := range skeleton.All {
			s, ok := f[j]
			if !ok {
				row = append(row, MissingQuat, MissingAccel)
				continue
			}
			q := s.Orientation.XYZW()
			row = append(row, joinFloats(q[:]))
			if s.Acceleration == nil {
				row = append(row, MissingAccel)
			} else {
				a := s.Acceleration.Array()
				row = append(row, joinFloats(a[:]))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv frame %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

type csvColumn struct {
	joint skeleton.Joint
	accel bool
}

// DecodeCSV reads the intermediate CSV layout. A sentinel or blank cell means
// the joint had no data in that frame; it never becomes a NaN sample. A header
// with no frame rows is ErrEmptyResult.
func DecodeCSV(r io.Reader) ([]Frame, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &FormatError{Source: csvSource, Msg: "missing header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns, err := parseCSVHeader(header)
	if err != nil {
		return nil, err
	}

	var frames []Frame
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &FormatError{Source: csvSource, Line: perr.Line, Msg: perr.Err.Error()}
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}

		f, err := decodeRecord(record, columns, line)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	if len(frames) == 0 {
		return nil, ErrEmptyResult
	}
	return frames, nil
}

func parseCSVHeader(header []string) ([]csvColumn, error) {
	columns := make([]csvColumn, len(header))
	seen := make(map[csvColumn]bool, len(header))

	for i, name := range header {
		name = strings.TrimSpace(name)
		var col csvColumn
		var jointName string
		switch {
		case strings.HasSuffix(name, QuatSuffix):
			jointName = strings.TrimSuffix(name, QuatSuffix)
		case strings.HasSuffix(name, AccelSuffix):
			jointName = strings.TrimSuffix(name, AccelSuffix)
			col.accel = true
		default:
			return nil, &FormatError{Source: csvSource, Line: 1, Msg: fmt.Sprintf("unknown column %q", name)}
		}

		j, ok := skeleton.Parse(jointName)
		if !ok {
			return nil, &FormatError{Source: csvSource, Line: 1, Msg: fmt.Sprintf("unknown joint in column %q", name)}
		}
		col.joint = j
		if seen[col] {
			return nil, &FormatError{Source: csvSource, Line: 1, Msg: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[col] = true
		columns[i] = col
	}
	return columns, nil
}

func decodeRecord(record []string, columns []csvColumn, line int) (Frame, error) {
	if len(record) != len(columns) {
		return nil, &FormatError{
			Source: csvSource,
			Line:   line,
			Msg:    fmt.Sprintf("record has %d cells, header has %d", len(record), len(columns)),
		}
	}

	quats := make(map[skeleton.Joint]orientation.Quat)
	accels := make(map[skeleton.Joint]orientation.Vec3)

	for i, cell := range record {
		col := columns[i]
		dims := OrientationDims
		sentinel := MissingQuat
		if col.accel {
			dims = 3
			sentinel = MissingAccel
		}

		vals, present, err := parseCell(cell, dims, sentinel)
		if err != nil {
			return nil, &FormatError{
				Source: csvSource,
				Line:   line,
				Msg:    fmt.Sprintf("column %s: %v", columnName(col), err),
			}
		}
		if !present {
			continue
		}
		if col.accel {
			accels[col.joint] = orientation.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
		} else {
			quats[col.joint] = orientation.FromXYZW(vals[0], vals[1], vals[2], vals[3])
		}
	}

	f := make(Frame, len(quats))
	for j, q := range quats {
		s := JointSample{Orientation: q}
		if a, ok := accels[j]; ok {
			s.Acceleration = vec(a)
		}
		f[j] = s
	}
	for j := range accels {
		if _, ok := quats[j]; !ok {
			return nil, &FormatError{
				Source: csvSource,
				Line:   line,
				Msg:    fmt.Sprintf("joint %s has acceleration but no orientation", j),
			}
		}
	}
	return f, nil
}

// parseCell returns present=false for the sentinel and for blank cells. Any
// other NaN is rejected so it can't leak into quaternion math.
func parseCell(cell string, dims int, sentinel string) ([]float64, bool, error) {
	tokens := strings.Fields(cell)
	if len(tokens) == 0 || strings.Join(tokens, " ") == sentinel {
		return nil, false, nil
	}

	for _, tok := range tokens {
		if v, err := strconv.ParseFloat(tok, 64); err == nil && v != v {
			return nil, false, fmt.Errorf("partial missing value %q", cell)
		}
	}
	vals, err := parseTuple(cell, dims)
	if err != nil {
		return nil, false, err
	}
	return vals, true, nil
}

func columnName(c csvColumn) string {
	if c.accel {
		return c.joint.String() + AccelSuffix
	}
	return c.joint.String() + QuatSuffix
}

// SaveCSV writes frames to path in the intermediate CSV layout.
func SaveCSV(path string, frames []Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	if err := EncodeCSV(file, frames); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadCSV reads frames from an intermediate CSV file.
func LoadCSV(path string) ([]Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	frames, err := DecodeCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frames, nil
}
