package motion

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

const tableSource = "pose table"

// Component widths of the two dense table kinds.
const (
	PositionDims    = 3 // x y z
	OrientationDims = 4 // x y z w
)

// Table is a dense per-frame joint table: one column per joint, each cell a
// fixed-width tuple of numbers.
type Table struct {
	Dims   int
	Joints []skeleton.Joint
	// Rows[i][k] is the tuple for Joints[k] in frame i.
	Rows [][][]float64
}

// ParseTable reads a tab-separated table whose first line names the joints
// and whose following lines each hold one frame. Every cell must contain
// exactly dims whitespace-separated numbers.
func ParseTable(r io.Reader, dims int) (*Table, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("invalid tuple width %d", dims)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	t := &Table{Dims: dims}
	lineNum := 0
	haveHeader := false

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if !haveHeader {
			joints, err := parseHeader(line, lineNum)
			if err != nil {
				return nil, err
			}
			t.Joints = joints
			haveHeader = true
			continue
		}

		if line == "" {
			continue
		}

		row, err := parseRow(line, lineNum, len(t.Joints), dims)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading pose table: %w", err)
	}
	if !haveHeader {
		return nil, &FormatError{Source: tableSource, Msg: "missing header line"}
	}

	return t, nil
}

func parseHeader(line string, lineNum int) ([]skeleton.Joint, error) {
	if line == "" {
		return nil, &FormatError{Source: tableSource, Line: lineNum, Msg: "empty header line"}
	}

	names := strings.Split(line, "\t")
	joints := make([]skeleton.Joint, 0, len(names))
	seen := make(map[skeleton.Joint]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		j, ok := skeleton.Parse(name)
		if !ok {
			return nil, &FormatError{Source: tableSource, Line: lineNum, Msg: fmt.Sprintf("unknown joint %q in header", name)}
		}
		if seen[j] {
			return nil, &FormatError{Source: tableSource, Line: lineNum, Msg: fmt.Sprintf("duplicate joint %q in header", name)}
		}
		seen[j] = true
		joints = append(joints, j)
	}
	return joints, nil
}

func parseRow(line string, lineNum, width, dims int) ([][]float64, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != width {
		return nil, &FormatError{
			Source: tableSource,
			Line:   lineNum,
			Msg:    fmt.Sprintf("row has %d fields, header names %d joints", len(fields), width),
		}
	}

	row := make([][]float64, width)
	for k, field := range fields {
		tuple, err := parseTuple(field, dims)
		if err != nil {
			return nil, &FormatError{Source: tableSource, Line: lineNum, Msg: fmt.Sprintf("field %d: %v", k+1, err)}
		}
		row[k] = tuple
	}
	return row, nil
}

// parseTuple splits a cell into exactly dims finite numbers.
func parseTuple(cell string, dims int) ([]float64, error) {
	tokens := strings.Fields(cell)
	if len(tokens) != dims {
		return nil, fmt.Errorf("expected %d components, got %d", dims, len(tokens))
	}
	out := make([]float64, dims)
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", tok)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite number %q", tok)
		}
		out[i] = v
	}
	return out, nil
}

// Frames returns the table as one joint→tuple map per row, in row order.
func (t *Table) Frames() []map[skeleton.Joint][]float64 {
	out := make([]map[skeleton.Joint][]float64, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[skeleton.Joint][]float64, len(t.Joints))
		for k, j := range t.Joints {
			m[j] = row[k]
		}
		out[i] = m
	}
	return out
}

// ZipPoseTables pairs a position table (x y z) with an orientation table
// (x y z w) row by row. Row i of each is taken to be the same instant; no
// realignment is attempted. Joints with a position but no orientation are
// dropped.
func ZipPoseTables(pos, ori *Table) ([]Frame, error) {
	if pos.Dims != PositionDims {
		return nil, fmt.Errorf("position table has %d components per joint, want %d", pos.Dims, PositionDims)
	}
	if ori.Dims != OrientationDims {
		return nil, fmt.Errorf("orientation table has %d components per joint, want %d", ori.Dims, OrientationDims)
	}

	n := len(ori.Rows)
	if len(pos.Rows) != n {
		if len(pos.Rows) < n {
			n = len(pos.Rows)
		}
		Logf("motion: position table has %d rows, orientation table %d; using first %d",
			len(pos.Rows), len(ori.Rows), n)
	}
	if n == 0 {
		return nil, ErrEmptyResult
	}

	posCol := make(map[skeleton.Joint]int, len(pos.Joints))
	for k, j := range pos.Joints {
		posCol[j] = k
	}

	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		f := make(Frame, len(ori.Joints))
		for k, j := range ori.Joints {
			q := ori.Rows[i][k]
			s := JointSample{Orientation: orientation.FromXYZW(q[0], q[1], q[2], q[3])}
			if pk, ok := posCol[j]; ok {
				p := pos.Rows[i][pk]
				s.Position = vec(orientation.Vec3{X: p[0], Y: p[1], Z: p[2]})
			}
			f[j] = s
		}
		frames[i] = f
	}
	return frames, nil
}

// LoadPoseFiles parses a position table and an orientation table from disk
// and zips them into frames.
func LoadPoseFiles(posPath, oriPath string) ([]Frame, error) {
	pos, err := loadTable(posPath, PositionDims)
	if err != nil {
		return nil, err
	}
	ori, err := loadTable(oriPath, OrientationDims)
	if err != nil {
		return nil, err
	}
	return ZipPoseTables(pos, ori)
}

func loadTable(path string, dims int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pose table: %w", err)
	}
	defer file.Close()

	t, err := ParseTable(file, dims)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
