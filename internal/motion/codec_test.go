package motion

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/mocap_streamer/internal/orientation"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

func sample(x, y, z, w float64, acc *orientation.Vec3) JointSample {
	return JointSample{Orientation: orientation.FromXYZW(x, y, z, w), Acceleration: acc}
}

func roundTrip(t *testing.T, frames []Frame) []Frame {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, frames))
	got, err := DecodeCSV(&buf)
	require.NoError(t, err)
	return got
}

func TestCSV_RoundTrip(t *testing.T) {
	frames := []Frame{
		{
			skeleton.Hips:      sample(0.1, -0.2, 0.3, 0.9273618495495703, vec(orientation.Vec3{X: 0.01, Y: 9.81, Z: -1e-7})),
			skeleton.RightHand: sample(0, 0, 0, 1, vec(orientation.Vec3{})),
			skeleton.LeftFoot:  sample(0.5, 0.5, 0.5, 0.5, nil),
		},
		{},
		{
			skeleton.Head: sample(1, 0, 0, 0, vec(orientation.Vec3{X: 1.5, Y: 2.25, Z: -3.125})),
		},
	}

	got := roundTrip(t, frames)
	if diff := cmp.Diff(frames, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSV_RoundTripMockFrames(t *testing.T) {
	frames := MockFrames(5, skeleton.All)
	for _, f := range frames {
		for j, s := range f {
			s.Position = nil
			f[j] = s
		}
	}
	delete(frames[2], skeleton.Neck)

	got := roundTrip(t, frames)
	if diff := cmp.Diff(frames, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSV_MissingJointStaysAbsent(t *testing.T) {
	frames := []Frame{{skeleton.Hips: sample(0, 0, 0, 1, vec(orientation.Vec3{X: 1}))}}

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, frames))
	assert.Contains(t, buf.String(), MissingQuat+","+MissingAccel)

	got, err := DecodeCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, ok := got[0].Get(skeleton.RightHand)
	assert.False(t, ok, "RightHand must be absent, not a zero or NaN sample")
	assert.Len(t, got[0], 1)
}

func TestCSV_HeaderLayout(t *testing.T) {
	h := CSVHeader()
	require.Len(t, h, 42)
	assert.Equal(t, "Hips_quat", h[0])
	assert.Equal(t, "Hips_accel", h[1])
	assert.Equal(t, "LeftFoot_accel", h[41])
}

func TestDecodeCSV_BlankCellsAreAbsent(t *testing.T) {
	in := "Head_quat,Head_accel,Hips_quat,Hips_accel\n0 0 0 1, ,,\n"
	got, err := DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Frame{skeleton.Head: sample(0, 0, 0, 1, nil)}, got[0])
}

func TestDecodeCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"unknown joint", "Tail_quat\n0 0 0 1\n", "unknown joint"},
		{"unknown column", "Hips_pos\n0 0 0\n", "unknown column"},
		{"duplicate column", "Hips_quat,Hips_quat\n0 0 0 1,0 0 0 1\n", "duplicate column"},
		{"partial nan", "Hips_quat\nNaN 0 0 1\n", "partial missing value"},
		{"wrong width", "Hips_quat\n0 0 1\n", "expected 4 components"},
		{"not a number", "Hips_accel,Hips_quat\n1 2 x,0 0 0 1\n", `invalid number "x"`},
		{"accel without quat", "Hips_quat,Hips_accel\nNaN NaN NaN NaN,1 2 3\n", "acceleration but no orientation"},
		{"ragged record", "Hips_quat,Hips_accel\n0 0 0 1\n", "wrong number of fields"},
		{"empty input", "", "missing header"},
		{"infinite component", "Hips_quat\n0 0 Inf 1\n", `non-finite number "Inf"`},
		{"infinite accel", "Hips_quat,Hips_accel\n0 0 0 1,0 +Inf 9.8\n", `non-finite number "+Inf"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tt.in))
			var ferr *FormatError
			require.True(t, errors.As(err, &ferr), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecodeCSV_HeaderOnlyIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, nil))
	frames, err := DecodeCSV(&buf)
	assert.Nil(t, frames)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestDecodeCSV_NeverYieldsNaN(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, []Frame{{}, {}}))
	got, err := DecodeCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, f := range got {
		assert.Empty(t, f)
		for _, s := range f {
			assert.False(t, s.Orientation.IsNaN())
		}
	}
}

func TestSaveLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output_quat_accel.csv")
	frames := []Frame{{skeleton.Spine3: sample(0, 1, 0, 0, vec(orientation.Vec3{Z: 2}))}}
	require.NoError(t, SaveCSV(path, frames))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(frames, got))
}
