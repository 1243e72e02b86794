package skeleton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTripsEveryJoint(t *testing.T) {
	require.Len(t, All, 21)
	for _, j := range All {
		got, ok := Parse(j.String())
		require.True(t, ok, "joint %v", j)
		assert.Equal(t, j, got)
	}
}

func TestParse_RejectsUnknown(t *testing.T) {
	_, ok := Parse("Tail")
	assert.False(t, ok)
	_, ok = Parse("hips")
	assert.False(t, ok, "names are case sensitive")
}

func TestFromSensor(t *testing.T) {
	tests := []struct {
		sensor string
		want   Joint
		ok     bool
	}{
		{"Pelvis", Hips, true},
		{"Sternum", Spine3, true},
		{"Head", Head, true},
		{"L_LowArm", LeftForeArm, true},
		{"R_Foot", RightFoot, true},
		{"Unknown_Sensor", 0, false},
		{"L_Hand", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.sensor, func(t *testing.T) {
			got, ok := FromSensor(tt.sensor)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPlayback_IsFifteenDistinctJoints(t *testing.T) {
	require.Len(t, Playback, 15)
	seen := map[Joint]bool{}
	for _, j := range Playback {
		assert.True(t, j.Valid())
		assert.False(t, seen[j], "duplicate %v", j)
		seen[j] = true
	}
	assert.Equal(t, Root, Playback[0])
}

func TestJoint_StringInvalid(t *testing.T) {
	assert.Equal(t, "Joint(200)", Joint(200).String())
	assert.False(t, Joint(200).Valid())
}

func TestParseList(t *testing.T) {
	got, err := ParseList("LeftHand, RightHand,")
	require.NoError(t, err)
	assert.Equal(t, []Joint{LeftHand, RightHand}, got)

	_, err = ParseList("LeftHand,Wing")
	assert.ErrorContains(t, err, "Wing")
}
