package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader("SOURCE_KIND=mock\n"))
	require.NoError(t, err)

	assert.Equal(t, SourceMock, cfg.SourceKind)
	assert.Equal(t, 300, cfg.MockFrames)
	assert.Equal(t, []string{"udp"}, cfg.Transports)
	assert.Equal(t, "127.0.0.1", cfg.UDPTargetHost)
	assert.Equal(t, 5005, cfg.UDPTargetPort)
	assert.Equal(t, "mocap/frames", cfg.TopicFrames)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval())
	assert.Equal(t, skeleton.Playback, cfg.PlaybackJoints)
	assert.False(t, cfg.Loop)

	rig := cfg.Rig()
	assert.Equal(t, 3.0, rig.PositionScale)
	assert.Equal(t, 11.0, rig.VerticalOffset)
	assert.False(t, rig.JointPositions)
	assert.Empty(t, rig.IdentityJoints)
}

func TestParse_FullFile(t *testing.T) {
	input := `
# capture replay
SOURCE_KIND = pose
POSE_POSITION_FILE=take1_pos.txt
POSE_ORIENTATION_FILE=take1_ori.txt

TRANSPORTS=udp, mqtt ,websocket
UDP_TARGET_HOST=192.168.1.20
UDP_TARGET_PORT=6000
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_STREAMER=mocap-streamer
TOPIC_FRAMES=rig/frames
WEB_SERVER_PORT=9090

FRAME_INTERVAL_MS=33
LOOP=true
PLAYBACK_JOINTS=Hips,Head
POSITION_SCALE=2.5
VERTICAL_OFFSET=-4
JOINT_POSITIONS=1
IDENTITY_JOINTS=LeftHand,RightHand
`
	cfg, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "take1_pos.txt", cfg.PosePositionFile)
	assert.Equal(t, "take1_ori.txt", cfg.PoseOrientationFile)
	assert.Equal(t, []string{"udp", "mqtt", "websocket"}, cfg.Transports)
	assert.True(t, cfg.HasTransport(TransportMQTT))
	assert.Equal(t, "192.168.1.20", cfg.UDPTargetHost)
	assert.Equal(t, 6000, cfg.UDPTargetPort)
	assert.Equal(t, "rig/frames", cfg.TopicFrames)
	assert.Equal(t, 9090, cfg.WebServerPort)
	assert.Equal(t, 33*time.Millisecond, cfg.FrameInterval())
	assert.True(t, cfg.Loop)
	assert.Equal(t, []skeleton.Joint{skeleton.Hips, skeleton.Head}, cfg.PlaybackJoints)

	rig := cfg.Rig()
	assert.Equal(t, 2.5, rig.PositionScale)
	assert.Equal(t, -4.0, rig.VerticalOffset)
	assert.True(t, rig.JointPositions)
	assert.Equal(t, []skeleton.Joint{skeleton.LeftHand, skeleton.RightHand}, rig.IdentityJoints)
	assert.NoError(t, rig.Validate())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown source", "SOURCE_KIND=bvh\n", `unknown SOURCE_KIND "bvh"`},
		{"unknown key", "SOURCE_KIND=mock\nGPS_BAUD_RATE=9600\n", `config line 2: unknown config key: "GPS_BAUD_RATE"`},
		{"no equals", "SOURCE_KIND mock\n", "invalid config line 1"},
		{"pose needs files", "SOURCE_KIND=pose\nPOSE_POSITION_FILE=a.txt\n", "POSE_ORIENTATION_FILE is required"},
		{"sensors needs log", "SOURCE_KIND=sensors\n", "SENSOR_LOG_FILE is required"},
		{"csv needs file", "SOURCE_KIND=csv\n", "CSV_FILE is required"},
		{"mqtt needs broker", "SOURCE_KIND=mock\nTRANSPORTS=mqtt\n", "MQTT_BROKER is required"},
		{"mqtt needs client id", "SOURCE_KIND=mock\nTRANSPORTS=mqtt\nMQTT_BROKER=tcp://b:1883\n", "MQTT_CLIENT_ID_STREAMER is required"},
		{"unknown transport", "SOURCE_KIND=mock\nTRANSPORTS=udp,osc\n", `unknown transport "osc"`},
		{"empty transports", "SOURCE_KIND=mock\nTRANSPORTS= , \n", "at least one transport"},
		{"bad port", "SOURCE_KIND=mock\nUDP_TARGET_PORT=70000\n", "UDP_TARGET_PORT: port must be 1-65535"},
		{"bad interval", "SOURCE_KIND=mock\nFRAME_INTERVAL_MS=0\n", "FRAME_INTERVAL_MS: must be > 0"},
		{"bad bool", "SOURCE_KIND=mock\nLOOP=sometimes\n", `LOOP: invalid boolean "sometimes"`},
		{"zero scale", "SOURCE_KIND=mock\nPOSITION_SCALE=0\n", "POSITION_SCALE must be > 0"},
		{"bad offset", "SOURCE_KIND=mock\nVERTICAL_OFFSET=up\n", "invalid VERTICAL_OFFSET"},
		{"bad joint", "SOURCE_KIND=mock\nIDENTITY_JOINTS=LeftHand,Tail\n", `unknown joint "Tail"`},
		{"empty playback", "SOURCE_KIND=mock\nPLAYBACK_JOINTS=\n", "at least one joint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_SubscriberOnly(t *testing.T) {
	cfg, err := Parse(strings.NewReader("MQTT_BROKER=tcp://localhost:1883\nMQTT_CLIENT_ID_WEB=mocap-web\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.SourceKind)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)

	assert.EqualError(t, cfg.ValidateSource(), "SOURCE_KIND is required")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mocap_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("SOURCE_KIND=csv\nCSV_FILE=take.csv\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "take.csv", cfg.CSVFile)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "failed to open config file")
}
