package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/mocap_streamer/internal/calibration"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

// Source kinds accepted by SOURCE_KIND.
const (
	SourcePose    = "pose"
	SourceSensors = "sensors"
	SourceCSV     = "csv"
	SourceMock    = "mock"
)

// Transport names accepted by TRANSPORTS.
const (
	TransportUDP       = "udp"
	TransportMQTT      = "mqtt"
	TransportWebSocket = "websocket"
)

// Config holds all application configuration values.
type Config struct {
	// Source
	SourceKind          string
	PosePositionFile    string
	PoseOrientationFile string
	SensorLogFile       string
	CSVFile             string
	MockFrames          int

	// Transports
	Transports    []string
	UDPTargetHost string
	UDPTargetPort int

	// MQTT
	MQTTBroker           string
	MQTTClientIDStreamer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	TopicFrames          string

	// Web Server
	WebServerPort int

	// Playback
	FrameIntervalMS int
	Loop            bool
	PlaybackJoints  []skeleton.Joint

	// Rig
	PositionScale  float64
	VerticalOffset float64
	JointPositions bool
	IdentityJoints []skeleton.Joint
}

// Package-level singleton: InitGlobal sets it once, Get reads it under the
// read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional key at its default.
func Default() *Config {
	rig := calibration.DefaultRig()
	return &Config{
		MockFrames:      300,
		Transports:      []string{TransportUDP},
		UDPTargetHost:   "127.0.0.1",
		UDPTargetPort:   5005,
		TopicFrames:     "mocap/frames",
		WebServerPort:   8080,
		FrameIntervalMS: 16,
		PlaybackJoints:  append([]skeleton.Joint(nil), skeleton.Playback...),
		PositionScale:   rig.PositionScale,
		VerticalOffset:  rig.VerticalOffset,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Source
	case "SOURCE_KIND":
		c.SourceKind = value
	case "POSE_POSITION_FILE":
		c.PosePositionFile = value
	case "POSE_ORIENTATION_FILE":
		c.PoseOrientationFile = value
	case "SENSOR_LOG_FILE":
		c.SensorLogFile = value
	case "CSV_FILE":
		c.CSVFile = value
	case "MOCK_FRAMES":
		c.MockFrames, err = positiveInt(value)

	// Transports
	case "TRANSPORTS":
		c.Transports = splitList(value)
	case "UDP_TARGET_HOST":
		c.UDPTargetHost = value
	case "UDP_TARGET_PORT":
		c.UDPTargetPort, err = port(value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_STREAMER":
		c.MQTTClientIDStreamer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_FRAMES":
		c.TopicFrames = value

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = port(value)

	// Playback
	case "FRAME_INTERVAL_MS":
		c.FrameIntervalMS, err = positiveInt(value)
	case "LOOP":
		c.Loop, err = parseBool(value)
	case "PLAYBACK_JOINTS":
		c.PlaybackJoints, err = skeleton.ParseList(value)
		if err == nil && len(c.PlaybackJoints) == 0 {
			err = fmt.Errorf("must name at least one joint")
		}

	// Rig
	case "POSITION_SCALE":
		c.PositionScale, err = strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid POSITION_SCALE %q: %w", value, err)
		}
		if c.PositionScale <= 0 {
			return fmt.Errorf("POSITION_SCALE must be > 0, got %g", c.PositionScale)
		}
	case "VERTICAL_OFFSET":
		c.VerticalOffset, err = strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid VERTICAL_OFFSET %q: %w", value, err)
		}
	case "JOINT_POSITIONS":
		c.JointPositions, err = parseBool(value)
	case "IDENTITY_JOINTS":
		c.IdentityJoints, err = skeleton.ParseList(value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// validate checks that the keys required by the chosen source and
// transports are set. SOURCE_KIND may be left out: the MQTT subscribers
// share the file but read no source.
func (c *Config) validate() error {
	if c.SourceKind != "" {
		if err := c.ValidateSource(); err != nil {
			return err
		}
	}

	if len(c.Transports) == 0 {
		return fmt.Errorf("TRANSPORTS must name at least one transport")
	}
	for _, t := range c.Transports {
		switch t {
		case TransportUDP:
			if c.UDPTargetHost == "" {
				return fmt.Errorf("UDP_TARGET_HOST is required for the udp transport")
			}
		case TransportMQTT:
			if c.MQTTBroker == "" {
				return fmt.Errorf("MQTT_BROKER is required for the mqtt transport")
			}
			if c.MQTTClientIDStreamer == "" {
				return fmt.Errorf("MQTT_CLIENT_ID_STREAMER is required for the mqtt transport")
			}
		case TransportWebSocket:
		default:
			return fmt.Errorf("unknown transport %q in TRANSPORTS", t)
		}
	}
	return nil
}

// ValidateSource checks SOURCE_KIND and the file keys it needs. Only the
// streamer reads a source, so it calls this before loading.
func (c *Config) ValidateSource() error {
	switch c.SourceKind {
	case "":
		return fmt.Errorf("SOURCE_KIND is required")
	case SourcePose:
		if c.PosePositionFile == "" {
			return fmt.Errorf("POSE_POSITION_FILE is required for SOURCE_KIND=pose")
		}
		if c.PoseOrientationFile == "" {
			return fmt.Errorf("POSE_ORIENTATION_FILE is required for SOURCE_KIND=pose")
		}
	case SourceSensors:
		if c.SensorLogFile == "" {
			return fmt.Errorf("SENSOR_LOG_FILE is required for SOURCE_KIND=sensors")
		}
	case SourceCSV:
		if c.CSVFile == "" {
			return fmt.Errorf("CSV_FILE is required for SOURCE_KIND=csv")
		}
	case SourceMock:
	default:
		return fmt.Errorf("unknown SOURCE_KIND %q (want pose, sensors, csv or mock)", c.SourceKind)
	}
	return nil
}

// HasTransport reports whether name is listed in TRANSPORTS.
func (c *Config) HasTransport(name string) bool {
	for _, t := range c.Transports {
		if t == name {
			return true
		}
	}
	return false
}

// FrameInterval returns FRAME_INTERVAL_MS as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// Rig returns the calibration rig described by the rig keys.
func (c *Config) Rig() calibration.Rig {
	return calibration.Rig{
		PositionScale:  c.PositionScale,
		VerticalOffset: c.VerticalOffset,
		JointPositions: c.JointPositions,
		IdentityJoints: c.IdentityJoints,
	}
}

func positiveInt(value string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", value)
	}
	if val <= 0 {
		return 0, fmt.Errorf("must be > 0, got %d", val)
	}
	return val, nil
}

func port(value string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", value)
	}
	if val < 1 || val > 65535 {
		return 0, fmt.Errorf("port must be 1-65535, got %d", val)
	}
	return val, nil
}

func parseBool(value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", value)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so only the first call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
