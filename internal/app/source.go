package app

import (
	"fmt"
	"log"

	"github.com/relabs-tech/mocap_streamer/internal/config"
	"github.com/relabs-tech/mocap_streamer/internal/imu"
	"github.com/relabs-tech/mocap_streamer/internal/motion"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

// LoadFrames reads the frame sequence selected by SOURCE_KIND.
func LoadFrames(cfg *config.Config) ([]motion.Frame, error) {
	if err := cfg.ValidateSource(); err != nil {
		return nil, err
	}

	var (
		frames []motion.Frame
		err    error
	)
	switch cfg.SourceKind {
	case config.SourcePose:
		frames, err = motion.LoadPoseFiles(cfg.PosePositionFile, cfg.PoseOrientationFile)
	case config.SourceSensors:
		frames, err = imu.LoadSensorLog(cfg.SensorLogFile)
	case config.SourceCSV:
		frames, err = motion.LoadCSV(cfg.CSVFile)
	case config.SourceMock:
		frames = motion.MockFrames(cfg.MockFrames, skeleton.All)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s source: %w", cfg.SourceKind, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("load %s source: %w", cfg.SourceKind, motion.ErrEmptyResult)
	}

	log.Printf("source: loaded %d frames (%s, %d joints in first frame)",
		len(frames), cfg.SourceKind, len(frames[0]))
	return frames, nil
}
