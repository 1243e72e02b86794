package app

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/relabs-tech/mocap_streamer/internal/imu"
	"github.com/relabs-tech/mocap_streamer/internal/motion"
)

// RunConvert parses a raw sensor log and writes it as the intermediate CSV.
func RunConvert(logPath, csvPath string) error {
	frames, err := imu.LoadSensorLog(logPath)
	if err != nil {
		return err
	}
	if err := motion.SaveCSV(csvPath, frames); err != nil {
		return err
	}
	log.Printf("convert: wrote %d frames from %s to %s", len(frames), logPath, csvPath)
	return nil
}

// RunInspect loads an intermediate CSV and prints, per frame, the joints it
// carries and which of them have acceleration.
func RunInspect(csvPath string, w io.Writer) error {
	frames, err := motion.LoadCSV(csvPath)
	if err != nil {
		return err
	}
	return describeFrames(frames, w)
}

func describeFrames(frames []motion.Frame, w io.Writer) error {
	for i, f := range frames {
		var names []string
		accel := 0
		for _, j := range f.Joints() {
			names = append(names, j.String())
			if f[j].Acceleration != nil {
				accel++
			}
		}
		if _, err := fmt.Fprintf(w, "frame %d: %d joints (%d with accel): %s\n",
			i, len(names), accel, strings.Join(names, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d frames\n", len(frames))
	return err
}
