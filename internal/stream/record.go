package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/relabs-tech/mocap_streamer/internal/calibration"
	"github.com/relabs-tech/mocap_streamer/internal/skeleton"
)

// Record is one joint of one outgoing frame. Rotation is x, y, z, w.
type Record struct {
	Time     string     `json:"time"`
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	Acc      [3]float64 `json:"acc"`
}

// FrameTime formats the playback timestamp of frame index in seconds.
func FrameTime(index int, interval time.Duration) string {
	return fmt.Sprintf("%.3f", (time.Duration(index) * interval).Seconds())
}

// BuildRecords lists the records of one calibrated frame in joints order.
// Joints missing from the pose produce no record.
func BuildRecords(index int, pose calibration.Pose, joints []skeleton.Joint, interval time.Duration) []Record {
	ts := FrameTime(index, interval)
	records := make([]Record, 0, len(joints))
	for _, j := range joints {
		s, ok := pose[j]
		if !ok {
			continue
		}
		records = append(records, Record{
			Time:     ts,
			Name:     j.String(),
			Position: s.Position.Array(),
			Rotation: s.Rotation.XYZW(),
			Acc:      s.Acceleration.Array(),
		})
	}
	return records
}

// EncodeFrame serialises one frame's records as a single JSON message.
func EncodeFrame(records []Record) ([]byte, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("json marshal frame: %w", err)
	}
	return payload, nil
}

// DecodeFrame parses a message produced by EncodeFrame.
func DecodeFrame(payload []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("json unmarshal frame: %w", err)
	}
	return records, nil
}
