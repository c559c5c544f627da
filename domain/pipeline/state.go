package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/facebox-go/domain/capture"
	"github.com/soocke/facebox-go/geometry"
)

// FrameState is the lifecycle position of one frame inside the controller.
type FrameState int

const (
	Received FrameState = iota
	RotationNormalized
	DetectionSubmitted
	DetectionSucceeded
	DetectionFailed
	FrameReleased
)

func (s FrameState) String() string {
	switch s {
	case Received:
		return "received"
	case RotationNormalized:
		return "rotation_normalized"
	case DetectionSubmitted:
		return "detection_submitted"
	case DetectionSucceeded:
		return "detection_succeeded"
	case DetectionFailed:
		return "detection_failed"
	case FrameReleased:
		return "frame_released"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// allowed lists the legal successors of each state. A normalized frame may
// be released without submission when no detector is available, and a
// submitted one when its completion arrives after teardown.
var allowed = map[FrameState][]FrameState{
	Received:           {RotationNormalized},
	RotationNormalized: {DetectionSubmitted, FrameReleased},
	DetectionSubmitted: {DetectionSucceeded, DetectionFailed, FrameReleased},
	DetectionSucceeded: {FrameReleased},
	DetectionFailed:    {FrameReleased},
}

// cycle is the per-frame record owned by the main context.
type cycle struct {
	frame     *capture.Frame
	seq       uint64
	state     FrameState
	source    geometry.Extent // upright extent the regions are reported in
	submitted time.Time
}

// advance moves the cycle to next. Illegal transitions are logged and
// ignored.
func (c *cycle) advance(next FrameState, logger *slog.Logger) bool {
	for _, s := range allowed[c.state] {
		if s == next {
			logger.Debug("pipeline.transition", "seq", c.seq, "from", c.state.String(), "to", next.String())
			c.state = next
			return true
		}
	}
	logger.Error("pipeline.bad_transition", "seq", c.seq, "from", c.state.String(), "to", next.String())
	return false
}
