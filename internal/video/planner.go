package video

import (
	"math"

	"github.com/loopforge/api/internal/model"
)

// SegmentDirection is the playback direction of one planned segment.
type SegmentDirection string

const (
	SegmentForward SegmentDirection = "forward"
	SegmentReverse SegmentDirection = "reverse"
)

// LoopPlan describes how a source clip is tiled to cover a target duration.
// The planned total always meets or exceeds the target, so the merge stage
// only ever truncates, never pads.
type LoopPlan struct {
	SourceDuration float64
	TargetDuration float64
	LoopType       model.LoopType
	LoopCount      int
	Segments       []SegmentDirection
}

// PlannedDuration is the total length of all planned segments.
func (p *LoopPlan) PlannedDuration() float64 {
	return float64(len(p.Segments)) * p.SourceDuration
}

// NeedsReverse reports whether the plan references a reversed clip.
func (p *LoopPlan) NeedsReverse() bool {
	for _, s := range p.Segments {
		if s == SegmentReverse {
			return true
		}
	}
	return false
}

// PlanLoops computes the segment sequence covering targetDuration from a
// clip of sourceDuration seconds.
//
// Ping-pong plans repeat a strictly alternating [forward, reverse] pair; the
// reversed clip is materialized once per assembly and reused across every
// repetition. Standard plans repeat the forward clip only.
func PlanLoops(sourceDuration, targetDuration float64, loopType model.LoopType) (*LoopPlan, error) {
	if sourceDuration <= 0 {
		return nil, model.NewInvalidArgumentError("source duration must be positive, got %g", sourceDuration)
	}
	if targetDuration <= 0 {
		return nil, model.NewInvalidArgumentError("target duration must be positive, got %g", targetDuration)
	}

	plan := &LoopPlan{
		SourceDuration: sourceDuration,
		TargetDuration: targetDuration,
		LoopType:       loopType,
	}

	switch loopType {
	case model.LoopTypePingPong:
		unit := sourceDuration * 2
		plan.LoopCount = int(math.Ceil(targetDuration / unit))
		plan.Segments = make([]SegmentDirection, 0, plan.LoopCount*2)
		for i := 0; i < plan.LoopCount; i++ {
			plan.Segments = append(plan.Segments, SegmentForward, SegmentReverse)
		}
	case model.LoopTypeStandard:
		plan.LoopCount = int(math.Ceil(targetDuration / sourceDuration))
		plan.Segments = make([]SegmentDirection, 0, plan.LoopCount)
		for i := 0; i < plan.LoopCount; i++ {
			plan.Segments = append(plan.Segments, SegmentForward)
		}
	default:
		return nil, model.NewInvalidArgumentError("unknown loop type %q", loopType)
	}

	return plan, nil
}
