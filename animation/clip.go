// Package animation samples skeletal clips into per-joint matrices
package animation

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/skeleton"
)

var (
	ErrEmptyClip     = eris.New("clip has no frames")
	ErrEmptyTrack    = eris.New("animation channel has no keyframes")
	ErrFrameOrder    = eris.New("frame times must be positive and increasing")
	ErrTrackJoint    = eris.New("clip animates a joint the skeleton lacks")
	ErrTrackOverflow = eris.New("track has more keys than the clip has frames")
)

// JointTracks holds one joint's channels sampled per clip frame
// A nil channel leaves that part of the rest pose untouched
type JointTracks struct {
	Translation []mgl32.Vec3
	Rotation    []mgl32.Quat
	Scale       []mgl32.Vec3
}

// Sample returns the local transform at frame, clamping short channels to their last key
func (jt *JointTracks) Sample(frame int, rest skeleton.TRS) skeleton.TRS {
	out := rest
	if n := len(jt.Translation); n > 0 {
		out.Translation = jt.Translation[min(frame, n-1)]
	}
	if n := len(jt.Rotation); n > 0 {
		out.Rotation = jt.Rotation[min(frame, n-1)]
	}
	if n := len(jt.Scale); n > 0 {
		out.Scale = jt.Scale[min(frame, n-1)]
	}
	return out
}

func (jt *JointTracks) keys() int {
	return max(len(jt.Translation), len(jt.Rotation), len(jt.Scale))
}

// Clip is a looping animation
type Clip struct {
	Name string

	// FrameTimes[i] is the elapsed loop time, in seconds, at which frame i ends
	FrameTimes []float32

	// Joints is indexed by joint; joints past the end use the rest pose
	Joints []JointTracks
}

// FrameCount returns the number of frames in the loop
func (c *Clip) FrameCount() int {
	return len(c.FrameTimes)
}

// Duration returns the loop length in seconds
func (c *Clip) Duration() float32 {
	if len(c.FrameTimes) == 0 {
		return 0
	}
	return c.FrameTimes[len(c.FrameTimes)-1]
}

// Validate checks the clip against a skeleton of jointCount joints
func (c *Clip) Validate(jointCount int) error {
	if len(c.FrameTimes) == 0 {
		return eris.Wrapf(ErrEmptyClip, "clip %q", c.Name)
	}
	prev := float32(0)
	for i, t := range c.FrameTimes {
		if t <= prev {
			return eris.Wrapf(ErrFrameOrder, "clip %q frame %d at %g after %g", c.Name, i, t, prev)
		}
		prev = t
	}
	if len(c.Joints) > jointCount {
		return eris.Wrapf(ErrTrackJoint, "clip %q has %d joint tracks for %d joints", c.Name, len(c.Joints), jointCount)
	}
	for j := range c.Joints {
		if k := c.Joints[j].keys(); k > len(c.FrameTimes) {
			return eris.Wrapf(ErrTrackOverflow, "clip %q joint %d has %d keys for %d frames", c.Name, j, k, len(c.FrameTimes))
		}
	}
	return nil
}
