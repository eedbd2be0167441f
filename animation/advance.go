package animation

import "github.com/lixenwraith/marrow/component"

// Advance moves the cursor forward by dt seconds
// The accumulator holds time since the loop started; each frame boundary it crosses
// advances the frame, and reaching the frame count wraps to frame 0 with the accumulator reset
func Advance(cursor *component.AnimationCursor, frameTimes []float32, dt float32) {
	n := uint32(len(frameTimes))
	if n == 0 {
		return
	}
	if cursor.CurrentFrame >= n {
		cursor.Reset()
	}

	cursor.FrameAccumulator += dt
	for cursor.FrameAccumulator >= frameTimes[cursor.CurrentFrame] {
		cursor.CurrentFrame++
		if cursor.CurrentFrame == n {
			cursor.Reset()
			return
		}
	}
}
