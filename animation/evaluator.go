package animation

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/marrow/skeleton"
)

// Evaluator turns a skeleton and clip frame into joint matrices
// Scratch space is reused between calls; not safe for concurrent use
type Evaluator struct {
	locals []mgl32.Mat4
}

// NewEvaluator creates an evaluator
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate fills out with the joint matrices of sk at frame of clip
// A nil clip evaluates the rest pose; a nil skeleton yields the identity pose
func (ev *Evaluator) Evaluate(sk *skeleton.Skeleton, clip *Clip, frame int, out *Pose) {
	out.SetIdentity()
	if sk == nil {
		return
	}

	n := sk.JointCount()
	if cap(ev.locals) < n {
		ev.locals = make([]mgl32.Mat4, n)
	}
	locals := ev.locals[:n]

	for j := 0; j < n; j++ {
		trs := sk.Rest[j]
		if clip != nil && j < len(clip.Joints) {
			trs = clip.Joints[j].Sample(frame, trs)
		}
		locals[j] = trs.Matrix()
	}

	for j := 0; j < n; j++ {
		global := mgl32.Ident4()
		for _, a := range sk.Chains[j] {
			global = global.Mul4(locals[a])
		}
		out[j] = global.Mul4(sk.InverseBind[j])
	}
}
