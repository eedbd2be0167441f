package skeleton

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/parameter"
)

// TRS is a decomposed local transform
type TRS struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTRS returns the transform with no translation, no rotation and unit scale
func IdentityTRS() TRS {
	return TRS{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes T*R*S
func (t TRS) Matrix() mgl32.Mat4 {
	tm := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rm := t.Rotation.Normalize().Mat4()
	sm := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return tm.Mul4(rm).Mul4(sm)
}

// Skeleton is a resolved hierarchy plus per-joint bind data
type Skeleton struct {
	*Hierarchy

	// InverseBind maps model space into each joint's bind space
	InverseBind []mgl32.Mat4

	// Rest is each joint's local transform used when an animation has no channel for it
	Rest []TRS

	Names []string
}

// New validates bind data against h. Nil inverseBind or rest default to identity
func New(h *Hierarchy, inverseBind []mgl32.Mat4, rest []TRS) (*Skeleton, error) {
	if h == nil || len(h.Joints) == 0 {
		return nil, ErrNoJoints
	}
	n := len(h.Joints)
	if n > parameter.MaxJoints {
		return nil, eris.Wrapf(ErrTooManyJoints, "%d joints, limit %d", n, parameter.MaxJoints)
	}

	if inverseBind == nil {
		inverseBind = make([]mgl32.Mat4, n)
		for i := range inverseBind {
			inverseBind[i] = mgl32.Ident4()
		}
	} else if len(inverseBind) != n {
		return nil, eris.Wrapf(ErrBindCountMismatch, "%d matrices for %d joints", len(inverseBind), n)
	}

	if rest == nil {
		rest = make([]TRS, n)
		for i := range rest {
			rest[i] = IdentityTRS()
		}
	} else if len(rest) != n {
		return nil, eris.Errorf("rest pose has %d entries for %d joints", len(rest), n)
	}

	return &Skeleton{
		Hierarchy:   h,
		InverseBind: inverseBind,
		Rest:        rest,
		Names:       make([]string, n),
	}, nil
}

// Name returns the joint name, or its index when unnamed
func (s *Skeleton) Name(j int) string {
	if j >= 0 && j < len(s.Names) && s.Names[j] != "" {
		return s.Names[j]
	}
	return "joint" + strconv.Itoa(j)
}
