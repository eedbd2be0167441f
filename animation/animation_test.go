package animation

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/marrow/component"
	"github.com/lixenwraith/marrow/engine"
	"github.com/lixenwraith/marrow/parameter"
	"github.com/lixenwraith/marrow/skeleton"
	"github.com/lixenwraith/marrow/status"
)

func TestAdvanceWrapsAcrossTicks(t *testing.T) {
	times := []float32{0.1, 0.2, 0.3}
	var c component.AnimationCursor

	for i := 0; i < 7; i++ {
		Advance(&c, times, 0.05)
	}

	assert.Equal(t, uint32(0), c.CurrentFrame)
	assert.Less(t, c.FrameAccumulator, float32(0.1))
}

func TestAdvanceSingleLargeStep(t *testing.T) {
	times := []float32{0.1, 0.2, 0.3}
	var c component.AnimationCursor

	Advance(&c, times, 0.35)
	assert.Equal(t, uint32(0), c.CurrentFrame)
	assert.Equal(t, float32(0), c.FrameAccumulator)
}

func TestAdvanceStepsThroughFrames(t *testing.T) {
	times := []float32{0.1, 0.2, 0.3}
	var c component.AnimationCursor

	Advance(&c, times, 0.05)
	assert.Equal(t, uint32(0), c.CurrentFrame)
	Advance(&c, times, 0.1)
	assert.Equal(t, uint32(1), c.CurrentFrame)
	Advance(&c, times, 0.1)
	assert.Equal(t, uint32(2), c.CurrentFrame)

	// Empty table leaves the cursor alone
	Advance(&c, nil, 1)
	assert.Equal(t, uint32(2), c.CurrentFrame)

	// A cursor past the end of a shorter clip restarts
	Advance(&c, []float32{1}, 0.5)
	assert.Equal(t, uint32(0), c.CurrentFrame)
	assert.InDelta(t, 0.5, c.FrameAccumulator, 1e-6)
}

func TestIdentityPose(t *testing.T) {
	p := IdentityPose()
	require.Len(t, *p, parameter.MaxJoints)
	for i := range p {
		assert.True(t, p[i].ApproxEqual(mgl32.Ident4()), "slot %d", i)
	}

	// Returned poses are independent copies
	p[0] = mgl32.Translate3D(1, 0, 0)
	assert.True(t, IdentityPose()[0].ApproxEqual(mgl32.Ident4()))

	var out Pose
	NewEvaluator().Evaluate(nil, nil, 0, &out)
	assert.Equal(t, *IdentityPose(), out)
}

// chain builds a straight joint chain 0 -> 1 -> ... -> n-1
func chain(t *testing.T, n int) *skeleton.Skeleton {
	t.Helper()
	children := make([][]int, n)
	joints := make([]int, n)
	for i := range children {
		joints[i] = i
		if i+1 < n {
			children[i] = []int{i + 1}
		}
	}
	h, err := skeleton.Resolve(children, joints)
	require.NoError(t, err)
	sk, err := skeleton.New(h, nil, nil)
	require.NoError(t, err)
	return sk
}

func TestEvaluateComposesChain(t *testing.T) {
	sk := chain(t, 3)
	for j := range sk.Rest {
		sk.Rest[j].Translation = mgl32.Vec3{0, 1, 0}
	}

	var out Pose
	ev := NewEvaluator()
	ev.Evaluate(sk, nil, 0, &out)

	origin := mgl32.Vec4{0, 0, 0, 1}
	assert.True(t, out[0].Mul4x1(origin).Vec3().ApproxEqual(mgl32.Vec3{0, 1, 0}))
	assert.True(t, out[1].Mul4x1(origin).Vec3().ApproxEqual(mgl32.Vec3{0, 2, 0}))
	assert.True(t, out[2].Mul4x1(origin).Vec3().ApproxEqual(mgl32.Vec3{0, 3, 0}))
	assert.True(t, out[3].ApproxEqual(mgl32.Ident4()), "padding stays identity")
}

func TestEvaluateParentRotationCarriesChild(t *testing.T) {
	sk := chain(t, 2)
	sk.Rest[1].Translation = mgl32.Vec3{1, 0, 0}

	clip := &Clip{
		FrameTimes: []float32{0.5, 1},
		Joints: []JointTracks{
			{Rotation: []mgl32.Quat{
				mgl32.QuatIdent(),
				mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}),
			}},
		},
	}
	require.NoError(t, clip.Validate(sk.JointCount()))

	var out Pose
	ev := NewEvaluator()

	ev.Evaluate(sk, clip, 0, &out)
	p := out[1].Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5), "frame 0 got %v", p)

	ev.Evaluate(sk, clip, 1, &out)
	p = out[1].Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5), "frame 1 got %v", p)

	// Frames beyond a track clamp to its last key
	ev.Evaluate(sk, clip, 7, &out)
	p = out[1].Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, p.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5), "clamped got %v", p)
}

func TestEvaluateAppliesInverseBind(t *testing.T) {
	sk := chain(t, 1)
	sk.Rest[0].Translation = mgl32.Vec3{0, 2, 0}
	sk.InverseBind[0] = mgl32.Translate3D(0, -2, 0)

	var out Pose
	NewEvaluator().Evaluate(sk, nil, 0, &out)
	assert.True(t, out[0].ApproxEqual(mgl32.Ident4()), "bind pose skins to identity, got %v", out[0])
}

func TestClipValidate(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
		want error
	}{
		{"no frames", Clip{}, ErrEmptyClip},
		{"zero time", Clip{FrameTimes: []float32{0, 1}}, ErrFrameOrder},
		{"unordered", Clip{FrameTimes: []float32{0.2, 0.1}}, ErrFrameOrder},
		{"extra joint", Clip{FrameTimes: []float32{1}, Joints: make([]JointTracks, 3)}, ErrTrackJoint},
		{"long track", Clip{
			FrameTimes: []float32{1},
			Joints:     []JointTracks{{Scale: make([]mgl32.Vec3, 2)}},
		}, ErrTrackOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.clip.Validate(2)
			assert.True(t, eris.Is(err, tt.want), "got %v", err)
		})
	}

	ok := Clip{FrameTimes: []float32{0.1, 0.2}, Joints: make([]JointTracks, 2)}
	assert.NoError(t, ok.Validate(2))
	assert.Equal(t, 2, ok.FrameCount())
	assert.Equal(t, float32(0.2), ok.Duration())
}

func TestSkinPositionBlends(t *testing.T) {
	pose := IdentityPose()
	pose[1] = mgl32.Translate3D(2, 0, 0)

	p := SkinPosition(pose, mgl32.Vec3{1, 1, 1}, [4]float32{0, 1}, [4]float32{0.5, 0.5})
	assert.True(t, p.ApproxEqual(mgl32.Vec3{2, 1, 1}), "got %v", p)

	// Unweighted vertices are rigid
	p = SkinPosition(pose, mgl32.Vec3{1, 1, 1}, [4]float32{1}, [4]float32{})
	assert.True(t, p.ApproxEqual(mgl32.Vec3{1, 1, 1}))
}

type fakeLibrary map[uint32][]*Clip

func (l fakeLibrary) Clip(mesh uint32, index int) *Clip {
	clips := l[mesh]
	if index < 0 || index >= len(clips) {
		return nil
	}
	return clips[index]
}

func TestSystemAdvancesSkinnedEntities(t *testing.T) {
	w := engine.NewWorld()
	lib := fakeLibrary{7: {{FrameTimes: []float32{0.1, 0.2, 0.3}}}}
	metrics := status.NewRegistry()
	w.AddSystem(NewSystem(lib, 10, metrics))

	eb := w.NewEntity()
	engine.With(eb, component.NewTransform(mgl32.Vec3{}))
	engine.With(eb, component.Mesh{ID: 7})
	eb.WithDefault(engine.TypeOf[component.Skin]())
	walker := eb.Build()

	eb = w.NewEntity()
	engine.With(eb, component.NewTransform(mgl32.Vec3{}))
	engine.With(eb, component.Mesh{ID: 7})
	engine.With(eb, component.Skin{Speed: 1, Paused: true})
	frozen := eb.Build()

	eb = w.NewEntity()
	engine.With(eb, component.NewTransform(mgl32.Vec3{}))
	engine.With(eb, component.Mesh{ID: 7})
	rigid := eb.Build()

	eb = w.NewEntity()
	engine.With(eb, component.NewTransform(mgl32.Vec3{}))
	engine.With(eb, component.Mesh{ID: 8})
	eb.WithDefault(engine.TypeOf[component.Skin]())
	eb.Build()

	w.Update(150 * time.Millisecond)

	cm := w.Components
	assert.Equal(t, uint32(1), engine.GetComponent[component.Transform](cm, walker).Cursor.CurrentFrame)
	assert.Equal(t, uint32(0), engine.GetComponent[component.Transform](cm, frozen).Cursor.CurrentFrame)
	assert.Equal(t, uint32(0), engine.GetComponent[component.Transform](cm, rigid).Cursor.CurrentFrame)

	// Double speed covers the rest of the loop
	engine.GetComponent[component.Skin](cm, walker).Speed = 2
	w.Update(100 * time.Millisecond)
	assert.Equal(t, uint32(0), engine.GetComponent[component.Transform](cm, walker).Cursor.CurrentFrame)

	assert.Equal(t, int64(2), metrics.Counter("animation.advanced").Load())
	assert.Equal(t, int64(2), metrics.Counter("animation.missing_clip").Load())
}
