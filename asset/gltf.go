package asset

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/lixenwraith/marrow/animation"
	"github.com/lixenwraith/marrow/parameter"
	"github.com/lixenwraith/marrow/skeleton"
)

var (
	ErrGLTFVersion  = eris.New("unsupported glTF version")
	ErrGLTFFeature  = eris.New("unsupported glTF feature")
	ErrGLTFAccessor = eris.New("invalid glTF accessor")
	ErrGLTFBuffer   = eris.New("invalid glTF buffer")
	ErrGLB          = eris.New("invalid GLB container")
)

const (
	glbMagic     = 0x46546C67 // "glTF"
	glbChunkJSON = 0x4E4F534A
	glbChunkBIN  = 0x004E4942
	glbHeader    = 12

	// keyEpsilon merges keyframe times closer than this, seconds
	keyEpsilon = 1e-6
)

type gltfDecoder struct {
	doc     gltfDocument
	baseDir string
	glbBin  []byte
	buffers [][]byte
}

// LoadGLTF reads a .gltf or .glb file; external buffers resolve against its directory
func LoadGLTF(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	m, err := DecodeGLTF(data, filepath.Dir(path))
	if err != nil {
		return nil, eris.Wrapf(err, "load %s", path)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// DecodeGLTF parses glTF JSON or a GLB container into a model
// Only the first primitive of the first mesh and the first skin are read
func DecodeGLTF(data []byte, baseDir string) (*Model, error) {
	d := &gltfDecoder{baseDir: baseDir}

	doc := data
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic {
		var err error
		if doc, d.glbBin, err = splitGLB(data); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(doc, &d.doc); err != nil {
		return nil, eris.Wrap(err, "decode glTF json")
	}
	if !strings.HasPrefix(d.doc.Asset.Version, "2.") {
		return nil, eris.Wrapf(ErrGLTFVersion, "version %q", d.doc.Asset.Version)
	}
	if len(d.doc.ExtensionsRequired) > 0 {
		return nil, eris.Wrapf(ErrGLTFFeature, "required extensions %v", d.doc.ExtensionsRequired)
	}
	if err := d.loadBuffers(); err != nil {
		return nil, err
	}

	mesh, name, err := d.mesh()
	if err != nil {
		return nil, err
	}
	model := &Model{Name: name, Mesh: mesh}

	if len(d.doc.Skins) > 0 {
		if model.Skeleton, err = d.skeleton(0); err != nil {
			return nil, err
		}
		if model.Clips, err = d.clips(model.Skeleton); err != nil {
			return nil, err
		}
	}

	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func splitGLB(data []byte) (doc, bin []byte, err error) {
	if len(data) < glbHeader {
		return nil, nil, eris.Wrap(ErrGLB, "short header")
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != 2 {
		return nil, nil, eris.Wrapf(ErrGLB, "container version %d", v)
	}
	total := int(binary.LittleEndian.Uint32(data[8:]))
	if total > len(data) {
		return nil, nil, eris.Wrapf(ErrGLB, "declares %d bytes, have %d", total, len(data))
	}

	for off := glbHeader; off+8 <= total; {
		length := int(binary.LittleEndian.Uint32(data[off:]))
		kind := binary.LittleEndian.Uint32(data[off+4:])
		off += 8
		if off+length > total {
			return nil, nil, eris.Wrapf(ErrGLB, "chunk at %d overruns container", off-8)
		}
		chunk := data[off : off+length]
		switch {
		case kind == glbChunkJSON && doc == nil:
			doc = chunk
		case kind == glbChunkBIN && bin == nil:
			bin = chunk
		}
		off += length
	}
	if doc == nil {
		return nil, nil, eris.Wrap(ErrGLB, "missing JSON chunk")
	}
	return doc, bin, nil
}

func (d *gltfDecoder) loadBuffers() error {
	d.buffers = make([][]byte, len(d.doc.Buffers))
	for i, b := range d.doc.Buffers {
		var data []byte
		var err error

		switch {
		case b.URI == "":
			if d.glbBin == nil {
				return eris.Wrapf(ErrGLTFBuffer, "buffer %d has no uri", i)
			}
			data = d.glbBin
		case strings.HasPrefix(b.URI, "data:"):
			comma := strings.IndexByte(b.URI, ',')
			if comma < 0 || !strings.HasSuffix(b.URI[:comma], ";base64") {
				return eris.Wrapf(ErrGLTFBuffer, "buffer %d data uri is not base64", i)
			}
			if data, err = base64.StdEncoding.DecodeString(b.URI[comma+1:]); err != nil {
				return eris.Wrapf(err, "buffer %d", i)
			}
		default:
			path, err := url.PathUnescape(b.URI)
			if err != nil {
				return eris.Wrapf(err, "buffer %d uri", i)
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(d.baseDir, path)
			}
			if data, err = os.ReadFile(path); err != nil {
				return eris.Wrapf(err, "buffer %d", i)
			}
		}

		if len(data) < b.ByteLength {
			return eris.Wrapf(ErrGLTFBuffer, "buffer %d has %d bytes, declares %d", i, len(data), b.ByteLength)
		}
		d.buffers[i] = data[:b.ByteLength]
	}
	return nil
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfByte, gltfUnsignedByte:
		return 1
	case gltfShort, gltfUnsignedShort:
		return 2
	case gltfUnsignedInt, gltfFloat:
		return 4
	}
	return 0
}

// view bounds-checks accessor i and returns its bytes, stride and width
func (d *gltfDecoder) view(i int) (acc *gltfAccessor, data []byte, stride, width int, err error) {
	if i < 0 || i >= len(d.doc.Accessors) {
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFAccessor, "accessor %d of %d", i, len(d.doc.Accessors))
	}
	acc = &d.doc.Accessors[i]
	width = gltfTypeWidth[acc.Type]
	size := componentSize(acc.ComponentType)
	switch {
	case width == 0 || size == 0:
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFAccessor, "accessor %d type %s/%d", i, acc.Type, acc.ComponentType)
	case acc.Sparse != nil:
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFFeature, "accessor %d is sparse", i)
	case strings.HasPrefix(acc.Type, "MAT") && size != 4:
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFFeature, "accessor %d packs a matrix below 32 bits", i)
	case acc.Count < 0:
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFAccessor, "accessor %d count %d", i, acc.Count)
	}
	if acc.BufferView == nil || acc.Count == 0 {
		return acc, nil, 0, width, nil
	}

	bvIdx := *acc.BufferView
	if bvIdx < 0 || bvIdx >= len(d.doc.BufferViews) {
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFAccessor, "accessor %d view %d", i, bvIdx)
	}
	bv := d.doc.BufferViews[bvIdx]
	if bv.Buffer < 0 || bv.Buffer >= len(d.buffers) {
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFBuffer, "view %d buffer %d", bvIdx, bv.Buffer)
	}
	buf := d.buffers[bv.Buffer]
	if bv.ByteOffset < 0 || bv.ByteOffset+bv.ByteLength > len(buf) {
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFBuffer, "view %d overruns buffer %d", bvIdx, bv.Buffer)
	}
	viewBytes := buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]

	elem := width * size
	stride = bv.ByteStride
	if stride == 0 {
		stride = elem
	}
	need := acc.ByteOffset + (acc.Count-1)*stride + elem
	if acc.ByteOffset < 0 || stride < elem || need > len(viewBytes) {
		return nil, nil, 0, 0, eris.Wrapf(ErrGLTFAccessor, "accessor %d needs %d bytes of view %d (%d)", i, need, bvIdx, len(viewBytes))
	}
	return acc, viewBytes[acc.ByteOffset:], stride, width, nil
}

// floats decodes accessor i into float32 components, returning the element width
func (d *gltfDecoder) floats(i int) ([]float32, int, error) {
	acc, data, stride, width, err := d.view(i)
	if err != nil {
		return nil, 0, err
	}
	out := make([]float32, acc.Count*width)
	if data == nil {
		return out, width, nil
	}
	size := componentSize(acc.ComponentType)
	for e := 0; e < acc.Count; e++ {
		for c := 0; c < width; c++ {
			out[e*width+c] = readComponent(data[e*stride+c*size:], acc.ComponentType, acc.Normalized)
		}
	}
	return out, width, nil
}

// uints decodes a scalar integer accessor
func (d *gltfDecoder) uints(i int) ([]uint32, error) {
	acc, data, stride, width, err := d.view(i)
	if err != nil {
		return nil, err
	}
	if width != 1 {
		return nil, eris.Wrapf(ErrGLTFAccessor, "accessor %d is %s, want SCALAR", i, acc.Type)
	}
	out := make([]uint32, acc.Count)
	if data == nil {
		return out, nil
	}
	for e := range out {
		b := data[e*stride:]
		switch acc.ComponentType {
		case gltfUnsignedByte:
			out[e] = uint32(b[0])
		case gltfUnsignedShort:
			out[e] = uint32(binary.LittleEndian.Uint16(b))
		case gltfUnsignedInt:
			out[e] = binary.LittleEndian.Uint32(b)
		default:
			return nil, eris.Wrapf(ErrGLTFAccessor, "accessor %d component type %d is not unsigned", i, acc.ComponentType)
		}
	}
	return out, nil
}

func readComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case gltfFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfUnsignedByte:
		if normalized {
			return float32(b[0]) / 255
		}
		return float32(b[0])
	case gltfByte:
		if normalized {
			return max(float32(int8(b[0]))/127, -1)
		}
		return float32(int8(b[0]))
	case gltfUnsignedShort:
		v := binary.LittleEndian.Uint16(b)
		if normalized {
			return float32(v) / 65535
		}
		return float32(v)
	case gltfShort:
		v := int16(binary.LittleEndian.Uint16(b))
		if normalized {
			return max(float32(v)/32767, -1)
		}
		return float32(v)
	case gltfUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

func (d *gltfDecoder) mesh() (*Mesh, string, error) {
	if len(d.doc.Meshes) == 0 || len(d.doc.Meshes[0].Primitives) == 0 {
		return nil, "", eris.Wrap(ErrEmptyMesh, "glTF has no mesh primitives")
	}
	gm := d.doc.Meshes[0]
	prim := gm.Primitives[0]
	if prim.Mode != nil && *prim.Mode != gltfModeTriangles {
		return nil, "", eris.Wrapf(ErrGLTFFeature, "primitive mode %d", *prim.Mode)
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, "", eris.Wrap(ErrGLTFAccessor, "primitive has no POSITION")
	}
	positions, w, err := d.floats(posIdx)
	if err != nil {
		return nil, "", err
	}
	if w != 3 {
		return nil, "", eris.Wrapf(ErrGLTFAccessor, "POSITION width %d", w)
	}
	n := len(positions) / 3
	mesh := &Mesh{Vertices: make([]float32, n*parameter.VertexStride)}

	put := func(attr string, offset, width int) (bool, error) {
		idx, ok := prim.Attributes[attr]
		if !ok {
			return false, nil
		}
		vals, w, err := d.floats(idx)
		if err != nil {
			return false, eris.Wrap(err, attr)
		}
		if w < width || len(vals)/w != n {
			return false, eris.Wrapf(ErrGLTFAccessor, "%s has %d x %d for %d vertices", attr, len(vals)/max(w, 1), w, n)
		}
		for v := 0; v < n; v++ {
			dst := mesh.Vertices[v*parameter.VertexStride+offset:]
			copy(dst[:width], vals[v*w:v*w+width])
		}
		return true, nil
	}

	if _, err := put("POSITION", parameter.VertexPosition, 3); err != nil {
		return nil, "", err
	}
	hasNormals, err := put("NORMAL", parameter.VertexNormal, 3)
	if err != nil {
		return nil, "", err
	}
	if _, err := put("TEXCOORD_0", parameter.VertexUV, 2); err != nil {
		return nil, "", err
	}
	if _, err := put("JOINTS_0", parameter.VertexJoints, parameter.JointInfluences); err != nil {
		return nil, "", err
	}
	if _, err := put("WEIGHTS_0", parameter.VertexWeights, parameter.JointInfluences); err != nil {
		return nil, "", err
	}

	if prim.Indices != nil {
		if mesh.Indices, err = d.uints(*prim.Indices); err != nil {
			return nil, "", eris.Wrap(err, "indices")
		}
	} else {
		mesh.Indices = make([]uint32, n)
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}

	if !hasNormals {
		mesh.ComputeNormals()
	}
	return mesh, gm.Name, nil
}

func (d *gltfDecoder) skeleton(skinIdx int) (*skeleton.Skeleton, error) {
	skin := d.doc.Skins[skinIdx]

	children := make([][]int, len(d.doc.Nodes))
	for i := range d.doc.Nodes {
		children[i] = d.doc.Nodes[i].Children
	}
	h, err := skeleton.Resolve(children, skin.Joints)
	if err != nil {
		return nil, eris.Wrapf(err, "skin %d", skinIdx)
	}

	var ibm []mgl32.Mat4
	if skin.InverseBindMatrices != nil {
		vals, w, err := d.floats(*skin.InverseBindMatrices)
		if err != nil {
			return nil, eris.Wrap(err, "inverse bind matrices")
		}
		if w != 16 {
			return nil, eris.Wrapf(ErrGLTFAccessor, "inverse bind width %d", w)
		}
		ibm = make([]mgl32.Mat4, len(vals)/16)
		for i := range ibm {
			copy(ibm[i][:], vals[i*16:(i+1)*16])
		}
	}

	rest := make([]skeleton.TRS, len(skin.Joints))
	for j, node := range skin.Joints {
		rest[j] = nodeTRS(&d.doc.Nodes[node])
	}

	sk, err := skeleton.New(h, ibm, rest)
	if err != nil {
		return nil, eris.Wrapf(err, "skin %d", skinIdx)
	}
	for j, node := range skin.Joints {
		sk.Names[j] = d.doc.Nodes[node].Name
	}
	return sk, nil
}

func nodeTRS(n *gltfNode) skeleton.TRS {
	if n.Matrix != nil {
		return decompose(mgl32.Mat4(*n.Matrix))
	}
	trs := skeleton.IdentityTRS()
	if n.Translation != nil {
		trs.Translation = mgl32.Vec3(*n.Translation)
	}
	if n.Rotation != nil {
		trs.Rotation = gltfQuat(n.Rotation[:])
	}
	if n.Scale != nil {
		trs.Scale = mgl32.Vec3(*n.Scale)
	}
	return trs
}

func gltfQuat(xyzw []float32) mgl32.Quat {
	return mgl32.Quat{W: xyzw[3], V: mgl32.Vec3{xyzw[0], xyzw[1], xyzw[2]}}.Normalize()
}

// decompose splits an affine matrix without shear into TRS
func decompose(m mgl32.Mat4) skeleton.TRS {
	trs := skeleton.TRS{Translation: m.Col(3).Vec3()}
	rot := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		col := m.Col(c)
		s := col.Vec3().Len()
		trs.Scale[c] = s
		if s > 0 {
			col = col.Mul(1 / s)
		}
		rot.SetCol(c, col)
	}
	trs.Rotation = mgl32.Mat4ToQuat(rot).Normalize()
	return trs
}

type gltfChannel struct {
	joint  int
	path   string
	times  []float32
	values []float32
	width  int

	// cubic splines store in-tangent, value, out-tangent per key
	cubic bool
	step  bool
}

func (c *gltfChannel) value(k int) []float32 {
	if c.cubic {
		k = 3*k + 1
	}
	return c.values[k*c.width : (k+1)*c.width]
}

func (d *gltfDecoder) clips(sk *skeleton.Skeleton) ([]*animation.Clip, error) {
	nodeToJoint := make(map[int]int, sk.JointCount())
	for j, node := range sk.Joints {
		nodeToJoint[node] = j
	}

	var clips []*animation.Clip
	for ai, ga := range d.doc.Animations {
		var channels []gltfChannel
		for ci, gc := range ga.Channels {
			width := 0
			switch gc.Target.Path {
			case "translation", "scale":
				width = 3
			case "rotation":
				width = 4
			default:
				continue
			}
			if gc.Target.Node == nil {
				continue
			}
			joint, ok := nodeToJoint[*gc.Target.Node]
			if !ok {
				continue
			}
			ch, err := d.channel(ga, gc.Sampler, width)
			if err != nil {
				return nil, eris.Wrapf(err, "animation %d channel %d", ai, ci)
			}
			ch.joint, ch.path = joint, gc.Target.Path
			channels = append(channels, ch)
		}
		if len(channels) == 0 {
			continue
		}

		name := ga.Name
		if name == "" {
			name = "clip" + strconv.Itoa(ai)
		}
		keys := unionKeys(channels)
		clip := &animation.Clip{
			Name:       name,
			FrameTimes: frameTimes(keys),
			Joints:     make([]animation.JointTracks, sk.JointCount()),
		}
		for i := range channels {
			resample(&clip.Joints[channels[i].joint], &channels[i], keys)
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

func (d *gltfDecoder) channel(ga gltfAnimation, samplerIdx, width int) (gltfChannel, error) {
	if samplerIdx < 0 || samplerIdx >= len(ga.Samplers) {
		return gltfChannel{}, eris.Wrapf(ErrGLTFAccessor, "sampler %d of %d", samplerIdx, len(ga.Samplers))
	}
	s := ga.Samplers[samplerIdx]
	ch := gltfChannel{width: width}
	switch s.Interpolation {
	case "", "LINEAR":
	case "STEP":
		ch.step = true
	case "CUBICSPLINE":
		ch.cubic = true
	default:
		return gltfChannel{}, eris.Wrapf(ErrGLTFFeature, "interpolation %q", s.Interpolation)
	}

	times, w, err := d.floats(s.Input)
	if err != nil {
		return gltfChannel{}, err
	}
	if w != 1 {
		return gltfChannel{}, eris.Wrapf(ErrGLTFAccessor, "key times width %d", w)
	}
	if len(times) == 0 {
		return gltfChannel{}, animation.ErrEmptyTrack
	}
	for k := 1; k < len(times); k++ {
		if times[k] < times[k-1] {
			return gltfChannel{}, eris.Wrapf(animation.ErrFrameOrder, "key %d at %g after %g", k, times[k], times[k-1])
		}
	}

	values, w, err := d.floats(s.Output)
	if err != nil {
		return gltfChannel{}, err
	}
	want := len(times)
	if ch.cubic {
		want *= 3
	}
	if w != width || len(values)/w != want {
		return gltfChannel{}, eris.Wrapf(ErrGLTFAccessor, "%d values of width %d for %d keys", len(values)/max(w, 1), w, len(times))
	}
	ch.times, ch.values = times, values
	return ch, nil
}

// unionKeys merges every channel's key times into one sorted table
func unionKeys(channels []gltfChannel) []float32 {
	var all []float32
	for i := range channels {
		all = append(all, channels[i].times...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	keys := all[:1]
	for _, t := range all[1:] {
		if t-keys[len(keys)-1] > keyEpsilon {
			keys = append(keys, t)
		}
	}
	return keys
}

// frameTimes converts key times into loop-relative frame end times
// Frame i lasts until key i+1; the last frame lasts as long as the one before it
func frameTimes(keys []float32) []float32 {
	n := len(keys)
	out := make([]float32, n)
	if n == 1 {
		out[0] = parameter.SingleFrameDuration
		return out
	}
	for i := 0; i+1 < n; i++ {
		out[i] = keys[i+1] - keys[0]
	}
	out[n-1] = out[n-2] + (keys[n-1] - keys[n-2])
	return out
}

// keySpan locates t between two keys, returning the lower key and the blend factor
func keySpan(times []float32, t float32) (int, float32) {
	n := len(times)
	if n == 1 || t <= times[0] {
		return 0, 0
	}
	if t >= times[n-1] {
		return n - 1, 0
	}
	k := sort.Search(n, func(i int) bool { return times[i] > t }) - 1
	span := times[k+1] - times[k]
	if span <= 0 {
		return k, 0
	}
	return k, (t - times[k]) / span
}

func resample(jt *animation.JointTracks, ch *gltfChannel, keys []float32) {
	for _, t := range keys {
		k, f := keySpan(ch.times, t)
		if ch.step {
			f = 0
		}
		a := ch.value(k)
		b := a
		if f > 0 {
			b = ch.value(k + 1)
		}

		switch ch.path {
		case "rotation":
			q := gltfQuat(a)
			if f > 0 {
				q = mgl32.QuatSlerp(q, gltfQuat(b), f)
			}
			jt.Rotation = append(jt.Rotation, q)
		case "translation":
			jt.Translation = append(jt.Translation, lerp3(a, b, f))
		case "scale":
			jt.Scale = append(jt.Scale, lerp3(a, b, f))
		}
	}
}

func lerp3(a, b []float32, f float32) mgl32.Vec3 {
	va := mgl32.Vec3{a[0], a[1], a[2]}
	if f == 0 {
		return va
	}
	vb := mgl32.Vec3{b[0], b[1], b[2]}
	return va.Add(vb.Sub(va).Mul(f))
}
