// Package skeleton reconstructs joint trees from flat glTF node/children data
package skeleton

import (
	"github.com/rotisserie/eris"
)

var (
	ErrNoJoints          = eris.New("skin has no joints")
	ErrInvalidJoint      = eris.New("joint references a missing node")
	ErrInvalidNode       = eris.New("node references a missing child")
	ErrDuplicateJoint    = eris.New("node listed twice as a joint")
	ErrMultipleParents   = eris.New("joint has more than one parent joint")
	ErrCycle             = eris.New("joint hierarchy contains a cycle")
	ErrTooManyJoints     = eris.New("joint count exceeds the skinning limit")
	ErrBindCountMismatch = eris.New("inverse bind matrix count differs from joint count")
)

// Hierarchy is the resolved joint tree of one skin
// Joint indices refer to positions in Joints (skin order), not glTF node indices
type Hierarchy struct {
	// Joints maps joint index -> node index
	Joints []int

	// Roots lists joints that are no other joint's child
	Roots []int

	// Parent maps joint index -> parent joint index, -1 for roots
	Parent []int

	// Chains holds, per joint, the joint indices from its root down to itself
	Chains [][]uint32

	// Paths holds the chains recorded by the traversal in recording order:
	// every leaf path, plus the path to a node each time traversal returns to it
	// before descending into its next child
	Paths [][]uint32
}

// Resolve builds the joint tree for joints (node indices in skin order)
// children[n] lists the child node indices of node n
// Non-joint children are not descended into
// A root is a joint no other joint lists as a child, so a joint parented by a non-joint node (an armature) is a root
func Resolve(children [][]int, joints []int) (*Hierarchy, error) {
	if len(joints) == 0 {
		return nil, ErrNoJoints
	}

	nodeToJoint := make([]int, len(children))
	for i := range nodeToJoint {
		nodeToJoint[i] = -1
	}
	for j, node := range joints {
		if node < 0 || node >= len(children) {
			return nil, eris.Wrapf(ErrInvalidJoint, "joint %d -> node %d of %d", j, node, len(children))
		}
		if nodeToJoint[node] >= 0 {
			return nil, eris.Wrapf(ErrDuplicateJoint, "node %d", node)
		}
		nodeToJoint[node] = j
	}

	// Joint children by node index, and the parent of every joint
	jointKids := make([][]int, len(children))
	parent := make([]int, len(joints))
	for j := range parent {
		parent[j] = -1
	}
	for node, kids := range children {
		for _, kid := range kids {
			if kid < 0 || kid >= len(children) {
				return nil, eris.Wrapf(ErrInvalidNode, "node %d -> child %d of %d", node, kid, len(children))
			}
			pj, kj := nodeToJoint[node], nodeToJoint[kid]
			if pj < 0 || kj < 0 {
				continue
			}
			if parent[kj] >= 0 {
				return nil, eris.Wrapf(ErrMultipleParents, "joint %d (node %d)", kj, kid)
			}
			parent[kj] = pj
			jointKids[node] = append(jointKids[node], kid)
		}
	}

	h := &Hierarchy{
		Joints: append([]int(nil), joints...),
		Parent: parent,
		Chains: make([][]uint32, len(joints)),
	}
	for j, p := range parent {
		if p < 0 {
			h.Roots = append(h.Roots, j)
		}
	}
	if len(h.Roots) == 0 {
		return nil, eris.Wrap(ErrCycle, "no root joint")
	}

	if err := h.traverse(jointKids, nodeToJoint); err != nil {
		return nil, err
	}
	for j, chain := range h.Chains {
		if chain == nil {
			return nil, eris.Wrapf(ErrCycle, "joint %d unreachable from any root", j)
		}
	}
	return h, nil
}

// traverse walks every root depth-first with an explicit node stack and a paired
// child-offset stack, filling Chains on first visit and recording Paths
func (h *Hierarchy) traverse(jointKids [][]int, nodeToJoint []int) error {
	nodeStack := make([]int, 0, len(h.Joints))
	offStack := make([]int, 0, len(h.Joints))

	path := func() []uint32 {
		out := make([]uint32, len(nodeStack))
		for i, node := range nodeStack {
			out[i] = uint32(nodeToJoint[node])
		}
		return out
	}

	for _, root := range h.Roots {
		nodeStack = append(nodeStack[:0], h.Joints[root])
		offStack = offStack[:0]

		for {
			top := nodeStack[len(nodeStack)-1]

			if len(nodeStack) > len(offStack) {
				// First visit of top
				offStack = append(offStack, 0)
				j := nodeToJoint[top]
				if h.Chains[j] != nil {
					return eris.Wrapf(ErrCycle, "joint %d visited twice", j)
				}
				h.Chains[j] = path()
			}

			kids := jointKids[top]
			off := len(offStack) - 1

			switch {
			case len(kids) == 0:
				h.Paths = append(h.Paths, path())
				nodeStack = nodeStack[:len(nodeStack)-1]
				offStack = offStack[:off]
			case offStack[off] == len(kids):
				nodeStack = nodeStack[:len(nodeStack)-1]
				offStack = offStack[:off]
			default:
				if offStack[off] > 0 {
					h.Paths = append(h.Paths, path())
				}
				nodeStack = append(nodeStack, kids[offStack[off]])
				offStack[off]++
			}

			if len(offStack) == 0 {
				break
			}
		}
	}
	return nil
}

// Depth returns the number of ancestors of joint j
func (h *Hierarchy) Depth(j int) int {
	return len(h.Chains[j]) - 1
}

// JointCount returns the number of joints
func (h *Hierarchy) JointCount() int {
	return len(h.Joints)
}
