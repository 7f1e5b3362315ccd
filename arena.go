package kinescope

import "strconv"

// NodeHandle is an integer index into an Arena's slab. Handles are NOT
// generational (spec §3: "consumers must not hold handles across
// destructions"); a handle is only valid for as long as the slot it
// addresses remains occupied by the node it was issued for.
type NodeHandle int

// invalidHandle is never issued by Create; used as a sentinel.
const invalidHandle NodeHandle = -1

// Arena is the flat slab that exclusively owns every Node in a scene.
// Grounded on the teacher's node.go tree (AddChild/RemoveChild/
// isAncestor), restructured from owned pointers into a handle-addressed
// slab per spec §3/§9 ("Scene arena vs. pointer graphs").
type Arena struct {
	slab    []*Node
	freeIDs []NodeHandle
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Create allocates a new node wrapping the given element and returns its
// handle. The node starts detached (no parent, no children).
func (a *Arena) Create(element Element) NodeHandle {
	n := newNode(element)
	if len(a.freeIDs) > 0 {
		h := a.freeIDs[len(a.freeIDs)-1]
		a.freeIDs = a.freeIDs[:len(a.freeIDs)-1]
		n.handle = h
		a.slab[h] = n
		return h
	}
	h := NodeHandle(len(a.slab))
	n.handle = h
	a.slab = append(a.slab, n)
	return h
}

// Valid reports whether h addresses a live node.
func (a *Arena) Valid(h NodeHandle) bool {
	return h >= 0 && int(h) < len(a.slab) && a.slab[h] != nil
}

// Get returns the node at h, or an InvalidHandle error.
func (a *Arena) Get(h NodeHandle) (*Node, error) {
	if !a.Valid(h) {
		return nil, NewError(KindInvalidHandle, "handle out of range or freed")
	}
	return a.slab[h], nil
}

// MustGet returns the node at h, panicking if h is not live. Per spec §7,
// InvalidHandle is "caller bug; surface with context" — a panic is
// appropriate at internal call sites that have already validated the
// handle came from this arena, mirroring the teacher's
// panic("willow: ...") convention for programmer-error conditions.
func (a *Arena) MustGet(h NodeHandle) *Node {
	n, err := a.Get(h)
	if err != nil {
		panic("kinescope: invalid node handle " + strconv.Itoa(int(h)))
	}
	return n
}

// Attach makes child a child of parent, appending it to parent's child
// list. Fails with CycleWouldForm if child is an ancestor of parent (or
// child == parent). Detaches child from any existing parent first.
func (a *Arena) Attach(parent, child NodeHandle) error {
	p, err := a.Get(parent)
	if err != nil {
		return err
	}
	c, err := a.Get(child)
	if err != nil {
		return err
	}
	if a.isAncestor(child, parent) {
		return NewError(KindCycleWouldForm, "attaching child would create a cycle")
	}
	if c.parent != invalidHandle {
		a.detach(c)
	}
	c.parent = parent
	p.children = append(p.children, child)
	p.childOrderDirty = true
	return nil
}

// AttachAt inserts child into parent's children at the given index.
func (a *Arena) AttachAt(parent, child NodeHandle, index int) error {
	p, err := a.Get(parent)
	if err != nil {
		return err
	}
	c, err := a.Get(child)
	if err != nil {
		return err
	}
	if a.isAncestor(child, parent) {
		return NewError(KindCycleWouldForm, "attaching child would create a cycle")
	}
	if index < 0 || index > len(p.children) {
		return NewError(KindInvalidHandle, "child index out of range")
	}
	if c.parent != invalidHandle {
		a.detach(c)
	}
	c.parent = parent
	p.children = append(p.children, invalidHandle)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = child
	p.childOrderDirty = true
	return nil
}

// isAncestor reports whether candidate is an ancestor of (or equal to) node.
func (a *Arena) isAncestor(candidate, node NodeHandle) bool {
	for h := node; h != invalidHandle; {
		if h == candidate {
			return true
		}
		n, err := a.Get(h)
		if err != nil {
			return false
		}
		h = n.parent
	}
	return false
}

// detach removes c from its parent's child list without invalidating c.
func (a *Arena) detach(c *Node) {
	if c.parent == invalidHandle {
		return
	}
	p, err := a.Get(c.parent)
	if err != nil {
		c.parent = invalidHandle
		return
	}
	for i, h := range p.children {
		if h == c.handle {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	p.childOrderDirty = true
	c.parent = invalidHandle
}

// Detach removes h from its parent. No-op if h has no parent.
func (a *Arena) Detach(h NodeHandle) error {
	n, err := a.Get(h)
	if err != nil {
		return err
	}
	a.detach(n)
	return nil
}

// Destroy recursively frees h and its descendants, recycling their slots
// immediately (spec §3 "destroy recycles slots immediately; stale
// handles are a caller bug").
func (a *Arena) Destroy(h NodeHandle) error {
	n, err := a.Get(h)
	if err != nil {
		return err
	}
	a.detach(n)
	a.destroyRecursive(h)
	return nil
}

func (a *Arena) destroyRecursive(h NodeHandle) {
	n := a.slab[h]
	if n == nil {
		return
	}
	for _, c := range n.children {
		a.destroyRecursive(c)
	}
	a.slab[h] = nil
	a.freeIDs = append(a.freeIDs, h)
}

// Parent returns h's parent handle, or invalidHandle if h is a root.
func (a *Arena) Parent(h NodeHandle) NodeHandle {
	n, err := a.Get(h)
	if err != nil {
		return invalidHandle
	}
	return n.parent
}

// Children returns h's children in draw order (insertion order; callers
// that need z-index order should use Director.sortedChildren in
// director.go).
func (a *Arena) Children(h NodeHandle) []NodeHandle {
	n, err := a.Get(h)
	if err != nil {
		return nil
	}
	return n.children
}

// IterDescendants calls fn for every descendant of root (not including
// root itself), depth-first, pre-order, in child-list order.
func (a *Arena) IterDescendants(root NodeHandle, fn func(NodeHandle)) {
	n, err := a.Get(root)
	if err != nil {
		return
	}
	for _, c := range n.children {
		fn(c)
		a.IterDescendants(c, fn)
	}
}

// Len returns the number of live nodes in the arena.
func (a *Arena) Len() int {
	n := 0
	for _, s := range a.slab {
		if s != nil {
			n++
		}
	}
	return n
}
