package kinescope

import "testing"

func TestArenaCreateAndGet(t *testing.T) {
	a := NewArena()
	h := a.Create(nil)
	if !a.Valid(h) {
		t.Fatal("created handle should be valid")
	}
	n, err := a.Get(h)
	if err != nil || n == nil {
		t.Fatalf("Get(h) = %v, %v; want a node", n, err)
	}
}

func TestArenaGetInvalidHandle(t *testing.T) {
	a := NewArena()
	if _, err := a.Get(NodeHandle(42)); err == nil {
		t.Fatal("expected error for out-of-range handle")
	}
}

func TestArenaAttachReparents(t *testing.T) {
	a := NewArena()
	parentA := a.Create(nil)
	parentB := a.Create(nil)
	child := a.Create(nil)

	if err := a.Attach(parentA, child); err != nil {
		t.Fatalf("Attach to parentA: %v", err)
	}
	if got := a.Parent(child); got != parentA {
		t.Fatalf("parent = %v, want parentA", got)
	}
	if err := a.Attach(parentB, child); err != nil {
		t.Fatalf("Attach to parentB: %v", err)
	}
	if got := a.Parent(child); got != parentB {
		t.Fatalf("parent after reattach = %v, want parentB", got)
	}
	if len(a.Children(parentA)) != 0 {
		t.Error("parentA should have no children after child moved away")
	}
}

func TestArenaAttachCycleRejected(t *testing.T) {
	a := NewArena()
	root := a.Create(nil)
	child := a.Create(nil)
	if err := a.Attach(root, child); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := a.Attach(child, root); err == nil {
		t.Fatal("attaching an ancestor as a child should fail")
	}
}

func TestArenaAttachAtInsertsAtIndex(t *testing.T) {
	a := NewArena()
	root := a.Create(nil)
	first := a.Create(nil)
	second := a.Create(nil)
	middle := a.Create(nil)

	if err := a.Attach(root, first); err != nil {
		t.Fatal(err)
	}
	if err := a.Attach(root, second); err != nil {
		t.Fatal(err)
	}
	if err := a.AttachAt(root, middle, 1); err != nil {
		t.Fatal(err)
	}
	children := a.Children(root)
	want := []NodeHandle{first, middle, second}
	if len(children) != len(want) {
		t.Fatalf("children = %v, want %v", children, want)
	}
	for i := range want {
		if children[i] != want[i] {
			t.Fatalf("children = %v, want %v", children, want)
		}
	}
}

func TestArenaDestroyRecyclesSlotAndDescendants(t *testing.T) {
	a := NewArena()
	root := a.Create(nil)
	child := a.Create(nil)
	grandchild := a.Create(nil)
	if err := a.Attach(root, child); err != nil {
		t.Fatal(err)
	}
	if err := a.Attach(child, grandchild); err != nil {
		t.Fatal(err)
	}

	if err := a.Destroy(child); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if a.Valid(child) || a.Valid(grandchild) {
		t.Error("child and grandchild should both be invalid after Destroy")
	}
	if len(a.Children(root)) != 0 {
		t.Error("root should have no children after its only child was destroyed")
	}

	// The freed slot should be recycled on the next Create.
	reused := a.Create(nil)
	if reused != child {
		t.Errorf("Create after Destroy should recycle the freed handle %v, got %v", child, reused)
	}
}

func TestArenaLenCountsOnlyLiveNodes(t *testing.T) {
	a := NewArena()
	h1 := a.Create(nil)
	_ = a.Create(nil)
	if got := a.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if err := a.Destroy(h1); err != nil {
		t.Fatal(err)
	}
	if got := a.Len(); got != 1 {
		t.Fatalf("Len() after Destroy = %d, want 1", got)
	}
}

func TestArenaIterDescendantsPreOrder(t *testing.T) {
	a := NewArena()
	root := a.Create(nil)
	child1 := a.Create(nil)
	child2 := a.Create(nil)
	grandchild := a.Create(nil)
	mustAttach(t, a, root, child1)
	mustAttach(t, a, root, child2)
	mustAttach(t, a, child1, grandchild)

	var visited []NodeHandle
	a.IterDescendants(root, func(h NodeHandle) { visited = append(visited, h) })
	want := []NodeHandle{child1, grandchild, child2}
	if len(visited) != len(want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited = %v, want %v", visited, want)
		}
	}
}

func mustAttach(t *testing.T, a *Arena, parent, child NodeHandle) {
	t.Helper()
	if err := a.Attach(parent, child); err != nil {
		t.Fatalf("Attach(%v, %v): %v", parent, child, err)
	}
}
