package kinescope

// Element is the polymorphic payload a Node carries (spec §3 "Element").
// Every concrete element kind (box, text, image, video, composition,
// effect, lottie) implements Update and Render; Measure and PostLayout
// are optional extension points the layout engine probes for via type
// assertion, matching the teacher's preference for flat dispatch over
// deep interface hierarchies.
type Element interface {
	// Update advances the element's internal state (decoders, nested
	// players) to local time t within a node whose element has the given
	// total duration. t and duration are in seconds.
	Update(t, duration float64)

	// Render draws the element's own content (not its children, which the
	// director walks separately) into canvas using ctx's resolved world
	// transform and opacity.
	Render(canvas Canvas, ctx *RenderContext)
}

// Measurer is implemented by elements with intrinsic content size (text,
// image, video) that the layout engine needs to measure when Width/Height
// are Auto. knownWidth/knownHeight are set (ok=true) only on the axis
// already resolved by the parent's constraints.
type Measurer interface {
	Measure(knownWidth, knownHeight float64, knownWidthOK, knownHeightOK bool) Size
}

// PostLayouter is implemented by elements that react to their computed
// box without changing it — e.g. an image element re-deriving a
// center-crop source rect once its final width/height are known (spec §4
// "post_layout hook").
type PostLayouter interface {
	PostLayout(rect Rect)
}

// RenderContext carries the resolved, render-time state a Node's Element
// needs to draw itself: its accumulated world affine matrix and opacity,
// the logical frame clock, and a reference back to its own Node/Arena so
// an element can read its owning node's Style and LayoutRect without
// every element needing its own copy of that geometry.
type RenderContext struct {
	World   [6]float64
	Opacity float64
	Frame   int64
	FPS     float64

	Arena *Arena
	Node  *Node

	// Assets resolves asset references (images, fonts, video/audio
	// sources) for elements that need them at render time.
	Assets   *AssetLoader
	Logger   *Logger
}

// Node is the scene graph's single node type (spec §3 "Arena-backed scene
// graph"). One flat struct for every kind, the element-specific behavior
// lives entirely behind the Element interface — grounded on the teacher's
// node.go, which keeps one struct for every node kind to avoid interface
// dispatch on hierarchy/transform bookkeeping while still supporting
// per-kind behavior (there, via NodeType; here, via Element).
type Node struct {
	handle NodeHandle
	parent NodeHandle

	children        []NodeHandle
	childOrderDirty bool

	Name    string
	ZIndex  int32
	Visible bool

	Style     Style
	Transform Transform
	Element   Element

	// BlendMode composites this node's rendered subtree onto its parent
	// using something other than normal alpha-over (spec §6
	// "node.set_blend_mode(mode)"). BlendNormal (the zero value) skips the
	// offscreen-layer detour entirely and draws straight into the parent
	// canvas, same as before this field existed.
	BlendMode BlendMode

	// MaskNode, if valid, is the handle of a node whose rendered alpha
	// masks this node's subtree (spec §4 "masks"). Not itself a member of
	// the normal child list, mirroring the teacher's mask.go design.
	MaskNode NodeHandle

	// LayoutRect is this node's box as computed by the last layout pass,
	// in the parent's content-box coordinate space.
	LayoutRect Rect

	// world and worldOpacity are initialised to identity and 1 by newNode
	// and not updated afterwards; the director computes world transforms
	// and opacity during its render walk without storing them here.
	world        [6]float64
	worldOpacity float64
}

// newNode allocates a detached Node wrapping element. Called only from
// Arena.Create, which assigns the handle.
func newNode(element Element) *Node {
	return &Node{
		parent:   invalidHandle,
		MaskNode: invalidHandle,
		Visible:  true,
		Style:    Style{},
		Transform: DefaultTransform(),
		Element:  element,
		world:    identityAffine,
		worldOpacity: 1,
	}
}

// Handle returns n's own handle.
func (n *Node) Handle() NodeHandle { return n.handle }

// ChildCount returns the number of direct children n has.
func (n *Node) ChildCount() int { return len(n.children) }
