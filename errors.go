package kinescope

import "fmt"

// Kind enumerates the error kinds and propagation policy described in
// spec §7. The caller decides what to do with a given Kind; Error itself
// just carries the classification.
type Kind uint8

const (
	// KindParseError: Lottie/scene/asset parse failure at load time.
	// Surfaced to the caller; the frame cannot be produced.
	KindParseError Kind = iota
	// KindAssetMissing: render-time missing asset. A placeholder is
	// substituted (magenta rect / silent audio) and the error is logged
	// once per key.
	KindAssetMissing
	// KindCycleWouldForm: Arena.Attach would create a cycle. Rejected.
	KindCycleWouldForm
	// KindInvalidHandle: caller used a handle that is not live. A bug in
	// the caller; surfaced with context.
	KindInvalidHandle
	// KindDecoderFailure: video/audio decode failure during Update/Mix.
	// No code constructs this kind: VideoElement.Update keeps its previous
	// frame in either mode and reports nothing.
	KindDecoderFailure
	// KindExpressionError: a Lottie expression failed to evaluate. Falls
	// back to the nearest keyframe value and logs.
	KindExpressionError
	// KindLayoutOverconstrained: the flexbox solver could not satisfy all
	// constraints. Reported via a hook; layout proceeds with the
	// solver's best effort.
	KindLayoutOverconstrained
	// KindIoError: a write failure at encode time. Fatal to the export
	// job.
	KindIoError
)

func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "ParseError"
	case KindAssetMissing:
		return "AssetMissing"
	case KindCycleWouldForm:
		return "CycleWouldForm"
	case KindInvalidHandle:
		return "InvalidHandle"
	case KindDecoderFailure:
		return "DecoderFailure"
	case KindExpressionError:
		return "ExpressionError"
	case KindLayoutOverconstrained:
		return "LayoutOverconstrained"
	case KindIoError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// Error is the engine's single error type. Line/Column are populated only
// for KindParseError when the underlying parser can report a position.
type Error struct {
	Kind    Kind
	Message string
	Line    int // 0 = unknown
	Column  int // 0 = unknown
	Snippet string
	Err     error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("kinescope: %s: %s (line %d, col %d)", e.Kind, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("kinescope: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a plain *Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// AsKind reports whether err is a *Error of the given kind.
func AsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
