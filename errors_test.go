package kinescope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	e := NewError(KindAssetMissing, "no image for key foo")
	msg := e.Error()
	assert.Contains(t, msg, "AssetMissing")
	assert.Contains(t, msg, "no image for key foo")
}

func TestErrorWithLineAddsPosition(t *testing.T) {
	e := NewError(KindParseError, "unexpected token")
	e.Line = 3
	e.Column = 7
	msg := e.Error()
	assert.Contains(t, msg, "line 3")
	assert.Contains(t, msg, "col 7")
}

func TestWrapUnwrapsToCause(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := Wrap(KindDecoderFailure, "could not open video", cause)
	require.True(t, errors.Is(wrapped, cause), "errors.Is should find the wrapped cause via Unwrap")
}

func TestAsKindMatchesOnlyExpectedKind(t *testing.T) {
	e := NewError(KindCycleWouldForm, "would cycle")
	assert.True(t, AsKind(e, KindCycleWouldForm))
	assert.False(t, AsKind(e, KindIoError))
	assert.False(t, AsKind(errors.New("plain error"), KindIoError))
}

func TestKindStringCoversKnownKinds(t *testing.T) {
	kinds := []Kind{
		KindParseError, KindAssetMissing, KindCycleWouldForm, KindInvalidHandle,
		KindDecoderFailure, KindExpressionError, KindLayoutOverconstrained, KindIoError,
	}
	for _, k := range kinds {
		assert.NotEqual(t, "Unknown", k.String(), "Kind %d should have a known String() representation", k)
	}
}
