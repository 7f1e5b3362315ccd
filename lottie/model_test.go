package lottie

import (
	"encoding/json"
	"testing"
)

func TestBoolIntDecodesNumericZeroAndOne(t *testing.T) {
	var b BoolInt
	if err := json.Unmarshal([]byte(`0`), &b); err != nil {
		t.Fatal(err)
	}
	if bool(b) {
		t.Error("0 should decode to false")
	}
	if err := json.Unmarshal([]byte(`1`), &b); err != nil {
		t.Fatal(err)
	}
	if !bool(b) {
		t.Error("1 should decode to true")
	}
}

func TestBoolIntDecodesJSONBoolean(t *testing.T) {
	var b BoolInt
	if err := json.Unmarshal([]byte(`true`), &b); err != nil {
		t.Fatal(err)
	}
	if !bool(b) {
		t.Error("JSON true should decode to true")
	}
}

func TestLayerUnmarshalTracksParentPresence(t *testing.T) {
	var withParent Layer
	if err := json.Unmarshal([]byte(`{"ty":4,"ind":2,"parent":1,"ks":{}}`), &withParent); err != nil {
		t.Fatal(err)
	}
	if !withParent.HasParent || withParent.Parent != 1 {
		t.Errorf("HasParent=%v Parent=%d, want true/1", withParent.HasParent, withParent.Parent)
	}

	var withoutParent Layer
	if err := json.Unmarshal([]byte(`{"ty":4,"ind":0,"ks":{}}`), &withoutParent); err != nil {
		t.Fatal(err)
	}
	if withoutParent.HasParent {
		t.Error("a layer with no parent field should decode HasParent = false, even though 0 is its zero value")
	}
}

func TestLayerUnmarshalParentZeroIsDistinctFromAbsent(t *testing.T) {
	var l Layer
	if err := json.Unmarshal([]byte(`{"ty":4,"ind":5,"parent":0,"ks":{}}`), &l); err != nil {
		t.Fatal(err)
	}
	if !l.HasParent || l.Parent != 0 {
		t.Errorf("explicit parent:0 should set HasParent=true Parent=0, got HasParent=%v Parent=%d", l.HasParent, l.Parent)
	}
}
