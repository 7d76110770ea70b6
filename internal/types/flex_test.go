package types

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestFlexListAcceptsSingleOrArray(t *testing.T) {
	var body struct {
		IDs FlexList[string] `json:"ids"`
	}
	if err := json.Unmarshal([]byte(`{"ids":"n1"}`), &body); err != nil {
		t.Fatalf("single: %v", err)
	}
	if len(body.IDs) != 1 || body.IDs[0] != "n1" {
		t.Errorf("single: got %v", body.IDs)
	}

	body.IDs = nil
	if err := json.Unmarshal([]byte(`{"ids":["n1","n2"]}`), &body); err != nil {
		t.Fatalf("array: %v", err)
	}
	if len(body.IDs.Slice()) != 2 {
		t.Errorf("array: got %v", body.IDs)
	}
}

func TestDistinctIDs(t *testing.T) {
	got := DistinctIDs(FlexList[string]{" n1", "n2", "", "n1", "  ", "n3 "})
	want := []string{"n1", "n2", "n3"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if got := DistinctIDs(nil); len(got) != 0 {
		t.Errorf("expected no ids, got %v", got)
	}
}

func TestOptionalInt(t *testing.T) {
	var body struct {
		Version OptionalInt `json:"version"`
	}
	if err := json.Unmarshal([]byte(`{}`), &body); err != nil || body.Version.Set {
		t.Fatalf("absent version should be unset, got %+v err=%v", body.Version, err)
	}
	if err := json.Unmarshal([]byte(`{"version":"3"}`), &body); err != nil || !body.Version.Set || body.Version.Value != 3 {
		t.Fatalf("string version: got %+v err=%v", body.Version, err)
	}
	if err := json.Unmarshal([]byte(`{"version":4}`), &body); err != nil || body.Version.Value != 4 {
		t.Fatalf("number version: got %+v err=%v", body.Version, err)
	}
	if err := json.Unmarshal([]byte(`{"version":"x"}`), &body); err == nil {
		t.Error("expected error for non-numeric version")
	}
}

func TestCustomErrorHelpers(t *testing.T) {
	err := error(NewConflictError("job %s active", "j1"))
	if !HasCode(err, http.StatusConflict) {
		t.Errorf("expected 409, got %v", err)
	}
	ce, ok := AsCustomError(err)
	if !ok || ce.Message != "job j1 active" || ce.Type != KindConflict {
		t.Errorf("unexpected custom error %+v", ce)
	}
	if HasCode(nil, http.StatusConflict) {
		t.Error("nil error should not match")
	}
}
