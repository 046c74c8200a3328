package opresult

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Success, "SUCCESS"},
		{FatalError, "FATAL_ERROR"},
		{Status(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestOk(t *testing.T) {
	if !Successf("done").Ok() {
		t.Error("Successf result should be Ok")
	}
	if Fatalf("broken").Ok() {
		t.Error("Fatalf result should not be Ok")
	}
}

func TestFromError(t *testing.T) {
	res := FromError(errors.New("disk on fire"))
	if res.Ok() {
		t.Error("non-nil error should produce a fatal result")
	}
	if res.Message != "disk on fire" {
		t.Errorf("unexpected message: %q", res.Message)
	}

	res = FromError(nil)
	if !res.Ok() {
		t.Error("nil error should produce a success result")
	}
}

func TestFormatting(t *testing.T) {
	res := Successf("command started (PID %d)", 1234)
	if res.Message != "command started (PID 1234)" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestJSONShape(t *testing.T) {
	data, err := json.Marshal(Fatalf("camera is actually recording"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := decoded["status"]; !ok {
		t.Error("expected a status field in the JSON body")
	}
	if decoded["message"] != "camera is actually recording" {
		t.Errorf("unexpected message field: %v", decoded["message"])
	}
}
