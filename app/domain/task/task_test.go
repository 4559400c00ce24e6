package task

import (
	"encoding/json"
	"errors"
	"testing"

	"square.ai/skill-gateway/app/domain/common"
)

func TestStateIsTerminal(t *testing.T) {
	cases := map[State]bool{
		StatePending: false,
		StateStarted: false,
		StateSuccess: true,
		StateFailure: true,
	}
	for state, want := range cases {
		if got := state.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", state, got, want)
		}
	}
}

func TestNewJobSpec(t *testing.T) {
	spec, err := NewJobSpec(OpDeploySkill, map[string]string{"skill_id": "skl_1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(spec.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["skill_id"] != "skl_1" {
		t.Errorf("unexpected payload %v", payload)
	}

	_, err = NewJobSpec("reboot", nil)
	if !errors.Is(err, ErrInvalidJob) || !errors.Is(err, common.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidJob, got %v", err)
	}
}
