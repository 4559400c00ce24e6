package task

import (
	"context"
	"encoding/json"
	"fmt"

	"square.ai/skill-gateway/app/domain/common"
)

type State string

const (
	StatePending State = "PENDING"
	StateStarted State = "STARTED"
	StateSuccess State = "SUCCESS"
	StateFailure State = "FAILURE"
)

// IsTerminal reports whether no further transition is allowed.
func (s State) IsTerminal() bool {
	return s == StateSuccess || s == StateFailure
}

type Op string

const (
	OpDeploySkill  Op = "deploy_skill"
	OpRemoveSkill  Op = "remove_skill"
	OpRunChecklist Op = "run_checklist"
)

func (o Op) Valid() bool {
	switch o {
	case OpDeploySkill, OpRemoveSkill, OpRunChecklist:
		return true
	}
	return false
}

var (
	ErrTaskNotFound = common.NewError(fmt.Errorf("task %w", common.ErrNotFound), "1b01e5e0-2f23-4931-a96b-63edf4a0f917")
	ErrDispatch     = common.NewError(fmt.Errorf("task dispatch %w", common.ErrUnavailable), "f0fc402f-e321-4ce1-885d-43d2533c4f8b")
	ErrNotReady     = common.NewError(fmt.Errorf("task result %w", common.ErrNotReady), "05f01d16-83b2-413a-b615-1dfb6474226d")
	ErrInvalidJob   = common.NewError(fmt.Errorf("invalid job: %w", common.ErrInvalidArgument), "e133a6b6-24c1-439f-a736-09a4c7be6618")
)

// JobSpec is the descriptor placed on the queue.
type JobSpec struct {
	Op      Op              `json:"op"`
	Payload json.RawMessage `json:"payload"`
}

func NewJobSpec(op Op, payload any) (JobSpec, error) {
	if !op.Valid() {
		return JobSpec{}, fmt.Errorf("%w: unknown op %q", ErrInvalidJob, op)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return JobSpec{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return JobSpec{Op: op, Payload: raw}, nil
}

// Handle references a submitted job. Result is set only in StateSuccess and
// Error only in StateFailure.
type Handle struct {
	TaskID string          `json:"task_id"`
	Op     Op              `json:"op,omitempty"`
	State  State           `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Dispatcher enqueues jobs and reads the state the workers maintain. It never
// runs jobs itself.
type Dispatcher interface {
	// Submit fails with ErrDispatch when the broker cannot take the job.
	Submit(ctx context.Context, spec JobSpec) (Handle, error)
	// Status fails with ErrTaskNotFound for unknown or expired ids.
	Status(ctx context.Context, taskID string) (Handle, error)
	// Result returns the handle with ErrNotReady while the job is pending or
	// started. A failed job is a FAILURE handle, not an error.
	Result(ctx context.Context, taskID string) (Handle, error)
}

// JobHandler runs one job on a worker. The returned value becomes the task
// result; an error becomes the FAILURE message.
type JobHandler func(ctx context.Context, payload json.RawMessage) (any, error)

type HandlerRegistry map[Op]JobHandler

func (r HandlerRegistry) Register(op Op, handler JobHandler) {
	r[op] = handler
}
