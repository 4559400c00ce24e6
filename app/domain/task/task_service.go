package task

import (
	"context"
)

type TaskService struct {
	dispatcher Dispatcher
}

func NewTaskService(dispatcher Dispatcher) *TaskService {
	return &TaskService{
		dispatcher: dispatcher,
	}
}

func (s *TaskService) Submit(ctx context.Context, op Op, payload any) (Handle, error) {
	spec, err := NewJobSpec(op, payload)
	if err != nil {
		return Handle{}, err
	}
	return s.dispatcher.Submit(ctx, spec)
}

func (s *TaskService) Status(ctx context.Context, taskID string) (Handle, error) {
	return s.dispatcher.Status(ctx, taskID)
}

func (s *TaskService) Result(ctx context.Context, taskID string) (Handle, error) {
	return s.dispatcher.Result(ctx, taskID)
}
