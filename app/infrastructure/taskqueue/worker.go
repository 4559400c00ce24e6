package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

// Worker pops jobs from the queue and records their outcome. A job runs at
// most once per pop; there are no retries.
type Worker struct {
	client    *redis.Client
	queue     string
	wait      time.Duration
	resultTTL time.Duration
	name      string
	handlers  task.HandlerRegistry
}

func NewWorker(client *redis.Client, handlers task.HandlerRegistry) *Worker {
	env := environment_variables.EnvironmentVariables
	return &Worker{
		client:    client,
		queue:     env.TASK_QUEUE_NAME,
		wait:      env.TASK_BRPOP_WAIT,
		resultTTL: env.TASK_RESULT_TTL,
		name:      env.WORKER_NAME,
		handlers:  handlers,
	}
}

func NewWorkerWithOptions(client *redis.Client, handlers task.HandlerRegistry, queue string, wait, resultTTL time.Duration, name string) *Worker {
	return &Worker{
		client:    client,
		queue:     queue,
		wait:      wait,
		resultTTL: resultTTL,
		name:      name,
		handlers:  handlers,
	}
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log := logger.GetLogger().WithFields(logrus.Fields{"worker": w.name, "queue": w.queue})
	log.Info("worker started")
	for {
		if ctx.Err() != nil {
			log.Info("worker stopped")
			return nil
		}
		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopped")
				return nil
			}
			log.WithField("error_code", "6f5d3f7e-2a8c-4b37-a1f2-7f3c7e0a9d41").
				Errorf("failed to process job: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne waits up to the configured BRPOP timeout for a job and runs it.
// It reports whether a job was taken.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	popped, err := w.client.BRPop(ctx, w.wait, w.queue).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("brpop %s: %w", w.queue, err)
	}
	// BRPOP replies [queue, value]
	var msg message
	if err := json.Unmarshal([]byte(popped[1]), &msg); err != nil {
		return true, fmt.Errorf("decode job: %w", err)
	}
	return true, w.execute(ctx, msg)
}

// finishTimeout bounds state writes made after the worker context is gone.
const finishTimeout = 5 * time.Second

// record writes a state transition on a context detached from ctx: once a
// job is popped its outcome must land even when the worker is shutting down.
func (w *Worker) record(ctx context.Context, taskID string, state task.State, fields ...string) (bool, error) {
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	return transition(recordCtx, w.client, taskID, state, w.resultTTL, fields...)
}

func (w *Worker) execute(ctx context.Context, msg message) error {
	log := logger.GetLogger().WithFields(logrus.Fields{
		"task_id": msg.TaskID,
		"op":      msg.Op,
		"worker":  w.name,
	})
	ok, err := w.record(ctx, msg.TaskID, task.StateStarted,
		fieldWorker, w.name,
		fieldStartedAt, nowString(),
	)
	if err != nil {
		return fmt.Errorf("mark %s started: %w", msg.TaskID, err)
	}
	if !ok {
		log.Warn("task already finished, skipping")
		return nil
	}

	result, runErr := w.run(ctx, msg)
	if runErr != nil {
		log.Warnf("task failed: %v", runErr)
		if _, err := w.record(ctx, msg.TaskID, task.StateFailure,
			fieldError, runErr.Error(),
			fieldFinishedAt, nowString(),
		); err != nil {
			return fmt.Errorf("mark %s failed: %w", msg.TaskID, err)
		}
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		_, err = w.record(ctx, msg.TaskID, task.StateFailure,
			fieldError, fmt.Sprintf("encode result: %v", err),
			fieldFinishedAt, nowString(),
		)
		return err
	}
	log.Info("task succeeded")
	_, err = w.record(ctx, msg.TaskID, task.StateSuccess,
		fieldResult, string(raw),
		fieldFinishedAt, nowString(),
	)
	return err
}

func (w *Worker) run(ctx context.Context, msg message) (result any, err error) {
	handler, ok := w.handlers[msg.Op]
	if !ok {
		return nil, fmt.Errorf("no handler registered for op %q", msg.Op)
	}
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().
				WithField("task_id", msg.TaskID).
				Errorf("job panicked: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return handler(ctx, msg.Payload)
}
