package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"square.ai/skill-gateway/app/domain/task"
	"square.ai/skill-gateway/config/environment_variables"
)

const (
	metaKeyPattern = "task:meta:%s"

	fieldOp          = "op"
	fieldStatus      = "status"
	fieldResult      = "result"
	fieldError       = "error"
	fieldWorker      = "worker"
	fieldSubmittedAt = "submitted_at"
	fieldStartedAt   = "started_at"
	fieldFinishedAt  = "finished_at"
)

func metaKey(taskID string) string {
	return fmt.Sprintf(metaKeyPattern, taskID)
}

// message is the queue entry; the worker needs only the id to find the
// metadata, op and payload travel with it.
type message struct {
	TaskID  string          `json:"task_id"`
	Op      task.Op         `json:"op"`
	Payload json.RawMessage `json:"payload"`
}

// transitionScript moves a task to ARGV[1] unless it is already terminal.
// ARGV[2] is the retention in milliseconds, the rest are field/value pairs.
// Returns -1 for an unknown task, 0 when refused, 1 when applied.
var transitionScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'status')
if not current then
	return -1
end
if current == 'SUCCESS' or current == 'FAILURE' then
	return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[1])
for i = 3, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

type RedisDispatcher struct {
	client    *redis.Client
	queue     string
	resultTTL time.Duration
}

var _ task.Dispatcher = (*RedisDispatcher)(nil)

func NewRedisDispatcher(client *redis.Client) task.Dispatcher {
	env := environment_variables.EnvironmentVariables
	return NewRedisDispatcherWithOptions(client, env.TASK_QUEUE_NAME, env.TASK_RESULT_TTL)
}

func NewRedisDispatcherWithOptions(client *redis.Client, queue string, resultTTL time.Duration) *RedisDispatcher {
	return &RedisDispatcher{
		client:    client,
		queue:     queue,
		resultTTL: resultTTL,
	}
}

// Submit records the PENDING state and enqueues the job in one transaction.
func (d *RedisDispatcher) Submit(ctx context.Context, spec task.JobSpec) (task.Handle, error) {
	if !spec.Op.Valid() {
		return task.Handle{}, fmt.Errorf("%w: unknown op %q", task.ErrInvalidJob, spec.Op)
	}
	taskID := uuid.NewString()
	raw, err := json.Marshal(message{TaskID: taskID, Op: spec.Op, Payload: spec.Payload})
	if err != nil {
		return task.Handle{}, fmt.Errorf("%w: %v", task.ErrInvalidJob, err)
	}
	key := metaKey(taskID)
	_, err = d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldOp, string(spec.Op),
			fieldStatus, string(task.StatePending),
			fieldSubmittedAt, nowString(),
		)
		pipe.PExpire(ctx, key, d.resultTTL)
		pipe.LPush(ctx, d.queue, raw)
		return nil
	})
	if err != nil {
		return task.Handle{}, fmt.Errorf("%w: %v", task.ErrDispatch, err)
	}
	return task.Handle{
		TaskID: taskID,
		Op:     spec.Op,
		State:  task.StatePending,
	}, nil
}

func (d *RedisDispatcher) Status(ctx context.Context, taskID string) (task.Handle, error) {
	fields, err := d.client.HGetAll(ctx, metaKey(taskID)).Result()
	if err != nil {
		return task.Handle{}, fmt.Errorf("%w: %v", task.ErrDispatch, err)
	}
	if len(fields) == 0 {
		return task.Handle{}, task.ErrTaskNotFound
	}
	return task.Handle{
		TaskID: taskID,
		Op:     task.Op(fields[fieldOp]),
		State:  task.State(fields[fieldStatus]),
	}, nil
}

func (d *RedisDispatcher) Result(ctx context.Context, taskID string) (task.Handle, error) {
	fields, err := d.client.HGetAll(ctx, metaKey(taskID)).Result()
	if err != nil {
		return task.Handle{}, fmt.Errorf("%w: %v", task.ErrDispatch, err)
	}
	if len(fields) == 0 {
		return task.Handle{}, task.ErrTaskNotFound
	}
	handle := task.Handle{
		TaskID: taskID,
		Op:     task.Op(fields[fieldOp]),
		State:  task.State(fields[fieldStatus]),
	}
	switch handle.State {
	case task.StateSuccess:
		handle.Result = json.RawMessage(fields[fieldResult])
	case task.StateFailure:
		handle.Error = fields[fieldError]
	default:
		return handle, task.ErrNotReady
	}
	return handle, nil
}

// transition applies the state change through transitionScript. It returns
// false when the task is already terminal.
func transition(ctx context.Context, client *redis.Client, taskID string, state task.State, ttl time.Duration, fields ...string) (bool, error) {
	args := make([]any, 0, len(fields)+2)
	args = append(args, string(state), strconv.FormatInt(ttl.Milliseconds(), 10))
	for _, f := range fields {
		args = append(args, f)
	}
	applied, err := transitionScript.Run(ctx, client, []string{metaKey(taskID)}, args...).Int()
	if err != nil {
		return false, err
	}
	if applied < 0 {
		return false, task.ErrTaskNotFound
	}
	return applied == 1, nil
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
