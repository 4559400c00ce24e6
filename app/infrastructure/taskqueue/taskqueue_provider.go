package taskqueue

import "github.com/google/wire"

var TaskQueueProvider = wire.NewSet(
	NewRedisDispatcher,
)
