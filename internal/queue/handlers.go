package queue

import (
	"github.com/hibiken/asynq"
)

// NewServeMux routes synthesis tasks to handler.
func NewServeMux(handler asynq.Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeSynthesisRun, handler)
	return mux
}

// NewServer builds the worker server. Concurrency should stay at 1 unless
// the model runtime can share its device.
func NewServer(opt asynq.RedisClientOpt, concurrency int) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueSynthesis: 1,
		},
	})
}
