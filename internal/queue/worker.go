package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// HandlerFunc executes one job. The returned value is serialized into the
// result envelope; a returned error becomes a failed envelope. Handlers must
// be safe to re-run: no unrecoverable side effect before completion.
type HandlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Worker consumes the task list and publishes result envelopes.
type Worker struct {
	q        *Queue
	handlers map[string]HandlerFunc
	log      zerolog.Logger
}

func NewWorker(q *Queue, log zerolog.Logger) *Worker {
	return &Worker{
		q:        q,
		handlers: make(map[string]HandlerFunc),
		log:      log.With().Str("component", "worker").Logger(),
	}
}

func (w *Worker) Register(task string, h HandlerFunc) {
	w.handlers[task] = h
}

// Run blocks consuming jobs until ctx is canceled. Broker errors are retried
// with bounded exponential backoff instead of crashing the worker.
func (w *Worker) Run(ctx context.Context) error {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 500 * time.Millisecond
	retry.MaxInterval = 30 * time.Second
	retry.MaxElapsedTime = 0 // keep retrying until shutdown

	w.log.Info().Str("queue", w.q.taskList).Msg("worker started")
	for {
		res, err := w.q.rdb.BRPop(ctx, 5*time.Second, w.q.taskList).Result()
		if err == redis.Nil {
			retry.Reset()
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info().Msg("worker stopped")
				return ctx.Err()
			}
			wait := retry.NextBackOff()
			w.log.Error().Err(err).Dur("retry_in", wait).Msg("broker error, backing off")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		retry.Reset()
		w.dispatch(ctx, []byte(res[1]))
	}
}

func (w *Worker) dispatch(ctx context.Context, payload []byte) {
	var msg taskMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		w.log.Error().Err(err).Msg("dropping malformed task message")
		return
	}

	log := w.log.With().Str("task", msg.Task).Str("job_id", msg.ID).Logger()

	handler, ok := w.handlers[msg.Task]
	var env envelope
	if !ok {
		log.Error().Msg("no handler registered")
		env = errEnvelope(KindUnknownTask, fmt.Sprintf("no handler for task %q", msg.Task))
	} else {
		env = w.execute(ctx, handler, msg.Args, log)
	}

	if err := w.q.publishResult(ctx, msg.ID, env); err != nil {
		log.Error().Err(err).Msg("failed to publish job result")
	}
}

func (w *Worker) execute(ctx context.Context, handler HandlerFunc, args json.RawMessage, log zerolog.Logger) (env envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("job panicked")
			env = errEnvelope(KindPanic, fmt.Sprintf("%v", r))
		}
	}()

	started := time.Now()
	value, err := handler(ctx, args)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("job failed")
		var te *TaskError
		if errors.As(err, &te) {
			return errEnvelope(te.Kind, te.Message)
		}
		return errEnvelope(KindFailed, err.Error())
	}

	ok, err := okEnvelope(value)
	if err != nil {
		log.Error().Err(err).Msg("job result not serializable")
		return errEnvelope(KindFailed, err.Error())
	}
	log.Info().Dur("elapsed", time.Since(started)).Msg("job completed")
	return ok
}
