// Redis-backed job queue decoupling the slow upstream calls (classification,
// context generation, zone analysis) from the request cycle.
//
// Jobs travel on a single list; each job gets a dedicated result list with a
// TTL so submitters can block on BRPOP instead of polling. Arguments and
// results are JSON end to end, one codec across api and worker deployments.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/config"
)

// Task names understood by the worker.
const (
	TaskPerformPrediction   = "perform_prediction"
	TaskFetchContext        = "fetch_contextual_information"
	TaskAnalyzeIncidentZone = "analyze_incident_zone"
)

type Queue struct {
	rdb       redis.UniversalClient
	taskList  string
	resultTTL time.Duration
	log       zerolog.Logger
}

type taskMessage struct {
	ID   string          `json:"id"`
	Task string          `json:"task"`
	Args json.RawMessage `json:"args"`
}

func New(cfg config.RedisConfig, log zerolog.Logger) (*Queue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{
		rdb:       rdb,
		taskList:  cfg.TaskQueue,
		resultTTL: cfg.ResultTTL,
		log:       log.With().Str("component", "queue").Logger(),
	}, nil
}

// Enqueue serializes args and pushes one job onto the broker list. The
// returned Job is the handle used to retrieve the result.
func (q *Queue) Enqueue(ctx context.Context, task string, args any) (*Job, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args for %s: %w", task, err)
	}
	msg := taskMessage{ID: uuid.NewString(), Task: task, Args: raw}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task message: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.taskList, payload).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", task, err)
	}
	q.log.Debug().Str("task", task).Str("job_id", msg.ID).Msg("job enqueued")
	return &Job{id: msg.ID, task: task, q: q}, nil
}

// Job is the submitter-side handle for one enqueued task.
type Job struct {
	id   string
	task string
	q    *Queue
}

func (j *Job) ID() string { return j.id }

func resultKey(id string) string { return "mapaction:result:" + id }

// Get blocks until the worker publishes the job result or the timeout
// expires. Each HTTP request runs on its own goroutine, so the blocking wait
// never stalls other requests.
func (j *Job) Get(ctx context.Context, timeout time.Duration) (json.RawMessage, error) {
	res, err := j.q.rdb.BRPop(ctx, timeout, resultKey(j.id)).Result()
	if err == redis.Nil {
		return nil, &TaskError{Kind: KindTimeout, Task: j.task, Message: fmt.Sprintf("no result within %s", timeout)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result for %s: %w", j.task, err)
	}
	// BRPop returns [key, value].
	env, err := decodeEnvelope([]byte(res[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode result for %s: %w", j.task, err)
	}
	if !env.Ok {
		return nil, &TaskError{Kind: env.ErrorKind, Task: j.task, Message: env.Error}
	}
	return env.Value, nil
}

// GetInto is Get plus JSON decoding of the result value.
func (j *Job) GetInto(ctx context.Context, timeout time.Duration, out any) error {
	value, err := j.Get(ctx, timeout)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", j.task, err)
	}
	return nil
}

func (q *Queue) publishResult(ctx context.Context, jobID string, env envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal result envelope: %w", err)
	}
	pipe := q.rdb.TxPipeline()
	pipe.LPush(ctx, resultKey(jobID), payload)
	pipe.Expire(ctx, resultKey(jobID), q.resultTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (q *Queue) Close() error {
	return q.rdb.Close()
}
