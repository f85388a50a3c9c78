package queue

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error kinds carried by failed result envelopes.
const (
	KindTimeout     = "timeout"
	KindFailed      = "failed"
	KindPanic       = "panic"
	KindUnknownTask = "unknown_task"
	KindNoData      = "no_data"
)

// envelope is the wire form of every job result: either a value or a typed
// error, never both. This replaces passing error-shaped values as data.
type envelope struct {
	Ok        bool            `json:"ok"`
	Value     json.RawMessage `json:"value,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func okEnvelope(value any) (envelope, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return envelope{}, err
	}
	return envelope{Ok: true, Value: raw}, nil
}

func errEnvelope(kind, message string) envelope {
	return envelope{Ok: false, ErrorKind: kind, Error: message}
}

func decodeEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, err
	}
	if !env.Ok && env.ErrorKind == "" {
		env.ErrorKind = KindFailed
	}
	return env, nil
}

// TaskError is a failed or timed-out job surfaced to the submitter.
type TaskError struct {
	Kind    string
	Task    string
	Message string
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s %s: %s", e.Task, e.Kind, e.Message)
}

// IsTimeout reports whether err is a job-result timeout.
func IsTimeout(err error) bool {
	var te *TaskError
	return errors.As(err, &te) && te.Kind == KindTimeout
}
