package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeReconcileAttempt = "reconcile:attempt"

// ReconcilePayload identifies the checkout attempt to sweep.
type ReconcilePayload struct {
	AttemptID string `json:"attemptId"`
}

func NewReconcileTask(attemptID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ReconcilePayload{AttemptID: attemptID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeReconcileAttempt, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt), asynq.MaxRetry(3)}

	return task, opts, nil
}

// Enqueuer schedules reconciliation tasks on the shared Redis queue.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(redisOpt asynq.RedisClientOpt) *Enqueuer {
	return &Enqueuer{client: asynq.NewClient(redisOpt)}
}

func (e *Enqueuer) EnqueueReconcile(attemptID string, delaySeconds int) error {
	task, opts, err := NewReconcileTask(attemptID, time.Now().Add(time.Duration(delaySeconds)*time.Second))
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task, opts...)
	return err
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}
