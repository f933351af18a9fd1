package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"medibook/config"
	"medibook/database/repository"
	"medibook/models"
	"medibook/services/checkout"
	"medibook/services/coreapi"
	"medibook/services/tasks"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	// sweepInterval is how often the safety-net sweep scans the journal.
	sweepInterval = 10 * time.Minute
	// stuckAfter is how long an attempt may sit after opening an order
	// before the sweep re-enqueues it.
	stuckAfter = 30 * time.Minute
	// fallbackAuditWindow is the lookback for the fallback-amount report.
	fallbackAuditWindow = 24 * time.Hour
)

// InitReconcileWorker runs the async reconciliation worker in background.
// It decides what a revisit shows for attempts where the user paid but
// never reached the confirmation page: the worker performs the backend
// detail lookup itself and finalizes the journal entry. A periodic sweep
// backstops the per-attempt tasks, catching attempts whose enqueue at
// order time failed.
func InitReconcileWorker(core coreapi.Client, journal repository.AttemptRepository, enqueuer checkout.TaskEnqueuer) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconcileAttempt, handleReconcileTask(core, journal))

	// Start the journal sweep
	go runSweepLoop(journal, enqueuer)

	// Start async worker with retry logic
	go func() {
		log.Println("[ReconcileWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReconcileWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReconcileWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// runSweepLoop periodically re-enqueues reconciliation for attempts that
// opened an order but never reached a terminal status, and reports
// fallback-amount usage for operators.
func runSweepLoop(journal repository.AttemptRepository, enqueuer checkout.TaskEnqueuer) {
	ctx := context.Background()

	sweep := func() {
		if n, err := sweepStuckAttempts(ctx, journal, enqueuer); err != nil {
			log.Printf("[ReconcileWorker] sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("[ReconcileWorker] sweep re-enqueued %d stuck attempts", n)
		}
		auditFallbackUsage(ctx, journal)
	}

	sweep()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		sweep()
	}
}

// sweepStuckAttempts re-enqueues every attempt the journal reports as stuck.
// The task handler is idempotent, so re-enqueueing an attempt that already
// has a pending task is harmless.
func sweepStuckAttempts(ctx context.Context, journal repository.AttemptRepository, enqueuer checkout.TaskEnqueuer) (int, error) {
	stuck, err := journal.StuckAfterOrder(ctx, time.Now().Add(-stuckAfter))
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, attempt := range stuck {
		if err := enqueuer.EnqueueReconcile(attempt.AttemptID, 0); err != nil {
			log.Printf("[ReconcileWorker] failed to re-enqueue attempt %s: %v", attempt.AttemptID, err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// auditFallbackUsage reports how often the confirmation page had to show
// the fallback amount. Any non-zero count is a reconciliation gap worth
// operator attention.
func auditFallbackUsage(ctx context.Context, journal repository.AttemptRepository) {
	n, err := journal.CountFallbackResolutions(ctx, time.Now().Add(-fallbackAuditWindow))
	if err != nil {
		log.Printf("[ReconcileWorker] fallback audit query failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[ReconcileWorker] %d confirmations showed the fallback amount in the last 24h", n)
	}
}

func handleReconcileTask(core coreapi.Client, journal repository.AttemptRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReconcileWorker] invalid payload: %v", err)
			return err
		}

		attempt, err := journal.GetByAttemptID(ctx, p.AttemptID)
		if err != nil {
			log.Printf("[ReconcileWorker] attempt %s not found: %v", p.AttemptID, err)
			return nil // nothing to reconcile, do not retry
		}

		switch attempt.Status {
		case models.AttemptResolved, models.AttemptReconciled, models.AttemptAbandoned, models.AttemptVerifyFailed:
			return nil // terminal, nothing to do
		}

		if attempt.PaymentID == "" {
			// Order opened but the gateway never reported back. The booking
			// stays unpaid on the backend; close out the journal entry.
			return journal.UpdateStatus(ctx, attempt.AttemptID, models.AttemptAbandoned,
				bson.M{"failure_note": "no gateway result before reconciliation sweep"})
		}

		detail, err := core.PaymentDetail(ctx, attempt.PaymentID)
		if err != nil {
			log.Printf("[ReconcileWorker] detail lookup failed for attempt %s: %v", p.AttemptID, err)
			return err // retried by asynq up to MaxRetry
		}

		fields := bson.M{"amount": detail.Amount}
		if !detail.Success {
			fields["failure_note"] = "backend reports payment not completed"
		}
		log.Printf("[ReconcileWorker] reconciled attempt %s paid=%t", p.AttemptID, detail.Success)
		return journal.UpdateStatus(ctx, attempt.AttemptID, models.AttemptReconciled, fields)
	}
}
