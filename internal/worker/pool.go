package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueFacturacion = "jobs:facturacion"
	QueueEmail       = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one dequeued job payload.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueFacturacion pushes an issuance job to Redis.
func (d *Dispatcher) EnqueueFacturacion(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueFacturacion, "facturacion", payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches the consumers.
//
// QueueFacturacion gets EXACTLY ONE consumer: issuance reads the last
// authorized number from the fiscal authority and submits number+1, so two
// concurrent submissions for the same punto de venta would collide. A single
// consumer serializes them without any distributed locking.
//
// QueueEmail is order-insensitive and gets numWorkers consumers.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, facturacion Handler, email Handler) {
	go runConsumer(ctx, rdb, QueueFacturacion, 0, facturacion)
	for i := 0; i < numWorkers; i++ {
		go runConsumer(ctx, rdb, QueueEmail, i, email)
	}
	log.Info().Int("email_workers", numWorkers).Msg("worker pool started (1 facturacion + N email)")
}

func runConsumer(ctx context.Context, rdb *redis.Client, queue string, id int, h Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("queue", queue).Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queue).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, h, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, h Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	h.Process(ctx, job.Payload)
}
