package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobBienvenida = "bienvenida"

	// MaxAttempts is how many times a job runs before it goes to the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes the payload of one job type. A returned error
// schedules a retry.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueBienvenida queues the welcome email of a new user.
func (d *Dispatcher) EnqueueBienvenida(ctx context.Context, nombre, correo string) error {
	return d.enqueue(ctx, QueueEmail, JobBienvenida, BienvenidaPayload{Nombre: nombre, Correo: correo})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	queues   []string
	timeout  time.Duration

	requeue func(ctx context.Context, queue string, job Job) error
	dlq     func(ctx context.Context, queue string, job Job, reason string)

	wg sync.WaitGroup
}

// NewPool builds a pool dispatching each job type to its handler.
func NewPool(rdb *redis.Client, handlers map[string]Handler) *Pool {
	p := &Pool{
		rdb:      rdb,
		handlers: handlers,
		queues:   []string{QueueEmail},
		timeout:  5 * time.Second,
	}
	p.requeue = func(ctx context.Context, queue string, job Job) error {
		return push(ctx, rdb, queue, job)
	}
	dead := NewDeadLetters(rdb)
	p.dlq = func(ctx context.Context, queue string, job Job, reason string) {
		if err := dead.Push(ctx, queue, job, reason); err != nil {
			log.Error().Str("component", "worker").Str("queue", queue).Err(err).Msg("dlq push failed, job lost")
		}
	}
	return p
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle
// workers cost nothing. They stop when ctx is cancelled; Wait blocks
// until they have.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Str("component", "worker").Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			log.Info().Str("component", "worker").Msgf("worker %d shutting down", id)
			return
		}
		// Blocking pop, waits up to timeout then loops to check ctx
		result, err := p.rdb.BRPop(ctx, p.timeout, p.queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Str("component", "worker").Err(err).Msg("brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

// process runs one raw job. A failure re-enqueues it until MaxAttempts,
// then moves it to the DLQ.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("component", "worker").Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		p.dlq(ctx, queue, Job{Payload: quoted}, "invalid job: "+err.Error())
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		p.dlq(ctx, queue, job, "no handler for job type "+job.Type)
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Info().Str("component", "worker").Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("job processed")
		return
	}
	if job.Attempts >= MaxAttempts {
		p.dlq(ctx, queue, job, err.Error())
		return
	}
	log.Warn().Str("component", "worker").Str("type", job.Type).Int("attempt", job.Attempts).Err(err).Msg("job failed, retrying")
	if rerr := p.requeue(ctx, queue, job); rerr != nil {
		log.Error().Str("component", "worker").Err(rerr).Msg("requeue failed")
		p.dlq(ctx, queue, job, err.Error())
	}
}
