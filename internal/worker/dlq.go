package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix prefixes the dead letter list of each queue: dlq:{queue}.
const DLQPrefix = "dlq:"

// DLQEntry is a job that ran out of attempts, with why it failed.
type DLQEntry struct {
	Queue    string          `json:"original_queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
	Attempts int             `json:"attempts"`
}

// DeadLetters stores failed jobs for inspection and manual retry.
type DeadLetters struct {
	rdb *redis.Client
	now func() time.Time
}

func NewDeadLetters(rdb *redis.Client) *DeadLetters {
	return &DeadLetters{rdb: rdb, now: time.Now}
}

// Push records a failed job. Newest entries come first.
func (d *DeadLetters) Push(ctx context.Context, queue string, job Job, reason string) error {
	data, err := json.Marshal(DLQEntry{
		Queue:    queue,
		JobType:  job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		FailedAt: d.now().UTC(),
		Attempts: job.Attempts,
	})
	if err != nil {
		return err
	}
	if err := d.rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		return err
	}
	log.Warn().
		Str("component", "worker").
		Str("queue", queue).
		Str("job_type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("job moved to dead letter queue")
	return nil
}

// Len returns the number of dead jobs of queue.
func (d *DeadLetters) Len(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// Entries returns up to n of the most recent dead jobs of queue. Entries
// that no longer decode are skipped.
func (d *DeadLetters) Entries(ctx context.Context, queue string, n int64) ([]DLQEntry, error) {
	raw, err := d.rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DLQEntry, 0, len(raw))
	for _, r := range raw {
		var e DLQEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Retry moves up to n of the oldest dead jobs back to their queue with a
// fresh attempt count and returns how many were moved. Entries without a
// job type cannot run again and are left in place.
func (d *DeadLetters) Retry(ctx context.Context, queue string, n int) (int, error) {
	key := DLQPrefix + queue
	total, err := d.rdb.LLen(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	moved := 0
	for i := int64(0); i < total && moved < n; i++ {
		raw, err := d.rdb.RPop(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil || e.JobType == "" {
			// to the head, past the entries still to visit
			if perr := d.rdb.LPush(ctx, key, raw).Err(); perr != nil {
				return moved, perr
			}
			continue
		}
		if err := push(ctx, d.rdb, queue, Job{Type: e.JobType, Payload: e.Payload}); err != nil {
			_ = d.rdb.RPush(ctx, key, raw).Err()
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("component", "worker").Str("queue", queue).Int("moved", moved).Msg("dead jobs requeued")
	}
	return moved, nil
}
