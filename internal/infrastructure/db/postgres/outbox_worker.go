package postgres

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	zlog "github.com/rs/zerolog/log"
)

// MessagePublisher is what the worker needs from the broker side. The
// messageID must stay stable across retries so consumers can dedupe.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, routingKey, messageID string, body []byte) error
}

const (
	outboxBatchSize   = 20
	outboxMaxAttempts = 10
)

const claimOutboxSQL = `
SELECT id, message_id, routing_key, body, attempts
FROM outbox
WHERE status = 'pending'
  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY next_retry_at ASC, created_at ASC
LIMIT $1
FOR UPDATE SKIP LOCKED
`

const reserveOutboxSQL = `
UPDATE outbox SET status = 'processing', next_retry_at = $2 WHERE id = $1
`

const markOutboxSentSQL = `
UPDATE outbox SET status = 'sent', sent_at = $2, last_error = NULL WHERE id = $1
`

const markOutboxFailedSQL = `
UPDATE outbox SET status = 'pending', attempts = attempts + 1, next_retry_at = $2, last_error = $3 WHERE id = $1
`

const markOutboxDeadSQL = `
UPDATE outbox SET status = 'dead', attempts = attempts + 1, last_error = $2 WHERE id = $1
`

type outboxRow struct {
	ID         int64
	MessageID  string
	RoutingKey string
	Body       []byte
	Attempts   int
}

// OutboxWorker polls the outbox table and pushes pending messages to the
// broker. Claim, publish, and status update are separate short steps so no
// row lock is held across the network call.
type OutboxWorker struct {
	pool *pgxpool.Pool
	pub  MessagePublisher
}

func NewOutboxWorker(pool *pgxpool.Pool, pub MessagePublisher) *OutboxWorker {
	return &OutboxWorker{pool: pool, pub: pub}
}

func (w *OutboxWorker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	go func() {
		log := zlog.With().Str("component", "outbox_worker").Logger()

		// jitter so multiple instances do not tick in lockstep
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stopped")
				return
			case <-ticker.C:
				if err := w.processBatch(ctx); err != nil {
					log.Warn().Err(err).Msg("outbox batch failed")
				}
			}
		}
	}()
}

func (w *OutboxWorker) processBatch(ctx context.Context) error {
	claimCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := w.pool.BeginTx(claimCtx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(claimCtx) }()

	rows, err := tx.Query(claimCtx, claimOutboxSQL, outboxBatchSize)
	if err != nil {
		return err
	}

	var batch []outboxRow
	for rows.Next() {
		var m outboxRow
		if err := rows.Scan(&m.ID, &m.MessageID, &m.RoutingKey, &m.Body, &m.Attempts); err != nil {
			rows.Close()
			return err
		}
		batch = append(batch, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(batch) == 0 {
		return tx.Commit(claimCtx)
	}

	// Reservation keeps a second worker off these rows while we publish.
	reservation := time.Now().UTC().Add(30 * time.Second)
	for _, m := range batch {
		if _, err := tx.Exec(claimCtx, reserveOutboxSQL, m.ID, reservation); err != nil {
			return err
		}
	}
	if err := tx.Commit(claimCtx); err != nil {
		return err
	}

	for _, m := range batch {
		w.publishOne(ctx, m)
	}
	return nil
}

func (w *OutboxWorker) publishOne(ctx context.Context, m outboxRow) {
	log := zlog.With().Str("component", "outbox_worker").Logger()

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := w.pub.PublishMessage(pubCtx, m.RoutingKey, m.MessageID, m.Body)

	resCtx, cancelRes := context.WithTimeout(ctx, 3*time.Second)
	defer cancelRes()

	if err != nil {
		if m.Attempts+1 >= outboxMaxAttempts {
			_, _ = w.pool.Exec(resCtx, markOutboxDeadSQL, m.ID, err.Error())
			log.Error().
				Str("message_id", m.MessageID).
				Str("routing_key", m.RoutingKey).
				Int("attempt", m.Attempts+1).
				Msg("outbox moved to DEAD")
			return
		}

		delay := computeNextRetry(m.Attempts + 1)
		_, _ = w.pool.Exec(resCtx, markOutboxFailedSQL, m.ID, time.Now().UTC().Add(delay), err.Error())
		log.Warn().
			Str("message_id", m.MessageID).
			Str("routing_key", m.RoutingKey).
			Int("attempt", m.Attempts+1).
			Dur("retry_in", delay).
			Msg("outbox publish failed; scheduled retry")
		return
	}

	_, _ = w.pool.Exec(resCtx, markOutboxSentSQL, m.ID, time.Now().UTC())
	log.Info().
		Str("message_id", m.MessageID).
		Str("routing_key", m.RoutingKey).
		Msg("published")
}

// backoff: exponential with jitter, bounded
func computeNextRetry(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	sec := math.Pow(2, float64(attempt))
	if sec < 5 {
		sec = 5
	}
	if sec > 1800 {
		sec = 1800
	}

	d := time.Duration(sec) * time.Second

	// jitter +/-20%
	j := time.Duration(rand.Int63n(int64(d/5))) - d/10
	return d + j
}
