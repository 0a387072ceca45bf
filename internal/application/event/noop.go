package event

import "context"

// NoopPublisher is wired when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return nil
}

// NoopStats is wired when no stats service is configured.
type NoopStats struct{}

func (NoopStats) RecordHit(ctx context.Context, uri, ip string) error { return nil }

func (NoopStats) Views(ctx context.Context, uri string) (int64, error) { return 0, nil }
