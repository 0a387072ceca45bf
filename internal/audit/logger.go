package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appctx "github.com/avoronov/eventhub/internal/pkg/context"
	"github.com/avoronov/eventhub/internal/domain"
)

// Logger provides structured audit logging for admission decisions.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Bool("audit", true).Logger()}
}

// RequestCreated logs a new participation request and the status it was
// born with.
func (l *Logger) RequestCreated(ctx context.Context, eventID, requesterID uuid.UUID, status domain.ParticipationStatus) {
	l.log.Info().
		Str("action", "request_created").
		Str("event_id", eventID.String()).
		Str("requester_id", requesterID.String()).
		Str("status", string(status)).
		Str("request_id", appctx.RequestID(ctx)).
		Msg("participation request created")
}

// RequestCanceled logs a requester canceling their own request.
func (l *Logger) RequestCanceled(ctx context.Context, requestID, requesterID uuid.UUID) {
	l.log.Info().
		Str("action", "request_canceled").
		Str("participation_id", requestID.String()).
		Str("requester_id", requesterID.String()).
		Str("request_id", appctx.RequestID(ctx)).
		Msg("participation request canceled")
}

// BatchDecided logs the outcome of a batch adjudication.
func (l *Logger) BatchDecided(ctx context.Context, eventID, initiatorID uuid.UUID, confirmed, rejected int) {
	l.log.Info().
		Str("action", "batch_decided").
		Str("event_id", eventID.String()).
		Str("initiator_id", initiatorID.String()).
		Int("confirmed", confirmed).
		Int("rejected", rejected).
		Str("request_id", appctx.RequestID(ctx)).
		Msg("participation requests adjudicated")
}
