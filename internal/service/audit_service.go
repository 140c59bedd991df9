package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/voting-service/internal/events"
)

// AuditService writes every domain event to the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventIdentityRegistered,
		events.EventPasswordChanged,
		events.EventVoteCast,
		events.EventCandidateCreated,
		events.EventCandidateUpdated,
		events.EventCandidateDeleted,
	} {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("actor_id", event.ActorID),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.CandidateID != "" {
		fields = append(fields, zap.String("candidate_id", event.CandidateID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}
