package worker

import (
	"github.com/spec-kit/voting-service/internal/events"
	"github.com/spec-kit/voting-service/internal/service"
)

// tallyEvents change vote counts or the candidate set.
var tallyEvents = []events.EventType{
	events.EventVoteCast,
	events.EventCandidateCreated,
	events.EventCandidateUpdated,
	events.EventCandidateDeleted,
}

// StartEventWorker registers the audit log and tally cache invalidation handlers.
func StartEventWorker(dispatcher events.Dispatcher, audit *service.AuditService, voting *service.VotingService) {
	if dispatcher == nil {
		return
	}
	if audit != nil {
		audit.RegisterHandlers()
	}
	if voting != nil {
		for _, eventType := range tallyEvents {
			dispatcher.Subscribe(eventType, voting.InvalidateTally)
		}
	}
}
