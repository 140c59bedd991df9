package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/voting-service/internal/events"
)

// publish emits an event when a dispatcher is configured. Subscribers log
// their own failures, so the joined error is dropped here.
func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

// validID reports whether id can name a stored record.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
