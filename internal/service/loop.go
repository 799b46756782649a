package service

import (
	"context"

	"github.com/annelo/rwsim/internal/gameloop"
)

// Start subscribes to the loop's event bus and fans events out until ctx is
// done or Stop is called.
func (s *InspectorService) Start(ctx context.Context) {
	events, cancel := s.loop.Events().Subscribe(sendQueueSize)
	s.mu.Lock()
	s.unsubscribe = cancel
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		cancel()
	}()
	go s.processWorldEvents(events)
}

// processWorldEvents receives loop events and broadcasts them to watchers.
func (s *InspectorService) processWorldEvents(events <-chan gameloop.WorldEvent) {
	for event := range events {
		s.broadcastWorldEvent(event)
	}
}
