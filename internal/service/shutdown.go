package service

import (
	"github.com/annelo/rwsim/internal/gameloop"
)

// Stop stops event fan-out and disconnects all watchers.
func (s *InspectorService) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.DisconnectAllWatchers()
}

// DisconnectAllWatchers sends a shutdown event to every watcher and closes them.
func (s *InspectorService) DisconnectAllWatchers() {
	shutdown := gameloop.WorldEvent{
		Type:     gameloop.EventShutdown,
		GameTime: s.loop.Summary().GameTime,
		Message:  "Server is shutting down",
	}
	msg, err := eventToStruct(shutdown)
	if err != nil {
		s.logger.Errorf("Failed to encode shutdown event: %v", err)
	}

	s.mu.Lock()
	count := len(s.watchers)
	for id, w := range s.watchers {
		if msg != nil {
			w.send(shutdown.Type, msg)
		}
		close(w.closed)
		delete(s.watchers, id)
		watchersConnected.Add(-1)
	}
	s.stopped = true
	s.mu.Unlock()

	s.logger.Infof("Disconnected %d watchers", count)
}
