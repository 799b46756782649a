package service

import (
	"expvar"
	"sync"

	"go.uber.org/zap"

	"github.com/annelo/rwsim/internal/gameloop"
	"github.com/annelo/rwsim/internal/plugin"
)

// InspectorService представляет собой реализацию gRPC сервиса наблюдения за симуляцией
type InspectorService struct {
	logger   *zap.SugaredLogger
	loop     *gameloop.Loop
	registry *plugin.DefaultRegistry

	// Мьютекс для синхронизации доступа к карте наблюдателей
	mu          sync.RWMutex
	watchers    map[string]*watcher
	stopped     bool
	unsubscribe func()
}

const (
	// sendQueueSize is the maximum number of events queued per watcher.
	sendQueueSize = 256
)

var (
	watchersConnected = expvar.NewInt("inspector_watchers")
	eventsSkipped     = expvar.NewInt("inspector_events_dropped")
	commandsRun       = expvar.NewInt("inspector_commands")
)

// NewInspectorService создает новый экземпляр сервиса поверх запущенного цикла.
// Commands are looked up in reg.
func NewInspectorService(loop *gameloop.Loop, reg *plugin.DefaultRegistry, logger *zap.SugaredLogger) *InspectorService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if reg == nil {
		reg = plugin.NewDefaultRegistry()
	}
	return &InspectorService{
		logger:   logger,
		loop:     loop,
		registry: reg,
		watchers: make(map[string]*watcher),
	}
}

// Watchers returns the number of connected event streams.
func (s *InspectorService) Watchers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

func (s *InspectorService) addWatcher(w *watcher) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.watchers[w.id] = w
	watchersConnected.Add(1)
	return true
}

func (s *InspectorService) removeWatcher(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.watchers[id]; ok {
		delete(s.watchers, id)
		watchersConnected.Add(-1)
	}
}
