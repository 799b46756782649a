package service

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/annelo/rwsim/internal/gameloop"
)

// watcher represents one WatchEvents stream with priority queues.
type watcher struct {
	id          string
	highQueue   chan *structpb.Struct // failures and shutdown
	normalQueue chan *structpb.Struct
	closed      chan struct{}
}

func newWatcher() *watcher {
	return &watcher{
		id:          uuid.NewString(),
		highQueue:   make(chan *structpb.Struct, sendQueueSize),
		normalQueue: make(chan *structpb.Struct, sendQueueSize),
		closed:      make(chan struct{}),
	}
}

func isHighPriority(t gameloop.EventType) bool {
	switch t {
	case gameloop.EventSystemFailed, gameloop.EventShutdown:
		return true
	}
	return false
}

// send enqueues msg; on overflow the message is dropped.
func (w *watcher) send(t gameloop.EventType, msg *structpb.Struct) {
	q := w.normalQueue
	if isHighPriority(t) {
		q = w.highQueue
	}
	select {
	case q <- msg:
	default:
		eventsSkipped.Add(1)
	}
}

// next blocks until a message is ready. High priority messages go first and
// are still delivered after close.
func (w *watcher) next(ctx context.Context) (*structpb.Struct, bool) {
	select {
	case msg := <-w.highQueue:
		return msg, true
	default:
	}
	select {
	case msg := <-w.highQueue:
		return msg, true
	case msg := <-w.normalQueue:
		return msg, true
	case <-w.closed:
		select {
		case msg := <-w.highQueue:
			return msg, true
		default:
			return nil, false
		}
	case <-ctx.Done():
		return nil, false
	}
}
