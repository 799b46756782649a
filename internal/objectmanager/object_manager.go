package objectmanager

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ID is a handle to a live object. Holding an ID never keeps the object alive.
type ID string

// NewID returns a fresh random handle.
func NewID() ID {
	return ID(uuid.New().String())
}

// Kind classifies game objects.
type Kind int

const (
	KindCharacter Kind = iota
	KindVehicle
	KindPickup
	KindPathNode
)

// ErrNotFound is returned when a handle no longer refers to a live object.
var ErrNotFound = errors.New("object not found")

// GameObject is anything the world ticks once per simulation step.
type GameObject interface {
	ID() ID
	Kind() Kind
	Position() mgl32.Vec3
	Tick(dt float32)
}

// ObjectManager keeps the live objects in insertion order.
type ObjectManager struct {
	objects map[ID]GameObject
	order   []ID
	mu      sync.RWMutex
}

// NewObjectManager создает пустой реестр объектов
func NewObjectManager() *ObjectManager {
	return &ObjectManager{
		objects: make(map[ID]GameObject),
	}
}

// Add registers obj. Adding the same id twice is an error.
func (om *ObjectManager) Add(obj GameObject) error {
	om.mu.Lock()
	defer om.mu.Unlock()

	id := obj.ID()
	if _, exists := om.objects[id]; exists {
		return fmt.Errorf("object %s already registered", id)
	}
	om.objects[id] = obj
	om.order = append(om.order, id)
	return nil
}

// Get resolves a handle.
func (om *ObjectManager) Get(id ID) (GameObject, error) {
	om.mu.RLock()
	defer om.mu.RUnlock()

	obj, exists := om.objects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return obj, nil
}

// Remove unregisters the object behind id.
func (om *ObjectManager) Remove(id ID) error {
	om.mu.Lock()
	defer om.mu.Unlock()

	if _, exists := om.objects[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(om.objects, id)
	for i, other := range om.order {
		if other == id {
			om.order = append(om.order[:i], om.order[i+1:]...)
			break
		}
	}
	return nil
}

// All returns the live objects in insertion order.
func (om *ObjectManager) All() []GameObject {
	om.mu.RLock()
	defer om.mu.RUnlock()

	objects := make([]GameObject, 0, len(om.order))
	for _, id := range om.order {
		objects = append(objects, om.objects[id])
	}
	return objects
}

// Len returns the number of live objects.
func (om *ObjectManager) Len() int {
	om.mu.RLock()
	defer om.mu.RUnlock()
	return len(om.order)
}

// Count returns the number of live objects of the given kind.
func (om *ObjectManager) Count(kind Kind) int {
	om.mu.RLock()
	defer om.mu.RUnlock()

	n := 0
	for _, obj := range om.objects {
		if obj.Kind() == kind {
			n++
		}
	}
	return n
}
