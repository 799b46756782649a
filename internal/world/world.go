// Package world отвечает за инициализацию и связывание компонентов игрового мира
package world

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/annelo/rwsim/internal/anim"
	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/objectmanager"
	"github.com/annelo/rwsim/internal/objects"
	"github.com/annelo/rwsim/internal/physics"
	"github.com/annelo/rwsim/internal/render"
)

const (
	// ModelPlayer and ModelPedestrian name the character models.
	ModelPlayer     = "player"
	ModelPedestrian = "ped"

	muzzleFlashLifetime = 0.1
)

// ErrUnknownModel is returned when the catalog has no such vehicle.
var ErrUnknownModel = errors.New("unknown model")

// ErrUnknownWeapon is returned when the catalog has no such weapon.
var ErrUnknownWeapon = errors.New("unknown weapon")

// destroyer is implemented by objects that hold physics resources.
type destroyer interface {
	Destroy()
}

// GameWorld представляет полный игровой мир
type GameWorld struct {
	Catalog *data.Catalog
	Objects *objectmanager.ObjectManager
	Physics *physics.World
	Clock   *Clock
	Weather Weather

	anims  *anim.Set
	logger *zap.SugaredLogger

	player       objectmanager.ID
	ambient      map[objectmanager.ID]bool
	destroyQueue []objectmanager.ID

	effects       []*Effect
	texts         []*Text
	tickTexts     []string
	shotsThisStep int

	fixedCamera  *render.ViewCamera
	cutscene     *render.CameraTrack
	cutsceneTime float32
}

// NewGameWorld создает пустой мир поверх каталога
func NewGameWorld(catalog *data.Catalog, logger *zap.SugaredLogger) *GameWorld {
	if catalog == nil {
		catalog = data.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &GameWorld{
		Catalog: catalog,
		Objects: objectmanager.NewObjectManager(),
		Physics: physics.NewWorld(),
		Clock:   NewClock(12, 0),
		anims:   anim.NewSet(anim.NewLibrary(catalog.Clips)),
		logger:  logger,
		ambient: make(map[objectmanager.ID]bool),
	}
}

// Animations returns the pedestrian clip set.
func (w *GameWorld) Animations() *anim.Set {
	return w.anims
}

func (w *GameWorld) Logger() *zap.SugaredLogger {
	return w.logger
}

// CreatePedestrian spawns a pedestrian at pos facing heading radians.
func (w *GameWorld) CreatePedestrian(pos mgl32.Vec3, heading float32) (*objects.CharacterObject, error) {
	c := objects.NewCharacter(w.Physics, w.Objects, w.anims, pos)
	c.Model = ModelPedestrian
	c.SetHeading(heading)
	if err := w.Objects.Add(c); err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// CreatePlayer spawns the player character. An existing player is replaced.
func (w *GameWorld) CreatePlayer(pos mgl32.Vec3, heading float32) (*objects.CharacterObject, error) {
	if old := w.Player(); old != nil {
		w.destroyNow(old.ID())
	}
	c, err := w.CreatePedestrian(pos, heading)
	if err != nil {
		return nil, err
	}
	c.Model = ModelPlayer
	w.player = c.ID()
	return c, nil
}

// Player returns the player character or nil.
func (w *GameWorld) Player() *objects.CharacterObject {
	if w.player == "" {
		return nil
	}
	c, err := w.FindCharacter(w.player)
	if err != nil {
		return nil
	}
	return c
}

// CreateVehicle spawns model at pos facing heading radians.
func (w *GameWorld) CreateVehicle(model string, pos mgl32.Vec3, heading float32) (*objects.VehicleObject, error) {
	info, ok := w.Catalog.Vehicle(model)
	if !ok {
		w.logger.Warnw("[World] vehicle model missing from catalog", "model", model)
		return nil, fmt.Errorf("create vehicle %q: %w", model, ErrUnknownModel)
	}
	v := objects.NewVehicle(w.Physics, info, pos, mgl32.QuatRotate(heading, mgl32.Vec3{0, 0, 1}))
	if err := w.Objects.Add(v); err != nil {
		v.Destroy()
		return nil, err
	}
	return v, nil
}

// CreatePickup places a weapon pickup.
func (w *GameWorld) CreatePickup(weapon string, pos mgl32.Vec3) (*objects.PickupObject, error) {
	wd, ok := w.Catalog.Weapon(weapon)
	if !ok {
		return nil, fmt.Errorf("create pickup %q: %w", weapon, ErrUnknownWeapon)
	}
	p := objects.NewPickup(w.Objects, wd, pos)
	if err := w.Objects.Add(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePathNode adds a named waypoint.
func (w *GameWorld) CreatePathNode(name string, pos mgl32.Vec3) (*objects.PathNode, error) {
	n := objects.NewPathNode(name, pos)
	if err := w.Objects.Add(n); err != nil {
		return nil, err
	}
	return n, nil
}

// FindPathNode looks a waypoint up by name.
func (w *GameWorld) FindPathNode(name string) (*objects.PathNode, bool) {
	for _, obj := range w.Objects.All() {
		if n, ok := obj.(*objects.PathNode); ok && n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// GiveWeapon hands a catalog weapon to c and wires its muzzle flash.
func (w *GameWorld) GiveWeapon(c *objects.CharacterObject, weapon string) (*objects.WeaponItem, error) {
	wd, ok := w.Catalog.Weapon(weapon)
	if !ok {
		return nil, fmt.Errorf("give weapon %q: %w", weapon, ErrUnknownWeapon)
	}
	item := c.GiveWeapon(wd)
	item.OnFire(w.weaponFired)
	return item, nil
}

func (w *GameWorld) weaponFired(item *objects.WeaponItem) {
	w.shotsThisStep++
	owner := item.Owner()
	if owner == nil {
		return
	}
	w.AddEffect("muzzle_flash", owner.Position(), muzzleFlashLifetime)
}

// ShotsThisStep counts rounds fired since the last ClearTickData.
func (w *GameWorld) ShotsThisStep() int {
	return w.shotsThisStep
}

// FindCharacter resolves a character handle.
func (w *GameWorld) FindCharacter(id objectmanager.ID) (*objects.CharacterObject, error) {
	obj, err := w.Objects.Get(id)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*objects.CharacterObject)
	if !ok {
		return nil, fmt.Errorf("object %s is not a character", id)
	}
	return c, nil
}

// FindVehicle resolves a vehicle handle.
func (w *GameWorld) FindVehicle(id objectmanager.ID) (*objects.VehicleObject, error) {
	obj, err := w.Objects.Get(id)
	if err != nil {
		return nil, err
	}
	v, ok := obj.(*objects.VehicleObject)
	if !ok {
		return nil, fmt.Errorf("object %s is not a vehicle", id)
	}
	return v, nil
}

// Characters returns the live characters in insertion order.
func (w *GameWorld) Characters() []*objects.CharacterObject {
	var out []*objects.CharacterObject
	for _, obj := range w.Objects.All() {
		if c, ok := obj.(*objects.CharacterObject); ok {
			out = append(out, c)
		}
	}
	return out
}

// Vehicles returns the live vehicles in insertion order.
func (w *GameWorld) Vehicles() []*objects.VehicleObject {
	var out []*objects.VehicleObject
	for _, obj := range w.Objects.All() {
		if v, ok := obj.(*objects.VehicleObject); ok {
			out = append(out, v)
		}
	}
	return out
}

// DestroyObject queues id for removal at the end of the object tick.
func (w *GameWorld) DestroyObject(id objectmanager.ID) {
	for _, queued := range w.destroyQueue {
		if queued == id {
			return
		}
	}
	w.destroyQueue = append(w.destroyQueue, id)
}

// DestroyQueued removes every queued object and returns how many were live.
func (w *GameWorld) DestroyQueued() int {
	n := 0
	for _, id := range w.destroyQueue {
		if w.destroyNow(id) {
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

func (w *GameWorld) destroyNow(id objectmanager.ID) bool {
	obj, err := w.Objects.Get(id)
	if err != nil {
		return false
	}
	if d, ok := obj.(destroyer); ok {
		d.Destroy()
	}
	_ = w.Objects.Remove(id)
	delete(w.ambient, id)
	if id == w.player {
		w.player = ""
	}
	return true
}

// Clear removes every object immediately.
func (w *GameWorld) Clear() {
	for _, obj := range w.Objects.All() {
		w.destroyNow(obj.ID())
	}
	w.destroyQueue = w.destroyQueue[:0]
	w.effects = nil
	w.texts = nil
	w.tickTexts = nil
}

// TickObjects ticks every object in insertion order, then removes collected
// pickups and queued objects.
func (w *GameWorld) TickObjects(dt float32) {
	for _, obj := range w.Objects.All() {
		obj.Tick(dt)
		if p, ok := obj.(*objects.PickupObject); ok && p.Collected() {
			w.DestroyObject(p.ID())
		}
	}
	w.DestroyQueued()
	w.ExpireTexts(dt)
}

// StepPhysics advances the physics world by dt.
func (w *GameWorld) StepPhysics(dt float32) {
	w.Physics.StepSimulation(dt, 2, dt)
}

// SetFixedCamera pins the view; nil releases it.
func (w *GameWorld) SetFixedCamera(cam *render.ViewCamera) {
	w.fixedCamera = cam
}

// StartCutscene plays track from its beginning.
func (w *GameWorld) StartCutscene(track *render.CameraTrack) {
	w.cutscene = track
	w.cutsceneTime = 0
}

// StopCutscene ends the running cutscene, if any.
func (w *GameWorld) StopCutscene() {
	w.cutscene = nil
	w.cutsceneTime = 0
}

// InCutscene reports whether a cutscene is running.
func (w *GameWorld) InCutscene() bool {
	return w.cutscene != nil
}

// AdvanceCutscene moves the cutscene clock. The cutscene ends once its
// time passes the track duration.
func (w *GameWorld) AdvanceCutscene(dt float32) {
	if w.cutscene == nil {
		return
	}
	w.cutsceneTime += dt
	if w.cutsceneTime > w.cutscene.Duration() {
		w.logger.Debugw("[World] cutscene finished", "duration", w.cutscene.Duration())
		w.StopCutscene()
	}
}

// CameraOverrides returns the overrides for render.ResolveCamera.
func (w *GameWorld) CameraOverrides() render.Overrides {
	return render.Overrides{
		Cutscene:     w.cutscene,
		CutsceneTime: w.cutsceneTime,
		Fixed:        w.fixedCamera,
	}
}
