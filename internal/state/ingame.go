package state

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/ai"
	"github.com/annelo/rwsim/internal/objects"
	"github.com/annelo/rwsim/internal/render"
	"github.com/annelo/rwsim/internal/world"
)

const (
	cameraDistance   = 6.0
	cameraHeight     = 3.0
	cameraFollowRate = 4.0

	// enterVehicleRange is how far the player looks for a car to get into.
	enterVehicleRange = 10.0
)

var up = mgl32.Vec3{0, 0, 1}

// IngameState drives the player from input and follows them with the camera.
type IngameState struct {
	world   *world.GameWorld
	manager *Manager
	input   Input

	firing    bool
	camera    render.ViewCamera
	cameraYaw float32
}

// NewIngameState creates the play mode. manager may be nil, which disables
// the pause menu.
func NewIngameState(w *world.GameWorld, manager *Manager) *IngameState {
	return &IngameState{
		world:   w,
		manager: manager,
		camera:  render.NewViewCamera(mgl32.Vec3{}),
	}
}

func (s *IngameState) Name() string { return "ingame" }

func (s *IngameState) Enter() {
	if p := s.world.Player(); p != nil {
		s.cameraYaw = p.Heading()
		s.camera = s.followCamera(p)
	}
	s.world.Logger().Debugw("[State] entered", "state", s.Name())
}

func (s *IngameState) Exit() {
	if s.firing {
		if p := s.world.Player(); p != nil {
			p.Controller().UseItem(false, true)
		}
		s.firing = false
	}
}

func (s *IngameState) ShouldWorldUpdate() bool { return true }

func (s *IngameState) Camera() render.ViewCamera { return s.camera }

func (s *IngameState) HandleAction(a Action, down bool) {
	s.input.Set(a, down)
}

func (s *IngameState) Tick(dt float32) {
	if s.input.Pressed(ActionMenu) && s.manager != nil {
		s.manager.Push(s.pauseMenu())
		return
	}

	player := s.world.Player()
	if player == nil {
		return
	}
	ctrl := player.Controller()

	if v := player.Vehicle(); v != nil {
		ctrl.SetRawMovement(mgl32.Vec3{
			s.input.Axis(ActionForward, ActionBackward),
			s.input.Axis(ActionLeft, ActionRight),
			0,
		})
		if s.input.Held(ActionHandbrake) {
			v.SetHandbraking(true)
		}
		if s.input.Pressed(ActionEnterExit) {
			ctrl.SetNextActivity(&ai.ExitVehicle{})
		}
	} else {
		forward := s.input.Axis(ActionForward, ActionBackward)
		strafe := s.input.Axis(ActionRight, ActionLeft)
		if forward != 0 || strafe != 0 {
			// движение относительно камеры
			dir := mgl32.QuatRotate(s.cameraYaw, up).Rotate(mgl32.Vec3{strafe, forward, 0})
			player.SetHeading(float32(math.Atan2(float64(dir.Y()), float64(dir.X())) - math.Pi/2))
			ctrl.SetRawMovement(mgl32.Vec3{1, 0, 0})
		}
		ctrl.SetRunning(s.input.Held(ActionRun))

		if s.input.Pressed(ActionJump) && ctrl.CurrentActivity() == nil {
			ctrl.SetNextActivity(&ai.Jump{})
		}
		if s.input.Pressed(ActionEnterExit) {
			if v := s.nearestVehicle(player.Position()); v != nil {
				ctrl.SetNextActivity(ai.NewEnterVehicle(v, 0))
			}
		}
	}

	if fire := s.input.Held(ActionFire); fire != s.firing {
		ctrl.UseItem(fire, true)
		s.firing = fire
	}

	s.updateCamera(player, dt)
}

func (s *IngameState) nearestVehicle(pos mgl32.Vec3) *objects.VehicleObject {
	var best *objects.VehicleObject
	bestDist := float32(enterVehicleRange)
	for _, v := range s.world.Vehicles() {
		if d := v.Position().Sub(pos).Len(); d <= bestDist {
			best, bestDist = v, d
		}
	}
	return best
}

func (s *IngameState) updateCamera(player *objects.CharacterObject, dt float32) {
	diff := wrapAngle(player.Heading() - s.cameraYaw)
	s.cameraYaw = wrapAngle(s.cameraYaw + diff*mgl32.Clamp(cameraFollowRate*dt, 0, 1))
	s.camera = s.followCamera(player)
}

func (s *IngameState) followCamera(player *objects.CharacterObject) render.ViewCamera {
	target := player.Position()
	if v := player.Vehicle(); v != nil {
		target = v.Position()
	}
	rot := mgl32.QuatRotate(s.cameraYaw, up)
	back := rot.Rotate(mgl32.Vec3{0, 1, 0}).Mul(-cameraDistance)
	return render.ViewCamera{
		Position: target.Add(back).Add(mgl32.Vec3{0, 0, cameraHeight}),
		Rotation: rot,
	}
}

func (s *IngameState) pauseMenu() *MenuState {
	return NewMenuState("Paused", s.camera,
		MenuEntry{Label: "Resume", Activate: func() { s.manager.Pop() }},
		MenuEntry{Label: "Quit", Activate: func() { s.manager.Clear() }},
	)
}

func wrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
