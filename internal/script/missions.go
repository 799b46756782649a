package script

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annelo/rwsim/internal/objects"
	"github.com/annelo/rwsim/internal/render"
	"github.com/annelo/rwsim/internal/world"
)

// ErrNoPlayer is raised by missions that need a player character.
var ErrNoPlayer = errors.New("mission needs a player")

const (
	introPickupWeapon = "colt45"
	// IntroPickupNode names the path node the companion waits at, beside
	// the intro pickup.
	IntroPickupNode = "intro_pickup"

	introOverview = time.Second
	introTrackLen = 2 * time.Second
)

// introTrack pans from high behind the player down towards the pickup.
func introTrack(player *objects.CharacterObject) *render.CameraTrack {
	rot := player.Rotation()
	at := func(offset mgl32.Vec3) render.ViewCamera {
		return render.ViewCamera{Position: player.Position().Add(rot.Rotate(offset)), Rotation: rot}
	}
	return render.NewCameraTrack(
		render.Keyframe{Time: 0, Camera: at(mgl32.Vec3{0, -8, 6})},
		render.Keyframe{Time: float32(introTrackLen.Seconds()), Camera: at(mgl32.Vec3{0, -2, 1.5})},
	)
}

// IntroMission greets the player, drops a pistol in front of them and waits
// until it is picked up. The pickup is shown from a fixed camera and then a
// short cutscene; a companion walks to it and then follows the player.
func IntroMission(w *world.GameWorld) Routine {
	return func(t *Thread) error {
		player := w.Player()
		if player == nil {
			return ErrNoPlayer
		}

		switch t.Vars["phase"] {
		case nil:
			w.ShowText("intro", "Welcome to Liberty", 3)
			pos := player.Position().Add(player.Rotation().Rotate(mgl32.Vec3{0, 3, 0}))
			if _, err := w.CreatePickup(introPickupWeapon, pos); err != nil {
				return err
			}
			// Напарник ждёт сбоку, чтобы не подобрать пистолет сам
			beside := pos.Add(player.Rotation().Rotate(mgl32.Vec3{2.5, 0, 0}))
			if _, err := w.CreatePathNode(IntroPickupNode, beside); err != nil {
				return err
			}
			t.Vars["marker"] = w.AddEffect("marker", pos, world.PermanentEffect)

			overview := render.ViewCamera{
				Position: pos.Add(mgl32.Vec3{0, 0, 10}),
				Rotation: mgl32.QuatRotate(-mgl32.DegToRad(90), mgl32.Vec3{1, 0, 0}),
			}
			w.SetFixedCamera(&overview)
			t.Vars["phase"] = "overview"
			t.Wait(introOverview)

		case "overview":
			w.SetFixedCamera(nil)
			w.StartCutscene(introTrack(player))
			t.Vars["phase"] = "cutscene"
			t.Wait(introTrackLen)

		case "cutscene":
			w.StopCutscene()
			buddy, err := w.CreatePedestrian(player.Position().Add(mgl32.Vec3{1.5, 0, 0}), 0)
			if err != nil {
				return err
			}
			if node, ok := w.FindPathNode(IntroPickupNode); ok {
				buddy.Controller().SetTargetNode(node.ID())
			}
			t.Vars["buddy"] = buddy
			t.Vars["phase"] = "pickup"
			t.Wait(500 * time.Millisecond)

		case "pickup":
			for _, item := range player.Inventory() {
				if item.WeaponData().Name != introPickupWeapon {
					continue
				}
				if marker, ok := t.Vars["marker"].(*world.Effect); ok {
					w.RemoveEffect(marker)
				}
				// Дальше напарник ходит за игроком
				if buddy, ok := t.Vars["buddy"].(*objects.CharacterObject); ok {
					buddy.Controller().SetLeader(player.ID())
				}
				w.ShowText("intro", "Hold fire to shoot", 3)
				t.End()
				return nil
			}
			t.Wait(500 * time.Millisecond)
		}
		return nil
	}
}
