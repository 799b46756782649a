package state

// Action is a player input independent of the physical key.
type Action int

const (
	ActionForward Action = iota
	ActionBackward
	ActionLeft
	ActionRight
	ActionRun
	ActionJump
	ActionEnterExit
	ActionFire
	ActionHandbrake
	ActionMenu
	ActionSelect
	actionCount
)

var actionNames = [actionCount]string{
	"forward", "backward", "left", "right", "run", "jump",
	"enter_exit", "fire", "handbrake", "menu", "select",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

// Input tracks held actions and reports presses once.
type Input struct {
	held    [actionCount]bool
	pressed [actionCount]bool
}

// Set records a key transition.
func (in *Input) Set(a Action, down bool) {
	if a < 0 || a >= actionCount {
		return
	}
	if down && !in.held[a] {
		in.pressed[a] = true
	}
	in.held[a] = down
}

// Held reports whether a is down.
func (in *Input) Held(a Action) bool {
	return a >= 0 && a < actionCount && in.held[a]
}

// Pressed reports and consumes a press of a.
func (in *Input) Pressed(a Action) bool {
	if a < 0 || a >= actionCount || !in.pressed[a] {
		return false
	}
	in.pressed[a] = false
	return true
}

// Axis returns +1, -1 or 0 from two opposing actions.
func (in *Input) Axis(pos, neg Action) float32 {
	var v float32
	if in.Held(pos) {
		v++
	}
	if in.Held(neg) {
		v--
	}
	return v
}
