package main

import (
	"fmt"
	"math"
	"time"

	termbox "github.com/nsf/termbox-go"

	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/gameloop"
	"github.com/annelo/rwsim/internal/objects"
	"github.com/annelo/rwsim/internal/render"
	"github.com/annelo/rwsim/internal/state"
)

// Терминал не сообщает об отпускании клавиш, поэтому держим действие
// нажатым ещё holdDuration после последнего повтора.
const holdDuration = 400 * time.Millisecond

// heldKey remembers which mode saw the press so the release reaches it even
// after the stack changed.
type heldKey struct {
	until  time.Time
	target state.State
}

// viewer is a top-down termbox frontend.
type viewer struct {
	events chan termbox.Event
	held   map[state.Action]heldKey
	stats  render.FrameStats
	debug  bool
	// cellsPerUnit scales world units to terminal columns.
	cellsPerUnit float32
}

func newViewer() (*viewer, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("termbox init: %w", err)
	}
	v := &viewer{
		events:       make(chan termbox.Event, 64),
		held:         make(map[state.Action]heldKey),
		cellsPerUnit: 1,
	}
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(v.events)
				return
			}
			v.events <- ev
		}
	}()
	return v, nil
}

func (v *viewer) Close() {
	termbox.Interrupt()
	termbox.Close()
}

var keyActions = map[termbox.Key][]state.Action{
	termbox.KeyArrowUp:    {state.ActionForward},
	termbox.KeyArrowDown:  {state.ActionBackward},
	termbox.KeyArrowLeft:  {state.ActionLeft},
	termbox.KeyArrowRight: {state.ActionRight},
	termbox.KeySpace:      {state.ActionJump, state.ActionHandbrake},
	termbox.KeyEnter:      {state.ActionSelect},
	termbox.KeyEsc:        {state.ActionMenu},
}

var runeActions = map[rune][]state.Action{
	'w': {state.ActionForward},
	's': {state.ActionBackward},
	'a': {state.ActionLeft},
	'd': {state.ActionRight},
	'r': {state.ActionRun},
	'e': {state.ActionEnterExit},
	'f': {state.ActionFire},
}

// PollEvents drains terminal input. It runs on the loop goroutine.
func (v *viewer) PollEvents(l *gameloop.Loop) bool {
	now := time.Now()
drain:
	for {
		select {
		case ev, ok := <-v.events:
			if !ok || !v.handle(l, ev, now) {
				return false
			}
		default:
			break drain
		}
	}

	for a, k := range v.held {
		if now.After(k.until) {
			delete(v.held, a)
			if k.target != nil {
				k.target.HandleAction(a, false)
			}
		}
	}
	return true
}

func (v *viewer) handle(l *gameloop.Loop, ev termbox.Event, now time.Time) bool {
	switch ev.Type {
	case termbox.EventError:
		return false
	case termbox.EventKey:
	default:
		return true
	}
	if ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
		return false
	}

	switch ev.Ch {
	case '[':
		l.World().Clock.AddMinutes(-30)
		return true
	case ']':
		l.World().Clock.AddMinutes(30)
		return true
	case '-':
		l.SetTimeScale(l.TimeScale() * 0.5)
		return true
	case '=', '+':
		l.SetTimeScale(l.TimeScale() * 2)
		return true
	case '`':
		v.debug = !v.debug
		return true
	}

	actions := keyActions[ev.Key]
	if ev.Ch != 0 {
		actions = runeActions[ev.Ch]
	}
	for _, a := range actions {
		k, down := v.held[a]
		if !down {
			k.target = l.States().Top()
			l.States().HandleAction(a, true)
		}
		k.until = now.Add(holdDuration)
		v.held[a] = k
	}
	return true
}

// Render draws the world around the interpolated camera.
func (v *viewer) Render(l *gameloop.Loop, alpha float32, frameTime time.Duration) {
	v.stats.Add(frameTime)
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	width, height := termbox.Size()

	cam := l.ViewCamera(alpha)
	w := l.World()
	project := func(x, y float32) (int, int, bool) {
		sx := width/2 + int(math.Round(float64((x-cam.Position.X())*v.cellsPerUnit)))
		// экранная Y растёт вниз
		sy := height/2 - int(math.Round(float64((y-cam.Position.Y())*v.cellsPerUnit/2)))
		return sx, sy, sx >= 0 && sx < width && sy >= 2 && sy < height-1
	}

	for _, e := range w.Effects() {
		if x, y, ok := project(e.Position.X(), e.Position.Y()); ok {
			termbox.SetCell(x, y, '+', termbox.ColorRed, termbox.ColorDefault)
		}
	}
	for _, obj := range w.Objects.All() {
		pos := obj.Position()
		x, y, ok := project(pos.X(), pos.Y())
		if !ok {
			continue
		}
		ch, fg := '?', termbox.ColorWhite
		switch o := obj.(type) {
		case *objects.CharacterObject:
			if o.Vehicle() != nil {
				continue
			}
			ch, fg = 'p', termbox.ColorWhite
			if o == w.Player() {
				ch, fg = '@', termbox.ColorYellow|termbox.AttrBold
			}
		case *objects.VehicleObject:
			ch, fg = 'V', termbox.ColorCyan
			if o.Info().Type == data.VehicleBoat {
				ch, fg = 'B', termbox.ColorBlue
			}
			if d := o.Driver(); d != nil && d == w.Player() {
				fg |= termbox.AttrBold
			}
		case *objects.PickupObject:
			ch, fg = '*', termbox.ColorGreen
		case *objects.PathNode:
			ch, fg = '.', termbox.ColorDarkGray
		}
		termbox.SetCell(x, y, ch, fg, termbox.ColorDefault)
	}

	s := l.Summary()
	header := fmt.Sprintf("%s  %s  mode=%s  x%.2f", s.Clock, s.Weather, s.State, s.TimeScale)
	drawText(0, 0, width, header, termbox.ColorYellow|termbox.AttrBold)
	for i, text := range w.Texts() {
		drawText(0, 1+i, width, text, termbox.ColorWhite)
	}

	if menu, ok := l.States().Top().(*state.MenuState); ok {
		for i, e := range menu.Entries() {
			fg := termbox.ColorWhite
			label := "  " + e.Label
			if i == menu.Selected() {
				fg = termbox.ColorYellow | termbox.AttrBold
				label = "> " + e.Label
			}
			drawText(width/2-8, height/2+i, width, label, fg)
		}
	}

	if v.debug {
		line := fmt.Sprintf("frame %s avg %s (%.0f fps)  peds %d  cars %d  activity %s",
			v.stats.Last().Round(time.Microsecond), v.stats.Average().Round(time.Microsecond), v.stats.FPS(),
			s.Pedestrians, s.Vehicles, s.PlayerActivity)
		drawText(0, height-1, width, line, termbox.ColorMagenta)
	}
	termbox.Flush()
}

func drawText(x, y, width int, text string, fg termbox.Attribute) {
	for _, r := range text {
		if x >= width {
			return
		}
		termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		x++
	}
}
