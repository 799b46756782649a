package ai

// Activity is one unit of character behaviour that runs over several ticks
// until it reports completion. The set of activities is closed: GoTo, Jump,
// EnterVehicle, ExitVehicle and ShootWeapon.
type Activity interface {
	Name() string
	update(character Character, controller *CharacterController) bool
}

// updateActivity runs one tick of a and reports whether it finished.
func updateActivity(a Activity, character Character, controller *CharacterController) bool {
	switch a := a.(type) {
	case *GoTo:
		return a.update(character, controller)
	case *Jump:
		return a.update(character, controller)
	case *EnterVehicle:
		return a.update(character, controller)
	case *ExitVehicle:
		return a.update(character, controller)
	case *ShootWeapon:
		return a.update(character, controller)
	default:
		return true
	}
}

// ActivityQueue holds the running activity and at most one pending one.
type ActivityQueue struct {
	current Activity
	next    Activity
}

// Current returns the running activity or nil.
func (q *ActivityQueue) Current() Activity {
	return q.current
}

// Next returns the pending activity or nil.
func (q *ActivityQueue) Next() Activity {
	return q.next
}

// Set replaces the running activity. The pending slot is untouched.
func (q *ActivityQueue) Set(a Activity) {
	q.current = a
}

// SetNext starts a immediately when idle, otherwise it replaces whatever
// was pending.
func (q *ActivityQueue) SetNext(a Activity) {
	if q.current == nil {
		q.current = a
		q.next = nil
		return
	}
	q.next = a
}

// Finish retires the running activity and promotes the pending one.
// It returns the retired activity.
func (q *ActivityQueue) Finish() Activity {
	done := q.current
	q.current = q.next
	q.next = nil
	return done
}
