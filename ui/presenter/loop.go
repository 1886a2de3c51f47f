package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback so the
// UI toolkit can re-arm the timer on its own event-loop thread. The zero
// value is usable (methods are nil-safe).
type Loop struct {
	State    *StatePresenter
	Schedule func()
}

func NewLoop(state *StatePresenter, schedule func()) *Loop {
	return &Loop{State: state, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
