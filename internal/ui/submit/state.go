package submit

import "sync"

// State is the in-flight guard owned by a single binding. At most one request
// per binding is outstanding; Begin is the only way to claim the slot.
type State struct {
	mu         sync.Mutex
	inFlight   bool
	lastAction string
	hasAction  bool
}

// Begin claims the in-flight slot for action. It returns false, changing
// nothing, when a request is already outstanding.
func (s *State) Begin(action string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	s.lastAction = action
	s.hasAction = action != ""
	return true
}

// End releases the in-flight slot.
func (s *State) End() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// InFlight reports whether a request is outstanding.
func (s *State) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastAction returns the action of the most recent accepted submission.
func (s *State) LastAction() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAction, s.hasAction
}
