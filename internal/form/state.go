package form

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a form.
type State int

const (
	// Loading is only entered by edit forms while the existing entity loads.
	Loading State = iota
	Ready
	Submitting
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid form state transition")

// Machine tracks one form through Loading -> Ready -> Submitting ->
// Success | Failed. A failed form keeps its message and may be submitted
// again.
type Machine struct {
	state   State
	message string
}

// NewMachine starts in Loading for edit forms and in Ready otherwise.
func NewMachine(edit bool) *Machine {
	if edit {
		return &Machine{state: Loading}
	}
	return &Machine{state: Ready}
}

func (m *Machine) State() State {
	return m.state
}

// Message is the error shown after a failed load or submission.
func (m *Machine) Message() string {
	return m.message
}

// Busy reports whether the submit control should be disabled.
func (m *Machine) Busy() bool {
	return m.state == Loading || m.state == Submitting
}

func (m *Machine) Loaded() error {
	return m.move(Ready, "", Loading)
}

// Submit starts a submission. It is refused while one is in flight.
func (m *Machine) Submit() error {
	return m.move(Submitting, "", Ready, Failed)
}

func (m *Machine) Succeed() error {
	return m.move(Success, "", Submitting)
}

// Fail records msg after a failed load or submission.
func (m *Machine) Fail(msg string) error {
	return m.move(Failed, msg, Loading, Submitting)
}

// Reject keeps a ready form ready and shows msg. It is used when
// validation fails before anything is sent.
func (m *Machine) Reject(msg string) error {
	return m.move(Ready, msg, Ready, Failed)
}

func (m *Machine) move(to State, msg string, from ...State) error {
	for _, s := range from {
		if m.state == s {
			m.state = to
			m.message = msg
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, to)
}
