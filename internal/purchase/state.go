package purchase

import (
	"errors"
	"fmt"
)

// State is a step of one purchase attempt.
type State string

const (
	Idle                    State = "Idle"
	LoginRequired           State = "LoginRequired"
	EntitlementChecked      State = "EntitlementChecked"
	AlreadyOwned            State = "AlreadyOwned"
	PaymentSessionRequested State = "PaymentSessionRequested"
	PaymentRedirected       State = "PaymentRedirected"
	PaymentFailed           State = "PaymentFailed"
	Returned                State = "Returned"
	PaymentPending          State = "PaymentPending"
	RecordPersisted         State = "RecordPersisted"
	FinalizeFailed          State = "FinalizeFailed"
)

var ErrInvalidTransition = errors.New("invalid purchase transition")

var transitions = map[State][]State{
	Idle:                    {LoginRequired, EntitlementChecked, Returned},
	EntitlementChecked:      {AlreadyOwned, PaymentSessionRequested, RecordPersisted, FinalizeFailed},
	PaymentSessionRequested: {PaymentRedirected, PaymentFailed},
	Returned:                {PaymentPending, RecordPersisted, FinalizeFailed},
	RecordPersisted:         {Idle},
}

// Terminal reports whether s ends an attempt's request.
func (s State) Terminal() bool {
	switch s {
	case LoginRequired, AlreadyOwned, PaymentRedirected, PaymentFailed, PaymentPending, RecordPersisted, FinalizeFailed:
		return true
	}
	return false
}

// machine tracks one attempt. It is not safe for concurrent use; each
// request builds its own.
type machine struct {
	state   State
	history []State
}

func newMachine() *machine {
	return &machine{state: Idle, history: []State{Idle}}
}

func (m *machine) to(next State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			m.state = next
			m.history = append(m.history, next)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, next)
}
