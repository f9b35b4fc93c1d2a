package content

import "fmt"

// Transitions maps a status to the statuses it may move to.
type Transitions map[string][]string

// Allows reports whether from -> to is permitted. Staying put is always allowed.
func (t Transitions) Allows(from, to string) bool {
	if from == to {
		return t.Known(to)
	}
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (t Transitions) Known(status string) bool {
	if _, ok := t[status]; ok {
		return true
	}
	for _, nexts := range t {
		for _, n := range nexts {
			if n == status {
				return true
			}
		}
	}
	return false
}

// Check returns a TransitionError when from -> to is not permitted.
func (t Transitions) Check(from, to string) error {
	if !t.Allows(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("invalid status %q", e.To)
	}
	return fmt.Sprintf("cannot change status from %q to %q", e.From, e.To)
}
