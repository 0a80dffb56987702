package servers

import "fmt"

// Move returns a new order with the entry at from moved to index to, the
// way a drag gesture would leave the list. The input is not modified.
func Move(order []Entry, from, to int) ([]Entry, error) {
	if from < 0 || from >= len(order) {
		return nil, fmt.Errorf("%w: move source %d out of range [0,%d)", ErrInvalidArgument, from, len(order))
	}
	if to < 0 || to >= len(order) {
		return nil, fmt.Errorf("%w: move target %d out of range [0,%d)", ErrInvalidArgument, to, len(order))
	}

	out := make([]Entry, 0, len(order))
	out = append(out, order[:from]...)
	out = append(out, order[from+1:]...)

	moved := order[from]
	out = append(out[:to], append([]Entry{moved}, out[to:]...)...)
	return out, nil
}

// IndexOf returns the position of id in order, or -1.
func IndexOf(order []Entry, id string) int {
	for i, e := range order {
		if e.ID == id {
			return i
		}
	}
	return -1
}
