// Package confirm implements the two-stage delete flow: a delete is first
// requested, then either confirmed or cancelled. Only a confirmation runs the
// delete.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the phase of a Dialog.
type State int

const (
	Idle State = iota
	Confirming
)

func (s State) String() string {
	if s == Confirming {
		return "confirming"
	}
	return "idle"
}

var (
	// ErrNothingPending is returned by Confirm and Cancel while idle.
	ErrNothingPending = errors.New("no delete is awaiting confirmation")
	// ErrAlreadyPending is returned by Request while another target awaits confirmation.
	ErrAlreadyPending = errors.New("a delete is already awaiting confirmation")
)

// DeleteFunc performs the delete of target.
type DeleteFunc func(ctx context.Context, target string) error

// Dialog tracks one pending delete at a time.
type Dialog struct {
	mu     sync.Mutex
	state  State
	target string
	del    DeleteFunc
}

// NewDialog creates an idle Dialog that runs del on confirmation.
func NewDialog(del DeleteFunc) *Dialog {
	return &Dialog{del: del}
}

// State returns the current phase and, while confirming, its target.
func (d *Dialog) State() (State, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.target
}

// Request moves idle to confirming(target).
func (d *Dialog) Request(target string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Confirming {
		return fmt.Errorf("%w: %s", ErrAlreadyPending, d.target)
	}
	d.state = Confirming
	d.target = target
	return nil
}

// Cancel drops the pending delete without side effects.
func (d *Dialog) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Confirming {
		return ErrNothingPending
	}
	d.state = Idle
	d.target = ""
	return nil
}

// Confirm runs the delete for the pending target exactly once and returns
// the dialog to idle, whether or not the delete succeeds.
func (d *Dialog) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.state != Confirming {
		d.mu.Unlock()
		return ErrNothingPending
	}
	target := d.target
	d.state = Idle
	d.target = ""
	d.mu.Unlock()

	return d.del(ctx, target)
}
