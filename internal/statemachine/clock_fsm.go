package statemachine

import (
	"context"
	"fmt"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/looplab/fsm"
)

// Clock states. A user is "open" while they have a time entry with no end
// timestamp, "closed" otherwise.
const (
	StateClosed = "closed"
	StateOpen   = "open"
)

// Clock events
const (
	EventClockIn  = "clock_in"
	EventClockOut = "clock_out"
)

// ClockFSM wraps a user's clock state with its state machine. It is built
// from the user's current open entry (nil when none) and enforces the
// closed → open → closed transition cycle.
type ClockFSM struct {
	activeEntry *models.TimeEntry
	fsm         *fsm.FSM
}

// NewClockFSM creates a clock state machine seeded from the user's active
// entry, if any.
func NewClockFSM(activeEntry *models.TimeEntry) *ClockFSM {
	initial := StateClosed
	if activeEntry != nil && activeEntry.IsOpen() {
		initial = StateOpen
	}

	c := &ClockFSM{activeEntry: activeEntry}

	c.fsm = fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: EventClockIn, Src: []string{StateClosed}, Dst: StateOpen},
			{Name: EventClockOut, Src: []string{StateOpen}, Dst: StateClosed},
		},
		fsm.Callbacks{},
	)

	return c
}

// ClockIn transitions the clock to open
func (c *ClockFSM) ClockIn(ctx context.Context) error {
	if err := c.fsm.Event(ctx, EventClockIn); err != nil {
		return fmt.Errorf("cannot clock in while an entry is active: %w", err)
	}
	return nil
}

// ClockOut transitions the clock to closed
func (c *ClockFSM) ClockOut(ctx context.Context) error {
	if err := c.fsm.Event(ctx, EventClockOut); err != nil {
		return fmt.Errorf("cannot clock out without an active entry: %w", err)
	}
	return nil
}

// ActiveEntry returns the open entry the machine was seeded with, so a
// conflicting clock-in can surface it to the caller.
func (c *ClockFSM) ActiveEntry() *models.TimeEntry {
	return c.activeEntry
}

// Current returns the current state
func (c *ClockFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ClockFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
