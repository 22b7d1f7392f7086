package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/besttime/besttime-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClockFSMStartsClosed(t *testing.T) {
	machine := NewClockFSM(nil)
	assert.Equal(t, StateClosed, machine.Current())
	assert.True(t, machine.Can(EventClockIn))
	assert.False(t, machine.Can(EventClockOut))
}

func TestClockFSMSeededOpen(t *testing.T) {
	entry := &models.TimeEntry{ID: 7, UserID: 1, StartTime: time.Now()}
	machine := NewClockFSM(entry)

	assert.Equal(t, StateOpen, machine.Current())
	assert.False(t, machine.Can(EventClockIn))
	assert.Equal(t, entry, machine.ActiveEntry())
}

func TestClockFSMSeededWithClosedEntry(t *testing.T) {
	end := time.Now()
	entry := &models.TimeEntry{ID: 7, UserID: 1, StartTime: end.Add(-time.Hour), EndTime: &end}
	machine := NewClockFSM(entry)

	assert.Equal(t, StateClosed, machine.Current())
}

func TestClockFSMFullCycle(t *testing.T) {
	ctx := context.Background()
	machine := NewClockFSM(nil)

	assert.NoError(t, machine.ClockIn(ctx))
	assert.Equal(t, StateOpen, machine.Current())

	assert.NoError(t, machine.ClockOut(ctx))
	assert.Equal(t, StateClosed, machine.Current())
}

func TestClockFSMDoubleClockInFails(t *testing.T) {
	ctx := context.Background()
	machine := NewClockFSM(nil)

	assert.NoError(t, machine.ClockIn(ctx))
	assert.Error(t, machine.ClockIn(ctx))
	assert.Equal(t, StateOpen, machine.Current())
}

func TestClockFSMClockOutWhileClosedFails(t *testing.T) {
	ctx := context.Background()
	machine := NewClockFSM(nil)

	assert.Error(t, machine.ClockOut(ctx))
	assert.Equal(t, StateClosed, machine.Current())
}
