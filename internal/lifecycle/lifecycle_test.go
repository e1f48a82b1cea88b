package lifecycle_test

import (
	"errors"
	"testing"
	"time"

	"homecare/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)

func machine() *lifecycle.Machine {
	return lifecycle.New(lifecycle.DefaultCancelBuffer, func() time.Time { return now })
}

var (
	operator = lifecycle.Actor{ID: "op-1", Role: lifecycle.RoleOperator}
	owner    = lifecycle.Actor{ID: "cus-1", Role: lifecycle.RoleCustomer}
	stranger = lifecycle.Actor{ID: "cus-2", Role: lifecycle.RoleCustomer}
)

func TestMachine_Transition(t *testing.T) {
	later := now.Add(24 * time.Hour)
	soon := now.Add(time.Hour)

	tests := []struct {
		name       string
		status     lifecycle.Status
		start      time.Time
		event      lifecycle.Event
		actor      lifecycle.Actor
		want       lifecycle.Status
		wantErr    error
		transition bool
	}{
		{name: "assign pending", status: lifecycle.StatusPending, start: later, event: lifecycle.EventAssign, actor: operator, want: lifecycle.StatusConfirmed},
		{name: "reassign confirmed", status: lifecycle.StatusConfirmed, start: later, event: lifecycle.EventAssign, actor: operator, want: lifecycle.StatusConfirmed},
		{name: "start confirmed", status: lifecycle.StatusConfirmed, start: later, event: lifecycle.EventStart, actor: operator, want: lifecycle.StatusInProgress},
		{name: "complete in progress", status: lifecycle.StatusInProgress, start: later, event: lifecycle.EventComplete, actor: operator, want: lifecycle.StatusCompleted},
		{name: "customer cancels early", status: lifecycle.StatusPending, start: later, event: lifecycle.EventCancel, actor: owner, want: lifecycle.StatusCancelled},
		{name: "operator cancels confirmed", status: lifecycle.StatusConfirmed, start: later, event: lifecycle.EventCancel, actor: operator, want: lifecycle.StatusCancelled},

		{name: "start from pending", status: lifecycle.StatusPending, start: later, event: lifecycle.EventStart, actor: operator, transition: true},
		{name: "complete from confirmed", status: lifecycle.StatusConfirmed, start: later, event: lifecycle.EventComplete, actor: operator, transition: true},
		{name: "assign in progress", status: lifecycle.StatusInProgress, start: later, event: lifecycle.EventAssign, actor: operator, transition: true},
		{name: "operator cancels in progress", status: lifecycle.StatusInProgress, start: later, event: lifecycle.EventCancel, actor: operator, transition: true},
		{name: "customer cancels in progress", status: lifecycle.StatusInProgress, start: later, event: lifecycle.EventCancel, actor: owner, transition: true},

		{name: "completed is terminal", status: lifecycle.StatusCompleted, start: later, event: lifecycle.EventCancel, actor: operator, wantErr: lifecycle.ErrTerminal},
		{name: "cancelled is terminal", status: lifecycle.StatusCancelled, start: later, event: lifecycle.EventAssign, actor: operator, wantErr: lifecycle.ErrTerminal},
		{name: "customer cannot start", status: lifecycle.StatusConfirmed, start: later, event: lifecycle.EventStart, actor: owner, wantErr: lifecycle.ErrForbiddenRole},
		{name: "customer cannot assign", status: lifecycle.StatusPending, start: later, event: lifecycle.EventAssign, actor: owner, wantErr: lifecycle.ErrForbiddenRole},
		{name: "other customer cancels", status: lifecycle.StatusPending, start: later, event: lifecycle.EventCancel, actor: stranger, wantErr: lifecycle.ErrNotOwner},
		{name: "customer cancels inside window", status: lifecycle.StatusConfirmed, start: soon, event: lifecycle.EventCancel, actor: owner, wantErr: lifecycle.ErrCancelWindowClosed},
		{name: "customer cancels at window edge", status: lifecycle.StatusConfirmed, start: now.Add(lifecycle.DefaultCancelBuffer), event: lifecycle.EventCancel, actor: owner, wantErr: lifecycle.ErrCancelWindowClosed},
		{name: "unknown event", status: lifecycle.StatusPending, start: later, event: "pause", actor: operator, wantErr: lifecycle.ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := lifecycle.Subject{Status: tt.status, CustomerID: owner.ID, StartTime: tt.start}

			got, err := machine().Transition(subject, tt.event, tt.actor)

			switch {
			case tt.transition:
				var transitionErr *lifecycle.TransitionError
				require.True(t, errors.As(err, &transitionErr))
				assert.Equal(t, tt.status, transitionErr.From)
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMachine_OperatorBypassesCancelWindow(t *testing.T) {
	subject := lifecycle.Subject{Status: lifecycle.StatusConfirmed, CustomerID: owner.ID, StartTime: now.Add(10 * time.Minute)}

	got, err := machine().Transition(subject, lifecycle.EventCancel, operator)

	assert.NoError(t, err)
	assert.Equal(t, lifecycle.StatusCancelled, got)
}

func TestTransitionError_NamesRequiredStatus(t *testing.T) {
	subject := lifecycle.Subject{Status: lifecycle.StatusPending, StartTime: now.Add(time.Hour)}

	_, err := machine().Transition(subject, lifecycle.EventStart, operator)

	assert.EqualError(t, err, "illegal transition: start requires status CONFIRMED, booking is PENDING")
}

func TestEventFor(t *testing.T) {
	event, ok := lifecycle.EventFor(lifecycle.StatusInProgress)
	assert.True(t, ok)
	assert.Equal(t, lifecycle.EventStart, event)

	_, ok = lifecycle.EventFor(lifecycle.StatusPending)
	assert.False(t, ok)
}
