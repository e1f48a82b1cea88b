// Package lifecycle is the booking state machine. It decides which status a booking
// moves to for an event and who may trigger it; persisting the result is up to the caller.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Active statuses hold a slot on the worker schedule.
var Active = []Status{StatusPending, StatusConfirmed}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}

	return false
}

type Event string

const (
	EventAssign   Event = "assign"
	EventCancel   Event = "cancel"
	EventStart    Event = "start"
	EventComplete Event = "complete"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
)

const DefaultCancelBuffer = 2 * time.Hour

var (
	ErrTerminal           = errors.New("booking is already finished")
	ErrNotOwner           = errors.New("booking belongs to another customer")
	ErrForbiddenRole      = errors.New("only an operator can perform this action")
	ErrCancelWindowClosed = errors.New("booking can no longer be cancelled")
	ErrUnknownEvent       = errors.New("unknown event")
)

// TransitionError is returned for an event fired from a status it does not leave.
type TransitionError struct {
	Event    Event
	From     Status
	Required []Status
}

func (e *TransitionError) Error() string {
	required := make([]string, 0, len(e.Required))
	for _, status := range e.Required {
		required = append(required, string(status))
	}

	return fmt.Sprintf("illegal transition: %s requires status %s, booking is %s",
		e.Event, strings.Join(required, " or "), e.From)
}

type transition struct {
	from  []Status
	to    Status
	roles []Role
}

var transitions = map[Event]transition{
	EventAssign:   {from: []Status{StatusPending, StatusConfirmed}, to: StatusConfirmed, roles: []Role{RoleOperator}},
	EventCancel:   {from: []Status{StatusPending, StatusConfirmed}, to: StatusCancelled, roles: []Role{RoleCustomer, RoleOperator}},
	EventStart:    {from: []Status{StatusConfirmed}, to: StatusInProgress, roles: []Role{RoleOperator}},
	EventComplete: {from: []Status{StatusInProgress}, to: StatusCompleted, roles: []Role{RoleOperator}},
}

// Subject is the part of a booking the machine needs.
type Subject struct {
	Status     Status
	CustomerID string
	StartTime  time.Time
}

type Actor struct {
	ID   string
	Role Role
}

type Machine struct {
	cancelBuffer time.Duration
	now          func() time.Time
}

func New(cancelBuffer time.Duration, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}

	return &Machine{cancelBuffer: cancelBuffer, now: now}
}

// Transition returns the status subject moves to when actor fires event.
//
// Customers may only cancel their own bookings, and only until cancelBuffer before
// the start. Operators cancel at any time while the booking is PENDING or CONFIRMED.
// Assigning a CONFIRMED booking again is a reassignment.
func (m *Machine) Transition(subject Subject, event Event, actor Actor) (Status, error) {
	rule, ok := transitions[event]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}

	if subject.Status.Terminal() {
		return "", fmt.Errorf("%w: status is %s", ErrTerminal, subject.Status)
	}

	if !slices.Contains(rule.roles, actor.Role) {
		return "", ErrForbiddenRole
	}

	if !slices.Contains(rule.from, subject.Status) {
		return "", &TransitionError{Event: event, From: subject.Status, Required: rule.from}
	}

	if event == EventCancel && actor.Role == RoleCustomer {
		if actor.ID != subject.CustomerID {
			return "", ErrNotOwner
		}

		if !m.now().Before(subject.StartTime.Add(-m.cancelBuffer)) {
			return "", fmt.Errorf("%w: cancellations close %s before the start", ErrCancelWindowClosed, m.cancelBuffer)
		}
	}

	return rule.to, nil
}

// EventFor maps a requested target status to the event that reaches it.
func EventFor(target Status) (Event, bool) {
	switch target {
	case StatusConfirmed:
		return EventAssign, true
	case StatusInProgress:
		return EventStart, true
	case StatusCompleted:
		return EventComplete, true
	case StatusCancelled:
		return EventCancel, true
	}

	return "", false
}
