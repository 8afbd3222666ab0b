package appointment

import (
	"fmt"
	"slices"
	"time"

	"github.com/hackgods/spa-booking/internal/apperr"
	"github.com/hackgods/spa-booking/internal/auth"
)

// actor is the caller's relation to one appointment.
type actor int

const (
	actorAdmin actor = iota + 1
	actorOwner
)

type transitionRule struct {
	allowed   []actor
	notInPast bool
}

// transitions lists every legal status change. Anything missing is illegal;
// CANCELLED has no outgoing edges.
var transitions = map[Status]map[Status]transitionRule{
	StatusPending: {
		StatusConfirmed: {allowed: []actor{actorAdmin}},
		StatusCancelled: {allowed: []actor{actorAdmin, actorOwner}, notInPast: true},
	},
	StatusConfirmed: {
		StatusCancelled: {allowed: []actor{actorAdmin, actorOwner}, notInPast: true},
	},
}

// Change describes a requested mutation of one appointment.
type Change struct {
	Principal auth.Principal
	Current   *Appointment
	// Target is the requested status, empty when the status is left alone.
	Target Status
	// EditsFields is set when masseur, service, duration, date or time change.
	EditsFields bool
	Now         time.Time
	Location    *time.Location
}

// CheckTransition decides whether c is allowed. It does not look at slot
// availability; field edits that move the slot are re-validated separately.
func CheckTransition(c Change) error {
	var who actor
	switch {
	case c.Principal.IsAdmin():
		who = actorAdmin
	case c.Principal.Owns(c.Current.UserID):
		who = actorOwner
	default:
		return fmt.Errorf("%w: not the owner of this appointment", apperr.ErrForbidden)
	}

	if c.Current.Status.Terminal() {
		return fmt.Errorf("%w: appointment %s is %s", apperr.ErrAlreadyTerminal, c.Current.ID, c.Current.Status)
	}

	if who != actorAdmin {
		if c.Target != "" && c.Target != StatusCancelled {
			return fmt.Errorf("%w: status change not permitted", apperr.ErrForbidden)
		}
		if c.EditsFields {
			return fmt.Errorf("%w: only an admin may edit appointment details", apperr.ErrForbidden)
		}
	}

	if c.Target == "" || c.Target == c.Current.Status {
		return nil
	}

	rule, ok := transitions[c.Current.Status][c.Target]
	if !ok {
		return fmt.Errorf("%w: cannot move appointment from %s to %s", apperr.ErrInvalidState, c.Current.Status, c.Target)
	}
	if !slices.Contains(rule.allowed, who) {
		return fmt.Errorf("%w: status change not permitted", apperr.ErrForbidden)
	}

	if rule.notInPast {
		startsAt, err := c.Current.StartsAt(c.Location)
		if err != nil {
			return err
		}
		if startsAt.Before(c.Now) {
			return fmt.Errorf("%w: cannot cancel past appointment", apperr.ErrInvalidState)
		}
	}

	return nil
}
