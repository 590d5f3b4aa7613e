package order

import (
	"fmt"
	"time"

	"github.com/shopsmart/backend/internal/models"
)

const (
	DisputeRaise   = "raise"
	DisputeResolve = "resolve"
	DisputeClose   = "close"
)

// DisputeCommand is the typed form of an admin dispute request,
// discriminated on Action.
type DisputeCommand struct {
	Action      string `json:"action"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
	Resolution  string `json:"resolution"`
}

func (cmd DisputeCommand) Validate() error {
	switch cmd.Action {
	case DisputeRaise:
		if cmd.Reason == "" || cmd.Description == "" {
			return fmt.Errorf("%w: dispute reason and description are required", ErrBadRequest)
		}
	case DisputeResolve:
		if cmd.Resolution == "" {
			return fmt.Errorf("%w: dispute resolution is required", ErrBadRequest)
		}
	case DisputeClose:
	default:
		return fmt.Errorf("%w: unknown dispute action %q", ErrBadRequest, cmd.Action)
	}
	return nil
}

func disputeStatus(o *models.Order) string {
	if o.Dispute.Status == "" {
		return models.DisputeNone
	}
	return o.Dispute.Status
}

// ApplyDispute runs a validated command against the order's dispute
// sub-record. Raise replaces the record wholesale; resolve and close build
// a new value from the prior fields plus the changed ones, so no stale key
// survives by accident. A raise over a resolved or closed dispute is
// allowed and starts the record over.
func ApplyDispute(o *models.Order, cmd DisputeCommand, now time.Time) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	switch cmd.Action {
	case DisputeRaise:
		o.Dispute = models.Dispute{
			Status:      models.DisputeRaised,
			Reason:      cmd.Reason,
			Description: cmd.Description,
			RaisedAt:    &now,
		}

	case DisputeResolve:
		if disputeStatus(o) != models.DisputeRaised {
			return fmt.Errorf("%w: dispute is %s, must be raised to resolve",
				ErrInvalidState, disputeStatus(o))
		}
		d := o.Dispute
		d.Status = models.DisputeResolved
		d.Resolution = cmd.Resolution
		d.ResolvedAt = &now
		o.Dispute = d

	case DisputeClose:
		switch disputeStatus(o) {
		case models.DisputeRaised, models.DisputeResolved:
		default:
			return fmt.Errorf("%w: dispute is %s, must be raised or resolved to close",
				ErrInvalidState, disputeStatus(o))
		}
		d := o.Dispute
		d.Status = models.DisputeClosed
		o.Dispute = d
	}
	return nil
}
