package order

import (
	"fmt"
	"time"

	"github.com/shopsmart/backend/internal/models"
)

const (
	RefundRequest = "request"
	RefundApprove = "approve"
	RefundReject  = "reject"
	RefundProcess = "process"
)

const defaultRefundReason = "No reason provided"

// RefundCommand is the typed form of an admin refund request,
// discriminated on Action.
type RefundCommand struct {
	Action        string  `json:"action"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
	TransactionID string  `json:"transaction_id"`
}

func (cmd RefundCommand) Validate() error {
	switch cmd.Action {
	case RefundRequest:
		if cmd.Amount <= 0 {
			return fmt.Errorf("%w: refund amount must be greater than zero", ErrBadRequest)
		}
	case RefundApprove, RefundReject:
	case RefundProcess:
		if cmd.TransactionID == "" {
			return fmt.Errorf("%w: transaction id is required to process a refund", ErrBadRequest)
		}
	default:
		return fmt.Errorf("%w: unknown refund action %q", ErrBadRequest, cmd.Action)
	}
	return nil
}

func refundStatus(o *models.Order) string {
	if o.Refund.Status == "" {
		return models.RefundNone
	}
	return o.Refund.Status
}

// ApplyRefund runs a validated command against the order's refund
// sub-record. Request starts a fresh record; the remaining actions demand
// the exact prior status and build the next value explicitly.
func ApplyRefund(o *models.Order, cmd RefundCommand, now time.Time) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	switch cmd.Action {
	case RefundRequest:
		if cmd.Amount > o.TotalPrice {
			return fmt.Errorf("%w: refund amount %.2f exceeds order total %.2f",
				ErrBadRequest, cmd.Amount, o.TotalPrice)
		}
		reason := cmd.Reason
		if reason == "" {
			reason = defaultRefundReason
		}
		o.Refund = models.Refund{
			Status:      models.RefundRequested,
			Amount:      cmd.Amount,
			Reason:      reason,
			RequestedAt: &now,
		}

	case RefundApprove:
		if refundStatus(o) != models.RefundRequested {
			return fmt.Errorf("%w: refund is %s, must be requested to approve",
				ErrInvalidState, refundStatus(o))
		}
		r := o.Refund
		r.Status = models.RefundApproved
		o.Refund = r

	case RefundReject:
		if refundStatus(o) != models.RefundRequested {
			return fmt.Errorf("%w: refund is %s, must be requested to reject",
				ErrInvalidState, refundStatus(o))
		}
		r := o.Refund
		r.Status = models.RefundRejected
		o.Refund = r

	case RefundProcess:
		if refundStatus(o) != models.RefundApproved {
			return fmt.Errorf("%w: refund is %s, must be approved to process",
				ErrInvalidState, refundStatus(o))
		}
		r := o.Refund
		r.Status = models.RefundProcessed
		r.ProcessedAt = &now
		r.TransactionID = cmd.TransactionID
		o.Refund = r
	}
	return nil
}
