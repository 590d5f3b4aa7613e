package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopsmart/backend/internal/models"
)

func TestDisputeRaiseRequiresReasonAndDescription(t *testing.T) {
	o := processingOrder(1)

	err := ApplyDispute(o, DisputeCommand{Action: DisputeRaise, Reason: "damaged"}, time.Now())
	require.ErrorIs(t, err, ErrBadRequest)

	err = ApplyDispute(o, DisputeCommand{Action: DisputeRaise, Description: "box crushed"}, time.Now())
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestDisputeLifecycle(t *testing.T) {
	o := processingOrder(1)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	raise := DisputeCommand{Action: DisputeRaise, Reason: "damaged", Description: "box crushed"}
	require.NoError(t, ApplyDispute(o, raise, now))
	require.Equal(t, models.DisputeRaised, o.Dispute.Status)
	require.Equal(t, "damaged", o.Dispute.Reason)
	require.Equal(t, now, *o.Dispute.RaisedAt)

	later := now.Add(time.Hour)
	resolve := DisputeCommand{Action: DisputeResolve, Resolution: "replacement shipped"}
	require.NoError(t, ApplyDispute(o, resolve, later))
	require.Equal(t, models.DisputeResolved, o.Dispute.Status)
	require.Equal(t, "replacement shipped", o.Dispute.Resolution)
	require.Equal(t, later, *o.Dispute.ResolvedAt)
	// fields from the raise survive the resolve
	require.Equal(t, "damaged", o.Dispute.Reason)
	require.Equal(t, now, *o.Dispute.RaisedAt)

	require.NoError(t, ApplyDispute(o, DisputeCommand{Action: DisputeClose}, later))
	require.Equal(t, models.DisputeClosed, o.Dispute.Status)
	require.Equal(t, "replacement shipped", o.Dispute.Resolution)
}

func TestDisputeResolveRequiresRaised(t *testing.T) {
	o := processingOrder(1)

	err := ApplyDispute(o, DisputeCommand{Action: DisputeResolve, Resolution: "refunded"}, time.Now())
	require.ErrorIs(t, err, ErrInvalidState)
	require.Contains(t, err.Error(), "must be raised")

	err = ApplyDispute(o, DisputeCommand{Action: DisputeClose}, time.Now())
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDisputeResolveRequiresResolution(t *testing.T) {
	o := processingOrder(1)

	err := ApplyDispute(o, DisputeCommand{Action: DisputeResolve}, time.Now())
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestDisputeUnknownAction(t *testing.T) {
	o := processingOrder(1)

	err := ApplyDispute(o, DisputeCommand{Action: "escalate"}, time.Now())
	require.ErrorIs(t, err, ErrBadRequest)
	require.Contains(t, err.Error(), "escalate")
}

func TestDisputeReRaiseStartsOver(t *testing.T) {
	o := processingOrder(1)
	now := time.Now()

	require.NoError(t, ApplyDispute(o, DisputeCommand{Action: DisputeRaise, Reason: "late", Description: "two weeks late"}, now))
	require.NoError(t, ApplyDispute(o, DisputeCommand{Action: DisputeResolve, Resolution: "refund offered"}, now))

	require.NoError(t, ApplyDispute(o, DisputeCommand{Action: DisputeRaise, Reason: "wrong item", Description: "got a different model"}, now))
	require.Equal(t, models.DisputeRaised, o.Dispute.Status)
	require.Equal(t, "wrong item", o.Dispute.Reason)
	// the replaced record carries nothing over
	require.Empty(t, o.Dispute.Resolution)
	require.Nil(t, o.Dispute.ResolvedAt)
}
