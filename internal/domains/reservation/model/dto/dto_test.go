package dto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/domains/reservation/model"
	"innkeeper/internal/domains/reservation/model/dto"
)

func TestCreateReservationRequest_ToModel(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	due := 50.0
	req := dto.CreateReservationRequest{
		GuestName:              "Ana",
		PartySize:              2,
		CheckIn:                "2025-07-01",
		CheckOut:               "2025-07-03",
		NightlyRate:            100,
		BreakfastIncluded:      true,
		BreakfastPerPersonRate: 10,
		DepositDue:             &due,
	}

	rec := req.ToModel(now)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, model.SchemaVersionCurrent, rec.SchemaVersion)
	assert.Equal(t, model.StatusConfirmed, rec.Status)

	// Room count defaults to one when omitted.
	assert.Equal(t, 1, rec.RoomCount)

	assert.Equal(t, 2, rec.TotalNights)
	// 2 nights * 100 * 1 room + breakfast 10 * 2 people * 2 nights.
	assert.Equal(t, 240.0, rec.TotalPrice)

	require.NotNil(t, rec.Payment.Deposit)
	assert.Equal(t, 50.0, rec.Payment.Deposit.Due)
	assert.False(t, rec.Payment.Deposit.Paid)

	assert.Equal(t, "2025-06-15T12:00:00Z", rec.CreatedAt)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestUpdateReservationRequest_Apply(t *testing.T) {
	now := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	rec := model.ReservationRecord{
		ID:          "r1",
		GuestName:   "Ana",
		PartySize:   2,
		CheckIn:     "2025-07-01",
		CheckOut:    "2025-07-03",
		RoomCount:   1,
		NightlyRate: 100,
		Status:      model.StatusWaiting,
		Payment: model.Payment{
			Events: []model.PaymentEvent{
				{ID: "p1", Amount: 50, Date: "2025-06-01", Method: "card"},
			},
		},
	}

	newName := "Ana Maria"
	newStatus := "confirmed"
	req := dto.UpdateReservationRequest{
		GuestName: &newName,
		Status:    &newStatus,
		AddPayments: []dto.PaymentEventRequest{
			{Amount: 25, Date: "2025-06-16", Method: "cash"},
		},
		RemovePaymentIDs: []string{"p1"},
		Review:           &dto.ReviewRequest{State: "ok", Note: "smooth stay"},
	}

	req.Apply(&rec, now)

	assert.Equal(t, "Ana Maria", rec.GuestName)
	assert.Equal(t, model.StatusConfirmed, rec.Status)

	// p1 removed, the new cash payment added with a generated id.
	require.Len(t, rec.Payment.Events, 1)
	assert.NotEmpty(t, rec.Payment.Events[0].ID)
	assert.NotEqual(t, "p1", rec.Payment.Events[0].ID)
	assert.Equal(t, 25.0, rec.Payment.Events[0].Amount)

	require.NotNil(t, rec.Review)
	assert.Equal(t, model.ReviewOK, rec.Review.State)
	assert.Equal(t, "2025-06-16T09:00:00Z", rec.Review.ReviewedAt)

	assert.Equal(t, 2, rec.TotalNights)
	assert.Equal(t, 200.0, rec.TotalPrice)
	assert.Equal(t, "2025-06-16T09:00:00Z", rec.UpdatedAt)
}

func TestUpdateReservationRequest_Apply_PartialLeavesRestAlone(t *testing.T) {
	now := time.Now()

	rec := model.ReservationRecord{
		ID:          "r1",
		GuestName:   "Ana",
		PartySize:   2,
		CheckIn:     "2025-07-01",
		CheckOut:    "2025-07-02",
		NightlyRate: 100,
		Status:      model.StatusConfirmed,
	}

	newRate := 120.0
	req := dto.UpdateReservationRequest{NightlyRate: &newRate}

	req.Apply(&rec, now)

	assert.Equal(t, "Ana", rec.GuestName)
	assert.Equal(t, 2, rec.PartySize)
	assert.Equal(t, 120.0, rec.NightlyRate)
	assert.Equal(t, 120.0, rec.TotalPrice)
}
