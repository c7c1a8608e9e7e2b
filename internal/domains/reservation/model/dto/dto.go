package dto

import (
	"time"

	"github.com/google/uuid"

	"innkeeper/internal/domains/reservation/model"
	"innkeeper/shared/constant"
)

type CreateReservationRequest struct {
	GuestName              string   `json:"guestName" validate:"required"`
	PartySize              int      `json:"partySize" validate:"required,min=1"`
	CheckIn                string   `json:"checkIn" validate:"required,bookingdate"`
	CheckOut               string   `json:"checkOut" validate:"required,bookingdate"`
	RoomCount              int      `json:"roomCount" validate:"omitempty,min=1"`
	NightlyRate            float64  `json:"nightlyRate" validate:"gte=0"`
	BreakfastIncluded      bool     `json:"breakfastIncluded"`
	BreakfastPerPersonRate float64  `json:"breakfastPerPersonRate" validate:"gte=0"`
	LodgingOverride        *float64 `json:"lodgingOverride"`
	Status                 string   `json:"status" validate:"omitempty,oneof=confirmed waiting rejected"`
	DepositDue             *float64 `json:"depositDue"`
	DepositPaid            *bool    `json:"depositPaid"`
	NotesInternal          string   `json:"notesInternal"`
	NotesGuest             string   `json:"notesGuest"`
}

func (req *CreateReservationRequest) ToModel(now time.Time) model.ReservationRecord {
	rec := model.ReservationRecord{
		ID:            uuid.NewString(),
		SchemaVersion: model.SchemaVersionCurrent,
		GuestName:     req.GuestName,
		PartySize:     req.PartySize,
		CheckIn:       req.CheckIn,
		CheckOut:      req.CheckOut,
		RoomCount:     req.RoomCount,
		NightlyRate:   req.NightlyRate,
		Breakfast: model.Breakfast{
			Included:      req.BreakfastIncluded,
			PerPersonRate: req.BreakfastPerPersonRate,
		},
		LodgingOverride: req.LodgingOverride,
		Status:          model.StatusConfirmed,
		NotesInternal:   req.NotesInternal,
		NotesGuest:      req.NotesGuest,
		CreatedAt:       now.Format(constant.TimestampFormat),
		UpdatedAt:       now.Format(constant.TimestampFormat),
	}

	if req.RoomCount == 0 {
		rec.RoomCount = 1
	}

	if req.Status != "" {
		rec.Status = model.Status(req.Status)
	}

	if req.DepositDue != nil || req.DepositPaid != nil {
		deposit := model.Deposit{}
		if req.DepositDue != nil {
			deposit.Due = *req.DepositDue
		}
		if req.DepositPaid != nil {
			deposit.Paid = *req.DepositPaid
		}
		rec.Payment.Deposit = &deposit
	}

	rec.ComputeTotals()

	return rec
}

type PaymentEventRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Date   string  `json:"date" validate:"required,bookingdate"`
	Method string  `json:"method" validate:"required"`
	Note   string  `json:"note"`
}

type ReviewRequest struct {
	State string `json:"state" validate:"required,oneof=pending ok issue"`
	Note  string `json:"note"`
}

type UpdateReservationRequest struct {
	GuestName              *string  `json:"guestName"`
	PartySize              *int     `json:"partySize" validate:"omitempty,min=1"`
	CheckIn                *string  `json:"checkIn" validate:"omitempty,bookingdate"`
	CheckOut               *string  `json:"checkOut" validate:"omitempty,bookingdate"`
	RoomCount              *int     `json:"roomCount" validate:"omitempty,min=1"`
	NightlyRate            *float64 `json:"nightlyRate" validate:"omitempty,gte=0"`
	BreakfastIncluded      *bool    `json:"breakfastIncluded"`
	BreakfastPerPersonRate *float64 `json:"breakfastPerPersonRate" validate:"omitempty,gte=0"`
	LodgingOverride        *float64 `json:"lodgingOverride"`
	Status                 *string  `json:"status" validate:"omitempty,oneof=confirmed waiting rejected"`
	DepositDue             *float64 `json:"depositDue"`
	DepositPaid            *bool    `json:"depositPaid"`
	NotesInternal          *string  `json:"notesInternal"`
	NotesGuest             *string  `json:"notesGuest"`

	AddPayments      []PaymentEventRequest `json:"addPayments" validate:"omitempty,dive"`
	RemovePaymentIDs []string              `json:"removePaymentIds"`

	Review *ReviewRequest `json:"review"`
}

// Apply merges the partial update onto an existing record and recomputes the
// derived totals.
func (req *UpdateReservationRequest) Apply(rec *model.ReservationRecord, now time.Time) {
	if req.GuestName != nil {
		rec.GuestName = *req.GuestName
	}
	if req.PartySize != nil {
		rec.PartySize = *req.PartySize
	}
	if req.CheckIn != nil {
		rec.CheckIn = *req.CheckIn
	}
	if req.CheckOut != nil {
		rec.CheckOut = *req.CheckOut
	}
	if req.RoomCount != nil {
		rec.RoomCount = *req.RoomCount
	}
	if req.NightlyRate != nil {
		rec.NightlyRate = *req.NightlyRate
	}
	if req.BreakfastIncluded != nil {
		rec.Breakfast.Included = *req.BreakfastIncluded
	}
	if req.BreakfastPerPersonRate != nil {
		rec.Breakfast.PerPersonRate = *req.BreakfastPerPersonRate
	}
	if req.LodgingOverride != nil {
		rec.LodgingOverride = req.LodgingOverride
	}
	if req.Status != nil {
		rec.Status = model.Status(*req.Status)
	}
	if req.NotesInternal != nil {
		rec.NotesInternal = *req.NotesInternal
	}
	if req.NotesGuest != nil {
		rec.NotesGuest = *req.NotesGuest
	}

	if req.DepositDue != nil || req.DepositPaid != nil {
		if rec.Payment.Deposit == nil {
			rec.Payment.Deposit = &model.Deposit{}
		}
		if req.DepositDue != nil {
			rec.Payment.Deposit.Due = *req.DepositDue
		}
		if req.DepositPaid != nil {
			rec.Payment.Deposit.Paid = *req.DepositPaid
		}
	}

	for _, payment := range req.AddPayments {
		rec.Payment.Events = append(rec.Payment.Events, model.PaymentEvent{
			ID:     uuid.NewString(),
			Amount: payment.Amount,
			Date:   payment.Date,
			Method: payment.Method,
			Note:   payment.Note,
		})
	}

	if len(req.RemovePaymentIDs) > 0 {
		remove := map[string]bool{}
		for _, id := range req.RemovePaymentIDs {
			remove[id] = true
		}

		kept := rec.Payment.Events[:0]
		for _, event := range rec.Payment.Events {
			if !remove[event.ID] {
				kept = append(kept, event)
			}
		}
		rec.Payment.Events = kept
	}

	if req.Review != nil {
		rec.Review = &model.Review{
			State:      model.ReviewState(req.Review.State),
			ReviewedAt: now.Format(constant.TimestampFormat),
			Note:       req.Review.Note,
		}
	}

	rec.ComputeTotals()
	rec.UpdatedAt = now.Format(constant.TimestampFormat)
}

type GetReservationsResponse struct {
	Reservations []model.ReservationRecord `json:"reservations"`
	Total        int                       `json:"total"`
}
