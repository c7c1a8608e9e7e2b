// Package schema converts raw reservation objects of unknown shape into the
// canonical versioned record. It is a pure function layer: deterministic,
// side-effect free and safe to call repeatedly.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"innkeeper/internal/domains/reservation/model"
	"innkeeper/shared/constant"
	"innkeeper/shared/failure"
)

// RawRecord is an open field map: one parsed JSON object whose values are kept
// verbatim so a later write reproduces them byte for byte.
type RawRecord map[string]json.RawMessage

// legacyRecord is the fixed v1 field set.
type legacyRecord struct {
	ID                     string   `json:"id"`
	GuestName              string   `json:"guestName"`
	PartySize              int      `json:"partySize"`
	CheckIn                string   `json:"checkIn"`
	CheckOut               string   `json:"checkOut"`
	RoomCount              int      `json:"roomCount"`
	NightlyRate            float64  `json:"nightlyRate"`
	BreakfastIncluded      bool     `json:"breakfastIncluded"`
	BreakfastPerPersonRate float64  `json:"breakfastPerPersonRate"`
	DepositDue             *float64 `json:"depositDue"`
	DepositPaid            *bool    `json:"depositPaid"`
	Notes                  string   `json:"notes"`
	TotalNights            *int     `json:"totalNights"`
	TotalPrice             float64  `json:"totalPrice"`
	Status                 string   `json:"status"`
	CreatedAt              string   `json:"createdAt"`
	UpdatedAt              string   `json:"updatedAt"`
}

var legacyKeys = map[string]bool{
	"id":                     true,
	"schemaVersion":          true,
	"guestName":              true,
	"partySize":              true,
	"checkIn":                true,
	"checkOut":               true,
	"roomCount":              true,
	"nightlyRate":            true,
	"breakfastIncluded":      true,
	"breakfastPerPersonRate": true,
	"depositDue":             true,
	"depositPaid":            true,
	"notes":                  true,
	"totalNights":            true,
	"totalPrice":             true,
	"status":                 true,
	"createdAt":              true,
	"updatedAt":              true,
}

// DetectVersion inspects the schemaVersion tag and reports which decode path a
// raw record takes. Absence of the tag means legacy v1.
func DetectVersion(raw RawRecord) int {
	tag, ok := raw["schemaVersion"]
	if !ok {
		return model.SchemaVersionLegacy
	}

	var version int
	if err := json.Unmarshal(tag, &version); err != nil {
		return model.SchemaVersionLegacy
	}

	if version == model.SchemaVersionCurrent {
		return model.SchemaVersionCurrent
	}

	return model.SchemaVersionLegacy
}

// RecordID extracts the record id, returning "" when it is missing or not a
// usable string.
func RecordID(raw RawRecord) string {
	value, ok := raw["id"]
	if !ok {
		return ""
	}

	var id string
	if err := json.Unmarshal(value, &id); err != nil {
		return ""
	}

	return id
}

// ValidateStructure reports whether a raw record carries the identity and date
// fields required to store it at all.
func ValidateStructure(raw RawRecord) error {
	if raw == nil {
		return failure.MalformedRecord("record is not a JSON object")
	}

	if RecordID(raw) == "" {
		return fmt.Errorf("record has no usable id")
	}

	for _, field := range []string{"checkIn", "checkOut"} {
		value, ok := raw[field]
		if !ok {
			return fmt.Errorf("record is missing %s", field)
		}

		var date string
		if err := json.Unmarshal(value, &date); err != nil {
			return fmt.Errorf("record field %s is not a string", field)
		}

		if _, err := time.Parse(constant.DateFormat, date); err != nil {
			return fmt.Errorf("record field %s is not a valid date: %q", field, date)
		}
	}

	return nil
}

// Normalize converts a raw record into the canonical v2 shape. Already
// canonical input passes through unchanged with no import metadata, which
// makes the function idempotent. Legacy input has the fixed v1 field set
// mapped onto the v2 shape; every field outside that set is retained verbatim
// on the output and its name recorded in the import metadata.
func Normalize(raw RawRecord, now time.Time) (model.ReservationRecord, error) {
	if raw == nil {
		return model.ReservationRecord{}, failure.MalformedRecord("record is not a JSON object") //nolint:wrapcheck
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return model.ReservationRecord{}, fmt.Errorf("failed to re-encode raw record: %w", err)
	}

	if DetectVersion(raw) == model.SchemaVersionCurrent {
		var rec model.ReservationRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return model.ReservationRecord{}, failure.MalformedRecord(fmt.Sprintf("record does not match canonical schema: %v", err)) //nolint:wrapcheck
		}

		if rec.Status == "" {
			rec.Status = model.StatusConfirmed
		}

		return rec, nil
	}

	var legacy legacyRecord
	if err := json.Unmarshal(data, &legacy); err != nil {
		return model.ReservationRecord{}, failure.MalformedRecord(fmt.Sprintf("record does not match legacy schema: %v", err)) //nolint:wrapcheck
	}

	rec := model.ReservationRecord{
		ID:            legacy.ID,
		SchemaVersion: model.SchemaVersionCurrent,
		GuestName:     legacy.GuestName,
		PartySize:     legacy.PartySize,
		CheckIn:       legacy.CheckIn,
		CheckOut:      legacy.CheckOut,
		RoomCount:     legacy.RoomCount,
		NightlyRate:   legacy.NightlyRate,
		Breakfast: model.Breakfast{
			Included:      legacy.BreakfastIncluded,
			PerPersonRate: legacy.BreakfastPerPersonRate,
		},
		TotalPrice:    legacy.TotalPrice,
		NotesInternal: legacy.Notes,
		CreatedAt:     legacy.CreatedAt,
		UpdatedAt:     legacy.UpdatedAt,
	}

	rec.Status = model.Status(legacy.Status)
	if !rec.Status.Valid() {
		rec.Status = model.StatusConfirmed
	}

	rec.TotalNights = 1
	if legacy.TotalNights != nil {
		rec.TotalNights = *legacy.TotalNights
	}

	if legacy.DepositDue != nil || legacy.DepositPaid != nil {
		deposit := model.Deposit{}
		if legacy.DepositDue != nil {
			deposit.Due = *legacy.DepositDue
		}
		if legacy.DepositPaid != nil {
			deposit.Paid = *legacy.DepositPaid
		}
		rec.Payment.Deposit = &deposit
	}

	unknownKeys := make([]string, 0)
	for key := range raw {
		if legacyKeys[key] {
			continue
		}

		unknownKeys = append(unknownKeys, key)

		if rec.Extra == nil {
			rec.Extra = map[string]json.RawMessage{}
		}
		rec.Extra[key] = raw[key]
	}
	sort.Strings(unknownKeys)

	rec.ImportMeta = &model.ImportMeta{
		NormalizedFrom: model.SchemaVersionLegacy,
		NormalizedAt:   now.Format(constant.TimestampFormat),
		UnknownKeys:    unknownKeys,
	}

	return rec, nil
}
