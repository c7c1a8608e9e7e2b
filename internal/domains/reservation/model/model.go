package model

import (
	"bytes"
	"encoding/json"
	"time"

	"innkeeper/shared/constant"
)

const (
	EntityName = "reservation"

	// SchemaVersionCurrent tags the canonical record shape. Stored objects
	// without a schemaVersion field are treated as legacy v1.
	SchemaVersionCurrent = 2
	SchemaVersionLegacy  = 1
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusWaiting   Status = "waiting"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusWaiting, StatusRejected:
		return true
	}

	return false
}

type ReviewState string

const (
	ReviewPending ReviewState = "pending"
	ReviewOK      ReviewState = "ok"
	ReviewIssue   ReviewState = "issue"
)

type Breakfast struct {
	Included      bool    `json:"included"`
	PerPersonRate float64 `json:"perPersonRate"`
}

type Deposit struct {
	Due  float64 `json:"due"`
	Paid bool    `json:"paid"`
}

// PaymentEvent is one entry in the ordered payment history. Each event keeps
// its own id so it can be removed later.
type PaymentEvent struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Method string  `json:"method"`
	Note   string  `json:"note,omitempty"`
}

type Payment struct {
	Deposit *Deposit       `json:"deposit,omitempty"`
	Events  []PaymentEvent `json:"events,omitempty"`
}

type Review struct {
	State      ReviewState `json:"state"`
	ReviewedAt string      `json:"reviewedAt,omitempty"`
	Note       string      `json:"note,omitempty"`
}

// ImportMeta is attached to records that were migrated from the legacy shape.
// It summarizes the migration without embedding the original record.
type ImportMeta struct {
	NormalizedFrom int      `json:"normalizedFrom"`
	NormalizedAt   string   `json:"normalizedAt"`
	UnknownKeys    []string `json:"unknownKeys"`
}

// ReservationRecord is the canonical (v2) record shape, one stored object per
// reservation. Known fields live on the struct; anything else found on a raw
// input survives in Extra and is serialized back out verbatim, so no field is
// ever silently discarded.
type ReservationRecord struct {
	ID              string      `json:"id"`
	SchemaVersion   int         `json:"schemaVersion"`
	GuestName       string      `json:"guestName"`
	PartySize       int         `json:"partySize"`
	CheckIn         string      `json:"checkIn"`
	CheckOut        string      `json:"checkOut"`
	RoomCount       int         `json:"roomCount"`
	NightlyRate     float64     `json:"nightlyRate"`
	Breakfast       Breakfast   `json:"breakfast"`
	LodgingOverride *float64    `json:"lodgingOverride,omitempty"`
	TotalNights     int         `json:"totalNights"`
	TotalPrice      float64     `json:"totalPrice"`
	Status          Status      `json:"status"`
	Payment         Payment     `json:"payment"`
	NotesInternal   string      `json:"notesInternal,omitempty"`
	NotesGuest      string      `json:"notesGuest,omitempty"`
	Review          *Review     `json:"review,omitempty"`
	CreatedAt       string      `json:"createdAt,omitempty"`
	UpdatedAt       string      `json:"updatedAt,omitempty"`
	ImportMeta      *ImportMeta `json:"_importMeta,omitempty"`

	// Extra holds passthrough fields by name, raw value untouched.
	Extra map[string]json.RawMessage `json:"-"`
}

// canonicalKeys mirrors the json tags of ReservationRecord. Keys not listed
// here are captured into Extra on decode.
var canonicalKeys = map[string]bool{
	"id":              true,
	"schemaVersion":   true,
	"guestName":       true,
	"partySize":       true,
	"checkIn":         true,
	"checkOut":        true,
	"roomCount":       true,
	"nightlyRate":     true,
	"breakfast":       true,
	"lodgingOverride": true,
	"totalNights":     true,
	"totalPrice":      true,
	"status":          true,
	"payment":         true,
	"notesInternal":   true,
	"notesGuest":      true,
	"review":          true,
	"createdAt":       true,
	"updatedAt":       true,
	"_importMeta":     true,
}

func (r ReservationRecord) MarshalJSON() ([]byte, error) {
	type alias ReservationRecord

	base, err := json.Marshal(alias(r))
	if err != nil {
		return nil, err
	}

	if len(r.Extra) == 0 {
		return base, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}

	for key, value := range r.Extra {
		existing, known := merged[key]
		if !known {
			merged[key] = value

			continue
		}

		merged[key] = mergeRawValues(existing, value)
	}

	return json.Marshal(merged)
}

// mergeRawValues reconciles a canonical field projection with a passthrough
// value captured under the same name, which happens when a legacy record
// carries a field whose name only exists in the canonical schema. Two objects
// are merged key-wise with the canonical side winning; otherwise the canonical
// value wins unless it is empty, so the passthrough value is not dropped.
func mergeRawValues(canonical, extra json.RawMessage) json.RawMessage {
	var canonicalObj, extraObj map[string]json.RawMessage

	if json.Unmarshal(canonical, &canonicalObj) == nil && canonicalObj != nil &&
		json.Unmarshal(extra, &extraObj) == nil && extraObj != nil {
		for key, value := range extraObj {
			if _, ok := canonicalObj[key]; !ok {
				canonicalObj[key] = value
			}
		}

		if out, err := json.Marshal(canonicalObj); err == nil {
			return out
		}

		return canonical
	}

	if isEmptyJSON(canonical) {
		return extra
	}

	return canonical
}

func isEmptyJSON(value json.RawMessage) bool {
	switch string(bytes.TrimSpace(value)) {
	case "null", "{}", "[]", `""`, "0", "false":
		return true
	}

	return false
}

func (r *ReservationRecord) UnmarshalJSON(data []byte) error {
	type alias ReservationRecord

	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}

	for key := range all {
		if canonicalKeys[key] {
			delete(all, key)
		}
	}

	if len(all) > 0 {
		decoded.Extra = all
	}

	*r = ReservationRecord(decoded)

	return nil
}

// Nights returns the stay length in nights derived from the check-in and
// check-out dates, defaulting to 1 when the dates are unusable.
func (r *ReservationRecord) Nights() int {
	checkIn, errIn := time.Parse(constant.DateFormat, r.CheckIn)
	checkOut, errOut := time.Parse(constant.DateFormat, r.CheckOut)

	if errIn != nil || errOut != nil {
		return 1
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		return 1
	}

	return nights
}

// ComputeTotals recalculates totalNights and totalPrice from the stay fields.
// A manual lodging override replaces the computed lodging portion but not the
// breakfast portion.
func (r *ReservationRecord) ComputeTotals() {
	nights := r.Nights()
	r.TotalNights = nights

	rooms := r.RoomCount
	if rooms < 1 {
		rooms = 1
	}

	lodging := float64(nights) * r.NightlyRate * float64(rooms)
	if r.LodgingOverride != nil {
		lodging = *r.LodgingOverride
	}

	breakfast := 0.0
	if r.Breakfast.Included {
		breakfast = r.Breakfast.PerPersonRate * float64(r.PartySize) * float64(nights)
	}

	r.TotalPrice = lodging + breakfast
}
