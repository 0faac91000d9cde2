package allocation

import (
	"encoding/json"
	"sort"
)

// FieldName is the closed enumeration of draft fields that validation can
// flag. Per-line fields carry the room id alongside the name.
type FieldName string

const (
	FieldRooms     FieldName = "rooms"
	FieldStartDate FieldName = "start_date"
	FieldEndDate   FieldName = "end_date"
	FieldQuantity  FieldName = "quantity_booked"
	FieldRate      FieldName = "rate"
	FieldDiscount  FieldName = "discount_applied"
)

// Field identifies where a validation error attaches. RoomID is zero for
// draft-level fields (rooms, start_date, end_date).
type Field struct {
	Name   FieldName `json:"field"`
	RoomID int64     `json:"room_id,omitempty"`
}

// ErrorKind classifies a validation error.
type ErrorKind string

const (
	KindRoomsRequired    ErrorKind = "rooms_required"
	KindStartDateInvalid ErrorKind = "start_date_invalid"
	KindEndDateInvalid   ErrorKind = "end_date_invalid"
	KindQuantityInvalid  ErrorKind = "quantity_invalid"
	KindRateInvalid      ErrorKind = "rate_invalid"
	KindDiscountInvalid  ErrorKind = "discount_invalid"
	KindCapacityExceeded ErrorKind = "capacity_exceeded"
)

// FieldError is one structured validation error: a kind for exhaustive
// handling plus a human-readable message.
type FieldError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Errors is the field-keyed validation result. Empty means the draft may be
// submitted. Validation errors are client-side and recoverable by editing
// the draft; they never reach the network.
type Errors map[Field]*FieldError

func (e Errors) add(f Field, kind ErrorKind, message string) {
	e[f] = &FieldError{Kind: kind, Message: message}
}

// Get returns the error attached to a field, nil when clean.
func (e Errors) Get(name FieldName, roomID int64) *FieldError {
	return e[Field{Name: name, RoomID: roomID}]
}

// HasKind reports whether any error of the given kind is present.
func (e Errors) HasKind(kind ErrorKind) bool {
	for _, fe := range e {
		if fe.Kind == kind {
			return true
		}
	}
	return false
}

// entry is the wire shape of one validation error.
type entry struct {
	Field   FieldName `json:"field"`
	RoomID  int64     `json:"room_id,omitempty"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// MarshalJSON flattens the map into a deterministically ordered array
// (struct keys do not serialize as JSON object keys).
func (e Errors) MarshalJSON() ([]byte, error) {
	entries := make([]entry, 0, len(e))
	for f, fe := range e {
		entries = append(entries, entry{
			Field:   f.Name,
			RoomID:  f.RoomID,
			Kind:    fe.Kind,
			Message: fe.Message,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Field != entries[j].Field {
			return entries[i].Field < entries[j].Field
		}
		return entries[i].RoomID < entries[j].RoomID
	})
	return json.Marshal(entries)
}

// Notification is the uniform surface for server-side failures and commit
// results: transient, dismissible, never an uncaught exception.
type Notification struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)
