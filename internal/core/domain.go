package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

type (
	// Type discriminates income from expense records. No other value is
	// ever persisted.
	Type string

	// Transaction is the sole persisted entity: a single income or
	// expense record. ID is assigned by the store on creation and is
	// immutable afterwards.
	Transaction struct {
		ID          string    `json:"id"`
		Type        Type      `json:"type"`
		Amount      float64   `json:"amount"`
		Description string    `json:"description,omitempty"`
		Category    string    `json:"category,omitempty"`
		Date        time.Time `json:"date"`
	}
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("not found")

func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// Amount carries a monetary value decoded from JSON. Browser clients send
// amounts either as a number or as a numeric string, so decoding never
// fails outright: malformed input is kept and reported as a field-level
// validation error instead of a generic decode failure.
type Amount struct {
	Value float64
	Raw   string
	OK    bool
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	a.Raw = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(a.Raw, 64)
	if err != nil {
		a.OK = false
		return nil
	}
	a.Value = v
	a.OK = true
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Value)
}

// ParseDate accepts the ISO-8601 shapes clients actually send: a plain
// calendar date or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// FieldError describes a single failed input constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates one entry per failing field. It is checked
// at the boundary before any store access; no record is written when it
// is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no field failed, so call sites can return it
// unconditionally.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
