package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTypeValid(t *testing.T) {
	tests := []struct {
		in   Type
		want bool
	}{
		{Income, true},
		{Expense, true},
		{Type(""), false},
		{Type("transfer"), false},
		{Type("INCOME"), false},
	}
	for _, tt := range tests {
		if got := tt.in.Valid(); got != tt.want {
			t.Errorf("Type(%q).Valid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAmountUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		ok    bool
		value float64
	}{
		{"number", `12.5`, true, 12.5},
		{"integer", `40`, true, 40},
		{"numeric string", `"99.99"`, true, 99.99},
		{"negative number", `-3`, true, -3},
		{"non-numeric string", `"abc"`, false, 0},
		{"empty string", `""`, false, 0},
		{"padded string", `" 7 "`, true, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			if err := json.Unmarshal([]byte(tt.in), &a); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if a.OK != tt.ok {
				t.Fatalf("OK = %v, want %v", a.OK, tt.ok)
			}
			if tt.ok && a.Value != tt.value {
				t.Fatalf("Value = %v, want %v", a.Value, tt.value)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := ParseDate("2024-06-15T10:30:00Z"); err != nil {
		t.Fatalf("RFC3339 rejected: %v", err)
	}
	if _, err := ParseDate("not-a-date"); err == nil {
		t.Fatal("expected error for malformed date")
	}
	if _, err := ParseDate("31/01/2024"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestValidationError(t *testing.T) {
	var ve ValidationError
	if ve.Err() != nil {
		t.Fatal("empty ValidationError should yield nil")
	}
	ve.Add("type", "must be income or expense")
	ve.Add("amount", "must be numeric")
	err := ve.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	got, ok := AsValidation(err)
	if !ok {
		t.Fatal("AsValidation failed")
	}
	if len(got.Fields) != 2 || got.Fields[0].Field != "type" {
		t.Fatalf("unexpected fields: %+v", got.Fields)
	}
	if !errors.As(err, &got) {
		t.Fatal("errors.As should match *ValidationError")
	}
}
