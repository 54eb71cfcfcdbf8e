package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation failures from NewReport. Callers map these to field-specific
// client guidance.
var (
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrEmptyCustomerID  = errors.New("customer_id cannot be empty")
	ErrBadTimestamp     = errors.New("invalid timestamp format")
)

// Report is a customer-support incident report: one pipeline run's input.
type Report struct {
	Description string
	OccurredAt  time.Time
	CustomerID  string
}

// NewReport validates the raw fields and builds a Report. Description and
// customerID must be non-empty after trimming; timestamp must parse via
// ParseTimestamp.
func NewReport(description, timestamp, customerID string) (Report, error) {
	description = strings.TrimSpace(description)
	customerID = strings.TrimSpace(customerID)
	if description == "" {
		return Report{}, ErrEmptyDescription
	}
	if customerID == "" {
		return Report{}, ErrEmptyCustomerID
	}
	at, err := ParseTimestamp(timestamp)
	if err != nil {
		return Report{}, err
	}
	return Report{Description: description, OccurredAt: at, CustomerID: customerID}, nil
}

// ParseTimestamp parses an ISO 8601 timestamp. A trailing "Z" and offset
// forms are handled by RFC 3339; a timezone-less timestamp is taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrBadTimestamp, s)
}
