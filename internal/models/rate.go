// internal/models/rate.go
package models

import "homecare-admin/internal/normalize"

// RateType distinguishes the two pricing modes workers and clients use.
type RateType string

const (
	RateHourly   RateType = "Hourly Rate"
	RateByTheJob RateType = "By the Job Rate"
)

// Rate is the tri-modal rate shape shared by applications and requests.
// Exactly one of {From,To} or {Value} is meaningfully populated, keyed by
// Type; the other side stays nil and is ignored in cost display.
type Rate struct {
	Type  RateType `json:"type"`
	From  *float64 `json:"from,omitempty"`
	To    *float64 `json:"to,omitempty"`
	Value *float64 `json:"value,omitempty"`
}

// Display renders the rate for list views.
func (r Rate) Display() string {
	switch r.Type {
	case RateHourly:
		if r.From == nil && r.To == nil {
			return "-"
		}
		return normalize.CurrencyPHP(deref(r.From)) + " - " + normalize.CurrencyPHP(deref(r.To)) + " / hour"
	case RateByTheJob:
		if r.Value == nil {
			return "-"
		}
		return normalize.CurrencyPHP(deref(r.Value))
	default:
		return "-"
	}
}

func deref(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
