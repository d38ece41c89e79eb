// internal/mapper/alias.go
// Package mapper reconciles heterogeneous backend payloads into the canonical
// row models. The backend has historically used several naming conventions
// for the same concept (snake_case vs camelCase, values nested under
// info/profile/information or work/details/work_details), so every field is
// resolved through an ordered alias list instead of a hand-written cascade.
package mapper

import (
	"strconv"
	"strings"

	"homecare-admin/internal/models"
	"homecare-admin/internal/normalize"
)

// pick returns the first non-empty value for any alias key, searching scopes
// in order. Scope order encodes precedence: the top-level record wins over
// nested sections.
func pick(scopes []map[string]interface{}, keys ...string) interface{} {
	for _, scope := range scopes {
		for _, key := range keys {
			v, ok := scope[key]
			if !ok {
				continue
			}
			if nonEmpty(v) {
				return v
			}
		}
	}
	return nil
}

func pickString(scopes []map[string]interface{}, keys ...string) string {
	return strings.TrimSpace(normalize.Stringify(pick(scopes, keys...)))
}

// firstSection returns the first named sub-object that exists and is not
// empty, decoding JSON-encoded strings along the way.
func firstSection(raw map[string]interface{}, names ...string) map[string]interface{} {
	for _, name := range names {
		if m := normalize.AsMap(raw[name]); len(m) > 0 {
			return m
		}
	}
	return map[string]interface{}{}
}

func nonEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case map[string]interface{}:
		return len(val) > 0
	case []interface{}:
		return len(val) > 0
	default:
		return true
	}
}

// floatPtr parses a numeric value, tolerating currency punctuation in string
// input. Returns nil when nothing numeric is present.
func floatPtr(v interface{}) *float64 {
	s := strings.TrimSpace(normalize.Stringify(v))
	if s == "" {
		return nil
	}
	cleaned := strings.NewReplacer(",", "", "₱", "", "PHP", "", " ", "").Replace(s)
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

func intPtr(v interface{}) *int {
	f := floatPtr(v)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// joinName concatenates name parts with a single-space join, dropping empty
// parts.
func joinName(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}

// mapRate resolves the tri-modal rate shape. The populated side follows the
// rate type; the other side is left nil.
func mapRate(scopes []map[string]interface{}) models.Rate {
	rawType := strings.ToLower(pickString(scopes, "rate_type", "rateType", "type", "pricing_type"))

	var rate models.Rate
	switch {
	case strings.Contains(rawType, "hour"):
		rate.Type = models.RateHourly
		rate.From = floatPtr(pick(scopes, "rate_from", "rateFrom", "from", "min", "hourly_from"))
		rate.To = floatPtr(pick(scopes, "rate_to", "rateTo", "to", "max", "hourly_to"))
	case strings.Contains(rawType, "job"):
		rate.Type = models.RateByTheJob
		rate.Value = floatPtr(pick(scopes, "rate_value", "rateValue", "value", "amount", "job_rate"))
	default:
		// Unspecified type: infer from whichever side is present.
		if v := floatPtr(pick(scopes, "rate_value", "rateValue", "value", "amount")); v != nil {
			rate.Type = models.RateByTheJob
			rate.Value = v
		} else if f := floatPtr(pick(scopes, "rate_from", "rateFrom", "from")); f != nil {
			rate.Type = models.RateHourly
			rate.From = f
			rate.To = floatPtr(pick(scopes, "rate_to", "rateTo", "to"))
		}
	}
	return rate
}

// mapDecision pulls decline metadata, present only on declined records.
func mapDecision(scopes []map[string]interface{}) models.Decision {
	return models.Decision{
		ReasonChoice: pickString(scopes, "reason_choice", "reasonChoice", "decline_reason", "declineReason"),
		ReasonOther:  pickString(scopes, "reason_other", "reasonOther", "other_reason", "otherReason"),
		DecidedAt:    pickString(scopes, "decided_at", "decidedAt", "decision_date"),
	}
}

// searchText builds the lowercase haystack used by the substring filter.
func searchText(parts ...string) string {
	return strings.ToLower(joinName(parts...))
}
