// internal/normalize/values.go
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Stringify renders a scalar value as a string. Maps and slices come back
// empty: they are never meaningful as display text.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Stringify(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case map[string]interface{}, []interface{}:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FirstNonEmpty returns the first argument whose string form has
// non-whitespace content, trimmed. All-empty input yields "".
func FirstNonEmpty(values ...interface{}) string {
	for _, v := range values {
		if s := strings.TrimSpace(Stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

// MaybeJSON decodes strings that hold JSON objects or arrays; everything
// else passes through unchanged. Falsy input becomes an empty object so
// callers can index without nil checks.
func MaybeJSON(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return map[string]interface{}{}
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return map[string]interface{}{}
		}
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			var decoded interface{}
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				return decoded
			}
		}
		return v
	default:
		return v
	}
}

// AsMap returns value as a map after MaybeJSON decoding, or an empty map.
func AsMap(value interface{}) map[string]interface{} {
	if m, ok := MaybeJSON(value).(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// ToBool recognizes booleans, 0/1 numerics and the usual yes/no spellings.
// Unrecognized input defaults to false.
func ToBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case int:
		return v == 1
	case int64:
		return v == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "yes", "y", "true", "t":
			return true
		}
		return false
	default:
		return false
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// PHMobile reduces a phone value to the 10-digit local PH mobile number:
// strip non-digits, strip a leading 63 country code or 0 trunk prefix by
// keeping only the last 10 digits, and require the 9 prefix. Anything not
// reducible to a valid number yields "".
func PHMobile(value interface{}) string {
	digits := nonDigits.ReplaceAllString(Stringify(value), "")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if len(digits) == 10 && digits[0] == '9' {
		return digits
	}
	return ""
}

// FormatPHMobile renders the display form with the fixed +63 prefix, or ""
// when no valid number is present.
func FormatPHMobile(value interface{}) string {
	local := PHMobile(value)
	if local == "" {
		return ""
	}
	return fmt.Sprintf("+63 %s %s %s", local[0:3], local[3:6], local[6:10])
}

// CurrencyPHP formats a peso amount with thousands grouping and two
// decimals. Non-numeric input falls back to a plain "₱"-prefixed string,
// and empty input renders "-".
func CurrencyPHP(value interface{}) string {
	raw := strings.TrimSpace(Stringify(value))
	if raw == "" {
		return "-"
	}

	cleaned := strings.NewReplacer(",", "", "₱", "", "PHP", "", " ", "").Replace(raw)
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "₱" + raw
	}

	return "₱" + groupThousands(amount)
}

func groupThousands(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// AppendUnique inserts values into dst preserving first-seen order,
// skipping blanks and duplicates. seen must be shared across calls that
// build the same list.
func AppendUnique(dst []string, seen map[string]bool, values ...string) []string {
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, trimmed)
	}
	return dst
}

var listSeparators = regexp.MustCompile(`[,/]`)

// SplitList splits a comma-or-slash separated string into trimmed parts.
func SplitList(s string) []string {
	parts := listSeparators.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Strings coerces a string, []interface{} or []string value into a
// deduplicated, order-preserving string slice. Comma-separated strings are
// split. Always returns a non-nil slice.
func Strings(raw interface{}) []string {
	result := []string{}
	seen := make(map[string]bool)

	switch v := MaybeJSON(raw).(type) {
	case string:
		result = AppendUnique(result, seen, strings.Split(v, ",")...)
	case []interface{}:
		for _, item := range v {
			result = AppendUnique(result, seen, Stringify(item))
		}
	case []string:
		result = AppendUnique(result, seen, v...)
	}

	return result
}
