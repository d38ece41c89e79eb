// internal/api/validate.go
package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	commonerrors "homecare-admin/internal/common/errors"
	"homecare-admin/internal/models"
)

// declineSchema validates a decline payload before it leaves the console:
// the chosen reason must be one of the fixed set, free text is bounded, and
// at least one of the two must be present.
var declineSchema = gojsonschema.NewGoLoader(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"reason_choice": map[string]interface{}{
			"type": "string",
			"enum": models.ReasonChoices,
		},
		"reason_other": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 500,
		},
	},
	"anyOf": []interface{}{
		map[string]interface{}{"required": []interface{}{"reason_choice"}},
		map[string]interface{}{"required": []interface{}{"reason_other"}},
	},
})

// ValidateDecision checks a decline payload against the schema.
func ValidateDecision(d models.Decision) error {
	doc := map[string]interface{}{}
	if d.ReasonChoice != "" {
		doc["reason_choice"] = d.ReasonChoice
	}
	if strings.TrimSpace(d.ReasonOther) != "" {
		doc["reason_other"] = strings.TrimSpace(d.ReasonOther)
	}

	result, err := gojsonschema.Validate(declineSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return commonerrors.NewInvalidDecisionError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return commonerrors.NewInvalidDecisionError(strings.Join(details, "; "))
	}
	return nil
}
