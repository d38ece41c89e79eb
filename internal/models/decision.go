// internal/models/decision.go
package models

// Decline reason choices offered in the admin confirmation dialog.
const (
	ReasonIncompleteDetails   = "Incomplete details"
	ReasonInvalidDocuments    = "Invalid documents"
	ReasonDuplicateRecord     = "Duplicate application"
	ReasonDoesNotMeetCriteria = "Does not meet requirements"
	ReasonOther               = "Other"
)

// ReasonChoices is the fixed enumerated reason set, in display order.
var ReasonChoices = []string{
	ReasonIncompleteDetails,
	ReasonInvalidDocuments,
	ReasonDuplicateRecord,
	ReasonDoesNotMeetCriteria,
	ReasonOther,
}

// Decision carries decline metadata. Populated only on declined records.
type Decision struct {
	ReasonChoice string `json:"reason_choice,omitempty"`
	ReasonOther  string `json:"reason_other,omitempty"`
	DecidedAt    string `json:"decided_at,omitempty"`
}

// Display joins the chosen reason and the free-text addition. No trailing
// separator is emitted when either side is empty.
func (d Decision) Display() string {
	switch {
	case d.ReasonChoice != "" && d.ReasonOther != "":
		return d.ReasonChoice + " - " + d.ReasonOther
	case d.ReasonChoice != "":
		return d.ReasonChoice
	default:
		return d.ReasonOther
	}
}
