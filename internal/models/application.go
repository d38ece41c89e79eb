// internal/models/application.go
package models

import "time"

// ApplicationRow is the canonical view model for a worker application. Rows
// are created fresh on every fetch; local mutation is limited to the
// optimistic decision patch after a confirmed approve/decline.
type ApplicationRow struct {
	ID             string `json:"id"`
	RequestGroupID string `json:"request_group_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
	Age       *int   `json:"age,omitempty"`

	Email          string `json:"email"`
	ContactNumber  string `json:"contact_number"` // 10-digit local
	ContactDisplay string `json:"contact_display,omitempty"` // "+63 9xx xxx xxxx"
	Address        string `json:"address"`

	ServiceTypes       []string `json:"service_types"`
	PrimaryService     string   `json:"primary_service"`
	TaskOrRole         string   `json:"task_or_role"`
	YearsExperience    string   `json:"years_experience"`
	ToolsProvided      bool     `json:"tools_provided"`
	ServiceDescription string   `json:"service_description"`

	Rate        Rate   `json:"rate"`
	RateDisplay string `json:"rate_display"`

	Status          PersistedStatus `json:"status"`
	Decision        Decision        `json:"decision"`
	DecisionDisplay string          `json:"decision_display,omitempty"`

	CreatedAt        string `json:"created_at"`
	CreatedAtTS      int64  `json:"created_at_ts"`
	CreatedAtDisplay string `json:"created_at_display"`

	// Documents keeps the loosely-shaped blob for on-demand resolution;
	// it is hydrated lazily from the group endpoint, not eagerly mapped.
	Documents map[string]interface{} `json:"documents,omitempty"`

	Search string `json:"-"` // precomputed haystack for substring search
}

// EffectiveStatus satisfies the view pipeline. Applications have no derived
// status: what the backend persisted is what is shown.
func (a *ApplicationRow) EffectiveStatus(time.Time) string {
	return string(a.Status)
}

func (a *ApplicationRow) SearchText() string {
	return a.Search
}

func (a *ApplicationRow) ServiceText() string {
	text := a.PrimaryService + " " + a.TaskOrRole
	for _, s := range a.ServiceTypes {
		text += " " + s
	}
	return text
}

// SortField exposes sortable values by key. The timestamp key is numeric;
// everything else compares as text.
func (a *ApplicationRow) SortField(key string) (string, int64, bool) {
	switch key {
	case "created_at", "created_at_ts":
		return "", a.CreatedAtTS, true
	case "email":
		return a.Email, 0, false
	case "service":
		return a.PrimaryService, 0, false
	case "status":
		return string(a.Status), 0, false
	default:
		return a.FullName, 0, false
	}
}

func (a *ApplicationRow) RowID() string {
	return a.ID
}

// ApplyDecision patches the row in place after a confirmed backend action.
func (a *ApplicationRow) ApplyDecision(status PersistedStatus, d Decision) {
	a.Status = status
	a.Decision = d
	a.DecisionDisplay = d.Display()
}
