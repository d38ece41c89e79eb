// internal/models/request.go
package models

import (
	"time"

	"homecare-admin/internal/normalize"
)

// RequestRow is the canonical view model for a client service request.
type RequestRow struct {
	ID             string `json:"id"`
	RequestGroupID string `json:"request_group_id"`

	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	ContactNumber  string `json:"contact_number"`
	ContactDisplay string `json:"contact_display,omitempty"` // "+63 9xx xxx xxxx"
	Address        string `json:"address"`

	ServiceType   string `json:"service_type"`
	TaskOrRole    string `json:"task_or_role"`
	PreferredDate string `json:"preferred_date"` // raw backend value
	PreferredTime string `json:"preferred_time"` // 12-hour display form
	Urgent        bool   `json:"urgent"`
	ToolsProvided bool   `json:"tools_provided"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url,omitempty"`

	Rate        Rate   `json:"rate"`
	RateDisplay string `json:"rate_display"`

	Status          PersistedStatus `json:"status"`
	Decision        Decision        `json:"decision"`
	DecisionDisplay string          `json:"decision_display,omitempty"`

	CreatedAt        string `json:"created_at"`
	CreatedAtTS      int64  `json:"created_at_ts"`
	CreatedAtDisplay string `json:"created_at_display"`

	Search string `json:"-"`
}

// EffectiveStatus layers the virtual expired status over the persisted one.
// A pending request whose preferred date is strictly before today's midnight
// shows as expired. Recomputed on every evaluation, never cached.
func (r *RequestRow) EffectiveStatus(now time.Time) string {
	if r.Status == StatusPending && normalize.IsExpired(r.PreferredDate, now) {
		return string(DerivedExpired)
	}
	return string(r.Status)
}

// ActionsEnabled reports whether approve/decline are allowed. Expired
// requests suppress both.
func (r *RequestRow) ActionsEnabled(now time.Time) bool {
	return r.EffectiveStatus(now) == string(StatusPending)
}

func (r *RequestRow) SearchText() string {
	return r.Search
}

func (r *RequestRow) ServiceText() string {
	return r.ServiceType + " " + r.TaskOrRole
}

func (r *RequestRow) SortField(key string) (string, int64, bool) {
	switch key {
	case "created_at", "created_at_ts":
		return "", r.CreatedAtTS, true
	case "email":
		return r.Email, 0, false
	case "service":
		return r.ServiceType, 0, false
	case "preferred_date":
		return "", normalize.EpochMillis(r.PreferredDate), true
	case "status":
		return string(r.Status), 0, false
	default:
		return r.FullName, 0, false
	}
}

func (r *RequestRow) RowID() string {
	return r.ID
}

func (r *RequestRow) ApplyDecision(status PersistedStatus, d Decision) {
	r.Status = status
	r.Decision = d
	r.DecisionDisplay = d.Display()
}
