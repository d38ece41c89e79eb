// internal/models/counts.go
package models

// Counts mirrors the backend count endpoints.
type Counts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Declined int `json:"declined"`
	Total    int `json:"total"`
}

// Shift applies an optimistic local adjustment after a confirmed decision:
// one off the pending bucket, one onto the decided bucket. Buckets never go
// negative even if a concurrent admin got there first.
func (c Counts) Shift(to PersistedStatus) Counts {
	if c.Pending > 0 {
		c.Pending--
	}
	switch to {
	case StatusApproved:
		c.Approved++
	case StatusDeclined:
		c.Declined++
	}
	return c
}
