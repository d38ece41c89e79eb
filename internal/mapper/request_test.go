// internal/mapper/request_test.go
package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homecare-admin/internal/models"
)

func TestServiceRequest_Mapping(t *testing.T) {
	raw := map[string]interface{}{
		"id":     "req-9",
		"status": "pending",
		"info": map[string]interface{}{
			"first_name":     "Liza",
			"last_name":      "Moreno",
			"contact_number": "+639171234567",
		},
		"details": map[string]interface{}{
			"service_type":   "Laundry",
			"preferred_date": "2026-09-15",
			"preferred_time": "14:30",
			"urgent":         "yes",
		},
		"created_at": "2026-08-20T10:00:00Z",
	}

	row := ServiceRequest(raw)

	assert.Equal(t, "req-9", row.ID)
	assert.Equal(t, "Liza Moreno", row.FullName)
	assert.Equal(t, "9171234567", row.ContactNumber)
	assert.Equal(t, "Laundry", row.ServiceType)
	assert.Equal(t, "2026-09-15", row.PreferredDate)
	assert.Equal(t, "2:30 PM", row.PreferredTime)
	assert.True(t, row.Urgent)
	assert.Equal(t, models.StatusPending, row.Status)
	assert.NotZero(t, row.CreatedAtTS)
}

func TestServiceRequest_ExpiredIsDerivedNotPersisted(t *testing.T) {
	row := ServiceRequest(map[string]interface{}{
		"status": "pending",
		"details": map[string]interface{}{
			"preferred_date": "2026-08-01",
		},
	})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, models.StatusPending, row.Status)
	assert.Equal(t, "expired", row.EffectiveStatus(now))
	assert.False(t, row.ActionsEnabled(now))

	// Same-day preferred date is not expired.
	row.PreferredDate = "2026-08-30"
	assert.Equal(t, "pending", row.EffectiveStatus(now))
	assert.True(t, row.ActionsEnabled(now))
}

func TestServiceRequests_ExcludesCancelled(t *testing.T) {
	rows := ServiceRequests([]map[string]interface{}{
		{"id": "a", "status": "cancelled"},
		{"id": "b", "status": "approved"},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ID)
}

func TestMergeGroupDetail(t *testing.T) {
	row := ServiceRequest(map[string]interface{}{
		"id": "req-1",
		"info": map[string]interface{}{
			"full_name": "Liza Moreno",
			"address":   "Old Address",
		},
	})

	merged := MergeGroupDetail(row, map[string]interface{}{
		"details": map[string]interface{}{
			"description": "Full house laundry pickup",
			"image":       "https://cdn.example.com/req-1.jpg",
		},
	})

	assert.Equal(t, "Full house laundry pickup", merged.Description)
	assert.Equal(t, "https://cdn.example.com/req-1.jpg", merged.ImageURL)
	assert.Equal(t, "Old Address", merged.Address)
	assert.Equal(t, "Liza Moreno", merged.FullName)

	// Empty detail leaves the row untouched.
	same := MergeGroupDetail(merged, nil)
	assert.Equal(t, merged, same)
}
