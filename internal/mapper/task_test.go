// internal/mapper/task_test.go
package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTask_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		details interface{}
		primary string
		want    string
	}{
		{
			name:    "plain string",
			details: "General Repairs",
			want:    "General Repairs",
		},
		{
			name: "array of groups, matching service first",
			details: []interface{}{
				map[string]interface{}{
					"service": "Carpentry",
					"tasks":   []interface{}{"Cabinet Install"},
				},
				map[string]interface{}{
					"service": "Plumbing",
					"tasks":   []interface{}{"Pipe Repair"},
				},
			},
			primary: "Plumbing",
			want:    "Pipe Repair",
		},
		{
			name: "array falls through to first match when nothing matches the primary",
			details: []interface{}{
				map[string]interface{}{
					"service": "Carpentry",
					"tasks":   []interface{}{"Cabinet Install"},
				},
			},
			primary: "Laundry",
			want:    "Cabinet Install",
		},
		{
			name: "object keyed by service",
			details: map[string]interface{}{
				"Electrical": map[string]interface{}{"task": "Outlet Rewiring"},
				"Plumbing":   map[string]interface{}{"task": "Drain Cleaning"},
			},
			primary: "plumbing",
			want:    "Drain Cleaning",
		},
		{
			name: "direct task field",
			details: map[string]interface{}{
				"task_or_role": "Team Lead",
			},
			want: "Team Lead",
		},
		{
			name:    "json-encoded string decodes first",
			details: `[{"service":"Plumbing","tasks":["Leak Fix"]}]`,
			primary: "Plumbing",
			want:    "Leak Fix",
		},
		{
			name:    "unresolvable shape yields empty",
			details: map[string]interface{}{"count": float64(3)},
			want:    "",
		},
		{
			name:    "nil yields empty",
			details: nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Task(tt.details, tt.primary))
		})
	}
}

func TestTask_DepthBound(t *testing.T) {
	// Deeper than the descent limit; must terminate with "".
	deep := map[string]interface{}{"task": "Too Deep"}
	for i := 0; i < 10; i++ {
		deep = map[string]interface{}{"nested": deep}
	}
	assert.Equal(t, "", Task(deep, ""))
}

func TestTasks_CollectsDeduplicated(t *testing.T) {
	details := []interface{}{
		map[string]interface{}{"tasks": []interface{}{"Pipe Repair", "Drain Cleaning"}},
		map[string]interface{}{"task": "Pipe Repair"},
		"Faucet Install, Drain Cleaning",
	}

	assert.Equal(t,
		[]string{"Pipe Repair", "Drain Cleaning", "Faucet Install"},
		Tasks(details))
}
