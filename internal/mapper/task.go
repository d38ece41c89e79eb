// internal/mapper/task.go
package mapper

import (
	"sort"
	"strings"

	"homecare-admin/internal/normalize"
)

// job_details arrives in one of three shapes: a plain string, an array of
// {service, tasks[]} groups, or an object keyed by service name. The descent
// below handles each variant explicitly with a hard depth bound, so it
// terminates on any real payload and returns "" on total failure.
const maxTaskDepth = 4

var taskFieldKeys = []string{
	"task", "task_or_role", "taskOrRole", "role", "position", "title",
}

var serviceFieldKeys = []string{
	"service", "service_type", "serviceType", "category", "name",
}

// Task resolves the single task/role string for a row. The group matching
// the primary service is searched first (case-insensitive exact match on the
// service name), then the first match anywhere.
func Task(details interface{}, primaryService string) string {
	return taskFrom(normalize.MaybeJSON(details), primaryService, 0)
}

func taskFrom(node interface{}, primary string, depth int) string {
	if depth > maxTaskDepth {
		return ""
	}

	switch v := node.(type) {
	case string:
		return strings.TrimSpace(v)

	case []interface{}:
		// First pass: groups whose service matches the primary.
		if primary != "" {
			for _, item := range v {
				group, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				if matchesService(group, primary) {
					if t := taskFromMap(group, primary, depth+1); t != "" {
						return t
					}
				}
			}
		}
		// Second pass: first match anywhere.
		for _, item := range v {
			if t := taskFrom(item, primary, depth+1); t != "" {
				return t
			}
		}

	case map[string]interface{}:
		return taskFromMap(v, primary, depth+1)
	}

	return ""
}

func taskFromMap(m map[string]interface{}, primary string, depth int) string {
	if depth > maxTaskDepth {
		return ""
	}

	// Keyed-by-service shape: the key matching the primary service wins.
	if primary != "" {
		for key, val := range m {
			if strings.EqualFold(strings.TrimSpace(key), primary) {
				if t := taskFrom(val, primary, depth+1); t != "" {
					return t
				}
			}
		}
	}

	// Direct fields before descending.
	for _, key := range taskFieldKeys {
		if s := strings.TrimSpace(normalize.Stringify(m[key])); s != "" {
			return s
		}
	}

	if tasks, ok := m["tasks"]; ok {
		if t := taskFrom(normalize.MaybeJSON(tasks), primary, depth+1); t != "" {
			return t
		}
	}

	// Remaining nested values, in sorted key order so the result is stable.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch m[k].(type) {
		case map[string]interface{}, []interface{}:
			if t := taskFrom(m[k], primary, depth+1); t != "" {
				return t
			}
		}
	}

	return ""
}

func matchesService(group map[string]interface{}, primary string) bool {
	for _, key := range serviceFieldKeys {
		if s := strings.TrimSpace(normalize.Stringify(group[key])); s != "" {
			if strings.EqualFold(s, primary) {
				return true
			}
		}
	}
	return false
}

// Tasks collects the full task list from every known source, deduplicated
// while preserving first-seen order.
func Tasks(details interface{}) []string {
	out := []string{}
	seen := make(map[string]bool)
	collectTasks(normalize.MaybeJSON(details), &out, seen, 0)
	return out
}

func collectTasks(node interface{}, out *[]string, seen map[string]bool, depth int) {
	if depth > maxTaskDepth {
		return
	}

	switch v := node.(type) {
	case string:
		*out = normalize.AppendUnique(*out, seen, normalize.SplitList(v)...)

	case []interface{}:
		for _, item := range v {
			collectTasks(item, out, seen, depth+1)
		}

	case map[string]interface{}:
		for _, key := range taskFieldKeys {
			if s := strings.TrimSpace(normalize.Stringify(v[key])); s != "" {
				*out = normalize.AppendUnique(*out, seen, s)
			}
		}
		if tasks, ok := v["tasks"]; ok {
			collectTasks(normalize.MaybeJSON(tasks), out, seen, depth+1)
		}
	}
}
