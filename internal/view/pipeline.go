// internal/view/pipeline.go
// Package view derives list view state from mapped rows: a pure
// filter → sort → paginate pipeline recomputed wholesale whenever its
// inputs change, never incrementally maintained.
package view

import (
	"sort"
	"strings"
	"time"
)

// DefaultPageSize matches the fixed page size of the admin tables.
const DefaultPageSize = 7

// Row is the contract mapped rows expose to the pipeline.
type Row interface {
	EffectiveStatus(now time.Time) string
	SearchText() string
	ServiceText() string
	SortField(key string) (text string, num int64, numeric bool)
}

// Query captures everything the pipeline filters and orders by.
type Query struct {
	Status   string   // "all" or an exact effective status, including "expired"
	Category Category // CategoryAll disables the category filter
	Search   string   // case-insensitive substring over the precomputed haystack
	SortKey  string
	SortDesc bool
	Page     int
	PageSize int
}

// Result is one derived page plus the aggregates the tabs render.
type Result struct {
	Rows       []Row            `json:"rows"`
	Total      int              `json:"total"` // rows after all filters
	Page       int              `json:"page"`
	Pages      int              `json:"pages"`
	Badges     map[Category]int `json:"badges"` // counts over the status-filtered set
	StatusTab  string           `json:"status_tab"`
	SearchTerm string           `json:"search_term"`
}

// Apply runs the full pipeline. Badges are aggregated over the
// status-filtered (not yet category-filtered) set, so switching category
// tabs does not hide the other tabs' counts.
func Apply(rows []Row, q Query, now time.Time) Result {
	byStatus := filterStatus(rows, q.Status, now)

	badges := make(map[Category]int)
	for _, row := range byStatus {
		badges[Classify(row.ServiceText())]++
	}

	filtered := filterCategory(byStatus, q.Category)
	filtered = filterSearch(filtered, q.Search)

	sortRows(filtered, q.SortKey, q.SortDesc)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page, pages := clampPage(q.Page, len(filtered), pageSize)

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return Result{
		Rows:       filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		Pages:      pages,
		Badges:     badges,
		StatusTab:  q.Status,
		SearchTerm: q.Search,
	}
}

func filterStatus(rows []Row, status string, now time.Time) []Row {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" || status == "all" {
		return append([]Row(nil), rows...)
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if row.EffectiveStatus(now) == status {
			out = append(out, row)
		}
	}
	return out
}

func filterCategory(rows []Row, category Category) []Row {
	if category == "" || category == CategoryAll {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if Classify(row.ServiceText()) == category {
			out = append(out, row)
		}
	}
	return out
}

func filterSearch(rows []Row, term string) []Row {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(row.SearchText(), term) {
			out = append(out, row)
		}
	}
	return out
}

// sortRows sorts ascending with a stable sort, then reverses for descending.
// Reversing (rather than flipping the comparator) guarantees descending is
// the exact reverse of ascending, ties included.
func sortRows(rows []Row, key string, desc bool) {
	if key == "" {
		key = "created_at"
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ti, ni, numI := rows[i].SortField(key)
		tj, nj, _ := rows[j].SortField(key)
		if numI {
			return ni < nj
		}
		return strings.ToLower(ti) < strings.ToLower(tj)
	})

	if desc {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
}

// clampPage resets an out-of-range page to 1: when the filtered set shrinks
// below the requested page, the view starts over rather than landing on
// whatever the last page now happens to be.
func clampPage(page, total, pageSize int) (int, int) {
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 || page > pages {
		page = 1
	}
	return page, pages
}

// SortState tracks the column-header toggle behavior: clicking the active
// key flips direction, switching keys resets to ascending.
type SortState struct {
	Key  string
	Desc bool
}

func (s *SortState) Toggle(key string) {
	if s.Key == key {
		s.Desc = !s.Desc
		return
	}
	s.Key = key
	s.Desc = false
}
