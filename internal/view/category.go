// internal/view/category.go
package view

import (
	"regexp"
	"strings"
)

// Category is the fixed tab enum the admin list views group rows under.
type Category string

const (
	CategoryAll         Category = "all"
	CategoryCarpenter   Category = "carpenter"
	CategoryElectrician Category = "electrician"
	CategoryPlumber     Category = "plumber"
	CategoryCarwasher   Category = "carwasher"
	CategoryLaundry     Category = "laundry"
	CategoryOther       Category = "other"
)

// Categories lists the concrete tabs in display order, excluding the
// synthetic "all" tab.
var Categories = []Category{
	CategoryCarpenter,
	CategoryElectrician,
	CategoryPlumber,
	CategoryCarwasher,
	CategoryLaundry,
	CategoryOther,
}

// Free-text service/task strings map onto the enum via keyword patterns;
// the backend never sends a category field directly.
var categoryPatterns = []struct {
	category Category
	pattern  *regexp.Regexp
}{
	{CategoryCarwasher, regexp.MustCompile(`car\s*wash`)},
	{CategoryPlumber, regexp.MustCompile(`plumb|pipe|drain|faucet`)},
	{CategoryElectrician, regexp.MustCompile(`electric|wiring|lighting|outlet`)},
	{CategoryCarpenter, regexp.MustCompile(`carpent|wood|furniture|cabinet`)},
	{CategoryLaundry, regexp.MustCompile(`laundr|iron|wash\s*clothes|garment`)},
}

// Classify maps a free-text service/task string to its category tab.
func Classify(serviceText string) Category {
	lower := strings.ToLower(serviceText)
	for _, cp := range categoryPatterns {
		if cp.pattern.MatchString(lower) {
			return cp.category
		}
	}
	return CategoryOther
}

// ParseCategory normalizes a raw query value into a known category.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryCarpenter, CategoryElectrician, CategoryPlumber,
		CategoryCarwasher, CategoryLaundry, CategoryOther:
		return c
	default:
		return CategoryAll
	}
}
