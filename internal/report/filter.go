package report

import (
	"math"
	"sort"
	"strings"
	"time"
)

// FilterAll disables an individual criterion.
const FilterAll = "All"

// Violation category values accepted by Criteria.ViolationCategory, in
// addition to any specific ViolationType value.
const (
	CategoryViolations = "Violations" // any late or overdue record
	CategoryClean      = "Clean"      // neither late nor overdue
	CategoryAfterHours = "AfterHours"
	CategoryLate       = "Late"
	CategoryOverdue    = "Overdue"
)

// topPurposeCount caps the ranked purpose list in Stats.
const topPurposeCount = 8

// Criteria is the filter configuration. Every field is optional; the zero
// value filters nothing.
type Criteria struct {
	Search            string `json:"search,omitempty"`
	DateFrom          string `json:"date_from,omitempty"` // YYYY-MM-DD
	DateTo            string `json:"date_to,omitempty"`
	Status            string `json:"status,omitempty"`
	PermissionType    string `json:"permission_type,omitempty"`
	Hostel            string `json:"hostel,omitempty"`
	ViolationCategory string `json:"violation_category,omitempty"`
}

// ClassifiedRecord pairs a record with its derived violation state.
type ClassifiedRecord struct {
	Record
	Violation ViolationResult `json:"violation"`
}

type PurposeCount struct {
	Purpose string `json:"purpose"`
	Count   int    `json:"count"`
}

// Stats is the aggregate derived from a filtered record set.
type Stats struct {
	Total                int            `json:"total"`
	ByStatus             map[string]int `json:"by_status"`
	ByViolationType      map[string]int `json:"by_violation_type"`
	StatusPercentages    map[string]int `json:"status_percentages"`
	ViolationPercentages map[string]int `json:"violation_percentages"`
	TopPurposes          []PurposeCount `json:"top_purposes"`
}

type FilterResult struct {
	Filtered []ClassifiedRecord `json:"filtered"`
	Stats    Stats              `json:"stats"`
}

// ApplyFilters runs the predicate pipeline in its fixed order (search, date
// range, status, permission type, hostel, violation category) and aggregates
// the survivors. The predicates are independent AND conditions; the order is
// fixed so intermediate counts stay deterministic.
func ApplyFilters(records []ClassifiedRecord, c Criteria) FilterResult {
	filtered := filterBySearch(records, c.Search)
	filtered = filterByDateRange(filtered, c.DateFrom, c.DateTo)
	filtered = filterByStatus(filtered, c.Status)
	filtered = filterByPermissionType(filtered, c.PermissionType)
	filtered = filterByHostel(filtered, c.Hostel)
	filtered = filterByViolationCategory(filtered, c.ViolationCategory)

	return FilterResult{
		Filtered: filtered,
		Stats:    aggregate(filtered),
	}
}

func isNoop(criterion string) bool {
	return criterion == "" || criterion == FilterAll
}

func filterBySearch(records []ClassifiedRecord, search string) []ClassifiedRecord {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return records
	}

	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		if matchesSearch(r.Record, search) {
			out = append(out, r)
		}
	}
	return out
}

func matchesSearch(r Record, search string) bool {
	for _, field := range []string{r.Name, r.Hostel, r.Institution, r.Course, r.Purpose, r.ID} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// filterByDateRange keeps records whose [date_from, date_to] interval overlaps
// the inclusive criteria range. A record with an unparsable date is kept
// (fail-open) so malformed data is never silently hidden.
func filterByDateRange(records []ClassifiedRecord, from, to string) []ClassifiedRecord {
	if strings.TrimSpace(from) == "" && strings.TrimSpace(to) == "" {
		return records
	}

	start, startOK := parseDay(from)
	end, endOK := parseDay(to)
	if !startOK && !endOK {
		return records
	}

	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		recFrom, fromOK := parseDay(r.DateFrom)
		recTo, toOK := parseDay(r.DateTo)
		if !fromOK || !toOK {
			out = append(out, r) // fail-open
			continue
		}
		if overlaps(recFrom, recTo, start, startOK, end, endOK) {
			out = append(out, r)
		}
	}
	return out
}

func overlaps(recFrom, recTo time.Time, start time.Time, startOK bool, end time.Time, endOK bool) bool {
	if startOK && recTo.Before(start) {
		return false
	}
	if endOK && recFrom.After(end) {
		return false
	}
	return true
}

func filterByStatus(records []ClassifiedRecord, status string) []ClassifiedRecord {
	if isNoop(status) {
		return records
	}
	want := ParseStatus(status)

	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		if r.Status == want {
			out = append(out, r)
		}
	}
	return out
}

func filterByPermissionType(records []ClassifiedRecord, permissionType string) []ClassifiedRecord {
	if isNoop(permissionType) {
		return records
	}
	want := ParsePermissionType(permissionType)

	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		if r.PermissionType == want {
			out = append(out, r)
		}
	}
	return out
}

func filterByHostel(records []ClassifiedRecord, hostel string) []ClassifiedRecord {
	if isNoop(hostel) {
		return records
	}

	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.Hostel, hostel) || strings.EqualFold(r.Course, hostel) {
			out = append(out, r)
		}
	}
	return out
}

func filterByViolationCategory(records []ClassifiedRecord, category string) []ClassifiedRecord {
	if isNoop(category) {
		return records
	}

	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		if matchesViolationCategory(r.Violation, category) {
			out = append(out, r)
		}
	}
	return out
}

func matchesViolationCategory(v ViolationResult, category string) bool {
	switch category {
	case CategoryViolations:
		return v.IsLate || v.IsOverdue
	case CategoryClean:
		return !v.IsLate && !v.IsOverdue
	case CategoryAfterHours:
		return v.IsAfterHours
	case CategoryLate:
		return v.IsLate
	case CategoryOverdue:
		return v.IsOverdue
	default:
		return v.ViolationType == ViolationType(category)
	}
}

func aggregate(records []ClassifiedRecord) Stats {
	stats := Stats{
		Total:                len(records),
		ByStatus:             make(map[string]int),
		ByViolationType:      make(map[string]int),
		StatusPercentages:    make(map[string]int),
		ViolationPercentages: make(map[string]int),
	}

	purposeCounts := make(map[string]int)
	purposeOrder := make([]string, 0)

	for _, r := range records {
		stats.ByStatus[string(r.Status)]++
		stats.ByViolationType[string(r.Violation.ViolationType)]++

		purpose := strings.TrimSpace(r.Purpose)
		if purpose == "" {
			continue
		}
		if _, seen := purposeCounts[purpose]; !seen {
			purposeOrder = append(purposeOrder, purpose)
		}
		purposeCounts[purpose]++
	}

	for status, count := range stats.ByStatus {
		stats.StatusPercentages[status] = percentage(count, stats.Total)
	}
	for vt, count := range stats.ByViolationType {
		stats.ViolationPercentages[vt] = percentage(count, stats.Total)
	}

	stats.TopPurposes = topPurposes(purposeCounts, purposeOrder)

	return stats
}

func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// topPurposes ranks purposes by descending count, ties broken by
// first-encountered order, capped at topPurposeCount.
func topPurposes(counts map[string]int, order []string) []PurposeCount {
	ranked := make([]PurposeCount, 0, len(order))
	for _, purpose := range order {
		ranked = append(ranked, PurposeCount{Purpose: purpose, Count: counts[purpose]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > topPurposeCount {
		ranked = ranked[:topPurposeCount]
	}
	return ranked
}
