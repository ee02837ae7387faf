package report

import (
	"sort"
	"strings"
	"time"
)

// PermissionType is the closed request-kind enum. Free-text values from the
// upstream API are normalized exactly once, at the ingestion boundary.
type PermissionType string

const (
	PermissionOutpass PermissionType = "outpass"
	PermissionLeave   PermissionType = "leave"
	PermissionUnknown PermissionType = "unknown"
)

// ParsePermissionType maps the upstream permission/request_type field to the
// closed enum. Matching is case-insensitive; anything unrecognized routes to
// the legacy/unknown branch instead of being rejected.
func ParsePermissionType(raw string) PermissionType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "leave":
		return PermissionLeave
	case "permission", "outpass":
		return PermissionOutpass
	default:
		return PermissionUnknown
	}
}

// Status is the closed request-status enum.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusAccepted       Status = "Accepted"
	StatusRejected       Status = "Rejected"
	StatusRenewed        Status = "Renewed"
	StatusRenewalPending Status = "Renewal Pending"
	StatusCompleted      Status = "Completed"
	StatusUnknown        Status = "Unknown"
)

// ParseStatus normalizes the upstream status string. Underscores and case
// differences ("RENEWAL_PENDING", "renewal pending") collapse to one variant.
func ParseStatus(raw string) Status {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	switch normalized {
	case "pending":
		return StatusPending
	case "accepted", "approved":
		return StatusAccepted
	case "rejected":
		return StatusRejected
	case "renewed":
		return StatusRenewed
	case "renewal pending":
		return StatusRenewalPending
	case "completed":
		return StatusCompleted
	default:
		return StatusUnknown
	}
}

// Record is one outpass/leave request as the engine sees it. Date and time
// fields stay raw wire strings: the upstream stores institution-local values
// with no offset, and malformed values must degrade per field instead of
// failing the whole record.
type Record struct {
	ID             string         `json:"id"`
	PermissionType PermissionType `json:"permission_type"`
	Status         Status         `json:"status"`

	DateFrom string `json:"date_from"` // YYYY-MM-DD
	DateTo   string `json:"date_to"`
	TimeOut  string `json:"time_out"` // HH:MM:SS
	TimeIn   string `json:"time_in"`

	// EntryTime is the actual recorded return instant; empty until the
	// student re-enters.
	EntryTime string `json:"entry_time,omitempty"`
	// ExpectedReturn is the precomputed expected-return instant; derived
	// from DateTo+TimeIn when absent.
	ExpectedReturn string `json:"expected_return_datetime,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	// Descriptive fields, opaque to the classifier.
	Name         string `json:"name"`
	Hostel       string `json:"hostel"`
	Institution  string `json:"institution"`
	Course       string `json:"course"`
	Purpose      string `json:"purpose"`
	Destination  string `json:"destination"`
	DurationText string `json:"duration,omitempty"`
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseInstant parses an institution-local timestamp. Values carrying an
// explicit offset are honored as-is.
func parseInstant(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseDay(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// combineDayClock builds an instant from a YYYY-MM-DD date and a HH:MM[:SS]
// clock value.
func combineDayClock(day, clock string) (time.Time, bool) {
	d, ok := parseDay(day)
	if !ok {
		return time.Time{}, false
	}
	clock = strings.TrimSpace(clock)
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		c, err = time.Parse("15:04", clock)
		if err != nil {
			return time.Time{}, false
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.Local), true
}

// sortInstant is the ordering timestamp: the later of updated_at/created_at.
// Unparsable values order as zero (oldest).
func sortInstant(r Record) time.Time {
	created, _ := parseInstant(r.CreatedAt)
	updated, _ := parseInstant(r.UpdatedAt)
	if updated.After(created) {
		return updated
	}
	return created
}

// Normalize de-duplicates a fetched batch by id, keeping the record with the
// later of updated_at/created_at, and sorts the result newest-first by the
// same timestamp.
func Normalize(records []Record) []Record {
	keepIdx := make(map[string]int, len(records))
	out := make([]Record, 0, len(records))

	for _, r := range records {
		idx, seen := keepIdx[r.ID]
		if !seen {
			keepIdx[r.ID] = len(out)
			out = append(out, r)
			continue
		}
		if sortInstant(r).After(sortInstant(out[idx])) {
			out[idx] = r
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return sortInstant(out[i]).After(sortInstant(out[j]))
	})

	return out
}
