package report

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ViolationType is the mutually exclusive tag used for filtering and
// statistics. Exactly one of the leave_*/outpass_*/legacy families is ever
// chosen, determined solely by the record's permission type.
type ViolationType string

const (
	ViolationNone            ViolationType = "none"
	ViolationLeaveLate       ViolationType = "leave_late"
	ViolationLeaveCritical   ViolationType = "leave_critical"
	ViolationOutpassDuration ViolationType = "outpass_duration"
	ViolationOutpassExtended ViolationType = "outpass_extended"
	ViolationOutpassCritical ViolationType = "outpass_critical"
	ViolationLegacy          ViolationType = "legacy"
)

// afterHoursStart is the local hour at or after which a return counts as
// after-hours.
const afterHoursStart = 21

// extendedThresholdHours marks an outpass overrun as extended.
const extendedThresholdHours = 2.0

// leaveGraceHours is the tolerated late window for a same-day leave return.
const leaveGraceHours = 0.25

// defaultOutpassDurationHours is assumed when neither the time window nor the
// free-text duration yields a value.
const defaultOutpassDurationHours = 2.0

// ViolationResult is the derived classification for one record. It is never
// persisted; it lives for one refresh cycle in the result cache.
type ViolationResult struct {
	IsLate       bool `json:"is_late"`
	IsOverdue    bool `json:"is_overdue"`
	IsExtended   bool `json:"is_extended"`
	IsAfterHours bool `json:"is_after_hours"`
	IsCritical   bool `json:"is_critical"`

	ViolationType ViolationType `json:"violation_type"`

	LateDurationHours      float64 `json:"late_duration_hours"`
	OverdueDurationHours   float64 `json:"overdue_duration_hours"`
	ExceedDurationHours    float64 `json:"exceed_duration_hours"`
	RequestedDurationHours float64 `json:"requested_duration_hours"`
	DaysLate               int     `json:"days_late"`

	// Note carries a diagnostic when classification degraded because of
	// malformed input. Empty on a clean classification.
	Note string `json:"note,omitempty"`
}

// lifecyclePhase is the record's position in its lifecycle, computed once and
// then mapped deterministically to a ViolationResult. It replaces the implicit
// early-return control flow of the original report screen: a record with an
// entry time is never in an overdue phase, so overdue and return-time
// violations stay mutually exclusive.
type lifecyclePhase int

const (
	phaseIndeterminate lifecyclePhase = iota
	phaseInFlightNotDue
	phaseInFlightOverdue
	phaseReturnedOnTime
	phaseReturnedLate
)

type phaseInfo struct {
	phase          lifecyclePhase
	expectedReturn time.Time
	actualReturn   time.Time
	overdueHours   float64
	hoursLate      float64
	note           string
}

// Classify derives the violation state for one record at the given instant.
// Deterministic for a fixed now, no side effects, and it never fails:
// malformed date/time fields degrade to a no-violation result with a
// diagnostic note.
func Classify(r Record, now time.Time) ViolationResult {
	info := computePhase(r, now)

	switch info.phase {
	case phaseIndeterminate:
		return ViolationResult{ViolationType: ViolationNone, Note: info.note}
	case phaseInFlightNotDue:
		return ViolationResult{ViolationType: ViolationNone}
	case phaseInFlightOverdue:
		return ViolationResult{
			IsOverdue:            true,
			ViolationType:        ViolationNone,
			OverdueDurationHours: info.overdueHours,
		}
	case phaseReturnedOnTime:
		return ViolationResult{ViolationType: ViolationNone}
	default:
		return classifyLateReturn(r, info)
	}
}

func computePhase(r Record, now time.Time) phaseInfo {
	expected, expectedOK := expectedReturnInstant(r)

	if strings.TrimSpace(r.EntryTime) == "" {
		if !expectedOK {
			return phaseInfo{phase: phaseIndeterminate, note: "expected return not determinable"}
		}
		if r.Status == StatusAccepted && now.After(expected) {
			return phaseInfo{
				phase:          phaseInFlightOverdue,
				expectedReturn: expected,
				overdueHours:   now.Sub(expected).Hours(),
			}
		}
		return phaseInfo{phase: phaseInFlightNotDue, expectedReturn: expected}
	}

	actual, actualOK := parseInstant(r.EntryTime)
	if !expectedOK || !actualOK {
		return phaseInfo{phase: phaseIndeterminate, note: "return instants not determinable"}
	}

	hoursLate := actual.Sub(expected).Hours()
	if hoursLate <= 0 {
		return phaseInfo{phase: phaseReturnedOnTime, expectedReturn: expected, actualReturn: actual}
	}
	return phaseInfo{
		phase:          phaseReturnedLate,
		expectedReturn: expected,
		actualReturn:   actual,
		hoursLate:      hoursLate,
	}
}

// expectedReturnInstant prefers the precomputed field and falls back to
// DateTo + TimeIn.
func expectedReturnInstant(r Record) (time.Time, bool) {
	if t, ok := parseInstant(r.ExpectedReturn); ok {
		return t, true
	}
	return combineDayClock(r.DateTo, r.TimeIn)
}

func classifyLateReturn(r Record, info phaseInfo) ViolationResult {
	res := ViolationResult{ViolationType: ViolationNone}

	hoursLate := info.hoursLate
	daysLate := lateDays(info.actualReturn, info.expectedReturn)
	afterHours := info.actualReturn.Hour() >= afterHoursStart

	res.LateDurationHours = hoursLate
	res.DaysLate = daysLate

	switch r.PermissionType {
	case PermissionLeave:
		switch {
		case daysLate > 0:
			res.ViolationType = ViolationLeaveCritical
			res.IsCritical = true
			res.IsLate = true
		case afterHours:
			res.ViolationType = ViolationLeaveLate
			res.IsLate = true
			res.IsAfterHours = true
		case hoursLate > leaveGraceHours:
			res.ViolationType = ViolationLeaveLate
			res.IsLate = true
		}

	case PermissionOutpass:
		res.RequestedDurationHours = requestedDurationHours(r)
		res.ExceedDurationHours = hoursLate
		res.IsLate = true

		if hoursLate >= extendedThresholdHours {
			res.IsExtended = true
			if sameDay(info.actualReturn, info.expectedReturn) && afterHours {
				res.IsAfterHours = true
				res.IsCritical = true
				res.ViolationType = ViolationOutpassCritical
			} else {
				res.ViolationType = ViolationOutpassExtended
			}
		} else {
			res.ViolationType = ViolationOutpassDuration
		}
		if !res.IsCritical && afterHours {
			res.IsAfterHours = true
		}

	default:
		// Legacy records with no recognizable permission type use the
		// outpass thresholds under their own tag.
		res.ExceedDurationHours = hoursLate
		res.IsLate = true
		res.ViolationType = ViolationLegacy
		res.IsExtended = hoursLate >= extendedThresholdHours
		res.IsAfterHours = afterHours
		res.IsCritical = res.IsExtended && res.IsAfterHours
	}

	return res
}

// lateDays counts whole days between the start of the expected-return day and
// the actual return, clamped at zero.
func lateDays(actual, expected time.Time) int {
	startOfDay := time.Date(expected.Year(), expected.Month(), expected.Day(), 0, 0, 0, 0, expected.Location())
	days := int(math.Floor(actual.Sub(startOfDay).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// requestedDurationHours derives the requested outpass length, preferring the
// time_out/time_in window on the respective dates, then the free-text
// duration, then the default.
func requestedDurationHours(r Record) float64 {
	out, outOK := combineDayClock(r.DateFrom, r.TimeOut)
	in, inOK := combineDayClock(r.DateTo, r.TimeIn)
	if outOK && inOK && in.After(out) {
		return in.Sub(out).Hours()
	}
	if h, ok := parseDurationText(r.DurationText); ok {
		return h
	}
	return defaultOutpassDurationHours
}

// parseDurationText extracts an hour count from free-text values like
// "2 hours", "90 min" or "3".
func parseDurationText(raw string) (float64, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return 0, false
	}

	numEnd := 0
	for numEnd < len(raw) && (raw[numEnd] == '.' || (raw[numEnd] >= '0' && raw[numEnd] <= '9')) {
		numEnd++
	}
	if numEnd == 0 {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw[:numEnd], 64)
	if err != nil {
		return 0, false
	}

	unit := strings.TrimSpace(raw[numEnd:])
	switch {
	case strings.HasPrefix(unit, "min"):
		return value / 60, true
	case unit == "" || strings.HasPrefix(unit, "h"):
		return value, true
	default:
		return 0, false
	}
}
