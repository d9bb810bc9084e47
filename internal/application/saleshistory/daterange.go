package saleshistory

import (
	"fmt"
	"strings"
	"time"

	domainRepo "github.com/sangkips/salesdesk-api/internal/domain/repository"
)

// DateLayout is the calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// RangeToken names a symbolic date range.
type RangeToken string

const (
	RangeToday   RangeToken = "today"
	RangeWeek    RangeToken = "week"
	RangeMonth   RangeToken = "month"
	RangeQuarter RangeToken = "quarter"
	RangeYear    RangeToken = "year"
	RangeCustom  RangeToken = "custom"
)

// ParseRangeToken accepts a token case-insensitively. Empty means today.
func ParseRangeToken(s string) (RangeToken, error) {
	switch t := RangeToken(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return RangeToday, nil
	case RangeToday, RangeWeek, RangeMonth, RangeQuarter, RangeYear, RangeCustom:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown range %q", ErrInvalidRange, s)
	}
}

// DateRange holds inclusive YYYY-MM-DD bounds. An empty side is unbounded.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// Validate checks both bounds parse and that Start is not after End.
func (d DateRange) Validate() error {
	var start, end time.Time
	var err error
	if d.Start != "" {
		if start, err = time.Parse(DateLayout, d.Start); err != nil {
			return fmt.Errorf("%w: start date %q", ErrInvalidRange, d.Start)
		}
	}
	if d.End != "" {
		if end, err = time.Parse(DateLayout, d.End); err != nil {
			return fmt.Errorf("%w: end date %q", ErrInvalidRange, d.End)
		}
	}
	if d.Start != "" && d.End != "" && start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, d.Start, d.End)
	}
	return nil
}

// Bounds converts the range into a created_at window in loc. End is made
// exclusive at midnight of the following day.
func (d DateRange) Bounds(loc *time.Location) (domainRepo.TimeRange, error) {
	var tr domainRepo.TimeRange
	if d.Start != "" {
		start, err := time.ParseInLocation(DateLayout, d.Start, loc)
		if err != nil {
			return tr, fmt.Errorf("%w: start date %q", ErrInvalidRange, d.Start)
		}
		tr.From = &start
	}
	if d.End != "" {
		end, err := time.ParseInLocation(DateLayout, d.End, loc)
		if err != nil {
			return tr, fmt.Errorf("%w: end date %q", ErrInvalidRange, d.End)
		}
		end = end.AddDate(0, 0, 1)
		tr.To = &end
	}
	return tr, nil
}

// Clock returns the current instant.
type Clock func() time.Time

// Resolver expands range tokens against a reference clock in the store's
// timezone.
type Resolver struct {
	now       Clock
	loc       *time.Location
	weekStart time.Weekday
}

// NewResolver creates a resolver. A nil clock uses time.Now, a nil location
// time.Local.
func NewResolver(now Clock, loc *time.Location, weekStart time.Weekday) *Resolver {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{now: now, loc: loc, weekStart: weekStart}
}

// Location is the timezone calendar dates are resolved in.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve maps token to concrete bounds. Every token except custom ends
// today; custom returns the supplied values verbatim.
func (r *Resolver) Resolve(token RangeToken, customStart, customEnd string) DateRange {
	now := r.now().In(r.loc)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, r.loc)

	var start time.Time
	switch token {
	case RangeCustom:
		return DateRange{Start: customStart, End: customEnd}
	case RangeWeek:
		back := (int(today.Weekday()) - int(r.weekStart) + 7) % 7
		start = today.AddDate(0, 0, -back)
	case RangeMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, r.loc)
	case RangeQuarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		start = time.Date(y, first, 1, 0, 0, 0, 0, r.loc)
	case RangeYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, r.loc)
	default:
		start = today
	}

	return DateRange{Start: start.Format(DateLayout), End: today.Format(DateLayout)}
}
