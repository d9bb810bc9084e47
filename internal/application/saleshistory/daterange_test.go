package saleshistory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_MonthScenario(t *testing.T) {
	r := NewResolver(fixedClock(refTime), time.UTC, time.Sunday)

	got := r.Resolve(RangeMonth, "", "")

	assert.Equal(t, DateRange{Start: "2024-03-01", End: "2024-03-15"}, got)
}

func TestResolver_Tokens(t *testing.T) {
	r := NewResolver(fixedClock(refTime), time.UTC, time.Sunday)

	cases := []struct {
		token RangeToken
		start string
	}{
		{RangeToday, "2024-03-15"},
		{RangeWeek, "2024-03-10"},
		{RangeQuarter, "2024-01-01"},
		{RangeYear, "2024-01-01"},
	}
	for _, tc := range cases {
		t.Run(string(tc.token), func(t *testing.T) {
			got := r.Resolve(tc.token, "", "")
			assert.Equal(t, tc.start, got.Start)
			assert.Equal(t, "2024-03-15", got.End)
		})
	}
}

func TestResolver_WeekStart(t *testing.T) {
	monday := NewResolver(fixedClock(refTime), time.UTC, time.Monday)
	assert.Equal(t, "2024-03-11", monday.Resolve(RangeWeek, "", "").Start)

	// On the first day of the week the range is that single day.
	sunday := NewResolver(fixedClock(time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)), time.UTC, time.Sunday)
	assert.Equal(t, DateRange{Start: "2024-03-10", End: "2024-03-10"}, sunday.Resolve(RangeWeek, "", ""))
}

func TestResolver_EndsTodayAndIsOrdered(t *testing.T) {
	days := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 6, 0, 0, 0, time.UTC),
	}
	tokens := []RangeToken{RangeToday, RangeWeek, RangeMonth, RangeQuarter, RangeYear}

	for _, day := range days {
		r := NewResolver(fixedClock(day), time.UTC, time.Sunday)
		for _, token := range tokens {
			got := r.Resolve(token, "", "")
			assert.Equal(t, day.Format(DateLayout), got.End, "%s on %s", token, day)
			assert.LessOrEqual(t, got.Start, got.End, "%s on %s", token, day)
			assert.NoError(t, got.Validate())
		}
	}
}

func TestResolver_UsesStoreTimezone(t *testing.T) {
	eat := time.FixedZone("EAT", 3*60*60)
	late := time.Date(2024, 3, 31, 22, 30, 0, 0, time.UTC)
	r := NewResolver(fixedClock(late), eat, time.Sunday)

	assert.Equal(t, DateRange{Start: "2024-04-01", End: "2024-04-01"}, r.Resolve(RangeMonth, "", ""))
	assert.Equal(t, "2024-04-01", r.Resolve(RangeQuarter, "", "").Start)
}

func TestResolver_CustomVerbatim(t *testing.T) {
	r := NewResolver(fixedClock(refTime), time.UTC, time.Sunday)

	assert.Equal(t, DateRange{Start: "2024-02-01", End: ""}, r.Resolve(RangeCustom, "2024-02-01", ""))
	assert.Equal(t, DateRange{}, r.Resolve(RangeCustom, "", ""))
}

func TestParseRangeToken(t *testing.T) {
	tok, err := ParseRangeToken(" Month ")
	require.NoError(t, err)
	assert.Equal(t, RangeMonth, tok)

	tok, err = ParseRangeToken("")
	require.NoError(t, err)
	assert.Equal(t, RangeToday, tok)

	_, err = ParseRangeToken("fortnight")
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestDateRange_Validate(t *testing.T) {
	assert.NoError(t, DateRange{}.Validate())
	assert.NoError(t, DateRange{Start: "2024-03-01"}.Validate())
	assert.ErrorIs(t, DateRange{Start: "2024-03-02", End: "2024-03-01"}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, DateRange{Start: "03/01/2024"}.Validate(), ErrInvalidRange)
}

func TestDateRange_Bounds(t *testing.T) {
	tr, err := DateRange{Start: "2024-03-01", End: "2024-03-15"}.Bounds(time.UTC)
	require.NoError(t, err)
	require.NotNil(t, tr.From)
	require.NotNil(t, tr.To)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *tr.From)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), *tr.To)

	open, err := DateRange{End: "2024-03-15"}.Bounds(time.UTC)
	require.NoError(t, err)
	assert.Nil(t, open.From)
	assert.NotNil(t, open.To)
}
