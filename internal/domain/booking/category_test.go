package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit-market/service-booking/internal/domain"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"", CategoryAll},
		{"ALL", CategoryAll},
		{"current", CategoryCurrent},
		{"Past", CategoryPast},
		{"FUTURE", CategoryFuture},
		{"waiting", CategoryWaiting},
		{"REJECTED", CategoryRejected},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseCategory_Unknown(t *testing.T) {
	_, err := ParseCategory("UNSUPPORTED_STATUS")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Contains(t, err.Error(), "Unknown state: UNSUPPORTED_STATUS")
}

func TestCategory_Matches_CurrentSpansNow(t *testing.T) {
	start := time.Date(2023, 6, 23, 12, 23, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 12, 23, 0, 0, time.UTC)
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	assert.True(t, CategoryCurrent.Matches(StatusApproved, start, end, now))
	assert.False(t, CategoryPast.Matches(StatusApproved, start, end, now))
	assert.False(t, CategoryFuture.Matches(StatusApproved, start, end, now))
}

func TestCategory_Matches_TemporalExclusivity(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	instants := []time.Time{
		start.Add(-time.Hour),
		start, // boundary: current, not future
		start.Add(time.Hour),
		end, // boundary: current, not past
		end.Add(time.Hour),
	}

	for _, now := range instants {
		matched := 0
		for _, c := range []Category{CategoryCurrent, CategoryPast, CategoryFuture} {
			if c.Matches(StatusApproved, start, end, now) {
				matched++
			}
		}
		assert.Equal(t, 1, matched, "exactly one temporal category must match at %s", now)
	}
}

func TestCategory_Matches_BoundariesAreCurrent(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, CategoryCurrent.Matches(StatusWaiting, start, end, start))
	assert.True(t, CategoryCurrent.Matches(StatusWaiting, start, end, end))
	assert.False(t, CategoryFuture.Matches(StatusWaiting, start, end, start))
	assert.False(t, CategoryPast.Matches(StatusWaiting, start, end, end))
}

func TestCategory_Matches_StatusCategoriesIgnoreTime(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	longAfter := end.AddDate(1, 0, 0)

	assert.True(t, CategoryWaiting.Matches(StatusWaiting, start, end, longAfter))
	assert.True(t, CategoryRejected.Matches(StatusRejected, start, end, longAfter))
	assert.False(t, CategoryWaiting.Matches(StatusApproved, start, end, longAfter))
	assert.False(t, CategoryRejected.Matches(StatusApproved, start, end, longAfter))
}

func TestCategory_Matches_AllMatchesEverything(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, status := range []BookingStatus{StatusWaiting, StatusApproved, StatusRejected} {
		assert.True(t, CategoryAll.Matches(status, start, end, start.Add(-time.Hour)))
		assert.True(t, CategoryAll.Matches(status, start, end, end.Add(time.Hour)))
	}
}
