package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/modules/review/domain"
)

func TestComputeDueDatesDefaultCycle(t *testing.T) {
	t.Parallel()
	got := domain.ComputeDueDates("2024-01-01", []int{1, 7, 15})
	assert.Equal(t, []domain.DateKey{"2024-01-02", "2024-01-08", "2024-01-16"}, got)
}

func TestComputeDueDatesIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()
	zone := time.FixedZone("UTC-5", -5*3600)
	for _, hour := range []int{0, 9, 23} {
		studied := time.Date(2024, 3, 9, hour, 59, 59, 0, zone)
		got := domain.ComputeDueDates(domain.KeyOf(studied), []int{1})
		require.Len(t, got, 1)
		assert.Equal(t, domain.DateKey("2024-03-10"), got[0], "hour %d", hour)
	}
}

func TestComputeDueDatesKeepsInputOrder(t *testing.T) {
	t.Parallel()
	got := domain.ComputeDueDates("2024-02-27", []int{30, 2, 1})
	assert.Equal(t, []domain.DateKey{"2024-03-28", "2024-02-29", "2024-02-28"}, got)
}

func TestComputeDueDatesSkipsNonPositiveOffsets(t *testing.T) {
	t.Parallel()
	assert.Empty(t, domain.ComputeDueDates("2024-01-01", nil))
	got := domain.ComputeDueDates("2024-01-01", []int{0, -3, 2})
	assert.Equal(t, []domain.DateKey{"2024-01-03"}, got)
}

func TestDaysLate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2, domain.DaysLate("2024-01-10", "2024-01-08"))
	assert.Equal(t, 0, domain.DaysLate("2024-01-10", "2024-01-10"))
	assert.Equal(t, 0, domain.DaysLate("2024-01-10", "2024-01-12"))
	assert.Equal(t, 366, domain.DaysLate("2025-01-01", "2024-01-01"))
}

func TestDefer(t *testing.T) {
	t.Parallel()
	assert.Equal(t, domain.DateKey("2024-01-11"), domain.Defer("2024-01-10", 0))
	assert.Equal(t, domain.DateKey("2024-01-11"), domain.Defer("2024-01-10", 1))
	assert.Equal(t, domain.DateKey("2024-01-11"), domain.Defer("2024-01-10", -4))
	assert.Equal(t, domain.DateKey("2024-02-01"), domain.Defer("2024-01-29", 3))
}

func TestDateKeyAcrossDaylightSaving(t *testing.T) {
	t.Parallel()
	// US daylight saving started on 2024-03-10.
	assert.Equal(t, domain.DateKey("2024-03-11"), domain.DateKey("2024-03-09").AddDays(2))
	assert.Equal(t, 2, domain.DaysBetween("2024-03-09", "2024-03-11"))
	assert.Equal(t, -2, domain.DaysBetween("2024-03-11", "2024-03-09"))
}

func TestParseDateKey(t *testing.T) {
	t.Parallel()
	key, err := domain.ParseDateKey("2024-02-29")
	require.NoError(t, err)
	assert.True(t, key.Valid())

	_, err = domain.ParseDateKey("2023-02-29")
	require.Error(t, err)
	assert.False(t, domain.DateKey("01/02/2024").Valid())
}

func TestNormalizeAndParseOffsets(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1, 3, 7}, domain.NormalizeOffsets([]int{7, 1, 0, 3, 7, -1}))

	got, err := domain.ParseOffsets(" 15, 1,7 ,, 1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 7, 15}, got)
	assert.Equal(t, "1,7,15", domain.FormatOffsets(got))

	_, err = domain.ParseOffsets("1,two")
	require.Error(t, err)
}
