package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRange(t *testing.T) {
	t.Run("valid range", func(t *testing.T) {
		rng, err := NewDateRange(day(2024, 6, 1), day(2024, 6, 3))
		require.NoError(t, err)
		assert.Equal(t, day(2024, 6, 1), rng.Pickup)
		assert.Equal(t, day(2024, 6, 3), rng.Return)
	})

	t.Run("return equal to pickup is rejected", func(t *testing.T) {
		_, err := NewDateRange(day(2024, 6, 1), day(2024, 6, 1))
		assert.Error(t, err)
	})

	t.Run("return before pickup is rejected", func(t *testing.T) {
		_, err := NewDateRange(day(2024, 6, 3), day(2024, 6, 1))
		assert.Error(t, err)
	})

	t.Run("zero dates are rejected", func(t *testing.T) {
		_, err := NewDateRange(time.Time{}, day(2024, 6, 3))
		assert.Error(t, err)
		_, err = NewDateRange(day(2024, 6, 1), time.Time{})
		assert.Error(t, err)
	})
}

func TestDateRange_Days(t *testing.T) {
	tests := []struct {
		name   string
		pickup time.Time
		ret    time.Time
		want   int
	}{
		{"two whole days", day(2024, 6, 1), day(2024, 6, 3), 2},
		{"single day", day(2024, 6, 1), day(2024, 6, 2), 1},
		{"partial day rounds up", day(2024, 6, 1), day(2024, 6, 2).Add(6 * time.Hour), 2},
		{"four days", day(2024, 6, 1), day(2024, 6, 5), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := NewDateRange(tt.pickup, tt.ret)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rng.Days())
		})
	}
}

func TestDateRange_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a    DateRange
		b    DateRange
		want bool
	}{
		{
			"disjoint ranges",
			DateRange{day(2024, 6, 1), day(2024, 6, 3)},
			DateRange{day(2024, 6, 10), day(2024, 6, 12)},
			false,
		},
		{
			"interior overlap",
			DateRange{day(2024, 6, 1), day(2024, 6, 5)},
			DateRange{day(2024, 6, 4), day(2024, 6, 6)},
			true,
		},
		{
			"shared return and pickup day",
			DateRange{day(2024, 6, 1), day(2024, 6, 3)},
			DateRange{day(2024, 6, 3), day(2024, 6, 5)},
			true,
		},
		{
			"contained range",
			DateRange{day(2024, 6, 1), day(2024, 6, 10)},
			DateRange{day(2024, 6, 4), day(2024, 6, 6)},
			true,
		},
		{
			"adjacent next day",
			DateRange{day(2024, 6, 1), day(2024, 6, 3)},
			DateRange{day(2024, 6, 4), day(2024, 6, 6)},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestDateRange_ContainsDay(t *testing.T) {
	rng := DateRange{day(2024, 6, 1), day(2024, 6, 3)}

	assert.True(t, rng.ContainsDay(day(2024, 6, 1)))
	assert.True(t, rng.ContainsDay(day(2024, 6, 2).Add(15*time.Hour)))
	assert.True(t, rng.ContainsDay(day(2024, 6, 3)))
	assert.False(t, rng.ContainsDay(day(2024, 5, 31)))
	assert.False(t, rng.ContainsDay(day(2024, 6, 4)))
}
