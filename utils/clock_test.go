package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, m)

	for _, bad := range []string{"9:00", "09:0", "9:5", "24:00", "09:60", "0900", " 09:00", "09:00 ", ""} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "17:45"} {
		m, err := ParseClock(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatClock(m))
	}
}

func TestSlotStartUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at, err := SlotStart("2025-06-02", "09:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 3, 30, 0, 0, time.UTC), at.UTC())
}
