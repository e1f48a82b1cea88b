package timezone_test

import (
	"testing"
	"time"

	"homecare/shared/constant"
	"homecare/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useZone(t *testing.T, name string) {
	t.Helper()

	previous := timezone.GetLocation()
	timezone.Load(name)

	t.Cleanup(func() { timezone.Load(previous.String()) })
}

func TestLoad(t *testing.T) {
	useZone(t, "Asia/Jakarta")
	assert.Equal(t, "Asia/Jakarta", timezone.GetLocation().String())

	assert.Equal(t, time.UTC, timezone.Load("Mars/Olympus_Mons"))
	assert.Equal(t, time.UTC, timezone.Load(""))
}

func TestParseAndFormat(t *testing.T) {
	useZone(t, "Asia/Jakarta")

	start, err := timezone.Parse(constant.DayTimeFormat, "2026-03-03 09:00")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, "09:00", timezone.Format(start.UTC(), constant.ClockFormat))
	assert.Equal(t, 9, timezone.ToAppTime(start.UTC()).Hour())

	_, err = timezone.Parse(constant.DayFormat, "2026-02-30")
	assert.Error(t, err)
}

func TestDay(t *testing.T) {
	useZone(t, "Asia/Jakarta")

	start, end, err := timezone.Day("2026-03-03")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = timezone.Day("03/03/2026")
	assert.Error(t, err)
}

func TestNow(t *testing.T) {
	useZone(t, "UTC")

	assert.Equal(t, time.UTC, timezone.Now().Location())
}
