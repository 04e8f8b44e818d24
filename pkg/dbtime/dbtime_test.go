package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDBTimeIsUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	local := time.Date(2024, 3, 1, 9, 30, 0, 0, loc)

	got := DBTime(local)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local))
}

func TestDBNowIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, DBNow().Location())
}

func TestMillisRoundTrip(t *testing.T) {
	now := DBNow().Truncate(time.Millisecond)
	assert.True(t, FromMillis(ToMillis(now)).Equal(now))
	assert.Equal(t, time.UTC, FromMillis(ToMillis(now)).Location())
}
