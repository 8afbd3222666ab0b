package catalog

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, Clock(14*60+30), c)
	assert.Equal(t, "14:30", c.String())

	for _, bad := range []string{"", "9:00", "24:00", "14:60", "14-30", "14:30:00"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestClockJSON(t *testing.T) {
	var v struct {
		At Clock `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":"09:15"}`), &v))
	assert.Equal(t, Clock(555), v.At)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"09:15"}`, string(out))
}

func TestSlotGrid(t *testing.T) {
	g, err := NewSlotGrid(30, "09:00", "11:00")
	require.NoError(t, err)

	assert.Equal(t, []Clock{540, 570, 600, 630}, g.Slots())
	assert.True(t, g.Contains(Clock(600)))
	assert.False(t, g.Contains(Clock(615)))
	assert.False(t, g.Contains(Clock(660)))
	assert.False(t, g.Contains(Clock(510)))

	_, err = NewSlotGrid(30, "11:00", "09:00")
	require.Error(t, err)
	_, err = NewSlotGrid(0, "09:00", "11:00")
	require.Error(t, err)
}

func TestClockOn(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	at := Clock(14 * 60).On(date, loc)
	assert.Equal(t, "2025-03-10T14:00:00+03:00", at.Format(time.RFC3339))
}
