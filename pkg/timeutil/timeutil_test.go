package timeutil_test

import (
	"testing"
	"time"

	"github.com/rohmanhakim/coffee-indicators/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    timeutil.Date
		wantErr bool
	}{
		{name: "iso date", input: "2025-01-10", want: timeutil.NewDate(2025, time.January, 10)},
		{name: "leap day", input: "2024-02-29", want: timeutil.NewDate(2024, time.February, 29)},
		{name: "slash separated", input: "2025/01/10", wantErr: true},
		{name: "day first", input: "10-01-2025", wantErr: true},
		{name: "invalid day", input: "2025-02-30", wantErr: true},
		{name: "surrounding whitespace", input: " 2025-01-10 ", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timeutil.ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateOf_UsesLocationOfInstant(t *testing.T) {
	bogota := time.FixedZone("COT", -5*60*60)
	// 02:00 UTC on the 11th is still the 10th in Bogota.
	instant := time.Date(2025, time.January, 11, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, timeutil.NewDate(2025, time.January, 11), timeutil.DateOf(instant))
	assert.Equal(t, timeutil.NewDate(2025, time.January, 10), timeutil.DateOf(instant.In(bogota)))
}

func TestDate_Ordering(t *testing.T) {
	yesterday := timeutil.NewDate(2025, time.January, 9)
	today := timeutil.NewDate(2025, time.January, 10)
	nextYear := timeutil.NewDate(2026, time.January, 1)

	assert.True(t, yesterday.Before(today))
	assert.True(t, today.After(yesterday))
	assert.True(t, nextYear.After(today))
	assert.False(t, today.Before(today))
	assert.False(t, today.After(today))
	assert.True(t, today == timeutil.NewDate(2025, time.January, 10))
}

func TestNewDate_Normalizes(t *testing.T) {
	assert.Equal(t, timeutil.NewDate(2025, time.March, 1), timeutil.NewDate(2025, time.February, 29))
}

func TestDate_TextRoundTrip(t *testing.T) {
	original := timeutil.NewDate(2025, time.January, 10)

	text, err := original.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", string(text))

	var decoded timeutil.Date
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, original, decoded)
}

func TestDate_ZeroValue(t *testing.T) {
	var d timeutil.Date
	assert.True(t, d.IsZero())
	assert.False(t, timeutil.NewDate(2025, time.January, 10).IsZero())
}
