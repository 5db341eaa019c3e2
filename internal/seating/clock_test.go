package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "19:00", want: 19 * 60},
		{in: "7:05", want: 7*60 + 5},
		{in: "23:59:59", want: 23*60 + 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "19:00:00", want: 19 * 60},
		{in: "19:00:zz", wantErr: true},
		{in: "19:00:60", wantErr: true},
		{in: "19:00:5", wantErr: true},
		{in: "+7:05", wantErr: true},
		{in: "007:05", wantErr: true},
		{in: "19:00:00:00", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	for in, want := range map[string]string{
		"2025-03-14":                "2025-03-14",
		"2025-03-14T00:00:00Z":      "2025-03-14",
		"2025-03-14 00:00:00.000Z":  "2025-03-14",
		"2025-03-14T23:30:00-05:00": "2025-03-14",
		"2025-03-14 18:00:00Z":      "2025-03-14",
		" 2025-03-14 ":              "2025-03-14",
	} {
		got, err := ParseDate(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "14/03/2025", "2025-13-01", "2025-03-14garbage", "2025-03-14T19", "2025-03-14 00:00:00.000"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestNormalizeClock(t *testing.T) {
	got, err := NormalizeClock("7:30")
	assert.NoError(t, err)
	assert.Equal(t, "07:30", got)
	assert.Equal(t, "01:00", FormatClock(25*60))
}

func TestInterval(t *testing.T) {
	w := Window(600, 0)
	assert.Equal(t, Interval{Start: 600, End: 720}, w)
	assert.True(t, w.Overlaps(Interval{Start: 700, End: 800}))
	assert.False(t, w.Overlaps(Interval{Start: 720, End: 800}))
	assert.True(t, w.Contains(720))
}
