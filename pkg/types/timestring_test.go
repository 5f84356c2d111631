package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "hh:mm", input: "09:30", want: "09:30"},
		{name: "hh:mm:ss from postgres", input: "17:00:00", want: "17:00"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "hour overflow", input: "25:00", wantErr: true},
		{name: "minute overflow", input: "10:60", wantErr: true},
		{name: "single digit hour", input: "9:30", wantErr: true},
		{name: "garbage", input: "ten", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Minutes(t *testing.T) {
	m, err := TimeString("10:15").Minutes()
	require.NoError(t, err)
	assert.Equal(t, 615, m)

	m, err = TimeString("24:00").Minutes()
	require.NoError(t, err)
	assert.Equal(t, MinutesInDay, m)
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("10:00").AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:45"), got)

	got, err = TimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	_, err = TimeString("23:30").AddMinutes(31)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:01"))
	assert.False(t, TimeString("09:00").IsBefore("09:00"))
	assert.True(t, TimeString("18:00").IsAfter("17:59"))
	assert.False(t, TimeString("bad").IsAfter("00:00"))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("08:05:00")))
	assert.Equal(t, TimeString("08:05"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 14, 20, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("14:20"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("11:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "11:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("xx").Value()
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	m, err := ParseDuration("01:30")
	require.NoError(t, err)
	assert.Equal(t, 90, m)

	m, err = ParseDuration("00:45")
	require.NoError(t, err)
	assert.Equal(t, 45, m)

	for _, bad := range []string{"00:00", "1:3", "01:75", "abc", "-1:00"} {
		_, err := ParseDuration(bad)
		assert.ErrorIs(t, err, ErrInvalidDuration, bad)
	}

	assert.Equal(t, "01:30", FormatDuration(90))
}
