package dates

import (
	"testing"
	"time"

	"github.com/jonathan/resume-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	for _, year := range Years(now, DefaultYearSpan) {
		for _, month := range Months {
			iso := Encode(month, year)
			require.NotEmpty(t, iso, "%s %s", month, year)
			assert.Equal(t, types.MonthYear{Month: month, Year: year}, DecodeString(iso))
		}
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		month string
		year  string
		want  string
	}{
		{"first month", "January", "2020", "2020-01-01"},
		{"last month", "December", "1999", "1999-12-01"},
		{"missing month", "", "2020", ""},
		{"missing year", "May", "", ""},
		{"unknown month", "Smarch", "2020", ""},
		{"short year", "May", "20", ""},
		{"non numeric year", "May", "20ab", ""},
		{"negative year", "May", "-001", ""},
		{"signed year", "May", "+123", ""},
		{"spaced year", "May", " 999", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.month, tt.year))
		})
	}
}

func TestEncode_OutputAlwaysDecodes(t *testing.T) {
	for _, year := range []string{"0001", "1960", "2999", "-001", "+123"} {
		iso := Encode("March", year)
		if iso == "" {
			continue
		}
		assert.Equal(t, "March", DecodeString(iso).Month, iso)
		assert.Equal(t, year, DecodeString(iso).Year, iso)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want types.MonthYear
	}{
		{"iso date", "2021-03-15", types.MonthYear{Month: "March", Year: "2021"}},
		{"rfc3339", "2018-11-01T00:00:00Z", types.MonthYear{Month: "November", Year: "2018"}},
		{"rfc3339 with offset keeps local month", "2020-01-01T00:00:00-05:00", types.MonthYear{Month: "January", Year: "2020"}},
		{"blank", "   ", types.MonthYear{}},
		{"garbage", "not a date", types.MonthYear{}},
		{"impossible day", "2021-02-30", types.MonthYear{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeString(tt.in))
		})
	}
}

func TestDecode_Nil(t *testing.T) {
	assert.Equal(t, types.MonthYear{}, Decode(nil))

	iso := "2022-07-01"
	assert.Equal(t, types.MonthYear{Month: "July", Year: "2022"}, Decode(&iso))
}

func TestEncodePtr(t *testing.T) {
	assert.Nil(t, EncodePtr(types.MonthYear{}))
	assert.Nil(t, EncodePtr(types.MonthYear{Month: "July"}))

	got := EncodePtr(types.MonthYear{Month: "July", Year: "2022"})
	require.NotNil(t, got)
	assert.Equal(t, "2022-07-01", *got)
}

func TestYears(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	years := Years(now, 3)
	assert.Equal(t, []string{"2026", "2025", "2024"}, years)

	assert.Len(t, Years(now, 0), DefaultYearSpan)
}

func TestMonthIndex(t *testing.T) {
	assert.Equal(t, 0, MonthIndex("January"))
	assert.Equal(t, 11, MonthIndex("December"))
	assert.Equal(t, -1, MonthIndex("january"))
}
