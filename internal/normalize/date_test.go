package normalize

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

func TestParseDate(t *testing.T) {
	want := civil.Date{Year: 2024, Month: time.January, Day: 15}
	tests := []string{
		"15 Januari 2024",
		"15 januari 2024",
		"tanggal setor: 15 JANUARI 2024",
		"15 Jan 2024",
		"15 januarl 2024",
		"15/01/2024",
		"15-01-2024",
		"15.01.2024",
		"2024-01-15",
		"2024/01/15",
		"tgl 32/13/2024 atau 15/01/2024",
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseDateRejectsImpossibleDates(t *testing.T) {
	for _, in := range []string{"32/13/2024", "30/02/2024", "31 April 2024", "", "no date here", "2024-13-01"} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, common.ErrInvalidDate, in)
	}
}

func TestParseDateLeapDay(t *testing.T) {
	got, err := ParseDate("29 Februari 2024")
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 29}, got)

	_, err = ParseDate("29/02/2023")
	assert.Error(t, err)
}

func TestNormalizeDateIdempotent(t *testing.T) {
	for _, in := range []string{"15 Januari 2024", "15/01/2024", "2024-01-15", "1 des 2023"} {
		once, err := NormalizeDate(in)
		require.NoError(t, err)
		twice, err := NormalizeDate(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestMonthFromName(t *testing.T) {
	m, ok := MonthFromName("Agustus")
	assert.True(t, ok)
	assert.Equal(t, time.August, m)

	m, ok = MonthFromName("agt")
	assert.True(t, ok)
	assert.Equal(t, time.August, m)

	m, ok = MonthFromName("oktobr")
	assert.True(t, ok)
	assert.Equal(t, time.October, m)

	_, ok = MonthFromName("jumlah")
	assert.False(t, ok)
}

func TestPermuteDate(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   civil.Date
		ok     bool
	}{
		{"dmy", []string{"15", "01", "2024"}, civil.Date{Year: 2024, Month: 1, Day: 15}, true},
		{"ymd", []string{"2024", "01", "15"}, civil.Date{Year: 2024, Month: 1, Day: 15}, true},
		{"mdy", []string{"01", "31", "2024"}, civil.Date{Year: 2024, Month: 1, Day: 31}, true},
		{"window", []string{"7", "15", "01", "2024"}, civil.Date{Year: 2024, Month: 1, Day: 15}, true},
		{"no year", []string{"15", "01", "24"}, civil.Date{}, false},
		{"too few", []string{"15", "2024"}, civil.Date{}, false},
		{"invalid day", []string{"45", "13", "2024"}, civil.Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PermuteDate(tt.tokens)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
