package services

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

func TestTimestampConversion(t *testing.T) {
	assert.Equal(t, time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC), TimestampToTime(0))

	ts := TimeToTimestamp(time.Date(2023, time.February, 10, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, domain.Timestamp(63811620000), ts)
	assert.Equal(t, "2023-02-10 10:00:00", TimestampToTime(ts).Format(isoDateTime))
}

func TestSpanToDuration(t *testing.T) {
	start := time.Date(2023, time.February, 10, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name                 string
		span                 domain.Span
		days, hours, minutes int
	}{
		{"years and months", domain.Span{Years: domain.IntPtr(1), Months: domain.IntPtr(2)}, 425, 0, 0},
		{"months into next year", domain.Span{Months: domain.IntPtr(11)}, 334, 0, 0},
		{"weeks and days", domain.Span{Weeks: domain.IntPtr(2), Days: domain.IntPtr(1)}, 15, 0, 0},
		{"hours carry into days", domain.Span{Hours: domain.IntPtr(30)}, 1, 6, 0},
		{"minutes carry into hours", domain.Span{Minutes: domain.IntPtr(135)}, 0, 2, 15},
		{"seconds truncate", domain.Span{Seconds: domain.IntPtr(59)}, 0, 0, 0},
		{"seconds carry", domain.Span{Minutes: domain.IntPtr(59), Seconds: domain.IntPtr(90)}, 0, 1, 0},
		{"negative hours floor", domain.Span{Hours: domain.IntPtr(-1)}, -1, 23, 0},
		{"empty", domain.Span{}, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, hours, minutes := SpanToDuration(start, tt.span)
			assert.Equal(t, []int{tt.days, tt.hours, tt.minutes}, []int{days, hours, minutes})
		})
	}
}

func TestSpanToDuration_MonthOverflow(t *testing.T) {
	start := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC)
	days, _, _ := SpanToDuration(start, domain.Span{Months: domain.IntPtr(3)})
	assert.Equal(t, 92, days)
}

func TestDurationToSpan_OmitsZeroUnits(t *testing.T) {
	span := DurationToSpan(&domain.Section{LastsDays: 2, LastsMinutes: 5})
	want := domain.Span{Days: domain.IntPtr(2), Minutes: domain.IntPtr(5)}
	if diff := cmp.Diff(want, span); diff != "" {
		t.Errorf("span mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyTimestamp_Absolute(t *testing.T) {
	conv := NewTemporalConverter(ReferenceDate("", fixedNow()))
	sc := &domain.Section{}
	ts := at(2023, time.February, 10, 10, 0)

	require.True(t, conv.ApplyTimestamp(ts, domain.Span{Years: domain.IntPtr(1), Months: domain.IntPtr(2)}, sc))
	assert.Equal(t, "2023-02-10", sc.Date)
	assert.Equal(t, "10:00:00", sc.Time)
	assert.Nil(t, sc.Day)
	assert.Equal(t, 425, sc.LastsDays)
}

func TestApplyTimestamp_KeepsDayOffset(t *testing.T) {
	conv := NewTemporalConverter(ReferenceDate("2024-01-01", fixedNow()))
	sc := &domain.Section{Day: domain.IntPtr(0)}

	require.True(t, conv.ApplyTimestamp(at(2024, time.January, 4, 10, 30), domain.Span{}, sc))
	require.NotNil(t, sc.Day)
	assert.Equal(t, 3, *sc.Day)
	assert.Empty(t, sc.Date)
	assert.Equal(t, "10:30:00", sc.Time)

	require.True(t, conv.ApplyTimestamp(at(2023, time.December, 31, 23, 0), domain.Span{}, sc))
	assert.Equal(t, -1, *sc.Day)
}

func TestApplyTimestamp_TimeOnlyPinsToReference(t *testing.T) {
	conv := NewTemporalConverter(ReferenceDate("2024-01-01", fixedNow()))
	sc := &domain.Section{Time: "09:00:00"}

	require.True(t, conv.ApplyTimestamp(at(2024, time.May, 5, 12, 0), domain.Span{}, sc))
	require.NotNil(t, sc.Day)
	assert.Equal(t, 0, *sc.Day)
	assert.Equal(t, "12:00:00", sc.Time)
}

func TestApplyTimestamp_RejectsBeforeYearOne(t *testing.T) {
	conv := NewTemporalConverter(ReferenceDate("", fixedNow()))
	sc := &domain.Section{Date: "2020-01-01", Time: "08:00:00", LastsHours: 1}
	before := *sc

	assert.False(t, conv.ApplyTimestamp(-1, domain.Span{Days: domain.IntPtr(3)}, sc))
	assert.Equal(t, before, *sc)
}

func TestApplyTimestamp_RejectsAfterYear9999(t *testing.T) {
	conv := NewTemporalConverter(ReferenceDate("", fixedNow()))
	sc := &domain.Section{Date: "2020-01-01", Time: "08:00:00", LastsHours: 1}
	before := *sc

	assert.False(t, conv.ApplyTimestamp(at(10000, time.January, 1, 0, 0), domain.Span{}, sc))
	assert.Equal(t, before, *sc)

	assert.True(t, conv.ApplyTimestamp(at(9999, time.December, 31, 23, 0), domain.Span{}, sc))
	assert.Equal(t, "9999-12-31", sc.Date)
}

func TestTimestampRoundTrip(t *testing.T) {
	timestamps := []domain.Timestamp{
		0,
		at(1, time.March, 1, 0, 1),
		at(1969, time.December, 31, 23, 59),
		at(2023, time.February, 10, 10, 0),
		at(2024, time.February, 29, 6, 45),
		at(9999, time.December, 31, 23, 59),
	}
	for _, ts := range timestamps {
		t.Run("absolute", func(t *testing.T) {
			conv := NewTemporalConverter(ReferenceDate("", fixedNow()))
			sc := &domain.Section{}
			require.True(t, conv.ApplyTimestamp(ts, domain.Span{}, sc))
			assert.Equal(t, ts, conv.DateToTimestamp(sc))
		})
		t.Run("relative", func(t *testing.T) {
			conv := NewTemporalConverter(ReferenceDate("1990-06-01", fixedNow()))
			sc := &domain.Section{Day: domain.IntPtr(0)}
			require.True(t, conv.ApplyTimestamp(ts, domain.Span{}, sc))
			exported := &domain.Section{Date: conv.SectionDate(sc), Time: sc.Time}
			assert.Equal(t, ts, conv.DateToTimestamp(exported))
		})
	}
}

func TestDateToTimestamp_Counter(t *testing.T) {
	conv := NewTemporalConverter(ReferenceDate("", fixedNow()))
	conv.Seed(100)

	assert.Equal(t, domain.Timestamp(101), conv.DateToTimestamp(&domain.Section{}))
	assert.Equal(t, domain.Timestamp(102), conv.DateToTimestamp(&domain.Section{Date: "someday"}))

	ts := conv.DateToTimestamp(&domain.Section{Date: "2023-02-10", Time: "10:00"})
	assert.Equal(t, domain.Timestamp(63811620000), ts)
	assert.Equal(t, domain.Timestamp(103), conv.Counter())
}

func TestSectionDate(t *testing.T) {
	conv := NewTemporalConverter(ReferenceDate("2024-01-01", fixedNow()))
	tests := []struct {
		name string
		sc   *domain.Section
		want string
	}{
		{"day offset", &domain.Section{Day: domain.IntPtr(40), Date: "1999-01-01"}, "2024-02-10"},
		{"date", &domain.Section{Date: "2020-05-05"}, "2020-05-05"},
		{"time only", &domain.Section{Time: "10:00:00"}, "2024-01-01"},
		{"undated", &domain.Section{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conv.SectionDate(tt.sc))
		})
	}
}

func TestReferenceDate(t *testing.T) {
	now := fixedNow()
	assert.Equal(t, time.Date(2020, time.May, 5, 0, 0, 0, 0, time.UTC), ReferenceDate("2020-05-05", now))
	assert.Equal(t, time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), ReferenceDate("", now))
	assert.Equal(t, time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), ReferenceDate("05/05/2020", now))
}

func TestFloorDivMod(t *testing.T) {
	assert.Equal(t, int64(-1), floorDiv(-1, 24))
	assert.Equal(t, int64(23), floorMod(-1, 24))
	assert.Equal(t, int64(-2), floorDiv(-25, 24))
	assert.Equal(t, int64(1), floorDiv(24, 24))
	assert.Equal(t, int64(0), floorMod(48, 24))
}
