package analytics

import (
	"errors"
	"testing"
	"time"

	apperrors "sales-insights/internal/errors"
	"sales-insights/internal/models"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "month day year",
			value: "11/8/2016",
			want:  time.Date(2016, 11, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "ambiguous day under 12 resolves month first",
			value: "02/05/2023",
			want:  time.Date(2023, 2, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "iso format",
			value: "2023-01-15",
			want:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "day month year fallback",
			value: "31/12/2023",
			want:  time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace",
			value: " 1/2/2020 ",
			want:  time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "no candidate matches",
			value:   "not-a-date",
			wantErr: true,
		},
		{
			name:    "empty value",
			value:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseDate_Deterministic(t *testing.T) {
	// An ambiguous value must resolve identically on every call.
	first, err := ParseDate("02/05/2023")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		got, err := ParseDate("02/05/2023")
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(first) {
			t.Fatalf("run %d: ParseDate resolved to %v, previously %v", i, got, first)
		}
	}
}

func TestSeason(t *testing.T) {
	want := map[time.Month]string{
		time.December:  SeasonWinter,
		time.January:   SeasonWinter,
		time.February:  SeasonWinter,
		time.March:     SeasonSpring,
		time.April:     SeasonSpring,
		time.May:       SeasonSpring,
		time.June:      SeasonSummer,
		time.July:      SeasonSummer,
		time.August:    SeasonSummer,
		time.September: SeasonFall,
		time.October:   SeasonFall,
		time.November:  SeasonFall,
	}

	for m := time.January; m <= time.December; m++ {
		got, err := Season(m)
		if err != nil {
			t.Errorf("Season(%v) unexpected error: %v", m, err)
		}
		if got != want[m] {
			t.Errorf("Season(%v) = %q, want %q", m, got, want[m])
		}
		if got == "" {
			t.Errorf("Season(%v) returned empty season", m)
		}
	}
}

func TestSeason_UnknownMonth(t *testing.T) {
	for _, m := range []time.Month{0, 13, -1} {
		if _, err := Season(m); err == nil {
			t.Errorf("Season(%d) should error for out-of-range month", int(m))
		}
	}
}

func TestCalendarErrorCodes(t *testing.T) {
	_, err := ParseDate("not-a-date")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("ParseDate error = %T, want *AppError", err)
	}
	if appErr.Code != apperrors.CodeParse {
		t.Errorf("ParseDate error code = %s, want %s", appErr.Code, apperrors.CodeParse)
	}

	_, err = Season(time.Month(13))
	appErr = nil
	if !errors.As(err, &appErr) {
		t.Fatalf("Season error = %T, want *AppError", err)
	}
	if appErr.Code != apperrors.CodeUnknownCat {
		t.Errorf("Season error code = %s, want %s", appErr.Code, apperrors.CodeUnknownCat)
	}
}

func TestDeriveCalendar(t *testing.T) {
	tx := models.Transaction{
		OrderDate: time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC), // a Tuesday
	}

	if err := DeriveCalendar(&tx); err != nil {
		t.Fatalf("DeriveCalendar() error: %v", err)
	}

	if tx.Month != time.July {
		t.Errorf("Month = %v, want July", tx.Month)
	}
	if tx.Year != 2023 {
		t.Errorf("Year = %d, want 2023", tx.Year)
	}
	if tx.Weekday != time.Tuesday {
		t.Errorf("Weekday = %v, want Tuesday", tx.Weekday)
	}
	if tx.Season != SeasonSummer {
		t.Errorf("Season = %q, want %q", tx.Season, SeasonSummer)
	}
}

func TestMonthOrder(t *testing.T) {
	order := MonthOrder()
	if len(order) != 12 {
		t.Fatalf("MonthOrder() length = %d, want 12", len(order))
	}
	if order[0] != "January" || order[11] != "December" {
		t.Errorf("MonthOrder() = %v, want January..December", order)
	}
}

func TestWeekdayOrder(t *testing.T) {
	order := WeekdayOrder()
	if len(order) != 7 {
		t.Fatalf("WeekdayOrder() length = %d, want 7", len(order))
	}
	if order[0] != "Sunday" || order[6] != "Saturday" {
		t.Errorf("WeekdayOrder() = %v, want Sunday..Saturday", order)
	}
}
