package analytics

import (
	"fmt"
	"strings"
	"time"

	"sales-insights/internal/errors"
	"sales-insights/internal/models"
)

// Season names, in calendar order starting from the year boundary.
const (
	SeasonWinter = "Winter"
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonFall   = "Fall"
)

var SeasonOrder = []string{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall}

// DateFormats is the ordered candidate list for parsing order and ship
// dates. Formats are tried in order and the first successful parse wins, so
// an ambiguous value like "02/05/2023" always resolves the same way
// (month/day/year here, i.e. February 5). Reordering this list changes the
// meaning of every time-based summary.
var DateFormats = []string{
	"1/2/2006",   // month/day/year, the dataset's native format
	"2006-01-02", // ISO 8601
	"2/1/2006",   // day/month/year
}

// ParseDate tries each candidate format in order and returns the first
// successful parse. It fails when no candidate matches.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range DateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Parse(fmt.Sprintf("date %q matches none of %d candidate formats", value, len(DateFormats)))
}

// Season maps a calendar month to its season. Months only reach this
// function through parsed dates, but a cast integer can still be out of
// range, and an unrecognized month must surface rather than become an empty
// category.
func Season(m time.Month) (string, error) {
	switch m {
	case time.December, time.January, time.February:
		return SeasonWinter, nil
	case time.March, time.April, time.May:
		return SeasonSpring, nil
	case time.June, time.July, time.August:
		return SeasonSummer, nil
	case time.September, time.October, time.November:
		return SeasonFall, nil
	default:
		return "", errors.UnknownCategory(fmt.Sprintf("unknown month %d", int(m)))
	}
}

// DeriveCalendar fills the derived calendar attributes from OrderDate.
// It is called exactly once per record at load time.
func DeriveCalendar(tx *models.Transaction) error {
	season, err := Season(tx.OrderDate.Month())
	if err != nil {
		return err
	}

	tx.Month = tx.OrderDate.Month()
	tx.Year = tx.OrderDate.Year()
	tx.Weekday = tx.OrderDate.Weekday()
	tx.Season = season
	return nil
}

// MonthOrder returns month names January..December for key-ordered sorting.
func MonthOrder() []string {
	order := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		order = append(order, m.String())
	}
	return order
}

// WeekdayOrder returns day names Sunday..Saturday for key-ordered sorting.
func WeekdayOrder() []string {
	order := make([]string, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		order = append(order, d.String())
	}
	return order
}
