package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/okian/engage/internal/domain/model"
)

// excelEpoch is day zero of the 1900 date system as used by spreadsheet serials.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/06",
	"01-02-06",
	"1-2-06",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate accepts spreadsheet serial numbers and common textual layouts.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, model.NewKind("dataset.ParseDate", model.ErrParse, "empty date")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		days, frac := math.Modf(f)
		return excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(frac * float64(24*time.Hour))).Round(time.Second), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, model.NewKind("dataset.ParseDate", model.ErrParse, "unrecognized date %q", s)
}

func lineError(line int, err error) error {
	return fmt.Errorf("row %d: %w", line, err)
}
