package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the DD/MM/YYYY form used by the ledger and the PVOIL query interface.
const DateLayout = "02/01/2006"

// PriceRecord is one observed retail price for a fuel item on a given day.
type PriceRecord struct {
	Date     time.Time
	ItemName string
	Price    int64
}

// RecordKey is the natural key of a PriceRecord inside the ledger.
type RecordKey struct {
	Date     string
	ItemName string
}

// Key returns the (date, item) natural key.
func (r PriceRecord) Key() RecordKey {
	return RecordKey{Date: FormatDate(r.Date), ItemName: r.ItemName}
}

// FetchKey pairs a calendar date with the query string the price API expects,
// e.g. "02/01/2024 15:00:00".
type FetchKey struct {
	Date  time.Time
	Query string
}

// NewFetchKey builds a FetchKey using the fixed time-of-day suffix.
func NewFetchKey(date time.Time, timeSuffix string) FetchKey {
	return FetchKey{
		Date:  date,
		Query: strings.TrimSpace(FormatDate(date) + " " + timeSuffix),
	}
}

// ParseDate parses a DD/MM/YYYY value. Every date in the system goes through
// this function so the day-month-year convention never gets mixed.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDates renders a list of dates as DD/MM/YYYY strings.
func FormatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, FormatDate(d))
	}
	return out
}

// LedgerUpdate describes a ledger rewrite that publishers may propagate.
type LedgerUpdate struct {
	Path       string
	Records    []PriceRecord
	NewDates   []time.Time
	NewRecords int
	UpdatedAt  time.Time
}

// PriceChange compares an item's price between the two most recent ledger dates.
type PriceChange struct {
	ItemName      string     `json:"item_name"`
	Date          time.Time  `json:"date"`
	Price         int64      `json:"price"`
	PreviousDate  *time.Time `json:"previous_date,omitempty"`
	PreviousPrice int64      `json:"previous_price,omitempty"`
	Delta         int64      `json:"delta"`
	HasPrevious   bool       `json:"has_previous"`
}
