package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// NZ banks export day-first dates; month-first layouts are deliberately absent.
var dateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
	"2006/1/2",
	"2-1-2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2/1/06",
	"20060102",
	time.RFC3339,
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	// spreadsheet serial day number
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 1 && serial < 100000 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, errors.New("missing amount")
	}

	s = strings.NewReplacer("$", "", ",", "", " ", "", "NZD", "", "nzd", "").Replace(s)

	negative := false
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "DR"):
		negative = true
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "CR"):
		s = s[:len(s)-2]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if negative {
		d = d.Abs().Neg()
	}
	return d, nil
}
