// Package ingest decodes bank statement exports into typed rows ready for classification.
//
// Only the columns the GST workflow needs are read: date, payee, code and a signed amount
// (or a debit/credit pair). Rows that cannot be parsed are reported individually and never
// abort the import.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Row is one successfully decoded statement line.
type Row struct {
	Line     int              `json:"line"`
	Date     time.Time        `json:"date"`
	Payee    string           `json:"payee"`
	Code     string           `json:"code,omitempty"`
	Amount   decimal.Decimal  `json:"amount"`
	Category string           `json:"category,omitempty"`
	GSTRatio *decimal.Decimal `json:"gstRatio,omitempty"`
}

// RowError describes a statement line that was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result is the outcome of decoding one file.
type Result struct {
	Layout Layout
	Rows   []Row
	Errors []RowError
}

// Decode picks a decoder from the file extension.
func Decode(filename string, r io.Reader) (Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return DecodeCSV(r)
	case ".xlsx", ".xlsm":
		return DecodeXLSX(r)
	default:
		return Result{}, fmt.Errorf("%w: unsupported file type %q, expected .csv or .xlsx", apperrors.ErrValidation, filepath.Ext(filename))
	}
}

// decodeRecords finds the header among the leading records and converts every record below it.
// lines holds the source line of each record; nil means records are numbered from 1.
func decodeRecords(records [][]string, lines []int) (Result, error) {
	headerAt, cols, ok := findHeader(records)
	if !ok {
		return Result{}, fmt.Errorf("%w: no recognisable header row (need a date column, a payee or description column and an amount or debit/credit columns)", apperrors.ErrValidation)
	}

	res := Result{Layout: cols.layout}
	for i := headerAt + 1; i < len(records); i++ {
		rec := records[i]
		if blank(rec) {
			continue
		}
		line := i + 1
		if lines != nil {
			line = lines[i]
		}
		row, err := cols.row(rec)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}
		row.Line = line
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
