// Package export renders journal rows as downloadable CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

// Format is a journal download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet holding the journal in XLSX downloads.
const SheetName = "Journal"

var header = []string{"Account", "debit", "credit"}

// ParseFormat accepts "csv" or "xlsx", case-insensitively; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Write encodes rows in format f.
func Write(w io.Writer, f Format, rows []domain.JournalRow) error {
	if f == FormatXLSX {
		return WriteXLSX(w, rows)
	}
	return WriteCSV(w, rows)
}

// WriteCSV writes the journal with an Account,debit,credit header.
func WriteCSV(w io.Writer, rows []domain.JournalRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Account, r.Debit, r.Credit}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the journal to a single-sheet workbook.
// Amount cells stay text so "-" placeholders and blank spacer cells survive unchanged.
func WriteXLSX(w io.Writer, rows []domain.JournalRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &[]string{r.Account, r.Debit, r.Credit}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "B", "C", 14); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

// FileName builds "<client>_journal_<YYYY-MM-DD_HH-mm>.<ext>". The client name is lower-cased and
// every character outside [a-z0-9] becomes an underscore.
func FileName(clientName string, now time.Time, f Format) string {
	var b strings.Builder
	for _, r := range strings.ToLower(clientName) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	client := b.String()
	if client == "" {
		client = "client"
	}
	return fmt.Sprintf("%s_journal_%s.%s", client, now.Format("2006-01-02_15-04"), f)
}
