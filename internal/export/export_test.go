package export_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/SscSPs/gst_return_app/internal/core/domain"
	"github.com/SscSPs/gst_return_app/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var journal = []domain.JournalRow{
	{Account: "Sales", Credit: "100.00"},
	{Account: "GST Payment or Refund", Credit: "15.00"},
	{Account: "Bank", Debit: "115.00"},
	{},
	{Account: "Subtotal", Debit: "115.00", Credit: "115.00"},
	{Account: "Transfers", Debit: "-", Credit: "-"},
	{Account: "Total", Debit: "115.00", Credit: "115.00"},
	{Debit: "0.00", Credit: "0.00"},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, journal))

	want := "Account,debit,credit\n" +
		"Sales,,100.00\n" +
		"GST Payment or Refund,,15.00\n" +
		"Bank,115.00,\n" +
		",,\n" +
		"Subtotal,115.00,115.00\n" +
		"Transfers,-,-\n" +
		"Total,115.00,115.00\n" +
		",0.00,0.00\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, journal))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetName}, f.GetSheetList())
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(journal)+1)
	assert.Equal(t, []string{"Account", "debit", "credit"}, rows[0])
	assert.Equal(t, []string{"Sales", "", "100.00"}, rows[1])
	assert.Equal(t, []string{"Transfers", "-", "-"}, rows[6])
	assert.Equal(t, []string{"", "0.00", "0.00"}, rows[8])
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "kiwi_plumbing_ltd_journal_2025-06-02_09-05.csv", export.FileName("Kiwi Plumbing Ltd", now, export.FormatCSV))
	assert.Equal(t, "m_ori_arts_journal_2025-06-02_09-05.xlsx", export.FileName("Māori Arts", now, export.FormatXLSX))
	assert.Equal(t, "client_journal_2025-06-02_09-05.csv", export.FileName("", now, export.FormatCSV))
}

func TestParseFormat(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = export.ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	_, err = export.ParseFormat("pdf")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}
