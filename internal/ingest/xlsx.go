package ingest

import (
	"fmt"
	"io"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
	"github.com/xuri/excelize/v2"
)

// DecodeXLSX decodes the first worksheet of a spreadsheet export.
// Cells are read raw so date cells arrive as serial numbers rather than locale-formatted text.
func DecodeXLSX(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading xlsx: %v", apperrors.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, fmt.Errorf("%w: workbook has no sheets", apperrors.ErrValidation)
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading sheet %q: %v", apperrors.ErrValidation, sheets[0], err)
	}
	return decodeRecords(records, nil)
}
