package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/SscSPs/gst_return_app/internal/apperrors"
)

// DecodeCSV decodes a bank CSV export. Preamble lines above the header and ragged rows are tolerated.
func DecodeCSV(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: reading csv: %v", apperrors.ErrValidation, err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return decodeRecords(records, lines)
}
