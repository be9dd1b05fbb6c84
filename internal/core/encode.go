package core

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by EncodeXLSX.
const SheetName = "Sheet1"

// Encode converts t to the target format and names the download after
// sourceName. Encoder failures are returned as a *FileError of kind
// ErrConversionFailure.
func Encode(t *Table, target Format, sourceName string) (*Conversion, error) {
	var (
		data []byte
		err  error
	)
	switch target {
	case FormatCSV:
		data, err = EncodeCSV(t)
	case FormatXLSX:
		data, err = EncodeXLSX(t)
	default:
		err = fmt.Errorf("unknown target format %q", target)
	}
	if err != nil {
		return nil, conversionFailure(sourceName, err)
	}

	return &Conversion{
		FileName: OutputFileName(sourceName, target),
		MIMEType: target.MIMEType(),
		Format:   target,
		Data:     data,
	}, nil
}

// EncodeCSV writes a header row followed by one line per row, without an
// index column. Missing values are empty fields.
func EncodeCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.ColumnNames()); err != nil {
		return nil, err
	}
	single := t.NumColumns() == 1
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		if single && row[0] == "" {
			// A lone empty field would be a blank line, which readers skip.
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeXLSX writes a single-sheet workbook with a bold header row and no
// index column. Numeric cells are written as numbers, missing values are
// left empty.
func EncodeXLSX(t *Table) (data []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	// The stream writer copies the dimension when it starts, so the full
	// range is set first. Readers trim trailing rows without cells and use it
	// to keep all-missing rows at the end.
	last, err := excelize.CoordinatesToCellName(max(t.NumColumns(), 1), t.NumRows()+1)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetDimension(SheetName, "A1:"+last); err != nil {
		return nil, fmt.Errorf("sheet dimension: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return nil, fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, t.NumColumns())
	for j, name := range t.ColumnNames() {
		header[j] = excelize.Cell{StyleID: bold, Value: name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := make([]interface{}, t.NumColumns())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			cell := c.Cells[i]
			switch {
			case !cell.Valid:
				row[j] = nil
			case c.IsNumeric():
				row[j] = cell.Num
			default:
				row[j] = cell.Text
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(axis, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
