package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// missingMarkers are the cell values read as missing, matching what common
// dataframe tooling treats as NA on import.
var missingMarkers = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

func isMissing(v string) bool {
	return missingMarkers[v]
}

// Parse decodes a file of a known format into a Table. Failures are returned
// as a *FileError of kind ErrParseFailure.
func Parse(file UploadedFile, format Format) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch format {
	case FormatCSV:
		t, err = ParseCSV(file.Data)
	case FormatXLSX:
		t, err = ParseXLSX(file.Data)
	default:
		return nil, unsupportedFormat(file.Name, string(format))
	}
	if err != nil {
		return nil, parseFailure(file.Name, err)
	}
	return t, nil
}

// ParseCSV decodes comma-separated text with a header row. A UTF-8 BOM is
// skipped and invalid UTF-8 is replaced before decoding. Rows shorter than the
// header are padded with missing values; longer rows are an error.
func ParseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(normalizeText(data)))
	r.FieldsPerRecord = -1

	var records [][]string
	width := -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if width < 0 {
			width = len(rec)
		} else if len(rec) > width {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w: expected %d fields in line %d, saw %d",
				ErrRaggedRow, width, line, len(rec))
		}
		records = append(records, rec)
	}

	return buildTable(records)
}

// ParseXLSX decodes the first worksheet of a workbook. The first non-empty
// row is the header. Cells are read as stored, not as displayed, so number
// formats do not affect type inference.
func ParseXLSX(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	rows, err := sheetRows(f, sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	// Spreadsheet rows are trimmed at the last filled cell, so the widest row
	// defines the column count rather than the header. Blank rows above the
	// header are layout; below it they are records with every value missing.
	records := make([][]string, 0, len(rows))
	width := 0
	for _, row := range rows {
		if len(records) == 0 && isBlankRow(row) {
			continue
		}
		records = append(records, row)
		width = max(width, len(row))
	}
	if len(records) > 0 {
		header := make([]string, width)
		copy(header, records[0])
		records[0] = header
	}

	return buildTable(records)
}

// sheetRows reads every row of sheet as stored values, empty rows included.
// Rows past the last filled cell are kept when the sheet's row elements or
// its dimension reach them.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	it, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows [][]string
	for it.Next() {
		row, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}

	if last := lastDimensionRow(f, sheet); last > len(rows) && len(rows) > 0 {
		rows = append(rows, make([][]string, last-len(rows))...)
	}
	return rows, nil
}

// lastDimensionRow returns the bottom row of the sheet's used range, or 0.
func lastDimensionRow(f *excelize.File, sheet string) int {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil {
		return 0
	}
	_, ref, ok := strings.Cut(dim, ":")
	if !ok {
		return 0
	}
	_, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0
	}
	return row
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// normalizeText strips a UTF-8 BOM and replaces invalid byte sequences.
func normalizeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte(string(utf8.RuneError)))
	}
	return data
}

// buildTable turns a header record plus data records into typed columns.
func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrEmptyFile
	}

	names := columnNames(records[0])
	data := records[1:]

	t := &Table{Columns: make([]*Column, len(names))}
	raw := make([]string, len(data))
	for j, name := range names {
		for i, rec := range data {
			if j < len(rec) {
				raw[i] = rec[j]
			} else {
				raw[i] = ""
			}
		}
		t.Columns[j] = inferColumn(name, raw)
	}

	return t, nil
}

// columnNames fills empty headers with "Unnamed: <index>" and de-duplicates
// repeats as name.1, name.2 and so on.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for j, h := range header {
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(j)
		}
		name := h
		for k := 1; seen[name]; k++ {
			name = h + "." + strconv.Itoa(k)
		}
		seen[name] = true
		names[j] = name
	}
	return names
}

// inferColumn makes a numeric column when at least one value is present and
// every present value parses as a number. Anything else is text.
func inferColumn(name string, raw []string) *Column {
	col := &Column{Name: name, Kind: KindText, Cells: make([]Cell, len(raw))}

	nums := make([]float64, len(raw))
	present := 0
	numeric := true
	for i, v := range raw {
		if isMissing(v) {
			continue
		}
		present++
		if !numeric {
			continue
		}
		f, ok := parseNumber(v)
		if !ok {
			numeric = false
			continue
		}
		nums[i] = f
	}

	if present > 0 && numeric {
		col.Kind = KindNumeric
		for i, v := range raw {
			if isMissing(v) || math.IsNaN(nums[i]) {
				col.Cells[i] = Null
				continue
			}
			col.Cells[i] = NumCell(nums[i])
		}
		return col
	}

	for i, v := range raw {
		if isMissing(v) {
			col.Cells[i] = Null
			continue
		}
		col.Cells[i] = TextCell(v)
	}
	return col
}

func parseNumber(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
