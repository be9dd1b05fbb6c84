package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows to Sheet1 of a new workbook. Nil values are
// left empty.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// cellValues renders a column for compact assertions. Missing values are "<nil>".
func cellValues(c *Column) []string {
	out := make([]string, len(c.Cells))
	for i := range c.Cells {
		if !c.Cells[i].Valid {
			out[i] = "<nil>"
			continue
		}
		out[i] = c.Format(i)
	}
	return out
}

func TestParseCSV_TypeInference(t *testing.T) {
	table, err := ParseCSV([]byte("id,name,value\n1,alice,10.5\n2,bob,\n3, 7 ,-2e3\n"))
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	assert.Equal(t, []string{"id", "name", "value"}, table.ColumnNames())
	assert.Equal(t, 3, table.NumRows())

	assert.Equal(t, KindNumeric, table.Column("id").Kind)
	assert.Equal(t, []string{"1", "2", "3"}, cellValues(table.Column("id")))

	assert.Equal(t, KindText, table.Column("name").Kind)
	assert.Equal(t, []string{"alice", "bob", " 7 "}, cellValues(table.Column("name")))

	assert.Equal(t, KindNumeric, table.Column("value").Kind)
	assert.Equal(t, []string{"10.5", "<nil>", "-2000"}, cellValues(table.Column("value")))
}

func TestParseCSV_MissingMarkers(t *testing.T) {
	table, err := ParseCSV([]byte("a,b,c\nNA,x,\n3,N/A,null\nNaN,#N/A,None\n"))
	require.NoError(t, err)

	assert.Equal(t, KindNumeric, table.Column("a").Kind)
	assert.Equal(t, []string{"<nil>", "3", "<nil>"}, cellValues(table.Column("a")))

	assert.Equal(t, KindText, table.Column("b").Kind)
	assert.Equal(t, []string{"x", "<nil>", "<nil>"}, cellValues(table.Column("b")))

	// A column with no values at all is text.
	assert.Equal(t, KindText, table.Column("c").Kind)
	assert.Equal(t, 3, table.Column("c").NullCount())
}

func TestParseCSV_MixedColumnIsText(t *testing.T) {
	table, err := ParseCSV([]byte("code\n1\nx\n3\n"))
	require.NoError(t, err)

	col := table.Column("code")
	assert.Equal(t, KindText, col.Kind)
	assert.Equal(t, []string{"1", "x", "3"}, cellValues(col))
}

func TestParseCSV_ShortRowsArePadded(t *testing.T) {
	table, err := ParseCSV([]byte("a,b,c\n1\n2,3,4\n"))
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{"<nil>", "3"}, cellValues(table.Column("b")))
	assert.Equal(t, []string{"<nil>", "4"}, cellValues(table.Column("c")))
}

func TestParseCSV_HeaderNames(t *testing.T) {
	table, err := ParseCSV([]byte("a,a,,a,a.1\n1,2,3,4,5\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.2", "a.1.1"}, table.ColumnNames())
	require.NoError(t, table.Validate())
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	table, err := ParseCSV([]byte("x,y\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, table.ColumnNames())
	assert.Equal(t, 0, table.NumRows())
}

func TestParseCSV_Encoding(t *testing.T) {
	t.Run("BOM is skipped", func(t *testing.T) {
		table, err := ParseCSV([]byte("\xEF\xBB\xBFid,name\n1,a\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name"}, table.ColumnNames())
	})

	t.Run("invalid UTF-8 is replaced", func(t *testing.T) {
		table, err := ParseCSV([]byte("name\nab\x80c\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"ab\uFFFDc"}, cellValues(table.Column("name")))
	})

	t.Run("quoted fields keep commas and newlines", func(t *testing.T) {
		table, err := ParseCSV([]byte("a,b\n\"x,y\",\"line1\nline2\"\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"x,y"}, cellValues(table.Column("a")))
		assert.Equal(t, []string{"line1\nline2"}, cellValues(table.Column("b")))
	})
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantMsg string
	}{
		{"empty file", "", ErrEmptyFile, ""},
		{"blank lines only", "\n\n\n", ErrEmptyFile, ""},
		{"row longer than header", "a,b\n1,2\n1,2,3\n", ErrRaggedRow, "expected 2 fields in line 3, saw 3"},
		{"unterminated quote", "a,b\n\"open,1\n", nil, "quote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV([]byte(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParse_WrapsFailures(t *testing.T) {
	_, err := Parse(UploadedFile{Name: "broken.csv", Data: []byte("a\n1,2\n")}, FormatCSV)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrParseFailure))
	assert.True(t, errors.Is(err, ErrRaggedRow))
	assert.True(t, strings.HasPrefix(err.Error(), "error reading file broken.csv: "), err.Error())
}

func TestParseXLSX(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"x", "y", "label"},
		{1, 10.5, "a"},
		{2, nil, nil},
		{3, -1, "c"},
	})

	table, err := ParseXLSX(data)
	require.NoError(t, err)
	require.NoError(t, table.Validate())

	assert.Equal(t, []string{"x", "y", "label"}, table.ColumnNames())
	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, KindNumeric, table.Column("x").Kind)
	assert.Equal(t, []string{"10.5", "<nil>", "-1"}, cellValues(table.Column("y")))
	assert.Equal(t, KindText, table.Column("label").Kind)
	assert.Equal(t, []string{"a", "<nil>", "c"}, cellValues(table.Column("label")))
}

func TestParseXLSX_BlankRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{nil, nil},
		{"x", "y"},
		{1, 2},
		{nil, nil},
		{3, 4},
	})

	table, err := ParseXLSX(data)
	require.NoError(t, err)

	// The row above the header is skipped; the one below it is a record.
	assert.Equal(t, []string{"x", "y"}, table.ColumnNames())
	assert.Equal(t, []string{"1", "<nil>", "3"}, cellValues(table.Column("x")))
	assert.Equal(t, []string{"2", "<nil>", "4"}, cellValues(table.Column("y")))
}

func TestParseXLSX_FirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 1))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "second"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ParseXLSX(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, table.ColumnNames())
}

func TestParseXLSX_RowsWiderThanHeader(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"a"},
		{1, 2},
	})

	table, err := ParseXLSX(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1"}, table.ColumnNames())
	assert.Equal(t, []string{"2"}, cellValues(table.Column("Unnamed: 1")))
}

func TestParseXLSX_Errors(t *testing.T) {
	t.Run("not a workbook", func(t *testing.T) {
		_, err := ParseXLSX([]byte("id,value\n1,2\n"))
		assert.Error(t, err)
	})

	t.Run("empty sheet", func(t *testing.T) {
		_, err := ParseXLSX(buildWorkbook(t, nil))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("wrapped by Parse", func(t *testing.T) {
		_, err := Parse(UploadedFile{Name: "fake.xlsx", Data: []byte("nope")}, FormatXLSX)
		assert.ErrorIs(t, err, ErrParseFailure)
		assert.Contains(t, err.Error(), "fake.xlsx")
	})
}
