package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    Format
		wantErr bool
	}{
		{"csv", "a.csv", FormatCSV, false},
		{"upper case csv", "DATA.CSV", FormatCSV, false},
		{"mixed case xlsx", "Book1.XlSx", FormatXLSX, false},
		{"last dot wins", "sales.2024.csv", FormatCSV, false},
		{"directory is ignored", "exports.xlsx/report.csv", FormatCSV, false},
		{"text file", "report.txt", "", true},
		{"legacy excel", "old.xls", "", true},
		{"no extension", "README", "", true},
		{"trailing dot", "data.", "", true},
		{"extension only in middle", "data.csv.bak", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.file)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat_ErrorNamesExtension(t *testing.T) {
	_, err := DetectFormat("report.TXT")
	require.Error(t, err)
	assert.Equal(t, "unsupported file type: .txt", err.Error())

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "report.TXT", fe.FileName)
}

func TestOutputFileName(t *testing.T) {
	tests := []struct {
		name   string
		target Format
		want   string
	}{
		{"a.csv", FormatXLSX, "a.xlsx"},
		{"a.xlsx", FormatCSV, "a.csv"},
		{"a.csv", FormatCSV, "a.csv"},
		{"Q1.Sales.CSV", FormatXLSX, "Q1.Sales.xlsx"},
		{"csv.csv", FormatXLSX, "csv.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputFileName(tt.name, tt.target))
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"Excel", FormatXLSX, false},
		{" excel ", FormatXLSX, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseFormat(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseFormat(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseFormat(%q)", tt.in)
	}
}

func TestFormatMIMEType(t *testing.T) {
	assert.Equal(t, "text/csv", FormatCSV.MIMEType())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX.MIMEType())
	assert.Equal(t, "Excel", FormatXLSX.Label())
	assert.Equal(t, "CSV", FormatCSV.Label())
}
