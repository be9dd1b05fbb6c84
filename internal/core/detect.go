package core

import (
	"path/filepath"
	"strings"
)

// DetectFormat classifies a file by the lower-cased text after the last dot
// of its base name. Anything other than .csv or .xlsx is unsupported.
func DetectFormat(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", unsupportedFormat(name, ext)
	}
}

// OutputFileName replaces the extension of name with the target's.
// "Q1.Sales.CSV" converted to xlsx becomes "Q1.Sales.xlsx".
func OutputFileName(name string, target Format) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + target.Extension()
}
