package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCSV(t *testing.T) {
	table := mustTable(t,
		[]string{"id", "note", "amount"},
		[]Kind{KindNumeric, KindText, KindNumeric},
		[][]string{{"1", "plain", "10"}, {"2", "has,comma", ""}, {"3", "", "0.25"}},
	)

	data, err := EncodeCSV(table)
	require.NoError(t, err)

	want := "id,note,amount\n1,plain,10\n2,\"has,comma\",\n3,,0.25\n"
	assert.Equal(t, want, string(data))
}

func TestCSVRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"mixed types":      "id,name,value\n1,alice,10.5\n2,bob,\n3,,-4\n",
		"quoted text":      "a,b\n\"x,y\",\"multi\nline\"\n\"say \"\"hi\"\"\",z\n",
		"duplicate header": "a,a,\n1,2,3\n",
		"header only":      "x,y\n",
		"all missing":      "a,b\n,\n,\n",
		"single column":    "v\n1\n\n2\n",
		"big and small":    "f\n1e21\n0.000001\n-0\n123456789.123456789\n",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := ParseCSV([]byte(input))
			require.NoError(t, err)

			encoded, err := EncodeCSV(first)
			require.NoError(t, err)

			second, err := ParseCSV(encoded)
			require.NoError(t, err)

			assert.True(t, first.Equal(second), "round trip changed table:\n%s", encoded)
		})
	}
}

func TestEncodeCSV_SingleColumnMissingValue(t *testing.T) {
	table := mustTable(t,
		[]string{"v"},
		[]Kind{KindNumeric},
		[][]string{{"1"}, {""}, {"3"}},
	)

	data, err := EncodeCSV(table)
	require.NoError(t, err)
	assert.Equal(t, "v\n1\n\"\"\n3\n", string(data))

	back, err := ParseCSV(data)
	require.NoError(t, err)
	assert.Equal(t, 3, back.NumRows())
	assert.True(t, table.Equal(back))
}

func TestEncodeXLSX_RoundTrip(t *testing.T) {
	table := mustTable(t,
		[]string{"x", "y", "label"},
		[]Kind{KindNumeric, KindNumeric, KindText},
		[][]string{{"1", "2.5", "a"}, {"3", "", "b"}, {"5", "-6", ""}},
	)

	data, err := EncodeXLSX(table)
	require.NoError(t, err)

	back, err := ParseXLSX(data)
	require.NoError(t, err)
	assert.True(t, table.Equal(back))
}

func TestEncodeXLSX_RoundTripKeepsAllMissingRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"middle row", "x,y\n1,2\n,\n3,4\n"},
		{"trailing row", "x,y\n1,2\n3,4\n,\n"},
		{"middle and trailing rows", "x,y\n1,2\n,\n3,4\n,\n,\n"},
		{"text column", "name,score\nann,1\n,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseCSV([]byte(tt.input))
			require.NoError(t, err)

			out, err := Encode(table, FormatXLSX, "rows.csv")
			require.NoError(t, err)

			back, err := ParseXLSX(out.Data)
			require.NoError(t, err)
			assert.Equal(t, table.NumRows(), back.NumRows())
			assert.True(t, table.Equal(back))
		})
	}
}

func TestExcelToCSV_KeepsHeaderAndRows(t *testing.T) {
	table := mustTable(t,
		[]string{"x", "y"},
		[]Kind{KindNumeric, KindNumeric},
		[][]string{{"1", "2"}, {"", ""}, {"3", "4"}, {"5", "6"}, {"", ""}},
	)

	xlsx, err := Encode(table, FormatXLSX, "points.csv")
	require.NoError(t, err)
	assert.Equal(t, "points.xlsx", xlsx.FileName)
	assert.Equal(t, MIMETypeXLSX, xlsx.MIMEType)

	parsed, err := Parse(UploadedFile{Name: xlsx.FileName, Data: xlsx.Data}, FormatXLSX)
	require.NoError(t, err)

	csvOut, err := Encode(parsed, FormatCSV, xlsx.FileName)
	require.NoError(t, err)
	assert.Equal(t, "points.csv", csvOut.FileName)
	assert.Equal(t, MIMETypeCSV, csvOut.MIMEType)

	lines := strings.Split(strings.TrimSuffix(string(csvOut.Data), "\n"), "\n")
	assert.Equal(t, "x,y", lines[0])
	assert.Len(t, lines[1:], table.NumRows())
}

func TestEncode_Failure(t *testing.T) {
	table := mustTable(t,
		[]string{"v"},
		[]Kind{KindNumeric},
		[][]string{{"1"}},
	)

	out, err := Encode(table, Format("pdf"), "report.csv")
	assert.Nil(t, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionFailure)
	assert.True(t, strings.HasPrefix(err.Error(), "error during file conversion: "), err.Error())

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "report.csv", fe.FileName)
}
