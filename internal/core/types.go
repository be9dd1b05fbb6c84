package core

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Format is a supported tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MIME types for converted downloads.
const (
	MIMETypeCSV  = "text/csv"
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// MIMEType returns the content type used when the format is downloaded.
func (f Format) MIMEType() string {
	switch f {
	case FormatCSV:
		return MIMETypeCSV
	case FormatXLSX:
		return MIMETypeXLSX
	default:
		return "application/octet-stream"
	}
}

// Label is the name shown next to the format choice.
func (f Format) Label() string {
	if f == FormatXLSX {
		return "Excel"
	}
	return strings.ToUpper(string(f))
}

// ParseFormat accepts a format name as submitted by a client.
// "excel" is an alias for xlsx; an empty string means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown target format %q", s)
	}
}

// UploadedFile is one file received from the client. It lives for a single
// request and is never modified.
type UploadedFile struct {
	Name string
	Data []byte
}

// Size returns the file length in bytes.
func (f UploadedFile) Size() int64 {
	return int64(len(f.Data))
}

// SizeKB returns the size in kilobytes as displayed to users.
func (f UploadedFile) SizeKB() float64 {
	return float64(len(f.Data)) / 1024
}

// CleanAction is a user-triggered cleaning step.
type CleanAction string

const (
	ActionRemoveDuplicates CleanAction = "remove_duplicates"
	ActionFillMissing      CleanAction = "fill_missing"
)

// FileOptions are the per-file choices a user makes in the UI.
type FileOptions struct {
	// Columns to keep, in any order. Empty keeps all columns.
	Columns []string `json:"columns" validate:"max=10000,dive,required"`

	// Clean gates Actions. Actions are ignored when Clean is false.
	Clean bool `json:"clean"`

	// Actions run in the order given.
	Actions []CleanAction `json:"actions" validate:"max=64,dive,oneof=remove_duplicates fill_missing"`

	Visualize bool `json:"visualize"`

	// Convert requests an encoded download in Target format.
	Convert bool   `json:"convert"`
	Target  Format `json:"target" validate:"omitempty,oneof=csv xlsx"`
}

// Severity classifies a user-visible message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeveritySuccess:
		return 1
	default:
		return 0
	}
}

// Step names the pipeline stage a message came from.
type Step string

const (
	StepDetect    Step = "detect"
	StepParse     Step = "parse"
	StepProject   Step = "project"
	StepClean     Step = "clean"
	StepVisualize Step = "visualize"
	StepConvert   Step = "convert"
)

// Message is a status line shown to the user for one file.
type Message struct {
	Severity Severity `json:"severity"`
	Step     Step     `json:"step"`
	Text     string   `json:"text"`
	Code     string   `json:"code,omitempty"`
}

// ColumnInfo describes a parsed column for selection controls.
type ColumnInfo struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Preview holds the leading rows of a table rendered as strings.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total_rows"`
}

// Conversion is an encoded table ready for download.
type Conversion struct {
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Format   Format `json:"format"`
	Data     []byte `json:"-"`
}

// Size returns the encoded length in bytes.
func (c *Conversion) Size() int {
	return len(c.Data)
}

// FileResult is everything the pipeline produced for one uploaded file.
type FileResult struct {
	Index     int          `json:"index"`
	FileName  string       `json:"file_name"`
	SizeBytes int64        `json:"size_bytes"`
	SizeKB    float64      `json:"size_kb"`
	Format    Format       `json:"format,omitempty"`
	Status    Severity     `json:"status"`
	Messages  []Message    `json:"messages"`
	Columns   []ColumnInfo `json:"columns,omitempty"`
	Selected  []string     `json:"selected,omitempty"`
	Rows      int          `json:"rows"`
	Preview   *Preview     `json:"preview,omitempty"`
	Chart     *BarChart    `json:"chart,omitempty"`
	Output    *Conversion  `json:"output,omitempty"`
	Options   FileOptions  `json:"options"`

	// Table is the final table after projection and cleaning.
	Table *Table `json:"-"`

	// Err is the first error that stopped or failed a step.
	Err error `json:"-"`
}

func (r *FileResult) add(sev Severity, step Step, code, format string, args ...any) {
	r.Messages = append(r.Messages, Message{
		Severity: sev,
		Step:     step,
		Text:     fmt.Sprintf(format, args...),
		Code:     code,
	})
	if sev.rank() > r.Status.rank() {
		r.Status = sev
	}
}

// fail records err as an error message for step.
func (r *FileResult) fail(step Step, err error) {
	if r.Err == nil {
		r.Err = err
	}
	r.add(SeverityError, step, MapError(err).Code, "%s", sentence(err.Error()))
}

// warn records a warning that did not stop processing.
func (r *FileResult) warn(step Step, err error) {
	r.add(SeverityWarning, step, MapError(err).Code, "%s.", sentence(err.Error()))
}

// sentence upper-cases the first letter of s.
func sentence(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Failed reports whether any step produced an error.
func (r *FileResult) Failed() bool {
	return r.Status == SeverityError
}

// BatchResult aggregates per-file results for one run.
type BatchResult struct {
	RunID     string       `json:"run_id"`
	Files     []FileResult `json:"files"`
	Succeeded int          `json:"succeeded"`
	Warnings  int          `json:"warnings"`
	Failed    int          `json:"failed"`
	Summary   Message      `json:"summary"`
}
