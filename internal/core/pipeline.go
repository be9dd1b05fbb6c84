package core

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/DataSweeper/internal/logging"
)

// processFile runs every step for one file. A step that fails skips the
// remaining steps for this file only. Panics are recovered and reported as
// an error on the file.
func (s *Service) processFile(ctx context.Context, runID uuid.UUID, index int, file UploadedFile, opts FileOptions) (res FileResult) {
	logger := logging.WithFields(ctx, "run_id", runID.String(), "file", file.Name)

	res = FileResult{
		Index:     index,
		FileName:  file.Name,
		SizeBytes: file.Size(),
		SizeKB:    math.Round(file.SizeKB()*100) / 100,
		Options:   opts,
	}

	step := StepDetect
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while processing file",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			res.Output = nil
			res.fail(step, fmt.Errorf("unexpected failure while processing %s", file.Name))
		}
	}()

	format, err := DetectFormat(file.Name)
	if err != nil {
		logger.Debug("unsupported format", "error", err)
		res.fail(StepDetect, err)
		return res
	}
	res.Format = format

	step = StepParse
	table, err := Parse(file, format)
	if err != nil {
		logger.Debug("parse failed", "error", err)
		res.fail(StepParse, err)
		return res
	}
	res.Columns = table.Info()
	res.Preview = table.Head(s.previewRows)
	res.add(SeverityInfo, StepParse, "", "Read %s and %s.",
		plural(table.NumRows(), "row", "rows"), plural(table.NumColumns(), "column", "columns"))
	logger.Debug("parsed", "format", format, "rows", table.NumRows(), "columns", table.NumColumns())

	step = StepProject
	work, unknown := Project(table, opts.Columns)
	if len(unknown) > 0 {
		res.add(SeverityWarning, StepProject, "", "Ignored unknown columns: %s.", strings.Join(unknown, ", "))
	}
	res.Selected = work.ColumnNames()

	if opts.Clean {
		step = StepClean
		work = s.clean(&res, work, opts.Actions)
	}
	res.Table = work
	res.Rows = work.NumRows()

	if opts.Visualize {
		step = StepVisualize
		chart, err := BuildBarChart(work, s.maxChartPoints)
		if err != nil {
			res.warn(StepVisualize, err)
		} else {
			res.Chart = chart
		}
	}

	if opts.Convert {
		step = StepConvert
		target := opts.Target
		if target == "" {
			target = FormatCSV
		}
		out, err := Encode(work, target, file.Name)
		if err != nil {
			logger.Warn("conversion failed", "target", target, "error", err)
			res.fail(StepConvert, err)
		} else {
			res.Output = out
			res.add(SeveritySuccess, StepConvert, "",
				"%s successfully converted and ready for download!", file.Name)
			logger.Debug("converted", "target", target, "bytes", out.Size())
		}
	}

	if res.Status.rank() < SeveritySuccess.rank() {
		res.Status = SeveritySuccess
	}
	return res
}

// clean applies the requested actions in order. Each action sees the table
// left by the previous one.
func (s *Service) clean(res *FileResult, t *Table, actions []CleanAction) *Table {
	for _, action := range actions {
		switch action {
		case ActionRemoveDuplicates:
			var removed int
			t, removed = RemoveDuplicates(t)
			res.add(SeveritySuccess, StepClean, "", "Duplicates removed! (%s dropped)",
				plural(removed, "row", "rows"))

		case ActionFillMissing:
			filled, fills, err := FillMissingNumeric(t)
			if err != nil {
				res.warn(StepClean, err)
				continue
			}
			t = filled
			n := 0
			for _, f := range fills {
				n += f.Filled
			}
			res.add(SeveritySuccess, StepClean, "", "Missing values have been filled! (%s)",
				plural(n, "value", "values"))

		default:
			res.add(SeverityWarning, StepClean, "", "Unknown cleaning action %q ignored.", action)
		}
	}
	return t
}
