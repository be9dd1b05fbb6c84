package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/DataSweeper/internal/config"
	"github.com/JonMunkholm/DataSweeper/internal/logging"
)

// Service runs the processing pipeline. It holds no per-user state; every
// call works only on the files and options it is given.
type Service struct {
	previewRows    int
	maxChartPoints int

	limiter *RunLimiter
	history HistoryStore
	metrics *Metrics
	now     func() time.Time
}

// NewService creates a Service. A nil history keeps recent activity in
// memory; a nil metrics records nothing.
func NewService(cfg config.UploadConfig, history HistoryStore, metrics *Metrics) *Service {
	if history == nil {
		history = NewMemoryHistory(0)
	}
	return &Service{
		previewRows:    cfg.PreviewRows,
		maxChartPoints: cfg.MaxChartPoints,
		limiter:        NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		history:        history,
		metrics:        metrics,
		now:            time.Now,
	}
}

// Process runs the pipeline over every file in order. opts[i] applies to
// files[i]; missing entries use the zero FileOptions. A failing file never
// stops the others. The returned error is only for failures to start the
// run at all, such as ErrBusy.
func (s *Service) Process(ctx context.Context, files []UploadedFile, opts []FileOptions) (*BatchResult, error) {
	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := s.now()
	runID := uuid.New()
	logger := logging.WithFields(ctx, "run_id", runID.String())

	batch := &BatchResult{
		RunID: runID.String(),
		Files: make([]FileResult, 0, len(files)),
	}

	for i, file := range files {
		var o FileOptions
		if i < len(opts) {
			o = opts[i]
		}

		var res FileResult
		if err := ctx.Err(); err != nil {
			res = FileResult{Index: i, FileName: file.Name, SizeBytes: file.Size()}
			res.fail(StepDetect, err)
		} else {
			res = s.processFile(ctx, runID, i, file, o)
		}

		switch {
		case res.Failed():
			batch.Failed++
		case res.Status == SeverityWarning:
			batch.Warnings++
		default:
			batch.Succeeded++
		}

		s.metrics.observeFile(&res)
		s.record(ctx, runID, &res)
		batch.Files = append(batch.Files, res)
	}

	batch.Summary = summarize(batch)
	elapsed := s.now().Sub(start)
	s.metrics.observeRun(elapsed)

	logger.Info("batch processed",
		"files", len(files),
		"succeeded", batch.Succeeded,
		"warnings", batch.Warnings,
		"failed", batch.Failed,
		"duration_ms", elapsed.Milliseconds(),
	)

	return batch, nil
}

// ConvertFile processes a single file with conversion forced on and returns
// its result. When no output could be produced the error explains why.
func (s *Service) ConvertFile(ctx context.Context, file UploadedFile, opts FileOptions) (*FileResult, error) {
	opts.Convert = true
	batch, err := s.Process(ctx, []UploadedFile{file}, []FileOptions{opts})
	if err != nil {
		return nil, err
	}

	res := &batch.Files[0]
	if res.Output == nil {
		if res.Err != nil {
			return res, res.Err
		}
		return res, conversionFailure(file.Name, fmt.Errorf("no output produced"))
	}
	return res, nil
}

// RecentActivity returns up to limit history entries, newest first.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.history.Recent(ctx, limit)
}

// Limiter exposes the run limiter for status reporting.
func (s *Service) Limiter() *RunLimiter {
	return s.limiter
}

// WaitForRuns blocks until in-flight runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// record appends the file's metadata to the history. History failures are
// logged and never change the file's result.
func (s *Service) record(ctx context.Context, runID uuid.UUID, res *FileResult) {
	entry := ActivityEntry{
		ID:        uuid.New(),
		RunID:     runID,
		FileName:  res.FileName,
		Format:    string(res.Format),
		Status:    string(res.Status),
		Rows:      res.Rows,
		Columns:   len(res.Selected),
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		CreatedAt: s.now().UTC(),
	}
	if res.Output != nil {
		entry.Target = string(res.Output.Format)
		entry.OutputName = res.Output.FileName
	}

	// The run may outlive a cancelled request; the entry is still written.
	if err := s.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.FromContext(ctx).Warn("failed to record activity",
			"file", res.FileName,
			"error", err,
		)
	}
}

func summarize(b *BatchResult) Message {
	total := len(b.Files)
	switch {
	case total == 0:
		return Message{Severity: SeverityInfo, Text: "No files to process."}
	case b.Failed == 0:
		return Message{Severity: SeveritySuccess, Text: "All files processed successfully!"}
	case b.Failed == total:
		return Message{Severity: SeverityError, Text: plural(total, "file", "files") + " could not be processed."}
	default:
		return Message{
			Severity: SeverityWarning,
			Text:     fmt.Sprintf("%d of %s could not be processed.", b.Failed, plural(total, "file", "files")),
		}
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
