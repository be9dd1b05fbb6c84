package web

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/DataSweeper/internal/core"
	"github.com/JonMunkholm/DataSweeper/internal/logging"
	"github.com/JonMunkholm/DataSweeper/internal/web/templates"
)

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Page(templates.PageData{
		Title:         "Data Sweeper",
		MaxFiles:      s.cfg.Upload.MaxFiles,
		MaxFileSizeMB: s.cfg.Upload.MaxFileSize >> 20,
	})
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleProcessHTML runs the pipeline over the uploaded batch and returns the
// results fragment.
func (s *Server) handleProcessHTML(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.process(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Results(batch).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render results", "error", err)
	}
}

// handleProcessJSON runs the pipeline and returns the BatchResult as JSON.
// Converted bytes are not included; use /api/convert to download them.
func (s *Server) handleProcessJSON(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.process(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, batch)
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) (*core.BatchResult, bool) {
	files, opts, err := s.readBatch(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return nil, false
	}

	ctx := withRequestMetadata(r.Context(), r)
	logging.FromContext(ctx).Debug("batch received", "files", len(files))

	batch, err := s.service.Process(ctx, files, opts)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return nil, false
	}
	return batch, true
}

// handleConvert runs the pipeline for exactly one file with conversion forced
// and streams the converted file as an attachment.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	files, opts, err := s.readBatch(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	switch len(files) {
	case 0:
		s.respondError(w, r, errNoFiles, http.StatusBadRequest)
		return
	case 1:
	default:
		s.respondError(w, r, fmt.Errorf("%w: convert takes one file, got %d", errTooManyFiles, len(files)), http.StatusBadRequest)
		return
	}

	var o core.FileOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	ctx := withRequestMetadata(r.Context(), r)
	res, err := s.service.ConvertFile(ctx, files[0], o)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	out := res.Output
	w.Header().Set("Content-Type", out.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(out.Size()))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(out.Data); err != nil {
		logging.FromContext(ctx).Warn("write download", "file", out.FileName, "error", err)
	}
}

type historyResponse struct {
	Entries []core.ActivityEntry `json:"entries"`
	Count   int                  `json:"count"`
}

// handleHistory lists recent activity, newest first. ?limit=N caps the count.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := s.service.RecentActivity(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	if entries == nil {
		entries = []core.ActivityEntry{}
	}
	render.JSON(w, r, historyResponse{Entries: entries, Count: len(entries)})
}

type healthResponse struct {
	Status string                `json:"status"`
	Uptime string                `json:"uptime"`
	Runs   core.RunLimiterStatus `json:"runs"`
}

// handleHealth reports liveness and run slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status: "ok",
		Uptime: time.Since(startedAt).Round(time.Second).String(),
		Runs:   s.service.Limiter().Status(),
	})
}
