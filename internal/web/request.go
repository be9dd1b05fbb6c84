package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/DataSweeper/internal/core"
)

// Request-level errors. Their text matches core.MapError patterns.
var (
	errNoFiles         = errors.New("no file provided")
	errTooManyFiles    = errors.New("too many files")
	errFileTooLarge    = errors.New("file too large")
	errRequestTooLarge = errors.New("request body too large")
	errInvalidOptions  = errors.New("invalid options")
)

// maxOptionsSize bounds the options form field.
const maxOptionsSize = 1 << 20

// optionsPayload is one element of the "options" form field. Target accepts
// "csv", "xlsx" or "excel".
type optionsPayload struct {
	Columns   []string `json:"columns"`
	Clean     bool     `json:"clean"`
	Actions   []string `json:"actions"`
	Visualize bool     `json:"visualize"`
	Convert   bool     `json:"convert"`
	Target    string   `json:"target"`
}

// readBatch reads a multipart request with any number of "files" parts and an
// optional "options" part holding a JSON array (or a single object) of
// per-file options, matched to files by position. Parts are read into memory
// as they stream in; nothing is spooled to disk.
func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) ([]core.UploadedFile, []core.FileOptions, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxRequestSize())

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errNoFiles, err)
	}

	var (
		files   []core.UploadedFile
		rawOpts []byte
	)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, bodyError(err)
		}

		switch part.FormName() {
		case "files", "file":
			name := part.FileName()
			if name == "" {
				// Browsers send an empty part when nothing was chosen.
				part.Close()
				continue
			}
			if len(files) >= s.cfg.Upload.MaxFiles {
				part.Close()
				return nil, nil, fmt.Errorf("%w: at most %d per request", errTooManyFiles, s.cfg.Upload.MaxFiles)
			}
			data, err := readLimited(part, s.cfg.Upload.MaxFileSize)
			part.Close()
			if err != nil {
				if errors.Is(err, errFileTooLarge) {
					return nil, nil, fmt.Errorf("%w: %s is larger than %d bytes", errFileTooLarge, name, s.cfg.Upload.MaxFileSize)
				}
				return nil, nil, bodyError(err)
			}
			files = append(files, core.UploadedFile{Name: name, Data: data})

		case "options":
			rawOpts, err = readLimited(part, maxOptionsSize)
			part.Close()
			if err != nil {
				if errors.Is(err, errFileTooLarge) {
					return nil, nil, fmt.Errorf("%w: options field too large", errInvalidOptions)
				}
				return nil, nil, bodyError(err)
			}

		default:
			part.Close()
		}
	}

	opts, err := s.decodeOptions(rawOpts)
	if err != nil {
		return nil, nil, err
	}
	return files, opts, nil
}

// decodeOptions parses and validates the options field.
func (s *Server) decodeOptions(raw []byte) ([]core.FileOptions, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var payloads []optionsPayload
	if raw[0] == '{' {
		var one optionsPayload
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidOptions, err)
		}
		payloads = []optionsPayload{one}
	} else if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidOptions, err)
	}

	opts := make([]core.FileOptions, len(payloads))
	for i, p := range payloads {
		target, err := core.ParseFormat(p.Target)
		if err != nil {
			return nil, fmt.Errorf("%w: file %d: %v", errInvalidOptions, i+1, err)
		}
		actions := make([]core.CleanAction, len(p.Actions))
		for j, a := range p.Actions {
			actions[j] = core.CleanAction(a)
		}
		opts[i] = core.FileOptions{
			Columns:   p.Columns,
			Clean:     p.Clean,
			Actions:   actions,
			Visualize: p.Visualize,
			Convert:   p.Convert,
			Target:    target,
		}
		if err := s.validate.Struct(opts[i]); err != nil {
			return nil, fmt.Errorf("%w: file %d: %s", errInvalidOptions, i+1, describeValidation(err))
		}
	}
	return opts, nil
}

// describeValidation flattens validator errors into one line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Namespace(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must have at most %s entries", fe.Namespace(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// readLimited reads all of r, failing with errFileTooLarge past limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errFileTooLarge
	}
	return data, nil
}

// bodyError maps a body read failure, keeping the size limit recognizable.
func bodyError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("%w: limit is %d bytes", errRequestTooLarge, maxBytes.Limit)
	}
	return fmt.Errorf("read upload: %w", err)
}
