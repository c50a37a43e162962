package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/csvnorm/csvnorm/internal/history"
	"github.com/csvnorm/csvnorm/internal/normalize"
)

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]bool{"ok": true})
}

// handleNormalize accepts a multipart CSV upload, runs the normalization
// pipeline, and returns the artifact plus its report.
//
// Data-quality findings never fail the request: a file full of ragged rows
// and mojibake still gets a 200 with the problems itemized in the report.
// Only unusable requests are refused: no file (400), wrong extension or no
// content (422), oversized body (413).
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, err, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d byte limit", maxSize))
			return
		}
		respondError(w, r, err, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		respondError(w, r, fmt.Errorf("unsupported file type: %q", header.Filename),
			http.StatusUnprocessableEntity, "only .csv files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError, "failed to read file")
		return
	}

	artifact, report, err := s.pipeline.Normalize(r.Context(), data)
	if err != nil {
		if errors.Is(err, normalize.ErrEmptyInput) {
			respondError(w, r, err, http.StatusUnprocessableEntity,
				"file contains no CSV content")
			return
		}
		respondError(w, r, err, http.StatusInternalServerError, "normalization failed")
		return
	}

	writeJSON(w, normalize.NewResult(artifact, report))

	if s.recorder != nil {
		s.recordRun(header.Filename, int64(len(data)), artifact, report, time.Since(start))
	}
}

// recordRun persists a history row after the response has been written.
// Failures are logged and dropped; history is best effort.
func (s *Server) recordRun(filename string, inputBytes int64, artifact normalize.NormalizedArtifact, report normalize.Report, took time.Duration) {
	run := history.Run{
		Filename:    filename,
		InputBytes:  inputBytes,
		OutputBytes: int64(len(artifact.Bytes)),
		SHA256:      artifact.SHA256,
		Rows:        report.Summary.Rows,
		Columns:     report.Summary.Columns,
		Warnings:    report.Summary.Warnings,
		Errors:      report.Summary.Errors,
		DurationMS:  took.Milliseconds(),
	}

	// The request context is gone once the handler returns, so the insert
	// gets its own deadline.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recorder.Record(ctx, run); err != nil {
			slog.Warn("run history insert failed", "error", err, "sha256", run.SHA256)
		}
	}()
}

// handleHistory returns the most recent normalization runs, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", history.DefaultRecentLimit)

	runs, err := s.recorder.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError, "failed to load run history")
		return
	}

	writeJSON(w, map[string]interface{}{"runs": runs})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
