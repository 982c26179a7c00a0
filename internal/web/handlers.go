package web

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/importer"
	"github.com/JonMunkholm/catalogimport/internal/logging"
)

// multipartMemory is how much of an upload is buffered in memory before
// the multipart reader spills to disk.
const multipartMemory = 32 << 20

var (
	errNoFile   = errors.New("no file provided")
	errTooLarge = errors.New("file too large")
)

type healthResponse struct {
	Status  string             `json:"status"`
	Imports core.LimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{Status: "ok", Imports: s.service.LimiterStatus()})
}

type createImportResponse struct {
	RunID    string `json:"runId"`
	Format   string `json:"format"`
	Records  int    `json:"records"`
	Skipped  int    `json:"skipped"`
	Repeated int    `json:"repeated"`
	DryRun   bool   `json:"dryRun,omitempty"`
}

// handleCreateImport reads an uploaded file and starts an import run.
// The run continues after the response; poll GET /api/imports/{runID}.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, r, fmt.Errorf("%w: %w", errTooLarge, err), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %w", errNoFile, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", errNoFile, err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if _, err := importer.DetectFormat(header.Filename); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	dryRun, _ := strconv.ParseBool(r.FormValue("dryRun"))
	logger := logging.WithFields(r.Context(), "file", header.Filename, "size", header.Size)

	path, cleanup, err := spool(file, header.Filename)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	defer cleanup()

	src, err := importer.ReadFile(r.Context(), path, header.Filename, s.cfg.Source, logger)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusUnprocessableEntity
		}
		s.respondError(w, r, err, status)
		return
	}

	runID, err := s.service.Start(r.Context(), core.ImportRequest{
		FileName: header.Filename,
		Format:   string(src.Format),
		Records:  src.Records.Records(),
		DryRun:   dryRun,
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logger.Info("import accepted", "run_id", runID, "records", src.Records.Len(), "dry_run", dryRun)
	writeJSONStatus(w, http.StatusAccepted, createImportResponse{
		RunID:    runID,
		Format:   string(src.Format),
		Records:  src.Records.Len(),
		Skipped:  src.Skipped,
		Repeated: src.Repeated,
		DryRun:   dryRun,
	})
}

// spool copies an upload to a temporary file. Readers for workbooks and
// desktop databases need random access.
func spool(src io.Reader, name string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "catalog-import-*"+filepath.Ext(name))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("spool upload: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 20)

	runs, err := s.service.Runs(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []core.ImportResult{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	status, err := s.service.Status(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleCancelImport(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if err := s.service.Cancel(runID); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSONStatus(w, http.StatusAccepted, map[string]string{"runId": runID, "status": "cancelling"})
}

// handleExportFailures streams a finished run's failed records as CSV.
func (s *Server) handleExportFailures(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	status, err := s.service.Status(r.Context(), runID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if status.Result == nil {
		writeJSONStatus(w, http.StatusConflict, ErrorResponse{
			Error:   "import still running",
			Message: "The import has not finished yet.",
			Action:  "Try again when the run is complete.",
			Code:    "IMP008",
		})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", runID+"-failures.csv"))

	cw := csv.NewWriter(w)
	cw.Write([]string{"Row", "Part Number", "Manufacturer", "Kind", "Reason"})
	for _, f := range status.Result.Failures {
		cw.Write([]string{
			strconv.Itoa(f.Index + 1),
			f.PartNumber,
			f.Manufacturer,
			f.Kind,
			f.Reason,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.FromContext(r.Context()).Error("failed to write failures export", "run_id", runID, "error", err)
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
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
