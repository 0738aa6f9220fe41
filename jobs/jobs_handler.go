package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shipmentgen/generate"
	"shipmentgen/manifest"
	"shipmentgen/plates"
)

const maxUploadBytes = 50 << 20

// Service wires the upload API to the generator. Each upload becomes a
// job processed in its own goroutine; clients poll the job endpoint.
type Service struct {
	Store     *Store
	Generator *generate.Generator

	// TempDir receives uploaded manifests, OutputsDir the per-job
	// results, DataDir the availability tree and 2etapa copies.
	TempDir    string
	OutputsDir string
	DataDir    string
}

func NewService(gen *generate.Generator, tempDir, outputsDir, dataDir string) *Service {
	return &Service{
		Store:      NewStore(),
		Generator:  gen,
		TempDir:    tempDir,
		OutputsDir: outputsDir,
		DataDir:    dataDir,
	}
}

// RegisterRoutes mounts the job API on r.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Post("/upload-file", s.UploadHandler)
	r.Get("/job/{jobID}", s.JobStatusHandler)
	r.Delete("/job/{jobID}", s.DeleteJobHandler)
	r.Get("/jobs", s.ListJobsHandler)
	r.Get("/download/*", s.DownloadHandler)
	r.Post("/cleanup", s.CleanupHandler)
}

// UploadHandler accepts the manifest workbook plus options, saves it and
// starts processing in the background.
func (s *Service) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if !allowedExtension(header.Filename) {
		writeError(w, http.StatusBadRequest, "only Excel workbooks are accepted (.xlsx, .xlsm, .xls)")
		return
	}

	if err := s.saveAvailability(r, header.Filename); err != nil {
		slog.Warn("availability upload", slog.Any("err", err))
	}

	jobID := s.Store.Create()
	dir := filepath.Join(s.TempDir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}
	path := filepath.Join(dir, filepath.Base(header.Filename))
	if err := writeUpload(path, file); err != nil {
		s.Store.Update(jobID, func(j *Job) {
			j.Status = StatusError
			j.Error = err.Error()
		})
		writeError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}

	opts := generate.Options{
		InputPath:        path,
		OutputDir:        filepath.Join(s.OutputsDir, jobID),
		DataDir:          s.DataDir,
		UsePlantAsOrigin: formBool(r, "use_planta_as_origen"),
		SkipPlates:       formBool(r, "skip_placas"),
	}
	go s.process(jobID, opts)

	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":   jobID,
		"status":   StatusProcessing,
		"message":  "file stored, processing started",
		"filename": header.Filename,
	})
}

// saveAvailability stores an optional truck availability workbook under
// the conventional path so the roster step finds it.
func (s *Service) saveAvailability(r *http.Request, manifestName string) error {
	file, _, err := r.FormFile("availability_file")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil
		}
		return err
	}
	defer file.Close()

	month, day, ok := manifest.ExtractDate(manifestName)
	if !ok {
		return fmt.Errorf("manifest name %q carries no date for availability placement", manifestName)
	}
	path := plates.AvailabilityPath(s.DataDir, day, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeUpload(path, file)
}

func (s *Service) process(jobID string, opts generate.Options) {
	s.Store.Update(jobID, func(j *Job) {
		j.Status = StatusProcessing
		j.Progress = 10
		j.Message = "reading manifest"
	})

	out, err := s.Generator.Run(context.Background(), opts)
	if err != nil {
		slog.Error("job failed", slog.String("job", jobID), slog.Any("err", err))
		s.Store.Update(jobID, func(j *Job) {
			j.Status = StatusError
			j.Error = err.Error()
			j.Message = "processing failed"
		})
		return
	}

	stats := out.Result.Stats
	s.Store.Update(jobID, func(j *Job) {
		j.Status = StatusCompleted
		j.Progress = 100
		j.Message = "document generated"
		j.FileType = out.FileType.Name
		j.FileDate = out.Day + "-" + out.Month
		j.ResultFiles = append(j.ResultFiles, s.relativeResult(out.DocumentPath), s.relativeResult(out.ReportPath))
		if out.RosterPath != "" {
			j.ResultFiles = append(j.ResultFiles, s.relativeResult(out.RosterPath))
		}
		j.Stats = &JobStats{
			TotalRecords:  stats.TotalRecords,
			HeaderRecords: stats.HeaderRecords,
			DetailRecords: stats.DetailRecords,
			Queries:       stats.Queries,
			SkippedRows:   len(stats.Errors),
		}
	})
}

// JobStatusHandler returns the current job snapshot.
func (s *Service) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := s.Store.Get(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListJobsHandler returns recent jobs, newest first.
func (s *Service) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	list, total := s.Store.List(limit)
	writeJSON(w, http.StatusOK, map[string]any{"jobs": list, "total": total})
}

// relativeResult rewrites a produced path relative to the outputs root
// so it can be handed straight to the download endpoint.
func (s *Service) relativeResult(path string) string {
	if rel, err := filepath.Rel(s.OutputsDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// DownloadHandler serves a generated file by its outputs-relative path.
// Nothing outside the outputs root is reachable.
func (s *Service) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "*")

	root, err := filepath.Abs(s.OutputsDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "outputs root unavailable")
		return
	}
	abs, err := filepath.Abs(filepath.Join(root, filepath.Clean("/"+requested)))
	if err != nil || !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	if _, err := os.Stat(abs); err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(abs)))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, abs)
}

// DeleteJobHandler removes a job and its output folder.
func (s *Service) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if !s.Store.Delete(jobID) {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err := os.RemoveAll(filepath.Join(s.OutputsDir, jobID)); err != nil {
		slog.Warn("job outputs removal", slog.String("job", jobID), slog.Any("err", err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "job deleted"})
}

// CleanupHandler drops jobs older than the given number of days
// (default 7) together with their outputs.
func (s *Service) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	removed := s.Store.Cleanup(cutoff)
	for _, id := range removed {
		if err := os.RemoveAll(filepath.Join(s.OutputsDir, id)); err != nil {
			slog.Warn("cleanup outputs removal", slog.String("job", id), slog.Any("err", err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "cleanup completed", "jobs_cleaned": len(removed)})
}

func allowedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

func formBool(r *http.Request, field string) bool {
	return strings.EqualFold(r.FormValue(field), "true")
}

func writeUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
