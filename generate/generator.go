package generate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shipmentgen/document"
	"shipmentgen/infrastructure/runlog"
	"shipmentgen/infrastructure/sqlite"
	"shipmentgen/manifest"
	"shipmentgen/masterdata"
	"shipmentgen/models"
	"shipmentgen/pipeline"
	"shipmentgen/plates"
	"shipmentgen/sequence"
)

// Options configures one generation run.
type Options struct {
	// InputPath is the manifest workbook.
	InputPath string
	// OutputDir is the root under which the per-type dated folders are
	// created. Defaults to ".".
	OutputDir string
	// DataDir is the root holding the disponibilidad_camiones tree and
	// receiving the 2etapa copies. Defaults to OutputDir.
	DataDir string
	// UsePlantAsOrigin replaces each row's origin with its plant code.
	UsePlantAsOrigin bool
	// SkipPlates disables the availability roster.
	SkipPlates bool
}

// Output describes what a run produced.
type Output struct {
	DocumentPath string
	ReportPath   string
	RosterPath   string
	FileType     manifest.FileType
	Month, Day   string
	Result       *pipeline.Result
}

// Generator runs the full manifest-to-document flow against one
// database.
type Generator struct {
	db      *sqlite.DB
	store   *masterdata.Store
	runs    *runlog.Service
	country string
	now     func() time.Time
}

func NewGenerator(db *sqlite.DB) *Generator {
	return &Generator{
		db:      db,
		store:   masterdata.NewStore(db),
		runs:    runlog.NewService(db),
		country: "BO",
		now:     time.Now,
	}
}

// Run processes one manifest end to end: classify the file, load the
// rows, expand them, write the document, report and roster, and record
// the run. The roster and the 2etapa copies are best effort; only the
// manifest and the document itself are fatal.
func (g *Generator) Run(ctx context.Context, opts Options) (*Output, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.DataDir == "" {
		opts.DataDir = opts.OutputDir
	}

	ft := manifest.DetectFileType(opts.InputPath)
	month, day := manifest.ExtractDateOrNow(opts.InputPath, g.now())
	out := &Output{FileType: ft, Month: month, Day: day}

	slog.Info("generation started",
		slog.String("input", opts.InputPath),
		slog.String("type", ft.Name),
		slog.String("plan", ft.PlanID))

	m, err := manifest.Read(opts.InputPath, manifest.ReadOptions{UsePlantAsOrigin: opts.UsePlantAsOrigin})
	if err != nil {
		g.recordFailure(ctx, opts, ft, err)
		return nil, err
	}

	resolver := masterdata.NewResolver(g.store, g.store, g.country)
	allocator := sequence.NewAllocator(sequence.NewDBStore(g.db))
	p := pipeline.New(resolver, allocator, pipeline.NewExpander(g.country))

	result, err := p.Run(ctx, m)
	if err != nil {
		g.recordFailure(ctx, opts, ft, err)
		return nil, err
	}
	out.Result = result
	if len(result.Records) == 0 {
		err := fmt.Errorf("manifest %s produced no records", opts.InputPath)
		g.recordFailure(ctx, opts, ft, err)
		return nil, err
	}

	destDir := filepath.Join(opts.OutputDir, manifest.DestinationFolder(ft, month, day))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		g.recordFailure(ctx, opts, ft, err)
		return nil, fmt.Errorf("destination folder: %w", err)
	}

	docName := fmt.Sprintf("processShipmentOrderCreate_DB_%s.xml", g.now().Format("2006_01_02_15_04"))
	out.DocumentPath = filepath.Join(destDir, docName)
	if err := document.NewWriter(ft.PlanID).WriteFile(out.DocumentPath, result.Records); err != nil {
		g.recordFailure(ctx, opts, ft, err)
		return nil, err
	}

	out.ReportPath = strings.TrimSuffix(out.DocumentPath, ".xml") + "_validation_report.txt"
	if err := os.WriteFile(out.ReportPath, []byte(result.Report()), 0o644); err != nil {
		g.recordFailure(ctx, opts, ft, err)
		return nil, fmt.Errorf("validation report: %w", err)
	}

	etapa2Dir := g.copyToEtapa2(opts, ft, month, day, out.DocumentPath)

	if !opts.SkipPlates {
		out.RosterPath = g.writeRoster(ctx, opts, m, destDir, etapa2Dir, month, day)
	}

	stats := result.Stats
	run := &runFields{
		input:   opts.InputPath,
		ft:      ft,
		headers: int64(stats.HeaderRecords),
		details: int64(stats.DetailRecords),
		queries: stats.Queries,
		errors:  int64(len(stats.Errors)),
	}
	g.record(ctx, run, runlog.StatusCompleted, "")

	slog.Info("generation completed",
		slog.String("document", out.DocumentPath),
		slog.Int("headers", stats.HeaderRecords),
		slog.Int("details", stats.DetailRecords),
		slog.Int("skipped", len(stats.Errors)))
	return out, nil
}

// copyToEtapa2 mirrors the document under the 2etapa tree with the
// simplified name the downstream stage expects. Returns the folder so
// the roster copy can land next to it, or "" on failure.
func (g *Generator) copyToEtapa2(opts Options, ft manifest.FileType, month, day, docPath string) string {
	lower := strings.ToLower(ft.Name)
	dir := filepath.Join(opts.DataDir, "2etapa", "output", lower, month, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("2etapa folder", slog.Any("err", err))
		return ""
	}
	if err := copyFile(docPath, filepath.Join(dir, lower+".xml")); err != nil {
		slog.Warn("2etapa document copy", slog.Any("err", err))
		return ""
	}
	return dir
}

// writeRoster builds the plate availability roster from the manifest and
// the daily availability workbook. Every failure here is logged and
// swallowed; a missing roster never blocks the document.
func (g *Generator) writeRoster(ctx context.Context, opts Options, m *manifest.Manifest, destDir, etapa2Dir, month, day string) string {
	fromManifest, err := plates.FromManifest(ctx, m, g.store)
	if err != nil {
		slog.Warn("plate roster skipped", slog.Any("err", err))
		return ""
	}

	fromWorkbook, err := plates.FromWorkbook(plates.AvailabilityPath(opts.DataDir, day, month))
	if err != nil {
		slog.Warn("availability workbook unavailable", slog.Any("err", err))
	}

	merged := plates.Merge(fromManifest, fromWorkbook)
	rosterPath := filepath.Join(destDir, "availability_placas.xlsx")
	if err := document.WriteRoster(rosterPath, merged); err != nil {
		slog.Warn("plate roster", slog.Any("err", err))
		return ""
	}
	slog.Info("plate roster written",
		slog.String("path", rosterPath),
		slog.Int("manifest", len(fromManifest)),
		slog.Int("workbook", len(fromWorkbook)),
		slog.Int("merged", len(merged)))

	if etapa2Dir != "" {
		if err := document.WriteRoster(filepath.Join(etapa2Dir, "availability.xlsx"), merged); err != nil {
			slog.Warn("2etapa roster copy", slog.Any("err", err))
		}
	}
	return rosterPath
}

type runFields struct {
	input   string
	ft      manifest.FileType
	headers int64
	details int64
	queries int64
	errors  int64
}

func (g *Generator) record(ctx context.Context, f *runFields, status, detail string) {
	run := &models.GenerationRun{
		InputFile:     filepath.Base(f.input),
		FileType:      f.ft.Name,
		PlanID:        f.ft.PlanID,
		HeaderRecords: f.headers,
		DetailRecords: f.details,
		QueryCount:    f.queries,
		ErrorCount:    f.errors,
		Status:        status,
		Detail:        detail,
	}
	if err := g.runs.Record(ctx, run); err != nil {
		slog.Warn("run log", slog.Any("err", err))
	}
}

func (g *Generator) recordFailure(ctx context.Context, opts Options, ft manifest.FileType, cause error) {
	g.record(ctx, &runFields{input: opts.InputPath, ft: ft}, runlog.StatusFailed, cause.Error())
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
