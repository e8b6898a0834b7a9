package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"evedata/internal/config"
	"evedata/internal/dataprocessing"
	"evedata/internal/exporter"
	"evedata/internal/files"
	"evedata/internal/infrastructure"
)

func main() {
	inDir := flag.String("in", "", "input directory for .h5 measurement files (defaults to configured data directory)")
	outDir := flag.String("out", "", "output directory for exported files (defaults to configured reports directory)")
	format := flag.String("format", "csv", "export format: csv, xlsx or both")
	full := flag.Bool("full", false, "export the full multi-chain view instead of the standard view")
	preferred := flag.Bool("preferred", false, "also export the preferred axis/channel pair as <name>_preferred.csv")
	workers := flag.Int("workers", 4, "number of files processed concurrently")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = &config.Config{
			Logging: config.LoggingConfig{
				Level:  "info",
				Format: "json",
				Output: "console",
			},
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *inDir == "" {
		*inDir = cfg.Paths.DataDir
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}
	if err := validateFormat(*format); err != nil {
		logger.Error("Invalid format flag", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runID := uuid.New().String()
	logger = logger.With(slog.String("run_id", runID))
	logger.Info("Starting EVE measurement export",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.String("format", *format),
		slog.Bool("full_view", *full),
		slog.Int("workers", *workers))

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("Error creating output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sources := flag.Args()
	if len(sources) == 0 {
		found, err := files.NewDiscovery("").FindMeasurementFiles(*inDir)
		if err != nil {
			logger.Error("Failed to scan input directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
		for _, f := range found {
			sources = append(sources, f.Path)
		}
	}
	if len(sources) == 0 {
		logger.Warn("No measurement files found", slog.String("input_dir", *inDir))
		return
	}

	problems, err := files.NewProblemLog(cfg.Paths.ProblemLog)
	if err != nil {
		logger.Error("Failed to set up problem log", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runner := &exportRunner{
		logger:    logger,
		assembler: dataprocessing.NewAssembler(logger),
		problems:  problems,
		csv:       exporter.NewCSVWriter(logger),
		excel:     exporter.NewExcelWriter(logger),
		outDir:    *outDir,
		format:    *format,
		full:      *full,
		preferred: *preferred,
		opts: dataprocessing.StandardOptions{
			IgnoreTooManySnapshots: cfg.Parser.IgnoreTooManySnapshots,
		},
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for _, src := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := runner.processFile(src); err != nil {
				logger.Error("Failed to process file",
					slog.String("source", src),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Export run aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Export run finished", slog.Int("file_count", len(sources)))
}

type exportRunner struct {
	logger    *slog.Logger
	assembler *dataprocessing.Assembler
	problems  files.ProblemReporter
	csv       *exporter.CSVWriter
	excel     *exporter.ExcelWriter
	outDir    string
	format    string
	full      bool
	preferred bool
	opts      dataprocessing.StandardOptions
}

// processFile parses a single measurement file and exports it. The standard
// view is tried first; when the file's snapshot module does not fit it, the
// run falls back to the full view instead of failing.
func (r *exportRunner) processFile(source string) error {
	if r.full {
		m, err := r.assembler.MeasurementFromFile(source)
		if err != nil {
			r.reportProblem(source, err)
			return err
		}
		return r.exportMeasurement(source, m)
	}

	sm, err := r.assembler.StandardFromFile(source, r.opts)
	if err != nil {
		var cardErr *dataprocessing.SnapshotCardinalityError
		if errors.As(err, &cardErr) {
			r.logger.Warn("Snapshot layout does not fit the standard view, falling back to full view",
				slog.String("source", source),
				slog.String("column", cardErr.Column),
				slog.Int("count", cardErr.Count))
			m, err := r.assembler.MeasurementFromFile(source)
			if err != nil {
				r.reportProblem(source, err)
				return err
			}
			return r.exportMeasurement(source, m)
		}
		r.reportProblem(source, err)
		return err
	}
	return r.exportStandard(source, sm)
}

func (r *exportRunner) reportProblem(source string, err error) {
	var parseErr *dataprocessing.ParseError
	var versionErr *dataprocessing.VersionResolutionError
	if !errors.As(err, &parseErr) && !errors.As(err, &versionErr) {
		return
	}
	if logErr := r.problems.Report(source); logErr != nil {
		r.logger.Warn("Failed to record problematic file",
			slog.String("source", source),
			slog.String("error", logErr.Error()))
	}
}

func (r *exportRunner) exportStandard(source string, sm *dataprocessing.StandardMeasurement) error {
	base := r.outputBase(source)
	if r.wantCSV() {
		if err := r.csv.WriteTable(base+".csv", sm.Data, exporter.WriteOptions{BOMPrefix: true}); err != nil {
			return err
		}
	}
	if r.wantExcel() {
		if err := r.excel.WriteStandard(base+".xlsx", sm); err != nil {
			return err
		}
	}
	if r.preferred {
		if err := r.csv.WritePreferredPair(base+"_preferred.csv", sm); err != nil {
			return err
		}
	}
	return nil
}

func (r *exportRunner) exportMeasurement(source string, m *dataprocessing.Measurement) error {
	base := r.outputBase(source)
	if r.wantCSV() {
		for i, chain := range m.Chains {
			name := fmt.Sprintf("%s_c%d.csv", base, i+1)
			if err := r.csv.WriteTable(name, chain.StandardData, exporter.WriteOptions{BOMPrefix: true}); err != nil {
				return err
			}
		}
	}
	if r.wantExcel() {
		if err := r.excel.WriteMeasurement(base+".xlsx", m); err != nil {
			return err
		}
	}
	return nil
}

func (r *exportRunner) outputBase(source string) string {
	name := filepath.Base(source)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(r.outDir, name)
}

func (r *exportRunner) wantCSV() bool {
	return r.format == "csv" || r.format == "both"
}

func (r *exportRunner) wantExcel() bool {
	return r.format == "xlsx" || r.format == "both"
}

func validateFormat(format string) error {
	switch format {
	case "csv", "xlsx", "both":
		return nil
	}
	return fmt.Errorf("unknown format %q, expected csv, xlsx or both", format)
}
