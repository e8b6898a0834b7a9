package exporter

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"evedata/internal/dataprocessing"
	"evedata/internal/table"
)

// ExcelWriter exports measurements as multi-sheet Excel workbooks
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteMeasurement writes the full multi-chain view: one sheet per chain,
// a snapshot sheet per chain where present, monitor sheets and an info
// sheet with the remaining file attributes.
func (w *ExcelWriter) WriteMeasurement(filePath string, m *dataprocessing.Measurement) error {
	w.logger.Info("Writing Excel workbook",
		slog.String("file_path", filePath),
		slog.Int("chain_count", len(m.Chains)))

	f := excelize.NewFile()
	defer f.Close()

	for i, chain := range m.Chains {
		sheet := fmt.Sprintf("c%d", i+1)
		if err := writeTableSheet(f, sheet, chain.StandardData); err != nil {
			return err
		}
		if chain.SnapshotData != nil && !chain.SnapshotData.IsEmpty() {
			if err := writeTableSheet(f, sheet+"_snapshot", chain.SnapshotData); err != nil {
				return err
			}
		}
	}

	for _, name := range m.MonitorNames {
		if err := writeTableSheet(f, sheetName("monitor_"+name), m.Monitor[name]); err != nil {
			return err
		}
	}

	if err := writeInfoSheet(f, m); err != nil {
		return err
	}

	return saveWorkbook(f, filePath)
}

// WriteStandard writes the simplified view: the scan data sheet, one
// snapshot sheet with the before/after pairs, and the info sheet.
func (w *ExcelWriter) WriteStandard(filePath string, sm *dataprocessing.StandardMeasurement) error {
	w.logger.Info("Writing Excel workbook",
		slog.String("file_path", filePath),
		slog.Int("row_count", sm.Data.Len()))

	f := excelize.NewFile()
	defer f.Close()

	if err := writeTableSheet(f, "data", sm.Data); err != nil {
		return err
	}
	if err := writeSnapshotSheet(f, sm); err != nil {
		return err
	}
	if err := writeInfoSheet(f, sm.Measurement); err != nil {
		return err
	}

	return saveWorkbook(f, filePath)
}

func writeTableSheet(f *excelize.File, sheet string, tbl *table.Table) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if tbl == nil {
		return nil
	}

	if err := setRow(f, sheet, 1, tableHeader(tbl)); err != nil {
		return err
	}
	for i := 0; i < tbl.Len(); i++ {
		if err := setRow(f, sheet, i+2, tableRow(tbl, i)); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshotSheet(f *excelize.File, sm *dataprocessing.StandardMeasurement) error {
	const sheet = "snapshot"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := setRow(f, sheet, 1, []string{"name", "before", "after"}); err != nil {
		return err
	}

	names := make([]string, 0, len(sm.SnapshotBefore))
	for name := range sm.SnapshotBefore {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		row := []string{name, table.FormatCell(sm.SnapshotBefore[name]), ""}
		if after, ok := sm.SnapshotAfter[name]; ok {
			row[2] = table.FormatCell(after)
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeInfoSheet(f *excelize.File, m *dataprocessing.Measurement) error {
	const sheet = "info"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]string{
		{"source", m.Source},
		{"eve_h5_version", fmt.Sprintf("%g", m.EveH5Version)},
		{"eve_version", m.EveVersion},
		{"xml_version", m.XMLVersion},
		{"application_name", m.ApplicationName},
		{"comment", m.Comment},
		{"location", m.Location},
	}
	if m.Start != nil {
		rows = append(rows, []string{"start", table.FormatCell(*m.Start)})
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell name: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d on sheet %s: %w", row, sheet, err)
	}
	return nil
}

func saveWorkbook(f *excelize.File, filePath string) error {
	// excelize seeds every workbook with Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetName trims names to the 31-character limit Excel imposes.
func sheetName(name string) string {
	if len(name) <= 31 {
		return name
	}
	return name[:31]
}
