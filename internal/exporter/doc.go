// Package exporter writes parsed measurements to disk.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality for tables with support for
// streaming and UTF-8 BOM for Excel compatibility.
//
// ExcelWriter: Multi-sheet workbook export with one sheet per chain plus
// snapshot, monitor and info sheets.
//
// ResolvePreferredPair picks the scan's recommended axis/channel columns
// with documented fallbacks for exports that want exactly one curve.
//
// Example usage:
//
//	csvWriter := exporter.NewCSVWriter(logger)
//	err := csvWriter.WriteTable("reports/scan_00421.csv", sm.Data, exporter.WriteOptions{BOMPrefix: true})
//
//	xlsxWriter := exporter.NewExcelWriter(logger)
//	err = xlsxWriter.WriteStandard("reports/scan_00421.xlsx", sm)
package exporter
