// Package ingest reads delimited potentiostat exports into trace
// samples. Files vary widely between instruments: comma, semicolon or
// tab separated, with or without a header row, with optional time and
// applied-potential columns. The reader sniffs the delimiter, detects
// columns from header keywords when present and skips rows it cannot
// parse, reporting how many.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/voltagram/voltagram/logging"
	"github.com/voltagram/voltagram/trace"
)

var (
	// ErrNoData is returned when no parseable data rows exist.
	ErrNoData = errors.New("ingest: no data rows")
	// ErrTooFewColumns is returned when rows carry fewer than two columns.
	ErrTooFewColumns = errors.New("ingest: need at least two columns")
)

// ColumnMap records which input column fed each sample field; -1 marks
// an absent column.
type ColumnMap struct {
	Potential int `json:"potential"`
	Current   int `json:"current"`
	Time      int `json:"time"`
	Applied   int `json:"applied"`
}

// Dataset is the parsed content of one export file.
type Dataset struct {
	Samples     trace.Scan `json:"samples"`
	Columns     ColumnMap  `json:"columns"`
	SkippedRows int        `json:"skipped_rows"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// ReadFile parses the file at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses delimited sample data from r.
func Read(r io.Reader) (*Dataset, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "ingest",
	})

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: parsing failed: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	dataset := &Dataset{}
	start := 0
	if isHeaderRow(records[0]) {
		dataset.Columns = mapHeaderColumns(records[0])
		if dataset.Columns.Potential < 0 || dataset.Columns.Current < 0 {
			dataset.Columns = positionalColumns(len(records[0]))
			dataset.Warnings = append(dataset.Warnings,
				"column headers not recognized, using positional columns")
		}
		start = 1
	} else {
		dataset.Columns = positionalColumns(len(records[0]))
	}
	if dataset.Columns.Current < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewColumns, len(records[0]))
	}

	for _, record := range records[start:] {
		smp, ok := parseRow(record, dataset.Columns)
		if !ok {
			dataset.SkippedRows++
			continue
		}
		dataset.Samples = append(dataset.Samples, smp)
	}

	if len(dataset.Samples) == 0 {
		return nil, ErrNoData
	}
	if dataset.SkippedRows > 0 {
		dataset.Warnings = append(dataset.Warnings, fmt.Sprintf(
			"%d rows skipped, fields not parseable as numbers", dataset.SkippedRows))
		logger.Warn("Skipped unparseable rows", logging.Fields{
			"skipped": dataset.SkippedRows,
		})
	}

	logger.Debug("Parsed dataset", logging.Fields{
		"samples":   len(dataset.Samples),
		"delimiter": string(reader.Comma),
		"has_time":  dataset.Columns.Time >= 0,
	})
	return dataset, nil
}

// sniffDelimiter inspects the first non-empty line and picks the most
// frequent of semicolon, tab and comma. Comma wins ties.
func sniffDelimiter(data []byte) rune {
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		best := ','
		bestCount := bytes.Count(line, []byte(","))
		if c := bytes.Count(line, []byte(";")); c > bestCount {
			best, bestCount = ';', c
		}
		if c := bytes.Count(line, []byte("\t")); c > bestCount {
			best = '\t'
		}
		return best
	}
	return ','
}

// isHeaderRow reports whether any field fails to parse as a number.
func isHeaderRow(record []string) bool {
	for _, field := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return true
		}
	}
	return false
}

// mapHeaderColumns matches header labels against the names instrument
// vendors use. Applied potential is matched before plain potential so
// labels like "applied potential" land on the right column.
func mapHeaderColumns(header []string) ColumnMap {
	columns := ColumnMap{Potential: -1, Current: -1, Time: -1, Applied: -1}
	for i, field := range header {
		label := strings.ToLower(strings.TrimSpace(field))
		switch {
		case columns.Applied < 0 &&
			(strings.Contains(label, "applied") || strings.Contains(label, "eapp")):
			columns.Applied = i
		case columns.Potential < 0 &&
			(strings.Contains(label, "potential") || strings.Contains(label, "ewe") ||
				strings.Contains(label, "volt") || label == "e"):
			columns.Potential = i
		case columns.Current < 0 &&
			(strings.Contains(label, "current") || label == "i" ||
				strings.HasPrefix(label, "i/")):
			columns.Current = i
		case columns.Time < 0 &&
			(strings.Contains(label, "time") || label == "t" ||
				strings.HasPrefix(label, "t/")):
			columns.Time = i
		}
	}
	return columns
}

// positionalColumns is the headerless fallback: potential, current and
// an optional third time column.
func positionalColumns(width int) ColumnMap {
	columns := ColumnMap{Potential: -1, Current: -1, Time: -1, Applied: -1}
	if width >= 2 {
		columns.Potential = 0
		columns.Current = 1
	}
	if width >= 3 {
		columns.Time = 2
	}
	return columns
}

// parseRow builds a sample from one record. Rows whose potential or
// current cannot be parsed are rejected; time and applied potential are
// kept only when present and parseable.
func parseRow(record []string, columns ColumnMap) (trace.Sample, bool) {
	potential, ok := parseField(record, columns.Potential)
	if !ok {
		return trace.Sample{}, false
	}
	current, ok := parseField(record, columns.Current)
	if !ok {
		return trace.Sample{}, false
	}

	smp := trace.Sample{Potential: potential, Current: current}
	if v, ok := parseField(record, columns.Time); ok {
		smp.Time = &v
	}
	if v, ok := parseField(record, columns.Applied); ok {
		smp.AppliedPotential = &v
	}
	return smp, true
}

func parseField(record []string, column int) (float64, bool) {
	if column < 0 || column >= len(record) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[column]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
