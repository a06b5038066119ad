package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"statcalc/domain/core"
	"statcalc/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// WithSheet selects the worksheet for xlsx files; it is ignored for CSV
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// FileType reports whether the reader treats the file as "xlsx" or "csv"
func (r *DataReader) FileType() string {
	return r.fileType
}

// ReadRows reads every row of the selected sheet or CSV file
func (r *DataReader) ReadRows() ([][]string, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVRows()
	case "xlsx":
		return r.readExcelRows()
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidSource, r.fileType)
	}
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// ReadColumn extracts the numeric values of one column.
// column is matched case-insensitively against the header row; empty selects the first column.
// A first row whose selected cell is numeric is treated as data rather than a header.
func (r *DataReader) ReadColumn(column string, strict bool) (*ColumnData, error) {
	rows, err := r.ReadRows()
	if err != nil {
		return nil, err
	}
	return extractColumn(rows, column, strict)
}

func extractColumn(rows [][]string, column string, strict bool) (*ColumnData, error) {
	if len(rows) == 0 {
		return nil, core.ErrNoObservations
	}

	idx := 0
	hasHeader := false
	if column != "" {
		idx = -1
		for i, h := range rows[0] {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(column)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: column %q not found in header row", core.ErrInvalidSource, column)
		}
		hasHeader = true
	} else if len(rows[0]) > 0 {
		if _, ok := parseCell(rows[0][0]); !ok {
			hasHeader = true
		}
	}

	out := &ColumnData{Header: fmt.Sprintf("column %d", idx+1)}
	start := 0
	if hasHeader {
		out.Header = strings.TrimSpace(rows[0][idx])
		start = 1
	}

	for i := start; i < len(rows); i++ {
		out.Rows++
		if idx >= len(rows[i]) {
			continue
		}
		cell := strings.TrimSpace(rows[i][idx])
		if cell == "" {
			continue
		}
		v, ok := parseCell(cell)
		if !ok {
			if strict {
				return nil, core.NewObservationError(i, cell, fmt.Sprintf("row %d of %s is not a finite number", i+1, out.Header))
			}
			out.Skipped++
			continue
		}
		out.Values = append(out.Values, v)
	}

	if len(out.Values) == 0 {
		return nil, core.ErrNoObservations
	}

	log.Printf("[DataReader] column %q: %d values, %d skipped", out.Header, len(out.Values), out.Skipped)
	return out, nil
}

func parseCell(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Source adapts a spreadsheet column to the observation source port
type Source struct {
	Config ExcelConfig
}

// NewSource creates a spreadsheet observation source
func NewSource(cfg ExcelConfig) *Source {
	return &Source{Config: cfg}
}

func (s *Source) Kind() dataset.SourceKind {
	if NewDataReader(s.Config.FilePath).FileType() == "csv" {
		return dataset.SourceCSV
	}
	return dataset.SourceXLSX
}

func (s *Source) Origin() string {
	return s.Config.FilePath
}

// Load reads the configured column
func (s *Source) Load(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, err := NewDataReader(s.Config.FilePath).WithSheet(s.Config.Sheet).ReadColumn(s.Config.Column, s.Config.Strict)
	if err != nil {
		return nil, err
	}
	return col.Values, nil
}
