package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	TitleColumn       string // Column with the course title
	DescriptionColumn string // Column with the description
	ContentColumn     string // Column with the course content
	SheetName         string // Name of the sheet to import, first sheet when empty
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TitleColumn:       "A",
		DescriptionColumn: "B",
		ContentColumn:     "C",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Errors         []string
}

// courseRow is one course read from a spreadsheet
type courseRow struct {
	title       string
	description string
	content     string
}

type importer struct {
	repo   *database.CourseRepository
	result *ImportResult
}

// ImportCourses imports courses from an Excel or CSV file. Rows whose title
// matches an existing course (ignoring case) update it.
func ImportCourses(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	cols, err := config.columns()
	if err != nil {
		return nil, err
	}

	imp := &importer{
		repo:   database.NewCourseRepository(),
		result: &ImportResult{Errors: make([]string, 0)},
	}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 || isBlank(row) {
			continue
		}

		imp.result.TotalProcessed++
		if err := imp.processRow(ctx, cols.extract(row)); err != nil {
			imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return imp.result, nil
}

// readExcel returns the rows of a sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns every record of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type columnIndexes struct {
	title, description, content int
}

func (c ImportConfig) columns() (columnIndexes, error) {
	var idx columnIndexes
	for _, col := range []struct {
		name string
		dst  *int
	}{
		{c.TitleColumn, &idx.title},
		{c.DescriptionColumn, &idx.description},
		{c.ContentColumn, &idx.content},
	} {
		n, err := excelize.ColumnNameToNumber(col.name)
		if err != nil {
			return idx, fmt.Errorf("invalid column %q: %w", col.name, err)
		}
		*col.dst = n - 1
	}
	return idx, nil
}

func (c columnIndexes) extract(row []string) courseRow {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return courseRow{
		title:       cell(c.title),
		description: cell(c.description),
		content:     cell(c.content),
	}
}

// processRow creates a course or updates the one with the same title
func (imp *importer) processRow(ctx context.Context, row courseRow) error {
	if row.title == "" {
		return fmt.Errorf("title cannot be empty")
	}

	existing, err := imp.repo.GetByTitle(ctx, row.title)
	switch {
	case err == nil:
		existing.Description = row.description
		existing.Content = row.content
		if err := imp.repo.Update(ctx, existing); err != nil {
			return err
		}
		imp.result.Updated++
	case errors.Is(err, database.ErrNotFound):
		course := &models.Course{Title: row.title, Description: row.description, Content: row.content}
		if err := imp.repo.Create(ctx, course); err != nil {
			return err
		}
		imp.result.Created++
	default:
		return err
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
