// Package excel seeds daily content from spreadsheets.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/psychly/internal/badge"
	"github.com/example/psychly/internal/datekey"
	"github.com/example/psychly/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	DateColumn       string // Column with the YYYY-MM-DD date
	TypeColumn       string // Column with "experiment" or "theory"
	NameColumn       string // Column with the name
	InfoColumn       string // Column with the description
	PeriodColumn     string // Column with the date label or year created
	PeopleColumn     string // Column with the researchers or theorists
	HypothesisColumn string // Column with the hypothesis (experiments)
	RejectedColumn   string // Column with yes/no for a rejected hypothesis
	CategoryColumn   string // Column with the badge category
	IconColumn       string // Column with the badge icon
	SheetName        string // Name of the sheet to import; empty means the first sheet
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		DateColumn:       "A",
		TypeColumn:       "B",
		NameColumn:       "C",
		InfoColumn:       "D",
		PeriodColumn:     "E",
		PeopleColumn:     "F",
		HypothesisColumn: "G",
		RejectedColumn:   "H",
		CategoryColumn:   "I",
		IconColumn:       "J",
		StartRow:         2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Store is where imported records are written
type Store interface {
	Get(ctx context.Context, t models.ContentType, dateKey string) (*models.Content, error)
	Upsert(ctx context.Context, c *models.Content) (bool, error)
	UsedIcons(ctx context.Context, t models.ContentType) (map[string]bool, error)
}

// Importer loads content records from Excel or CSV files
type Importer struct {
	store Store
	pools badge.Pools
}

// NewImporter creates an importer
func NewImporter(store Store, pools badge.Pools) *Importer {
	return &Importer{store: store, pools: pools}
}

// Import imports content from an Excel or CSV file
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		rowNum := i + 1
		// Skip header rows
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}

		result.TotalProcessed++

		if err := im.processRow(ctx, row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

func readRows(config ImportConfig) ([][]string, error) {
	// Check the file extension
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return readCSV(config.FilePath)
	}
	return readExcel(config)
}

func readExcel(config ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

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
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRow validates one row and upserts the record it describes
func (im *Importer) processRow(ctx context.Context, row []string, config ImportConfig, result *ImportResult) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if colIdx := columnToIndex(column); colIdx >= 0 && colIdx < len(row) {
			return strings.TrimSpace(row[colIdx])
		}
		return ""
	}

	date, err := datekey.Parse(cell(config.DateColumn))
	if err != nil {
		return err
	}
	t, ok := models.ParseContentType(strings.ToLower(cell(config.TypeColumn)))
	if !ok {
		return fmt.Errorf("unknown type %q", cell(config.TypeColumn))
	}

	c := &models.Content{
		Type:    t,
		DateKey: datekey.Key(date),
		Name:    cell(config.NameColumn),
		Info:    cell(config.InfoColumn),
		Period:  cell(config.PeriodColumn),
		People:  cell(config.PeopleColumn),
	}
	if c.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if t == models.Experiment {
		c.Hypothesis = cell(config.HypothesisColumn)
		c.Rejected = parseBool(cell(config.RejectedColumn))
	}

	existing, err := im.store.Get(ctx, t, c.DateKey)
	if err != nil {
		return err
	}
	if err := im.applyBadge(ctx, c, existing, cell(config.CategoryColumn), cell(config.IconColumn)); err != nil {
		return err
	}
	c.SchemaVersion = schemaVersion(c)

	if existing != nil && sameContent(existing, c) {
		result.Skipped++
		return nil
	}

	created, err := im.store.Upsert(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", t, err)
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
	return nil
}

// applyBadge keeps an explicit icon, or picks one for an explicit category.
// A record that already has a badge of that category keeps its icon.
func (im *Importer) applyBadge(ctx context.Context, c, existing *models.Content, category, icon string) error {
	switch {
	case icon != "":
		if category == "" {
			category = "default"
		}
		c.SetBadge(icon, category)
	case category != "" && existing != nil && existing.HasBadge() && *existing.BadgeCategory == category:
		c.SetBadge(*existing.BadgeIcon, category)
	case category != "":
		pool := im.pools.For(c.Type)
		if !pool.Has(category) {
			return fmt.Errorf("unknown badge category %q", category)
		}
		used, err := im.store.UsedIcons(ctx, c.Type)
		if err != nil {
			return err
		}
		c.SetBadge(pool.Assign(category, used), category)
	}
	return nil
}

// schemaVersion tells the migrator what an imported record still lacks
func schemaVersion(c *models.Content) int {
	switch {
	case c.Type == models.Experiment && c.Hypothesis == "":
		return 1
	case !c.HasBadge():
		return 2
	default:
		return models.CurrentSchemaVersion
	}
}

func sameContent(a, b *models.Content) bool {
	return a.Name == b.Name && a.Info == b.Info && a.Period == b.Period && a.People == b.People &&
		a.Hypothesis == b.Hypothesis && a.Rejected == b.Rejected &&
		a.DisplayBadgeIcon() == b.DisplayBadgeIcon() && a.SchemaVersion == b.SchemaVersion
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "rejected":
		return true
	}
	return false
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
