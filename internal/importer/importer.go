// Package importer converts spreadsheet exports of the lexicon into the JSON dataset loaded by the bot.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
)

var ErrNoSheet = errors.New("workbook has no sheet")

// ImportConfig defines the import configuration.
type ImportConfig struct {
	FilePath        string // Path to the Excel or CSV file
	FrancaisColumn  string // Column with the French word
	ShimaoreColumn  string // Column with the Shimaoré translation
	FrequenceColumn string // Column with the frequency rank, empty to use the row order
	SheetName       string // Name of the sheet to import, empty for the first sheet
	StartRow        int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		FrancaisColumn:  "A",
		ShimaoreColumn:  "B",
		FrequenceColumn: "C",
		StartRow:        2, // skip header
	}
}

// ImportResult holds the result of an import operation.
type ImportResult struct {
	Words          []entities.Word
	TotalProcessed int
	Skipped        int
	Duplicates     int
	Errors         []string
}

// ImportWords reads the lexicon from an Excel or CSV file.
// Rows without both sides are skipped; a repeated French word keeps its first row.
func ImportWords(cfg ImportConfig) (*ImportResult, error) {
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}

	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	return importRows(rows, cfg), nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheet
		}
		sheet = sheets[0]
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
	reader.FieldsPerRecord = -1 // allow variable number of fields
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

func importRows(rows [][]string, cfg ImportConfig) *ImportResult {
	result := &ImportResult{}
	seen := make(map[string]struct{})

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		result.TotalProcessed++

		francais := cleanWord(cell(row, cfg.FrancaisColumn))
		shimaore := cleanWord(cell(row, cfg.ShimaoreColumn))
		if francais == "" || shimaore == "" {
			result.Skipped++
			continue
		}

		frequence := float64(result.TotalProcessed)
		if cfg.FrequenceColumn != "" {
			raw := strings.TrimSpace(cell(row, cfg.FrequenceColumn))
			if raw != "" {
				v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid frequence %q", rowNum, raw))
					result.Skipped++
					continue
				}
				frequence = v
			}
		}

		if _, dup := seen[francais]; dup {
			result.Duplicates++
			continue
		}
		seen[francais] = struct{}{}

		result.Words = append(result.Words, entities.Word{
			Francais:  francais,
			Shimaore:  shimaore,
			Frequence: frequence,
		})
	}

	return result
}

// WriteJSON writes words as the JSON array read by the lexicon repository.
func WriteJSON(w io.Writer, words []entities.Word) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(words); err != nil {
		return fmt.Errorf("encode lexicon: %w", err)
	}
	return nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

// cleanWord trims the word and collapses inner whitespace.
func cleanWord(word string) string {
	return strings.Join(strings.Fields(word), " ")
}

// columnToIndex converts an Excel column letter to a 0-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		c := column[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		index = index*26 + int(c-'A'+1)
	}
	return index - 1
}
