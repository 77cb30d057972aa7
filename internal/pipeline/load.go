package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/servsurcp-stack/dashboard-concordance/internal"
)

// LoadExtract reads a whole spreadsheet extract into memory, format
// picked by file extension (.xlsx or .csv). The first row is the
// header; conformity exports carry a junk second row repeating the form
// labels, which is skipped. An unreadable file is the one fatal error
// of the pipeline.
func LoadExtract(path string, kind internal.ExtractKind) (*internal.RawTable, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported extract format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read extract %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("extract %s has no header row", path)
	}

	data := rows[1:]
	if kind == internal.ExtractConformity && len(data) > 0 {
		data = data[1:]
	}

	table := internal.NewRawTable(rows[0])
	for _, row := range data {
		if emptyRow(row) {
			continue
		}
		table.AppendRow(row)
	}
	return table, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	return f.GetRows(sheet)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func emptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
