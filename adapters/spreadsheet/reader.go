package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"clustereval/domain/core"
	"clustereval/internal"
	"clustereval/internal/errors"
)

// Missing-value markers accepted in input cells, compared case-insensitively.
var missingMarkers = map[string]bool{
	"": true, "na": true, "n/a": true, "nan": true, "null": true, "none": true,
}

// Reader loads phenotype tables and cluster mappings from TSV, CSV, or XLSX
// files. The format is picked from the file extension.
type Reader struct {
	logger *internal.Logger
}

// NewReader creates a spreadsheet reader.
func NewReader(logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{logger: logger}
}

// ReadPhenotypes reads a phenotype table: header row of trait names with the
// first column holding sample IDs. Column order is preserved so the result
// table comes out in input order.
func (r *Reader) ReadPhenotypes(path string) (core.PhenotypeTable, error) {
	rows, err := r.readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("phenotype file %s needs a header row and at least one sample row", path))
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("phenotype file %s has no trait columns", path))
	}

	table := make(core.PhenotypeTable, 0, len(header)-1)
	for _, name := range header[1:] {
		table = append(table, core.Trait{
			Name:   strings.TrimSpace(name),
			Values: make(core.TraitColumn),
		})
	}

	for _, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		id := core.SampleID(strings.TrimSpace(row[0]))
		for j := range table {
			cell := ""
			if j+1 < len(row) {
				cell = row[j+1]
			}
			table[j].Values[id] = ParseCell(cell)
		}
	}

	r.logger.Info("loaded phenotype table %s: %d traits", path, len(table))
	return table, nil
}

// ReadClusters reads a sample-to-cluster mapping: two columns, no header,
// sample ID then integer cluster label.
func (r *Reader) ReadClusters(path string) (core.ClusterAssignment, error) {
	rows, err := r.readRows(path)
	if err != nil {
		return nil, err
	}

	assignment := make(core.ClusterAssignment, len(rows))
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 2 {
			return nil, errors.InvalidInput(fmt.Sprintf("cluster file %s line %d: expected sample and label", path, i+1))
		}
		label, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("cluster file %s line %d: label %q is not an integer", path, i+1, row[1]))
		}
		assignment[core.SampleID(strings.TrimSpace(row[0]))] = core.ClusterLabel(label)
	}

	if len(assignment) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("cluster file %s holds no assignments", path))
	}
	r.logger.Info("loaded cluster assignment %s: %d samples", path, len(assignment))
	return assignment, nil
}

// ParseCell types one input cell: missing marker, float, or free text.
func ParseCell(cell string) core.TraitValue {
	trimmed := strings.TrimSpace(cell)
	if missingMarkers[strings.ToLower(trimmed)] {
		return core.Missing()
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return core.Number(v)
	}
	return core.Text(trimmed)
}

func (r *Reader) readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("input file %s", path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return r.readExcelRows(path)
	case ".csv":
		return r.readDelimitedRows(path, ',')
	default:
		// TSV is the native format of the pipeline's inputs.
		return r.readDelimitedRows(path, '\t')
	}
}

func (r *Reader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", path)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s of %s", sheet, path)
	}
	return rows, nil
}

func (r *Reader) readDelimitedRows(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return rows, nil
}
