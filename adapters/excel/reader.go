package excel

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"alignbench/domain/scoring"
	"alignbench/internal/errors"
	"alignbench/internal/logging"
)

// DataReader loads scoring datasets from Excel, CSV or JSON files
type DataReader struct {
	filePath string
	fileType string // "xlsx", "csv" or "json"
	logger   *zap.Logger
}

// NewDataReader creates a reader; the file type follows the extension and
// defaults to xlsx
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	switch ext {
	case ".csv":
		fileType = "csv"
	case ".json":
		fileType = "json"
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logging.New("excel")}
}

// ReadDataset reads the file into records, weights and domains. CSV files
// carry the tests table only.
func (r *DataReader) ReadDataset() (scoring.Dataset, error) {
	r.logger.Info("reading dataset", zap.String("type", r.fileType), zap.String("path", r.filePath))

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return scoring.Dataset{}, errors.LoadError(r.filePath, fmt.Errorf("%s file not found", strings.ToUpper(r.fileType)))
	}

	var (
		ds  scoring.Dataset
		err error
	)
	switch r.fileType {
	case "json":
		ds, err = r.readJSONDataset()
	case "csv":
		ds, err = r.readCSVDataset()
	default:
		ds, err = r.readExcelDataset()
	}
	if err != nil {
		return scoring.Dataset{}, errors.LoadError(r.filePath, err)
	}

	r.logger.Info("dataset loaded", zap.Int("records", len(ds.Records)), zap.Int("weights", ds.Weights.Len()),
		zap.Int("domains", len(ds.Domains.Domains())))
	return ds, nil
}

func (r *DataReader) readJSONDataset() (scoring.Dataset, error) {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return scoring.Dataset{}, fmt.Errorf("failed to read JSON file: %w", err)
	}
	var ds scoring.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return scoring.Dataset{}, fmt.Errorf("failed to decode JSON dataset: %w", err)
	}
	return ds, nil
}

func (r *DataReader) readCSVDataset() (scoring.Dataset, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return scoring.Dataset{}, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return scoring.Dataset{}, fmt.Errorf("failed to read CSV file: %w", err)
	}

	records, err := ParseRecords(processRows(rows))
	if err != nil {
		return scoring.Dataset{}, err
	}
	domains, _ := scoring.NewDomainMap(nil)
	return scoring.Dataset{Records: records, Domains: domains}, nil
}

// readExcelDataset reads the tests sheet (or the first sheet when none is
// named tests) plus the optional weights and domains sheets
func (r *DataReader) readExcelDataset() (scoring.Dataset, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return scoring.Dataset{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	testsSheet := findSheet(sheets, TestsSheet)
	if testsSheet == "" {
		if len(sheets) == 0 {
			return scoring.Dataset{}, fmt.Errorf("workbook has no sheets")
		}
		testsSheet = sheets[0]
	}

	rows, err := f.GetRows(testsSheet)
	if err != nil {
		return scoring.Dataset{}, fmt.Errorf("failed to read sheet %s: %w", testsSheet, err)
	}
	records, err := ParseRecords(processRows(rows))
	if err != nil {
		return scoring.Dataset{}, err
	}

	weights := scoring.NewWeightTable(nil, nil)
	if name := findSheet(sheets, WeightsSheet); name != "" {
		rows, err := f.GetRows(name)
		if err != nil {
			return scoring.Dataset{}, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		weights = ParseWeights(processRows(rows))
	}

	domains, _ := scoring.NewDomainMap(nil)
	if name := findSheet(sheets, DomainsSheet); name != "" {
		rows, err := f.GetRows(name)
		if err != nil {
			return scoring.Dataset{}, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		domains, err = ParseDomains(processRows(rows))
		if err != nil {
			return scoring.Dataset{}, err
		}
	}

	r.logger.Debug("workbook read", zap.String("sheet", testsSheet), zap.Duration("elapsed", time.Since(startTime)))
	return scoring.Dataset{Records: records, Weights: weights, Domains: domains}, nil
}

func findSheet(sheets []string, name string) string {
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return s
		}
	}
	return ""
}

// processRows converts raw string rows into a SheetData, lower-casing headers.
// Blank rows are skipped.
func processRows(rows [][]string) *SheetData {
	if len(rows) == 0 {
		return &SheetData{}
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	var dataRows []RawRowData
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		blank := true
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				v := strings.TrimSpace(cell)
				rowData[headers[j]] = v
				if v != "" {
					blank = false
				}
			}
		}
		if !blank {
			dataRows = append(dataRows, rowData)
		}
	}

	return &SheetData{Headers: headers, Rows: dataRows}
}
